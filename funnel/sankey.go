package funnel

import (
	"math"

	"github.com/samber/lo"
)

// MinNodeDisplayValue keeps tiny nodes visible in the chart.
const MinNodeDisplayValue = 1.0

const (
	categoryFunnel    = "mg-funnel"
	categorySelection = "mg-selection"
	categorySales     = "mg-sales"
)

type Scale int

const (
	Linear Scale = iota
	Log10
)

type Node struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Value        int     `json:"value"`
	DisplayValue float64 `json:"displayValue"`
}

type Link struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	Value        int     `json:"value"`
	DisplayValue float64 `json:"displayValue"`
}

type Diagram struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

type Sankey struct {
	Traffic     Diagram `json:"trafficFunnelData"`
	Application Diagram `json:"applicationFunnelData"`
	Selection   Diagram `json:"selectionFunnelData"`
}

type linkSpec struct {
	source, target string
	value          *int
}

// BuildSankey lays the three funnels out as node/link arrays. Traffic and application
// links are log10-compressed so large visit counts do not dwarf applications; selection
// links stay linear.
func BuildSankey(tr Traffic, app Application, sel Selection) Sankey {
	return Sankey{
		Traffic: build(Log10, []Node{
			{ID: "mg-sp-via-ig-bio", Name: "MG SP via IG Bio", Category: categoryFunnel},
			{ID: "mg-sp-via-ig-story", Name: "MG SP via IG Story", Category: categoryFunnel},
			{ID: "mg-sp-via-ig-manychat", Name: "MG SP via IG Manychat", Category: categoryFunnel},
			{ID: "mg-sp-via-ig-dm", Name: "MG SP via IG DM", Category: categoryFunnel},
			{ID: "mg-sp-via-email-broadcast", Name: "MG SP via Email Broadcast", Category: categoryFunnel},
			{ID: "mg-sp-via-email-automation", Name: "MG SP via Email Automation", Category: categoryFunnel},
			{ID: "mg-sp-via-unknown", Name: "MG SP via Unknown", Category: categoryFunnel},
			{ID: "mg-sales-page-visits", Name: "MG Sales Page Visits", Category: categoryFunnel},
		}, []linkSpec{
			{"mg-sp-via-ig-bio", "mg-sales-page-visits", tr.FromIgBio},
			{"mg-sp-via-ig-story", "mg-sales-page-visits", tr.FromIgStory},
			{"mg-sp-via-ig-manychat", "mg-sales-page-visits", tr.FromIgManychat},
			{"mg-sp-via-ig-dm", "mg-sales-page-visits", tr.FromIgDm},
			{"mg-sp-via-email-broadcast", "mg-sales-page-visits", tr.FromEmailBroadcasts},
			{"mg-sp-via-email-automation", "mg-sales-page-visits", tr.FromEmailAutomations},
			{"mg-sp-via-unknown", "mg-sales-page-visits", tr.FromUnknown},
		}),
		Application: build(Log10, []Node{
			{ID: "mg-sales-page-visits", Name: "MG Sales Page Visits", Category: categoryFunnel},
			{ID: "exited-sales-page", Name: "MG Sales Page Exits", Category: categorySelection},
			{ID: "mg-app-form-visits", Name: "MG App Form Visits", Category: categoryFunnel},
			{ID: "app-abandons", Name: "MG App Abandons", Category: categorySelection},
			{ID: "mg-app-completions", Name: "MG App Completions", Category: categoryFunnel},
			{ID: "mg-non-qualified-apps", Name: "MG Non-Qualified Apps", Category: categorySelection},
			{ID: "mg-qualified-apps", Name: "MG Qualified Apps", Category: categoryFunnel},
		}, []linkSpec{
			{"mg-sales-page-visits", "exited-sales-page", app.Exited},
			{"mg-sales-page-visits", "mg-app-form-visits", app.AppFormPageVisits},
			{"mg-app-form-visits", "app-abandons", app.AppAbandons},
			{"mg-app-form-visits", "mg-app-completions", app.AppCompletions},
			{"mg-app-completions", "mg-non-qualified-apps", app.NonQualifiedApps},
			{"mg-app-completions", "mg-qualified-apps", app.QualifiedApps},
		}),
		Selection: build(Linear, []Node{
			{ID: "mg-qualified-apps", Name: "MG Qualified Apps", Category: categoryFunnel},
			{ID: "rejected-wo-convo", Name: "Rejected w/o Convo", Category: categorySelection},
			{ID: "not-contacted-or-rejected", Name: "Not Contacted Yet", Category: categorySelection},
			{ID: "contacted", Name: "Contacted", Category: categorySelection},
			{ID: "unresponsive", Name: "Unresponsive", Category: categorySelection},
			{ID: "no-response-yet", Name: "No Response Yet", Category: categorySelection},
			{ID: "begun-conversation", Name: "Began Conversation", Category: categorySelection},
			{ID: "became-unresponsive", Name: "Became Unresponsive", Category: categorySelection},
			{ID: "rejected-based-on-convo", Name: "Rejected Based on Convo", Category: categorySelection},
			{ID: "no-decision-yet", Name: "No Decision Yet", Category: categorySelection},
			{ID: "accepted-not-paid", Name: "Accepted but Not Paid", Category: categorySelection},
			{ID: "rejected-after-acceptance", Name: "Rejected After Acceptance", Category: categorySelection},
			{ID: "no-outcome-yet", Name: "No Outcome Yet", Category: categorySelection},
			{ID: "paid", Name: "Paid", Category: categorySales},
		}, []linkSpec{
			{"mg-qualified-apps", "rejected-wo-convo", sel.RejectedWoConvo},
			{"mg-qualified-apps", "not-contacted-or-rejected", sel.NotContactedOrRejected},
			{"mg-qualified-apps", "contacted", sel.Contacted},
			{"contacted", "unresponsive", sel.Unresponsive},
			{"contacted", "no-response-yet", sel.NoResponseYet},
			{"contacted", "begun-conversation", sel.BegunConversation},
			{"begun-conversation", "became-unresponsive", sel.BecameUnresponsive},
			{"begun-conversation", "rejected-based-on-convo", sel.RejectedBasedOnConvo},
			{"begun-conversation", "no-decision-yet", sel.NoDecisionYet},
			{"begun-conversation", "accepted-not-paid", sel.AcceptedNotPaid},
			{"accepted-not-paid", "rejected-after-acceptance", sel.RejectedAfterAcceptance},
			{"accepted-not-paid", "no-outcome-yet", sel.NoOutcomeYet},
			{"accepted-not-paid", "paid", sel.Paid},
		}),
	}
}

// LogDisplay compresses v as log10(v+1)*10.
func LogDisplay(v int) float64 {
	return math.Log10(float64(v)+1) * 10
}

// build drops nil and non-positive links, then drops nodes no remaining link touches.
// A node's value is the larger of its inflow and outflow.
func build(scale Scale, nodes []Node, specs []linkSpec) Diagram {
	links := lo.FilterMap(specs, func(s linkSpec, _ int) (Link, bool) {
		if s.value == nil || *s.value <= 0 {
			return Link{}, false
		}
		display := float64(*s.value)
		if scale == Log10 {
			display = LogDisplay(*s.value)
		}
		return Link{Source: s.source, Target: s.target, Value: *s.value, DisplayValue: display}, true
	})

	type flow struct {
		in, out               int
		displayIn, displayOut float64
	}
	flows := map[string]*flow{}
	get := func(id string) *flow {
		if f, ok := flows[id]; ok {
			return f
		}
		f := &flow{}
		flows[id] = f
		return f
	}
	for _, l := range links {
		src, dst := get(l.Source), get(l.Target)
		src.out += l.Value
		src.displayOut += l.DisplayValue
		dst.in += l.Value
		dst.displayIn += l.DisplayValue
	}

	kept := lo.FilterMap(nodes, func(n Node, _ int) (Node, bool) {
		f, ok := flows[n.ID]
		if !ok {
			return Node{}, false
		}
		n.Value = max(f.in, f.out)
		n.DisplayValue = math.Max(MinNodeDisplayValue, math.Max(f.displayIn, f.displayOut))
		return n, true
	})

	return Diagram{Nodes: kept, Links: links}
}
