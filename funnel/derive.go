package funnel

import (
	"github.com/andrewpaige1/accent-api/plausible"
	"github.com/samber/lo"
)

// Traffic is where sales page visitors came from. Nil means unknown, not zero.
type Traffic struct {
	Total                *int `json:"total"`
	FromIgBio            *int `json:"fromIgBio"`
	FromIgStory          *int `json:"fromIgStory"`
	FromIgManychat       *int `json:"fromIgManychat"`
	FromIgDm             *int `json:"fromIgDm"`
	FromEmailBroadcasts  *int `json:"fromEmailBroadcasts"`
	FromEmailAutomations *int `json:"fromEmailAutomations"`
	FromUnknown          *int `json:"fromUnknown"`
}

type Application struct {
	Exited            *int `json:"exited"`
	AppFormPageVisits *int `json:"appFormPageVisits"`
	AppStarts         *int `json:"appStarts"`
	AppAbandons       *int `json:"appAbandons"`
	AppCompletions    *int `json:"appCompletions"`
	NonQualifiedApps  *int `json:"nonQualifiedApps"`
	QualifiedApps     *int `json:"qualifiedApps"`
}

// Selection follows qualified applicants through contact, conversation and decision.
// Each stage includes everyone in the stages after it.
type Selection struct {
	RejectedWoConvo         *int `json:"rejectedWoCovo"`
	Contacted               *int `json:"contacted"`
	Unresponsive            *int `json:"unresponsive"`
	BegunConversation       *int `json:"begunConversation"`
	BecameUnresponsive      *int `json:"becameUnresponsive"`
	RejectedBasedOnConvo    *int `json:"rejectedBasedOnConvo"`
	AcceptedNotPaid         *int `json:"acceptedNotPaid"`
	RejectedAfterAcceptance *int `json:"rejectedAfterAcceptance"`
	Paid                    *int `json:"paid"`

	// People between recorded states.
	NotContactedOrRejected *int `json:"notContactedOrRejected"`
	NoResponseYet          *int `json:"noResponseYet"`
	NoDecisionYet          *int `json:"noDecisionYet"`
	NoOutcomeYet           *int `json:"noOutcomeYet"`
}

// Visits are the analytics figures for the sales and application pages.
type Visits struct {
	SalesPage *int
	AppForm   *int
	UTM       []plausible.Row
}

// DeriveApplication builds the application funnel. Visits may be nil when analytics are unavailable.
func DeriveApplication(t DayTotals, v Visits) Application {
	app := Application{
		AppStarts:      lo.ToPtr(t.AppStarts),
		AppCompletions: lo.ToPtr(t.Completed),
	}
	if t.QualifiedApps > 0 {
		app.QualifiedApps = lo.ToPtr(t.QualifiedApps)
		app.NonQualifiedApps = lo.ToPtr(max(0, t.Completed-t.QualifiedApps))
	}
	if t.AppStarts > 0 {
		app.AppAbandons = lo.ToPtr(max(0, t.AppStarts-t.Completed))
	}
	app.AppFormPageVisits = v.AppForm
	if v.SalesPage != nil && v.AppForm != nil {
		app.Exited = lo.ToPtr(max(0, *v.SalesPage-*v.AppForm))
	}
	return app
}

// DeriveSelection rebuilds the sequential selection flow from the per-state counts, where
// each raw count holds only the people currently in that state.
func DeriveSelection(t DayTotals) Selection {
	accepted := t.AcceptedButNotPaid + t.Paid + t.AcceptedThenRejected
	began := t.BeganConversation + t.RejectedBasedOnConvo + t.BecameUnresponsive + accepted
	contacted := t.Contacted + t.Unresponsive + began

	sel := Selection{
		RejectedWoConvo:         lo.ToPtr(t.RejectedWoConvo),
		Contacted:               lo.ToPtr(contacted),
		Unresponsive:            lo.ToPtr(t.Unresponsive),
		BegunConversation:       lo.ToPtr(began),
		BecameUnresponsive:      lo.ToPtr(t.BecameUnresponsive),
		RejectedBasedOnConvo:    lo.ToPtr(t.RejectedBasedOnConvo),
		AcceptedNotPaid:         lo.ToPtr(accepted),
		RejectedAfterAcceptance: lo.ToPtr(t.AcceptedThenRejected),
		Paid:                    lo.ToPtr(t.Paid),

		NoResponseYet: lo.ToPtr(max(0, contacted-t.Unresponsive-began)),
		NoDecisionYet: lo.ToPtr(max(0, began-t.BecameUnresponsive-t.RejectedBasedOnConvo-accepted)),
		NoOutcomeYet:  lo.ToPtr(max(0, accepted-t.AcceptedThenRejected-t.Paid)),
	}
	if t.QualifiedApps > 0 {
		sel.NotContactedOrRejected = lo.ToPtr(max(0, t.QualifiedApps-contacted-t.RejectedWoConvo))
	}
	return sel
}

// Attribute splits sales page visitors by UTM source. UTM rows carry the dimensions
// source, medium and campaign in that order.
func Attribute(total *int, rows []plausible.Row) Traffic {
	tr := Traffic{Total: total}

	add := func(dst **int, n int) {
		if *dst == nil {
			*dst = lo.ToPtr(0)
		}
		**dst += n
	}

	for _, row := range rows {
		if len(row.Dimensions) < 3 {
			continue
		}
		source, medium, campaign := row.Dimensions[0], row.Dimensions[1], row.Dimensions[2]
		visitors := 0
		if len(row.Metrics) > 0 {
			visitors = int(row.Metrics[0])
		}

		switch {
		case source == "ig" && medium == "social":
			switch campaign {
			case "bio":
				add(&tr.FromIgBio, visitors)
			case "stories":
				add(&tr.FromIgStory, visitors)
			case "manychat":
				add(&tr.FromIgManychat, visitors)
			case "dm":
				add(&tr.FromIgDm, visitors)
			}
		case source == "saa_ac" && medium == "email":
			add(&tr.FromEmailBroadcasts, visitors)
		}
	}

	known := lo.Sum(lo.Map([]*int{
		tr.FromIgBio, tr.FromIgStory, tr.FromIgManychat, tr.FromIgDm, tr.FromEmailBroadcasts, tr.FromEmailAutomations,
	}, func(p *int, _ int) int { return lo.FromPtr(p) }))
	if total != nil && known > 0 {
		tr.FromUnknown = lo.ToPtr(max(0, *total-known))
	}
	return tr
}

type InterfaceCheck struct {
	Output *int `json:"output"`
	Input  *int `json:"input"`
	Match  bool `json:"match"`
	Gap    int  `json:"gap"`
}

// InterfaceValidation checks that adjacent diagrams agree on the node they share: the
// sales page (traffic → application) and qualified apps (application → selection).
type InterfaceValidation struct {
	SalesPageVisits InterfaceCheck `json:"salesPageVisits"`
	QualifiedApps   InterfaceCheck `json:"qualifiedApps"`
	OverallValid    bool           `json:"overallValid"`
}

func ValidateInterfaces(tr Traffic, app Application, sel Selection) InterfaceValidation {
	// Traffic diagram output is what its links deliver to the sales page node.
	trafficOut := sumKnown(tr.FromIgBio, tr.FromIgStory, tr.FromIgManychat, tr.FromIgDm,
		tr.FromEmailBroadcasts, tr.FromEmailAutomations, tr.FromUnknown)
	// Selection diagram input is what leaves the qualified apps node.
	selectionIn := sumKnown(sel.RejectedWoConvo, sel.Contacted, sel.NotContactedOrRejected)

	v := InterfaceValidation{
		SalesPageVisits: check(trafficOut, tr.Total),
		QualifiedApps:   check(app.QualifiedApps, selectionIn),
	}
	v.OverallValid = v.SalesPageVisits.Match && v.QualifiedApps.Match
	return v
}

// check treats a missing side as zero.
func check(output, input *int) InterfaceCheck {
	c := InterfaceCheck{Output: output, Input: input}
	c.Match = lo.FromPtr(output) == lo.FromPtr(input)
	if !c.Match {
		c.Gap = abs(lo.FromPtr(output) - lo.FromPtr(input))
	}
	return c
}

// sumKnown adds the non-nil values, or returns nil if all are nil.
func sumKnown(values ...*int) *int {
	present := lo.Filter(values, func(p *int, _ int) bool { return p != nil })
	if len(present) == 0 {
		return nil
	}
	return lo.ToPtr(lo.SumBy(present, func(p *int) int { return *p }))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
