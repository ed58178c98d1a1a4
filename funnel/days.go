// Package funnel turns daily acquisition records and analytics visits into the
// traffic, application and selection funnels shown on the acquisition dashboard.
package funnel

import (
	"math"

	"github.com/andrewpaige1/accent-api/airtable"
	"github.com/samber/lo"
)

const (
	DaysTable = "Days"
	DateField = "Date"
)

// Day record field names.
const (
	fieldAppStarts            = "app starts"
	fieldCompleted            = "completed"
	fieldQualified            = "MG $ Y"
	fieldPaid                 = "MG paid"
	fieldAcceptedNotPaid      = "MG accepted but not paid"
	fieldRejectedWoConvo      = "Rejected w/o convo"
	fieldContacted            = "Contacted"
	fieldUnresponsive         = "Unresponsive"
	fieldBeganConversation    = "began conversation"
	fieldRejectedBasedOnConvo = "Rejected based on convo"
	fieldBecameUnresponsive   = "became unresponsive mid-convo"
	fieldAcceptedThenRejected = "MG accepted then rejected"
	fieldTBD                  = "TBD"

	fieldPayApp    = "mg_pay_app_attribution"
	fieldRefundApp = "mg_refund_app_attribution"
	fieldNetPayApp = "mg_netpay_app_attribution"
	fieldPayDay    = "mg_pay_day_attribution"
	fieldRefundDay = "mg_refund_day_attribution"
	fieldNetPayDay = "mg_netpay_day_attribution"
)

// DayTotals is the sum of every Days record in a date range.
type DayTotals struct {
	AppStarts            int
	Completed            int
	QualifiedApps        int
	Paid                 int
	AcceptedButNotPaid   int
	RejectedWoConvo      int
	Contacted            int
	Unresponsive         int
	BeganConversation    int
	RejectedBasedOnConvo int
	BecameUnresponsive   int
	AcceptedThenRejected int
	TBD                  int

	Revenue Revenue
}

type Revenue struct {
	PaymentsApp float64 `json:"mgPaymentsApp"`
	RefundsApp  float64 `json:"mgRefundsApp"`
	NetPayApp   float64 `json:"mgNetPayApp"`
	PaymentsDay float64 `json:"mgPaymentsDay"`
	RefundsDay  float64 `json:"mgRefundsDay"`
	NetPayDay   float64 `json:"mgNetPayDay"`
}

// InRange keeps records whose Date (YYYY-MM-DD) lies in [start, end].
func InRange(records []airtable.Record, start, end string) []airtable.Record {
	return lo.Filter(records, func(r airtable.Record, _ int) bool {
		d := r.String(DateField)
		return d != "" && d >= start && d <= end
	})
}

// SumDays adds up the funnel fields of records. Array-valued fields are summed element-wise.
func SumDays(records []airtable.Record) DayTotals {
	var t DayTotals
	for _, r := range records {
		t.AppStarts += count(r, fieldAppStarts)
		t.Completed += count(r, fieldCompleted)
		t.QualifiedApps += count(r, fieldQualified)
		t.Paid += count(r, fieldPaid)
		t.AcceptedButNotPaid += count(r, fieldAcceptedNotPaid)
		t.RejectedWoConvo += count(r, fieldRejectedWoConvo)
		t.Contacted += count(r, fieldContacted)
		t.Unresponsive += count(r, fieldUnresponsive)
		t.BeganConversation += count(r, fieldBeganConversation)
		t.RejectedBasedOnConvo += count(r, fieldRejectedBasedOnConvo)
		t.BecameUnresponsive += count(r, fieldBecameUnresponsive)
		t.AcceptedThenRejected += count(r, fieldAcceptedThenRejected)
		t.TBD += count(r, fieldTBD)

		t.Revenue.PaymentsApp += amount(r, fieldPayApp)
		t.Revenue.RefundsApp += amount(r, fieldRefundApp)
		t.Revenue.NetPayApp += amount(r, fieldNetPayApp)
		t.Revenue.PaymentsDay += amount(r, fieldPayDay)
		t.Revenue.RefundsDay += amount(r, fieldRefundDay)
		t.Revenue.NetPayDay += amount(r, fieldNetPayDay)
	}
	return t
}

func count(r airtable.Record, field string) int {
	v, _ := r.Sum(field)
	return int(math.Round(v))
}

func amount(r airtable.Record, field string) float64 {
	v, _ := r.Sum(field)
	return v
}
