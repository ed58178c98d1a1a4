package funnel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andrewpaige1/accent-api/airtable"
	"github.com/andrewpaige1/accent-api/plausible"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultCacheTTL = 5 * time.Minute

	salesPagePath = "/mg-mw-new"
	appFormPath   = "/mg-app-new"
)

type RecordSource interface {
	FetchRecords(ctx context.Context, table, filterByFormula string) ([]airtable.Record, error)
}

type Analytics interface {
	Visitors(ctx context.Context, start, end string, filters []plausible.Filter, dimensions ...string) (*plausible.Response, error)
}

// Report is everything the acquisition dashboard draws for one date range.
type Report struct {
	Start               string              `json:"start"`
	End                 string              `json:"end"`
	SalesPageVisits     Traffic             `json:"mgSalesPageVisits"`
	Application         Application         `json:"mgApplication"`
	Selection           Selection           `json:"mgSelection"`
	Revenue             Revenue             `json:"revenue"`
	InterfaceValidation InterfaceValidation `json:"interfaceValidation"`
	Sankey              Sankey              `json:"sankey"`
}

// Service joins the Days table with analytics visits. Days records are cached for TTL.
type Service struct {
	records   RecordSource
	analytics Analytics
	ttl       time.Duration
	now       func() time.Time

	mu        sync.Mutex
	days      []airtable.Record
	fetchedAt time.Time
}

func NewService(records RecordSource, analytics Analytics, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{records: records, analytics: analytics, ttl: ttl, now: time.Now}
}

// Days returns the Days records dated within [start, end].
func (s *Service) Days(ctx context.Context, start, end string) ([]airtable.Record, error) {
	all, err := s.allDays(ctx)
	if err != nil {
		return nil, err
	}
	return InRange(all, start, end), nil
}

func (s *Service) allDays(ctx context.Context) ([]airtable.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.days != nil && s.now().Sub(s.fetchedAt) < s.ttl {
		logrus.Debug("funnel: serving Days from cache")
		return s.days, nil
	}

	records, err := s.records.FetchRecords(ctx, DaysTable, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", DaysTable, err)
	}
	s.days = records
	s.fetchedAt = s.now()
	return records, nil
}

// Load fetches the records API and analytics concurrently. Any failure fails the whole report.
func (s *Service) Load(ctx context.Context, start, end string) (*Report, error) {
	var (
		days               []airtable.Record
		salesPage, appForm *int
		utm                []plausible.Row
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		days, err = s.Days(gctx, start, end)
		return err
	})
	g.Go(func() error {
		resp, err := s.analytics.Visitors(gctx, start, end, []plausible.Filter{plausible.Contains("event:page", salesPagePath)})
		if err != nil {
			return fmt.Errorf("failed to fetch sales page visits: %w", err)
		}
		salesPage = firstMetric(resp)
		return nil
	})
	g.Go(func() error {
		resp, err := s.analytics.Visitors(gctx, start, end, []plausible.Filter{plausible.Contains("event:page", appFormPath)})
		if err != nil {
			return fmt.Errorf("failed to fetch app form visits: %w", err)
		}
		appForm = firstMetric(resp)
		return nil
	})
	g.Go(func() error {
		resp, err := s.analytics.Visitors(gctx, start, end,
			[]plausible.Filter{plausible.Contains("event:page", salesPagePath)},
			"visit:utm_source", "visit:utm_medium", "visit:utm_campaign")
		if err != nil {
			return fmt.Errorf("failed to fetch UTM breakdown: %w", err)
		}
		utm = resp.Results
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	visits := Visits{SalesPage: salesPage, AppForm: appForm, UTM: utm}

	totals := SumDays(days)
	traffic := Attribute(visits.SalesPage, visits.UTM)
	app := DeriveApplication(totals, visits)
	sel := DeriveSelection(totals)

	return &Report{
		Start:               start,
		End:                 end,
		SalesPageVisits:     traffic,
		Application:         app,
		Selection:           sel,
		Revenue:             totals.Revenue,
		InterfaceValidation: ValidateInterfaces(traffic, app, sel),
		Sankey:              BuildSankey(traffic, app, sel),
	}, nil
}

// firstMetric treats a zero count like the analytics API's "no data".
func firstMetric(resp *plausible.Response) *int {
	v, ok := resp.FirstMetric()
	if !ok || v == 0 {
		return nil
	}
	return lo.ToPtr(int(v))
}
