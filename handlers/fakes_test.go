package handlers

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"github.com/andrewpaige1/accent-api/airtable"
	"github.com/andrewpaige1/accent-api/funnel"
	"github.com/andrewpaige1/accent-api/wiktionary"
	"github.com/samber/lo"
)

var (
	equalsFormula       = regexp.MustCompile(`^\{(.+)\} = "(.*)"$`)
	equalsNumberFormula = regexp.MustCompile(`^\{(.+)\} = (-?\d+)$`)
)

// fakeRecords is an in-memory records API. It understands {field} = "value" and
// {field} = n formulas; anything else matches every record.
type fakeRecords struct {
	mu      sync.Mutex
	tables  map[string][]airtable.Record
	created []map[string]any
	updated map[string]map[string]any
	deleted []string
	err     error

	readOnly bool
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{tables: map[string][]airtable.Record{}, updated: map[string]map[string]any{}}
}

func (f *fakeRecords) add(table string, records ...airtable.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[table] = append(f.tables[table], records...)
}

func (f *fakeRecords) FetchRecords(_ context.Context, table, formula string) ([]airtable.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if m := equalsNumberFormula.FindStringSubmatch(formula); m != nil {
		want, _ := strconv.ParseFloat(m[2], 64)
		return lo.Filter(f.tables[table], func(r airtable.Record, _ int) bool {
			n, ok := r.Number(m[1])
			return ok && n == want
		}), nil
	}
	m := equalsFormula.FindStringSubmatch(formula)
	if m == nil {
		return append([]airtable.Record(nil), f.tables[table]...), nil
	}
	return lo.Filter(f.tables[table], func(r airtable.Record, _ int) bool {
		return r.String(m[1]) == m[2] || lo.Contains(r.Strings(m[1]), m[2])
	}), nil
}

func (f *fakeRecords) FetchRecord(_ context.Context, table, recordID string) (*airtable.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	rec, ok := lo.Find(f.tables[table], func(r airtable.Record) bool { return r.ID == recordID })
	if !ok {
		return nil, fmt.Errorf("fetch %s: %w", recordID, airtable.ErrNotFound)
	}
	return &rec, nil
}

func (f *fakeRecords) CanWrite() bool { return !f.readOnly }

func (f *fakeRecords) CreateRecord(_ context.Context, table string, fields map[string]any) (*airtable.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, fields)
	return &airtable.Record{ID: fmt.Sprintf("recNew%d", len(f.created)), Fields: fields}, nil
}

func (f *fakeRecords) UpdateRecord(_ context.Context, table, recordID string, fields map[string]any) (*airtable.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated[recordID] = fields
	return &airtable.Record{ID: recordID, Fields: fields}, nil
}

func (f *fakeRecords) DeleteRecord(_ context.Context, table, recordID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, recordID)
	return nil
}

type fakeAudio struct {
	all, us []wiktionary.Audio
	err     error
}

func (f *fakeAudio) Audio(context.Context, string) ([]wiktionary.Audio, error) { return f.all, f.err }

func (f *fakeAudio) USAudio(context.Context, string) ([]wiktionary.Audio, error) { return f.us, f.err }

type fakeDictionary struct {
	url string
	err error
}

func (f *fakeDictionary) USAudioURL(context.Context, string) (string, error) { return f.url, f.err }

type fakeFunnel struct {
	days   []airtable.Record
	report *funnel.Report
	err    error

	start, end string
}

func (f *fakeFunnel) Days(_ context.Context, start, end string) ([]airtable.Record, error) {
	f.start, f.end = start, end
	return f.days, f.err
}

func (f *fakeFunnel) Load(_ context.Context, start, end string) (*funnel.Report, error) {
	f.start, f.end = start, end
	return f.report, f.err
}
