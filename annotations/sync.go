package annotations

import (
	"context"
	"fmt"

	"github.com/andrewpaige1/accent-api/airtable"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

const (
	WordInstanceTable = "Words (instance)"

	FieldWordIndex   = "word index"
	FieldIssues      = "BR issues"
	FieldAudioSource = "Audio Source"
	FieldName        = "Name"
	FieldTimestamp   = "in timestamp (seconds)"
	FieldNote        = "Note"

	createdNote = "Created via SAA web app"
	updatedNote = "Updated via SAA web app"
)

// RecordStore is the subset of the records API the sync needs.
type RecordStore interface {
	FetchRecords(ctx context.Context, table, filterByFormula string) ([]airtable.Record, error)
	CreateRecord(ctx context.Context, table string, fields map[string]any) (*airtable.Record, error)
	UpdateRecord(ctx context.Context, table, recordID string, fields map[string]any) (*airtable.Record, error)
	DeleteRecord(ctx context.Context, table, recordID string) error
}

// Target identifies the word being annotated.
type Target struct {
	AudioID   string
	WordIndex int
	Word      string
	Timestamp *float64
}

type Result struct {
	Type     OpType `json:"type"`
	Success  bool   `json:"success"`
	RecordID string `json:"recordId,omitempty"`
	Error    string `json:"error,omitempty"`
}

// LoadExisting fetches the current word instance for target, or nil when none is stored.
func LoadExisting(ctx context.Context, store RecordStore, target Target) (*Existing, error) {
	records, err := store.FetchRecords(ctx, WordInstanceTable, airtable.FieldEqualsNumber(FieldWordIndex, target.WordIndex))
	if err != nil {
		return nil, fmt.Errorf("failed to load word instances: %w", err)
	}

	rec, found := lo.Find(records, func(r airtable.Record) bool {
		return lo.Contains(r.Strings(FieldAudioSource), target.AudioID)
	})
	if !found {
		return nil, nil
	}
	return &Existing{RecordID: rec.ID, Annotations: rec.Strings(FieldIssues)}, nil
}

// Apply executes ops in order. A failed operation is reported and does not stop the rest.
func Apply(ctx context.Context, store RecordStore, target Target, ops []Operation) []Result {
	results := make([]Result, 0, len(ops))
	for _, op := range ops {
		res := Result{Type: op.Type, RecordID: op.RecordID}
		var err error

		switch op.Type {
		case OpCreate:
			fields := map[string]any{
				FieldWordIndex:   target.WordIndex,
				FieldIssues:      op.Annotations,
				FieldAudioSource: []string{target.AudioID},
				FieldName:        target.Word,
				FieldNote:        createdNote,
			}
			if target.Timestamp != nil {
				fields[FieldTimestamp] = *target.Timestamp
			}
			var rec *airtable.Record
			rec, err = store.CreateRecord(ctx, WordInstanceTable, fields)
			if err == nil {
				res.RecordID = rec.ID
			}
		case OpUpdate:
			_, err = store.UpdateRecord(ctx, WordInstanceTable, op.RecordID, map[string]any{
				FieldIssues: op.Annotations,
				FieldNote:   updatedNote,
			})
		case OpDelete:
			err = store.DeleteRecord(ctx, WordInstanceTable, op.RecordID)
		default:
			err = fmt.Errorf("unknown operation %q", op.Type)
		}

		if err != nil {
			logrus.Errorf("annotations: %s for word %d of %s failed: %v", op.Type, target.WordIndex, target.AudioID, err)
			res.Error = err.Error()
		} else {
			res.Success = true
		}
		results = append(results, res)
	}
	return results
}
