// Package annotations keeps the word-instance records of an audio source in sync with the
// annotation list an editor submits for one word.
package annotations

import (
	"slices"
)

type OpType string

const (
	OpCreate OpType = "CREATE"
	OpUpdate OpType = "UPDATE"
	OpDelete OpType = "DELETE"
)

// Existing is the stored word instance for a (audio, word index) position.
type Existing struct {
	RecordID    string
	Annotations []string
}

type Operation struct {
	Type        OpType   `json:"type"`
	RecordID    string   `json:"recordId,omitempty"`
	Annotations []string `json:"annotations,omitempty"`
}

// Reconcile returns the operations that turn existing into desired. At most one operation
// is ever produced; a nil existing with an empty desired list needs nothing.
func Reconcile(existing *Existing, desired []string) []Operation {
	switch {
	case existing == nil && len(desired) > 0:
		return []Operation{{Type: OpCreate, Annotations: desired}}
	case existing == nil:
		return nil
	case len(desired) == 0:
		return []Operation{{Type: OpDelete, RecordID: existing.RecordID}}
	case !SameAnnotations(existing.Annotations, desired):
		return []Operation{{Type: OpUpdate, RecordID: existing.RecordID, Annotations: desired}}
	}
	return nil
}

// SameAnnotations compares two lists as multisets.
func SameAnnotations(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa := slices.Clone(a)
	sb := slices.Clone(b)
	slices.Sort(sa)
	slices.Sort(sb)
	return slices.Equal(sa, sb)
}
