package airtable

import (
	"fmt"
	"strings"
)

// Quote renders s as an Airtable formula string literal.
func Quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// FieldEquals builds {field} = "value".
func FieldEquals(field, value string) string {
	return fmt.Sprintf("{%s} = %s", field, Quote(value))
}

// FieldEqualsNumber builds {field} = n.
func FieldEqualsNumber(field string, n int) string {
	return fmt.Sprintf("{%s} = %d", field, n)
}

func And(clauses ...string) string {
	switch len(clauses) {
	case 0:
		return ""
	case 1:
		return clauses[0]
	}
	return "AND(" + strings.Join(clauses, ", ") + ")"
}

func Or(clauses ...string) string {
	switch len(clauses) {
	case 0:
		return ""
	case 1:
		return clauses[0]
	}
	return "OR(" + strings.Join(clauses, ", ") + ")"
}

// RecordIDIn matches any of the given record ids.
func RecordIDIn(ids []string) string {
	clauses := make([]string, len(ids))
	for i, id := range ids {
		clauses[i] = "RECORD_ID() = " + Quote(id)
	}
	return Or(clauses...)
}
