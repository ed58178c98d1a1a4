package airtable

import "encoding/json"

// String returns the string field or "".
func (r Record) String(field string) string {
	s, _ := r.Fields[field].(string)
	return s
}

// Strings returns a multi-select or linked-record field. Missing fields yield nil.
func (r Record) Strings(field string) []string {
	raw, ok := r.Fields[field].([]any)
	if !ok {
		if typed, ok := r.Fields[field].([]string); ok {
			return typed
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Number returns a numeric field and whether it was present.
func (r Record) Number(field string) (float64, bool) {
	return toFloat(r.Fields[field])
}

// Sum adds up a numeric or array-of-numbers field (rollups and lookups return arrays).
// The bool reports whether the field was present at all.
func (r Record) Sum(field string) (float64, bool) {
	v, ok := r.Fields[field]
	if !ok || v == nil {
		return 0, false
	}
	if arr, isArr := v.([]any); isArr {
		total := 0.0
		for _, item := range arr {
			if f, ok := toFloat(item); ok {
				total += f
			}
		}
		return total, true
	}
	return toFloat(v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
