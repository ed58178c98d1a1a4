// Package stats aggregates recorded quiz trials into per-contrast and per-category results.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/samber/lo"
)

// WindowSize is the number of trials in the first and most recent windows.
const WindowSize = 30

// TrialRecord is the minimal view of a trial the aggregations need.
type TrialRecord struct {
	ContrastKey  string
	ContrastName string
	Category     string
	IsCorrect    bool
	At           time.Time
}

type ContrastResult struct {
	ContrastKey   string    `json:"contrastKey"`
	ContrastName  string    `json:"contrastName"`
	Category      string    `json:"category"`
	TotalTrials   int       `json:"totalTrials"`
	CorrectTrials int       `json:"correctTrials"`
	Percentage    int       `json:"percentage"`
	LastAttempt   time.Time `json:"lastAttempt"`
}

type Window struct {
	Total      int `json:"total"`
	Correct    int `json:"correct"`
	Percentage int `json:"percentage"`
}

// ContrastWindows compares early and recent accuracy for one contrast. First, Recent and
// Delta are nil until the contrast has more than WindowSize trials.
type ContrastWindows struct {
	ContrastKey string  `json:"contrastKey"`
	TotalTrials int     `json:"totalTrials"`
	Percentage  int     `json:"percentage"`
	Sufficient  bool    `json:"sufficient"`
	First       *Window `json:"first30"`
	Recent      *Window `json:"last30"`
	Delta       *int    `json:"delta"`
}

// Percent returns round(correct/total*100), or 0 when total is 0.
func Percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) * 100 / float64(total)))
}

// ByContrast groups trials by contrast key. Results are ordered by key.
func ByContrast(trials []TrialRecord) []ContrastResult {
	grouped := lo.GroupBy(trials, func(t TrialRecord) string { return t.ContrastKey })

	results := make([]ContrastResult, 0, len(grouped))
	for key, group := range grouped {
		correct := lo.CountBy(group, func(t TrialRecord) bool { return t.IsCorrect })
		last := lo.MaxBy(group, func(a, b TrialRecord) bool { return a.At.After(b.At) })
		results = append(results, ContrastResult{
			ContrastKey:   key,
			ContrastName:  group[0].ContrastName,
			Category:      group[0].Category,
			TotalTrials:   len(group),
			CorrectTrials: correct,
			Percentage:    Percent(correct, len(group)),
			LastAttempt:   last.At,
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].ContrastKey < results[j].ContrastKey })
	return results
}

// Windows compares the first WindowSize trials of each contrast with the most recent
// WindowSize. Contrasts with WindowSize trials or fewer only report their overall percentage.
// Between WindowSize+1 and 2*WindowSize trials the windows overlap.
func Windows(trials []TrialRecord) []ContrastWindows {
	grouped := lo.GroupBy(trials, func(t TrialRecord) string { return t.ContrastKey })

	out := make([]ContrastWindows, 0, len(grouped))
	for key, group := range grouped {
		ordered := append([]TrialRecord(nil), group...)
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].At.Before(ordered[j].At) })

		cw := ContrastWindows{
			ContrastKey: key,
			TotalTrials: len(ordered),
			Percentage:  window(ordered).Percentage,
		}
		if len(ordered) > WindowSize {
			first := window(ordered[:WindowSize])
			recent := window(ordered[len(ordered)-WindowSize:])
			cw.Sufficient = true
			cw.First, cw.Recent = &first, &recent
			cw.Delta = lo.ToPtr(recent.Percentage - first.Percentage)
		}
		out = append(out, cw)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ContrastKey < out[j].ContrastKey })
	return out
}

func window(trials []TrialRecord) Window {
	correct := lo.CountBy(trials, func(t TrialRecord) bool { return t.IsCorrect })
	return Window{Total: len(trials), Correct: correct, Percentage: Percent(correct, len(trials))}
}
