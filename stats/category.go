package stats

import (
	"math"

	"github.com/samber/lo"
)

const (
	CategoryVowels     = "vowels"
	CategoryConsonants = "consonants"
)

// Catalog maps a category to the contrast keys available in it.
type Catalog map[string][]string

// DefaultCatalog is the built-in quiz line-up, used when the database has no active contrasts.
func DefaultCatalog() Catalog {
	return Catalog{
		CategoryVowels: {"kit_fleece", "trap_dress", "ban_dress", "foot_goose", "strut_lot"},
		CategoryConsonants: {
			"dh_d", "th_t", "th_f", "r_null", "t_ch", "dark_l_o",
			"dark_l_u", "s_z", "m_n", "n_ng", "m_ng",
		},
	}
}

type Completion struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

type CategoryStats struct {
	Completion    Completion `json:"completion"`
	Average       *int       `json:"average"`
	TotalTrials   int        `json:"totalTrials"`
	CorrectTrials int        `json:"correctTrials"`
}

type OverallStats struct {
	Completed     int  `json:"completed"`
	Total         int  `json:"total"`
	Completion    int  `json:"completion"`
	Average       *int `json:"average"`
	TotalTrials   int  `json:"totalTrials"`
	CorrectTrials int  `json:"correctTrials"`
}

type Summary struct {
	Vowels     CategoryStats `json:"vowels"`
	Consonants CategoryStats `json:"consonants"`
	Overall    OverallStats  `json:"overall"`
}

// CategorySummary rolls per-contrast results up into vowel, consonant and overall figures.
// Averages are the rounded mean of per-contrast percentages and nil when nothing was attempted.
func CategorySummary(results []ContrastResult, catalog Catalog) Summary {
	byKey := lo.KeyBy(results, func(r ContrastResult) string { return r.ContrastKey })

	vowels := categoryStats(catalog[CategoryVowels], byKey)
	consonants := categoryStats(catalog[CategoryConsonants], byKey)

	completed := vowels.Completion.Completed + consonants.Completion.Completed
	total := vowels.Completion.Total + consonants.Completion.Total

	return Summary{
		Vowels:     vowels,
		Consonants: consonants,
		Overall: OverallStats{
			Completed:     completed,
			Total:         total,
			Completion:    Percent(completed, total),
			Average:       meanPercentage(results),
			TotalTrials:   lo.SumBy(results, func(r ContrastResult) int { return r.TotalTrials }),
			CorrectTrials: lo.SumBy(results, func(r ContrastResult) int { return r.CorrectTrials }),
		},
	}
}

func categoryStats(keys []string, byKey map[string]ContrastResult) CategoryStats {
	attempted := lo.FilterMap(keys, func(key string, _ int) (ContrastResult, bool) {
		r, ok := byKey[key]
		return r, ok
	})

	return CategoryStats{
		Completion: Completion{
			Completed:  len(attempted),
			Total:      len(keys),
			Percentage: Percent(len(attempted), len(keys)),
		},
		Average:       meanPercentage(attempted),
		TotalTrials:   lo.SumBy(attempted, func(r ContrastResult) int { return r.TotalTrials }),
		CorrectTrials: lo.SumBy(attempted, func(r ContrastResult) int { return r.CorrectTrials }),
	}
}

func meanPercentage(results []ContrastResult) *int {
	if len(results) == 0 {
		return nil
	}
	sum := lo.SumBy(results, func(r ContrastResult) int { return r.Percentage })
	avg := int(math.Round(float64(sum) / float64(len(results))))
	return &avg
}
