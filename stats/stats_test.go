package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func trialsFor(key, category string, outcomes ...bool) []TrialRecord {
	out := make([]TrialRecord, len(outcomes))
	for i, correct := range outcomes {
		out[i] = TrialRecord{
			ContrastKey: key,
			Category:    category,
			IsCorrect:   correct,
			At:          base.Add(time.Duration(i) * time.Minute),
		}
	}
	return out
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name           string
		correct, total int
		want           int
	}{
		{"zero total", 0, 0, 0},
		{"all correct", 4, 4, 100},
		{"rounds half up", 1, 8, 13},
		{"rounds down", 1, 3, 33},
		{"two thirds", 2, 3, 67},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percent(tt.correct, tt.total))
		})
	}
}

func TestByContrast(t *testing.T) {
	trials := append(
		trialsFor("th_t", CategoryConsonants, true, false, true),
		trialsFor("kit_fleece", CategoryVowels, true)...,
	)

	results := ByContrast(trials)
	require.Len(t, results, 2)

	assert.Equal(t, "kit_fleece", results[0].ContrastKey)
	assert.Equal(t, 100, results[0].Percentage)

	th := results[1]
	assert.Equal(t, "th_t", th.ContrastKey)
	assert.Equal(t, 3, th.TotalTrials)
	assert.Equal(t, 2, th.CorrectTrials)
	assert.Equal(t, 67, th.Percentage)
	assert.Equal(t, base.Add(2*time.Minute), th.LastAttempt)
	assert.Equal(t, CategoryConsonants, th.Category)
}

func TestByContrastEmpty(t *testing.T) {
	assert.Empty(t, ByContrast(nil))
}

func TestWindows(t *testing.T) {
	t.Run("long history splits into distinct windows", func(t *testing.T) {
		outcomes := make([]bool, 0, 60)
		for i := 0; i < 30; i++ {
			outcomes = append(outcomes, i%2 == 0) // 15/30
		}
		for i := 0; i < 30; i++ {
			outcomes = append(outcomes, i != 0) // 29/30
		}
		trials := trialsFor("s_z", CategoryConsonants, outcomes...)
		// ordering must come from timestamps, not input order
		trials[0], trials[59] = trials[59], trials[0]

		got := Windows(trials)
		require.Len(t, got, 1)
		w := got[0]
		assert.Equal(t, 60, w.TotalTrials)
		assert.True(t, w.Sufficient)
		assert.Equal(t, &Window{Total: 30, Correct: 15, Percentage: 50}, w.First)
		assert.Equal(t, &Window{Total: 30, Correct: 29, Percentage: 97}, w.Recent)
		require.NotNil(t, w.Delta)
		assert.Equal(t, 47, *w.Delta)
	})

	t.Run("short history has no comparison", func(t *testing.T) {
		got := Windows(trialsFor("m_n", CategoryConsonants, true, false))
		require.Len(t, got, 1)
		assert.False(t, got[0].Sufficient)
		assert.Equal(t, 50, got[0].Percentage)
		assert.Nil(t, got[0].First)
		assert.Nil(t, got[0].Recent)
		assert.Nil(t, got[0].Delta)
	})

	t.Run("exactly one window of trials is not enough", func(t *testing.T) {
		outcomes := make([]bool, WindowSize)
		got := Windows(trialsFor("m_n", CategoryConsonants, outcomes...))
		require.Len(t, got, 1)
		assert.False(t, got[0].Sufficient)
		assert.Nil(t, got[0].Delta)

		got = Windows(trialsFor("m_n", CategoryConsonants, append(outcomes, true)...))
		require.True(t, got[0].Sufficient)
		assert.Equal(t, &Window{Total: 30, Correct: 0, Percentage: 0}, got[0].First)
		assert.Equal(t, &Window{Total: 30, Correct: 1, Percentage: 3}, got[0].Recent)
		assert.Equal(t, 3, *got[0].Delta)
	})
}

func TestCategorySummary(t *testing.T) {
	results := ByContrast(append(
		trialsFor("kit_fleece", CategoryVowels, true, true, false, false), // 50
		trialsFor("trap_dress", CategoryVowels, true)...,                  // 100
	))

	summary := CategorySummary(results, DefaultCatalog())

	require.NotNil(t, summary.Vowels.Average)
	assert.Equal(t, 75, *summary.Vowels.Average)
	assert.Equal(t, Completion{Completed: 2, Total: 5, Percentage: 40}, summary.Vowels.Completion)
	assert.Equal(t, 5, summary.Vowels.TotalTrials)
	assert.Equal(t, 3, summary.Vowels.CorrectTrials)

	assert.Nil(t, summary.Consonants.Average)
	assert.Equal(t, 0, summary.Consonants.Completion.Completed)
	assert.Equal(t, 11, summary.Consonants.Completion.Total)

	assert.Equal(t, 2, summary.Overall.Completed)
	assert.Equal(t, 16, summary.Overall.Total)
	assert.Equal(t, 13, summary.Overall.Completion)
	require.NotNil(t, summary.Overall.Average)
	assert.Equal(t, 75, *summary.Overall.Average)
}

func TestCategorySummaryNoTrials(t *testing.T) {
	summary := CategorySummary(nil, DefaultCatalog())
	assert.Nil(t, summary.Overall.Average)
	assert.Equal(t, 0, summary.Overall.Completion)
}
