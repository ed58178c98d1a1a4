package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/andrewpaige1/accent-api/models"
	"github.com/andrewpaige1/accent-api/stats"
	"github.com/andrewpaige1/accent-api/utils"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type userActivity struct {
	ID         uint       `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	TrialCount int64      `json:"trialCount"`
	LastActive *time.Time `json:"lastActive"`
}

func (db *DBHandler) GetUsersQuizActivity(w http.ResponseWriter, r *http.Request) {
	type row struct {
		ID         uint
		Email      string
		Name       string
		TrialCount int64
	}
	var rows []row
	err := db.WithContext(r.Context()).
		Model(&models.User{}).
		Select("users.id, users.email, users.name, COUNT(trials.trial_id) AS trial_count").
		Joins("JOIN trials ON trials.user_id = users.id").
		Group("users.id, users.email, users.name").
		Order("trial_count desc").
		Scan(&rows).Error
	if err != nil {
		logrus.Errorf("GetUsersQuizActivity: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}

	// MAX(presented_at) scans inconsistently across drivers, so the latest trial is read per user.
	users := make([]userActivity, 0, len(rows))
	for _, u := range rows {
		var last models.Trial
		activity := userActivity{ID: u.ID, Email: u.Email, Name: u.Name, TrialCount: u.TrialCount}
		if err := db.WithContext(r.Context()).Where("user_id = ?", u.ID).Order("presented_at desc").Take(&last).Error; err == nil {
			activity.LastActive = &last.PresentedAt
		}
		users = append(users, activity)
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

type adminTrial struct {
	ID            string    `json:"id"`
	TrialID       string    `json:"trialId"`
	PairID        string    `json:"pairId"`
	PresentedSide string    `json:"presentedSide"`
	ChoiceSide    string    `json:"choiceSide"`
	IsCorrect     bool      `json:"isCorrect"`
	CreatedAt     time.Time `json:"createdAt"`
	WordA         string    `json:"wordA"`
	WordB         string    `json:"wordB"`
	ContrastName  string    `json:"contrastName"`
}

func (db *DBHandler) GetUserTrials(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUint(r, "userID")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var trials []models.Trial
	err := db.WithContext(r.Context()).
		Scopes(withTrialPair).
		Where("user_id = ?", userID).
		Order("presented_at desc").
		Limit(queryInt(r, "limit", 100)).
		Offset(queryInt(r, "offset", 0)).
		Find(&trials).Error
	if err != nil {
		logrus.Errorf("GetUserTrials: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch user trials")
		return
	}

	formatted := lo.Map(trials, func(t models.Trial, _ int) adminTrial {
		out := adminTrial{
			ID:            t.TrialID,
			TrialID:       t.TrialID,
			PairID:        t.PairID,
			PresentedSide: t.PresentedSide,
			ChoiceSide:    t.ChoiceSide,
			IsCorrect:     t.IsCorrect,
			CreatedAt:     t.PresentedAt,
			WordA:         t.Pair.WordA,
			WordB:         t.Pair.WordB,
		}
		if t.Pair.Contrast != nil {
			out.ContrastName = t.Pair.Contrast.Name
		}
		return out
	})

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"trials": formatted})
}

type categoryTotals struct {
	Total     int `json:"total"`
	Correct   int `json:"correct"`
	Average   int `json:"average"`
	Completed int `json:"completed"`
	Available int `json:"available"`
}

// GetUserStats summarises one user's accuracy and contrast coverage.
func (db *DBHandler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUint(r, "userID")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	records, err := db.trialRecords(r, userID)
	if err != nil {
		logrus.Errorf("GetUserStats: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch user stats")
		return
	}

	type activeCount struct {
		Category string
		Count    int
	}
	var counts []activeCount
	err = db.WithContext(r.Context()).
		Model(&models.Contrast{}).
		Select("category, COUNT(*) AS count").
		Where("active = ?", true).
		Group("category").
		Scan(&counts).Error
	if err != nil {
		logrus.Errorf("GetUserStats: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch user stats")
		return
	}
	available := lo.SliceToMap(counts, func(c activeCount) (string, int) { return c.Category, c.Count })

	totals := func(subset []stats.TrialRecord, category string) categoryTotals {
		correct := lo.CountBy(subset, func(t stats.TrialRecord) bool { return t.IsCorrect })
		contrasts := lo.Uniq(lo.Map(subset, func(t stats.TrialRecord, _ int) string { return t.ContrastKey }))
		out := categoryTotals{
			Total:     len(subset),
			Correct:   correct,
			Average:   stats.Percent(correct, len(subset)),
			Completed: len(contrasts),
		}
		if category == "" {
			out.Available = lo.Sum(lo.Values(available))
		} else {
			out.Available = available[category]
		}
		return out
	}
	inCategory := func(category string) []stats.TrialRecord {
		return lo.Filter(records, func(t stats.TrialRecord, _ int) bool { return t.Category == category })
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"stats": map[string]categoryTotals{
			"overall":    totals(records, ""),
			"vowels":     totals(inCategory(models.CategoryVowels), models.CategoryVowels),
			"consonants": totals(inCategory(models.CategoryConsonants), models.CategoryConsonants),
		},
	})
}

func (db *DBHandler) GetUserWindows(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUint(r, "userID")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	records, err := db.trialRecords(r, userID)
	if err != nil {
		logrus.Errorf("GetUserWindows: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch user trials")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"windows": stats.Windows(records)})
}

type contrastActivity struct {
	ContrastName string `json:"contrastName"`
	TrialCount   int64  `json:"trialCount"`
}

func (db *DBHandler) GetAdminOverview(w http.ResponseWriter, r *http.Request) {
	ctx := db.WithContext(r.Context())
	sevenDaysAgo := time.Now().UTC().AddDate(0, 0, -7)

	var totalUsers, totalTrials, correctTrials, recentTrials, recentUsers int64
	queries := []struct {
		name string
		run  func() error
	}{
		{"total users", func() error {
			return ctx.Model(&models.Trial{}).Distinct("user_id").Count(&totalUsers).Error
		}},
		{"total trials", func() error { return ctx.Model(&models.Trial{}).Count(&totalTrials).Error }},
		{"correct trials", func() error {
			return ctx.Model(&models.Trial{}).Where("is_correct = ?", true).Count(&correctTrials).Error
		}},
		{"recent trials", func() error {
			return ctx.Model(&models.Trial{}).Where("presented_at >= ?", sevenDaysAgo).Count(&recentTrials).Error
		}},
		{"recent users", func() error {
			return ctx.Model(&models.Trial{}).Where("presented_at >= ?", sevenDaysAgo).Distinct("user_id").Count(&recentUsers).Error
		}},
	}
	for _, q := range queries {
		if err := q.run(); err != nil {
			logrus.Errorf("GetAdminOverview: %s: %v", q.name, err)
			utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch admin overview")
			return
		}
	}

	top := []contrastActivity{}
	err := ctx.Model(&models.Trial{}).
		Select("contrasts.name AS contrast_name, COUNT(trials.trial_id) AS trial_count").
		Joins("JOIN pairs ON pairs.pair_id = trials.pair_id").
		Joins("JOIN contrasts ON contrasts.id = pairs.contrast_id").
		Group("contrasts.id, contrasts.name").
		Order("trial_count desc").
		Limit(10).
		Scan(&top).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.Errorf("GetAdminOverview: top contrasts: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch admin overview")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"overview": map[string]interface{}{
			"totalUsers":      totalUsers,
			"totalTrials":     totalTrials,
			"overallAccuracy": stats.Percent(int(correctTrials), int(totalTrials)),
			"recentActivity": map[string]int64{
				"trials":   recentTrials,
				"newUsers": recentUsers,
			},
			"topContrasts": top,
		},
	})
}
