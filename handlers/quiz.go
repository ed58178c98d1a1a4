package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/andrewpaige1/accent-api/models"
	"github.com/andrewpaige1/accent-api/stats"
	"github.com/andrewpaige1/accent-api/utils"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type contrastSummary struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	SoundAName   string `json:"soundAName"`
	SoundBName   string `json:"soundBName"`
	SoundASymbol string `json:"soundASymbol"`
	SoundBSymbol string `json:"soundBSymbol"`
	PairCount    int64  `json:"pairCount"`
}

func (db *DBHandler) GetContrasts(w http.ResponseWriter, r *http.Request) {
	contrasts := []contrastSummary{}
	err := db.WithContext(r.Context()).
		Model(&models.Contrast{}).
		Select("contrasts.key, contrasts.name, contrasts.title, contrasts.description, contrasts.category, " +
			"contrasts.sound_a_name, contrasts.sound_b_name, contrasts.sound_a_symbol, contrasts.sound_b_symbol, " +
			"(SELECT COUNT(*) FROM pairs WHERE pairs.contrast_id = contrasts.id AND pairs.deleted_at IS NULL) AS pair_count").
		Where("contrasts.active = ?", true).
		Order("contrasts.name asc").
		Scan(&contrasts).Error
	if err != nil {
		logrus.Errorf("GetContrasts: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch contrasts")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"contrasts": contrasts})
}

func (db *DBHandler) GetPairs(w http.ResponseWriter, r *http.Request) {
	contrastKey := r.URL.Query().Get("contrastKey")
	if contrastKey == "" {
		utils.WriteError(w, http.StatusBadRequest, "contrastKey is required")
		return
	}

	var contrast models.Contrast
	if err := db.WithContext(r.Context()).Where(&models.Contrast{Key: contrastKey}).First(&contrast).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Contrast not found")
			return
		}
		logrus.Errorf("GetPairs: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch pairs")
		return
	}

	pairs := []models.Pair{}
	if err := db.WithContext(r.Context()).Where("contrast_id = ? AND active = ?", contrast.ID, true).Order("id asc").Find(&pairs).Error; err != nil {
		logrus.Errorf("GetPairs: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch pairs")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"contrast": contrast.Name,
		"pairs":    pairs,
	})
}

type trialRequest struct {
	TrialID       string     `json:"trialId" validate:"required"`
	PairID        string     `json:"pairId" validate:"required"`
	PresentedSide string     `json:"presentedSide" validate:"required"`
	ChoiceSide    string     `json:"choiceSide" validate:"required"`
	IsCorrect     *bool      `json:"isCorrect" validate:"required"`
	PresentedAt   *time.Time `json:"presentedAt"`
	RespondedAt   *time.Time `json:"respondedAt"`
	LatencyMs     int        `json:"latencyMs" validate:"gte=0"`
}

// CreateTrial records one quiz answer for the authenticated user. The user always
// comes from the session; a userId in the body is ignored.
func (db *DBHandler) CreateTrial(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req trialRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx := db.WithContext(r.Context())

	var pair models.Pair
	if err := tx.Where("pair_id = ?", req.PairID).First(&pair).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusBadRequest, "Invalid pairId: pair not found")
			return
		}
		logrus.Errorf("CreateTrial: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to save trial")
		return
	}

	var existing int64
	if err := tx.Model(&models.Trial{}).Where("trial_id = ?", req.TrialID).Count(&existing).Error; err != nil {
		logrus.Errorf("CreateTrial: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to save trial")
		return
	}
	if existing > 0 {
		utils.WriteError(w, http.StatusConflict, "Trial with this ID already exists")
		return
	}

	now := time.Now().UTC()
	trial := models.Trial{
		TrialID:       req.TrialID,
		UserID:        user.ID,
		PairID:        req.PairID,
		PresentedSide: req.PresentedSide,
		ChoiceSide:    req.ChoiceSide,
		IsCorrect:     *req.IsCorrect,
		PresentedAt:   lo.FromPtrOr(req.PresentedAt, now),
		RespondedAt:   lo.FromPtrOr(req.RespondedAt, now),
		LatencyMs:     req.LatencyMs,
	}

	// A concurrent replay can still lose the race and hit the primary key.
	if err := tx.Omit(clause.Associations).Create(&trial).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.WriteError(w, http.StatusConflict, "Trial with this ID already exists")
			return
		}
		logrus.Errorf("CreateTrial: failed to save trial %s: %v", req.TrialID, err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to save trial")
		return
	}

	if err := tx.Scopes(withTrialPair).First(&trial, "trial_id = ?", trial.TrialID).Error; err != nil {
		logrus.Errorf("CreateTrial: failed to reload trial %s: %v", trial.TrialID, err)
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Trial saved successfully",
		"trial":   trial,
	})
}

func (db *DBHandler) GetTrials(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	trials := []models.Trial{}
	err := db.WithContext(r.Context()).
		Scopes(withTrialPair).
		Where("user_id = ?", user.ID).
		Order("presented_at desc").
		Limit(queryInt(r, "limit", 50)).
		Find(&trials).Error
	if err != nil {
		logrus.Errorf("GetTrials: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch trials")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"trials": trials})
}

// GetResults returns per-contrast totals keyed by contrast key.
func (db *DBHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	records, err := db.trialRecords(r, user.ID)
	if err != nil {
		logrus.Errorf("GetResults: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch quiz results")
		return
	}

	results := lo.KeyBy(stats.ByContrast(records), func(c stats.ContrastResult) string { return c.ContrastKey })
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (db *DBHandler) GetQuizStats(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	records, err := db.trialRecords(r, user.ID)
	if err != nil {
		logrus.Errorf("GetQuizStats: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch quiz stats")
		return
	}
	catalog, err := db.catalog(r)
	if err != nil {
		logrus.Errorf("GetQuizStats: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch quiz stats")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"stats": stats.CategorySummary(stats.ByContrast(records), catalog),
	})
}

func (db *DBHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var settings models.UserSettings
	err := db.WithContext(r.Context()).Where("user_id = ?", user.ID).First(&settings).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"settings": models.DefaultQuizSettings()})
	case err != nil:
		logrus.Errorf("GetSettings: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch quiz settings")
	default:
		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"settings": settings.QuizSettings})
	}
}

func (db *DBHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req struct {
		Settings map[string]interface{} `json:"settings" validate:"required"`
	}
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Settings data is required")
		return
	}

	raw, err := json.Marshal(req.Settings)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Settings data is required")
		return
	}

	settings := models.UserSettings{UserID: user.ID, QuizSettings: datatypes.JSON(raw)}
	err = db.WithContext(r.Context()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quiz_settings", "updated_at"}),
	}).Create(&settings).Error
	if err != nil {
		logrus.Errorf("SaveSettings: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to save quiz settings")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"settings": settings.QuizSettings})
}
