package handlers

import (
	"errors"
	"net/http"

	"github.com/andrewpaige1/accent-api/models"
	"github.com/andrewpaige1/accent-api/utils"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// POST /api/admin/contrasts

type createContrastRequest struct {
	Key          string `json:"key" validate:"required,max=100"`
	Name         string `json:"name" validate:"required,max=100"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Category     string `json:"category" validate:"required,oneof=vowels consonants"`
	SoundAName   string `json:"soundAName"`
	SoundBName   string `json:"soundBName"`
	SoundASymbol string `json:"soundASymbol"`
	SoundBSymbol string `json:"soundBSymbol"`
	Active       *bool  `json:"active"`
}

func (db *DBHandler) CreateContrast(w http.ResponseWriter, r *http.Request) {
	var req createContrastRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	contrast := models.Contrast{
		Key:          req.Key,
		Name:         req.Name,
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		SoundAName:   req.SoundAName,
		SoundBName:   req.SoundBName,
		SoundASymbol: req.SoundASymbol,
		SoundBSymbol: req.SoundBSymbol,
		Active:       true,
	}
	err := createOrRestore(db.WithContext(r.Context()), &contrast, &contrast.Model, &models.Contrast{Key: req.Key})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.WriteError(w, http.StatusConflict, "Contrast key already exists")
			return
		}
		logrus.Errorf("CreateContrast: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create contrast")
		return
	}
	// Active has a column default, so false has to be written explicitly.
	if req.Active != nil && !*req.Active {
		if err := db.WithContext(r.Context()).Model(&contrast).Update("active", false).Error; err != nil {
			logrus.Errorf("CreateContrast: %v", err)
			utils.WriteError(w, http.StatusInternalServerError, "Failed to create contrast")
			return
		}
	}

	logrus.Infof("CreateContrast: created contrast %s", contrast.Key)
	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{"contrast": contrast})
}

// PATCH /api/admin/contrasts/{key}

type updateContrastRequest struct {
	Name         *string `json:"name" validate:"omitnil,min=1,max=100"`
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Category     *string `json:"category" validate:"omitnil,oneof=vowels consonants"`
	SoundAName   *string `json:"soundAName"`
	SoundBName   *string `json:"soundBName"`
	SoundASymbol *string `json:"soundASymbol"`
	SoundBSymbol *string `json:"soundBSymbol"`
	Active       *bool   `json:"active"`
}

func (req updateContrastRequest) changes() map[string]interface{} {
	updates := map[string]interface{}{}
	set := func(column string, value interface{}, present bool) {
		if present {
			updates[column] = value
		}
	}
	set("name", lo.FromPtr(req.Name), req.Name != nil)
	set("title", lo.FromPtr(req.Title), req.Title != nil)
	set("description", lo.FromPtr(req.Description), req.Description != nil)
	set("category", lo.FromPtr(req.Category), req.Category != nil)
	set("sound_a_name", lo.FromPtr(req.SoundAName), req.SoundAName != nil)
	set("sound_b_name", lo.FromPtr(req.SoundBName), req.SoundBName != nil)
	set("sound_a_symbol", lo.FromPtr(req.SoundASymbol), req.SoundASymbol != nil)
	set("sound_b_symbol", lo.FromPtr(req.SoundBSymbol), req.SoundBSymbol != nil)
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	return updates
}

func (db *DBHandler) UpdateContrast(w http.ResponseWriter, r *http.Request) {
	contrast, ok := db.findContrast(w, r, "UpdateContrast")
	if !ok {
		return
	}

	var req updateContrastRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if updates := req.changes(); len(updates) > 0 {
		tx := db.WithContext(r.Context())
		if err := tx.Model(&contrast).Updates(updates).Error; err != nil {
			logrus.Errorf("UpdateContrast: %v", err)
			utils.WriteError(w, http.StatusInternalServerError, "Failed to update contrast")
			return
		}
		if err := tx.First(&contrast, contrast.ID).Error; err != nil {
			logrus.Errorf("UpdateContrast: %v", err)
			utils.WriteError(w, http.StatusInternalServerError, "Failed to update contrast")
			return
		}
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"contrast": contrast})
}

// DELETE /api/admin/contrasts/{key}
func (db *DBHandler) DeleteContrast(w http.ResponseWriter, r *http.Request) {
	contrast, ok := db.findContrast(w, r, "DeleteContrast")
	if !ok {
		return
	}

	err := db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contrast_id = ?", contrast.ID).Delete(&models.Pair{}).Error; err != nil {
			return err
		}
		return tx.Delete(&contrast).Error
	})
	if err != nil {
		logrus.Errorf("DeleteContrast: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to delete contrast")
		return
	}

	logrus.Infof("DeleteContrast: deleted contrast %s", contrast.Key)
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/admin/contrasts/{key}/pairs

type createPairRequest struct {
	PairID     string `json:"pairId" validate:"omitempty,max=100"`
	WordA      string `json:"wordA" validate:"required,max=100"`
	WordB      string `json:"wordB" validate:"required,max=100"`
	AlternateA string `json:"alternateA"`
	AlternateB string `json:"alternateB"`
	AudioAURL  string `json:"audioAUrl" validate:"omitempty,url"`
	AudioBURL  string `json:"audioBUrl" validate:"omitempty,url"`
}

func (db *DBHandler) CreatePair(w http.ResponseWriter, r *http.Request) {
	contrast, ok := db.findContrast(w, r, "CreatePair")
	if !ok {
		return
	}

	var req createPairRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	pairID := req.PairID
	if pairID == "" {
		generated, err := gonanoid.New()
		if err != nil {
			logrus.Errorf("CreatePair: failed to generate pair id: %v", err)
			utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		pairID = generated
	}

	pair := models.Pair{
		PairID:     pairID,
		ContrastID: contrast.ID,
		WordA:      req.WordA,
		WordB:      req.WordB,
		AlternateA: req.AlternateA,
		AlternateB: req.AlternateB,
		AudioAURL:  req.AudioAURL,
		AudioBURL:  req.AudioBURL,
		Active:     true,
	}
	err := createOrRestore(db.WithContext(r.Context()), &pair, &pair.Model, &models.Pair{PairID: pairID})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.WriteError(w, http.StatusConflict, "Pair id already exists")
			return
		}
		logrus.Errorf("CreatePair: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create pair")
		return
	}

	logrus.Infof("CreatePair: created pair %s for contrast %s", pair.PairID, contrast.Key)
	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{"pair": pair})
}

// PATCH /api/admin/pairs/{pairID}

type updatePairRequest struct {
	WordA      *string `json:"wordA" validate:"omitnil,min=1,max=100"`
	WordB      *string `json:"wordB" validate:"omitnil,min=1,max=100"`
	AlternateA *string `json:"alternateA"`
	AlternateB *string `json:"alternateB"`
	AudioAURL  *string `json:"audioAUrl"`
	AudioBURL  *string `json:"audioBUrl"`
	Active     *bool   `json:"active"`
}

func (db *DBHandler) UpdatePair(w http.ResponseWriter, r *http.Request) {
	pair, ok := db.findPair(w, r, "UpdatePair")
	if !ok {
		return
	}

	var req updatePairRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	updates := map[string]interface{}{}
	for column, value := range map[string]*string{
		"word_a":      req.WordA,
		"word_b":      req.WordB,
		"alternate_a": req.AlternateA,
		"alternate_b": req.AlternateB,
		"audio_a_url": req.AudioAURL,
		"audio_b_url": req.AudioBURL,
	} {
		if value != nil {
			updates[column] = *value
		}
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) > 0 {
		tx := db.WithContext(r.Context())
		if err := tx.Model(&pair).Updates(updates).Error; err != nil {
			logrus.Errorf("UpdatePair: %v", err)
			utils.WriteError(w, http.StatusInternalServerError, "Failed to update pair")
			return
		}
		if err := tx.First(&pair, pair.ID).Error; err != nil {
			logrus.Errorf("UpdatePair: %v", err)
			utils.WriteError(w, http.StatusInternalServerError, "Failed to update pair")
			return
		}
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"pair": pair})
}

// DELETE /api/admin/pairs/{pairID}
func (db *DBHandler) DeletePair(w http.ResponseWriter, r *http.Request) {
	pair, ok := db.findPair(w, r, "DeletePair")
	if !ok {
		return
	}

	if err := db.WithContext(r.Context()).Delete(&pair).Error; err != nil {
		logrus.Errorf("DeletePair: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to delete pair")
		return
	}

	logrus.Infof("DeletePair: deleted pair %s", pair.PairID)
	w.WriteHeader(http.StatusNoContent)
}

func (db *DBHandler) findContrast(w http.ResponseWriter, r *http.Request, op string) (models.Contrast, bool) {
	var contrast models.Contrast
	err := db.WithContext(r.Context()).Where(&models.Contrast{Key: r.PathValue("key")}).First(&contrast).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.WriteError(w, http.StatusNotFound, "Contrast not found")
		return contrast, false
	case err != nil:
		logrus.Errorf("%s: %v", op, err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch contrast")
		return contrast, false
	}
	return contrast, true
}

func (db *DBHandler) findPair(w http.ResponseWriter, r *http.Request, op string) (models.Pair, bool) {
	var pair models.Pair
	err := db.WithContext(r.Context()).Where(&models.Pair{PairID: r.PathValue("pairID")}).First(&pair).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.WriteError(w, http.StatusNotFound, "Pair not found")
		return pair, false
	case err != nil:
		logrus.Errorf("%s: %v", op, err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch pair")
		return pair, false
	}
	return pair, true
}

