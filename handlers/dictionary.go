package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/andrewpaige1/accent-api/models"
	"github.com/andrewpaige1/accent-api/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Groups and their usages are returned bare, without a wrapping object.

type groupRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	Category    string `json:"category" validate:"max=50"`
	Order       *int   `json:"order"`
}

type usageOrderRequest struct {
	Order *int `json:"order"`
}

// withUsages preloads a group's word usages along with everything a usage card shows.
func withUsages(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Usages.WordUsage.Entry").
		Preload("Usages.WordUsage.Pronunciations").
		Preload("Usages.WordUsage.Examples").
		Preload("Usages.WordUsage.SpellingPatterns")
}

// byOrder sorts on the quoted "order" column, then id for rows sharing an order.
func byOrder(tx *gorm.DB) *gorm.DB {
	return tx.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: "order"}},
		{Column: clause.Column{Name: "id"}},
	}})
}

// decodeOptional decodes a JSON body into dst, leaving dst untouched when there is no body.
func decodeOptional(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// /api/dictionary/lexical-sets

func (db *DBHandler) GetLexicalSets(w http.ResponseWriter, r *http.Request) {
	sets := []models.LexicalSet{}
	if err := db.WithContext(r.Context()).Scopes(withUsages, byOrder).Find(&sets).Error; err != nil {
		logrus.Errorf("GetLexicalSets: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch lexical sets")
		return
	}
	utils.WriteJSON(w, http.StatusOK, sets)
}

func (db *DBHandler) GetLexicalSet(w http.ResponseWriter, r *http.Request) {
	set, ok := db.findLexicalSet(w, r, "GetLexicalSet", withUsages)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, set)
}

func (db *DBHandler) CreateLexicalSet(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	set := models.LexicalSet{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Order:       req.Order,
		Usages:      []models.LexicalSetUsage{},
	}
	if err := db.WithContext(r.Context()).Create(&set).Error; err != nil {
		logrus.Errorf("CreateLexicalSet: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create lexical set")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, set)
}

// UpdateLexicalSet replaces the set's fields; an omitted order clears it.
func (db *DBHandler) UpdateLexicalSet(w http.ResponseWriter, r *http.Request) {
	set, ok := db.findLexicalSet(w, r, "UpdateLexicalSet")
	if !ok {
		return
	}

	var req groupRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	set.Name = req.Name
	set.Description = req.Description
	set.Category = req.Category
	set.Order = req.Order
	if err := db.WithContext(r.Context()).Omit(clause.Associations).Save(&set).Error; err != nil {
		logrus.Errorf("UpdateLexicalSet: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to update lexical set")
		return
	}

	utils.WriteJSON(w, http.StatusOK, set)
}

func (db *DBHandler) DeleteLexicalSet(w http.ResponseWriter, r *http.Request) {
	set, ok := db.findLexicalSet(w, r, "DeleteLexicalSet")
	if !ok {
		return
	}

	err := db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("lexical_set_id = ?", set.ID).Delete(&models.LexicalSetUsage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&set).Error
	})
	if err != nil {
		logrus.Errorf("DeleteLexicalSet: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to delete lexical set")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /api/dictionary/lexical-sets/{lexicalSetID}/usages/{usageID}
func (db *DBHandler) AddUsageToLexicalSet(w http.ResponseWriter, r *http.Request) {
	set, ok := db.findLexicalSet(w, r, "AddUsageToLexicalSet")
	if !ok {
		return
	}
	usage, ok := db.findWordUsage(w, r, "AddUsageToLexicalSet")
	if !ok {
		return
	}

	var req usageOrderRequest
	if err := decodeOptional(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	link := models.LexicalSetUsage{LexicalSetID: set.ID, UsageID: usage.ID, Order: req.Order}
	if err := db.WithContext(r.Context()).Omit(clause.Associations).Create(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.WriteError(w, http.StatusConflict, "Usage already belongs to this lexical set")
			return
		}
		logrus.Errorf("AddUsageToLexicalSet: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to add usage to lexical set")
		return
	}
	link.WordUsage = usage

	utils.WriteJSON(w, http.StatusCreated, link)
}

// DELETE /api/dictionary/lexical-sets/{lexicalSetID}/usages/{usageID}
func (db *DBHandler) RemoveUsageFromLexicalSet(w http.ResponseWriter, r *http.Request) {
	setID, ok := pathUint(r, "lexicalSetID")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid lexical set ID")
		return
	}
	usageID, ok := pathUint(r, "usageID")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid usage ID")
		return
	}

	// Links are hard-deleted so the pair can be added again.
	result := db.WithContext(r.Context()).
		Unscoped().
		Where("lexical_set_id = ? AND usage_id = ?", setID, usageID).
		Delete(&models.LexicalSetUsage{})
	if result.Error != nil {
		logrus.Errorf("RemoveUsageFromLexicalSet: %v", result.Error)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to remove usage from lexical set")
		return
	}
	if result.RowsAffected == 0 {
		utils.WriteError(w, http.StatusNotFound, "Lexical set usage not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// /api/dictionary/consonant-phonemes

func (db *DBHandler) GetConsonantPhonemes(w http.ResponseWriter, r *http.Request) {
	phonemes := []models.ConsonantPhoneme{}
	if err := db.WithContext(r.Context()).Scopes(withUsages, byOrder).Find(&phonemes).Error; err != nil {
		logrus.Errorf("GetConsonantPhonemes: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch consonant phonemes")
		return
	}
	utils.WriteJSON(w, http.StatusOK, phonemes)
}

func (db *DBHandler) GetConsonantPhoneme(w http.ResponseWriter, r *http.Request) {
	phoneme, ok := db.findConsonantPhoneme(w, r, "GetConsonantPhoneme", withUsages)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, phoneme)
}

func (db *DBHandler) CreateConsonantPhoneme(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	phoneme := models.ConsonantPhoneme{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Order:       req.Order,
		Usages:      []models.ConsonantPhonemeUsage{},
	}
	if err := db.WithContext(r.Context()).Create(&phoneme).Error; err != nil {
		logrus.Errorf("CreateConsonantPhoneme: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create consonant phoneme")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, phoneme)
}

func (db *DBHandler) UpdateConsonantPhoneme(w http.ResponseWriter, r *http.Request) {
	phoneme, ok := db.findConsonantPhoneme(w, r, "UpdateConsonantPhoneme")
	if !ok {
		return
	}

	var req groupRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	phoneme.Name = req.Name
	phoneme.Description = req.Description
	phoneme.Category = req.Category
	phoneme.Order = req.Order
	if err := db.WithContext(r.Context()).Omit(clause.Associations).Save(&phoneme).Error; err != nil {
		logrus.Errorf("UpdateConsonantPhoneme: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to update consonant phoneme")
		return
	}

	utils.WriteJSON(w, http.StatusOK, phoneme)
}

func (db *DBHandler) DeleteConsonantPhoneme(w http.ResponseWriter, r *http.Request) {
	phoneme, ok := db.findConsonantPhoneme(w, r, "DeleteConsonantPhoneme")
	if !ok {
		return
	}

	err := db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("consonant_phoneme_id = ?", phoneme.ID).Delete(&models.ConsonantPhonemeUsage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&phoneme).Error
	})
	if err != nil {
		logrus.Errorf("DeleteConsonantPhoneme: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to delete consonant phoneme")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /api/dictionary/consonant-phonemes/{phonemeID}/usages/{usageID}
func (db *DBHandler) AddUsageToConsonantPhoneme(w http.ResponseWriter, r *http.Request) {
	phoneme, ok := db.findConsonantPhoneme(w, r, "AddUsageToConsonantPhoneme")
	if !ok {
		return
	}
	usage, ok := db.findWordUsage(w, r, "AddUsageToConsonantPhoneme")
	if !ok {
		return
	}

	var req usageOrderRequest
	if err := decodeOptional(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	link := models.ConsonantPhonemeUsage{ConsonantPhonemeID: phoneme.ID, UsageID: usage.ID, Order: req.Order}
	if err := db.WithContext(r.Context()).Omit(clause.Associations).Create(&link).Error; err != nil {
		logrus.Errorf("AddUsageToConsonantPhoneme: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to add usage to consonant phoneme")
		return
	}
	link.WordUsage = usage

	utils.WriteJSON(w, http.StatusCreated, link)
}

func (db *DBHandler) findLexicalSet(w http.ResponseWriter, r *http.Request, op string, scopes ...func(*gorm.DB) *gorm.DB) (models.LexicalSet, bool) {
	var set models.LexicalSet
	id, ok := pathUint(r, "lexicalSetID")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid lexical set ID")
		return set, false
	}
	err := db.WithContext(r.Context()).Scopes(scopes...).First(&set, id).Error
	return set, db.found(w, err, op, "Lexical set not found")
}

func (db *DBHandler) findConsonantPhoneme(w http.ResponseWriter, r *http.Request, op string, scopes ...func(*gorm.DB) *gorm.DB) (models.ConsonantPhoneme, bool) {
	var phoneme models.ConsonantPhoneme
	id, ok := pathUint(r, "phonemeID")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid consonant phoneme ID")
		return phoneme, false
	}
	err := db.WithContext(r.Context()).Scopes(scopes...).First(&phoneme, id).Error
	return phoneme, db.found(w, err, op, "Consonant phoneme not found")
}

func (db *DBHandler) findWordUsage(w http.ResponseWriter, r *http.Request, op string) (models.WordUsage, bool) {
	var usage models.WordUsage
	id, ok := pathUint(r, "usageID")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid usage ID")
		return usage, false
	}
	err := db.WithContext(r.Context()).Preload("Entry").First(&usage, id).Error
	return usage, db.found(w, err, op, "Word usage not found")
}

// found reports whether a lookup succeeded, writing a 404 or 500 when it did not.
func (db *DBHandler) found(w http.ResponseWriter, err error, op, notFound string) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.WriteError(w, http.StatusNotFound, notFound)
	default:
		logrus.Errorf("%s: %v", op, err)
		utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
	return false
}
