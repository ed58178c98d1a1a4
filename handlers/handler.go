package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/andrewpaige1/accent-api/models"
	"github.com/andrewpaige1/accent-api/stats"
	"gorm.io/gorm"
)

type DBHandler struct {
	*gorm.DB
}

// queryInt reads a non-negative integer query parameter, falling back to def.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func pathUint(r *http.Request, name string) (uint, bool) {
	n, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// trialRecords loads a user's trials with their contrast, oldest first.
func (db *DBHandler) trialRecords(r *http.Request, userID uint) ([]stats.TrialRecord, error) {
	var trials []models.Trial
	err := db.WithContext(r.Context()).
		Scopes(withTrialPair).
		Where("user_id = ?", userID).
		Order("presented_at asc").
		Find(&trials).Error
	if err != nil {
		return nil, err
	}

	records := make([]stats.TrialRecord, 0, len(trials))
	for _, t := range trials {
		if t.Pair.Contrast == nil {
			continue
		}
		records = append(records, stats.TrialRecord{
			ContrastKey:  t.Pair.Contrast.Key,
			ContrastName: t.Pair.Contrast.Name,
			Category:     t.Pair.Contrast.Category,
			IsCorrect:    t.IsCorrect,
			At:           t.PresentedAt,
		})
	}
	return records, nil
}

// withTrialPair preloads a trial's pair and contrast even after they were soft-deleted.
func withTrialPair(tx *gorm.DB) *gorm.DB {
	unscoped := func(tx *gorm.DB) *gorm.DB { return tx.Unscoped() }
	return tx.Preload("Pair", unscoped).Preload("Pair.Contrast", unscoped)
}

// createOrRestore inserts row unless a soft-deleted row matches cond, in which case that row
// is revived with row's values. base is row's embedded gorm.Model.
func createOrRestore(tx *gorm.DB, row interface{}, base *gorm.Model, cond interface{}) error {
	return tx.Transaction(func(tx *gorm.DB) error {
		var deleted gorm.Model
		err := tx.Unscoped().
			Model(row).
			Select("id", "created_at").
			Where(cond).
			Where("deleted_at IS NOT NULL").
			Take(&deleted).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(row).Error
		case err != nil:
			return err
		}

		base.ID, base.CreatedAt = deleted.ID, deleted.CreatedAt
		return tx.Unscoped().Select("*").Save(row).Error
	})
}

// catalog groups active contrast keys by category, falling back to the built-in line-up.
func (db *DBHandler) catalog(r *http.Request) (stats.Catalog, error) {
	var contrasts []models.Contrast
	if err := db.WithContext(r.Context()).Where("active = ?", true).Find(&contrasts).Error; err != nil {
		return nil, err
	}
	if len(contrasts) == 0 {
		return stats.DefaultCatalog(), nil
	}

	catalog := stats.Catalog{}
	for _, c := range contrasts {
		catalog[c.Category] = append(catalog[c.Category], c.Key)
	}
	return catalog, nil
}
