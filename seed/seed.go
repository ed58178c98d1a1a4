// Package seed loads a small demo line-up of contrasts and minimal pairs for local work.
package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/andrewpaige1/accent-api/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type pairData struct {
	WordA, WordB string
}

type contrastData struct {
	Contrast models.Contrast
	Pairs    []pairData
}

var demo = []contrastData{
	{
		Contrast: models.Contrast{
			Key: "kit_fleece", Name: "KIT vs FLEECE", Title: "Short i vs long ee", Category: models.CategoryVowels,
			SoundAName: "KIT", SoundBName: "FLEECE", SoundASymbol: "ɪ", SoundBSymbol: "i",
		},
		Pairs: []pairData{{"ship", "sheep"}, {"bit", "beat"}, {"fill", "feel"}, {"live", "leave"}, {"sit", "seat"}},
	},
	{
		Contrast: models.Contrast{
			Key: "trap_dress", Name: "TRAP vs DRESS", Title: "a vs e", Category: models.CategoryVowels,
			SoundAName: "TRAP", SoundBName: "DRESS", SoundASymbol: "æ", SoundBSymbol: "ɛ",
		},
		Pairs: []pairData{{"bad", "bed"}, {"man", "men"}, {"sat", "set"}, {"pan", "pen"}, {"had", "head"}},
	},
	{
		Contrast: models.Contrast{
			Key: "foot_goose", Name: "FOOT vs GOOSE", Title: "Short oo vs long oo", Category: models.CategoryVowels,
			SoundAName: "FOOT", SoundBName: "GOOSE", SoundASymbol: "ʊ", SoundBSymbol: "u",
		},
		Pairs: []pairData{{"full", "fool"}, {"pull", "pool"}, {"look", "Luke"}, {"should", "shooed"}},
	},
	{
		Contrast: models.Contrast{
			Key: "th_t", Name: "TH vs T", Title: "Voiceless th vs t", Category: models.CategoryConsonants,
			SoundAName: "TH", SoundBName: "T", SoundASymbol: "θ", SoundBSymbol: "t",
		},
		Pairs: []pairData{{"thin", "tin"}, {"three", "tree"}, {"thank", "tank"}, {"bath", "bat"}},
	},
	{
		Contrast: models.Contrast{
			Key: "n_ng", Name: "N vs NG", Title: "n vs ng", Category: models.CategoryConsonants,
			SoundAName: "N", SoundBName: "NG", SoundASymbol: "n", SoundBSymbol: "ŋ",
		},
		Pairs: []pairData{{"sin", "sing"}, {"ran", "rang"}, {"thin", "thing"}, {"win", "wing"}},
	},
}

// PairID derives a stable public id so re-seeding updates rather than duplicates.
func PairID(contrastKey string, p pairData) string {
	return strings.ToLower(fmt.Sprintf("%s-%s-%s", contrastKey, p.WordA, p.WordB))
}

// Run upserts the demo contrasts by key and their pairs by pair id.
func Run(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pairCount := 0
		for _, d := range demo {
			contrast := d.Contrast
			contrast.Active = true
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"name", "title", "category", "sound_a_name", "sound_b_name",
					"sound_a_symbol", "sound_b_symbol", "active", "updated_at",
				}),
			}).Create(&contrast).Error
			if err != nil {
				return fmt.Errorf("failed to seed contrast %s: %w", contrast.Key, err)
			}
			// The upsert does not report the id of an existing row on every driver.
			if err := tx.Where(&models.Contrast{Key: contrast.Key}).First(&contrast).Error; err != nil {
				return fmt.Errorf("failed to reload contrast %s: %w", contrast.Key, err)
			}

			for _, p := range d.Pairs {
				pair := models.Pair{
					PairID:     PairID(contrast.Key, p),
					ContrastID: contrast.ID,
					WordA:      p.WordA,
					WordB:      p.WordB,
					Active:     true,
				}
				err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "pair_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"contrast_id", "word_a", "word_b", "active", "updated_at"}),
				}).Create(&pair).Error
				if err != nil {
					return fmt.Errorf("failed to seed pair %s: %w", pair.PairID, err)
				}
				pairCount++
			}
			logrus.Infof("seed: %s (%d pairs)", contrast.Key, len(d.Pairs))
		}
		logrus.Infof("seed: %d contrasts, %d pairs", len(demo), pairCount)
		return nil
	})
}
