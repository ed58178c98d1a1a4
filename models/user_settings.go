package models

import (
	"time"

	"gorm.io/datatypes"
)

// UserSettings stores the per-user quiz preferences as an opaque JSON document.
type UserSettings struct {
	ID           uint           `gorm:"primaryKey" json:"-"`
	UserID       uint           `gorm:"uniqueIndex;not null" json:"-"`
	QuizSettings datatypes.JSON `gorm:"not null" json:"quizSettings"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// DefaultQuizSettings is served when a user has never saved settings.
func DefaultQuizSettings() map[string]any {
	return map[string]any{
		"numberOfQuestions": 10,
		"autoPlayAudio":     true,
		"showSoundSymbols":  true,
		"soundEffects":      true,
	}
}
