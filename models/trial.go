package models

import "time"

const (
	SideA = "A"
	SideB = "B"
)

// Trial is one recorded quiz answer. TrialID is generated by the client so retries are idempotent.
type Trial struct {
	TrialID       string    `gorm:"primaryKey;size:100" json:"trialId"`
	UserID        uint      `gorm:"not null;index" json:"userId"`
	User          User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	PairID        string    `gorm:"not null;index;size:100" json:"pairId"`
	Pair          Pair      `gorm:"foreignKey:PairID;references:PairID" json:"pair"`
	PresentedSide string    `gorm:"not null;size:10" json:"presentedSide"`
	ChoiceSide    string    `gorm:"not null;size:10" json:"choiceSide"`
	IsCorrect     bool      `gorm:"not null" json:"isCorrect"`
	PresentedAt   time.Time `gorm:"not null;index" json:"presentedAt"`
	RespondedAt   time.Time `gorm:"not null" json:"respondedAt"`
	LatencyMs     int       `gorm:"default:0" json:"latencyMs"`
	CreatedAt     time.Time `json:"createdAt"`
}
