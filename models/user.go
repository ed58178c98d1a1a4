package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an authenticated learner, provisioned on first request from the Auth0 subject.
type User struct {
	gorm.Model
	Auth0ID    string     `gorm:"uniqueIndex;not null;size:191" json:"-"`
	Email      string     `gorm:"size:255" json:"email"`
	Name       string     `gorm:"size:255" json:"name"`
	LastSeenAt *time.Time `json:"lastSeenAt"`

	Trials   []Trial       `gorm:"foreignKey:UserID" json:"-"`
	Settings *UserSettings `gorm:"foreignKey:UserID" json:"-"`
}
