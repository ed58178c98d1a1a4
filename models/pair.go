package models

import "gorm.io/gorm"

// Pair is two words differing only in the contrast's target sound.
type Pair struct {
	gorm.Model
	PairID     string    `gorm:"uniqueIndex;not null;size:100" json:"pairId"`
	ContrastID uint      `gorm:"not null;index" json:"-"`
	Contrast   *Contrast `gorm:"foreignKey:ContrastID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"contrast,omitempty"`

	WordA      string `gorm:"not null;size:100" json:"wordA"`
	WordB      string `gorm:"not null;size:100" json:"wordB"`
	AlternateA string `gorm:"size:100" json:"alternateA,omitempty"`
	AlternateB string `gorm:"size:100" json:"alternateB,omitempty"`
	AudioAURL  string `gorm:"size:500" json:"audioAUrl,omitempty"`
	AudioBURL  string `gorm:"size:500" json:"audioBUrl,omitempty"`
	Active     bool   `gorm:"default:true" json:"active"`
}
