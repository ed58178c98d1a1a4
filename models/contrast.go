package models

import "gorm.io/gorm"

const (
	CategoryVowels     = "vowels"
	CategoryConsonants = "consonants"
)

// Contrast is a minimal-pair category such as kit_fleece.
type Contrast struct {
	gorm.Model
	Key          string `gorm:"uniqueIndex;not null;size:100" json:"key"`
	Name         string `gorm:"not null;size:100" json:"name"`
	Title        string `gorm:"size:200" json:"title"`
	Description  string `gorm:"size:1000" json:"description"`
	Category     string `gorm:"not null;size:50;index" json:"category"`
	SoundAName   string `gorm:"size:50" json:"soundAName"`
	SoundBName   string `gorm:"size:50" json:"soundBName"`
	SoundASymbol string `gorm:"size:20" json:"soundASymbol"`
	SoundBSymbol string `gorm:"size:20" json:"soundBSymbol"`
	Active       bool   `gorm:"default:true" json:"active"`

	Pairs []Pair `gorm:"foreignKey:ContrastID" json:"-"`
}
