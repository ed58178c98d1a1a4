package models

import "gorm.io/gorm"

// WordEntry is a dictionary head word.
type WordEntry struct {
	gorm.Model
	Word   string      `gorm:"uniqueIndex;not null;size:100" json:"word"`
	Usages []WordUsage `gorm:"foreignKey:EntryID" json:"usages,omitempty"`
}

// WordUsage is one sense of a word with its pronunciations and examples.
type WordUsage struct {
	gorm.Model
	EntryID      uint      `gorm:"not null;index" json:"entryId"`
	Entry        WordEntry `gorm:"foreignKey:EntryID" json:"entry"`
	PartOfSpeech string    `gorm:"size:50" json:"partOfSpeech"`
	Definition   string    `gorm:"size:1000" json:"definition"`

	Pronunciations   []Pronunciation   `gorm:"foreignKey:UsageID" json:"pronunciations"`
	Examples         []Example         `gorm:"foreignKey:UsageID" json:"examples"`
	SpellingPatterns []SpellingPattern `gorm:"foreignKey:UsageID" json:"spellingPatterns"`
}

type Pronunciation struct {
	gorm.Model
	UsageID  uint   `gorm:"not null;index" json:"usageId"`
	IPA      string `gorm:"size:100" json:"ipa"`
	Accent   string `gorm:"size:20" json:"accent"`
	AudioURL string `gorm:"size:500" json:"audioUrl"`
}

type Example struct {
	gorm.Model
	UsageID uint   `gorm:"not null;index" json:"usageId"`
	Text    string `gorm:"size:1000" json:"text"`
}

type SpellingPattern struct {
	gorm.Model
	UsageID uint   `gorm:"not null;index" json:"usageId"`
	Pattern string `gorm:"size:50" json:"pattern"`
}

// LexicalSet groups word usages sharing a vowel (Wells' lexical sets).
type LexicalSet struct {
	gorm.Model
	Name        string            `gorm:"not null;size:100" json:"name"`
	Description string            `gorm:"size:1000" json:"description"`
	Category    string            `gorm:"size:50" json:"category"`
	Order       *int              `json:"order"`
	Usages      []LexicalSetUsage `gorm:"foreignKey:LexicalSetID" json:"usages"`
}

type LexicalSetUsage struct {
	gorm.Model
	LexicalSetID uint      `gorm:"not null;uniqueIndex:idx_lexical_set_usage" json:"lexicalSetId"`
	UsageID      uint      `gorm:"not null;uniqueIndex:idx_lexical_set_usage" json:"usageId"`
	WordUsage    WordUsage `gorm:"foreignKey:UsageID" json:"wordUsage"`
	Order        *int      `json:"order"`
}

type ConsonantPhoneme struct {
	gorm.Model
	Name        string                  `gorm:"not null;size:100" json:"name"`
	Description string                  `gorm:"size:1000" json:"description"`
	Category    string                  `gorm:"size:50" json:"category"`
	Order       *int                    `json:"order"`
	Usages      []ConsonantPhonemeUsage `gorm:"foreignKey:ConsonantPhonemeID" json:"usages"`
}

type ConsonantPhonemeUsage struct {
	gorm.Model
	ConsonantPhonemeID uint      `gorm:"not null;index" json:"consonantPhonemeId"`
	UsageID            uint      `gorm:"not null;index" json:"usageId"`
	WordUsage          WordUsage `gorm:"foreignKey:UsageID" json:"wordUsage"`
	Order              *int      `json:"order"`
}
