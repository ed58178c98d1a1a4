package models

// All lists every model for AutoMigrate, parents before children.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Contrast{},
		&Pair{},
		&Trial{},
		&UserSettings{},
		&WordEntry{},
		&WordUsage{},
		&Pronunciation{},
		&Example{},
		&SpellingPattern{},
		&LexicalSet{},
		&LexicalSetUsage{},
		&ConsonantPhoneme{},
		&ConsonantPhonemeUsage{},
	}
}
