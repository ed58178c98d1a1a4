package config

import (
	"fmt"
	"strings"

	"github.com/andrewpaige1/accent-api/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Connect opens the database named by dbURL. postgres:// and postgresql:// URLs use the
// postgres driver; sqlite:<path> (or a bare path) uses sqlite.
func Connect(dbURL, gormLogLevel string) (*gorm.DB, error) {
	gormLogger, levelErr := newGormLogger(gormLogLevel)
	if levelErr != nil {
		return nil, levelErr
	}

	db, err := gorm.Open(dialector(dbURL), &gorm.Config{Logger: gormLogger, TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates every table the API uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to auto migrate database: %w", err)
	}
	return nil
}

func dialector(dbURL string) gorm.Dialector {
	switch {
	case strings.HasPrefix(dbURL, "postgres://"), strings.HasPrefix(dbURL, "postgresql://"):
		return postgres.Open(dbURL)
	case strings.HasPrefix(dbURL, "sqlite:"):
		return sqlite.Open(strings.TrimPrefix(dbURL, "sqlite:"))
	default:
		return sqlite.Open(dbURL)
	}
}
