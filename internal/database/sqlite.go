package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ConnectSQLite opens a SQLite database, used for local development and tests.
// A single connection keeps in-memory databases alive and serialises writers.
func ConnectSQLite(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlite dsn must not be empty")
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// Connect picks the driver from the url scheme: "sqlite://" or "file:" open SQLite,
// anything else is treated as a PostgreSQL DSN.
func Connect(url string) (*gorm.DB, error) {
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		return ConnectSQLite(strings.TrimPrefix(url, "sqlite://"))
	case strings.HasPrefix(url, "file:"):
		return ConnectSQLite(url)
	default:
		return ConnectPostgres(url)
	}
}
