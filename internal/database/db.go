package database

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/m-abdelwahab/email-agent-workshop/internal/config"
	"github.com/m-abdelwahab/email-agent-workshop/internal/database/models"
)

// Initialize opens a database connection for the configured driver and
// runs migrations. SQLite is the default; Postgres matches the original
// hosted deployment.
func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	var db *gorm.DB
	var err error

	switch cfg.Type {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.DSN), gormConfig)
	case "sqlite", "":
		// Ensure the directory for the database file exists
		if dir := filepath.Dir(cfg.DSN); dir != "." && dir != "" {
			if mkErr := os.MkdirAll(dir, 0755); mkErr != nil {
				return nil, mkErr
			}
		}
		db, err = gorm.Open(sqlite.Open(cfg.DSN), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// InitializeSQLite opens a SQLite database at the given path with default
// pool settings. Used by tests and the CLI.
func InitializeSQLite(dbPath string) (*gorm.DB, error) {
	return Initialize(config.DatabaseConfig{Type: "sqlite", DSN: dbPath})
}

// runMigrations runs all database migrations
func runMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Message{},
		&models.IngestLog{},
	)
}
