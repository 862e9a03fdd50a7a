package database

import (
	"fmt"

	"panda-service/config"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NewSQLiteConnection opens the SQLite file at cfg.Path (":memory:" for a throwaway database).
// SQLite allows one writer, so the pool is pinned to a single connection; this also keeps an
// in-memory database alive for the lifetime of the pool.
func NewSQLiteConnection(cfg config.DBConfig, env string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: newGormLogger(env),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	logrus.Infof("Successfully opened SQLite database at %s", cfg.Path)

	return db, nil
}
