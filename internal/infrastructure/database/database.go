package database

import (
	"embed"
	"errors"
	"fmt"
	"net/url"

	"panda-service/config"
	"panda-service/internal/domain/entity"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// NewConnection opens the database selected by cfg.Driver.
func NewConnection(cfg config.DBConfig, env string) (*gorm.DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres, "":
		return NewPostgresConnection(cfg, env)
	case config.DriverSQLite:
		return NewSQLiteConnection(cfg, env)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Migrate brings the schema up to date. Postgres runs the embedded SQL migrations;
// SQLite, used for local runs and tests, is migrated from the entity definitions.
func Migrate(db *gorm.DB, cfg config.DBConfig) error {
	if cfg.Driver == config.DriverSQLite {
		return AutoMigrate(db)
	}
	return runSQLMigrations(cfg)
}

// AutoMigrate creates or updates tables from the entity definitions.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&entity.Patient{}, &entity.Appointment{}, &entity.AuditLog{})
}

func runSQLMigrations(cfg config.DBConfig) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrationURL(cfg))
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err == nil {
		logrus.Infof("Database schema at version %d (dirty=%t)", version, dirty)
	}

	return nil
}

func migrationURL(cfg config.DBConfig) string {
	u := url.URL{
		Scheme: "pgx5",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   cfg.Host + ":" + cfg.Port,
		Path:   "/" + cfg.Name,
	}
	q := u.Query()
	q.Set("sslmode", cfg.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

func newGormLogger(env string) logger.Interface {
	if env == "development" {
		return logger.Default.LogMode(logger.Info)
	}
	return logger.Default.LogMode(logger.Warn)
}
