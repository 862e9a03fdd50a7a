package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	Validation ValidationConfig
	Scheduler  SchedulerConfig
}

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type DBConfig struct {
	Driver       string
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	TimeZone     string
	Path         string
	AutoMigrate  bool
	MaxIdleConns int
	MaxOpenConns int
}

type ValidationConfig struct {
	MaxPatientAge int
	NHSChecksum   bool
}

type SchedulerConfig struct {
	MissedSweepCron string
	MissedGrace     time.Duration
}

// Supported DB_DRIVER values
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// LoadConfig reads .env from the working directory, with environment variables taking precedence.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(".env")
}

// LoadConfigFrom is LoadConfig with an explicit env file. A missing file is not an error.
func LoadConfigFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, err
		}
	}

	missedGrace, err := time.ParseDuration(v.GetString("SCHEDULER_MISSED_GRACE"))
	if err != nil {
		missedGrace = 30 * time.Minute
	}

	config := &Config{
		App: AppConfig{
			Port:     v.GetString("APP_PORT"),
			Env:      v.GetString("APP_ENV"),
			LogLevel: v.GetString("APP_LOG_LEVEL"),
		},
		DB: DBConfig{
			Driver:       v.GetString("DB_DRIVER"),
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			TimeZone:     v.GetString("DB_TIMEZONE"),
			Path:         v.GetString("DB_PATH"),
			AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		},
		Validation: ValidationConfig{
			MaxPatientAge: v.GetInt("VALIDATION_MAX_PATIENT_AGE"),
			NHSChecksum:   v.GetBool("VALIDATION_NHS_CHECKSUM"),
		},
		Scheduler: SchedulerConfig{
			MissedSweepCron: v.GetString("SCHEDULER_MISSED_SWEEP_CRON"),
			MissedGrace:     missedGrace,
		},
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_PATH", "panda.db")
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("VALIDATION_MAX_PATIENT_AGE", 120)
	v.SetDefault("VALIDATION_NHS_CHECKSUM", true)
	v.SetDefault("SCHEDULER_MISSED_SWEEP_CRON", "@every 5m")
	v.SetDefault("SCHEDULER_MISSED_GRACE", "30m")
}
