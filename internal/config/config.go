// Package config loads runtime configuration from the environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application configuration.
type Config struct {
	AppEnv   string
	LogLevel string
	Port     string

	DBDriver         string
	DatabaseURL      string
	SQLitePath       string
	DBMaxConns       int
	StatementTimeout time.Duration
	AutoMigrate      bool

	JWTSecret string
	JWTIssuer string

	ReportTimeout time.Duration
	ReportYears   int
	ChartConfig   string

	ShutdownTimeout time.Duration
}

// Development reports whether the app runs in development mode.
func (c Config) Development() bool { return c.AppEnv == "development" }

// Load reads configuration. A missing .env file is not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Port:             getEnv("APP_PORT", "8080"),
		DBDriver:         strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		SQLitePath:       getEnv("SQLITE_PATH", "carbonyx.db"),
		DBMaxConns:       getEnvInt("DB_MAX_CONNS", 20),
		StatementTimeout: getEnvDuration("DB_STATEMENT_TIMEOUT", 15*time.Second),
		AutoMigrate:      getEnvBool("AUTO_MIGRATE", true),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTIssuer:        getEnv("JWT_ISSUER", "carbonyx"),
		ReportTimeout:    getEnvDuration("REPORT_TIMEOUT", 30*time.Second),
		ReportYears:      getEnvInt("REPORT_YEARS", 5),
		ChartConfig:      getEnv("CHART_CONFIG", ""),
		ShutdownTimeout:  getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that have no usable default.
func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER=%s", DriverPostgres)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when DB_DRIVER=%s", DriverSQLite)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.ReportYears < 1 {
		return fmt.Errorf("REPORT_YEARS must be >= 1, got %d", c.ReportYears)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return defaultValue
}
