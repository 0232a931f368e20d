// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"jobmate/jobhunter-service/internal/model"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultSourceURL = "https://remotive.com/api/remote-jobs"
)

// ConfigError reports a missing or invalid environment variable.
type ConfigError struct {
	Var string
	Msg string
}

func (e *ConfigError) Error() string { return fmt.Sprintf("%s %s", e.Var, e.Msg) }

// Config holds all runtime configuration for the jobhunter service.
type Config struct {
	Port string

	DBDriver    string // "postgres" or "sqlite"
	DatabaseURL string // postgres DSN, built from DB_* unless DATABASE_URL is set
	SQLitePath  string

	RedisURL string // optional; events are not published when empty

	SourceURL         string
	SyncIntervalHours int
	RetentionDays     int
	ExcludeTerms      []string // any match discards the listing
	SampleSize        int
}

// Load reads an optional .env file, then environment variables, and returns
// a validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, &ConfigError{Var: ".env", Msg: err.Error()}
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:       getenv("HTTP_PORT", "8081"),
		DBDriver:   strings.ToLower(getenv("DB_DRIVER", DriverPostgres)),
		RedisURL:   os.Getenv("REDIS_URL"),
		SourceURL:  getenv("SOURCE_URL", defaultSourceURL),
		SQLitePath: getenv("SQLITE_PATH", "jobhunter.sqlite"),
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		dsn, err := postgresDSN()
		if err != nil {
			return nil, err
		}
		cfg.DatabaseURL = dsn
	case DriverSQLite:
	default:
		return nil, &ConfigError{Var: "DB_DRIVER", Msg: fmt.Sprintf("must be %q or %q, got %q", DriverPostgres, DriverSQLite, cfg.DBDriver)}
	}

	var err error
	if cfg.SyncIntervalHours, err = positiveInt("SYNC_INTERVAL_HOURS", 6); err != nil {
		return nil, err
	}
	if cfg.RetentionDays, err = positiveInt("RETENTION_DAYS", model.DefaultRetentionDays); err != nil {
		return nil, err
	}
	if cfg.SampleSize, err = positiveInt("SAMPLE_SIZE", 5); err != nil {
		return nil, err
	}

	for _, term := range strings.Split(os.Getenv("EXCLUDE_TERMS"), ",") {
		if term = strings.TrimSpace(term); term != "" {
			cfg.ExcludeTerms = append(cfg.ExcludeTerms, term)
		}
	}

	return cfg, nil
}

// postgresDSN returns DATABASE_URL when set, otherwise a keyword/value DSN
// from the five DB_* connection variables, all of which are then required.
func postgresDSN() (string, error) {
	if u := os.Getenv("DATABASE_URL"); u != "" {
		return u, nil
	}

	required := []string{"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME"}
	vals := make(map[string]string, len(required))
	for _, name := range required {
		v := os.Getenv(name)
		if v == "" {
			return "", &ConfigError{Var: name, Msg: "is required"}
		}
		vals[name] = v
	}
	if _, err := strconv.Atoi(vals["DB_PORT"]); err != nil {
		return "", &ConfigError{Var: "DB_PORT", Msg: fmt.Sprintf("must be a number, got %q", vals["DB_PORT"])}
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		vals["DB_HOST"],
		vals["DB_PORT"],
		vals["DB_USER"],
		vals["DB_PASSWORD"],
		vals["DB_NAME"],
		getenv("DB_SSLMODE", "disable"),
	), nil
}

func positiveInt(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, &ConfigError{Var: name, Msg: fmt.Sprintf("must be a positive integer, got %q", s)}
	}
	return v, nil
}

func getenv(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
