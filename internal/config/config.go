// Package config loads warehouse loader settings from the environment.
package config

import (
	"errors"
	"math"
	"os"
	"strconv"
)

// ErrMissingDatabaseURL is returned when no PostgreSQL connection string is
// configured.
var ErrMissingDatabaseURL = errors.New("missing DATABASE_URL")

// Config holds all loader settings, populated from environment variables.
// Command-line flags may override individual fields before Validate.
type Config struct {
	DatabaseURL       string
	SongDataDir       string
	LogDataDir        string
	DurationTolerance float64
	Verbose           bool
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SongDataDir: envOrDefault("SONG_DATA_DIR", "data/song_data"),
		LogDataDir:  envOrDefault("LOG_DATA_DIR", "data/log_data"),
	}

	tolerance, err := strconv.ParseFloat(envOrDefault("DURATION_TOLERANCE", "0"), 64)
	if err != nil {
		return nil, errors.New("invalid DURATION_TOLERANCE")
	}
	cfg.DurationTolerance = tolerance

	if v := os.Getenv("VERBOSE"); v != "" {
		verbose, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New("invalid VERBOSE")
		}
		cfg.Verbose = verbose
	}

	return cfg, nil
}

// Validate checks that required settings are present and consistent. It runs
// after flag overrides so a connection string supplied on the command line
// counts.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if c.DurationTolerance < 0 || math.IsNaN(c.DurationTolerance) || math.IsInf(c.DurationTolerance, 0) {
		return errors.New("duration tolerance must be a non-negative finite number")
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
