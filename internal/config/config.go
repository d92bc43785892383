// Package config loads runtime configuration from environment variables,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath string
	HTTPAddr     string
	LogLevel     slog.Level

	// Scheduling defaults for stages that don't set their own
	DefaultMatchDuration time.Duration
	DefaultMatchInterval time.Duration

	// Zero means tie-breaks and Swiss first rounds are not reproducible
	RandomSeed uint64
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	level, err := parseLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	duration, err := envInt("DEFAULT_MATCH_DURATION_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, fmt.Errorf("DEFAULT_MATCH_DURATION_MINUTES must be positive, got %d", duration)
	}

	interval, err := envInt("DEFAULT_MATCH_INTERVAL_MINUTES", 15)
	if err != nil {
		return nil, err
	}
	if interval < 0 {
		return nil, fmt.Errorf("DEFAULT_MATCH_INTERVAL_MINUTES must not be negative, got %d", interval)
	}

	var seed uint64
	if v := os.Getenv("RANDOM_SEED"); v != "" {
		seed, err = strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RANDOM_SEED environment variable: %w", err)
		}
	}

	return &Config{
		DatabasePath:         envOr("DATABASE_PATH", "tournament.db"),
		HTTPAddr:             envOr("HTTP_ADDR", ":8080"),
		LogLevel:             level,
		DefaultMatchDuration: time.Duration(duration) * time.Minute,
		DefaultMatchInterval: time.Duration(interval) * time.Minute,
		RandomSeed:           seed,
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return n, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", s)
}
