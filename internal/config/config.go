// Package config loads the ledger service's environment-driven
// configuration, resolving environment variables with an optional .env
// overlay.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every knob the service consumes. Only StaleHandlerTimeout and
// StaleCheckInterval affect core semantics; the rest are ambient (HTTP,
// logging, rate limiting).
type Config struct {
	// Core
	StaleHandlerTimeout time.Duration
	StaleCheckInterval  time.Duration

	// HTTP
	HTTPPort string

	// Logging
	LogLevel  string
	LogFormat string

	// API-layer rate limiting
	RateLimitRPS   int
	RateLimitBurst int
}

// Load reads configuration from the environment, optionally overlaid by a
// ".env" file in the working directory. Missing or unparsable values fall
// back to defaults rather than failing startup, since every knob here has a
// safe default.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	cfg := &Config{
		StaleHandlerTimeout: getDuration("STALE_HANDLER_TIMEOUT", 3600*time.Second),
		StaleCheckInterval:  getDuration("STALE_CHECK_INTERVAL", 30*time.Second),
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "json"),
		RateLimitRPS:        getInt("RATE_LIMIT_RPS", 100),
		RateLimitBurst:      getInt("RATE_LIMIT_BURST", 200),
	}

	if cfg.StaleHandlerTimeout <= 0 {
		return nil, fmt.Errorf("STALE_HANDLER_TIMEOUT must be positive")
	}
	if cfg.StaleCheckInterval <= 0 {
		return nil, fmt.Errorf("STALE_CHECK_INTERVAL must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	// Accept a bare integer as seconds, or a Go duration string.
	if seconds, err := strconv.Atoi(v); err == nil {
		return time.Duration(seconds) * time.Second
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue
	}
	return parsed
}
