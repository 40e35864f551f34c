package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StaleHandlerTimeout != 3600*time.Second {
		t.Errorf("StaleHandlerTimeout default = %v, want 3600s", cfg.StaleHandlerTimeout)
	}
	if cfg.StaleCheckInterval != 30*time.Second {
		t.Errorf("StaleCheckInterval default = %v, want 30s", cfg.StaleCheckInterval)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort default = %s, want 8080", cfg.HTTPPort)
	}
	if cfg.RateLimitRPS != 100 {
		t.Errorf("RateLimitRPS default = %d, want 100", cfg.RateLimitRPS)
	}
}

func TestLoadReadsEnvOverrides(t *testing.T) {
	t.Setenv("STALE_HANDLER_TIMEOUT", "120")
	t.Setenv("STALE_CHECK_INTERVAL", "5s")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("RATE_LIMIT_RPS", "50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StaleHandlerTimeout != 120*time.Second {
		t.Errorf("StaleHandlerTimeout = %v, want 120s", cfg.StaleHandlerTimeout)
	}
	if cfg.StaleCheckInterval != 5*time.Second {
		t.Errorf("StaleCheckInterval = %v, want 5s", cfg.StaleCheckInterval)
	}
	if cfg.HTTPPort != "9090" {
		t.Errorf("HTTPPort = %s, want 9090", cfg.HTTPPort)
	}
	if cfg.RateLimitRPS != 50 {
		t.Errorf("RateLimitRPS = %d, want 50", cfg.RateLimitRPS)
	}
}

func TestLoadRejectsNonPositiveStaleHandlerTimeout(t *testing.T) {
	t.Setenv("STALE_HANDLER_TIMEOUT", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-positive STALE_HANDLER_TIMEOUT")
	}
}

func TestLoadRejectsNonPositiveStaleCheckInterval(t *testing.T) {
	t.Setenv("STALE_CHECK_INTERVAL", "-1")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-positive STALE_CHECK_INTERVAL")
	}
}
