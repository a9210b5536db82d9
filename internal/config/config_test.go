package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/pathwise_test")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("INSIGHT_API_URL", "http://localhost:9090")
	t.Setenv("SESSION_JWT_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.AppEnv != "development" {
		t.Errorf("AppEnv = %q, want development", cfg.AppEnv)
	}
	if cfg.AppPort != 8080 {
		t.Errorf("AppPort = %d, want 8080", cfg.AppPort)
	}
	if cfg.IdentityAPIURL != "https://api.clerk.com/v1" {
		t.Errorf("IdentityAPIURL = %q", cfg.IdentityAPIURL)
	}
	if cfg.TxTimeout != 10*time.Second {
		t.Errorf("TxTimeout = %v, want 10s", cfg.TxTimeout)
	}
	if !cfg.RateLimitEnabled || cfg.RateLimitRPM != 30 || cfg.RateLimitBurst != 10 {
		t.Errorf("rate limit defaults = %v/%d/%d", cfg.RateLimitEnabled, cfg.RateLimitRPM, cfg.RateLimitBurst)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Errorf("log defaults = %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
	if !cfg.IsDevelopment() || cfg.IsProduction() {
		t.Error("default env must be development")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	// t.Setenv registered the restore; drop the variable entirely so
	// the required check trips.
	os.Unsetenv("DATABASE_URL")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error without DATABASE_URL")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("TX_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("IDENTITY_API_KEY", "sk_live_123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if !cfg.IsProduction() {
		t.Error("expected production mode")
	}
	if cfg.TxTimeout != 3*time.Second {
		t.Errorf("TxTimeout = %v, want 3s", cfg.TxTimeout)
	}
	if cfg.RateLimitEnabled {
		t.Error("expected rate limiting disabled")
	}
	if cfg.IdentityAPIKey != "sk_live_123" {
		t.Errorf("IdentityAPIKey = %q", cfg.IdentityAPIKey)
	}
}
