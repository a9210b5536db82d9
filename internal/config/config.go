// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Identity provider (hosted user lookup)
	IdentityAPIURL string `env:"IDENTITY_API_URL" envDefault:"https://api.clerk.com/v1"`
	// IdentityAPIKey may be empty; the identity client reports a
	// configuration error on first use rather than at startup.
	IdentityAPIKey string `env:"IDENTITY_API_KEY"`

	// Insight computation service
	InsightAPIURL string `env:"INSIGHT_API_URL,required"`

	// Session token verification
	SessionJWTSecret string `env:"SESSION_JWT_SECRET,required"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Upper bound on the profile-update transaction, including any
	// insight computation performed inside it.
	TxTimeout time.Duration `env:"TX_TIMEOUT" envDefault:"10s"`

	// Rate limiting for profile mutations
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPM     int  `env:"RATE_LIMIT_RPM" envDefault:"30"`
	RateLimitBurst   int  `env:"RATE_LIMIT_BURST" envDefault:"10"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
