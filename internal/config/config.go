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

	// Local store (sqlite). ":memory:" runs fully in-process.
	DBPath string `env:"DB_PATH" envDefault:"dripline.db"`

	// Remote hydration backend. Empty means local-only mode: every sync
	// operation is skipped and the app works entirely offline.
	RemoteBaseURL string `env:"REMOTE_BASE_URL" envDefault:""`

	// Weather provider endpoints. Defaults to the public open-meteo API.
	WeatherBaseURL   string `env:"WEATHER_BASE_URL" envDefault:""`
	GeocodingBaseURL string `env:"GEOCODING_BASE_URL" envDefault:""`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Background jobs
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"24h"`
	WeatherInterval   time.Duration `env:"WEATHER_INTERVAL" envDefault:"1h"`

	// Rate limiting for the local API
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst   int  `env:"RATE_LIMIT_BURST" envDefault:"25"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// RemoteEnabled reports whether a hydration backend is configured.
func (c *Config) RemoteEnabled() bool {
	return c.RemoteBaseURL != ""
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
