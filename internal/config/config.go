// Package config loads cityweather settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// ErrMissingAPIKey is returned when no OpenWeatherMap key is configured.
var ErrMissingAPIKey = errors.New("OPENWEATHER_API_KEY is required")

// Config holds all runtime settings.
type Config struct {
	Port        string
	Environment string
	LogLevel    zerolog.Level

	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	NominatimBaseURL   string
	NominatimUserAgent string
	ProviderTimeout    time.Duration

	SessionIdleTTL       time.Duration
	SessionSweepInterval time.Duration

	OTelEnabled  bool
	OTLPEndpoint string
	RequireTLS   bool
}

// Load reads the given .env files (".env" when none are named) into the
// process environment, then builds a Config from it. Missing .env files are
// not an error; variables already set in the environment win.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables with defaults.
func FromEnv() (Config, error) {
	var errs []error

	cfg := Config{
		Port:               getEnvOrDefault("APP_PORT", "8080"),
		Environment:        getEnvOrDefault("APP_ENV", "development"),
		OpenWeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherBaseURL: getEnvOrDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
		NominatimBaseURL:   getEnvOrDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: getEnvOrDefault("NOMINATIM_USER_AGENT", "cityweather/1.0"),
		OTelEnabled:        os.Getenv("OTEL_ENABLED") == "true",
		OTLPEndpoint:       getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		RequireTLS:         os.Getenv("REQUIRE_TLS") == "true",
	}

	level, err := zerolog.ParseLevel(getEnvOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	cfg.LogLevel = level

	cfg.ProviderTimeout = durationEnv("PROVIDER_TIMEOUT", "10s", &errs)
	cfg.SessionIdleTTL = durationEnv("SESSION_IDLE_TTL", "30m", &errs)
	cfg.SessionSweepInterval = durationEnv("SESSION_SWEEP_INTERVAL", "1m", &errs)

	if cfg.OpenWeatherAPIKey == "" {
		errs = append(errs, ErrMissingAPIKey)
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		errs = append(errs, fmt.Errorf("APP_PORT: %w", err))
	}

	return cfg, errors.Join(errs...)
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// SecureCookies reports whether cookies must carry the Secure flag. Production
// is always served over HTTPS, even when TLS ends at a proxy.
func (c Config) SecureCookies() bool {
	return c.RequireTLS || c.IsProduction()
}

func durationEnv(key, def string, errs *[]error) time.Duration {
	d, err := time.ParseDuration(getEnvOrDefault(key, def))
	if err == nil && d <= 0 {
		err = errors.New("must be positive")
	}
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		d, _ = time.ParseDuration(def)
	}
	return d
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
