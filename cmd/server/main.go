// Package main provides the entrypoint for the cityweather server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/cityweather/cityweather/internal/api"
	"github.com/cityweather/cityweather/internal/api/middleware"
	"github.com/cityweather/cityweather/internal/config"
	"github.com/cityweather/cityweather/internal/geocode/nominatim"
	"github.com/cityweather/cityweather/internal/lookup"
	"github.com/cityweather/cityweather/internal/provider/resilience"
	"github.com/cityweather/cityweather/internal/telemetry"
	"github.com/cityweather/cityweather/internal/weather"
	"github.com/cityweather/cityweather/internal/weather/openweathermap"
	"github.com/cityweather/cityweather/internal/web"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "cityweather"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log = log.Level(cfg.LogLevel)

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Environment).
		Msg("starting cityweather")

	// Initialize OpenTelemetry
	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTelEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics(nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	providerMetrics, err := telemetry.NewProviderMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	// Upstream provider clients share one health registry
	registry := resilience.NewRegistry()

	geoHTTP := resilience.DefaultClientConfig(nominatim.ProviderName)
	geoHTTP.Timeout = cfg.ProviderTimeout
	geoHTTP.UserAgent = cfg.NominatimUserAgent
	geoHTTP.Registry = registry
	geoHTTP.Logger = log

	geocoder := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:    cfg.NominatimBaseURL,
		UserAgent:  cfg.NominatimUserAgent,
		HTTPClient: resilience.NewClient(geoHTTP),
		Logger:     log,
	})

	owmHTTP := resilience.DefaultClientConfig(openweathermap.ProviderName)
	owmHTTP.Timeout = cfg.ProviderTimeout
	owmHTTP.Registry = registry
	owmHTTP.Logger = log

	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: openweathermap.NewClient(openweathermap.ClientConfig{
			APIKey:     cfg.OpenWeatherAPIKey,
			BaseURL:    cfg.OpenWeatherBaseURL,
			HTTPClient: resilience.NewClient(owmHTTP),
			Logger:     log,
		}),
		Logger:  log,
		Metrics: providerMetrics,
	})

	lookupService := lookup.NewService(lookup.ServiceConfig{
		Geocoder:  geocoder,
		Forecasts: weatherService,
		Logger:    log,
		Metrics:   providerMetrics,
	})
	log.Info().
		Strs("providers", registry.GetProviderNames()).
		Msg("lookup service initialized")

	// Browser sessions
	sessions := lookup.NewSessionStore(lookup.SessionStoreConfig{
		IdleTTL:       cfg.SessionIdleTTL,
		SweepInterval: cfg.SessionSweepInterval,
		Logger:        log,
	})
	sessions.Start()
	defer sessions.Stop()

	page, err := web.NewHandler(web.Config{
		Sessions:     sessions,
		Service:      lookupService,
		Logger:       log,
		SecureCookie: cfg.SecureCookies(),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to parse page templates")
		os.Exit(1)
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:       Version,
		BuildTime:     BuildTime,
		Logger:        log,
		Metrics:       metrics,
		LookupService: lookupService,
		Registry:      registry,
		Sessions:      sessions,
		Page:          page,
		RequireTLS:    cfg.RequireTLS,
	})

	// Create HTTP server. WriteTimeout covers a full lookup: two provider
	// calls with retries.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 4*cfg.ProviderTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
