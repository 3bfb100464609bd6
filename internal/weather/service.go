package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cityweather/cityweather/internal/telemetry"
)

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	// Provider is the weather data provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// Metrics records provider call durations (optional).
	Metrics *telemetry.ProviderMetrics
}

// Service fetches forecasts and reduces them to reports.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	metrics  *telemetry.ProviderMetrics
}

// NewService creates a new weather service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
	}
}

// GetForecast returns the forecast samples for a location.
// It returns ErrForecastMissing when the provider answered without a sample
// list and ErrProviderUnavailable when the provider could not be reached.
func (s *Service) GetForecast(ctx context.Context, lat, lon float64) (*Forecast, error) {
	if err := ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Float64("lat", lat).
		Float64("lon", lon).
		Str("provider", s.provider.Name()).
		Msg("fetching forecast from provider")

	start := time.Now()
	forecast, err := s.provider.GetForecast(ctx, lat, lon)
	if s.metrics != nil {
		s.metrics.RecordRequest(s.provider.Name(), "forecast", time.Since(start), err)
	}
	if err != nil {
		s.logger.Error().Err(err).
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("failed to fetch forecast")
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	if forecast == nil || forecast.Samples == nil {
		s.logger.Warn().
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("provider returned no forecast list")
		return nil, ErrForecastMissing
	}

	return forecast, nil
}

// Name returns the underlying provider name.
func (s *Service) Name() string {
	return s.provider.Name()
}

// Report holds the two independent reductions of a sample list.
// Either half may have failed without affecting the other.
type Report struct {
	Current    *CurrentConditions
	CurrentErr error

	Days    []DailySummary
	DaysErr error
}

// Summarize runs the daily aggregation over all samples and the current
// conditions extraction over the first one.
func Summarize(samples []Sample) Report {
	var r Report

	r.Days, r.DaysErr = DailyForecast(samples)

	var first *Sample
	if len(samples) > 0 {
		first = &samples[0]
	}
	r.Current, r.CurrentErr = ExtractCurrent(first)

	return r
}
