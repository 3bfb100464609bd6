// Package lookup orchestrates a weather lookup for a place name: geocode it,
// fetch the forecast, then reduce the samples to current conditions and daily
// summaries.
package lookup

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cityweather/cityweather/internal/geocode"
	"github.com/cityweather/cityweather/internal/telemetry"
	"github.com/cityweather/cityweather/internal/weather"
)

// MaxPlaceLength bounds the accepted place query, in characters.
const MaxPlaceLength = 200

var (
	validate = validator.New()
	placeTag = "required,max=" + strconv.Itoa(MaxPlaceLength)
)

// ValidatePlace trims place and checks it is a usable query.
func ValidatePlace(place string) (string, error) {
	place = strings.TrimSpace(place)
	if err := validate.Var(place, placeTag); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "max" {
			return "", newError(KindInvalidInput, MsgPlaceTooLong, err)
		}
		return "", newError(KindInvalidInput, MsgInvalidInput, err)
	}
	return place, nil
}

// Stage is a step of the lookup state machine.
type Stage string

// Lookup stages. Done and Failed are terminal.
const (
	StageIdle        Stage = "idle"
	StageGeocoding   Stage = "geocoding"
	StageFetching    Stage = "fetching"
	StageAggregating Stage = "aggregating"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// ForecastSource supplies raw forecast samples for coordinates.
type ForecastSource interface {
	GetForecast(ctx context.Context, lat, lon float64) (*weather.Forecast, error)
}

// Result is the outcome of one lookup.
type Result struct {
	Place    string                     `json:"place"`
	Stage    Stage                      `json:"stage"`
	Location *geocode.Place             `json:"location,omitempty"`
	City     string                     `json:"city,omitempty"`
	Current  *weather.CurrentConditions `json:"current,omitempty"`
	Forecast []weather.DailySummary     `json:"forecast,omitempty"`

	// Err is set when the lookup stopped before aggregation.
	Err *Error `json:"-"`

	// CurrentErr and ForecastErr are the independent aggregation failures.
	CurrentErr  *Error `json:"-"`
	ForecastErr *Error `json:"-"`
}

// Message returns the single user-visible error text, or "" on full success.
// When both aggregation halves failed the current-conditions error is shown.
func (r *Result) Message() string {
	switch {
	case r.Err != nil:
		return r.Err.Message
	case r.CurrentErr != nil:
		return r.CurrentErr.Message
	case r.ForecastErr != nil:
		return r.ForecastErr.Message
	}
	return ""
}

// Errors returns every failure recorded on the result.
func (r *Result) Errors() []*Error {
	var errs []*Error
	for _, e := range []*Error{r.Err, r.CurrentErr, r.ForecastErr} {
		if e != nil {
			errs = append(errs, e)
		}
	}
	return errs
}

// ServiceConfig holds configuration for the lookup service.
type ServiceConfig struct {
	Geocoder  geocode.Geocoder
	Forecasts ForecastSource

	// Logger for lookup operations.
	Logger zerolog.Logger

	// Tracer for stage spans. Defaults to the global tracer.
	Tracer trace.Tracer

	// Metrics records geocoder call durations (optional).
	Metrics *telemetry.ProviderMetrics
}

// Service runs lookups. It holds no per-lookup state and is safe for
// concurrent use.
type Service struct {
	geocoder  geocode.Geocoder
	forecasts ForecastSource
	logger    zerolog.Logger
	tracer    trace.Tracer
	metrics   *telemetry.ProviderMetrics
}

// NewService creates a new lookup service.
func NewService(cfg ServiceConfig) *Service {
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = telemetry.Tracer(telemetry.InstrumentationName)
	}
	return &Service{
		geocoder:  cfg.Geocoder,
		forecasts: cfg.Forecasts,
		logger:    cfg.Logger,
		tracer:    tracer,
		metrics:   cfg.Metrics,
	}
}

// Lookup runs a full lookup for place. It never returns nil and never
// retries; every failure ends the lookup and is recorded on the result.
func (s *Service) Lookup(ctx context.Context, place string) *Result {
	trimmed, err := ValidatePlace(place)
	if err != nil {
		var lerr *Error
		errors.As(err, &lerr)
		return &Result{Place: strings.TrimSpace(place), Stage: StageFailed, Err: lerr}
	}
	place = trimmed

	ctx, span := s.tracer.Start(ctx, "lookup",
		trace.WithAttributes(attribute.String("lookup.place", place)))
	defer span.End()

	res := &Result{Place: place, Stage: StageGeocoding}
	logger := s.logger.With().Str("place", place).Logger()

	loc, lerr := s.geocode(ctx, place)
	if lerr != nil {
		return s.fail(res, span, logger, lerr)
	}
	res.Location = loc

	res.Stage = StageFetching
	forecast, lerr := s.fetch(ctx, loc)
	if lerr != nil {
		return s.fail(res, span, logger, lerr)
	}
	res.City = forecast.City

	res.Stage = StageAggregating
	s.aggregate(ctx, res, forecast.Samples)

	if res.CurrentErr != nil && res.ForecastErr != nil {
		res.Stage = StageFailed
		span.SetStatus(codes.Error, res.Message())
	} else {
		res.Stage = StageDone
	}
	span.SetAttributes(attribute.String("lookup.stage", string(res.Stage)))

	logger.Info().
		Str("stage", string(res.Stage)).
		Int("days", len(res.Forecast)).
		Bool("current", res.Current != nil).
		Msg("lookup finished")

	return res
}

func (s *Service) geocode(ctx context.Context, place string) (*geocode.Place, *Error) {
	ctx, span := s.tracer.Start(ctx, "lookup.geocode",
		trace.WithAttributes(attribute.String("provider", s.geocoder.Name())))
	defer span.End()

	start := time.Now()
	loc, err := s.geocoder.Search(ctx, place)
	if s.metrics != nil {
		s.metrics.RecordRequest(s.geocoder.Name(), "search", time.Since(start), err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, geocode.ErrLocationNotFound) {
			return nil, newError(KindLocationNotFound, MsgLocationNotFound, err)
		}
		return nil, newError(KindGeoTransport, MsgGeoTransport, err)
	}

	span.SetAttributes(
		attribute.Float64("geo.lat", loc.Lat),
		attribute.Float64("geo.lon", loc.Lon),
	)
	return loc, nil
}

func (s *Service) fetch(ctx context.Context, loc *geocode.Place) (*weather.Forecast, *Error) {
	ctx, span := s.tracer.Start(ctx, "lookup.forecast")
	defer span.End()

	forecast, err := s.forecasts.GetForecast(ctx, loc.Lat, loc.Lon)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, weather.ErrForecastMissing) {
			return nil, newError(KindForecastMissing, MsgForecastMissing, err)
		}
		return nil, newError(KindWeatherTransport, MsgWeatherTransport, err)
	}
	if forecast == nil || forecast.Samples == nil {
		return nil, newError(KindForecastMissing, MsgForecastMissing, weather.ErrForecastMissing)
	}

	span.SetAttributes(attribute.Int("forecast.samples", len(forecast.Samples)))
	return forecast, nil
}

func (s *Service) aggregate(ctx context.Context, res *Result, samples []weather.Sample) {
	_, span := s.tracer.Start(ctx, "lookup.aggregate")
	defer span.End()

	report := weather.Summarize(samples)

	if report.DaysErr != nil {
		res.ForecastErr = classifyReduction(report.DaysErr)
		span.RecordError(report.DaysErr)
	} else {
		res.Forecast = report.Days
	}

	if report.CurrentErr != nil {
		res.CurrentErr = classifyReduction(report.CurrentErr)
		span.RecordError(report.CurrentErr)
	} else {
		res.Current = report.Current
	}
}

func classifyReduction(err error) *Error {
	kind := KindIncompleteSample
	switch {
	case errors.Is(err, weather.ErrNoForecastData):
		kind = KindNoForecastData
	case errors.Is(err, weather.ErrNoDescription):
		kind = KindMissingDescription
	}
	return newError(kind, err.Error(), err)
}

func (s *Service) fail(res *Result, span trace.Span, logger zerolog.Logger, lerr *Error) *Result {
	res.Stage = StageFailed
	res.Err = lerr
	span.SetStatus(codes.Error, lerr.Message)

	logger.Warn().Err(lerr.Err).
		Str("kind", lerr.Kind.String()).
		Msg("lookup failed")

	return res
}
