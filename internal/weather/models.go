// Package weather turns raw forecast samples into display-ready current
// conditions and per-day summaries.
package weather

import (
	"context"
	"errors"
	"strings"
)

// Weather errors. The messages are shown to users verbatim.
var (
	//nolint:staticcheck // user-facing message
	ErrNoForecastData = errors.New("No forecast data available")
	//nolint:staticcheck // user-facing message
	ErrIncompleteSample = errors.New("Incomplete weather data")
	//nolint:staticcheck // user-facing message
	ErrNoDescription = errors.New("No weather description available")

	// ErrProviderUnavailable wraps any transport or decoding failure of the provider.
	ErrProviderUnavailable = errors.New("weather provider unavailable")

	// ErrForecastMissing is returned by providers when the response carried no sample list.
	ErrForecastMissing = errors.New("forecast list missing from provider response")

	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// NotAvailable is the placeholder for any value that could not be computed.
const NotAvailable = "N/A"

// MaxForecastDays is the maximum number of daily summaries produced.
const MaxForecastDays = 5

// Sample is one timestamped observation from the weather provider.
// Every measurement is optional; nil means the provider omitted it.
type Sample struct {
	// Timestamp is formatted "YYYY-MM-DD HH:MM:SS" (UTC).
	Timestamp string

	// Main holds temperature and humidity. Nil when the block was absent.
	Main *Measurements

	WindSpeed  *float64 // m/s
	CloudCover *float64 // percent
	PrecipProb *float64 // 0..1

	// Conditions is nil when the provider sent no list and empty when it
	// sent an empty one.
	Conditions []ConditionLabel
}

// Measurements is the temperature/humidity block of a sample.
type Measurements struct {
	Temperature *float64 // Celsius
	Humidity    *float64 // percent
}

// ConditionLabel is a provider weather condition. Empty strings mean missing.
type ConditionLabel struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Date returns the calendar date portion of the timestamp, or "" if there is none.
func (s *Sample) Date() string {
	date, _, _ := strings.Cut(s.Timestamp, " ")
	return date
}

// Temperature returns the temperature, if present.
func (s *Sample) Temperature() *float64 {
	if s.Main == nil {
		return nil
	}
	return s.Main.Temperature
}

// Humidity returns the humidity, if present.
func (s *Sample) Humidity() *float64 {
	if s.Main == nil {
		return nil
	}
	return s.Main.Humidity
}

// PrimaryDescription returns the first condition's description, or "".
func (s *Sample) PrimaryDescription() string {
	if len(s.Conditions) == 0 {
		return ""
	}
	return s.Conditions[0].Description
}

// Forecast is the provider response for a location.
type Forecast struct {
	Lat  float64
	Lon  float64
	City string

	// Samples is nil when the provider response had no list.
	Samples []Sample
}

// DailySummary aggregates all samples of one calendar date.
type DailySummary struct {
	Date         string `json:"date"`
	AvgTemp      string `json:"avgTemp"`
	MinTemp      string `json:"minTemp"`
	MaxTemp      string `json:"maxTemp"`
	AvgHumidity  string `json:"avgHumidity"`
	Description  string `json:"description"`
	ChanceOfRain string `json:"chanceOfRain"`
	AvgWindSpeed string `json:"avgWindSpeed"`
	AvgClouds    string `json:"avgClouds"`
}

// CurrentConditions is the display form of a single sample.
type CurrentConditions struct {
	Temperature  string           `json:"temperature"`
	Humidity     string           `json:"humidity"`
	Clouds       string           `json:"clouds"`
	WindSpeed    string           `json:"windSpeed"`
	Description  string           `json:"description"`
	ChanceOfRain string           `json:"chanceOfRain"`
	Conditions   []ConditionLabel `json:"weatherData"`
}

// Icon returns the icon code of the first condition, or "".
func (c *CurrentConditions) Icon() string {
	if len(c.Conditions) == 0 || c.Conditions[0].Icon == NotAvailable {
		return ""
	}
	return c.Conditions[0].Icon
}

// Provider fetches forecast samples for a coordinate.
type Provider interface {
	// GetForecast fetches the multi-day forecast for a location.
	GetForecast(ctx context.Context, lat, lon float64) (*Forecast, error)

	// Name returns the provider name for logging.
	Name() string
}

// ValidateCoordinates checks if coordinates are valid.
func ValidateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}
