package lookup

import "errors"

// Kind classifies why a lookup, or one half of its aggregation, failed.
type Kind int

// Failure kinds. Every kind is terminal for the lookup that produced it.
const (
	KindInvalidInput Kind = iota + 1
	KindLocationNotFound
	KindGeoTransport
	KindForecastMissing
	KindWeatherTransport
	KindNoForecastData
	KindIncompleteSample
	KindMissingDescription
)

var kindNames = map[Kind]string{
	KindInvalidInput:       "invalid_input",
	KindLocationNotFound:   "location_not_found",
	KindGeoTransport:       "geo_transport",
	KindForecastMissing:    "forecast_missing",
	KindWeatherTransport:   "weather_transport",
	KindNoForecastData:     "no_forecast_data",
	KindIncompleteSample:   "incomplete_sample",
	KindMissingDescription: "missing_description",
}

// String returns the snake_case name used in JSON and logs.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText lets Kind serialize as its name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name. Unknown names decode to the zero Kind.
func (k *Kind) UnmarshalText(text []byte) error {
	*k = 0
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			break
		}
	}
	return nil
}

// User-visible messages for the orchestration stages.
const (
	MsgInvalidInput     = "Please enter a city name."
	MsgPlaceTooLong     = "City name is too long."
	MsgLocationNotFound = "Location not found."
	MsgGeoTransport     = "Error fetching location data."
	MsgForecastMissing  = "No forecast data found."
	MsgWeatherTransport = "Error fetching weather data."
)

// Error is a classified lookup failure. Message is shown to the user as is;
// Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// IsKind reports whether err is a lookup Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var lerr *Error
	return errors.As(err, &lerr) && lerr.Kind == kind
}
