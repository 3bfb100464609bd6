// Package geocode resolves free-text place names to coordinates.
package geocode

import (
	"context"
	"errors"
)

var (
	// ErrLocationNotFound is returned when the geocoder has no match for the query.
	ErrLocationNotFound = errors.New("location not found")

	// ErrProviderUnavailable wraps transport and decoding failures of the geocoder.
	ErrProviderUnavailable = errors.New("geocoding provider unavailable")
)

// Place is a resolved location.
type Place struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"displayName,omitempty"`
}

// Geocoder resolves a query to the best matching place.
type Geocoder interface {
	// Search returns the first match for query, ErrLocationNotFound when there
	// is none, or an error wrapping ErrProviderUnavailable.
	Search(ctx context.Context, query string) (*Place, error)

	// Name returns the provider identifier.
	Name() string
}
