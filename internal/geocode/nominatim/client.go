// Package nominatim implements geocode.Geocoder against the OpenStreetMap
// Nominatim search API.
package nominatim

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cityweather/cityweather/internal/geocode"
	"github.com/cityweather/cityweather/internal/provider/resilience"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "nominatim"

	// DefaultBaseURL is the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "cityweather/1.0"
)

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to the public instance).
	BaseURL string

	// UserAgent identifies the application to Nominatim (optional).
	// Ignored when HTTPClient is set; configure the resilient client instead.
	UserAgent string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Nominatim search client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Nominatim client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		rc := resilience.DefaultClientConfig(ProviderName)
		rc.UserAgent = cfg.UserAgent
		if rc.UserAgent == "" {
			rc.UserAgent = DefaultUserAgent
		}
		httpClient = resilience.NewClient(rc)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Search resolves query to its first Nominatim match.
func (c *Client) Search(ctx context.Context, query string) (*geocode.Place, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")

	var results []searchResult
	if err := c.httpClient.GetJSON(ctx, c.baseURL+"/search?"+q.Encode(), &results); err != nil {
		return nil, fmt.Errorf("%w: %w", geocode.ErrProviderUnavailable, err)
	}

	if len(results) == 0 {
		c.logger.Debug().Str("query", query).Msg("no geocoding match")
		return nil, geocode.ErrLocationNotFound
	}

	first := results[0]
	lat, err := strconv.ParseFloat(strings.TrimSpace(first.Lat), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: parse lat %q: %w", geocode.ErrProviderUnavailable, first.Lat, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(first.Lon), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: parse lon %q: %w", geocode.ErrProviderUnavailable, first.Lon, err)
	}

	return &geocode.Place{
		Lat:         lat,
		Lon:         lon,
		DisplayName: first.DisplayName,
	}, nil
}

// Nominatim returns coordinates as strings.
type searchResult struct {
	PlaceID     int64  `json:"place_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
