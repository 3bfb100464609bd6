// Package openweathermap implements weather.Provider on top of the
// OpenWeatherMap 5 day / 3 hour forecast API.
package openweathermap

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/cityweather/cityweather/internal/provider/resilience"
	"github.com/cityweather/cityweather/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "openweathermap"

	// DefaultBaseURL is the OpenWeatherMap API base URL.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

	// IconURLFormat renders a condition icon code into an image URL.
	IconURLFormat = "https://openweathermap.org/img/wn/%s@2x.png"
)

// IconURL returns the image URL for an icon code.
func IconURL(icon string) string {
	return fmt.Sprintf(IconURLFormat, icon)
}

// ClientConfig holds configuration for the OpenWeatherMap client.
type ClientConfig struct {
	// APIKey is the OpenWeatherMap API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to OpenWeatherMap API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenWeatherMap API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new OpenWeatherMap client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetForecast fetches the 3-hourly forecast list for a location in metric units.
// A response without a "list" field yields a Forecast with nil Samples.
func (c *Client) GetForecast(ctx context.Context, lat, lon float64) (*weather.Forecast, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	var resp forecastResponse
	if err := c.httpClient.GetJSON(ctx, c.baseURL+"/forecast?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("fetching forecast: %w", err)
	}

	c.logger.Debug().
		Int("samples", len(resp.List)).
		Bool("list_present", resp.List != nil).
		Msg("forecast received")

	return toForecast(lat, lon, &resp), nil
}

// toForecast converts the OpenWeatherMap response to the domain model.
func toForecast(lat, lon float64, resp *forecastResponse) *weather.Forecast {
	forecast := &weather.Forecast{
		Lat: lat,
		Lon: lon,
	}
	if resp.City != nil {
		forecast.City = resp.City.Name
	}
	if resp.List == nil {
		return forecast
	}

	forecast.Samples = make([]weather.Sample, 0, len(resp.List))
	for _, item := range resp.List {
		sample := weather.Sample{
			Timestamp:  item.DtTxt,
			PrecipProb: item.Pop,
		}
		if item.Main != nil {
			sample.Main = &weather.Measurements{
				Temperature: item.Main.Temp,
				Humidity:    item.Main.Humidity,
			}
		}
		if item.Wind != nil {
			sample.WindSpeed = item.Wind.Speed
		}
		if item.Clouds != nil {
			sample.CloudCover = item.Clouds.All
		}
		if item.Weather != nil {
			sample.Conditions = make([]weather.ConditionLabel, 0, len(item.Weather))
			for _, w := range item.Weather {
				sample.Conditions = append(sample.Conditions, weather.ConditionLabel{
					Description: w.Description,
					Icon:        w.Icon,
				})
			}
		}
		forecast.Samples = append(forecast.Samples, sample)
	}

	return forecast
}

// OpenWeatherMap API response structures. Pointers distinguish absent
// fields from zero values.

type forecastResponse struct {
	List []forecastItem `json:"list"`
	City *struct {
		Name string `json:"name"`
	} `json:"city"`
}

type forecastItem struct {
	Dt    int64  `json:"dt"`
	DtTxt string `json:"dt_txt"`
	Main  *struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Clouds *struct {
		All *float64 `json:"all"`
	} `json:"clouds"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Pop *float64 `json:"pop"` // probability of precipitation, 0..1
}
