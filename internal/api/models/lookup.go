package models

import (
	"github.com/cityweather/cityweather/internal/geocode"
	"github.com/cityweather/cityweather/internal/lookup"
	"github.com/cityweather/cityweather/internal/weather"
)

// LookupResponse is the JSON body of GET /v1/lookup.
type LookupResponse struct {
	Place    string                 `json:"place"`
	Stage    lookup.Stage           `json:"stage"`
	Location *geocode.Place         `json:"location,omitempty"`
	City     string                 `json:"city,omitempty"`
	Current  *CurrentConditions     `json:"current,omitempty"`
	Forecast []weather.DailySummary `json:"forecast"`
	Message  string                 `json:"message,omitempty"`
	Errors   []LookupError          `json:"errors,omitempty"`
}

// CurrentConditions adds the icon URL to the extracted conditions.
type CurrentConditions struct {
	*weather.CurrentConditions
	IconURL string `json:"iconUrl,omitempty"`
}

// LookupError is one classified lookup failure.
type LookupError struct {
	Kind    lookup.Kind `json:"kind"`
	Message string      `json:"message"`
}

// NewLookupResponse converts a lookup result into its JSON form. iconURL maps
// a condition icon code to an image URL.
func NewLookupResponse(res *lookup.Result, iconURL func(string) string) LookupResponse {
	out := LookupResponse{
		Place:    res.Place,
		Stage:    res.Stage,
		Location: res.Location,
		City:     res.City,
		Forecast: res.Forecast,
		Message:  res.Message(),
	}
	if out.Forecast == nil {
		out.Forecast = []weather.DailySummary{}
	}
	if res.Current != nil {
		out.Current = &CurrentConditions{CurrentConditions: res.Current}
		if icon := res.Current.Icon(); icon != "" && iconURL != nil {
			out.Current.IconURL = iconURL(icon)
		}
	}
	for _, e := range res.Errors() {
		out.Errors = append(out.Errors, LookupError{Kind: e.Kind, Message: e.Message})
	}
	return out
}
