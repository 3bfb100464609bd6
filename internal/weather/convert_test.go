package weather_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cityweather/cityweather/internal/weather"
)

func TestCelsiusToFahrenheit(t *testing.T) {
	tests := []struct {
		name     string
		celsius  string
		expected string
	}{
		{"freezing", "0", "32.0°F"},
		{"boiling", "100", "212.0°F"},
		{"crossover", "-40", "-40.0°F"},
		{"mild", "15", "59.0°F"},
		{"fractional", "36.6", "97.9°F"},
		{"negative zero is not shown", "-17.8", "0.0°F"},
		{"surrounding whitespace", " 20 ", "68.0°F"},
		{"text", "abc", "N/A"},
		{"empty", "", "N/A"},
		{"not a number", "NaN", "N/A"},
		{"infinite", "Inf", "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, weather.CelsiusToFahrenheit(tt.celsius))
		})
	}
}
