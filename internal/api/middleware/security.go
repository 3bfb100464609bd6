package middleware

import (
	"net/http"

	"github.com/cityweather/cityweather/internal/api/models"
)

// Content Security Policies for the two kinds of responses served.
const (
	// APIPolicy forbids loading anything; JSON responses never render.
	APIPolicy = "default-src 'none'; frame-ancestors 'none'"

	// PagePolicy allows the server-rendered page, its inline SVG and styles,
	// and weather icons from OpenWeatherMap.
	PagePolicy = "default-src 'none'; style-src 'unsafe-inline'; img-src 'self' data: https://openweathermap.org; form-action 'self'; base-uri 'none'; frame-ancestors 'none'"
)

// SecurityHeaders adds standard security headers to all HTTP responses, with
// csp as the Content-Security-Policy.
// Headers set:
//   - X-Content-Type-Options: nosniff
//   - X-Frame-Options: DENY
//   - Strict-Transport-Security: max-age=31536000; includeSubDomains
//   - Content-Security-Policy: csp
//   - Referrer-Policy: strict-origin-when-cross-origin
//   - Permissions-Policy: geolocation=(), camera=(), microphone=()
func SecurityHeaders(csp string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			h.Set("Content-Security-Policy", csp)
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "geolocation=(), camera=(), microphone=()")

			next.ServeHTTP(w, r)
		})
	}
}

// RequireTLS rejects plain-HTTP requests when enabled.
// It checks the X-Forwarded-Proto header set by load balancers; requests
// without the header are let through.
func RequireTLS(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			proto := r.Header.Get("X-Forwarded-Proto")
			if proto != "" && proto != "https" {
				models.NewTLSRequired(GetRequestID(r.Context())).WithInstance(r.URL.Path).Write(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
