package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/cityweather/cityweather/internal/api/models"
)

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	// Requests per window
	RequestLimit int
	// Window duration
	WindowLength time.Duration
}

// Default rate limit configurations.
var (
	// LookupRateLimit applies to lookups, each of which calls two upstream
	// providers (30 req/min).
	LookupRateLimit = RateLimitConfig{
		RequestLimit: 30,
		WindowLength: time.Minute,
	}

	// StandardRateLimit applies to everything else (100 req/min).
	StandardRateLimit = RateLimitConfig{
		RequestLimit: 100,
		WindowLength: time.Minute,
	}
)

// RateLimitByIP creates a rate limiter middleware using client IP address.
// Uses X-Forwarded-For header if present (extracted by chi's RealIP middleware).
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(rateLimitExceededHandler),
	)
}

// RateLimitBySession creates a rate limiter keyed by the browser session
// cookie. Requests without the cookie are limited by client IP.
func RateLimitBySession(cfg RateLimitConfig, cookieName string) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(keyBySessionOrIP(cookieName)),
		httprate.WithLimitHandler(rateLimitExceededHandler),
	)
}

func keyBySessionOrIP(cookieName string) httprate.KeyFunc {
	return func(r *http.Request) (string, error) {
		if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
			return "session:" + c.Value, nil
		}
		return httprate.KeyByRealIP(r)
	}
}

// rateLimitExceededHandler writes an RFC7807 Problem response when rate limit is exceeded.
func rateLimitExceededHandler(w http.ResponseWriter, r *http.Request) {
	problem := models.NewTooManyRequests(GetRequestID(r.Context()), "Rate limit exceeded. Please try again later.")
	problem.Instance = r.URL.Path

	// httprate doesn't expose the reset time
	w.Header().Set("Retry-After", strconv.Itoa(60))

	problem.Write(w)
}
