// Package api wires the HTTP surface of cityweather: the browser page and the
// JSON API under /v1.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/cityweather/cityweather/internal/api/handler"
	"github.com/cityweather/cityweather/internal/api/middleware"
	"github.com/cityweather/cityweather/internal/api/response"
	"github.com/cityweather/cityweather/internal/lookup"
	"github.com/cityweather/cityweather/internal/provider/resilience"
	"github.com/cityweather/cityweather/internal/web"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger
	Metrics   *middleware.Metrics

	// LookupService runs stateless lookups for the JSON API.
	LookupService lookup.Looker

	// Registry exposes provider health on /v1/ops/status (optional).
	Registry *resilience.Registry

	// Sessions is reported on /v1/ops/status (optional).
	Sessions handler.SessionCounter

	// Page serves the browser UI. When nil only the JSON API is mounted.
	Page *web.Handler

	// RequireTLS rejects plain-HTTP requests behind a load balancer.
	RequireTLS bool
}

// NewRouter creates a new chi router with all routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID) // Generate/propagate request ID first
	r.Use(middleware.Tracing()) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))         // Structured logging
	r.Use(middleware.Recovery(cfg.Logger))       // Panic recovery
	r.Use(chimiddleware.RealIP)                  // Real IP extraction
	r.Use(middleware.RequireTLS(cfg.RequireTLS)) // TLS enforcement

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry, cfg.Sessions)
	lookupHandler := handler.NewLookupHandler(cfg.LookupService)

	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min

	// Browser page
	if cfg.Page != nil {
		r.Group(func(r chi.Router) {
			r.Use(middleware.SecurityHeaders(middleware.PagePolicy))
			r.With(standardRateLimit).Get("/", cfg.Page.Page)
			r.With(middleware.RateLimitBySession(middleware.LookupRateLimit, web.SessionCookieName)).
				Post("/lookup", cfg.Page.Lookup)
		})
	}

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.SecurityHeaders(middleware.APIPolicy))
		r.Use(middleware.ContentTypeJSON)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			response.NotFound(w, r, "no route matches "+r.URL.Path)
		})

		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Lookups call two upstream providers - strict rate limiting
		r.With(middleware.RateLimitByIP(middleware.LookupRateLimit)).Get("/lookup", lookupHandler.Lookup)
	})

	return r
}
