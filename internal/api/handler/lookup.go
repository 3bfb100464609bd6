package handler

import (
	"net/http"

	"github.com/cityweather/cityweather/internal/api/middleware"
	"github.com/cityweather/cityweather/internal/api/models"
	"github.com/cityweather/cityweather/internal/api/response"
	"github.com/cityweather/cityweather/internal/lookup"
	"github.com/cityweather/cityweather/internal/weather/openweathermap"
)

// LookupHandler serves stateless weather lookups.
type LookupHandler struct {
	service lookup.Looker
}

// NewLookupHandler creates a new LookupHandler.
func NewLookupHandler(service lookup.Looker) *LookupHandler {
	return &LookupHandler{service: service}
}

// Lookup handles GET /v1/lookup?place= - geocode a place and summarize its
// forecast. Lookup failures are reported in the body with status 200; only
// an unusable place is a client error.
func (h *LookupHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	place := r.URL.Query().Get("place")
	if _, err := lookup.ValidatePlace(place); err != nil {
		response.Error(w, r, models.NewInvalidPlace(middleware.GetRequestID(r.Context()), err.Error()))
		return
	}

	res := h.service.Lookup(r.Context(), place)
	response.JSON(w, r, http.StatusOK, models.NewLookupResponse(res, openweathermap.IconURL))
}
