// Package response writes JSON and problem responses for the /v1 API.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/cityweather/cityweather/internal/api/middleware"
	"github.com/cityweather/cityweather/internal/api/models"
)

// JSON writes data with the given status. Lookup results and provider health
// change from one request to the next, so API responses are marked no-store.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	h := w.Header()
	if id := middleware.GetRequestID(r.Context()); id != "" {
		h.Set(middleware.RequestIDHeader, id)
	}
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error writes problem for the current request path.
func Error(w http.ResponseWriter, r *http.Request, problem *models.Problem) {
	problem.WithInstance(r.URL.Path).Write(w)
}

// BadRequest writes a 400 validation problem.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string, errors []models.FieldError) {
	Error(w, r, models.NewBadRequest(traceID(r), detail, errors))
}

// NotFound writes a 404 problem.
func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewNotFound(traceID(r), detail))
}

// InternalError writes a 500 problem.
func InternalError(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewInternalError(traceID(r), detail))
}

// ServiceUnavailable writes a 503 problem.
func ServiceUnavailable(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewServiceUnavailable(traceID(r), detail))
}

func traceID(r *http.Request) string {
	return middleware.GetRequestID(r.Context())
}
