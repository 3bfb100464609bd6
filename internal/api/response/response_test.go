package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityweather/cityweather/internal/api/middleware"
	"github.com/cityweather/cityweather/internal/api/models"
	"github.com/cityweather/cityweather/internal/api/response"
)

// serve runs fn behind the RequestID middleware so the request carries an ID.
func serve(t *testing.T, path, requestID string, fn http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	if requestID != "" {
		req.Header.Set(middleware.RequestIDHeader, requestID)
	}
	rec := httptest.NewRecorder()
	middleware.RequestID(fn).ServeHTTP(rec, req)
	return rec
}

func TestJSON(t *testing.T) {
	rec := serve(t, "/v1/lookup", "client-req-1", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"place": "Paris"})
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "client-req-1", rec.Header().Get(middleware.RequestIDHeader))
	assert.JSONEq(t, `{"place":"Paris"}`, rec.Body.String())
}

func TestJSON_WithoutRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	response.JSON(rec, httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody), http.StatusOK, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.Zero(t, rec.Body.Len())
}

func TestProblems(t *testing.T) {
	tests := []struct {
		name       string
		write      func(http.ResponseWriter, *http.Request)
		wantStatus int
		wantType   string
	}{
		{
			name: "bad request",
			write: func(w http.ResponseWriter, r *http.Request) {
				response.BadRequest(w, r, "place is required", []models.FieldError{{Field: "place", Message: "is required"}})
			},
			wantStatus: http.StatusBadRequest,
			wantType:   models.ProblemTypeValidation,
		},
		{
			name:       "not found",
			write:      func(w http.ResponseWriter, r *http.Request) { response.NotFound(w, r, "no such route") },
			wantStatus: http.StatusNotFound,
			wantType:   models.ProblemTypeNotFound,
		},
		{
			name:       "internal error",
			write:      func(w http.ResponseWriter, r *http.Request) { response.InternalError(w, r, "boom") },
			wantStatus: http.StatusInternalServerError,
			wantType:   models.ProblemTypeInternal,
		},
		{
			name:       "service unavailable",
			write:      func(w http.ResponseWriter, r *http.Request) { response.ServiceUnavailable(w, r, "providers down") },
			wantStatus: http.StatusServiceUnavailable,
			wantType:   models.ProblemTypeUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, "/v1/lookup", "", tt.write)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

			var problem models.Problem
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&problem))
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, "/v1/lookup", problem.Instance)
			assert.Equal(t, rec.Header().Get(middleware.RequestIDHeader), problem.TraceID)
			assert.NotEmpty(t, problem.TraceID)
		})
	}
}

func TestError_InvalidPlace(t *testing.T) {
	rec := serve(t, "/v1/lookup", "", func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, models.NewInvalidPlace(middleware.GetRequestID(r.Context()), "Please enter a city name."))
	})

	var problem models.Problem
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&problem))
	assert.Equal(t, http.StatusBadRequest, problem.Status)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "place", problem.Errors[0].Field)
	assert.Equal(t, models.FieldCodeInvalidPlace, problem.Errors[0].Code)
	assert.Equal(t, "Please enter a city name.", problem.Detail)
}
