package web_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityweather/cityweather/internal/lookup"
	"github.com/cityweather/cityweather/internal/weather"
	"github.com/cityweather/cityweather/internal/web"
)

type stubLooker struct {
	result func(place string) *lookup.Result
	gate   chan struct{}
	start  chan struct{}
}

func (s *stubLooker) Lookup(_ context.Context, place string) *lookup.Result {
	if s.start != nil {
		s.start <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	return s.result(place)
}

func successResult(place string) *lookup.Result {
	return &lookup.Result{
		Place: place,
		Stage: lookup.StageDone,
		City:  "New York",
		Current: &weather.CurrentConditions{
			Temperature:  "68.0°F",
			Humidity:     "65%",
			Clouds:       "20%",
			WindSpeed:    "3.5 m/s",
			Description:  "few clouds",
			ChanceOfRain: "30%",
			Conditions:   []weather.ConditionLabel{{Description: "few clouds", Icon: "02d"}},
		},
		Forecast: []weather.DailySummary{
			{Date: "2024-01-01", AvgTemp: "55.0°F", MinTemp: "50.0°F", MaxTemp: "60.0°F", Description: "few clouds"},
			{Date: "2024-01-02", AvgTemp: "54.0°F", MinTemp: "51.0°F", MaxTemp: "58.0°F", Description: "light rain"},
		},
	}
}

type testServer struct {
	handler  *web.Handler
	sessions *lookup.SessionStore
	mux      http.Handler
}

func newTestServer(t *testing.T, looker lookup.Looker) *testServer {
	t.Helper()
	sessions := lookup.NewSessionStore(lookup.SessionStoreConfig{Logger: zerolog.Nop()})
	h, err := web.NewHandler(web.Config{Sessions: sessions, Service: looker, Logger: zerolog.Nop()})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/", h.Page)
	r.Post("/lookup", h.Lookup)
	return &testServer{handler: h, sessions: sessions, mux: r}
}

func (s *testServer) get(t *testing.T, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) post(t *testing.T, place string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"place": {place}}
	req := httptest.NewRequest(http.MethodPost, "/lookup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == web.SessionCookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestPage_NewSession(t *testing.T) {
	srv := newTestServer(t, &stubLooker{result: successResult})

	rec := srv.get(t, "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	cookie := sessionCookie(t, rec)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, 1, srv.sessions.Len())

	body := rec.Body.String()
	assert.Contains(t, body, `<form method="post" action="/lookup">`)
	assert.NotContains(t, body, "Click here")
	assert.NotContains(t, body, "Loading…")

	// The cookie is reused on the next request
	rec = srv.get(t, "/", cookie)
	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, 1, srv.sessions.Len())
}

func TestLookup_ThenCurrentView(t *testing.T) {
	srv := newTestServer(t, &stubLooker{result: successResult})
	cookie := sessionCookie(t, srv.get(t, "/", nil))

	rec := srv.post(t, "new york", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	body := srv.get(t, "/", cookie).Body.String()
	assert.Contains(t, body, "Current Weather for New York")
	assert.Contains(t, body, `value="new york"`)
	assert.Contains(t, body, "https://openweathermap.org/img/wn/02d@2x.png")
	assert.Contains(t, body, "68.0°F")
	assert.Contains(t, body, "few clouds")
	assert.Contains(t, body, "Want 5-day weather analysis? Click here")
	assert.Contains(t, body, `fill="#0088FE"`)
	assert.NotContains(t, body, "Five-Day Forecast")
}

func TestPage_ToggleForecast(t *testing.T) {
	srv := newTestServer(t, &stubLooker{result: successResult})
	cookie := sessionCookie(t, srv.get(t, "/", nil))
	srv.post(t, "new york", cookie)

	body := srv.get(t, "/?view=forecast", cookie).Body.String()
	assert.Contains(t, body, "Five-Day Forecast for New York")
	assert.Contains(t, body, "Show Current Day Weather")
	assert.Contains(t, body, `class="line-chart"`)
	assert.Contains(t, body, "Avg Temp (°F)")
	assert.Contains(t, body, "2024-01-02")
	assert.NotContains(t, body, "Current Weather for")

	// The choice sticks to the session
	body = srv.get(t, "/", cookie).Body.String()
	assert.Contains(t, body, "Five-Day Forecast for New York")

	body = srv.get(t, "/?view=current", cookie).Body.String()
	assert.Contains(t, body, "Current Weather for New York")
}

func TestPage_ForecastViewHiddenWithoutDays(t *testing.T) {
	srv := newTestServer(t, &stubLooker{result: func(place string) *lookup.Result {
		res := successResult(place)
		res.Forecast = nil
		res.ForecastErr = &lookup.Error{Kind: lookup.KindNoForecastData, Message: "No forecast data available"}
		return res
	}})
	cookie := sessionCookie(t, srv.get(t, "/", nil))
	srv.post(t, "new york", cookie)

	body := srv.get(t, "/?view=forecast", cookie).Body.String()
	assert.Contains(t, body, "Show Current Day Weather")
	assert.NotContains(t, body, "Five-Day Forecast")
	assert.NotContains(t, body, `class="line-chart"`)
}

func TestLookup_ShowsError(t *testing.T) {
	srv := newTestServer(t, &stubLooker{result: func(place string) *lookup.Result {
		return &lookup.Result{
			Place: place,
			Stage: lookup.StageFailed,
			Err:   &lookup.Error{Kind: lookup.KindLocationNotFound, Message: lookup.MsgLocationNotFound},
		}
	}})
	cookie := sessionCookie(t, srv.get(t, "/", nil))
	srv.post(t, "Atlantis", cookie)

	body := srv.get(t, "/?view=forecast", cookie).Body.String()
	assert.Contains(t, body, `<p class="error">Location not found.</p>`)
	assert.NotContains(t, body, "Click here")
	assert.NotContains(t, body, "Five-Day Forecast", "toggle needs current conditions")
}

func TestPage_ShowsPendingLookup(t *testing.T) {
	looker := &stubLooker{
		result: successResult,
		gate:   make(chan struct{}),
		start:  make(chan struct{}, 1),
	}
	srv := newTestServer(t, looker)
	cookie := sessionCookie(t, srv.get(t, "/", nil))

	done := make(chan struct{})
	go func() {
		srv.post(t, "Oslo", cookie)
		close(done)
	}()
	<-looker.start

	body := srv.get(t, "/", cookie).Body.String()
	assert.Contains(t, body, "Loading…")

	close(looker.gate)
	<-done

	body = srv.get(t, "/", cookie).Body.String()
	assert.NotContains(t, body, "Loading…")
	assert.Contains(t, body, "Current Weather for Oslo")
}

func TestPage_EscapesPlace(t *testing.T) {
	srv := newTestServer(t, &stubLooker{result: successResult})
	cookie := sessionCookie(t, srv.get(t, "/", nil))
	srv.post(t, `<script>alert(1)</script>`, cookie)

	body := srv.get(t, "/", cookie).Body.String()
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
}
