// Package web serves the browser page: a city search form, current
// conditions with proportion charts, and a five-day temperature chart.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cityweather/cityweather/internal/api/middleware"
	"github.com/cityweather/cityweather/internal/lookup"
	"github.com/cityweather/cityweather/internal/weather"
	"github.com/cityweather/cityweather/internal/weather/openweathermap"
)

// SessionCookieName is the cookie carrying the browser session ID.
const SessionCookieName = "cw_session"

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"add": func(a, b float64) float64 { return a + b },
	"sub": func(a, b float64) float64 { return a - b },
}

// Config holds configuration for the page handler.
type Config struct {
	Sessions *lookup.SessionStore
	Service  lookup.Looker
	Logger   zerolog.Logger

	// SecureCookie marks the session cookie Secure; set it when serving
	// over TLS.
	SecureCookie bool
}

// Handler serves the page and form submissions.
type Handler struct {
	sessions     *lookup.SessionStore
	service      lookup.Looker
	logger       zerolog.Logger
	secureCookie bool
	tmpl         *template.Template
}

// NewHandler parses the embedded templates and creates a Handler.
func NewHandler(cfg Config) (*Handler, error) {
	tmpl, err := template.New("page.html").Funcs(funcs).ParseFS(templateFS, "templates/page.html")
	if err != nil {
		return nil, err
	}
	return &Handler{
		sessions:     cfg.Sessions,
		service:      cfg.Service,
		logger:       cfg.Logger,
		secureCookie: cfg.SecureCookie,
		tmpl:         tmpl,
	}, nil
}

// Page handles GET / - render the session's view. ?view=forecast or
// ?view=current switches between the five-day and current views.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)

	switch r.URL.Query().Get("view") {
	case "forecast":
		sess.SetShowForecast(true)
	case "current":
		sess.SetShowForecast(false)
	}

	h.render(w, r, newPageData(sess.View()))
}

// Lookup handles POST /lookup - run a lookup for the submitted place on the
// caller's session, then redirect back to the page.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	place := r.PostFormValue("place")

	res, applied := sess.Run(r.Context(), h.service, place)
	if !applied {
		h.logger.Debug().
			Str("session_id", sess.ID()).
			Str("place", res.Place).
			Msg("stale lookup discarded")
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) *lookup.Session {
	var id string
	if c, err := r.Cookie(SessionCookieName); err == nil {
		id = c.Value
	}

	sess, created := h.sessions.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    sess.ID(),
			Path:     "/",
			HttpOnly: true,
			Secure:   h.secureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data pageData) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "page.html", data); err != nil {
		h.logger.Error().Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("failed to render page")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

type pageData struct {
	Place        string
	City         string
	Pending      bool
	Message      string
	ShowForecast bool

	Current       *weather.CurrentConditions
	IconURL       string
	HumidityChart *PieChart
	RainChart     *PieChart

	Forecast  []weather.DailySummary
	TempChart *LineChart
}

func newPageData(v lookup.View) pageData {
	data := pageData{
		Place:   v.Place,
		City:    cases.Title(language.English).String(v.Place),
		Pending: v.Pending,
	}

	res := v.Result
	if res == nil {
		return data
	}
	data.Message = res.Message()

	if res.Current != nil {
		data.Current = res.Current
		data.ShowForecast = v.ShowForecast
		if icon := res.Current.Icon(); icon != "" {
			data.IconURL = openweathermap.IconURL(icon)
		}
		data.HumidityChart = NewProportionChart("Humidity", "Humidity", "Remaining", res.Current.Humidity)
		data.RainChart = NewProportionChart("Chance of Rain", "Rain Chance", "No Rain", res.Current.ChanceOfRain)
	}

	data.Forecast = res.Forecast
	data.TempChart = NewTemperatureChart(res.Forecast)
	return data
}
