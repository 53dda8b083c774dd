// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/farmdesk/apiclient"
	"github.com/danielhkuo/farmdesk/cliparse"
	"github.com/danielhkuo/farmdesk/geocode"
	"github.com/danielhkuo/farmdesk/handlers"
	"github.com/danielhkuo/farmdesk/middleware"
	"github.com/danielhkuo/farmdesk/sessions"
)

// NewRouter builds the console routes. The returned registry holds the
// per-session drafts so the caller can sweep idle ones.
func NewRouter(db *sql.DB, cfg cliparse.Config) (*http.ServeMux, *sessions.Registry) {
	mux := http.NewServeMux()

	// Upstream clients
	api := apiclient.New(cfg.APIBaseURL, cfg.HTTPTimeout, cfg.BreakerFailures, cfg.BreakerOpenFor)
	geocoder := geocode.New(cfg.GeocoderURL, cfg.GeocoderAgent, cfg.HTTPTimeout, cfg.BreakerFailures, cfg.BreakerOpenFor)

	store := sessions.NewStore(db)
	registry := sessions.NewRegistry(geocoder)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(store, registry, api)
	farmHandler := handlers.NewFarmHandler(registry, api)
	navHandler := handlers.NewNavHandler(registry)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(reg)
	withSession := middleware.WithSession(store, cfg.SessionSecret, cfg.SecureCookies)

	route := func(pattern, name string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithLogging(metrics.Wrap(name, withSession(h).ServeHTTP)))
	}
	// public routes are pure calculations and never touch a session
	public := func(pattern, name string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithLogging(metrics.Wrap(name, h)))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Login
	route("GET /api/auth/session", "auth.session", authHandler.Session)
	route("POST /api/auth/login", "auth.login", authHandler.Login)
	route("POST /api/auth/verify", "auth.verify", authHandler.Verify)
	route("POST /api/auth/back", "auth.back", authHandler.Back)
	route("POST /api/auth/logout", "auth.logout", authHandler.Logout)

	// Navigation
	route("POST /api/nav", "nav.navigate", navHandler.Navigate)

	// Farms
	route("GET /api/farms", "farms.list", farmHandler.List)
	route("POST /api/farms", "farms.submit", farmHandler.Submit)
	route("GET /api/farms/soil-types", "farms.soil_types", farmHandler.SoilTypes)
	public("GET /api/farms/plants", "farms.plants", farmHandler.Plants)
	public("GET /api/farms/irrigation-fields", "farms.irrigation_fields", farmHandler.IrrigationFields)

	// Farm form and map draft
	route("POST /api/farms/form", "form.open", farmHandler.OpenForm)
	route("POST /api/farms/form/tab", "form.tab", farmHandler.ActivateTab)
	route("GET /api/farms/draft", "draft.get", farmHandler.Draft)
	route("POST /api/farms/draft/shapes", "draft.shape", farmHandler.ShapeEvent)
	route("POST /api/farms/draft/search", "draft.search", farmHandler.Search)
	route("POST /api/farms/draft/reset", "draft.reset", farmHandler.Reset)

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("farmdesk console v1"))
	})

	return mux, registry
}
