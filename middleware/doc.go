// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status, duration_ms).

# Sessions

WithSession attaches the caller's session to the request context, issuing
a signed farmdesk_session cookie when the browser has none:

	handler = middleware.WithSession(store, cfg.SessionSecret, cfg.SecureCookies)(handler)
	sess := middleware.SessionFrom(r.Context())

# Metrics

Metrics counts requests and observes latency per route label:

	m := middleware.NewMetrics(registry)
	mux.HandleFunc("POST /api/farms", m.Wrap("farms.submit", h.Submit))

# CORS Middleware

Enable credentialed cross-origin requests when the console is served from
another origin:

	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigin)(mux),
	}

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
*/
package middleware
