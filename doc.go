// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the farmdesk console server.

farmdesk is the backend for the farm management console: it signs users in
with a password and an emailed OTP, then drives farm registration, where the
farm's location marker and boundary polygon are drawn on a browser map. The
farm data itself lives in the farm management REST API; this server keeps
only sessions and in-progress drafts.

# Starting the Server

	SESSION_SECRET=... API_BASE_URL=http://localhost:8000/api go run .

Or with flags:

	go run . -p 3320 -t postgres -d "postgres://..."

A .env file in the working directory is loaded first; real environment
variables win over it.

# Configuration

Required settings:

  - SESSION_SECRET: HMAC key for session cookies
  - DATABASE_URL (-d): needed when DATABASE_TYPE is postgres

Optional settings:

  - PORT (-p): Server port (default: 3320)
  - DATABASE_TYPE (-t): sqlite (default, farmdesk.db) or postgres
  - API_BASE_URL (-api): farm management API root
  - GEOCODER_URL, GEOCODER_USER_AGENT: Nominatim-compatible search service
  - ALLOWED_ORIGIN, SECURE_COOKIES: browser-facing settings
  - HTTP_TIMEOUT, BREAKER_FAILURES, BREAKER_OPEN_FOR: upstream call limits

# Architecture

  - handlers: HTTP request handlers (auth, farms, navigation)
  - router: Route definitions using Go 1.22+ routing
  - middleware: sessions, metrics, CORS, logging, JSON helpers
  - capture: map drawing controller, plant count, map bounds
  - views: navigation state and farm form/table rendering
  - sessions: session store and per-session workspaces
  - apiclient, geocode: upstream clients behind circuit breakers
  - models: Request/response and upstream types
  - auth: ID generation and cookie signing
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
