// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cliparse.LoadDotEnv(".env")
	cfg, err := cliparse.ParseFlags(os.Args[1:])

LoadDotEnv is optional; it copies a .env file into the process environment
without overriding variables that are already set.

# Config Fields

  - Port: Server listen port (default: 3320)
  - DatabaseType: sqlite (default) or postgres
  - DatabaseURL: sqlite file path (default: farmdesk.db) or PostgreSQL connection string
  - APIBaseURL: Farm management REST API (default: http://localhost:8000/api)
  - GeocoderURL: Nominatim instance (default: https://nominatim.openstreetmap.org)
  - SessionSecret: Secret for signing session cookies (required)
  - HTTPTimeout, BreakerFailures, BreakerOpenFor: upstream call limits

# CLI Flags

	-p               Server port
	-d               Database URL
	-t               Database type
	-api             API base URL
	-geocoder        Geocoder base URL
	-origin          Allowed CORS origin
	-secure-cookies  Mark session cookies Secure
	-timeout         Upstream HTTP timeout
	-session-secret  Session cookie secret

# Environment Variables

Flags fall back to environment variables:

	PORT                → -p
	DATABASE_URL        → -d
	DATABASE_TYPE       → -t
	API_BASE_URL        → -api
	GEOCODER_URL        → -geocoder
	ALLOWED_ORIGIN      → -origin
	SECURE_COOKIES      → -secure-cookies
	HTTP_TIMEOUT        → -timeout
	SESSION_SECRET      → -session-secret
	GEOCODER_USER_AGENT
	BREAKER_FAILURES
	BREAKER_OPEN_FOR

CLI flags take precedence over environment variables.
*/
package cliparse
