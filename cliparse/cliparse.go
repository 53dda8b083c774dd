// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          int
	DatabaseURL   string
	DatabaseType  string
	APIBaseURL    string
	GeocoderURL   string
	GeocoderAgent string
	SessionSecret string
	AllowedOrigin string
	SecureCookies bool

	HTTPTimeout     time.Duration
	BreakerFailures int
	BreakerOpenFor  time.Duration
}

const (
	DefaultPort          = 3320
	DefaultAPIBaseURL    = "http://localhost:8000/api"
	DefaultGeocoderURL   = "https://nominatim.openstreetmap.org"
	DefaultGeocoderAgent = "farmdesk/1.0"
)

// LoadDotEnv reads KEY=value pairs from path into the process environment.
// Variables already set are left alone. A missing file is not an error.
func LoadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to load env file", "path", path, "error", err)
		}
		return
	}
	slog.Info("loaded env file", "path", path)
}

// ParseFlags validates flags and falls back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("farmdesk", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.APIBaseURL, "api", "", "Farm management API base URL")
	fs.StringVar(&cfg.GeocoderURL, "geocoder", "", "Nominatim base URL")
	fs.StringVar(&cfg.AllowedOrigin, "origin", "", "Allowed CORS origin for a separately served frontend")
	fs.BoolVar(&cfg.SecureCookies, "secure-cookies", false, "Mark session cookies Secure")
	fs.DurationVar(&cfg.HTTPTimeout, "timeout", 0, "Upstream HTTP timeout")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSecret, "session-secret", "", "Session cookie secret (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "postgres" {
			return Config{}, errors.New("database URL required for postgres (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = "farmdesk.db"
	}

	cfg.APIBaseURL = firstNonEmpty(cfg.APIBaseURL, os.Getenv("API_BASE_URL"), DefaultAPIBaseURL)
	cfg.GeocoderURL = firstNonEmpty(cfg.GeocoderURL, os.Getenv("GEOCODER_URL"), DefaultGeocoderURL)
	cfg.GeocoderAgent = firstNonEmpty(os.Getenv("GEOCODER_USER_AGENT"), DefaultGeocoderAgent)
	cfg.AllowedOrigin = firstNonEmpty(cfg.AllowedOrigin, os.Getenv("ALLOWED_ORIGIN"))
	if !cfg.SecureCookies && os.Getenv("SECURE_COOKIES") == "true" {
		cfg.SecureCookies = true
	}

	if cfg.HTTPTimeout == 0 {
		d, err := durationEnv("HTTP_TIMEOUT", 10*time.Second)
		if err != nil {
			return Config{}, err
		}
		cfg.HTTPTimeout = d
	}

	failures := 5
	if v := os.Getenv("BREAKER_FAILURES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, errors.New("invalid BREAKER_FAILURES env variable")
		}
		failures = n
	}
	cfg.BreakerFailures = failures

	openFor, err := durationEnv("BREAKER_OPEN_FOR", 30*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.BreakerOpenFor = openFor

	// Secrets - MUST be provided
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	}
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return d, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
