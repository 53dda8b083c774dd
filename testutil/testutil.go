// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/farmdesk/cliparse"
	"github.com/danielhkuo/farmdesk/db"
)

// TestSessionSecret signs session cookies in tests
const TestSessionSecret = "test-session-secret"

// SetupTestDB creates a fresh sqlite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", filepath.Join(t.TempDir(), "farmdesk-test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration pointing at the given
// backend and geocoder
func GetTestConfig(apiURL, geocoderURL string) cliparse.Config {
	return cliparse.Config{
		Port:            3320,
		DatabaseType:    "sqlite",
		APIBaseURL:      apiURL,
		GeocoderURL:     geocoderURL,
		GeocoderAgent:   "farmdesk-test/1.0",
		SessionSecret:   TestSessionSecret,
		HTTPTimeout:     2 * time.Second,
		BreakerFailures: 5,
		BreakerOpenFor:  time.Minute,
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// Browser sends requests to a handler and carries cookies between them
type Browser struct {
	handler http.Handler
	cookies map[string]*http.Cookie
}

func NewBrowser(handler http.Handler) *Browser {
	return &Browser{handler: handler, cookies: make(map[string]*http.Cookie)}
}

// Do serves one request and records any cookies the response sets
func (b *Browser) Do(method, path string, body interface{}) *httptest.ResponseRecorder {
	req := MakeRequest(method, path, body, nil)
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	b.handler.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return w
}

// Cookie returns the current value of a cookie, or ""
func (b *Browser) Cookie(name string) string {
	if c, ok := b.cookies[name]; ok {
		return c.Value
	}
	return ""
}
