// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("API_BASE_URL", "http://api.test/api")
	t.Setenv("HTTP_TIMEOUT", "3s")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.APIBaseURL != "http://api.test/api" {
		t.Errorf("expected API base from env, got %q", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v", cfg.HTTPTimeout)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected sqlite default, got %q", cfg.DatabaseType)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SESSION_SECRET", "env-secret")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-session-secret", "s1", "-api", "http://cli/api"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.SessionSecret != "s1" {
		t.Errorf("CLI should override env: expected s1, got %q", cfg.SessionSecret)
	}
	if cfg.APIBaseURL != "http://cli/api" {
		t.Errorf("expected CLI API base, got %q", cfg.APIBaseURL)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")

	cfg, err := ParseFlags(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("expected default port, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "farmdesk.db" {
		t.Errorf("expected default sqlite file, got %q", cfg.DatabaseURL)
	}
	if cfg.GeocoderURL != DefaultGeocoderURL {
		t.Errorf("expected default geocoder, got %q", cfg.GeocoderURL)
	}
	if cfg.BreakerFailures != 5 || cfg.BreakerOpenFor != 30*time.Second {
		t.Errorf("unexpected breaker defaults: %d %v", cfg.BreakerFailures, cfg.BreakerOpenFor)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing secret", nil, nil},
		{"bad port", map[string]string{"PORT": "abc", "SESSION_SECRET": "s"}, nil},
		{"bad db type", map[string]string{"SESSION_SECRET": "s"}, []string{"-t", "mysql"}},
		{"postgres without url", map[string]string{"SESSION_SECRET": "s", "DATABASE_TYPE": "postgres"}, nil},
		{"bad timeout", map[string]string{"SESSION_SECRET": "s", "HTTP_TIMEOUT": "soon"}, nil},
		{"bad breaker", map[string]string{"SESSION_SECRET": "s", "BREAKER_FAILURES": "0"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SESSION_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("FARMDESK_TEST_VALUE=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FARMDESK_TEST_VALUE", "")
	os.Unsetenv("FARMDESK_TEST_VALUE")

	LoadDotEnv(path)
	if got := os.Getenv("FARMDESK_TEST_VALUE"); got != "from-file" {
		t.Errorf("expected value from env file, got %q", got)
	}

	// Missing files are ignored
	LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
}
