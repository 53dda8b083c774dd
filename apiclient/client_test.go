// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/danielhkuo/farmdesk/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/", 2*time.Second, 2, time.Minute), &calls
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestBearerTokenInjection(t *testing.T) {
	var gotAuth, gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		writeJSON(w, http.StatusOK, map[string]any{"id": 7, "username": "asha", "email": "asha@example.com"})
	})

	profile, err := client.Me(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q, want Bearer tok-1", gotAuth)
	}
	if gotPath != "/api/users/me/" {
		t.Errorf("path = %q, want /api/users/me/", gotPath)
	}
	want := models.UserProfile{ID: "7", Username: "asha", Email: "asha@example.com"}
	if diff := cmp.Diff(want, profile); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestNoTokenNoHeader(t *testing.T) {
	var gotAuth string
	var gotBody map[string]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, http.StatusOK, map[string]string{"message": "sent"})
	})

	if err := client.RequestOTP(context.Background(), "asha@example.com"); err != nil {
		t.Fatalf("RequestOTP() error = %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no Authorization header, got %q", gotAuth)
	}
	if gotBody["email"] != "asha@example.com" {
		t.Errorf("expected email in body, got %v", gotBody)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       any
		wantKind   Kind
		wantDetail string
		wantCode   string
		wantFields map[string][]string
	}{
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			body:       map[string]string{"detail": "No active account found with the given credentials"},
			wantKind:   KindUnauthorized,
			wantDetail: "No active account found with the given credentials",
		},
		{
			name:   "validation",
			status: http.StatusBadRequest,
			body: map[string]any{
				"name":      []string{"This field is required."},
				"area_size": []string{"A valid number is required.", "Must be positive."},
			},
			wantKind: KindValidation,
			wantFields: map[string][]string{
				"name":      {"This field is required."},
				"area_size": {"A valid number is required.", "Must be positive."},
			},
		},
		{
			name:       "rejected with code",
			status:     http.StatusBadRequest,
			body:       map[string]string{"detail": "Invalid OTP", "code": "invalid_otp"},
			wantKind:   KindRejected,
			wantDetail: "Invalid OTP",
			wantCode:   "invalid_otp",
		},
		{
			name:       "error key",
			status:     http.StatusForbidden,
			body:       map[string]string{"error": "forbidden"},
			wantKind:   KindRejected,
			wantDetail: "forbidden",
		},
		{
			name:     "server",
			status:   http.StatusInternalServerError,
			body:     "boom",
			wantKind: KindServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			_, err := client.ObtainToken(context.Background(), "u", "p")
			apiErr, ok := AsError(err)
			if !ok {
				t.Fatalf("expected *Error, got %v", err)
			}
			if apiErr.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", apiErr.Kind, tt.wantKind)
			}
			if apiErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", apiErr.Status, tt.status)
			}
			if apiErr.Detail != tt.wantDetail {
				t.Errorf("Detail = %q, want %q", apiErr.Detail, tt.wantDetail)
			}
			if apiErr.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", apiErr.Code, tt.wantCode)
			}
			if diff := cmp.Diff(tt.wantFields, apiErr.Fields); diff != "" {
				t.Errorf("Fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("not json"))
	})

	_, err := client.ListFarms(context.Background(), "tok")
	if !IsKind(err, KindDecode) {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(url, time.Second, 5, time.Minute)
	_, err := client.SoilTypes(context.Background(), "tok")
	if !IsKind(err, KindNetwork) {
		t.Errorf("expected network error, got %v", err)
	}
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := client.SoilTypes(ctx, "tok"); !IsKind(err, KindServer) {
			t.Fatalf("call %d: expected server error, got %v", i+1, err)
		}
	}

	// Breaker is open now; no request reaches the server
	_, err := client.SoilTypes(ctx, "tok")
	if !IsKind(err, KindNetwork) {
		t.Fatalf("expected network error from open breaker, got %v", err)
	}
	if got := atomic.LoadInt32(calls); got != 2 {
		t.Errorf("server saw %d calls, want 2", got)
	}
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "bad"})
	})

	for i := 0; i < 5; i++ {
		if _, err := client.Me(context.Background(), "tok"); !IsKind(err, KindUnauthorized) {
			t.Fatalf("call %d: expected unauthorized, got %v", i+1, err)
		}
	}
	if got := atomic.LoadInt32(calls); got != 5 {
		t.Errorf("server saw %d calls, want 5", got)
	}
}

func TestBreakerIgnoresCallerCancellation(t *testing.T) {
	release := make(chan struct{})
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer slow" {
			select {
			case <-release:
			case <-r.Context().Done():
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": 7, "username": "asha", "email": "asha@example.com"})
	})
	defer close(release)

	// Far more aborted calls than the breaker's failure threshold
	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		_, err := client.Me(ctx, "slow")
		cancel()
		if !IsKind(err, KindNetwork) {
			t.Fatalf("call %d: expected network error, got %v", i+1, err)
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("call %d: expected the deadline as cause, got %v", i+1, err)
		}
	}

	profile, err := client.Me(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Me() after aborted calls error = %v", err)
	}
	if profile.Username != "asha" {
		t.Errorf("username = %q, want asha", profile.Username)
	}
	if got := atomic.LoadInt32(calls); got != 6 {
		t.Errorf("server saw %d calls, want 6", got)
	}
}

func TestListFarmsDecodesFlexibleFields(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("my_farms") != "true" {
			t.Errorf("expected my_farms=true, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count":1,"next":null,"results":[
			{"id":12,"name":"North","area_size":"2.50","location_lat":"18.520430","location_lng":73.856743,
			 "soil_type":{"id":3,"name":"Loam"},"irrigation_type":"drip"}]}`))
	})

	farms, err := client.ListFarms(context.Background(), "tok")
	if err != nil {
		t.Fatalf("ListFarms() error = %v", err)
	}
	if len(farms) != 1 {
		t.Fatalf("expected 1 farm, got %d", len(farms))
	}
	f := farms[0]
	if f.ID != "12" || !f.AreaSize.Valid || f.AreaSize.Float64 != 2.5 {
		t.Errorf("unexpected farm: %+v", f)
	}
	if !f.LocationLat.Valid || f.LocationLat.Float64 != 18.52043 {
		t.Errorf("unexpected lat: %+v", f.LocationLat)
	}
	if f.SoilType == nil || f.SoilType.Name != "Loam" {
		t.Errorf("unexpected soil type: %+v", f.SoilType)
	}
}

func TestValidationText(t *testing.T) {
	got := ValidationText(map[string][]string{
		"name":      {"This field is required."},
		"area_size": {"A valid number is required.", "Must be positive."},
	})
	want := "area_size: A valid number is required., Must be positive.\nname: This field is required."
	if got != want {
		t.Errorf("ValidationText() = %q, want %q", got, want)
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", &Error{Kind: KindValidation, Fields: map[string][]string{"b": {"y"}, "a": {"x"}}}, "a: x\nb: y"},
		{"rejected detail", &Error{Kind: KindRejected, Detail: "Farm name taken"}, "Farm name taken"},
		{"rejected bare", &Error{Kind: KindRejected, Status: 404}, TryLater},
		{"server", &Error{Kind: KindServer, Detail: "traceback"}, TryLater},
		{"network", &Error{Kind: KindNetwork}, TryLater},
		{"plain", errors.New("boom"), TryLater},
	}
	for _, tt := range tests {
		if got := Message(tt.err); got != tt.want {
			t.Errorf("%s: Message() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"detail", &Error{Kind: KindRejected, Detail: "nope", Status: 400}, "nope"},
		{"status", &Error{Kind: KindServer, Status: 503}, "Status: 503"},
		{"kind", &Error{Kind: KindNetwork}, "network error"},
		{"plain", errors.New("plain"), "plain"},
	}
	for _, tt := range tests {
		if got := Describe(tt.err); got != tt.want {
			t.Errorf("%s: Describe() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
