// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestSearch(t *testing.T) {
	var gotQuery, gotFormat, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotFormat = r.URL.Query().Get("format")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"lat":"18.5204303","lon":"73.8567437","display_name":"Pune, Maharashtra, India"},
			{"lat":"bad","lon":"1","display_name":"Broken"},
			{"lat":"18.6","lon":"73.9","display_name":"Pune District"}
		]`))
	}))
	defer srv.Close()

	client := New(srv.URL+"/", "farmdesk-test", time.Second, 3, time.Minute)
	places, err := client.Search(context.Background(), "Pune, India")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if gotQuery != "Pune, India" || gotFormat != "json" {
		t.Errorf("unexpected query q=%q format=%q", gotQuery, gotFormat)
	}
	if gotAgent != "farmdesk-test" {
		t.Errorf("User-Agent = %q", gotAgent)
	}

	want := []Place{
		{Lat: 18.5204303, Lon: 73.8567437, DisplayName: "Pune, Maharashtra, India"},
		{Lat: 18.6, Lon: 73.9, DisplayName: "Pune District"},
	}
	if diff := cmp.Diff(want, places); diff != "" {
		t.Errorf("places mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	places, err := New(srv.URL, "", time.Second, 3, time.Minute).Search(context.Background(), "nowhere")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(places) != 0 {
		t.Errorf("expected no places, got %d", len(places))
	}
}

func TestSearchFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := New(srv.URL, "", time.Second, 1, time.Minute)
	if _, err := client.Search(context.Background(), "x"); err == nil {
		t.Fatal("expected error on 503")
	}
	// Breaker tripped after one failure
	if _, err := client.Search(context.Background(), "x"); err == nil {
		t.Fatal("expected error from open breaker")
	}
}

func TestSearchCancelledKeepsBreakerClosed(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Query().Get("q") == "slow" {
			<-r.Context().Done()
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"18.5","lon":"73.8","display_name":"Pune"}]`))
	}))
	defer srv.Close()

	client := New(srv.URL, "", time.Second, 1, time.Minute)
	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		_, err := client.Search(ctx, "slow")
		cancel()
		if err == nil {
			t.Fatalf("call %d: expected error after deadline", i+1)
		}
	}

	places, err := client.Search(context.Background(), "pune")
	if err != nil {
		t.Fatalf("Search() after cancelled lookups error = %v", err)
	}
	if len(places) != 1 || places[0].DisplayName != "Pune" {
		t.Errorf("places = %+v, want Pune", places)
	}
	if got := atomic.LoadInt32(&calls); got != 4 {
		t.Errorf("server saw %d calls, want 4", got)
	}
}
