// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/danielhkuo/farmdesk/apiclient"
)

// Place is one geocoding candidate
type Place struct {
	Lat         float64
	Lon         float64
	DisplayName string
}

// nominatimPlace mirrors the JSON returned by /search?format=json.
// lat and lon arrive as strings
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Client resolves free text to coordinates with a Nominatim server
type Client struct {
	base      string
	userAgent string
	http      *http.Client
	breaker   *gobreaker.CircuitBreaker
}

func New(base, userAgent string, timeout time.Duration, failures int, openFor time.Duration) *Client {
	return &Client{
		base:      strings.TrimRight(strings.TrimSpace(base), "/"),
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
		breaker:   apiclient.NewBreaker("geocoder", failures, openFor),
	}
}

// Search returns candidates in the order the server ranked them.
// Candidates with unparsable coordinates are skipped
func (c *Client) Search(ctx context.Context, query string) ([]Place, error) {
	places, err := apiclient.Execute(ctx, c.breaker, func() ([]Place, error) {
		return c.search(ctx, query)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("geocoder unavailable: %w", err)
		}
		return nil, err
	}
	return places, nil
}

func (c *Client) search(ctx context.Context, query string) ([]Place, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geocoding request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("geocoding failed: status %d", resp.StatusCode)
	}

	var raw []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("geocoding decode: %w", err)
	}

	places := make([]Place, 0, len(raw))
	for _, p := range raw {
		lat, errLat := strconv.ParseFloat(p.Lat, 64)
		lon, errLon := strconv.ParseFloat(p.Lon, 64)
		if errLat != nil || errLon != nil {
			slog.Warn("skipping geocoding candidate", "lat", p.Lat, "lon", p.Lon)
			continue
		}
		places = append(places, Place{Lat: lat, Lon: lon, DisplayName: p.DisplayName})
	}
	return places, nil
}
