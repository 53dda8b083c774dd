// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/danielhkuo/farmdesk/models"
	"github.com/danielhkuo/farmdesk/testutil"
)

func navigate(t *testing.T, e *env, href string) models.NavigateResponse {
	t.Helper()
	w := e.do("POST", "/api/nav", models.NavigateRequest{Href: href})
	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.NavigateResponse
	testutil.AssertJSON(t, w, &resp)
	return resp
}

func TestNavigate_Sections(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	testCases := []struct {
		href string
		want string
	}{
		{"#", "dashboard"},
		{"#tasks", "tasks"},
		{"#users", "users"},
		{"#equipment", "equipment"},
		{"#bookings", "bookings"},
		{"#dashboard", "dashboard"},
	}
	for _, tc := range testCases {
		t.Run(tc.href, func(t *testing.T) {
			resp := navigate(t, e, tc.href)
			if resp.Section != tc.want {
				t.Errorf("Expected section %q, got %q", tc.want, resp.Section)
			}
			if resp.Redirect != "" || resp.Draft != nil {
				t.Errorf("Only the farms section redirects: %+v", resp)
			}
		})
	}

	w := e.do("POST", "/api/nav", models.NavigateRequest{Href: "#reports"})
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestNavigate_FarmsOpensFreshForm(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	resp := navigate(t, e, "#farms")
	if resp.Section != "farms" || resp.Redirect != "farms/index.html" {
		t.Fatalf("Unexpected response %+v", resp)
	}
	if resp.Draft == nil || resp.Draft.Tab != "basic-info" || resp.Draft.Summary.Coordinates != "Not set" {
		t.Errorf("Expected a fresh draft, got %+v", resp.Draft)
	}

	decodeDraft(t, e, "POST", "/api/farms/form/tab", models.FormTabRequest{Tab: "next"})
	drawFarm(t, e)

	// leaving the farms page drops the half-drawn farm
	resp = navigate(t, e, "#tasks")
	if len(resp.Commands) != 0 {
		t.Errorf("Discarded draft must not leak surface commands, got %v", resp.Commands)
	}

	resp = navigate(t, e, "#farms")
	if resp.Draft.Summary.Coordinates != "Not set" || resp.Draft.Summary.Vertices != "0 points" {
		t.Errorf("Returning to farms should start over, got %+v", resp.Draft.Summary)
	}
	if resp.Draft.Tab != "basic-info" {
		t.Errorf("Expected first tab, got %q", resp.Draft.Tab)
	}
}
