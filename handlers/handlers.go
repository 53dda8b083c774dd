// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/farmdesk/apiclient"
	"github.com/danielhkuo/farmdesk/middleware"
	"github.com/danielhkuo/farmdesk/sessions"
)

// Guarded actions. A second request for the same action in the same session
// is refused while the first is running
const (
	actionLogin  = "login"
	actionVerify = "verify-otp"
	actionSearch = "search-location"
	actionSubmit = "submit-farm"
)

const (
	msgInProgress = "Please wait for the previous request to finish."
	msgLoginFirst = "Please log in to continue."
	msgNoSession  = "Session unavailable. Please reload the page."
)

// currentSession returns the session WithSession attached. It writes a 500
// and returns nil when the handler was mounted without it
// failure is the user text for a failed backend call, e.g.
// "Failed to load farms. Please try again later."
func failure(what string, err error) string {
	if apiclient.IsKind(err, apiclient.KindValidation) {
		return "Failed to " + what + ":\n" + apiclient.Message(err)
	}
	return "Failed to " + what + ". " + apiclient.Message(err)
}

func currentSession(w http.ResponseWriter, r *http.Request) *sessions.Session {
	sess := middleware.SessionFrom(r.Context())
	if sess == nil {
		slog.Error("handler reached without a session", "path", r.URL.Path)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgNoSession)
	}
	return sess
}

// begin claims action on ws, writing a 409 when it is already running.
// Callers defer ws.End(action) once it returns true
func begin(w http.ResponseWriter, ws *sessions.Workspace, action string) bool {
	if !ws.Begin(action) {
		middleware.ErrorResponse(w, http.StatusConflict, msgInProgress)
		return false
	}
	return true
}
