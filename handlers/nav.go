// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/farmdesk/middleware"
	"github.com/danielhkuo/farmdesk/models"
	"github.com/danielhkuo/farmdesk/sessions"
	"github.com/danielhkuo/farmdesk/views"
)

type NavHandler struct {
	registry *sessions.Registry
}

func NewNavHandler(registry *sessions.Registry) *NavHandler {
	return &NavHandler{registry: registry}
}

// Navigate handles POST /api/nav.
// "#farms" sends the browser to the farms page with a fresh form; leaving
// it drops the draft.
func (h *NavHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r)
	if sess == nil {
		return
	}
	if !sess.LoggedIn() {
		middleware.ErrorResponse(w, http.StatusUnauthorized, msgLoginFirst)
		return
	}

	var req models.NavigateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ws := h.registry.Get(sess.ID)
	section, err := ws.Navigate(req.Href)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown section")
		return
	}

	resp := models.NavigateResponse{Section: string(section)}
	if section == views.SectionFarms {
		ws.OpenForm()
		draft := ws.DraftResponse("")
		resp.Redirect = views.FarmsPage
		resp.Draft = &draft
		resp.Commands = []models.SurfaceCommand{}
	} else {
		resp.Commands = ws.Surface.Drain()
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}
