// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"slices"

	"github.com/danielhkuo/farmdesk/apiclient"
	"github.com/danielhkuo/farmdesk/capture"
	"github.com/danielhkuo/farmdesk/middleware"
	"github.com/danielhkuo/farmdesk/models"
	"github.com/danielhkuo/farmdesk/sessions"
	"github.com/danielhkuo/farmdesk/views"
)

type FarmHandler struct {
	registry *sessions.Registry
	api      *apiclient.Client
}

func NewFarmHandler(registry *sessions.Registry, api *apiclient.Client) *FarmHandler {
	return &FarmHandler{registry: registry, api: api}
}

// signedIn returns the caller's session and workspace, or writes a 401
func (h *FarmHandler) signedIn(w http.ResponseWriter, r *http.Request) (*sessions.Session, *sessions.Workspace, bool) {
	sess := currentSession(w, r)
	if sess == nil {
		return nil, nil, false
	}
	if !sess.LoggedIn() {
		middleware.ErrorResponse(w, http.StatusUnauthorized, msgLoginFirst)
		return nil, nil, false
	}
	return sess, h.registry.Get(sess.ID), true
}

// OpenForm handles POST /api/farms/form
func (h *FarmHandler) OpenForm(w http.ResponseWriter, r *http.Request) {
	_, ws, ok := h.signedIn(w, r)
	if !ok {
		return
	}
	ws.OpenForm()
	middleware.JSONResponse(w, http.StatusOK, ws.DraftResponse(""))
}

// ActivateTab handles POST /api/farms/form/tab
func (h *FarmHandler) ActivateTab(w http.ResponseWriter, r *http.Request) {
	_, ws, ok := h.signedIn(w, r)
	if !ok {
		return
	}

	var req models.FormTabRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if _, err := ws.Nav.SetTab(req.Tab); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown form tab")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, ws.DraftResponse(""))
}

// ShapeEvent handles POST /api/farms/draft/shapes.
// Unreadable geometry leaves the draft as it was and comes back as a
// notice rather than an error.
func (h *FarmHandler) ShapeEvent(w http.ResponseWriter, r *http.Request) {
	_, ws, ok := h.signedIn(w, r)
	if !ok {
		return
	}

	var req models.ShapeEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Shape id is required")
		return
	}

	t := capture.ShapeType(req.ShapeType)
	id := capture.ShapeID(req.ID)

	var err error
	switch req.Event {
	case models.EventCreated:
		err = ws.Draft.OnShapeCreated(t, id, req.Geometry)
	case models.EventEdited:
		err = ws.Draft.OnShapeEdited(t, id, req.Geometry)
	case models.EventDeleted:
		err = ws.Draft.OnShapeDeleted(t, id)
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown shape event")
		return
	}

	if errors.Is(err, capture.ErrUnknownShape) {
		middleware.ErrorResponse(w, http.StatusBadRequest, capture.Message(err))
		return
	}

	notice := ""
	if err != nil {
		notice = capture.Message(err)
	}
	middleware.JSONResponse(w, http.StatusOK, ws.DraftResponse(notice))
}

// Search handles POST /api/farms/draft/search
func (h *FarmHandler) Search(w http.ResponseWriter, r *http.Request) {
	_, ws, ok := h.signedIn(w, r)
	if !ok {
		return
	}

	var req models.SearchRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !begin(w, ws, actionSearch) {
		return
	}
	defer ws.End(actionSearch)

	notice := ""
	place, err := ws.Draft.SearchAndPlace(r.Context(), req.Query)
	if err != nil {
		if errors.Is(err, capture.ErrLookupFailed) {
			slog.Error("location search failed", "query", req.Query, "error", err)
		}
		notice = capture.Message(err)
	} else {
		slog.Info("location placed", "query", req.Query, "place", place.DisplayName)
	}
	middleware.JSONResponse(w, http.StatusOK, ws.DraftResponse(notice))
}

// Reset handles POST /api/farms/draft/reset
func (h *FarmHandler) Reset(w http.ResponseWriter, r *http.Request) {
	_, ws, ok := h.signedIn(w, r)
	if !ok {
		return
	}
	ws.Draft.Reset()
	middleware.JSONResponse(w, http.StatusOK, ws.DraftResponse(""))
}

// Draft handles GET /api/farms/draft
func (h *FarmHandler) Draft(w http.ResponseWriter, r *http.Request) {
	_, ws, ok := h.signedIn(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, ws.DraftResponse(""))
}

// Plants handles GET /api/farms/plants?spacing_a=&spacing_b=&area=
func (h *FarmHandler) Plants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n, ok, text := capture.PlantEstimate(
		numberOrNaN(q.Get("spacing_a")),
		numberOrNaN(q.Get("spacing_b")),
		numberOrNaN(q.Get("area")),
	)

	resp := models.PlantEstimateResponse{Text: text}
	if ok {
		resp.Plants = &n
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

func numberOrNaN(s string) float64 {
	if v := views.ParseNumber(s); v != nil {
		return *v
	}
	return math.NaN()
}

// IrrigationFields handles GET /api/farms/irrigation-fields?type=
func (h *FarmHandler) IrrigationFields(w http.ResponseWriter, r *http.Request) {
	t := r.URL.Query().Get("type")
	if t != "" && !slices.Contains(views.IrrigationTypes, t) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown irrigation type")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.IrrigationFieldsResponse{
		Type:   t,
		Fields: views.IrrigationFields(t),
	})
}

// SoilTypes handles GET /api/farms/soil-types
func (h *FarmHandler) SoilTypes(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.signedIn(w, r)
	if !ok {
		return
	}

	soils, err := h.api.SoilTypes(r.Context(), sess.AccessToken)
	if err != nil {
		slog.Error("failed to load soil types", "error", err)
		middleware.ErrorResponse(w, upstreamStatus(err), failure("load soil types", err))
		return
	}
	if soils == nil {
		soils = []models.SoilType{}
	}
	middleware.JSONResponse(w, http.StatusOK, soils)
}

// Submit handles POST /api/farms.
// A draft without a location never reaches the backend: the form is sent
// back to the location tab instead.
func (h *FarmHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, ws, ok := h.signedIn(w, r)
	if !ok {
		return
	}

	var form models.FarmForm
	if err := middleware.ParseJSONBody(r, &form); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !begin(w, ws, actionSubmit) {
		return
	}
	defer ws.End(actionSubmit)

	loc, err := ws.Draft.ToSubmission()
	if err != nil {
		tab, _ := ws.Nav.SetTab(string(views.TabLocation))
		middleware.JSONResponse(w, http.StatusUnprocessableEntity, models.SubmitFarmError{
			Error:   http.StatusText(http.StatusUnprocessableEntity),
			Message: capture.Message(err),
			Tab:     string(tab),
		})
		return
	}

	farm, err := h.api.CreateFarm(r.Context(), sess.AccessToken, views.BuildFarmRequest(form, loc))
	if err != nil {
		if apiErr, ok := apiclient.AsError(err); ok && apiErr.Kind == apiclient.KindValidation {
			slog.Info("farm rejected by backend", "fields", len(apiErr.Fields))
			middleware.JSONResponse(w, http.StatusBadRequest, models.SubmitFarmError{
				Error:   http.StatusText(http.StatusBadRequest),
				Message: failure("register farm", err),
				Fields:  apiErr.Fields,
			})
			return
		}
		slog.Error("failed to register farm", "error", err)
		status := upstreamStatus(err)
		middleware.JSONResponse(w, status, models.SubmitFarmError{
			Error:   http.StatusText(status),
			Message: failure("register farm", err),
		})
		return
	}

	slog.Info("farm registered", "id", farm.ID, "name", farm.Name, "username", sess.Username)

	ws.OpenForm()
	middleware.JSONResponse(w, http.StatusCreated, models.SubmitFarmResponse{
		Farm:    farm,
		Message: "Farm registered successfully!",
		Draft:   ws.DraftResponse(""),
	})
}

// List handles GET /api/farms?q=.
// Bounds cover only the farms that pass the filter.
func (h *FarmHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.signedIn(w, r)
	if !ok {
		return
	}

	farms, err := h.api.ListFarms(r.Context(), sess.AccessToken)
	if err != nil {
		slog.Error("failed to load farms", "error", err)
		middleware.ErrorResponse(w, upstreamStatus(err), failure("load farms", err))
		return
	}

	resp := models.FarmsResponse{Farms: []models.FarmRow{}}
	if len(farms) == 0 {
		resp.Message = "No farms found. Add a new farm to get started."
		middleware.JSONResponse(w, http.StatusOK, resp)
		return
	}

	q := r.URL.Query().Get("q")
	resp.Farms = views.FilterRows(views.FarmRows(farms), q)
	if b, ok := capture.MapBounds(views.FilterFarms(farms, q)); ok {
		resp.Bounds = &b
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// upstreamStatus is the status reported for a failed backend call
func upstreamStatus(err error) int {
	switch {
	case apiclient.IsKind(err, apiclient.KindUnauthorized):
		return http.StatusUnauthorized
	case apiclient.IsKind(err, apiclient.KindRejected):
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}
