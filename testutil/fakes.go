// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/danielhkuo/farmdesk/models"
)

// TestOTP is the passcode the fake backend accepts
const TestOTP = "123456"

// FakeUser is an account known to the fake backend
type FakeUser struct {
	Password string
	Email    string
}

// FarmLimitDetail is the detail sent when FarmsStatus is a 4xx status
const FarmLimitDetail = "You have reached the farm limit for your account."

// FakeBackend mimics the farm management REST API under /api
type FakeBackend struct {
	Server *httptest.Server

	mu sync.Mutex
	// Users by username. Access tokens are "access-<username>"
	Users map[string]FakeUser
	// OTPCode, when set, makes /verify-otp/ fail with that error code
	OTPCode string
	// OTPDetail, when set, makes /verify-otp/ fail with only that detail text
	OTPDetail string
	// OTPSendFails makes /otp/ fail with 500
	OTPSendFails bool
	// MeFails makes /users/me/ reject every token
	MeFails bool
	// MeStatus, when set, makes /users/me/ fail with that server status
	MeStatus    int
	SoilTypes   []models.SoilType
	Farms       []models.Farm
	FarmErrors  map[string][]string
	FarmsStatus int
	Created     []models.FarmRequest
	calls       map[string]int
}

// NewFakeBackend starts a backend with one user, "asha" / "secret"
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	b := &FakeBackend{
		Users: map[string]FakeUser{
			"asha": {Password: "secret", Email: "asha@example.com"},
		},
		SoilTypes: []models.SoilType{
			{ID: "1", Name: "Loam"},
			{ID: "2", Name: "Clay"},
		},
		calls: make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token/", b.token)
	mux.HandleFunc("GET /api/users/me/", b.me)
	mux.HandleFunc("POST /api/otp/", b.otp)
	mux.HandleFunc("POST /api/verify-otp/", b.verifyOTP)
	mux.HandleFunc("GET /api/soil-types/", b.soilTypes)
	mux.HandleFunc("POST /api/farms/", b.createFarm)
	mux.HandleFunc("GET /api/farms/", b.listFarms)

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the API base URL
func (b *FakeBackend) URL() string {
	return b.Server.URL + "/api"
}

// Calls returns how many times an endpoint ("token", "me", "otp",
// "verify-otp", "soil-types", "create-farm", "list-farms") was hit
func (b *FakeBackend) Calls(endpoint string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[endpoint]
}

// Set runs fn with the backend locked, for changing its behavior mid-test
func (b *FakeBackend) Set(fn func(b *FakeBackend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}

func (b *FakeBackend) CreatedFarms() []models.FarmRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.FarmRequest(nil), b.Created...)
}

func (b *FakeBackend) hit(endpoint string) {
	b.mu.Lock()
	b.calls[endpoint]++
	b.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// userFor resolves the bearer token to a username
func (b *FakeBackend) userFor(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return "", false
	}
	name, ok := strings.CutPrefix(token, "access-")
	if !ok {
		return "", false
	}
	_, known := b.Users[name]
	return name, known
}

func (b *FakeBackend) token(w http.ResponseWriter, r *http.Request) {
	b.hit("token")
	var req models.LoginRequest
	json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.Users[req.Username]
	if !ok || u.Password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": "No active account found with the given credentials",
		})
		return
	}
	writeJSON(w, http.StatusOK, models.TokenPair{Access: "access-" + req.Username, Refresh: "refresh-" + req.Username})
}

func (b *FakeBackend) me(w http.ResponseWriter, r *http.Request) {
	b.hit("me")
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.MeStatus != 0 {
		writeJSON(w, b.MeStatus, map[string]string{"error": "profile service unavailable"})
		return
	}
	name, ok := b.userFor(r)
	if !ok || b.MeFails {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": 1, "username": name, "email": b.Users[name].Email})
}

func (b *FakeBackend) otp(w http.ResponseWriter, r *http.Request) {
	b.hit("otp")
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.OTPSendFails {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "mail server down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "OTP sent"})
}

func (b *FakeBackend) verifyOTP(w http.ResponseWriter, r *http.Request) {
	b.hit("verify-otp")
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.OTPCode != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "OTP rejected", "code": b.OTPCode})
		return
	}
	if b.OTPDetail != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": b.OTPDetail})
		return
	}
	if req.OTP != TestOTP {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid OTP", "code": "invalid_otp"})
		return
	}
	for name, u := range b.Users {
		if u.Email == req.Email {
			writeJSON(w, http.StatusOK, models.TokenPair{Access: "access-" + name, Refresh: "refresh-" + name})
			return
		}
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "No valid OTP found", "code": "otp_not_found"})
}

func (b *FakeBackend) soilTypes(w http.ResponseWriter, r *http.Request) {
	b.hit("soil-types")
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.userFor(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
		return
	}
	writeJSON(w, http.StatusOK, models.Page[models.SoilType]{Count: len(b.SoilTypes), Results: b.SoilTypes})
}

func (b *FakeBackend) createFarm(w http.ResponseWriter, r *http.Request) {
	b.hit("create-farm")
	var req models.FarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.userFor(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
		return
	}
	if b.FarmsStatus >= 500 {
		w.WriteHeader(b.FarmsStatus)
		return
	}
	if b.FarmsStatus >= 400 {
		writeJSON(w, b.FarmsStatus, map[string]string{"detail": FarmLimitDetail})
		return
	}
	if len(b.FarmErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, b.FarmErrors)
		return
	}

	b.Created = append(b.Created, req)
	farm := models.Farm{
		ID:              models.FlexString(strconv.Itoa(len(b.Created))),
		Name:            req.Name,
		Address:         req.Address,
		LocationLat:     models.NullFloat{Float64: req.LocationLat, Valid: true},
		LocationLng:     models.NullFloat{Float64: req.LocationLng, Valid: true},
		IrrigationType:  req.IrrigationType,
		BoundaryGeoJSON: req.BoundaryGeoJSON,
	}
	if req.AreaSize != nil {
		farm.AreaSize = models.NullFloat{Float64: *req.AreaSize, Valid: true}
	}
	b.Farms = append(b.Farms, farm)
	writeJSON(w, http.StatusCreated, farm)
}

func (b *FakeBackend) listFarms(w http.ResponseWriter, r *http.Request) {
	b.hit("list-farms")
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.userFor(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
		return
	}
	farms := b.Farms
	if farms == nil {
		farms = []models.Farm{}
	}
	writeJSON(w, http.StatusOK, models.Page[models.Farm]{Count: len(farms), Results: farms})
}

// FakePlace is one geocoder answer
type FakePlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// FakeGeocoder mimics a Nominatim /search endpoint
type FakeGeocoder struct {
	Server *httptest.Server

	mu     sync.Mutex
	places map[string][]FakePlace
	calls  int
}

func NewFakeGeocoder(t *testing.T) *FakeGeocoder {
	t.Helper()
	g := &FakeGeocoder{places: make(map[string][]FakePlace)}
	g.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		g.calls++
		places := g.places[r.URL.Query().Get("q")]
		g.mu.Unlock()

		if places == nil {
			places = []FakePlace{}
		}
		writeJSON(w, http.StatusOK, places)
	}))
	t.Cleanup(g.Server.Close)
	return g
}

// Add registers the answer for a query
func (g *FakeGeocoder) Add(query string, places ...FakePlace) {
	g.mu.Lock()
	g.places[query] = places
	g.mu.Unlock()
}

func (g *FakeGeocoder) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}
