// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Login steps reported to the browser
const (
	StepLogin = "login"
	StepOTP   = "otp"
	StepApp   = "app"
)

// Surface command ops
const (
	CommandRemove   = "remove"
	CommandClear    = "clear"
	CommandAddPoint = "add_point"
	CommandSetView  = "set_view"
)

// Shape event kinds
const (
	EventCreated = "created"
	EventEdited  = "edited"
	EventDeleted = "deleted"
)

// Request types

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type VerifyOTPRequest struct {
	OTP string `json:"otp"`
}

type NavigateRequest struct {
	Href string `json:"href"`
}

type FormTabRequest struct {
	Tab string `json:"tab"`
}

type ShapeEventRequest struct {
	Event     string          `json:"event"`
	ShapeType string          `json:"shape_type"`
	ID        string          `json:"id"`
	Geometry  json.RawMessage `json:"geometry,omitempty"`
}

type SearchRequest struct {
	Query string `json:"query"`
}

// FarmForm holds the raw registration form values as typed by the user.
// Numbers stay strings until the submission is built
type FarmForm struct {
	Name                 string `json:"name"`
	Description          string `json:"description"`
	Address              string `json:"address"`
	AreaSize             string `json:"area_size"`
	SoilTypeID           string `json:"soil_type_id"`
	SpacingA             string `json:"spacing_a"`
	SpacingB             string `json:"spacing_b"`
	IrrigationType       string `json:"irrigation_type"`
	MotorHorsepower      string `json:"motor_horsepower"`
	PipeWidthInches      string `json:"pipe_width_inches"`
	DistanceMotorToPlotM string `json:"distance_motor_to_plot_m"`
	PlantsPerAcre        string `json:"plants_per_acre"`
	FlowRateLPH          string `json:"flow_rate_lph"`
	EmittersCount        string `json:"emitters_count"`
}

// Response types

type SessionResponse struct {
	Step     string `json:"step"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Message  string `json:"message,omitempty"`
}

type NavigateResponse struct {
	Section  string           `json:"section"`
	Redirect string           `json:"redirect,omitempty"`
	Draft    *DraftResponse   `json:"draft,omitempty"`
	Commands []SurfaceCommand `json:"commands"`
}

// DraftSummary is the human-readable state of the farm draft plus the
// hidden submission fields
type DraftSummary struct {
	Coordinates     string `json:"coordinates"`
	Vertices        string `json:"vertices"`
	LocationLat     string `json:"location_lat"`
	LocationLng     string `json:"location_lng"`
	BoundaryGeoJSON string `json:"boundary_geojson"`
}

type DraftResponse struct {
	Tab      string           `json:"tab"`
	Summary  DraftSummary     `json:"summary"`
	Notice   string           `json:"notice,omitempty"`
	Commands []SurfaceCommand `json:"commands"`
}

// SurfaceCommand tells the browser map what to do with its drawn shapes
type SurfaceCommand struct {
	Op   string   `json:"op"`
	ID   string   `json:"id,omitempty"`
	Lat  *float64 `json:"lat,omitempty"`
	Lng  *float64 `json:"lng,omitempty"`
	Zoom int      `json:"zoom,omitempty"`
}

type PlantEstimateResponse struct {
	Plants *int64 `json:"plants"`
	Text   string `json:"text"`
}

type IrrigationFieldsResponse struct {
	Type   string   `json:"type"`
	Fields []string `json:"fields"`
}

type SubmitFarmResponse struct {
	Farm    Farm          `json:"farm"`
	Message string        `json:"message"`
	Draft   DraftResponse `json:"draft"`
}

type SubmitFarmError struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Tab     string              `json:"tab,omitempty"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

// FarmRow is one line of the farms table
type FarmRow struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Area       string `json:"area"`
	Location   string `json:"location"`
	SoilType   string `json:"soil_type"`
	Irrigation string `json:"irrigation"`
}

type MapBounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

type FarmsResponse struct {
	Farms   []FarmRow  `json:"farms"`
	Bounds  *MapBounds `json:"bounds"`
	Message string     `json:"message,omitempty"`
}

// Upstream API types

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type UserProfile struct {
	ID       FlexString `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
}

type SoilType struct {
	ID          FlexString `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
}

// Page is the paginated list envelope used by the farm management API
type Page[T any] struct {
	Count   int     `json:"count"`
	Next    *string `json:"next"`
	Results []T     `json:"results"`
}

// FarmRequest is the JSON document posted to the farm registry
type FarmRequest struct {
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	Address              string   `json:"address"`
	AreaSize             *float64 `json:"area_size"`
	LocationLat          float64  `json:"location_lat"`
	LocationLng          float64  `json:"location_lng"`
	SoilTypeID           *string  `json:"soil_type_id"`
	SpacingA             *float64 `json:"spacing_a"`
	SpacingB             *float64 `json:"spacing_b"`
	IrrigationType       string   `json:"irrigation_type"`
	MotorHorsepower      *float64 `json:"motor_horsepower"`
	PipeWidthInches      *float64 `json:"pipe_width_inches"`
	DistanceMotorToPlotM *float64 `json:"distance_motor_to_plot_m"`
	PlantsPerAcre        *int     `json:"plants_per_acre"`
	FlowRateLPH          *float64 `json:"flow_rate_lph"`
	EmittersCount        *int     `json:"emitters_count"`
	BoundaryGeoJSON      string   `json:"boundary_geojson,omitempty"`
}

// Farm as returned by the farm registry
type Farm struct {
	ID              FlexString `json:"id"`
	Name            string     `json:"name"`
	Address         string     `json:"address,omitempty"`
	AreaSize        NullFloat  `json:"area_size"`
	LocationLat     NullFloat  `json:"location_lat"`
	LocationLng     NullFloat  `json:"location_lng"`
	SoilType        *SoilType  `json:"soil_type,omitempty"`
	IrrigationType  string     `json:"irrigation_type,omitempty"`
	BoundaryGeoJSON string     `json:"boundary_geojson,omitempty"`
}

// FlexString accepts a JSON string or number (ids come back as either)
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = FlexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

// NullFloat accepts a JSON number, a numeric string (decimal fields) or null
type NullFloat struct {
	Float64 float64
	Valid   bool
}

func (f *NullFloat) UnmarshalJSON(b []byte) error {
	*f = NullFloat{}
	if string(b) == "null" {
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		*f = NullFloat{Float64: x, Valid: true}
	case string:
		x = strings.TrimSpace(x)
		if x == "" {
			return nil
		}
		n, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return nil
		}
		*f = NullFloat{Float64: n, Valid: true}
	}
	return nil
}

func (f NullFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Float64)
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
