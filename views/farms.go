// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/danielhkuo/farmdesk/capture"
	"github.com/danielhkuo/farmdesk/models"
)

// Irrigation types offered by the registration form
const (
	IrrigationDrip        = "drip"
	IrrigationSprinkler   = "sprinkler"
	IrrigationFlood       = "flood"
	IrrigationCenterPivot = "center_pivot"
	IrrigationManual      = "manual"
	IrrigationNone        = "none"
)

var IrrigationTypes = []string{
	IrrigationDrip, IrrigationSprinkler, IrrigationFlood,
	IrrigationCenterPivot, IrrigationManual, IrrigationNone,
}

var irrigationFields = map[string][]string{
	IrrigationFlood: {"motor_horsepower", "pipe_width_inches", "distance_motor_to_plot_m"},
	IrrigationDrip:  {"plants_per_acre", "flow_rate_lph", "emitters_count"},
}

// IrrigationFields returns the sub-fields shown for an irrigation type
func IrrigationFields(irrigationType string) []string {
	fields := irrigationFields[irrigationType]
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// ParseNumber reads a form number. Blank or unparsable input is nil
func ParseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// parseCount reads a whole number, dropping any fractional part
func parseCount(s string) *int {
	f := ParseNumber(s)
	if f == nil || math.Abs(*f) > math.MaxInt32 {
		return nil
	}
	n := int(*f)
	return &n
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// BuildFarmRequest assembles the registry document from the form and the
// captured location. Irrigation sub-fields hidden for the chosen type are
// left out.
func BuildFarmRequest(form models.FarmForm, loc capture.Submission) models.FarmRequest {
	req := models.FarmRequest{
		Name:            strings.TrimSpace(form.Name),
		Description:     form.Description,
		Address:         form.Address,
		AreaSize:        ParseNumber(form.AreaSize),
		LocationLat:     loc.LocationLat,
		LocationLng:     loc.LocationLng,
		SoilTypeID:      optionalString(form.SoilTypeID),
		SpacingA:        ParseNumber(form.SpacingA),
		SpacingB:        ParseNumber(form.SpacingB),
		IrrigationType:  form.IrrigationType,
		BoundaryGeoJSON: loc.BoundaryGeoJSON,
	}

	switch form.IrrigationType {
	case IrrigationFlood:
		req.MotorHorsepower = ParseNumber(form.MotorHorsepower)
		req.PipeWidthInches = ParseNumber(form.PipeWidthInches)
		req.DistanceMotorToPlotM = ParseNumber(form.DistanceMotorToPlotM)
	case IrrigationDrip:
		req.PlantsPerAcre = parseCount(form.PlantsPerAcre)
		req.FlowRateLPH = ParseNumber(form.FlowRateLPH)
		req.EmittersCount = parseCount(form.EmittersCount)
	}
	return req
}

// FarmRows renders farms for the farms table
func FarmRows(farms []models.Farm) []models.FarmRow {
	rows := make([]models.FarmRow, 0, len(farms))
	for _, f := range farms {
		rows = append(rows, FarmRow(f))
	}
	return rows
}

func FarmRow(f models.Farm) models.FarmRow {
	row := models.FarmRow{
		ID:         string(f.ID),
		Name:       f.Name,
		Location:   "Not set",
		SoilType:   "Not specified",
		Irrigation: IrrigationLabel(f.IrrigationType),
	}
	if f.AreaSize.Valid {
		row.Area = strconv.FormatFloat(f.AreaSize.Float64, 'f', -1, 64)
	}
	if f.LocationLat.Valid && f.LocationLng.Valid {
		row.Location = fmt.Sprintf("%.6f, %.6f", f.LocationLat.Float64, f.LocationLng.Float64)
	}
	if f.SoilType != nil && f.SoilType.Name != "" {
		row.SoilType = f.SoilType.Name
	}
	return row
}

// IrrigationLabel turns "center_pivot" into "Center pivot"
func IrrigationLabel(irrigationType string) string {
	if irrigationType == "" {
		return "None"
	}
	r, size := utf8.DecodeRuneInString(irrigationType)
	return string(unicode.ToUpper(r)) + strings.ReplaceAll(irrigationType[size:], "_", " ")
}

// MatchesFilter reports whether any cell of row contains q, ignoring case
func MatchesFilter(row models.FarmRow, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	text := strings.ToLower(strings.Join([]string{
		row.Name, row.Area, row.Location, row.SoilType, row.Irrigation,
	}, " "))
	return strings.Contains(text, q)
}

// FilterFarms keeps the farms whose table row matches q
func FilterFarms(farms []models.Farm, q string) []models.Farm {
	var out []models.Farm
	for _, f := range farms {
		if MatchesFilter(FarmRow(f), q) {
			out = append(out, f)
		}
	}
	return out
}

func FilterRows(rows []models.FarmRow, q string) []models.FarmRow {
	out := make([]models.FarmRow, 0, len(rows))
	for _, r := range rows {
		if MatchesFilter(r, q) {
			out = append(out, r)
		}
	}
	return out
}

// DisplayName is the username, or the local part of the email when the
// profile has none
func DisplayName(p models.UserProfile) string {
	if p.Username != "" {
		return p.Username
	}
	local, _, _ := strings.Cut(p.Email, "@")
	return local
}
