// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielhkuo/farmdesk/capture"
	"github.com/danielhkuo/farmdesk/models"
)

func TestSectionForHref(t *testing.T) {
	tests := []struct {
		href    string
		want    Section
		wantErr bool
	}{
		{"#", SectionDashboard, false},
		{"#dashboard", SectionDashboard, false},
		{"#tasks", SectionTasks, false},
		{"#users", SectionUsers, false},
		{"#equipment", SectionEquipment, false},
		{"#bookings", SectionBookings, false},
		{"#farms", SectionFarms, false},
		{"farms", "", true},
		{"#reports", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			got, err := SectionForHref(tt.href)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownSection) {
					t.Errorf("error = %v, want ErrUnknownSection", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("SectionForHref(%q) = %q, %v; want %q", tt.href, got, err, tt.want)
			}
		})
	}
}

func TestNavigatorLeavingFarms(t *testing.T) {
	n := NewNavigator()
	if n.Section() != SectionDashboard {
		t.Fatalf("initial section = %q", n.Section())
	}

	if _, left, _ := n.Navigate("#farms"); left {
		t.Error("entering farms reported leaving it")
	}
	if _, left, _ := n.Navigate("#farms"); left {
		t.Error("staying on farms reported leaving it")
	}
	section, left, err := n.Navigate("#tasks")
	if err != nil || section != SectionTasks || !left {
		t.Errorf("Navigate(#tasks) = %q, %v, %v", section, left, err)
	}

	// Unknown links change nothing
	if _, _, err := n.Navigate("#nowhere"); err == nil {
		t.Error("expected error")
	}
	if n.Section() != SectionTasks {
		t.Errorf("section = %q, want tasks", n.Section())
	}
}

func TestNavigatorTabs(t *testing.T) {
	n := NewNavigator()

	steps := []struct {
		in   string
		want FormTab
	}{
		{TabPrev, TabBasicInfo},
		{TabNext, TabLocation},
		{TabNext, TabCultivation},
		{TabNext, TabIrrigation},
		{TabNext, TabIrrigation},
		{"location", TabLocation},
		{TabPrev, TabBasicInfo},
	}
	for _, s := range steps {
		got, err := n.SetTab(s.in)
		if err != nil || got != s.want {
			t.Fatalf("SetTab(%q) = %q, %v; want %q", s.in, got, err, s.want)
		}
	}

	got, err := n.SetTab("soil")
	if !errors.Is(err, ErrUnknownTab) || got != TabBasicInfo {
		t.Errorf("SetTab(soil) = %q, %v", got, err)
	}

	n.SetTab("irrigation")
	n.ResetForm()
	if n.Tab() != TabBasicInfo || n.Section() != SectionFarms {
		t.Errorf("after ResetForm: %q / %q", n.Section(), n.Tab())
	}
}

func TestIrrigationFields(t *testing.T) {
	tests := map[string][]string{
		"flood":        {"motor_horsepower", "pipe_width_inches", "distance_motor_to_plot_m"},
		"drip":         {"plants_per_acre", "flow_rate_lph", "emitters_count"},
		"sprinkler":    {},
		"center_pivot": {},
		"":             {},
	}
	for typ, want := range tests {
		if diff := cmp.Diff(want, IrrigationFields(typ)); diff != "" {
			t.Errorf("IrrigationFields(%q) mismatch (-want +got):\n%s", typ, diff)
		}
	}

	// Callers cannot mutate the table
	IrrigationFields("flood")[0] = "changed"
	if IrrigationFields("flood")[0] != "motor_horsepower" {
		t.Error("IrrigationFields returned shared storage")
	}
}

func ptr[T any](v T) *T { return &v }

func TestBuildFarmRequest(t *testing.T) {
	loc := capture.Submission{LocationLat: 18.5, LocationLng: 73.8, BoundaryGeoJSON: `{"type":"Polygon"}`}
	form := models.FarmForm{
		Name:                 "  North Field ",
		AreaSize:             "2.5",
		SoilTypeID:           "3",
		SpacingA:             "0.5",
		SpacingB:             "abc",
		IrrigationType:       "drip",
		MotorHorsepower:      "5",
		PlantsPerAcre:        "1200",
		FlowRateLPH:          "",
		EmittersCount:        "4.7",
		DistanceMotorToPlotM: "30",
	}

	got := BuildFarmRequest(form, loc)
	want := models.FarmRequest{
		Name:            "North Field",
		AreaSize:        ptr(2.5),
		LocationLat:     18.5,
		LocationLng:     73.8,
		SoilTypeID:      ptr("3"),
		SpacingA:        ptr(0.5),
		IrrigationType:  "drip",
		PlantsPerAcre:   ptr(1200),
		EmittersCount:   ptr(4),
		BoundaryGeoJSON: `{"type":"Polygon"}`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}

	form.IrrigationType = "flood"
	got = BuildFarmRequest(form, loc)
	if got.PlantsPerAcre != nil || got.MotorHorsepower == nil || *got.DistanceMotorToPlotM != 30 {
		t.Errorf("flood request = %+v", got)
	}

	form.IrrigationType = "manual"
	got = BuildFarmRequest(form, loc)
	if got.MotorHorsepower != nil || got.PlantsPerAcre != nil {
		t.Errorf("manual request carries sub-fields: %+v", got)
	}
}

func TestFarmRows(t *testing.T) {
	farms := []models.Farm{
		{
			ID:             "1",
			Name:           "North",
			AreaSize:       models.NullFloat{Float64: 2.5, Valid: true},
			LocationLat:    models.NullFloat{Float64: 18.52043, Valid: true},
			LocationLng:    models.NullFloat{Float64: 73.856743, Valid: true},
			SoilType:       &models.SoilType{ID: "3", Name: "Loam"},
			IrrigationType: "center_pivot",
		},
		{ID: "2", Name: "South"},
	}

	want := []models.FarmRow{
		{ID: "1", Name: "North", Area: "2.5", Location: "18.520430, 73.856743", SoilType: "Loam", Irrigation: "Center pivot"},
		{ID: "2", Name: "South", Location: "Not set", SoilType: "Not specified", Irrigation: "None"},
	}
	rows := FarmRows(farms)
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	if got := FilterRows(rows, "LOAM"); len(got) != 1 || got[0].ID != "1" {
		t.Errorf("FilterRows(LOAM) = %+v", got)
	}
	if got := FilterRows(rows, "not set"); len(got) != 1 || got[0].ID != "2" {
		t.Errorf("FilterRows(not set) = %+v", got)
	}
	if got := FilterRows(rows, " "); len(got) != 2 {
		t.Errorf("blank filter dropped rows: %+v", got)
	}

	if got := FilterFarms(farms, "center"); len(got) != 1 || got[0].Name != "North" {
		t.Errorf("FilterFarms(center) = %+v", got)
	}
	if got := FilterFarms(farms, "vineyard"); len(got) != 0 {
		t.Errorf("FilterFarms(vineyard) = %+v, want none", got)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		profile models.UserProfile
		want    string
	}{
		{models.UserProfile{Username: "asha", Email: "asha.k@example.com"}, "asha"},
		{models.UserProfile{Email: "ravi@example.com"}, "ravi"},
		{models.UserProfile{}, ""},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.profile); got != tt.want {
			t.Errorf("DisplayName(%+v) = %q, want %q", tt.profile, got, tt.want)
		}
	}
}
