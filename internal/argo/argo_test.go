package argo

import (
	"strings"
	"testing"
	"time"
)

func TestCycleSummary(t *testing.T) {
	c := Cycle{
		PlatformNumber: "2902746",
		CycleNumber:    87,
		ProfileNumber:  87,
		Date:           time.Date(2023, 4, 15, 6, 30, 0, 0, time.UTC),
		Latitude:       15.251,
		Longitude:      64.502,
		PositionQC:     "1",
		Direction:      "A",
		DataMode:       "D",
		PressureQC:     "A",
		TemperatureQC:  "A",
		SalinityQC:     "B",
	}

	got := c.Summary()
	want := "Float 2902746 | Profile 87 | Cycle 87 | Date: 2023-04-15 | " +
		"Location: (15.251, 64.502) | Position QC: 1 | Direction: A | " +
		"Data Mode: D | Pressure QC: A | Temperature QC: A | Salinity QC: B"
	if got != want {
		t.Errorf("Summary() =\n%q\nwant\n%q", got, want)
	}
}

func TestRegionBox(t *testing.T) {
	for _, region := range []string{
		"arctic", "pacific", "atlantic", "indian",
		"southern", "mediterranean", "arabian",
	} {
		box, ok := RegionBox(region)
		if !ok {
			t.Errorf("RegionBox(%q) not found", region)
			continue
		}
		if box.MinLat >= box.MaxLat {
			t.Errorf("RegionBox(%q) latitude bounds inverted: %+v", region, box)
		}
		if box.MinLon >= box.MaxLon {
			t.Errorf("RegionBox(%q) longitude bounds inverted: %+v", region, box)
		}
	}

	if _, ok := RegionBox("baltic"); ok {
		t.Error("RegionBox(baltic) = ok, want not found")
	}
}

func TestRegionBoxArabian(t *testing.T) {
	box, ok := RegionBox("arabian")
	if !ok {
		t.Fatal("RegionBox(arabian) not found")
	}
	want := BoundingBox{MinLat: 5, MaxLat: 25, MinLon: 45, MaxLon: 78}
	if box != want {
		t.Errorf("RegionBox(arabian) = %+v, want %+v", box, want)
	}
}

func TestBoundingBoxContains(t *testing.T) {
	box := BoundingBox{MinLat: 5, MaxLat: 25, MinLon: 45, MaxLon: 78}

	tests := []struct {
		lat, lon float64
		want     bool
	}{
		{15, 64, true},
		{5, 45, true},   // inclusive lower bounds
		{25, 78, true},  // inclusive upper bounds
		{4.9, 64, false},
		{15, 80, false},
		{-15, 64, false},
	}
	for _, tt := range tests {
		if got := box.Contains(tt.lat, tt.lon); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", tt.lat, tt.lon, got, tt.want)
		}
	}
}

func TestParseCycleRow(t *testing.T) {
	rec := record{
		index: map[string]int{
			"platform_number": 0, "cycle_number": 1, "profile_number": 2,
			"date": 3, "latitude": 4, "longitude": 5, "position_qc": 6,
			"direction": 7, "data_mode": 8,
			"pressure_qc": 9, "temperature_qc": 10, "salinity_qc": 11,
		},
		line: []string{"2902746", "87", "87", "2023-04-15", "15.251", "64.502",
			"1", "A", "D", "A", "A", "B"},
	}

	values, err := parseCycleRow(rec)
	if err != nil {
		t.Fatalf("parseCycleRow() unexpected error: %v", err)
	}
	if values[0] != "2902746" {
		t.Errorf("platform_number = %v", values[0])
	}
	if values[1] != int32(87) {
		t.Errorf("cycle_number = %v (%T), want int32(87)", values[1], values[1])
	}
	if values[4] != 15.251 {
		t.Errorf("latitude = %v", values[4])
	}
	if d, ok := values[3].(time.Time); !ok || !d.Equal(time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", values[3])
	}
}

func TestParseCycleRowBadCycleNumber(t *testing.T) {
	rec := record{
		index: map[string]int{"platform_number": 0, "cycle_number": 1},
		line:  []string{"2902746", "not-a-number"},
	}
	if _, err := parseCycleRow(rec); err == nil {
		t.Error("parseCycleRow() expected error for bad cycle_number")
	} else if !strings.Contains(err.Error(), "cycle_number") {
		t.Errorf("error %q does not name the field", err)
	}
}

func TestParseMeasurementRowMissingOxygen(t *testing.T) {
	rec := record{
		index: map[string]int{
			"platform_number": 0, "cycle_number": 1, "level": 2,
			"pressure": 3, "temperature": 4, "salinity": 5, "oxygen": 6,
		},
		line: []string{"2902746", "87", "0", "5.2", "28.4", "35.1", "NaN"},
	}

	values, err := parseMeasurementRow(rec)
	if err != nil {
		t.Fatalf("parseMeasurementRow() unexpected error: %v", err)
	}
	if values[6] != nil {
		t.Errorf("oxygen = %v, want nil for NaN", values[6])
	}
	if values[3] != 5.2 {
		t.Errorf("pressure = %v", values[3])
	}
}

func TestNullHelpers(t *testing.T) {
	if nullString("") != nil || nullString("nan") != nil || nullString("NaN") != nil {
		t.Error("nullString should map empty and NaN to nil")
	}
	if nullString("INCOIS") != "INCOIS" {
		t.Error("nullString should pass real values through")
	}

	if nullFloat("") != nil || nullFloat("NaN") != nil || nullFloat("abc") != nil {
		t.Error("nullFloat should map empty, NaN and garbage to nil")
	}
	if nullFloat("-12.5") != -12.5 {
		t.Errorf("nullFloat(-12.5) = %v", nullFloat("-12.5"))
	}

	if nullInt("") != nil || nullInt("x") != nil {
		t.Error("nullInt should map empty and garbage to nil")
	}
	if nullInt("7") != int32(7) {
		t.Errorf("nullInt(7) = %v", nullInt("7"))
	}

	if nullTime("") != nil || nullTime("NaN") != nil || nullTime("not-a-date") != nil {
		t.Error("nullTime should map empty, NaN and garbage to nil")
	}
	if ts, ok := nullTime("2023-04-15T06:30:00Z").(time.Time); !ok || ts.IsZero() {
		t.Errorf("nullTime(RFC3339) = %v", nullTime("2023-04-15T06:30:00Z"))
	}
	if ts, ok := nullTime("2023-04-15").(time.Time); !ok || ts.IsZero() {
		t.Errorf("nullTime(date) = %v", nullTime("2023-04-15"))
	}
}
