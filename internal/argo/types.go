// Package argo provides the relational store for Argo float data.
//
// Responsibilities: parameterized read access to the floats, cycles and
// measurements tables, region bounding boxes, and CSV bulk ingestion.
// All queries bind parameters; nothing is string-interpolated.
package argo

import (
	"fmt"
	"time"
)

// Float is an autonomous sensor platform, identified by its WMO platform
// number. Immutable once ingested.
type Float struct {
	PlatformNumber       string
	ProjectName          string
	PIName               string
	PlatformType         string
	LaunchDate           time.Time
	LaunchLatitude       float64
	LaunchLongitude      float64
	FloatOwner           string
	OperatingInstitution string
	DataCentre           string
}

// Cycle is one dive/ascent measurement event of a float.
// Cycles are ordered by cycle number per float.
type Cycle struct {
	PlatformNumber string
	CycleNumber    int32
	ProfileNumber  int32
	Date           time.Time
	Latitude       float64
	Longitude      float64
	PositionQC     string
	Direction      string
	DataMode       string
	PressureQC     string
	TemperatureQC  string
	SalinityQC     string
}

// Summary renders the cycle as the descriptive line indexed by the
// semantic index.
func (c Cycle) Summary() string {
	return fmt.Sprintf(
		"Float %s | Profile %d | Cycle %d | Date: %s | Location: (%.3f, %.3f) | "+
			"Position QC: %s | Direction: %s | Data Mode: %s | "+
			"Pressure QC: %s | Temperature QC: %s | Salinity QC: %s",
		c.PlatformNumber, c.ProfileNumber, c.CycleNumber,
		c.Date.Format("2006-01-02"), c.Latitude, c.Longitude,
		c.PositionQC, c.Direction, c.DataMode,
		c.PressureQC, c.TemperatureQC, c.SalinityQC,
	)
}

// Measurement is a single depth-level reading within a cycle.
// Oxygen is optional; NaN marks a missing value after scanning.
type Measurement struct {
	PlatformNumber string
	CycleNumber    int32
	Level          int32
	Pressure       float64
	Temperature    float64
	Salinity       float64
	Oxygen         float64
	PressureQC     string
	TemperatureQC  string
	SalinityQC     string
}
