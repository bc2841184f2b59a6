// raceconfig/types.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package raceconfig defines the external wire types the routing core
// is driven by — RouteRequest in, RouteResult out — and loads Polar,
// Race and RouteRequest JSON documents, validating them before use,
// following the teacher's util.CheckJSON scenario-validation pattern.
package raceconfig

import (
	"time"

	"github.com/mmp/sailroute/geo"
	"github.com/mmp/sailroute/polar"
	"github.com/mmp/sailroute/units"
)

// StepEntry is one (horizon, step) pair in the step schedule: the
// first entry whose horizon exceeds the elapsed simulation duration
// governs the size of the next time step.
type StepEntry struct {
	HorizonSeconds int64 `json:"horizon"`
	StepSeconds    int64 `json:"step"`
}

// DefaultSteps is the step schedule used when a RouteRequest omits one:
// 1h→10m, 6h→1h, 24h→3m, ∞→6h.
func DefaultSteps() []StepEntry {
	return []StepEntry{
		{HorizonSeconds: 3600, StepSeconds: 600},
		{HorizonSeconds: 6 * 3600, StepSeconds: 3600},
		{HorizonSeconds: 24 * 3600, StepSeconds: 180},
		{HorizonSeconds: 1 << 62, StepSeconds: 6 * 3600},
	}
}

// StepFor returns the step duration for the given elapsed duration, per
// the first entry whose horizon exceeds it (the last entry is the
// fallback for any elapsed duration beyond every horizon).
func StepFor(schedule []StepEntry, elapsed units.Duration) units.Duration {
	for _, e := range schedule {
		if float64(e.HorizonSeconds) > elapsed.Seconds() {
			return units.DurationFromSeconds(float64(e.StepSeconds))
		}
	}
	last := schedule[len(schedule)-1]
	return units.DurationFromSeconds(float64(last.StepSeconds))
}

// BoatSettings is the heading/sail pair the router holds a boat to
// during one leg segment.
type BoatSettings struct {
	Heading polar.Heading `json:"heading"`
	Sail    polar.Sail    `json:"sail"`
}

// BoatStatus is the full observable boat state at a Position.
type BoatStatus struct {
	Aground          bool            `json:"aground"`
	BoatSpeed        units.Speed     `json:"boatSpeed"`
	Wind             polar.Wind      `json:"wind"`
	Foil             uint8           `json:"foil"`
	Boost            uint8           `json:"boost"`
	BestRatio        float64         `json:"bestRatio"`
	Ratio            uint8           `json:"ratio"`
	Vmgs             *polar.Vmgs     `json:"vmgs,omitempty"`
	Penalties        polar.Penalties `json:"penalties"`
	Stamina          float64         `json:"stamina"`
	RemainingStamina float64         `json:"remainingStamina"`
}

// RouteRequest is the external entry point: a start position/time, the
// initial boat configuration, and the step schedule governing how
// finely the router discretizes time.
type RouteRequest struct {
	From         geo.Coords      `json:"from"`
	StartTime    time.Time       `json:"startTime"`
	BoatSettings BoatSettings    `json:"boatSettings"`
	Status       BoatStatus      `json:"status"`
	Options      polar.BoatOptions `json:"options"`
	Steps        []StepEntry     `json:"steps,omitempty"`
	PolarID      string          `json:"polarId"`
	RaceID       string          `json:"raceId"`
	WindProvider string          `json:"windProvider"`
	LandProvider string          `json:"landProvider,omitempty"`
	MaxDuration  time.Duration   `json:"maxDuration,omitempty"`
	Timeout      time.Duration   `json:"timeout,omitempty"`
}

// WaypointInfo is one leg's entry in the result's ordered `way`: the
// point reached, the boat settings used to get there, and the
// cumulative/leg duration and status at that point.
type WaypointInfo struct {
	Point        geo.Coords   `json:"point"`
	BoatSettings BoatSettings `json:"boatSettings"`
	Status       BoatStatus   `json:"status"`
	Absolute     time.Duration `json:"absolute"`
	Relative     time.Duration `json:"relative"`
	BuoyName     string       `json:"buoyName,omitempty"`
}

// IsochronePoint is one rendered point of a per-buoy isochrone path.
type IsochronePoint struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Az     int     `json:"az"`
	PrevAz int     `json:"prevAz"`
}

// Section is one buoy leg's isochrone paths, for visualization.
type Section struct {
	Color string             `json:"color"`
	Paths [][]IsochronePoint `json:"paths"`
}

// ResultInfos summarizes the overall route outcome.
type ResultInfos struct {
	Start         time.Time     `json:"start"`
	Duration      time.Duration `json:"duration"`
	Success       bool          `json:"success"`
	SailsDuration map[int]time.Duration `json:"sailsDuration"`
	FoilDuration  time.Duration `json:"foilDuration"`
}

// RouteResult is the external output: the outcome summary, the ordered
// waypoint chain, per-leg isochrone sections for visualization, and a
// debug point cloud of everything the router reached.
type RouteResult struct {
	Infos    ResultInfos    `json:"infos"`
	Way      []WaypointInfo `json:"way"`
	Sections []Section      `json:"sections"`
	Debug    []geo.Coords   `json:"debug,omitempty"`
}
