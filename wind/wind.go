// wind/wind.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package wind defines the wind Provider capability the routing core
// consumes, plus an in-memory Grid implementation that decodes the VR
// wind-reference binary format (181×360 signed-byte vector components)
// and interpolates bilinearly in space and linearly in time between two
// reference timestamps. Downloading or refreshing references over the
// network is outside this package's scope (an explicit Non-goal); Grid
// is built once from already-fetched bytes.
package wind

import (
	"math"
	"time"

	"github.com/mmp/sailroute/geo"
	"github.com/mmp/sailroute/polar"
	"github.com/mmp/sailroute/units"
)

// InstantWind is a wind field frozen at one simulation instant;
// Interpolate projects it onto any geographic coordinate.
type InstantWind interface {
	Interpolate(p geo.Coords) polar.Wind
}

// Provider hands the router an InstantWind for any simulation
// timestamp.
type Provider interface {
	Find(t time.Time) InstantWind
}

// vectorToDegrees converts a (u,v) wind vector, in the meteorological
// convention where u/v point in the direction the wind blows toward,
// to a "from" compass direction in degrees.
func vectorToDegrees(u, v float64) float64 {
	deg := math.Atan2(u, v)*180/math.Pi + 180
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg -= 360
	}
	return deg
}

// decodeComponent applies the VR wind-reference byte encoding:
// signed byte b decodes to sign(b)*(b/8)^2 km/h.
func decodeComponent(b int8) float64 {
	v := float64(b)
	sign := 1.0
	if v < 0 {
		sign = -1.0
	} else if v == 0 {
		sign = 0.0
	}
	return sign * (v / 8.0) * (v / 8.0)
}
