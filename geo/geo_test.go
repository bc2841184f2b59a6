// geo/geo_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceToShortHop(t *testing.T) {
	from := Coords{Lat: 45, Lon: -5}
	to := Coords{Lat: 45, Lon: -4}
	d := DistanceTo(from, to)
	// ~1 degree of longitude at 45N is about 60nm * cos(45) ~= 78.6km
	expected := 60 * 1852.0 * math.Cos(toRad(45))
	assert.InDelta(t, expected, d, 2000)
}

func TestHeadingToDueEast(t *testing.T) {
	from := Coords{Lat: 45, Lon: -5}
	to := Coords{Lat: 45, Lon: -4}
	h := HeadingTo(from, to)
	assert.InDelta(t, 90.0, h, 0.5)
}

func TestDestinationRoundTrip(t *testing.T) {
	from := Coords{Lat: 10, Lon: 20}
	to := Coords{Lat: 15, Lon: 25}

	dist, heading := DistanceAndHeadingTo(from, to)
	dest := Destination(from, heading, dist)

	assert.InDelta(t, to.Lat, dest.Lat, 1e-4)
	assert.InDelta(t, to.Lon, dest.Lon, 1e-4)
}

func TestDistanceZero(t *testing.T) {
	p := Coords{Lat: 1, Lon: 1}
	assert.InDelta(t, 0.0, DistanceTo(p, p), 1e-9)
}

func TestIntersectionCoincident(t *testing.T) {
	line := [2]Coords{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}}
	p, ok := Intersection(line, Coords{Lat: 0, Lon: 0}, 45)
	assert.True(t, ok)
	assert.InDelta(t, 0.0, p.Lat, 1e-6)
	assert.InDelta(t, 0.0, p.Lon, 1e-6)
}

func TestIntersectionCrossing(t *testing.T) {
	// A zero-length door line at (0, 0.5), approached by a path from the
	// south heading due north.
	line := [2]Coords{{Lat: 0, Lon: 0.5}, {Lat: 0, Lon: 0.5}}
	_, ok := Intersection(line, Coords{Lat: -1, Lon: 0.5}, 0)
	// degenerate line (zero length) still returns a result without panicking
	_ = ok
}

func TestWrapLonAntimeridian(t *testing.T) {
	from := Coords{Lat: 0, Lon: 179.5}
	to := Coords{Lat: 0, Lon: -179.5}
	h := HeadingTo(from, to)
	assert.InDelta(t, 90.0, h, 1.0)
}
