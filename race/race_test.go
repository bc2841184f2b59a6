// race/race_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package race

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmp/sailroute/geo"
)

func TestInsideTriangle(t *testing.T) {
	tri := Triangle{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 1},
		{Lat: 1, Lon: 0},
	}
	assert.True(t, InsideTriangle(tri, geo.Coords{Lat: 0.2, Lon: 0.2}))
	assert.False(t, InsideTriangle(tri, geo.Coords{Lat: 5, Lon: 5}))
}

func TestZoneCrossed(t *testing.T) {
	b := Buoy{Kind: KindZone, Destination: geo.Coords{Lat: 0, Lon: 1}, Radius: 1000}
	prev := geo.Coords{Lat: 0, Lon: 1 - 0.02}
	cur := geo.Coords{Lat: 0, Lon: 1}
	assert.True(t, ZoneCrossed(b, prev, cur))
	assert.False(t, ZoneCrossed(b, cur, cur))
}

func TestDoorCrossedOppositeSides(t *testing.T) {
	b := Buoy{
		Kind:      KindDoor,
		Port:      geo.Coords{Lat: 0, Lon: 1},
		Starboard: geo.Coords{Lat: 0.1, Lon: 1},
	}
	prev := geo.Coords{Lat: 0.05, Lon: 0.9}
	cur := geo.Coords{Lat: 0.05, Lon: 1.1}
	heading := geo.HeadingTo(prev, cur)
	assert.True(t, DoorCrossed(b, prev, cur, heading))
}

func TestDoorNotCrossedWhenNotStraddling(t *testing.T) {
	b := Buoy{
		Kind:      KindDoor,
		Port:      geo.Coords{Lat: 0, Lon: 1},
		Starboard: geo.Coords{Lat: 0.1, Lon: 1},
	}
	prev := geo.Coords{Lat: -1, Lon: 0.9}
	cur := geo.Coords{Lat: -1, Lon: 0.95}
	heading := geo.HeadingTo(prev, cur)
	assert.False(t, DoorCrossed(b, prev, cur, heading))
}

// TestDoorNotCrossedShortOfDoor covers a segment that sits within the
// door's latitude band but never reaches its longitude: Port and
// Starboard can still appear on opposite sides of the prev->cur line
// from that distance, so the door-line side test is what must rule
// this out.
func TestDoorNotCrossedShortOfDoor(t *testing.T) {
	b := Buoy{
		Kind:      KindDoor,
		Port:      geo.Coords{Lat: 0, Lon: 1},
		Starboard: geo.Coords{Lat: 0.1, Lon: 1},
	}
	prev := geo.Coords{Lat: 0.05, Lon: 0.1}
	cur := geo.Coords{Lat: 0.05, Lon: 0.2}
	heading := geo.HeadingTo(prev, cur)
	assert.False(t, DoorCrossed(b, prev, cur, heading))
}
