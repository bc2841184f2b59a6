// race/race.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package race implements race geometry: buoy classification (door,
// zone, waypoint), the door-crossing test, zone containment, and the
// to-avoid triangle test the router's pruning step applies to every
// candidate position.
package race

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/mmp/sailroute/geo"
)

// Kind distinguishes the three buoy shapes a leg can target.
type Kind int

const (
	KindWaypoint Kind = iota
	KindDoor
	KindZone
)

var kindNames = [...]string{"waypoint", "door", "zone"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

func (k Kind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }

func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, n := range kindNames {
		if n == s {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("race: unknown buoy kind %q", s)
}

// Triangle is a to-avoid polygon; any position inside it is invalid.
type Triangle [3]geo.Coords

// Buoy is one race mark: a waypoint, a gate ("door") between two
// endpoints, or a circular zone, plus any to-avoid triangles and ice
// limits that apply while navigating toward it.
type Buoy struct {
	Name        string     `json:"name"`
	Kind        Kind       `json:"kind"`
	Destination geo.Coords `json:"destination"` // Waypoint, Zone
	Port        geo.Coords `json:"port"`         // Door
	Starboard   geo.Coords `json:"starboard"`    // Door
	Radius      float64    `json:"radius"`       // Zone, meters
	ToAvoid     []Triangle `json:"toAvoid,omitempty"`
	IceLimits   []Triangle `json:"iceLimits,omitempty"`
	Validated   bool       `json:"validated"`
}

// Race is an ordered sequence of buoys a route must pass through.
type Race struct {
	Buoys []Buoy `json:"buoys"`
}

// NextBuoy returns the first unvalidated buoy, the one the router is
// currently navigating toward.
func (r *Race) NextBuoy() (*Buoy, bool) {
	for i := range r.Buoys {
		if !r.Buoys[i].Validated {
			return &r.Buoys[i], true
		}
	}
	return nil, false
}

// ValidateNextBuoy marks the first unvalidated buoy as reached.
func (r *Race) ValidateNextBuoy() {
	if b, ok := r.NextBuoy(); ok {
		b.Validated = true
	}
}

// InsideTriangle reports whether p lies inside tri, via the standard
// barycentric-sign test on (lon,lat) treated as a local planar patch —
// adequate at race scale where triangles span well under a degree.
func InsideTriangle(tri Triangle, p geo.Coords) bool {
	sign := func(a, b, c geo.Coords) float64 {
		return (a.Lon-c.Lon)*(b.Lat-c.Lat) - (b.Lon-c.Lon)*(a.Lat-c.Lat)
	}

	d1 := sign(p, tri[0], tri[1])
	d2 := sign(p, tri[1], tri[2])
	d3 := sign(p, tri[2], tri[0])

	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0

	return !(hasNeg && hasPos)
}

// InAnyTriangle reports whether p lies inside any of tris.
func InAnyTriangle(tris []Triangle, p geo.Coords) bool {
	for _, tri := range tris {
		if InsideTriangle(tri, p) {
			return true
		}
	}
	return false
}

// ZoneCrossed reports whether a segment from `prev` to `cur` crosses
// into the zone: prev must be outside the circle and cur inside it.
func ZoneCrossed(b Buoy, prev, cur geo.Coords) bool {
	prevIn := geo.DistanceTo(prev, b.Destination) <= b.Radius
	curIn := geo.DistanceTo(cur, b.Destination) <= b.Radius
	return !prevIn && curIn
}

// DoorCrossed reports whether the segment (prev, cur), arriving with
// compass heading `heading`, crosses the door line and does so heading
// through it (not merely touching it tangentially). The test follows
// the source's signed-bearing-difference approach, applied from both
// ends: Port and Starboard must fall on opposite sides of the line
// from prev to cur, AND prev and cur must fall on opposite sides of
// the door line itself. Either half alone can hold for a segment that
// never reaches the door (e.g. one that stops well short of it but
// happens to see Port and Starboard in opposite angular directions);
// both are required together.
func DoorCrossed(b Buoy, prev, cur geo.Coords, heading float64) bool {
	bearingToPort := geo.HeadingTo(prev, b.Port)
	bearingToStarboard := geo.HeadingTo(prev, b.Starboard)
	bearingToCur := geo.HeadingTo(prev, cur)

	sidePort := signedAngleDiff(bearingToCur, bearingToPort)
	sideStarboard := signedAngleDiff(bearingToCur, bearingToStarboard)

	// Port and Starboard on opposite sides of the prev->cur line.
	if sidePort*sideStarboard >= 0 {
		return false
	}

	doorBearing := geo.HeadingTo(b.Port, b.Starboard)
	bearingDoorToPrev := geo.HeadingTo(b.Port, prev)
	bearingDoorToCur := geo.HeadingTo(b.Port, cur)

	sidePrev := signedAngleDiff(bearingDoorToPrev, doorBearing)
	sideCur := signedAngleDiff(bearingDoorToCur, doorBearing)

	// prev and cur on opposite sides of the door line itself.
	if sidePrev*sideCur >= 0 {
		return false
	}

	headingSide := signedAngleDiff(heading, doorBearing)
	// Tangential approach (heading parallel to the door line) does not
	// count as crossing.
	if headingSide == 0 {
		return false
	}

	return true
}

// signedAngleDiff returns a-b wrapped to (-180,180].
func signedAngleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d <= -180 {
		d += 360
	}
	if d > 180 {
		d -= 360
	}
	return d
}

// Reached dispatches to the shape-appropriate crossing test; Waypoint
// buoys are never "crossed" this way — they are only ever validated by
// the router's direct-aim path.
func Reached(b Buoy, prev, cur geo.Coords, heading float64) bool {
	switch b.Kind {
	case KindDoor:
		return DoorCrossed(b, prev, cur, heading)
	case KindZone:
		return ZoneCrossed(b, prev, cur)
	default:
		return false
	}
}
