// routing/nav.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package routing

import (
	"strconv"

	"github.com/iancoleman/orderedmap"

	"github.com/mmp/sailroute/raceconfig"
	"github.com/mmp/sailroute/units"
)

// Nav is one discrete time-slice of the frontier: the set of
// Alternatives reached at AbsoluteDuration, keyed by azimuth bucket in
// insertion order (the literal "ordered map<az:i32, Alternative>" of
// the data model).
type Nav struct {
	AbsoluteDuration units.Duration
	min              *units.Distance
	alternatives     *orderedmap.OrderedMap
	ReachedByWay     bool
	Crossed          bool
}

func NewNav(absolute units.Duration) *Nav {
	return &Nav{AbsoluteDuration: absolute, alternatives: orderedmap.New()}
}

// NewSeedNav wraps a single starting Position as the sole az=0
// alternative, the frontier a buoy leg (or the whole route) begins
// from.
func NewSeedNav(p *Position) *Nav {
	n := NewNav(p.Duration.Absolute)
	alt := emptyAlternative()
	alt[0] = p
	n.SetAlternative(0, alt)
	return n
}

func azKey(az int) string { return strconv.Itoa(az) }

func (n *Nav) GetAlternative(az int) (*Alternative, bool) {
	v, ok := n.alternatives.Get(azKey(az))
	if !ok {
		return nil, false
	}
	return v.(*Alternative), true
}

func (n *Nav) SetAlternative(az int, alt *Alternative) {
	n.alternatives.Set(azKey(az), alt)
}

func (n *Nav) DeleteAlternative(az int) {
	n.alternatives.Delete(azKey(az))
}

// Azimuths returns the azimuth keys in insertion order.
func (n *Nav) Azimuths() []int {
	keys := n.alternatives.Keys()
	out := make([]int, 0, len(keys))
	for _, k := range keys {
		v, err := strconv.Atoi(k)
		if err == nil {
			out = append(out, v)
		}
	}
	return out
}

// Size counts non-empty variants across every alternative.
func (n *Nav) Size() int {
	total := 0
	for _, az := range n.Azimuths() {
		alt, _ := n.GetAlternative(az)
		total += alt.Size()
	}
	return total
}

// UpdateMin lowers n.min if d is smaller than what's recorded so far;
// min only ever moves downward, matching the data model's invariant.
func (n *Nav) UpdateMin(d units.Distance) {
	if n.min == nil || d.Less(*n.min) {
		v := d
		n.min = &v
	}
}

func (n *Nav) Min() (units.Distance, bool) {
	if n.min == nil {
		return units.DistanceFromM(0), false
	}
	return *n.min, true
}

// Walk calls f for every (az, sail-index, Position) triple currently
// published in this Nav.
func (n *Nav) Walk(f func(az, sailIndex int, p *Position)) {
	for _, az := range n.Azimuths() {
		alt, _ := n.GetAlternative(az)
		for i, p := range alt {
			if p != nil {
				f(az, i, p)
			}
		}
	}
}

// ToIsochrone renders every published Position in this Nav as a
// section path point for UI display; when all is false only reached
// nodes are included, matching the source's "display_all_isochrones"
// toggle.
func (n *Nav) ToIsochrone(all bool) []raceconfig.IsochronePoint {
	var pts []raceconfig.IsochronePoint
	n.Walk(func(az, _ int, p *Position) {
		if !all && p.Reached == "" {
			return
		}
		prevAz := 0
		if p.Previous != nil {
			prevAz = p.Previous.Az
		}
		pts = append(pts, raceconfig.IsochronePoint{
			Lat: p.Point.Lat, Lon: p.Point.Lon, Az: az, PrevAz: prevAz,
		})
	})
	return pts
}
