// routing/position.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package routing implements the isochrone router: Position/Nav/
// Alternative/Frontier, the navigate/way2 expansion, the outer buoy
// loop, and the bounded-parallel expansion the router drives each step
// with.
package routing

import (
	"github.com/mmp/sailroute/geo"
	"github.com/mmp/sailroute/raceconfig"
	"github.com/mmp/sailroute/units"
)

// NavDuration pairs the absolute elapsed time from route start with the
// duration of the jump that produced this Position.
type NavDuration struct {
	Absolute units.Duration
	Relative units.Duration
}

// Position is one node of the isochrone lattice: the published,
// immutable result of one jump from a previous Position. previous forms
// a backward DAG toward the route origin; once published a Position is
// never mutated, so it can be shared across Alternatives and future
// Navs without copying.
type Position struct {
	Az            int
	Point         geo.Coords
	FromDist      units.Distance // rhumb-line distance from the leg's departure point (a direct-aim arrival adds its final leg to the source's FromDist)
	DistTo        units.Distance // distance remaining to the buoy
	Duration      NavDuration
	Distance      units.Distance // length of the last leg only
	Reached       string         // buoy name if this step crossed it, else ""
	Settings      raceconfig.BoatSettings
	Status        raceconfig.BoatStatus
	Previous      *Position
	IsInIceLimits bool
}

// Ancestor walks up to n generations back up the previous chain,
// returning the furthest ancestor reached (which may be p itself if
// n==0 or the chain is shorter than n).
func (p *Position) Ancestor(n int) *Position {
	cur := p
	for i := 0; i < n && cur.Previous != nil; i++ {
		cur = cur.Previous
	}
	return cur
}

// ReachedAncestor reports whether p or any of its 10 most recent
// ancestors carries the given buoy name in Reached, so that a node
// whose crossing happened a few jumps back can still be lifted into
// the buoy's reacher set even if a later merge lost the stamp.
func (p *Position) ReachedAncestor(buoyName string) (*Position, bool) {
	cur := p
	for i := 0; i <= 10 && cur != nil; i++ {
		if cur.Reached == buoyName {
			return cur, true
		}
		cur = cur.Previous
	}
	return nil, false
}

// Alternative is the fixed-width 8-slot array of Positions sharing one
// azimuth bucket, keyed by sail index. During ordinary step expansion
// ("fast merge") every sail collapses into slot 0, the
// distance-maximizing wavefront; when reachers are lifted into a later
// leg's seed frontier ("full merge") the per-sail slots are preserved.
type Alternative [8]*Position

func emptyAlternative() *Alternative { return &Alternative{} }

// Size counts the non-empty slots.
func (a *Alternative) Size() int {
	n := 0
	for _, p := range a {
		if p != nil {
			n++
		}
	}
	return n
}

// betterThan is the full-merge comparison: a node further along its
// wavefront (larger FromDist) wins. Ties are impossible in practice
// since FromDist is a real-valued cumulative distance, but ties break
// toward the existing occupant to keep merges deterministic.
func betterThan(a, b *Position) bool {
	return a.FromDist.Greater(b.FromDist)
}

// mergeFast places p in slot 0 iff its FromDist exceeds what's stored
// there, collapsing all sails into one distance-maximizing wavefront —
// the mode ordinary forward expansion uses.
func mergeFast(alt *Alternative, p *Position) {
	if alt[0] == nil || p.FromDist.Greater(alt[0].FromDist) {
		alt[0] = p
	}
}

// mergeFull places p in its own sail-indexed slot, keeping it only if
// it's better than what's already there — the mode used when rebasing
// a buoy's reachers into the next leg's seed frontier.
func mergeFull(alt *Alternative, sailIndex int, p *Position) {
	if sailIndex < 0 || sailIndex >= len(alt) {
		sailIndex = 0
	}
	if alt[sailIndex] == nil || betterThan(p, alt[sailIndex]) {
		alt[sailIndex] = p
	}
}
