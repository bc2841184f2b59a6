// routing/navigate_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package routing

import (
	"testing"

	"github.com/mmp/sailroute/geo"
	"github.com/mmp/sailroute/race"
	"github.com/mmp/sailroute/units"
)

func waypointBuoy(dest geo.Coords, toAvoid []race.Triangle) *legBuoy {
	return &legBuoy{
		Buoy:      race.Buoy{Name: "mark1", Kind: race.KindWaypoint, Destination: dest, ToAvoid: toAvoid},
		departsAt: geo.Coords{Lat: 0, Lon: 0},
	}
}

func TestMergeCandidateRejectsInsideToAvoidTriangle(t *testing.T) {
	tri := race.Triangle{
		{Lat: -1, Lon: -1}, {Lat: -1, Lon: 1}, {Lat: 1, Lon: 0},
	}
	lc := &legContext{buoy: waypointBuoy(geo.Coords{Lat: 0, Lon: 1}, []race.Triangle{tri})}

	next := NewNav(units.DurationFromSeconds(600))
	maxTrack := map[int][8]units.Distance{}
	maxRadius := units.DistanceFromNM(100)

	src := &Position{Point: geo.Coords{Lat: -0.5, Lon: 0}}
	p := &Position{Az: 0, Point: geo.Coords{Lat: -0.5, Lon: 0.1}, FromDist: units.DistanceFromM(100)}

	mergeCandidate(next, lc, maxTrack, maxRadius, src, p)

	if next.Size() != 0 {
		t.Fatalf("expected the candidate inside the to-avoid triangle to be rejected")
	}
}

func TestMergeCandidateRejectsBeyondMaxRadius(t *testing.T) {
	lc := &legContext{buoy: waypointBuoy(geo.Coords{Lat: 0, Lon: 1}, nil)}

	next := NewNav(units.DurationFromSeconds(600))
	maxTrack := map[int][8]units.Distance{}
	maxRadius := units.DistanceFromM(1000) // far tighter than the ~111km a degree of offset produces

	src := &Position{Point: geo.Coords{Lat: 0, Lon: 0}}
	farOffTrack := &Position{Az: 0, Point: geo.Coords{Lat: 1, Lon: 0.5}, FromDist: units.DistanceFromM(1000)}

	mergeCandidate(next, lc, maxTrack, maxRadius, src, farOffTrack)

	if next.Size() != 0 {
		t.Fatalf("expected the far-off-track candidate to be rejected by max_radius")
	}
}

func TestMergeCandidateAcceptsOnTrack(t *testing.T) {
	lc := &legContext{buoy: waypointBuoy(geo.Coords{Lat: 0, Lon: 1}, nil)}

	next := NewNav(units.DurationFromSeconds(600))
	maxTrack := map[int][8]units.Distance{}
	maxRadius := units.DistanceFromNM(100)

	src := &Position{Point: geo.Coords{Lat: 0, Lon: 0}}
	onTrack := &Position{Az: 0, Point: geo.Coords{Lat: 0, Lon: 0.5}, FromDist: units.DistanceFromM(1000)}

	mergeCandidate(next, lc, maxTrack, maxRadius, src, onTrack)

	alt, ok := next.GetAlternative(0)
	if !ok || alt[0] != onTrack {
		t.Fatalf("expected the on-track candidate to be published at az 0")
	}
}

func TestMergeCandidateDetectsZoneCrossing(t *testing.T) {
	zoneCenter := geo.Coords{Lat: 0, Lon: 0}
	buoy := &legBuoy{
		Buoy:      race.Buoy{Name: "zoneMark", Kind: race.KindZone, Destination: zoneCenter, Radius: 10000},
		departsAt: geo.Coords{Lat: -1, Lon: 0},
	}
	lc := &legContext{buoy: buoy}

	next := NewNav(units.DurationFromSeconds(600))
	maxTrack := map[int][8]units.Distance{}
	maxRadius := units.DistanceFromNM(200)

	// prev is well outside the 10km zone; cur lands inside it.
	src := &Position{Point: geo.Coords{Lat: -0.2, Lon: 0}}
	cur := &Position{Az: 0, Point: zoneCenter, FromDist: units.DistanceFromM(5000)}

	mergeCandidate(next, lc, maxTrack, maxRadius, src, cur)

	if cur.Reached != "zoneMark" {
		t.Fatalf("expected the zone crossing to stamp Reached, got %q", cur.Reached)
	}
}

func TestMergeCandidateRegressionPruning(t *testing.T) {
	lc := &legContext{buoy: waypointBuoy(geo.Coords{Lat: 0, Lon: 1}, nil)}
	next := NewNav(units.DurationFromSeconds(600))
	maxTrack := map[int][8]units.Distance{}
	maxRadius := units.DistanceFromNM(100)
	src := &Position{Point: geo.Coords{Lat: 0, Lon: 0}}

	good := &Position{Az: 3, Point: geo.Coords{Lat: 0, Lon: 0.1}, FromDist: units.DistanceFromM(10000)}
	mergeCandidate(next, lc, maxTrack, maxRadius, src, good)

	worse := &Position{Az: 3, Point: geo.Coords{Lat: 0, Lon: 0.1}, FromDist: units.DistanceFromM(1000)}
	mergeCandidate(next, lc, maxTrack, maxRadius, src, worse)

	alt, _ := next.GetAlternative(3)
	if alt[0] != good {
		t.Fatalf("expected the regressed candidate to be rejected, kept FromDist=%v", alt[0].FromDist.M())
	}
}

func TestPruneOversizeAlternativesDropsDominatedPastThreshold(t *testing.T) {
	next := NewNav(units.DurationFromSeconds(600))

	for az := 0; az < 30; az++ {
		alt := emptyAlternative()
		p := &Position{DistTo: units.DistanceFromM(float64(100 + az*1000))}
		alt[0] = p
		next.SetAlternative(az, alt)
		next.UpdateMin(p.DistTo)
	}

	pruneOversizeAlternatives(next)

	min, _ := next.Min()
	bound := min.Scale(2)

	next.Walk(func(az, _ int, p *Position) {
		if p.DistTo.Greater(bound) {
			t.Fatalf("expected every surviving position to be within 2x min, found DistTo=%v bound=%v", p.DistTo.M(), bound.M())
		}
	})
}

func TestMarkReachedViaAncestorWalkBack(t *testing.T) {
	reachedAncestor := &Position{Reached: "mark1"}
	child := &Position{Previous: reachedAncestor}

	next := NewNav(units.DurationFromSeconds(600))
	alt := emptyAlternative()
	alt[0] = child
	next.SetAlternative(0, alt)

	markReached(next, "mark1")

	if !next.ReachedByWay {
		t.Fatalf("expected the ancestor's reach stamp to mark the Nav as reached")
	}
}
