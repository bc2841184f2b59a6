// routing/nav_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package routing

import (
	"testing"

	"github.com/mmp/sailroute/units"
)

func TestNewSeedNavWrapsOriginAtAzZero(t *testing.T) {
	origin := &Position{Duration: NavDuration{Absolute: units.DurationFromSeconds(0)}}
	nav := NewSeedNav(origin)

	alt, ok := nav.GetAlternative(0)
	if !ok {
		t.Fatalf("expected an az=0 alternative")
	}
	if alt[0] != origin {
		t.Fatalf("expected the seed position in slot 0")
	}
	if nav.Size() != 1 {
		t.Fatalf("expected size 1, got %d", nav.Size())
	}
}

func TestAzimuthsPreserveInsertionOrder(t *testing.T) {
	nav := NewNav(units.DurationFromSeconds(0))
	order := []int{5, -3, 100, 0, -100}
	for _, az := range order {
		nav.SetAlternative(az, emptyAlternative())
	}

	got := nav.Azimuths()
	if len(got) != len(order) {
		t.Fatalf("expected %d azimuths, got %d", len(order), len(got))
	}
	for i, az := range order {
		if got[i] != az {
			t.Fatalf("azimuth order not preserved: want %v, got %v", order, got)
		}
	}
}

func TestUpdateMinOnlyMovesDownward(t *testing.T) {
	nav := NewNav(units.DurationFromSeconds(0))
	nav.UpdateMin(units.DistanceFromM(500))
	nav.UpdateMin(units.DistanceFromM(1000)) // worse, must not replace
	nav.UpdateMin(units.DistanceFromM(100))  // better, must replace

	min, ok := nav.Min()
	if !ok {
		t.Fatalf("expected a recorded min")
	}
	if min.M() != 100 {
		t.Fatalf("expected min 100, got %v", min.M())
	}
}

func TestDeleteAlternativeRemovesIt(t *testing.T) {
	nav := NewNav(units.DurationFromSeconds(0))
	nav.SetAlternative(7, emptyAlternative())
	nav.DeleteAlternative(7)

	if _, ok := nav.GetAlternative(7); ok {
		t.Fatalf("expected azimuth 7 to be gone after delete")
	}
	if len(nav.Azimuths()) != 0 {
		t.Fatalf("expected no azimuths left")
	}
}

func TestWalkVisitsEveryPublishedPosition(t *testing.T) {
	nav := NewNav(units.DurationFromSeconds(0))
	alt0 := emptyAlternative()
	alt0[0] = &Position{}
	alt0[3] = &Position{}
	nav.SetAlternative(10, alt0)

	alt1 := emptyAlternative()
	alt1[0] = &Position{}
	nav.SetAlternative(-10, alt1)

	count := 0
	nav.Walk(func(az, sailIndex int, p *Position) { count++ })
	if count != 3 {
		t.Fatalf("expected 3 published positions, got %d", count)
	}
}

func TestToIsochroneSkipsUnreachedUnlessAll(t *testing.T) {
	nav := NewNav(units.DurationFromSeconds(0))
	alt := emptyAlternative()
	alt[0] = &Position{Reached: ""}
	alt[1] = &Position{Reached: "finish"}
	nav.SetAlternative(0, alt)

	pts := nav.ToIsochrone(false)
	if len(pts) != 1 {
		t.Fatalf("expected only the reached position, got %d points", len(pts))
	}

	all := nav.ToIsochrone(true)
	if len(all) != 2 {
		t.Fatalf("expected both positions with all=true, got %d", len(all))
	}
}
