// routing/position_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package routing

import (
	"testing"

	"github.com/mmp/sailroute/units"
)

func TestMergeFastKeepsFurthest(t *testing.T) {
	alt := emptyAlternative()
	near := &Position{FromDist: units.DistanceFromM(100)}
	far := &Position{FromDist: units.DistanceFromM(200)}

	mergeFast(alt, near)
	mergeFast(alt, far)
	mergeFast(alt, near) // a worse candidate arriving later must not displace far

	if alt[0] != far {
		t.Fatalf("expected far to occupy slot 0, got %+v", alt[0])
	}
	if alt.Size() != 1 {
		t.Fatalf("mergeFast must collapse every sail into slot 0, got size %d", alt.Size())
	}
}

func TestMergeFullKeepsPerSailSlots(t *testing.T) {
	alt := emptyAlternative()
	a := &Position{FromDist: units.DistanceFromM(50)}
	b := &Position{FromDist: units.DistanceFromM(75)}

	mergeFull(alt, 0, a)
	mergeFull(alt, 1, b)

	if alt[0] != a || alt[1] != b {
		t.Fatalf("expected distinct sail slots to be preserved, got %+v", alt)
	}
	if alt.Size() != 2 {
		t.Fatalf("expected size 2, got %d", alt.Size())
	}
}

func TestMergeFullRejectsWorseCandidate(t *testing.T) {
	alt := emptyAlternative()
	best := &Position{FromDist: units.DistanceFromM(100)}
	worse := &Position{FromDist: units.DistanceFromM(10)}

	mergeFull(alt, 2, best)
	mergeFull(alt, 2, worse)

	if alt[2] != best {
		t.Fatalf("mergeFull must not let a worse candidate displace the incumbent")
	}
}

func TestAncestorWalksBackExactSteps(t *testing.T) {
	origin := &Position{}
	gen1 := &Position{Previous: origin}
	gen2 := &Position{Previous: gen1}
	gen3 := &Position{Previous: gen2}

	if got := gen3.Ancestor(2); got != gen1 {
		t.Fatalf("expected walking back 2 generations from gen3 to land on gen1")
	}
	if got := gen3.Ancestor(0); got != gen3 {
		t.Fatalf("Ancestor(0) must return the receiver itself")
	}
	if got := gen3.Ancestor(10); got != origin {
		t.Fatalf("Ancestor(n) longer than the chain must stop at the oldest ancestor")
	}
}

func TestReachedAncestorFindsWithinTenGenerations(t *testing.T) {
	origin := &Position{Reached: "gate1"}
	cur := origin
	for i := 0; i < 9; i++ {
		cur = &Position{Previous: cur}
	}

	anc, ok := cur.ReachedAncestor("gate1")
	if !ok || anc != origin {
		t.Fatalf("expected to find the reach stamp 9 generations back, got %v, %v", anc, ok)
	}
}

func TestReachedAncestorGivesUpPastTenGenerations(t *testing.T) {
	origin := &Position{Reached: "gate1"}
	cur := origin
	for i := 0; i < 11; i++ {
		cur = &Position{Previous: cur}
	}

	if _, ok := cur.ReachedAncestor("gate1"); ok {
		t.Fatalf("expected the walk-back to stop before reaching 11 generations up")
	}
}
