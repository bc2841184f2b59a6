// routing/navigate.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package routing

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/mmp/sailroute/geo"
	"github.com/mmp/sailroute/race"
	"github.com/mmp/sailroute/units"
)

// way2 expands one source Position for one step: it first tries to sail
// straight at the buoy (directAim), and only falls back to the full
// true-wind-angle sweep (jump2) when the buoy isn't reachable this step.
// A successful direct aim is returned alone since it dominates every
// swept candidate by definition (it's the move that finishes the leg).
func way2(lc *legContext, src *Position) []*Position {
	if p := directAim(lc, src); p != nil {
		return []*Position{p}
	}
	return jump2(lc, src)
}

// crossTrackDistance is the great-circle distance of p off the track
// from departure to destination, used to size the max_radius rejection
// that keeps the frontier from ballooning sideways away from the rhumb
// the leg is actually sailing.
func crossTrackDistance(departure, destination, p geo.Coords) float64 {
	d13, theta13 := geo.DistanceAndHeadingTo(departure, p)
	_, theta12 := geo.DistanceAndHeadingTo(departure, destination)

	const r = geo.MeanEarthRadius
	delta13 := d13 / r
	t13 := theta13 * math.Pi / 180
	t12 := theta12 * math.Pi / 180

	return math.Asin(math.Sin(delta13)*math.Sin(t13-t12)) * r
}

// navigate runs one time step of the outer loop: every published
// Position in `from` is expanded in parallel via way2, the results are
// merged and pruned into the next step's Nav, and the step Nav is
// returned alongside the carried-forward futureNavs, soonest first.
func (rt *Router) navigate(ctx context.Context, lc *legContext, from *Nav,
	maxTrack map[int][8]units.Distance, maxRadius units.Distance, futureNavs []*Nav) []*Nav {

	stepDuration := from.AbsoluteDuration.Add(lc.step)
	next := NewNav(stepDuration)

	var sources []*Position
	from.Walk(func(_, _ int, p *Position) { sources = append(sources, p) })

	workers := rt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	sem := make(chan struct{}, workers)

	eg, egCtx := errgroup.WithContext(ctx)
	for _, src := range sources {
		src := src
		eg.Go(func() error {
			select {
			case <-egCtx.Done():
				return egCtx.Err()
			case sem <- struct{}{}:
			}
			defer func() { <-sem }()

			results := way2(lc, src)

			rt.resultLock.Lock(rt.Logger)
			defer rt.resultLock.Unlock(rt.Logger)
			for _, p := range results {
				mergeCandidate(next, lc, maxTrack, maxRadius, src, p)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil && rt.Logger != nil {
		rt.Logger.Debugf("navigate: worker stopped early: %v", err)
	}

	pruneOversizeAlternatives(next)
	markReached(next, lc.buoy.Name)

	out := make([]*Nav, 0, 1+len(futureNavs))
	out = append(out, next)
	out = append(out, futureNavs...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].AbsoluteDuration.Less(out[j].AbsoluteDuration)
	})
	return out
}

// mergeCandidate applies every per-position pruning rule and, if the
// candidate survives, merges it into its azimuth bucket: to-avoid
// geometry first (cheapest, geometry-only rejection), then the
// max_radius sideways bound, then the monotonic-progress regression
// check against maxTrack.
func mergeCandidate(next *Nav, lc *legContext, maxTrack map[int][8]units.Distance, maxRadius units.Distance, src, p *Position) {
	if race.InAnyTriangle(lc.buoy.ToAvoid, p.Point) {
		return
	}

	if p.Reached == "" {
		if cross := crossTrackDistance(lc.buoy.departure(), lc.buoy.destinationPoint(), p.Point); math.Abs(cross) > maxRadius.M() {
			return
		}
	}

	// Detect a door/zone crossing along the segment this jump traveled,
	// for candidates that weren't already stamped by a direct aim.
	if p.Reached == "" && (lc.buoy.Kind == race.KindDoor || lc.buoy.Kind == race.KindZone) {
		heading := geo.HeadingTo(src.Point, p.Point)
		if race.Reached(lc.buoy.Buoy, src.Point, p.Point, heading) {
			p.Reached = lc.buoy.Name
		}
	}

	sailIdx := p.Settings.Sail.Index
	if sailIdx < 0 || sailIdx >= 8 {
		sailIdx = 0
	}

	if p.Reached == "" {
		track := maxTrack[p.Az]
		if track[sailIdx].M() > 0 && p.FromDist.Less(track[sailIdx]) {
			return // regressed relative to the best progress already seen at this az/sail
		}
		track[sailIdx] = p.FromDist.Scale(1.001)
		maxTrack[p.Az] = track
	}

	alt, ok := next.GetAlternative(p.Az)
	if !ok {
		alt = emptyAlternative()
		next.SetAlternative(p.Az, alt)
	}

	if p.Reached != "" {
		// A position that finishes the leg always wins its slot: reaching
		// the buoy dominates any unreached competitor regardless of
		// FromDist.
		if alt[0] == nil || alt[0].Reached == "" || p.FromDist.Greater(alt[0].FromDist) {
			alt[0] = p
		}
	} else {
		mergeFast(alt, p)
	}

	next.UpdateMin(p.DistTo)
}

// pruneOversizeAlternatives enforces the frontier-size dominance rule:
// once a step's whole frontier has grown past 25 published variants,
// anything more than twice as far from the buoy as the Nav's closest
// approach so far is dropped as dominated, regardless of which azimuth
// bucket it occupies.
func pruneOversizeAlternatives(n *Nav) {
	if n.Size() <= 25 {
		return
	}

	min, ok := n.Min()
	if !ok {
		return
	}
	bound := min.Scale(2)

	for _, az := range n.Azimuths() {
		alt, _ := n.GetAlternative(az)
		for i, p := range alt {
			if p != nil && p.Reached == "" && p.DistTo.Greater(bound) {
				alt[i] = nil
			}
		}
	}
}

// markReached stamps the Nav as having finished the leg this step if
// any published Position reached the buoy directly or one of its last
// ten ancestors did (a node kept by mergeCandidate's slot-0 override can
// still lose the ancestor's Reached stamp across the DAG, so the
// walk-back recovers it).
func markReached(n *Nav, buoyName string) {
	n.Walk(func(_, _ int, p *Position) {
		if p.Reached == buoyName {
			n.ReachedByWay = true
			return
		}
		if _, ok := p.ReachedAncestor(buoyName); ok {
			n.ReachedByWay = true
		}
	})
}
