// routing/router.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package routing

import (
	"context"
	"math"
	"time"

	"github.com/brunoga/deep"
	"github.com/goforj/godump"
	"golang.org/x/sync/errgroup"

	"github.com/mmp/sailroute/geo"
	"github.com/mmp/sailroute/land"
	"github.com/mmp/sailroute/log"
	"github.com/mmp/sailroute/polar"
	"github.com/mmp/sailroute/race"
	"github.com/mmp/sailroute/raceconfig"
	"github.com/mmp/sailroute/routeerr"
	"github.com/mmp/sailroute/units"
	"github.com/mmp/sailroute/util"
	"github.com/mmp/sailroute/wind"
)

// legBuoy wraps a race.Buoy with its per-leg state: the accumulated
// set of Navs that reached it (preserved so the next leg can start
// from the union of every reach time, not only the first) and the
// point the current leg departs from.
type legBuoy struct {
	race.Buoy
	Reachers  []*Nav
	departsAt geo.Coords
}

func (b *legBuoy) departure() geo.Coords        { return b.departsAt }
func (b *legBuoy) destinationPoint() geo.Coords { return b.Destination }

func getLegBuoys(r *race.Race, from geo.Coords) []*legBuoy {
	out := make([]*legBuoy, 0, len(r.Buoys))
	departure := from
	for i := range r.Buoys {
		if r.Buoys[i].Validated {
			departure = r.Buoys[i].Destination
			continue
		}
		out = append(out, &legBuoy{Buoy: r.Buoys[i], departsAt: departure})
		departure = r.Buoys[i].Destination
	}
	return out
}

// Router drives the outer buoy loop: it holds the immutable, logically
// shareable collaborators (polar model, wind and land providers) and
// routes one RouteRequest at a time.
type Router struct {
	Polar   *polar.Polar
	Winds   wind.Provider
	Lands   land.Provider
	Logger  *log.Logger
	Workers int // degree of parallelism for each navigate() fan-out; 0 = GOMAXPROCS

	resultLock util.LoggingMutex
}

// referenceSpeed is the boat's TWA-90 speed at the reference 10 kt
// wind used to size the azimuth quantization factor.
func (rt *Router) referenceSpeed() units.Speed {
	r := rt.Polar.GetBoatSpeed(polar.NewTWAHeading(90), polar.Wind{Direction: 0, Speed: units.SpeedFromKts(10)},
		nil, polar.AUTO, false)
	return r.Speed
}

func (rt *Router) azimuthFactor(accuracy, minDist float64) float64 {
	delta := rt.referenceSpeed().Times(units.DurationFromSeconds(3 * 3600)).M()
	arg := clampUnit(delta / minDist)
	asin := math.Asin(arg)
	if asin == 0 {
		return accuracy
	}
	return accuracy + math.Round((math.Pi/180)/asin)
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

func maxRadiusFor(min units.Distance) units.Distance {
	nm := min.NM()
	switch {
	case nm < 1000:
		return min.Scale(1.5)
	case nm < 100:
		return min.Scale(2.0)
	default:
		return min.Scale(1.5)
	}
}

// Route runs the full outer buoy loop for one request, against one
// race, returning the accumulated RouteResult. It returns a typed
// error only for structural failures (missing providers, no polar);
// routing timeouts and navigation dead-ends are reported inside the
// RouteResult via Infos.Success=false.
func (rt *Router) Route(ctx context.Context, req *raceconfig.RouteRequest, r *race.Race) (*raceconfig.RouteResult, error) {
	if rt.Polar == nil {
		return nil, routeerr.ErrPolarNotFound
	}
	if rt.Winds == nil {
		return nil, routeerr.ErrProviderNotFound
	}

	start := req.StartTime
	maxDuration := units.DurationFromSeconds(20 * 24 * 3600)
	if req.MaxDuration > 0 {
		maxDuration = units.Duration(req.MaxDuration)
	}

	origin := &Position{
		Point: req.From,
		Settings: raceconfig.BoatSettings{
			Heading: req.BoatSettings.Heading,
			Sail:    req.BoatSettings.Sail,
		},
		Status: req.Status,
	}
	from := NewSeedNav(origin)

	now := start
	var duration units.Duration
	var success = true

	var sections []raceconfig.Section
	var debugCloud []geo.Coords
	var way []raceconfig.WaypointInfo

	var futureNavs []*Nav

	buoys := getLegBuoys(r, req.From)
	deadline, hasDeadline := ctx.Deadline()

	for _, buoy := range buoys {
		reached := false
		minDist := units.DistanceFromM(geo.DistanceTo(buoy.departure(), buoy.destinationPoint()))
		maxRadius := maxRadiusFor(minDist)
		bestDistTo := minDist

		factor := rt.azimuthFactor(1.0, minDist.M())

		section := raceconfig.Section{Color: buoy.Name}

		maxTrack := map[int][8]units.Distance{}
		cache := polar.NewCache(rt.Polar, 4096)

		for !reached && success && duration.Seconds() < maxDuration.Seconds() {
			if hasDeadline && time.Now().After(deadline) {
				success = false
				break
			}

			step := raceconfig.StepFor(stepsOrDefault(req.Steps), duration)

			for len(futureNavs) > 0 && futureNavs[0].AbsoluteDuration.Seconds() < duration.Seconds()+step.Seconds() {
				futureNavs = futureNavs[1:]
			}

			w := rt.Winds.Find(now)

			lc := &legContext{
				polarModel: rt.Polar,
				cache:      cache,
				lands:      rt.Lands,
				opts:       req.Options,
				windField:  w,
				step:       step,
				factor:     factor,
				buoy:       buoy,
			}

			navs := rt.navigate(ctx, lc, from, maxTrack, maxRadius, futureNavs)
			if len(navs) == 0 {
				success = false
				break
			}

			nav := navs[0]
			futureNavs = navs[1:]

			reached = nav.ReachedByWay
			duration = nav.AbsoluteDuration

			section.Paths = append(section.Paths, nav.ToIsochrone(false))

			nav.Walk(func(az, _ int, p *Position) {
				if !p.DistTo.Greater(bestDistTo) {
					bestDistTo = p.DistTo
				}
				if p.Reached != "" {
					debugCloud = append(debugCloud, p.Point)
				}
			})

			now = start.Add(duration.Std())
			from = nav

			if reached {
				buoy.Reachers = append(buoy.Reachers, nav)
				futureNavs = rebuildFutureNavs(buoy, factor)
				duration = buoy.Reachers[0].AbsoluteDuration
			}
		}

		sections = append(sections, section)

		if !reached {
			success = false
			break
		}

		buoy.Buoy.Validated = true
		way = append(way, waypointFromReach(buoy, from, start))
	}

	result := &raceconfig.RouteResult{
		Infos: raceconfig.ResultInfos{
			Start:    start,
			Duration: duration.Std(),
			Success:  success,
		},
		Way:      way,
		Sections: sections,
		Debug:    debugCloud,
	}

	rt.Logger.Debugf("route result: %s", godump.DumpStr(result))

	return result, nil
}

func stepsOrDefault(steps []raceconfig.StepEntry) []raceconfig.StepEntry {
	if len(steps) == 0 {
		return raceconfig.DefaultSteps()
	}
	return steps
}

func waypointFromReach(buoy *legBuoy, nav *Nav, start time.Time) raceconfig.WaypointInfo {
	var best *Position
	nav.Walk(func(_, _ int, p *Position) {
		if p.Reached == buoy.Name && (best == nil || p.FromDist.Greater(best.FromDist)) {
			best = p
		}
	})
	if best == nil {
		return raceconfig.WaypointInfo{BuoyName: buoy.Name}
	}
	return raceconfig.WaypointInfo{
		Point:        best.Point,
		BoatSettings: best.Settings,
		Status:       best.Status,
		Absolute:     best.Duration.Absolute.Std(),
		Relative:     best.Duration.Relative.Std(),
		BuoyName:     buoy.Name,
	}
}

// rebuildFutureNavs lifts every reacher after the first into fresh Navs
// rescaled to the new leg's azimuth factor, with their alternatives
// full-merged (per-sail, not collapsed to slot 0) since these are
// terminal nodes of the previous leg being seeded into the next one.
func rebuildFutureNavs(buoy *legBuoy, newFactor float64) []*Nav {
	if len(buoy.Reachers) <= 1 {
		return nil
	}

	byAbsolute := map[int64]*Nav{}
	var order []int64

	for _, prev := range buoy.Reachers[1:] {
		key := int64(prev.AbsoluteDuration)
		nav, ok := byAbsolute[key]
		if !ok {
			nav = NewNav(prev.AbsoluteDuration)
			byAbsolute[key] = nav
			order = append(order, key)
		}

		prev.Walk(func(az, sailIdx int, p *Position) {
			rescaledAz := int(math.Round(float64(az) * newFactor))
			alt, ok := nav.GetAlternative(rescaledAz)
			if !ok {
				alt = emptyAlternative()
				nav.SetAlternative(rescaledAz, alt)
			}
			cloned, err := deep.Copy(p)
			if err != nil {
				cloned = p
			}
			mergeFull(alt, sailIdx, cloned)
		})
	}

	out := make([]*Nav, 0, len(order))
	for _, k := range order {
		out = append(out, byAbsolute[k])
	}
	return out
}
