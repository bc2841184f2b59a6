// routing/jump.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package routing

import (
	"math"

	"github.com/mmp/sailroute/geo"
	"github.com/mmp/sailroute/land"
	"github.com/mmp/sailroute/polar"
	"github.com/mmp/sailroute/raceconfig"
	"github.com/mmp/sailroute/units"
	"github.com/mmp/sailroute/wind"
)

// legContext bundles everything jump2/way2 need that's constant across
// one navigate() call: the immutable collaborators (polar, land, race
// geometry) plus the current wind field and step size. windField is
// queried per-point since wind varies spatially across the frontier.
type legContext struct {
	polarModel *polar.Polar
	cache      *polar.Cache
	lands      land.Provider
	opts       polar.BoatOptions
	windField  wind.InstantWind
	step       units.Duration
	factor     float64
	buoy       *legBuoy
}

// boatSpeed resolves one heading/wind/sail lookup, routing through the
// leg's memoized cache when one is set (directAim's single-candidate
// query is the hot, narrow-key-space path worth memoizing; jump2's
// exhaustive per-degree sweep below is not, so it calls polarModel
// directly).
func (ctx *legContext) boatSpeed(heading polar.Heading, wnd polar.Wind, usingSail *polar.Sail, currentSail polar.Sail, isInIceLimits bool) polar.Result {
	if ctx.cache != nil {
		return ctx.cache.GetBoatSpeed(heading, wnd, usingSail, currentSail, isInIceLimits)
	}
	return ctx.polarModel.GetBoatSpeed(heading, wnd, usingSail, currentSail, isInIceLimits)
}

// jump2 sweeps every integer true wind angle in [-180,180) from src,
// skipping |TWA| < 30 and |TWA| > 160, and returns the Positions
// produced by every polar candidate at each TWA that survive land
// rejection.
func jump2(ctx *legContext, src *Position) []*Position {
	var out []*Position
	wnd := ctx.windField.Interpolate(src.Point)

	for twaInt := -180; twaInt < 180; twaInt++ {
		twa := float64(twaInt)
		if math.Abs(twa) < 30 || math.Abs(twa) > 160 {
			continue
		}

		heading := polar.NewTWAHeading(twa)
		compass := heading.Heading(wnd.Direction)

		candidates := ctx.polarModel.GetBoatSpeeds(heading, wnd, src.Settings.Sail, src.IsInIceLimits, false)
		for _, cand := range candidates {
			p := buildJumpPosition(ctx, src, wnd, compass, twa, cand)
			if p == nil {
				continue
			}
			out = append(out, p)
		}
	}

	return out
}

func buildJumpPosition(ctx *legContext, src *Position, wnd polar.Wind, compassHeading, twa float64, cand polar.Result) *Position {
	penalties := ctx.polarModel.AddPenalties(ctx.opts, src.Status.Penalties, src.Status.Stamina,
		src.Settings.Heading.TWA(wnd.Direction), twa, src.Settings.Sail, cand.Sail, wnd.Speed)

	jumpDuration := ctx.step
	if minPen, ok := penalties.MinPenaltyDuration(); ok && minPen > 0 {
		if jumpDuration < minPen {
			n := math.Ceil(minPen.Seconds() / jumpDuration.Seconds())
			jumpDuration = units.DurationFromSeconds(n * jumpDuration.Seconds())
		}
	}

	dist, remainingPenalties, endSpeed, _ := polar.Distance(cand.Speed, jumpDuration, penalties)

	point := geo.Destination(src.Point, compassHeading, dist.M())
	if ctx.lands != nil && ctx.lands.IsLand(point.Lat, point.Lon) {
		return nil
	}

	fromDistM, _ := geo.DistanceAndHeadingTo(ctx.buoy.departure(), point)
	distToM, azDeg := geo.DistanceAndHeadingTo(point, ctx.buoy.destinationPoint())
	azInt := int(math.Round(azDeg * ctx.factor))

	stamina := ctx.polarModel.Tired(src.Status.Stamina, src.Settings.Heading.TWA(wnd.Direction), twa,
		src.Settings.Sail, cand.Sail, wnd.Speed)
	stamina = ctx.polarModel.Recovers(stamina, jumpDuration, wnd.Speed)

	return &Position{
		Az:       azInt,
		Point:    point,
		FromDist: units.DistanceFromM(fromDistM),
		DistTo:   units.DistanceFromM(distToM),
		Duration: NavDuration{
			Absolute: src.Duration.Absolute + jumpDuration,
			Relative: jumpDuration,
		},
		Distance: dist,
		Settings: raceconfig.BoatSettings{Heading: polar.NewTWAHeading(twa), Sail: cand.Sail},
		Status: raceconfig.BoatStatus{
			BoatSpeed: endSpeed,
			Wind:      wnd,
			Foil:      cand.Foil,
			Boost:     cand.Boost,
			BestRatio: cand.Best,
			Penalties: remainingPenalties,
			Stamina:   stamina,
		},
		Previous:      src,
		IsInIceLimits: src.IsInIceLimits,
	}
}

// directAim attempts to sail straight at the buoy's destination,
// succeeding if it's reachable within 1.5x the step duration under the
// boat's current penalty state.
func directAim(ctx *legContext, src *Position) *Position {
	wnd := ctx.windField.Interpolate(src.Point)

	distM, headingDeg := geo.DistanceAndHeadingTo(src.Point, ctx.buoy.destinationPoint())
	dist := units.DistanceFromM(distM)

	twa := polar.NewCompassHeading(headingDeg).TWA(wnd.Direction)
	cand := ctx.boatSpeed(polar.NewCompassHeading(headingDeg), wnd, nil, src.Settings.Sail,
		src.IsInIceLimits)

	penalties := ctx.polarModel.AddPenalties(ctx.opts, src.Status.Penalties, src.Status.Stamina,
		src.Settings.Heading.TWA(wnd.Direction), twa, src.Settings.Sail, cand.Sail, wnd.Speed)

	d, remainingPenalties, speed, _ := polar.Duration(cand.Speed, dist, penalties)
	if d.Seconds() > 1.5*ctx.step.Seconds() {
		return nil
	}

	stamina := ctx.polarModel.Tired(src.Status.Stamina, src.Settings.Heading.TWA(wnd.Direction), twa,
		src.Settings.Sail, cand.Sail, wnd.Speed)
	stamina = ctx.polarModel.Recovers(stamina, d, wnd.Speed)

	return &Position{
		Az:       -1,
		Point:    ctx.buoy.destinationPoint(),
		FromDist: src.FromDist.Add(dist),
		DistTo:   units.DistanceFromM(0),
		Duration: NavDuration{
			Absolute: src.Duration.Absolute + d,
			Relative: d,
		},
		Distance: dist,
		Reached:  ctx.buoy.Name,
		Settings: raceconfig.BoatSettings{Heading: polar.NewCompassHeading(headingDeg), Sail: cand.Sail},
		Status: raceconfig.BoatStatus{
			BoatSpeed: speed,
			Wind:      wnd,
			Foil:      cand.Foil,
			Boost:     cand.Boost,
			BestRatio: cand.Best,
			Penalties: remainingPenalties,
			Stamina:   stamina,
		},
		Previous:      src,
		IsInIceLimits: src.IsInIceLimits,
	}
}
