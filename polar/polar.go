// polar/polar.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package polar

import (
	"math"

	"github.com/mmp/sailroute/units"
)

func cosDeg(deg float64) float64 { return math.Cos(deg * math.Pi / 180) }

// PolarPenalty is one boundary (low-wind or high-wind) of a PenaltyCase.
type PolarPenalty struct {
	Ratio    float64 `json:"ratio"`
	TimerSec uint16  `json:"timer"`
}

// PenaltyBoundaries gives the penalty applied at the low-wind and
// high-wind edges of a PenaltyCase's interpolation range.
type PenaltyBoundaries struct {
	LW PolarPenalty `json:"lw"`
	HW PolarPenalty `json:"hw"`
}

// PenaltyCase describes one maneuver's cost (tack, gybe or sail
// change): a flat std/pro timer+ratio, optionally refined by
// wind-speed-dependent boundaries when the winch's low/high wind speed
// thresholds are configured.
type PenaltyCase struct {
	StdTimerSec uint16             `json:"stdTimerSec"`
	StdRatio    float64            `json:"stdRatio"`
	ProTimerSec uint16             `json:"proTimerSec"`
	ProRatio    float64            `json:"proRatio"`
	Std         *PenaltyBoundaries `json:"std,omitempty"`
	Pro         *PenaltyBoundaries `json:"pro,omitempty"`
}

// Winch holds the three maneuver PenaltyCases plus the shared low/high
// wind speed thresholds (in knots) used to interpolate within each.
type Winch struct {
	Tack       PenaltyCase `json:"tack"`
	Gybe       PenaltyCase `json:"gybe"`
	SailChange PenaltyCase `json:"sailChange"`
	LWS        *uint8      `json:"lws,omitempty"`
	HWS        *uint8      `json:"hws,omitempty"`
}

// Foil parameterizes the triangular foil-speed ramp in TWA and TWS.
type Foil struct {
	SpeedRatio float64 `json:"speedRatio"`
	TwaMin     float64 `json:"twaMin"`
	TwaMax     float64 `json:"twaMax"`
	TwaMerge   float64 `json:"twaMerge"`
	TwsMin     float64 `json:"twsMin"`
	TwsMax     float64 `json:"twsMax"`
	TwsMerge   float64 `json:"twsMerge"`
}

// Hull is the hull-option speed multiplier.
type Hull struct {
	SpeedRatio float64 `json:"speedRatio"`
}

// PolarSail is one sail's raw speed table, Speed[twaIndex][twsIndex] in
// knots.
type PolarSail struct {
	ID    int         `json:"id"`
	Name  string      `json:"name"`
	Speed [][]float64 `json:"speed"`
}

// Polar is a complete boat performance model: speed tables per sail
// over a (TWS, TWA) grid, plus the ratio modifiers, foil ramp and
// maneuver-penalty configuration.
type Polar struct {
	ID                      uint8       `json:"_id"`
	Label                   string      `json:"label"`
	GlobalSpeedRatio        float64     `json:"globalSpeedRatio"`
	IceSpeedRatio           float64     `json:"iceSpeedRatio"`
	AutoSailChangeTolerance float64     `json:"autoSailChangeTolerance"`
	BadSailTolerance        float64     `json:"badSailTolerance"`
	MaxSpeed                float64     `json:"maxSpeed"`
	Foil                    Foil        `json:"foil"`
	Hull                    Hull        `json:"hull"`
	Winch                   Winch       `json:"winch"`
	TWS                     []float64   `json:"tws"`
	TWA                     []float64   `json:"twa"`
	Sail                    []PolarSail `json:"sail"`
}

// Result is one sail candidate's computed performance at a given
// (heading, wind) pair.
type Result struct {
	Sail  Sail
	Speed units.Speed
	Foil  uint8
	Boost uint8
	Best  float64
}

// interpolationIndex finds the bracketing indices i0,i1 in an
// ascending table such that value ≈ values[i0]*weight +
// values[i1]*(1-weight); weight is 1.0 (with i1 unused) when value
// exceeds the table's last entry.
func interpolationIndex(values []float64, value float64) (i0, i1 int, weight float64) {
	i := 0
	for values[i] < value {
		i++
		if i == len(values) {
			return i - 1, 0, 1.0
		}
	}
	if i > 0 {
		return i - 1, i, (values[i] - value) / (values[i] - values[i-1])
	}
	return 0, 0, 0.0
}

// GetBoatSpeeds returns every sail's performance at the given heading
// and wind, sorted by nothing in particular (table order). When all is
// false, only candidates within 50% of the best are returned — the set
// the router's expansion step consumes; all=true is used by
// GetBoatSpeed's single-sail lookups, which need every candidate.
func (p *Polar) GetBoatSpeeds(heading Heading, wind Wind, currentSail Sail, isInIceLimits bool, all bool) []Result {
	twa := heading.TWA(wind.Direction)
	if twa < 0 {
		twa = -twa
	}
	if twa > 180 {
		twa = 360 - twa
	}

	twsI0, twsI1, twsW := interpolationIndex(p.TWS, wind.Speed.Kts())
	twaI0, twaI1, twaW := interpolationIndex(p.TWA, twa)

	type raw struct {
		sail  Sail
		speed units.Speed
		foil  uint8
	}

	maxSpeed := units.SpeedFromKts(0)
	raws := make([]raw, 0, len(p.Sail))

	for _, sail := range p.Sail {
		ti0 := sail.Speed[twaI0]
		ti1 := sail.Speed[twaI1]

		kts := (ti0[twsI0]*twsW+ti0[twsI1]*(1-twsW))*twaW +
			(ti1[twsI0]*twsW+ti1[twsI1]*(1-twsW))*(1-twaW)

		boatSpeed := units.SpeedFromKts(kts)
		boatSpeed = boatSpeed.Scale(p.GlobalSpeedRatio)
		if isInIceLimits {
			boatSpeed = boatSpeed.Scale(p.IceSpeedRatio)
		}
		boatSpeed = boatSpeed.Scale(p.Hull.SpeedRatio)

		foil := p.foilAmount(twa, wind.Speed)
		boatSpeed = boatSpeed.Scale(foil)

		if boatSpeed.Greater(maxSpeed) {
			maxSpeed = boatSpeed
		}

		foilPct := uint8(0)
		if p.Foil.SpeedRatio != 1.0 {
			foilPct = uint8((foil - 1.0) * 100.0 / (p.Foil.SpeedRatio - 1.0))
		}

		raws = append(raws, raw{sail: Sail{Index: sail.ID - 1, ID: sail.ID}, speed: boatSpeed, foil: foilPct})
	}

	threshold := 0.5
	if all {
		threshold = 0.0
	}

	results := make([]Result, 0, len(raws))
	for _, r := range raws {
		if r.sail.Equal(currentSail) {
			boost := maxSpeed.Kts() / r.speed.Kts()
			if boost <= p.AutoSailChangeTolerance {
				boostPct := uint8(0)
				if p.AutoSailChangeTolerance != 1.0 {
					boostPct = uint8((boost - 1.0) * 100.0 / (p.AutoSailChangeTolerance - 1.0))
				}
				results = append(results, Result{Sail: r.sail, Speed: maxSpeed, Foil: r.foil, Boost: boostPct, Best: 1.0})
				continue
			}
		}
		best := r.speed.Kts() / maxSpeed.Kts()
		if best >= threshold {
			results = append(results, Result{Sail: r.sail, Speed: r.speed, Foil: r.foil, Boost: 0, Best: best})
		}
	}
	return results
}

// GetBoatSpeed returns the best-speed candidate, optionally restricted
// to a single sail (usingSail). A nil usingSail, or one carrying Auto,
// leaves the selection unrestricted.
func (p *Polar) GetBoatSpeed(heading Heading, wind Wind, usingSail *Sail, currentSail Sail, isInIceLimits bool) Result {
	if usingSail != nil && usingSail.Auto {
		usingSail = nil
	}

	var best Result
	maxSpeed := units.SpeedFromKts(0)
	for _, r := range p.GetBoatSpeeds(heading, wind, currentSail, isInIceLimits, true) {
		if usingSail != nil && !r.Sail.Equal(*usingSail) {
			continue
		}
		if r.Speed.Greater(maxSpeed) {
			maxSpeed = r.Speed
			best = r
		}
	}
	return best
}

func (p *Polar) getBoatSpeedFromWindIndex(windSpeed units.Speed, usingSail *Sail, isInIceLimits bool, twsI0, twsI1 int, twsW float64, twa float64) (units.Speed, Sail, float64) {
	twaI0, twaI1, twaW := interpolationIndex(p.TWA, twa)

	maxSpeed := units.SpeedFromKts(0)
	best := SailFromIndex(0)

	for _, sail := range p.Sail {
		s := Sail{Index: sail.ID - 1, ID: sail.ID}
		if usingSail != nil && sail.ID != usingSail.ID {
			continue
		}

		ti0 := sail.Speed[twaI0]
		ti1 := sail.Speed[twaI1]
		kts := (ti0[twsI0]*twsW+ti0[twsI1]*(1-twsW))*twaW +
			(ti1[twsI0]*twsW+ti1[twsI1]*(1-twsW))*(1-twaW)
		boatSpeed := units.SpeedFromKts(kts)

		if boatSpeed.Greater(maxSpeed) {
			maxSpeed = boatSpeed
			best = s
		}
	}

	maxSpeed = maxSpeed.Scale(p.GlobalSpeedRatio)
	if isInIceLimits {
		maxSpeed = maxSpeed.Scale(p.IceSpeedRatio)
	}
	maxSpeed = maxSpeed.Scale(p.Hull.SpeedRatio)
	foil := p.foilAmount(twa, windSpeed)
	maxSpeed = maxSpeed.Scale(foil)

	return maxSpeed, best, foil
}

// Vmg is one velocity-made-good optimum: the TWA and sail that
// maximize progress along the wind axis, and the resulting VMG speed.
type Vmg struct {
	TWA  float64     `json:"twa"`
	Sail Sail        `json:"sail"`
	VMG  units.Speed `json:"vmg"`
}

// Vmgs bundles the upwind/downwind VMG optima plus their ±1° local
// refinements.
type Vmgs struct {
	Up            Vmg  `json:"up"`
	OptimizedUp   *Vmg `json:"optimizedUp,omitempty"`
	Down          Vmg  `json:"down"`
	OptimizedDown *Vmg `json:"optimizedDown,omitempty"`
}

// GetVMG sweeps TWA in 0.1° steps to find the upwind and downwind
// velocity-made-good optima at the given wind speed, then refines each
// with a ±1° local search.
func (p *Polar) GetVMG(windSpeed units.Speed, usingSail *Sail, isInIceLimits bool) Vmgs {
	up := Vmg{TWA: 0, Sail: SailFromIndex(0)}
	down := Vmg{TWA: 180, Sail: SailFromIndex(0)}

	twsI0, twsI1, twsW := interpolationIndex(p.TWS, windSpeed.Kts())

	for i := 0; i <= 1800; i++ {
		twa := float64(i) / 10.0
		speed, sail, _ := p.getBoatSpeedFromWindIndex(windSpeed, usingSail, isInIceLimits, twsI0, twsI1, twsW, twa)
		vmg := units.SpeedFromKts(speed.Kts() * cosDeg(twa))

		if vmg.Greater(up.VMG) {
			up.TWA, up.Sail, up.VMG = twa, sail, vmg
		}
		if !vmg.Greater(down.VMG) {
			down.TWA, down.Sail, down.VMG = twa, sail, vmg
		}
	}

	optUp := refineVmg(p, windSpeed, usingSail, isInIceLimits, twsI0, twsI1, twsW, up, 1.0)
	optDown := refineVmg(p, windSpeed, usingSail, isInIceLimits, twsI0, twsI1, twsW, down, -1.0)

	return Vmgs{Up: up, OptimizedUp: optUp, Down: down, OptimizedDown: optDown}
}

func refineVmg(p *Polar, windSpeed units.Speed, usingSail *Sail, isInIceLimits bool, twsI0, twsI1 int, twsW float64, base Vmg, sign float64) *Vmg {
	var optimized *Vmg
	maxSpeed := units.SpeedFromKts(0)
	baseTwa := round(base.TWA)

	for d := -10; d < 10; d++ {
		twa := baseTwa + sign*float64(d)/10.0
		speed, sail, _ := p.getBoatSpeedFromWindIndex(windSpeed, &base.Sail, isInIceLimits, twsI0, twsI1, twsW, twa)
		vmg := units.SpeedFromKts(speed.Kts() * cosDeg(twa))

		if vmg.Kts() >= base.VMG.Kts()-0.001 && speed.Greater(maxSpeed) {
			maxSpeed = speed
			v := Vmg{TWA: twa, Sail: sail, VMG: vmg}
			optimized = &v
		}
	}
	return optimized
}

func (p *Polar) foilAmount(twa float64, windSpeed units.Speed) float64 {
	ws := windSpeed.Kts()

	var ct float64
	switch {
	case twa <= p.Foil.TwaMin-p.Foil.TwaMerge:
		return 1.0
	case twa < p.Foil.TwaMin:
		ct = (twa - (p.Foil.TwaMin - p.Foil.TwaMerge)) / p.Foil.TwaMerge
	case twa < p.Foil.TwaMax:
		ct = 1.0
	case twa < p.Foil.TwaMax+p.Foil.TwaMerge:
		ct = (p.Foil.TwaMax + p.Foil.TwaMerge - twa) / p.Foil.TwaMerge
	default:
		return 1.0
	}

	var cv float64
	switch {
	case ws <= p.Foil.TwsMin-p.Foil.TwsMerge:
		return 1.0
	case ws < p.Foil.TwsMin:
		cv = (ws - (p.Foil.TwsMin - p.Foil.TwsMerge)) / p.Foil.TwsMerge
	case ws < p.Foil.TwsMax:
		cv = 1.0
	case ws < p.Foil.TwsMax+p.Foil.TwsMerge:
		cv = (p.Foil.TwsMax + p.Foil.TwsMerge - ws) / p.Foil.TwsMerge
	default:
		return 1.0
	}

	return 1.0 + (p.Foil.SpeedRatio-1.0)*ct*cv
}

// linearInterp replaces the source's degenerate cubic Bernstein
// expression, which reduces to plain linear interpolation at its
// boundaries; see SPEC_FULL.md's Supplemented Features section.
func linearInterp(x1, x2, y1, y2, x float64) float64 {
	t := (x - x1) / (x2 - x1)
	return y1 + (y2-y1)*t
}

func (p *Polar) getPenaltyValues(opts BoatOptions, pc PenaltyCase, windSpeed units.Speed, stamina float64) Penalty {
	staminaCoef := 1.0
	if opts.Stamina {
		staminaCoef = 0.5 + (100.0-stamina)/100.0*1.5
	}

	var lws, hws float64
	var bnd *PenaltyBoundaries

	switch {
	case opts.Winch && p.Winch.LWS != nil && p.Winch.HWS != nil && pc.Pro != nil:
		lws, hws, bnd = float64(*p.Winch.LWS), float64(*p.Winch.HWS), pc.Pro
	case !opts.Winch && p.Winch.LWS != nil && p.Winch.HWS != nil && pc.Std != nil:
		lws, hws, bnd = float64(*p.Winch.LWS), float64(*p.Winch.HWS), pc.Std
	case opts.Winch:
		return Penalty{Duration: units.DurationFromSeconds(float64(pc.ProTimerSec) * staminaCoef), Ratio: pc.ProRatio}
	default:
		return Penalty{Duration: units.DurationFromSeconds(float64(pc.StdTimerSec) * staminaCoef), Ratio: pc.StdRatio}
	}

	ws := windSpeed.Kts()
	switch {
	case ws <= lws:
		return Penalty{Duration: units.DurationFromSeconds(float64(bnd.LW.TimerSec) * staminaCoef), Ratio: bnd.LW.Ratio}
	case ws >= hws:
		return Penalty{Duration: units.DurationFromSeconds(float64(bnd.HW.TimerSec) * staminaCoef), Ratio: bnd.HW.Ratio}
	default:
		durS := linearInterp(lws, hws, float64(bnd.LW.TimerSec), float64(bnd.HW.TimerSec), ws)
		ratio := linearInterp(lws, hws, bnd.LW.Ratio, bnd.HW.Ratio, ws)
		return Penalty{Duration: units.DurationFromSeconds(durS * staminaCoef), Ratio: ratio}
	}
}

// staminaCoefFor is the piecewise-linear stamina cost multiplier keyed
// on wind speed (knots): 1.0→1.25 over 0–10 kt, 1.25→1.5 over 10–20 kt,
// 1.5→2.0 over 20–30 kt, and 2.0 above.
func staminaCoefFor(windKts float64) float64 {
	switch {
	case windKts <= 10:
		return 1.0 + windKts/10*0.25
	case windKts <= 20:
		return 1.25 + (windKts-10)/10*0.25
	case windKts <= 30:
		return 1.5 + (windKts-20)/10*0.5
	default:
		return 2.0
	}
}

// Tired applies the stamina cost of a heading/sail change and returns
// the new stamina, clamped to [0,100].
func (p *Polar) Tired(stamina, previousTwa, newTwa float64, previousSail, newSail Sail, windSpeed units.Speed) float64 {
	coef := staminaCoefFor(windSpeed.Kts())

	if previousTwa*newTwa < 0 {
		stamina -= 10.0 * coef
	}
	if !previousSail.Equal(newSail) {
		stamina -= 20.0 * coef
	}
	if stamina < 0 {
		stamina = 0
	}
	return stamina
}

// Recovers advances stamina recovery over duration at the given wind
// speed, clamped to [0,100].
func (p *Polar) Recovers(stamina float64, duration units.Duration, windSpeed units.Speed) float64 {
	var recoveryTime float64
	switch {
	case windSpeed.Kts() <= 0:
		recoveryTime = 5.0
	case windSpeed.Kts() >= 30:
		recoveryTime = 15.0
	default:
		recoveryTime = linearInterp(0, 30, 5.0, 15.0, windSpeed.Kts())
	}

	stamina += duration.Minutes() / recoveryTime
	if stamina > 100 {
		stamina = 100
	}
	return stamina
}

// AddPenalties computes the maneuver penalties (tack/gybe, sail
// change) triggered by moving from (previousTwa, previousSail) to
// (newTwa, newSail), composing them onto an existing Penalties set.
func (p *Polar) AddPenalties(opts BoatOptions, penalties Penalties, stamina, previousTwa, newTwa float64, previousSail, newSail Sail, windSpeed units.Speed) Penalties {
	if previousTwa*newTwa < 0 {
		pen := p.getPenaltyValues(opts, p.Winch.Tack, windSpeed, stamina)
		if absF(newTwa) <= 90 {
			penalties.Tack = &pen
		} else {
			g := p.getPenaltyValues(opts, p.Winch.Gybe, windSpeed, stamina)
			penalties.Gybe = &g
		}
	}
	if !previousSail.Equal(newSail) {
		sc := p.getPenaltyValues(opts, p.Winch.SailChange, windSpeed, stamina)
		penalties.SailChange = &sc
	}
	return penalties
}

// Distance integrates boat_speed over duration under pending
// penalties, returning distance covered, the updated penalty state,
// the speed at the end of the step, and the ratio applied on the
// final (possibly partial) segment.
func Distance(boatSpeed units.Speed, duration units.Duration, penalties Penalties) (units.Distance, Penalties, units.Speed, float64) {
	if duration.IsZero() {
		return units.DistanceFromM(0), penalties, boatSpeed, 1.0
	}

	if !penalties.IsSome() {
		return boatSpeed.Times(duration), penalties, boatSpeed, 1.0
	}

	if penaltyDuration, ok := penalties.MinPenaltyDuration(); ok {
		step := penaltyDuration.Min(duration)
		next, ratio := penalties.Navigate(step)

		dist, finalPenalties, endSpeed, endRatio := Distance(boatSpeed, duration-step, next)

		scaled := boatSpeed.Scale(ratio)
		if step == duration {
			// The penalty outlasts the step: its segment is the final one.
			endSpeed, endRatio = scaled, ratio
		}
		return scaled.Times(step).Add(dist), finalPenalties, endSpeed, endRatio
	}

	return boatSpeed.Times(duration), penalties, boatSpeed, 1.0
}

// Duration is the dual of Distance: given a distance to cover under
// pending penalties, consumes ordered penalty segments until the
// distance is reached, returning elapsed duration, the updated penalty
// state, the speed on the final segment, and its ratio.
func Duration(boatSpeed units.Speed, distance units.Distance, penalties Penalties) (units.Duration, Penalties, units.Speed, float64) {
	segs := penalties.ToVec()
	if len(segs) == 0 {
		return distance.Over(boatSpeed), penalties, boatSpeed, 1.0
	}

	seg := segs[0]
	scaled := boatSpeed.Scale(seg.Ratio)
	segDistance := scaled.Times(seg.Duration)

	if distance.LessEqual(segDistance) {
		d := distance.Over(scaled)
		return d, penalties.Sub(d), scaled, seg.Ratio
	}

	remaining := distance.Sub(segDistance)
	d2, next, endSpeed, endRatio := Duration(boatSpeed, remaining, penalties.Sub(seg.Duration))
	return seg.Duration + d2, next, endSpeed, endRatio
}

func round(v float64) float64 {
	if v >= 0 {
		return float64(int64(v + 0.5))
	}
	return float64(int64(v - 0.5))
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
