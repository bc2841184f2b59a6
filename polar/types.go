// polar/types.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package polar implements the boat performance model: bilinear
// TWS/TWA interpolation over per-sail speed tables, sail selection,
// the foil ramp, VMG search, maneuver penalties and stamina, and the
// speed/duration/distance motion integrators the isochrone router
// drives its steps with.
package polar

import (
	"encoding/json"
	"fmt"

	"github.com/mmp/sailroute/units"
)

// Sail identifies a sail choice. Two sails compare equal by ID; AUTO is
// a wildcard matching whatever the polar model selects.
type Sail struct {
	Index int
	ID    int
	Auto  bool
}

// AUTO is the synthetic sail that inherits the polar-chosen selection
// at every step.
var AUTO = Sail{Index: 0, ID: 1, Auto: true}

func SailFromIndex(i int) Sail {
	return Sail{Index: i, ID: i + 1, Auto: false}
}

// SailFromEncoded decodes the single-integer encoding used on the wire:
// 1..7 is a manual sail, 10 is AUTO.
func SailFromEncoded(v int) Sail {
	m := v % 10
	if m < 1 {
		m = 1
	}
	return Sail{Index: m - 1, ID: m, Auto: v >= 10}
}

// Encode is the inverse of SailFromEncoded.
func (s Sail) Encode() int {
	if s.Auto {
		return 10
	}
	return s.ID
}

func (s Sail) Equal(o Sail) bool { return s.ID == o.ID }

// MarshalJSON encodes a Sail as the single-integer wire encoding (see Encode).
func (s Sail) MarshalJSON() ([]byte, error) { return json.Marshal(s.Encode()) }

// UnmarshalJSON decodes the single-integer wire encoding (see SailFromEncoded).
func (s *Sail) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = SailFromEncoded(v)
	return nil
}

// CheckJSON reports whether raw is a bare JSON number, satisfying
// util.JSONChecker.
func (s Sail) CheckJSON(raw interface{}) bool {
	_, ok := raw.(float64)
	return ok
}

var sailNames = [...]string{"Jib", "Spi", "Staysail", "LightJib", "Code0", "HeavyGnk", "LightGnk"}

func (s Sail) String() string {
	name := "Sail"
	if s.Index >= 0 && s.Index < len(sailNames) {
		name = sailNames[s.Index]
	}
	if s.Auto {
		return name + "*"
	}
	return name
}

// HeadingKind distinguishes a fixed compass heading from a regulated
// true-wind-angle heading.
type HeadingKind int

const (
	HeadingCompass HeadingKind = iota
	HeadingTWA
)

// Heading is a tagged union: either a fixed compass bearing, or a
// true-wind-angle that must be resolved against the wind direction to
// produce a bearing.
type Heading struct {
	Kind  HeadingKind
	Value float64
}

func NewCompassHeading(deg float64) Heading { return Heading{Kind: HeadingCompass, Value: deg} }
func NewTWAHeading(twa float64) Heading     { return Heading{Kind: HeadingTWA, Value: twa} }

func (h Heading) IsRegulated() bool { return h.Kind == HeadingTWA }

// Heading resolves this Heading against true wind direction twd,
// returning a compass bearing in [0,360).
func (h Heading) Heading(twd float64) float64 {
	if h.Kind == HeadingCompass {
		return h.Value
	}
	heading := twd - h.Value
	if heading < 0 {
		heading += 360
	}
	if heading >= 360 {
		heading -= 360
	}
	return heading
}

// TWA resolves this Heading against true wind direction twd, returning
// a signed true wind angle in (-180,180].
func (h Heading) TWA(twd float64) float64 {
	if h.Kind == HeadingTWA {
		return h.Value
	}
	twa := twd - h.Value
	if twa <= -180 {
		twa += 360
	}
	if twa > 180 {
		twa -= 360
	}
	return twa
}

func (h Heading) String() string {
	if h.Kind == HeadingCompass {
		return fmt.Sprintf("heading %g", h.Value)
	}
	return fmt.Sprintf("regulated twa %g", h.Value)
}

// wireHeading is the tagged-union wire shape: exactly one of the two
// fields is present, matching the upstream format's either/or heading spec.
type wireHeading struct {
	Heading *float64 `json:"heading,omitempty"`
	TWA     *float64 `json:"twa,omitempty"`
}

func (h Heading) MarshalJSON() ([]byte, error) {
	if h.Kind == HeadingCompass {
		return json.Marshal(wireHeading{Heading: &h.Value})
	}
	return json.Marshal(wireHeading{TWA: &h.Value})
}

func (h *Heading) UnmarshalJSON(data []byte) error {
	var w wireHeading
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch {
	case w.Heading != nil:
		*h = NewCompassHeading(*w.Heading)
	case w.TWA != nil:
		*h = NewTWAHeading(*w.TWA)
	default:
		return fmt.Errorf("polar: heading object has neither \"heading\" nor \"twa\"")
	}
	return nil
}

// CheckJSON reports whether raw is an object with a "heading" or "twa"
// numeric field, satisfying util.JSONChecker.
func (h Heading) CheckJSON(raw interface{}) bool {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return false
	}
	if v, ok := m["heading"]; ok {
		_, isNum := v.(float64)
		return isNum
	}
	if v, ok := m["twa"]; ok {
		_, isNum := v.(float64)
		return isNum
	}
	return false
}

// Wind is an instant wind sample: direction it blows from, in degrees,
// and speed, floored to units.MinSpeed by the wind provider.
type Wind struct {
	Direction float64     `json:"direction"`
	Speed     units.Speed `json:"speed"`
}

// BoatOptions are the boat-configuration flags the polar model reads
// when computing speeds and penalties. Foil/Hull/LT/GT/Code0 are
// accepted for shape-fidelity with the upstream format but, matching
// the source polar model, are not yet consulted (hull and foil ratios
// always apply; see Polar.getBoatSpeedFromWindIndex).
type BoatOptions struct {
	LT      bool `json:"lt,omitempty"`
	GT      bool `json:"gt,omitempty"`
	Code0   bool `json:"code0,omitempty"`
	Foil    bool `json:"foil,omitempty"`
	Hull    bool `json:"hull,omitempty"`
	Winch   bool `json:"winch,omitempty"`
	Stamina bool `json:"stamina,omitempty"`
}
