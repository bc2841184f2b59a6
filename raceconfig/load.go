// raceconfig/load.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package raceconfig

import (
	"fmt"

	"github.com/mmp/sailroute/polar"
	"github.com/mmp/sailroute/race"
	"github.com/mmp/sailroute/routeerr"
	"github.com/mmp/sailroute/util"
)

// LoadPolar typechecks and decodes a polar document, following the
// teacher's scenario-file pattern: syntax/shape errors are collected into
// an ErrorLogger before the caller ever sees a partially-decoded value.
func LoadPolar(contents []byte) (*polar.Polar, error) {
	var e util.ErrorLogger
	util.CheckJSON[polar.Polar](contents, &e)
	if e.HaveErrors() {
		return nil, fmt.Errorf("%s: %w", e.String(), routeerr.ErrBadFormat)
	}

	var p polar.Polar
	if err := util.UnmarshalJSONBytes(contents, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadRace typechecks and decodes a race document.
func LoadRace(contents []byte) (*race.Race, error) {
	var e util.ErrorLogger
	util.CheckJSON[race.Race](contents, &e)
	if e.HaveErrors() {
		return nil, fmt.Errorf("%s: %w", e.String(), routeerr.ErrBadFormat)
	}

	var r race.Race
	if err := util.UnmarshalJSONBytes(contents, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// LoadRouteRequest typechecks and decodes a route request, then fills in
// the default step schedule when the caller omitted one.
func LoadRouteRequest(contents []byte) (*RouteRequest, error) {
	var e util.ErrorLogger
	util.CheckJSON[RouteRequest](contents, &e)
	if e.HaveErrors() {
		return nil, fmt.Errorf("%s: %w", e.String(), routeerr.ErrBadFormat)
	}

	var req RouteRequest
	if err := util.UnmarshalJSONBytes(contents, &req); err != nil {
		return nil, err
	}
	if len(req.Steps) == 0 {
		req.Steps = DefaultSteps()
	}
	return &req, nil
}

// Validate reports whether a decoded RouteRequest references a known
// polar/race/wind-provider combination, deferring to the caller-supplied
// lookup predicates so raceconfig stays agnostic of how providers are
// registered.
func (req *RouteRequest) Validate(havePolar, haveRace, haveWindProvider func(id string) bool) error {
	if !havePolar(req.PolarID) {
		return routeerr.ErrPolarNotFound
	}
	if req.RaceID != "" && !haveRace(req.RaceID) {
		return routeerr.ErrRaceNotFound
	}
	if !haveWindProvider(req.WindProvider) {
		return routeerr.ErrProviderNotFound
	}
	return nil
}
