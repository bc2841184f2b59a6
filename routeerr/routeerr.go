// routeerr/routeerr.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package routeerr defines the typed error kinds the routing core raises,
// following the teacher's sentinel-error-plus-lookup-table pattern
// (mmp-vice's top-level errors.go).
package routeerr

import "errors"

var (
	ErrProviderNotFound = errors.New("provider not found")
	ErrPolarNotFound    = errors.New("polar not found")
	ErrRaceNotFound     = errors.New("race not found")
	ErrNavigationFailed = errors.New("navigation failed: empty frontier with no pending navs")
	ErrRoutingTimeout   = errors.New("routing timeout")
	ErrBadFormat        = errors.New("malformed tile index or wind blob")
)

// byString mirrors the teacher's string->error lookup table, used when
// errors arrive already stringified (e.g. from a JSON error field).
var byString = map[string]error{
	ErrProviderNotFound.Error(): ErrProviderNotFound,
	ErrPolarNotFound.Error():    ErrPolarNotFound,
	ErrRaceNotFound.Error():     ErrRaceNotFound,
	ErrNavigationFailed.Error(): ErrNavigationFailed,
	ErrRoutingTimeout.Error():   ErrRoutingTimeout,
	ErrBadFormat.Error():        ErrBadFormat,
}

// FromString looks up one of the sentinel errors by its message, for
// call sites that only have a string (e.g. deserialized from a debug
// cloud). Returns nil if no kind matches.
func FromString(s string) error {
	return byString[s]
}

// NavigationFailed wraps ErrNavigationFailed with the buoy name and leg
// context that failed, preserving errors.Is(err, ErrNavigationFailed).
type NavigationFailed struct {
	Buoy   string
	Reason string
}

func (e *NavigationFailed) Error() string {
	if e.Reason == "" {
		return "navigation failed at buoy " + e.Buoy
	}
	return "navigation failed at buoy " + e.Buoy + ": " + e.Reason
}

func (e *NavigationFailed) Unwrap() error { return ErrNavigationFailed }
