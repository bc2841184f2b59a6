// raceconfig/load_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package raceconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const penaltyCaseJSON = `{"stdTimerSec": 20, "stdRatio": 0.5, "proTimerSec": 10, "proRatio": 0.7}`

const minimalPolar = `{
	"_id": 1,
	"label": "test",
	"globalSpeedRatio": 1.0,
	"iceSpeedRatio": 1.0,
	"autoSailChangeTolerance": 0.03,
	"badSailTolerance": 0.0,
	"maxSpeed": 40.0,
	"foil": {"speedRatio": 1.0, "twaMin": 90, "twaMax": 150, "twaMerge": 10, "twsMin": 10, "twsMax": 25, "twsMerge": 2},
	"hull": {"speedRatio": 1.0},
	"winch": {
		"tack": ` + penaltyCaseJSON + `,
		"gybe": ` + penaltyCaseJSON + `,
		"sailChange": ` + penaltyCaseJSON + `
	},
	"tws": [0, 10, 20],
	"twa": [0, 90, 180],
	"sail": []
}`

const minimalRace = `{
	"buoys": [
		{"name": "start", "kind": "waypoint", "destination": {"lat": 0, "lon": 0}, "port": {"lat": 0, "lon": 0}, "starboard": {"lat": 0, "lon": 0}, "radius": 0}
	]
}`

const minimalRequest = `{
	"from": {"lat": 48.0, "lon": -4.0},
	"startTime": "2026-01-01T00:00:00Z",
	"boatSettings": {"heading": {"heading": 90}, "sail": 10},
	"status": {"aground": false, "boatSpeed": 0, "wind": {"direction": 0, "speed": 0}, "foil": 0, "boost": 0, "bestRatio": 0, "ratio": 0, "penalties": {}, "stamina": 100, "remainingStamina": 100},
	"options": {},
	"polarId": "imoca",
	"raceId": "vendee",
	"windProvider": "vr"
}`

func TestLoadPolarMinimal(t *testing.T) {
	p, err := LoadPolar([]byte(minimalPolar))
	require.NoError(t, err)
	assert.Equal(t, "test", p.Label)
	assert.Equal(t, []float64{0, 10, 20}, p.TWS)
}

func TestLoadPolarBadFormat(t *testing.T) {
	_, err := LoadPolar([]byte(`{"label": "test", "tws": "not an array"}`))
	assert.Error(t, err)
}

func TestLoadRaceMinimal(t *testing.T) {
	r, err := LoadRace([]byte(minimalRace))
	require.NoError(t, err)
	require.Len(t, r.Buoys, 1)
	assert.Equal(t, "start", r.Buoys[0].Name)
}

func TestLoadRouteRequestDefaultsSteps(t *testing.T) {
	req, err := LoadRouteRequest([]byte(minimalRequest))
	require.NoError(t, err)
	assert.Equal(t, "imoca", req.PolarID)
	assert.NotEmpty(t, req.Steps)
	assert.True(t, req.BoatSettings.Sail.Auto)
}

func TestValidateMissingPolar(t *testing.T) {
	req, err := LoadRouteRequest([]byte(minimalRequest))
	require.NoError(t, err)

	err = req.Validate(
		func(string) bool { return false },
		func(string) bool { return true },
		func(string) bool { return true },
	)
	assert.Error(t, err)
}
