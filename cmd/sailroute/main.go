// cmd/sailroute/main.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Command sailroute runs one isochrone routing request from JSON files
// on disk and prints the resulting RouteResult as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mmp/sailroute/land"
	"github.com/mmp/sailroute/log"
	"github.com/mmp/sailroute/polar"
	"github.com/mmp/sailroute/race"
	"github.com/mmp/sailroute/raceconfig"
	"github.com/mmp/sailroute/routing"
	"github.com/mmp/sailroute/util"
	"github.com/mmp/sailroute/wind"
)

var (
	polarPath   = flag.String("polar", "", "path to a polar JSON file")
	racePath    = flag.String("race", "", "path to a race JSON file")
	requestPath = flag.String("request", "", "path to a route request JSON file")
	windDir     = flag.String("wind-dir", "", "directory of .windcache reference files")
	landIndex   = flag.String("land-index", "", "path to a land coarse-index file")
	landTileDir = flag.String("land-tiles", "", "directory of zstd-compressed mixed-tile files")
	workers     = flag.Int("workers", 0, "navigate() fan-out parallelism (0 = GOMAXPROCS)")
	timeout     = flag.Duration("timeout", 0, "overall routing deadline (0 = none)")
	logLevel    = flag.String("log-level", "info", "debug, info, warn, or error")
	logDir      = flag.String("log-dir", "", "log directory (default: OS user config dir)")
	useCache    = flag.Bool("cache", false, "reuse a prior RouteResult for an identical request from the OS cache dir")
	cacheMaxMB  = flag.Int64("cache-max-mb", 256, "total size of the cached-result directory before oldest entries are culled")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: sailroute -polar <file> -request <file> [-race <file>] [flags]\nwhere [flags] may be:\n")
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	flag.Parse()
	if *polarPath == "" || *requestPath == "" {
		usage()
	}

	lg := log.New(*logLevel, *logDir)

	p, err := loadPolar(*polarPath)
	if err != nil {
		lg.Errorf("%s: %v", *polarPath, err)
		os.Exit(1)
	}

	req, err := loadRequest(*requestPath)
	if err != nil {
		lg.Errorf("%s: %v", *requestPath, err)
		os.Exit(1)
	}

	var r *race.Race
	if *racePath != "" {
		r, err = loadRace(*racePath)
		if err != nil {
			lg.Errorf("%s: %v", *racePath, err)
			os.Exit(1)
		}
	} else {
		r = &race.Race{}
	}

	windProvider, err := loadWindProvider(*windDir)
	if err != nil {
		lg.Errorf("wind: %v", err)
		os.Exit(1)
	}

	landProvider, err := loadLandProvider(*landIndex, *landTileDir)
	if err != nil {
		lg.Errorf("land: %v", err)
		os.Exit(1)
	}

	rt := &routing.Router{
		Polar:   p,
		Winds:   windProvider,
		Lands:   landProvider,
		Logger:  lg,
		Workers: *workers,
	}

	ctx := context.Background()
	if *timeout > 0 && !util.DebuggerIsRunning() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	var cachePath string
	if *useCache {
		key, err := cacheKeyFor(*polarPath, *requestPath, *racePath)
		if err != nil {
			lg.Errorf("cache key: %v", err)
			os.Exit(1)
		}
		cachePath = filepath.Join("routes", fmt.Sprintf("%016x.result", key))

		var cached raceconfig.RouteResult
		if _, err := util.CacheRetrieveObject(cachePath, &cached); err == nil {
			lg.Debugf("serving cached result for %s", *requestPath)
			writeResult(&cached, lg)
			return
		}
	}

	result, err := rt.Route(ctx, req, r)
	if err != nil {
		lg.Errorf("route: %v", err)
		os.Exit(1)
	}

	if *useCache {
		if err := util.CacheStoreObject(cachePath, result); err != nil {
			lg.Warnf("caching result: %v", err)
		} else if err := util.CacheCullObjects(*cacheMaxMB * 1024 * 1024); err != nil {
			lg.Warnf("culling result cache: %v", err)
		}
	}

	writeResult(result, lg)
}

// cacheKeyFor hashes the raw bytes of every non-empty input file so
// that an edit to the request, polar, or race JSON invalidates a
// previously cached result for the same paths.
func cacheKeyFor(paths ...string) (uint64, error) {
	var all strings.Builder
	for _, p := range paths {
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return 0, err
		}
		all.Write(data)
	}
	return util.HashString64(all.String()), nil
}

func writeResult(result *raceconfig.RouteResult, lg *log.Logger) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		lg.Errorf("encode result: %v", err)
		os.Exit(1)
	}
}

func readAndLoad[T any](path string, load func([]byte) (T, error)) (T, error) {
	var zero T
	data, err := os.ReadFile(path)
	if err != nil {
		return zero, err
	}
	return load(data)
}

func loadPolar(path string) (*polar.Polar, error) {
	return readAndLoad(path, raceconfig.LoadPolar)
}

func loadRace(path string) (*race.Race, error) {
	return readAndLoad(path, raceconfig.LoadRace)
}

func loadRequest(path string) (*raceconfig.RouteRequest, error) {
	return readAndLoad(path, raceconfig.LoadRouteRequest)
}

// staticWindProvider always hands out the same InstantWind regardless
// of the requested time, for callers that ran without -wind-dir.
type staticWindProvider struct{ w wind.InstantWind }

func (s staticWindProvider) Find(time.Time) wind.InstantWind { return s.w }

// loadWindProvider reads every .windcache reference file in dir (see
// wind.MarshalCache/UnmarshalCache) into a time-ordered wind.Grid. With
// no directory given it falls back to a flat, minimum-speed field so a
// request can still be exercised without wind data on hand.
func loadWindProvider(dir string) (wind.Provider, error) {
	if dir == "" {
		return staticWindProvider{w: wind.NewGrid(nil).Find(time.Time{})}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var refs []*wind.Reference
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".windcache" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		ref, err := wind.UnmarshalCache(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		refs = append(refs, ref)
	}

	return wind.NewGrid(refs), nil
}

// loadLandProvider decodes a coarse land/sea index plus its mixed-tile
// bitmasks from disk. With no index path given every point is treated
// as open water.
func loadLandProvider(indexPath, tileDir string) (land.Provider, error) {
	if indexPath == "" {
		return noLand{}, nil
	}

	index, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, err
	}

	return land.DecodeIndex(index, func(dLat, dLon int) ([]byte, error) {
		name := fmt.Sprintf("tile_%d_%d.bin.zst", dLat, dLon)
		compressed, err := os.ReadFile(filepath.Join(tileDir, name))
		if err != nil {
			return nil, err
		}
		return land.DecodeTileZstd(compressed)
	})
}

type noLand struct{}

func (noLand) IsLand(lat, lon float64) bool   { return false }
func (noLand) NearLand(lat, lon float64) bool { return false }
