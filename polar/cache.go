// polar/cache.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package polar

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheKey buckets TWA and TWS to whole-degree/whole-knot granularity
// alongside the sail identity, matching the "twa-bucket, tws-bucket,
// sail" key the router's parallel workers memoize speed lookups under.
type cacheKey struct {
	twaBucket int
	twsBucket int
	sailID    int
}

// Cache is a memoization of GetBoatSpeed results, avoiding repeated
// bilinear interpolation when two geographically close candidate
// points ask for the same bucket. The underlying LRU is safe for
// concurrent use, so one Cache can be shared by parallel workers. It is
// pure memoization: safe to discard and reset between buoy legs, and
// safe to share a Polar across many Caches.
type Cache struct {
	polar *Polar
	lru   *lru.Cache[cacheKey, Result]
}

// NewCache builds a bounded LRU cache of boat-speed lookups for one
// polar model. size is the maximum number of distinct buckets kept.
func NewCache(p *Polar, size int) *Cache {
	c, err := lru.New[cacheKey, Result](size)
	if err != nil {
		// size <= 0 is a programmer error; a size of 1 still behaves
		// correctly as a degenerate cache.
		c, _ = lru.New[cacheKey, Result](1)
	}
	return &Cache{polar: p, lru: c}
}

func bucket(v float64) int {
	return int(v + 0.5)
}

// GetBoatSpeed is GetBoatSpeed memoized on (heading-resolved TWA
// bucket, wind speed bucket, sail).
func (c *Cache) GetBoatSpeed(heading Heading, wind Wind, usingSail *Sail, currentSail Sail, isInIceLimits bool) Result {
	sailKey := currentSail.ID
	if usingSail != nil {
		sailKey = usingSail.ID
	}
	key := cacheKey{
		twaBucket: bucket(heading.TWA(wind.Direction)),
		twsBucket: bucket(wind.Speed.Kts()),
		sailID:    sailKey,
	}

	if isInIceLimits {
		key.sailID = -key.sailID - 1000
	}

	if r, ok := c.lru.Get(key); ok {
		return r
	}

	r := c.polar.GetBoatSpeed(heading, wind, usingSail, currentSail, isInIceLimits)
	c.lru.Add(key, r)
	return r
}

// Reset discards all cached entries.
func (c *Cache) Reset() {
	c.lru.Purge()
}
