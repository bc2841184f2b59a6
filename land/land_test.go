// land/land_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package land

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func allSeaIndex() []byte {
	// 360*180 cells, 2 bits each => 16200 bytes, all zero = all sea.
	return make([]byte, latN*lonN/4)
}

func TestAllSeaGridNeverLand(t *testing.T) {
	g, err := DecodeIndex(allSeaIndex(), func(dLat, dLon int) ([]byte, error) {
		t.Fatal("no mixed tiles expected")
		return nil, nil
	})
	assert.NoError(t, err)
	assert.False(t, g.IsLand(10, 10))
	assert.False(t, g.NearLand(10, 10))
}

func TestSingleLandCell(t *testing.T) {
	idx := allSeaIndex()
	// cell at dLat=90 (lat=1), dLon=190 (lon=10): mark as land (value 2).
	dLat, dLon := 90, 190
	p := dLat*lonN + dLon
	byteIdx := p / 4
	shift := uint(6 - 2*(p%4))
	idx[byteIdx] |= 2 << shift

	g, err := DecodeIndex(idx, func(dLat, dLon int) ([]byte, error) { return nil, nil })
	assert.NoError(t, err)
	assert.True(t, g.IsLand(0.5, 10.5))
	assert.False(t, g.IsLand(-10, -10))
}

// subCellBit mirrors IsLand's own sub-cell index arithmetic for a point
// known to fall within the whole-degree tile (tileLat,tileLon).
func subCellBit(lat, lon, tileLat, tileLon float64) int {
	dLatSub := int((tileLat - lat) * tileRes)
	dLonSub := int((lon - tileLon) * tileRes)
	return dLatSub*tileRes + dLonSub
}

func setMaskBit(mask []byte, p int) {
	mask[p/8] |= 1 << uint(7-p%8)
}

// markMixed flips the coarse-index entry for (dLat,dLon) to tileMixed.
func markMixed(idx []byte, dLat, dLon int) {
	p := dLat*lonN + dLon
	byteIdx := p / 4
	shift := uint(6 - 2*(p%4))
	idx[byteIdx] |= 1 << shift
}

func TestNearLandFallbackWithinWindow(t *testing.T) {
	const lat, lon = 1.4995, 10.5005
	const tileLat, tileLon = 2.0, 10.0
	dLat, dLon := 91, 190

	idx := allSeaIndex()
	markMixed(idx, dLat, dLon)

	mask := make([]byte, (tileRes*tileRes+7)/8)
	// land two sub-cells north of the query point, inside the 5x5
	// fallback window.
	setMaskBit(mask, subCellBit(lat+2.0/tileRes, lon, tileLat, tileLon))

	g, err := DecodeIndex(idx, func(gotLat, gotLon int) ([]byte, error) {
		assert.Equal(t, dLat, gotLat)
		assert.Equal(t, dLon, gotLon)
		return mask, nil
	})
	assert.NoError(t, err)
	assert.True(t, g.NearLand(lat, lon))
}

func TestNearLandFallbackExcludesOutsideWindow(t *testing.T) {
	const lat, lon = 1.4995, 10.5005
	const tileLat, tileLon = 2.0, 10.0
	dLat, dLon := 91, 190

	idx := allSeaIndex()
	markMixed(idx, dLat, dLon)

	mask := make([]byte, (tileRes*tileRes+7)/8)
	// land three sub-cells north of the query point: outside the 5x5
	// fallback window, though it would have fallen inside the old,
	// overly wide 11x11 scan.
	plat := lat + 3.0/tileRes
	setMaskBit(mask, subCellBit(plat, lon, tileLat, tileLon))

	g, err := DecodeIndex(idx, func(gotLat, gotLon int) ([]byte, error) {
		return mask, nil
	})
	assert.NoError(t, err)
	assert.True(t, g.IsLand(plat, lon)) // sanity: the bit really is land
	assert.False(t, g.NearLand(lat, lon))
}

func TestMixedTileBit(t *testing.T) {
	idx := allSeaIndex()
	dLat, dLon := 91, 190
	p := dLat*lonN + dLon
	byteIdx := p / 4
	shift := uint(6 - 2*(p%4))
	idx[byteIdx] |= 1 << shift

	mask := make([]byte, (tileRes*tileRes+7)/8)
	// Set bit p=0 (top-left sub-cell of the tile) to land.
	mask[0] = 0x80

	g, err := DecodeIndex(idx, func(gotLat, gotLon int) ([]byte, error) {
		assert.Equal(t, dLat, gotLat)
		assert.Equal(t, dLon, gotLon)
		return mask, nil
	})
	assert.NoError(t, err)

	// tileLat=ceil(lat)=2, tileLon=floor(lon)=10 for tile (dLat=91,dLon=190)
	// sub-cell (0,0) is at d_lat=0 => lat close to tileLat=2 (from above);
	// d_lon=0 => lon close to tileLon=10.
	assert.True(t, g.IsLand(1.9999, 10.0001))
}
