// land/land.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package land defines the land Provider capability and an in-memory
// tile-index implementation decoding the packed 360×180 coarse index
// plus 730×730 mixed-tile bitmasks described in SPEC_FULL.md's external
// interfaces section.
package land

import (
	"github.com/klauspost/compress/zstd"

	"github.com/mmp/sailroute/routeerr"
)

// Provider answers whether a coordinate is land, and a cheaper,
// slightly conservative proximity query the router can use to widen a
// clearance margin without paying full tile-boundary precision.
type Provider interface {
	IsLand(lat, lon float64) bool
	NearLand(lat, lon float64) bool
}

const (
	lat0, latN = -89, 180
	lon0, lonN = -180, 360
	tileRes    = 730
)

// tileKind is the coarse per-degree classification: all sea, all land,
// or a mixed tile whose bitmask follows.
type tileKind uint8

const (
	tileSea tileKind = iota
	tileMixed
	tileLand
)

// tile is one 1°×1° cell: either uniform sea/land, or a 730×730
// bitmask (tileMixed) packed MSB-first, one bit per sub-cell.
type tile struct {
	kind tileKind
	mask []byte // only set when kind == tileMixed
}

// Grid is an in-memory Provider built from a decoded tile index.
type Grid struct {
	tiles [latN][lonN]tile
}

// DecodeIndex parses the packed two-bit-per-cell coarse index (360×180
// cells, 2 bits each, MSB-first within each byte) and resolves mixed
// cells against the supplied tile-bitmask loader.
func DecodeIndex(index []byte, loadTile func(dLat, dLon int) ([]byte, error)) (*Grid, error) {
	g := &Grid{}

	for dLat := 0; dLat < latN; dLat++ {
		for dLon := 0; dLon < lonN; dLon++ {
			p := dLat*lonN + dLon
			byteIdx := p / 4
			if byteIdx >= len(index) {
				return nil, routeerr.ErrBadFormat
			}
			shift := uint(6 - 2*(p%4))
			v := (index[byteIdx] >> shift) & 0x3

			switch v {
			case 0:
				g.tiles[dLat][dLon] = tile{kind: tileSea}
			case 2:
				g.tiles[dLat][dLon] = tile{kind: tileLand}
			case 1:
				mask, err := loadTile(dLat, dLon)
				if err != nil {
					return nil, err
				}
				g.tiles[dLat][dLon] = tile{kind: tileMixed, mask: mask}
			default:
				return nil, routeerr.ErrBadFormat
			}
		}
	}

	return g, nil
}

// DecodeTileZstd decompresses a zstd-compressed 730×730-bit mixed-tile
// blob (the storage format bundled tile fixtures use).
func DecodeTileZstd(compressed []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(compressed, nil)
}

func wrapLonIndex(dLon int) int {
	for dLon < 0 {
		dLon += lonN
	}
	for dLon >= lonN {
		dLon -= lonN
	}
	return dLon
}

func cellIndices(lat, lon float64) (dLat, dLon int, inBounds bool) {
	tileLat := int(ceil(lat))
	tileLon := int(floor(lon))

	dLat = tileLat - lat0
	dLon = wrapLonIndex(tileLon - lon0)

	if dLat < 0 || dLat >= latN {
		return 0, 0, false
	}
	return dLat, dLon, true
}

// IsLand answers the point query: sea/land tiles resolve directly;
// mixed tiles resolve against the 730×730 sub-cell bitmask.
func (g *Grid) IsLand(lat, lon float64) bool {
	dLat, dLon, ok := cellIndices(lat, lon)
	if !ok {
		return false
	}

	t := g.tiles[dLat][dLon]
	switch t.kind {
	case tileSea:
		return false
	case tileLand:
		return true
	default:
		tileLat := float64(int(ceil(lat)))
		tileLon := float64(int(floor(lon)))

		dLatSub := int((tileLat - lat) * tileRes)
		dLonSub := int((lon - tileLon) * tileRes)
		p := dLatSub*tileRes + dLonSub

		byteIdx := p / 8
		if byteIdx < 0 || byteIdx >= len(t.mask) {
			return false
		}
		bit := uint(7 - p%8)
		return (t.mask[byteIdx]>>bit)&0x01 == 0x01
	}
}

// NearLand checks the 3×3 neighborhood of whole-degree tiles around
// (lat,lon); if any is mixed, or the neighborhood has both pure sea and
// pure land tiles (a boundary straddled exactly on a tile edge), it
// falls back to a 5×5 sub-cell scan at 1/730° resolution around the
// point itself. Otherwise it returns the single uniform classification.
func (g *Grid) NearLand(lat, lon float64) bool {
	var sea, mixed, land bool

	for i := -1; i <= 1; i++ {
		for j := -1; j <= 1; j++ {
			dLat, dLon, ok := cellIndices(lat+float64(i), lon+float64(j))
			if !ok {
				continue
			}
			switch g.tiles[dLat][dLon].kind {
			case tileSea:
				sea = true
			case tileMixed:
				mixed = true
			case tileLand:
				land = true
			}
		}
	}

	if mixed || (sea && land) {
		for i := -2; i <= 2; i++ {
			for j := -2; j <= 2; j++ {
				plat := lat + float64(i)/tileRes
				plon := lon + float64(j)/tileRes
				if g.IsLand(plat, plon) {
					return true
				}
			}
		}
		return false
	}

	return land
}

func ceil(v float64) float64 {
	i := float64(int64(v))
	if v > i {
		return i + 1
	}
	return i
}

func floor(v float64) float64 {
	i := float64(int64(v))
	if v < i {
		return i - 1
	}
	return i
}
