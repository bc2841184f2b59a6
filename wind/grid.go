// wind/grid.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package wind

import (
	"bytes"
	"compress/flate"
	"io"
	"math"
	"sort"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mmp/sailroute/geo"
	"github.com/mmp/sailroute/polar"
	"github.com/mmp/sailroute/routeerr"
	"github.com/mmp/sailroute/units"
	"github.com/mmp/sailroute/util"
)

// gridRows is the 181-row latitude span (+90..-90 inclusive) of one
// decoded reference; gridCols is the 360-column longitude span.
const (
	gridRows = 181
	gridCols = 360
)

// Reference is one decoded wind-reference snapshot: a valid timestamp
// and its 181×360 (u,v) component grid, in km/h, row 0 at +90 latitude.
type Reference struct {
	Valid time.Time
	Avail time.Time
	U, V  [gridRows][gridCols]float64
}

// DecodeReference parses the VR wind-reference blob format: for each
// of 181 latitudes (90 down to -90) and 360 longitudes (-180..179), a
// pair of signed bytes decoding to (u,v) in km/h via decodeComponent.
func DecodeReference(valid, avail time.Time, blob []byte) (*Reference, error) {
	if len(blob) != gridRows*gridCols*2 {
		return nil, routeerr.ErrBadFormat
	}

	r := &Reference{Valid: valid, Avail: avail}
	i := 0
	for lat := 0; lat < gridRows; lat++ {
		for lon := 0; lon < gridCols; lon++ {
			u := decodeComponent(int8(blob[i]))
			v := decodeComponent(int8(blob[i+1]))
			r.U[lat][lon] = u
			r.V[lat][lon] = v
			i += 2
		}
	}
	return r, nil
}

// DecodeReferenceZstd is DecodeReference over a zstd-compressed blob,
// the storage format used for bundled wind-reference fixtures (see
// SPEC_FULL.md's domain-stack wiring).
func DecodeReferenceZstd(valid, avail time.Time, compressed []byte) (*Reference, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	blob, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, err
	}
	return DecodeReference(valid, avail, blob)
}

// EncodeReferenceZstd compresses a previously decoded reference's raw
// grid bytes back into the on-disk storage format, for tests and
// offline fixture generation.
func EncodeReferenceZstd(raw []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(raw, nil), nil
}

func floorMod(a, n float64) float64 {
	return a - n*math.Floor(a/n)
}

func bilinear(x, y, g00u, g00v, g10u, g10v, g01u, g01v, g11u, g11v float64) (u, v float64) {
	rx, ry := 1-x, 1-y
	a, b, c, d := rx*ry, x*ry, rx*y, x*y
	u = g00u*a + g10u*b + g01u*c + g11u*d
	v = g00v*a + g10v*b + g01v*c + g11v*d
	return
}

// interpolateSpatial bilinearly interpolates a Reference's grid at p.
func (r *Reference) interpolateSpatial(p geo.Coords) (u, v float64) {
	const lat0, lon0 = -90.0, -180.0

	i := p.Lat - lat0
	if i < 0 {
		i = 0
	}
	j := floorMod(p.Lon-lon0, 360)

	fi := int(i)
	fj := int(j)
	fi1 := fi + 1
	if fi1 > gridRows-1 {
		fi1 = gridRows - 1
	}
	fj1 := fj + 1
	if fj1 == gridCols {
		fj1 = 0
	}

	// Source indexes rows bottom-up from lat_0=-90 (row 0 = -90N); our
	// decode stores row 0 at +90N, so flip the row index to match.
	ri := gridRows - 1 - fi
	ri1 := gridRows - 1 - fi1

	return bilinear(j-float64(fj), i-float64(fi),
		r.U[ri][fj], r.V[ri][fj],
		r.U[ri][fj1], r.V[ri][fj1],
		r.U[ri1][fj], r.V[ri1][fj],
		r.U[ri1][fj1], r.V[ri1][fj1])
}

// Grid is an in-memory Provider over a time-ordered sequence of
// References, interpolating linearly in time between the bracketing
// pair and bilinearly in space within each.
type Grid struct {
	refs []*Reference
}

func NewGrid(refs []*Reference) *Grid {
	sorted := append([]*Reference(nil), refs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Valid.Before(sorted[j].Valid) })
	return &Grid{refs: sorted}
}

// Find returns the InstantWind valid at t, linearly blending the two
// bracketing references (or the nearest single one at the series'
// edges). The bracket is located with util.FindTimeAtOrBefore's binary
// search over the sorted reference times rather than a linear scan.
func (g *Grid) Find(t time.Time) InstantWind {
	if len(g.refs) == 0 {
		return &instantWind{}
	}
	if len(g.refs) == 1 || t.Before(g.refs[0].Valid) {
		return &instantWind{w1: g.refs[0]}
	}
	if !t.Before(g.refs[len(g.refs)-1].Valid) {
		return &instantWind{w1: g.refs[len(g.refs)-1]}
	}

	times := make([]time.Time, len(g.refs))
	for i, r := range g.refs {
		times[i] = r.Valid
	}

	idx, err := util.FindTimeAtOrBefore(times, t)
	if err != nil {
		return &instantWind{w1: g.refs[len(g.refs)-1]}
	}

	prev, next := g.refs[idx], g.refs[idx+1]
	span := next.Valid.Sub(prev.Valid)
	if span <= 0 {
		return &instantWind{w1: prev}
	}
	h := t.Sub(prev.Valid).Seconds() / span.Seconds()
	return &instantWind{w1: prev, w2: next, h: h}
}

type instantWind struct {
	w1, w2 *Reference
	h      float64
}

// Interpolate implements InstantWind, producing a floored-at-MinSpeed
// wind sample at p.
func (w *instantWind) Interpolate(p geo.Coords) polar.Wind {
	if w.w1 == nil {
		return polar.Wind{Direction: 0, Speed: units.SpeedFromKts(units.MinSpeed)}
	}

	u1, v1 := w.w1.interpolateSpatial(p)
	u, v := u1, v1

	if w.w2 != nil {
		u2, v2 := w.w2.interpolateSpatial(p)
		u = u2*w.h + u1*(1-w.h)
		v = v2*w.h + v1*(1-w.h)
	}

	speed := units.SpeedFromKmh(math.Sqrt(u*u + v*v))
	if speed.Kts() < units.MinSpeed {
		speed = units.SpeedFromKts(units.MinSpeed)
	}

	return polar.Wind{Direction: vectorToDegrees(u, v), Speed: speed}
}

// CacheIndex is the on-disk index entry format: a named reference plus
// its valid/delta/avail timestamps and relative blob path, matching the
// VR references.json shape described in SPEC_FULL.md's external
// interfaces section.
type CacheIndex struct {
	Reference string    `json:"reference"`
	Valid     time.Time `json:"valid"`
	DeltaRef  uint8     `json:"deltaRef"`
	Delta     uint8     `json:"delta"`
	Avail     time.Time `json:"avail"`
	RelPath   string    `json:"relPath"`
}

// packedReference is the msgpack wire shape used to persist a decoded
// Reference on disk: the contents of one .windcache file.
type packedReference struct {
	Valid int64  `msgpack:"valid"`
	Avail int64  `msgpack:"avail"`
	Blob  []byte `msgpack:"blob"`
}

// MarshalCache serializes a Reference for on-disk caching: msgpack
// envelope around a flate-compressed raw grid, mirroring the teacher's
// util.CacheStoreObject convention (flate + msgpack) rather than the
// zstd used for the bundled read-only tile/wind blobs above — the cache
// is written locally and read back by the same process, so flate's
// lower setup cost wins over zstd's better ratio.
func MarshalCache(r *Reference) ([]byte, error) {
	raw := make([]byte, 0, gridRows*gridCols*2)
	for lat := 0; lat < gridRows; lat++ {
		for lon := 0; lon < gridCols; lon++ {
			raw = append(raw, encodeComponent(r.U[lat][lon]), encodeComponent(r.V[lat][lon]))
		}
	}

	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.BestSpeed)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(raw); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}

	return msgpack.Marshal(&packedReference{
		Valid: r.Valid.Unix(),
		Avail: r.Avail.Unix(),
		Blob:  buf.Bytes(),
	})
}

// UnmarshalCache is the inverse of MarshalCache.
func UnmarshalCache(data []byte) (*Reference, error) {
	var packed packedReference
	if err := msgpack.Unmarshal(data, &packed); err != nil {
		return nil, err
	}

	fr := flate.NewReader(bytes.NewReader(packed.Blob))
	defer fr.Close()
	raw, err := io.ReadAll(fr)
	if err != nil {
		return nil, err
	}

	return DecodeReference(time.Unix(packed.Valid, 0).UTC(), time.Unix(packed.Avail, 0).UTC(), raw)
}

// encodeComponent is the (lossy, nearest) inverse of decodeComponent,
// used only when round-tripping a Reference through MarshalCache.
func encodeComponent(v float64) byte {
	sign := 1.0
	if v < 0 {
		sign = -1.0
		v = -v
	}
	b := math.Round(sign * math.Sqrt(v) * 8.0)
	if b > 127 {
		b = 127
	}
	if b < -128 {
		b = -128
	}
	return byte(int8(b))
}
