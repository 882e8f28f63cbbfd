// SPDX-License-Identifier: Unlicense OR MIT

package gpu

import (
	"github.com/deepzoom/mandelcore/bigfloat"
	"github.com/deepzoom/mandelcore/orbit"
	"github.com/deepzoom/mandelcore/tile"
)

// PackTileLocalOrbits computes one reference orbit per tile center on
// the CPU and packs them into a single flat ReferenceSample buffer
// with per-tile offsets, the mid-zoom mosaic-artifact remedy of spec
// §4.7: "partition the canvas into tiles, compute a reference orbit
// per tile center, pack all reference orbits into one GPU buffer with
// per-tile offsets." Each tile's position and per-pixel step are taken
// from its own DeltaCOrigin and DeltaCStep.
func PackTileLocalOrbits(tiles []tile.Tile, maxIterations uint32) ([]ReferenceSample, []TileInfo) {
	var packed []ReferenceSample
	infos := make([]TileInfo, len(tiles))

	for i, t := range tiles {
		centerDx := float64(t.Rect.W) / 2
		centerDy := float64(t.Rect.H) / 2
		prec := t.DeltaCStep.PrecisionBits()
		dxB := bigfloat.WithPrecision(centerDx, prec)
		dyB := bigfloat.WithPrecision(centerDy, prec)
		tileCenterRe := t.DeltaCOrigin[0].Add(dxB.Mul(t.DeltaCStep))
		tileCenterIm := t.DeltaCOrigin[1].Add(dyB.Mul(t.DeltaCStep))

		o := orbit.Compute(tileCenterRe, tileCenterIm, maxIterations)

		offset := uint32(len(packed))
		for _, z := range o.Z {
			packed = append(packed, ReferenceSample{Re: float32(z.Re), Im: float32(z.Im)})
		}

		dcOriginRe := t.DeltaCOrigin[0].Sub(tileCenterRe)
		dcOriginIm := t.DeltaCOrigin[1].Sub(tileCenterIm)

		escaped := uint32(0)
		if o.Escaped() {
			escaped = 1
		}
		infos[i] = TileInfo{
			OrbitOffset:      offset,
			OrbitLen:         uint32(o.Len()),
			ReferenceEscaped: escaped,
			DcOriginRe:       floatExpFromBig(dcOriginRe),
			DcOriginIm:       floatExpFromBig(dcOriginIm),
		}
	}

	return packed, infos
}

// floatExpFromBig projects a BigFloat delta down to the GPU's
// mantissa+exponent encoding via MantExp rather than ToFloat64, so a
// tile-local delta computed at extreme session-level zoom depth still
// carries its correct exponent even though its f32 mantissa only needs
// tile-width precision.
func floatExpFromBig(v bigfloat.BigFloat) ExtendedFloat {
	mant, exp := v.MantExp()
	return ExtendedFloat{Mantissa: float32(mant), Exp: int32(exp)}
}
