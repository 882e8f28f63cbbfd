// SPDX-License-Identifier: Unlicense OR MIT

// Package tile partitions a canvas into Tiles ordered for center-out
// progressive rendering and dispatches them across a worker pool (see
// pool.go). Grounded on the pyramid tile-job/worker-channel pattern
// used by the reference corpus's own tile generator, adapted from a
// disk-backed raster pyramid to an in-memory perturbation-iteration
// pipeline.
package tile

import (
	"golang.org/x/exp/slices"

	"github.com/deepzoom/mandelcore/bigfloat"
)

// PixelRect is a canvas-space tile footprint; edge tiles may be short.
type PixelRect struct {
	X, Y, W, H int
}

// Tile is one scheduled unit of work: a pixel rectangle, its priority
// (lower sorts first), and its fractal-space offset from the session's
// reference point at the tile's top-left pixel (spec §3).
type Tile struct {
	ID           int
	Rect         PixelRect
	Priority     float64
	DeltaCOrigin [2]bigfloat.BigFloat // (re, im)
	DeltaCStep   bigfloat.BigFloat    // per-pixel step, isotropic in both axes
}

// SizeForMagnitude selects tile edge length from spec §4.6's step
// table: 256 below 10¹, stepping down to 32 past 10³⁰.
func SizeForMagnitude(log10Mag float64) int {
	switch {
	case log10Mag < 1:
		return 256
	case log10Mag < 3:
		return 192
	case log10Mag < 6:
		return 128
	case log10Mag < 10:
		return 96
	case log10Mag < 15:
		return 64
	default:
		return 32
	}
}

// CanvasSize mirrors viewport.CanvasSize without importing it, keeping
// tile free of a dependency on the viewport package's BigFloat-heavy
// API surface; callers already hold a viewport.CanvasSize and can pass
// its fields directly.
type CanvasSize struct {
	W, H int
}

// Generate tiles canvas on a regular grid of the given edge size,
// computes each tile's fractal-space offset from (centerX, centerY) in
// BigFloat, given that (reFx, reFy) is the fractal coordinate at the
// canvas center, and returns them sorted by the Euclidean distance of
// each tile's center from the canvas center (stable tie-break on (y, x),
// per spec §4.6 step 3).
func Generate(canvas CanvasSize, edge int, centerX, centerY, reFx, reFy bigfloat.BigFloat, pixelStep bigfloat.BigFloat) []Tile {
	var tiles []Tile
	id := 0
	cx := float64(canvas.W) / 2
	cy := float64(canvas.H) / 2

	for y := 0; y < canvas.H; y += edge {
		h := edge
		if y+h > canvas.H {
			h = canvas.H - y
		}
		for x := 0; x < canvas.W; x += edge {
			w := edge
			if x+w > canvas.W {
				w = canvas.W - x
			}
			dx := float64(x) - cx
			dy := float64(y) - cy
			mx := dx + float64(w)/2
			my := dy + float64(h)/2
			priority := mx*mx + my*my

			prec := pixelStep.PrecisionBits()
			dxB := bigfloat.WithPrecision(dx, prec)
			dyB := bigfloat.WithPrecision(dy, prec)
			originRe := reFx.Sub(centerX).Add(dxB.Mul(pixelStep))
			originIm := reFy.Sub(centerY).Add(dyB.Mul(pixelStep))

			tiles = append(tiles, Tile{
				ID:           id,
				Rect:         PixelRect{X: x, Y: y, W: w, H: h},
				Priority:     priority,
				DeltaCOrigin: [2]bigfloat.BigFloat{originRe, originIm},
				DeltaCStep:   pixelStep,
			})
			id++
		}
	}

	slices.SortStableFunc(tiles, func(a, b Tile) int {
		if a.Priority != b.Priority {
			if a.Priority < b.Priority {
				return -1
			}
			return 1
		}
		if a.Rect.Y != b.Rect.Y {
			return a.Rect.Y - b.Rect.Y
		}
		return a.Rect.X - b.Rect.X
	})
	return tiles
}
