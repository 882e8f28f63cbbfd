// SPDX-License-Identifier: Unlicense OR MIT

package colorize

import (
	"math"
	"sort"

	"github.com/deepzoom/mandelcore/internal/f32color"
)

// lutSize is the resolution of a Palette's evaluated lookup table
// (spec §3: "4096-entry lookup table").
const lutSize = 4096

// ColorStop is one anchor of a palette gradient. MidpointBias shifts
// where, within [Position, nextStop.Position], the interpolation
// reaches 50% — a bias > 0.5 pulls the midpoint toward the next stop,
// matching how most gradient editors expose per-segment easing.
type ColorStop struct {
	Position     float64 // 0..1
	Color        f32color.RGBA
	MidpointBias float64 // 0..1, default 0.5
}

// Palette is an ordered gradient of ColorStops evaluated in OKLAB space
// into a fixed-size LUT.
type Palette struct {
	ID    string
	Stops []ColorStop
}

// lut is a Palette's evaluated, ready-to-index lookup table.
type lut [lutSize]f32color.RGBA

// Build evaluates p into a LUT. Stops must be sorted by Position; Build
// sorts a copy defensively since registries may load them from YAML in
// arbitrary order.
func (p Palette) Build() lut {
	stops := append([]ColorStop(nil), p.Stops...)
	sort.Slice(stops, func(i, j int) bool { return stops[i].Position < stops[j].Position })

	var out lut
	if len(stops) == 0 {
		return out
	}
	if len(stops) == 1 {
		for i := range out {
			out[i] = stops[0].Color
		}
		return out
	}

	for i := 0; i < lutSize; i++ {
		pos := float64(i) / float64(lutSize-1)
		out[i] = evalStops(stops, pos)
	}
	return out
}

func evalStops(stops []ColorStop, pos float64) f32color.RGBA {
	if pos <= stops[0].Position {
		return stops[0].Color
	}
	last := len(stops) - 1
	if pos >= stops[last].Position {
		return stops[last].Color
	}

	idx := sort.Search(len(stops), func(i int) bool { return stops[i].Position > pos }) - 1
	a, b := stops[idx], stops[idx+1]
	span := b.Position - a.Position
	if span <= 0 {
		return a.Color
	}
	t := (pos - a.Position) / span
	t = applyMidpointBias(t, a.MidpointBias)

	ca := linearToOklab(float64(a.Color.R), float64(a.Color.G), float64(a.Color.B))
	cb := linearToOklab(float64(b.Color.R), float64(b.Color.G), float64(b.Color.B))
	mixed := lerpOklab(ca, cb, t)
	r, g, b2 := oklabToLinear(mixed)
	return f32color.RGBA{R: float32(r), G: float32(g), B: float32(b2), A: 1}
}

// applyMidpointBias reshapes t so that t=bias maps to 0.5 (the halfway
// blend), via a single power curve anchored at both endpoints. bias<=0 or
// >=1 is clamped to avoid a singular exponent.
func applyMidpointBias(t, bias float64) float64 {
	if bias <= 0 {
		bias = 0.01
	}
	if bias >= 1 {
		bias = 0.99
	}
	if bias == 0.5 {
		return t
	}
	exp := math.Log(0.5) / math.Log(bias)
	return math.Pow(t, exp)
}
