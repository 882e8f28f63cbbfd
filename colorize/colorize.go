// SPDX-License-Identifier: Unlicense OR MIT

// Package colorize implements the five-stage ComputeData -> RGBA
// pipeline of spec §4.8. Colorizer changes never trigger recomputation
// (they are purity-tested by this package's TestColorizerPurity): given the same
// ComputeData buffer, Palette, and flags, Run always produces
// bit-identical RGBA.
package colorize

import (
	"image/color"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/deepzoom/mandelcore/compute"
)

var log = logrus.WithField("component", "colorize")

// Flags selects which optional pipeline stages run.
type Flags struct {
	Smooth    bool
	Histogram bool
	Shading   bool
}

// Request bundles everything Run needs for one canvas.
type Request struct {
	Data    []compute.Data
	Width   int
	Height  int
	Palette Palette
	Curve   Curve
	Flags   Flags
	Lighting LightingParams

	// GlitchColor is used verbatim for any pixel with Glitched=true,
	// bypassing the rest of the pipeline so glitches stay visually
	// distinct regardless of palette (spec §4.4: "v1 marks and colors
	// them distinctly").
	GlitchColor color.NRGBA
}

// Run executes the full pipeline and returns one color.NRGBA per pixel
// in row-major order, matching the layout of req.Data.
func Run(req Request) []color.NRGBA {
	lutTable := req.Palette.Build()
	out := make([]color.NRGBA, len(req.Data))

	smooth := make([]float64, len(req.Data))
	interior := make([]bool, len(req.Data))
	for i, d := range req.Data {
		if d.Glitched {
			continue
		}
		if !d.Escaped {
			interior[i] = true
			continue
		}
		smooth[i] = smoothIterationCount(d, req.Flags.Smooth)
	}

	var eq equalizer
	if req.Flags.Histogram {
		escaped := make([]float64, 0, len(smooth))
		for i, d := range req.Data {
			if d.Escaped && !d.Glitched {
				escaped = append(escaped, smooth[i])
			}
		}
		eq = buildEqualizer(escaped)
		log.WithField("count", len(escaped)).Debug("built histogram equalizer")
	}

	maxIter := maxIterations(req.Data)

	for i, d := range req.Data {
		if d.Glitched {
			out[i] = req.GlitchColor
			continue
		}
		if interior[i] {
			out[i] = lutTable[0].SRGB() // interior convention: palette position 0
			continue
		}

		value := smooth[i]
		normalized := value / float64(maxIter)
		if req.Flags.Histogram {
			normalized = eq.Remap(value)
		}
		normalized = clamp01(normalized)

		pos := req.Curve.Eval(normalized)
		pos = clamp01(pos)

		idx := int(pos * float64(lutSize-1))
		rgba := lutTable[idx]

		if req.Flags.Shading {
			nx, ny := finiteDifferenceNormal(smooth, req.Width, req.Height, i)
			rgba = shade(rgba, nx, ny, req.Lighting)
		}

		out[i] = rgba.SRGB()
	}

	return out
}

// smoothIterationCount applies spec §4.8 stage 1's formula when smooth
// is enabled, otherwise returns the raw integer count.
func smoothIterationCount(d compute.Data, smooth bool) float64 {
	n := float64(d.Iterations)
	if !smooth || d.FinalZNormSq <= 1 {
		return n
	}
	return n + 1 - math.Log2(math.Log2(float64(d.FinalZNormSq))/2)
}

func maxIterations(data []compute.Data) uint32 {
	var max uint32
	for _, d := range data {
		if d.Iterations > max {
			max = d.Iterations
		}
	}
	if max == 0 {
		return 1
	}
	return max
}

// finiteDifferenceNormal derives an apparent surface normal's (x, y)
// slope components from neighboring smooth-iteration values, used by
// the shading stage for every shaded pixel; Data.DerivativeMag is not read.
func finiteDifferenceNormal(smooth []float64, w, h, i int) (nx, ny float64) {
	x, y := i%w, i/w
	left, right := i, i
	if x > 0 {
		left = i - 1
	}
	if x < w-1 {
		right = i + 1
	}
	up, down := i, i
	if y > 0 {
		up = i - w
	}
	if y < h-1 {
		down = i + w
	}
	nx = smooth[right] - smooth[left]
	ny = smooth[down] - smooth[up]
	return nx * 0.1, ny * 0.1
}
