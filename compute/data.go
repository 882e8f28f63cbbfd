// SPDX-License-Identifier: Unlicense OR MIT

// Package compute holds the ComputeData type shared by every stage
// downstream of the delta iteration kernel: the tile scheduler collects
// it, the GPU dispatcher reads it back from storage buffers, and the
// colorizer consumes it as its sole input. Keeping it in its own
// package avoids an import cycle between delta, tile, and colorize.
package compute

// Data is the per-pixel output of one delta-iteration run. Spec §3
// allows other fractal-type variants in extension; Mandelbrot is the
// only one implemented here, so the tag is implicit rather than a
// discriminated union.
type Data struct {
	Iterations     uint32
	Escaped        bool
	Glitched       bool
	FinalZNormSq   float32
	DerivativeMag  float32
}

// Glitch marks d as glitched without discarding whatever partial
// iteration count it had accumulated. The colorizer paints glitched
// pixels with its Request.GlitchColor regardless of that count.
func (d *Data) Glitch() {
	d.Glitched = true
}
