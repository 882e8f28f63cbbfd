// SPDX-License-Identifier: Unlicense OR MIT

package gpu

// adam7XOffset and adam7YOffset give, for pass index 0..6, the starting
// (x, y) offset and stride of the pixels that pass contributes, the
// same interlacing pattern PNG uses for progressive refinement (spec
// §4.7): a coarse preview in pass 0 (1/64, ~1.6% of pixels), refining to full
// coverage by pass 6 (the final ~50%).
var (
	adam7XOffset = [7]int{0, 4, 0, 2, 0, 1, 0}
	adam7YOffset = [7]int{0, 0, 4, 0, 2, 0, 1}
	adam7XStride = [7]int{8, 8, 4, 4, 2, 2, 1}
	adam7YStride = [7]int{8, 8, 8, 4, 4, 2, 2}
)

// PassCount is the number of Adam7 dispatches per frame.
const PassCount = 7

// InPass reports whether canvas pixel (x, y) belongs to pass p.
func InPass(p, x, y int) bool {
	xs, ys := adam7XStride[p], adam7YStride[p]
	xo, yo := adam7XOffset[p], adam7YOffset[p]
	return (x-xo) >= 0 && (x-xo)%xs == 0 && (y-yo) >= 0 && (y-yo)%ys == 0
}

// PassFraction returns the fraction of a canvas's pixels pass p
// contributes, assuming a canvas much larger than the 8x8 repeating
// tile (the asymptotic Adam7 fractions: 1/64, 1/64, 1/32, 1/16, 1/8,
// 1/4, 1/2).
func PassFraction(p int) float64 {
	fractions := [7]float64{1.0 / 64, 1.0 / 64, 1.0 / 32, 1.0 / 16, 1.0 / 8, 1.0 / 4, 1.0 / 2}
	return fractions[p]
}
