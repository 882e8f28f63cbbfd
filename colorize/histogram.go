// SPDX-License-Identifier: Unlicense OR MIT

package colorize

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// histogramBuckets is the bucket count spec §4.8 stage 2 specifies.
const histogramBuckets = 1024

// equalizer remaps a smooth-iteration value through the cumulative
// distribution of all escaped pixels' values, spreading out whatever
// range of iteration counts the viewport actually produced across the
// full palette instead of the fixed [0, max_iterations] range. Binned
// with gonum/stat's Histogram per SPEC_FULL's domain stack wiring
// (inference-sim's gonum dependency, repurposed here); the CDF is
// accumulated from the bin counts in buildEqualizer.
type equalizer struct {
	dividers []float64
	cdf      []float64
}

// buildEqualizer gathers the full canvas's escaped-pixel smooth values,
// bins them into histogramBuckets, and turns the bin counts into a
// cumulative distribution. Spec §4.8 stage 2 calls this two-pass: the
// entire buffer must be gathered before colorization can proceed.
func buildEqualizer(values []float64) equalizer {
	if len(values) == 0 {
		return equalizer{}
	}
	min, max := floats.Min(values), floats.Max(values)
	if max <= min {
		max = min + 1
	}

	dividers := make([]float64, histogramBuckets+1)
	floats.Span(dividers, min, max)
	// stat.Histogram requires every value to be below the last divider.
	dividers[histogramBuckets] = math.Nextafter(max, math.Inf(1))

	sorted := append([]float64(nil), values...)
	floats.Sort(sorted, nil)

	counts := make([]float64, histogramBuckets)
	stat.Histogram(counts, dividers, sorted, nil)

	cdf := make([]float64, histogramBuckets)
	var running float64
	total := floats.Sum(counts)
	for i, c := range counts {
		running += c
		if total > 0 {
			cdf[i] = running / total
		}
	}
	return equalizer{dividers: dividers, cdf: cdf}
}

// Remap maps v through the equalizer's CDF into [0,1]. Values outside
// the originally observed range clamp to the nearest end.
func (e equalizer) Remap(v float64) float64 {
	if len(e.cdf) == 0 {
		return v
	}
	if v <= e.dividers[0] {
		return e.cdf[0]
	}
	if v >= e.dividers[len(e.dividers)-1] {
		return e.cdf[len(e.cdf)-1]
	}
	idx := bucketIndex(e.dividers, v)
	return e.cdf[idx]
}

func bucketIndex(dividers []float64, v float64) int {
	lo, hi := 0, len(dividers)-2
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if dividers[mid] <= v {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
