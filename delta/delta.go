// SPDX-License-Identifier: Unlicense OR MIT

// Package delta implements the per-pixel perturbation iteration loop:
// given a reference orbit and a pixel's δc, it walks z -> z²+c via the
// low-precision delta relationship instead of re-running the full
// high-precision iteration, with rebasing and Pauldelbrot glitch
// detection as specified in spec §4.4. The loop is generic over
// xfloat.Scalar so the same algorithm runs as the native-f64, native-f32,
// single-mantissa-extended, and double-mantissa-extended kernel
// instantiations spec §9 calls for, selected by the caller's choice of
// Kernel.ToScalar constructor.
package delta

import (
	"github.com/sirupsen/logrus"

	"github.com/deepzoom/mandelcore/bla"
	"github.com/deepzoom/mandelcore/compute"
	"github.com/deepzoom/mandelcore/orbit"
	"github.com/deepzoom/mandelcore/xfloat"
)

var log = logrus.WithField("component", "delta")

// EscapeRadiusSq mirrors orbit.EscapeRadiusSq; duplicated as a plain
// float64 constant since the kernel's hot loop only ever needs the
// native projection for its escape comparison.
const EscapeRadiusSq = 256.0 * 256.0

// Tau is the default Pauldelbrot glitch threshold (spec's glossary:
// "~10⁻⁶"). Kernel callers may override per session.
const Tau = 1e-6

// watchdogMultiplier bounds worst-case rebase thrashing: spec §4.4
// "a loop-count watchdog (max_iterations · 4) prevents runaway
// rebases from hanging a worker".
const watchdogMultiplier = 4

// Kernel bundles the numeric-representation-specific constructor the
// loop needs: ToScalar converts a native float64 orbit sample into the
// concrete Scalar type in use. The type's additive identity is derived
// from it by zero(), since Scalar has no parameterless constructor.
type Kernel struct {
	ToScalar func(float64) xfloat.Scalar
}

func (k Kernel) zero() xfloat.Scalar {
	z := k.ToScalar(0)
	return z.Sub(z)
}

// Iterate runs the delta iteration loop for one pixel against o,
// starting from δz=0 with the given δc, for up to maxIterations pixel
// iterations (n). table may be nil, in which case every step is a
// standard (non-BLA) step.
func (k Kernel) Iterate(o *orbit.ReferenceOrbit, deltaC xfloat.Complex, maxIterations uint32, tau float64, table *bla.Table) compute.Data {
	deltaZ := xfloat.Complex{Re: k.zero(), Im: k.zero()}
	m := 0
	var n uint32
	watchdog := uint64(maxIterations) * watchdogMultiplier
	var loopCount uint64

	two := k.ToScalar(2)

	for n < maxIterations {
		loopCount++
		if loopCount > watchdog {
			log.WithField("max_iterations", maxIterations).Warn("delta iteration watchdog tripped")
			return compute.Data{Iterations: n, Glitched: true}
		}

		if m >= o.Len() {
			// Reference exhausted without escaping: wrap, per spec
			// §4.4's "non-escaping reference wraps" branch. If it had
			// escaped this is unreachable — handled in the m==len
			// branch below after a standard step.
			m = 0
		}

		zmRe := k.ToScalar(o.Z[m].Re)
		zmIm := k.ToScalar(o.Z[m].Im)
		Zm := xfloat.Complex{Re: zmRe, Im: zmIm}
		zmNormSq := Zm.NormSqScalar()

		z := Zm.Add(deltaZ)
		zNormSq := z.NormSqScalar()

		if zNormSq.Float64() > EscapeRadiusSq {
			return compute.Data{
				Iterations:   n,
				Escaped:      true,
				FinalZNormSq: float32(zNormSq.Float64()),
			}
		}

		glitched := false
		if zmNormSq.Float64() > 0 && xfloat.Less(zNormSq, scaleBy(zmNormSq, tau, k)) {
			glitched = true
		}

		if xfloat.Less(zNormSq, deltaZ.NormSqScalar()) {
			// Rebase: replace δz with the full current pixel value and
			// restart the reference index. No n increment.
			deltaZ = z
			m = 0
			continue
		}

		if table != nil {
			if entry, ok := table.Lookup(m, deltaZ); ok {
				deltaZ = entry.Apply(deltaZ, deltaC)
				m += int(entry.L)
				n += entry.L
				if glitched {
					return compute.Data{Iterations: n, Glitched: true}
				}
				continue
			}
		}

		// Standard step: δz := 2*Z_m*δz + δz² + δc
		deltaZ = Zm.Scale(two).Mul(deltaZ).Add(deltaZ.Mul(deltaZ)).Add(deltaC)
		m++
		n++

		if m == o.Len() {
			if o.Escaped() {
				return compute.Data{Iterations: n, Glitched: true}
			}
			m = 0
		}

		if glitched {
			return compute.Data{Iterations: n, Glitched: true}
		}
	}

	return compute.Data{Iterations: n, Escaped: false}
}

// scaleBy multiplies s by a native float64 factor, used only for the
// Pauldelbrot threshold comparison where tau itself is a small native
// constant shared across every numeric representation.
func scaleBy(s xfloat.Scalar, factor float64, k Kernel) xfloat.Scalar {
	return s.Mul(k.ToScalar(factor))
}
