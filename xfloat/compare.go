// SPDX-License-Identifier: Unlicense OR MIT

package xfloat

// Cmp compares the magnitudes of two Scalars of the same concrete type
// without ever projecting through Float64. This exists because the BLA
// engine's validity-radius comparisons are exactly the computation spec
// §9's design notes flag as a historical bug surface: computing dc_max
// or a validity radius natively and comparing squared magnitudes
// silently underflows to zero past roughly 1e-300, which looks like
// "BLA never applies" and has in the past been worked around by
// disabling BLA outright (max_skip=1) instead of fixing the underflow.
// Cmp compares exponent first, only falling back to mantissa comparison
// within the same exponent, so it stays correct arbitrarily deep.
func Cmp(a, b Scalar) int {
	switch av := a.(type) {
	case Native:
		return cmpFloat(abs64(float64(av)), abs64(float64(b.(Native))))
	case Native32:
		return cmpFloat(abs64(float64(av)), abs64(float64(b.(Native32))))
	case Float32:
		bv := b.(Float32)
		return cmpExp(abs32(av.Mant), av.Exp, abs32(bv.Mant), bv.Exp)
	case Float64:
		bv := b.(Float64)
		return cmpExp(abs64(av.Mant), av.Exp, abs64(bv.Mant), bv.Exp)
	case Double32:
		bv := b.(Double32)
		return cmpExp(abs32(av.Hi), av.Exp, abs32(bv.Hi), bv.Exp)
	case Double64:
		bv := b.(Double64)
		return cmpExp(abs64(av.Hi), av.Exp, abs64(bv.Hi), bv.Exp)
	default:
		return cmpFloat(abs64(a.Float64()), abs64(b.Float64()))
	}
}

// Less reports whether |a| < |b|.
func Less(a, b Scalar) bool { return Cmp(a, b) < 0 }

func abs64(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// cmpExp compares two normalized (mantissa, exponent) magnitudes:
// larger exponent always wins regardless of mantissa, since mantissas
// are normalized to [0.5, 1.0) (or zero).
func cmpExp[M float32 | float64](aMant M, aExp int32, bMant M, bExp int32) int {
	if aMant == 0 && bMant == 0 {
		return 0
	}
	if aMant == 0 {
		return -1
	}
	if bMant == 0 {
		return 1
	}
	if aExp != bExp {
		if aExp < bExp {
			return -1
		}
		return 1
	}
	switch {
	case aMant < bMant:
		return -1
	case aMant > bMant:
		return 1
	default:
		return 0
	}
}
