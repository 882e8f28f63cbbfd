// SPDX-License-Identifier: Unlicense OR MIT

package xfloat

import "math"

// FromMantExp builds a Scalar of the same concrete type as sample from
// a (mantissa, exponent) pair already normalized the way
// bigfloat.BigFloat.MantExp and math.Frexp agree on (mantissa in
// [-1.0,-0.5] union [0.5,1.0), or exactly 0), without ever collapsing
// the pair through a native float64 first. This is what lets a caller
// holding a BigFloat delta that has already underflowed float64's
// exponent range hand it straight to whichever extended representation
// a session's strategy picked, instead of rounding it to zero en route.
func FromMantExp(mant float64, exp int, sample Scalar) Scalar {
	switch sample.(type) {
	case Native:
		return Native(math.Ldexp(mant, exp))
	case Native32:
		return Native32(float32(math.Ldexp(mant, exp)))
	case Float32:
		return Float32{Mant: float32(mant), Exp: int32(exp)}
	case Float64:
		return Float64{Mant: mant, Exp: int32(exp)}
	case Double32:
		return Double32{Hi: float32(mant), Lo: 0, Exp: int32(exp)}.normalize()
	case Double64:
		return Double64{Hi: mant, Lo: 0, Exp: int32(exp)}
	default:
		return Native(math.Ldexp(mant, exp))
	}
}

// Sqrt computes an in-domain square root, used by the BLA engine to
// recover a linear magnitude from NormSqScalar's squared magnitude
// without ever projecting through Float64 (see Cmp's doc comment for
// why that projection is the bug this whole package exists to avoid).
// s must be non-negative, which every caller satisfies since a squared
// magnitude is the only input this is used on.
//
// The double-mantissa representations carry the result in their Hi
// component only, trading a few bits of precision for never touching
// Float64: a BLA validity radius is already a conservative heuristic
// bound, so that tradeoff costs nothing a validity check would notice.
func Sqrt(s Scalar) Scalar {
	switch v := s.(type) {
	case Native:
		return Native(math.Sqrt(float64(v)))
	case Native32:
		return Native32(float32(math.Sqrt(float64(v))))
	case Float32:
		return sqrtMantExp32(v.Mant, v.Exp)
	case Float64:
		return sqrtMantExp64(v.Mant, v.Exp)
	case Double32:
		r := sqrtMantExp32(v.Hi, v.Exp)
		return Double32{Hi: r.Mant, Exp: r.Exp}.normalize()
	case Double64:
		r := sqrtMantExp64(v.Hi, v.Exp)
		return Double64{Hi: r.Mant, Exp: r.Exp}.normalize()
	default:
		return Native(math.Sqrt(s.Float64()))
	}
}

// sqrtMantExp32/64 compute sqrt(mant * 2^exp) and renormalize, halving
// the exponent and pre-doubling an odd-exponent mantissa so the result
// comes out of Frexp in the usual [0.5,1.0) convention.
func sqrtMantExp32(mant float32, exp int32) Float32 {
	if mant == 0 {
		return Float32{}
	}
	if exp&1 != 0 {
		mant *= 2
		exp--
	}
	return Float32{Mant: float32(math.Sqrt(float64(mant))), Exp: exp / 2}.normalize()
}

func sqrtMantExp64(mant float64, exp int32) Float64 {
	if mant == 0 {
		return Float64{}
	}
	if exp&1 != 0 {
		mant *= 2
		exp--
	}
	return Float64{Mant: math.Sqrt(mant), Exp: exp / 2}.normalize()
}

// Div computes a/b without ever projecting either operand through
// Float64, so a divisor whose magnitude has underflowed float64's
// exponent range still divides correctly instead of silently reading
// as zero. a and b must share the same concrete Scalar type. Returns a
// unchanged when b is exactly zero, mirroring the convention an
// infinite validity radius would produce.
//
// The double-mantissa representations divide through their Hi
// component only, the same precision/robustness tradeoff Sqrt makes.
func Div(a, b Scalar) Scalar {
	switch bv := b.(type) {
	case Native:
		if bv == 0 {
			return a
		}
		return a.(Native) / bv
	case Native32:
		if bv == 0 {
			return a
		}
		return a.(Native32) / bv
	case Float32:
		av := a.(Float32)
		if bv.Mant == 0 {
			return av
		}
		return Float32{Mant: av.Mant / bv.Mant, Exp: av.Exp - bv.Exp}.normalize()
	case Float64:
		av := a.(Float64)
		if bv.Mant == 0 {
			return av
		}
		return Float64{Mant: av.Mant / bv.Mant, Exp: av.Exp - bv.Exp}.normalize()
	case Double32:
		av := a.(Double32)
		if bv.Hi == 0 {
			return av
		}
		return Double32{Hi: av.Hi / bv.Hi, Exp: av.Exp - bv.Exp}.normalize()
	case Double64:
		av := a.(Double64)
		if bv.Hi == 0 {
			return av
		}
		return Double64{Hi: av.Hi / bv.Hi, Exp: av.Exp - bv.Exp}.normalize()
	default:
		bf := b.Float64()
		if bf == 0 {
			return a
		}
		return Native(a.Float64() / bf)
	}
}
