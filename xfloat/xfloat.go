// SPDX-License-Identifier: Unlicense OR MIT

// Package xfloat implements the extreme-range floating point number
// (mantissa, exponent) used once native-precision delta values
// underflow (roughly 1e-300 for float64, 1e-38 for float32). It backs
// the CPU delta iteration kernel and the BLA engine (spec §3, §4.4
// "Precision selection per tile").
//
// Six concrete numeric representations implement Scalar (spec §9
// "multi-precision polymorphism"): Native and Native32 wrap plain
// float64 and float32; Float32 is the single-mantissa extended-range
// type with the same (mantissa, exponent) layout as the shader's
// FloatExp struct; Double32 is its (hi, lo, exp) double-mantissa
// variant; Float64 is the CPU single-mantissa extended type used for
// the 15..300 decade zoom tier, where float64's native 53-bit mantissa
// is already ample and only the exponent range needs extending; and
// Double64 is the CPU double-mantissa type for deeper zooms.
package xfloat

import "math"

// Scalar is the capability set the delta iteration kernel and the BLA
// engine actually use: addition, multiplication, negation, and a
// float64 projection for branch decisions (escape tests, the
// Pauldelbrot glitch criterion). It lets delta and bla share one
// algorithm across all six numeric representations instead of
// near-duplicate implementations.
type Scalar interface {
	Add(Scalar) Scalar
	Sub(Scalar) Scalar
	Mul(Scalar) Scalar
	Neg() Scalar
	Float64() float64
}

// ---- Float32: single-mantissa extended-range, float32 mantissa ----

// Float32 is a normalized (mantissa in [0.5,1.0), exponent) pair
// backed by a float32 mantissa, matching the WGSL `FloatExp` struct
// `{ mantissa: f32, exp: i32 }` of spec §4.7 exactly.
type Float32 struct {
	Mant float32
	Exp  int32
}

// FromFloat64F32 builds a Float32 from a native float64, typically a
// δc or δz component too small to stay in native range.
func FromFloat64F32(f float64) Float32 {
	if f == 0 {
		return Float32{}
	}
	m, e := math.Frexp(f)
	return Float32{Mant: float32(m), Exp: int32(e)}
}

func (a Float32) normalize() Float32 {
	if a.Mant == 0 {
		return Float32{}
	}
	m, e := math.Frexp(float64(a.Mant))
	return Float32{Mant: float32(m), Exp: a.Exp + int32(e)}
}

// Add aligns the smaller-exponent operand by shifting its mantissa
// down, then renormalizes.
func (a Float32) Add(bs Scalar) Scalar {
	b := bs.(Float32)
	if a.Mant == 0 {
		return b
	}
	if b.Mant == 0 {
		return a
	}
	if a.Exp < b.Exp {
		a, b = b, a
	}
	shift := a.Exp - b.Exp
	var bm float32
	if shift < 149 { // below this, b is entirely below float32 ulp of a
		bm = b.Mant / float32(math.Exp2(float64(shift)))
	}
	return Float32{Mant: a.Mant + bm, Exp: a.Exp}.normalize()
}

func (a Float32) Sub(b Scalar) Scalar {
	return a.Add(b.(Float32).Neg())
}

// Mul multiplies mantissas and adds exponents.
func (a Float32) Mul(bs Scalar) Scalar {
	b := bs.(Float32)
	return Float32{Mant: a.Mant * b.Mant, Exp: a.Exp + b.Exp}.normalize()
}

func (a Float32) Neg() Scalar {
	return Float32{Mant: -a.Mant, Exp: a.Exp}
}

// Float64 projects back to native range for branch decisions; it
// underflows to 0 or overflows to ±Inf outside float64's exponent
// range, which is fine because callers only use it for comparisons,
// never as a final stored value.
func (a Float32) Float64() float64 {
	return math.Ldexp(float64(a.Mant), int(a.Exp))
}

// ---- Float64: single-mantissa extended-range, float64 mantissa ----

// Float64 is the CPU-only extended type used when native float64
// deltas underflow but the 53-bit mantissa precision is still
// sufficient (zoom depths in the 15..300 decade tier).
type Float64 struct {
	Mant float64
	Exp  int32
}

func FromFloat64(f float64) Float64 {
	if f == 0 {
		return Float64{}
	}
	m, e := math.Frexp(f)
	return Float64{Mant: m, Exp: int32(e)}
}

func (a Float64) normalize() Float64 {
	if a.Mant == 0 {
		return Float64{}
	}
	m, e := math.Frexp(a.Mant)
	return Float64{Mant: m, Exp: a.Exp + int32(e)}
}

func (a Float64) Add(bs Scalar) Scalar {
	b := bs.(Float64)
	if a.Mant == 0 {
		return b
	}
	if b.Mant == 0 {
		return a
	}
	if a.Exp < b.Exp {
		a, b = b, a
	}
	shift := a.Exp - b.Exp
	var bm float64
	if shift < 1074 {
		bm = b.Mant / math.Exp2(float64(shift))
	}
	return Float64{Mant: a.Mant + bm, Exp: a.Exp}.normalize()
}

func (a Float64) Sub(b Scalar) Scalar {
	return a.Add(b.(Float64).Neg())
}

func (a Float64) Mul(bs Scalar) Scalar {
	b := bs.(Float64)
	return Float64{Mant: a.Mant * b.Mant, Exp: a.Exp + b.Exp}.normalize()
}

func (a Float64) Neg() Scalar {
	return Float64{Mant: -a.Mant, Exp: a.Exp}
}

func (a Float64) Float64() float64 {
	return math.Ldexp(a.Mant, int(a.Exp))
}

// ---- Double32: double-mantissa extended-range (hi, lo float32) ----

// Double32 stores two float32 mantissas (hi, lo) plus a shared
// exponent for ~48-bit precision, matching the WGSL struct
// `{ hi: f32, lo: f32, exp: i32 }` of spec §4.7. hi holds the leading
// bits, lo the residual after Knuth's TwoSum / Veltkamp split, giving
// roughly double the precision of a single float32 mantissa without
// needing a true float64 (useful on GPUs with slow or absent f64).
type Double32 struct {
	Hi, Lo float32
	Exp    int32
}

// twoSum implements Knuth's TwoSum: returns s = a+b exactly along with
// the rounding error e, such that a+b == s+e in infinite precision.
func twoSum(a, b float32) (s, e float32) {
	s = a + b
	bb := s - a
	e = (a - (s - bb)) + (b - bb)
	return
}

// split implements Veltkamp's splitting of a float32 mantissa into a
// high and low part whose product with another split value can be
// formed without rounding error (used by twoProduct).
func split(a float32) (hi, lo float32) {
	const splitter = (1<<13 + 1) // 2^13+1: hi keeps at most 11 bits, so twoProduct's partial products are exact
	c := splitter * a
	hi = c - (c - a)
	lo = a - hi
	return
}

func twoProduct(a, b float32) (p, e float32) {
	p = a * b
	aHi, aLo := split(a)
	bHi, bLo := split(b)
	e = ((aHi*bHi - p) + aHi*bLo + aLo*bHi) + aLo*bLo
	return
}

func FromFloat64D32(f float64) Double32 {
	if f == 0 {
		return Double32{}
	}
	m, e := math.Frexp(f)
	hi := float32(m)
	lo := float32(m - float64(hi))
	return Double32{Hi: hi, Lo: lo, Exp: int32(e)}.normalize()
}

func (a Double32) normalize() Double32 {
	if a.Hi == 0 && a.Lo == 0 {
		return Double32{}
	}
	hi, lo := twoSum(a.Hi, a.Lo)
	if hi == 0 {
		return Double32{}
	}
	m, e := math.Frexp(float64(hi))
	scale := float32(math.Exp2(float64(-e)))
	return Double32{Hi: float32(m), Lo: lo * scale, Exp: a.Exp + int32(e)}
}

func (a Double32) Add(bs Scalar) Scalar {
	b := bs.(Double32)
	if a.Hi == 0 && a.Lo == 0 {
		return b
	}
	if b.Hi == 0 && b.Lo == 0 {
		return a
	}
	if a.Exp < b.Exp {
		a, b = b, a
	}
	shift := float32(math.Exp2(float64(b.Exp - a.Exp)))
	bHi, bLo := b.Hi*shift, b.Lo*shift
	s1, e1 := twoSum(a.Hi, bHi)
	s2, e2 := twoSum(a.Lo, bLo)
	hi, e3 := twoSum(s1, s2+e1)
	lo := e2 + e3
	return Double32{Hi: hi, Lo: lo, Exp: a.Exp}.normalize()
}

func (a Double32) Sub(b Scalar) Scalar {
	return a.Add(b.(Double32).Neg())
}

func (a Double32) Mul(bs Scalar) Scalar {
	b := bs.(Double32)
	p1, e1 := twoProduct(a.Hi, b.Hi)
	p2 := a.Hi*b.Lo + a.Lo*b.Hi
	hi, e2 := twoSum(p1, p2+e1)
	return Double32{Hi: hi, Lo: e2, Exp: a.Exp + b.Exp}.normalize()
}

func (a Double32) Neg() Scalar {
	return Double32{Hi: -a.Hi, Lo: -a.Lo, Exp: a.Exp}
}

func (a Double32) Float64() float64 {
	return math.Ldexp(float64(a.Hi)+float64(a.Lo), int(a.Exp))
}

// ---- Double64: CPU double-mantissa extended-range for >300 decades ----

// Double64 is Double32's CPU analog using float64 mantissas, giving
// roughly 106 bits of precision with unbounded exponent range. It
// backs the Orchestrator's ">300 decades" strategy tier (spec §4.9),
// where even a single 53-bit extended mantissa is not enough to keep
// the reference/delta relationship numerically stable across the
// iteration counts such deep zooms require.
type Double64 struct {
	Hi, Lo float64
	Exp    int32
}

func twoSum64(a, b float64) (s, e float64) {
	s = a + b
	bb := s - a
	e = (a - (s - bb)) + (b - bb)
	return
}

func split64(a float64) (hi, lo float64) {
	const splitter = (1<<27 + 1)
	c := splitter * a
	hi = c - (c - a)
	lo = a - hi
	return
}

func twoProduct64(a, b float64) (p, e float64) {
	p = a * b
	aHi, aLo := split64(a)
	bHi, bLo := split64(b)
	e = ((aHi*bHi - p) + aHi*bLo + aLo*bHi) + aLo*bLo
	return
}

func FromFloat64D64(f float64) Double64 {
	if f == 0 {
		return Double64{}
	}
	m, e := math.Frexp(f)
	return Double64{Hi: m, Lo: 0, Exp: int32(e)}
}

func (a Double64) normalize() Double64 {
	hi, lo := twoSum64(a.Hi, a.Lo)
	if hi == 0 {
		return Double64{}
	}
	m, e := math.Frexp(hi)
	scale := math.Exp2(float64(-e))
	return Double64{Hi: m, Lo: lo * scale, Exp: a.Exp + int32(e)}
}

func (a Double64) Add(bs Scalar) Scalar {
	b := bs.(Double64)
	if a.Hi == 0 && a.Lo == 0 {
		return b
	}
	if b.Hi == 0 && b.Lo == 0 {
		return a
	}
	if a.Exp < b.Exp {
		a, b = b, a
	}
	shift := math.Exp2(float64(b.Exp - a.Exp))
	bHi, bLo := b.Hi*shift, b.Lo*shift
	s1, e1 := twoSum64(a.Hi, bHi)
	s2, e2 := twoSum64(a.Lo, bLo)
	hi, e3 := twoSum64(s1, s2+e1)
	lo := e2 + e3
	return Double64{Hi: hi, Lo: lo, Exp: a.Exp}.normalize()
}

func (a Double64) Sub(b Scalar) Scalar {
	return a.Add(b.(Double64).Neg())
}

func (a Double64) Mul(bs Scalar) Scalar {
	b := bs.(Double64)
	p1, e1 := twoProduct64(a.Hi, b.Hi)
	p2 := a.Hi*b.Lo + a.Lo*b.Hi
	hi, e2 := twoSum64(p1, p2+e1)
	return Double64{Hi: hi, Lo: e2, Exp: a.Exp + b.Exp}.normalize()
}

func (a Double64) Neg() Scalar {
	return Double64{Hi: -a.Hi, Lo: -a.Lo, Exp: a.Exp}
}

func (a Double64) Float64() float64 {
	return math.Ldexp(a.Hi+a.Lo, int(a.Exp))
}
