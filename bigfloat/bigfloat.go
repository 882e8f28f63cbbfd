// SPDX-License-Identifier: Unlicense OR MIT

// Package bigfloat implements the arbitrary-precision real number type
// used everywhere a fractal-space coordinate must survive zoom depths
// beyond the range of a native float64 (roughly 10^300 and deeper).
//
// A BigFloat carries its precision explicitly, in bits, and never loses
// it silently: every binary operation's result takes the larger of its
// two operands' precisions, the same rule the reference corpus's own
// arbitrary-precision wrapper (a math/big.Float adapter) follows for
// every arithmetic call. No third-party arbitrary-precision library
// appears anywhere in the retrieved corpus; the closest analog in the
// pack is itself a thin wrapper over the standard library's math/big,
// so BigFloat is built the same way (see DESIGN.md).
package bigfloat

import (
	"errors"
	"fmt"
	"math"
	"math/big"
)

// ErrPrecisionOverflow is returned by Sqrt when called on a negative
// value; it is the only arithmetic failure mode in this package (see
// spec §4.1 — "all other arithmetic is total").
var ErrPrecisionOverflow = errors.New("bigfloat: precision overflow: sqrt of negative value")

// BigFloat is an immutable arbitrary-precision real number with an
// explicit bit precision. The zero value is not valid; construct with
// Zero, One, WithPrecision, or FromString.
type BigFloat struct {
	v    *big.Float
	prec uint
}

// WithPrecision builds a BigFloat from a native float64 at the given
// bit precision.
func WithPrecision(f float64, bits uint) BigFloat {
	return BigFloat{v: new(big.Float).SetPrec(bits).SetFloat64(f), prec: bits}
}

// Zero returns the additive identity at the given precision.
func Zero(bits uint) BigFloat {
	return BigFloat{v: new(big.Float).SetPrec(bits), prec: bits}
}

// One returns the multiplicative identity at the given precision.
func One(bits uint) BigFloat {
	return BigFloat{v: new(big.Float).SetPrec(bits).SetInt64(1), prec: bits}
}

// FromString parses a signed decimal string, optionally with a
// scientific exponent ("1.23e-270"), at the given bit precision. The
// result is exact for values representable within that precision;
// otherwise it rounds to nearest-even, matching math/big.Float's
// default rounding mode.
func FromString(s string, bits uint) (BigFloat, error) {
	v, _, err := big.ParseFloat(s, 10, bits, big.ToNearestEven)
	if err != nil {
		return BigFloat{}, fmt.Errorf("bigfloat: parse %q: %w", s, err)
	}
	return BigFloat{v: v, prec: bits}, nil
}

// PrecisionBits reports the bit precision the value was constructed or
// last operated at.
func (b BigFloat) PrecisionBits() uint {
	return b.prec
}

// WithPrecisionLossless reinterprets b at a new bit precision without
// round-tripping through a decimal string. When bits >= b.PrecisionBits()
// this is exact; when lowering precision it rounds to nearest-even, same
// as any other operation's result precision change would.
func (b BigFloat) WithPrecisionLossless(bits uint) BigFloat {
	return BigFloat{v: new(big.Float).SetPrec(bits).Set(b.v), prec: bits}
}

func resultPrec(a, b BigFloat) uint {
	if a.prec > b.prec {
		return a.prec
	}
	return b.prec
}

// Add returns a+b at precision max(a.prec, b.prec).
func (a BigFloat) Add(b BigFloat) BigFloat {
	prec := resultPrec(a, b)
	return BigFloat{v: new(big.Float).SetPrec(prec).Add(a.v, b.v), prec: prec}
}

// Sub returns a-b at precision max(a.prec, b.prec).
func (a BigFloat) Sub(b BigFloat) BigFloat {
	prec := resultPrec(a, b)
	return BigFloat{v: new(big.Float).SetPrec(prec).Sub(a.v, b.v), prec: prec}
}

// Mul returns a*b at precision max(a.prec, b.prec).
func (a BigFloat) Mul(b BigFloat) BigFloat {
	prec := resultPrec(a, b)
	return BigFloat{v: new(big.Float).SetPrec(prec).Mul(a.v, b.v), prec: prec}
}

// Div returns a/b at precision max(a.prec, b.prec).
func (a BigFloat) Div(b BigFloat) BigFloat {
	prec := resultPrec(a, b)
	return BigFloat{v: new(big.Float).SetPrec(prec).Quo(a.v, b.v), prec: prec}
}

// Neg returns -a, preserving precision.
func (a BigFloat) Neg() BigFloat {
	return BigFloat{v: new(big.Float).SetPrec(a.prec).Neg(a.v), prec: a.prec}
}

// Sqrt returns sqrt(a), preserving precision. It fails only when a is
// negative.
func (a BigFloat) Sqrt() (BigFloat, error) {
	if a.v.Sign() < 0 {
		return BigFloat{}, ErrPrecisionOverflow
	}
	return BigFloat{v: new(big.Float).SetPrec(a.prec).Sqrt(a.v), prec: a.prec}, nil
}

// Cmp compares a and b numerically, ignoring precision.
func (a BigFloat) Cmp(b BigFloat) int {
	return a.v.Cmp(b.v)
}

// Sign returns -1, 0, or 1 depending on the sign of a.
func (a BigFloat) Sign() int {
	return a.v.Sign()
}

// ToFloat64 converts a to the nearest float64, for use only at the
// boundary with low-precision kernels (the delta iteration loop never
// holds a BigFloat internally).
func (a BigFloat) ToFloat64() float64 {
	f, _ := a.v.Float64()
	return f
}

// ToFloat32 converts a to the nearest float32.
func (a BigFloat) ToFloat32() float32 {
	f, _ := a.v.Float32()
	return f
}

// MantExp decomposes a as mantissa * 2^exp, with mantissa in [0.5, 1.0)
// (or exactly 0), losslessly extracting the magnitude information that
// would otherwise be destroyed by a direct ToFloat64 conversion once
// |a| falls outside float64's exponent range. This is the boundary
// conversion the extended-range kernel (package xfloat) needs: unlike
// ToFloat64, it never silently rounds a deep-zoom delta down to zero.
func (a BigFloat) MantExp() (mantissa float64, exp int) {
	if a.v.Sign() == 0 {
		return 0, 0
	}
	m := new(big.Float).SetPrec(a.v.Prec())
	e := m.MantExp(a.v)
	f, _ := m.Float64()
	return f, e
}

// Log2Approx returns an approximate base-2 logarithm of |a|, accurate
// enough for range decisions (e.g. choosing native vs. extended-range
// arithmetic for a tile) but not for final numeric results.
func (a BigFloat) Log2Approx() float64 {
	if a.v.Sign() == 0 {
		return math.Inf(-1)
	}
	abs := new(big.Float).Abs(a.v)
	mantissa := new(big.Float)
	exp2 := abs.MantExp(mantissa)
	m, _ := mantissa.Float64()
	return math.Log2(m) + float64(exp2)
}

// String renders a as a decimal string with enough digits to
// round-trip through FromString at the same precision.
func (a BigFloat) String() string {
	digits := int(math.Ceil(float64(a.prec)*0.3010299956639812)) + 2
	return a.v.Text('g', digits)
}

// Eq reports whether a and b represent the same value (precision is
// not compared; two BigFloats at different precision can still be
// numerically equal).
func (a BigFloat) Eq(b BigFloat) bool {
	return a.v.Cmp(b.v) == 0
}

// Wire is the lossless serialized form of a BigFloat, matching the
// worker protocol's BigFloat wire shape (spec §6): a decimal string
// paired with the precision-bit count used to parse it.
type Wire struct {
	Value         string `json:"value" yaml:"value"`
	PrecisionBits uint   `json:"precision_bits" yaml:"precision_bits"`
}

// ToWire serializes a for transmission.
func (a BigFloat) ToWire() Wire {
	return Wire{Value: a.String(), PrecisionBits: a.prec}
}

// FromWire deserializes a wire value back into a BigFloat, reproducing
// the original value bit-exactly provided it was produced by ToWire at
// the same precision.
func FromWire(w Wire) (BigFloat, error) {
	return FromString(w.Value, w.PrecisionBits)
}
