// SPDX-License-Identifier: Unlicense OR MIT

package xfloat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFloat32RoundTrip(t *testing.T) {
	for _, f := range []float64{1, -1, 0.5, 1e-200, -1e-250, 1e200} {
		x := FromFloat64F32(f)
		got := x.Float64()
		require.InEpsilon(t, f, got, 1e-6, "value %v", f)
	}
}

func TestFloat32AddMul(t *testing.T) {
	a := FromFloat64F32(3)
	b := FromFloat64F32(4)
	sum := a.Add(b).(Float32)
	require.InEpsilon(t, 7.0, sum.Float64(), 1e-6)
	prod := a.Mul(b).(Float32)
	require.InEpsilon(t, 12.0, prod.Float64(), 1e-6)
}

func TestFloat32UnderflowRange(t *testing.T) {
	// A magnitude that underflows float64 but is representable with an
	// extended exponent.
	a := Float32{Mant: 0.5, Exp: -1100}
	b := Float32{Mant: 0.5, Exp: -1100}
	prod := a.Mul(b).(Float32)
	require.Equal(t, int32(-2201), prod.Exp)
}

func TestDouble32PrecisionExceedsSingle(t *testing.T) {
	a := FromFloat64D32(1.0 / 3.0)
	got := a.Float64()
	require.InDelta(t, 1.0/3.0, got, 1e-9)
}

func TestDouble32AddAccumulatesLowBits(t *testing.T) {
	a := FromFloat64D32(1)
	tiny := FromFloat64D32(1e-10)
	sum := a.Add(tiny).(Double32)
	require.InDelta(t, 1+1e-10, sum.Float64(), 1e-12)
}

func TestComplexMulMatchesNative(t *testing.T) {
	cRe, cIm := 0.3, -0.7
	dRe, dIm := -0.2, 0.5
	c := Complex{Re: Native(cRe), Im: Native(cIm)}
	d := Complex{Re: Native(dRe), Im: Native(dIm)}
	got := c.Mul(d)
	wantRe := cRe*dRe - cIm*dIm
	wantIm := cRe*dIm + cIm*dRe
	require.InDelta(t, wantRe, got.Re.Float64(), 1e-12)
	require.InDelta(t, wantIm, got.Im.Float64(), 1e-12)
}

func TestComplexNormSq(t *testing.T) {
	c := Complex{Re: Native(3), Im: Native(4)}
	require.InDelta(t, 25.0, c.NormSq(), 1e-12)
}

func TestDouble64BeyondFloat64Precision(t *testing.T) {
	a := FromFloat64D64(1)
	b := Double64{Hi: 1e-20, Lo: 0, Exp: 0}
	sum := a.Add(b).(Double64)
	require.False(t, math.IsNaN(sum.Float64()))
	// 1 + 1e-20 rounds to 1 in float64; the low word must keep the 1e-20.
	require.InDelta(t, 1e-20, math.Ldexp(sum.Lo, int(sum.Exp)), 1e-30)
}

func TestCmpSurvivesFloat64Underflow(t *testing.T) {
	// Both magnitudes underflow float64 (< ~1e-308) but differ by a
	// factor of 2; Cmp must still order them correctly.
	small := Float64{Mant: 0.5, Exp: -1100}
	smaller := Float64{Mant: 0.5, Exp: -1101}
	require.Equal(t, 0.0, small.Float64())
	require.Equal(t, 0.0, smaller.Float64())
	require.True(t, Less(smaller, small))
	require.False(t, Less(small, smaller))
}

func TestNormSqScalarSurvivesUnderflow(t *testing.T) {
	c := Complex{Re: Float64{Mant: 0.5, Exp: -1100}, Im: Float64{}}
	normSq := c.NormSqScalar()
	require.NotEqual(t, 0.0, normSq.(Float64).Mant)
	require.Equal(t, 0.0, normSq.Float64())
}
