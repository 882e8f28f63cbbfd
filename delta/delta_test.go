// SPDX-License-Identifier: Unlicense OR MIT

package delta

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepzoom/mandelcore/bigfloat"
	"github.com/deepzoom/mandelcore/compute"
	"github.com/deepzoom/mandelcore/orbit"
	"github.com/deepzoom/mandelcore/xfloat"
)

func nativeKernel() Kernel {
	return Kernel{ToScalar: func(f float64) xfloat.Scalar { return xfloat.Native(f) }}
}

func TestZeroDeltaCTracksReference(t *testing.T) {
	cRe, _ := bigfloat.FromString("-0.5", 64)
	cIm := bigfloat.Zero(64)
	o := orbit.Compute(cRe, cIm, 500)
	require.False(t, o.Escaped())

	k := nativeKernel()
	deltaC := xfloat.Complex{Re: xfloat.Native(0), Im: xfloat.Native(0)}
	result := k.Iterate(o, deltaC, 500, Tau, nil)

	require.False(t, result.Escaped)
	require.Equal(t, uint32(500), result.Iterations)
}

func TestEscapingDeltaMatchesDirectIteration(t *testing.T) {
	// Reference at a point that escapes quickly, delta also escapes.
	cRe, _ := bigfloat.FromString("1.0", 64)
	cIm := bigfloat.Zero(64)
	o := orbit.Compute(cRe, cIm, 20)
	require.True(t, o.Escaped())

	k := nativeKernel()
	deltaC := xfloat.Complex{Re: xfloat.Native(0), Im: xfloat.Native(0)}
	result := k.Iterate(o, deltaC, 20, Tau, nil)
	require.True(t, result.Escaped)
	want := directIterate(1.0, 0, 20)
	require.Equal(t, want.Iterations, result.Iterations)
}

// directIterate runs the full z -> z^2+c iteration natively, used as
// ground truth for comparison with the perturbation kernel at shallow
// zoom (spec §8 "delta iteration correctness").
func directIterate(cRe, cIm float64, maxIterations uint32) compute.Data {
	var zRe, zIm float64
	for n := uint32(0); n < maxIterations; n++ {
		normSq := zRe*zRe + zIm*zIm
		if normSq > EscapeRadiusSq {
			return compute.Data{Iterations: n, Escaped: true, FinalZNormSq: float32(normSq)}
		}
		newRe := zRe*zRe - zIm*zIm + cRe
		newIm := 2*zRe*zIm + cIm
		zRe, zIm = newRe, newIm
	}
	return compute.Data{Iterations: maxIterations}
}

func TestDeltaMatchesDirectIterationAtShallowZoom(t *testing.T) {
	refRe, refIm := -0.5, 0.0
	cRe, _ := bigfloat.FromString("-0.5", 64)
	cIm := bigfloat.Zero(64)
	o := orbit.Compute(cRe, cIm, 1000)

	cases := []struct{ dRe, dIm float64 }{
		{0.001, 0}, {0, 0.002}, {0.01, -0.01}, {-0.02, 0.015},
	}
	for _, c := range cases {
		k := nativeKernel()
		deltaC := xfloat.Complex{Re: xfloat.Native(c.dRe), Im: xfloat.Native(c.dIm)}
		got := k.Iterate(o, deltaC, 1000, Tau, nil)
		want := directIterate(refRe+c.dRe, refIm+c.dIm, 1000)

		if got.Glitched {
			continue // glitched pixels are allowed to diverge from ground truth
		}
		require.Equal(t, want.Escaped, got.Escaped, "dRe=%v dIm=%v", c.dRe, c.dIm)
		if want.Escaped && got.Escaped {
			require.InDelta(t, want.Iterations, got.Iterations, 1, "dRe=%v dIm=%v", c.dRe, c.dIm)
		}
	}
}
