// SPDX-License-Identifier: Unlicense OR MIT

package orbit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepzoom/mandelcore/bigfloat"
)

func TestKnownInteriorPoint(t *testing.T) {
	cRe, err := bigfloat.FromString("-0.7436438870371500", 128)
	require.NoError(t, err)
	cIm, err := bigfloat.FromString("0.1318259042053300", 128)
	require.NoError(t, err)

	o := Compute(cRe, cIm, 1000)
	require.False(t, o.Escaped(), "known interior point escaped at index %d", o.EscapeIndex)
	require.Equal(t, 1000, o.Len())
}

func TestKnownExteriorPoint(t *testing.T) {
	cRe, err := bigfloat.FromString("-0.7436438870371400", 128)
	require.NoError(t, err)
	cIm, err := bigfloat.FromString("0.1318259042053300", 128)
	require.NoError(t, err)

	// This point lies just outside the set and needs a little over 3000
	// iterations to leave the escape radius.
	o := Compute(cRe, cIm, 4000)
	require.True(t, o.Escaped())
}

func TestOriginIsInterior(t *testing.T) {
	cRe := bigfloat.Zero(128)
	cIm := bigfloat.Zero(128)
	o := Compute(cRe, cIm, 500)
	require.False(t, o.Escaped())
	for _, z := range o.Z {
		require.Equal(t, 0.0, z.Re)
		require.Equal(t, 0.0, z.Im)
	}
}

func TestEscapesQuickly(t *testing.T) {
	cRe := bigfloat.WithPrecision(2, 64)
	cIm := bigfloat.WithPrecision(2, 64)
	o := Compute(cRe, cIm, 50)
	require.True(t, o.Escaped())
	require.LessOrEqual(t, o.EscapeIndex, 4)
}

func TestDeterministicAcrossRuns(t *testing.T) {
	cRe, _ := bigfloat.FromString("-0.5", 256)
	cIm, _ := bigfloat.FromString("0", 256)

	a := Compute(cRe, cIm, 200)
	b := Compute(cRe, cIm, 200)
	require.Equal(t, a.EscapeIndex, b.EscapeIndex)
	require.Equal(t, a.Z, b.Z)
	require.Equal(t, a.D, b.D)
}
