// SPDX-License-Identifier: Unlicense OR MIT

package bla

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepzoom/mandelcore/bigfloat"
	"github.com/deepzoom/mandelcore/orbit"
	"github.com/deepzoom/mandelcore/xfloat"
)

func nativeScalar(f float64) xfloat.Scalar { return xfloat.Native(f) }

func TestLevel0EntryCount(t *testing.T) {
	cRe, _ := bigfloat.FromString("-0.5", 64)
	cIm := bigfloat.Zero(64)
	o := orbit.Compute(cRe, cIm, 200)

	table := NewLevel0(o, xfloat.Native(1e-6), nativeScalar, 1.0/(1<<53))
	require.Len(t, table.Levels[0], o.Len())
}

func TestBuildLevelsHalvesEachTime(t *testing.T) {
	cRe, _ := bigfloat.FromString("-0.5", 64)
	cIm := bigfloat.Zero(64)
	o := orbit.Compute(cRe, cIm, 256)

	table := NewLevel0(o, xfloat.Native(1e-6), nativeScalar, 1.0/(1<<53))
	table.BuildLevels()

	require.Greater(t, len(table.Levels), 1)
	for i := 1; i < len(table.Levels); i++ {
		require.LessOrEqual(t, len(table.Levels[i]), len(table.Levels[i-1])/2+1)
	}
}

// TestAverageSkipLengthExceedsOne guards against the max_skip=1
// regression flagged in spec §9: a BLA table at deep zoom must
// actually skip iterations, not degrade to one-level lookups.
func TestAverageSkipLengthExceedsOne(t *testing.T) {
	cRe, _ := bigfloat.FromString("-0.7436438870371500", 256)
	cIm, _ := bigfloat.FromString("0.1318259042053300", 256)
	o := orbit.Compute(cRe, cIm, 2000)
	require.False(t, o.Escaped())

	dcMax := xfloat.FromFloat64(1e-270)
	table := NewLevel0(o, dcMax, func(f float64) xfloat.Scalar { return xfloat.FromFloat64(f) }, 1.0/(1<<53))
	table.BuildLevels()

	require.Greater(t, len(table.Levels), 1, "a deep-zoom table with only level 0 silently reproduces the max_skip=1 bug")

	deltaZ := xfloat.Complex{Re: xfloat.FromFloat64(1e-275), Im: xfloat.FromFloat64(1e-275)}
	var totalSkip, lookups int
	for m := 0; m < o.Len()-1; m += 17 {
		if e, ok := table.Lookup(m, deltaZ); ok {
			totalSkip += int(e.L)
			lookups++
		}
	}
	require.Greater(t, lookups, 0)
	avgSkip := float64(totalSkip) / float64(lookups)
	require.Greater(t, avgSkip, 1.0, "average BLA skip length must exceed 1 at deep zoom")
}

// TestLookupUsesBlockAlignedEntry guards against indexing entries[m]
// directly at every level: level k's entries are block-aligned (entry
// i covers original indices [i*2^k, i*2^k+2^k-1]), so the entry for m
// at level k lives at m>>k, not at raw position m. A reference orbit
// of length 16 builds levels with block sizes 1, 2, 4, 8, 16; m=5 is
// not aligned to any block boundary above level 0.
func TestLookupUsesBlockAlignedEntry(t *testing.T) {
	cRe, _ := bigfloat.FromString("-0.5", 64)
	cIm := bigfloat.Zero(64)
	o := orbit.Compute(cRe, cIm, 16)
	require.False(t, o.Escaped())

	table := NewLevel0(o, xfloat.Native(1e-6), nativeScalar, 1.0/(1<<53))
	table.BuildLevels()
	require.GreaterOrEqual(t, len(table.Levels), 3)

	// Reference index 0 always carries Z_0 = 0, so R = eps*|Z_0| = 0
	// there; any block covering index 0 (the top two levels, here)
	// degenerates to a zero validity radius and can never match. m=5's
	// level-2 block [4,7] excludes index 0, so it is the highest level
	// a zero-magnitude deltaZ can still validate against.
	const m = 5
	const level = 2
	want := table.Levels[level][m>>level]

	deltaZ := xfloat.Complex{Re: xfloat.Native(0), Im: xfloat.Native(0)}
	got, ok := table.Lookup(m, deltaZ)
	require.True(t, ok)
	require.Equal(t, want.L, got.L, "Lookup must select the block actually covering m, not entries[m]")
	require.Equal(t, want.A, got.A)
	require.Equal(t, want.B, got.B)
	require.Equal(t, uint32(1<<level), got.L)
}

func TestLookupFallsBackWhenNoLevelValid(t *testing.T) {
	cRe, _ := bigfloat.FromString("-0.5", 64)
	cIm := bigfloat.Zero(64)
	o := orbit.Compute(cRe, cIm, 64)

	table := NewLevel0(o, xfloat.Native(1e-6), nativeScalar, 1.0/(1<<53))
	table.BuildLevels()

	huge := xfloat.Complex{Re: xfloat.Native(1e10), Im: xfloat.Native(1e10)}
	_, ok := table.Lookup(0, huge)
	require.False(t, ok)
}
