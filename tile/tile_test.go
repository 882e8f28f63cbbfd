// SPDX-License-Identifier: Unlicense OR MIT

package tile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepzoom/mandelcore/bigfloat"
	"github.com/deepzoom/mandelcore/orbit"
)

func TestSizeForMagnitudeStepsDown(t *testing.T) {
	require.Equal(t, 256, SizeForMagnitude(0))
	require.Equal(t, 192, SizeForMagnitude(2))
	require.Equal(t, 128, SizeForMagnitude(4))
	require.Equal(t, 96, SizeForMagnitude(7))
	require.Equal(t, 64, SizeForMagnitude(12))
	require.Equal(t, 32, SizeForMagnitude(50))
}

func TestGenerateFirstTileNearCenter(t *testing.T) {
	prec := uint(64)
	cx := bigfloat.WithPrecision(-0.5, prec)
	cy := bigfloat.WithPrecision(0, prec)
	step := bigfloat.WithPrecision(0.005, prec)

	tiles := Generate(CanvasSize{W: 800, H: 600}, 64, cx, cy, cx, cy, step)
	require.NotEmpty(t, tiles)

	first := tiles[0]
	dx := float64(first.Rect.X+first.Rect.W/2) - 400
	dy := float64(first.Rect.Y+first.Rect.H/2) - 300
	dist := dx*dx + dy*dy
	require.LessOrEqual(t, dist, 50.0*50.0, "first tile center=(%d,%d) too far from canvas center", first.Rect.X, first.Rect.Y)
}

func TestGenerateMonotonicPriority(t *testing.T) {
	prec := uint(64)
	cx := bigfloat.WithPrecision(-0.5, prec)
	cy := bigfloat.WithPrecision(0, prec)
	step := bigfloat.WithPrecision(0.005, prec)

	tiles := Generate(CanvasSize{W: 256, H: 256}, 64, cx, cy, cx, cy, step)
	for i := 1; i < len(tiles); i++ {
		require.LessOrEqual(t, tiles[i-1].Priority, tiles[i].Priority)
	}
}

func TestPoolRunCompletesAllTiles(t *testing.T) {
	prec := uint(64)
	cRe, _ := bigfloat.FromString("-0.5", prec)
	cIm := bigfloat.Zero(prec)
	o := orbit.Compute(cRe, cIm, 100)

	step := bigfloat.WithPrecision(0.01, prec)
	tiles := Generate(CanvasSize{W: 64, H: 64}, 32, cRe, cIm, cRe, cIm, step)

	pool := &Pool{Concurrency: 4, MaxIterations: 100, Tau: 1e-6, Orbit: o}
	results, err := pool.Run(context.Background(), tiles)
	require.NoError(t, err)
	require.Len(t, results, len(tiles))
	require.EqualValues(t, len(tiles), pool.Completed())
}

func TestPoolRunRespectsCancellation(t *testing.T) {
	prec := uint(64)
	cRe, _ := bigfloat.FromString("-0.5", prec)
	cIm := bigfloat.Zero(prec)
	o := orbit.Compute(cRe, cIm, 50)

	step := bigfloat.WithPrecision(0.01, prec)
	tiles := Generate(CanvasSize{W: 256, H: 256}, 32, cRe, cIm, cRe, cIm, step)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pool := &Pool{Concurrency: 2, MaxIterations: 50, Tau: 1e-6, Orbit: o}
	_, err := pool.Run(ctx, tiles)
	require.Error(t, err)
}
