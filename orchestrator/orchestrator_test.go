// SPDX-License-Identifier: Unlicense OR MIT

package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/deepzoom/mandelcore/colorize"
	"github.com/deepzoom/mandelcore/compute"
	"github.com/deepzoom/mandelcore/delta"
	"github.com/deepzoom/mandelcore/internal/f32color"
	"github.com/deepzoom/mandelcore/orbit"
	"github.com/deepzoom/mandelcore/viewport"
	"github.com/deepzoom/mandelcore/xfloat"
)

// deltaCFor projects the fractal-space offset between pixel (px, py)
// and the viewport's reference center into a native xfloat.Complex,
// the same conversion tile.Pool's shallow-zoom path performs.
func deltaCFor(px, py float64, v viewport.Viewport, canvas viewport.CanvasSize, prec uint) xfloat.Complex {
	fx, fy := viewport.PixelToFractal(px, py, v, canvas, prec)
	dRe := fx.Sub(v.CenterX).ToFloat64()
	dIm := fy.Sub(v.CenterY).ToFloat64()
	return xfloat.Complex{Re: xfloat.Native(dRe), Im: xfloat.Native(dIm)}
}

func nativeKernel() delta.Kernel {
	return delta.Kernel{ToScalar: func(f float64) xfloat.Scalar { return xfloat.Native(f) }}
}

// TestDefaultViewPixelClassification reproduces spec §8 end-to-end
// scenario 1: center (-0.5, 0), width 4.0, height 3.0, 800x600 canvas,
// 500 base iterations. The canvas-center pixel sits on the reference
// point itself (interior); a pixel near real ≈ 1.25 escapes within two
// iterations.
func TestDefaultViewPixelClassification(t *testing.T) {
	const prec = 64
	v, err := viewport.New("-0.5", "0", "4", "3", prec)
	require.NoError(t, err)
	canvas := viewport.CanvasSize{W: 800, H: 600}

	o := orbit.Compute(v.CenterX, v.CenterY, 500)
	require.False(t, o.Escaped())

	k := nativeKernel()

	interior := k.Iterate(o, deltaCFor(400, 300, v, canvas, prec), 500, delta.Tau, nil)
	require.False(t, interior.Escaped)
	require.Equal(t, uint32(500), interior.Iterations)

	exterior := k.Iterate(o, deltaCFor(750, 300, v, canvas, prec), 500, delta.Tau, nil)
	require.True(t, exterior.Escaped)
	require.LessOrEqual(t, exterior.Iterations, uint32(2))
}

func samplePaletteA() colorize.Palette {
	return colorize.Palette{
		ID: "classic",
		Stops: []colorize.ColorStop{
			{Position: 0, Color: f32color.RGBA{R: 0, G: 0, B: 0, A: 1}, MidpointBias: 0.5},
			{Position: 1, Color: f32color.RGBA{R: 1, G: 1, B: 1, A: 1}, MidpointBias: 0.5},
		},
	}
}

func samplePaletteB() colorize.Palette {
	return colorize.Palette{
		ID: "fire",
		Stops: []colorize.ColorStop{
			{Position: 0, Color: f32color.RGBA{R: 0, G: 0, B: 0, A: 1}, MidpointBias: 0.5},
			{Position: 1, Color: f32color.RGBA{R: 1, G: 0, B: 0, A: 1}, MidpointBias: 0.5},
		},
	}
}

// TestColorizerSwapWithoutRecompute reproduces spec §8 end-to-end
// scenario 6: given an already-computed ComputeData buffer, changing
// the palette is a colorize.Run call against the same buffer, not a
// new tile pass. No Pool, no Orchestrator.Render, and no tile worker
// is touched, and the swap completes well under the 50ms budget.
func TestColorizerSwapWithoutRecompute(t *testing.T) {
	data := make([]compute.Data, 2048*2048/64) // 1/64 of a 2048x2048 canvas
	for i := range data {
		data[i] = compute.Data{Iterations: uint32(i % 500), Escaped: i%7 != 0, FinalZNormSq: 70000}
	}

	req := colorize.Request{
		Data:    data,
		Width:   64,
		Height:  len(data) / 64,
		Palette: samplePaletteA(),
		Curve:   colorize.IdentityCurve(),
		Flags:   colorize.Flags{Smooth: true},
	}

	start := time.Now()
	before := colorize.Run(req)
	req.Palette = samplePaletteB()
	after := colorize.Run(req)
	elapsed := time.Since(start)

	require.Less(t, elapsed, 50*time.Millisecond)
	require.NotEqual(t, before, after, "palette swap must change output without touching the input buffer")
	require.Len(t, after, len(data))
}
