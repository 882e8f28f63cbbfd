// SPDX-License-Identifier: Unlicense OR MIT

package colorize

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepzoom/mandelcore/compute"
	"github.com/deepzoom/mandelcore/internal/f32color"
)

func testPalette() Palette {
	return Palette{
		ID: "classic",
		Stops: []ColorStop{
			{Position: 0, Color: f32color.RGBA{R: 0, G: 0, B: 0, A: 1}, MidpointBias: 0.5},
			{Position: 0.5, Color: f32color.RGBA{R: 0, G: 0, B: 1, A: 1}, MidpointBias: 0.5},
			{Position: 1, Color: f32color.RGBA{R: 1, G: 1, B: 1, A: 1}, MidpointBias: 0.5},
		},
	}
}

func sampleData() []compute.Data {
	return []compute.Data{
		{Iterations: 500, Escaped: false},
		{Iterations: 10, Escaped: true, FinalZNormSq: 70000},
		{Iterations: 3, Escaped: true, FinalZNormSq: 65600},
		{Iterations: 0, Glitched: true},
	}
}

func TestColorizerPurity(t *testing.T) {
	req := Request{
		Data:    sampleData(),
		Width:   2,
		Height:  2,
		Palette: testPalette(),
		Curve:   IdentityCurve(),
		Flags:   Flags{Smooth: true},
	}
	a := Run(req)
	b := Run(req)
	require.Equal(t, a, b)
}

func TestGlitchedPixelsUseGlitchColor(t *testing.T) {
	glitchColor := color.NRGBA{R: 255, G: 0, B: 255, A: 255}
	req := Request{
		Data:        sampleData(),
		Width:       2,
		Height:      2,
		Palette:     testPalette(),
		Curve:       IdentityCurve(),
		Flags:       Flags{Smooth: true},
		GlitchColor: glitchColor,
	}
	out := Run(req)
	require.Equal(t, glitchColor, out[3])
}

func TestHistogramEqualizationDoesNotPanic(t *testing.T) {
	req := Request{
		Data:    sampleData(),
		Width:   2,
		Height:  2,
		Palette: testPalette(),
		Curve:   IdentityCurve(),
		Flags:   Flags{Smooth: true, Histogram: true},
	}
	require.NotPanics(t, func() { Run(req) })
}

func TestPaletteBuildSingleStop(t *testing.T) {
	p := Palette{Stops: []ColorStop{{Position: 0, Color: f32color.RGBA{R: 1, A: 1}}}}
	lutTable := p.Build()
	require.Equal(t, f32color.RGBA{R: 1, A: 1}, lutTable[0])
	require.Equal(t, f32color.RGBA{R: 1, A: 1}, lutTable[lutSize-1])
}

func TestOklabRoundTrip(t *testing.T) {
	r, g, b := 0.2, 0.6, 0.9
	lab := linearToOklab(r, g, b)
	r2, g2, b2 := oklabToLinear(lab)
	require.InDelta(t, r, r2, 1e-6)
	require.InDelta(t, g, g2, 1e-6)
	require.InDelta(t, b, b2, 1e-6)
}
