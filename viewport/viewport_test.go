// SPDX-License-Identifier: Unlicense OR MIT

package viewport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepzoom/mandelcore/f32"
)

func TestRequiredPrecisionFloor(t *testing.T) {
	v, err := New("-0.5", "0", "4", "3", 64)
	require.NoError(t, err)
	bits := RequiredPrecision(v, CanvasSize{W: 800, H: 600})
	require.GreaterOrEqual(t, bits, uint(64))
}

func TestRequiredPrecisionGrowsWithZoom(t *testing.T) {
	shallow, _ := New("-0.5", "0", "4", "3", 64)
	deep, _ := New("-0.5", "0", "1e-270", "7.5e-271", 1200)
	bShallow := RequiredPrecision(shallow, CanvasSize{W: 800, H: 600})
	bDeep := RequiredPrecision(deep, CanvasSize{W: 800, H: 600})
	require.Greater(t, bDeep, bShallow)
	require.GreaterOrEqual(t, bDeep, uint(1000))
}

func TestRoundTripCoordinates(t *testing.T) {
	widths := []string{"4", "0.4", "4e-5", "4e-15", "4e-50", "4e-100", "4e-300"}
	for _, w := range widths {
		bits := uint(2000)
		v, err := New("-0.5", "0", w, w, bits)
		require.NoError(t, err)
		canvas := CanvasSize{W: 800, H: 600}
		reqBits := RequiredPrecision(v, canvas)
		if reqBits > bits {
			bits = reqBits
			v, err = New("-0.5", "0", w, w, bits)
			require.NoError(t, err)
		}
		for _, px := range []float64{0, 400, 799} {
			for _, py := range []float64{0, 300, 599} {
				fx, fy := PixelToFractal(px, py, v, canvas, bits)
				backX, backY := FractalToPixel(fx, fy, v, canvas)
				require.InDelta(t, px, backX, 1e-6, "width=%s px=%v", w, px)
				require.InDelta(t, py, backY, 1e-6, "width=%s py=%v", w, py)
			}
		}
	}
}

func TestDragLinearity(t *testing.T) {
	v, err := New("-0.5", "0", "4", "3", 128)
	require.NoError(t, err)
	canvas := CanvasSize{W: 800, H: 600}
	prec := RequiredPrecision(v, canvas)
	v = v.WithPrecision(prec)

	dx, dy := float32(37), float32(-19)
	affine := DragBy(f32.Pt(dx, dy))
	v2, err := ApplyPixelTransformToViewport(v, affine, canvas, prec)
	require.NoError(t, err)

	expectedShiftX := float64(dx) * v.Width.ToFloat64() / float64(canvas.W)
	expectedShiftY := float64(dy) * v.Height.ToFloat64() / float64(canvas.H)

	gotShiftX := v2.CenterX.ToFloat64() - v.CenterX.ToFloat64()
	gotShiftY := v2.CenterY.ToFloat64() - v.CenterY.ToFloat64()

	require.InDelta(t, expectedShiftX, gotShiftX, 1e-9)
	require.InDelta(t, expectedShiftY, gotShiftY, 1e-9)
	// A pure drag never changes the extent.
	require.True(t, v2.Width.Eq(v.Width))
	require.True(t, v2.Height.Eq(v.Height))
}

func TestZoomInvariantAtCursor(t *testing.T) {
	v, err := New(
		"0.273000307495579097715",
		"0.005838718497531293679",
		"3.686e-270",
		"2.127e-270",
		1200,
	)
	require.NoError(t, err)
	canvas := CanvasSize{W: 773, H: 446}
	prec := RequiredPrecision(v, canvas)
	require.GreaterOrEqual(t, prec, uint(1026))
	v = v.WithPrecision(prec)

	cursor := f32.Pt(100, 100)
	beforeX, beforeY := PixelToFractal(100, 100, v, canvas, prec)

	affine := ZoomAround(cursor, 10)
	v2, err := ApplyPixelTransformToViewport(v, affine, canvas, prec)
	require.NoError(t, err)

	afterX, afterY := PixelToFractal(100, 100, v2, canvas, prec)
	diffX := afterX.Sub(beforeX).ToFloat64()
	diffY := afterY.Sub(beforeY).ToFloat64()
	require.False(t, math.IsNaN(diffX))
	require.False(t, math.IsNaN(diffY))
	require.Less(t, math.Abs(diffX), 1e-200)
	require.Less(t, math.Abs(diffY), 1e-200)

	// Zooming in must shrink the extent.
	require.Less(t, v2.Width.Cmp(v.Width), 0)
	require.Less(t, v2.Height.Cmp(v.Height), 0)
}
