// SPDX-License-Identifier: Unlicense OR MIT

// Package viewport represents the fractal-space rectangle under
// exploration and the coordinate transforms between canvas pixels and
// fractal-plane points. There is deliberately no zoom scalar: at
// magnifications beyond a native float's range, width and height
// (held as bigfloat.BigFloat) are the only representation of "how far
// in" the viewport is.
package viewport

import (
	"fmt"
	"math"

	"github.com/deepzoom/mandelcore/bigfloat"
	"github.com/deepzoom/mandelcore/f32"
)

// ReferenceWidth is the width, in fractal-plane units, of the
// classic default Mandelbrot view (center -0.5, width 4, height 3).
// required_precision uses it as the scale against which the current
// viewport's magnification is measured.
const ReferenceWidth = 4.0

// minPrecisionBits is the floor required_precision never returns
// below, regardless of zoom depth (spec §4.2).
const minPrecisionBits = 64

// safetyMarginBits pads the computed precision to absorb rounding in
// intermediate arithmetic (subtraction of nearly equal values, BLA
// merges) before it can erode the bits that actually distinguish
// adjacent pixels.
const safetyMarginBits = 32

// CanvasSize is the pixel dimensions of the render target.
type CanvasSize struct {
	W, H int
}

// Viewport is a fractal-plane rectangle: a center point and a
// width/height, all sharing one precision.
type Viewport struct {
	CenterX, CenterY bigfloat.BigFloat
	Width, Height    bigfloat.BigFloat
}

// New builds a Viewport from decimal strings at the given precision.
// Returns an error if any field fails to parse or if width/height are
// not strictly positive.
func New(centerX, centerY, width, height string, bits uint) (Viewport, error) {
	cx, err := bigfloat.FromString(centerX, bits)
	if err != nil {
		return Viewport{}, fmt.Errorf("viewport: center_x: %w", err)
	}
	cy, err := bigfloat.FromString(centerY, bits)
	if err != nil {
		return Viewport{}, fmt.Errorf("viewport: center_y: %w", err)
	}
	w, err := bigfloat.FromString(width, bits)
	if err != nil {
		return Viewport{}, fmt.Errorf("viewport: width: %w", err)
	}
	h, err := bigfloat.FromString(height, bits)
	if err != nil {
		return Viewport{}, fmt.Errorf("viewport: height: %w", err)
	}
	v := Viewport{CenterX: cx, CenterY: cy, Width: w, Height: h}
	if err := v.Validate(); err != nil {
		return Viewport{}, err
	}
	return v, nil
}

// Validate checks the invariants of spec §3: positive extents and a
// shared precision across all four coordinates.
func (v Viewport) Validate() error {
	if v.Width.Sign() <= 0 {
		return fmt.Errorf("viewport: width must be > 0, got %s", v.Width.String())
	}
	if v.Height.Sign() <= 0 {
		return fmt.Errorf("viewport: height must be > 0, got %s", v.Height.String())
	}
	p := v.CenterX.PrecisionBits()
	if v.CenterY.PrecisionBits() != p || v.Width.PrecisionBits() != p || v.Height.PrecisionBits() != p {
		return fmt.Errorf("viewport: coordinates do not share a precision: cx=%d cy=%d w=%d h=%d",
			v.CenterX.PrecisionBits(), v.CenterY.PrecisionBits(), v.Width.PrecisionBits(), v.Height.PrecisionBits())
	}
	return nil
}

// PrecisionBits returns the shared precision of v's coordinates.
func (v Viewport) PrecisionBits() uint {
	return v.CenterX.PrecisionBits()
}

// WithPrecision returns a copy of v with all four coordinates raised
// (or lowered) to a new bit precision. Raising is always lossless; the
// Orchestrator only ever raises precision across a session's lifetime
// of successive zooms.
func (v Viewport) WithPrecision(bits uint) Viewport {
	if v.PrecisionBits() == bits {
		return v
	}
	return Viewport{
		CenterX: v.CenterX.WithPrecisionLossless(bits),
		CenterY: v.CenterY.WithPrecisionLossless(bits),
		Width:   v.Width.WithPrecisionLossless(bits),
		Height:  v.Height.WithPrecisionLossless(bits),
	}
}

// RequiredPrecision computes the minimum bit precision so that
// adjacent pixels in canvas map to distinguishable fractal
// coordinates, per spec §3's formula. Always at least 64 bits.
func RequiredPrecision(v Viewport, canvas CanvasSize) uint {
	minDim := v.Width
	if v.Height.Cmp(minDim) < 0 {
		minDim = v.Height
	}
	minDimF := minDim.ToFloat64()
	if minDimF <= 0 || math.IsInf(minDimF, 0) || math.IsNaN(minDimF) {
		// minDim underflowed float64 range entirely; fall back to the
		// BigFloat log2 approximation, which stays accurate at any
		// exponent.
		log10Mag := (math.Log2(ReferenceWidth) - minDim.Log2Approx()) / math.Log2(10)
		return precisionFromLog10Mag(log10Mag)
	}
	log10Mag := math.Log10(ReferenceWidth / minDimF)
	return precisionFromLog10Mag(log10Mag)
}

func precisionFromLog10Mag(log10Mag float64) uint {
	decimalPlaces := math.Max(30, math.Ceil(log10Mag*2.5+20))
	bits := uint(math.Ceil(decimalPlaces*math.Log2(10))) + safetyMarginBits
	if bits < minPrecisionBits {
		return minPrecisionBits
	}
	return bits
}

// FitToCanvas expands natural's width or height, keeping its center
// fixed and never shrinking either dimension, so its aspect ratio
// matches the canvas's.
func FitToCanvas(natural Viewport, canvas CanvasSize) Viewport {
	prec := natural.PrecisionBits()
	canvasAspect := bigfloat.WithPrecision(float64(canvas.W)/float64(canvas.H), prec)
	viewportAspect := natural.Width.Div(natural.Height)

	v := natural
	if viewportAspect.Cmp(canvasAspect) < 0 {
		// Viewport is relatively taller than the canvas: widen it.
		v.Width = natural.Height.Mul(canvasAspect)
	} else if viewportAspect.Cmp(canvasAspect) > 0 {
		// Viewport is relatively wider than the canvas: heighten it.
		v.Height = natural.Width.Div(canvasAspect)
	}
	return v
}

// PixelToFractal maps a canvas pixel to its fractal-plane coordinate.
// The only native-float arithmetic performed is on the pixel offset
// itself (px - canvas_w/2); the per-pixel multiplier and all
// subsequent arithmetic stay in BigFloat, per spec §4.2.
func PixelToFractal(px, py float64, v Viewport, canvas CanvasSize, prec uint) (bigfloat.BigFloat, bigfloat.BigFloat) {
	cx, cy := v.CenterX, v.CenterY
	width, height := v.Width, v.Height
	if cx.PrecisionBits() != prec {
		cx = cx.WithPrecisionLossless(prec)
		cy = cy.WithPrecisionLossless(prec)
		width = width.WithPrecisionLossless(prec)
		height = height.WithPrecisionLossless(prec)
	}
	canvasW := bigfloat.WithPrecision(float64(canvas.W), prec)
	canvasH := bigfloat.WithPrecision(float64(canvas.H), prec)

	xMultiplier := width.Div(canvasW)
	yMultiplier := height.Div(canvasH)

	dpx := bigfloat.WithPrecision(px-float64(canvas.W)/2, prec)
	dpy := bigfloat.WithPrecision(py-float64(canvas.H)/2, prec)

	fx := cx.Add(dpx.Mul(xMultiplier))
	fy := cy.Add(dpy.Mul(yMultiplier))
	return fx, fy
}

// FractalToPixel is the inverse of PixelToFractal, used only for
// display annotation. The offset from the center and its ratio to the
// viewport extent are computed in BigFloat; only that ratio and the
// resulting pixel coordinate are native float64.
func FractalToPixel(fx, fy bigfloat.BigFloat, v Viewport, canvas CanvasSize) (float64, float64) {
	px := fx.Sub(v.CenterX).Div(v.Width).ToFloat64()*float64(canvas.W) + float64(canvas.W)/2
	py := fy.Sub(v.CenterY).Div(v.Height).ToFloat64()*float64(canvas.H) + float64(canvas.H)/2
	return px, py
}

// ApplyPixelTransformToViewport applies a pixel-space affine transform
// — the pointer-interaction layer's drag/pinch output — to v, producing
// the new viewport that keeps the fractal point initially under the
// cursor under the cursor after the transform.
//
// The transform composes as "new viewport's pixel-to-fractal map equals
// the old map applied after affine": fractal_new(q) = fractal_old(affine(q))
// for every canvas pixel q. Concretely this means: the new center is the
// fractal point the old viewport showed at affine(canvas_center), and
// each axis's extent scales by that axis's linear factor in affine. This
// is the convention under which a pure Offset(Δp) shifts every fractal
// coordinate by exactly (Δpx·width/canvas_w, Δpy·height/canvas_h) — the
// drag-linearity invariant of spec §8 — and a Scale around a fixed point
// leaves that point's fractal coordinate unchanged — the zoom invariant.
func ApplyPixelTransformToViewport(v Viewport, affine f32.Affine2D, canvas CanvasSize, prec uint) (Viewport, error) {
	v = v.WithPrecision(prec)
	centerPx := f32.Pt(float32(canvas.W)/2, float32(canvas.H)/2)
	srcPx := affine.Transform(centerPx)
	newCenterX, newCenterY := PixelToFractal(float64(srcPx.X), float64(srcPx.Y), v, canvas, prec)

	a, b, d, e, _, _ := affineLinearPart(affine)
	sx := math.Hypot(float64(a), float64(d))
	sy := math.Hypot(float64(b), float64(e))
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	newWidth := v.Width.Mul(bigfloat.WithPrecision(sx, prec))
	newHeight := v.Height.Mul(bigfloat.WithPrecision(sy, prec))

	out := Viewport{CenterX: newCenterX, CenterY: newCenterY, Width: newWidth, Height: newHeight}
	if err := out.Validate(); err != nil {
		return Viewport{}, err
	}
	return out, nil
}

// affineLinearPart returns the 2x2 linear part (a, b, d, e) of affine,
// followed by its translation (c, f).
func affineLinearPart(affine f32.Affine2D) (a, b, d, e, c, f float32) {
	a, b, c, d, e, f = affine.Elems()
	return
}

// ZoomAround returns the affine transform the pointer-interaction layer
// would emit for a pinch/scroll zoom of factor around pixel origin. A
// factor above 1 zooms in: ApplyPixelTransformToViewport divides the
// viewport's extent by factor while keeping origin's fractal point fixed.
func ZoomAround(origin f32.Point, factor float64) f32.Affine2D {
	k := float32(1 / factor)
	return f32.Affine2D{}.Scale(origin, f32.Pt(k, k))
}

// DragBy returns the affine transform for a pixel-space drag of delta.
func DragBy(delta f32.Point) f32.Affine2D {
	return f32.Affine2D{}.Offset(delta)
}
