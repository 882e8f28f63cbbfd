// SPDX-License-Identifier: Unlicense OR MIT

// Package orchestrator implements the session lifecycle of spec §4.9:
// on every viewport change it cancels the outstanding session, selects
// a rendering strategy by zoom depth, builds a reference orbit and BLA
// table, generates tiles, dispatches them (CPU worker pool or GPU
// dispatcher), and hands completed ComputeData to the colorizer before
// blitting RGBA into the caller's canvas. Grounded on the same
// coordinator-thread design the reference corpus's own event loop uses
// (a single goroutine owns session state; work is fanned out and
// collected, never performed inline).
package orchestrator

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/deepzoom/mandelcore/bigfloat"
	"github.com/deepzoom/mandelcore/bla"
	"github.com/deepzoom/mandelcore/colorize"
	"github.com/deepzoom/mandelcore/compute"
	"github.com/deepzoom/mandelcore/config"
	"github.com/deepzoom/mandelcore/gpu"
	"github.com/deepzoom/mandelcore/orbit"
	"github.com/deepzoom/mandelcore/tile"
	"github.com/deepzoom/mandelcore/viewport"
	"github.com/deepzoom/mandelcore/xfloat"
)

var log = logrus.WithField("component", "orchestrator")

// PutPixels is the canvas surface callback of spec §6: the core writes
// RGBA pixels into a rectangular region of a surface of known
// dimensions.
type PutPixels func(x, y, w, h int, rgba []byte)

// Progress reports a session's tile completion counts and glitched-pixel
// count, exposed as a reactive value for the UI (spec §4.6). It carries
// no timing information.
type Progress struct {
	TilesCompleted int64
	TilesTotal     int64
	GlitchedPixels int64
}

// Fraction returns completed/total, or 1 if there is no work.
func (p Progress) Fraction() float64 {
	if p.TilesTotal == 0 {
		return 1
	}
	return float64(p.TilesCompleted) / float64(p.TilesTotal)
}

// Orchestrator owns the single live session and dispatches its work
// across a CPU worker pool and, when available, a GPU dispatcher.
type Orchestrator struct {
	PutPixels   PutPixels
	GPU         *gpu.Dispatcher // nil when no GPU is available (spec §7 error kind 3)
	Concurrency int             // CPU worker pool size; defaults to runtime.NumCPU()

	mu         sync.Mutex
	sessionSeq atomic.Int64
	current    *sessionState
}

type sessionState struct {
	id     int64
	cancel context.CancelFunc
}

// New builds an Orchestrator with a sensible default CPU concurrency.
func New(putPixels PutPixels) *Orchestrator {
	return &Orchestrator{PutPixels: putPixels, Concurrency: runtime.NumCPU()}
}

// Render runs one full session for vp/canvas/settings: it cancels
// whatever session is currently live, then builds and dispatches the
// new one. It blocks until the session completes, is superseded, or
// its context is canceled by the caller.
func (o *Orchestrator) Render(ctx context.Context, vp viewport.Viewport, canvas viewport.CanvasSize, cfg config.FractalConfig, settings config.RenderSettings) (Progress, error) {
	sessionCtx, cancel := context.WithCancel(ctx)
	id := o.sessionSeq.Add(1)

	o.mu.Lock()
	if o.current != nil {
		o.current.cancel()
	}
	o.current = &sessionState{id: id, cancel: cancel}
	o.mu.Unlock()
	defer cancel()

	entry := log.WithField("session_id", id)

	prec := viewport.RequiredPrecision(vp, canvas)
	vp = vp.WithPrecision(prec)

	log10Mag := requiredLog10Magnitude(vp)
	strategy := SelectStrategy(log10Mag)
	entry.WithField("strategy", strategy).WithField("log10_mag", log10Mag).Info("session strategy selected")

	maxIterations := settings.MaxIterationsForMagnitude(log10Mag)

	refOrbit := orbit.Compute(vp.CenterX, vp.CenterY, maxIterations)
	if err := sessionCtx.Err(); err != nil {
		return Progress{}, err
	}

	edge := tile.SizeForMagnitude(log10Mag)
	pixelStep := pixelStepFor(vp, canvas, prec)
	tiles := tile.Generate(tile.CanvasSize{W: canvas.W, H: canvas.H}, edge, vp.CenterX, vp.CenterY, vp.CenterX, vp.CenterY, pixelStep)

	var table *bla.Table
	toScalar := scalarConstructorFor(strategy)
	if strategy.UsesBLA() {
		table = bla.NewLevel0(refOrbit, dcMaxFor(vp, toScalar), toScalar, 1.0/(1<<53))
		table.BuildLevels()
	}

	if strategy == StrategyMidZoom && o.GPU != nil && o.GPU.IsInitialized() {
		data, err := o.renderOnGPU(refOrbit, table, tiles, canvas, maxIterations, settings, strategy)
		if err == nil {
			return o.finish(sessionCtx, canvas, settings, data, int64(len(tiles)), entry)
		}
		entry.WithError(err).Warn("gpu dispatch failed, falling back to cpu")
	}

	pool := &tile.Pool{
		Concurrency:   o.concurrency(),
		MaxIterations: maxIterations,
		Tau:           defaultTau,
		Orbit:         refOrbit,
		BLA:           table,
		ToScalar:      toScalar,
	}

	results, err := pool.Run(sessionCtx, tiles)
	if err != nil {
		return Progress{}, err
	}

	canvasData := make([]compute.Data, canvas.W*canvas.H)
	for _, r := range results {
		t := findTile(tiles, r.TileID)
		writeTileIntoCanvas(canvasData, canvas, t, r.Pixels)

		if !settings.Histogram {
			o.colorizeRegion(canvasData, canvas, t, settings)
		}
	}
	if settings.Histogram {
		o.colorizeRegion(canvasData, canvas, tile.PixelRect{X: 0, Y: 0, W: canvas.W, H: canvas.H}, settings)
	}

	return Progress{TilesCompleted: pool.Completed(), TilesTotal: int64(len(tiles)), GlitchedPixels: countGlitched(canvasData)}, nil
}

const defaultTau = 1e-6

func (o *Orchestrator) concurrency() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return runtime.NumCPU()
}

func (o *Orchestrator) finish(ctx context.Context, canvas viewport.CanvasSize, settings config.RenderSettings, data []compute.Data, tilesTotal int64, entry *logrus.Entry) (Progress, error) {
	if err := ctx.Err(); err != nil {
		return Progress{}, err
	}
	o.colorizeRegion(data, canvas, tile.PixelRect{X: 0, Y: 0, W: canvas.W, H: canvas.H}, settings)
	entry.Info("gpu session complete")
	return Progress{TilesCompleted: tilesTotal, TilesTotal: tilesTotal, GlitchedPixels: countGlitched(data)}, nil
}

// renderOnGPU packs tile-local reference orbits and dispatches a
// single GPU Frame covering the whole canvas, per spec §4.7's mid-zoom
// remedy.
func (o *Orchestrator) renderOnGPU(refOrbit *orbit.ReferenceOrbit, table *bla.Table, tiles []tile.Tile, canvas viewport.CanvasSize, maxIterations uint32, settings config.RenderSettings, strategy Strategy) ([]compute.Data, error) {
	if len(tiles) == 0 {
		return nil, fmt.Errorf("orchestrator: no tiles to dispatch")
	}
	packedOrbits, tileInfos := gpu.PackTileLocalOrbits(tiles, maxIterations)

	var blaSamples []gpu.ReferenceSample
	if table != nil {
		blaSamples = flattenBLA(table)
	}

	frame := gpu.Frame{
		CanvasWidth:    uint32(canvas.W),
		CanvasHeight:   uint32(canvas.H),
		MaxIterations:  maxIterations,
		EscapeRadiusSq: float32(orbit.EscapeRadiusSq),
		TauSq:          float32(defaultTau * defaultTau),
		TileSize:       uint32(tiles[0].Rect.W),
		TilesPerRow:    uint32((canvas.W + tiles[0].Rect.W - 1) / tiles[0].Rect.W),
		ReferenceOrbit: packedOrbits,
		BLATable:       blaSamples,
		Tiles:          tileInfos,
	}

	out, err := o.GPU.Dispatch(frame)
	if err != nil {
		return nil, err
	}
	return out.ToComputeData(), nil
}

func flattenBLA(table *bla.Table) []gpu.ReferenceSample {
	var out []gpu.ReferenceSample
	for _, level := range table.Levels {
		for _, e := range level {
			out = append(out, gpu.ReferenceSample{Re: float32(e.A.Re.Float64()), Im: float32(e.A.Im.Float64())})
		}
	}
	return out
}

func (o *Orchestrator) colorizeRegion(canvasData []compute.Data, canvas viewport.CanvasSize, rect tile.PixelRect, settings config.RenderSettings) {
	req := colorize.Request{
		Width:   rect.W,
		Height:  rect.H,
		Palette: buildPalette(settings.PaletteID),
		Curve:   colorize.IdentityCurve(),
		Flags: colorize.Flags{
			Smooth:    settings.Smooth,
			Histogram: settings.Histogram,
			Shading:   settings.Shading,
		},
		Lighting:    settings.Lighting,
		GlitchColor: color.NRGBA{R: 255, G: 0, B: 255, A: 255},
	}
	req.Data = extractRegion(canvasData, canvas, rect)

	pixels := colorize.Run(req)
	rgba := make([]byte, len(pixels)*4)
	for i, p := range pixels {
		rgba[i*4+0] = p.R
		rgba[i*4+1] = p.G
		rgba[i*4+2] = p.B
		rgba[i*4+3] = p.A
	}
	if o.PutPixels != nil {
		o.PutPixels(rect.X, rect.Y, rect.W, rect.H, rgba)
	}
}

func extractRegion(canvasData []compute.Data, canvas viewport.CanvasSize, rect tile.PixelRect) []compute.Data {
	out := make([]compute.Data, rect.W*rect.H)
	for y := 0; y < rect.H; y++ {
		srcOff := (rect.Y+y)*canvas.W + rect.X
		dstOff := y * rect.W
		copy(out[dstOff:dstOff+rect.W], canvasData[srcOff:srcOff+rect.W])
	}
	return out
}

func writeTileIntoCanvas(canvasData []compute.Data, canvas viewport.CanvasSize, t tile.Tile, pixels []compute.Data) {
	for y := 0; y < t.Rect.H; y++ {
		dstOff := (t.Rect.Y+y)*canvas.W + t.Rect.X
		srcOff := y * t.Rect.W
		copy(canvasData[dstOff:dstOff+t.Rect.W], pixels[srcOff:srcOff+t.Rect.W])
	}
}

func findTile(tiles []tile.Tile, id int) tile.Tile {
	for _, t := range tiles {
		if t.ID == id {
			return t
		}
	}
	return tile.Tile{}
}

func countGlitched(data []compute.Data) int64 {
	var n int64
	for _, d := range data {
		if d.Glitched {
			n++
		}
	}
	return n
}

// requiredLog10Magnitude computes log10(reference_width / viewport.width),
// the magnification spec §4.9's strategy table keys on.
func requiredLog10Magnitude(vp viewport.Viewport) float64 {
	widthF := vp.Width.ToFloat64()
	if widthF > 0 && !math.IsInf(widthF, 0) {
		return math.Log10(viewport.ReferenceWidth / widthF)
	}
	return (math.Log2(viewport.ReferenceWidth) - vp.Width.Log2Approx()) / math.Log2(10)
}

func pixelStepFor(vp viewport.Viewport, canvas viewport.CanvasSize, prec uint) bigfloat.BigFloat {
	canvasW := bigfloat.WithPrecision(float64(canvas.W), prec)
	return vp.Width.Div(canvasW)
}

// dcMaxFor computes the maximum δc magnitude any pixel in vp can
// experience: half the viewport's diagonal, the distance from the
// reference center to a corner. Derived entirely in BigFloat and
// handed to toScalar via MantExp so it never collapses through a
// native float64 en route: at deep zoom vp.Width itself has already
// underflowed float64's exponent range.
func dcMaxFor(vp viewport.Viewport, toScalar func(float64) xfloat.Scalar) xfloat.Scalar {
	prec := vp.PrecisionBits()
	half := bigfloat.WithPrecision(0.5, prec)
	halfW := vp.Width.Mul(half)
	halfH := vp.Height.Mul(half)
	diagSq := halfW.Mul(halfW).Add(halfH.Mul(halfH))
	diag, err := diagSq.Sqrt()
	if err != nil {
		// diagSq is a sum of squares and can never be negative; fall back
		// to the looser half-width bound if Sqrt somehow still rejects it.
		diag = halfW
	}
	mant, exp := diag.MantExp()
	return xfloat.FromMantExp(mant, exp, toScalar(1))
}

// scalarConstructorFor picks the xfloat.Scalar instantiation spec §9's
// capability-set abstraction calls for, by strategy.
func scalarConstructorFor(s Strategy) func(float64) xfloat.Scalar {
	switch {
	case s.UsesExtendedFloat() && s == StrategyExtreme:
		return func(f float64) xfloat.Scalar { return xfloat.FromFloat64D64(f) }
	case s.UsesExtendedFloat():
		return func(f float64) xfloat.Scalar { return xfloat.FromFloat64(f) }
	default:
		return func(f float64) xfloat.Scalar { return xfloat.Native(f) }
	}
}

func buildPalette(id string) colorize.Palette {
	return defaultPalettes()[id]
}
