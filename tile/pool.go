// SPDX-License-Identifier: Unlicense OR MIT

package tile

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/deepzoom/mandelcore/bla"
	"github.com/deepzoom/mandelcore/compute"
	"github.com/deepzoom/mandelcore/delta"
	"github.com/deepzoom/mandelcore/orbit"
	"github.com/deepzoom/mandelcore/xfloat"
)

var log = logrus.WithField("component", "tile")

// Result is the worker-side response to one Tile, mirroring §6's
// TileDone wire message.
type Result struct {
	TileID    int
	Pixels    []compute.Data
	ElapsedMs int64
}

// Pool runs a fixed number of worker goroutines consuming tiles from a
// shared job channel, using errgroup for structured fan-out so the
// first worker error (or context cancellation) stops the rest instead
// of leaking goroutines — the x/sync/errgroup idiom named in SPEC_FULL
// §4.10, used here rather than the teacher's own job-channel-plus-
// plain-WaitGroup style because tile errors must actually propagate.
type Pool struct {
	Concurrency int
	MaxIterations uint32
	Tau           float64
	Orbit         *orbit.ReferenceOrbit
	BLA           *bla.Table

	// ToScalar is the Scalar constructor the Orchestrator chose for this
	// session's strategy. When BLA is non-nil, computeTile uses it
	// exclusively instead of its own per-tile exponent heuristic: a BLA
	// table's entries are one fixed concrete Scalar type, and the kernel
	// iterating against it must build every delta value in that same
	// type or Entry.Apply's type assertions panic. When BLA is nil,
	// computeTile ignores ToScalar and falls back to its
	// exponent-threshold heuristic.
	ToScalar func(float64) xfloat.Scalar

	completed atomic.Int64
}

// Completed reports how many tiles this pool has finished, for the
// Orchestrator's progress reporting (spec §4.6 "Progress").
func (p *Pool) Completed() int64 {
	return p.completed.Load()
}

// nativeThresholdLog2 is the log2 magnitude below which native float64
// arithmetic is used for a tile's delta iteration, matching spec §4.4's
// "[-900, 900]" range (chosen so a handful of bits of margin remain
// before float64's ~1074-bit exponent range is actually exhausted).
const nativeThresholdLog2 = 900

// Run dispatches tiles across Concurrency workers and returns their
// results in completion order (nondeterministic, per spec §5). The
// context cancels the pool; any tile already executing completes
// uncanceled, but no further tiles are started once ctx.Err() != nil.
func (p *Pool) Run(ctx context.Context, tiles []Tile) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	jobs := make(chan Tile, len(tiles))
	results := make(chan Result, len(tiles))

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < p.Concurrency; w++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case t, ok := <-jobs:
					if !ok {
						return nil
					}
					results <- p.computeTile(t)
					p.completed.Add(1)
				}
			}
		})
	}

	for _, t := range tiles {
		jobs <- t
	}
	close(jobs)

	err := g.Wait()
	close(results)
	if err != nil && err != context.Canceled {
		return nil, err
	}

	out := make([]Result, 0, len(tiles))
	for r := range results {
		out = append(out, r)
	}
	return out, nil
}

func (p *Pool) computeTile(t Tile) Result {
	start := time.Now()
	pixels := make([]compute.Data, t.Rect.W*t.Rect.H)

	originReMant, originReExp := t.DeltaCOrigin[0].MantExp()
	originImMant, originImExp := t.DeltaCOrigin[1].MantExp()
	stepMant, stepExp := t.DeltaCStep.MantExp()

	var kernel delta.Kernel
	var originRe, originIm, step xfloat.Scalar
	var toPixelScalar func(float64) xfloat.Scalar
	useExtended := false

	if p.BLA != nil && p.ToScalar != nil {
		kernel = delta.Kernel{ToScalar: p.ToScalar}
		sample := p.ToScalar(1)
		originRe = xfloat.FromMantExp(originReMant, originReExp, sample)
		originIm = xfloat.FromMantExp(originImMant, originImExp, sample)
		step = xfloat.FromMantExp(stepMant, stepExp, sample)
		toPixelScalar = p.ToScalar
	} else {
		// Either component underflowing or overflowing native range is
		// enough to require the extended path, so check the extremes in
		// both directions rather than just one component's exponent.
		minExp := float64(minInt(minInt(originReExp, originImExp), stepExp))
		maxExp := float64(maxInt(maxInt(originReExp, originImExp), stepExp))
		useExtended = minExp < -nativeThresholdLog2 || maxExp > nativeThresholdLog2

		if useExtended {
			kernel = delta.Kernel{ToScalar: func(f float64) xfloat.Scalar { return xfloat.FromFloat64(f) }}
		} else {
			kernel = delta.Kernel{ToScalar: func(f float64) xfloat.Scalar { return xfloat.Native(f) }}
		}

		// originRe/originIm are the tile origin projected into the chosen
		// representation; useExtended tiles keep the BigFloat's full
		// exponent range via xfloat.Float64 instead of rounding through
		// ToFloat64 (which would silently collapse a deep-zoom delta to 0).
		originRe = toDeltaScalar(useExtended, originReMant, originReExp)
		originIm = toDeltaScalar(useExtended, originImMant, originImExp)
		step = toDeltaScalar(useExtended, stepMant, stepExp)
		toPixelScalar = func(f float64) xfloat.Scalar { return toDeltaScalar(useExtended, f, 0) }
	}

	for py := 0; py < t.Rect.H; py++ {
		for px := 0; px < t.Rect.W; px++ {
			deltaC := xfloat.Complex{
				Re: originRe.Add(step.Mul(toPixelScalar(float64(px)))),
				Im: originIm.Add(step.Mul(toPixelScalar(float64(py)))),
			}
			pixels[py*t.Rect.W+px] = kernel.Iterate(p.Orbit, deltaC, p.MaxIterations, p.Tau, p.BLA)
		}
	}

	log.WithField("tile_id", t.ID).WithField("extended", useExtended).Debug("tile computed")
	return Result{TileID: t.ID, Pixels: pixels, ElapsedMs: time.Since(start).Milliseconds()}
}

// toDeltaScalar builds a Scalar from a (mantissa, exponent) pair already
// normalized the way BigFloat.MantExp and math.Frexp agree on (mantissa
// in [-1.0,-0.5] union [0.5,1.0), or exactly 0). The extended branch
// assigns the pair straight into xfloat.Float64's own (Mant, Exp)
// fields instead of routing through FromFloat64, which would require
// first collapsing the pair back into a native float64 and so reproduce
// exactly the underflow this function exists to avoid.
func toDeltaScalar(extended bool, mant float64, exp int) xfloat.Scalar {
	if !extended {
		return xfloat.Native(math.Ldexp(mant, exp))
	}
	return xfloat.Float64{Mant: mant, Exp: int32(exp)}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
