// SPDX-License-Identifier: Unlicense OR MIT

// Package bla builds and queries the multi-level bilinear approximation
// table that lets the delta iteration kernel (package delta) skip many
// perturbation steps at once. See spec §4.5 and the design note in
// spec §9 on the max_skip=1 anti-pattern this package must never
// reintroduce: validity radii and dc_max are carried in xfloat.Scalar
// and compared with xfloat.Cmp throughout construction and lookup, so
// a validity radius underflowing float64 range never silently reads
// as zero.
package bla

import (
	"github.com/sirupsen/logrus"

	"github.com/deepzoom/mandelcore/orbit"
	"github.com/deepzoom/mandelcore/xfloat"
)

var log = logrus.WithField("component", "bla")

// Entry is one BlaEntry of spec §3: applying it replaces δz with
// A·δz + B·δc and advances the reference index by L. Valid iff
// |δz| < R (a magnitude, not a squared magnitude — see package doc).
type Entry struct {
	A, B xfloat.Complex
	R    xfloat.Scalar
	L    uint32
}

// Table is the ordered, multi-level collection of Entry values for one
// reference orbit, plus the dc_max it was built against. Levels[0][i]
// is the level-0 entry for reference iteration i; Levels[k][i] merges
// 2^k consecutive level-0 entries starting at reference iteration i*2^k.
type Table struct {
	Levels [][]Entry
	DCMax  xfloat.Scalar
}

// zero constructs the additive identity of the same concrete Scalar
// type as sample, so level construction stays within one numeric
// representation end to end.
func zero(sample xfloat.Scalar) xfloat.Scalar {
	return sample.Sub(sample)
}

// NewLevel0 builds the level-0 BLA table: one entry per reference
// iteration, `A = 2*Z_n, B = 1, r = eps*|Z_n|, l = 1`, where eps is the
// relative precision of the Scalar representation in use (2^-53 for
// double-precision-equivalent representations, 2^-24 for single).
func NewLevel0(o *orbit.ReferenceOrbit, dcMax xfloat.Scalar, toScalar func(float64) xfloat.Scalar, eps float64) *Table {
	n := o.Len()
	level0 := make([]Entry, n)
	epsScalar := toScalar(eps)
	two := toScalar(2)
	one := toScalar(1)

	for i := 0; i < n; i++ {
		zRe := toScalar(o.Z[i].Re)
		zIm := toScalar(o.Z[i].Im)

		magZ := toScalar(hypot(o.Z[i].Re, o.Z[i].Im))
		level0[i] = Entry{
			A: xfloat.Complex{Re: two.Mul(zRe), Im: two.Mul(zIm)},
			B: xfloat.Complex{Re: one, Im: zero(one)},
			R: epsScalar.Mul(magZ),
			L: 1,
		}
	}

	t := &Table{Levels: [][]Entry{level0}, DCMax: dcMax}
	log.WithField("reference_len", n).Debug("built BLA level 0")
	return t
}

func hypot(re, im float64) float64 {
	if re < 0 {
		re = -re
	}
	if im < 0 {
		im = -im
	}
	if re == 0 {
		return im
	}
	if im == 0 {
		return re
	}
	// Avoid math.Hypot's overflow-safe scaling: orbit magnitudes are
	// bounded by the escape radius, so a plain sqrt is safe and cheap.
	return sqrt(re*re + im*im)
}

func sqrt(x float64) float64 {
	if x <= 0 {
		return 0
	}
	z := x
	for i := 0; i < 30; i++ {
		z -= (z*z - x) / (2 * z)
	}
	return z
}

// BuildLevels merges level k-1 into level k until a level has fewer
// than 2 entries, using the three merge formulas of spec §3:
//
//	A_merged = A_y · A_x
//	B_merged = A_y · B_x + B_y
//	r_merged = min(r_x, max(0, r_y − |B_x|·dc_max) / |A_x|)
//
// Each level depends only on the previous one, so levels are built
// sequentially but every entry within a level is independent and safe
// to compute concurrently (spec §4.5 "embarrassingly parallel").
func (t *Table) BuildLevels() {
	for {
		prev := t.Levels[len(t.Levels)-1]
		if len(prev) < 2 {
			break
		}
		next := make([]Entry, len(prev)/2)
		for i := range next {
			x := prev[2*i]
			y := prev[2*i+1]
			next[i] = merge(x, y, t.DCMax)
		}
		t.Levels = append(t.Levels, next)
	}
	log.WithField("levels", len(t.Levels)).Debug("finished BLA level merge")
}

func merge(x, y Entry, dcMax xfloat.Scalar) Entry {
	a := y.A.Mul(x.A)
	b := y.A.Mul(x.B).Add(y.B)

	absBx := magnitude(x.B)
	byMinusTerm := y.R.Sub(absBx.Mul(dcMax))
	if xfloat.Less(byMinusTerm, zero(byMinusTerm)) {
		byMinusTerm = zero(byMinusTerm)
	}
	absAx := magnitude(x.A)
	r := xfloat.Div(byMinusTerm, absAx) // Div returns byMinusTerm unchanged when absAx is zero
	if xfloat.Less(x.R, r) {
		r = x.R
	}

	return Entry{A: a, B: b, R: r, L: x.L + y.L}
}

// magnitude returns |c| as a Scalar of the same concrete type as c's
// components, computed entirely in-domain via NormSqScalar and
// xfloat.Sqrt: a validity radius derived from it can underflow float64
// range without ever silently reading as zero (see the package doc and
// xfloat.Cmp's doc comment for why projecting through Float64 first,
// as an earlier version of this function did, reintroduces the
// max_skip=1 bug spec §9 warns against).
func magnitude(c xfloat.Complex) xfloat.Scalar {
	return xfloat.Sqrt(c.NormSqScalar())
}

// Lookup finds the highest level whose entry at reference index m has
// |δz| < R, searching top-down (largest skip first) so any admissible
// skip found is the largest admissible one (spec §4.5). Level k's
// entries are block-aligned: Levels[k][i] covers original reference
// indices [i*2^k, i*2^k+2^k-1], so the entry covering m at level k
// sits at index m>>k, not at index m itself. Returns the entry and
// true, or the zero Entry and false if no level applies and the
// kernel must fall back to one standard iteration.
func (t *Table) Lookup(m int, deltaZ xfloat.Complex) (Entry, bool) {
	deltaZMag := magnitude(deltaZ)
	for level := len(t.Levels) - 1; level >= 0; level-- {
		entries := t.Levels[level]
		idx := m >> level
		if idx >= len(entries) {
			continue
		}
		e := entries[idx]
		if xfloat.Less(deltaZMag, e.R) {
			return e, true
		}
	}
	return Entry{}, false
}

// Apply advances (δz, m, n) by one BLA entry: δz becomes A·δz + B·δc,
// the reference index advances by L, and n (pixel iteration count)
// advances by L as well since BLA represents L standard iterations.
func (e Entry) Apply(deltaZ, deltaC xfloat.Complex) xfloat.Complex {
	return e.A.Mul(deltaZ).Add(e.B.Mul(deltaC))
}
