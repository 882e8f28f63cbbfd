// SPDX-License-Identifier: Unlicense OR MIT

// Package orbit computes the high-precision reference orbit that the
// delta iteration kernel (package delta) perturbs around. The orbit
// itself is iterated in bigfloat.BigFloat but stored as native-width
// pairs: |Z_n| never exceeds the escape radius, so native precision is
// enough to hold it even though computing it required arbitrary
// precision.
package orbit

import (
	"github.com/sirupsen/logrus"

	"github.com/deepzoom/mandelcore/bigfloat"
)

var log = logrus.WithField("component", "orbit")

// EscapeRadius is the bailout magnitude used throughout the core; its
// square is compared against |Z|² to avoid a sqrt per iteration.
const EscapeRadius = 256.0

// EscapeRadiusSq is EscapeRadius squared.
const EscapeRadiusSq = EscapeRadius * EscapeRadius

// Point is a native-precision complex sample of the reference orbit.
// Float64 is used even at shallow zoom; the 128 bits of a (float64,
// float64) pair is cheap enough that there is no reason to special-case
// float32 storage the way spec.md's Rust sketch allows.
type Point struct {
	Re, Im float64
}

// ReferenceOrbit is the sequence Z_0..Z_L produced by iterating
// z -> z^2 + c_ref in high precision, plus its derivative orbit for
// distance-estimation shading. Immutable once built; safe to share by
// read-only reference across every worker computing against it.
type ReferenceOrbit struct {
	CRe, CIm   bigfloat.BigFloat
	Z          []Point
	D          []Point
	EscapeIndex int // -1 if the orbit never escaped within MaxIterations.
}

// Len reports the number of stored iterations, including the escape
// iteration if the orbit escaped.
func (o *ReferenceOrbit) Len() int {
	return len(o.Z)
}

// Escaped reports whether the reference point left the escape radius
// before MaxIterations was reached.
func (o *ReferenceOrbit) Escaped() bool {
	return o.EscapeIndex >= 0
}

// Compute iterates z -> z^2+c_ref from c_ref at the precision carried by
// cRe/cIm, for up to maxIterations steps, recording escape_index if the
// orbit leaves the escape radius. This is the single most expensive
// high-precision operation in the core (spec §4.3) and is expected to
// run once per session on a dedicated worker goroutine.
func Compute(cRe, cIm bigfloat.BigFloat, maxIterations uint32) *ReferenceOrbit {
	prec := cRe.PrecisionBits()
	zero := bigfloat.Zero(prec)
	one := bigfloat.One(prec)
	two := bigfloat.WithPrecision(2, prec)
	escRadiusSq := bigfloat.WithPrecision(EscapeRadiusSq, prec)

	zRe, zIm := zero, zero
	dRe, dIm := zero, zero

	out := &ReferenceOrbit{
		CRe:         cRe,
		CIm:         cIm,
		Z:           make([]Point, 0, maxIterations+1),
		D:           make([]Point, 0, maxIterations+1),
		EscapeIndex: -1,
	}

	for n := uint32(0); n < maxIterations; n++ {
		out.Z = append(out.Z, Point{Re: zRe.ToFloat64(), Im: zIm.ToFloat64()})
		out.D = append(out.D, Point{Re: dRe.ToFloat64(), Im: dIm.ToFloat64()})

		normSq := zRe.Mul(zRe).Add(zIm.Mul(zIm))
		if normSq.Cmp(escRadiusSq) > 0 {
			out.EscapeIndex = int(n)
			log.WithField("escape_index", n).Debug("reference orbit escaped")
			break
		}

		// D := 2*Z*D + 1
		newDRe := two.Mul(zRe.Mul(dRe).Sub(zIm.Mul(dIm))).Add(one)
		newDIm := two.Mul(zRe.Mul(dIm).Add(zIm.Mul(dRe)))
		dRe, dIm = newDRe, newDIm

		// Z := Z^2 + c_ref
		newZRe := zRe.Mul(zRe).Sub(zIm.Mul(zIm)).Add(cRe)
		newZIm := two.Mul(zRe).Mul(zIm).Add(cIm)
		zRe, zIm = newZRe, newZIm
	}

	if !out.Escaped() {
		log.WithField("iterations", len(out.Z)).Debug("reference orbit completed without escape")
	}
	return out
}
