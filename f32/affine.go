// SPDX-License-Identifier: Unlicense OR MIT

package f32

import "math"

// Affine2D is a 2D affine transform. The zero value of Affine2D
// represents the identity transform.
//
// The transform is stored as the top two rows of
//
//	[ a  b  c ]
//	[ d  e  f ]
//	[ 0  0  1 ]
//
// so that Transform(p) = (a*p.X + b*p.Y + c, d*p.X + e*p.Y + f).
//
// It is used wherever pixel-space affine composition is needed:
// the pointer-interaction layer emits these (translate/scale/translate
// chains from a drag or pinch gesture) and the viewport package applies
// them to fractal coordinates without ever rounding through native
// float64 deltas once the multiplier has been formed.
type Affine2D struct {
	a, b, c float32
	d, e, f float32
	// set is false only for the zero value, which resolved() treats as
	// the identity; it lets the zero value mean identity even though its
	// a and e fields are 0.
	set bool
}

// Pt-style constructor matching gio's NewAffine2D, used by code that
// already has the six raw components (e.g. a wire-deserialized matrix).
func NewAffine2D(a, b, c, d, e, f float32) Affine2D {
	return Affine2D{a: a, b: b, c: c, d: d, e: e, f: f, set: true}
}

func identity() Affine2D {
	return Affine2D{a: 1, e: 1, set: true}
}

func (a Affine2D) resolved() Affine2D {
	if !a.set {
		return identity()
	}
	return a
}

// Offset returns a transform that translates by o, applied after a.
func (a Affine2D) Offset(o Point) Affine2D {
	return identity().offset(o).Mul(a)
}

func (a Affine2D) offset(o Point) Affine2D {
	a.set = true
	a.a, a.b, a.c = 1, 0, o.X
	a.d, a.e, a.f = 0, 1, o.Y
	return a
}

// Scale returns a transform that scales around origin by factor,
// applied after a.
func (a Affine2D) Scale(origin, factor Point) Affine2D {
	s := identity()
	s.a, s.e = factor.X, factor.Y
	s = s.around(origin)
	return s.Mul(a)
}

// Rotate returns a transform that rotates by radians around origin,
// applied after a.
func (a Affine2D) Rotate(origin Point, radians float32) Affine2D {
	sin, cos := float32(math.Sin(float64(radians))), float32(math.Cos(float64(radians)))
	r := identity()
	r.a, r.b = cos, -sin
	r.d, r.e = sin, cos
	r = r.around(origin)
	return r.Mul(a)
}

// Shear returns a transform that shears by ax, ay radians around origin,
// applied after a.
func (a Affine2D) Shear(origin Point, ax, ay float32) Affine2D {
	sh := identity()
	sh.b = float32(math.Tan(float64(ax)))
	sh.d = float32(math.Tan(float64(ay)))
	sh = sh.around(origin)
	return sh.Mul(a)
}

// around re-centers a linear (non-translating) transform t so that it
// is applied around origin instead of the coordinate-space origin.
func (a Affine2D) around(origin Point) Affine2D {
	return identity().offset(origin).Mul(a).Mul(identity().offset(Point{X: -origin.X, Y: -origin.Y}))
}

// Mul returns the transform equivalent to applying b first, then a.
func (a Affine2D) Mul(b Affine2D) Affine2D {
	a, b = a.resolved(), b.resolved()
	return Affine2D{
		a:   a.a*b.a + a.b*b.d,
		b:   a.a*b.b + a.b*b.e,
		c:   a.a*b.c + a.b*b.f + a.c,
		d:   a.d*b.a + a.e*b.d,
		e:   a.d*b.b + a.e*b.e,
		f:   a.d*b.c + a.e*b.f + a.f,
		set: true,
	}
}

// Transform applies a to p.
func (a Affine2D) Transform(p Point) Point {
	a = a.resolved()
	return Point{
		X: a.a*p.X + a.b*p.Y + a.c,
		Y: a.d*p.X + a.e*p.Y + a.f,
	}
}

// Invert returns the inverse of a. Panics if a is singular (determinant
// zero), which does not occur for any transform built from Offset,
// Scale with a nonzero factor, Rotate, or Shear.
func (a Affine2D) Invert() Affine2D {
	a = a.resolved()
	det := a.a*a.e - a.b*a.d
	if det == 0 {
		panic("f32: Affine2D is not invertible")
	}
	invDet := 1 / det
	ia := a.e * invDet
	ib := -a.b * invDet
	id := -a.d * invDet
	ie := a.a * invDet
	ic := -(ia*a.c + ib*a.f)
	iff := -(id*a.c + ie*a.f)
	return Affine2D{a: ia, b: ib, c: ic, d: id, e: ie, f: iff, set: true}
}

// Elems returns the six components of a in row-major order, for wire
// serialization and for composing with the GPU uniform layout.
func (a Affine2D) Elems() (sx, hx, ox, hy, sy, oy float32) {
	a = a.resolved()
	return a.a, a.b, a.c, a.d, a.e, a.f
}
