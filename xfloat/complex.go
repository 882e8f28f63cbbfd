// SPDX-License-Identifier: Unlicense OR MIT

package xfloat

// Complex is a complex number over any Scalar representation. The
// delta iteration kernel (package delta) and the BLA engine (package
// bla) are written once against Complex/Scalar and run unmodified
// across all four numeric representations by constructing a Complex
// from the matching concrete Scalar type.
type Complex struct {
	Re, Im Scalar
}

func (c Complex) Add(d Complex) Complex {
	return Complex{Re: c.Re.Add(d.Re), Im: c.Im.Add(d.Im)}
}

func (c Complex) Sub(d Complex) Complex {
	return Complex{Re: c.Re.Sub(d.Re), Im: c.Im.Sub(d.Im)}
}

// Mul computes (a+bi)(c+di) = (ac-bd) + (ad+bc)i.
func (c Complex) Mul(d Complex) Complex {
	ac := c.Re.Mul(d.Re)
	bd := c.Im.Mul(d.Im)
	ad := c.Re.Mul(d.Im)
	bc := c.Im.Mul(d.Re)
	return Complex{Re: ac.Sub(bd), Im: ad.Add(bc)}
}

// Scale multiplies c by the real scalar s.
func (c Complex) Scale(s Scalar) Complex {
	return Complex{Re: c.Re.Mul(s), Im: c.Im.Mul(s)}
}

// NormSq returns |c|^2 = Re^2+Im^2 as a float64, the only form the
// kernel needs it in: every use of |z|^2 in spec §4.4 is a branch
// (escape test, Pauldelbrot glitch test, rebase test), never a stored
// value.
func (c Complex) NormSq() float64 {
	re, im := c.Re.Float64(), c.Im.Float64()
	return re*re + im*im
}

// NormSqScalar returns |c|^2 without ever projecting through Float64,
// for the one place a squared magnitude must survive arbitrarily deep
// underflow intact: BLA validity-radius comparisons (see xfloat.Cmp's
// doc comment and spec §9's design note on the max_skip=1 workaround).
func (c Complex) NormSqScalar() Scalar {
	return c.Re.Mul(c.Re).Add(c.Im.Mul(c.Im))
}

// Native wraps a float64 as a Scalar, used for the native f64
// instantiation of the kernel (no extended range needed until the
// value underflows).
type Native float64

func (a Native) Add(b Scalar) Scalar { return a + b.(Native) }
func (a Native) Sub(b Scalar) Scalar { return a - b.(Native) }
func (a Native) Mul(b Scalar) Scalar { return a * b.(Native) }
func (a Native) Neg() Scalar         { return -a }
func (a Native) Float64() float64    { return float64(a) }

// Native32 wraps a float32 as a Scalar, used for the native f32
// instantiation (mobile/GPU-adjacent low-memory tiles).
type Native32 float32

func (a Native32) Add(b Scalar) Scalar { return a + b.(Native32) }
func (a Native32) Sub(b Scalar) Scalar { return a - b.(Native32) }
func (a Native32) Mul(b Scalar) Scalar { return a * b.(Native32) }
func (a Native32) Neg() Scalar         { return -a }
func (a Native32) Float64() float64    { return float64(a) }
