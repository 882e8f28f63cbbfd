// SPDX-License-Identifier: Unlicense OR MIT

// Package f32color provides the float32, premultiplied-linear color
// representation used by the colorizer (colorize) package for
// OKLAB-space palette interpolation and Blinn-Phong slope shading.
// Working in linear space keeps gradient interpolation and lighting
// math perceptually correct; conversion to/from sRGB happens only at
// the boundary with the canvas surface.
package f32color

import (
	"image/color"
	"math"
)

// RGBA is a premultiplied-alpha color with floating point components
// in the range [0,1], stored in linear (not gamma-encoded) space.
type RGBA struct {
	R, G, B, A float32
}

var srgbToLinearTable = buildSRGBToLinearTable()

func buildSRGBToLinearTable() [256]float32 {
	var t [256]float32
	for i := range t {
		t[i] = srgbToLinear(float32(i) / 255)
	}
	return t
}

func srgbToLinear(c float32) float32 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return pow((c+0.055)/1.055, 2.4)
}

func linearToSRGB(c float32) float32 {
	if c <= 0.0031308 {
		return c * 12.92
	}
	return 1.055*pow(c, 1/2.4) - 0.055
}

func pow(x, y float32) float32 {
	return float32(math.Pow(float64(x), float64(y)))
}

// NRGBAToLinearRGBA converts a non-premultiplied sRGB color to a
// premultiplied linear RGBA, without gamma decoding: the channel values
// are taken as already linear. LinearFromSRGB is the gamma-decoding
// counterpart.
func NRGBAToLinearRGBA(c color.NRGBA) RGBA {
	a := float32(c.A) / 0xff
	return RGBA{
		R: float32(c.R) / 0xff * a,
		G: float32(c.G) / 0xff * a,
		B: float32(c.B) / 0xff * a,
		A: a,
	}
}

// LinearFromSRGB decodes a gamma-encoded sRGB color into premultiplied
// linear RGBA.
func LinearFromSRGB(c color.NRGBA) RGBA {
	a := float32(c.A) / 0xff
	return RGBA{
		R: srgbToLinearTable[c.R] * a,
		G: srgbToLinearTable[c.G] * a,
		B: srgbToLinearTable[c.B] * a,
		A: a,
	}
}

// SRGB re-encodes c (premultiplied linear) into non-premultiplied,
// gamma-encoded 8-bit color, the inverse of LinearFromSRGB.
func (c RGBA) SRGB() color.NRGBA {
	if c.A == 0 {
		return color.NRGBA{}
	}
	inv := 1 / c.A
	return color.NRGBA{
		R: to8(linearToSRGB(c.R * inv)),
		G: to8(linearToSRGB(c.G * inv)),
		B: to8(linearToSRGB(c.B * inv)),
		A: to8(c.A),
	}
}

// NRGBA re-encodes c (premultiplied linear) into non-premultiplied
// linear 8-bit color, skipping the gamma curve. Used for diagnostic
// dumps where gamma correctness is not required.
func (c RGBA) NRGBA() color.NRGBA {
	if c.A == 0 {
		return color.NRGBA{}
	}
	inv := 1 / c.A
	return color.NRGBA{
		R: to8(c.R * inv),
		G: to8(c.G * inv),
		B: to8(c.B * inv),
		A: to8(c.A),
	}
}

func to8(f float32) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 0xff
	}
	return uint8(f*0xff + 0.5)
}

// Lerp linearly interpolates between a and b by t in [0,1], in linear
// premultiplied space. The colorizer's shading stage uses it to blend
// the shaded color over the base color by LightingParams.Strength.
func Lerp(a, b RGBA, t float32) RGBA {
	return RGBA{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}
