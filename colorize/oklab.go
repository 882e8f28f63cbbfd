// SPDX-License-Identifier: Unlicense OR MIT

package colorize

import "math"

// oklab is a perceptually uniform color coordinate used to interpolate
// palette stops (spec §3: "a Palette ... evaluated in a perceptual
// (OKLAB) space"). Interpolating in OKLAB instead of sRGB avoids the
// muddy grays a linear RGB gradient produces between saturated stops.
type oklab struct {
	L, A, B float64
}

// linearToOklab converts linear-light sRGB (as produced by
// f32color.LinearFromSRGB) to OKLAB, using the matrices from Björn
// Ottosson's reference OKLab derivation.
func linearToOklab(r, g, b float64) oklab {
	l := 0.4122214708*r + 0.5363325363*g + 0.0514459929*b
	m := 0.2119034982*r + 0.6806995451*g + 0.1073969566*b
	s := 0.0883024619*r + 0.2817188376*g + 0.6299787005*b

	l_, m_, s_ := cbrt(l), cbrt(m), cbrt(s)

	return oklab{
		L: 0.2104542553*l_ + 0.7936177850*m_ - 0.0040720468*s_,
		A: 1.9779984951*l_ - 2.4285922050*m_ + 0.4505937099*s_,
		B: 0.0259040371*l_ + 0.7827717662*m_ - 0.8086757660*s_,
	}
}

func oklabToLinear(c oklab) (r, g, b float64) {
	l_ := c.L + 0.3963377774*c.A + 0.2158037573*c.B
	m_ := c.L - 0.1055613458*c.A - 0.0638541728*c.B
	s_ := c.L - 0.0894841775*c.A - 1.2914855480*c.B

	l := l_ * l_ * l_
	m := m_ * m_ * m_
	s := s_ * s_ * s_

	r = +4.0767416621*l - 3.3077115913*m + 0.2309699292*s
	g = -1.2684380046*l + 2.6097574011*m - 0.3413193965*s
	b = -0.0041960863*l - 0.7034186147*m + 1.7076147010*s
	return
}

func cbrt(x float64) float64 {
	if x < 0 {
		return -math.Cbrt(-x)
	}
	return math.Cbrt(x)
}

// lerpOklab linearly interpolates between two OKLAB colors.
func lerpOklab(a, b oklab, t float64) oklab {
	return oklab{
		L: a.L + (b.L-a.L)*t,
		A: a.A + (b.A-a.A)*t,
		B: a.B + (b.B-a.B)*t,
	}
}
