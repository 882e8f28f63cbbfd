// SPDX-License-Identifier: Unlicense OR MIT

package colorize

import (
	"math"

	"github.com/deepzoom/mandelcore/internal/f32color"
)

// LightingParams bundles the Blinn-Phong parameters of spec §3. Tagged
// for yaml so config.RenderSettings can decode it directly from a
// fractal config document.
type LightingParams struct {
	Ambient   float64 `yaml:"ambient"`
	Diffuse   float64 `yaml:"diffuse"`
	Specular  float64 `yaml:"specular"`
	Shininess float64 `yaml:"shininess"`
	Strength  float64 `yaml:"strength"`
	Azimuth   float64 `yaml:"azimuth"` // radians
	Elevation float64 `yaml:"elevation"`
}

// DefaultLightingParams returns a 45-degree upper-left light with a
// moderate specular highlight, a reasonable starting point for the
// shading flag before a caller tunes it further.
func DefaultLightingParams() LightingParams {
	return LightingParams{
		Ambient:   0.35,
		Diffuse:   0.65,
		Specular:  0.3,
		Shininess: 12,
		Strength:  1,
		Azimuth:   2.356194490192345, // 3*pi/4, upper-left
		Elevation: 0.7853981633974483, // pi/4
	}
}

// lightDir returns the unit light direction implied by azimuth
// (around the vertical axis) and elevation (above the surface plane).
func (l LightingParams) lightDir() (x, y, z float64) {
	cosEl := math.Cos(l.Elevation)
	return cosEl * math.Cos(l.Azimuth), cosEl * math.Sin(l.Azimuth), math.Sin(l.Elevation)
}

// shade applies Blinn-Phong shading to base using a surface normal
// derived from finite differences on the smooth iteration buffer
// (nx, ny) with an assumed unit z, blended into base by l.Strength.
func shade(base f32color.RGBA, nx, ny float64, l LightingParams) f32color.RGBA {
	nz := 1.0
	norm := math.Sqrt(nx*nx + ny*ny + nz*nz)
	nx, ny, nz = nx/norm, ny/norm, nz/norm

	lx, ly, lz := l.lightDir()
	ndotl := nx*lx + ny*ly + nz*lz
	if ndotl < 0 {
		ndotl = 0
	}

	// View direction is fixed straight-on, so the half vector
	// simplifies to normalize(L + V) with V = (0,0,1).
	hx, hy, hz := lx, ly, lz+1
	hn := math.Sqrt(hx*hx + hy*hy + hz*hz)
	if hn > 0 {
		hx, hy, hz = hx/hn, hy/hn, hz/hn
	}
	ndoth := nx*hx + ny*hy + nz*hz
	if ndoth < 0 {
		ndoth = 0
	}
	spec := math.Pow(ndoth, l.Shininess)

	intensity := l.Ambient + l.Diffuse*ndotl + l.Specular*spec
	intensity = clamp01(intensity)

	shaded := f32color.RGBA{
		R: base.R * float32(intensity),
		G: base.G * float32(intensity),
		B: base.B * float32(intensity),
		A: base.A,
	}
	return f32color.Lerp(base, shaded, float32(clamp01(l.Strength)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
