// SPDX-License-Identifier: Unlicense OR MIT

package gpu

import (
	"github.com/deepzoom/mandelcore/compute"
	"github.com/deepzoom/mandelcore/xfloat"
)

// Uniforms is the GPU-side layout of bind group 0 binding 0 (spec
// §4.7, §6 "GPU shader interface (wire-exact)"). Field order and sizes
// match the WGSL struct in shaders/mandelbrot.wgsl byte for byte; the
// trailing padding fields keep the struct's size a multiple of 16
// bytes, which WGSL's uniform address space requires.
type Uniforms struct {
	CanvasWidth      uint32
	CanvasHeight     uint32
	MaxIterations    uint32
	EscapeRadiusSq   float32
	TauSq            float32
	TileSize         uint32
	TilesPerRow      uint32
	PassIndex        uint32
	ReferenceEscaped uint32
	_Pad0            uint32
	_Pad1            uint32
	_Pad2            uint32
}

// sizeofUniforms is the byte size of Uniforms once it reaches the GPU,
// used for MinBindingSize in the bind group layout.
const sizeofUniforms = 48

// ReferenceSample is one entry of the reference-orbit storage buffer,
// `array<vec2<f32>>` in WGSL (spec §4.7: "safe because |Z| is small").
type ReferenceSample struct {
	Re, Im float32
}

// TileInfo is one entry of the per-tile info storage buffer (spec §6):
// the tile's slice of the packed reference-orbit buffer, whether that
// tile's local reference escaped, and the tile's fractal-space origin
// delta from the session reference point in extended-float form.
type TileInfo struct {
	OrbitOffset      uint32
	OrbitLen         uint32
	ReferenceEscaped uint32
	_Pad0            uint32
	DcOriginRe       ExtendedFloat
	DcOriginIm       ExtendedFloat
}

// ExtendedFloat mirrors the WGSL `FloatExp` struct: a mantissa in
// [0.5, 1) (or zero) with a separate exponent, used wherever a delta
// value would otherwise underflow f32 (spec §4.7's ExtendedFloat
// emulation, the GPU-side analog of xfloat.Float32).
type ExtendedFloat struct {
	Mantissa float32
	Exp      int32
}

// ExtendedFloatFrom converts an xfloat.Float32 (the CPU-side type with
// the identical layout) into its GPU buffer encoding.
func ExtendedFloatFrom(f xfloat.Float32) ExtendedFloat {
	return ExtendedFloat{Mantissa: f.Mant, Exp: f.Exp}
}

// Output is the readback shape of bind-group-0 bindings 4..6: one
// compute.Data per canvas pixel, reconstructed from three parallel
// buffers (iteration counts, glitch flags, final |z|²) rather than one
// struct buffer, matching how compute shaders write flat scalar arrays
// more efficiently than arrays of structs.
type Output struct {
	Iterations []uint32
	Glitched   []uint32
	FinalZNorm []float32
}

// ToComputeData converts a readback Output into the same []compute.Data
// shape the CPU worker pool produces, so the colorizer never needs to
// know which path rendered a tile.
func (o Output) ToComputeData() []compute.Data {
	out := make([]compute.Data, len(o.Iterations))
	for i := range out {
		out[i] = compute.Data{
			Iterations:   o.Iterations[i],
			Escaped:      o.Iterations[i] > 0 && o.Glitched[i] == 0 && o.FinalZNorm[i] > 0,
			Glitched:     o.Glitched[i] != 0,
			FinalZNormSq: o.FinalZNorm[i],
		}
	}
	return out
}

// NewOutput allocates a zeroed Output sized for n pixels.
func NewOutput(n int) Output {
	return Output{
		Iterations: make([]uint32, n),
		Glitched:   make([]uint32, n),
		FinalZNorm: make([]float32, n),
	}
}
