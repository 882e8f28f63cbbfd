// SPDX-License-Identifier: Unlicense OR MIT

package gpu

import "math"

// Byte serialization for GPU buffer upload/readback. Mirrors the
// manual little-endian struct packing gogpu/gg's wgpu backend uses for
// its own storage buffers (WGSL has no Go-interop marshaling, so every
// buffer's bytes are written out field by field).

func writeUint32(buf []byte, offset int, v uint32) {
	buf[offset] = byte(v)
	buf[offset+1] = byte(v >> 8)
	buf[offset+2] = byte(v >> 16)
	buf[offset+3] = byte(v >> 24)
}

func writeInt32(buf []byte, offset int, v int32) {
	writeUint32(buf, offset, uint32(v))
}

func writeFloat32(buf []byte, offset int, v float32) {
	writeUint32(buf, offset, math.Float32bits(v))
}

func readUint32(buf []byte, offset int) uint32 {
	return uint32(buf[offset]) | uint32(buf[offset+1])<<8 |
		uint32(buf[offset+2])<<16 | uint32(buf[offset+3])<<24
}

func readFloat32(buf []byte, offset int) float32 {
	return math.Float32frombits(readUint32(buf, offset))
}

func bytesToUint32s(b []byte) []uint32 {
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = readUint32(b, i*4)
	}
	return out
}

// referenceSamplesToBytes packs vec2<f32> entries (8 bytes each),
// shared by the reference-orbit and BLA-table storage buffers.
func referenceSamplesToBytes(samples []ReferenceSample) []byte {
	buf := make([]byte, len(samples)*8)
	for i, s := range samples {
		off := i * 8
		writeFloat32(buf, off, s.Re)
		writeFloat32(buf, off+4, s.Im)
	}
	return buf
}

// sizeofTileInfo is TileInfo's packed byte size: 4 u32 header fields
// plus two FloatExp{mantissa f32, exp i32} fields, 32 bytes total.
const sizeofTileInfo = 32

func tileInfosToBytes(tiles []TileInfo) []byte {
	buf := make([]byte, len(tiles)*sizeofTileInfo)
	for i, t := range tiles {
		off := i * sizeofTileInfo
		writeUint32(buf, off+0, t.OrbitOffset)
		writeUint32(buf, off+4, t.OrbitLen)
		writeUint32(buf, off+8, t.ReferenceEscaped)
		writeUint32(buf, off+12, 0)
		writeFloat32(buf, off+16, t.DcOriginRe.Mantissa)
		writeInt32(buf, off+20, t.DcOriginRe.Exp)
		writeFloat32(buf, off+24, t.DcOriginIm.Mantissa)
		writeInt32(buf, off+28, t.DcOriginIm.Exp)
	}
	return buf
}

func uniformsToBytes(u Uniforms) []byte {
	buf := make([]byte, sizeofUniforms)
	writeUint32(buf, 0, u.CanvasWidth)
	writeUint32(buf, 4, u.CanvasHeight)
	writeUint32(buf, 8, u.MaxIterations)
	writeFloat32(buf, 12, u.EscapeRadiusSq)
	writeFloat32(buf, 16, u.TauSq)
	writeUint32(buf, 20, u.TileSize)
	writeUint32(buf, 24, u.TilesPerRow)
	writeUint32(buf, 28, u.PassIndex)
	writeUint32(buf, 32, u.ReferenceEscaped)
	writeUint32(buf, 36, 0)
	writeUint32(buf, 40, 0)
	writeUint32(buf, 44, 0)
	return buf
}
