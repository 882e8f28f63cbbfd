// SPDX-License-Identifier: Unlicense OR MIT

package gpu

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepzoom/mandelcore/bigfloat"
	"github.com/deepzoom/mandelcore/tile"
)

func TestAdam7PassesPartitionEveryPixel(t *testing.T) {
	const w, h = 16, 16
	covered := make([][]int, h)
	for y := range covered {
		covered[y] = make([]int, w)
	}
	for p := 0; p < PassCount; p++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if InPass(p, x, y) {
					covered[y][x]++
				}
			}
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			require.Equalf(t, 1, covered[y][x], "pixel (%d,%d) covered by %d passes, want exactly 1", x, y, covered[y][x])
		}
	}
}

func TestAdam7FirstPassIsSparsestPreview(t *testing.T) {
	require.Less(t, PassFraction(0), PassFraction(6))
	var total float64
	for p := 0; p < PassCount; p++ {
		total += PassFraction(p)
	}
	require.InDelta(t, 1.0, total, 1e-9)
}

func TestUniformsRoundTripThroughBytes(t *testing.T) {
	u := Uniforms{
		CanvasWidth: 800, CanvasHeight: 600, MaxIterations: 1000,
		EscapeRadiusSq: 65536, TauSq: 1e-12, TileSize: 128, TilesPerRow: 7,
		PassIndex: 3, ReferenceEscaped: 1,
	}
	buf := uniformsToBytes(u)
	require.Len(t, buf, sizeofUniforms)
	require.Equal(t, u.CanvasWidth, readUint32(buf, 0))
	require.Equal(t, u.MaxIterations, readUint32(buf, 8))
	require.Equal(t, u.PassIndex, readUint32(buf, 28))
}

func TestTileInfoRoundTripThroughBytes(t *testing.T) {
	tiles := []TileInfo{
		{OrbitOffset: 5, OrbitLen: 200, ReferenceEscaped: 0, DcOriginRe: ExtendedFloat{Mantissa: 0.75, Exp: -40}, DcOriginIm: ExtendedFloat{Mantissa: -0.6, Exp: -41}},
	}
	buf := tileInfosToBytes(tiles)
	require.Len(t, buf, sizeofTileInfo)
	require.Equal(t, uint32(5), readUint32(buf, 0))
	require.Equal(t, uint32(200), readUint32(buf, 4))
	require.Equal(t, int32(-40), int32(readUint32(buf, 20)))
}

func TestOutputToComputeDataMarksGlitchedAndEscaped(t *testing.T) {
	out := Output{
		Iterations: []uint32{10, 500, 0},
		Glitched:   []uint32{0, 0, 1},
		FinalZNorm: []float32{70000, 0, 0},
	}
	data := out.ToComputeData()
	require.Len(t, data, 3)
	require.True(t, data[0].Escaped)
	require.False(t, data[1].Escaped)
	require.True(t, data[2].Glitched)
}

func TestPackTileLocalOrbitsAssignsDisjointOffsets(t *testing.T) {
	prec := uint(128)
	cx, err := bigfloat.FromString("-0.5", prec)
	require.NoError(t, err)
	cy, err := bigfloat.FromString("0", prec)
	require.NoError(t, err)
	step, err := bigfloat.FromString("0.01", prec)
	require.NoError(t, err)

	tiles := tile.Generate(tile.CanvasSize{W: 64, H: 64}, 32, cx, cy, cx, cy, step)
	require.NotEmpty(t, tiles)

	packed, infos := PackTileLocalOrbits(tiles, 50)
	require.Len(t, infos, len(tiles))

	for _, info := range infos {
		require.LessOrEqual(t, int(info.OrbitOffset+info.OrbitLen), len(packed))
	}
}
