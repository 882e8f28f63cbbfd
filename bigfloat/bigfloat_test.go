// SPDX-License-Identifier: Unlicense OR MIT

package bigfloat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSerializeIdentity(t *testing.T) {
	cases := []string{
		"0.273000307495579097715",
		"-1.5e-270",
		"3.686e-270",
		"0",
		"123456789.987654321",
	}
	for _, s := range cases {
		for _, bits := range []uint{64, 128, 1024, 4096} {
			b, err := FromString(s, bits)
			require.NoError(t, err)
			rt, err := FromString(b.String(), bits)
			require.NoError(t, err)
			require.True(t, b.Eq(rt), "round-trip mismatch for %q at %d bits: %v != %v", s, bits, b, rt)
			require.Equal(t, bits, b.PrecisionBits())
		}
	}
}

func TestWireRoundTrip(t *testing.T) {
	b, err := FromString("0.005838718497531293679", 1200)
	require.NoError(t, err)
	w := b.ToWire()
	rt, err := FromWire(w)
	require.NoError(t, err)
	require.True(t, b.Eq(rt))
}

func TestPrecisionNeverDowngrades(t *testing.T) {
	lo := WithPrecision(1.5, 64)
	hi := WithPrecision(2.5, 4096)
	sum := lo.Add(hi)
	require.Equal(t, uint(4096), sum.PrecisionBits())
	sum2 := hi.Add(lo)
	require.Equal(t, uint(4096), sum2.PrecisionBits())
}

func TestSqrtNegativeFails(t *testing.T) {
	neg := WithPrecision(-4, 64)
	_, err := neg.Sqrt()
	require.ErrorIs(t, err, ErrPrecisionOverflow)
}

func TestSqrtPositive(t *testing.T) {
	v := WithPrecision(4, 64)
	r, err := v.Sqrt()
	require.NoError(t, err)
	require.InDelta(t, 2.0, r.ToFloat64(), 1e-12)
}

func TestLog2Approx(t *testing.T) {
	v := WithPrecision(8, 64)
	require.InDelta(t, 3.0, v.Log2Approx(), 1e-9)
}
