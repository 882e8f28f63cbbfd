// SPDX-License-Identifier: Unlicense OR MIT

package workerproto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepzoom/mandelcore/bigfloat"
)

func TestEncodeDecodeComputeTileRoundTrip(t *testing.T) {
	origin := bigfloat.WithPrecision(1.5e-270, 1200)
	msg := ComputeTile{
		SessionID:        "sess-1",
		TileID:           42,
		DeltaCOrigin:     [2]bigfloat.Wire{origin.ToWire(), origin.ToWire()},
		DeltaCStep:       origin.ToWire(),
		ReferenceOrbitID: "orbit-1",
		MaxIterations:    1000,
		Tau:              1e-6,
	}
	data, err := Encode(TagComputeTile, msg)
	require.NoError(t, err)

	tag, payload, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, TagComputeTile, tag)

	var got ComputeTile
	require.NoError(t, json.Unmarshal(payload, &got))
	require.Equal(t, msg.SessionID, got.SessionID)
	require.Equal(t, msg.TileID, got.TileID)
	require.Equal(t, msg.DeltaCOrigin[0].PrecisionBits, got.DeltaCOrigin[0].PrecisionBits)

	roundTripped, err := bigfloat.FromWire(got.DeltaCOrigin[0])
	require.NoError(t, err)
	require.True(t, roundTripped.Eq(origin))
}

func TestErrorMessageCarriesTaxonomyCode(t *testing.T) {
	data, err := Encode(TagError, Error{Code: ErrCodeWatchdog, Message: "tile exceeded watchdog"})
	require.NoError(t, err)

	tag, payload, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, TagError, tag)

	var got Error
	require.NoError(t, json.Unmarshal(payload, &got))
	require.Equal(t, ErrCodeWatchdog, got.Code)
}
