// SPDX-License-Identifier: Unlicense OR MIT

// Package workerproto implements the wire protocol of spec §6: tagged
// JSON messages between the Orchestrator and a pool of tile/reference
// workers. The in-process worker pool (package tile) exchanges typed
// Go values directly over channels and never touches this package; it
// exists for the out-of-process transport spec.md describes but the
// distilled spec leaves as "JSON with a tag field" — here made
// concrete as a small envelope/codec pair, matching the teacher's own
// preference for explicit wire structs over reflection-heavy codecs.
package workerproto

import (
	"encoding/json"
	"fmt"

	"github.com/deepzoom/mandelcore/bigfloat"
)

// Tag identifies a message's payload type within the tagged union.
type Tag string

const (
	TagInitialize           Tag = "Initialize"
	TagComputeReferenceOrbit Tag = "ComputeReferenceOrbit"
	TagComputeTile          Tag = "ComputeTile"
	TagCancel               Tag = "Cancel"
	TagTerminate            Tag = "Terminate"
	TagReady                Tag = "Ready"
	TagReferenceOrbitDone   Tag = "ReferenceOrbitDone"
	TagTileDone             Tag = "TileDone"
	TagError                Tag = "Error"
)

// Envelope is the wire frame: a tag plus a raw payload, decoded into
// the concrete struct matching Tag once the caller has switched on it.
type Envelope struct {
	Tag     Tag             `json:"tag"`
	Payload json.RawMessage `json:"payload"`
}

// Encode wraps a tagged payload into an Envelope and marshals it.
func Encode(tag Tag, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("workerproto: encode %s payload: %w", tag, err)
	}
	return json.Marshal(Envelope{Tag: tag, Payload: raw})
}

// Decode splits a wire frame into its Tag and raw payload for the
// caller to unmarshal into the matching struct below.
func Decode(data []byte) (Tag, json.RawMessage, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("workerproto: decode envelope: %w", err)
	}
	return env.Tag, env.Payload, nil
}

// ---- Main -> Worker ----

// Initialize tells a worker which fractal type it renders.
type Initialize struct {
	RendererID string `json:"renderer_id"`
}

// ComputeReferenceOrbit requests a high-precision reference orbit.
type ComputeReferenceOrbit struct {
	SessionID     string          `json:"session_id"`
	CRef          [2]bigfloat.Wire `json:"c_ref"`
	MaxIterations uint32          `json:"max_iterations"`
	PrecisionBits uint            `json:"precision_bits"`
}

// ComputeTile requests perturbation iteration over one tile.
type ComputeTile struct {
	SessionID       string          `json:"session_id"`
	TileID          int             `json:"tile_id"`
	DeltaCOrigin    [2]bigfloat.Wire `json:"delta_c_origin"`
	DeltaCStep      bigfloat.Wire   `json:"delta_c_step"`
	ReferenceOrbitID string         `json:"reference_orbit_handle"`
	BLATableID      string          `json:"bla_table_handle"`
	MaxIterations   uint32          `json:"max_iterations"`
	Tau             float64         `json:"tau"`
	ForceExtended   bool            `json:"force_extended_float"`
}

// Cancel invalidates every session up to and including UpToSessionID.
type Cancel struct {
	UpToSessionID string `json:"up_to_session_id"`
}

// Terminate shuts the worker down cleanly.
type Terminate struct{}

// ---- Worker -> Main ----

// Ready announces the worker has finished Initialize and can accept work.
type Ready struct{}

// ReferenceOrbitDone returns a computed reference orbit.
type ReferenceOrbitDone struct {
	SessionID      string    `json:"session_id"`
	OrbitID        string    `json:"orbit_id"`
	OrbitData      [][2]float64 `json:"orbit_data"`
	DerivativeData [][2]float64 `json:"derivative_data"`
	EscapeIndex    *uint32   `json:"escape_index"`
}

// TileDone returns per-pixel compute data for one finished tile.
type TileDone struct {
	SessionID string          `json:"session_id"`
	TileID    int             `json:"tile_id"`
	Data      []PixelData     `json:"pixel_data"`
	ElapsedMs int64           `json:"elapsed_ms"`
}

// PixelData is the wire form of compute.Data.
type PixelData struct {
	Iterations    uint32  `json:"iterations"`
	Escaped       bool    `json:"escaped"`
	Glitched      bool    `json:"glitched"`
	FinalZNormSq  float32 `json:"final_z_norm_sq"`
	DerivativeMag float32 `json:"derivative_mag"`
}

// ErrorCode is the taxonomy from spec §7, carried on Error messages so
// the Orchestrator can decide retry/degrade/surface without parsing
// free-form text.
type ErrorCode string

const (
	ErrCodePrecisionInsufficient ErrorCode = "precision_insufficient"
	ErrCodeReferenceTooShort     ErrorCode = "reference_too_short"
	ErrCodeGPUUnavailable        ErrorCode = "gpu_unavailable"
	ErrCodeMemoryPressure        ErrorCode = "memory_pressure"
	ErrCodeSerialization         ErrorCode = "serialization_error"
	ErrCodeWatchdog              ErrorCode = "watchdog"
)

// Error reports a worker-side failure with its taxonomy code.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}
