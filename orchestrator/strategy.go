// SPDX-License-Identifier: Unlicense OR MIT

package orchestrator

// Strategy is the rendering approach the Orchestrator picks for a
// session, selected purely by zoom depth (spec §4.9's strategy table).
type Strategy int

const (
	// StrategyShallow: single reference, native floats, no BLA.
	StrategyShallow Strategy = iota
	// StrategyMidZoom: tile-local references on GPU, or a single
	// reference on the CPU with BLA, when no GPU is available.
	StrategyMidZoom
	// StrategyDeep: single reference, ExtendedFloat deltas, BLA
	// required.
	StrategyDeep
	// StrategyExtreme: single reference, double-mantissa
	// ExtendedFloat, BLA required.
	StrategyExtreme
)

func (s Strategy) String() string {
	switch s {
	case StrategyShallow:
		return "shallow"
	case StrategyMidZoom:
		return "mid-zoom"
	case StrategyDeep:
		return "deep"
	case StrategyExtreme:
		return "extreme"
	default:
		return "unknown"
	}
}

// SelectStrategy implements spec §4.9's strategy table, keyed by
// log10(magnification) where magnification = reference_width /
// viewport.width.
func SelectStrategy(log10Mag float64) Strategy {
	switch {
	case log10Mag < 4:
		return StrategyShallow
	case log10Mag < 15:
		return StrategyMidZoom
	case log10Mag < 300:
		return StrategyDeep
	default:
		return StrategyExtreme
	}
}

// UsesBLA reports whether s requires a BLA table.
func (s Strategy) UsesBLA() bool {
	return s != StrategyShallow
}

// UsesExtendedFloat reports whether s's delta iteration must run in
// one of the xfloat extended-range representations rather than native
// float64/float32.
func (s Strategy) UsesExtendedFloat() bool {
	return s == StrategyDeep || s == StrategyExtreme
}
