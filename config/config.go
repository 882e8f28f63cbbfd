// SPDX-License-Identifier: Unlicense OR MIT

// Package config implements the "Configuration surface" of spec §6: a
// registry of named FractalConfigs and the RenderSettings schema,
// persisted as YAML the way inference-sim's cmd package loads its
// defaults file, via gopkg.in/yaml.v3.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/deepzoom/mandelcore/colorize"
)

// OrchestrationStrategy names the Orchestrator wiring a FractalConfig
// requests; spec §6 names exactly these two.
type OrchestrationStrategy string

const (
	StrategySimpleTiling  OrchestrationStrategy = "SimpleTiling"
	StrategyPerturbation  OrchestrationStrategy = "Perturbation"
)

// FractalConfig bundles a registered fractal's defaults and available
// colorizers, per spec §6.
type FractalConfig struct {
	ID             string                `yaml:"id"`
	DefaultCenter  [2]string             `yaml:"default_center"`
	DefaultWidth   string                `yaml:"default_width"`
	DefaultHeight  string                `yaml:"default_height"`
	Strategy       OrchestrationStrategy `yaml:"orchestration_strategy"`
	ColorizerIDs   []string              `yaml:"colorizer_ids"`
}

// RenderSettings is the wire shape named in spec §6, the render-time
// knobs that do not change the Viewport itself. Lighting reuses
// colorize's own LightingParams type directly rather than a parallel
// config-side copy, so a loaded RenderSettings can be handed straight
// into a colorize.Request without conversion.
type RenderSettings struct {
	MaxIterationsBase uint32                  `yaml:"max_iterations_base"`
	IterationScaling  float64                 `yaml:"iteration_scaling"`
	PaletteID         string                  `yaml:"palette_id"`
	Smooth            bool                    `yaml:"smooth"`
	Histogram         bool                    `yaml:"histogram"`
	Shading           bool                    `yaml:"shading"`
	Lighting          colorize.LightingParams `yaml:"lighting_params"`
}

// DefaultRenderSettings mirrors the "Default view" scenario of spec
// §8's end-to-end test (500 base iterations; smooth coloring on,
// histogram equalization and shading off).
func DefaultRenderSettings() RenderSettings {
	return RenderSettings{
		MaxIterationsBase: 500,
		IterationScaling:  1.0,
		PaletteID:         "classic",
		Smooth:            true,
		Histogram:         false,
		Shading:           false,
		Lighting:          colorize.DefaultLightingParams(),
	}
}

// MaxIterationsForMagnitude scales the configured base iteration count
// with zoom depth: deeper zooms resolve finer structure and need more
// iterations to distinguish the set boundary from its surroundings.
func (r RenderSettings) MaxIterationsForMagnitude(log10Mag float64) uint32 {
	if log10Mag <= 0 {
		return r.MaxIterationsBase
	}
	scaled := float64(r.MaxIterationsBase) * (1 + log10Mag*r.IterationScaling)
	return uint32(scaled)
}

// Registry is a loaded set of FractalConfigs keyed by ID.
type Registry struct {
	configs map[string]FractalConfig
}

// NewRegistry builds an empty registry; Register or LoadRegistry
// populate it.
func NewRegistry() *Registry {
	return &Registry{configs: make(map[string]FractalConfig)}
}

// Register adds or replaces a FractalConfig.
func (r *Registry) Register(c FractalConfig) {
	r.configs[c.ID] = c
}

// Get looks up a FractalConfig by ID.
func (r *Registry) Get(id string) (FractalConfig, bool) {
	c, ok := r.configs[id]
	return c, ok
}

// IDs returns every registered FractalConfig's ID.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.configs))
	for id := range r.configs {
		ids = append(ids, id)
	}
	return ids
}

// LoadRegistry reads a YAML document of the form `configs: [...]` from
// path and registers each entry. A bad viewport string inside a config
// is not validated here — per spec §7 error kind 6, that failure
// surfaces later, at the point the Orchestrator tries to construct a
// Viewport from it, where it falls back to a default viewport.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var doc struct {
		Configs []FractalConfig `yaml:"configs"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	reg := NewRegistry()
	for _, c := range doc.Configs {
		reg.Register(c)
	}
	return reg, nil
}

// DefaultMandelbrotConfig is the built-in config matching spec §8
// scenario 1's default view.
func DefaultMandelbrotConfig() FractalConfig {
	return FractalConfig{
		ID:            "mandelbrot",
		DefaultCenter: [2]string{"-0.5", "0"},
		DefaultWidth:  "4",
		DefaultHeight: "3",
		Strategy:      StrategyPerturbation,
		ColorizerIDs:  []string{"classic", "grayscale", "fire"},
	}
}
