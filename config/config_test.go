// SPDX-License-Identifier: Unlicense OR MIT

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultMandelbrotConfigMatchesDefaultView(t *testing.T) {
	c := DefaultMandelbrotConfig()
	require.Equal(t, "-0.5", c.DefaultCenter[0])
	require.Equal(t, "0", c.DefaultCenter[1])
	require.Equal(t, "4", c.DefaultWidth)
	require.Equal(t, "3", c.DefaultHeight)
}

func TestLoadRegistryFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "configs.yaml")
	yamlDoc := `
configs:
  - id: mandelbrot
    default_center: ["-0.5", "0"]
    default_width: "4"
    default_height: "3"
    orchestration_strategy: Perturbation
    colorizer_ids: [classic, fire]
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0644))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)

	c, ok := reg.Get("mandelbrot")
	require.True(t, ok)
	require.Equal(t, StrategyPerturbation, c.Strategy)
	require.ElementsMatch(t, []string{"classic", "fire"}, c.ColorizerIDs)
}

func TestMaxIterationsScalesWithZoom(t *testing.T) {
	r := DefaultRenderSettings()
	r.IterationScaling = 0.5
	shallow := r.MaxIterationsForMagnitude(0)
	deep := r.MaxIterationsForMagnitude(100)
	require.Equal(t, r.MaxIterationsBase, shallow)
	require.Greater(t, deep, shallow)
}
