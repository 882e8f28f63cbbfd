// SPDX-License-Identifier: Unlicense OR MIT

package orchestrator

import (
	"github.com/deepzoom/mandelcore/colorize"
	"github.com/deepzoom/mandelcore/internal/f32color"
)

// defaultPalettes returns the built-in palette set matching
// config.DefaultMandelbrotConfig's ColorizerIDs, so a fresh Orchestrator
// can render without the caller supplying its own palette registry.
func defaultPalettes() map[string]colorize.Palette {
	return map[string]colorize.Palette{
		"classic": {
			ID: "classic",
			Stops: []colorize.ColorStop{
				{Position: 0, Color: f32color.RGBA{R: 0, G: 0, B: 0.1, A: 1}, MidpointBias: 0.5},
				{Position: 0.16, Color: f32color.RGBA{R: 0.05, G: 0.1, B: 0.4, A: 1}, MidpointBias: 0.5},
				{Position: 0.42, Color: f32color.RGBA{R: 0.9, G: 0.6, B: 0.1, A: 1}, MidpointBias: 0.5},
				{Position: 0.64, Color: f32color.RGBA{R: 1, G: 1, B: 1, A: 1}, MidpointBias: 0.5},
				{Position: 1, Color: f32color.RGBA{R: 0, G: 0, B: 0.1, A: 1}, MidpointBias: 0.5},
			},
		},
		"grayscale": {
			ID: "grayscale",
			Stops: []colorize.ColorStop{
				{Position: 0, Color: f32color.RGBA{R: 0, G: 0, B: 0, A: 1}, MidpointBias: 0.5},
				{Position: 1, Color: f32color.RGBA{R: 1, G: 1, B: 1, A: 1}, MidpointBias: 0.5},
			},
		},
		"fire": {
			ID: "fire",
			Stops: []colorize.ColorStop{
				{Position: 0, Color: f32color.RGBA{R: 0, G: 0, B: 0, A: 1}, MidpointBias: 0.5},
				{Position: 0.3, Color: f32color.RGBA{R: 0.6, G: 0, B: 0, A: 1}, MidpointBias: 0.5},
				{Position: 0.6, Color: f32color.RGBA{R: 1, G: 0.5, B: 0, A: 1}, MidpointBias: 0.5},
				{Position: 1, Color: f32color.RGBA{R: 1, G: 1, B: 0.8, A: 1}, MidpointBias: 0.5},
			},
		},
	}
}
