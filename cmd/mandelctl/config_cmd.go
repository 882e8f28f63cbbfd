// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deepzoom/mandelcore/config"
)

var configRegistryPath string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "List registered fractal configurations",
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().StringVar(&configRegistryPath, "registry", "", "Path to a YAML registry file (default: built-in mandelbrot config only)")
}

func runConfig(cmd *cobra.Command, args []string) error {
	reg := config.NewRegistry()
	reg.Register(config.DefaultMandelbrotConfig())

	if configRegistryPath != "" {
		loaded, err := config.LoadRegistry(configRegistryPath)
		if err != nil {
			return fmt.Errorf("mandelctl: %w", err)
		}
		for _, id := range loaded.IDs() {
			c, _ := loaded.Get(id)
			reg.Register(c)
		}
	}

	for _, id := range reg.IDs() {
		c, _ := reg.Get(id)
		fmt.Printf("%s\tstrategy=%s\tcolorizers=%v\n", c.ID, c.Strategy, c.ColorizerIDs)
	}
	return nil
}
