// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/image/draw"

	"github.com/deepzoom/mandelcore/colorize"
	"github.com/deepzoom/mandelcore/config"
	"github.com/deepzoom/mandelcore/orchestrator"
	"github.com/deepzoom/mandelcore/viewport"
)

var (
	renderCenterX     string
	renderCenterY     string
	renderWidth       string
	renderHeight      string
	renderCanvasW     int
	renderCanvasH     int
	renderMaxIter     uint32
	renderIterScale   float64
	renderPalette     string
	renderSmooth      bool
	renderHistogram   bool
	renderShading     bool
	renderOut         string
	renderConcurrent  int
	renderSupersample int
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one viewport to a PNG file",
	RunE:  runRender,
}

func init() {
	def := config.DefaultMandelbrotConfig()
	settings := config.DefaultRenderSettings()

	renderCmd.Flags().StringVar(&renderCenterX, "center-x", def.DefaultCenter[0], "Fractal-plane center real part, as a decimal string")
	renderCmd.Flags().StringVar(&renderCenterY, "center-y", def.DefaultCenter[1], "Fractal-plane center imaginary part, as a decimal string")
	renderCmd.Flags().StringVar(&renderWidth, "width", def.DefaultWidth, "Fractal-plane viewport width, as a decimal string")
	renderCmd.Flags().StringVar(&renderHeight, "height", def.DefaultHeight, "Fractal-plane viewport height, as a decimal string")
	renderCmd.Flags().IntVar(&renderCanvasW, "canvas-width", 800, "Output image width in pixels")
	renderCmd.Flags().IntVar(&renderCanvasH, "canvas-height", 600, "Output image height in pixels")
	renderCmd.Flags().Uint32Var(&renderMaxIter, "max-iterations", settings.MaxIterationsBase, "Base iteration count before zoom scaling")
	renderCmd.Flags().Float64Var(&renderIterScale, "iteration-scaling", settings.IterationScaling, "Per-decade iteration count scaling factor")
	renderCmd.Flags().StringVar(&renderPalette, "palette", settings.PaletteID, "Palette ID: classic, grayscale, fire")
	renderCmd.Flags().BoolVar(&renderSmooth, "smooth", settings.Smooth, "Apply continuous (smooth) iteration coloring")
	renderCmd.Flags().BoolVar(&renderHistogram, "histogram", settings.Histogram, "Apply histogram iteration-count equalization")
	renderCmd.Flags().BoolVar(&renderShading, "shading", settings.Shading, "Apply derivative-based Blinn-Phong slope shading")
	renderCmd.Flags().StringVarP(&renderOut, "output", "o", "mandelbrot.png", "Output PNG path")
	renderCmd.Flags().IntVar(&renderConcurrent, "concurrency", 0, "CPU worker pool size (0 = runtime.NumCPU())")
	renderCmd.Flags().IntVar(&renderSupersample, "supersample", 1, "Render at N times the output resolution and downscale for antialiasing (1 disables)")
}

func runRender(cmd *cobra.Command, args []string) error {
	entry := logrus.WithField("command", "render")

	vp, err := viewport.New(renderCenterX, renderCenterY, renderWidth, renderHeight, 64)
	if err != nil {
		return fmt.Errorf("mandelctl: %w", err)
	}
	factor := renderSupersample
	if factor < 1 {
		factor = 1
	}
	canvas := viewport.CanvasSize{W: renderCanvasW * factor, H: renderCanvasH * factor}
	vp = viewport.FitToCanvas(vp, canvas)

	settings := config.RenderSettings{
		MaxIterationsBase: renderMaxIter,
		IterationScaling:  renderIterScale,
		PaletteID:         renderPalette,
		Smooth:            renderSmooth,
		Histogram:         renderHistogram,
		Shading:           renderShading,
		Lighting:          colorize.DefaultLightingParams(),
	}
	cfg := config.DefaultMandelbrotConfig()

	img := image.NewRGBA(image.Rect(0, 0, canvas.W, canvas.H))
	orc := orchestrator.New(func(x, y, w, h int, rgba []byte) {
		for row := 0; row < h; row++ {
			srcOff := row * w * 4
			dstOff := img.PixOffset(x, y+row)
			copy(img.Pix[dstOff:dstOff+w*4], rgba[srcOff:srcOff+w*4])
		}
	})
	orc.Concurrency = renderConcurrent
	// orc.GPU stays nil: WebGPU device/adapter bootstrap is the browser
	// host's job (spec §4.7), not a headless CLI's, so mandelctl always
	// renders on the CPU worker pool.

	start := time.Now()
	progress, err := orc.Render(context.Background(), vp, canvas, cfg, settings)
	if err != nil {
		return fmt.Errorf("mandelctl: render: %w", err)
	}
	entry.WithFields(logrus.Fields{
		"tiles":    progress.TilesTotal,
		"glitched": progress.GlitchedPixels,
		"elapsed":  time.Since(start),
	}).Info("render complete")

	out := image.Image(img)
	if factor > 1 {
		downscaled := image.NewRGBA(image.Rect(0, 0, renderCanvasW, renderCanvasH))
		draw.CatmullRom.Scale(downscaled, downscaled.Bounds(), img, img.Bounds(), draw.Over, nil)
		out = downscaled
	}

	f, err := os.Create(renderOut)
	if err != nil {
		return fmt.Errorf("mandelctl: create %s: %w", renderOut, err)
	}
	defer f.Close()
	if err := png.Encode(f, out); err != nil {
		return fmt.Errorf("mandelctl: encode %s: %w", renderOut, err)
	}
	entry.WithField("path", renderOut).Info("wrote png")
	return nil
}
