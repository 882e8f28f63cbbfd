// SPDX-License-Identifier: Unlicense OR MIT

package colorize

import (
	"sort"

	"gonum.org/v1/gonum/interp"
)

// Curve is the transfer curve of spec §3: an ordered list of 2-D
// control points, anchored at x=0 and x=1, interpreted as a cubic
// interpolating spline. gonum's PiecewiseCubic backs the evaluation
// instead of a hand-rolled Catmull-Rom, since the reference corpus
// already carries gonum as a dependency for exactly this kind of
// numeric interpolation task.
type Curve struct {
	Points [][2]float64 // (x, y), sorted by x; x=0 and x=1 must be present
}

// IdentityCurve is the default transfer curve: y=x everywhere.
func IdentityCurve() Curve {
	return Curve{Points: [][2]float64{{0, 0}, {1, 1}}}
}

// fit builds a gonum PiecewiseCubic predictor over c's control points.
// Returns an error only if fewer than two points are given or x is not
// strictly increasing, mirroring gonum's own Fit contract.
func (c Curve) fit() (*interp.PiecewiseCubic, error) {
	pts := append([][2]float64(nil), c.Points...)
	sort.Slice(pts, func(i, j int) bool { return pts[i][0] < pts[j][0] })

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = p[0]
		ys[i] = p[1]
	}

	pc := new(interp.PiecewiseCubic)
	if err := pc.Fit(xs, ys); err != nil {
		return nil, err
	}
	return pc, nil
}

// Eval evaluates the curve at x in [0,1], clamping out-of-range input
// to the nearest anchor rather than extrapolating the spline.
func (c Curve) Eval(x float64) float64 {
	if x <= 0 {
		return c.Points[0][1]
	}
	last := c.Points[len(c.Points)-1]
	if x >= last[0] {
		return last[1]
	}
	pc, err := c.fit()
	if err != nil {
		// Degenerate curve data (e.g. fewer than two points); fall
		// back to identity so colorization never panics on bad config.
		return x
	}
	return pc.Predict(x)
}
