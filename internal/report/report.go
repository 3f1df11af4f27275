// Package report measures how much jitter stabilization removed and plots
// the camera path before and after smoothing.
package report

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"vidstab/internal/motion"
)

// AxisStats summarizes the frame-to-frame motion along one axis.
type AxisStats struct {
	Mean   float64
	StdDev float64
}

// Stats holds per-axis jitter of a trajectory.
type Stats struct {
	X AxisStats
	Y AxisStats
	A AxisStats
}

// Translation is the combined x/y standard deviation in pixels.
func (s Stats) Translation() float64 {
	return math.Hypot(s.X.StdDev, s.Y.StdDev)
}

// Comparison contrasts the camera path before and after smoothing.
type Comparison struct {
	Raw      Stats
	Smoothed Stats
	// Reduction is the fraction of translational jitter removed, 0 when
	// there was none to begin with.
	Reduction float64
}

// Jitter computes the spread of the steps between consecutive points of t.
func Jitter(t motion.Trajectory) Stats {
	if len(t) < 2 {
		return Stats{}
	}

	n := len(t) - 1
	dx := make([]float64, n)
	dy := make([]float64, n)
	da := make([]float64, n)
	for i := 0; i < n; i++ {
		step := t[i+1].Sub(t[i])
		dx[i], dy[i], da[i] = step.X, step.Y, step.A
	}

	return Stats{X: axis(dx), Y: axis(dy), A: axis(da)}
}

func axis(steps []float64) AxisStats {
	if len(steps) < 2 {
		var mean float64
		if len(steps) == 1 {
			mean = steps[0]
		}
		return AxisStats{Mean: mean}
	}
	mean, std := stat.MeanStdDev(steps, nil)
	return AxisStats{Mean: mean, StdDev: std}
}

// Compare measures raw and smoothed trajectories of the same video.
func Compare(raw, smoothed motion.Trajectory) (Comparison, error) {
	if len(raw) != len(smoothed) {
		return Comparison{}, fmt.Errorf("%w: raw has %d points, smoothed %d",
			motion.ErrShapeMismatch, len(raw), len(smoothed))
	}

	c := Comparison{Raw: Jitter(raw), Smoothed: Jitter(smoothed)}
	if before := c.Raw.Translation(); before > 0 {
		c.Reduction = 1 - c.Smoothed.Translation()/before
	}
	return c, nil
}
