package motion

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// parallelThreshold is the trajectory length above which smoothing is split
// across goroutines.
const parallelThreshold = 4096

// BuildTrajectory integrates raw into absolute cumulative positions.
// Entry i is the component-wise sum of raw[0..i].
func BuildTrajectory(raw []RawTransform) Trajectory {
	trajectory := make(Trajectory, len(raw))

	var x, y, a float64
	for i, t := range raw {
		x += t.DX
		y += t.DY
		a += t.DA
		trajectory[i] = TrajectoryPoint{X: x, Y: y, A: a}
	}

	return trajectory
}

// SmoothTrajectory applies a centered moving average of half-width radius.
// Near the ends the window is truncated to the valid range and the divisor is
// the number of samples actually summed; there is no zero padding.
func SmoothTrajectory(trajectory Trajectory, radius int) (Trajectory, error) {
	if radius < 1 {
		return nil, ErrInvalidRadius
	}

	n := len(trajectory)
	smoothed := make(Trajectory, n)
	if n <= 1 {
		copy(smoothed, trajectory)
		return smoothed, nil
	}

	if n < parallelThreshold {
		smoothRange(trajectory, smoothed, radius, 0, n)
		return smoothed, nil
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		start, end := start, min(start+chunk, n)
		g.Go(func() error {
			smoothRange(trajectory, smoothed, radius, start, end)
			return nil
		})
	}
	// smoothRange never fails
	_ = g.Wait()

	return smoothed, nil
}

// smoothRange fills dst[start:end]. Each index is computed independently so
// disjoint ranges may run concurrently.
func smoothRange(src, dst Trajectory, radius, start, end int) {
	n := len(src)
	for i := start; i < end; i++ {
		lo := max(0, i-radius)
		hi := min(n-1, i+radius)

		var sumX, sumY, sumA float64
		for j := lo; j <= hi; j++ {
			sumX += src[j].X
			sumY += src[j].Y
			sumA += src[j].A
		}

		count := float64(hi - lo + 1)
		dst[i] = TrajectoryPoint{X: sumX / count, Y: sumY / count, A: sumA / count}
	}
}

// WindowSize is the number of samples averaged at index i of an n-long
// trajectory: min(i, radius) + min(n-1-i, radius) + 1.
func WindowSize(i, n, radius int) int {
	return min(i, radius) + min(n-1-i, radius) + 1
}
