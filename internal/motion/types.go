// Package motion holds the camera-motion data model and the trajectory math
// used by the stabilizer: accumulation, smoothing and shift correction.
package motion

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch means two stage sequences that must line up index for
	// index do not. It indicates an upstream contract violation.
	ErrShapeMismatch = errors.New("motion: sequence shape mismatch")

	// ErrEstimationFailed is wrapped by estimators that could not produce a
	// transform for a frame pair.
	ErrEstimationFailed = errors.New("motion: transform estimation failed")

	// ErrNoPriorEstimate means a fallback was requested before any frame pair
	// was estimated successfully.
	ErrNoPriorEstimate = errors.New("motion: no prior successful estimate to fall back on")

	// ErrInvalidRadius rejects smoothing radii below one frame.
	ErrInvalidRadius = errors.New("motion: smoothing radius must be at least 1")
)

// DefaultSmoothingRadius is the half-width, in frames, of the smoothing window.
const DefaultSmoothingRadius = 10

// RawTransform is the motion of one frame relative to the previous one.
type RawTransform struct {
	DX float64 // horizontal shift, pixels
	DY float64 // vertical shift, pixels
	DA float64 // rotation, radians
}

func (t RawTransform) String() string {
	return fmt.Sprintf("dx=%g dy=%g da=%g", t.DX, t.DY, t.DA)
}

// TrajectoryPoint is an absolute cumulative camera position.
type TrajectoryPoint struct {
	X float64
	Y float64
	A float64
}

// Sub returns the component-wise difference p - q.
func (p TrajectoryPoint) Sub(q TrajectoryPoint) TrajectoryPoint {
	return TrajectoryPoint{X: p.X - q.X, Y: p.Y - q.Y, A: p.A - q.A}
}

func (p TrajectoryPoint) String() string {
	return fmt.Sprintf("x=%g y=%g a=%g", p.X, p.Y, p.A)
}

// Trajectory is one cumulative position per raw transform.
type Trajectory []TrajectoryPoint

// DivergenceExtrema is the signed maximum of smoothed minus raw cumulative
// position over all frames, per axis. It sizes the automatic crop.
type DivergenceExtrema struct {
	MaxDX float64
	MaxDY float64
}

// Correction is the output of CorrectShifts.
type Correction struct {
	Transforms []RawTransform
	Extrema    DivergenceExtrema
}

// Stabilization bundles every stage output derived from one raw sequence.
type Stabilization struct {
	Raw        []RawTransform
	Trajectory Trajectory
	Smoothed   Trajectory
	Correction Correction
}

// Plan runs the builder, smoother and corrector over raw.
func Plan(raw []RawTransform, radius int) (Stabilization, error) {
	trajectory := BuildTrajectory(raw)

	smoothed, err := SmoothTrajectory(trajectory, radius)
	if err != nil {
		return Stabilization{}, err
	}

	correction, err := CorrectShifts(raw, trajectory, smoothed)
	if err != nil {
		return Stabilization{}, err
	}

	return Stabilization{
		Raw:        raw,
		Trajectory: trajectory,
		Smoothed:   smoothed,
		Correction: correction,
	}, nil
}
