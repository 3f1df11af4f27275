package motion

import "fmt"

// CorrectShifts nudges every raw transform by the divergence between the
// smoothed and raw cumulative paths at that frame, and records the signed
// maximum x and y divergence.
//
// The raw cumulative position is re-accumulated here and must match
// trajectory exactly; any disagreement in length or value is reported as
// ErrShapeMismatch.
func CorrectShifts(raw []RawTransform, trajectory, smoothed Trajectory) (Correction, error) {
	if len(raw) != len(trajectory) || len(raw) != len(smoothed) {
		return Correction{}, fmt.Errorf("%w: raw=%d trajectory=%d smoothed=%d",
			ErrShapeMismatch, len(raw), len(trajectory), len(smoothed))
	}

	corrected := make([]RawTransform, len(raw))
	// Extrema start at zero, so an all-negative divergence yields zero.
	var extrema DivergenceExtrema

	var running TrajectoryPoint
	for i, t := range raw {
		running.X += t.DX
		running.Y += t.DY
		running.A += t.DA

		if running != trajectory[i] {
			return Correction{}, fmt.Errorf("%w: cumulative position at frame %d is %v, trajectory has %v",
				ErrShapeMismatch, i, running, trajectory[i])
		}

		diff := smoothed[i].Sub(running)

		extrema.MaxDX = max(extrema.MaxDX, diff.X)
		extrema.MaxDY = max(extrema.MaxDY, diff.Y)

		corrected[i] = RawTransform{
			DX: t.DX + diff.X,
			DY: t.DY + diff.Y,
			DA: t.DA + diff.A,
		}
	}

	return Correction{Transforms: corrected, Extrema: extrema}, nil
}
