package vision

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"

	"vidstab/internal/compensate"
	"vidstab/internal/motion"
)

// trackedStatus marks a point that optical flow found in the next frame.
const trackedStatus = 1

// EstimatorConfig tunes corner detection and tracking.
type EstimatorConfig struct {
	MaxCorners       int
	Quality          float64
	MinDistance      float64
	MinTrackedPoints int
}

// DefaultEstimatorConfig tracks up to 200 corners at least 30px apart.
func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		MaxCorners:       200,
		Quality:          0.01,
		MinDistance:      30,
		MinTrackedPoints: 3,
	}
}

// Validate rejects values OpenCV would refuse.
func (c EstimatorConfig) Validate() error {
	switch {
	case c.MaxCorners < 1:
		return fmt.Errorf("max corners must be positive, got %d", c.MaxCorners)
	case c.Quality <= 0 || c.Quality >= 1:
		return fmt.Errorf("corner quality must be in (0, 1), got %g", c.Quality)
	case c.MinDistance < 0:
		return fmt.Errorf("min corner distance cannot be negative, got %g", c.MinDistance)
	case c.MinTrackedPoints < 2:
		return fmt.Errorf("at least 2 tracked points are needed, got %d", c.MinTrackedPoints)
	}
	return nil
}

// LKEstimator measures inter-frame motion by tracking Shi-Tomasi corners with
// pyramidal Lucas-Kanade flow and fitting a partial affine transform.
type LKEstimator struct {
	config EstimatorConfig
}

func NewLKEstimator(config EstimatorConfig) (*LKEstimator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &LKEstimator{config: config}, nil
}

func (e *LKEstimator) Estimate(prev, cur compensate.Frame) (motion.RawTransform, error) {
	prevGray, err := Grayscale(prev)
	if err != nil {
		return motion.RawTransform{}, err
	}
	defer prevGray.Close()

	curGray, err := Grayscale(cur)
	if err != nil {
		return motion.RawTransform{}, err
	}
	defer curGray.Close()

	corners := gocv.NewMat()
	defer corners.Close()
	gocv.GoodFeaturesToTrack(prevGray, &corners, e.config.MaxCorners, e.config.Quality, e.config.MinDistance)
	if corners.Empty() {
		return motion.RawTransform{}, fmt.Errorf("%w: no trackable features", motion.ErrEstimationFailed)
	}

	next := gocv.NewMat()
	defer next.Close()
	status := gocv.NewMat()
	defer status.Close()
	flowErr := gocv.NewMat()
	defer flowErr.Close()
	gocv.CalcOpticalFlowPyrLK(prevGray, curGray, corners, next, &status, &flowErr)

	var from, to []gocv.Point2f
	for i := 0; i < status.Rows(); i++ {
		if status.GetUCharAt(i, 0) != trackedStatus {
			continue
		}
		p := corners.GetVecfAt(i, 0)
		q := next.GetVecfAt(i, 0)
		from = append(from, gocv.Point2f{X: p[0], Y: p[1]})
		to = append(to, gocv.Point2f{X: q[0], Y: q[1]})
	}
	if len(from) < e.config.MinTrackedPoints {
		return motion.RawTransform{}, fmt.Errorf("%w: only %d of %d points tracked",
			motion.ErrEstimationFailed, len(from), status.Rows())
	}

	fromVec := gocv.NewPoint2fVectorFromPoints(from)
	defer fromVec.Close()
	toVec := gocv.NewPoint2fVectorFromPoints(to)
	defer toVec.Close()

	m := gocv.EstimateAffinePartial2D(fromVec, toVec)
	defer m.Close()
	if m.Empty() {
		return motion.RawTransform{}, fmt.Errorf("%w: no affine fit", motion.ErrEstimationFailed)
	}

	return TransformFromAffine(
		m.GetDoubleAt(0, 0), m.GetDoubleAt(0, 2),
		m.GetDoubleAt(1, 0), m.GetDoubleAt(1, 2),
	), nil
}

// TransformFromAffine decomposes a partial affine [[a,-b,tx],[b,a,ty]] into
// translation and rotation.
func TransformFromAffine(a, tx, b, ty float64) motion.RawTransform {
	return motion.RawTransform{DX: tx, DY: ty, DA: math.Atan2(b, a)}
}
