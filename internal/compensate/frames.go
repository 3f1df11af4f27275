// Package compensate applies the corrected per-frame transforms to the
// source video in a second pass, cropping and rescaling every frame so the
// borders uncovered by the correction stay hidden.
package compensate

import (
	"errors"
	"image"
	"math"

	"vidstab/internal/motion"
)

// ErrEndOfStream is returned by a FrameSource with no frames left.
var ErrEndOfStream = errors.New("end of stream")

// Frame is a decoded picture owned by whoever received it.
type Frame interface {
	Rows() int
	Cols() int
	Close() error
}

// FrameSource yields frames in order and can restart from the first one.
type FrameSource interface {
	Read() (Frame, error)
	Rewind() error
}

// FrameSink accepts output frames in order. It does not take ownership.
type FrameSink interface {
	Write(Frame) error
}

// Transformer performs the pixel work. Returned frames are new and owned by
// the caller.
type Transformer interface {
	// Warp applies m to src, keeping its dimensions.
	Warp(src Frame, m Affine) (Frame, error)
	// CropResize cuts region out of src and scales it to rows x cols.
	CropResize(src Frame, region image.Rectangle, rows, cols int) (Frame, error)
}

// Affine is a 2x3 matrix mapping source to destination coordinates.
type Affine [2][3]float64

// RigidAffine builds a rotation plus translation from t. Scale and shear are
// never modeled.
func RigidAffine(t motion.RawTransform) Affine {
	sin, cos := math.Sincos(t.DA)
	return Affine{
		{cos, -sin, t.DX},
		{sin, cos, t.DY},
	}
}
