// Package vision implements the stabilizer's video collaborators on top of
// OpenCV: decoding and encoding, motion estimation between two frames, and
// the warp, crop and resize steps of compensation.
package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"vidstab/internal/compensate"
	"vidstab/internal/pipeline"
)

var (
	_ compensate.Frame       = (*Frame)(nil)
	_ compensate.FrameSource = (*VideoSource)(nil)
	_ compensate.FrameSink   = (*VideoSink)(nil)
	_ compensate.Transformer = (*Transformer)(nil)
	_ pipeline.Estimator     = (*LKEstimator)(nil)
)

// Frame is a decoded BGR picture.
type Frame struct {
	mat gocv.Mat
}

// NewFrame takes ownership of mat.
func NewFrame(mat gocv.Mat) *Frame {
	return &Frame{mat: mat}
}

func (f *Frame) Rows() int     { return f.mat.Rows() }
func (f *Frame) Cols() int     { return f.mat.Cols() }
func (f *Frame) Mat() gocv.Mat { return f.mat }
func (f *Frame) Close() error  { return f.mat.Close() }

func asMat(f compensate.Frame) (gocv.Mat, error) {
	frame, ok := f.(*Frame)
	if !ok {
		return gocv.Mat{}, fmt.Errorf("vision: unsupported frame type %T", f)
	}
	if frame.mat.Empty() {
		return gocv.Mat{}, fmt.Errorf("vision: empty frame")
	}
	return frame.mat, nil
}

// Grayscale converts a BGR frame to a new single-channel Mat. Frames that are
// already single-channel are cloned.
func Grayscale(f compensate.Frame) (gocv.Mat, error) {
	src, err := asMat(f)
	if err != nil {
		return gocv.Mat{}, err
	}
	if src.Channels() == 1 {
		return src.Clone(), nil
	}

	gray := gocv.NewMat()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	return gray, nil
}

// Transformer performs compensation with gocv.WarpAffine and gocv.Resize.
type Transformer struct {
	Interpolation gocv.InterpolationFlags
}

// NewTransformer uses bilinear interpolation.
func NewTransformer() *Transformer {
	return &Transformer{Interpolation: gocv.InterpolationLinear}
}

func (t *Transformer) Warp(src compensate.Frame, a compensate.Affine) (compensate.Frame, error) {
	mat, err := asMat(src)
	if err != nil {
		return nil, err
	}

	m := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	defer m.Close()
	for r := range a {
		for c := range a[r] {
			m.SetDoubleAt(r, c, a[r][c])
		}
	}

	dst := gocv.NewMat()
	gocv.WarpAffine(mat, &dst, m, image.Pt(mat.Cols(), mat.Rows()))
	if dst.Empty() {
		dst.Close()
		return nil, fmt.Errorf("vision: warp produced an empty frame")
	}
	return NewFrame(dst), nil
}

func (t *Transformer) CropResize(src compensate.Frame, region image.Rectangle, rows, cols int) (compensate.Frame, error) {
	mat, err := asMat(src)
	if err != nil {
		return nil, err
	}
	bounds := image.Rect(0, 0, mat.Cols(), mat.Rows())
	if region.Empty() || !region.In(bounds) {
		return nil, fmt.Errorf("vision: crop region %v outside frame %v", region, bounds)
	}

	roi := mat.Region(region)
	defer roi.Close()

	dst := gocv.NewMat()
	gocv.Resize(roi, &dst, image.Pt(cols, rows), 0, 0, t.Interpolation)
	return NewFrame(dst), nil
}
