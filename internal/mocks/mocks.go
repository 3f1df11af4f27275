package mocks

import (
	"errors"
	"fmt"
	"image"

	"vidstab/internal/compensate"
	"vidstab/internal/motion"
)

// MockFrame is a frame with dimensions and an identity but no pixels.
type MockFrame struct {
	ID     int // index of the source frame it derives from
	Height int
	Width  int
	Closed bool
}

func (f *MockFrame) Rows() int { return f.Height }
func (f *MockFrame) Cols() int { return f.Width }

func (f *MockFrame) Close() error {
	if f.Closed {
		return fmt.Errorf("mock frame %d closed twice", f.ID)
	}
	f.Closed = true
	return nil
}

// MockFrameSource serves Count frames of Width x Height.
type MockFrameSource struct {
	Count      int
	Width      int
	Height     int
	ReadErrors map[int]error // keyed by frame index
	RewindErr  error

	pos     int
	Rewinds int
	Served  []*MockFrame
}

// NewMockFrameSource creates a source of count frames.
func NewMockFrameSource(count, width, height int) *MockFrameSource {
	return &MockFrameSource{
		Count:      count,
		Width:      width,
		Height:     height,
		ReadErrors: make(map[int]error),
	}
}

func (s *MockFrameSource) Read() (compensate.Frame, error) {
	if s.pos >= s.Count {
		return nil, compensate.ErrEndOfStream
	}
	idx := s.pos
	s.pos++
	if err, exists := s.ReadErrors[idx]; exists {
		return nil, err
	}
	f := &MockFrame{ID: idx, Height: s.Height, Width: s.Width}
	s.Served = append(s.Served, f)
	return f, nil
}

func (s *MockFrameSource) Rewind() error {
	if s.RewindErr != nil {
		return s.RewindErr
	}
	s.pos = 0
	s.Rewinds++
	return nil
}

// MockFrameSink records the source IDs of written frames.
type MockFrameSink struct {
	Written []int
	Sizes   []image.Point
	Errors  map[int]error // keyed by source frame ID
}

func NewMockFrameSink() *MockFrameSink {
	return &MockFrameSink{Errors: make(map[int]error)}
}

func (s *MockFrameSink) Write(f compensate.Frame) error {
	mf, ok := f.(*MockFrame)
	if !ok {
		return errors.New("mock sink: unexpected frame type")
	}
	if err, exists := s.Errors[mf.ID]; exists {
		return err
	}
	if mf.Closed {
		return fmt.Errorf("mock sink: frame %d already closed", mf.ID)
	}
	s.Written = append(s.Written, mf.ID)
	s.Sizes = append(s.Sizes, image.Pt(mf.Width, mf.Height))
	return nil
}

// MockTransformer fakes warping and cropping. WarpSizes overrides the warped
// dimensions (X cols, Y rows) of chosen source frames so crop overflow can be
// provoked.
type MockTransformer struct {
	WarpSizes  map[int]image.Point
	WarpErrors map[int]error
	CropErrors map[int]error

	WarpCalls []WarpCall
	CropCalls []CropCall
	Produced  []*MockFrame
}

func NewMockTransformer() *MockTransformer {
	return &MockTransformer{
		WarpSizes:  make(map[int]image.Point),
		WarpErrors: make(map[int]error),
		CropErrors: make(map[int]error),
	}
}

func (m *MockTransformer) Warp(src compensate.Frame, a compensate.Affine) (compensate.Frame, error) {
	mf := src.(*MockFrame)
	m.WarpCalls = append(m.WarpCalls, WarpCall{SourceID: mf.ID, Matrix: a})
	if err, exists := m.WarpErrors[mf.ID]; exists {
		return nil, err
	}
	out := &MockFrame{ID: mf.ID, Height: mf.Height, Width: mf.Width}
	if size, exists := m.WarpSizes[mf.ID]; exists {
		out.Width, out.Height = size.X, size.Y
	}
	m.Produced = append(m.Produced, out)
	return out, nil
}

func (m *MockTransformer) CropResize(src compensate.Frame, region image.Rectangle, rows, cols int) (compensate.Frame, error) {
	mf := src.(*MockFrame)
	m.CropCalls = append(m.CropCalls, CropCall{SourceID: mf.ID, Region: region, Rows: rows, Cols: cols})
	if err, exists := m.CropErrors[mf.ID]; exists {
		return nil, err
	}
	out := &MockFrame{ID: mf.ID, Height: rows, Width: cols}
	m.Produced = append(m.Produced, out)
	return out, nil
}

// MockEstimator returns scripted transforms per transition, in call order.
// Transitions listed in Failures report motion.ErrEstimationFailed.
type MockEstimator struct {
	Transforms []motion.RawTransform
	Failures   map[int]bool
	Calls      [][2]int // (prev ID, cur ID)
}

func NewMockEstimator(transforms []motion.RawTransform) *MockEstimator {
	return &MockEstimator{Transforms: transforms, Failures: make(map[int]bool)}
}

func (m *MockEstimator) Estimate(prev, cur compensate.Frame) (motion.RawTransform, error) {
	idx := len(m.Calls)
	m.Calls = append(m.Calls, [2]int{prev.(*MockFrame).ID, cur.(*MockFrame).ID})
	if m.Failures[idx] {
		return motion.RawTransform{}, fmt.Errorf("%w: too few tracked points", motion.ErrEstimationFailed)
	}
	if idx < len(m.Transforms) {
		return m.Transforms[idx], nil
	}
	return motion.RawTransform{}, nil
}

// AllClosed reports whether every frame the fakes handed out was closed.
func AllClosed(frames ...[]*MockFrame) bool {
	for _, group := range frames {
		for _, f := range group {
			if !f.Closed {
				return false
			}
		}
	}
	return true
}
