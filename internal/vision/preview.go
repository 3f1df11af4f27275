package vision

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"vidstab/internal/compensate"
)

const (
	previewGap      = 10
	previewMaxWidth = 1920
	previewMaxRows  = 1080
	previewDelayMS  = 20
)

// Preview shows each original frame above its stabilized version in a
// window while pass two runs.
type Preview struct {
	window   *gocv.Window
	original gocv.Mat
	hasFrame bool
}

func NewPreview(title string) *Preview {
	return &Preview{window: gocv.NewWindow(title)}
}

// Source remembers every frame read from src.
func (p *Preview) Source(src compensate.FrameSource) compensate.FrameSource {
	return &previewSource{FrameSource: src, preview: p}
}

// Sink shows every written frame next to the remembered original before
// passing it on.
func (p *Preview) Sink(sink compensate.FrameSink) compensate.FrameSink {
	return &previewSink{FrameSink: sink, preview: p}
}

func (p *Preview) remember(f compensate.Frame) {
	mat, err := asMat(f)
	if err != nil {
		return
	}
	p.forget()
	p.original = mat.Clone()
	p.hasFrame = true
}

func (p *Preview) forget() {
	if p.hasFrame {
		p.original.Close()
		p.hasFrame = false
	}
}

func (p *Preview) show(f compensate.Frame) {
	stabilized, err := asMat(f)
	if err != nil || !p.hasFrame {
		return
	}

	gap := gocv.NewMat()
	defer gap.Close()
	gocv.CopyMakeBorder(p.original, &gap, 0, previewGap, 0, 0, gocv.BorderConstant, color.RGBA{})

	stacked := gocv.NewMat()
	defer stacked.Close()
	gocv.Vconcat(gap, stabilized, &stacked)

	if stacked.Cols() > previewMaxWidth || stacked.Rows() > previewMaxRows {
		half := gocv.NewMat()
		defer half.Close()
		gocv.Resize(stacked, &half, image.Pt(stacked.Cols()/2, stacked.Rows()/2), 0, 0, gocv.InterpolationLinear)
		p.window.IMShow(half)
	} else {
		p.window.IMShow(stacked)
	}
	p.window.WaitKey(previewDelayMS)
}

func (p *Preview) Close() error {
	p.forget()
	return p.window.Close()
}

type previewSource struct {
	compensate.FrameSource
	preview *Preview
}

func (s *previewSource) Read() (compensate.Frame, error) {
	f, err := s.FrameSource.Read()
	if err == nil {
		s.preview.remember(f)
	}
	return f, err
}

type previewSink struct {
	compensate.FrameSink
	preview *Preview
}

func (s *previewSink) Write(f compensate.Frame) error {
	s.preview.show(f)
	return s.FrameSink.Write(f)
}
