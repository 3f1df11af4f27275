package vision

import (
	"fmt"

	"gocv.io/x/gocv"

	"vidstab/internal/compensate"
)

// DefaultCodec is the fourcc used for stabilized output.
const DefaultCodec = "avc1"

// Properties are the stream parameters reported by the decoder.
type Properties struct {
	Width      int
	Height     int
	FPS        float64
	FrameCount int
}

// VideoSource decodes a video file frame by frame.
type VideoSource struct {
	path    string
	capture *gocv.VideoCapture
}

// OpenVideoSource opens path for decoding.
func OpenVideoSource(path string) (*VideoSource, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		if capture != nil {
			capture.Close()
		}
		return nil, fmt.Errorf("cannot open video %s: %w", path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("cannot open video %s", path)
	}
	return &VideoSource{path: path, capture: capture}, nil
}

// Properties reads the container metadata. FrameCount may be inaccurate.
func (s *VideoSource) Properties() Properties {
	return Properties{
		Width:      int(s.capture.Get(gocv.VideoCaptureFrameWidth)),
		Height:     int(s.capture.Get(gocv.VideoCaptureFrameHeight)),
		FPS:        s.capture.Get(gocv.VideoCaptureFPS),
		FrameCount: int(s.capture.Get(gocv.VideoCaptureFrameCount)),
	}
}

func (s *VideoSource) Read() (compensate.Frame, error) {
	mat := gocv.NewMat()
	if !s.capture.Read(&mat) || mat.Empty() {
		mat.Close()
		return nil, compensate.ErrEndOfStream
	}
	return NewFrame(mat), nil
}

// Rewind seeks back to the first frame, reopening the file when the backend
// cannot seek.
func (s *VideoSource) Rewind() error {
	s.capture.Set(gocv.VideoCapturePosFrames, 0)
	if s.capture.Get(gocv.VideoCapturePosFrames) == 0 {
		return nil
	}

	capture, err := gocv.VideoCaptureFile(s.path)
	if err != nil {
		if capture != nil {
			capture.Close()
		}
		return fmt.Errorf("reopen %s: %w", s.path, err)
	}
	s.capture.Close()
	s.capture = capture
	return nil
}

func (s *VideoSource) Close() error {
	return s.capture.Close()
}

// VideoSink encodes frames to a file.
type VideoSink struct {
	writer *gocv.VideoWriter
}

// CreateVideoSink opens path for writing width x height color frames.
func CreateVideoSink(path, codec string, fps float64, width, height int) (*VideoSink, error) {
	if codec == "" {
		codec = DefaultCodec
	}
	writer, err := gocv.VideoWriterFile(path, codec, fps, width, height, true)
	if err != nil {
		if writer != nil {
			writer.Close()
		}
		return nil, fmt.Errorf("cannot create video %s: %w", path, err)
	}
	if !writer.IsOpened() {
		writer.Close()
		return nil, fmt.Errorf("cannot create video %s with codec %s", path, codec)
	}
	return &VideoSink{writer: writer}, nil
}

func (s *VideoSink) Write(f compensate.Frame) error {
	mat, err := asMat(f)
	if err != nil {
		return err
	}
	return s.writer.Write(mat)
}

func (s *VideoSink) Close() error {
	return s.writer.Close()
}
