// Package mocks provides in-memory stand-ins for the video collaborators so
// the stabilizer can be tested without OpenCV or real media files.
package mocks

import (
	"image"

	"vidstab/internal/compensate"
)

// Compile-time checks that the fakes satisfy the collaborator contracts.
var (
	_ compensate.Frame       = (*MockFrame)(nil)
	_ compensate.FrameSource = (*MockFrameSource)(nil)
	_ compensate.FrameSink   = (*MockFrameSink)(nil)
	_ compensate.Transformer = (*MockTransformer)(nil)
)

// CropCall records one CropResize invocation.
type CropCall struct {
	SourceID int
	Region   image.Rectangle
	Rows     int
	Cols     int
}

// WarpCall records one Warp invocation.
type WarpCall struct {
	SourceID int
	Matrix   compensate.Affine
}
