// Package crop sizes the border trimmed from every stabilized frame so the
// black edges exposed by motion compensation stay out of view.
package crop

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	"vidstab/internal/motion"
)

const (
	// MaxPixels is the hard ceiling for an explicit crop.
	MaxPixels = 500

	// AutoKeyword selects the automatic policy.
	AutoKeyword = "AUTO"
)

var (
	// ErrInvalidCrop is a fatal configuration error.
	ErrInvalidCrop = errors.New("invalid border crop value")

	// ErrCropOverflow means the margins would remove the whole frame.
	ErrCropOverflow = errors.New("crop exceeds frame bounds")
)

// Policy is either automatic or an explicit pixel count.
type Policy struct {
	Auto   bool
	Pixels int
}

// AutoPolicy derives the margin from the divergence extrema.
func AutoPolicy() Policy {
	return Policy{Auto: true}
}

func (p Policy) String() string {
	if p.Auto {
		return AutoKeyword
	}
	return strconv.Itoa(p.Pixels)
}

// ParsePolicy accepts "AUTO" (any case) or an integer in [0, MaxPixels].
func ParsePolicy(value string) (Policy, error) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, AutoKeyword) {
		return AutoPolicy(), nil
	}

	pixels, err := strconv.Atoi(value)
	if err != nil {
		return Policy{}, fmt.Errorf("%w: %q is neither %s nor an integer", ErrInvalidCrop, value, AutoKeyword)
	}

	p := Policy{Pixels: pixels}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate checks an explicit pixel count against the ceiling.
func (p Policy) Validate() error {
	if p.Auto {
		return nil
	}
	if p.Pixels < 0 || p.Pixels > MaxPixels {
		return fmt.Errorf("%w: %d is outside [0, %d]", ErrInvalidCrop, p.Pixels, MaxPixels)
	}
	return nil
}

// Margin is a symmetric border. X is removed from the top and bottom rows,
// Y from the left and right columns.
type Margin struct {
	X int
	Y int
}

func (m Margin) String() string {
	return fmt.Sprintf("x=%d y=%d", m.X, m.Y)
}

// Plan converts the divergence extrema into a margin for a width x height
// frame. The dominant axis takes the truncated divergence and the other axis
// is scaled by the frame's aspect ratio. An explicit policy fixes Y and scales
// X the same way.
func Plan(extrema motion.DivergenceExtrema, width, height int, p Policy) Margin {
	if width <= 0 || height <= 0 {
		return Margin{}
	}

	w, h := float64(width), float64(height)

	var m Margin
	switch {
	case !p.Auto:
		m.Y = p.Pixels
		m.X = int(float64(m.Y) * w / h)
	case extrema.MaxDX > extrema.MaxDY:
		m.X = int(extrema.MaxDX)
		m.Y = int(float64(m.X) * h / w)
	default:
		m.Y = int(extrema.MaxDY)
		m.X = int(float64(m.Y) * w / h)
	}

	m.X = max(m.X, 0)
	m.Y = max(m.Y, 0)
	return m
}

// Fits reports whether the margin leaves a non-empty interior in a
// rows x cols frame.
func (m Margin) Fits(rows, cols int) error {
	if 2*m.X >= rows || 2*m.Y >= cols {
		return fmt.Errorf("%w: margin %v on %dx%d frame", ErrCropOverflow, m, cols, rows)
	}
	return nil
}

// Interior is the region kept after cropping a rows x cols frame.
func (m Margin) Interior(rows, cols int) image.Rectangle {
	return image.Rect(m.Y, m.X, cols-m.Y, rows-m.X)
}
