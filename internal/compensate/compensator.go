package compensate

import (
	"context"
	"errors"
	"fmt"

	"vidstab/internal/crop"
	"vidstab/internal/logging"
	"vidstab/internal/motion"
)

// State is the position of the compensator within one frame.
type State int

const (
	AwaitingFrame State = iota
	Warping
	CropCheck
	Cropping
	Emit
	Skip
)

func (s State) String() string {
	switch s {
	case AwaitingFrame:
		return "AWAITING_FRAME"
	case Warping:
		return "WARPING"
	case CropCheck:
		return "CROP_CHECK"
	case Cropping:
		return "CROPPING"
	case Emit:
		return "EMIT"
	case Skip:
		return "SKIP"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Outcome tells whether a frame reached the sink.
type Outcome int

const (
	Emitted Outcome = iota
	Skipped
)

func (o Outcome) String() string {
	if o == Emitted {
		return "emitted"
	}
	return "skipped"
}

// Result is the per-frame verdict. Reason is set for skipped frames and
// records the state the frame failed in.
type Result struct {
	Index     int
	Outcome   Outcome
	FailedIn  State
	Reason    error
	Transform motion.RawTransform
}

// Summary counts the frames of one compensation pass.
type Summary struct {
	Emitted         int
	Skipped         int
	SourceExhausted bool
}

// Compensator warps, crops and rescales frames one at a time.
type Compensator struct {
	transformer Transformer
	sink        FrameSink
	margin      crop.Margin
	state       State
}

// NewCompensator creates a compensator writing to sink.
func NewCompensator(transformer Transformer, sink FrameSink, margin crop.Margin) *Compensator {
	return &Compensator{
		transformer: transformer,
		sink:        sink,
		margin:      margin,
		state:       AwaitingFrame,
	}
}

// State reports the current state. Between frames it is AwaitingFrame.
func (c *Compensator) State() State {
	return c.state
}

// Process compensates one frame with transform t. The caller keeps ownership
// of frame.
func (c *Compensator) Process(index int, frame Frame, t motion.RawTransform) Result {
	result := Result{Index: index, Transform: t}
	defer func() { c.state = AwaitingFrame }()

	skip := func(err error) Result {
		result.Outcome = Skipped
		result.FailedIn = c.state
		result.Reason = err
		c.state = Skip
		logging.Errorf("frame %d skipped in %s: %v", index, result.FailedIn, err)
		return result
	}

	c.state = Warping
	warped, err := c.transformer.Warp(frame, RigidAffine(t))
	if err != nil {
		return skip(fmt.Errorf("warp: %w", err))
	}
	defer warped.Close()

	c.state = CropCheck
	rows, cols := warped.Rows(), warped.Cols()
	if err := c.margin.Fits(rows, cols); err != nil {
		return skip(err)
	}

	c.state = Cropping
	out, err := c.transformer.CropResize(warped, c.margin.Interior(rows, cols), frame.Rows(), frame.Cols())
	if err != nil {
		return skip(fmt.Errorf("crop: %w", err))
	}
	defer out.Close()

	c.state = Emit
	if err := c.sink.Write(out); err != nil {
		return skip(fmt.Errorf("write: %w", err))
	}

	result.Outcome = Emitted
	return result
}

// Run rewinds source and compensates frame i with transforms[i] until either
// runs out. A source that ends first is a normal completion. onResult, when
// set, sees every per-frame result in order. Cancelling ctx stops the loop
// between frames.
func (c *Compensator) Run(ctx context.Context, source FrameSource, transforms []motion.RawTransform, onResult func(Result)) (Summary, error) {
	var summary Summary

	if err := source.Rewind(); err != nil {
		return summary, fmt.Errorf("rewind source: %w", err)
	}

	for i, t := range transforms {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		frame, err := source.Read()
		if errors.Is(err, ErrEndOfStream) {
			summary.SourceExhausted = true
			logging.Infof("source ended after %d of %d frames", i, len(transforms))
			break
		}
		if err != nil {
			return summary, fmt.Errorf("read frame %d: %w", i, err)
		}

		result := c.Process(i, frame, t)
		frame.Close()

		if result.Outcome == Emitted {
			summary.Emitted++
		} else {
			summary.Skipped++
		}
		if onResult != nil {
			onResult(result)
		}
	}

	return summary, nil
}
