// Package pipeline runs the two-pass stabilization: pass one estimates the
// motion between every pair of consecutive frames, the trajectory is
// smoothed and corrected, and pass two re-reads the video and compensates
// every frame.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"vidstab/internal/compensate"
	"vidstab/internal/crop"
	"vidstab/internal/logging"
	"vidstab/internal/motion"
)

// ErrNoFrames means the source produced nothing to stabilize.
var ErrNoFrames = errors.New("video contains no frames")

// Config holds the knobs of a run.
type Config struct {
	SmoothingRadius int         // frames either side of the current one
	Crop            crop.Policy // AUTO or explicit pixels
	TotalFrames     int         // expected frame count, for progress only
}

// DefaultConfig returns a radius of 10 frames and automatic cropping.
func DefaultConfig() Config {
	return Config{
		SmoothingRadius: motion.DefaultSmoothingRadius,
		Crop:            crop.AutoPolicy(),
	}
}

// ValidateConfig rejects configurations that must abort before any frame is
// read.
func ValidateConfig(config Config) error {
	if config.SmoothingRadius < 1 {
		return fmt.Errorf("smoothing radius must be at least 1, got %d", config.SmoothingRadius)
	}
	if err := config.Crop.Validate(); err != nil {
		return err
	}
	if config.TotalFrames < 0 {
		return fmt.Errorf("total frames cannot be negative, got %d", config.TotalFrames)
	}
	return nil
}

// Estimator measures the motion from prev to cur. Failures wrap
// motion.ErrEstimationFailed; any other error aborts the run.
type Estimator interface {
	Estimate(prev, cur compensate.Frame) (motion.RawTransform, error)
}

// ProgressCallback is called as frames are processed.
type ProgressCallback func(current, total int, message string)

// Analysis is everything pass one and the trajectory math produce. It is
// built once and only read afterwards.
type Analysis struct {
	Width      int
	Height     int
	Transforms []motion.RawTransform
	Fallbacks  []int
	Trajectory motion.Trajectory
	Smoothed   motion.Trajectory
	Corrected  []motion.RawTransform
	Extrema    motion.DivergenceExtrema
	Margin     crop.Margin
}

// Pipeline owns the configuration of one stabilization run.
type Pipeline struct {
	config   Config
	progress ProgressCallback
}

// New validates config and builds a pipeline. progress may be nil.
func New(config Config, progress ProgressCallback) (*Pipeline, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = func(int, int, string) {}
	}
	return &Pipeline{config: config, progress: progress}, nil
}

// Config returns the validated configuration.
func (p *Pipeline) Config() Config {
	return p.config
}

// Analyze is pass one. It reads source to the end, estimating one transform
// per frame transition and falling back to the last good estimate when the
// estimator fails, then derives the corrected transforms and crop margin.
func (p *Pipeline) Analyze(ctx context.Context, source compensate.FrameSource, estimator Estimator) (*Analysis, error) {
	prev, err := source.Read()
	if errors.Is(err, compensate.ErrEndOfStream) {
		return nil, ErrNoFrames
	}
	if err != nil {
		return nil, fmt.Errorf("read first frame: %w", err)
	}
	defer func() { prev.Close() }()

	width, height := prev.Cols(), prev.Rows()
	store := motion.NewStore(p.config.TotalFrames - 1)

	for frame := 1; ; frame++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cur, err := source.Read()
		if errors.Is(err, compensate.ErrEndOfStream) {
			logging.Infof("all %d input frames analyzed", frame)
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read frame %d: %w", frame, err)
		}

		t, estimateErr := estimator.Estimate(prev, cur)
		switch {
		case estimateErr == nil:
			store.Record(t)
		case errors.Is(estimateErr, motion.ErrEstimationFailed):
			if t, err = store.RecordFailure(estimateErr); err != nil {
				cur.Close()
				return nil, err
			}
			logging.Warnf("frame %d: %v, reusing last good transform", frame, estimateErr)
		default:
			cur.Close()
			return nil, fmt.Errorf("estimate frame %d: %w", frame, estimateErr)
		}

		logging.Tracef("frame=%d %v", frame, t)

		prev.Close()
		prev = cur
		p.progress(frame+1, p.config.TotalFrames, "Estimating motion")
	}

	return p.plan(store, width, height)
}

func (p *Pipeline) plan(store *motion.Store, width, height int) (*Analysis, error) {
	transforms := store.Transforms()

	plan, err := motion.Plan(transforms, p.config.SmoothingRadius)
	if err != nil {
		return nil, fmt.Errorf("stabilization plan: %w", err)
	}

	for i := range plan.Trajectory {
		logging.Tracef("trajectory frame=%d %v", i+1, plan.Trajectory[i])
		logging.Tracef("smoothed frame=%d %v", i+1, plan.Smoothed[i])
	}

	margin := crop.Plan(plan.Correction.Extrema, width, height, p.config.Crop)
	logging.Infof("crop %s: trimming %d rows and %d columns from each edge (max divergence x=%.2f y=%.2f)",
		p.config.Crop, margin.X, margin.Y, plan.Correction.Extrema.MaxDX, plan.Correction.Extrema.MaxDY)

	return &Analysis{
		Width:      width,
		Height:     height,
		Transforms: transforms,
		Fallbacks:  store.Fallbacks(),
		Trajectory: plan.Trajectory,
		Smoothed:   plan.Smoothed,
		Corrected:  plan.Correction.Transforms,
		Extrema:    plan.Correction.Extrema,
		Margin:     margin,
	}, nil
}

// Stabilize is pass two. It rewinds source and writes one compensated frame
// per corrected transform to sink, skipping frames that cannot be
// compensated.
func (p *Pipeline) Stabilize(ctx context.Context, source compensate.FrameSource, sink compensate.FrameSink, transformer compensate.Transformer, analysis *Analysis) (compensate.Summary, error) {
	c := compensate.NewCompensator(transformer, sink, analysis.Margin)
	total := len(analysis.Corrected)

	summary, err := c.Run(ctx, source, analysis.Corrected, func(r compensate.Result) {
		p.progress(r.Index+1, total, "Stabilizing")
	})
	if err != nil {
		return summary, err
	}

	if summary.Skipped > 0 {
		logging.Warnf("%d of %d frames skipped; output is %d frames shorter than input", summary.Skipped, total, summary.Skipped)
	}
	logging.Infof("stabilization done: %d frames written", summary.Emitted)
	return summary, nil
}
