package main

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidstab/internal/compensate"
	"vidstab/internal/crop"
	"vidstab/internal/mocks"
	"vidstab/internal/motion"
	"vidstab/internal/pipeline"
	"vidstab/internal/report"
	"vidstab/internal/ui"
	"vidstab/internal/workspace"
)

// handheld pans slowly to the right with a few pixels of shake and a little
// roll.
func handheld(n int) []motion.RawTransform {
	out := make([]motion.RawTransform, n)
	for i := range out {
		phase := float64(i)
		out[i] = motion.RawTransform{
			DX: 0.5 + 3*math.Sin(phase*1.7),
			DY: 2 * math.Cos(phase*2.3),
			DA: 0.004 * math.Sin(phase*3.1),
		}
	}
	return out
}

func TestEndToEndStabilization(t *testing.T) {
	const frames = 90
	source := mocks.NewMockFrameSource(frames, 1280, 720)
	estimator := mocks.NewMockEstimator(handheld(frames - 1))
	estimator.Failures[40] = true

	var stages []string
	p, err := pipeline.New(pipeline.Config{SmoothingRadius: 10, Crop: crop.AutoPolicy(), TotalFrames: frames},
		func(_, _ int, message string) {
			if len(stages) == 0 || stages[len(stages)-1] != message {
				stages = append(stages, message)
			}
		})
	require.NoError(t, err)

	analysis, err := p.Analyze(context.Background(), source, estimator)
	require.NoError(t, err)
	assert.Equal(t, []int{40}, analysis.Fallbacks)
	assert.Equal(t, analysis.Transforms[39], analysis.Transforms[40])
	assert.NotEqual(t, crop.Margin{}, analysis.Margin)
	assert.Less(t, 2*analysis.Margin.X, 720)
	assert.Less(t, 2*analysis.Margin.Y, 1280)

	for i := range analysis.Corrected {
		diff := analysis.Smoothed[i].Sub(analysis.Trajectory[i])
		assert.InDelta(t, diff.X, analysis.Corrected[i].DX-analysis.Transforms[i].DX, 1e-9)
		assert.InDelta(t, diff.Y, analysis.Corrected[i].DY-analysis.Transforms[i].DY, 1e-9)
		assert.InDelta(t, diff.A, analysis.Corrected[i].DA-analysis.Transforms[i].DA, 1e-9)
	}

	sink := mocks.NewMockFrameSink()
	transformer := mocks.NewMockTransformer()
	summary, err := p.Stabilize(context.Background(), source, sink, transformer, analysis)
	require.NoError(t, err)

	assert.Equal(t, compensate.Summary{Emitted: frames - 1}, summary)
	assert.Len(t, sink.Written, frames-1)
	for _, size := range sink.Sizes {
		assert.Equal(t, 1280, size.X)
		assert.Equal(t, 720, size.Y)
	}
	assert.True(t, mocks.AllClosed(source.Served, transformer.Produced))
	assert.Equal(t, []string{"Estimating motion", "Stabilizing"}, stages)

	comparison, err := report.Compare(analysis.Trajectory, analysis.Smoothed)
	require.NoError(t, err)
	assert.Greater(t, comparison.Reduction, 0.5)

	plotPath := filepath.Join(t.TempDir(), "trajectory.png")
	plots, err := report.PlotTrajectory(plotPath, analysis.Trajectory, analysis.Smoothed)
	require.NoError(t, err)

	out := ui.RenderSummary(ui.Summary{
		Output:      "handheld_stabilized.mp4",
		Margin:      analysis.Margin,
		Policy:      crop.AutoPolicy(),
		Transitions: len(analysis.Transforms),
		Fallbacks:   len(analysis.Fallbacks),
		Emitted:     summary.Emitted,
		Skipped:     summary.Skipped,
		Jitter:      &comparison,
		PlotFiles:   plots,
	})
	assert.Contains(t, out, "1 of 89 transitions")
	assert.Contains(t, out, "89 written")
	assert.True(t, strings.Contains(out, "trajectory_angle.png"))
}

func TestEndToEndExplicitCropTooLarge(t *testing.T) {
	source := mocks.NewMockFrameSource(6, 320, 240)
	config := pipeline.DefaultConfig()
	config.Crop = crop.Policy{Pixels: 200}
	p, err := pipeline.New(config, nil)
	require.NoError(t, err)

	analysis, err := p.Analyze(context.Background(), source, mocks.NewMockEstimator(handheld(5)))
	require.NoError(t, err)
	// 200 columns a side leaves nothing of a 320 wide frame.
	assert.Equal(t, crop.Margin{X: 266, Y: 200}, analysis.Margin)

	sink := mocks.NewMockFrameSink()
	summary, err := p.Stabilize(context.Background(), source, sink, mocks.NewMockTransformer(), analysis)
	require.NoError(t, err)
	assert.Equal(t, compensate.Summary{Skipped: 5}, summary)
	assert.Empty(t, sink.Written)
}

func TestEndToEndSessionExport(t *testing.T) {
	session, err := workspace.NewSession(t.TempDir())
	require.NoError(t, err)
	defer session.Cleanup()

	final := filepath.Join(t.TempDir(), "clip_stabilized.mp4")
	silent := session.Path(filepath.Base(final))
	require.NoError(t, os.WriteFile(silent, []byte("encoded frames"), 0644))

	// Without audio the silent render is moved into place.
	require.NoError(t, session.Export(filepath.Base(final), final))
	assert.FileExists(t, final)
	assert.NoFileExists(t, silent)
}
