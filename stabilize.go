package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vidstab/internal/compensate"
	"vidstab/internal/ffmpeg"
	"vidstab/internal/logging"
	"vidstab/internal/pipeline"
	"vidstab/internal/report"
	"vidstab/internal/ui"
	"vidstab/internal/video"
	"vidstab/internal/vision"
	"vidstab/internal/workspace"
)

const staleSessionAge = 24 * time.Hour

func stabilize(ctx context.Context, opts options, config pipeline.Config) error {
	start := time.Now()

	info, err := video.GetVideoInfo(opts.Input)
	if err != nil {
		logging.Warnf("cannot probe %s: %v", opts.Input, err)
	} else {
		ui.DisplayVideoInfo(info)
	}

	source, err := vision.OpenVideoSource(opts.Input)
	if err != nil {
		return err
	}
	defer source.Close()

	props := source.Properties()
	logging.Infof("input %dx%d at %.2f fps, about %d frames", props.Width, props.Height, props.FPS, props.FrameCount)
	if props.FrameCount > 0 {
		config.TotalFrames = props.FrameCount
	}

	progress := ui.NewProgress(nil)
	defer progress.Finish()

	p, err := pipeline.New(config, progress.Callback())
	if err != nil {
		return err
	}
	estimator, err := vision.NewLKEstimator(vision.DefaultEstimatorConfig())
	if err != nil {
		return err
	}

	analysis, err := p.Analyze(ctx, source, estimator)
	progress.Finish()
	if err != nil {
		return err
	}

	withAudio := !opts.NoAudio && info != nil && info.HasAudio
	if withAudio && !ffmpeg.IsFFmpegAvailable() {
		logging.Warnf("ffmpeg not found, output will have no audio")
		withAudio = false
	}

	target := opts.Output
	var session *workspace.Session
	if withAudio {
		if removed, err := workspace.CleanupOldSessions(os.TempDir(), staleSessionAge); err != nil {
			logging.Tracef("stale session cleanup: %v", err)
		} else if len(removed) > 0 {
			logging.Tracef("removed %d stale sessions", len(removed))
		}

		if session, err = workspace.NewSession(""); err != nil {
			return err
		}
		defer session.Cleanup()

		if info != nil {
			if ok, msg, err := session.CheckDiskSpace(workspace.EstimateStorageNeeds(info.FileSize)); err == nil && !ok {
				logging.Warnf("%s", msg)
			}
		}
		target = session.Path(filepath.Base(opts.Output))
	}

	summary, err := writeStabilized(ctx, p, source, target, props.FPS, analysis, opts.Debug)
	progress.Finish()
	if err != nil {
		return err
	}

	if session != nil {
		if err := ffmpeg.MuxAudio(ctx, target, opts.Input, opts.Output); err != nil {
			logging.Warnf("audio not copied: %v", err)
			if err := session.Export(filepath.Base(opts.Output), opts.Output); err != nil {
				return err
			}
		}
	}

	result := ui.Summary{
		Output:      opts.Output,
		Margin:      analysis.Margin,
		Policy:      config.Crop,
		Transitions: len(analysis.Transforms),
		Fallbacks:   len(analysis.Fallbacks),
		Emitted:     summary.Emitted,
		Skipped:     summary.Skipped,
	}

	if comparison, err := report.Compare(analysis.Trajectory, analysis.Smoothed); err == nil {
		result.Jitter = &comparison
		logging.Infof("translational jitter %.3fpx -> %.3fpx", comparison.Raw.Translation(), comparison.Smoothed.Translation())
	}

	if opts.PlotPath != "" {
		files, err := report.PlotTrajectory(opts.PlotPath, analysis.Trajectory, analysis.Smoothed)
		if err != nil {
			logging.Warnf("trajectory plot: %v", err)
		}
		result.PlotFiles = files
	}

	result.Elapsed = time.Since(start)
	ui.DisplaySummary(result)
	return nil
}

// writeStabilized runs pass two into a video file at path.
func writeStabilized(ctx context.Context, p *pipeline.Pipeline, source *vision.VideoSource, path string, fps float64, analysis *pipeline.Analysis, debug bool) (compensate.Summary, error) {
	if fps <= 0 {
		return compensate.Summary{}, fmt.Errorf("input reports no frame rate")
	}
	sink, err := vision.CreateVideoSink(path, vision.DefaultCodec, fps, analysis.Width, analysis.Height)
	if err != nil {
		return compensate.Summary{}, err
	}

	var src compensate.FrameSource = source
	var dst compensate.FrameSink = sink
	if debug {
		preview := vision.NewPreview("vidstab: original (top) / stabilized (bottom)")
		defer preview.Close()
		src = preview.Source(source)
		dst = preview.Sink(sink)
	}

	summary, err := p.Stabilize(ctx, src, dst, vision.NewTransformer(), analysis)
	if closeErr := sink.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("finalize %s: %w", path, closeErr)
	}
	return summary, err
}
