package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
)

var binary = "ffmpeg"

func IsFFmpegAvailable() bool {
	_, err := exec.LookPath(binary)
	return err == nil
}

// MuxAudioArgs builds the ffmpeg arguments that take the video stream of
// stabilized and the audio of original, if it has any, without re-encoding.
func MuxAudioArgs(stabilized, original, output string) []string {
	return []string{
		"-y",
		"-v", "error",
		"-i", stabilized,
		"-i", original,
		"-map", "0:v:0",
		"-map", "1:a?",
		"-c", "copy",
		"-shortest",
		output,
	}
}

// MuxAudio writes output with the stabilized picture and the original sound.
func MuxAudio(ctx context.Context, stabilized, original, output string) error {
	if !IsFFmpegAvailable() {
		return fmt.Errorf("%s not found in PATH", binary)
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Copying audio"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	defer bar.Finish()

	cmd := exec.CommandContext(ctx, binary, MuxAudioArgs(stabilized, original, output)...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	done := make(chan error, 1)
	go func() { done <- cmd.Run() }()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			if err != nil {
				var exitErr *exec.ExitError
				if errors.As(err, &exitErr) && stderr.Len() > 0 {
					return fmt.Errorf("ffmpeg audio mux failed: %s", strings.TrimSpace(stderr.String()))
				}
				return fmt.Errorf("ffmpeg audio mux failed: %w", err)
			}
			return nil
		case <-ticker.C:
			bar.Add(1)
		}
	}
}
