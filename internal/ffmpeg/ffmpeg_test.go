package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func useBinary(t *testing.T, path string) {
	t.Helper()
	prev := binary
	binary = path
	t.Cleanup(func() { binary = prev })
}

func fakeFFmpeg(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMuxAudioArgs(t *testing.T) {
	got := MuxAudioArgs("tmp.mp4", "in.mov", "out.mp4")
	want := []string{
		"-y", "-v", "error",
		"-i", "tmp.mp4",
		"-i", "in.mov",
		"-map", "0:v:0",
		"-map", "1:a?",
		"-c", "copy",
		"-shortest",
		"out.mp4",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MuxAudioArgs mismatch (-want +got):\n%s", diff)
	}
}

func TestMuxAudio(t *testing.T) {
	tests := []struct {
		name          string
		script        string
		missing       bool
		errorContains string
	}{
		{name: "success", script: "exit 0"},
		{name: "ffmpeg reports failure", script: "echo 'Invalid data found' >&2; exit 1", errorContains: "Invalid data found"},
		{name: "silent failure", script: "exit 3", errorContains: "exit status 3"},
		{name: "not installed", missing: true, errorContains: "not found in PATH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.missing {
				useBinary(t, filepath.Join(t.TempDir(), "no-such-ffmpeg"))
				assert.False(t, IsFFmpegAvailable())
			} else {
				useBinary(t, fakeFFmpeg(t, tt.script))
				assert.True(t, IsFFmpegAvailable())
			}

			err := MuxAudio(context.Background(), "a.mp4", "b.mp4", "c.mp4")
			if tt.errorContains == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.errorContains)
			}
		})
	}
}
