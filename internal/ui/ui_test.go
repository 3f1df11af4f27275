package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"vidstab/internal/crop"
	"vidstab/internal/report"
	"vidstab/internal/video"
)

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}

	for _, tt := range tests {
		if got := FormatFileSize(tt.bytes); got != tt.want {
			t.Errorf("FormatFileSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00"},
		{9.9, "00:09"},
		{61, "01:01"},
		{3599, "59:59"},
		{3600, "60:00"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatFrames(t *testing.T) {
	tests := []struct {
		count int
		fps   float64
		want  string
	}{
		{0, 0, "Unknown"},
		{300, 0, "300"},
		{300, 29.97, "300 @ 29.97 fps"},
	}

	for _, tt := range tests {
		if got := formatFrames(tt.count, tt.fps); got != tt.want {
			t.Errorf("formatFrames(%d, %v) = %q, want %q", tt.count, tt.fps, got, tt.want)
		}
	}
}

func TestRenderVideoInfo(t *testing.T) {
	out := RenderVideoInfo(&video.VideoInfo{
		Filepath:   "/videos/shaky.mp4",
		FileSize:   2 * 1024 * 1024,
		Width:      1920,
		Height:     1080,
		Duration:   75,
		Format:     "mov,mp4,m4a,3gp,3g2,mj2",
		FrameRate:  30,
		FrameCount: 2250,
	})

	for _, want := range []string{"shaky.mp4", "2.0 MB", "1920x1080", "2250 @ 30.00 fps", "01:15", "Unknown"} {
		if !strings.Contains(out, want) {
			t.Errorf("video info missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSummary(t *testing.T) {
	tests := []struct {
		name    string
		summary Summary
		want    []string
		absent  []string
	}{
		{
			name: "clean run",
			summary: Summary{
				Output:  "shaky_stabilized.mp4",
				Policy:  crop.AutoPolicy(),
				Margin:  crop.Margin{X: 40, Y: 22},
				Emitted: 299,
				Elapsed: 1500 * time.Millisecond,
			},
			want:   []string{"shaky_stabilized.mp4", "AUTO, 40 rows and 22 columns", "299 written", "1.5s"},
			absent: []string{"skipped", "reused", "Jitter", "Plot"},
		},
		{
			name: "degraded run",
			summary: Summary{
				Output:      "out.mp4",
				Policy:      crop.Policy{Pixels: 30},
				Margin:      crop.Margin{X: 53, Y: 30},
				Transitions: 99,
				Fallbacks:   4,
				Emitted:     97,
				Skipped:     2,
				Jitter: &report.Comparison{
					Raw:       report.Stats{X: report.AxisStats{StdDev: 3}, Y: report.AxisStats{StdDev: 4}},
					Smoothed:  report.Stats{X: report.AxisStats{StdDev: 0.6}, Y: report.AxisStats{StdDev: 0.8}},
					Reduction: 0.8,
				},
				PlotFiles: []string{"t.png", "t_angle.png"},
			},
			want: []string{"30, 53 rows and 30 columns", "2 frames skipped", "4 of 99 transitions",
				"5.00px → 1.00px (80% less)", "t.png", "t_angle.png"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderSummary(tt.summary)
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("summary missing %q:\n%s", want, out)
				}
			}
			for _, absent := range tt.absent {
				if strings.Contains(out, absent) {
					t.Errorf("summary should not mention %q:\n%s", absent, out)
				}
			}
		})
	}
}

func TestProgressStartsBarPerStage(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf)
	update := p.Callback()

	update(1, 10, "Estimating motion")
	first := p.bar
	update(2, 10, "Estimating motion")
	if p.bar != first {
		t.Error("same stage must reuse the bar")
	}

	update(1, 9, "Stabilizing")
	if p.bar == first {
		t.Error("new stage must start a new bar")
	}
	p.Finish()

	if p.bar != nil {
		t.Error("finish must drop the bar")
	}
	out := buf.String()
	for _, want := range []string{"Estimating motion", "Stabilizing"} {
		if !strings.Contains(out, want) {
			t.Errorf("progress output missing %q: %q", want, out)
		}
	}
}
