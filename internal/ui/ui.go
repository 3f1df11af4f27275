package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"

	"vidstab/internal/crop"
	"vidstab/internal/pipeline"
	"vidstab/internal/report"
	"vidstab/internal/video"
)

var (
	infoStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7C3AED")).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#111827"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))
)

func DisplayVideoInfo(info *video.VideoInfo) {
	fmt.Println(RenderVideoInfo(info))
}

func RenderVideoInfo(info *video.VideoInfo) string {
	content := fmt.Sprintf(
		"%s %s\n"+
			"%s %s\n"+
			"%s %dx%d\n"+
			"%s %s\n"+
			"%s %s\n"+
			"%s %s\n"+
			"%s %s",
		labelStyle.Render("📁 File:"), valueStyle.Render(filepath.Base(info.Filepath)),
		labelStyle.Render("📊 Size:"), valueStyle.Render(FormatFileSize(info.FileSize)),
		labelStyle.Render("📐 Dimensions:"), info.Width, info.Height,
		labelStyle.Render("🎬 Format:"), valueStyle.Render(info.Format),
		labelStyle.Render("⚡ Bitrate:"), valueStyle.Render(formatBitrate(info.Bitrate)),
		labelStyle.Render("🎞️  Frames:"), valueStyle.Render(formatFrames(info.FrameCount, info.FrameRate)),
		labelStyle.Render("⏱️  Duration:"), valueStyle.Render(FormatDuration(info.Duration)),
	)
	return infoStyle.Render(content)
}

// Summary describes a finished run.
type Summary struct {
	Output      string
	Margin      crop.Margin
	Policy      crop.Policy
	Transitions int
	Fallbacks   int
	Emitted     int
	Skipped     int
	Jitter      *report.Comparison
	PlotFiles   []string
	Elapsed     time.Duration
}

func DisplaySummary(s Summary) {
	fmt.Println(RenderSummary(s))
}

func RenderSummary(s Summary) string {
	lines := []string{
		fmt.Sprintf("%s %s", labelStyle.Render("💾 Output:"), valueStyle.Render(s.Output)),
		fmt.Sprintf("%s %s", labelStyle.Render("✂️  Crop:"),
			valueStyle.Render(fmt.Sprintf("%s, %d rows and %d columns per edge", s.Policy, s.Margin.X, s.Margin.Y))),
		fmt.Sprintf("%s %s", labelStyle.Render("🎞️  Frames:"),
			valueStyle.Render(fmt.Sprintf("%d written", s.Emitted))),
	}

	if s.Skipped > 0 {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("⚠️  %d frames skipped", s.Skipped)))
	}
	if s.Fallbacks > 0 {
		lines = append(lines, warnStyle.Render(
			fmt.Sprintf("⚠️  %d of %d transitions reused the last good estimate", s.Fallbacks, s.Transitions)))
	}
	if s.Jitter != nil {
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("📉 Jitter:"),
			valueStyle.Render(fmt.Sprintf("%.2fpx → %.2fpx (%.0f%% less)",
				s.Jitter.Raw.Translation(), s.Jitter.Smoothed.Translation(), 100*s.Jitter.Reduction))))
	}
	for _, f := range s.PlotFiles {
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("📈 Plot:"), valueStyle.Render(f)))
	}
	if s.Elapsed > 0 {
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("⏱️  Took:"),
			valueStyle.Render(s.Elapsed.Round(time.Millisecond).String())))
	}

	return infoStyle.Render(strings.Join(lines, "\n"))
}

// Progress draws one bar per pipeline stage.
type Progress struct {
	out     io.Writer
	bar     *progressbar.ProgressBar
	message string
}

// NewProgress writes bars to out, or stderr when out is nil.
func NewProgress(out io.Writer) *Progress {
	if out == nil {
		out = os.Stderr
	}
	return &Progress{out: out}
}

// Callback adapts the progress to the pipeline.
func (p *Progress) Callback() pipeline.ProgressCallback {
	return p.Update
}

// Update starts a new bar whenever message changes.
func (p *Progress) Update(current, total int, message string) {
	if p.bar == nil || message != p.message {
		p.Finish()
		p.bar = NewProgressBar(p.out, total, message)
		p.message = message
	}
	p.bar.Set(current)
}

func (p *Progress) Finish() {
	if p.bar != nil {
		p.bar.Finish()
		fmt.Fprintln(p.out)
		p.bar = nil
	}
}

// NewProgressBar builds a frame counter bar. A total of zero or less draws a
// spinner.
func NewProgressBar(out io.Writer, total int, description string) *progressbar.ProgressBar {
	if total <= 0 {
		total = -1
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// FormatFileSize converts bytes to human-readable format
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatDuration converts seconds to MM:SS format
func FormatDuration(seconds float64) string {
	totalSeconds := int(seconds)
	minutes := totalSeconds / 60
	remainingSeconds := totalSeconds % 60

	return fmt.Sprintf("%02d:%02d", minutes, remainingSeconds)
}

func formatBitrate(bitrate int64) string {
	if bitrate == 0 {
		return "Unknown"
	}
	return fmt.Sprintf("%.1f kbps", float64(bitrate)/1000)
}

func formatFrames(count int, fps float64) string {
	switch {
	case count == 0 && fps == 0:
		return "Unknown"
	case fps == 0:
		return fmt.Sprintf("%d", count)
	default:
		return fmt.Sprintf("%d @ %.2f fps", count, fps)
	}
}
