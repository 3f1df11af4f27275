package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/manifoldco/promptui"

	"vidstab/internal/crop"
	"vidstab/internal/logging"
	"vidstab/internal/motion"
	"vidstab/internal/pipeline"
	"vidstab/internal/validation"
)

const (
	exitOK       = 0
	exitRunError = 1
	exitUsage    = 2
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			MarginBottom(1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#06B6D4")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)
)

type options struct {
	Input      string
	Output     string
	BorderCrop string
	Radius     int
	Debug      bool
	PlotPath   string
	LogPath    string
	NoAudio    bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fmt.Fprintln(stdout, titleStyle.Render("🎬 vidstab: video stabilizer"))

	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintln(stderr, errorStyle.Render(fmt.Sprintf("❌ %v", err)))
		return exitUsage
	}

	if opts.Input == "" {
		if opts, err = promptOptions(opts, os.Stdin, stdout); err != nil {
			fmt.Fprintln(stderr, errorStyle.Render(fmt.Sprintf("❌ %v", err)))
			return exitUsage
		}
	}

	config, err := resolve(&opts)
	if err != nil {
		fmt.Fprintln(stderr, errorStyle.Render(fmt.Sprintf("❌ %v", err)))
		return exitUsage
	}

	logger, err := logging.New(opts.LogPath)
	if err != nil {
		fmt.Fprintln(stderr, errorStyle.Render(fmt.Sprintf("❌ %v", err)))
		return exitUsage
	}
	defer logger.Close()
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(stdout, promptStyle.Render("🔄 Stabilizing "+opts.Input))
	if err := stabilize(ctx, opts, config); err != nil {
		logging.Errorf("%v", err)
		fmt.Fprintln(stderr, errorStyle.Render(fmt.Sprintf("❌ Stabilization failed: %v", err)))
		return exitRunError
	}

	fmt.Fprintln(stdout, successStyle.Render("✅ Stabilization completed successfully!"))
	return exitOK
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("vidstab", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: vidstab [flags] <video>\n\n")
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.BorderCrop, "border-crop", crop.AutoKeyword,
		fmt.Sprintf("pixels to trim from the frame border, or %s to size the crop from the measured motion (max %d)", crop.AutoKeyword, crop.MaxPixels))
	fs.IntVar(&opts.Radius, "radius", motion.DefaultSmoothingRadius, "smoothing window: frames either side of the current one")
	fs.StringVar(&opts.Output, "o", "", "output file (default <input>_stabilized<ext>)")
	fs.BoolVar(&opts.Debug, "debug", false, "show original and stabilized frames while writing")
	fs.StringVar(&opts.PlotPath, "plot", "", "write raw and smoothed trajectory charts to this image file")
	fs.StringVar(&opts.LogPath, "log", "vidstab.log", "diagnostics log file, overwritten on each run")
	fs.BoolVar(&opts.NoAudio, "no-audio", false, "do not copy the audio track into the output")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch fs.NArg() {
	case 0:
	case 1:
		opts.Input = fs.Arg(0)
	default:
		fs.Usage()
		return opts, fmt.Errorf("expected one input video, got %d arguments", fs.NArg())
	}
	return opts, nil
}

// resolve fills in defaults and validates everything that can be checked
// before the video is opened.
func resolve(opts *options) (pipeline.Config, error) {
	if err := validation.ValidateInputPath(opts.Input); err != nil {
		return pipeline.Config{}, fmt.Errorf("invalid input: %w", err)
	}
	opts.Input = validation.CleanPath(opts.Input)

	if opts.Output == "" {
		opts.Output = validation.DefaultOutputPath(opts.Input)
	}
	if err := validation.ValidateOutputPath(opts.Output); err != nil {
		return pipeline.Config{}, fmt.Errorf("invalid output: %w", err)
	}
	opts.Output = validation.CleanPath(opts.Output)
	if opts.Output == opts.Input {
		return pipeline.Config{}, fmt.Errorf("output would overwrite the input video")
	}

	policy, err := crop.ParsePolicy(opts.BorderCrop)
	if err != nil {
		return pipeline.Config{}, err
	}

	config := pipeline.Config{SmoothingRadius: opts.Radius, Crop: policy}
	if err := pipeline.ValidateConfig(config); err != nil {
		return pipeline.Config{}, err
	}
	return config, nil
}

func promptOptions(opts options, stdin io.ReadCloser, stdout io.Writer) (options, error) {
	fmt.Fprintln(stdout, promptStyle.Render("No input given, switching to interactive mode."))

	pathPrompt := promptui.Prompt{
		Label:    "📁 Video file path",
		Validate: validation.ValidateInputPath,
		Stdin:    stdin,
	}
	input, err := pathPrompt.Run()
	if err != nil {
		return opts, promptError(err)
	}
	opts.Input = validation.CleanPath(input)

	cropSelect := promptui.Select{
		Label: "✂️  Border crop",
		Items: []string{"AUTO (size from measured motion)", "Fixed number of pixels"},
		Stdin: stdin,
	}
	choice, _, err := cropSelect.Run()
	if err != nil {
		return opts, promptError(err)
	}
	opts.BorderCrop = crop.AutoKeyword
	if choice == 1 {
		pixelsPrompt := promptui.Prompt{
			Label:   fmt.Sprintf("Pixels to trim (0-%d)", crop.MaxPixels),
			Default: "0",
			Stdin:   stdin,
			Validate: func(s string) error {
				_, err := crop.ParsePolicy(s)
				return err
			},
		}
		if opts.BorderCrop, err = pixelsPrompt.Run(); err != nil {
			return opts, promptError(err)
		}
	}

	outputPrompt := promptui.Prompt{
		Label:     "💾 Output path",
		Default:   validation.DefaultOutputPath(opts.Input),
		AllowEdit: true,
		Validate:  validation.ValidateOutputPath,
		Stdin:     stdin,
	}
	if opts.Output, err = outputPrompt.Run(); err != nil {
		return opts, promptError(err)
	}
	return opts, nil
}

func promptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return errors.New("cancelled")
	}
	return err
}
