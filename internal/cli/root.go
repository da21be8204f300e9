// Package cli implements the command line entry point. With --url it runs a
// single headless download; without it the desktop GUI is launched.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tubegrab/tubegrab/internal/logger"
	"github.com/tubegrab/tubegrab/internal/model"
	"github.com/tubegrab/tubegrab/internal/platform"
	"github.com/tubegrab/tubegrab/internal/ui"
)

// Exit codes
const (
	ExitOK            = 0
	ExitCLIError      = 1
	ExitMissingDep    = 2
	ExitDownloadError = 3
	ExitConvertError  = 4
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// options holds the effective per-invocation settings after flags, env, and
// config file are merged.
type options struct {
	url     string
	dir     string
	ffmpeg  string
	format  model.OutputFormat
	quality model.Quality
	verbose bool
}

func newRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "tubegrab",
		Short:         "Download videos as MP4 or extract MP3 audio",
		Long:          "TubeGrab downloads videos via yt-dlp and optionally converts them to MP3 with FFmpeg. Run without --url to open the desktop interface.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := parseOptions(cmd)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}

			log := newLogger(opts.verbose)
			defer log.Sync()

			if opts.url == "" {
				ui.Launch(version, log)
				return nil
			}
			return runHeadless(cmd.Context(), cmd, opts, log)
		},
	}

	root.Flags().String("url", "", "Video URL to download; omit to open the GUI")
	root.Flags().String("dir", "", "Destination directory (default: ~/Downloads)")
	root.Flags().String("format", string(model.FormatMP4), "Output format: mp3, mp4")
	root.Flags().String("quality", string(model.QualityBest), "Quality: best, high, medium, low")
	root.Flags().String("ffmpeg", "", "Path to the ffmpeg binary (default: resolve from PATH)")
	root.Flags().BoolP("verbose", "v", false, "Enable debug logging")

	root.AddCommand(newDoctorCmd())

	return root
}

// parseOptions merges flag, environment, and config file values and validates
// them. Nothing has been written to disk when it fails.
func parseOptions(cmd *cobra.Command) (options, error) {
	var opts options

	opts.url = resolveString(cmd, "url")
	opts.ffmpeg = resolveString(cmd, "ffmpeg")
	opts.verbose = resolveBool(cmd, "verbose")

	format, err := model.ParseFormat(resolveString(cmd, "format"))
	if err != nil {
		return options{}, err
	}
	opts.format = format

	quality, err := model.ParseQuality(resolveString(cmd, "quality"))
	if err != nil {
		return options{}, err
	}
	opts.quality = quality

	opts.dir = resolveString(cmd, "dir")
	if opts.dir == "" {
		dir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			return options{}, fmt.Errorf("no destination directory: %w", err)
		}
		opts.dir = dir
	}

	return opts, nil
}

func newLogger(verbose bool) *zap.Logger {
	if verbose {
		return logger.NewVerbose()
	}
	return logger.NewDefault()
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context, version string) error {
	root := newRootCmd(version)
	initViper(root)
	return root.ExecuteContext(ctx)
}
