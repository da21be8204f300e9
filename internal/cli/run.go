package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tubegrab/tubegrab/internal/convert"
	"github.com/tubegrab/tubegrab/internal/download"
	"github.com/tubegrab/tubegrab/internal/model"
)

// runHeadless executes a single download job and renders progress as plain
// text until the job reaches a terminal state.
func runHeadless(ctx context.Context, cmd *cobra.Command, opts options, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	converter := convert.New(opts.ffmpeg, log)
	svc := download.NewService(converter, log)

	req := model.DownloadRequest{
		URL:     opts.url,
		Format:  opts.format,
		Quality: opts.quality,
		Dir:     opts.dir,
	}

	if _, err := svc.Start(req); err != nil {
		return startExitError(err)
	}

	out := cmd.OutOrStdout()
	done := ctx.Done()
	sawConverting := false

	for {
		select {
		case <-done:
			// First interrupt cancels the job; the loop keeps draining
			// events until the orchestrator reports a terminal state.
			if err := svc.Cancel(); err != nil {
				log.Warn("cancel failed", zap.Error(err))
			}
			done = nil

		case ev := <-svc.Events():
			switch ev.Status {
			case model.JobStatusDownloading:
				fmt.Fprintf(out, "\r%-18s %3d%% %10s", ev.Message, ev.Percent, ev.Speed)

			case model.JobStatusConverting:
				sawConverting = true
				fmt.Fprintf(out, "\r%-18s %3d%% %10s", ev.Message, ev.Percent, "")

			case model.JobStatusCompleted:
				fmt.Fprintf(out, "\rSaved: %s%-20s\n", ev.OutputPath, "")
				return nil

			case model.JobStatusStopped:
				fmt.Fprintln(out)
				return &ExitError{Code: ExitDownloadError, Err: errors.New("download canceled")}

			case model.JobStatusError:
				fmt.Fprintln(out)
				code := ExitDownloadError
				if sawConverting {
					code = ExitConvertError
				}
				return &ExitError{Code: code, Err: errors.New(ev.Err)}
			}
		}
	}
}

// startExitError maps a Start failure to a process exit code. Start fails
// before any file is written, so these are always clean exits.
func startExitError(err error) error {
	switch {
	case errors.Is(err, convert.ErrFFmpegNotFound):
		return &ExitError{Code: ExitMissingDep, Err: err}
	case errors.Is(err, download.ErrDiskWrite):
		return &ExitError{Code: ExitDownloadError, Err: err}
	default:
		return &ExitError{Code: ExitCLIError, Err: err}
	}
}
