package cli

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/tubegrab/tubegrab/internal/convert"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose external dependencies (yt-dlp, ffmpeg, ffprobe)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			ytdlpPath, err := exec.LookPath("yt-dlp")
			if err != nil {
				return &ExitError{Code: ExitMissingDep, Err: fmt.Errorf("yt-dlp not found in PATH")}
			}
			fmt.Fprintf(out, "yt-dlp:  %s\n", ytdlpPath)

			ffmpegPath, err := convert.FindFFmpeg(resolveString(cmd, "ffmpeg"))
			if err != nil {
				return &ExitError{Code: ExitMissingDep, Err: err}
			}
			fmt.Fprintf(out, "ffmpeg:  %s\n", ffmpegPath)

			// ffprobe only affects conversion progress reporting.
			if ffprobePath, err := convert.FindFFprobe(); err == nil {
				fmt.Fprintf(out, "ffprobe: %s\n", ffprobePath)
			} else {
				fmt.Fprintln(out, "ffprobe: not found (conversion progress will be unavailable)")
			}

			return nil
		},
	}

	cmd.Flags().String("ffmpeg", "", "Path to the ffmpeg binary (default: resolve from PATH)")
	return cmd
}
