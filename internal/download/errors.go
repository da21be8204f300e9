package download

import (
	"context"
	"errors"
	"strings"
)

// Sentinel errors for the pass-through classification of job failures.
var (
	// ErrJobActive means a job is already running; there is no queue.
	ErrJobActive = errors.New("a download job is already active")

	// ErrUnsupportedQuality means the requested format/quality is not offered
	// by the site.
	ErrUnsupportedQuality = errors.New("requested quality not available")

	// ErrDiskWrite means the destination could not be written.
	ErrDiskWrite = errors.New("failed to write to destination")

	// ErrNetwork means the download failed at the network level.
	ErrNetwork = errors.New("network error during download")

	// ErrNoOutputFile means the library reported success but no file was found.
	ErrNoOutputFile = errors.New("download succeeded but no output file found")
)

var (
	qualityMarkers = []string{
		"Requested format is not available",
		"requested format not available",
	}
	diskMarkers = []string{
		"No space left on device",
		"Permission denied",
		"Read-only file system",
	}
	networkMarkers = []string{
		"Unable to download webpage",
		"unable to download video data",
		"Connection refused",
		"Connection reset",
		"Temporary failure in name resolution",
		"timed out",
	}
)

// classify maps a yt-dlp failure to a sentinel error using the tool's stderr
// when available. Cancellation and unknown failures pass through unchanged.
func classify(err error, stderr string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	text := stderr
	if text == "" {
		text = err.Error()
	}
	for _, marker := range qualityMarkers {
		if strings.Contains(text, marker) {
			return ErrUnsupportedQuality
		}
	}
	for _, marker := range diskMarkers {
		if strings.Contains(text, marker) {
			return ErrDiskWrite
		}
	}
	for _, marker := range networkMarkers {
		if strings.Contains(text, marker) {
			return ErrNetwork
		}
	}
	return err
}
