package fetch

import (
	"context"
	"errors"
	"strings"
)

// Sentinel errors for the pass-through classification of yt-dlp failures.
var (
	// ErrNoFormats means the site responded but offered no downloadable format.
	ErrNoFormats = errors.New("no downloadable formats found")

	// ErrUnsupportedVideo means the video is private, removed, or the site is
	// not supported by the download library.
	ErrUnsupportedVideo = errors.New("unsupported or unavailable video")

	// ErrUnreachable means the URL could not be reached at all.
	ErrUnreachable = errors.New("video URL unreachable")
)

// Substrings yt-dlp prints for the failure classes we care about.
var (
	unsupportedMarkers = []string{
		"Unsupported URL",
		"is not a valid URL",
		"Private video",
		"Video unavailable",
		"This video is unavailable",
		"Sign in to confirm",
		"members-only",
	}
	unreachableMarkers = []string{
		"Unable to download webpage",
		"unable to download webpage",
		"Name or service not known",
		"Temporary failure in name resolution",
		"Connection refused",
		"timed out",
	}
)

// classify maps a yt-dlp failure to one of the sentinel errors, using the
// tool's stderr when available. Unknown failures pass through unchanged.
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
	for _, marker := range unsupportedMarkers {
		if strings.Contains(text, marker) {
			return ErrUnsupportedVideo
		}
	}
	for _, marker := range unreachableMarkers {
		if strings.Contains(text, marker) {
			return ErrUnreachable
		}
	}
	return err
}
