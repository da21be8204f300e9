package model

import "fmt"

// FormatOption is one downloadable format/quality choice shown to the user.
type FormatOption struct {
	ID          string // yt-dlp format selector or format_id
	Ext         string // container extension: mp4, mp3
	Height      int    // vertical resolution; 0 for audio
	Description string // e.g. "1080p (MP4)", "Best quality (MP3)"
	SizeApprox  int64  // approximate size in bytes, 0 if unknown
}

// VideoMetadata holds what the fetcher learned about a URL. Fetched fresh per
// URL and never persisted.
type VideoMetadata struct {
	ID          string
	Title       string
	Uploader    string
	DurationSec float64
	Formats     []FormatOption
}

// DurationString returns the duration formatted as mm:ss or hh:mm:ss,
// or "—" when unknown.
func (m *VideoMetadata) DurationString() string {
	total := int(m.DurationSec)
	if total <= 0 {
		return "—"
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
