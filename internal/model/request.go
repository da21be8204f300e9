package model

import (
	"fmt"
	"net/url"
	"strings"
)

// OutputFormat is the container the user asked for.
type OutputFormat string

const (
	FormatMP4 OutputFormat = "mp4"
	FormatMP3 OutputFormat = "mp3"
)

// Quality is a named quality label mapped to a yt-dlp format selector.
type Quality string

const (
	QualityBest   Quality = "best"
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)

// Formats returns all valid output formats.
func Formats() []OutputFormat {
	return []OutputFormat{FormatMP4, FormatMP3}
}

// Qualities returns all valid quality labels, best first.
func Qualities() []Quality {
	return []Quality{QualityBest, QualityHigh, QualityMedium, QualityLow}
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case FormatMP4:
		return FormatMP4, nil
	case FormatMP3:
		return FormatMP3, nil
	default:
		return "", fmt.Errorf("invalid format: %q (valid: mp4|mp3)", s)
	}
}

// ParseQuality validates and normalizes a quality string.
func ParseQuality(s string) (Quality, error) {
	switch Quality(strings.ToLower(s)) {
	case QualityBest:
		return QualityBest, nil
	case QualityHigh:
		return QualityHigh, nil
	case QualityMedium:
		return QualityMedium, nil
	case QualityLow:
		return QualityLow, nil
	default:
		return "", fmt.Errorf("invalid quality: %q (valid: best|high|medium|low)", s)
	}
}

// DownloadRequest describes one user-initiated job. Immutable once submitted.
type DownloadRequest struct {
	URL     string
	Format  OutputFormat
	Quality Quality
	Dir     string // destination directory
}

// Validate checks the request for obvious problems before a job is started.
func (r DownloadRequest) Validate() error {
	u, err := url.Parse(r.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid URL: %q", r.URL)
	}
	if _, err := ParseFormat(string(r.Format)); err != nil {
		return err
	}
	if _, err := ParseQuality(string(r.Quality)); err != nil {
		return err
	}
	if strings.TrimSpace(r.Dir) == "" {
		return fmt.Errorf("destination directory is required")
	}
	return nil
}
