package model

import (
	"fmt"
	"strings"
	"time"
)

// Job represents a single download-and-optionally-convert job.
type Job struct {
	ID         string
	Request    DownloadRequest
	Status     JobStatus
	Progress   float64   // 0.0 to 1.0
	Percent    int       // 0 to 100
	Speed      string    // human readable speed (e.g., "1.2MB/s")
	ETASec     int       // ETA in seconds, -1 if unknown
	LastError  string    // last error message if any
	OutputPath string    // path to the final output file
	StartedAt  time.Time // when the job started
	FinishedAt time.Time // when the job finished
	Title      string    // video title once known
}

// GetETAString returns ETA formatted as hh:mm:ss, or "—" if unknown
func (j *Job) GetETAString() string {
	if j.ETASec <= 0 {
		return "—"
	}

	hours := j.ETASec / 3600
	minutes := (j.ETASec % 3600) / 60
	seconds := j.ETASec % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// GetDisplayTitle returns title, filename, or URL in order of preference
func (j *Job) GetDisplayTitle() string {
	if j.Title != "" && !strings.HasPrefix(j.Title, "http") {
		return j.Title
	}

	if j.OutputPath != "" {
		parts := strings.FieldsFunc(j.OutputPath, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			filename := parts[len(parts)-1]
			if idx := strings.LastIndex(filename, "."); idx > 0 {
				filename = filename[:idx]
			}
			return filename
		}
	}

	return j.Request.URL
}
