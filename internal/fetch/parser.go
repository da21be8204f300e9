package fetch

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tubegrab/tubegrab/internal/model"
)

// How many distinct video resolutions to offer; more just clutters the UI.
const maxVideoOptions = 5

// Audio option shown alongside the video resolutions.
const (
	audioSelector    = "bestaudio/best"
	audioDescription = "Best quality (MP3)"
)

// ytdlpInfo mirrors the fields from yt-dlp --dump-single-json output we care about.
type ytdlpInfo struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Uploader string        `json:"uploader"`
	Duration float64       `json:"duration"`
	Formats  []ytdlpFormat `json:"formats"`
}

// ytdlpFormat mirrors a single entry of the "formats" array.
type ytdlpFormat struct {
	FormatID       string  `json:"format_id"`
	Ext            string  `json:"ext"`
	Height         int     `json:"height"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox float64 `json:"filesize_approx"`
}

// parseMetadata decodes the JSON dump and builds the user-facing option list.
// The list is never silently empty: zero formats in the dump is ErrNoFormats.
func parseMetadata(raw string) (*model.VideoMetadata, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty metadata response")
	}

	var info ytdlpInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		// yt-dlp occasionally prints extra lines around the JSON object; try
		// each line from the bottom up (the object is dumped last).
		lines := strings.Split(raw, "\n")
		decoded := false
		for i := len(lines) - 1; i >= 0; i-- {
			line := strings.TrimSpace(lines[i])
			if line == "" {
				continue
			}
			var tmp ytdlpInfo
			if json.Unmarshal([]byte(line), &tmp) == nil && tmp.ID != "" {
				info = tmp
				decoded = true
				break
			}
		}
		if !decoded {
			return nil, fmt.Errorf("parse metadata JSON: %w", err)
		}
	}

	if info.ID == "" && info.Title == "" {
		return nil, fmt.Errorf("metadata response missing id and title")
	}
	if len(info.Formats) == 0 {
		return nil, ErrNoFormats
	}

	return &model.VideoMetadata{
		ID:          info.ID,
		Title:       info.Title,
		Uploader:    info.Uploader,
		DurationSec: info.Duration,
		Formats:     buildFormatOptions(info.Formats),
	}, nil
}

// buildFormatOptions picks up to maxVideoOptions distinct MP4 resolutions
// (highest first) and appends the audio entry. When the dump carries no
// usable progressive MP4 formats, the quality-label fallback selectors are
// offered instead so the user can still pick something.
func buildFormatOptions(formats []ytdlpFormat) []model.FormatOption {
	var usable []ytdlpFormat
	for _, f := range formats {
		if f.Ext == "mp4" && f.Height > 0 && f.ACodec != "none" && f.ACodec != "" {
			usable = append(usable, f)
		}
	}

	sort.SliceStable(usable, func(i, j int) bool {
		return usable[i].Height > usable[j].Height
	})

	var options []model.FormatOption
	seen := make(map[int]bool)
	for _, f := range usable {
		if len(options) >= maxVideoOptions {
			break
		}
		if seen[f.Height] {
			continue
		}
		seen[f.Height] = true
		size := f.Filesize
		if size == 0 {
			size = int64(f.FilesizeApprox)
		}
		options = append(options, model.FormatOption{
			ID:          f.FormatID,
			Ext:         "mp4",
			Height:      f.Height,
			Description: fmt.Sprintf("%dp (MP4)", f.Height),
			SizeApprox:  size,
		})
	}

	if len(options) == 0 {
		options = fallbackOptions()
	}

	options = append(options, model.FormatOption{
		ID:          audioSelector,
		Ext:         "mp3",
		Description: audioDescription,
	})

	return options
}

// fallbackOptions returns selector-based choices used when the site reports
// formats but none matches the progressive-MP4 filter.
func fallbackOptions() []model.FormatOption {
	labels := []struct {
		quality model.Quality
		desc    string
	}{
		{model.QualityBest, "Best available (MP4)"},
		{model.QualityHigh, "Up to 1080p (MP4)"},
		{model.QualityMedium, "Up to 720p (MP4)"},
		{model.QualityLow, "Up to 480p (MP4)"},
	}

	options := make([]model.FormatOption, 0, len(labels))
	for _, l := range labels {
		options = append(options, model.FormatOption{
			ID:          string(l.quality),
			Ext:         "mp4",
			Description: l.desc,
		})
	}
	return options
}
