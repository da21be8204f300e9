package download

import (
	"strings"
	"testing"

	"github.com/tubegrab/tubegrab/internal/model"
)

func TestFormatSelector(t *testing.T) {
	tests := []struct {
		format   model.OutputFormat
		quality  model.Quality
		expected string
	}{
		{model.FormatMP4, model.QualityBest, "bestvideo+bestaudio/best"},
		{model.FormatMP4, model.QualityHigh, "bestvideo[height<=1080]+bestaudio/best[height<=1080]"},
		{model.FormatMP4, model.QualityMedium, "bestvideo[height<=720]+bestaudio/best[height<=720]"},
		{model.FormatMP4, model.QualityLow, "bestvideo[height<=480]+bestaudio/best[height<=480]"},
		{model.FormatMP3, model.QualityBest, "bestaudio/best"},
		{model.FormatMP3, model.QualityLow, "bestaudio/best"},
	}

	for _, test := range tests {
		req := model.DownloadRequest{Format: test.format, Quality: test.quality}
		result := FormatSelector(req)
		if result != test.expected {
			t.Errorf("FormatSelector(%s, %s) = %s, expected %s",
				test.format, test.quality, result, test.expected)
		}
	}
}

func TestFormatSelectorUnknownQualityFallsBack(t *testing.T) {
	req := model.DownloadRequest{Format: model.FormatMP4, Quality: "weird"}
	if sel := FormatSelector(req); !strings.Contains(sel, "bestvideo+bestaudio") {
		t.Errorf("Expected fallback to best selector, got %s", sel)
	}
}
