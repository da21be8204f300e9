package download

import "github.com/tubegrab/tubegrab/internal/model"

// Quality labels map to yt-dlp format selectors. Audio requests always grab
// the best audio stream; the MP3 container is produced by the converter.
var qualitySelectors = map[model.Quality]string{
	model.QualityBest:   "bestvideo+bestaudio/best",
	model.QualityHigh:   "bestvideo[height<=1080]+bestaudio/best[height<=1080]",
	model.QualityMedium: "bestvideo[height<=720]+bestaudio/best[height<=720]",
	model.QualityLow:    "bestvideo[height<=480]+bestaudio/best[height<=480]",
}

const audioSelector = "bestaudio/best"

// FormatSelector returns the yt-dlp format selector for a request.
func FormatSelector(req model.DownloadRequest) string {
	if req.Format == model.FormatMP3 {
		return audioSelector
	}
	if sel, ok := qualitySelectors[req.Quality]; ok {
		return sel
	}
	return qualitySelectors[model.QualityBest]
}
