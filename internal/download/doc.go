package download

// Package download implements the download/convert orchestrator built on top
// of yt-dlp (via github.com/lrstanley/go-ytdlp) and the ffmpeg converter. One
// job runs at a time, off the interactive thread; progress and status leave
// the orchestrator as JobEvents on a channel so front-ends stay decoupled.
