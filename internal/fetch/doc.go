package fetch

// Package fetch resolves a video URL into metadata (title, duration, the
// format/quality choices offered to the user) via yt-dlp's JSON dump
// (github.com/lrstanley/go-ytdlp). All site resolution is delegated to the
// library; this package only shape-checks and classifies the response.
