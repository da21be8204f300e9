package config

import (
	"fyne.io/fyne/v2"

	"github.com/tubegrab/tubegrab/internal/model"
	"github.com/tubegrab/tubegrab/internal/platform"
)

// Theme names
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Settings keys for Fyne preferences
const (
	KeyDownloadDir        = "download_directory"
	KeyFFmpegPath         = "ffmpeg_path"
	KeyTheme              = "theme"
	KeyPreferredFormat    = "preferred_format"
	KeyPreferredQuality   = "preferred_quality"
	KeyAutoRevealComplete = "auto_reveal_on_complete"
)

// Default values
const (
	DefaultTheme              = ThemeDark
	DefaultAutoRevealComplete = true
)

// Settings manages application configuration
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetDownloadDirectory returns the configured download directory
func (s *Settings) GetDownloadDirectory() string {
	dir := s.app.Preferences().String(KeyDownloadDir)
	if dir == "" {
		// Use system default Downloads directory
		defaultDir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			defaultDir = "/tmp/downloads"
		}
		s.SetDownloadDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetDownloadDirectory sets the download directory
func (s *Settings) SetDownloadDirectory(dir string) {
	s.app.Preferences().SetString(KeyDownloadDir, dir)
}

// GetFFmpegPath returns the explicitly configured ffmpeg binary path. Empty
// means the converter resolves ffmpeg from PATH.
func (s *Settings) GetFFmpegPath() string {
	return s.app.Preferences().String(KeyFFmpegPath)
}

// SetFFmpegPath sets the ffmpeg binary path
func (s *Settings) SetFFmpegPath(path string) {
	s.app.Preferences().SetString(KeyFFmpegPath, path)
}

// GetTheme returns the configured theme name
func (s *Settings) GetTheme() string {
	theme := s.app.Preferences().String(KeyTheme)
	if theme != ThemeDark && theme != ThemeLight {
		s.SetTheme(DefaultTheme)
		return DefaultTheme
	}
	return theme
}

// SetTheme sets the theme name
func (s *Settings) SetTheme(theme string) {
	s.app.Preferences().SetString(KeyTheme, theme)
}

// GetPreferredFormat returns the output format preselected in the UI
func (s *Settings) GetPreferredFormat() model.OutputFormat {
	format, err := model.ParseFormat(s.app.Preferences().String(KeyPreferredFormat))
	if err != nil {
		s.SetPreferredFormat(model.FormatMP4)
		return model.FormatMP4
	}
	return format
}

// SetPreferredFormat sets the preselected output format
func (s *Settings) SetPreferredFormat(format model.OutputFormat) {
	s.app.Preferences().SetString(KeyPreferredFormat, string(format))
}

// GetPreferredQuality returns the quality preselected in the UI
func (s *Settings) GetPreferredQuality() model.Quality {
	quality, err := model.ParseQuality(s.app.Preferences().String(KeyPreferredQuality))
	if err != nil {
		s.SetPreferredQuality(model.QualityBest)
		return model.QualityBest
	}
	return quality
}

// SetPreferredQuality sets the preselected quality
func (s *Settings) SetPreferredQuality(quality model.Quality) {
	s.app.Preferences().SetString(KeyPreferredQuality, string(quality))
}

// GetAutoRevealOnComplete returns whether to auto-reveal completed downloads
func (s *Settings) GetAutoRevealOnComplete() bool {
	return s.app.Preferences().BoolWithFallback(KeyAutoRevealComplete, DefaultAutoRevealComplete)
}

// SetAutoRevealOnComplete sets whether to auto-reveal completed downloads
func (s *Settings) SetAutoRevealOnComplete(autoReveal bool) {
	s.app.Preferences().SetBool(KeyAutoRevealComplete, autoReveal)
}

// GetThemeOptions returns available theme options
func (s *Settings) GetThemeOptions() []string {
	return []string{ThemeDark, ThemeLight}
}
