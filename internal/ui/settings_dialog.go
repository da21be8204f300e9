package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/tubegrab/tubegrab/internal/config"
	"github.com/tubegrab/tubegrab/internal/model"
)

// SettingsDialog represents the settings configuration dialog
type SettingsDialog struct {
	settings *config.Settings
	window   fyne.Window
	dialog   *dialog.ConfirmDialog

	// UI components
	downloadDirEntry *widget.Entry
	ffmpegPathEntry  *widget.Entry
	themeSelect      *widget.Select
	formatSelect     *widget.Select
	qualitySelect    *widget.Select
	autoRevealCheck  *widget.Check
}

// NewSettingsDialog creates a new settings dialog
func NewSettingsDialog(settings *config.Settings, window fyne.Window) *SettingsDialog {
	sd := &SettingsDialog{
		settings: settings,
		window:   window,
	}

	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

// createUI creates the settings dialog UI
func (sd *SettingsDialog) createUI() {
	// Download directory selection
	sd.downloadDirEntry = widget.NewEntry()
	sd.downloadDirEntry.SetPlaceHolder("Download directory path")

	browseDirBtn := widget.NewButton("Browse", sd.onBrowseDirectory)
	downloadDirRow := container.NewBorder(nil, nil, nil, browseDirBtn, sd.downloadDirEntry)

	// FFmpeg binary path; empty resolves from PATH
	sd.ffmpegPathEntry = widget.NewEntry()
	sd.ffmpegPathEntry.SetPlaceHolder("Leave empty to use PATH")

	// Theme selection
	sd.themeSelect = widget.NewSelect(sd.settings.GetThemeOptions(), nil)

	// Default format and quality
	formats := []string{}
	for _, f := range model.Formats() {
		formats = append(formats, string(f))
	}
	sd.formatSelect = widget.NewSelect(formats, nil)

	qualities := []string{}
	for _, q := range model.Qualities() {
		qualities = append(qualities, string(q))
	}
	sd.qualitySelect = widget.NewSelect(qualities, nil)

	sd.autoRevealCheck = widget.NewCheck("Reveal file when a download completes", nil)

	// Create form
	form := container.NewVBox(
		widget.NewLabel("Download Settings"),
		widget.NewSeparator(),

		widget.NewLabel("Download Directory:"),
		downloadDirRow,

		widget.NewLabel("FFmpeg Path:"),
		sd.ffmpegPathEntry,

		widget.NewLabel("Default Format:"),
		sd.formatSelect,

		widget.NewLabel("Default Quality:"),
		sd.qualitySelect,

		widget.NewSeparator(),
		widget.NewLabel("Interface Settings"),
		widget.NewSeparator(),

		widget.NewLabel("Theme (takes effect on restart):"),
		sd.themeSelect,

		sd.autoRevealCheck,
	)

	// Create dialog with buttons
	sd.dialog = dialog.NewCustomConfirm(
		"Settings",
		"Save",
		"Cancel",
		form,
		sd.onSave,
		sd.window,
	)

	sd.dialog.Resize(fyne.NewSize(500, 440))
}

// loadCurrentSettings loads current settings into the UI
func (sd *SettingsDialog) loadCurrentSettings() {
	sd.downloadDirEntry.SetText(sd.settings.GetDownloadDirectory())
	sd.ffmpegPathEntry.SetText(sd.settings.GetFFmpegPath())
	sd.themeSelect.SetSelected(sd.settings.GetTheme())
	sd.formatSelect.SetSelected(string(sd.settings.GetPreferredFormat()))
	sd.qualitySelect.SetSelected(string(sd.settings.GetPreferredQuality()))
	sd.autoRevealCheck.SetChecked(sd.settings.GetAutoRevealOnComplete())
}

// onBrowseDirectory handles directory browsing
func (sd *SettingsDialog) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		sd.downloadDirEntry.SetText(uri.Path())
	}, sd.window)
}

// onSave handles saving the settings
func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}

	if dir := sd.downloadDirEntry.Text; dir != "" {
		sd.settings.SetDownloadDirectory(dir)
	}

	sd.settings.SetFFmpegPath(sd.ffmpegPathEntry.Text)

	if sd.themeSelect.Selected != "" {
		sd.settings.SetTheme(sd.themeSelect.Selected)
	}

	if format, err := model.ParseFormat(sd.formatSelect.Selected); err == nil {
		sd.settings.SetPreferredFormat(format)
	}
	if quality, err := model.ParseQuality(sd.qualitySelect.Selected); err == nil {
		sd.settings.SetPreferredQuality(quality)
	}

	sd.settings.SetAutoRevealOnComplete(sd.autoRevealCheck.Checked)
}
