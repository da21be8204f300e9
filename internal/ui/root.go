package ui

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/tubegrab/tubegrab/internal/config"
	"github.com/tubegrab/tubegrab/internal/download"
	"github.com/tubegrab/tubegrab/internal/model"
	"github.com/tubegrab/tubegrab/internal/platform"
)

// UI constants
const (
	DashPlaceholder     = "—"
	ProgressLabelFormat = "%d%%"

	WindowWidth  float32 = 560
	WindowHeight float32 = 420
)

// Fetcher is the metadata lookup surface the UI depends on.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*model.VideoMetadata, error)
}

// RootUI represents the main UI structure
type RootUI struct {
	window   fyne.Window
	settings *config.Settings
	fetcher  Fetcher
	svc      download.Orchestrator
	logger   *zap.Logger

	urlEntry      *widget.Entry
	analyzeBtn    *widget.Button
	titleLabel    *widget.Label
	detailLabel   *widget.Label
	formatSelect  *widget.Select
	qualitySelect *widget.Select
	downloadBtn   *widget.Button
	cancelBtn     *widget.Button
	progressBar   *widget.ProgressBar
	percentLabel  *widget.Label
	statusLabel   *widget.Label
	speedLabel    *widget.Label
	revealBtn     *widget.Button
	openBtn       *widget.Button

	metadata       *model.VideoMetadata
	lastOutputPath string
}

// NewRootUI creates and initializes the main UI
func NewRootUI(window fyne.Window, app fyne.App, fetcher Fetcher, svc download.Orchestrator, logger *zap.Logger) *RootUI {
	if logger == nil {
		logger = zap.NewNop()
	}

	settings := config.NewSettings(app)

	// Ensure the configured downloads directory exists
	platform.CreateDirectoryIfNotExists(settings.GetDownloadDirectory())

	ui := &RootUI{
		window:   window,
		settings: settings,
		fetcher:  fetcher,
		svc:      svc,
		logger:   logger,
	}

	ui.setupUI()

	go ui.consumeEvents()

	return ui
}

// setupUI builds the window content.
func (ui *RootUI) setupUI() {
	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.SetPlaceHolder("Paste a video URL…")
	ui.urlEntry.OnSubmitted = func(string) { ui.onAnalyzeClick() }

	ui.analyzeBtn = widget.NewButton("Analyze", ui.onAnalyzeClick)
	urlRow := container.NewBorder(nil, nil, nil, ui.analyzeBtn, ui.urlEntry)

	ui.titleLabel = widget.NewLabel(DashPlaceholder)
	ui.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	ui.titleLabel.Wrapping = fyne.TextWrapWord
	ui.detailLabel = widget.NewLabel("")

	formats := make([]string, 0, len(model.Formats()))
	for _, f := range model.Formats() {
		formats = append(formats, string(f))
	}
	ui.formatSelect = widget.NewSelect(formats, nil)
	ui.formatSelect.SetSelected(string(ui.settings.GetPreferredFormat()))

	qualities := make([]string, 0, len(model.Qualities()))
	for _, q := range model.Qualities() {
		qualities = append(qualities, string(q))
	}
	ui.qualitySelect = widget.NewSelect(qualities, nil)
	ui.qualitySelect.SetSelected(string(ui.settings.GetPreferredQuality()))

	selectionRow := container.NewGridWithColumns(2,
		container.NewVBox(widget.NewLabel("Format:"), ui.formatSelect),
		container.NewVBox(widget.NewLabel("Quality:"), ui.qualitySelect),
	)

	ui.downloadBtn = widget.NewButton("Download", ui.onDownloadClick)
	ui.downloadBtn.Importance = widget.HighImportance
	ui.cancelBtn = widget.NewButton("Cancel", ui.onCancelClick)
	ui.cancelBtn.Disable()
	settingsBtn := widget.NewButton("Settings", ui.onShowSettings)
	buttonRow := container.NewHBox(ui.downloadBtn, ui.cancelBtn, settingsBtn)

	ui.progressBar = widget.NewProgressBar()
	ui.percentLabel = widget.NewLabel("")
	ui.statusLabel = widget.NewLabel("Ready")
	ui.speedLabel = widget.NewLabel("")
	progressRow := container.NewBorder(nil, nil, nil, ui.percentLabel, ui.progressBar)
	statusRow := container.NewHBox(ui.statusLabel, ui.speedLabel)

	ui.revealBtn = widget.NewButton("Show in Folder", ui.onRevealFile)
	ui.openBtn = widget.NewButton("Open", ui.onOpenFile)
	ui.revealBtn.Disable()
	ui.openBtn.Disable()
	resultRow := container.NewHBox(ui.revealBtn, ui.openBtn)

	content := container.NewVBox(
		urlRow,
		widget.NewSeparator(),
		ui.titleLabel,
		ui.detailLabel,
		selectionRow,
		buttonRow,
		widget.NewSeparator(),
		progressRow,
		statusRow,
		resultRow,
	)

	ui.window.SetContent(content)
	ui.window.Resize(fyne.NewSize(WindowWidth, WindowHeight))
}

// onAnalyzeClick fetches metadata for the entered URL off the UI thread.
func (ui *RootUI) onAnalyzeClick() {
	rawURL := ui.urlEntry.Text
	if rawURL == "" {
		dialog.ShowInformation("Analyze", "Enter a video URL first.", ui.window)
		return
	}

	ui.analyzeBtn.Disable()
	ui.statusLabel.SetText("Fetching video info…")

	go func() {
		meta, err := ui.fetcher.Fetch(context.Background(), rawURL)

		fyne.Do(func() {
			ui.analyzeBtn.Enable()
			if err != nil {
				ui.statusLabel.SetText("Ready")
				ui.logger.Warn("metadata fetch failed", zap.String("url", rawURL), zap.Error(err))
				dialog.ShowError(err, ui.window)
				return
			}
			ui.metadata = meta
			ui.titleLabel.SetText(meta.Title)
			ui.detailLabel.SetText(describeMetadata(meta))
			ui.statusLabel.SetText("Ready")
		})
	}()
}

// describeMetadata builds the one-line summary under the title.
func describeMetadata(meta *model.VideoMetadata) string {
	desc := meta.DurationString()
	if meta.Uploader != "" {
		desc += " · " + meta.Uploader
	}
	if n := len(meta.Formats); n > 0 {
		desc += fmt.Sprintf(" · %d format options", n)
	}
	return desc
}

// onDownloadClick starts a job for the current URL and selections.
func (ui *RootUI) onDownloadClick() {
	format, err := model.ParseFormat(ui.formatSelect.Selected)
	if err != nil {
		dialog.ShowError(err, ui.window)
		return
	}
	quality, err := model.ParseQuality(ui.qualitySelect.Selected)
	if err != nil {
		dialog.ShowError(err, ui.window)
		return
	}

	req := model.DownloadRequest{
		URL:     ui.urlEntry.Text,
		Format:  format,
		Quality: quality,
		Dir:     ui.settings.GetDownloadDirectory(),
	}

	if _, err := ui.svc.Start(req); err != nil {
		dialog.ShowError(err, ui.window)
		return
	}

	ui.settings.SetPreferredFormat(format)
	ui.settings.SetPreferredQuality(quality)

	ui.lastOutputPath = ""
	ui.downloadBtn.Disable()
	ui.cancelBtn.Enable()
	ui.revealBtn.Disable()
	ui.openBtn.Disable()
	ui.progressBar.SetValue(0)
	ui.percentLabel.SetText("")
	ui.speedLabel.SetText("")
	ui.statusLabel.SetText("Starting…")
}

// onCancelClick stops the active job.
func (ui *RootUI) onCancelClick() {
	if err := ui.svc.Cancel(); err != nil {
		ui.logger.Warn("cancel failed", zap.Error(err))
	}
}

// onShowSettings displays the settings dialog.
func (ui *RootUI) onShowSettings() {
	NewSettingsDialog(ui.settings, ui.window).Show()
}

// onRevealFile shows the finished file in the system file manager.
func (ui *RootUI) onRevealFile() {
	if ui.lastOutputPath == "" {
		return
	}
	if err := platform.OpenFileInManager(ui.lastOutputPath); err != nil {
		dialog.ShowError(err, ui.window)
	}
}

// onOpenFile opens the finished file with the default application.
func (ui *RootUI) onOpenFile() {
	if ui.lastOutputPath == "" {
		return
	}
	if err := platform.OpenFileWithDefaultApp(ui.lastOutputPath); err != nil {
		dialog.ShowError(err, ui.window)
	}
}

// consumeEvents drains the orchestrator's event channel for the lifetime of
// the window, applying each snapshot on the UI thread.
func (ui *RootUI) consumeEvents() {
	for ev := range ui.svc.Events() {
		ev := ev
		fyne.Do(func() { ui.applyEvent(ev) })
	}
}

// applyEvent renders one job snapshot. Runs on the UI thread.
func (ui *RootUI) applyEvent(ev model.JobEvent) {
	ui.progressBar.SetValue(float64(ev.Percent) / 100.0)
	ui.percentLabel.SetText(fmt.Sprintf(ProgressLabelFormat, ev.Percent))
	if ev.Title != "" {
		ui.titleLabel.SetText(ev.Title)
	}
	if ev.Speed != "" {
		eta := DashPlaceholder
		if job, ok := ui.svc.Current(); ok {
			eta = job.GetETAString()
		}
		ui.speedLabel.SetText(ev.Speed + " · ETA " + eta)
	} else {
		ui.speedLabel.SetText("")
	}

	switch ev.Status {
	case model.JobStatusCompleted:
		ui.statusLabel.SetText("Completed")
		ui.lastOutputPath = ev.OutputPath
		if job, ok := ui.svc.Current(); ok {
			ui.titleLabel.SetText(job.GetDisplayTitle())
		}
		ui.downloadBtn.Enable()
		ui.cancelBtn.Disable()
		if ev.OutputPath != "" {
			ui.revealBtn.Enable()
			ui.openBtn.Enable()
			if ui.settings.GetAutoRevealOnComplete() {
				go platform.OpenFileInManager(ev.OutputPath)
			}
		}
	case model.JobStatusError:
		ui.statusLabel.SetText("Failed: " + ev.Err)
		ui.downloadBtn.Enable()
		ui.cancelBtn.Disable()
	case model.JobStatusStopped:
		ui.statusLabel.SetText("Stopped")
		ui.downloadBtn.Enable()
		ui.cancelBtn.Disable()
	default:
		ui.statusLabel.SetText(ev.Message)
	}
}
