package ui

import (
	"fyne.io/fyne/v2/app"
	"go.uber.org/zap"

	"github.com/tubegrab/tubegrab/internal/config"
	"github.com/tubegrab/tubegrab/internal/convert"
	"github.com/tubegrab/tubegrab/internal/download"
	"github.com/tubegrab/tubegrab/internal/fetch"
)

const appID = "com.tubegrab.app"

// Launch builds the desktop application and runs its event loop until the
// window closes.
func Launch(version string, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fyneApp := app.NewWithID(appID)
	settings := config.NewSettings(fyneApp)
	fyneApp.Settings().SetTheme(NewAppTheme(settings.GetTheme()))

	// Re-read per job so an ffmpeg path saved in settings applies without
	// restarting the app.
	converter := convert.NewDynamic(settings.GetFFmpegPath, logger)
	fetcher := fetch.New(logger)
	svc := download.NewService(converter, logger)

	window := fyneApp.NewWindow("TubeGrab " + version)
	NewRootUI(window, fyneApp, fetcher, svc, logger)

	window.ShowAndRun()
}
