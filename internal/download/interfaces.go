package download

import (
	"github.com/tubegrab/tubegrab/internal/model"
)

// Orchestrator defines the front-end-facing surface of the download service.
type Orchestrator interface {
	// Start begins a new job, or fails if one is already active.
	Start(req model.DownloadRequest) (*model.Job, error)

	// Cancel stops the active job, if any.
	Cancel() error

	// Current returns a snapshot of the active or most recent job.
	Current() (model.Job, bool)

	// Events returns the channel carrying job progress/status snapshots.
	Events() <-chan model.JobEvent
}
