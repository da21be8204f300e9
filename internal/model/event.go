package model

// JobEvent is an immutable snapshot of job state sent from the orchestrator
// to whichever front-end is listening. Progress and status cross package
// boundaries only through these events, never through direct UI callbacks.
type JobEvent struct {
	JobID      string
	Status     JobStatus
	Percent    int
	Speed      string // empty if unknown
	ETASec     int    // -1 if unknown
	Title      string // video title once known
	Message    string // short human-friendly status line
	Err        string // non-empty when Status is JobStatusError
	OutputPath string // set on completion
}
