package model

import "testing"

func TestJobStatusString(t *testing.T) {
	if JobStatusDownloading.String() != "Downloading" {
		t.Errorf("Expected 'Downloading', got '%s'", JobStatusDownloading.String())
	}
}

func TestJobStatusIsActive(t *testing.T) {
	activeStatuses := []JobStatus{
		JobStatusStarting,
		JobStatusDownloading,
		JobStatusConverting,
		JobStatusStopping,
	}
	for _, status := range activeStatuses {
		if !status.IsActive() {
			t.Errorf("Expected %s to be active", status)
		}
	}

	inactiveStatuses := []JobStatus{
		JobStatusPending,
		JobStatusStopped,
		JobStatusCompleted,
		JobStatusError,
	}
	for _, status := range inactiveStatuses {
		if status.IsActive() {
			t.Errorf("Expected %s to not be active", status)
		}
	}
}

func TestJobStatusIsFinished(t *testing.T) {
	finishedStatuses := []JobStatus{
		JobStatusCompleted,
		JobStatusStopped,
		JobStatusError,
	}
	for _, status := range finishedStatuses {
		if !status.IsFinished() {
			t.Errorf("Expected %s to be finished", status)
		}
	}

	unfinishedStatuses := []JobStatus{
		JobStatusPending,
		JobStatusStarting,
		JobStatusDownloading,
		JobStatusConverting,
		JobStatusStopping,
	}
	for _, status := range unfinishedStatuses {
		if status.IsFinished() {
			t.Errorf("Expected %s to not be finished", status)
		}
	}
}
