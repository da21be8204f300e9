package ui

// Package ui contains the Fyne-based desktop user interface. It wires user
// interactions to the metadata fetcher and the download orchestrator and
// renders progress from the orchestrator's event channel.
