package model

// Package model defines domain data structures used across the app: download
// requests, fetched video metadata, the job entity with its status enum, and
// the events emitted by the orchestrator. Structures are designed for direct
// binding in the UI and explicit state transitions.
