package ui

import "github.com/desertthunder/cadence/internal/engine"

// progressMsg carries one engine progress update into the Elm loop.
type progressMsg engine.ProgressUpdate

// syncCompleteMsg signals the end of a run with its outcome.
type syncCompleteMsg struct {
	summary *engine.Summary
	err     error
}
