// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for a sync run:
//  1. [PlaylistListView] : Browse the playlists in the loaded job
//  2. [TrackListView] : Preview a playlist's tracks and their resolution state
//  3. [ConfirmView] : Confirm the sync operation
//  4. [SyncView] : Monitor real-time progress updates
//  5. [ResultView] : Display the run summary and unresolved tracks
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the reconciliation engine, providing
// non-blocking status reporting during the run.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual
// help displayed via charmbracelet/bubbles/help.
package ui
