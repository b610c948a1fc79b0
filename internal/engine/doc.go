// Package engine implements idempotent playlist reconciliation.
//
// A job describes the desired state: named playlists with ordered track
// descriptors. The engine drives each playlist to that state on a target
// catalog in six steps: resolve or create the remote playlist, fetch its
// current membership, resolve missing track references, compute the delta,
// apply it in bounded batches, and checkpoint after every unit of progress.
//
// The checkpoint document is the engine's crash-safety mechanism. It is
// rewritten in full through a temp-file-and-rename after every resolution and
// every applied batch, so an interrupted job resumes from exactly the
// unresolved and unapplied remainder. Running a job twice with no changes
// issues zero additions the second time.
//
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers.
package engine
