package engine

import "fmt"

// ProgressUpdate represents a progress event during a sync run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolvePlaylist Phase = iota
	FetchMembership
	ResolveTracks
	ApplyBatches
	Finalize
)

func (p Phase) String() string {
	switch p {
	case ResolvePlaylist:
		return "resolve_playlist"
	case FetchMembership:
		return "fetch_membership"
	case ResolveTracks:
		return "resolve_tracks"
	case ApplyBatches:
		return "apply_batches"
	case Finalize:
		return "finalize"
	default:
		return ""
	}
}

func resolvePlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolvePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Resolving playlist: %s", step, total, name),
	}
}

func fetchMembershipUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchMembership,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching current tracks of %s...", name),
	}
}

func resolveTrackUpdate(step, total int, title, artist string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, artist, title),
	}
}

func applyBatchUpdate(step, total, added int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ApplyBatches,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Added batch of %d tracks", step, total, added),
	}
}

func finalizeUpdate(summary *Summary) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Finalize,
		Step:    1,
		Total:   1,
		Message: "Sync complete",
		Data:    summary,
	}
}
