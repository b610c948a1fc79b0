// Package catalog implements clients for the music services a sync touches.
//
// Every client speaks through the httpx executor, so retry, backoff, and
// credential refresh behavior is identical across services; the clients
// themselves only know their service's URL shapes, payloads, and limits.
package catalog

import (
	"context"

	"github.com/desertthunder/cadence/internal/models"
	"github.com/desertthunder/cadence/internal/resolver"
)

// PlaylistInfo is a remote playlist's identity.
type PlaylistInfo struct {
	ID   string
	Name string
}

// Catalog is the client surface the reconciliation engine needs from a
// writable music service. AddTracks takes at most one batch; the engine slices
// deltas by BatchSize so a checkpoint lands after every applied batch.
type Catalog interface {
	Name() models.Catalog

	// BatchSize is the service's per-request cap on track additions.
	BatchSize() int

	// Playlists lists the user's playlists.
	Playlists(ctx context.Context) ([]PlaylistInfo, error)

	// CreatePlaylist creates an empty playlist and returns its identifier.
	CreatePlaylist(ctx context.Context, name string) (string, error)

	// DeletePlaylist removes a playlist. Used only by force-replace jobs.
	DeletePlaylist(ctx context.Context, id string) error

	// PlaylistTracks returns the track identifiers currently in a playlist.
	PlaylistTracks(ctx context.Context, playlistID string) ([]string, error)

	// AddTracks appends up to BatchSize track identifiers to a playlist.
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error

	// SearchTrack implements resolver.Searcher for this service.
	SearchTrack(ctx context.Context, query string) ([]resolver.Candidate, error)
}
