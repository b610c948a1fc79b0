// Package repositories implements SQLite persistence for the sync engine's caches.
//
// Each repository implements models.Repository[T] for a specific entity type.
// Cached entities exist to make reruns cheap: a resolved track or playlist
// reference is looked up by its natural key before any remote search happens.
//
// Key Implementations:
//   - [CrossRefRepository] : Track references keyed by (catalog, normalized track key)
//   - [PlaylistRefRepository] : Playlist identifiers keyed by (catalog, sanitized name)
package repositories
