package models

import (
	"fmt"
	"time"
)

// CrossRef is a persisted cross-catalog track reference: the remote identifier
// a catalog assigned to a track, keyed by the track's normalized key. Cached
// references let later runs skip remote searches entirely.
type CrossRef struct {
	id         string
	catalog    Catalog
	trackKey   string
	remoteID   string
	title      string
	artist     string
	album      string
	provenance string
	createdAt  time.Time
	updatedAt  time.Time
}

// NewCrossRef creates a cross-reference for the given track and resolved identifier.
func NewCrossRef(catalog Catalog, track Track, remoteID string, prov Provenance) *CrossRef {
	now := time.Now()
	return &CrossRef{
		catalog:    catalog,
		trackKey:   track.Key(),
		remoteID:   remoteID,
		title:      track.Title,
		artist:     track.Artist,
		album:      track.Album,
		provenance: prov.String(),
		createdAt:  now,
		updatedAt:  now,
	}
}

// ID returns the unique identifier for this cross-reference.
func (c *CrossRef) ID() string { return c.id }

// SetID sets the unique identifier. Called by repositories on insert.
func (c *CrossRef) SetID(id string) { c.id = id }

// CreatedAt returns when this cross-reference was created.
func (c *CrossRef) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt returns when this cross-reference was last updated.
func (c *CrossRef) UpdatedAt() time.Time { return c.updatedAt }

// SetUpdatedAt sets the last update time. Called by repositories on update.
func (c *CrossRef) SetUpdatedAt(t time.Time) { c.updatedAt = t }

// SetTimestamps sets both timestamps. Called by repositories when scanning rows.
func (c *CrossRef) SetTimestamps(created, updated time.Time) {
	c.createdAt = created
	c.updatedAt = updated
}

// Catalog returns the catalog this reference belongs to.
func (c *CrossRef) Catalog() Catalog { return c.catalog }

// TrackKey returns the normalized track key.
func (c *CrossRef) TrackKey() string { return c.trackKey }

// RemoteID returns the catalog-assigned track identifier.
func (c *CrossRef) RemoteID() string { return c.remoteID }

// Title returns the track title recorded at resolution time.
func (c *CrossRef) Title() string { return c.title }

// Artist returns the track artist recorded at resolution time.
func (c *CrossRef) Artist() string { return c.artist }

// Album returns the track album recorded at resolution time.
func (c *CrossRef) Album() string { return c.album }

// Provenance returns how the reference was originally obtained.
func (c *CrossRef) Provenance() string { return c.provenance }

// Validate checks that the cross-reference has the fields persistence requires.
func (c *CrossRef) Validate() error {
	if !c.catalog.Valid() {
		return fmt.Errorf("invalid catalog %q", c.catalog)
	}
	if c.trackKey == "" {
		return fmt.Errorf("track key is required")
	}
	if c.remoteID == "" {
		return fmt.Errorf("remote id is required")
	}
	return nil
}

// RestoreCrossRef rebuilds a cross-reference from persisted fields.
// Used by repositories when scanning rows.
func RestoreCrossRef(id string, catalog Catalog, trackKey, remoteID, title, artist, album, provenance string) *CrossRef {
	return &CrossRef{
		id:         id,
		catalog:    catalog,
		trackKey:   trackKey,
		remoteID:   remoteID,
		title:      title,
		artist:     artist,
		album:      album,
		provenance: provenance,
	}
}

// PlaylistRef is a persisted mapping from a sanitized playlist name to the
// identifier a catalog assigned to that playlist.
type PlaylistRef struct {
	id        string
	catalog   Catalog
	name      string
	remoteID  string
	createdAt time.Time
	updatedAt time.Time
}

// NewPlaylistRef creates a playlist reference.
func NewPlaylistRef(catalog Catalog, name, remoteID string) *PlaylistRef {
	now := time.Now()
	return &PlaylistRef{
		catalog:   catalog,
		name:      name,
		remoteID:  remoteID,
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the unique identifier for this playlist reference.
func (p *PlaylistRef) ID() string { return p.id }

// SetID sets the unique identifier. Called by repositories on insert.
func (p *PlaylistRef) SetID(id string) { p.id = id }

// CreatedAt returns when this playlist reference was created.
func (p *PlaylistRef) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt returns when this playlist reference was last updated.
func (p *PlaylistRef) UpdatedAt() time.Time { return p.updatedAt }

// SetUpdatedAt sets the last update time. Called by repositories on update.
func (p *PlaylistRef) SetUpdatedAt(t time.Time) { p.updatedAt = t }

// SetTimestamps sets both timestamps. Called by repositories when scanning rows.
func (p *PlaylistRef) SetTimestamps(created, updated time.Time) {
	p.createdAt = created
	p.updatedAt = updated
}

// Catalog returns the catalog this reference belongs to.
func (p *PlaylistRef) Catalog() Catalog { return p.catalog }

// Name returns the sanitized playlist name.
func (p *PlaylistRef) Name() string { return p.name }

// RemoteID returns the catalog-assigned playlist identifier.
func (p *PlaylistRef) RemoteID() string { return p.remoteID }

// SetRemoteID updates the catalog-assigned playlist identifier.
func (p *PlaylistRef) SetRemoteID(id string) { p.remoteID = id }

// Validate checks that the playlist reference has the fields persistence requires.
func (p *PlaylistRef) Validate() error {
	if !p.catalog.Valid() {
		return fmt.Errorf("invalid catalog %q", p.catalog)
	}
	if p.name == "" {
		return fmt.Errorf("name is required")
	}
	if p.remoteID == "" {
		return fmt.Errorf("remote id is required")
	}
	return nil
}

// RestorePlaylistRef rebuilds a playlist reference from persisted fields.
func RestorePlaylistRef(id string, catalog Catalog, name, remoteID string) *PlaylistRef {
	return &PlaylistRef{id: id, catalog: catalog, name: name, remoteID: remoteID}
}
