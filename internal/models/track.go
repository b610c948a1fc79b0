package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/cadence/internal/shared"
)

// Provenance records how a track's reference in a catalog was obtained: reused
// from a previous run, resolved by a remote search at a given simplification
// level, or not found at all.
//
// The JSON form is the string "reused", an integer level, or null.
type Provenance struct {
	Reused   bool
	Level    int
	Resolved bool
}

// ProvenanceReused marks a reference carried over from an earlier run.
func ProvenanceReused() Provenance {
	return Provenance{Reused: true, Resolved: true}
}

// ProvenanceLevel marks a reference found by search at the given simplification level.
func ProvenanceLevel(level int) Provenance {
	return Provenance{Level: level, Resolved: true}
}

// ProvenanceMiss marks a track the search could not resolve.
func ProvenanceMiss() Provenance {
	return Provenance{}
}

// MarshalJSON implements json.Marshaler.
func (p Provenance) MarshalJSON() ([]byte, error) {
	switch {
	case p.Reused:
		return json.Marshal("reused")
	case p.Resolved:
		return json.Marshal(p.Level)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Provenance) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch {
	case s == "null":
		*p = ProvenanceMiss()
		return nil
	case s == `"reused"`:
		*p = ProvenanceReused()
		return nil
	default:
		level, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid provenance value %s", s)
		}
		*p = ProvenanceLevel(level)
		return nil
	}
}

// String renders the provenance for logs and reports.
func (p Provenance) String() string {
	switch {
	case p.Reused:
		return "reused"
	case p.Resolved:
		return fmt.Sprintf("level %d", p.Level)
	default:
		return "unresolved"
	}
}

// Track is a catalog-independent track descriptor. Refs holds the remote
// identifier per catalog once resolved; Provenance records how each reference
// was found.
type Track struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album,omitempty"`
	Path   string `json:"path,omitempty"`

	Refs       map[Catalog]string     `json:"refs,omitempty"`
	Provenance map[Catalog]Provenance `json:"provenance,omitempty"`
}

// Key returns the cross-catalog cache key for this track.
func (t *Track) Key() string {
	return shared.NormalizeTrackKey(t.Title, t.Artist)
}

// Ref returns the track's identifier in the given catalog, if resolved.
func (t *Track) Ref(c Catalog) (string, bool) {
	id, ok := t.Refs[c]
	return id, ok && id != ""
}

// SetRef records a resolved reference and its provenance.
func (t *Track) SetRef(c Catalog, id string, prov Provenance) {
	if t.Refs == nil {
		t.Refs = make(map[Catalog]string)
	}
	if t.Provenance == nil {
		t.Provenance = make(map[Catalog]Provenance)
	}
	t.Refs[c] = id
	t.Provenance[c] = prov
}

// MarkMiss records a failed resolution so reruns can report it without
// re-searching blindly.
func (t *Track) MarkMiss(c Catalog) {
	if t.Provenance == nil {
		t.Provenance = make(map[Catalog]Provenance)
	}
	t.Provenance[c] = ProvenanceMiss()
}

// SearchText returns the free-text query seed for this track.
func (t *Track) SearchText() string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Artist + " " + t.Title
}

// Playlist is a named, ordered collection of tracks with its per-catalog
// remote identifiers.
type Playlist struct {
	Name   string             `json:"name"`
	IDs    map[Catalog]string `json:"ids,omitempty"`
	Tracks []Track            `json:"tracks"`
}

// ID returns the playlist's identifier in the given catalog, if known.
func (p *Playlist) ID(c Catalog) (string, bool) {
	id, ok := p.IDs[c]
	return id, ok && id != ""
}

// SetID records the playlist's identifier in a catalog.
func (p *Playlist) SetID(c Catalog, id string) {
	if p.IDs == nil {
		p.IDs = make(map[Catalog]string)
	}
	p.IDs[c] = id
}

// SanitizedName returns the playlist name cleaned for cross-catalog comparison.
func (p *Playlist) SanitizedName() string {
	return shared.SanitizeName(p.Name)
}
