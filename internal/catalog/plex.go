package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/cadence/internal/httpx"
	"github.com/desertthunder/cadence/internal/models"
	"github.com/desertthunder/cadence/internal/resolver"
	"github.com/desertthunder/cadence/internal/shared"
)

// plexTrackType is the Plex library type code for audio tracks.
const plexTrackType = 10

// PlexAuth stamps requests with the long-lived server token. Plex does not
// use bearer authorization, so it gets its own httpx.AuthProvider instead of
// the OAuth session manager.
type PlexAuth struct {
	Token string
}

// Authorize implements httpx.AuthProvider.
func (a *PlexAuth) Authorize(ctx context.Context, req *http.Request) error {
	if a.Token == "" {
		return fmt.Errorf("%w: no plex token configured", shared.ErrAuthUnavailable)
	}
	req.Header.Set("X-Plex-Token", a.Token)
	return nil
}

// Invalidate implements httpx.AuthProvider. Personal tokens cannot be
// refreshed; a rejection is terminal.
func (a *PlexAuth) Invalidate(ctx context.Context) error {
	return nil
}

// PlexCatalog talks to a Plex Media Server. Plex is the sync source: it
// provides the full music library index for local matching and receives
// playlist files, but it is not a push target for track deltas.
type PlexCatalog struct {
	baseURL string
	library string
	exec    *httpx.Executor
	logger  *log.Logger

	sectionID string
}

// Section is a Plex library section.
type Section struct {
	ID    string
	Title string
	Type  string
}

// NewPlexCatalog creates a Plex client. library is the music section's title.
func NewPlexCatalog(exec *httpx.Executor, baseURL, library string, logger *log.Logger) *PlexCatalog {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PlexCatalog{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		library: library,
		exec:    exec,
		logger:  logger.With("catalog", models.CatalogPlex),
	}
}

// Name returns the catalog identity.
func (p *PlexCatalog) Name() models.Catalog {
	return models.CatalogPlex
}

// Sections lists the server's library sections.
func (p *PlexCatalog) Sections(ctx context.Context) ([]Section, error) {
	var container struct {
		MediaContainer struct {
			Directory []struct {
				Key   string `json:"key"`
				Title string `json:"title"`
				Type  string `json:"type"`
			} `json:"Directory"`
		} `json:"MediaContainer"`
	}
	if err := p.getJSON(ctx, "/library/sections", &container); err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}

	sections := make([]Section, 0, len(container.MediaContainer.Directory))
	for _, dir := range container.MediaContainer.Directory {
		sections = append(sections, Section{ID: dir.Key, Title: dir.Title, Type: dir.Type})
	}
	return sections, nil
}

// SectionID resolves and caches the configured music section's key.
func (p *PlexCatalog) SectionID(ctx context.Context) (string, error) {
	if p.sectionID != "" {
		return p.sectionID, nil
	}

	sections, err := p.Sections(ctx)
	if err != nil {
		return "", err
	}

	for _, s := range sections {
		if s.Title == p.library && s.Type == "artist" {
			p.sectionID = s.ID
			return s.ID, nil
		}
	}
	return "", fmt.Errorf("%w: no music section named %q", shared.ErrInvalidConfig, p.library)
}

// LibraryIndex fetches the full track listing of the music section. This is
// an expensive one-time fetch; callers keep the returned index for the whole
// job instead of refetching per track.
func (p *PlexCatalog) LibraryIndex(ctx context.Context) (*resolver.Index, error) {
	sectionID, err := p.SectionID(ctx)
	if err != nil {
		return nil, err
	}

	var container struct {
		MediaContainer struct {
			Metadata []plexTrack `json:"Metadata"`
		} `json:"MediaContainer"`
	}
	endpoint := fmt.Sprintf("/library/sections/%s/all?type=%d", url.PathEscape(sectionID), plexTrackType)
	if err := p.getJSON(ctx, endpoint, &container); err != nil {
		return nil, fmt.Errorf("failed to fetch library index: %w", err)
	}

	candidates := make([]resolver.Candidate, 0, len(container.MediaContainer.Metadata))
	for _, md := range container.MediaContainer.Metadata {
		candidates = append(candidates, md.candidate())
	}

	p.logger.Info("fetched library index", "tracks", len(candidates))
	return resolver.NewIndex(candidates), nil
}

// Playlists lists the server's audio playlists.
func (p *PlexCatalog) Playlists(ctx context.Context) ([]PlaylistInfo, error) {
	var container struct {
		MediaContainer struct {
			Metadata []struct {
				RatingKey string `json:"ratingKey"`
				Title     string `json:"title"`
			} `json:"Metadata"`
		} `json:"MediaContainer"`
	}
	if err := p.getJSON(ctx, "/playlists?playlistType=audio", &container); err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	playlists := make([]PlaylistInfo, 0, len(container.MediaContainer.Metadata))
	for _, md := range container.MediaContainer.Metadata {
		playlists = append(playlists, PlaylistInfo{ID: md.RatingKey, Name: md.Title})
	}
	return playlists, nil
}

// PlaylistTracks returns the descriptors of a playlist's tracks.
func (p *PlexCatalog) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	var container struct {
		MediaContainer struct {
			Metadata []plexTrack `json:"Metadata"`
		} `json:"MediaContainer"`
	}
	endpoint := fmt.Sprintf("/playlists/%s/items", url.PathEscape(playlistID))
	if err := p.getJSON(ctx, endpoint, &container); err != nil {
		return nil, fmt.Errorf("failed to fetch playlist items: %w", err)
	}

	tracks := make([]models.Track, 0, len(container.MediaContainer.Metadata))
	for _, md := range container.MediaContainer.Metadata {
		track := models.Track{
			Title:  md.Title,
			Artist: md.GrandparentTitle,
			Album:  md.ParentTitle,
		}
		track.SetRef(models.CatalogPlex, md.RatingKey, models.ProvenanceReused())
		tracks = append(tracks, track)
	}
	return tracks, nil
}

// UploadPlaylist pushes a playlist file path into the music section. The path
// must be visible to the server.
func (p *PlexCatalog) UploadPlaylist(ctx context.Context, path string) error {
	sectionID, err := p.SectionID(ctx)
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("sectionID", sectionID)
	params.Set("path", path)

	resp, err := p.exec.Do(ctx, httpx.Request{
		Method: http.MethodPost,
		URL:    p.baseURL + "/playlists/upload?" + params.Encode(),
	})
	if err != nil {
		return fmt.Errorf("failed to upload playlist %s: %w", path, err)
	}
	resp.Body.Close()

	p.logger.Info("uploaded playlist", "path", path, "section", sectionID)
	return nil
}

// plexTrack is the metadata Plex returns for one audio track.
type plexTrack struct {
	RatingKey        string `json:"ratingKey"`
	Title            string `json:"title"`
	GrandparentTitle string `json:"grandparentTitle"`
	ParentTitle      string `json:"parentTitle"`
}

func (t plexTrack) candidate() resolver.Candidate {
	return resolver.Candidate{
		ID:     t.RatingKey,
		Title:  t.Title,
		Artist: t.GrandparentTitle,
		Album:  t.ParentTitle,
	}
}

func (p *PlexCatalog) getJSON(ctx context.Context, path string, out any) error {
	req := httpx.Request{
		Method: http.MethodGet,
		URL:    p.baseURL + path,
		Header: http.Header{"Accept": []string{"application/json"}},
	}
	return decodeJSON(ctx, p.exec, req, out)
}
