package catalog

import (
	"context"
	"encoding/json"
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

// TIDAL API constants. The v2 API is JSON:API shaped: resources under "data",
// relationship writes capped at twenty items per request.
const (
	tidalBaseURL   = "https://openapi.tidal.com/v2"
	tidalBatchSize = 20
	tidalPageSize  = 100

	// TidalAuthURL and TidalTokenURL are the OAuth2 endpoints handed to the
	// session manager.
	TidalAuthURL  = "https://login.tidal.com/authorize"
	TidalTokenURL = "https://auth.tidal.com/v1/oauth2/token"
)

// TidalScopes are the scopes an interactive session requests.
var TidalScopes = []string{"playlists.read", "playlists.write"}

const tidalContentType = "application/vnd.api+json"

// TidalCatalog talks to the TIDAL v2 API.
type TidalCatalog struct {
	baseURL     string
	countryCode string
	exec        *httpx.Executor
	logger      *log.Logger
}

// NewTidalCatalog creates a TIDAL client over the given executor.
func NewTidalCatalog(exec *httpx.Executor, countryCode string, logger *log.Logger) *TidalCatalog {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if countryCode == "" {
		countryCode = "US"
	}
	return &TidalCatalog{
		baseURL:     tidalBaseURL,
		countryCode: countryCode,
		exec:        exec,
		logger:      logger.With("catalog", models.CatalogTidal),
	}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (t *TidalCatalog) SetBaseURL(u string) {
	t.baseURL = strings.TrimSuffix(u, "/")
}

// Name implements Catalog.
func (t *TidalCatalog) Name() models.Catalog {
	return models.CatalogTidal
}

// BatchSize implements Catalog.
func (t *TidalCatalog) BatchSize() int {
	return tidalBatchSize
}

// jsonAPIDocument is the common envelope for v2 responses.
type jsonAPIDocument struct {
	Data  json.RawMessage `json:"data"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
	Included []jsonAPIResource `json:"included"`
}

type jsonAPIResource struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes struct {
		Name  string `json:"name"`
		Title string `json:"title"`
	} `json:"attributes"`
}

// Playlists lists the user's playlists, following cursor pagination.
func (t *TidalCatalog) Playlists(ctx context.Context) ([]PlaylistInfo, error) {
	var playlists []PlaylistInfo

	next := fmt.Sprintf("/playlists/me?countryCode=%s&page[limit]=%d", t.countryCode, tidalPageSize)
	for next != "" {
		var doc jsonAPIDocument
		if err := t.getJSON(ctx, next, &doc); err != nil {
			return nil, fmt.Errorf("failed to list playlists: %w", err)
		}

		var items []jsonAPIResource
		if err := json.Unmarshal(doc.Data, &items); err != nil {
			return nil, fmt.Errorf("failed to decode playlist page: %w", err)
		}
		for _, item := range items {
			playlists = append(playlists, PlaylistInfo{ID: item.ID, Name: item.Attributes.Name})
		}
		next = doc.Links.Next
	}

	return playlists, nil
}

// CreatePlaylist creates an unlisted playlist.
func (t *TidalCatalog) CreatePlaylist(ctx context.Context, name string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"data": map[string]any{
			"type": "playlists",
			"attributes": map[string]any{
				"name":       name,
				"accessType": "UNLISTED",
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode playlist: %w", err)
	}

	var doc jsonAPIDocument
	endpoint := fmt.Sprintf("/playlists?countryCode=%s", t.countryCode)
	if err := t.postJSON(ctx, endpoint, body, &doc); err != nil {
		return "", fmt.Errorf("failed to create playlist %q: %w", name, err)
	}

	var created jsonAPIResource
	if err := json.Unmarshal(doc.Data, &created); err != nil {
		return "", fmt.Errorf("failed to decode created playlist: %w", err)
	}

	t.logger.Info("created playlist", "name", name, "id", created.ID)
	return created.ID, nil
}

// DeletePlaylist removes a playlist.
func (t *TidalCatalog) DeletePlaylist(ctx context.Context, id string) error {
	resp, err := t.exec.Do(ctx, httpx.Request{
		Method: http.MethodDelete,
		URL:    t.baseURL + "/playlists/" + url.PathEscape(id),
	})
	if err != nil {
		return fmt.Errorf("failed to delete playlist %s: %w", id, err)
	}
	resp.Body.Close()
	return nil
}

// PlaylistTracks returns the track identifiers in a playlist.
func (t *TidalCatalog) PlaylistTracks(ctx context.Context, playlistID string) ([]string, error) {
	var ids []string

	next := fmt.Sprintf("/playlists/%s/relationships/items?page[limit]=%d", url.PathEscape(playlistID), tidalPageSize)
	for next != "" {
		var doc jsonAPIDocument
		if err := t.getJSON(ctx, next, &doc); err != nil {
			return nil, fmt.Errorf("failed to fetch playlist items: %w", err)
		}

		var items []jsonAPIResource
		if err := json.Unmarshal(doc.Data, &items); err != nil {
			return nil, fmt.Errorf("failed to decode playlist items: %w", err)
		}
		for _, item := range items {
			ids = append(ids, item.ID)
		}
		next = doc.Links.Next
	}

	return ids, nil
}

// AddTracks appends one batch of tracks to a playlist.
func (t *TidalCatalog) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}
	if len(trackIDs) > tidalBatchSize {
		return fmt.Errorf("%w: batch of %d exceeds limit %d", shared.ErrInvalidInput, len(trackIDs), tidalBatchSize)
	}

	data := make([]map[string]string, len(trackIDs))
	for i, id := range trackIDs {
		data[i] = map[string]string{"id": id, "type": "tracks"}
	}
	body, err := json.Marshal(map[string]any{"data": data})
	if err != nil {
		return fmt.Errorf("failed to encode track batch: %w", err)
	}

	endpoint := fmt.Sprintf("/playlists/%s/relationships/items?countryCode=%s", url.PathEscape(playlistID), t.countryCode)
	if err := t.postJSON(ctx, endpoint, body, nil); err != nil {
		return fmt.Errorf("failed to add tracks to playlist %s: %w", playlistID, err)
	}
	return nil
}

// SearchTrack implements resolver.Searcher.
func (t *TidalCatalog) SearchTrack(ctx context.Context, query string) ([]resolver.Candidate, error) {
	endpoint := fmt.Sprintf("/searchResults/%s/relationships/tracks?countryCode=%s&include=tracks",
		url.PathEscape(query), t.countryCode)

	var doc jsonAPIDocument
	if err := t.getJSON(ctx, endpoint, &doc); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var hits []jsonAPIResource
	if err := json.Unmarshal(doc.Data, &hits); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}

	titles := make(map[string]string, len(doc.Included))
	for _, inc := range doc.Included {
		if inc.Type == "tracks" {
			titles[inc.ID] = inc.Attributes.Title
		}
	}

	candidates := make([]resolver.Candidate, 0, len(hits))
	for _, hit := range hits {
		candidates = append(candidates, resolver.Candidate{ID: hit.ID, Title: titles[hit.ID]})
	}
	return candidates, nil
}

func (t *TidalCatalog) getJSON(ctx context.Context, path string, out any) error {
	req := httpx.Request{
		Method: http.MethodGet,
		URL:    t.resolveURL(path),
		Header: http.Header{"Accept": []string{tidalContentType}},
	}
	return decodeJSON(ctx, t.exec, req, out)
}

func (t *TidalCatalog) postJSON(ctx context.Context, path string, body []byte, out any) error {
	req := httpx.Request{
		Method: http.MethodPost,
		URL:    t.resolveURL(path),
		Header: http.Header{
			"Accept":       []string{tidalContentType},
			"Content-Type": []string{tidalContentType},
		},
		Body: body,
	}
	return decodeJSON(ctx, t.exec, req, out)
}

// resolveURL joins a path or pagination link onto the base URL. Pagination
// links in v2 responses are paths relative to the API root.
func (t *TidalCatalog) resolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return t.baseURL + path
}
