package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/cadence/internal/httpx"
	"github.com/desertthunder/cadence/internal/models"
	"github.com/desertthunder/cadence/internal/resolver"
	"github.com/desertthunder/cadence/internal/shared"
)

// Spotify API constants. The batch size is the documented cap on a single
// playlist-addition request.
const (
	spotifyBaseURL   = "https://api.spotify.com/v1"
	spotifyBatchSize = 100
	spotifyPageSize  = 50

	// SpotifyAuthURL and SpotifyTokenURL are the OAuth2 endpoints handed to
	// the session manager.
	SpotifyAuthURL  = "https://accounts.spotify.com/authorize"
	SpotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// SpotifyScopes are the scopes an interactive session requests.
var SpotifyScopes = []string{"playlist-read-private", "playlist-modify-private", "playlist-modify-public"}

// SpotifyCatalog talks to the Spotify Web API.
type SpotifyCatalog struct {
	baseURL string
	exec    *httpx.Executor
	logger  *log.Logger

	mu     sync.Mutex
	userID string
}

// NewSpotifyCatalog creates a Spotify client over the given executor.
func NewSpotifyCatalog(exec *httpx.Executor, logger *log.Logger) *SpotifyCatalog {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SpotifyCatalog{
		baseURL: spotifyBaseURL,
		exec:    exec,
		logger:  logger.With("catalog", models.CatalogSpotify),
	}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (s *SpotifyCatalog) SetBaseURL(u string) {
	s.baseURL = strings.TrimSuffix(u, "/")
}

// Name implements Catalog.
func (s *SpotifyCatalog) Name() models.Catalog {
	return models.CatalogSpotify
}

// BatchSize implements Catalog.
func (s *SpotifyCatalog) BatchSize() int {
	return spotifyBatchSize
}

// Playlists lists the current user's playlists, following pagination.
func (s *SpotifyCatalog) Playlists(ctx context.Context) ([]PlaylistInfo, error) {
	var playlists []PlaylistInfo

	next := fmt.Sprintf("%s/me/playlists?limit=%d", s.baseURL, spotifyPageSize)
	for next != "" {
		var page struct {
			Items []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"items"`
			Next string `json:"next"`
		}
		if err := s.getJSON(ctx, next, &page); err != nil {
			return nil, fmt.Errorf("failed to list playlists: %w", err)
		}

		for _, item := range page.Items {
			playlists = append(playlists, PlaylistInfo{ID: item.ID, Name: item.Name})
		}
		next = s.rebase(page.Next)
	}

	return playlists, nil
}

// CreatePlaylist creates a private playlist for the current user.
func (s *SpotifyCatalog) CreatePlaylist(ctx context.Context, name string) (string, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(map[string]any{"name": name, "public": false})
	if err != nil {
		return "", fmt.Errorf("failed to encode playlist: %w", err)
	}

	var created struct {
		ID string `json:"id"`
	}
	endpoint := fmt.Sprintf("%s/users/%s/playlists", s.baseURL, url.PathEscape(userID))
	if err := s.postJSON(ctx, endpoint, body, &created); err != nil {
		return "", fmt.Errorf("failed to create playlist %q: %w", name, err)
	}

	s.logger.Info("created playlist", "name", name, "id", created.ID)
	return created.ID, nil
}

// DeletePlaylist unfollows a playlist, which removes it from the user's library.
func (s *SpotifyCatalog) DeletePlaylist(ctx context.Context, id string) error {
	endpoint := fmt.Sprintf("%s/playlists/%s/followers", s.baseURL, url.PathEscape(id))
	resp, err := s.exec.Do(ctx, httpx.Request{Method: http.MethodDelete, URL: endpoint})
	if err != nil {
		return fmt.Errorf("failed to delete playlist %s: %w", id, err)
	}
	resp.Body.Close()
	return nil
}

// PlaylistTracks returns the track identifiers currently in a playlist.
func (s *SpotifyCatalog) PlaylistTracks(ctx context.Context, playlistID string) ([]string, error) {
	var ids []string

	next := fmt.Sprintf("%s/playlists/%s/tracks?limit=100&fields=items(track(id)),next", s.baseURL, url.PathEscape(playlistID))
	for next != "" {
		var page struct {
			Items []struct {
				Track struct {
					ID string `json:"id"`
				} `json:"track"`
			} `json:"items"`
			Next string `json:"next"`
		}
		if err := s.getJSON(ctx, next, &page); err != nil {
			return nil, fmt.Errorf("failed to fetch playlist tracks: %w", err)
		}

		for _, item := range page.Items {
			if item.Track.ID != "" {
				ids = append(ids, item.Track.ID)
			}
		}
		next = s.rebase(page.Next)
	}

	return ids, nil
}

// AddTracks appends one batch of tracks to a playlist.
func (s *SpotifyCatalog) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}
	if len(trackIDs) > spotifyBatchSize {
		return fmt.Errorf("%w: batch of %d exceeds limit %d", shared.ErrInvalidInput, len(trackIDs), spotifyBatchSize)
	}

	uris := make([]string, len(trackIDs))
	for i, id := range trackIDs {
		uris[i] = "spotify:track:" + id
	}

	body, err := json.Marshal(map[string]any{"uris": uris})
	if err != nil {
		return fmt.Errorf("failed to encode track batch: %w", err)
	}

	endpoint := fmt.Sprintf("%s/playlists/%s/tracks", s.baseURL, url.PathEscape(playlistID))
	if err := s.postJSON(ctx, endpoint, body, nil); err != nil {
		return fmt.Errorf("failed to add tracks to playlist %s: %w", playlistID, err)
	}
	return nil
}

// SearchTrack implements resolver.Searcher.
func (s *SpotifyCatalog) SearchTrack(ctx context.Context, query string) ([]resolver.Candidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", "10")

	var result struct {
		Tracks struct {
			Items []struct {
				ID      string `json:"id"`
				Name    string `json:"name"`
				Artists []struct {
					Name string `json:"name"`
				} `json:"artists"`
				Album struct {
					Name string `json:"name"`
				} `json:"album"`
			} `json:"items"`
		} `json:"tracks"`
	}
	if err := s.getJSON(ctx, s.baseURL+"/search?"+params.Encode(), &result); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	candidates := make([]resolver.Candidate, 0, len(result.Tracks.Items))
	for _, item := range result.Tracks.Items {
		c := resolver.Candidate{ID: item.ID, Title: item.Name, Album: item.Album.Name}
		if len(item.Artists) > 0 {
			c.Artist = item.Artists[0].Name
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// currentUser fetches and caches the authenticated user's id.
func (s *SpotifyCatalog) currentUser(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID != "" {
		return s.userID, nil
	}

	var me struct {
		ID string `json:"id"`
	}
	if err := s.getJSON(ctx, s.baseURL+"/me", &me); err != nil {
		return "", fmt.Errorf("failed to fetch current user: %w", err)
	}

	s.userID = me.ID
	return me.ID, nil
}

// rebase rewrites a pagination URL onto the configured base URL, so an
// overridden base sees follow-up page requests too.
func (s *SpotifyCatalog) rebase(next string) string {
	if rest, ok := strings.CutPrefix(next, spotifyBaseURL); ok {
		return s.baseURL + rest
	}
	return next
}

func (s *SpotifyCatalog) getJSON(ctx context.Context, endpoint string, out any) error {
	return decodeJSON(ctx, s.exec, httpx.Request{Method: http.MethodGet, URL: endpoint}, out)
}

func (s *SpotifyCatalog) postJSON(ctx context.Context, endpoint string, body []byte, out any) error {
	req := httpx.Request{
		Method: http.MethodPost,
		URL:    endpoint,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   body,
	}
	return decodeJSON(ctx, s.exec, req, out)
}

// decodeJSON executes a request and decodes the response body into out when
// out is non-nil.
func decodeJSON(ctx context.Context, exec *httpx.Executor, req httpx.Request, out any) error {
	resp, err := exec.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
