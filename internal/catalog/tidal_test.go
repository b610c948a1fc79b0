package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/cadence/internal/shared"
)

func newTidalTestCatalog(t *testing.T, mux *http.ServeMux) *TidalCatalog {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewTidalCatalog(testExecutor(), "US", shared.NewLogger(io.Discard))
	c.SetBaseURL(srv.URL)
	return c
}

func TestTidalCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("identity", func(t *testing.T) {
		c := NewTidalCatalog(testExecutor(), "", nil)
		if c.Name() != "tidal" {
			t.Errorf("Name = %s", c.Name())
		}
		if c.BatchSize() != 20 {
			t.Errorf("BatchSize = %d", c.BatchSize())
		}
		if c.countryCode != "US" {
			t.Errorf("country should default to US, got %s", c.countryCode)
		}
	})

	t.Run("playlists follow cursor links", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/playlists/me", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page[cursor]") == "" {
				json.NewEncoder(w).Encode(map[string]any{
					"data": []map[string]any{
						{"id": "p1", "type": "playlists", "attributes": map[string]string{"name": "First"}},
					},
					"links": map[string]string{"next": "/playlists/me?page[cursor]=abc"},
				})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{
					{"id": "p2", "type": "playlists", "attributes": map[string]string{"name": "Second"}},
				},
			})
		})

		c := newTidalTestCatalog(t, mux)

		playlists, err := c.Playlists(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(playlists) != 2 || playlists[0].Name != "First" || playlists[1].Name != "Second" {
			t.Errorf("unexpected playlists %+v", playlists)
		}
	})

	t.Run("create playlist", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/playlists", func(w http.ResponseWriter, r *http.Request) {
			if ct := r.Header.Get("Content-Type"); ct != tidalContentType {
				t.Errorf("content type = %q", ct)
			}
			var body struct {
				Data struct {
					Type       string `json:"type"`
					Attributes struct {
						Name       string `json:"name"`
						AccessType string `json:"accessType"`
					} `json:"attributes"`
				} `json:"data"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			if body.Data.Attributes.Name != "Mix" || body.Data.Attributes.AccessType != "UNLISTED" {
				t.Errorf("unexpected body %+v", body)
			}
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]string{"id": "new-pl", "type": "playlists"},
			})
		})

		c := newTidalTestCatalog(t, mux)

		id, err := c.CreatePlaylist(ctx, "Mix")
		if err != nil {
			t.Fatal(err)
		}
		if id != "new-pl" {
			t.Errorf("got id %q", id)
		}
	})

	t.Run("add tracks caps at twenty", func(t *testing.T) {
		c := NewTidalCatalog(testExecutor(), "US", nil)

		batch := make([]string, 21)
		for i := range batch {
			batch[i] = "t"
		}
		if err := c.AddTracks(ctx, "pl", batch); err == nil {
			t.Error("expected error for oversized batch")
		}
	})

	t.Run("add tracks posts relationship items", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/playlists/pl/relationships/items", func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Data []map[string]string `json:"data"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			if len(body.Data) != 2 || body.Data[0]["id"] != "a" || body.Data[0]["type"] != "tracks" {
				t.Errorf("unexpected body %+v", body.Data)
			}
			w.WriteHeader(http.StatusCreated)
		})

		c := newTidalTestCatalog(t, mux)

		if err := c.AddTracks(ctx, "pl", []string{"a", "b"}); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("playlist tracks", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/playlists/pl/relationships/items", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]string{
					{"id": "t1", "type": "tracks"},
					{"id": "t2", "type": "tracks"},
				},
			})
		})

		c := newTidalTestCatalog(t, mux)

		ids, err := c.PlaylistTracks(ctx, "pl")
		if err != nil {
			t.Fatal(err)
		}
		if len(ids) != 2 || ids[0] != "t1" {
			t.Errorf("got %v", ids)
		}
	})

	t.Run("search joins included track attributes", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/searchResults/Band%20Song/relationships/tracks", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("countryCode") != "US" {
				t.Errorf("missing country code")
			}
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]string{{"id": "t7", "type": "tracks"}},
				"included": []map[string]any{
					{"id": "t7", "type": "tracks", "attributes": map[string]string{"title": "Song"}},
				},
			})
		})

		c := newTidalTestCatalog(t, mux)

		candidates, err := c.SearchTrack(ctx, "Band Song")
		if err != nil {
			t.Fatal(err)
		}
		if len(candidates) != 1 || candidates[0].ID != "t7" || candidates[0].Title != "Song" {
			t.Errorf("unexpected candidates %+v", candidates)
		}
	})
}
