package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/cadence/internal/httpx"
	"github.com/desertthunder/cadence/internal/models"
	"github.com/desertthunder/cadence/internal/shared"
)

func plexSectionsHandler(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]any{
		"MediaContainer": map[string]any{
			"Directory": []map[string]string{
				{"key": "1", "title": "Movies", "type": "movie"},
				{"key": "5", "title": "Music", "type": "artist"},
			},
		},
	})
}

func newPlexTestCatalog(t *testing.T, mux *http.ServeMux) *PlexCatalog {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return NewPlexCatalog(testExecutor(), srv.URL, "Music", shared.NewLogger(io.Discard))
}

func TestPlexAuth(t *testing.T) {
	t.Run("stamps token header", func(t *testing.T) {
		auth := &PlexAuth{Token: "secret"}
		req := httptest.NewRequest(http.MethodGet, "http://plex.local", nil)

		if err := auth.Authorize(context.Background(), req); err != nil {
			t.Fatal(err)
		}
		if got := req.Header.Get("X-Plex-Token"); got != "secret" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		auth := &PlexAuth{}
		req := httptest.NewRequest(http.MethodGet, "http://plex.local", nil)

		if err := auth.Authorize(context.Background(), req); !errors.Is(err, shared.ErrAuthUnavailable) {
			t.Errorf("expected ErrAuthUnavailable, got %v", err)
		}
	})
}

func TestPlexCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("section lookup finds the music library", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/library/sections", plexSectionsHandler)

		c := newPlexTestCatalog(t, mux)

		id, err := c.SectionID(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if id != "5" {
			t.Errorf("got section %q", id)
		}
	})

	t.Run("unknown library errors", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/library/sections", plexSectionsHandler)
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)

		c := NewPlexCatalog(testExecutor(), srv.URL, "Podcasts", shared.NewLogger(io.Discard))
		if _, err := c.SectionID(ctx); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("library index builds a resolver index", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/library/sections", plexSectionsHandler)
		mux.HandleFunc("/library/sections/5/all", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("type") != "10" {
				t.Errorf("expected track type filter, got %q", r.URL.Query().Get("type"))
			}
			json.NewEncoder(w).Encode(map[string]any{
				"MediaContainer": map[string]any{
					"Metadata": []map[string]string{
						{"ratingKey": "100", "title": "Song", "grandparentTitle": "Band", "parentTitle": "Album"},
					},
				},
			})
		})

		c := newPlexTestCatalog(t, mux)

		index, err := c.LibraryIndex(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if index.Len() != 1 {
			t.Fatalf("index has %d entries", index.Len())
		}

		got, ok := index.Resolve(models.Track{Title: "01 - Song (Live)", Artist: "Band"})
		if !ok || got.ID != "100" {
			t.Errorf("resolve = (%+v, %v)", got, ok)
		}
	})

	t.Run("playlist tracks carry plex refs", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/playlists/9/items", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"MediaContainer": map[string]any{
					"Metadata": []map[string]string{
						{"ratingKey": "100", "title": "Song", "grandparentTitle": "Band", "parentTitle": "Album"},
					},
				},
			})
		})

		c := newPlexTestCatalog(t, mux)

		tracks, err := c.PlaylistTracks(ctx, "9")
		if err != nil {
			t.Fatal(err)
		}
		if len(tracks) != 1 {
			t.Fatalf("got %d tracks", len(tracks))
		}
		if tracks[0].Artist != "Band" || tracks[0].Album != "Album" {
			t.Errorf("unexpected track %+v", tracks[0])
		}
		if id, ok := tracks[0].Ref(models.CatalogPlex); !ok || id != "100" {
			t.Errorf("ref = (%q, %v)", id, ok)
		}
	})

	t.Run("upload playlist targets the music section", func(t *testing.T) {
		var uploaded bool
		mux := http.NewServeMux()
		mux.HandleFunc("/library/sections", plexSectionsHandler)
		mux.HandleFunc("/playlists/upload", func(w http.ResponseWriter, r *http.Request) {
			uploaded = true
			if r.URL.Query().Get("sectionID") != "5" {
				t.Errorf("sectionID = %q", r.URL.Query().Get("sectionID"))
			}
			if r.URL.Query().Get("path") != "/music/lists/mix.m3u8" {
				t.Errorf("path = %q", r.URL.Query().Get("path"))
			}
		})

		c := newPlexTestCatalog(t, mux)

		if err := c.UploadPlaylist(ctx, "/music/lists/mix.m3u8"); err != nil {
			t.Fatal(err)
		}
		if !uploaded {
			t.Error("upload endpoint was not called")
		}
	})

	t.Run("token auth is sent with requests", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/library/sections", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-Plex-Token") != "tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			plexSectionsHandler(w, r)
		})
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)

		exec := httpx.New(httpx.DefaultPolicy(), &PlexAuth{Token: "tok"}, shared.NewLogger(io.Discard))
		c := NewPlexCatalog(exec, srv.URL, "Music", shared.NewLogger(io.Discard))

		if _, err := c.SectionID(ctx); err != nil {
			t.Fatal(err)
		}
	})
}
