package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/cadence/internal/models"
	"github.com/desertthunder/cadence/internal/shared"
)

func TestLoadJob(t *testing.T) {
	t.Run("reads job document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "job.json")
		doc := `{"playlists": [{"name": "Mix", "tracks": [{"title": "Song", "artist": "Artist"}]}]}`
		if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
			t.Fatal(err)
		}

		job, err := LoadJob(path)
		if err != nil {
			t.Fatalf("failed to load job: %v", err)
		}
		if len(job.Playlists) != 1 {
			t.Fatalf("expected 1 playlist, got %d", len(job.Playlists))
		}
		if job.Playlists[0].Name != "Mix" {
			t.Errorf("expected playlist Mix, got %s", job.Playlists[0].Name)
		}
		if len(job.Playlists[0].Tracks) != 1 {
			t.Errorf("expected 1 track, got %d", len(job.Playlists[0].Tracks))
		}
	})

	t.Run("partial checkpoint takes precedence", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "job.json")
		if err := os.WriteFile(path, []byte(`{"playlists": [{"name": "Original", "tracks": []}]}`), 0644); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path+".part", []byte(`{"playlists": [{"name": "Resumed", "tracks": []}]}`), 0644); err != nil {
			t.Fatal(err)
		}

		job, err := LoadJob(path)
		if err != nil {
			t.Fatalf("failed to load job: %v", err)
		}
		if job.Playlists[0].Name != "Resumed" {
			t.Errorf("expected partial checkpoint to win, got %s", job.Playlists[0].Name)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadJob(filepath.Join(t.TempDir(), "absent.json"))
		if !errors.Is(err, shared.ErrCheckpointCorrupt) {
			t.Errorf("expected ErrCheckpointCorrupt, got %v", err)
		}
	})

	t.Run("unparseable document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "job.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := LoadJob(path)
		if !errors.Is(err, shared.ErrCheckpointCorrupt) {
			t.Errorf("expected ErrCheckpointCorrupt, got %v", err)
		}
	})

	t.Run("preserves provenance values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "job.json")
		doc := `{"playlists": [{"name": "Mix", "tracks": [
			{"title": "A", "artist": "X", "refs": {"spotify": "1"}, "provenance": {"spotify": "reused"}},
			{"title": "B", "artist": "X", "refs": {"spotify": "2"}, "provenance": {"spotify": 3}},
			{"title": "C", "artist": "X", "provenance": {"spotify": null}}
		]}]}`
		if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
			t.Fatal(err)
		}

		job, err := LoadJob(path)
		if err != nil {
			t.Fatalf("failed to load job: %v", err)
		}

		tracks := job.Playlists[0].Tracks
		if !tracks[0].Provenance[models.CatalogSpotify].Reused {
			t.Error("expected first track to be reused")
		}
		if prov := tracks[1].Provenance[models.CatalogSpotify]; !prov.Resolved || prov.Level != 3 {
			t.Errorf("expected level 3, got %v", prov)
		}
		if prov := tracks[2].Provenance[models.CatalogSpotify]; prov.Resolved {
			t.Errorf("expected unresolved, got %v", prov)
		}
	})
}

func TestCheckpointer(t *testing.T) {
	job := &Job{Playlists: []models.Playlist{{Name: "Mix"}}}

	t.Run("writes partial file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "job.json")
		cp := NewCheckpointer(path)

		if err := cp.Write(job); err != nil {
			t.Fatalf("failed to write checkpoint: %v", err)
		}
		if _, err := os.Stat(path + ".part"); err != nil {
			t.Errorf("expected partial file: %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("expected no permanent file before finalize")
		}
	})

	t.Run("finalize promotes partial file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "job.json")
		cp := NewCheckpointer(path)

		if err := cp.Write(job); err != nil {
			t.Fatalf("failed to write checkpoint: %v", err)
		}
		if err := cp.Finalize(); err != nil {
			t.Fatalf("failed to finalize: %v", err)
		}

		if _, err := os.Stat(path + ".part"); !os.IsNotExist(err) {
			t.Error("expected partial file to be renamed away")
		}
		loaded, err := LoadJob(path)
		if err != nil {
			t.Fatalf("failed to reload finalized checkpoint: %v", err)
		}
		if loaded.Playlists[0].Name != "Mix" {
			t.Errorf("unexpected playlist name %s", loaded.Playlists[0].Name)
		}
	})

	t.Run("torn temp write leaves prior checkpoint loadable", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "job.json")
		cp := NewCheckpointer(path)

		if err := cp.Write(job); err != nil {
			t.Fatalf("failed to write checkpoint: %v", err)
		}
		if err := cp.Finalize(); err != nil {
			t.Fatalf("failed to finalize: %v", err)
		}

		// A crash between temp write and rename leaves a half-written temp
		// file behind; only path and path.part are ever read.
		torn := path + ".part.tmp"
		if err := os.WriteFile(torn, []byte(`{"playlists": [{"na`), 0644); err != nil {
			t.Fatal(err)
		}

		loaded, err := LoadJob(path)
		if err != nil {
			t.Fatalf("prior checkpoint should survive a torn write: %v", err)
		}
		if loaded.Playlists[0].Name != "Mix" {
			t.Errorf("unexpected playlist name %s", loaded.Playlists[0].Name)
		}

		// The next write replaces the debris and resumes from a valid state.
		resumed := &Job{Playlists: []models.Playlist{{Name: "Resumed"}}}
		if err := cp.Write(resumed); err != nil {
			t.Fatalf("failed to write over torn temp file: %v", err)
		}
		loaded, err = LoadJob(path)
		if err != nil {
			t.Fatalf("failed to reload after recovery write: %v", err)
		}
		if loaded.Playlists[0].Name != "Resumed" {
			t.Errorf("expected recovery write to win, got %s", loaded.Playlists[0].Name)
		}
	})

	t.Run("finalize without writes is a no-op", func(t *testing.T) {
		cp := NewCheckpointer(filepath.Join(t.TempDir(), "job.json"))
		if err := cp.Finalize(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}
