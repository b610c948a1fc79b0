package library

import (
	"os"
	"path/filepath"
	"testing"
)

func writePlaylist(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadPlaylist(t *testing.T) {
	t.Run("parses tracks with metadata", func(t *testing.T) {
		path := writePlaylist(t, t.TempDir(), "Road Trip.m3u8", `#EXTM3U
#EXTINF:214,Daft Punk - Harder Better Faster Stronger
Music/Daft Punk/Discovery/04 Harder Better Faster Stronger.flac
#EXTINF:199,Justice - D.A.N.C.E.
Music/Justice/Cross/03 D.A.N.C.E..mp3
`)

		playlist, err := ReadPlaylist(path)
		if err != nil {
			t.Fatalf("failed to read playlist: %v", err)
		}

		if playlist.Name != "Road Trip" {
			t.Errorf("expected name Road Trip, got %s", playlist.Name)
		}
		if len(playlist.Tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(playlist.Tracks))
		}

		first := playlist.Tracks[0]
		if first.Artist != "Daft Punk" {
			t.Errorf("expected artist Daft Punk, got %q", first.Artist)
		}
		if first.Title != "Harder Better Faster Stronger" {
			t.Errorf("unexpected title %q", first.Title)
		}
		if first.Path != "Music/Daft Punk/Discovery/04 Harder Better Faster Stronger.flac" {
			t.Errorf("unexpected path %q", first.Path)
		}
	})

	t.Run("falls back to file name without metadata", func(t *testing.T) {
		path := writePlaylist(t, t.TempDir(), "bare.m3u8", `#EXTM3U
Music/Singles/Aphex Twin - Windowlicker.mp3
`)

		playlist, err := ReadPlaylist(path)
		if err != nil {
			t.Fatalf("failed to read playlist: %v", err)
		}
		if len(playlist.Tracks) != 1 {
			t.Fatalf("expected 1 track, got %d", len(playlist.Tracks))
		}

		track := playlist.Tracks[0]
		if track.Artist != "Aphex Twin" {
			t.Errorf("expected artist from file name, got %q", track.Artist)
		}
		if track.Title != "Windowlicker" {
			t.Errorf("unexpected title %q", track.Title)
		}
	})

	t.Run("title without artist credit", func(t *testing.T) {
		path := writePlaylist(t, t.TempDir(), "odd.m3u8", `#EXTM3U
#EXTINF:120,Intermission
Music/Intermission.ogg
`)

		playlist, err := ReadPlaylist(path)
		if err != nil {
			t.Fatalf("failed to read playlist: %v", err)
		}

		track := playlist.Tracks[0]
		if track.Artist != "" {
			t.Errorf("expected no artist, got %q", track.Artist)
		}
		if track.Title != "Intermission" {
			t.Errorf("unexpected title %q", track.Title)
		}
	})

	t.Run("skips blank lines and comments", func(t *testing.T) {
		path := writePlaylist(t, t.TempDir(), "messy.m3u8", `#EXTM3U

# generated 2024-01-01
#EXTINF:100,A - B

Music/a.mp3
`)

		playlist, err := ReadPlaylist(path)
		if err != nil {
			t.Fatalf("failed to read playlist: %v", err)
		}
		if len(playlist.Tracks) != 1 {
			t.Errorf("expected 1 track, got %d", len(playlist.Tracks))
		}
	})

	t.Run("metadata does not leak to the next entry", func(t *testing.T) {
		path := writePlaylist(t, t.TempDir(), "leak.m3u8", `#EXTM3U
#EXTINF:100,X - Y
Music/xy.mp3
Music/Other Artist - Other Song.mp3
`)

		playlist, err := ReadPlaylist(path)
		if err != nil {
			t.Fatalf("failed to read playlist: %v", err)
		}
		if len(playlist.Tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(playlist.Tracks))
		}
		if playlist.Tracks[1].Title != "Other Song" {
			t.Errorf("expected fallback title, got %q", playlist.Tracks[1].Title)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := ReadPlaylist(filepath.Join(t.TempDir(), "absent.m3u8")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestReadDir(t *testing.T) {
	t.Run("reads every playlist file", func(t *testing.T) {
		dir := t.TempDir()
		writePlaylist(t, dir, "a.m3u8", "#EXTM3U\nMusic/one.mp3\n")
		writePlaylist(t, dir, "B.M3U8", "#EXTM3U\nMusic/two.mp3\n")
		writePlaylist(t, dir, "notes.txt", "not a playlist")

		playlists, err := ReadDir(dir)
		if err != nil {
			t.Fatalf("failed to read dir: %v", err)
		}
		if len(playlists) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(playlists))
		}
		if playlists[0].Name != "a" || playlists[1].Name != "B" {
			t.Errorf("unexpected playlist order %s, %s", playlists[0].Name, playlists[1].Name)
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		playlists, err := ReadDir(t.TempDir())
		if err != nil {
			t.Fatalf("failed to read empty dir: %v", err)
		}
		if len(playlists) != 0 {
			t.Errorf("expected no playlists, got %d", len(playlists))
		}
	})
}
