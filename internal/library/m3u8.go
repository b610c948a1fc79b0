// Package library reads m3u8 playlist files into track descriptors.
//
// The files are the output of a local library scan: an #EXTM3U header,
// #EXTINF lines carrying a duration and a display title, and one media path
// per track. Scanning the filesystem itself happens outside this program;
// this package only consumes the result.
package library

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/cadence/internal/models"
	"github.com/desertthunder/cadence/internal/shared"
)

const playlistExt = ".m3u8"

// ReadPlaylist parses one m3u8 file. The playlist name is the file name
// without its extension. A track's display title comes from the preceding
// #EXTINF line; entries without one fall back to the media file's name.
func ReadPlaylist(path string) (models.Playlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("opening playlist: %w", err)
	}
	defer f.Close()

	playlist := models.Playlist{
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}

	var pending string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#EXTINF:"):
			if _, display, ok := strings.Cut(line, ","); ok {
				pending = strings.TrimSpace(display)
			}
		case strings.HasPrefix(line, "#"):
			continue
		default:
			playlist.Tracks = append(playlist.Tracks, parseTrack(pending, line))
			pending = ""
		}
	}
	if err := scanner.Err(); err != nil {
		return models.Playlist{}, fmt.Errorf("reading playlist: %w", err)
	}

	return playlist, nil
}

// ReadDir reads every m3u8 file in a directory, in name order. Files that
// fail to parse abort the read; an empty directory is not an error.
func ReadDir(dir string) ([]models.Playlist, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading playlist folder: %w", err)
	}

	var playlists []models.Playlist
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), playlistExt) {
			continue
		}
		playlist, err := ReadPlaylist(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	return playlists, nil
}

// parseTrack builds a descriptor from an EXTINF display title and media path.
func parseTrack(display, path string) models.Track {
	if display == "" {
		display = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	track := models.Track{Title: display, Path: path}
	if artist, title, ok := shared.SplitArtistTitle(display); ok {
		track.Artist = artist
		track.Title = title
	}
	return track
}
