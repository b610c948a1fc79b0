// package formatter renders playlists and sync results to exportable formats (CSV, Markdown, plain text, m3u8)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"sort"

	"github.com/desertthunder/cadence/internal/engine"
	"github.com/desertthunder/cadence/internal/models"
)

// ExportToCSV converts a playlist to CSV with columns: Title, Artist, Album, Ref, Provenance.
// Ref and Provenance reflect the given catalog's resolution state.
func ExportToCSV(playlist *models.Playlist, catalog models.Catalog) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Title", "Artist", "Album", "Ref", "Provenance"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range playlist.Tracks {
		ref, _ := track.Ref(catalog)
		record := []string{
			track.Title,
			track.Artist,
			track.Album,
			ref,
			track.Provenance[catalog].String(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a playlist to a Markdown track listing.
func ExportToMarkdown(playlist *models.Playlist, catalog models.Catalog) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", playlist.Name))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(playlist.Tracks)))

	buf.WriteString("## Tracks\n\n")
	for i, track := range playlist.Tracks {
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n", i+1, track.Artist, track.Title, albumPart, track.Provenance[catalog]))
	}

	return buf.Bytes()
}

// ExportToText converts a playlist to a plain text track listing.
func ExportToText(playlist *models.Playlist) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", playlist.Name))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(playlist.Tracks)))

	for i, track := range playlist.Tracks {
		if track.Artist == "" {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, track.Title))
			continue
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Title))
	}

	return buf.Bytes()
}

// ExportToM3U8 renders a playlist back to m3u8 form. Tracks keep their media
// path when one is known; tracks pulled from a remote catalog fall back to a
// comment-only entry so the file stays parseable.
func ExportToM3U8(playlist *models.Playlist) []byte {
	var buf bytes.Buffer

	buf.WriteString("#EXTM3U\n")
	for _, track := range playlist.Tracks {
		display := track.Title
		if track.Artist != "" {
			display = track.Artist + " - " + track.Title
		}
		buf.WriteString(fmt.Sprintf("#EXTINF:-1,%s\n", display))
		if track.Path != "" {
			buf.WriteString(track.Path + "\n")
		} else {
			buf.WriteString("# no local file\n")
		}
	}

	return buf.Bytes()
}

// SummaryReport renders a sync run summary as plain text.
func SummaryReport(summary *engine.Summary) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlists: %d", summary.Playlists))
	if summary.Created > 0 {
		buf.WriteString(fmt.Sprintf(" (%d created)", summary.Created))
	}
	buf.WriteString("\n")
	buf.WriteString(fmt.Sprintf("Tracks: %d\n", summary.Tracks))
	buf.WriteString(fmt.Sprintf("Added: %d\n", summary.Added))
	buf.WriteString(fmt.Sprintf("Reused: %d\n", summary.Reused))

	if len(summary.Searched) > 0 {
		levels := make([]int, 0, len(summary.Searched))
		for level := range summary.Searched {
			levels = append(levels, level)
		}
		sort.Ints(levels)

		buf.WriteString(fmt.Sprintf("Resolved by search: %d\n", summary.Resolved()))
		for _, level := range levels {
			buf.WriteString(fmt.Sprintf("  level %d: %d\n", level, summary.Searched[level]))
		}
	}

	buf.WriteString(fmt.Sprintf("Unresolved: %d\n", summary.Unresolved))
	for _, name := range summary.Failed {
		buf.WriteString(fmt.Sprintf("Failed: %s\n", name))
	}

	return buf.Bytes()
}

// UnresolvedReport lists every track a job could not resolve on a catalog,
// grouped by playlist. Returns nil when everything resolved.
func UnresolvedReport(job *engine.Job, catalog models.Catalog) []byte {
	var buf bytes.Buffer

	for _, playlist := range job.Playlists {
		var lines []string
		for _, track := range playlist.Tracks {
			prov, recorded := track.Provenance[catalog]
			if recorded && !prov.Resolved {
				lines = append(lines, fmt.Sprintf("  %s - %s", track.Artist, track.Title))
			}
		}
		if len(lines) == 0 {
			continue
		}
		buf.WriteString(playlist.Name + "\n")
		for _, line := range lines {
			buf.WriteString(line + "\n")
		}
	}

	if buf.Len() == 0 {
		return nil
	}
	return buf.Bytes()
}

// WriteExport writes a playlist to disk in the given format. The format is
// one of "csv", "markdown", "text", or "m3u8"; path is the output file.
func WriteExport(playlist *models.Playlist, catalog models.Catalog, format, path string) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case "csv":
		data, err = ExportToCSV(playlist, catalog)
	case "markdown", "md":
		data = ExportToMarkdown(playlist, catalog)
	case "text", "txt":
		data = ExportToText(playlist)
	case "m3u8":
		data = ExportToM3U8(playlist)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
