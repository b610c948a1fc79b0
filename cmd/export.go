package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cadence/internal/engine"
	"github.com/desertthunder/cadence/internal/formatter"
	"github.com/desertthunder/cadence/internal/models"
	"github.com/desertthunder/cadence/internal/shared"
)

// Export pulls playlists from a catalog. Plex exports carry full track
// metadata and become a job document; remote catalogs list playlist
// identities only, since their track payloads are reference IDs.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	service := models.Catalog(cmd.String("service"))
	switch service {
	case models.CatalogPlex:
		return r.exportPlex(ctx, cmd)
	case models.CatalogSpotify, models.CatalogTidal:
		return r.exportListing(ctx, cmd, service)
	default:
		return fmt.Errorf("%w: unknown service %q", shared.ErrInvalidInput, service)
	}
}

func (r *Runner) exportPlex(ctx context.Context, cmd *cli.Command) error {
	plex, err := r.plex()
	if err != nil {
		return err
	}

	infos, err := plex.Playlists(ctx)
	if err != nil {
		return err
	}

	job := &engine.Job{}
	for _, info := range infos {
		tracks, err := plex.PlaylistTracks(ctx, info.ID)
		if err != nil {
			return fmt.Errorf("exporting %s: %w", info.Name, err)
		}

		playlist := models.Playlist{Name: info.Name, Tracks: tracks}
		playlist.SetID(models.CatalogPlex, info.ID)
		job.Playlists = append(job.Playlists, playlist)
	}

	if format := cmd.String("format"); format != "" {
		return r.writeFormatted(job, models.CatalogPlex, format, cmd.String("output"))
	}

	if cmd.Bool("json") {
		return r.writeJSON(job, true)
	}

	path := r.checkpointPath(cmd)
	checkpoint := engine.NewCheckpointer(path)
	if err := checkpoint.Write(job); err != nil {
		return err
	}
	if err := checkpoint.Finalize(); err != nil {
		return err
	}

	r.writePlain("✓ Exported %d playlists to %s\n", len(job.Playlists), path)
	return nil
}

func (r *Runner) exportListing(ctx context.Context, cmd *cli.Command, service models.Catalog) error {
	target, err := r.target(service.String())
	if err != nil {
		return err
	}

	infos, err := target.Playlists(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(infos, true)
	}

	r.writePlainHeader(fmt.Sprintf("%s playlists", service))
	for _, info := range infos {
		r.writePlain("%s  %s\n", info.ID, info.Name)
	}
	return nil
}

// writeFormatted renders each job playlist to its own file in the chosen format.
func (r *Runner) writeFormatted(job *engine.Job, cat models.Catalog, format, dir string) error {
	if dir == "" {
		dir = "."
	}

	ext := format
	if format == "markdown" {
		ext = "md"
	}

	for i := range job.Playlists {
		pl := &job.Playlists[i]
		path := filepath.Join(dir, fmt.Sprintf("%s.%s", pl.SanitizedName(), ext))
		if err := formatter.WriteExport(pl, cat, format, path); err != nil {
			return err
		}
		r.writePlain("✓ %s\n", path)
	}
	return nil
}
