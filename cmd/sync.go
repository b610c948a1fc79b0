package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cadence/internal/engine"
	"github.com/desertthunder/cadence/internal/formatter"
	"github.com/desertthunder/cadence/internal/library"
	"github.com/desertthunder/cadence/internal/models"
	"github.com/desertthunder/cadence/internal/resolver"
	"github.com/desertthunder/cadence/internal/shared"
)

// SyncRun drives the whole pipeline: load the job from a playlist folder,
// the Plex server, or an existing document, then resolve and push it to the
// target catalog in one reconciliation run.
func (r *Runner) SyncRun(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	job, err := r.syncSource(ctx, cmd)
	if err != nil {
		return err
	}

	target, err := r.target(cmd.String("target"))
	if err != nil {
		return err
	}

	eng, closeDB, err := r.newEngine(target, resolver.NewSearchResolver(target, r.logger), r.checkpointPath(cmd))
	if err != nil {
		return err
	}
	defer closeDB()

	opts := engine.Options{ForceReplace: cmd.Bool("force-replace")}

	if cmd.Bool("ui") {
		return r.launchTUI(ctx, job, target.Name(), func(ctx context.Context, job *engine.Job, progress chan<- engine.ProgressUpdate) (*engine.Summary, error) {
			runOpts := opts
			runOpts.Progress = progress
			return eng.Run(ctx, job, runOpts)
		})
	}

	summary, err := eng.Run(ctx, job, opts)
	if err != nil {
		return err
	}

	r.writePlain("%s", formatter.SummaryReport(summary))
	if report := formatter.UnresolvedReport(job, target.Name()); report != nil {
		r.writePlainHeader("Unresolved tracks")
		r.writePlain("%s", report)
	}
	return nil
}

// syncSource builds the job from whichever source the flags select.
func (r *Runner) syncSource(ctx context.Context, cmd *cli.Command) (*engine.Job, error) {
	dir := cmd.String("dir")
	fromPlex := cmd.Bool("from-plex")

	switch {
	case dir != "" && fromPlex:
		return nil, fmt.Errorf("%w: --dir and --from-plex are mutually exclusive", shared.ErrInvalidInput)

	case dir != "":
		playlists, err := library.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		return &engine.Job{Playlists: playlists}, nil

	case fromPlex:
		plex, err := r.plex()
		if err != nil {
			return nil, err
		}
		infos, err := plex.Playlists(ctx)
		if err != nil {
			return nil, err
		}

		job := &engine.Job{}
		for _, info := range infos {
			tracks, err := plex.PlaylistTracks(ctx, info.ID)
			if err != nil {
				return nil, fmt.Errorf("exporting %s: %w", info.Name, err)
			}
			playlist := models.Playlist{Name: info.Name, Tracks: tracks}
			playlist.SetID(models.CatalogPlex, info.ID)
			job.Playlists = append(job.Playlists, playlist)
		}
		return job, nil

	default:
		return r.loadJob(cmd)
	}
}
