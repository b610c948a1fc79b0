package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cadence/internal/engine"
	"github.com/desertthunder/cadence/internal/library"
)

// LibraryLoad reads a folder of m3u8 playlists into a job document.
func (r *Runner) LibraryLoad(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	dir := cmd.String("dir")
	playlists, err := library.ReadDir(dir)
	if err != nil {
		return err
	}

	job := &engine.Job{Playlists: playlists}
	tracks := 0
	for _, pl := range playlists {
		tracks += len(pl.Tracks)
	}

	path := r.checkpointPath(cmd)
	checkpoint := engine.NewCheckpointer(path)
	if err := checkpoint.Write(job); err != nil {
		return err
	}
	if err := checkpoint.Finalize(); err != nil {
		return err
	}

	r.logger.Info("library loaded", "playlists", len(playlists), "tracks", tracks, "output", path)
	r.writePlain("✓ Loaded %d playlists (%d tracks) from %s\n", len(playlists), tracks, dir)
	r.writePlain("Job document written to %s\n", path)
	return nil
}
