package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cadence/internal/engine"
	"github.com/desertthunder/cadence/internal/formatter"
	"github.com/desertthunder/cadence/internal/resolver"
)

// Push reconciles a job document against the target catalog: unresolved
// tracks are searched, playlists are found or created, and missing tracks
// are added in batches.
func (r *Runner) Push(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	job, err := r.loadJob(cmd)
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

	summary, err := eng.Run(ctx, job, engine.Options{ForceReplace: cmd.Bool("force-replace")})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(summary, true)
	}

	r.writePlain("%s", formatter.SummaryReport(summary))
	if report := formatter.UnresolvedReport(job, target.Name()); report != nil {
		r.writePlainHeader("Unresolved tracks")
		r.writePlain("%s", report)
	}
	return nil
}
