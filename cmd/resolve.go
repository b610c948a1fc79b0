package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cadence/internal/engine"
	"github.com/desertthunder/cadence/internal/formatter"
	"github.com/desertthunder/cadence/internal/resolver"
)

// Resolve fills in a job's track references against the target catalog
// without creating or modifying any playlist. With --local the Plex library
// index answers lookups instead of the target's search endpoint.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	job, err := r.loadJob(cmd)
	if err != nil {
		return err
	}

	target, err := r.target(cmd.String("target"))
	if err != nil {
		return err
	}

	var res engine.Resolver
	if cmd.Bool("local") {
		plex, err := r.plex()
		if err != nil {
			return err
		}
		index, err := plex.LibraryIndex(ctx)
		if err != nil {
			return err
		}
		res = engine.IndexResolver{Index: index}
	} else {
		res = resolver.NewSearchResolver(target, r.logger)
	}

	eng, closeDB, err := r.newEngine(target, res, r.checkpointPath(cmd))
	if err != nil {
		return err
	}
	defer closeDB()

	summary, err := eng.Run(ctx, job, engine.Options{ResolveOnly: true})
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

// loadJob reads the job document named by --input, or the configured
// checkpoint path when the flag is absent. A partial checkpoint from an
// interrupted run takes precedence.
func (r *Runner) loadJob(cmd *cli.Command) (*engine.Job, error) {
	path := cmd.String("input")
	if path == "" {
		path = r.config.Engine.Checkpoint
	}
	return engine.LoadJob(path)
}
