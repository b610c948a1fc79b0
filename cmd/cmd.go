// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func targetFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "target",
		Aliases:  []string{"t"},
		Usage:    "Target catalog (spotify or tidal)",
		Required: true,
	}
}

func inputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage:   "Job document to load (falls back to the configured checkpoint)",
	}
}

func outputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Checkpoint output path (defaults to the configured checkpoint)",
	}
}

// setupCommand initializes configuration and the database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Create a config.toml from the embedded template",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles catalog authentication
func authCommand(r *Runner) *cli.Command {
	serviceFlag := &cli.StringFlag{
		Name:     "service",
		Aliases:  []string{"s"},
		Usage:    "Catalog to authenticate against (spotify or tidal)",
		Required: true,
	}

	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with a catalog",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Obtain and cache a token, opening the browser if needed",
				Flags:  []cli.Flag{configFlag(), serviceFlag},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the session mode and cached token state",
				Flags:  []cli.Flag{configFlag(), serviceFlag},
				Action: r.AuthStatus,
			},
		},
	}
}

// libraryCommand reads local m3u8 playlists into a job document
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "library",
		Usage: "Local playlist library operations",
		Commands: []*cli.Command{
			{
				Name:  "load",
				Usage: "Read a folder of m3u8 playlists into a job document",
				Flags: []cli.Flag{
					configFlag(),
					outputFlag(),
					&cli.StringFlag{
						Name:     "dir",
						Aliases:  []string{"d"},
						Usage:    "Folder containing m3u8 playlists",
						Required: true,
					},
				},
				Action: r.LibraryLoad,
			},
		},
	}
}

// exportCommand pulls playlists out of a catalog
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export playlists from a catalog",
		Flags: []cli.Flag{
			configFlag(),
			outputFlag(),
			&cli.StringFlag{
				Name:    "service",
				Aliases: []string{"s"},
				Usage:   "Catalog to export from (plex, spotify, or tidal)",
				Value:   "plex",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Per-playlist file format instead of a job document (csv, markdown, text, m3u8)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the document instead of writing it",
			},
		},
		Action: r.Export,
	}
}

// resolveCommand fills in track references without pushing
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Resolve job tracks against a catalog without modifying playlists",
		Flags: []cli.Flag{
			configFlag(),
			targetFlag(),
			inputFlag(),
			outputFlag(),
			&cli.BoolFlag{
				Name:  "local",
				Usage: "Resolve against the Plex library index instead of remote search",
			},
		},
		Action: r.Resolve,
	}
}

// pushCommand reconciles a job against a catalog
func pushCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "push",
		Usage: "Reconcile a job document against a target catalog",
		Flags: []cli.Flag{
			configFlag(),
			targetFlag(),
			inputFlag(),
			outputFlag(),
			&cli.BoolFlag{
				Name:  "force-replace",
				Usage: "Delete and recreate playlists instead of adding missing tracks",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the run summary as JSON",
			},
		},
		Action: r.Push,
	}
}

// syncCommand runs the full pipeline
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Synchronize playlists end to end",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Export from the source, resolve, and push to the target",
				Flags: []cli.Flag{
					configFlag(),
					targetFlag(),
					inputFlag(),
					outputFlag(),
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Load the job from a folder of m3u8 playlists",
					},
					&cli.BoolFlag{
						Name:  "from-plex",
						Usage: "Load the job from the Plex server's playlists",
					},
					&cli.BoolFlag{
						Name:  "force-replace",
						Usage: "Delete and recreate playlists instead of adding missing tracks",
					},
					&cli.BoolFlag{
						Name:  "ui",
						Usage: "Run with the interactive terminal interface",
					},
				},
				Action: r.SyncRun,
			},
		},
	}
}
