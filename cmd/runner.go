package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cadence/internal/auth"
	"github.com/desertthunder/cadence/internal/catalog"
	"github.com/desertthunder/cadence/internal/engine"
	"github.com/desertthunder/cadence/internal/httpx"
	"github.com/desertthunder/cadence/internal/models"
	"github.com/desertthunder/cadence/internal/repositories"
	"github.com/desertthunder/cadence/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger swaps the runner's logger, e.g. to a file logger while a TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, libraryCommand, exportCommand, resolveCommand, pushCommand, syncCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// reloadConfig replaces the runner's config from the --config flag when the
// file exists; otherwise the current config stays in effect.
func (r *Runner) reloadConfig(cmd *cli.Command) {
	path := cmd.String("config")
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, keeping current", "path", path, "error", err)
		return
	}
	r.config = config
}

// session builds the OAuth session manager for a catalog from configured credentials.
func (r *Runner) session(cat models.Catalog) (*auth.Manager, error) {
	cache := auth.NewCache(r.config.Auth.TokenCache)

	switch cat {
	case models.CatalogSpotify:
		c := r.config.Catalogs.Spotify
		if c.ClientID == "" {
			return nil, fmt.Errorf("%w: spotify client_id not configured", shared.ErrInvalidConfig)
		}
		return auth.NewManager(cat, auth.Credentials{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURI:  c.RedirectURI,
			Scopes:       catalog.SpotifyScopes,
			AuthURL:      catalog.SpotifyAuthURL,
			TokenURL:     catalog.SpotifyTokenURL,
		}, cache, r.config.Server, r.logger), nil

	case models.CatalogTidal:
		c := r.config.Catalogs.Tidal
		if c.ClientID == "" && c.PersonalToken == "" {
			return nil, fmt.Errorf("%w: tidal credentials not configured", shared.ErrInvalidConfig)
		}
		return auth.NewManager(cat, auth.Credentials{
			ClientID:      c.ClientID,
			ClientSecret:  c.ClientSecret,
			PersonalToken: c.PersonalToken,
			RedirectURI:   c.RedirectURI,
			Scopes:        catalog.TidalScopes,
			AuthURL:       catalog.TidalAuthURL,
			TokenURL:      catalog.TidalTokenURL,
		}, cache, r.config.Server, r.logger), nil

	default:
		return nil, fmt.Errorf("%w: no session manager for catalog %q", shared.ErrInvalidInput, cat)
	}
}

// target builds the writable catalog client named by a --target flag.
func (r *Runner) target(name string) (catalog.Catalog, error) {
	cat := models.Catalog(name)

	sess, err := r.session(cat)
	if err != nil {
		return nil, err
	}
	exec := httpx.New(httpx.DefaultPolicy(), sess, r.logger)
	exec.SetClient(r.httpClient)

	switch cat {
	case models.CatalogSpotify:
		return catalog.NewSpotifyCatalog(exec, r.logger), nil
	case models.CatalogTidal:
		return catalog.NewTidalCatalog(exec, r.config.Catalogs.Tidal.CountryCode, r.logger), nil
	default:
		return nil, fmt.Errorf("%w: unsupported target catalog %q", shared.ErrInvalidInput, name)
	}
}

// plex builds the media server client used as the sync source.
func (r *Runner) plex() (*catalog.PlexCatalog, error) {
	c := r.config.Catalogs.Plex
	if c.URL == "" || c.Token == "" {
		return nil, fmt.Errorf("%w: plex url and token are required", shared.ErrInvalidConfig)
	}

	exec := httpx.New(httpx.DefaultPolicy(), &catalog.PlexAuth{Token: c.Token}, r.logger)
	exec.SetClient(r.httpClient)
	return catalog.NewPlexCatalog(exec, c.URL, c.Library, r.logger), nil
}

// newEngine wires a reconciliation engine for the target: the sqlite-backed
// reference cache when the database is reachable, an in-memory one otherwise.
func (r *Runner) newEngine(target catalog.Catalog, res engine.Resolver, checkpointPath string) (*engine.Engine, func(), error) {
	closeDB := func() {}

	var crossRepo *repositories.CrossRefRepository
	var playlistRepo *repositories.PlaylistRefRepository
	if db, err := shared.NewDatabase(r.config.Database.Path); err == nil {
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		crossRepo = repositories.NewCrossRefRepository(db)
		playlistRepo = repositories.NewPlaylistRefRepository(db)
		closeDB = func() { db.Close() }
	} else {
		r.logger.Warn("database unavailable, references will not persist", "error", err)
	}

	refs := engine.NewRefCache(target.Name(), crossRepo, r.logger)
	if err := refs.Warm(); err != nil {
		r.logger.Warn("failed to warm reference cache", "error", err)
	} else if refs.Len() > 0 {
		r.logger.Info("reference cache warmed", "refs", refs.Len())
	}

	eng := engine.New(target, res, refs, playlistRepo, engine.NewCheckpointer(checkpointPath), r.logger)
	return eng, closeDB, nil
}

// checkpointPath returns the job document path: the --output flag when set,
// otherwise the configured engine checkpoint.
func (r *Runner) checkpointPath(cmd *cli.Command) string {
	if out := cmd.String("output"); out != "" {
		return out
	}
	return r.config.Engine.Checkpoint
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
