package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/cadence/internal/catalog"
	"github.com/desertthunder/cadence/internal/models"
	"github.com/desertthunder/cadence/internal/repositories"
	"github.com/desertthunder/cadence/internal/resolver"
	"github.com/desertthunder/cadence/internal/shared"
)

// Resolver finds a track's remote identifier. Implemented by
// resolver.SearchResolver for remote catalogs and by IndexResolver for a
// local library index.
type Resolver interface {
	Resolve(ctx context.Context, track models.Track) (resolver.Candidate, models.Provenance, error)
}

// IndexResolver adapts a local library index to the Resolver interface.
type IndexResolver struct {
	Index *resolver.Index
}

// Resolve looks the track up in the local index. A hit is recorded at the
// most faithful level since no query simplification was needed.
func (r IndexResolver) Resolve(_ context.Context, track models.Track) (resolver.Candidate, models.Provenance, error) {
	if cand, ok := r.Index.Resolve(track); ok {
		return cand, models.ProvenanceLevel(0), nil
	}
	return resolver.Candidate{}, models.ProvenanceMiss(), fmt.Errorf("%w: %s", shared.ErrTrackNotFound, track.SearchText())
}

// Options configures a sync run.
type Options struct {
	// ForceReplace deletes an existing remote playlist and recreates it
	// instead of adding only the missing tracks.
	ForceReplace bool

	// ResolveOnly fills in track references and checkpoints them without
	// touching any remote playlist.
	ResolveOnly bool

	// Progress receives updates during the run. Sends never block; a slow
	// consumer just misses intermediate updates.
	Progress chan<- ProgressUpdate
}

// Summary reports what a sync run did.
type Summary struct {
	Playlists  int         `json:"playlists"`
	Created    int         `json:"created"`
	Tracks     int         `json:"tracks"`
	Reused     int         `json:"reused"`
	Searched   map[int]int `json:"searched"`
	Unresolved int         `json:"unresolved"`
	Added      int         `json:"added"`
	Failed     []string    `json:"failed,omitempty"`
}

// Resolved returns the total number of tracks resolved by search.
func (s *Summary) Resolved() int {
	total := 0
	for _, n := range s.Searched {
		total += n
	}
	return total
}

// Engine reconciles a job's desired playlist state against a target catalog.
type Engine struct {
	target     catalog.Catalog
	resolver   Resolver
	refs       *RefCache
	playlists  *repositories.PlaylistRefRepository
	checkpoint *Checkpointer
	logger     *log.Logger
}

// New creates a reconciliation engine. playlistRepo may be nil to skip
// persisting playlist identifiers outside the checkpoint document.
func New(target catalog.Catalog, res Resolver, refs *RefCache, playlistRepo *repositories.PlaylistRefRepository, checkpoint *Checkpointer, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{
		target:     target,
		resolver:   res,
		refs:       refs,
		playlists:  playlistRepo,
		checkpoint: checkpoint,
		logger:     logger,
	}
}

// Run drives every playlist in the job to its desired state on the target
// catalog. Progress is checkpointed after every resolution and every applied
// batch, so an interrupted run resumes from its last completed unit of work.
//
// A playlist whose sync step fails is recorded in the summary and the run
// moves on to the next playlist; only cancellation and checkpoint write
// failures abort the whole run.
func (e *Engine) Run(ctx context.Context, job *Job, opts Options) (*Summary, error) {
	summary := &Summary{Searched: make(map[int]int)}

	byName := make(map[string]string)
	byNorm := make(map[string]string)
	if !opts.ResolveOnly {
		remote, err := e.target.Playlists(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing playlists: %w", err)
		}
		for _, p := range remote {
			byName[p.Name] = p.ID
			byNorm[shared.NormalizeName(p.Name)] = p.ID
		}
	}

	total := len(job.Playlists)
	for i := range job.Playlists {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		pl := &job.Playlists[i]
		e.sendProgress(opts.Progress, resolvePlaylistUpdate(i+1, total, pl.Name))

		if err := e.syncPlaylist(ctx, job, pl, byName, byNorm, opts, summary); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, errCheckpointWrite) {
				return summary, err
			}
			e.logger.Error("playlist sync failed", "playlist", pl.Name, "error", err)
			summary.Failed = append(summary.Failed, pl.Name)
		}
		summary.Playlists++
	}

	if err := e.checkpoint.Finalize(); err != nil {
		return summary, err
	}

	e.sendProgress(opts.Progress, finalizeUpdate(summary))
	return summary, nil
}

// syncPlaylist runs the reconciliation steps for one playlist: resolve or
// create the remote playlist, fetch membership, resolve missing references,
// then apply the delta in batches.
func (e *Engine) syncPlaylist(ctx context.Context, job *Job, pl *models.Playlist, byName, byNorm map[string]string, opts Options, summary *Summary) error {
	if opts.ResolveOnly {
		summary.Tracks += len(pl.Tracks)
		return e.resolveTracks(ctx, job, pl, opts, summary)
	}

	id, err := e.resolvePlaylistID(ctx, job, pl, byName, byNorm, opts, summary)
	if err != nil {
		return err
	}

	e.sendProgress(opts.Progress, fetchMembershipUpdate(1, 1, pl.Name))
	existing, err := e.target.PlaylistTracks(ctx, id)
	if err != nil {
		return fmt.Errorf("fetching playlist tracks: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, tid := range existing {
		have[tid] = true
	}

	if err := e.resolveTracks(ctx, job, pl, opts, summary); err != nil {
		return err
	}

	delta := e.delta(pl, have)
	summary.Tracks += len(pl.Tracks)

	size := e.target.BatchSize()
	batches := (len(delta) + size - 1) / size
	for b := 0; b*size < len(delta); b++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk := delta[b*size : min((b+1)*size, len(delta))]
		if err := e.target.AddTracks(ctx, id, chunk); err != nil {
			return fmt.Errorf("adding batch %d/%d: %w", b+1, batches, err)
		}
		summary.Added += len(chunk)

		e.sendProgress(opts.Progress, applyBatchUpdate(b+1, batches, len(chunk)))
		if err := e.writeCheckpoint(job); err != nil {
			return err
		}
	}

	return nil
}

// resolvePlaylistID finds or creates the remote playlist: the checkpointed
// identifier wins, then an exact name match, then a sanitized-name match, and
// finally a fresh playlist. Force-replace deletes the existing playlist first
// so the delta is computed against an empty one.
func (e *Engine) resolvePlaylistID(ctx context.Context, job *Job, pl *models.Playlist, byName, byNorm map[string]string, opts Options, summary *Summary) (string, error) {
	cat := e.target.Name()

	id, found := pl.ID(cat)
	if !found {
		if rid, ok := byName[pl.Name]; ok {
			id, found = rid, true
		} else if rid, ok := byNorm[shared.NormalizeName(pl.Name)]; ok {
			id, found = rid, true
		}
	}

	if found && opts.ForceReplace {
		e.logger.Info("replacing playlist", "playlist", pl.Name, "id", id)
		if err := e.target.DeletePlaylist(ctx, id); err != nil {
			return "", fmt.Errorf("deleting playlist: %w", err)
		}
		found = false
	}

	if !found {
		created, err := e.target.CreatePlaylist(ctx, pl.Name)
		if err != nil {
			return "", fmt.Errorf("creating playlist: %w", err)
		}
		id = created
		summary.Created++
		e.logger.Info("created playlist", "playlist", pl.Name, "id", id)
	}

	if prev, ok := pl.ID(cat); !ok || prev != id {
		pl.SetID(cat, id)
		e.recordPlaylistRef(pl.SanitizedName(), id)
		if err := e.writeCheckpoint(job); err != nil {
			return "", err
		}
	}

	return id, nil
}

// resolveTracks fills in missing references for the playlist's tracks. Cache
// hits are marked reused; misses are marked unresolved and retried on the
// next run; any other resolver error aborts the playlist.
func (e *Engine) resolveTracks(ctx context.Context, job *Job, pl *models.Playlist, opts Options, summary *Summary) error {
	cat := e.target.Name()

	for i := range pl.Tracks {
		if err := ctx.Err(); err != nil {
			return err
		}

		track := &pl.Tracks[i]
		e.sendProgress(opts.Progress, resolveTrackUpdate(i+1, len(pl.Tracks), track.Title, track.Artist))

		if _, ok := track.Ref(cat); ok {
			continue
		}

		if cached, ok := e.refs.Lookup(track.Key()); ok {
			track.SetRef(cat, cached, models.ProvenanceReused())
			summary.Reused++
		} else {
			cand, prov, err := e.resolver.Resolve(ctx, *track)
			switch {
			case errors.Is(err, shared.ErrTrackNotFound):
				track.MarkMiss(cat)
				summary.Unresolved++
				e.logger.Warn("track unresolved", "title", track.Title, "artist", track.Artist)
			case err != nil:
				return fmt.Errorf("resolving %s: %w", track.SearchText(), err)
			default:
				track.SetRef(cat, cand.ID, prov)
				e.refs.Store(*track, cand.ID, prov)
				summary.Searched[prov.Level]++
			}
		}

		if err := e.writeCheckpoint(job); err != nil {
			return err
		}
	}

	return nil
}

// delta returns the resolved identifiers not yet in the playlist, in job
// order with duplicates dropped.
func (e *Engine) delta(pl *models.Playlist, have map[string]bool) []string {
	cat := e.target.Name()

	var missing []string
	seen := make(map[string]bool)
	for _, track := range pl.Tracks {
		id, ok := track.Ref(cat)
		if !ok || have[id] || seen[id] {
			continue
		}
		missing = append(missing, id)
		seen[id] = true
	}
	return missing
}

func (e *Engine) recordPlaylistRef(name, remoteID string) {
	if e.playlists == nil {
		return
	}
	if err := e.playlists.Upsert(models.NewPlaylistRef(e.target.Name(), name, remoteID)); err != nil {
		e.logger.Warn("playlist ref persist failed", "playlist", name, "error", err)
	}
}

// errCheckpointWrite marks failures that leave progress unrecorded; they
// abort the whole run rather than just the current playlist.
var errCheckpointWrite = errors.New("checkpoint write failed")

func (e *Engine) writeCheckpoint(job *Job) error {
	if err := e.checkpoint.Write(job); err != nil {
		return fmt.Errorf("%w: %v", errCheckpointWrite, err)
	}
	return nil
}

func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}

	select {
	case progress <- update:
	default:
	}
}
