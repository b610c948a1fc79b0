package engine

import (
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/cadence/internal/models"
	"github.com/desertthunder/cadence/internal/repositories"
	"github.com/desertthunder/cadence/internal/shared"
)

// RefCache maps normalized track keys to remote identifiers for one catalog.
// A hit means the reference was established by an earlier run or an earlier
// occurrence in this one, so no search is needed and the track's provenance
// is recorded as reused.
//
// The in-memory map is the working set; the repository, when present, carries
// references across runs. Persistence failures are logged and tolerated since
// the checkpoint document holds the same references.
type RefCache struct {
	catalog models.Catalog
	repo    *repositories.CrossRefRepository
	logger  *log.Logger

	mu  sync.Mutex
	mem map[string]string
}

// NewRefCache creates a reference cache for the given catalog. repo may be
// nil for a purely in-memory cache.
func NewRefCache(catalog models.Catalog, repo *repositories.CrossRefRepository, logger *log.Logger) *RefCache {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &RefCache{
		catalog: catalog,
		repo:    repo,
		logger:  logger,
		mem:     make(map[string]string),
	}
}

// Warm preloads the in-memory map from the repository.
func (c *RefCache) Warm() error {
	if c.repo == nil {
		return nil
	}

	refs, err := c.repo.List(map[string]any{"catalog": c.catalog.String()})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ref := range refs {
		c.mem[ref.TrackKey()] = ref.RemoteID()
	}
	return nil
}

// Lookup returns the cached remote identifier for a track key.
func (c *RefCache) Lookup(key string) (string, bool) {
	c.mu.Lock()
	if id, ok := c.mem[key]; ok {
		c.mu.Unlock()
		return id, true
	}
	c.mu.Unlock()

	if c.repo == nil {
		return "", false
	}

	ref, err := c.repo.GetByTrackKey(c.catalog, key)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			c.logger.Warn("crossref lookup failed", "key", key, "error", err)
		}
		return "", false
	}

	c.mu.Lock()
	c.mem[key] = ref.RemoteID()
	c.mu.Unlock()
	return ref.RemoteID(), true
}

// Store records a freshly resolved reference in memory and, when a repository
// is attached, persists it for later runs.
func (c *RefCache) Store(track models.Track, remoteID string, prov models.Provenance) {
	c.mu.Lock()
	c.mem[track.Key()] = remoteID
	c.mu.Unlock()

	if c.repo == nil {
		return
	}
	if err := c.repo.Upsert(models.NewCrossRef(c.catalog, track, remoteID, prov)); err != nil {
		c.logger.Warn("crossref persist failed", "key", track.Key(), "error", err)
	}
}

// Len returns the number of cached references.
func (c *RefCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.mem)
}
