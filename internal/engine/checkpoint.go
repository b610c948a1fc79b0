package engine

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/desertthunder/cadence/internal/models"
	"github.com/desertthunder/cadence/internal/shared"
)

// Job is the checkpoint document: the desired playlist state plus every
// reference and provenance record accumulated so far. It is both the input
// and the crash-safe output of a sync run.
type Job struct {
	Playlists []models.Playlist `json:"playlists"`
}

// partSuffix marks the working copy of a checkpoint while a job is in flight.
const partSuffix = ".part"

// LoadJob reads a checkpoint document. A partial checkpoint at path.part
// takes precedence over the nominal file, so an interrupted job resumes from
// its last recorded progress rather than its original input.
func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path + partSuffix)
	if err != nil {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCheckpointCorrupt, err)
	}

	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCheckpointCorrupt, err)
	}
	return &job, nil
}

// Checkpointer persists job progress. Every write lands via a temporary file
// and an atomic rename, so a checkpoint on disk is always complete.
type Checkpointer struct {
	path string
}

// NewCheckpointer creates a checkpointer writing to path.part until Finalize.
func NewCheckpointer(path string) *Checkpointer {
	return &Checkpointer{path: path}
}

// Path returns the permanent checkpoint path.
func (c *Checkpointer) Path() string {
	return c.path
}

// Write persists the full job document to the working checkpoint.
func (c *Checkpointer) Write(job *Job) error {
	data, err := shared.MarshalJSON(job, true)
	if err != nil {
		return fmt.Errorf("marshaling checkpoint: %w", err)
	}
	if err := shared.WriteFileAtomic(c.path+partSuffix, data, 0644); err != nil {
		return fmt.Errorf("writing checkpoint: %w", err)
	}
	return nil
}

// Finalize promotes the working checkpoint to the permanent output path.
// Called once a job has run to completion.
func (c *Checkpointer) Finalize() error {
	if _, err := os.Stat(c.path + partSuffix); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := os.Rename(c.path+partSuffix, c.path); err != nil {
		return fmt.Errorf("finalizing checkpoint: %w", err)
	}
	return nil
}
