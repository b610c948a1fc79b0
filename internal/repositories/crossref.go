package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/cadence/internal/models"
	"github.com/desertthunder/cadence/internal/shared"
)

// CrossRefRepository implements models.Repository[*models.CrossRef].
//
// Cross-references are unique per (catalog, track key); Upsert is the common
// entry point so repeated resolutions refresh the stored reference in place.
type CrossRefRepository struct {
	db *sql.DB
}

// NewCrossRefRepository creates a new CrossRefRepository with the given database connection
func NewCrossRefRepository(db *sql.DB) *CrossRefRepository {
	return &CrossRefRepository{db: db}
}

// Create inserts a new [models.CrossRef] into the database with a generated ID
func (r *CrossRefRepository) Create(ref *models.CrossRef) error {
	ref.SetID(shared.GenerateID())

	if err := ref.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO crossrefs (id, catalog, track_key, remote_id, title, artist, album, provenance, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		ref.ID(),
		ref.Catalog().String(),
		ref.TrackKey(),
		ref.RemoteID(),
		ref.Title(),
		ref.Artist(),
		ref.Album(),
		ref.Provenance(),
		ref.CreatedAt(),
		ref.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert crossref: %w", err)
	}

	return nil
}

// Upsert inserts the reference or refreshes the stored one when the
// (catalog, track key) pair already exists.
func (r *CrossRefRepository) Upsert(ref *models.CrossRef) error {
	if ref.ID() == "" {
		ref.SetID(shared.GenerateID())
	}

	if err := ref.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO crossrefs (id, catalog, track_key, remote_id, title, artist, album, provenance, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (catalog, track_key) DO UPDATE SET
			remote_id = excluded.remote_id,
			title = excluded.title,
			artist = excluded.artist,
			album = excluded.album,
			provenance = excluded.provenance,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query,
		ref.ID(),
		ref.Catalog().String(),
		ref.TrackKey(),
		ref.RemoteID(),
		ref.Title(),
		ref.Artist(),
		ref.Album(),
		ref.Provenance(),
		ref.CreatedAt(),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert crossref: %w", err)
	}

	return nil
}

// Get retrieves a cross-reference by ID
func (r *CrossRefRepository) Get(id string) (*models.CrossRef, error) {
	query := `
		SELECT id, catalog, track_key, remote_id, title, artist, album, provenance, created_at, updated_at
		FROM crossrefs
		WHERE id = ?
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByTrackKey retrieves a cross-reference by catalog and normalized track key
func (r *CrossRefRepository) GetByTrackKey(catalog models.Catalog, trackKey string) (*models.CrossRef, error) {
	query := `
		SELECT id, catalog, track_key, remote_id, title, artist, album, provenance, created_at, updated_at
		FROM crossrefs
		WHERE catalog = ? AND track_key = ?
	`

	return r.scanOne(r.db.QueryRow(query, catalog.String(), trackKey))
}

// Update modifies an existing cross-reference in the database
func (r *CrossRefRepository) Update(ref *models.CrossRef) error {
	if err := ref.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	ref.SetUpdatedAt(now)

	query := `
		UPDATE crossrefs
		SET remote_id = ?, title = ?, artist = ?, album = ?, provenance = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		ref.RemoteID(),
		ref.Title(),
		ref.Artist(),
		ref.Album(),
		ref.Provenance(),
		now,
		ref.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update crossref: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a cross-reference by ID
func (r *CrossRefRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM crossrefs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete crossref: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// List retrieves cross-references matching the given criteria.
// Supported criteria: "catalog".
func (r *CrossRefRepository) List(criteria map[string]any) ([]*models.CrossRef, error) {
	query := `
		SELECT id, catalog, track_key, remote_id, title, artist, album, provenance, created_at, updated_at
		FROM crossrefs
	`
	var args []any

	if catalog, ok := criteria["catalog"]; ok {
		query += " WHERE catalog = ?"
		args = append(args, fmt.Sprint(catalog))
	}
	query += " ORDER BY updated_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list crossrefs: %w", err)
	}
	defer rows.Close()

	var refs []*models.CrossRef
	for rows.Next() {
		ref, err := scanCrossRef(rows)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	return refs, rows.Err()
}

func (r *CrossRefRepository) scanOne(row *sql.Row) (*models.CrossRef, error) {
	var (
		id, catalog, trackKey, remoteID  string
		title, artist, album, provenance string
		createdAt, updatedAt             time.Time
	)

	err := row.Scan(&id, &catalog, &trackKey, &remoteID, &title, &artist, &album, &provenance, &createdAt, &updatedAt)
	if err != nil {
		return nil, notFound(err)
	}

	ref := models.RestoreCrossRef(id, models.Catalog(catalog), trackKey, remoteID, title, artist, album, provenance)
	ref.SetTimestamps(createdAt, updatedAt)
	return ref, nil
}

func scanCrossRef(rows *sql.Rows) (*models.CrossRef, error) {
	var (
		id, catalog, trackKey, remoteID  string
		title, artist, album, provenance string
		createdAt, updatedAt             time.Time
	)

	err := rows.Scan(&id, &catalog, &trackKey, &remoteID, &title, &artist, &album, &provenance, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan crossref: %w", err)
	}

	ref := models.RestoreCrossRef(id, models.Catalog(catalog), trackKey, remoteID, title, artist, album, provenance)
	ref.SetTimestamps(createdAt, updatedAt)
	return ref, nil
}
