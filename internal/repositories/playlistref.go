package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/cadence/internal/models"
	"github.com/desertthunder/cadence/internal/shared"
)

// PlaylistRefRepository implements models.Repository[*models.PlaylistRef].
type PlaylistRefRepository struct {
	db *sql.DB
}

// NewPlaylistRefRepository creates a new PlaylistRefRepository with the given database connection
func NewPlaylistRefRepository(db *sql.DB) *PlaylistRefRepository {
	return &PlaylistRefRepository{db: db}
}

// Create inserts a new [models.PlaylistRef] into the database with a generated ID
func (r *PlaylistRefRepository) Create(ref *models.PlaylistRef) error {
	ref.SetID(shared.GenerateID())

	if err := ref.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO playlist_refs (id, catalog, name, remote_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		ref.ID(),
		ref.Catalog().String(),
		ref.Name(),
		ref.RemoteID(),
		ref.CreatedAt(),
		ref.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist ref: %w", err)
	}

	return nil
}

// Upsert inserts the reference or refreshes the stored one when the
// (catalog, name) pair already exists.
func (r *PlaylistRefRepository) Upsert(ref *models.PlaylistRef) error {
	if ref.ID() == "" {
		ref.SetID(shared.GenerateID())
	}

	if err := ref.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO playlist_refs (id, catalog, name, remote_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (catalog, name) DO UPDATE SET
			remote_id = excluded.remote_id,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query,
		ref.ID(),
		ref.Catalog().String(),
		ref.Name(),
		ref.RemoteID(),
		ref.CreatedAt(),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert playlist ref: %w", err)
	}

	return nil
}

// Get retrieves a playlist reference by ID
func (r *PlaylistRefRepository) Get(id string) (*models.PlaylistRef, error) {
	query := `
		SELECT id, catalog, name, remote_id, created_at, updated_at
		FROM playlist_refs
		WHERE id = ?
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByName retrieves a playlist reference by catalog and sanitized name
func (r *PlaylistRefRepository) GetByName(catalog models.Catalog, name string) (*models.PlaylistRef, error) {
	query := `
		SELECT id, catalog, name, remote_id, created_at, updated_at
		FROM playlist_refs
		WHERE catalog = ? AND name = ?
	`

	return r.scanOne(r.db.QueryRow(query, catalog.String(), name))
}

// Update modifies an existing playlist reference in the database
func (r *PlaylistRefRepository) Update(ref *models.PlaylistRef) error {
	if err := ref.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	ref.SetUpdatedAt(now)

	result, err := r.db.Exec(
		"UPDATE playlist_refs SET remote_id = ?, updated_at = ? WHERE id = ?",
		ref.RemoteID(), now, ref.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update playlist ref: %w", err)
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

// Delete removes a playlist reference by ID
func (r *PlaylistRefRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM playlist_refs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist ref: %w", err)
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

// List retrieves playlist references matching the given criteria.
// Supported criteria: "catalog".
func (r *PlaylistRefRepository) List(criteria map[string]any) ([]*models.PlaylistRef, error) {
	query := `
		SELECT id, catalog, name, remote_id, created_at, updated_at
		FROM playlist_refs
	`
	var args []any

	if catalog, ok := criteria["catalog"]; ok {
		query += " WHERE catalog = ?"
		args = append(args, fmt.Sprint(catalog))
	}
	query += " ORDER BY name"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlist refs: %w", err)
	}
	defer rows.Close()

	var refs []*models.PlaylistRef
	for rows.Next() {
		var (
			id, catalog, name, remoteID string
			createdAt, updatedAt        time.Time
		)
		if err := rows.Scan(&id, &catalog, &name, &remoteID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist ref: %w", err)
		}
		ref := models.RestorePlaylistRef(id, models.Catalog(catalog), name, remoteID)
		ref.SetTimestamps(createdAt, updatedAt)
		refs = append(refs, ref)
	}

	return refs, rows.Err()
}

func (r *PlaylistRefRepository) scanOne(row *sql.Row) (*models.PlaylistRef, error) {
	var (
		id, catalog, name, remoteID string
		createdAt, updatedAt        time.Time
	)

	err := row.Scan(&id, &catalog, &name, &remoteID, &createdAt, &updatedAt)
	if err != nil {
		return nil, notFound(err)
	}

	ref := models.RestorePlaylistRef(id, models.Catalog(catalog), name, remoteID)
	ref.SetTimestamps(createdAt, updatedAt)
	return ref, nil
}
