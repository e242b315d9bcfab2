package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Lukasvo/cookiedoo-filler/internal/models"
	"github.com/Lukasvo/cookiedoo-filler/internal/shared"
)

// ImportRepository implements models.Repository[*models.PersistedImport] for the import cache.
//
// Handles import record CRUD with soft delete support and source URL lookups.
// Lookup misses wrap [shared.ErrNotFound] so callers can tell a fresh URL
// from a database failure.
type ImportRepository struct {
	db *sql.DB
}

// NewImportRepository creates a new ImportRepository with the given database connection
func NewImportRepository(db *sql.DB) *ImportRepository {
	return &ImportRepository{db: db}
}

// Create inserts a new import record into the database with generated ID and sequence
func (r *ImportRepository) Create(record *models.PersistedImport) error {
	sequence, err := NextSequence(r.db, "imports")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	record.SetID(id)

	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO imports (id, sequence, source_url, recipe_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		record.SourceURL(),
		record.RecipeID(),
		record.Name(),
		record.CreatedAt(),
		record.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert import record: %w", err)
	}

	return nil
}

// Get retrieves an import record by ID, excluding soft-deleted records
func (r *ImportRepository) Get(id string) (*models.PersistedImport, error) {
	query := `
		SELECT id, sequence, source_url, recipe_id, name, created_at, updated_at, deleted_at
		FROM imports
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetBySourceURL retrieves the active import record for a source URL
func (r *ImportRepository) GetBySourceURL(sourceURL string) (*models.PersistedImport, error) {
	query := `
		SELECT id, sequence, source_url, recipe_id, name, created_at, updated_at, deleted_at
		FROM imports
		WHERE source_url = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, sourceURL))
}

// Update modifies an existing import record in the database
func (r *ImportRepository) Update(record *models.PersistedImport) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	record.SetUpdatedAt(now)

	query := `
		UPDATE imports
		SET recipe_id = ?, name = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		record.RecipeID(),
		record.Name(),
		now,
		record.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update import record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: import record %s", shared.ErrNotFound, record.ID())
	}

	return nil
}

// Delete soft-deletes an import record by ID
func (r *ImportRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE imports
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete import record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: import record %s", shared.ErrNotFound, id)
	}

	return nil
}

// DeleteBySourceURL soft-deletes the active import record for a source URL,
// forcing the next import of that URL to create a fresh recipe
func (r *ImportRepository) DeleteBySourceURL(sourceURL string) error {
	now := time.Now()

	query := `
		UPDATE imports
		SET deleted_at = ?
		WHERE source_url = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, sourceURL)
	if err != nil {
		return fmt.Errorf("failed to delete import record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: import for %s", shared.ErrNotFound, sourceURL)
	}

	return nil
}

// List retrieves all import records matching the given criteria, excluding soft-deleted records
func (r *ImportRepository) List(criteria map[string]any) ([]*models.PersistedImport, error) {
	query := `
		SELECT id, sequence, source_url, recipe_id, name, created_at, updated_at, deleted_at
		FROM imports
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if recipeID, ok := criteria["recipe_id"].(string); ok && recipeID != "" {
		query += " AND recipe_id = ?"
		args = append(args, recipeID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query import records: %w", err)
	}
	defer rows.Close()

	var records []*models.PersistedImport
	for rows.Next() {
		record, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Record stores the outcome of an import. It updates the active record for
// the source URL when one exists and inserts a new one otherwise, so each
// URL keeps a single live pairing with a platform recipe.
func (r *ImportRepository) Record(sourceURL, recipeID, name string) (*models.PersistedImport, error) {
	existing, err := r.GetBySourceURL(sourceURL)
	if err == nil {
		existing.SetRecipeID(recipeID)
		existing.SetName(name)
		if err := r.Update(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	record := models.NewPersistedImport(0, sourceURL, recipeID, name)
	if err := r.Create(record); err != nil {
		return nil, err
	}
	return record, nil
}

// scanOne scans a single row into a [models.PersistedImport]
func (r *ImportRepository) scanOne(row *sql.Row) (*models.PersistedImport, error) {
	var (
		id        string
		sequence  int
		sourceURL string
		recipeID  string
		name      string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &sourceURL, &recipeID, &name, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: import record", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan import record: %w", err)
	}

	record := models.NewPersistedImport(sequence, sourceURL, recipeID, name)
	record.SetID(id)
	record.SetCreatedAt(createdAt)
	record.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		record.SetDeletedAt(&deletedAt.Time)
	}

	return record, nil
}

// scanRow scans a row from [sql.Rows] into a [models.PersistedImport]
func (r *ImportRepository) scanRow(rows *sql.Rows) (*models.PersistedImport, error) {
	var (
		id        string
		sequence  int
		sourceURL string
		recipeID  string
		name      string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := rows.Scan(&id, &sequence, &sourceURL, &recipeID, &name, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan import record: %w", err)
	}

	record := models.NewPersistedImport(sequence, sourceURL, recipeID, name)
	record.SetID(id)
	record.SetCreatedAt(createdAt)
	record.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		record.SetDeletedAt(&deletedAt.Time)
	}

	return record, nil
}
