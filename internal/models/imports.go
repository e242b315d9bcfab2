package models

import (
	"fmt"
	"time"
)

// PersistedImport records a completed import: which source URL produced which
// platform recipe. The cache makes re-importing a URL update the existing
// recipe instead of creating a duplicate.
type PersistedImport struct {
	id        string
	sequence  int
	sourceURL string
	recipeID  string
	name      string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewPersistedImport creates a PersistedImport pairing a source URL with a
// platform recipe. The ID is assigned by the repository on insert.
func NewPersistedImport(sequence int, sourceURL, recipeID, name string) *PersistedImport {
	now := time.Now()
	return &PersistedImport{
		sequence:  sequence,
		sourceURL: sourceURL,
		recipeID:  recipeID,
		name:      name,
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the unique identifier for this import record.
func (p *PersistedImport) ID() string { return p.id }

// Sequence returns the human-readable ordering number.
func (p *PersistedImport) Sequence() int { return p.sequence }

// SourceURL returns the URL the recipe was imported from.
func (p *PersistedImport) SourceURL() string { return p.sourceURL }

// RecipeID returns the platform's recipe identifier.
func (p *PersistedImport) RecipeID() string { return p.recipeID }

// Name returns the recipe name at the time of import.
func (p *PersistedImport) Name() string { return p.name }

// CreatedAt returns when this record was created.
func (p *PersistedImport) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt returns when this record was last updated.
func (p *PersistedImport) UpdatedAt() time.Time { return p.updatedAt }

// DeletedAt returns the soft-delete timestamp, or nil when active.
func (p *PersistedImport) DeletedAt() *time.Time { return p.deletedAt }

// SetID assigns the unique identifier for this record.
func (p *PersistedImport) SetID(id string) { p.id = id }

// SetRecipeID repoints this record at a different platform recipe.
func (p *PersistedImport) SetRecipeID(recipeID string) { p.recipeID = recipeID }

// SetName updates the cached recipe name.
func (p *PersistedImport) SetName(name string) { p.name = name }

// SetCreatedAt restores the creation timestamp when loading from storage.
func (p *PersistedImport) SetCreatedAt(t time.Time) { p.createdAt = t }

// SetUpdatedAt sets the last-modified timestamp.
func (p *PersistedImport) SetUpdatedAt(t time.Time) { p.updatedAt = t }

// SetDeletedAt marks the record as soft-deleted.
func (p *PersistedImport) SetDeletedAt(t *time.Time) { p.deletedAt = t }

// Validate checks that the record pairs a source URL with a platform recipe.
func (p *PersistedImport) Validate() error {
	if p.sourceURL == "" {
		return fmt.Errorf("import record requires a source URL")
	}
	if p.recipeID == "" {
		return fmt.Errorf("import record requires a recipe id")
	}
	return nil
}
