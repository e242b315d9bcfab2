package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/Lukasvo/cookiedoo-filler/internal/models"
	"github.com/Lukasvo/cookiedoo-filler/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestImportRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewImportRepository(db)
		record := models.NewPersistedImport(0, "https://example.com/pasta", "r-1", "Pasta")

		err := repo.Create(record)
		if err != nil {
			t.Fatalf("failed to create import record: %v", err)
		}

		if record.ID() == "" {
			t.Error("record ID should be set after creation")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewImportRepository(db)
		record := models.NewPersistedImport(0, "https://example.com/pasta", "r-1", "Pasta")

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create import record: %v", err)
		}

		retrieved, err := repo.Get(record.ID())
		if err != nil {
			t.Fatalf("failed to get import record: %v", err)
		}

		if retrieved.SourceURL() != record.SourceURL() {
			t.Errorf("expected source url %s, got %s", record.SourceURL(), retrieved.SourceURL())
		}
		if retrieved.RecipeID() != "r-1" {
			t.Errorf("expected recipe id r-1, got %s", retrieved.RecipeID())
		}
		if retrieved.Name() != "Pasta" {
			t.Errorf("expected name Pasta, got %s", retrieved.Name())
		}
	})

	t.Run("GetBySourceURL", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewImportRepository(db)
		record := models.NewPersistedImport(0, "https://example.com/soep", "r-2", "Soep")

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create import record: %v", err)
		}

		retrieved, err := repo.GetBySourceURL("https://example.com/soep")
		if err != nil {
			t.Fatalf("failed to get import record by url: %v", err)
		}
		if retrieved.RecipeID() != "r-2" {
			t.Errorf("expected recipe id r-2, got %s", retrieved.RecipeID())
		}

		_, err = repo.GetBySourceURL("https://example.com/unknown")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound for unknown url, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewImportRepository(db)
		record := models.NewPersistedImport(0, "https://example.com/pasta", "r-1", "Pasta")

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create import record: %v", err)
		}

		record.SetRecipeID("r-9")
		record.SetName("Pasta Deluxe")
		if err := repo.Update(record); err != nil {
			t.Fatalf("failed to update import record: %v", err)
		}

		retrieved, err := repo.Get(record.ID())
		if err != nil {
			t.Fatalf("failed to get import record: %v", err)
		}
		if retrieved.RecipeID() != "r-9" {
			t.Errorf("expected updated recipe id r-9, got %s", retrieved.RecipeID())
		}
		if retrieved.Name() != "Pasta Deluxe" {
			t.Errorf("expected updated name, got %s", retrieved.Name())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewImportRepository(db)
		record := models.NewPersistedImport(0, "https://example.com/pasta", "r-1", "Pasta")

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create import record: %v", err)
		}

		if err := repo.Delete(record.ID()); err != nil {
			t.Fatalf("failed to delete import record: %v", err)
		}

		_, err := repo.Get(record.ID())
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("DeleteBySourceURL", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewImportRepository(db)
		record := models.NewPersistedImport(0, "https://example.com/pasta", "r-1", "Pasta")

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create import record: %v", err)
		}

		if err := repo.DeleteBySourceURL("https://example.com/pasta"); err != nil {
			t.Fatalf("failed to delete by source url: %v", err)
		}

		_, err := repo.GetBySourceURL("https://example.com/pasta")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}

		err = repo.DeleteBySourceURL("https://example.com/pasta")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound for second delete, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewImportRepository(db)
		urls := []string{
			"https://example.com/een",
			"https://example.com/twee",
			"https://example.com/drie",
		}
		for i, url := range urls {
			record := models.NewPersistedImport(0, url, "r-1", "Recept")
			if i == 2 {
				record = models.NewPersistedImport(0, url, "r-2", "Recept")
			}
			if err := repo.Create(record); err != nil {
				t.Fatalf("failed to create import record: %v", err)
			}
		}

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list import records: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 records, got %d", len(all))
		}
		for i, url := range urls {
			if all[i].SourceURL() != url {
				t.Errorf("expected record %d to be %s, got %s", i, url, all[i].SourceURL())
			}
		}

		filtered, err := repo.List(map[string]any{"recipe_id": "r-2"})
		if err != nil {
			t.Fatalf("failed to list filtered records: %v", err)
		}
		if len(filtered) != 1 || filtered[0].SourceURL() != urls[2] {
			t.Errorf("expected only the r-2 record, got %d records", len(filtered))
		}
	})

	t.Run("Record Upserts", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewImportRepository(db)

		first, err := repo.Record("https://example.com/pasta", "r-1", "Pasta")
		if err != nil {
			t.Fatalf("failed to record import: %v", err)
		}
		if first.ID() == "" {
			t.Error("record ID should be set after recording")
		}

		second, err := repo.Record("https://example.com/pasta", "r-7", "Pasta v2")
		if err != nil {
			t.Fatalf("failed to re-record import: %v", err)
		}

		if second.ID() != first.ID() {
			t.Errorf("expected re-record to reuse record %s, got %s", first.ID(), second.ID())
		}

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list import records: %v", err)
		}
		if len(all) != 1 {
			t.Fatalf("expected a single record after upsert, got %d", len(all))
		}
		if all[0].RecipeID() != "r-7" || all[0].Name() != "Pasta v2" {
			t.Errorf("expected updated pairing, got %s %s", all[0].RecipeID(), all[0].Name())
		}
	})

	t.Run("Unique Source URL", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewImportRepository(db)
		record := models.NewPersistedImport(0, "https://example.com/pasta", "r-1", "Pasta")
		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create import record: %v", err)
		}

		duplicate := models.NewPersistedImport(0, "https://example.com/pasta", "r-2", "Pasta")
		if err := repo.Create(duplicate); err == nil {
			t.Error("expected an error for a duplicate source url")
		}
	})

	t.Run("Reimport After Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewImportRepository(db)
		record := models.NewPersistedImport(0, "https://example.com/pasta", "r-1", "Pasta")
		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create import record: %v", err)
		}

		if err := repo.DeleteBySourceURL("https://example.com/pasta"); err != nil {
			t.Fatalf("failed to delete by source url: %v", err)
		}

		fresh := models.NewPersistedImport(0, "https://example.com/pasta", "r-2", "Pasta")
		if err := repo.Create(fresh); err != nil {
			t.Fatalf("expected re-import to insert after soft delete: %v", err)
		}

		retrieved, err := repo.GetBySourceURL("https://example.com/pasta")
		if err != nil {
			t.Fatalf("failed to get re-imported record: %v", err)
		}
		if retrieved.RecipeID() != "r-2" {
			t.Errorf("expected the fresh pairing r-2, got %s", retrieved.RecipeID())
		}
	})
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	first, err := NextSequence(db, "imports")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}
	second, err := NextSequence(db, "imports")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}

	if second != first+1 {
		t.Errorf("expected sequence to increment from %d, got %d", first, second)
	}
}
