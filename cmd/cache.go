package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
)

// cachedImportView is the wire shape for cache list --json output. The
// persisted model keeps its fields unexported, so the view re-exposes them.
type cachedImportView struct {
	Sequence  int    `json:"sequence"`
	SourceURL string `json:"sourceUrl"`
	RecipeID  string `json:"recipeId"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

// CacheList prints the URL to recipe pairings recorded by previous imports.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	r.configure(cmd)

	store, err := r.ensureStore()
	if err != nil {
		return err
	}

	records, err := store.List(map[string]any{})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		views := make([]cachedImportView, 0, len(records))
		for _, record := range records {
			views = append(views, cachedImportView{
				Sequence:  record.Sequence(),
				SourceURL: record.SourceURL(),
				RecipeID:  record.RecipeID(),
				Name:      record.Name(),
				CreatedAt: record.CreatedAt().Format(time.RFC3339),
			})
		}
		return r.writeJSON(views, cmd.Bool("pretty"))
	}

	if len(records) == 0 {
		r.writePlain("No imports cached.\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Cached Imports (%d)", len(records)))
	for _, record := range records {
		r.writePlain("%3d. %s → %s\n", record.Sequence(), record.Name(), record.RecipeID())
		r.writePlain("     %s\n", record.SourceURL())
	}
	return nil
}

// CacheForget drops a cached import so its URL imports fresh next time.
func (r *Runner) CacheForget(ctx context.Context, cmd *cli.Command) error {
	r.configure(cmd)

	sourceURL := cmd.String("url")

	store, err := r.ensureStore()
	if err != nil {
		return err
	}

	if err := store.DeleteBySourceURL(sourceURL); err != nil {
		return err
	}

	r.logger.Info("cache entry removed", "url", sourceURL)
	r.writePlain("✓ Forgot %s\n", sourceURL)
	return nil
}
