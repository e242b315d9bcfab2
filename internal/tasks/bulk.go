package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/Lukasvo/cookiedoo-filler/internal/shared"
)

// BulkImportOpts contains configuration for bulk recipe imports.
type BulkImportOpts struct {
	RateLimit    float64 // Imports per second (default: 0.5)
	OutputDir    string  // Manifest directory (default: import_run_{epoch})
	SkipExisting bool    // Skip URLs already present in the import cache
}

// URLImportResult captures the outcome of importing one URL in a bulk run.
// Failure reasons are mirrored into Message so the manifest stays readable
// after a JSON round-trip.
type URLImportResult struct {
	SourceURL string  `json:"sourceUrl"`
	RecipeID  string  `json:"recipeId,omitempty"`
	Name      string  `json:"name,omitempty"`
	Updated   bool    `json:"updated,omitempty"`
	Skipped   bool    `json:"skipped,omitempty"`
	Coverage  float64 `json:"coverage"`
	Error     error   `json:"-"`
	Message   string  `json:"error,omitempty"`
}

// BulkImportResult contains all data from a bulk import run.
type BulkImportResult struct {
	TotalURLs         int               `json:"totalUrls"`
	SuccessfulImports int               `json:"successfulImports"`
	FailedImports     int               `json:"failedImports"`
	SkippedImports    int               `json:"skippedImports"`
	OutputDirectory   string            `json:"outputDirectory"`
	ManifestPath      string            `json:"-"`
	Results           []URLImportResult `json:"results"`
}

// BulkImport imports multiple source URLs sequentially with rate limiting and
// progress tracking.
//
// The platform rides on a single session cookie jar, so imports run one at a
// time and the limiter paces recipe creation. Per-URL failures are collected
// in the result instead of aborting the run, and a manifest file summarizing
// the run is written to the output directory.
func (e *ImportEngine) BulkImport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	urls []string,
	opts BulkImportOpts,
) (*BulkImportResult, error) {
	if e.scraper == nil || e.translator == nil || e.api == nil {
		return nil, fmt.Errorf("%w: import engine not fully initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("import_run_%d", time.Now().Unix())
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 0.5
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkImportResult{
		TotalURLs:       len(urls),
		OutputDirectory: opts.OutputDir,
		Results:         make([]URLImportResult, 0, len(urls)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	for i, pageURL := range urls {
		if opts.SkipExisting && e.store != nil {
			if cached, err := e.store.GetBySourceURL(pageURL); err == nil {
				result.SkippedImports++
				result.Results = append(result.Results, URLImportResult{
					SourceURL: pageURL,
					RecipeID:  cached.RecipeID(),
					Name:      cached.Name(),
					Skipped:   true,
				})
				e.sendProgress(prog, importURLSkippedUpdate(i+1, len(urls), pageURL))
				continue
			} else if !errors.Is(err, shared.ErrNotFound) {
				return result, fmt.Errorf("failed to check import cache: %w", err)
			}
		}

		if err := limiter.Wait(ctx); err != nil {
			return result, err
		}

		e.sendProgress(prog, importingURLUpdate(i+1, len(urls), pageURL))

		res, err := e.ImportOne(ctx, nil, pageURL)
		if err != nil {
			result.FailedImports++
			result.Results = append(result.Results, URLImportResult{
				SourceURL: pageURL,
				Error:     err,
				Message:   err.Error(),
			})
			e.sendProgress(prog, importURLFailedUpdate(i+1, len(urls), pageURL, err))
			continue
		}

		result.SuccessfulImports++
		result.Results = append(result.Results, URLImportResult{
			SourceURL: pageURL,
			RecipeID:  res.RecipeID,
			Name:      res.Name,
			Updated:   res.Updated,
			Coverage:  res.Report.Coverage(),
		})
		e.sendProgress(prog, importURLCompletedUpdate(i+1, len(urls), res.Name, res.Report.Coverage()))
	}

	manifestPath := filepath.Join(opts.OutputDir, "import_manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("import completed but failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("import completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	return result, nil
}
