// package tasks implements recipe import operations against the recipe platform.
//
// The core abstraction is ImportEngine, which orchestrates scraping, translation,
// annotation reconciliation and platform writes. Operations emit progress updates
// via channels for non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lukasvo/cookiedoo-filler/internal/annotate"
	"github.com/Lukasvo/cookiedoo-filler/internal/models"
	"github.com/Lukasvo/cookiedoo-filler/internal/shared"
)

// totalImportSteps is the step count reported for a single-URL import.
const totalImportSteps = 7

// PageScraper extracts a source recipe from a web page.
type PageScraper interface {
	Scrape(ctx context.Context, pageURL string) (*models.SourceRecipe, error)
}

// Translator converts a source recipe into an appliance-notation draft.
type Translator interface {
	Translate(ctx context.Context, source *models.SourceRecipe) (*models.RecipeDraft, error)
}

// SessionSource performs the platform login handshake and yields credentials.
type SessionSource interface {
	Authenticate(ctx context.Context) (*models.SessionCredential, error)
}

// RecipeAPI is the slice of the platform client the engine depends on.
// This abstraction allows for easier testing and decoupling from concrete implementation.
type RecipeAPI interface {
	SetCredential(cred *models.SessionCredential)
	Authenticated() bool
	CreateRecipe(ctx context.Context, name string) (string, error)
	UpdateRecipe(ctx context.Context, id string, patch *models.RecipePatch) (*models.RecipeRecord, error)
	DeleteRecipe(ctx context.Context, id string) error
	RecipeExists(ctx context.Context, id string) (bool, error)
}

// ImageAttacher downloads a cover image and uploads it to the platform's asset host.
type ImageAttacher interface {
	Attach(ctx context.Context, imageURL string) (*models.RecipeImage, error)
}

// ImportStore caches source URL to recipe pairings between runs.
type ImportStore interface {
	GetBySourceURL(sourceURL string) (*models.PersistedImport, error)
	Record(sourceURL, recipeID, name string) (*models.PersistedImport, error)
}

// ImportResult contains all data from importing a single source URL.
type ImportResult struct {
	SourceURL  string               // Page the recipe was scraped from
	RecipeID   string               // Platform recipe ID the content was written to
	Name       string               // Recipe name after translation
	Updated    bool                 // True when an existing recipe was refreshed instead of created
	Record     *models.RecipeRecord // Platform record returned by the content patch
	Report     *annotate.Report     // Annotation reconciliation outcome
	Image      *models.RecipeImage  // Uploaded cover image, nil when skipped or failed
	ImageError error                // Non-fatal cover image failure
}

// ImportEngine orchestrates recipe imports into the platform.
// Contains dependencies on the scraper, translator, session negotiator and platform client.
type ImportEngine struct {
	scraper    PageScraper
	translator Translator
	session    SessionSource
	api        RecipeAPI
	images     ImageAttacher
	store      ImportStore
}

// NewImportEngine creates a new ImportEngine with the provided collaborators.
// The image attacher and store are optional: a nil attacher skips cover
// images, a nil store disables re-import detection.
func NewImportEngine(scraper PageScraper, translator Translator, session SessionSource, api RecipeAPI, images ImageAttacher, store ImportStore) *ImportEngine {
	return &ImportEngine{
		scraper:    scraper,
		translator: translator,
		session:    session,
		api:        api,
		images:     images,
		store:      store,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ImportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// ImportOne imports a single source URL: scrape, translate, reconcile
// annotations, then create or update the platform recipe. A URL that was
// imported before and whose recipe still exists is updated in place.
func (e *ImportEngine) ImportOne(ctx context.Context, progress chan<- ProgressUpdate, pageURL string) (*ImportResult, error) {
	if e.scraper == nil || e.translator == nil || e.api == nil {
		return nil, fmt.Errorf("%w: import engine not fully initialized", shared.ErrServiceUnavailable)
	}

	result := &ImportResult{SourceURL: pageURL}

	e.sendProgress(progress, scrapeUpdate(1, totalImportSteps, pageURL))
	source, err := e.scraper.Scrape(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, translateUpdate(2, totalImportSteps, source.Name))
	draft, err := e.translator.Translate(ctx, source)
	if err != nil {
		return nil, err
	}
	result.Name = draft.Name

	e.sendProgress(progress, resolveUpdate(3, totalImportSteps))
	patch, report := annotate.Reconcile(draft)
	result.Report = report

	e.sendProgress(progress, sessionUpdate(4, totalImportSteps))
	if err := e.ensureSession(ctx); err != nil {
		return nil, err
	}

	recipeID, updated, err := e.targetRecipe(ctx, progress, pageURL, draft.Name)
	if err != nil {
		return nil, err
	}
	result.RecipeID = recipeID
	result.Updated = updated

	if e.store != nil {
		// Cache failures never fail the import; the worst case is a duplicate
		// recipe on the next run.
		_, _ = e.store.Record(pageURL, recipeID, draft.Name)
	}

	if source.ImageURL != "" && e.images != nil {
		e.sendProgress(progress, imageUpdate(6, totalImportSteps))
		image, imgErr := e.images.Attach(ctx, source.ImageURL)
		if imgErr != nil {
			result.ImageError = imgErr
		} else {
			result.Image = image
			patch.Image = image
		}
	}

	e.sendProgress(progress, patchUpdate(7, totalImportSteps, recipeID))
	record, err := e.api.UpdateRecipe(ctx, recipeID, patch)
	if err != nil {
		return result, err
	}
	result.Record = record

	e.sendProgress(progress, importedUpdate(totalImportSteps, totalImportSteps, result))
	return result, nil
}

// ensureSession negotiates a platform session when the client has none.
func (e *ImportEngine) ensureSession(ctx context.Context) error {
	if e.api.Authenticated() {
		return nil
	}
	if e.session == nil {
		return fmt.Errorf("%w: no session negotiator configured", shared.ErrMissingCredentials)
	}

	cred, err := e.session.Authenticate(ctx)
	if err != nil {
		return err
	}
	e.api.SetCredential(cred)
	return nil
}

// targetRecipe decides which platform recipe an import writes to. A cached
// pairing whose recipe still exists on the platform is reused; anything else
// gets a fresh recipe created under the draft's name.
func (e *ImportEngine) targetRecipe(ctx context.Context, progress chan<- ProgressUpdate, pageURL, name string) (string, bool, error) {
	if e.store != nil {
		cached, err := e.store.GetBySourceURL(pageURL)
		if err == nil {
			exists, existsErr := e.api.RecipeExists(ctx, cached.RecipeID())
			if existsErr != nil {
				return "", false, existsErr
			}
			if exists {
				e.sendProgress(progress, reuseUpdate(5, totalImportSteps, cached.RecipeID()))
				return cached.RecipeID(), true, nil
			}
		} else if !errors.Is(err, shared.ErrNotFound) {
			return "", false, fmt.Errorf("failed to check import cache: %w", err)
		}
	}

	e.sendProgress(progress, createUpdate(5, totalImportSteps, name))
	id, err := e.api.CreateRecipe(ctx, name)
	if err != nil {
		return "", false, err
	}
	return id, false, nil
}
