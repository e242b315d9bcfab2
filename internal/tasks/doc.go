// Package tasks orchestrates recipe imports into the recipe platform with real-time progress reporting.
//
// # Core Operations
//
// The [ImportEngine] drives two operations:
//
//  1. [ImportEngine.ImportOne] : Full import of a single recipe URL
//     - Scrapes the source page into a structured recipe
//     - Translates it to appliance notation via the configured [Translator]
//     - Resolves annotation positions against the rewritten step texts
//     - Creates or updates the platform recipe and uploads the cover image
//
//  2. [ImportEngine.BulkImport] : Sequential import of many URLs
//     - Rate limits platform traffic and continues past per-URL failures
//     - Writes an import_manifest.json summarizing the run
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Import Caching
//
// The optional [ImportStore] interface pairs source URLs with platform recipes between runs.
//
// Pairings are cached silently (errors ignored) to avoid disrupting imports. A cache hit turns
// a re-import into an update of the existing recipe instead of a duplicate, provided the recipe
// still exists on the platform.
//
// # Implementation
//
// [ImportEngine] depends on:
//   - [PageScraper] : Recipe page extraction (scrape.Scraper)
//   - [Translator] : Draft generation (translate.GeminiTranslator)
//   - [SessionSource] : Cookie handshake (services.SessionNegotiator)
//   - [RecipeAPI] : Platform recipe endpoints (services.CookidooClient)
//   - [ImageAttacher] : Cover image pipeline (services.ImagePipeline)
//   - [ImportStore] : Optional persistence layer (repositories.ImportRepository)
package tasks
