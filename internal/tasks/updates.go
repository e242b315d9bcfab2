package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ScrapePage Phase = iota
	TranslateRecipe
	ResolveAnnotations
	NegotiateSession
	CreateRecipe
	UploadImage
	PatchRecipe
	ImportURL
)

func (p Phase) String() string {
	switch p {
	case ScrapePage:
		return "scrape_page"
	case TranslateRecipe:
		return "translate_recipe"
	case ResolveAnnotations:
		return "resolve_annotations"
	case NegotiateSession:
		return "negotiate_session"
	case CreateRecipe:
		return "create_recipe"
	case UploadImage:
		return "upload_image"
	case PatchRecipe:
		return "patch_recipe"
	case ImportURL:
		return "import_url"
	default:
		return ""
	}
}

func scrapeUpdate(step, total int, pageURL string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScrapePage,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Scraping %s...", pageURL),
	}
}

func translateUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TranslateRecipe,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Translating %q to appliance notation...", name),
	}
}

func resolveUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveAnnotations,
		Step:    step,
		Total:   total,
		Message: "Resolving annotation positions...",
	}
}

func sessionUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   NegotiateSession,
		Step:    step,
		Total:   total,
		Message: "Negotiating platform session...",
	}
}

func createUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateRecipe,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Creating recipe %q...", name),
	}
}

func reuseUpdate(step, total int, recipeID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateRecipe,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Reusing existing recipe %s...", recipeID),
	}
}

func imageUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadImage,
		Step:    step,
		Total:   total,
		Message: "Uploading cover image...",
	}
}

func patchUpdate(step, total int, recipeID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PatchRecipe,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Writing recipe content (%s)...", recipeID),
	}
}

func importedUpdate(step, total int, result *ImportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PatchRecipe,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Imported: %s (ID: %s)", result.Name, result.RecipeID),
		Data:    result,
	}
}

func importingURLUpdate(step, total int, pageURL string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportURL,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Importing: %s...", step, total, pageURL),
	}
}

func importURLCompletedUpdate(step, total int, name string, coverage float64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportURL,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (coverage %.0f%%)", step, total, name, coverage*100),
	}
}

func importURLSkippedUpdate(step, total int, pageURL string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportURL,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Skipped %s (already imported)", step, total, pageURL),
	}
}

func importURLFailedUpdate(step, total int, pageURL string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportURL,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, pageURL, err),
	}
}
