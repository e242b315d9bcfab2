// package formatter renders import outcomes for the terminal and exports recipes to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Lukasvo/cookiedoo-filler/internal/annotate"
	"github.com/Lukasvo/cookiedoo-filler/internal/models"
	"github.com/Lukasvo/cookiedoo-filler/internal/shared"
	"github.com/Lukasvo/cookiedoo-filler/internal/tasks"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// FormatCoverage renders an annotation report as a one-line summary.
func FormatCoverage(report *annotate.Report) string {
	if report == nil {
		return ""
	}
	parts := []string{fmt.Sprintf("%.0f%% of ingredients annotated (%d/%d)",
		report.Coverage()*100, report.CoveredIngredients, report.TotalIngredients)}
	if report.Backfilled > 0 {
		parts = append(parts, fmt.Sprintf("%d backfilled", report.Backfilled))
	}
	if report.Dropped() > 0 {
		parts = append(parts, fmt.Sprintf("%d dropped", report.Dropped()))
	}
	return strings.Join(parts, ", ")
}

// RenderImportResult renders a styled terminal summary of a single import.
func RenderImportResult(result *tasks.ImportResult) string {
	var buf bytes.Buffer

	verb := "Created"
	if result.Updated {
		verb = "Updated"
	}
	buf.WriteString(styles.title.Render(result.Name) + "\n")
	buf.WriteString(styles.ok.Render(fmt.Sprintf("✓ %s recipe %s", verb, result.RecipeID)) + "\n")

	if coverage := FormatCoverage(result.Report); coverage != "" {
		buf.WriteString("  " + coverage + "\n")
	}
	switch {
	case result.ImageError != nil:
		buf.WriteString(styles.warn.Render(fmt.Sprintf("  cover image skipped: %v", result.ImageError)) + "\n")
	case result.Image != nil:
		buf.WriteString(styles.help.Render(fmt.Sprintf("  cover image %s attached", result.Image.AssetID)) + "\n")
	}
	buf.WriteString(styles.help.Render("  source: "+result.SourceURL) + "\n")

	return buf.String()
}

// RenderRunSummary renders a styled terminal summary of a bulk import run.
func RenderRunSummary(result *tasks.BulkImportResult) string {
	var buf bytes.Buffer

	buf.WriteString(styles.title.Render(fmt.Sprintf("Import run: %d URLs", result.TotalURLs)) + "\n")
	buf.WriteString(styles.ok.Render(fmt.Sprintf("✓ %d imported", result.SuccessfulImports)) + "\n")
	if result.SkippedImports > 0 {
		buf.WriteString(styles.warn.Render(fmt.Sprintf("- %d skipped", result.SkippedImports)) + "\n")
	}
	if result.FailedImports > 0 {
		buf.WriteString(styles.err.Render(fmt.Sprintf("✗ %d failed", result.FailedImports)) + "\n")
		for _, r := range result.Results {
			if r.Error == nil && r.Message == "" {
				continue
			}
			buf.WriteString(styles.help.Render(fmt.Sprintf("    %s: %s", r.SourceURL, r.Message)) + "\n")
		}
	}
	if result.ManifestPath != "" {
		buf.WriteString(styles.help.Render("manifest: "+result.ManifestPath) + "\n")
	}

	return buf.String()
}

// ExportToCSV converts a bulk run result to CSV format with columns: URL, Recipe ID, Name, Status, Coverage, Error
func ExportToCSV(result *tasks.BulkImportResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"URL", "Recipe ID", "Name", "Status", "Coverage", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range result.Results {
		record := []string{
			r.SourceURL,
			r.RecipeID,
			r.Name,
			resultStatus(r),
			fmt.Sprintf("%.2f", r.Coverage),
			r.Message,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a recipe draft to Markdown format with optional cover image
func ExportToMarkdown(draft *models.RecipeDraft, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", draft.Name))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	if draft.SourceURL != "" {
		buf.WriteString(fmt.Sprintf("**Source**: %s\n\n", draft.SourceURL))
	}
	if draft.TotalTime > 0 {
		buf.WriteString(fmt.Sprintf("**Total time**: %s\n", shared.FormatDuration(draft.TotalTime)))
	}
	if draft.PrepTime > 0 {
		buf.WriteString(fmt.Sprintf("**Prep time**: %s\n", shared.FormatDuration(draft.PrepTime)))
	}
	if draft.Yield > 0 {
		buf.WriteString(fmt.Sprintf("**Portions**: %d\n", draft.Yield))
	}
	buf.WriteString("\n")

	buf.WriteString("## Ingredients\n\n")
	for _, ingredient := range draft.Ingredients {
		buf.WriteString(fmt.Sprintf("- %s\n", ingredient))
	}

	buf.WriteString("\n## Preparation\n\n")
	for i, step := range draft.Steps {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, step.Text))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a recipe draft to plain text format
func ExportToText(draft *models.RecipeDraft) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Recipe: %s\n", draft.Name))
	if draft.SourceURL != "" {
		buf.WriteString(fmt.Sprintf("Source: %s\n", draft.SourceURL))
	}
	buf.WriteString(fmt.Sprintf("Ingredients: %d\n\n", len(draft.Ingredients)))

	for _, ingredient := range draft.Ingredients {
		buf.WriteString(fmt.Sprintf("- %s\n", ingredient))
	}
	buf.WriteString("\n")
	for i, step := range draft.Steps {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, step.Text))
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToDraftJSON generates a JSON representation of a translated recipe draft
func ToDraftJSON(draft *models.RecipeDraft) ([]byte, error) {
	return shared.MarshalJSON(draft, true)
}

// WriteRunCSV writes a bulk run result as a CSV file.
//
// Defaults to {result.OutputDirectory}/import_run.csv as the filename.
func WriteRunCSV(result *tasks.BulkImportResult, path string) (string, error) {
	if path == "" {
		path = filepath.Join(result.OutputDirectory, "import_run.csv")
	}

	csvData, err := ExportToCSV(result)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(path, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return path, nil
}

// WriteImportReport writes a human-readable Markdown report of a bulk run.
//
// Defaults to {result.OutputDirectory}/import_report.md, next to the JSON manifest.
func WriteImportReport(result *tasks.BulkImportResult, path string) (string, error) {
	if path == "" {
		path = filepath.Join(result.OutputDirectory, "import_report.md")
	}

	var buf bytes.Buffer
	buf.WriteString("# Import run\n\n")
	buf.WriteString(fmt.Sprintf("**Imported**: %d\n", result.SuccessfulImports))
	buf.WriteString(fmt.Sprintf("**Skipped**: %d\n", result.SkippedImports))
	buf.WriteString(fmt.Sprintf("**Failed**: %d\n", result.FailedImports))
	buf.WriteString(fmt.Sprintf("**Total**: %d\n\n", result.TotalURLs))

	buf.WriteString("## Recipes\n\n")
	for i, r := range result.Results {
		switch {
		case r.Skipped:
			buf.WriteString(fmt.Sprintf("%d. %s - skipped (already imported as %s)\n", i+1, r.SourceURL, r.RecipeID))
		case r.Error != nil || r.Message != "":
			buf.WriteString(fmt.Sprintf("%d. %s - failed: %s\n", i+1, r.SourceURL, r.Message))
		default:
			verb := "created"
			if r.Updated {
				verb = "updated"
			}
			buf.WriteString(fmt.Sprintf("%d. %s (%s, %s) - %.0f%% annotated\n", i+1, r.Name, r.RecipeID, verb, r.Coverage*100))
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return path, nil
}

// RecipeExportResult contains information about files created by WriteRecipeExport
type RecipeExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteRecipeExport exports a recipe draft to Markdown format in a dedicated directory.
//
// Directory name defaults to a slug of the recipe name.
// The imageURL parameter is optional - if provided, attempts to download the cover image.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteRecipeExport(draft *models.RecipeDraft, outputDir string, imageURL string) (*RecipeExportResult, error) {
	if outputDir == "" {
		outputDir = slug(draft.Name)
	}
	if outputDir == "" {
		outputDir = "recipe"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &RecipeExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(draft, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a recipe draft to plain text format.
//
// Defaults to {slug}_recipe.txt as the filename.
func WriteTextExport(draft *models.RecipeDraft, path string) (string, error) {
	if path == "" {
		base := slug(draft.Name)
		if base == "" {
			base = "recipe"
		}
		path = fmt.Sprintf("%s_recipe.txt", base)
	}

	textData, err := ExportToText(draft)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

func resultStatus(r tasks.URLImportResult) string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Error != nil || r.Message != "":
		return "failed"
	case r.Updated:
		return "updated"
	default:
		return "created"
	}
}

// slug converts a recipe name to a filesystem-friendly base name.
func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteRune('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
