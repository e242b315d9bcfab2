package formatter

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Lukasvo/cookiedoo-filler/internal/annotate"
	"github.com/Lukasvo/cookiedoo-filler/internal/models"
	"github.com/Lukasvo/cookiedoo-filler/internal/tasks"
	th "github.com/Lukasvo/cookiedoo-filler/internal/testing"
)

func exportDraft() *models.RecipeDraft {
	return &models.RecipeDraft{
		Name:        "Romige tomatensoep",
		Ingredients: []string{"500 g tomaten", "1 ui"},
		Steps: []models.DraftStep{
			{Text: "Snipper de ui 5 sec/snelheid 5."},
			{Text: "Voeg de tomaten toe en kook 15 min/100°C/snelheid 1."},
		},
		TotalTime: 1500,
		PrepTime:  300,
		Yield:     4,
		SourceURL: "https://example.com/tomatensoep",
	}
}

func runResult() *tasks.BulkImportResult {
	return &tasks.BulkImportResult{
		TotalURLs:         3,
		SuccessfulImports: 1,
		FailedImports:     1,
		SkippedImports:    1,
		Results: []tasks.URLImportResult{
			{SourceURL: "https://example.com/soep", RecipeID: "r-1", Name: "Romige tomatensoep", Coverage: 1},
			{SourceURL: "https://example.com/kapot", Message: "no recipe found"},
			{SourceURL: "https://example.com/oud", RecipeID: "r-9", Name: "Oude favoriet", Skipped: true},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(runResult())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "URL,Recipe ID,Name,Status,Coverage,Error") {
			t.Errorf("CSV missing headers, got: %s", output)
		}

		if !strings.Contains(output, "r-1") {
			t.Errorf("CSV missing recipe ID")
		}
		if !strings.Contains(output, "created") {
			t.Errorf("CSV missing created status")
		}
		if !strings.Contains(output, "failed") || !strings.Contains(output, "no recipe found") {
			t.Errorf("CSV missing failure row")
		}
		if !strings.Contains(output, "skipped") {
			t.Errorf("CSV missing skipped status")
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		t.Run("without cover image", func(t *testing.T) {
			data, err := ExportToMarkdown(exportDraft(), "")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}

			output := string(data)

			if !strings.Contains(output, "# Romige tomatensoep") {
				t.Errorf("Markdown missing title")
			}
			if !strings.Contains(output, "**Source**: https://example.com/tomatensoep") {
				t.Errorf("Markdown missing source link")
			}
			if !strings.Contains(output, "**Total time**: 25m 00s") {
				t.Errorf("Markdown missing total time, got: %s", output)
			}
			if !strings.Contains(output, "**Portions**: 4") {
				t.Errorf("Markdown missing portions")
			}

			if !strings.Contains(output, "## Ingredients") {
				t.Errorf("Markdown missing ingredients section")
			}
			if !strings.Contains(output, "- 500 g tomaten") {
				t.Errorf("Markdown missing ingredient line")
			}
			if !strings.Contains(output, "## Preparation") {
				t.Errorf("Markdown missing preparation section")
			}
			if !strings.Contains(output, "1. Snipper de ui 5 sec/snelheid 5.") {
				t.Errorf("Markdown missing step with notation, got: %s", output)
			}
		})

		t.Run("with cover image", func(t *testing.T) {
			data, err := ExportToMarkdown(exportDraft(), "test_cover.jpg")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}

			if !strings.Contains(string(data), "![Cover](test_cover.jpg)") {
				t.Errorf("Markdown missing cover image reference")
			}
		})
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(exportDraft())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Recipe: Romige tomatensoep") {
			t.Errorf("Text missing recipe name")
		}
		if !strings.Contains(output, "Ingredients: 2") {
			t.Errorf("Text missing ingredient count")
		}
		if !strings.Contains(output, "- 1 ui") {
			t.Errorf("Text missing ingredient line")
		}
		if !strings.Contains(output, "2. Voeg de tomaten toe") {
			t.Errorf("Text missing step listing")
		}
	})

	t.Run("ToDraftJSON", func(t *testing.T) {
		data, err := ToDraftJSON(exportDraft())
		if err != nil {
			t.Fatalf("ToDraftJSON failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, `"Romige tomatensoep"`) {
			t.Errorf("JSON missing recipe name")
		}
		if !strings.Contains(output, `"500 g tomaten"`) {
			t.Errorf("JSON missing ingredient")
		}
	})

	t.Run("FormatCoverage", func(t *testing.T) {
		report := &annotate.Report{TotalIngredients: 2, CoveredIngredients: 2}
		if got := FormatCoverage(report); !strings.Contains(got, "100% of ingredients annotated (2/2)") {
			t.Errorf("unexpected coverage line: %s", got)
		}

		report = &annotate.Report{TotalIngredients: 4, CoveredIngredients: 2, Backfilled: 1, DroppedMentions: 2}
		got := FormatCoverage(report)
		if !strings.Contains(got, "50%") || !strings.Contains(got, "1 backfilled") || !strings.Contains(got, "2 dropped") {
			t.Errorf("unexpected coverage line: %s", got)
		}

		if got := FormatCoverage(nil); got != "" {
			t.Errorf("expected empty line for nil report, got %s", got)
		}
	})
}

func TestRenderers(t *testing.T) {
	t.Run("RenderImportResult", func(t *testing.T) {
		result := &tasks.ImportResult{
			SourceURL: "https://example.com/soep",
			RecipeID:  "r-1",
			Name:      "Romige tomatensoep",
			Report:    &annotate.Report{TotalIngredients: 2, CoveredIngredients: 2},
			Image:     &models.RecipeImage{AssetID: "asset-1"},
		}

		output := RenderImportResult(result)

		if !strings.Contains(output, "Romige tomatensoep") {
			t.Errorf("summary missing recipe name")
		}
		if !strings.Contains(output, "Created recipe r-1") {
			t.Errorf("summary missing created line, got: %s", output)
		}
		if !strings.Contains(output, "cover image asset-1 attached") {
			t.Errorf("summary missing image line")
		}
		if !strings.Contains(output, "source: https://example.com/soep") {
			t.Errorf("summary missing source line")
		}
	})

	t.Run("RenderImportResultUpdated", func(t *testing.T) {
		result := &tasks.ImportResult{
			RecipeID:   "r-9",
			Name:       "Oude favoriet",
			Updated:    true,
			ImageError: http.ErrHandlerTimeout,
		}

		output := RenderImportResult(result)

		if !strings.Contains(output, "Updated recipe r-9") {
			t.Errorf("summary missing updated line, got: %s", output)
		}
		if !strings.Contains(output, "cover image skipped") {
			t.Errorf("summary missing image warning")
		}
	})

	t.Run("RenderRunSummary", func(t *testing.T) {
		output := RenderRunSummary(runResult())

		if !strings.Contains(output, "Import run: 3 URLs") {
			t.Errorf("summary missing run header, got: %s", output)
		}
		if !strings.Contains(output, "1 imported") {
			t.Errorf("summary missing import count")
		}
		if !strings.Contains(output, "1 skipped") {
			t.Errorf("summary missing skip count")
		}
		if !strings.Contains(output, "1 failed") {
			t.Errorf("summary missing failure count")
		}
		if !strings.Contains(output, "https://example.com/kapot: no recipe found") {
			t.Errorf("summary missing failure detail")
		}
	})
}

func TestDownloadImage(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		_, err := DownloadImage("")
		if err == nil {
			t.Error("DownloadImage with empty URL should return error")
		}
	})

	t.Run("DownloadsBytes", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpeg-bytes"))
		}))
		defer server.Close()

		data, err := DownloadImage(server.URL)
		if err != nil {
			t.Fatalf("DownloadImage failed: %v", err)
		}
		if string(data) != "jpeg-bytes" {
			t.Errorf("unexpected image bytes: %q", data)
		}
	})

	t.Run("ErrorStatus", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		if _, err := DownloadImage(server.URL); err == nil {
			t.Error("DownloadImage should fail on a 404 response")
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteRunCSV", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			result := runResult()
			result.OutputDirectory = tempDir

			path, err := WriteRunCSV(result, "")
			if err != nil {
				t.Fatalf("WriteRunCSV failed: %v", err)
			}

			if path != filepath.Join(tempDir, "import_run.csv") {
				t.Errorf("Expected default CSV path, got '%s'", path)
			}
			th.AssertFileExists(t, path)

			content := th.MustReadFile(t, path)
			if !strings.Contains(content, "URL,Recipe ID,Name,Status,Coverage,Error") {
				t.Errorf("CSV missing headers")
			}
			if !strings.Contains(content, "r-1") || !strings.Contains(content, "created") {
				t.Errorf("CSV missing result data")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "run.csv")

			got, err := WriteRunCSV(runResult(), path)
			if err != nil {
				t.Fatalf("WriteRunCSV failed: %v", err)
			}

			if got != path {
				t.Errorf("Expected '%s', got '%s'", path, got)
			}
			th.AssertFileExists(t, path)
		})
	})

	t.Run("WriteImportReport", func(t *testing.T) {
		tempDir := t.TempDir()
		result := runResult()
		result.OutputDirectory = tempDir

		path, err := WriteImportReport(result, "")
		if err != nil {
			t.Fatalf("WriteImportReport failed: %v", err)
		}

		if path != filepath.Join(tempDir, "import_report.md") {
			t.Errorf("Expected default report path, got '%s'", path)
		}
		th.AssertFileExists(t, path)

		content := th.MustReadFile(t, path)
		if !strings.Contains(content, "# Import run") {
			t.Errorf("Report missing title")
		}
		if !strings.Contains(content, "**Imported**: 1") {
			t.Errorf("Report missing import count")
		}
		if !strings.Contains(content, "Romige tomatensoep (r-1, created) - 100% annotated") {
			t.Errorf("Report missing success line, got: %s", content)
		}
		if !strings.Contains(content, "failed: no recipe found") {
			t.Errorf("Report missing failure line")
		}
		if !strings.Contains(content, "skipped (already imported as r-9)") {
			t.Errorf("Report missing skip line")
		}
	})

	t.Run("WriteRecipeExport", func(t *testing.T) {
		t.Run("WithDefaultDirectory", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteRecipeExport(exportDraft(), "", "")
			if err != nil {
				t.Fatalf("WriteRecipeExport failed: %v", err)
			}

			if result.Directory != "romige-tomatensoep" {
				t.Errorf("Expected directory 'romige-tomatensoep', got '%s'", result.Directory)
			}
			th.AssertDirExists(t, result.Directory)

			readmePath := filepath.Join(result.Directory, "README.md")
			th.AssertFileExists(t, readmePath)

			content := th.MustReadFile(t, readmePath)
			if !strings.Contains(content, "# Romige tomatensoep") {
				t.Errorf("Markdown missing title")
			}
			if !strings.Contains(content, "- 500 g tomaten") {
				t.Errorf("Markdown missing ingredient listing")
			}

			if result.CoverImage != "" {
				t.Errorf("Expected no cover image, got '%s'", result.CoverImage)
			}
		})

		t.Run("WithCustomDirectory", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteRecipeExport(exportDraft(), "custom_recipe", "")
			if err != nil {
				t.Fatalf("WriteRecipeExport failed: %v", err)
			}

			if result.Directory != "custom_recipe" {
				t.Errorf("Expected directory 'custom_recipe', got '%s'", result.Directory)
			}
			th.AssertDirExists(t, result.Directory)
			th.AssertFileExists(t, filepath.Join(result.Directory, "README.md"))
		})

		t.Run("WithCoverImage", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("jpeg-bytes"))
			}))
			defer server.Close()

			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteRecipeExport(exportDraft(), "", server.URL)
			if err != nil {
				t.Fatalf("WriteRecipeExport failed: %v", err)
			}

			if result.CoverImage != filepath.Join(result.Directory, "cover.jpg") {
				t.Errorf("Expected a saved cover image, got '%s'", result.CoverImage)
			}
			th.AssertFileExists(t, result.CoverImage)

			content := th.MustReadFile(t, filepath.Join(result.Directory, "README.md"))
			if !strings.Contains(content, "![Cover](cover.jpg)") {
				t.Errorf("Markdown missing cover image reference")
			}
		})
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			path, err := WriteTextExport(exportDraft(), "")
			if err != nil {
				t.Fatalf("WriteTextExport failed: %v", err)
			}

			if path != "romige-tomatensoep_recipe.txt" {
				t.Errorf("Expected 'romige-tomatensoep_recipe.txt', got '%s'", path)
			}
			th.AssertFileExists(t, path)

			content := th.MustReadFile(t, path)
			if !strings.Contains(content, "Recipe: Romige tomatensoep") {
				t.Errorf("Text missing recipe name")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			path, err := WriteTextExport(exportDraft(), "my_recipe.txt")
			if err != nil {
				t.Fatalf("WriteTextExport failed: %v", err)
			}

			if path != "my_recipe.txt" {
				t.Errorf("Expected 'my_recipe.txt', got '%s'", path)
			}
			th.AssertFileExists(t, path)
		})
	})
}
