package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/Lukasvo/cookiedoo-filler/internal/formatter"
	"github.com/Lukasvo/cookiedoo-filler/internal/models"
	"github.com/Lukasvo/cookiedoo-filler/internal/shared"
	"github.com/Lukasvo/cookiedoo-filler/internal/tasks"
)

// importResultView is the wire shape for --json output. ImageError is
// mirrored into a string so the failure survives marshaling.
type importResultView struct {
	SourceURL  string               `json:"sourceUrl"`
	RecipeID   string               `json:"recipeId"`
	Name       string               `json:"name"`
	Updated    bool                 `json:"updated"`
	Coverage   float64              `json:"coverage"`
	Image      *models.RecipeImage  `json:"image,omitempty"`
	Record     *models.RecipeRecord `json:"record,omitempty"`
	ImageError string               `json:"imageError,omitempty"`
}

func viewOf(result *tasks.ImportResult) importResultView {
	view := importResultView{
		SourceURL: result.SourceURL,
		RecipeID:  result.RecipeID,
		Name:      result.Name,
		Updated:   result.Updated,
		Coverage:  result.Report.Coverage(),
		Image:     result.Image,
		Record:    result.Record,
	}
	if result.ImageError != nil {
		view.ImageError = result.ImageError.Error()
	}
	return view
}

// ImportURL imports a single recipe page into the platform.
func (r *Runner) ImportURL(ctx context.Context, cmd *cli.Command) error {
	r.configure(cmd)

	pageURL := cmd.StringArg("url")
	if pageURL == "" {
		return fmt.Errorf("%w: recipe URL is required", shared.ErrMissingArgument)
	}

	if err := r.applyCurlSession(cmd); err != nil {
		return err
	}

	engine, err := r.ensureEngine(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("starting import", "url", pageURL)
	r.writePlain("Importing %s\n\n", pageURL)

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan tasks.ProgressUpdate, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.ScrapePage:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.TranslateRecipe:
				r.writePlain("🔄 %s\n", update.Message)
			case tasks.NegotiateSession:
				r.writePlain("🔐 %s\n", update.Message)
			case tasks.CreateRecipe:
				r.writePlain("📝 %s\n", update.Message)
			case tasks.UploadImage:
				r.writePlain("📤 %s\n", update.Message)
			case tasks.PatchRecipe:
				r.writePlain("💾 %s\n", update.Message)
			default:
				r.logger.Debug(update.Message, "phase", update.Phase)
			}
		}
	}()

	// Run the engine operation
	result, err := engine.ImportOne(ctx, progressCh, pageURL)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if cmd.Bool("open") && result.RecipeID != "" {
		recipeURL := fmt.Sprintf("%s/created-recipes/%s/%s",
			strings.TrimRight(r.config.Platform.BaseURL, "/"), r.config.Platform.Locale, result.RecipeID)
		if err := shared.OpenBrowser(recipeURL); err != nil {
			r.logger.Warn("failed to open browser", "url", recipeURL, "error", err)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(viewOf(result), cmd.Bool("pretty"))
	}

	r.writePlain("\n%s\n", formatter.RenderImportResult(result))
	return nil
}

// ImportBulk imports every URL listed in a file, one at a time.
func (r *Runner) ImportBulk(ctx context.Context, cmd *cli.Command) error {
	r.configure(cmd)

	urls, err := shared.ReadLines(cmd.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read URL list: %w", err)
	}
	if len(urls) == 0 {
		return fmt.Errorf("%w: URL list is empty", shared.ErrInvalidInput)
	}

	if err := r.applyCurlSession(cmd); err != nil {
		return err
	}

	engine, err := r.ensureEngine(ctx)
	if err != nil {
		return err
	}

	opts := tasks.BulkImportOpts{
		RateLimit:    cmd.Float("rate"),
		OutputDir:    cmd.String("output"),
		SkipExisting: cmd.Bool("skip-existing"),
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = r.config.Import.RateLimit
	}
	if opts.OutputDir == "" {
		opts.OutputDir = r.config.Import.OutputDir
	}

	r.logger.Info("starting bulk import", "urls", len(urls), "rate", opts.RateLimit)
	r.writePlain("Importing %d URLs...\n\n", len(urls))

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if update.Phase == tasks.ImportURL {
				r.writePlain("%s\n", update.Message)
			} else {
				r.logger.Debug(update.Message, "phase", update.Phase)
			}
		}
	}()

	result, runErr := engine.BulkImport(ctx, progressCh, urls, opts)
	close(progressCh)
	<-done

	if result != nil {
		r.writePlain("\n%s\n", formatter.RenderRunSummary(result))

		if reportPath, reportErr := formatter.WriteImportReport(result, ""); reportErr != nil {
			r.logger.Warn("failed to write import report", "error", reportErr)
		} else {
			r.logger.Info("import report written", "path", reportPath)
		}
		if cmd.Bool("csv") {
			if csvPath, csvErr := formatter.WriteRunCSV(result, ""); csvErr != nil {
				r.logger.Warn("failed to write CSV summary", "error", csvErr)
			} else {
				r.logger.Info("CSV summary written", "path", csvPath)
			}
		}
	}

	return runErr
}

// ImportInteractive imports URLs pasted one per line until a blank line or EOF.
func (r *Runner) ImportInteractive(ctx context.Context, cmd *cli.Command) error {
	r.configure(cmd)

	engine, err := r.ensureEngine(ctx)
	if err != nil {
		return err
	}

	r.writePlain("Paste recipe URLs one per line. An empty line finishes the session.\n")

	scanner := bufio.NewScanner(r.input)
	for {
		r.writePlain("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}
		if !strings.HasPrefix(line, "http") {
			r.writePlain("✗ not a URL: %s\n", line)
			continue
		}

		result, err := engine.ImportOne(ctx, nil, line)
		if err != nil {
			r.writePlain("✗ %s: %v\n", line, err)
			continue
		}

		r.writePlain("%s\n", formatter.RenderImportResult(result))
	}

	return scanner.Err()
}

// applyCurlSession swaps the session negotiator for cookies lifted from a
// browser cURL capture when --curl-file is set.
func (r *Runner) applyCurlSession(cmd *cli.Command) error {
	curlFile := cmd.String("curl-file")
	if curlFile == "" {
		return nil
	}

	cred, err := r.credentialFromCurlFile(curlFile)
	if err != nil {
		return err
	}

	r.logger.Info("using browser session cookies", "file", curlFile)
	r.session = cred
	r.ensureAPI().SetCredential(cred.Credential)
	return nil
}
