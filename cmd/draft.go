package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/Lukasvo/cookiedoo-filler/internal/annotate"
	"github.com/Lukasvo/cookiedoo-filler/internal/formatter"
	"github.com/Lukasvo/cookiedoo-filler/internal/shared"
)

// Draft scrapes and translates a recipe page without touching the platform.
// The default output is the content patch that an import would send, which
// makes it the dry-run counterpart of import url.
func (r *Runner) Draft(ctx context.Context, cmd *cli.Command) error {
	r.configure(cmd)

	pageURL := cmd.StringArg("url")
	if pageURL == "" {
		return fmt.Errorf("%w: recipe URL is required", shared.ErrMissingArgument)
	}

	r.logger.Info("drafting recipe", "url", pageURL)

	source, err := r.ensureScraper().Scrape(ctx, pageURL)
	if err != nil {
		return err
	}

	translator, err := r.ensureTranslator(ctx)
	if err != nil {
		return err
	}

	draft, err := translator.Translate(ctx, source)
	if err != nil {
		return err
	}

	patch, report := annotate.Reconcile(draft)
	r.logger.Info("draft ready", "name", draft.Name, "coverage", formatter.FormatCoverage(report))

	if cmd.Bool("export") {
		export, err := formatter.WriteRecipeExport(draft, cmd.String("output"), source.ImageURL)
		if err != nil {
			return fmt.Errorf("failed to export recipe: %w", err)
		}

		r.writePlain("✓ Exported %q to %s\n", draft.Name, export.Directory)
		for _, file := range export.Files {
			r.writePlain("  - %s\n", file)
		}
		if export.CoverImage != "" {
			r.writePlain("  - %s\n", export.CoverImage)
		}
		return nil
	}

	if cmd.Bool("text") {
		path, err := formatter.WriteTextExport(draft, cmd.String("output"))
		if err != nil {
			return fmt.Errorf("failed to export recipe: %w", err)
		}

		r.writePlain("✓ Exported %q to %s\n", draft.Name, path)
		return nil
	}

	return r.writeJSON(patch, cmd.Bool("pretty"))
}
