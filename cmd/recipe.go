package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/Lukasvo/cookiedoo-filler/internal/shared"
)

// RecipeCreate creates an empty named recipe on the platform.
func (r *Runner) RecipeCreate(ctx context.Context, cmd *cli.Command) error {
	r.configure(cmd)

	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: recipe name is required", shared.ErrMissingArgument)
	}

	api, err := r.ensureAuthenticated(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("creating recipe", "name", name)

	id, err := api.CreateRecipe(ctx, name)
	if err != nil {
		return err
	}

	r.writePlain("✓ Recipe created: %s (ID: %s)\n", name, id)
	return nil
}

// RecipeDelete deletes a platform recipe by id.
func (r *Runner) RecipeDelete(ctx context.Context, cmd *cli.Command) error {
	r.configure(cmd)

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: recipe id is required", shared.ErrMissingArgument)
	}

	api, err := r.ensureAuthenticated(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("deleting recipe", "id", id)

	if err := api.DeleteRecipe(ctx, id); err != nil {
		return err
	}

	r.writePlain("✓ Recipe deleted: %s\n", id)
	return nil
}

// RecipeExists checks whether a platform recipe id still resolves.
func (r *Runner) RecipeExists(ctx context.Context, cmd *cli.Command) error {
	r.configure(cmd)

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: recipe id is required", shared.ErrMissingArgument)
	}

	api, err := r.ensureAuthenticated(ctx)
	if err != nil {
		return err
	}

	exists, err := api.RecipeExists(ctx, id)
	if err != nil {
		return err
	}

	if exists {
		r.writePlain("✓ Recipe %s exists\n", id)
	} else {
		r.writePlain("✗ Recipe %s not found\n", id)
	}
	return nil
}
