package main

import "github.com/urfave/cli/v3"

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Prepare configuration and the local import cache",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the cache database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "rollback",
				Usage: "Roll back the most recent database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "login",
		Usage:  "Run the platform login handshake and verify credentials",
		Action: r.Login,
	}
}

func sessionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "session",
		Usage: "Inspect platform session cookies",
		Commands: []*cli.Command{
			{
				Name:  "from-curl",
				Usage: "Check a browser cURL command for usable session cookies",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command string copied from browser dev tools",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to file containing the cURL command",
					},
				},
				Action: r.SessionFromCurl,
			},
		},
	}
}

func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import recipes from the web into the platform",
		Commands: []*cli.Command{
			{
				Name:      "url",
				Usage:     "Import a single recipe page",
				Arguments: []cli.Argument{&cli.StringArg{Name: "url"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the import result as JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Reuse browser session cookies from a cURL file instead of logging in",
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the imported recipe in the browser",
					},
				},
				Action: r.ImportURL,
			},
			{
				Name:  "bulk",
				Usage: "Import every URL listed in a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to file with one recipe URL per line",
						Required: true,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Imports per second",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Directory for the run manifest and reports",
					},
					&cli.BoolFlag{
						Name:  "skip-existing",
						Usage: "Skip URLs already present in the import cache",
					},
					&cli.BoolFlag{
						Name:  "csv",
						Usage: "Also write the run summary as CSV",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Reuse browser session cookies from a cURL file instead of logging in",
					},
				},
				Action: r.ImportBulk,
			},
			{
				Name:   "interactive",
				Usage:  "Import URLs pasted one at a time",
				Action: r.ImportInteractive,
			},
		},
	}
}

func draftCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "draft",
		Usage:     "Scrape and translate a recipe without writing to the platform",
		Arguments: []cli.Argument{&cli.StringArg{Name: "url"}},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "export",
				Usage: "Write a Markdown export directory instead of JSON",
			},
			&cli.BoolFlag{
				Name:  "text",
				Usage: "Write a plain text export instead of JSON",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Destination directory or file for exports",
			},
		},
		Action: r.Draft,
	}
}

func recipeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "recipe",
		Usage: "Work with platform recipes directly",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create an empty named recipe",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Action:    r.RecipeCreate,
			},
			{
				Name:      "delete",
				Usage:     "Delete a recipe by id",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.RecipeDelete,
			},
			{
				Name:      "exists",
				Usage:     "Check whether a recipe id still exists",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.RecipeExists,
			},
		},
	}
}

func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the URL to recipe import cache",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached imports",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print cached imports as JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
				},
				Action: r.CacheList,
			},
			{
				Name:  "forget",
				Usage: "Drop a cached import so its URL imports fresh next time",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "url",
						Usage:    "Source URL to forget",
						Required: true,
					},
				},
				Action: r.CacheForget,
			},
		},
	}
}
