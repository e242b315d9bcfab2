package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/Lukasvo/cookiedoo-filler/internal/repositories"
	"github.com/Lukasvo/cookiedoo-filler/internal/scrape"
	"github.com/Lukasvo/cookiedoo-filler/internal/services"
	"github.com/Lukasvo/cookiedoo-filler/internal/shared"
	"github.com/Lukasvo/cookiedoo-filler/internal/tasks"
	"github.com/Lukasvo/cookiedoo-filler/internal/translate"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Collaborators are built lazily so commands that never touch the network
// (cache list, setup) do not pay for a Gemini client or a database handle.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	input      io.Reader

	scraper    tasks.PageScraper
	translator tasks.Translator
	session    tasks.SessionSource
	api        tasks.RecipeAPI
	images     tasks.ImageAttacher
	store      *repositories.ImportRepository
	db         *sql.DB
	engine     *tasks.ImportEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	Scraper    tasks.PageScraper
	Translator tasks.Translator
	Session    tasks.SessionSource
	API        tasks.RecipeAPI
	Images     tasks.ImageAttacher
	Store      *repositories.ImportRepository
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = "config.toml"
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		scraper:    opts.Scraper,
		translator: opts.Translator,
		session:    opts.Session,
		api:        opts.API,
		images:     opts.Images,
		store:      opts.Store,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, loginCommand, sessionCommand, importCommand, draftCommand, recipeCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configure applies the global flags before an action runs. Flag lookups walk
// the command lineage, so root-level --config and --verbose are visible here.
func (r *Runner) configure(cmd *cli.Command) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	if path == "" || path == r.configPath {
		return
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, keeping current settings", "path", path, "error", err)
		return
	}

	config.Resolve()
	r.config = config
	r.configPath = path
}

func (r *Runner) ensureScraper() tasks.PageScraper {
	if r.scraper == nil {
		r.scraper = scrape.New()
	}
	return r.scraper
}

func (r *Runner) ensureTranslator(ctx context.Context) (tasks.Translator, error) {
	if r.translator != nil {
		return r.translator, nil
	}

	translator, err := translate.NewGeminiTranslator(ctx, r.config.Translator.APIKey, r.config.Translator.Model)
	if err != nil {
		return nil, err
	}

	r.translator = translator
	return r.translator, nil
}

func (r *Runner) ensureSession() tasks.SessionSource {
	if r.session == nil {
		r.session = services.NewSessionNegotiator(services.SessionConfig{
			EntryURL: r.config.Platform.EntryURL,
			LoginURL: r.config.Platform.LoginURL,
			Username: r.config.Credentials.Username,
			Password: r.config.Credentials.Password,
		})
	}
	return r.session
}

func (r *Runner) ensureAPI() tasks.RecipeAPI {
	if r.api == nil {
		r.api = services.NewCookidooClient(r.config.Platform.BaseURL, r.config.Platform.Locale)
	}
	return r.api
}

// ensureImages returns nil when the API client cannot sign uploads, which
// makes the engine skip cover images instead of failing imports.
func (r *Runner) ensureImages() tasks.ImageAttacher {
	if r.images != nil {
		return r.images
	}

	signer, ok := r.ensureAPI().(services.Signer)
	if !ok || r.config.Platform.UploadURL == "" {
		return nil
	}

	r.images = services.NewImagePipeline(r.config.Platform.UploadURL, signer)
	return r.images
}

func (r *Runner) ensureStore() (*repositories.ImportRepository, error) {
	if r.store != nil {
		return r.store, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	r.store = repositories.NewImportRepository(db)
	return r.store, nil
}

// ensureEngine assembles the import engine from whatever collaborators are
// already installed, building the rest from config. A broken cache database
// downgrades to a warning because imports still work without re-import
// detection.
func (r *Runner) ensureEngine(ctx context.Context) (*tasks.ImportEngine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	translator, err := r.ensureTranslator(ctx)
	if err != nil {
		return nil, err
	}

	var store tasks.ImportStore
	if s, err := r.ensureStore(); err != nil {
		r.logger.Warn("import cache unavailable, re-import detection disabled", "error", err)
	} else {
		store = s
	}

	r.engine = tasks.NewImportEngine(
		r.ensureScraper(),
		translator,
		r.ensureSession(),
		r.ensureAPI(),
		r.ensureImages(),
		store,
	)
	return r.engine, nil
}

// ensureAuthenticated returns an API client holding a live session, running
// the login handshake first when no credential is installed yet.
func (r *Runner) ensureAuthenticated(ctx context.Context) (tasks.RecipeAPI, error) {
	api := r.ensureAPI()
	if api.Authenticated() {
		return api, nil
	}

	cred, err := r.ensureSession().Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	api.SetCredential(cred)
	return api, nil
}

// Close releases resources opened lazily during command execution.
func (r *Runner) Close() {
	if r.db != nil {
		r.db.Close()
	}
	if closer, ok := r.translator.(io.Closer); ok {
		closer.Close()
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
