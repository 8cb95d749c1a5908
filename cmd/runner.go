package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/repositories"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/tasks"
	"github.com/urfave/cli/v3"
)

// userStore is the credential store as the CLI uses it.
type userStore interface {
	models.CredentialStore
	UpdateWatchlist(ctx context.Context, username string, fn func(models.Watchlist) (models.Watchlist, bool)) (bool, error)
	List(ctx context.Context) ([]*models.User, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The store and metadata client are opened on first use so commands that need neither run without credentials.
type Runner struct {
	config     *shared.Config
	configPath string
	metadata   services.MetadataService
	api        *services.APIService
	store      userStore
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Metadata   services.MetadataService
	API        *services.APIService
	Store      userStore
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: "config.toml",
		metadata:   opts.Metadata,
		api:        opts.API,
		store:      opts.Store,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, statusCommand, setupCommand, tmdbCommand, usersCommand, watchlistCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Configure loads the dotenv file and the config file named by the root flags, then applies environment overrides.
//
// A missing config file leaves the embedded defaults in place.
func (r *Runner) Configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if err := shared.LoadEnv(cmd.String("env")); err != nil {
		return ctx, err
	}

	path := cmd.String("config")
	config := shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		loaded, err := shared.LoadConfig(path)
		if err != nil {
			return ctx, err
		}
		config = loaded
	} else if !errors.Is(err, os.ErrNotExist) {
		return ctx, fmt.Errorf("failed to stat config: %w", err)
	} else {
		r.logger.Debug("config file not found, using defaults", "path", path)
	}

	if err := config.ApplyEnv(); err != nil {
		return ctx, err
	}

	r.config = config
	r.configPath = path
	return ctx, nil
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close releases the database handle opened by [Runner.openStore].
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// openStore opens the configured database, applies migrations and wraps it in a [repositories.UserRepository].
func (r *Runner) openStore() (userStore, error) {
	if r.store != nil {
		return r.store, nil
	}

	cfg := r.config.Database
	r.logger.Debug("opening database", "driver", cfg.Driver)

	db, err := shared.NewDatabase(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, err
	}
	shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)

	if err := shared.RunMigrations(db, cfg.Driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	r.store = repositories.NewUserRepository(db, cfg.Driver)
	return r.store, nil
}

// openMetadata builds the TMDB client from the configured credentials.
func (r *Runner) openMetadata() (services.MetadataService, error) {
	if r.metadata != nil {
		return r.metadata, nil
	}

	svc, err := services.NewTMDBService(r.config.Credentials.TMDB, r.httpClient)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("metadata service ready", "service", svc.Name())
	r.metadata = svc
	if r.api == nil {
		r.api = svc.Raw()
	}
	return r.metadata, nil
}

func (r *Runner) openEngine() (*tasks.WatchlistEngine, error) {
	store, err := r.openStore()
	if err != nil {
		return nil, err
	}
	metadata, err := r.openMetadata()
	if err != nil {
		return nil, err
	}
	return tasks.NewWatchlistEngine(metadata, store), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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
