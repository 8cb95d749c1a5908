package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes config.toml from the embedded template.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", r.configPath)
	r.writePlain("✓ Created %s\n", r.configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set credentials.tmdb.api_key (or TMDB_API_KEY in .env)\n")
	r.writePlain("2. Run 'marquee setup database'\n")
	return nil
}

// SetupDatabase initializes the database and runs migrations, creating a config file first when none exists.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	if _, err := os.Stat(r.configPath); errors.Is(err, os.ErrNotExist) {
		r.logger.Info("config file not found, creating from template", "path", r.configPath)
		if err := shared.CreateConfigFile(r.configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else if config, err := shared.LoadConfig(r.configPath); err != nil {
			r.logger.Warn("failed to load created config, using defaults", "error", err)
		} else if err := config.ApplyEnv(); err == nil {
			r.config = config
		}
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db, r.config.Database.Driver); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := shared.CurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	r.writePlainHeader("Setup Complete")
	r.writePlain("Driver: %s\n", r.config.Database.Driver)
	r.writePlain("Database: %s\n", r.config.Database.Path)
	r.writePlain("Schema version: %d\n", version)
	return nil
}

// SetupRollback reverts the most recently applied migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	before, err := shared.CurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if err := shared.RollbackMigration(db, r.config.Database.Driver); err != nil {
		return err
	}
	after, err := shared.CurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	r.logger.Info("rolled back migration", "from", before, "to", after)
	return r.writePlain("✓ Rolled back migration %d (schema version now %d)\n", before, after)
}

// openDatabase opens a short-lived connection for schema management, separate from [Runner.openStore].
func (r *Runner) openDatabase() (*sql.DB, error) {
	cfg := r.config.Database
	r.logger.Info("initializing database", "driver", cfg.Driver, "path", cfg.Path)

	db, err := shared.NewDatabase(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)
	return db, nil
}
