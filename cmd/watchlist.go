package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/tasks"
	"github.com/urfave/cli/v3"
)

func usernameArg(cmd *cli.Command) (string, error) {
	username := cmd.StringArg("username")
	if username == "" {
		return "", fmt.Errorf("%w: username is required", shared.ErrMissingArgument)
	}
	return username, nil
}

// WatchlistShow lists a user's saved movies in the order they were added.
func (r *Runner) WatchlistShow(ctx context.Context, cmd *cli.Command) error {
	username, err := usernameArg(cmd)
	if err != nil {
		return err
	}

	store, err := r.openStore()
	if err != nil {
		return err
	}

	watchlist, err := store.GetWatchlist(ctx, username)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(watchlist, cmd.Bool("pretty"))
	}

	r.writePlain("%s's watchlist (%d movies)\n\n", username, len(watchlist))
	r.writeMovies(watchlist)
	return nil
}

// WatchlistAdd fetches a movie's details and saves them to a user's watchlist.
func (r *Runner) WatchlistAdd(ctx context.Context, cmd *cli.Command) error {
	username, err := usernameArg(cmd)
	if err != nil {
		return err
	}
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: movie id is required", shared.ErrMissingArgument)
	}

	engine, err := r.openEngine()
	if err != nil {
		return err
	}

	movie, added, err := engine.Add(ctx, username, id)
	if err != nil {
		return err
	}

	if !added {
		return r.writePlain("%s is already on %s's watchlist\n", movie.Title, username)
	}
	r.logger.Info("movie added", "username", username, "id", movie.ID)
	return r.writePlain("✓ Added %s\n", movie.Title)
}

// WatchlistRemove drops a movie from a user's watchlist.
func (r *Runner) WatchlistRemove(ctx context.Context, cmd *cli.Command) error {
	username, err := usernameArg(cmd)
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(cmd.StringArg("id"), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: movie id must be a number", shared.ErrInvalidArgument)
	}

	store, err := r.openStore()
	if err != nil {
		return err
	}

	removed, err := tasks.NewWatchlistEngine(r.metadata, store).Remove(ctx, username, id)
	if err != nil {
		return err
	}

	if !removed {
		return r.writePlain("Movie %d is not on %s's watchlist\n", id, username)
	}
	r.logger.Info("movie removed", "username", username, "id", id)
	return r.writePlain("✓ Removed %d\n", id)
}

// WatchlistExport writes a user's watchlist to disk.
func (r *Runner) WatchlistExport(ctx context.Context, cmd *cli.Command) error {
	username, err := usernameArg(cmd)
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	store, err := r.openStore()
	if err != nil {
		return err
	}

	opts := tasks.ExportOpts{
		Format: format,
		Path:   cmd.String("output"),
		Client: r.httpClient,
	}
	if cmd.Bool("posters") {
		opts.ImageBaseURL = r.config.Credentials.TMDB.ImageBaseURL
	}

	progressCh := make(chan tasks.ProgressUpdate, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writePlain("📥 %s\n", update.Message)
		}
	}()

	result, err := tasks.NewWatchlistEngine(r.metadata, store).Export(ctx, progressCh, username, opts)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n✓ Exported %d movies\n", result.Count)
	for _, f := range result.Files {
		r.writePlain("  %s\n", f)
	}
	return nil
}

// WatchlistRefresh re-fetches details for every saved movie and writes them back.
func (r *Runner) WatchlistRefresh(ctx context.Context, cmd *cli.Command) error {
	username, err := usernameArg(cmd)
	if err != nil {
		return err
	}

	engine, err := r.openEngine()
	if err != nil {
		return err
	}

	opts := tasks.RefreshOpts{NumWorkers: cmd.Int("workers"), RateLimit: cmd.Float("rate")}
	r.logger.Info("starting refresh", "username", username, "workers", opts.NumWorkers, "rate", opts.RateLimit)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchWatchlist:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.RefreshMovies:
				r.writePlain("   %s\n", update.Message)
			case tasks.SaveWatchlist:
				r.writePlain("\n💾 %s\n", update.Message)
			}
		}
	}()

	result, err := engine.Refresh(ctx, progressCh, username, opts)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Refresh Complete!")
	r.writePlain("Refreshed: %d/%d\n", result.Refreshed, result.Total)
	if result.Failed > 0 {
		r.writePlain("\nFailed to refresh %d movies:\n", result.Failed)
		for _, res := range result.Results {
			if res.Error != nil {
				r.writePlain("  - %s: %v\n", res.Title, res.Error)
			}
		}
	}
	if !result.Saved {
		r.writePlain("\nNothing was saved.\n")
	}
	return nil
}
