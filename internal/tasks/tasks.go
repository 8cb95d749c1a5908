package tasks

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/shared"
)

// WatchlistStore is the part of the credential store the engine reads and writes through.
type WatchlistStore interface {
	GetWatchlist(ctx context.Context, username string) (models.Watchlist, error)
	UpdateWatchlist(ctx context.Context, username string, fn func(models.Watchlist) (models.Watchlist, bool)) (bool, error)
}

// WatchlistEngine runs watchlist operations that combine the store with the metadata service.
type WatchlistEngine struct {
	metadata services.MetadataService
	store    WatchlistStore
}

// NewWatchlistEngine creates a new WatchlistEngine with the provided dependencies.
func NewWatchlistEngine(metadata services.MetadataService, store WatchlistStore) *WatchlistEngine {
	return &WatchlistEngine{metadata: metadata, store: store}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *WatchlistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Add fetches the movie's full details and appends them to the user's watchlist.
//
// The returned flag is false when the movie was already saved.
func (e *WatchlistEngine) Add(ctx context.Context, username, movieID string) (*models.Movie, bool, error) {
	if e.metadata == nil {
		return nil, false, fmt.Errorf("%w: metadata service not initialized", shared.ErrServiceUnavailable)
	}

	movie, err := e.metadata.GetDetails(ctx, movieID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch movie %s: %w", movieID, err)
	}

	added, err := e.store.UpdateWatchlist(ctx, username, func(w models.Watchlist) (models.Watchlist, bool) {
		return w.Add(*movie)
	})
	if err != nil {
		return movie, false, err
	}
	return movie, added, nil
}

// Remove drops a movie from the user's watchlist. The returned flag is false when it was not saved.
func (e *WatchlistEngine) Remove(ctx context.Context, username string, movieID int64) (bool, error) {
	return e.store.UpdateWatchlist(ctx, username, func(w models.Watchlist) (models.Watchlist, bool) {
		return w.Remove(movieID)
	})
}

// ExportOpts contains configuration for watchlist exports.
type ExportOpts struct {
	Format       formatter.Format // Export format: json, csv, markdown, text
	Path         string           // Output file, or directory for markdown (default: {username}_watchlist)
	ImageBaseURL string           // Poster download base for markdown exports; empty skips posters
	Client       *http.Client     // Client for poster downloads
}

// ExportResult lists the files created by [WatchlistEngine.Export].
type ExportResult struct {
	Username string
	Count    int
	Files    []string
}

// Export writes the user's watchlist in the requested format.
func (e *WatchlistEngine) Export(ctx context.Context, progress chan<- ProgressUpdate, username string, opts ExportOpts) (*ExportResult, error) {
	e.sendProgress(progress, fetchWatchlistUpdate(username))

	watchlist, err := e.store.GetWatchlist(ctx, username)
	if err != nil {
		return nil, err
	}

	export := models.NewWatchlistExport(username, watchlist)
	e.sendProgress(progress, exportUpdate(string(opts.Format), export.Count))

	result := &ExportResult{Username: username, Count: export.Count}
	if opts.Format == formatter.FormatMarkdown {
		md, err := formatter.WriteMarkdownExport(export, opts.Path, opts.ImageBaseURL, opts.Client)
		if err != nil {
			return nil, fmt.Errorf("markdown export failed: %w", err)
		}
		result.Files = md.Files
		return result, nil
	}

	files, err := formatter.WriteExport(export, opts.Format, opts.Path)
	if err != nil {
		return nil, fmt.Errorf("%s export failed: %w", opts.Format, err)
	}
	result.Files = files
	return result, nil
}

// Watchlist returns the user's saved movies.
func (e *WatchlistEngine) Watchlist(ctx context.Context, username string) (models.Watchlist, error) {
	return e.store.GetWatchlist(ctx, username)
}
