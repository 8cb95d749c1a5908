package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultRefreshWorkers = 4
	maxRefreshWorkers     = 10
	defaultRefreshRate    = 10.0
)

// RefreshOpts contains configuration for watchlist refreshes.
type RefreshOpts struct {
	NumWorkers int     // Concurrent workers (default: 4, max: 10)
	RateLimit  float64 // Detail requests per second (default: 10)
}

// MovieRefreshResult is the outcome for a single watchlist entry.
type MovieRefreshResult struct {
	MovieID int64
	Title   string
	Movie   *models.Movie // Fresh details (nil on failure)
	Error   error
}

// RefreshResult summarizes a watchlist refresh.
type RefreshResult struct {
	Username  string
	Total     int
	Refreshed int
	Failed    int
	Saved     bool // Whether refreshed entries were written back
	Results   []MovieRefreshResult
}

type refreshJob struct {
	movie models.Movie
}

// Refresh re-fetches the details of every movie in the user's watchlist with a pool of workers,
// then writes the fresh payloads back in a single update.
//
// Entries that fail to refresh keep their stored payload. Entries removed while the refresh runs
// stay removed, and the list order is kept.
func (e *WatchlistEngine) Refresh(ctx context.Context, prog chan<- ProgressUpdate, username string, opts RefreshOpts) (*RefreshResult, error) {
	if e.metadata == nil {
		return nil, fmt.Errorf("%w: metadata service not initialized", shared.ErrServiceUnavailable)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultRefreshWorkers
	}
	if opts.NumWorkers > maxRefreshWorkers {
		opts.NumWorkers = maxRefreshWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRefreshRate
	}

	e.sendProgress(prog, fetchWatchlistUpdate(username))
	watchlist, err := e.store.GetWatchlist(ctx, username)
	if err != nil {
		return nil, err
	}
	e.sendProgress(prog, foundWatchlistUpdate(username, watchlist))

	result := &RefreshResult{
		Username: username,
		Total:    len(watchlist),
		Results:  make([]MovieRefreshResult, 0, len(watchlist)),
	}
	if len(watchlist) == 0 {
		return result, nil
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan refreshJob, len(watchlist))
	results := make(chan MovieRefreshResult, len(watchlist))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.refreshWorker(ctx, &wg, limiter, jobs, results)
	}

	go func() {
		defer close(jobs)
		for _, movie := range watchlist {
			select {
			case <-ctx.Done():
				return
			case jobs <- refreshJob{movie: movie}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	updates := make(map[int64]models.Movie, len(watchlist))
	for res := range results {
		result.Results = append(result.Results, res)
		if res.Error != nil {
			result.Failed++
		} else {
			result.Refreshed++
			updates[res.MovieID] = *res.Movie
		}
		e.sendProgress(prog, refreshedUpdate(len(result.Results), result.Total, res))
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if len(updates) == 0 {
		return result, nil
	}

	e.sendProgress(prog, saveWatchlistUpdate(len(updates)))
	saved, err := e.store.UpdateWatchlist(ctx, username, func(current models.Watchlist) (models.Watchlist, bool) {
		return current.Replace(updates), true
	})
	if err != nil {
		return result, fmt.Errorf("refresh completed but failed to save watchlist: %w", err)
	}
	result.Saved = saved
	return result, nil
}

// refreshWorker fetches details for jobs until the channel closes or ctx is cancelled.
func (e *WatchlistEngine) refreshWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan refreshJob,
	results chan<- MovieRefreshResult,
) {
	defer wg.Done()

	for job := range jobs {
		res := MovieRefreshResult{MovieID: job.movie.ID, Title: job.movie.Title}

		if err := limiter.Wait(ctx); err != nil {
			res.Error = err
			results <- res
			continue
		}

		movie, err := e.metadata.GetDetails(ctx, job.movie.Key())
		switch {
		case err != nil:
			res.Error = err
		case movie.ID != job.movie.ID:
			res.Error = fmt.Errorf("%w: expected movie %d, got %d", shared.ErrAPIRequest, job.movie.ID, movie.ID)
		default:
			res.Movie = movie
			if movie.Title != "" {
				res.Title = movie.Title
			}
		}
		results <- res
	}
}
