package tasks

import (
	"fmt"

	"github.com/desertthunder/marquee/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchWatchlist Phase = iota
	RefreshMovies
	SaveWatchlist
	ExportWatchlist
)

func (p Phase) String() string {
	switch p {
	case FetchWatchlist:
		return "fetch_watchlist"
	case RefreshMovies:
		return "refresh_movies"
	case SaveWatchlist:
		return "save_watchlist"
	case ExportWatchlist:
		return "export_watchlist"
	default:
		return ""
	}
}

func fetchWatchlistUpdate(username string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchWatchlist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loading %s's watchlist...", username),
	}
}

func foundWatchlistUpdate(username string, w models.Watchlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchWatchlist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d movies for %s", len(w), username),
		Data:    w,
	}
}

func refreshedUpdate(step, total int, res MovieRefreshResult) ProgressUpdate {
	if res.Error != nil {
		return ProgressUpdate{
			Phase:   RefreshMovies,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Title, res.Error),
			Data:    res,
		}
	}
	return ProgressUpdate{
		Phase:   RefreshMovies,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, res.Title),
		Data:    res,
	}
}

func saveWatchlistUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveWatchlist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saving %d refreshed movies...", count),
	}
}

func exportUpdate(format string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportWatchlist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Exporting %d movies as %s...", count, format),
	}
}
