package tasks

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	tu "github.com/desertthunder/marquee/internal/testing"
)

var fastRefresh = RefreshOpts{NumWorkers: 3, RateLimit: 1000}

func seedMovies(n int) []models.Movie {
	movies := make([]models.Movie, n)
	for i := range movies {
		movies[i] = models.Movie{ID: int64(i + 1), Title: fmt.Sprintf("Stale %d", i+1)}
	}
	return movies
}

func freshDetails(ctx context.Context, id string) (*models.Movie, error) {
	var m models.Movie
	if _, err := fmt.Sscan(id, &m.ID); err != nil {
		return nil, err
	}
	m.Title = "Fresh " + id
	return &m, nil
}

func drain(progress chan ProgressUpdate) []ProgressUpdate {
	var updates []ProgressUpdate
	for {
		select {
		case u := <-progress:
			updates = append(updates, u)
		default:
			return updates
		}
	}
}

func TestWatchlistEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("Add", func(t *testing.T) {
		store := tu.NewMockStore()
		store.Seed("alice", "pw")
		engine := NewWatchlistEngine(&tu.MockMetadata{DetailsFn: freshDetails}, store)

		movie, added, err := engine.Add(ctx, "alice", "603")
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if !added || movie.ID != 603 {
			t.Errorf("expected movie 603 to be added, got %v %v", movie, added)
		}

		if _, added, err := engine.Add(ctx, "alice", "603"); err != nil || added {
			t.Errorf("expected second add to be a no-op, got added=%v err=%v", added, err)
		}

		w, _ := store.GetWatchlist(ctx, "alice")
		if len(w) != 1 {
			t.Errorf("expected 1 entry, got %d", len(w))
		}
	})

	t.Run("Add Details Failure", func(t *testing.T) {
		store := tu.NewMockStore()
		store.Seed("alice", "pw")
		metadata := &tu.MockMetadata{DetailsFn: func(ctx context.Context, id string) (*models.Movie, error) {
			return nil, shared.ErrNotFound
		}}

		_, _, err := NewWatchlistEngine(metadata, store).Add(ctx, "alice", "0")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Add Unknown User", func(t *testing.T) {
		engine := NewWatchlistEngine(&tu.MockMetadata{DetailsFn: freshDetails}, tu.NewMockStore())
		if _, _, err := engine.Add(ctx, "ghost", "1"); !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("Add Without Metadata", func(t *testing.T) {
		engine := NewWatchlistEngine(nil, tu.NewMockStore())
		if _, _, err := engine.Add(ctx, "alice", "1"); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		store := tu.NewMockStore()
		store.Seed("alice", "pw", seedMovies(3)...)
		engine := NewWatchlistEngine(&tu.MockMetadata{}, store)

		removed, err := engine.Remove(ctx, "alice", 2)
		if err != nil || !removed {
			t.Fatalf("expected removal, got removed=%v err=%v", removed, err)
		}
		if removed, _ := engine.Remove(ctx, "alice", 2); removed {
			t.Error("expected second removal to be a no-op")
		}

		w, _ := store.GetWatchlist(ctx, "alice")
		if ids := w.IDs(); len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
			t.Errorf("expected [1 3], got %v", ids)
		}
	})
}

func TestExport(t *testing.T) {
	ctx := context.Background()

	t.Run("JSON", func(t *testing.T) {
		store := tu.NewMockStore()
		store.Seed("alice", "pw", seedMovies(2)...)
		engine := NewWatchlistEngine(&tu.MockMetadata{}, store)
		progress := make(chan ProgressUpdate, 10)

		path := filepath.Join(t.TempDir(), "alice.json")
		result, err := engine.Export(ctx, progress, "alice", ExportOpts{Format: formatter.FormatJSON, Path: path})
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}
		if result.Count != 2 || len(result.Files) != 1 || result.Files[0] != path {
			t.Errorf("unexpected result %+v", result)
		}
		if content := tu.MustReadFile(t, path); !strings.Contains(content, "Stale 2") {
			t.Errorf("export missing movie: %s", content)
		}

		updates := drain(progress)
		if len(updates) != 2 || updates[1].Phase != ExportWatchlist {
			t.Errorf("unexpected progress %v", updates)
		}
	})

	t.Run("Markdown", func(t *testing.T) {
		store := tu.NewMockStore()
		store.Seed("alice", "pw", seedMovies(1)...)
		engine := NewWatchlistEngine(&tu.MockMetadata{}, store)

		dir := filepath.Join(t.TempDir(), "md")
		result, err := engine.Export(ctx, nil, "alice", ExportOpts{Format: formatter.FormatMarkdown, Path: dir})
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "README.md"))
		if len(result.Files) != 1 {
			t.Errorf("expected 1 file, got %v", result.Files)
		}
	})

	t.Run("Store Failure", func(t *testing.T) {
		store := tu.NewMockStore()
		store.GetErr = errors.New("timeout")

		_, err := NewWatchlistEngine(&tu.MockMetadata{}, store).Export(ctx, nil, "alice", ExportOpts{Format: formatter.FormatText})
		if err == nil || err.Error() != "timeout" {
			t.Errorf("expected store error, got %v", err)
		}
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("Replaces Every Entry In Order", func(t *testing.T) {
		store := tu.NewMockStore()
		store.Seed("alice", "pw", seedMovies(5)...)
		metadata := &tu.MockMetadata{DetailsFn: freshDetails}
		progress := make(chan ProgressUpdate, 20)

		result, err := NewWatchlistEngine(metadata, store).Refresh(ctx, progress, "alice", fastRefresh)
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
		if result.Total != 5 || result.Refreshed != 5 || result.Failed != 0 || !result.Saved {
			t.Errorf("unexpected result %+v", result)
		}
		if metadata.Calls.Load() != 5 {
			t.Errorf("expected 5 detail calls, got %d", metadata.Calls.Load())
		}

		w, _ := store.GetWatchlist(ctx, "alice")
		for i, m := range w {
			if want := fmt.Sprintf("Fresh %d", i+1); m.ID != int64(i+1) || m.Title != want {
				t.Errorf("entry %d: expected %d %q, got %d %q", i, i+1, want, m.ID, m.Title)
			}
		}

		refreshed := 0
		for _, u := range drain(progress) {
			if u.Phase == RefreshMovies {
				refreshed++
			}
		}
		if refreshed != 5 {
			t.Errorf("expected 5 refresh updates, got %d", refreshed)
		}
	})

	t.Run("Failed Entries Keep Stored Payload", func(t *testing.T) {
		store := tu.NewMockStore()
		store.Seed("alice", "pw", seedMovies(3)...)
		metadata := &tu.MockMetadata{DetailsFn: func(ctx context.Context, id string) (*models.Movie, error) {
			switch id {
			case "2":
				return nil, shared.ErrServiceUnavailable
			case "3":
				return &models.Movie{ID: 99, Title: "Wrong"}, nil
			}
			return freshDetails(ctx, id)
		}}

		result, err := NewWatchlistEngine(metadata, store).Refresh(ctx, nil, "alice", fastRefresh)
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
		if result.Refreshed != 1 || result.Failed != 2 {
			t.Errorf("expected 1 refreshed and 2 failed, got %+v", result)
		}

		w, _ := store.GetWatchlist(ctx, "alice")
		titles := []string{w[0].Title, w[1].Title, w[2].Title}
		if titles[0] != "Fresh 1" || titles[1] != "Stale 2" || titles[2] != "Stale 3" {
			t.Errorf("unexpected titles %v", titles)
		}
	})

	t.Run("Concurrent Removal Is Kept", func(t *testing.T) {
		store := tu.NewMockStore()
		store.Seed("alice", "pw", seedMovies(3)...)
		metadata := &tu.MockMetadata{DetailsFn: func(ctx context.Context, id string) (*models.Movie, error) {
			if id == "1" {
				store.UpdateWatchlist(ctx, "alice", func(w models.Watchlist) (models.Watchlist, bool) {
					return w.Remove(3)
				})
			}
			return freshDetails(ctx, id)
		}}

		if _, err := NewWatchlistEngine(metadata, store).Refresh(ctx, nil, "alice", fastRefresh); err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}

		w, _ := store.GetWatchlist(ctx, "alice")
		if ids := w.IDs(); len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
			t.Errorf("expected [1 2], got %v", ids)
		}
	})

	t.Run("Empty Watchlist", func(t *testing.T) {
		store := tu.NewMockStore()
		store.Seed("alice", "pw")
		metadata := &tu.MockMetadata{}

		result, err := NewWatchlistEngine(metadata, store).Refresh(ctx, nil, "alice", RefreshOpts{})
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
		if result.Total != 0 || result.Saved || metadata.Calls.Load() != 0 {
			t.Errorf("expected no work, got %+v with %d calls", result, metadata.Calls.Load())
		}
	})

	t.Run("All Failed Skips Save", func(t *testing.T) {
		store := tu.NewMockStore()
		user := store.Seed("alice", "pw", seedMovies(2)...)
		metadata := &tu.MockMetadata{DetailsFn: func(ctx context.Context, id string) (*models.Movie, error) {
			return nil, errors.New("boom")
		}}

		result, err := NewWatchlistEngine(metadata, store).Refresh(ctx, nil, "alice", fastRefresh)
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
		if result.Saved || result.Failed != 2 {
			t.Errorf("unexpected result %+v", result)
		}
		if user.Version() != 1 {
			t.Errorf("expected version 1, got %d", user.Version())
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		store := tu.NewMockStore()
		user := store.Seed("alice", "pw", seedMovies(4)...)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := NewWatchlistEngine(&tu.MockMetadata{DetailsFn: freshDetails}, store).Refresh(cancelled, nil, "alice", fastRefresh)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if user.Version() != 1 {
			t.Error("cancelled refresh should not write")
		}
	})

	t.Run("Save Failure", func(t *testing.T) {
		store := tu.NewMockStore()
		store.Seed("alice", "pw", seedMovies(1)...)
		store.AddErr = shared.ErrEditConflict

		_, err := NewWatchlistEngine(&tu.MockMetadata{DetailsFn: freshDetails}, store).Refresh(ctx, nil, "alice", fastRefresh)
		if !errors.Is(err, shared.ErrEditConflict) {
			t.Errorf("expected ErrEditConflict, got %v", err)
		}
	})

	t.Run("Store Failure", func(t *testing.T) {
		store := tu.NewMockStore()
		if _, err := NewWatchlistEngine(&tu.MockMetadata{}, store).Refresh(ctx, nil, "ghost", fastRefresh); !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestPhaseString(t *testing.T) {
	tests := map[Phase]string{
		FetchWatchlist:  "fetch_watchlist",
		RefreshMovies:   "refresh_movies",
		SaveWatchlist:   "save_watchlist",
		ExportWatchlist: "export_watchlist",
		Phase(42):       "",
	}
	for phase, want := range tests {
		if got := phase.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", phase, got, want)
		}
	}
}
