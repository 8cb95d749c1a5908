package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Backoff bounds between lost watchlist races in [UserRepository.UpdateWatchlist].
const (
	minConflictBackoff = time.Millisecond
	maxConflictBackoff = 32 * time.Millisecond
)

var _ models.CredentialStore = (*UserRepository)(nil)

// UserRepository implements [models.CredentialStore] for [models.User] persistence.
type UserRepository struct {
	db     *sql.DB
	driver string
}

// NewUserRepository creates a new [UserRepository] with the given database connection.
//
// driver is the database/sql driver name and selects the placeholder style.
func NewUserRepository(db *sql.DB, driver string) *UserRepository {
	return &UserRepository{db: db, driver: driver}
}

func (r *UserRepository) rebind(query string) string {
	return shared.Rebind(r.driver, query)
}

// FindUserByUsername looks up a user by exact, case-sensitive username.
//
// Returns an error wrapping [shared.ErrUserNotFound] when no record matches.
func (r *UserRepository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := r.rebind(`
		SELECT id, sequence, username, password, watchlist, version, created_at, updated_at
		FROM users
		WHERE username = ?
	`)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrUserNotFound, username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// CreateUser inserts a user with an empty watchlist.
//
// Returns an error wrapping [shared.ErrUserExists] when the username is taken.
func (r *UserRepository) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	user := models.NewUser(0, username, password)
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := r.FindUserByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrUserExists, username)
	} else if !errors.Is(err, shared.ErrUserNotFound) {
		return nil, err
	}

	sequence, err := NextSequence(ctx, r.db, "users")
	if err != nil {
		return nil, fmt.Errorf("failed to generate sequence: %w", err)
	}
	user.SetSequence(sequence)
	user.SetID(shared.GenerateID())

	query := r.rebind(`
		INSERT INTO users (id, sequence, username, password, watchlist, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err = r.db.ExecContext(ctx, query,
		user.ID(), user.Sequence(), user.Username(), user.Password(),
		user.Watchlist(), user.Version(), user.CreatedAt(), user.UpdatedAt(),
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: %s", shared.ErrUserExists, username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

// GetWatchlist returns the user's saved movies in insertion order.
func (r *UserRepository) GetWatchlist(ctx context.Context, username string) (models.Watchlist, error) {
	watchlist, _, err := r.loadWatchlist(ctx, username)
	return watchlist, err
}

// SetWatchlist overwrites the user's whole watchlist.
func (r *UserRepository) SetWatchlist(ctx context.Context, username string, movies models.Watchlist) error {
	query := r.rebind(`
		UPDATE users
		SET watchlist = ?, version = version + 1, updated_at = ?
		WHERE username = ?
	`)

	result, err := r.db.ExecContext(ctx, query, movies, time.Now().UTC(), username)
	if err != nil {
		return fmt.Errorf("failed to update watchlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrUserNotFound, username)
	}
	return nil
}

// AddToWatchlist appends movie unless an entry with the same id is present.
//
// It reports whether the watchlist changed. Concurrent additions for one user all land.
func (r *UserRepository) AddToWatchlist(ctx context.Context, username string, movie models.Movie) (bool, error) {
	return r.UpdateWatchlist(ctx, username, func(w models.Watchlist) (models.Watchlist, bool) {
		return w.Add(movie)
	})
}

// UpdateWatchlist applies fn to the current watchlist and stores the result if fn reports a change.
//
// The write only succeeds when the row's version is unchanged since the read. On a lost race fn is
// applied again to fresh data after a short jittered backoff, until the write lands or ctx is done.
// A canceled retry loop returns an error wrapping both [shared.ErrEditConflict] and ctx.Err().
func (r *UserRepository) UpdateWatchlist(ctx context.Context, username string, fn func(models.Watchlist) (models.Watchlist, bool)) (bool, error) {
	query := r.rebind(`
		UPDATE users
		SET watchlist = ?, version = version + 1, updated_at = ?
		WHERE username = ? AND version = ?
	`)

	backoff := minConflictBackoff
	for {
		current, version, err := r.loadWatchlist(ctx, username)
		if err != nil {
			return false, err
		}

		next, changed := fn(slices.Clone(current))
		if !changed {
			return false, nil
		}

		result, err := r.db.ExecContext(ctx, query, next, time.Now().UTC(), username, version)
		if err != nil {
			return false, fmt.Errorf("failed to update watchlist: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rows == 1 {
			return true, nil
		}

		if err := waitJittered(ctx, backoff); err != nil {
			return false, fmt.Errorf("%w: watchlist for %s: %w", shared.ErrEditConflict, username, err)
		}
		backoff = min(backoff*2, maxConflictBackoff)
	}
}

// waitJittered sleeps for a random duration in [0, d) or until ctx is done.
func waitJittered(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(rand.N(d))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// List returns every user ordered by sequence.
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT id, sequence, username, password, watchlist, version, created_at, updated_at
		FROM users
		ORDER BY sequence ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return users, nil
}

func (r *UserRepository) loadWatchlist(ctx context.Context, username string) (models.Watchlist, int, error) {
	query := r.rebind("SELECT watchlist, version FROM users WHERE username = ?")

	var (
		watchlist models.Watchlist
		version   int
	)
	err := r.db.QueryRowContext(ctx, query, username).Scan(&watchlist, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, fmt.Errorf("%w: %s", shared.ErrUserNotFound, username)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query watchlist: %w", err)
	}
	return watchlist, version, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		id        string
		sequence  int
		username  string
		password  string
		watchlist models.Watchlist
		version   int
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(&id, &sequence, &username, &password, &watchlist, &version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	user := models.NewUser(sequence, username, password)
	user.SetID(id)
	user.SetWatchlist(watchlist)
	user.SetVersion(version)
	user.SetCreatedAt(createdAt)
	user.SetUpdatedAt(updatedAt)
	return user, nil
}

// isUniqueViolation recognizes unique constraint failures from each supported driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	// libsql reports sqlite errors as text
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
