// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// MockMetadata is a test double for [services.MetadataService].
//
// Unset funcs return empty results. Calls counts every invocation.
type MockMetadata struct {
	SearchFn          func(ctx context.Context, query string, page int) (*models.SearchResults, error)
	DetailsFn         func(ctx context.Context, id string) (*models.Movie, error)
	ImagesFn          func(ctx context.Context, id string) (*models.MovieImages, error)
	VideosFn          func(ctx context.Context, id string) (*models.VideoList, error)
	RecommendationsFn func(ctx context.Context, id string, page int) (*models.SearchResults, error)

	Calls atomic.Int32
}

func (m *MockMetadata) SearchByTitle(ctx context.Context, query string, page int) (*models.SearchResults, error) {
	m.Calls.Add(1)
	if m.SearchFn != nil {
		return m.SearchFn(ctx, query, page)
	}
	return &models.SearchResults{Page: page, Results: []models.Movie{}}, nil
}

func (m *MockMetadata) GetDetails(ctx context.Context, id string) (*models.Movie, error) {
	m.Calls.Add(1)
	if m.DetailsFn != nil {
		return m.DetailsFn(ctx, id)
	}
	return &models.Movie{}, nil
}

func (m *MockMetadata) GetImages(ctx context.Context, id string) (*models.MovieImages, error) {
	m.Calls.Add(1)
	if m.ImagesFn != nil {
		return m.ImagesFn(ctx, id)
	}
	return &models.MovieImages{}, nil
}

func (m *MockMetadata) GetVideos(ctx context.Context, id string) (*models.VideoList, error) {
	m.Calls.Add(1)
	if m.VideosFn != nil {
		return m.VideosFn(ctx, id)
	}
	return &models.VideoList{}, nil
}

func (m *MockMetadata) GetRecommendations(ctx context.Context, id string, page int) (*models.SearchResults, error) {
	m.Calls.Add(1)
	if m.RecommendationsFn != nil {
		return m.RecommendationsFn(ctx, id, page)
	}
	return &models.SearchResults{Page: page, Results: []models.Movie{}}, nil
}

// MockStore is an in-memory [models.CredentialStore].
//
// Setting one of the Err fields makes the matching operation fail with it.
type MockStore struct {
	mu    sync.Mutex
	users map[string]*models.User

	FindErr   error
	CreateErr error
	GetErr    error
	SetErr    error
	AddErr    error
}

// NewMockStore creates an empty [MockStore].
func NewMockStore() *MockStore {
	return &MockStore{users: make(map[string]*models.User)}
}

// Seed inserts a user directly, bypassing CreateErr.
func (s *MockStore) Seed(username, password string, watchlist ...models.Movie) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := models.NewUser(len(s.users)+1, username, password)
	user.SetID(shared.GenerateID())
	user.SetWatchlist(watchlist)
	s.users[username] = user
	return user
}

func (s *MockStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.FindErr != nil {
		return nil, s.FindErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	return user, nil
}

func (s *MockStore) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return nil, shared.ErrUserExists
	}

	user := models.NewUser(len(s.users)+1, username, password)
	user.SetID(shared.GenerateID())
	s.users[username] = user
	return user, nil
}

func (s *MockStore) GetWatchlist(ctx context.Context, username string) (models.Watchlist, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	return slices.Clone(user.Watchlist()), nil
}

func (s *MockStore) SetWatchlist(ctx context.Context, username string, movies models.Watchlist) error {
	if s.SetErr != nil {
		return s.SetErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return shared.ErrUserNotFound
	}
	user.SetWatchlist(slices.Clone(movies))
	user.SetVersion(user.Version() + 1)
	return nil
}

func (s *MockStore) AddToWatchlist(ctx context.Context, username string, movie models.Movie) (bool, error) {
	return s.UpdateWatchlist(ctx, username, func(w models.Watchlist) (models.Watchlist, bool) {
		return w.Add(movie)
	})
}

// UpdateWatchlist applies fn under the store lock.
func (s *MockStore) UpdateWatchlist(ctx context.Context, username string, fn func(models.Watchlist) (models.Watchlist, bool)) (bool, error) {
	if s.AddErr != nil {
		return false, s.AddErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return false, shared.ErrUserNotFound
	}

	next, changed := fn(slices.Clone(user.Watchlist()))
	if changed {
		user.SetWatchlist(next)
		user.SetVersion(user.Version() + 1)
	}
	return changed, nil
}

// List returns every user ordered by sequence.
func (s *MockStore) List(ctx context.Context) ([]*models.User, error) {
	if s.FindErr != nil {
		return nil, s.FindErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b *models.User) int { return a.Sequence() - b.Sequence() })
	return users, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
