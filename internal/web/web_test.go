package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	tu "github.com/desertthunder/marquee/internal/testing"
)

const testImageBase = "https://image.tmdb.org/t/p"

type testApp struct {
	store    *tu.MockStore
	metadata *tu.MockMetadata
	handler  http.Handler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	views, err := NewViews(testImageBase)
	if err != nil {
		t.Fatalf("failed to parse views: %v", err)
	}

	logger := shared.NewLogger(io.Discard)
	store := tu.NewMockStore()
	metadata := &tu.MockMetadata{}

	return &testApp{
		store:    store,
		metadata: metadata,
		handler:  NewRouter(NewHandler(store, metadata, views, logger), logger),
	}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (a *testApp) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

func (a *testApp) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return a.do(req)
}

func credentials(username, password string) url.Values {
	return url.Values{"username": {username}, "password": {password}}
}

func decodeMovie(t *testing.T, payload string) *models.Movie {
	t.Helper()

	var m models.Movie
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		t.Fatalf("failed to decode movie: %v", err)
	}
	return &m
}

func moviePage(n int) *models.SearchResults {
	results := &models.SearchResults{Page: 1, TotalPages: 1, TotalResults: n}
	for i := 1; i <= n; i++ {
		results.Results = append(results.Results, models.Movie{ID: int64(i), Title: fmt.Sprintf("Movie %d", i)})
	}
	return results
}

func assertContains(t *testing.T, body, want string) {
	t.Helper()
	if !strings.Contains(body, want) {
		t.Errorf("expected body to contain %q, got:\n%s", want, body)
	}
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != location {
		t.Errorf("expected redirect to %q, got %q", location, got)
	}
}

func TestPages(t *testing.T) {
	t.Run("Home Anonymous", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.get("/")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		assertContains(t, rec.Body.String(), `href="/auth"`)
	})

	t.Run("Home Carries Image Base", func(t *testing.T) {
		assertContains(t, newTestApp(t).get("/").Body.String(), `data-image-base="`+testImageBase+`"`)

		views, err := NewViews("https://cdn.example.test/images/")
		if err != nil {
			t.Fatalf("failed to parse views: %v", err)
		}
		var buf bytes.Buffer
		if err := views.Render(&buf, PageHome, homeData{Page: Page{Title: "Home"}}); err != nil {
			t.Fatalf("failed to render home: %v", err)
		}
		assertContains(t, buf.String(), `data-image-base="https://cdn.example.test/images"`)
	})

	t.Run("Home With Identity", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.get("/?user=alice")

		body := rec.Body.String()
		assertContains(t, body, "Welcome back, alice")
		assertContains(t, body, `href="/profile?user=alice"`)
	})

	t.Run("Auth Page Has No Error", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.get("/auth")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if strings.Contains(rec.Body.String(), `class="error"`) {
			t.Error("expected no error message on a fresh auth page")
		}
	})

	t.Run("Static Stylesheet", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.get("/static/style.css")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/css") {
			t.Errorf("expected text/css, got %q", rec.Header().Get("Content-Type"))
		}
	})

	t.Run("Healthz", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.get("/healthz")

		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
			t.Errorf("unexpected healthz response %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("Unknown Path", func(t *testing.T) {
		app := newTestApp(t)
		if rec := app.get("/nowhere"); rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("Wrong Method", func(t *testing.T) {
		app := newTestApp(t)
		if rec := app.get("/login"); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status 405, got %d", rec.Code)
		}
	})

	t.Run("Request ID Header", func(t *testing.T) {
		app := newTestApp(t)
		if rec := app.get("/"); rec.Header().Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
	})
}

func TestAuth(t *testing.T) {
	t.Run("Create Account Then Login", func(t *testing.T) {
		app := newTestApp(t)

		assertRedirect(t, app.postForm("/create-account", credentials("alice", "secret")), "/?user=alice")
		assertRedirect(t, app.postForm("/login", credentials("alice", "secret")), "/?user=alice")
	})

	t.Run("Redirect Escapes Username", func(t *testing.T) {
		app := newTestApp(t)
		assertRedirect(t, app.postForm("/create-account", credentials("a&b c", "pw")), "/?user=a%26b+c")
	})

	t.Run("JSON Body", func(t *testing.T) {
		app := newTestApp(t)
		app.store.Seed("alice", "secret")

		assertRedirect(t, app.postJSON("/login", `{"username":"alice","password":"secret"}`), "/?user=alice")
	})

	t.Run("Missing Fields", func(t *testing.T) {
		app := newTestApp(t)

		for _, path := range []string{"/login", "/create-account"} {
			for _, values := range []url.Values{credentials("", "pw"), credentials("alice", ""), {}} {
				rec := app.postForm(path, values)
				if rec.Code != http.StatusOK {
					t.Errorf("%s: expected status 200, got %d", path, rec.Code)
				}
				assertContains(t, rec.Body.String(), "All fields are required!")
			}
		}
	})

	t.Run("Malformed JSON Body", func(t *testing.T) {
		app := newTestApp(t)
		assertContains(t, app.postJSON("/login", `{"username":`).Body.String(), "All fields are required!")
	})

	t.Run("Wrong Password", func(t *testing.T) {
		app := newTestApp(t)
		app.store.Seed("alice", "secret")

		rec := app.postForm("/login", credentials("alice", "wrong"))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		assertContains(t, rec.Body.String(), "Invalid username or password")
	})

	t.Run("Unknown Username", func(t *testing.T) {
		app := newTestApp(t)
		assertContains(t, app.postForm("/login", credentials("nobody", "pw")).Body.String(), "Invalid username or password")
	})

	t.Run("Login Store Failure", func(t *testing.T) {
		app := newTestApp(t)
		app.store.FindErr = errors.New("connection reset")

		assertContains(t, app.postForm("/login", credentials("alice", "pw")).Body.String(), "Invalid username or password")
	})

	t.Run("Existing Username", func(t *testing.T) {
		app := newTestApp(t)
		app.store.Seed("alice", "secret")

		rec := app.postForm("/create-account", credentials("alice", "other"))
		assertContains(t, rec.Body.String(), "Username already exists!")

		user, err := app.store.FindUserByUsername(context.Background(), "alice")
		if err != nil {
			t.Fatalf("failed to find user: %v", err)
		}
		if !user.CheckPassword("secret") {
			t.Error("existing record should not be modified")
		}
	})

	t.Run("Create Race Reported As Existing", func(t *testing.T) {
		app := newTestApp(t)
		app.store.CreateErr = fmt.Errorf("%w: alice", shared.ErrUserExists)

		assertContains(t, app.postForm("/create-account", credentials("alice", "pw")).Body.String(), "Username already exists!")
	})

	t.Run("Create Store Failure", func(t *testing.T) {
		app := newTestApp(t)
		app.store.CreateErr = errors.New("disk full")

		assertContains(t, app.postForm("/create-account", credentials("alice", "pw")).Body.String(), "An error occurred. Please try again.")
	})

	t.Run("Create Lookup Failure", func(t *testing.T) {
		app := newTestApp(t)
		app.store.FindErr = errors.New("connection reset")

		assertContains(t, app.postForm("/create-account", credentials("alice", "pw")).Body.String(), "An error occurred. Please try again.")
	})
}

func TestWatchlist(t *testing.T) {
	inception := `{"id":27205,"title":"Inception","release_date":"2010-07-15","budget":160000000}`

	t.Run("Add Twice Keeps One Entry", func(t *testing.T) {
		app := newTestApp(t)
		app.store.Seed("alice", "secret")
		app.metadata.DetailsFn = func(ctx context.Context, id string) (*models.Movie, error) {
			if id != "27205" {
				t.Errorf("expected id 27205, got %s", id)
			}
			return decodeMovie(t, inception), nil
		}

		form := url.Values{"user": {"alice"}, "movieId": {"27205"}}
		assertRedirect(t, app.postForm("/add-to-watchlist", form), "/movie/27205?user=alice")
		assertRedirect(t, app.postForm("/add-to-watchlist", form), "/movie/27205?user=alice")

		watchlist, err := app.store.GetWatchlist(context.Background(), "alice")
		if err != nil {
			t.Fatalf("failed to get watchlist: %v", err)
		}
		if len(watchlist) != 1 || watchlist[0].ID != 27205 {
			t.Fatalf("expected exactly one entry with id 27205, got %v", watchlist.IDs())
		}

		data, _ := json.Marshal(watchlist[0])
		if string(data) != inception {
			t.Errorf("expected full details to be stored, got %s", data)
		}
	})

	t.Run("Add With JSON Number", func(t *testing.T) {
		app := newTestApp(t)
		app.store.Seed("alice", "secret")
		app.metadata.DetailsFn = func(ctx context.Context, id string) (*models.Movie, error) {
			return &models.Movie{ID: 550, Title: "Fight Club"}, nil
		}

		assertRedirect(t, app.postJSON("/add-to-watchlist", `{"user":"alice","movieId":550}`), "/movie/550?user=alice")
	})

	t.Run("Missing Fields", func(t *testing.T) {
		app := newTestApp(t)

		for _, values := range []url.Values{{"user": {"alice"}}, {"movieId": {"1"}}, {}} {
			rec := app.postForm("/add-to-watchlist", values)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", rec.Code)
			}
			assertContains(t, rec.Body.String(), "Missing user or movieId")
		}
		if app.metadata.Calls.Load() != 0 {
			t.Error("metadata should not be queried without both fields")
		}
	})

	t.Run("Details Failure", func(t *testing.T) {
		app := newTestApp(t)
		app.store.Seed("alice", "secret")
		app.metadata.DetailsFn = func(ctx context.Context, id string) (*models.Movie, error) {
			return nil, shared.ErrNotFound
		}

		rec := app.postForm("/add-to-watchlist", url.Values{"user": {"alice"}, "movieId": {"0"}})
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}
		assertContains(t, rec.Body.String(), "Could not update watchlist")
	})

	t.Run("Unknown User", func(t *testing.T) {
		app := newTestApp(t)

		rec := app.postForm("/add-to-watchlist", url.Values{"user": {"ghost"}, "movieId": {"1"}})
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}
		assertContains(t, rec.Body.String(), "Could not update watchlist")
	})

	t.Run("Profile Without User", func(t *testing.T) {
		app := newTestApp(t)
		assertRedirect(t, app.get("/profile"), "/auth")
	})

	t.Run("Profile Lists Watchlist", func(t *testing.T) {
		app := newTestApp(t)
		app.store.Seed("alice", "secret",
			models.Movie{ID: 1, Title: "Alien", PosterPath: "/alien.jpg"},
			models.Movie{ID: 2, Title: "Heat"},
		)

		rec := app.get("/profile?user=alice")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		body := rec.Body.String()
		assertContains(t, body, "Alien")
		assertContains(t, body, "Heat")
		assertContains(t, body, testImageBase+"/w500/alien.jpg")
		assertContains(t, body, `href="/movie/1?user=alice"`)
		if strings.Index(body, "Alien") > strings.Index(body, "Heat") {
			t.Error("expected watchlist in insertion order")
		}
	})

	t.Run("Profile Store Failure", func(t *testing.T) {
		app := newTestApp(t)
		app.store.GetErr = errors.New("timeout")

		rec := app.get("/profile?user=alice")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		assertContains(t, rec.Body.String(), "Error loading profile")
	})
}

func TestMoviePages(t *testing.T) {
	t.Run("Detail Page", func(t *testing.T) {
		app := newTestApp(t)
		app.metadata.DetailsFn = func(ctx context.Context, id string) (*models.Movie, error) {
			return &models.Movie{ID: 27205, Title: "Inception", Overview: "Dreams.", ReleaseDate: "2010-07-15"}, nil
		}
		app.metadata.VideosFn = func(ctx context.Context, id string) (*models.VideoList, error) {
			return &models.VideoList{Results: []models.Video{
				{Key: "teaser", Type: "Teaser"},
				{Key: "first", Type: "Trailer"},
				{Key: "second", Type: "Trailer"},
			}}, nil
		}
		app.metadata.ImagesFn = func(ctx context.Context, id string) (*models.MovieImages, error) {
			return &models.MovieImages{Backdrops: []models.Image{{FilePath: "/back1.jpg"}, {FilePath: "/back2.jpg"}}}, nil
		}

		rec := app.get("/movie/27205?user=alice")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		body := rec.Body.String()
		assertContains(t, body, "Inception")
		assertContains(t, body, "2010")
		assertContains(t, body, "https://www.youtube.com/embed/first")
		assertContains(t, body, "/original/back1.jpg")
		assertContains(t, body, `name="movieId" value="27205"`)
		assertContains(t, body, `name="user" value="alice"`)
		if strings.Contains(body, "embed/second") || strings.Contains(body, "back2") {
			t.Error("expected only the first trailer and backdrop")
		}
		if app.metadata.Calls.Load() != 3 {
			t.Errorf("expected 3 metadata calls, got %d", app.metadata.Calls.Load())
		}
	})

	t.Run("Detail Page Without Trailer Or Backdrop", func(t *testing.T) {
		app := newTestApp(t)
		app.metadata.DetailsFn = func(ctx context.Context, id string) (*models.Movie, error) {
			return &models.Movie{ID: 1, Title: "Obscure"}, nil
		}

		rec := app.get("/movie/1")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		body := rec.Body.String()
		if strings.Contains(body, "youtube.com/embed") || strings.Contains(body, `class="backdrop"`) {
			t.Error("expected no trailer or backdrop")
		}
		assertContains(t, body, "Log in to save")
	})

	t.Run("Detail Page Failure", func(t *testing.T) {
		app := newTestApp(t)
		app.metadata.VideosFn = func(ctx context.Context, id string) (*models.VideoList, error) {
			return nil, errors.New("videos exploded")
		}

		rec := app.get("/movie/1")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}
		assertContains(t, rec.Body.String(), "videos exploded")
	})

	t.Run("Detail Failure Cancels Siblings", func(t *testing.T) {
		app := newTestApp(t)
		app.metadata.DetailsFn = func(ctx context.Context, id string) (*models.Movie, error) {
			return nil, errors.New("details failed")
		}
		app.metadata.ImagesFn = func(ctx context.Context, id string) (*models.MovieImages, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}

		rec := app.get("/movie/1")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}
		assertContains(t, rec.Body.String(), "details failed")
	})

	t.Run("Recommendations Page", func(t *testing.T) {
		app := newTestApp(t)
		app.metadata.DetailsFn = func(ctx context.Context, id string) (*models.Movie, error) {
			return &models.Movie{ID: 5, Title: "Heat"}, nil
		}
		app.metadata.RecommendationsFn = func(ctx context.Context, id string, page int) (*models.SearchResults, error) {
			if page != 1 {
				t.Errorf("expected page 1, got %d", page)
			}
			return moviePage(20), nil
		}

		rec := app.get("/recommendations/5")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		body := rec.Body.String()
		assertContains(t, body, "Heat")
		if n := strings.Count(body, `class="card"`); n != 12 {
			t.Errorf("expected 12 recommendations, got %d", n)
		}
		assertContains(t, body, "Movie 12")
		if strings.Contains(body, "Movie 13") {
			t.Error("expected recommendations after the twelfth to be dropped")
		}
	})

	t.Run("Recommendations Page Failure", func(t *testing.T) {
		app := newTestApp(t)
		app.metadata.RecommendationsFn = func(ctx context.Context, id string, page int) (*models.SearchResults, error) {
			return nil, errors.New("recs unavailable")
		}

		rec := app.get("/recommendations/5")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}
		assertContains(t, rec.Body.String(), "recs unavailable")
	})
}

func TestAPI(t *testing.T) {
	t.Run("Search", func(t *testing.T) {
		app := newTestApp(t)
		app.metadata.SearchFn = func(ctx context.Context, query string, page int) (*models.SearchResults, error) {
			if query != "heat" || page != 1 {
				t.Errorf("unexpected search %q page %d", query, page)
			}
			return moviePage(3), nil
		}

		rec := app.get("/api/search?query=heat")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
			t.Errorf("expected JSON content type, got %q", rec.Header().Get("Content-Type"))
		}

		var results models.SearchResults
		if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(results.Results) != 3 || results.TotalResults != 3 {
			t.Errorf("unexpected results %+v", results)
		}
	})

	t.Run("Search Failure", func(t *testing.T) {
		app := newTestApp(t)
		app.metadata.SearchFn = func(ctx context.Context, query string, page int) (*models.SearchResults, error) {
			return nil, errors.New("upstream down")
		}

		rec := app.get("/api/search?query=x")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}

		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode error: %v", err)
		}
		if body["error"] != "upstream down" {
			t.Errorf("expected error 'upstream down', got %q", body["error"])
		}
	})

	t.Run("Details Verbatim", func(t *testing.T) {
		payload := `{"id":27205,"title":"Inception","budget":160000000,"production_companies":[{"id":923}]}`

		app := newTestApp(t)
		app.metadata.DetailsFn = func(ctx context.Context, id string) (*models.Movie, error) {
			return decodeMovie(t, payload), nil
		}

		rec := app.get("/api/movie/27205")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if rec.Body.String() != payload {
			t.Errorf("expected upstream payload, got %s", rec.Body.String())
		}
	})

	t.Run("Images And Videos", func(t *testing.T) {
		app := newTestApp(t)
		app.metadata.ImagesFn = func(ctx context.Context, id string) (*models.MovieImages, error) {
			return &models.MovieImages{ID: 7, Posters: []models.Image{{FilePath: "/p.jpg"}}}, nil
		}
		app.metadata.VideosFn = func(ctx context.Context, id string) (*models.VideoList, error) {
			return &models.VideoList{ID: 7, Results: []models.Video{{Key: "k", Type: "Trailer"}}}, nil
		}

		assertContains(t, app.get("/api/movie/7/images").Body.String(), `"file_path":"/p.jpg"`)
		assertContains(t, app.get("/api/movie/7/videos").Body.String(), `"key":"k"`)
	})

	t.Run("Images And Videos Verbatim", func(t *testing.T) {
		imagesPayload := `{"id":603,"backdrops":[],"logos":[],"posters":[{"file_path":"/p.jpg","iso_3166_1":"US"}]}`
		videosPayload := `{"id":603,"results":[{"key":"k","type":"Trailer","iso_3166_1":"US","official":true}]}`

		app := newTestApp(t)
		app.metadata.ImagesFn = func(ctx context.Context, id string) (*models.MovieImages, error) {
			var images models.MovieImages
			if err := json.Unmarshal([]byte(imagesPayload), &images); err != nil {
				t.Fatalf("failed to decode images: %v", err)
			}
			return &images, nil
		}
		app.metadata.VideosFn = func(ctx context.Context, id string) (*models.VideoList, error) {
			var videos models.VideoList
			if err := json.Unmarshal([]byte(videosPayload), &videos); err != nil {
				t.Fatalf("failed to decode videos: %v", err)
			}
			return &videos, nil
		}

		if got := app.get("/api/movie/603/images").Body.String(); got != imagesPayload {
			t.Errorf("expected upstream images payload, got %s", got)
		}
		if got := app.get("/api/movie/603/videos").Body.String(); got != videosPayload {
			t.Errorf("expected upstream videos payload, got %s", got)
		}
	})

	t.Run("Path ID Is Forwarded", func(t *testing.T) {
		app := newTestApp(t)
		var seen []string
		app.metadata.ImagesFn = func(ctx context.Context, id string) (*models.MovieImages, error) {
			seen = append(seen, id)
			return &models.MovieImages{}, nil
		}

		app.get("/api/movie/603/images")
		if len(seen) != 1 || seen[0] != "603" {
			t.Errorf("expected id 603, got %v", seen)
		}
	})

	t.Run("Recommendations Capped", func(t *testing.T) {
		for _, n := range []int{0, 5, 12, 20} {
			app := newTestApp(t)
			app.metadata.RecommendationsFn = func(ctx context.Context, id string, page int) (*models.SearchResults, error) {
				return moviePage(n), nil
			}

			rec := app.get("/api/movie/1/recommendations")
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rec.Code)
			}

			var movies []models.Movie
			if err := json.Unmarshal(rec.Body.Bytes(), &movies); err != nil {
				t.Fatalf("expected a JSON array: %v", err)
			}
			if want := min(n, 12); len(movies) != want {
				t.Errorf("with %d upstream results: expected %d, got %d", n, want, len(movies))
			}
		}
	})

	t.Run("Endpoint Failures", func(t *testing.T) {
		app := newTestApp(t)
		fail := errors.New("tmdb status 401")
		app.metadata.DetailsFn = func(ctx context.Context, id string) (*models.Movie, error) { return nil, fail }
		app.metadata.ImagesFn = func(ctx context.Context, id string) (*models.MovieImages, error) { return nil, fail }
		app.metadata.VideosFn = func(ctx context.Context, id string) (*models.VideoList, error) { return nil, fail }
		app.metadata.RecommendationsFn = func(ctx context.Context, id string, page int) (*models.SearchResults, error) {
			return nil, fail
		}

		for _, path := range []string{"/api/movie/1", "/api/movie/1/images", "/api/movie/1/videos", "/api/movie/1/recommendations"} {
			rec := app.get(path)
			if rec.Code != http.StatusInternalServerError {
				t.Errorf("%s: expected status 500, got %d", path, rec.Code)
			}
			assertContains(t, rec.Body.String(), `{"error":"tmdb status 401"}`)
		}
	})
}

func TestViews(t *testing.T) {
	views, err := NewViews(testImageBase + "/")
	if err != nil {
		t.Fatalf("failed to parse views: %v", err)
	}

	t.Run("Unknown Template", func(t *testing.T) {
		var sb strings.Builder
		err := views.Render(&sb, "missing", nil)
		if !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if sb.Len() != 0 {
			t.Error("expected nothing written on failure")
		}
	})

	t.Run("Every Page Renders", func(t *testing.T) {
		data := map[string]any{
			PageHome:           homeData{},
			PageAuth:           authData{ErrorMessage: "x"},
			PageProfile:        profileData{Page: Page{Username: "a"}},
			PageMovie:          movieData{Movie: &models.Movie{ID: 1}},
			PageRecommendation: recommendationData{MovieName: "m"},
		}
		for name, d := range data {
			var sb strings.Builder
			if err := views.Render(&sb, name, d); err != nil {
				t.Errorf("%s: render failed: %v", name, err)
			}
		}
	})

	t.Run("Helpers", func(t *testing.T) {
		if got := imageURL("https://img", "w500")("/a.jpg"); got != "https://img/w500/a.jpg" {
			t.Errorf("unexpected image URL %q", got)
		}
		if got := imageURL("https://img", "w500")(""); got != "" {
			t.Errorf("expected empty URL for empty path, got %q", got)
		}
		if got := year("1999-03-31"); got != "1999" {
			t.Errorf("expected 1999, got %q", got)
		}
		if got := year(""); got != "" {
			t.Errorf("expected empty year, got %q", got)
		}
		if got := userQuery("a b&c"); got != "?user=a+b%26c" {
			t.Errorf("unexpected user query %q", got)
		}
		if got := userQuery(""); got != "" {
			t.Errorf("expected empty user query, got %q", got)
		}
	})
}
