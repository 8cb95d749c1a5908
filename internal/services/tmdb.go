// TMDB API implementation of [MetadataService]
//
// Response types are documented at https://developer.themoviedb.org/reference
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	tmdbBaseURL         = "https://api.themoviedb.org/3"
	tmdbDefaultLanguage = "en-US"
)

var _ MetadataService = (*TMDBService)(nil)

// tmdbStatus is the error body TMDB returns alongside non-2xx responses.
type tmdbStatus struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

// TMDBService implements [MetadataService] against the TMDB v3 REST API.
//
// A v4 read access token is sent as a bearer token through an [oauth2] transport; otherwise the v3 key is
// appended as the api_key query parameter. When a rate limit is configured every request waits on the limiter.
type TMDBService struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewTMDBService creates a TMDB client from the given configuration.
//
// client is the base HTTP client and may be nil. Returns [shared.ErrMissingCredentials] when neither an access
// token nor an API key is set.
func NewTMDBService(cfg shared.TMDBConfig, client *http.Client) (*TMDBService, error) {
	if cfg.AccessToken == "" && cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: tmdb api_key or access_token", shared.ErrMissingCredentials)
	}
	if client == nil {
		client = http.DefaultClient
	}

	s := &TMDBService{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		language:   cfg.Language,
		httpClient: client,
	}
	if s.baseURL == "" {
		s.baseURL = tmdbBaseURL
	}
	if s.language == "" {
		s.language = tmdbDefaultLanguage
	}

	if cfg.AccessToken != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
		s.httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.AccessToken,
			TokenType:   "Bearer",
		}))
	} else {
		s.apiKey = cfg.APIKey
	}

	if cfg.RateLimit > 0 {
		burst := max(int(cfg.RateLimit), 1)
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return s, nil
}

// Name returns the name of the service.
func (s *TMDBService) Name() string {
	return "TMDB"
}

// Raw returns an [APIService] sharing this client's base URL and credentials.
func (s *TMDBService) Raw() *APIService {
	return NewAPIService(s.baseURL, s.apiKey, s.httpClient)
}

// SearchByTitle searches movies by title.
func (s *TMDBService) SearchByTitle(ctx context.Context, query string, page int) (*models.SearchResults, error) {
	params := s.localized()
	params.Set("query", query)
	params.Set("page", strconv.Itoa(max(page, 1)))

	var results models.SearchResults
	if err := s.doRequest(ctx, "/search/movie", params, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// GetDetails retrieves a movie by ID.
func (s *TMDBService) GetDetails(ctx context.Context, id string) (*models.Movie, error) {
	var movie models.Movie
	if err := s.doRequest(ctx, movieEndpoint(id, ""), s.localized(), &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// GetImages retrieves the images of a movie.
//
// The language filter is not applied so that untagged and foreign artwork is included.
func (s *TMDBService) GetImages(ctx context.Context, id string) (*models.MovieImages, error) {
	var images models.MovieImages
	if err := s.doRequest(ctx, movieEndpoint(id, "images"), url.Values{}, &images); err != nil {
		return nil, err
	}
	return &images, nil
}

// GetVideos retrieves the videos of a movie.
func (s *TMDBService) GetVideos(ctx context.Context, id string) (*models.VideoList, error) {
	var videos models.VideoList
	if err := s.doRequest(ctx, movieEndpoint(id, "videos"), s.localized(), &videos); err != nil {
		return nil, err
	}
	return &videos, nil
}

// GetRecommendations retrieves movies recommended from the given movie.
func (s *TMDBService) GetRecommendations(ctx context.Context, id string, page int) (*models.SearchResults, error) {
	params := s.localized()
	params.Set("page", strconv.Itoa(max(page, 1)))

	var results models.SearchResults
	if err := s.doRequest(ctx, movieEndpoint(id, "recommendations"), params, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

func (s *TMDBService) localized() url.Values {
	return url.Values{"language": {s.language}}
}

func movieEndpoint(id, resource string) string {
	endpoint := "/movie/" + url.PathEscape(id)
	if resource != "" {
		endpoint += "/" + resource
	}
	return endpoint
}

// doRequest performs an authenticated GET request to the TMDB API and decodes the JSON body into result.
func (s *TMDBService) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	if s.apiKey != "" {
		params.Set("api_key", s.apiKey)
	}

	apiURL := s.baseURL + endpoint
	if encoded := params.Encode(); encoded != "" {
		apiURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// statusError converts a non-2xx response into an error carrying the TMDB status message when present.
func statusError(resp *http.Response) error {
	var status tmdbStatus
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(body, &status)

	message := status.StatusMessage
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, message)
	}
	if resp.StatusCode == http.StatusServiceUnavailable {
		return fmt.Errorf("%w: %s", shared.ErrServiceUnavailable, message)
	}
	return fmt.Errorf("%w: tmdb status %d: %s", shared.ErrAPIRequest, resp.StatusCode, message)
}
