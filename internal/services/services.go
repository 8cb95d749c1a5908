package services

import (
	"context"

	"github.com/desertthunder/marquee/internal/models"
)

// MetadataService defines the read-only movie catalog queries used by the route layer.
//
// Each method issues a single upstream request. Nothing is retried or cached.
type MetadataService interface {
	// SearchByTitle returns one page of movies matching query.
	SearchByTitle(ctx context.Context, query string, page int) (*models.SearchResults, error)

	// GetDetails retrieves the full movie object for id.
	GetDetails(ctx context.Context, id string) (*models.Movie, error)

	// GetImages retrieves posters, backdrops and logos for id.
	GetImages(ctx context.Context, id string) (*models.MovieImages, error)

	// GetVideos retrieves trailers, teasers and clips for id.
	GetVideos(ctx context.Context, id string) (*models.VideoList, error)

	// GetRecommendations returns one page of movies recommended from id.
	GetRecommendations(ctx context.Context, id string, page int) (*models.SearchResults, error)
}
