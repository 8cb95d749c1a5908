package web

import (
	"net/http"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/server"
	"golang.org/x/sync/errgroup"
)

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, PageHome, homeData{Page: Page{Username: r.URL.Query().Get("user")}})
}

// movie renders the detail page. Details, videos and images are fetched concurrently and
// any failure fails the page.
func (h *Handler) movie(w http.ResponseWriter, r *http.Request) {
	id := server.Param(r, "id")

	var (
		details *models.Movie
		videos  *models.VideoList
		images  *models.MovieImages
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		details, err = h.metadata.GetDetails(ctx, id)
		return err
	})
	g.Go(func() (err error) {
		videos, err = h.metadata.GetVideos(ctx, id)
		return err
	})
	g.Go(func() (err error) {
		images, err = h.metadata.GetImages(ctx, id)
		return err
	})

	if err := g.Wait(); err != nil {
		h.logger.Error("movie page failed", "movie", id, "error", err, "id", server.RequestID(r.Context()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.render(w, r, PageMovie, movieData{
		Page:         Page{Title: details.Title, Username: r.URL.Query().Get("user")},
		Movie:        details,
		TrailerKey:   videos.TrailerKey(),
		BackdropPath: images.FirstBackdrop(),
	})
}

// recommendations renders the source movie's title and its first recommendations.
func (h *Handler) recommendations(w http.ResponseWriter, r *http.Request) {
	id := server.Param(r, "id")

	var (
		details *models.Movie
		recs    *models.SearchResults
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		details, err = h.metadata.GetDetails(ctx, id)
		return err
	})
	g.Go(func() (err error) {
		recs, err = h.metadata.GetRecommendations(ctx, id, 1)
		return err
	})

	if err := g.Wait(); err != nil {
		h.logger.Error("recommendations page failed", "movie", id, "error", err, "id", server.RequestID(r.Context()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.render(w, r, PageRecommendation, recommendationData{
		Page:            Page{Title: "Recommendations"},
		MovieName:       details.Title,
		Recommendations: recs.Top(maxRecommendations),
	})
}
