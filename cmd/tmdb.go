package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

// TMDBSearch lists movies matching a title query.
func (r *Runner) TMDBSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: query is required", shared.ErrMissingArgument)
	}

	metadata, err := r.openMetadata()
	if err != nil {
		return err
	}

	r.logger.Info("searching movies", "query", query, "page", cmd.Int("page"))

	results, err := metadata.SearchByTitle(ctx, query, cmd.Int("page"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, cmd.Bool("pretty"))
	}

	r.writePlain("Results for %q (page %d of %d, %d total)\n\n", query, results.Page, results.TotalPages, results.TotalResults)
	r.writeMovies(results.Results)
	return nil
}

// TMDBMovie prints details, the first trailer and the first backdrop for a movie.
func (r *Runner) TMDBMovie(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: movie id is required", shared.ErrMissingArgument)
	}

	metadata, err := r.openMetadata()
	if err != nil {
		return err
	}

	movie, err := metadata.GetDetails(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(movie, cmd.Bool("pretty"))
	}

	videos, err := metadata.GetVideos(ctx, id)
	if err != nil {
		r.logger.Warn("failed to fetch videos", "id", id, "error", err)
	}
	images, err := metadata.GetImages(ctx, id)
	if err != nil {
		r.logger.Warn("failed to fetch images", "id", id, "error", err)
	}

	title := movie.Title
	if y := movie.Year(); y != "" {
		title = fmt.Sprintf("%s (%s)", title, y)
	}
	r.writePlainHeader(title)

	if movie.Tagline != "" {
		r.writePlain("%s\n\n", movie.Tagline)
	}
	if movie.Runtime > 0 {
		r.writePlain("Runtime: %s\n", formatter.FormatRuntime(movie.Runtime))
	}
	r.writePlain("Rating: %.1f (%d votes)\n", movie.VoteAverage, movie.VoteCount)
	if len(movie.Genres) > 0 {
		names := make([]string, len(movie.Genres))
		for i, g := range movie.Genres {
			names[i] = g.Name
		}
		r.writePlain("Genres: %s\n", strings.Join(names, ", "))
	}
	if key := videos.TrailerKey(); key != "" {
		r.writePlain("Trailer: https://www.youtube.com/watch?v=%s\n", key)
	}
	if path := images.FirstBackdrop(); path != "" {
		r.writePlain("Backdrop: %s/original%s\n", r.config.Credentials.TMDB.ImageBaseURL, path)
	}
	if movie.Overview != "" {
		r.writePlainln("%s", movie.Overview)
	}
	return nil
}

// TMDBImages lists image file paths for a movie.
func (r *Runner) TMDBImages(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: movie id is required", shared.ErrMissingArgument)
	}

	metadata, err := r.openMetadata()
	if err != nil {
		return err
	}

	images, err := metadata.GetImages(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(images, cmd.Bool("pretty"))
	}

	base := r.config.Credentials.TMDB.ImageBaseURL
	for _, group := range []struct {
		name   string
		images []models.Image
	}{
		{"Posters", images.Posters},
		{"Backdrops", images.Backdrops},
		{"Logos", images.Logos},
	} {
		r.writePlain("%s (%d)\n", group.name, len(group.images))
		for _, img := range group.images {
			r.writePlain("  %s/original%s  %dx%d\n", base, img.FilePath, img.Width, img.Height)
		}
	}
	return nil
}

// TMDBVideos lists the videos attached to a movie.
func (r *Runner) TMDBVideos(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: movie id is required", shared.ErrMissingArgument)
	}

	metadata, err := r.openMetadata()
	if err != nil {
		return err
	}

	videos, err := metadata.GetVideos(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(videos, cmd.Bool("pretty"))
	}

	if len(videos.Results) == 0 {
		return r.writePlain("No videos found.\n")
	}
	for _, v := range videos.Results {
		r.writePlain("%-10s %s (%s: %s)\n", v.Type, v.Name, v.Site, v.Key)
	}
	return nil
}

// TMDBRecommendations lists up to twelve movies recommended from a movie.
func (r *Runner) TMDBRecommendations(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: movie id is required", shared.ErrMissingArgument)
	}

	metadata, err := r.openMetadata()
	if err != nil {
		return err
	}

	results, err := metadata.GetRecommendations(ctx, id, 1)
	if err != nil {
		return err
	}

	top := results.Top(12)
	if cmd.Bool("json") {
		return r.writeJSON(top, cmd.Bool("pretty"))
	}

	r.writePlain("Recommendations for %s\n\n", id)
	r.writeMovies(top)
	return nil
}

// TMDBGet makes a direct GET request to the TMDB API.
func (r *Runner) TMDBGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
	}

	if r.api == nil {
		if _, err := r.openMetadata(); err != nil {
			return err
		}
		if r.api == nil {
			return fmt.Errorf("%w: raw API client not initialized", shared.ErrServiceUnavailable)
		}
	}

	r.logger.Info("GET request", "path", path)

	resp, err := r.api.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, !cmd.Bool("json"))
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

func (r *Runner) writeMovies(movies []models.Movie) {
	if len(movies) == 0 {
		r.writePlain("No movies found.\n")
		return
	}

	for i, m := range movies {
		r.writePlain("%2d. %s", i+1, m.Title)
		if y := m.Year(); y != "" {
			r.writePlain(" (%s)", y)
		}
		r.writePlain("  [%d]  ★ %.1f\n", m.ID, m.VoteAverage)
	}
}
