package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/models"
)

var _ list.Item = movieItem{}

// movieItem wraps [models.Movie] to implement [list.Item].
type movieItem struct {
	movie models.Movie
}

func (i movieItem) FilterValue() string { return i.movie.Title }

func (i movieItem) Title() string {
	if y := i.movie.Year(); y != "" {
		return fmt.Sprintf("%s (%s)", i.movie.Title, y)
	}
	return i.movie.Title
}

func (i movieItem) Description() string {
	var parts []string
	if rt := formatter.FormatRuntime(i.movie.Runtime); rt != "" {
		parts = append(parts, rt)
	}
	if i.movie.VoteAverage > 0 {
		parts = append(parts, fmt.Sprintf("★ %.1f", i.movie.VoteAverage))
	}
	if len(i.movie.Genres) > 0 {
		parts = append(parts, i.movie.Genres[0].Name)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("TMDB %d", i.movie.ID)
	}
	return strings.Join(parts, " • ")
}

func movieItems(w models.Watchlist) []list.Item {
	items := make([]list.Item, len(w))
	for i, m := range w {
		items[i] = movieItem{movie: m}
	}
	return items
}
