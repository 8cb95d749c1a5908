package web

import (
	"net/http"
	"net/url"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/server"
)

const (
	msgMissingWatchlistFields = "Missing user or movieId"
	msgWatchlistFailed        = "Could not update watchlist"
	msgProfileFailed          = "Error loading profile"
)

// addToWatchlist fetches the full movie details and appends them unless the id is already saved.
func (h *Handler) addToWatchlist(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		h.logger.Warn("add to watchlist: bad body", "error", err)
		http.Error(w, msgMissingWatchlistFields, http.StatusBadRequest)
		return
	}

	username, movieID := body.Get("user"), body.Get("movieId")
	if username == "" || movieID == "" {
		http.Error(w, msgMissingWatchlistFields, http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	movie, err := h.metadata.GetDetails(ctx, movieID)
	if err != nil {
		h.logger.Error("add to watchlist: details failed", "movie", movieID, "error", err, "id", server.RequestID(ctx))
		http.Error(w, msgWatchlistFailed, http.StatusInternalServerError)
		return
	}

	added, err := h.store.AddToWatchlist(ctx, username, *movie)
	if err != nil {
		h.logger.Error("add to watchlist: store failed", "user", username, "movie", movieID, "error", err, "id", server.RequestID(ctx))
		http.Error(w, msgWatchlistFailed, http.StatusInternalServerError)
		return
	}
	if added {
		h.logger.Info("watchlist updated", "user", username, "movie", movie.ID)
	}

	http.Redirect(w, r, "/movie/"+url.PathEscape(movieID)+"?user="+url.QueryEscape(username), http.StatusFound)
}

// profile renders the saved watchlist. A store failure still renders the page, with an empty list.
func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("user")
	if username == "" {
		http.Redirect(w, r, "/auth", http.StatusFound)
		return
	}

	data := profileData{Page: Page{Title: "Watchlist", Username: username}}

	watchlist, err := h.store.GetWatchlist(r.Context(), username)
	if err != nil {
		h.logger.Error("profile: watchlist failed", "user", username, "error", err, "id", server.RequestID(r.Context()))
		data.Watchlist = []models.Movie{}
		data.ErrorMessage = msgProfileFailed
	} else {
		data.Watchlist = watchlist
	}

	h.render(w, r, PageProfile, data)
}
