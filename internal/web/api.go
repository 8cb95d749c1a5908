package web

import (
	"net/http"

	"github.com/desertthunder/marquee/internal/server"
)

func (h *Handler) apiSearch(w http.ResponseWriter, r *http.Request) {
	results, err := h.metadata.SearchByTitle(r.Context(), r.URL.Query().Get("query"), 1)
	if err != nil {
		h.logger.Error("api search failed", "error", err)
		h.writeJSONError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, results)
}

func (h *Handler) apiDetails(w http.ResponseWriter, r *http.Request) {
	movie, err := h.metadata.GetDetails(r.Context(), server.Param(r, "id"))
	if err != nil {
		h.logger.Error("api details failed", "error", err)
		h.writeJSONError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, movie)
}

func (h *Handler) apiImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.metadata.GetImages(r.Context(), server.Param(r, "id"))
	if err != nil {
		h.logger.Error("api images failed", "error", err)
		h.writeJSONError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, images)
}

func (h *Handler) apiVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.metadata.GetVideos(r.Context(), server.Param(r, "id"))
	if err != nil {
		h.logger.Error("api videos failed", "error", err)
		h.writeJSONError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, videos)
}

// apiRecommendations returns a bare array of at most twelve movies.
func (h *Handler) apiRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.metadata.GetRecommendations(r.Context(), server.Param(r, "id"), 1)
	if err != nil {
		h.logger.Error("api recommendations failed", "error", err)
		h.writeJSONError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, recs.Top(maxRecommendations))
}
