// Package web implements the server-rendered movie catalogue and watchlist application.
//
// # Architecture
//
// [Handler] owns every route and depends on three injected collaborators:
//   - [models.CredentialStore]: user lookup, account creation and watchlist persistence
//   - [services.MetadataService]: movie search, details, images, videos and recommendations
//   - [Views]: embedded html/template pages cloned from a shared layout
//
// Identity travels as the "user" query or body parameter. There are no cookies or sessions.
//
// Routes
//
//	GET  /                                 → Home page with search
//	GET  /auth                             → Login and create-account forms
//	POST /login                            → Credential check, redirect to /?user=
//	POST /create-account                   → Account creation, redirect to /?user=
//	POST /add-to-watchlist                 → Append movie details, redirect to /movie/:id?user=
//	GET  /profile                          → Saved watchlist
//	GET  /movie/:id                        → Details, trailer and backdrop (fetched concurrently)
//	GET  /recommendations/:id              → Up to twelve recommendations
//	GET  /api/search                       → JSON search results
//	GET  /api/movie/:id                    → JSON details
//	GET  /api/movie/:id/images             → JSON images
//	GET  /api/movie/:id/videos             → JSON videos
//	GET  /api/movie/:id/recommendations    → JSON array of up to twelve movies
//	GET  /healthz                          → Liveness probe
//	GET  /static/*filepath                 → Embedded stylesheet and script
//
// # Error Handling
//
// Form routes render a message on the auth page. Detail pages answer 500 with the upstream error
// text, and JSON routes answer 500 with {"error": "..."}.
package web

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/server"
	"github.com/desertthunder/marquee/internal/services"
)

// maxRecommendations caps the recommendations shown on pages and returned by the API.
const maxRecommendations = 12

var _ server.Handler = (*Handler)(nil)

// Handler serves the HTML pages and JSON API.
type Handler struct {
	store    models.CredentialStore
	metadata services.MetadataService
	views    *Views
	logger   *log.Logger
}

// NewHandler creates a [Handler] from its collaborators.
func NewHandler(store models.CredentialStore, metadata services.MetadataService, views *Views, logger *log.Logger) *Handler {
	return &Handler{
		store:    store,
		metadata: metadata,
		views:    views,
		logger:   logger,
	}
}

// Routes implements [server.Handler].
func (h *Handler) Routes() []server.Route {
	return []server.Route{
		{Method: http.MethodGet, Path: "/", Handler: http.HandlerFunc(h.home)},
		{Method: http.MethodGet, Path: "/auth", Handler: http.HandlerFunc(h.authPage)},
		{Method: http.MethodPost, Path: "/login", Handler: http.HandlerFunc(h.login)},
		{Method: http.MethodPost, Path: "/create-account", Handler: http.HandlerFunc(h.createAccount)},
		{Method: http.MethodPost, Path: "/add-to-watchlist", Handler: http.HandlerFunc(h.addToWatchlist)},
		{Method: http.MethodGet, Path: "/profile", Handler: http.HandlerFunc(h.profile)},
		{Method: http.MethodGet, Path: "/movie/:id", Handler: http.HandlerFunc(h.movie)},
		{Method: http.MethodGet, Path: "/recommendations/:id", Handler: http.HandlerFunc(h.recommendations)},
		{Method: http.MethodGet, Path: "/api/search", Handler: http.HandlerFunc(h.apiSearch)},
		{Method: http.MethodGet, Path: "/api/movie/:id", Handler: http.HandlerFunc(h.apiDetails)},
		{Method: http.MethodGet, Path: "/api/movie/:id/images", Handler: http.HandlerFunc(h.apiImages)},
		{Method: http.MethodGet, Path: "/api/movie/:id/videos", Handler: http.HandlerFunc(h.apiVideos)},
		{Method: http.MethodGet, Path: "/api/movie/:id/recommendations", Handler: http.HandlerFunc(h.apiRecommendations)},
		{Method: http.MethodGet, Path: "/healthz", Handler: http.HandlerFunc(h.healthz)},
	}
}

// NewRouter registers h, the static files and the request middleware on a new [server.BasicRouter].
func NewRouter(h *Handler, logger *log.Logger) *server.BasicRouter {
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(logger), server.Recoverer(logger))
	router.Handler(h)
	router.ServeFiles("/static/*filepath", StaticFS())
	return router
}

// render writes a page, or a 500 when the template fails.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := h.views.Render(&buf, name, data); err != nil {
		h.logger.Error("render failed", "template", name, "error", err, "id", server.RequestID(r.Context()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("failed to encode response", "error", err)
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

func (h *Handler) writeJSONError(w http.ResponseWriter, err error) {
	h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
