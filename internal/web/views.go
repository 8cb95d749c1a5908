package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

//go:embed templates/*.html
var templateFiles embed.FS

//go:embed static
var staticFiles embed.FS

// Page names accepted by [Views.Render].
const (
	PageHome           = "home"
	PageAuth           = "auth"
	PageProfile        = "profile"
	PageMovie          = "movie"
	PageRecommendation = "recommendation"
)

var pageNames = []string{PageHome, PageAuth, PageProfile, PageMovie, PageRecommendation}

// Page holds the fields the shared layout reads.
type Page struct {
	Title    string
	Username string
}

type homeData struct {
	Page
}

type authData struct {
	Page
	ErrorMessage string
}

type profileData struct {
	Page
	Watchlist    []models.Movie
	ErrorMessage string
}

type movieData struct {
	Page
	Movie        *models.Movie
	TrailerKey   string
	BackdropPath string
}

type recommendationData struct {
	Page
	MovieName       string
	Recommendations []models.Movie
}

// Views renders the embedded page templates. Each page is a clone of the layout with its own content block.
type Views struct {
	pages map[string]*template.Template
}

// NewViews parses every page template. imageBaseURL prefixes poster and backdrop paths.
func NewViews(imageBaseURL string) (*Views, error) {
	imageBaseURL = strings.TrimRight(imageBaseURL, "/")
	funcs := template.FuncMap{
		"posterURL":   imageURL(imageBaseURL, "w500"),
		"backdropURL": imageURL(imageBaseURL, "original"),
		"imageBase":   func() string { return imageBaseURL },
		"year":        year,
		"userQuery":   userQuery,
	}

	base, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFiles, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tpl, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := tpl.ParseFS(templateFiles, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = tpl
	}

	return &Views{pages: pages}, nil
}

// Render writes the named page for data to w. Nothing is written when execution fails.
func (v *Views) Render(w io.Writer, name string, data any) error {
	tpl, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("%w: template %q", shared.ErrNotFound, name)
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	_, err := buf.WriteTo(w)
	return err
}

// StaticFS returns the embedded stylesheet and scripts.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

func imageURL(base, size string) func(string) string {
	return func(path string) string {
		if path == "" {
			return ""
		}
		return base + "/" + size + path
	}
}

func year(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

// userQuery returns the "?user=" suffix that carries identity between pages, or "" when anonymous.
func userQuery(username string) string {
	if username == "" {
		return ""
	}
	return "?user=" + url.QueryEscape(username)
}
