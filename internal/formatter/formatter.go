// package formatter provides functions to export watchlist data to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// posterSize is the TMDB image size used for downloaded posters.
const posterSize = "w342"

// ParseFormat accepts a format name or its file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
	}
}

// FormatRuntime renders minutes as "2h 28m", or "" when unknown.
func FormatRuntime(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}

func genreNames(m models.Movie) string {
	names := make([]string, len(m.Genres))
	for i, g := range m.Genres {
		names[i] = g.Name
	}
	return strings.Join(names, ", ")
}

func titleWithYear(m models.Movie) string {
	if y := m.Year(); y != "" {
		return fmt.Sprintf("%s (%s)", m.Title, y)
	}
	return m.Title
}

// ExportToJSON encodes the export, keeping each movie's full upstream payload.
func ExportToJSON(export *models.WatchlistExport) ([]byte, error) {
	return shared.MarshalJSON(export, true)
}

// ExportToCSV converts a WatchlistExport to CSV format with columns: ID, Title, Year, Runtime, Rating, Genres
func ExportToCSV(export *models.WatchlistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Year", "Runtime", "Rating", "Genres"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, movie := range export.Movies {
		record := []string{
			movie.Key(),
			movie.Title,
			movie.Year(),
			strconv.Itoa(movie.Runtime),
			strconv.FormatFloat(movie.VoteAverage, 'f', 1, 64),
			genreNames(movie),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a WatchlistExport to Markdown. posters maps movie IDs to
// image paths relative to the document and may be nil.
func ExportToMarkdown(export *models.WatchlistExport, posters map[int64]string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s's watchlist\n\n", export.Username)
	fmt.Fprintf(&buf, "**Movies**: %d\n", len(export.Movies))
	fmt.Fprintf(&buf, "**Exported**: %s\n\n", export.ExportedAt.Format(time.DateOnly))

	buf.WriteString("## Movies\n\n")
	for i, movie := range export.Movies {
		fmt.Fprintf(&buf, "%d. **%s**", i+1, titleWithYear(movie))
		if rt := FormatRuntime(movie.Runtime); rt != "" {
			fmt.Fprintf(&buf, " [%s]", rt)
		}
		if movie.VoteAverage > 0 {
			fmt.Fprintf(&buf, " ★ %.1f", movie.VoteAverage)
		}
		buf.WriteString("\n")

		if poster, ok := posters[movie.ID]; ok {
			fmt.Fprintf(&buf, "   ![%s](%s)\n", movie.Title, poster)
		}
		if movie.Tagline != "" {
			fmt.Fprintf(&buf, "   _%s_\n", movie.Tagline)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a WatchlistExport to plain text format
func ExportToText(export *models.WatchlistExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Watchlist: %s\n", export.Username)
	fmt.Fprintf(&buf, "Movies: %d\n\n", len(export.Movies))

	for i, movie := range export.Movies {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, titleWithYear(movie))
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty URL provided", shared.ErrMissingArgument)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// DefaultFilename is the file or directory name used when no output path is given.
func DefaultFilename(export *models.WatchlistExport, format Format) string {
	base := export.Username + "_watchlist"
	switch format {
	case FormatJSON:
		return base + ".json"
	case FormatCSV:
		return base + ".csv"
	case FormatText:
		return base + ".txt"
	default:
		return base
	}
}

// WriteExport writes export in the given format and returns the created paths.
//
// Markdown exports are written as {path}/README.md; the rest are single files.
func WriteExport(export *models.WatchlistExport, format Format, path string) ([]string, error) {
	if path == "" {
		path = DefaultFilename(export, format)
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = ExportToJSON(export)
	case FormatCSV:
		data, err = ExportToCSV(export)
	case FormatText:
		data, err = ExportToText(export)
	case FormatMarkdown:
		result, err := WriteMarkdownExport(export, path, "", nil)
		if err != nil {
			return nil, err
		}
		return result.Files, nil
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return []string{path}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
	Posters   int
}

// WriteMarkdownExport exports a watchlist to Markdown format in a dedicated directory.
//
// When imageBaseURL is set each poster is downloaded to {dir}/posters/{id}.jpg and linked from
// the document. A failed download is reported on stderr and the movie is listed without a poster.
func WriteMarkdownExport(export *models.WatchlistExport, outputDir, imageBaseURL string, client *http.Client) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = DefaultFilename(export, FormatMarkdown)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir, Files: []string{}}

	var posters map[int64]string
	if imageBaseURL != "" {
		posters = make(map[int64]string)
		posterDir := filepath.Join(outputDir, "posters")
		if err := os.MkdirAll(posterDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create poster directory: %w", err)
		}

		base := strings.TrimRight(imageBaseURL, "/")
		for _, movie := range export.Movies {
			if movie.PosterPath == "" {
				continue
			}

			imageData, err := DownloadImage(client, base+"/"+posterSize+movie.PosterPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to download poster for %s: %v\n", movie.Title, err)
				continue
			}

			name := movie.Key() + ".jpg"
			posterPath := filepath.Join(posterDir, name)
			if err := os.WriteFile(posterPath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save poster for %s: %v\n", movie.Title, err)
				continue
			}

			posters[movie.ID] = "posters/" + name
			result.Files = append(result.Files, posterPath)
			result.Posters++
		}
	}

	mdData, err := ExportToMarkdown(export, posters)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)
	return result, nil
}
