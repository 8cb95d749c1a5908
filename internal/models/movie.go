package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Genre is a TMDB genre entry.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Movie is a movie object as returned by the catalog API.
//
// The exported fields are the ones the application renders. A Movie decoded from JSON
// keeps the original payload and encodes back to it byte for byte, so watchlist entries
// store the full upstream object.
type Movie struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title,omitempty"`
	Overview      string  `json:"overview"`
	Tagline       string  `json:"tagline,omitempty"`
	PosterPath    string  `json:"poster_path,omitempty"`
	BackdropPath  string  `json:"backdrop_path,omitempty"`
	ReleaseDate   string  `json:"release_date,omitempty"`
	Runtime       int     `json:"runtime,omitempty"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int     `json:"vote_count,omitempty"`
	Genres        []Genre `json:"genres,omitempty"`

	raw json.RawMessage
}

type movieFields Movie

// UnmarshalJSON decodes the known fields and retains the raw payload.
func (m *Movie) UnmarshalJSON(data []byte) error {
	var f movieFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*m = Movie(f)
	m.raw = bytes.Clone(data)
	return nil
}

// MarshalJSON returns the retained payload, or the known fields for movies built in code.
func (m Movie) MarshalJSON() ([]byte, error) {
	if len(m.raw) > 0 {
		return m.raw, nil
	}
	return json.Marshal(movieFields(m))
}

// Key returns the identifier as a string, the form used in routes.
func (m Movie) Key() string {
	return strconv.FormatInt(m.ID, 10)
}

// Year returns the four-digit release year, or "" when unknown.
func (m Movie) Year() string {
	if len(m.ReleaseDate) < 4 {
		return ""
	}
	return m.ReleaseDate[:4]
}

// Image is a single poster, backdrop or logo entry.
type Image struct {
	AspectRatio float64 `json:"aspect_ratio"`
	FilePath    string  `json:"file_path"`
	Height      int     `json:"height"`
	Width       int     `json:"width"`
	Language    *string `json:"iso_639_1"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
}

// MovieImages is the response of the movie images endpoint.
//
// Like [Movie], a decoded value encodes back to the upstream payload unchanged.
type MovieImages struct {
	ID        int64   `json:"id"`
	Backdrops []Image `json:"backdrops"`
	Logos     []Image `json:"logos"`
	Posters   []Image `json:"posters"`

	raw json.RawMessage
}

type movieImagesFields MovieImages

func (i *MovieImages) UnmarshalJSON(data []byte) error {
	var f movieImagesFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*i = MovieImages(f)
	i.raw = bytes.Clone(data)
	return nil
}

func (i MovieImages) MarshalJSON() ([]byte, error) {
	if len(i.raw) > 0 {
		return i.raw, nil
	}
	return json.Marshal(movieImagesFields(i))
}

// FirstBackdrop returns the file path of the first backdrop, or "" when there is none.
func (i *MovieImages) FirstBackdrop() string {
	if i == nil || len(i.Backdrops) == 0 {
		return ""
	}
	return i.Backdrops[0].FilePath
}

// Video is a trailer, teaser or clip hosted on an external site.
type Video struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Site        string `json:"site"`
	Size        int    `json:"size"`
	Type        string `json:"type"`
	Official    bool   `json:"official"`
	PublishedAt string `json:"published_at"`
	Language    string `json:"iso_639_1"`
	Country     string `json:"iso_3166_1"`
}

// VideoList is the response of the movie videos endpoint. It keeps the upstream payload the same way [Movie] does.
type VideoList struct {
	ID      int64   `json:"id"`
	Results []Video `json:"results"`

	raw json.RawMessage
}

type videoListFields VideoList

func (v *VideoList) UnmarshalJSON(data []byte) error {
	var f videoListFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = VideoList(f)
	v.raw = bytes.Clone(data)
	return nil
}

func (v VideoList) MarshalJSON() ([]byte, error) {
	if len(v.raw) > 0 {
		return v.raw, nil
	}
	return json.Marshal(videoListFields(v))
}

// TrailerKey returns the key of the first video whose type is "Trailer", or "" when there is none.
func (v *VideoList) TrailerKey() string {
	if v == nil {
		return ""
	}
	for _, video := range v.Results {
		if video.Type == "Trailer" {
			return video.Key
		}
	}
	return ""
}

// SearchResults is a page of movies, as returned by search and recommendations.
type SearchResults struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Top returns at most n results in upstream order. The slice is never nil.
func (s *SearchResults) Top(n int) []Movie {
	if s == nil || n <= 0 {
		return []Movie{}
	}
	if len(s.Results) < n {
		n = len(s.Results)
	}
	out := make([]Movie, n)
	copy(out, s.Results[:n])
	return out
}
