package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Watchlist is an ordered list of saved movies, unique by movie ID.
//
// It is stored as a JSON array in a single column.
type Watchlist []Movie

// Contains reports whether a movie with the given ID is present.
func (w Watchlist) Contains(id int64) bool {
	for _, m := range w {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Add appends movie unless an entry with the same ID exists. It reports whether the list changed.
func (w Watchlist) Add(movie Movie) (Watchlist, bool) {
	if w.Contains(movie.ID) {
		return w, false
	}
	return append(w, movie), true
}

// Remove drops the entry with the given ID, keeping order. It reports whether the list changed.
func (w Watchlist) Remove(id int64) (Watchlist, bool) {
	for i, m := range w {
		if m.ID == id {
			out := make(Watchlist, 0, len(w)-1)
			out = append(out, w[:i]...)
			return append(out, w[i+1:]...), true
		}
	}
	return w, false
}

// Replace swaps every entry whose ID appears in updates, keeping order. Entries without an update are kept as is.
func (w Watchlist) Replace(updates map[int64]Movie) Watchlist {
	out := make(Watchlist, len(w))
	for i, m := range w {
		if u, ok := updates[m.ID]; ok {
			out[i] = u
			continue
		}
		out[i] = m
	}
	return out
}

// IDs returns the movie IDs in list order.
func (w Watchlist) IDs() []int64 {
	ids := make([]int64, len(w))
	for i, m := range w {
		ids[i] = m.ID
	}
	return ids
}

func (w Watchlist) orEmpty() Watchlist {
	if w == nil {
		return Watchlist{}
	}
	return w
}

// Value implements [driver.Valuer], encoding the list as a JSON array.
func (w Watchlist) Value() (driver.Value, error) {
	data, err := json.Marshal(w.orEmpty())
	if err != nil {
		return nil, fmt.Errorf("failed to encode watchlist: %w", err)
	}
	return string(data), nil
}

// Scan implements [sql.Scanner] for JSON text or blob columns. NULL scans as an empty list.
func (w *Watchlist) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*w = Watchlist{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported watchlist column type %T", src)
	}

	var out Watchlist
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode watchlist: %w", err)
	}
	*w = out.orEmpty()
	return nil
}

// WatchlistExport is a user's watchlist at a point in time, the input to the export formats.
type WatchlistExport struct {
	Username   string    `json:"username"`
	ExportedAt time.Time `json:"exported_at"`
	Count      int       `json:"count"`
	Movies     Watchlist `json:"movies"`
}

// NewWatchlistExport snapshots w for username.
func NewWatchlistExport(username string, w Watchlist) *WatchlistExport {
	w = w.orEmpty()
	return &WatchlistExport{Username: username, ExportedAt: time.Now().UTC(), Count: len(w), Movies: w}
}
