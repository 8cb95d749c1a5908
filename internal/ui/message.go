package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgWatchlistFetched MsgKind = iota
	MsgMovieRemoved
	MsgProgressUpdate
	MsgRefreshComplete
)

type watchlistFetched struct {
	watchlist models.Watchlist
	err       error
}

type movieRemoved struct {
	movie   models.Movie
	removed bool
	err     error
}

type refreshComplete struct {
	result *tasks.RefreshResult
	err    error
}

// watchlistFetchedMsg is the constructor for [MsgWatchlistFetched]
func watchlistFetchedMsg(w models.Watchlist, err error) Msg {
	return Msg{kind: MsgWatchlistFetched, data: watchlistFetched{w, err}}
}

// movieRemovedMsg is the constructor for [MsgMovieRemoved]
func movieRemovedMsg(m models.Movie, removed bool, err error) Msg {
	return Msg{kind: MsgMovieRemoved, data: movieRemoved{m, removed, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// refreshCompleteMsg is the constructor for [MsgRefreshComplete]
func refreshCompleteMsg(result *tasks.RefreshResult, err error) Msg {
	return Msg{kind: MsgRefreshComplete, data: refreshComplete{result, err}}
}
