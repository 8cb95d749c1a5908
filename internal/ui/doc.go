// Package ui implements an interactive terminal watchlist browser using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow:
//  1. [WatchlistView] : Browse saved movies
//  2. [DetailView] : Read a movie's overview, runtime, genres and rating
//  3. [ConfirmView] : Confirm removing a movie
//  4. [RefreshView] : Monitor a watchlist refresh with a progress bar
//  5. [ResultView] : Display refreshed and failed counts
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the WatchlistEngine.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, x, y/n, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
