package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	WatchlistView ViewState = iota
	DetailView
	ConfirmView
	RefreshView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	username     string
	engine       *tasks.WatchlistEngine
	opts         tasks.RefreshOpts
	width        int
	height       int
	movies       list.Model
	loaded       bool
	selected     *models.Movie
	progressChan chan tasks.ProgressUpdate
	done         chan refreshComplete
	progress     tasks.ProgressUpdate
	bar          progress.Model
	result       *tasks.RefreshResult
	status       string
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model browsing username's watchlist.
func NewModel(ctx context.Context, engine *tasks.WatchlistEngine, username string, opts tasks.RefreshOpts) *Model {
	return &Model{
		ctx:      ctx,
		view:     WatchlistView,
		username: username,
		engine:   engine,
		opts:     opts,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(48)),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init initializes the TUI by loading the watchlist.
func (m *Model) Init() tea.Cmd {
	return m.fetchWatchlist()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.loaded {
			m.movies.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		if m.err != nil && m.view != ResultView {
			return m.handleErrorKeys(msg)
		}
		switch m.view {
		case WatchlistView:
			return m.handleWatchlistKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case RefreshView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgWatchlistFetched:
		data := msg.data.(watchlistFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.setWatchlist(data.watchlist)
		return m, nil

	case MsgMovieRemoved:
		data := msg.data.(movieRemoved)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		if data.removed {
			m.status = fmt.Sprintf("Removed %s", data.movie.Title)
		}
		return m, m.fetchWatchlist()

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgRefreshComplete:
		data := msg.data.(refreshComplete)
		m.result = data.result
		m.err = data.err
		m.progressChan = nil
		m.done = nil
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	}

	switch m.view {
	case WatchlistView:
		return m.renderWatchlist()
	case DetailView:
		return m.renderDetail()
	case ConfirmView:
		return m.renderConfirm()
	case RefreshView:
		return m.renderRefresh()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) setWatchlist(w models.Watchlist) {
	index := 0
	if m.loaded {
		index = m.movies.Index()
	}

	m.movies = list.New(movieItems(w), list.NewDefaultDelegate(), max(m.width-4, 0), max(m.height-8, 0))
	m.movies.Title = fmt.Sprintf("%s's watchlist", m.username)
	m.movies.SetShowHelp(false)
	if len(w) > 0 {
		m.movies.Select(min(index, len(w)-1))
	}
	m.loaded = true
}

func (m *Model) selectedMovie() *models.Movie {
	if !m.loaded {
		return nil
	}
	if item, ok := m.movies.SelectedItem().(movieItem); ok {
		movie := item.movie
		return &movie
	}
	return nil
}

func (m *Model) handleErrorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.err = nil
		m.view = WatchlistView
	}
	return m, nil
}

func (m *Model) handleWatchlistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loaded && m.movies.FilterState() == list.Filtering {
		return m.updateList(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if movie := m.selectedMovie(); movie != nil {
			m.selected = movie
			m.view = DetailView
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if movie := m.selectedMovie(); movie != nil {
			m.selected = movie
			m.view = ConfirmView
		}
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		m.status = ""
		m.view = RefreshView
		return m, m.startRefresh()
	}

	return m.updateList(msg)
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = WatchlistView
	case key.Matches(msg, m.keys.remove):
		m.view = ConfirmView
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = WatchlistView
		return m, m.removeMovie(*m.selected)
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.view = WatchlistView
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.enter), key.Matches(msg, m.keys.refresh):
		m.view = WatchlistView
		m.result = nil
		m.err = nil
		return m, m.fetchWatchlist()
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != WatchlistView || !m.loaded {
		return m, nil
	}
	var cmd tea.Cmd
	m.movies, cmd = m.movies.Update(msg)
	return m, cmd
}

func (m *Model) fetchWatchlist() tea.Cmd {
	return func() tea.Msg {
		w, err := m.engine.Watchlist(m.ctx, m.username)
		return watchlistFetchedMsg(w, err)
	}
}

func (m *Model) removeMovie(movie models.Movie) tea.Cmd {
	return func() tea.Msg {
		removed, err := m.engine.Remove(m.ctx, m.username, movie.ID)
		return movieRemovedMsg(movie, removed, err)
	}
}

func (m *Model) startRefresh() tea.Cmd {
	progressChan := make(chan tasks.ProgressUpdate, 50)
	done := make(chan refreshComplete, 1)
	m.progressChan, m.done = progressChan, done
	m.progress = tasks.ProgressUpdate{}

	go func() {
		result, err := m.engine.Refresh(m.ctx, progressChan, m.username, m.opts)
		done <- refreshComplete{result, err}
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progressChan, done := m.progressChan, m.done
	if progressChan == nil {
		return nil
	}

	return func() tea.Msg {
		update, ok := <-progressChan
		if !ok {
			res := <-done
			return refreshCompleteMsg(res.result, res.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderWatchlist() string {
	if !m.loaded {
		return styles.help.Render("Loading watchlist...")
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.remove, m.keys.refresh, m.keys.quit})
	if m.status != "" {
		return fmt.Sprintf("%s\n%s\n\n%s", m.movies.View(), styles.ok.Render(m.status), helpView)
	}
	return fmt.Sprintf("%s\n\n%s", m.movies.View(), helpView)
}

func (m *Model) renderDetail() string {
	movie := m.selected
	title := styles.title.Render(movieItem{movie: *movie}.Title())

	rows := []string{}
	field := func(label, value string) {
		if value != "" {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, styles.label.Render(label), value))
		}
	}
	field("Released", movie.ReleaseDate)
	field("Runtime", formatter.FormatRuntime(movie.Runtime))
	if movie.VoteAverage > 0 {
		field("Rating", fmt.Sprintf("%.1f (%d votes)", movie.VoteAverage, movie.VoteCount))
	}
	genres := make([]string, len(movie.Genres))
	for i, g := range movie.Genres {
		genres[i] = g.Name
	}
	field("Genres", strings.Join(genres, ", "))

	var b strings.Builder
	b.WriteString(title + "\n")
	if movie.Tagline != "" {
		b.WriteString(styles.help.Render(movie.Tagline) + "\n\n")
	}
	b.WriteString(strings.Join(rows, "\n"))
	if movie.Overview != "" {
		b.WriteString("\n\n" + styles.body.Render(movie.Overview))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.remove, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", b.String(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.warn.Render(fmt.Sprintf("Remove '%s' from your watchlist?", m.selected.Title))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n\n%s", title, helpView)
}

func (m *Model) renderRefresh() string {
	title := styles.title.Render("Refreshing Watchlist")

	var pct float64
	if m.progress.Phase == tasks.RefreshMovies && m.progress.Total > 0 {
		pct = float64(m.progress.Step) / float64(m.progress.Total)
	}
	if m.progress.Phase == tasks.SaveWatchlist {
		pct = 1
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.bar.ViewAs(pct), m.progress.Message)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})

	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Refresh failed: %v", m.err)) + "\n\n" + helpView
	}
	if m.result == nil {
		return styles.err.Render("No result available") + "\n\n" + helpView
	}

	title := styles.ok.Render("✓ Refresh Complete!")
	info := fmt.Sprintf("\nRefreshed: %d/%d", m.result.Refreshed, m.result.Total)

	var failed string
	if m.result.Failed > 0 {
		failed = "\n\n" + styles.warn.Render(fmt.Sprintf("Failed to refresh %d movies:", m.result.Failed))
		for _, res := range m.result.Results {
			if res.Error != nil {
				failed += fmt.Sprintf("\n  • %s: %v", res.Title, res.Error)
			}
		}
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
