package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/pders01/flik/internal/config"
	"github.com/pders01/flik/internal/discover"
	"github.com/pders01/flik/internal/media"
	"github.com/pders01/flik/internal/movie"
	"github.com/pders01/flik/internal/provider"
	"github.com/pders01/flik/internal/storage"
)

// detailSource is satisfied by *provider.Registry.
type detailSource interface {
	Detail(ctx context.Context, source movie.Source, id string) (*movie.Detail, error)
}

// opener is satisfied by *media.Launcher.
type opener interface {
	Open(url string) error
}

type App struct {
	config     *config.Config
	store      *storage.Store
	details    detailSource
	fetcher    *discover.Fetcher
	debouncer  *discover.Debouncer
	tracker    *discover.Tracker
	launcher   opener
	keyHandler *KeyHandler

	resultList  list.Model
	watchList   list.Model
	searchInput textinput.Model
	viewport    viewport.Model
	spinner     spinner.Model

	view         View
	previousView View

	current     *movie.Record
	detail      *movie.Detail
	detailGen   uint64
	detailState detailState

	bookmarks map[string]bool
	index     watchlistIndex

	width      int
	height     int
	err        error
	status     string
	statusKind StatusKind

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

// NewApp wires the providers, the fetch pipeline and the widgets. store may
// be nil, in which case the watchlist is disabled.
func NewApp(store *storage.Store, cfg *config.Config) *App {
	applyTheme(cfg.UI.Colors)

	registry := provider.NewFromConfig(cfg)

	resultList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	resultList.Title = "› movies"
	resultList.SetShowStatusBar(false)
	resultList.SetShowHelp(false)
	resultList.SetFilteringEnabled(false)

	watchList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	watchList.Title = "› watchlist"
	watchList.SetShowStatusBar(false)
	watchList.SetFilteringEnabled(true)
	watchList.SetShowHelp(true)

	si := textinput.New()
	si.Placeholder = "Search movies… (blank shows " + cfg.Search.DefaultQuery + ")"
	si.CharLimit = 200
	si.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(SecondaryColor)

	app := &App{
		config:  cfg,
		store:   store,
		details: registry,
		fetcher: discover.NewFetcher(registry, discover.Options{
			DefaultQuery: cfg.Search.DefaultQuery,
			MaxResults:   cfg.Search.MaxResults,
		}),
		debouncer:    discover.NewDebouncer(cfg.Search.Debounce),
		tracker:      discover.NewTracker(),
		launcher:     media.NewLauncher(cfg),
		resultList:   resultList,
		watchList:    watchList,
		searchInput:  si,
		viewport:     viewport.New(0, 0),
		spinner:      sp,
		view:         ViewSearch,
		previousView: ViewSearch,
		bookmarks:    make(map[string]bool),
		index:        openWatchlistIndex(store),
	}

	app.keyHandler = NewKeyHandler(app, cfg)

	return app
}

func (a *App) Init() tea.Cmd {
	gen := a.tracker.Begin("")
	cmds := []tea.Cmd{
		a.fetchMovies(gen, ""),
		a.spinner.Tick,
		textinput.Blink,
	}
	if a.store != nil {
		cmds = append(cmds, a.loadWatchlist())
	}
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		if a.view == ViewDetail && a.detailState == detailReady {
			a.renderDetail()
		}

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case debounceFiredMsg:
		query, ok := a.debouncer.Fire(msg.token)
		if !ok {
			return a, nil
		}
		return a, a.startSearch(query)

	case moviesFetchedMsg:
		if !a.tracker.Resolve(msg.gen, msg.result) {
			return a, nil
		}
		a.syncResults()
		return a, nil

	case detailLoadedMsg:
		a.applyDetail(msg)
		return a, nil

	case watchlistLoadedMsg:
		a.bookmarks = make(map[string]bool, len(msg.bookmarks))
		for _, b := range msg.bookmarks {
			a.bookmarks[b.Key()] = true
		}
		a.watchList.SetItems(newBookmarkItems(msg.bookmarks, a.config.API.TMDB.ImageBaseURL))
		if a.index != nil {
			keys := make([]string, len(msg.bookmarks))
			for i, b := range msg.bookmarks {
				keys[i] = b.Key()
			}
			a.watchList.Filter = bookmarkFilter(a.index, keys)
		}
		a.refreshResultItems()
		return a, nil

	case bookmarkToggledMsg:
		if msg.err != nil {
			a.setStatus(wrapErr("watchlist", msg.err).Error(), StatusError)
			return a, nil
		}
		a.bookmarks[msg.record.Key()] = msg.added
		a.syncIndex(msg)
		if msg.added {
			a.setStatus(MsgBookmarked, StatusSuccess)
		} else {
			a.setStatus(MsgUnbookmarked, StatusInfo)
		}
		a.refreshResultItems()
		if a.view == ViewDetail {
			a.renderDetail()
		}
		return a, a.loadWatchlist()

	case openedMsg:
		if msg.err != nil {
			a.setStatus(msg.err.Error(), StatusError)
		} else {
			a.setStatus(MsgOpening(msg.url), StatusInfo)
		}
		return a, nil

	case errorMsg:
		a.err = msg.err
		return a, nil
	}

	switch a.view {
	case ViewSearch:
		newList, cmd := a.resultList.Update(msg)
		a.resultList = newList
		cmds = append(cmds, cmd)
	case ViewWatchlist:
		newList, cmd := a.watchList.Update(msg)
		a.watchList = newList
		cmds = append(cmds, cmd)
	case ViewDetail:
		switch msg.(type) {
		case tea.WindowSizeMsg, tea.MouseMsg:
			newViewport, cmd := a.viewport.Update(msg)
			a.viewport = newViewport
			cmds = append(cmds, cmd)
		}
	}

	return a, tea.Batch(cmds...)
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height

	listHeight := height - 9
	if listHeight < 5 {
		listHeight = 5
	}
	a.resultList.SetSize(width, listHeight)
	a.watchList.SetSize(width, height-3)

	a.viewport.Width = width
	a.viewport.Height = height - 3

	inputWidth := width - 8
	if inputWidth < 10 {
		inputWidth = width - 4
	}
	a.searchInput.Width = inputWidth
}

// startSearch begins a fetch cycle for a committed query. Records from the
// previous cycle are cleared straight away.
func (a *App) startSearch(query string) tea.Cmd {
	gen := a.tracker.Begin(query)
	a.err = nil
	a.syncResults()
	return tea.Batch(a.fetchMovies(gen, query), a.spinner.Tick)
}

// retrySearch re-runs the last committed query.
func (a *App) retrySearch() tea.Cmd {
	gen, query := a.tracker.Retry()
	a.syncResults()
	return tea.Batch(a.fetchMovies(gen, query), a.spinner.Tick)
}

// syncResults mirrors the tracker state into the result list.
func (a *App) syncResults() {
	st := a.tracker.State()
	if st.Kind != discover.Ready {
		a.resultList.SetItems([]list.Item{})
		a.status = ""
		return
	}
	a.resultList.SetItems(newMovieItems(st.Records, a.config.API.TMDB.ImageBaseURL, a.bookmarks))
	a.resultList.Select(0)
	if len(st.Records) > 0 {
		a.setStatus(MsgResultsCount(len(st.Records), st.Source), StatusInfo)
	} else {
		a.status = ""
	}
}

// refreshResultItems redraws the bookmark markers without touching the
// fetch state.
func (a *App) refreshResultItems() {
	st := a.tracker.State()
	if st.Kind != discover.Ready {
		return
	}
	idx := a.resultList.Index()
	a.resultList.SetItems(newMovieItems(st.Records, a.config.API.TMDB.ImageBaseURL, a.bookmarks))
	a.resultList.Select(idx)
}

// openDetail switches to the detail view for rec and starts loading it.
func (a *App) openDetail(rec movie.Record) tea.Cmd {
	if a.view != ViewDetail {
		a.previousView = a.view
	}
	r := rec
	a.current = &r
	a.detail = nil
	a.detailGen++
	a.detailState = detailLoading
	a.view = ViewDetail
	a.viewport.SetContent("")
	return tea.Batch(a.fetchDetail(a.detailGen, rec), a.spinner.Tick)
}

func (a *App) applyDetail(msg detailLoadedMsg) {
	if msg.gen != a.detailGen || a.view != ViewDetail {
		return
	}
	switch {
	case msg.err == nil && msg.detail != nil:
		a.detail = msg.detail
		a.detailState = detailReady
		a.renderDetail()
		a.viewport.GotoTop()
	case provider.IsNotFound(msg.err) || (msg.err == nil && msg.detail == nil):
		a.detailState = detailNotFound
	default:
		a.detailState = detailFailed
	}
}

func (a *App) closeDetail() {
	a.view = a.previousView
	a.current = nil
	a.detail = nil
	a.detailGen++
	if a.view == ViewSearch && len(a.resultList.Items()) == 0 {
		a.searchInput.Focus()
	}
}

func (a *App) setStatus(msg string, kind StatusKind) {
	a.status = msg
	a.statusKind = kind
}

// selectedRecord is the record under the cursor in the current view.
func (a *App) selectedRecord() (movie.Record, bool) {
	switch a.view {
	case ViewDetail:
		if a.detail != nil {
			return a.detail.Record, true
		}
		if a.current != nil {
			return *a.current, true
		}
	case ViewWatchlist:
		if i, ok := a.watchList.SelectedItem().(movieItem); ok {
			return i.record, true
		}
	case ViewSearch:
		if a.searchInput.Focused() {
			return movie.Record{}, false
		}
		if i, ok := a.resultList.SelectedItem().(movieItem); ok {
			return i.record, true
		}
	}
	return movie.Record{}, false
}

// openURL picks the best thing to open for the current selection: the
// video, falling back to the image.
func (a *App) openURL() string {
	if a.view == ViewDetail && a.detail != nil {
		if a.detail.Playable() {
			return a.detail.WatchURL
		}
		return a.detail.ImageURL(a.config.API.TMDB.ImageBaseURL)
	}
	rec, ok := a.selectedRecord()
	if !ok {
		return ""
	}
	if rec.VideoURL != "" {
		return rec.VideoURL
	}
	if rec.Thumbnail == "" && rec.PosterPath == "" {
		return ""
	}
	return rec.ImageURL(a.config.API.TMDB.ImageBaseURL)
}

func (a *App) View() string {
	if a.width == 0 {
		return ""
	}

	var content string
	bodyHeight := a.height - 3

	switch a.view {
	case ViewSearch:
		content = a.renderSearchView(bodyHeight)
	case ViewDetail:
		content = a.renderDetailView(bodyHeight)
	case ViewWatchlist:
		if len(a.watchList.Items()) == 0 {
			msg := MsgWatchlistEmpty
			if a.store == nil {
				msg = "Watchlist unavailable: no database."
			}
			content = renderCentered(a.width, bodyHeight, lipgloss.JoinVertical(
				lipgloss.Center,
				HeaderStyle.Render("› watchlist"),
				"",
				renderMuted(msg),
			))
		} else {
			content = a.watchList.View()
		}
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(bodyHeight).
		MaxHeight(bodyHeight).
		Render(content)

	separatorWidth := a.width - 2
	if separatorWidth < 0 {
		separatorWidth = 0
	}
	separator := SeparatorStyle.Render("─" + strings.Repeat("─", separatorWidth))

	return lipgloss.JoinVertical(lipgloss.Top, content, separator, a.statusBar())
}

func (a *App) renderSearchView(height int) string {
	st := a.tracker.State()
	subtitle := ""
	if q := a.fetcher.Resolve(st.Query); q != "" {
		subtitle = "results for " + q
	}

	header := renderHeader("› "+AppName, subtitle, a.width)
	input := renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width)

	top := lipgloss.JoinVertical(lipgloss.Top, header, input, "")
	resultsHeight := height - lipgloss.Height(top)
	if resultsHeight < 3 {
		resultsHeight = 3
	}

	return lipgloss.JoinVertical(lipgloss.Top, top, a.renderResults(resultsHeight))
}

func (a *App) statusBar() string {
	style := lipgloss.NewStyle().
		Width(a.width).
		Padding(0, 1).
		Foreground(MutedColor)

	if a.err != nil {
		return style.Render(StatusErrorStyle.Render(fmt.Sprintf("✗ %v", a.err)))
	}

	help := strings.Join(a.keyHandler.GetHelpForCurrentView(), " • ")
	if a.status == "" {
		return style.Render(help)
	}
	return style.Render(a.statusKind.style().Render(a.status) + SeparatorStyle.Render("  │  ") + help)
}

type debounceFiredMsg struct {
	token discover.Token
}

type moviesFetchedMsg struct {
	gen    discover.Generation
	result discover.Result
}

type detailLoadedMsg struct {
	gen    uint64
	detail *movie.Detail
	err    error
}

type watchlistLoadedMsg struct {
	bookmarks []*storage.Bookmark
}

type bookmarkToggledMsg struct {
	record   movie.Record
	bookmark *storage.Bookmark
	added    bool
	err      error
}

type openedMsg struct {
	url string
	err error
}

type errorMsg struct {
	err error
}

func debounceAfter(d time.Duration, token discover.Token) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return debounceFiredMsg{token: token} })
}
