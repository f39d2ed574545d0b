package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	"github.com/pders01/flik/internal/discover"
	"github.com/pders01/flik/internal/movie"
	"github.com/pders01/flik/internal/storage"
)

// resultsView is what the results area shows for a fetch state.
type resultsView int

const (
	resultsLoading resultsView = iota
	resultsError
	resultsGrid
)

// presentResults selects the view for st. It is a pure function of the
// state: exactly one view per phase.
func presentResults(st discover.State) resultsView {
	switch st.Kind {
	case discover.Error:
		return resultsError
	case discover.Ready:
		return resultsGrid
	default:
		return resultsLoading
	}
}

// movieItem is one card in the results or watchlist.
type movieItem struct {
	record     movie.Record
	posterBase string
	bookmarked bool
	savedAt    time.Time
}

func newMovieItems(records []movie.Record, posterBase string, bookmarked map[string]bool) []list.Item {
	items := make([]list.Item, len(records))
	for i, r := range records {
		items[i] = movieItem{record: r, posterBase: posterBase, bookmarked: bookmarked[r.Key()]}
	}
	return items
}

func newBookmarkItems(bookmarks []*storage.Bookmark, posterBase string) []list.Item {
	items := make([]list.Item, len(bookmarks))
	for i, b := range bookmarks {
		items[i] = movieItem{record: b.Record, posterBase: posterBase, bookmarked: true, savedAt: b.SavedAt}
	}
	return items
}

func (i movieItem) Title() string {
	if i.bookmarked {
		return i.record.Title + " " + BookmarkStyle.Render("★")
	}
	return i.record.Title
}

func (i movieItem) Description() string {
	var parts []string
	if a := i.record.Attribution(); a != "" {
		parts = append(parts, a)
	}
	if i.record.Year != "" {
		parts = append(parts, i.record.Year)
	}
	parts = append(parts, string(i.record.Source))
	if !i.savedAt.IsZero() {
		parts = append(parts, "saved "+i.savedAt.Format("Jan 2"))
	}
	parts = append(parts, truncateMiddle(i.record.ImageURL(i.posterBase), 40))

	return lipgloss.NewStyle().
		Foreground(MutedColor).
		Render(strings.Join(parts, " • "))
}

func (i movieItem) FilterValue() string {
	return i.record.Title + " " + i.record.Attribution()
}

// renderResults draws the results area for the current fetch state.
func (a *App) renderResults(height int) string {
	st := a.tracker.State()

	switch presentResults(st) {
	case resultsLoading:
		loading := a.spinner.View() + " " + MsgLoadingMovies
		if a.tracker.Current() <= 1 && height >= len(LogoLines)+3 {
			return renderCentered(a.width, height, GetCompactBanner(loading))
		}
		return renderCentered(a.width, height, renderMuted(loading))

	case resultsError:
		return renderCentered(a.width, height, lipgloss.JoinVertical(
			lipgloss.Center,
			ErrorMessageStyle.Render(st.Message),
			"",
			renderHelp(a.keyHandler.key(a.config.Keys.Bindings.Retry)+": retry"),
		))

	default:
		if len(st.Records) == 0 {
			return renderCentered(a.width, height, renderMuted(MsgNoResults))
		}
		return a.resultList.View()
	}
}
