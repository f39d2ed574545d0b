package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pders01/flik/internal/config"
	"github.com/pders01/flik/internal/discover"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	return &KeyHandler{app: app, config: cfg, modifierKey: modifierKey}
}

// key returns the full chord for a configured binding.
func (kh *KeyHandler) key(binding string) string {
	return kh.modifierKey + binding
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if kh.app.view == ViewWatchlist && kh.app.watchList.FilterState() == list.Filtering {
		if key == "ctrl+c" {
			return kh.app, tea.Quit
		}
		return kh.delegateToCharm(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	return kh.app.view == ViewSearch && kh.app.searchInput.Focused()
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	b := kh.config.Keys.Bindings

	switch key {
	case "ctrl+c":
		return kh.app, tea.Quit
	case b.Back:
		return kh.app, tea.Quit
	case "enter", "tab", "down":
		if len(kh.app.resultList.Items()) > 0 {
			kh.app.searchInput.Blur()
			kh.app.resultList.Select(0)
		}
		return kh.app, nil
	case kh.key(b.Retry):
		return kh.app, kh.retry()
	case kh.key(b.Watchlist):
		return kh.enterWatchlist()
	default:
		return kh.delegateToTextInput(msg)
	}
}

// delegateToTextInput passes the key to the search box and restarts the
// quiet period when the text changed.
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	newSearchInput, cmd := kh.app.searchInput.Update(msg)
	kh.app.searchInput = newSearchInput

	token, changed := kh.app.debouncer.Set(kh.app.searchInput.Value())
	if !changed {
		return kh.app, cmd
	}
	return kh.app, tea.Batch(cmd, debounceAfter(kh.app.debouncer.Quiet(), token))
}

// handleCustomKeys handles only our custom action keys
func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	b := kh.config.Keys.Bindings

	switch key {
	case "ctrl+c":
		return kh.app, tea.Quit, true
	case b.Back:
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case kh.key(b.Bookmark):
		rec, ok := kh.app.selectedRecord()
		if !ok {
			return kh.app, nil, true
		}
		return kh.app, kh.app.toggleBookmark(rec), true
	case kh.key(b.Open):
		url := kh.app.openURL()
		if url == "" {
			kh.app.setStatus(MsgNothingToOpen, StatusWarn)
			return kh.app, nil, true
		}
		return kh.app, kh.app.openExternal(url), true
	case kh.key(b.Watchlist):
		model, cmd := kh.enterWatchlist()
		return model, cmd, true
	}

	switch kh.app.view {
	case ViewSearch:
		return kh.handleSearchCustomKeys(key)
	case ViewWatchlist:
		return kh.handleWatchlistCustomKeys(key)
	case ViewDetail:
		return kh.handleDetailCustomKeys(key)
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) handleSearchCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	b := kh.config.Keys.Bindings

	switch key {
	case b.Quit:
		return kh.app, tea.Quit, true
	case "/", "shift+tab":
		kh.app.searchInput.Focus()
		return kh.app, nil, true
	case "up":
		if kh.app.resultList.Index() == 0 {
			kh.app.searchInput.Focus()
			return kh.app, nil, true
		}
		return kh.app, nil, false
	case "enter":
		if i, ok := kh.app.resultList.SelectedItem().(movieItem); ok {
			return kh.app, kh.app.openDetail(i.record), true
		}
		return kh.app, nil, true
	case kh.key(b.Retry):
		return kh.app, kh.retry(), true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleWatchlistCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	b := kh.config.Keys.Bindings

	switch key {
	case b.Quit:
		return kh.app, tea.Quit, true
	case "enter":
		if i, ok := kh.app.watchList.SelectedItem().(movieItem); ok {
			return kh.app, kh.app.openDetail(i.record), true
		}
		return kh.app, nil, true
	case kh.key(b.Remove):
		if i, ok := kh.app.watchList.SelectedItem().(movieItem); ok {
			return kh.app, kh.app.removeBookmark(i.record), true
		}
		return kh.app, nil, true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleDetailCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	b := kh.config.Keys.Bindings

	switch key {
	case b.Quit:
		return kh.app, tea.Quit, true
	case kh.key(b.Retry):
		if kh.app.current != nil && kh.app.detailState == detailFailed {
			return kh.app, kh.app.openDetail(*kh.app.current), true
		}
		return kh.app, nil, true
	}
	return kh.app, nil, false
}

// retry re-runs the last search. Ignored while a fetch is in flight.
func (kh *KeyHandler) retry() tea.Cmd {
	if kh.app.tracker.State().Kind == discover.Loading {
		return nil
	}
	return kh.app.retrySearch()
}

func (kh *KeyHandler) enterWatchlist() (tea.Model, tea.Cmd) {
	if kh.app.view == ViewWatchlist {
		return kh.app, nil
	}
	kh.app.searchInput.Blur()
	kh.app.previousView = ViewSearch
	kh.app.view = ViewWatchlist
	return kh.app, kh.app.loadWatchlist()
}

func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	kh.app.err = nil

	switch kh.app.view {
	case ViewDetail:
		kh.app.closeDetail()
		return kh.app, nil
	case ViewWatchlist:
		kh.app.view = ViewSearch
		return kh.app, nil
	default:
		return kh.app, tea.Quit
	}
}

// delegateToCharm lets the focused bubble handle navigation keys.
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewSearch:
		newList, cmd := kh.app.resultList.Update(msg)
		kh.app.resultList = newList
		return kh.app, cmd
	case ViewWatchlist:
		newList, cmd := kh.app.watchList.Update(msg)
		kh.app.watchList = newList
		return kh.app, cmd
	case ViewDetail:
		newViewport, cmd := kh.app.viewport.Update(msg)
		kh.app.viewport = newViewport
		return kh.app, cmd
	default:
		return kh.app, nil
	}
}

// GetHelpForCurrentView returns the status bar hints for the active view.
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	b := kh.config.Keys.Bindings

	switch kh.app.view {
	case ViewSearch:
		if kh.app.searchInput.Focused() {
			return []string{
				"type to search",
				"enter/↓: results",
				kh.key(b.Watchlist) + ": watchlist",
				"esc: quit",
			}
		}
		return []string{
			"enter: details",
			"/: search",
			kh.key(b.Bookmark) + ": save",
			kh.key(b.Open) + ": open",
			kh.key(b.Watchlist) + ": watchlist",
			b.Quit + ": quit",
		}
	case ViewWatchlist:
		return []string{
			"enter: details",
			kh.key(b.Remove) + ": remove",
			kh.key(b.Open) + ": open",
			"esc: back",
		}
	case ViewDetail:
		return []string{
			"↑↓: scroll",
			kh.key(b.Open) + ": watch",
			kh.key(b.Bookmark) + ": save",
			"esc: back",
		}
	default:
		return nil
	}
}
