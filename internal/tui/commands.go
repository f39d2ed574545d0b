package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pders01/flik/internal/debuglog"
	"github.com/pders01/flik/internal/discover"
	"github.com/pders01/flik/internal/movie"
)

// requestTimeout bounds a whole provider call, fallback included.
func (a *App) requestTimeout() time.Duration {
	t := a.config.API.HTTPTimeout
	if t <= 0 {
		t = 15 * time.Second
	}
	return 2*t + time.Second
}

func (a *App) fetchMovies(gen discover.Generation, query string) tea.Cmd {
	fetcher := a.fetcher
	timeout := a.requestTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return moviesFetchedMsg{gen: gen, result: fetcher.Fetch(ctx, query)}
	}
}

func (a *App) fetchDetail(gen uint64, rec movie.Record) tea.Cmd {
	details := a.details
	timeout := a.requestTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		d, err := details.Detail(ctx, rec.Source, rec.ID)
		if err != nil {
			debuglog.WithFields(map[string]interface{}{"id": rec.ID, "source": string(rec.Source)}).
				Warnf("detail failed: %v", err)
		}
		return detailLoadedMsg{gen: gen, detail: d, err: err}
	}
}

func (a *App) loadWatchlist() tea.Cmd {
	store := a.store
	return func() tea.Msg {
		if store == nil {
			return watchlistLoadedMsg{}
		}
		bookmarks, err := store.ListBookmarks(0)
		if err != nil {
			return errorMsg{err: wrapErr("loading watchlist", err)}
		}
		return watchlistLoadedMsg{bookmarks: bookmarks}
	}
}

func (a *App) toggleBookmark(rec movie.Record) tea.Cmd {
	store := a.store
	return func() tea.Msg {
		if store == nil {
			return bookmarkToggledMsg{record: rec, err: errWatchlistUnavailable}
		}
		var added bool
		err := retryOperation(func() error {
			var err error
			added, err = store.ToggleBookmark(rec)
			return err
		})
		msg := bookmarkToggledMsg{record: rec, added: added, err: err}
		if err == nil && added {
			msg.bookmark, _ = store.GetBookmark(rec.Key())
		}
		return msg
	}
}

func (a *App) removeBookmark(rec movie.Record) tea.Cmd {
	store := a.store
	return func() tea.Msg {
		if store == nil {
			return bookmarkToggledMsg{record: rec, err: errWatchlistUnavailable}
		}
		err := retryOperation(func() error { return store.DeleteBookmark(rec.Key()) })
		return bookmarkToggledMsg{record: rec, added: false, err: err}
	}
}

func (a *App) openExternal(url string) tea.Cmd {
	launcher := a.launcher
	return func() tea.Msg {
		return openedMsg{url: url, err: launcher.Open(url)}
	}
}

// retryOperation retries a database operation up to 3 times with exponential backoff
func retryOperation(operation func() error) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if err := operation(); err != nil {
			lastErr = err
			if i < maxRetries-1 {
				time.Sleep(baseDelay * time.Duration(1<<i))
				continue
			}
		} else {
			return nil
		}
	}
	return lastErr
}
