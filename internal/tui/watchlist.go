package tui

import (
	"github.com/charmbracelet/bubbles/list"

	"github.com/pders01/flik/internal/debuglog"
	"github.com/pders01/flik/internal/search"
	"github.com/pders01/flik/internal/storage"
)

// watchlistIndex ranks bookmarks and is told about watchlist changes.
type watchlistIndex interface {
	search.Searcher
	search.UpdateListener
	Close() error
}

// openWatchlistIndex builds the full-text index over store. Without an
// index the watchlist filter falls back to fuzzy matching.
func openWatchlistIndex(store *storage.Store) watchlistIndex {
	if store == nil {
		return nil
	}
	idx, err := search.NewBleveEngine(store)
	if err != nil {
		debuglog.Warnf("watchlist index disabled: %v", err)
		return nil
	}
	return idx
}

// bookmarkFilter ranks the watchlist items through idx. keys[i] is the
// bookmark key of item i. Terms the index cannot rank, such as a single
// letter, use the list's fuzzy filter.
func bookmarkFilter(idx watchlistIndex, keys []string) list.FilterFunc {
	pos := make(map[string]int, len(keys))
	for i, k := range keys {
		pos[k] = i
	}

	return func(term string, targets []string) []list.Rank {
		results, err := idx.Search(term, len(targets))
		if err != nil {
			debuglog.Warnf("watchlist filter %q: %v", term, err)
			return list.DefaultFilter(term, targets)
		}

		ranks := make([]list.Rank, 0, len(results))
		for _, r := range results {
			if i, ok := pos[r.Bookmark.Key()]; ok && i < len(targets) {
				ranks = append(ranks, list.Rank{Index: i})
			}
		}
		if len(ranks) == 0 {
			return list.DefaultFilter(term, targets)
		}
		return ranks
	}
}

// syncIndex applies a watchlist change to the index.
func (a *App) syncIndex(msg bookmarkToggledMsg) {
	if a.index == nil {
		return
	}
	if msg.added && msg.bookmark != nil {
		a.index.OnBookmarkSaved(msg.bookmark)
		return
	}
	if !msg.added {
		a.index.OnBookmarkDeleted(msg.record.Key())
	}
}

// Close releases the watchlist index.
func (a *App) Close() error {
	if a.index == nil {
		return nil
	}
	err := a.index.Close()
	a.index = nil
	return err
}
