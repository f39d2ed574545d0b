package search

import "github.com/pders01/flik/internal/storage"

// Result is one watchlist match.
type Result struct {
	Bookmark *storage.Bookmark
	Score    float64
}

// Searcher defines the minimal search API over saved movies.
type Searcher interface {
	Search(query string, limit int) ([]*Result, error)
}

// UpdateListener can be implemented by search engines that maintain
// an external index and want to be notified about watchlist changes.
type UpdateListener interface {
	OnBookmarkSaved(b *storage.Bookmark)
	OnBookmarkDeleted(key string)
}

// DebugStatser provides lightweight stats for visibility/debugging.
type DebugStatser interface {
	DocCount() (int, error)
}
