package storage

import (
	"time"

	"github.com/pders01/flik/internal/movie"
)

// Bookmark is a record the user put on the watchlist.
type Bookmark struct {
	movie.Record
	SavedAt time.Time `json:"saved_at"`
}
