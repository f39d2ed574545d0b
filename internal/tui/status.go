package tui

import (
	"fmt"

	"github.com/pders01/flik/internal/movie"
)

// Canonical short status messages used across the app.
const (
	MsgLoadingMovies  = "Loading movies…"
	MsgLoadingDetail  = "Loading movie…"
	MsgNotFound       = "Movie not found"
	MsgDetailFailed   = "Error loading movie, please try again later."
	MsgNoResults      = "No movies found"
	MsgBookmarked     = "Added to watchlist"
	MsgUnbookmarked   = "Removed from watchlist"
	MsgNothingToOpen  = "Nothing to open"
	MsgWatchlistEmpty = "Your watchlist is empty. Press ctrl+b on a movie to add it."
)

func MsgResultsCount(n int, source movie.Source) string {
	if n == 1 {
		return fmt.Sprintf("1 movie from %s", source)
	}
	return fmt.Sprintf("%d movies from %s", n, source)
}

func MsgOpening(url string) string {
	return "Opening " + truncateMiddle(url, 48)
}
