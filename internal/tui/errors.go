package tui

import (
	"errors"
	"fmt"
)

// errWatchlistUnavailable is returned by watchlist commands when the app
// runs without a database.
var errWatchlistUnavailable = errors.New("watchlist unavailable")

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}
