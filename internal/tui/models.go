package tui

type View int

const (
	ViewSearch View = iota
	ViewDetail
	ViewWatchlist
)

func (v View) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewDetail:
		return "detail"
	case ViewWatchlist:
		return "watchlist"
	default:
		return "unknown"
	}
}

// detailState is the phase of the detail view.
type detailState int

const (
	detailLoading detailState = iota
	detailReady
	detailNotFound
	detailFailed
)
