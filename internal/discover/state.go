package discover

import (
	"github.com/pders01/flik/internal/debuglog"
	"github.com/pders01/flik/internal/movie"
)

// Kind is the exclusive phase of the result list.
type Kind int

const (
	Loading Kind = iota
	Error
	Ready
)

func (k Kind) String() string {
	switch k {
	case Loading:
		return "loading"
	case Error:
		return "error"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// State is the fetch state the presenter renders. Message is set only for
// Error, Records only for Ready (possibly empty).
type State struct {
	Kind    Kind
	Message string
	Records []movie.Record
	Source  movie.Source
	Query   string
}

// Generation identifies one fetch cycle. Results carrying an older
// generation are stale.
type Generation uint64

// Tracker owns the fetch state and the generation counter. It must be used
// from a single goroutine (the TUI update loop).
type Tracker struct {
	gen   Generation
	state State
}

// NewTracker starts in Loading: the first fetch is issued on startup.
func NewTracker() *Tracker {
	return &Tracker{state: State{Kind: Loading}}
}

// Begin starts a new fetch cycle for query. The previous records and any
// error are discarded.
func (t *Tracker) Begin(query string) Generation {
	t.gen++
	t.state = State{Kind: Loading, Query: query}
	return t.gen
}

// Retry starts a new cycle for the query of the current state.
func (t *Tracker) Retry() (Generation, string) {
	q := t.state.Query
	return t.Begin(q), q
}

// Resolve applies the outcome of fetch cycle gen. It returns false and
// leaves the state untouched when gen has been superseded.
func (t *Tracker) Resolve(gen Generation, res Result) bool {
	if gen != t.gen {
		debuglog.Debugf("dropping stale result for generation %d (current %d)", gen, t.gen)
		return false
	}

	if res.Err != nil {
		t.state = State{Kind: Error, Message: MsgFetchFailed, Query: t.state.Query}
		return true
	}

	records := res.Records
	if records == nil {
		records = []movie.Record{}
	}
	t.state = State{Kind: Ready, Records: records, Source: res.Source, Query: t.state.Query}
	return true
}

// State returns the current state.
func (t *Tracker) State() State { return t.state }

// Current is the generation of the latest fetch cycle.
func (t *Tracker) Current() Generation { return t.gen }
