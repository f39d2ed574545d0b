package discover

import "time"

// Token identifies one scheduled debounce timer. Only the most recent token
// can commit.
type Token uint64

// Debouncer turns raw keystroke text into a committed query once the input
// has been quiet for a fixed period. It holds no timer itself: the caller
// schedules one per token (tea.Tick in the TUI) and calls Fire when it
// expires. It must be used from a single goroutine.
type Debouncer struct {
	quiet     time.Duration
	raw       string
	committed string
	seq       Token
}

// NewDebouncer creates a debouncer whose committed value starts out empty,
// which the fetcher resolves to the default query.
func NewDebouncer(quiet time.Duration) *Debouncer {
	return &Debouncer{quiet: quiet}
}

func (d *Debouncer) Quiet() time.Duration { return d.quiet }

// Raw is the text as last typed.
func (d *Debouncer) Raw() string { return d.raw }

// Committed is the value last propagated to the fetcher.
func (d *Debouncer) Committed() string { return d.committed }

// Set records raw input. When the value changed it restarts the quiet period
// and returns the token for the new timer; any earlier token is superseded.
func (d *Debouncer) Set(raw string) (Token, bool) {
	if raw == d.raw {
		return 0, false
	}
	d.raw = raw
	d.seq++
	return d.seq, true
}

// Fire is called when the timer for token expires. It commits and returns
// the raw value if token is still current and the value differs from what
// is already committed.
func (d *Debouncer) Fire(token Token) (string, bool) {
	if token != d.seq || d.raw == d.committed {
		return "", false
	}
	d.committed = d.raw
	return d.committed, true
}
