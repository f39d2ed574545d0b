package discover

import (
	"context"
	"fmt"
	"strings"

	"github.com/pders01/flik/internal/debuglog"
	"github.com/pders01/flik/internal/movie"
	"github.com/pders01/flik/internal/provider"
	"github.com/pders01/flik/internal/validation"
)

// MsgFetchFailed is the only failure text the user ever sees for a search.
const MsgFetchFailed = "Error fetching movies, please try again later."

// Searcher is satisfied by *provider.Registry.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) (provider.SearchResult, error)
}

// Options configures a Fetcher.
type Options struct {
	DefaultQuery string
	MaxResults   int
}

// Result is the outcome of one fetch. Err is kept for logging and the CLI;
// the presenter only shows MsgFetchFailed.
type Result struct {
	Records []movie.Record
	Source  movie.Source
	Err     error
}

// Fetcher resolves committed queries and runs them against the providers.
type Fetcher struct {
	searcher Searcher
	opts     Options
}

func NewFetcher(searcher Searcher, opts Options) *Fetcher {
	if opts.MaxResults < 1 {
		opts.MaxResults = 1
	}
	if opts.MaxResults > 50 {
		opts.MaxResults = 50
	}
	return &Fetcher{searcher: searcher, opts: opts}
}

// Resolve maps a committed query to what is sent upstream: blank input
// becomes the default query, anything else is sent as typed.
func (f *Fetcher) Resolve(query string) string {
	if strings.TrimSpace(query) == "" {
		return f.opts.DefaultQuery
	}
	return validation.SanitizeQuery(query)
}

// Fetch runs one search. It never panics; every failure is folded into
// Result.Err.
func (f *Fetcher) Fetch(ctx context.Context, query string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			debuglog.Errorf("search panicked: %v", r)
			res = Result{Err: fmt.Errorf("search aborted: %v", r)}
		}
	}()

	resolved := f.Resolve(query)
	sr, err := f.searcher.Search(ctx, resolved, f.opts.MaxResults)
	if err != nil {
		debuglog.WithFields(map[string]interface{}{"query": resolved}).Warnf("fetch failed: %v", err)
		return Result{Err: err}
	}

	debuglog.WithFields(map[string]interface{}{"query": resolved, "source": string(sr.Source)}).
		Debugf("fetched %d records", len(sr.Records))
	return Result{Records: sr.Records, Source: sr.Source}
}
