package discover

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pders01/flik/internal/config"
	"github.com/pders01/flik/internal/movie"
	"github.com/pders01/flik/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	queries []string
	limits  []int
	result  provider.SearchResult
	err     error
	panic   bool
}

func (s *stubSearcher) Search(ctx context.Context, query string, limit int) (provider.SearchResult, error) {
	s.queries = append(s.queries, query)
	s.limits = append(s.limits, limit)
	if s.panic {
		panic("boom")
	}
	return s.result, s.err
}

func TestDebouncer_SingleCommitForBurst(t *testing.T) {
	d := NewDebouncer(2 * time.Second)
	assert.Equal(t, 2*time.Second, d.Quiet())

	var tokens []Token
	for _, raw := range []string{"a", "ab", "abc"} {
		tok, ok := d.Set(raw)
		require.True(t, ok)
		tokens = append(tokens, tok)
	}
	assert.Equal(t, "abc", d.Raw())
	assert.Equal(t, "", d.Committed())

	commits := 0
	for _, tok := range tokens {
		if q, ok := d.Fire(tok); ok {
			commits++
			assert.Equal(t, "abc", q)
		}
	}
	assert.Equal(t, 1, commits)
	assert.Equal(t, "abc", d.Committed())
}

func TestDebouncer_UnchangedInputDoesNotRestart(t *testing.T) {
	d := NewDebouncer(time.Second)

	tok, ok := d.Set("abc")
	require.True(t, ok)

	_, ok = d.Set("abc")
	assert.False(t, ok)

	_, ok = d.Fire(tok)
	assert.True(t, ok)
}

func TestDebouncer_TypeThenRevert(t *testing.T) {
	d := NewDebouncer(time.Second)

	tok, _ := d.Set("abc")
	_, ok := d.Fire(tok)
	require.True(t, ok)

	d.Set("abcd")
	tok, _ = d.Set("abc")
	_, ok = d.Fire(tok)
	assert.False(t, ok, "reverting to the committed value must not refetch")
}

func TestDebouncer_ClearCommitsEmpty(t *testing.T) {
	d := NewDebouncer(time.Second)

	tok, _ := d.Set("x")
	d.Fire(tok)

	tok, ok := d.Set("")
	require.True(t, ok)
	q, ok := d.Fire(tok)
	assert.True(t, ok)
	assert.Equal(t, "", q)
}

func TestTracker_InitialStateIsLoading(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, Loading, tr.State().Kind)
	assert.Equal(t, Generation(0), tr.Current())
}

func TestTracker_Transitions(t *testing.T) {
	tr := NewTracker()

	gen := tr.Begin("q")
	assert.Equal(t, Loading, tr.State().Kind)

	require.True(t, tr.Resolve(gen, Result{Err: errors.New("x")}))
	st := tr.State()
	assert.Equal(t, Error, st.Kind)
	assert.Equal(t, MsgFetchFailed, st.Message)
	assert.Nil(t, st.Records)

	gen, q := tr.Retry()
	assert.Equal(t, "q", q)
	st = tr.State()
	assert.Equal(t, Loading, st.Kind)
	assert.Empty(t, st.Message, "a new cycle clears the error")

	require.True(t, tr.Resolve(gen, Result{}))
	st = tr.State()
	assert.Equal(t, Ready, st.Kind)
	assert.NotNil(t, st.Records)
	assert.Empty(t, st.Records)
}

func TestTracker_OutOfOrderResolvesToNewest(t *testing.T) {
	tr := NewTracker()

	g1 := tr.Begin("a")
	g2 := tr.Begin("ab")

	newest := []movie.Record{{ID: "2", Title: "ab"}}
	assert.True(t, tr.Resolve(g2, Result{Records: newest}))
	assert.False(t, tr.Resolve(g1, Result{Records: []movie.Record{{ID: "1", Title: "a"}}}))

	st := tr.State()
	assert.Equal(t, Ready, st.Kind)
	assert.Equal(t, newest, st.Records)
	assert.Equal(t, "ab", st.Query)
}

func TestTracker_StaleErrorIgnored(t *testing.T) {
	tr := NewTracker()

	g1 := tr.Begin("a")
	tr.Begin("ab")

	assert.False(t, tr.Resolve(g1, Result{Err: errors.New("late failure")}))
	assert.Equal(t, Loading, tr.State().Kind)
}

func TestFetcher_Resolve(t *testing.T) {
	f := NewFetcher(&stubSearcher{}, Options{DefaultQuery: "full movie free", MaxResults: 20})

	assert.Equal(t, "full movie free", f.Resolve(""))
	assert.Equal(t, "full movie free", f.Resolve("   "))
	assert.Equal(t, "Nosferatu 1922", f.Resolve("Nosferatu 1922"))
	assert.Equal(t, "a b", f.Resolve("a\nb"))

	long := strings.Repeat("nosferatu ", 40)
	assert.Equal(t, long, f.Resolve(long), "long queries are sent whole")
}

func TestFetcher_Fetch(t *testing.T) {
	s := &stubSearcher{result: provider.SearchResult{
		Records: []movie.Record{{ID: "abc", Title: "T"}},
		Source:  movie.SourceYouTube,
	}}
	f := NewFetcher(s, Options{DefaultQuery: "full movie free", MaxResults: 20})

	res := f.Fetch(context.Background(), "")
	require.NoError(t, res.Err)
	assert.Equal(t, []string{"full movie free"}, s.queries)
	assert.Equal(t, []int{20}, s.limits)
	assert.Len(t, res.Records, 1)
	assert.Equal(t, movie.SourceYouTube, res.Source)
}

func TestFetcher_FetchFailureAndPanic(t *testing.T) {
	f := NewFetcher(&stubSearcher{err: errors.New("down")}, Options{MaxResults: 20})
	assert.Error(t, f.Fetch(context.Background(), "q").Err)

	f = NewFetcher(&stubSearcher{panic: true}, Options{MaxResults: 20})
	res := f.Fetch(context.Background(), "q")
	assert.Error(t, res.Err)
	assert.Nil(t, res.Records)
}

func TestFetcher_ClampsMaxResults(t *testing.T) {
	s := &stubSearcher{}
	NewFetcher(s, Options{MaxResults: 500}).Fetch(context.Background(), "q")
	NewFetcher(s, Options{MaxResults: 0}).Fetch(context.Background(), "q")
	assert.Equal(t, []int{50, 1}, s.limits)
}

// The whole path from a cleared input to the HTTP request.
func TestFetcher_DefaultQueryReachesServer(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer srv.Close()

	cfg := config.TestConfig()
	cfg.API.YouTube.BaseURL = srv.URL
	f := NewFetcher(provider.NewFromConfig(cfg), Options{
		DefaultQuery: cfg.Search.DefaultQuery,
		MaxResults:   cfg.Search.MaxResults,
	})

	tr := NewTracker()
	gen := tr.Begin("")
	require.True(t, tr.Resolve(gen, f.Fetch(context.Background(), "")))

	assert.Equal(t, "full movie free", gotQuery)
	assert.Equal(t, Ready, tr.State().Kind)
	assert.Empty(t, tr.State().Records)
}

func TestFetcher_NonSuccessStatusBecomesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	cfg := config.TestConfig()
	cfg.API.YouTube.BaseURL = srv.URL
	f := NewFetcher(provider.NewFromConfig(cfg), Options{DefaultQuery: "x", MaxResults: 20})

	tr := NewTracker()
	gen := tr.Begin("q")
	tr.Resolve(gen, f.Fetch(context.Background(), "q"))

	assert.Equal(t, Error, tr.State().Kind)
	assert.Equal(t, MsgFetchFailed, tr.State().Message)
}
