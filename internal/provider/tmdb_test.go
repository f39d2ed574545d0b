package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pders01/flik/internal/config"
	"github.com/pders01/flik/internal/movie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTMDB(t *testing.T, handler http.HandlerFunc) *TMDB {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.TestConfig()
	cfg.API.TMDB.BaseURL = srv.URL + "/3"
	cfg.API.TMDB.Key = "test-tmdb-key"
	return NewTMDB(NewClient(cfg.API), cfg.API.TMDB, cfg.API.YouTube)
}

func TestTMDB_Search(t *testing.T) {
	tm := newTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/search/movie", r.URL.Path)
		assert.Equal(t, "metropolis", r.URL.Query().Get("query"))
		assert.Equal(t, "test-tmdb-key", r.URL.Query().Get("api_key"))
		fmt.Fprint(w, `{"page":1,"results":[
			{"id":19,"title":"Metropolis","overview":"Future city","poster_path":"/m.jpg","release_date":"1927-01-10","original_language":"de","vote_average":8.1},
			{"id":0,"title":"broken"},
			{"id":20,"title":"Metropolis (2001)","release_date":""},
			{"id":21,"title":"Over the limit"}
		]}`)
	})

	records, err := tm.Search(context.Background(), "metropolis", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, movie.Record{
		ID:          "19",
		Title:       "Metropolis",
		Description: "Future city",
		PosterPath:  "/m.jpg",
		ReleaseDate: "1927-01-10",
		Year:        "1927",
		Language:    "de",
		Rating:      8.1,
		Source:      movie.SourceTMDB,
	}, records[0])
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/m.jpg", records[0].ImageURL("https://image.tmdb.org/t/p/w500/"))

	assert.Equal(t, "20", records[1].ID)
	assert.Empty(t, records[1].Year)
}

func TestTMDB_SearchMissingResults(t *testing.T) {
	tm := newTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status_message":"?"}`)
	})

	_, err := tm.Search(context.Background(), "q", 20)
	var me *MalformedResponseError
	assert.ErrorAs(t, err, &me)
}

func TestTMDB_Detail(t *testing.T) {
	tm := newTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/movie/19", r.URL.Path)
		assert.Equal(t, "videos", r.URL.Query().Get("append_to_response"))
		fmt.Fprint(w, `{"id":19,"title":"Metropolis","overview":"Future city","release_date":"1927-01-10","runtime":153,
			"genres":[{"id":18,"name":"Drama"},{"id":878,"name":"Science Fiction"}],
			"videos":{"results":[
				{"key":"vimeo1","site":"Vimeo","type":"Trailer"},
				{"key":"clip_000001","site":"YouTube","type":"Clip"},
				{"key":"trailer0001","site":"YouTube","type":"Trailer"}
			]}}`)
	})

	d, err := tm.Detail(context.Background(), "19")
	require.NoError(t, err)

	assert.Equal(t, "Metropolis", d.Title)
	assert.Equal(t, 153*time.Minute, d.Duration)
	assert.Equal(t, []string{"Drama", "Science Fiction"}, d.Genres)
	assert.Equal(t, 1927, d.PublishedAt.Year())
	assert.Equal(t, "https://www.youtube.com/embed/trailer0001", d.EmbedURL)
	assert.Equal(t, "https://www.youtube.com/watch?v=trailer0001", d.WatchURL)
	assert.True(t, d.Playable())
}

func TestTMDB_DetailWithoutTrailer(t *testing.T) {
	tm := newTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":7,"title":"Obscure","videos":{"results":[]}}`)
	})

	d, err := tm.Detail(context.Background(), "7")
	require.NoError(t, err)
	assert.False(t, d.Playable())
	assert.Empty(t, d.EmbedURL)
}

func TestTMDB_DetailNotFound(t *testing.T) {
	tm := newTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"status_code":34,"status_message":"The resource you requested could not be found."}`)
	})

	_, err := tm.Detail(context.Background(), "999999")
	assert.True(t, IsNotFound(err))

	_, err = tm.Detail(context.Background(), "dQw4w9WgXcQ")
	assert.True(t, IsNotFound(err))
}
