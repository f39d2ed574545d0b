package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/flik/internal/config"
	"github.com/pders01/flik/internal/discover"
	"github.com/pders01/flik/internal/movie"
	"github.com/pders01/flik/internal/storage"
	"github.com/pders01/flik/internal/tui"
)

// captureStdout runs fn and returns what it wrote to os.Stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	fn()

	w.Close()
	os.Stdout = old
	return <-outC
}

func TestVersionCommand(t *testing.T) {
	out := captureStdout(t, func() {
		versionCmd.Run(nil, nil)
	})

	// Version is "dev" by default in tests
	assert.Contains(t, out, "flik dev")
	assert.Contains(t, out, "Terminal movie discovery")
	assert.Contains(t, out, "github.com/pders01/flik")
}

func TestGenerateConfigCommand(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, ".config", "flik", "config.toml")

	t.Setenv("HOME", tmpDir)
	for _, k := range []string{"FLIK_YOUTUBE_API_KEY", "FLIK_API_YOUTUBE_KEY", "YOUTUBE_API_KEY"} {
		t.Setenv(k, "")
	}

	out := captureStdout(t, func() {
		configGenCmd.Run(nil, nil)
	})

	_, err := os.Stat(configFile)
	require.NoError(t, err, "config file was not created at %s", configFile)
	assert.Contains(t, out, "Generated default configuration at:")

	// The generated file loads back and only lacks the API key.
	cfg, err := config.Load(configFile)
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.Validate(), config.ErrMissingAPIKey)
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"expand tilde path", "~/test.db", filepath.Join(home, "test.db")},
		{"absolute path unchanged", "/tmp/test.db", "/tmp/test.db"},
		{"relative path unchanged", "test.db", "test.db"},
		{"bare tilde unchanged", "~", "~"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandTilde(tt.input))
		})
	}
}

func TestExitErrorUnwraps(t *testing.T) {
	inner := errors.New("Movie not found: xyz")
	err := error(&exitError{code: exitNotFound, err: inner})

	var ee *exitError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 2, ee.code)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, inner.Error(), err.Error())
}

func TestPrintRecords(t *testing.T) {
	cfg := config.TestConfig()
	res := discover.Result{
		Source: movie.SourceYouTube,
		Records: []movie.Record{
			{ID: "abc", Title: "Nosferatu", Channel: "Silent Era", Year: "1922", Source: movie.SourceYouTube, VideoURL: "https://www.youtube.com/watch?v=abc"},
			{ID: "550", Title: "Fight Club", Source: movie.SourceTMDB, PosterPath: "/p.jpg"},
		},
	}

	var buf bytes.Buffer
	printRecords(&buf, cfg, "silent films", res)
	out := buf.String()

	assert.Contains(t, out, "silent films")
	assert.Contains(t, out, "2 movies from YouTube")
	assert.Contains(t, out, "Nosferatu")
	assert.Contains(t, out, "Silent Era • 1922 • YouTube • https://www.youtube.com/watch?v=abc")
	assert.Contains(t, out, "https://image.tmdb.org/t/p/w500/p.jpg")
}

func TestPrintRecordsEmpty(t *testing.T) {
	var buf bytes.Buffer
	printRecords(&buf, config.TestConfig(), "zzz", discover.Result{Records: []movie.Record{}})

	assert.Contains(t, buf.String(), "No movies found")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, []movie.Record{{ID: "abc", Title: "T", Source: movie.SourceYouTube}}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "["))
	assert.Contains(t, out, `"id": "abc"`)
	assert.Contains(t, out, `"source": "YouTube"`)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"search", "show", "watchlist", "version", "config"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestFindBookmarks(t *testing.T) {
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"), time.Second)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SaveBookmark(movie.Record{ID: "aaaaaaaaaaa", Title: "Nosferatu", Source: movie.SourceYouTube}))
	require.NoError(t, store.SaveBookmark(movie.Record{ID: "550", Title: "Fight Club", Source: movie.SourceTMDB}))

	all, err := findBookmarks(store, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	hits, err := findBookmarks(store, "nosfer", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Nosferatu", hits[0].Title)

	var buf bytes.Buffer
	printBookmarks(&buf, config.TestConfig(), hits)
	assert.Contains(t, buf.String(), "YouTube:aaaaaaaaaaa")
	assert.Contains(t, buf.String(), "saved ")
}

// failingAPI points the YouTube endpoints at a server that always answers
// 500 and disables TMDB.
func failingAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"backendError"}}`, http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	t.Setenv("HOME", t.TempDir())
	t.Setenv("FLIK_API_YOUTUBE_KEY", "secret-key")
	t.Setenv("FLIK_API_YOUTUBE_BASE_URL", srv.URL)
	t.Setenv("FLIK_API_YOUTUBE_FEED_URL", srv.URL+"/feeds/videos.xml")
	for _, k := range []string{"FLIK_TMDB_API_KEY", "FLIK_API_TMDB_KEY", "TMDB_API_KEY"} {
		t.Setenv(k, "")
	}
	return srv
}

// runCLI executes the root command with args and returns what it wrote to
// stderr together with what main would print for the returned error.
func runCLI(t *testing.T, args ...string) (stderr string, code int, err error) {
	t.Helper()
	var errBuf bytes.Buffer
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs([]string{})
	})

	err = rootCmd.Execute()
	code = exitCode(&errBuf, err)
	return errBuf.String(), code, err
}

func TestFetchFailuresShowOnlyGenericMessage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"search", []string{"search", "nosferatu"}, discover.MsgFetchFailed},
		{"show", []string{"show", "dQw4w9WgXcQ"}, tui.MsgDetailFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := failingAPI(t)

			stderr, code, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, errReported)
			assert.Equal(t, 1, code)

			assert.Equal(t, tt.want+"\n", stderr)
			for _, leak := range []string{"500", srv.URL, "secret-key", "REDACTED", "Error:"} {
				assert.NotContains(t, stderr, leak)
				assert.NotContains(t, err.Error(), leak)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		printed string
	}{
		{"success", nil, 0, ""},
		{"plain error", errors.New("boom"), 1, "Error: boom\n"},
		{"not found", &exitError{code: exitNotFound, err: errors.New("Movie not found: x")}, 2, "Error: Movie not found: x\n"},
		{"already reported", &exitError{code: 1, err: errReported}, 1, ""},
		{"wrapped report", fmt.Errorf("search: %w", &exitError{code: 1, err: errReported}), 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			assert.Equal(t, tt.code, exitCode(&buf, tt.err))
			assert.Equal(t, tt.printed, buf.String())
		})
	}
}

func TestShowUnconfiguredSourceListsAvailable(t *testing.T) {
	failingAPI(t)

	stderr, code, err := runCLI(t, "show", "--source", "tmdb", "10331")
	t.Cleanup(func() { _ = showCmd.Flags().Set("source", "youtube") })

	require.Error(t, err)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "TMDB is not configured (available: youtube)")
}
