package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pders01/flik/internal/config"
	"github.com/pders01/flik/internal/debuglog"
	"github.com/pders01/flik/internal/search"
	"github.com/pders01/flik/internal/storage"
	"github.com/pders01/flik/internal/tui"
)

var watchlistCmd = &cobra.Command{
	Use:   "watchlist [query]",
	Short: "List or search saved movies",
	Long: `Watchlist prints the movies saved with ctrl+b in the interactive browser,
newest first. With a query the list is ranked by a full-text match over
title, creator, channel and description.`,
	Args: cobra.ArbitraryArgs,
	RunE: runWatchlist,
}

func init() {
	watchlistCmd.Flags().Int("limit", 0, "maximum number of entries (0 for all)")
	watchlistCmd.Flags().Bool("json", false, "output entries as JSON")

	rootCmd.AddCommand(watchlistCmd)
}

func runWatchlist(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer debuglog.Close()

	store, err := storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		return fmt.Errorf("opening watchlist: %w", err)
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	bookmarks, err := findBookmarks(store, strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd.OutOrStdout(), bookmarks)
	}
	printBookmarks(cmd.OutOrStdout(), cfg, bookmarks)
	return nil
}

// findBookmarks lists the watchlist, or ranks it against query when one is
// given.
func findBookmarks(store *storage.Store, query string, limit int) ([]*storage.Bookmark, error) {
	if strings.TrimSpace(query) == "" {
		return store.ListBookmarks(limit)
	}

	engine, err := search.NewBleveEngine(store)
	if err != nil {
		return nil, fmt.Errorf("building watchlist index: %w", err)
	}
	defer engine.Close()

	var searcher search.Searcher = engine
	if ds, ok := searcher.(search.DebugStatser); ok {
		if n, err := ds.DocCount(); err == nil {
			debuglog.Debugf("watchlist index holds %d entries", n)
		}
	}

	results, err := searcher.Search(query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching watchlist: %w", err)
	}
	out := make([]*storage.Bookmark, len(results))
	for i, r := range results {
		out[i] = r.Bookmark
	}
	return out, nil
}

func printBookmarks(w io.Writer, cfg *config.Config, bookmarks []*storage.Bookmark) {
	if len(bookmarks) == 0 {
		fmt.Fprintln(w, tui.HelpStyle.Render(tui.MsgWatchlistEmpty))
		return
	}

	keyStyle := lipgloss.NewStyle().Foreground(tui.MutedColor).Width(22)
	titleStyle := lipgloss.NewStyle().Foreground(tui.TextColor).Bold(true)
	metaStyle := lipgloss.NewStyle().Foreground(tui.MutedColor)

	for _, b := range bookmarks {
		fmt.Fprintln(w, keyStyle.Render(b.Key())+titleStyle.Render(b.Title))
		meta := recordMeta(b.Record, cfg) + " • saved " + b.SavedAt.Format("Jan 2, 2006")
		fmt.Fprintln(w, keyStyle.Render("")+metaStyle.Render(meta))
	}
}
