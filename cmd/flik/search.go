package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pders01/flik/internal/config"
	"github.com/pders01/flik/internal/debuglog"
	"github.com/pders01/flik/internal/discover"
	"github.com/pders01/flik/internal/movie"
	"github.com/pders01/flik/internal/provider"
	"github.com/pders01/flik/internal/tui"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for movies and print the results",
	Long: `Search runs one query against the configured providers and prints the
results. With no query the default query is used, exactly as the
interactive browser does on startup.`,
	Args: cobra.ArbitraryArgs,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", 0, "maximum number of results (default search.max_results)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer debuglog.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.Search.MaxResults
	}

	fetcher := discover.NewFetcher(provider.NewFromConfig(cfg), discover.Options{
		DefaultQuery: cfg.Search.DefaultQuery,
		MaxResults:   limit,
	})

	query := strings.Join(args, " ")
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*cfg.API.HTTPTimeout)
	defer cancel()

	res := fetcher.Fetch(ctx, query)
	if res.Err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), discover.MsgFetchFailed)
		return reported(fmt.Sprintf("search %q", fetcher.Resolve(query)), res.Err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd.OutOrStdout(), res.Records)
	}
	printRecords(cmd.OutOrStdout(), cfg, fetcher.Resolve(query), res)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRecords(w io.Writer, cfg *config.Config, query string, res discover.Result) {
	header := tui.HeaderStyle.Render(fmt.Sprintf("› %s", query))
	if len(res.Records) == 0 {
		fmt.Fprintln(w, header)
		fmt.Fprintln(w, tui.HelpStyle.Render(tui.MsgNoResults))
		return
	}

	fmt.Fprintln(w, header+"  "+tui.HelpStyle.Render(tui.MsgResultsCount(len(res.Records), res.Source)))
	fmt.Fprintln(w)

	idStyle := lipgloss.NewStyle().Foreground(tui.MutedColor).Width(14)
	titleStyle := lipgloss.NewStyle().Foreground(tui.TextColor).Bold(true)
	metaStyle := lipgloss.NewStyle().Foreground(tui.MutedColor)

	for _, r := range res.Records {
		fmt.Fprintln(w, idStyle.Render(r.ID)+titleStyle.Render(r.Title))
		fmt.Fprintln(w, idStyle.Render("")+metaStyle.Render(recordMeta(r, cfg)))
	}
}

func recordMeta(r movie.Record, cfg *config.Config) string {
	var parts []string
	if a := r.Attribution(); a != "" {
		parts = append(parts, a)
	}
	if r.Year != "" {
		parts = append(parts, r.Year)
	}
	parts = append(parts, string(r.Source))
	if r.VideoURL != "" {
		parts = append(parts, r.VideoURL)
	} else {
		parts = append(parts, r.ImageURL(cfg.API.TMDB.ImageBaseURL))
	}
	return strings.Join(parts, " • ")
}
