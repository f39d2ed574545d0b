package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pders01/flik/internal/debuglog"
	"github.com/pders01/flik/internal/movie"
	"github.com/pders01/flik/internal/provider"
	"github.com/pders01/flik/internal/tui"
)

// exitNotFound is the exit code for an unknown movie id.
const exitNotFound = 2

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the details of one movie",
	Long: `Show fetches and renders the detail page for a YouTube video id or a TMDB
movie id. An id that resolves to nothing exits with status 2.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().String("source", "youtube", "catalogue the id belongs to: youtube or tmdb")
	showCmd.Flags().Bool("json", false, "output the detail as JSON")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("source")
	source, ok := movie.ParseSource(name)
	if !ok {
		return fmt.Errorf("unknown source %q (want youtube or tmdb)", name)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer debuglog.Close()

	registry := provider.NewFromConfig(cfg)
	if registry.Lookup(source) == nil {
		return fmt.Errorf("%s is not configured (available: %s); set api.tmdb.key", source, sourceNames(registry))
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*cfg.API.HTTPTimeout)
	defer cancel()

	d, err := registry.Detail(ctx, source, args[0])
	if err != nil {
		if provider.IsNotFound(err) {
			return &exitError{code: exitNotFound, err: fmt.Errorf("%s: %s", tui.MsgNotFound, args[0])}
		}
		fmt.Fprintln(cmd.ErrOrStderr(), tui.MsgDetailFailed)
		return reported(fmt.Sprintf("detail %s:%s", source, args[0]), err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd.OutOrStdout(), d)
	}

	width := 0
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = min(w-4, cfg.UI.Detail.WordWrapMaxWidth)
	}

	out, err := tui.RenderDetail(d, cfg, width)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// sourceNames lists the configured catalogues in search order.
func sourceNames(registry *provider.Registry) string {
	providers := registry.Providers()
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = strings.ToLower(string(p.Source()))
	}
	return strings.Join(names, ", ")
}
