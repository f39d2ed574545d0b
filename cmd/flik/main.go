// Package main is the entry point for the flik CLI.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/flik/internal/config"
	"github.com/pders01/flik/internal/debuglog"
	"github.com/pders01/flik/internal/storage"
	"github.com/pders01/flik/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

// exitError carries a specific process exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// errReported marks a failure whose user-facing message was already
// printed. The underlying error goes to the log only.
var errReported = errors.New("failure already reported")

// reported logs err and returns an exit error that main will not print.
func reported(what string, err error) error {
	debuglog.Errorf("%s: %v", what, err)
	return &exitError{code: 1, err: errReported}
}

var rootCmd = &cobra.Command{
	Use:   "flik",
	Short: "Terminal movie discovery",
	Long: `flik finds free full-length movies on YouTube, with TMDB as a fallback
catalogue. Run without arguments for the interactive browser, or use the
search and show subcommands for scripted output.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to configuration file (default ~/.config/flik/config.toml)")
	rootCmd.PersistentFlags().String("db", "", "path to watchlist database (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error, off (overrides config)")
	rootCmd.Flags().Bool("quiet", false, "skip startup banner")
}

// loadConfig reads and validates the configuration and starts logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
		cfg.Database.Path = expandTilde(dbPath)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expandTilde resolves a leading ~/ against the home directory.
func expandTilde(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer debuglog.Close()

	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		tui.ShowBanner(Version)
	}

	// The watchlist is optional; browsing works without it.
	store, err := storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		debuglog.Warnf("watchlist disabled: %v", err)
		fmt.Fprintf(os.Stderr, "Warning: watchlist unavailable: %v\n", err)
		store = nil
	} else {
		defer store.Close()
	}

	app := tui.NewApp(store, cfg)
	defer app.Close()
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running interface: %w", err)
	}
	return nil
}

// exitCode prints err unless it was already reported and returns the
// process exit status for it.
func exitCode(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if !errors.Is(err, errReported) {
		fmt.Fprintf(w, "Error: %v\n", err)
	}

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

func main() {
	if code := exitCode(os.Stderr, rootCmd.Execute()); code != 0 {
		os.Exit(code)
	}
}
