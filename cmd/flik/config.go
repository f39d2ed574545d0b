package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pders01/flik/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the flik configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the default configuration to ~/.config/flik/config.toml",
	Run: func(cmd *cobra.Command, args []string) {
		home, _ := os.UserHomeDir()
		configFile := filepath.Join(home, ".config", "flik", "config.toml")

		if err := config.GenerateDefaultConfig(configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated default configuration at: %s\n", configFile)
		fmt.Println("Set api.youtube.key (or FLIK_YOUTUBE_API_KEY) before running flik.")
	},
}

func init() {
	configCmd.AddCommand(configGenCmd)
	rootCmd.AddCommand(configCmd)
}
