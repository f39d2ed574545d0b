package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of flik",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("flik %s\n", Version)
		fmt.Println("Terminal movie discovery")
		fmt.Println("github.com/pders01/flik")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
