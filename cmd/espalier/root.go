package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "espalier",
	Short: "Espalier is a reactive form engine",
	Long:  `Espalier runs multi-step forms with conditional questions that appear and disappear as answers change.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("vault", ".", "Directory containing the form definitions")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")
}
