package main

import (
	"fmt"
	"os"

	"github.com/espalier-dev/espalier/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [form]",
	Short: "Fill a form interactively in the terminal",
	Long:  `Opens a session over the named form and renders it in the terminal, re-rendering as answers change visibility.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := cli.RunOptions{}
		opts.VaultPath, _ = cmd.Flags().GetString("vault")
		opts.Debug, _ = cmd.Flags().GetBool("debug")
		opts.FormID, _ = cmd.Flags().GetString("form")
		if !cmd.Flags().Changed("form") && len(args) > 0 {
			opts.FormID = args[0]
		}
		opts.StepID, _ = cmd.Flags().GetString("step")
		opts.Watch, _ = cmd.Flags().GetBool("watch")
		opts.Plain, _ = cmd.Flags().GetBool("plain")
		opts.RedisURL, _ = cmd.Flags().GetString("redis")
		opts.StoreDir, _ = cmd.Flags().GetString("store-dir")
		opts.EncryptionKey, _ = cmd.Flags().GetString("encryption-key")
		opts.PIIPatterns, _ = cmd.Flags().GetStringSlice("pii")

		if err := cli.Execute(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("form", "", "Form ID to open")
	runCmd.Flags().String("step", "", "Step ID to start on (default: first step)")
	runCmd.Flags().BoolP("watch", "w", false, "Reload the form when the vault changes")
	runCmd.Flags().Bool("plain", false, "Disable markdown rendering and the banner")
	runCmd.Flags().String("redis", "", "Redis URL for shared response storage")
	runCmd.Flags().String("store-dir", "", "Directory for file-backed response storage")
	runCmd.Flags().String("encryption-key", "", "Hex-encoded AES-256 key for at-rest encryption")
	runCmd.Flags().StringSlice("pii", nil, "Question ID patterns whose stored answers are masked")
}
