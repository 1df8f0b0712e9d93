package main

import (
	"context"
	"fmt"
	"os"

	"github.com/espalier-dev/espalier/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <form>",
	Short: "Print a form's dependency graph as Mermaid",
	Long:  `Renders the reactive structure of a form step: which answers control which questions, and which options spawn option-specific ones.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		vault, _ := cmd.Flags().GetString("vault")
		stepID, _ := cmd.Flags().GetString("step")

		if err := runGraph(vault, args[0], stepID); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("step", "", "Step ID to render (default: every step)")
}

func runGraph(vault, formID, stepID string) error {
	source, err := openSource(vault)
	if err != nil {
		return err
	}

	form, err := source.Load(context.Background(), formID)
	if err != nil {
		return err
	}

	for i := range form.Steps {
		step := &form.Steps[i]
		if stepID != "" && step.ID != stepID {
			continue
		}
		fmt.Printf("%%%% step: %s\n", step.ID)
		fmt.Println(graph.GenerateMermaid(step, nil))
	}
	return nil
}
