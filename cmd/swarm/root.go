package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "swarm",
	Short: "Multi-agent development task processor",
	Long: `Swarm coordinates five specialized AI agents to process development
tasks end-to-end: requirements analysis, codebase context, implementation,
quality review, and a final complete-or-escalate decision.

With no arguments, launches interactive mode where you can type tasks
and watch the agent pipeline run them.

Core capabilities:
- Routes each task through a bounded agent handoff pipeline
- Extracts the generated code, quality score, and complexity
- Prices completed work from complexity, quality, and speed
- Escalates to a human when the task is beyond the agents`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
