package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codecollab/swarm/internal/config"
	"github.com/codecollab/swarm/internal/pricing"
	"github.com/codecollab/swarm/pkg/models"
)

var runJSON bool

var runCmd = &cobra.Command{
	Use:   "run <task>",
	Short: "Process a single development task",
	Long: `Run one task through the agent pipeline and print the result.

The task travels requirements -> context -> builder -> quality ->
escalation; the escalation agent decides COMPLETE or ESCALATE and the
completed work is priced.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task := strings.Join(args, " ")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		s, cleanup, err := buildSwarm(cfg, nil)
		if err != nil {
			return err
		}
		defer cleanup()

		if !runJSON {
			printTaskHeader(task)
			color.Yellow("Processing with swarm agents...")
		}

		result, err := s.Process(context.Background(), task)
		if err != nil {
			return err
		}

		if runJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		printResult(result)
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Output the result as JSON")
}

func printTaskHeader(task string) {
	rule := strings.Repeat("-", 80)
	color.Blue(rule)
	fmt.Printf("%s %s\n", color.New(color.Bold).Sprint("TASK:"), task)
	color.Blue(rule)
}

// printResult renders a run result for the terminal.
func printResult(result *models.RunResult) {
	rule := strings.Repeat("-", 80)
	color.Cyan(rule)
	color.New(color.Bold).Println("EXECUTION RESULT")
	color.Cyan(rule)

	if result.Success {
		fmt.Printf("Status: %s\n", color.GreenString("SUCCESS"))
	} else {
		fmt.Printf("Status: %s\n", color.RedString("FAILED"))
	}
	if result.FailureTag != models.FailureNone {
		fmt.Printf("Failure: %s\n", color.RedString(string(result.FailureTag)))
	}
	if result.Error != "" {
		fmt.Printf("Error: %s\n", result.Error)
	}

	fmt.Printf("Time: %.2f seconds\n", float64(result.ExecutionTimeMS)/1000)
	if result.TotalTokens > 0 {
		fmt.Printf("Tokens: %d\n", result.TotalTokens)
	}

	printAgentFlow(result.AgentSequence)

	decisionColor := color.GreenString
	if result.FinalDecision == models.DecisionEscalate {
		decisionColor = color.YellowString
	}
	fmt.Printf("\nDecision: %s\n", decisionColor(string(result.FinalDecision)))
	fmt.Printf("Quality: %d/100  Complexity: %s\n", result.QualityScore, result.Complexity)

	if result.Payment != nil {
		fmt.Println()
		fmt.Print(pricing.FormatSummary(result.Payment))
	}

	fmt.Println()
	color.New(color.Bold).Println("GENERATED CODE:")
	color.Cyan(rule)
	printCode(result)
	color.Cyan(rule)
}

func printAgentFlow(sequence []models.RoleName) {
	if len(sequence) == 0 {
		return
	}

	color.Green("\nAGENT FLOW (%d agents):", len(sequence))
	for i, role := range sequence {
		marker := "->"
		if i == len(sequence)-1 {
			marker = "done"
		}
		fmt.Printf("   %d. %s %s\n", i+1, roleLabel(role), marker)
	}
}

// printCode prints the extracted code, falling back to the terminal
// response, truncated for display.
func printCode(result *models.RunResult) {
	const displayLimit = 2000

	code := result.Deliverables.Code
	if code == "" {
		code = result.FinalResult
	}
	if strings.TrimSpace(code) == "" {
		fmt.Println("No code generated")
		return
	}

	if len(code) > displayLimit {
		fmt.Println(code[:displayLimit])
		color.Yellow("... (output truncated, showing first %d chars)", displayLimit)
		return
	}
	fmt.Println(code)
}
