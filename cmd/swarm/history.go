package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codecollab/swarm/internal/config"
	"github.com/codecollab/swarm/internal/history"
	"github.com/codecollab/swarm/pkg/models"
)

var (
	historyLimit     int
	historyPurgeAge  time.Duration
	historyShowStats bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past run results",
	Long: `List runs from the persistent history store.

Requires history.persist to be enabled in the configuration; runs are
recorded by the HTTP server as they complete.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if historyPurgeAge > 0 {
			purged, err := store.PurgeOldRuns(historyPurgeAge)
			if err != nil {
				return err
			}
			fmt.Printf("Purged %d runs older than %s\n", purged, historyPurgeAge)
			return nil
		}

		if historyShowStats {
			return printHistoryStats(store)
		}

		runs, err := store.ListRuns(historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}

		for _, run := range runs {
			printHistoryLine(run)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show")
	historyCmd.Flags().DurationVar(&historyPurgeAge, "purge-older-than", 0, "Delete runs older than this duration and exit")
	historyCmd.Flags().BoolVar(&historyShowStats, "stats", false, "Show aggregate statistics instead of runs")
}

func openHistoryStore() (*history.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	dbPath := cfg.History.DBPath
	if dbPath == "" {
		dbPath = history.DefaultDBPath()
	}
	return history.Open(dbPath)
}

func printHistoryLine(run *models.RunResult) {
	status := color.GreenString("ok")
	if !run.Success {
		status = color.RedString("failed")
	}

	amount := 0.0
	if run.Payment != nil {
		amount = run.Payment.Amount
	}

	task := run.TaskDescription
	if len(task) > 50 {
		task = task[:50] + "..."
	}

	fmt.Printf("%s  %-6s  %-8s  $%.2f  %2d/100  %s\n",
		run.StartedAt.Local().Format("2006-01-02 15:04"),
		status,
		run.Complexity,
		amount,
		run.QualityScore,
		task,
	)
}

func printHistoryStats(store *history.Store) error {
	stats, err := store.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("Total runs:      %d\n", stats.TotalRuns)
	fmt.Printf("Successful runs: %d\n", stats.SuccessfulRuns)
	fmt.Printf("Total earned:    $%.2f\n", stats.TotalEarned)
	fmt.Printf("Total tokens:    %d\n", stats.TotalTokens)
	return nil
}
