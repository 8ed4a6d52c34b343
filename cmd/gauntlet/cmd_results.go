// Package main: the results command browses stored runs.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gauntlet/internal/results"
)

var (
	resultsDB        string
	resultsListLimit int
	resultsShowJSONL string
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Inspect stored runs",
	Long: `Browse runs persisted by 'gauntlet run'.

Subcommands:
  list   - List recent runs with pass counts
  show   - Show one run's per-definition summary and failures`,
	RunE: runResultsList,
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	RunE:  runResultsList,
}

var resultsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one stored run in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runResultsShow,
}

func openStore() (*results.Store, error) {
	path := resultsDB
	if path == "" {
		path = cfg.Results.DatabasePath
	}
	return results.Open(path)
}

func runResultsList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(context.Background(), resultsListLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No stored runs. Use 'gauntlet run' to create one.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, info := range runs {
		rows = append(rows, []string{
			info.ID,
			info.Agent,
			info.Suite,
			info.StartedAt.Local().Format(time.DateTime),
			fmt.Sprintf("%d/%d", info.Passed, info.Total),
		})
	}
	fmt.Println(renderTable("Stored runs", []string{"Run", "Agent", "Suite", "Started", "Passed"}, rows))
	fmt.Printf("Use: gauntlet results show <run-id> (database %s)\n", store.Path())
	return nil
}

func runResultsShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.LoadRun(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Run %s\n", run.ID)
	fmt.Printf("  agent:   %s\n", run.Agent)
	fmt.Printf("  suite:   %s\n", run.Suite)
	fmt.Printf("  seed:    %d\n", run.Seed)
	fmt.Printf("  started: %s\n", run.StartedAt.Local().Format(time.DateTime))
	fmt.Printf("  elapsed: %s\n", run.Elapsed.Round(time.Millisecond))
	fmt.Println()
	fmt.Println(renderSummary(run.Summarize()))
	printFailures(run)

	if resultsShowJSONL != "" {
		f, err := os.Create(resultsShowJSONL)
		if err != nil {
			return fmt.Errorf("create jsonl file: %w", err)
		}
		defer f.Close()
		if err := results.WriteJSONL(f, run); err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", resultsShowJSONL)
	}
	return nil
}

func init() {
	resultsCmd.PersistentFlags().StringVar(&resultsDB, "db", "", "Results database path (overrides config)")
	resultsListCmd.Flags().IntVar(&resultsListLimit, "limit", 20, "Maximum number of runs to list")
	resultsShowCmd.Flags().StringVar(&resultsShowJSONL, "jsonl", "", "Export the run as JSONL to this file")
	resultsCmd.AddCommand(resultsListCmd, resultsShowCmd)
}
