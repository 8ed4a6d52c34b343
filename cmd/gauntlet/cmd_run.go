// Package main: the run command executes a suite against an agent.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gauntlet/internal/results"
	"gauntlet/internal/runner"
	"gauntlet/internal/scenario"
)

var (
	runAgent    string
	runOracle   bool
	runKeepWork bool
	runDB       string
	runJSONL    string
	runTimeout  time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run <suite.yaml>",
	Short: "Resolve, execute, and score a suite against an agent",
	Long: `Run every sample of the suite: materialize its artifacts, put the
question to the agent, and score the answer against the computed
expectation.

The agent is a command (from --agent or the config file) that receives the
question on stdin, runs inside the instance's artifact directory, and
prints its answer to stdout. --oracle substitutes a built-in agent that
answers with the expected value, which is useful for smoke-testing a suite.

Agent failures and unresolvable instances are recorded as errors, not
fails. The exit status reflects only whether the run itself completed;
read the verdicts from the summary or the stored results.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	suite, err := scenario.LoadFile(args[0])
	if err != nil {
		return err
	}
	agent, err := buildAgent()
	if err != nil {
		return err
	}

	opts := runner.Options{
		Workdir:     cfg.Run.Workdir,
		Seed:        cfg.Run.Seed,
		Concurrency: cfg.Run.Concurrency,
		KeepWork:    runKeepWork || cfg.Run.KeepWork,
		Suite:       args[0],
	}
	r := runner.New(agent, nil, opts, logger)

	run, runErr := r.Run(ctx, suite)
	if len(run.Samples) == 0 {
		if runErr != nil {
			return runErr
		}
		fmt.Println("Suite produced no samples.")
		return nil
	}

	fmt.Println(renderSummary(run.Summarize()))
	printFailures(run)
	fmt.Printf("Run %s finished in %s (agent %q, seed %d)\n", run.ID, run.Elapsed.Round(time.Millisecond), run.Agent, run.Seed)

	dbPath := runDB
	if dbPath == "" {
		dbPath = cfg.Results.DatabasePath
	}
	if dbPath != "" {
		store, err := results.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveRun(ctx, run); err != nil {
			return err
		}
		fmt.Printf("Saved to %s\n", dbPath)
	}

	if runJSONL != "" {
		f, err := os.Create(runJSONL)
		if err != nil {
			return fmt.Errorf("create jsonl file: %w", err)
		}
		defer f.Close()
		if err := results.WriteJSONL(f, run); err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", runJSONL)
	}

	return runErr
}

// buildAgent picks the agent implementation from flags and config.
func buildAgent() (runner.Agent, error) {
	if runOracle {
		return runner.OracleAgent{}, nil
	}
	argv := cfg.Agent.Command
	if runAgent != "" {
		argv = strings.Fields(runAgent)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("no agent configured: pass --agent, set agent.command in %s, or use --oracle", cfgPath)
	}
	timeout := cfg.GetAgentTimeout()
	if runTimeout > 0 {
		timeout = runTimeout
	}
	return runner.NewCommandAgent(argv, timeout)
}

// printFailures lists every non-passing sample with enough context to chase
// it down: scoring detail for fails, fault kind and field for errors.
func printFailures(run *results.Run) {
	for i := range run.Samples {
		smp := &run.Samples[i]
		switch smp.Verdict {
		case results.VerdictFail:
			fmt.Printf("%s %s/s%d\n", failStyle.Render("FAIL"), smp.Definition, smp.Sample)
			fmt.Printf("  question: %s\n", smp.Question)
			for _, line := range strings.Split(strings.TrimRight(smp.Detail, "\n"), "\n") {
				fmt.Printf("  %s\n", line)
			}
			if smp.Dir != "" {
				fmt.Printf("  %s\n", mutedStyle.Render("artifacts: "+smp.Dir))
			}
		case results.VerdictError:
			fmt.Printf("%s %s/s%d", errorStyle.Render("ERROR"), smp.Definition, smp.Sample)
			if smp.Failure != nil {
				fmt.Printf(" [%s] %s: %s", smp.Failure.Kind, smp.Failure.Field, smp.Failure.Message)
			}
			fmt.Println()
		}
	}
}

func init() {
	runCmd.Flags().StringVarP(&runAgent, "agent", "a", "", "Agent command line (overrides config)")
	runCmd.Flags().BoolVar(&runOracle, "oracle", false, "Use the built-in oracle agent instead of a command")
	runCmd.Flags().BoolVar(&runKeepWork, "keep-work", false, "Keep artifact directories of passed samples")
	runCmd.Flags().StringVar(&runDB, "db", "", "Results database path (overrides config)")
	runCmd.Flags().StringVar(&runJSONL, "jsonl", "", "Also export the run as JSONL to this file")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Per-question agent timeout (overrides config)")
}
