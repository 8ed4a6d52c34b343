// Package main implements the gauntlet command line interface.
//
// gauntlet turns declarative scenario definitions into concrete benchmark
// instances: generated artifact trees, a rendered question, and the answer
// the artifacts actually contain. Subcommands cover the whole loop from
// linting definition files to batch-running an agent and inspecting stored
// results.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gauntlet/internal/config"
	"gauntlet/internal/logging"
)

const version = "0.1.0"

// Global flags and state shared across commands.
var (
	cfgPath         string
	verbose         bool
	flagSeed        int64
	flagWorkdir     string
	flagConcurrency int

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gauntlet",
	Short: "Generate and score parameterized agent benchmarks",
	Long: `gauntlet builds benchmark instances from YAML scenario definitions.

Each definition is a template: variables draw fresh values per sample,
components materialize into real files and databases, and the expected
answer is computed by querying what was actually written. The same seed
always yields the same instance, so results are reproducible.

Typical flow:
  gauntlet validate suite.yaml          check definitions without side effects
  gauntlet generate suite.yaml          materialize instances, print QA pairs
  gauntlet run suite.yaml --agent "..." score an agent command, store results
  gauntlet results list                 browse stored runs`,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// setup loads configuration, applies flag overrides, and builds the logger.
// Runs before every command.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("seed") {
		cfg.Run.Seed = flagSeed
	}
	if flagWorkdir != "" {
		cfg.Run.Workdir = flagWorkdir
	}
	if flagConcurrency > 0 {
		cfg.Run.Concurrency = flagConcurrency
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	logger, err = logging.New(level, cfg.Logging.File)
	if err != nil {
		return err
	}
	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM so long
// commands can stop cleanly and report what finished.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Println("\nInterrupted, stopping...")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gauntlet version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gauntlet %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "gauntlet.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Base seed (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagWorkdir, "workdir", "", "Artifact working directory (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagConcurrency, "concurrency", 0, "Concurrent samples (overrides config)")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(poolsCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
