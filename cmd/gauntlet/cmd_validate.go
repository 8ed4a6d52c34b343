// Package main: the validate command lints definition files.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gauntlet/internal/scenario"
)

var validateCmd = &cobra.Command{
	Use:   "validate <suite.yaml> [more files...]",
	Short: "Check definition files without materializing anything",
	Long: `Parse and validate one or more definition files.

Validation covers everything that can be checked statically: identifiers,
template syntax, variable declarations, function names, scoring kinds,
component dependencies (including cycles), and TARGET_FILE references.
Nothing is written to disk.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	bad := 0
	for _, path := range args {
		suite, err := scenario.LoadFile(path)
		if err != nil {
			bad++
			fmt.Printf("%s %s\n", failStyle.Render("✗"), path)
			fmt.Printf("  %v\n", err)
			continue
		}
		fmt.Printf("%s %s (%d definitions)\n", passStyle.Render("✓"), path, len(suite.Definitions))
		for i := range suite.Definitions {
			def := &suite.Definitions[i]
			fmt.Printf("  %-24s %d components, %d samples, %s scoring\n",
				def.ID, len(def.Components), def.SampleCount(), def.Scoring.Kind)
		}
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d files failed validation", bad, len(args))
	}
	return nil
}
