// Package main: the generate command materializes instances without an agent.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"gauntlet/internal/scenario"
)

var (
	generateOut     string
	generateSamples int
	generateOnly    string
	generateJSON    bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <suite.yaml>",
	Short: "Materialize instances and print question/answer pairs",
	Long: `Resolve every sample of every definition and write the artifacts
under the output directory as <out>/<definition>/s<N>.

Seeds are assigned exactly as 'gauntlet run' assigns them: base seed plus
the sample's ordinal across the whole suite in declaration order. The same
suite, seed, and sample therefore yield byte-identical artifacts in both
commands, and --only does not shift the seeds of the definitions it keeps.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

// generated is the JSON shape emitted per instance with --json.
type generated struct {
	Definition string            `json:"definition"`
	Sample     int               `json:"sample"`
	Seed       int64             `json:"seed"`
	Dir        string            `json:"dir"`
	Question   string            `json:"question"`
	Expected   string            `json:"expected"`
	Variables  map[string]string `json:"variables,omitempty"`
	Artifacts  map[string]string `json:"artifacts,omitempty"`
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	suite, err := scenario.LoadFile(args[0])
	if err != nil {
		return err
	}

	resolver := scenario.NewResolver(nil, nil, logger)
	enc := json.NewEncoder(os.Stdout)

	resolved, failed := 0, 0
	ordinal := 0
	for i := range suite.Definitions {
		def := &suite.Definitions[i]
		n := def.SampleCount()
		if generateSamples > 0 {
			n = generateSamples
		}
		for s := 0; s < n; s++ {
			seed := cfg.Run.Seed + int64(ordinal)
			ordinal++
			if generateOnly != "" && def.ID != generateOnly {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

			dir := filepath.Join(generateOut, def.ID, fmt.Sprintf("s%d", s))
			inst, err := resolver.Resolve(ctx, def, dir, seed)
			if err != nil {
				failed++
				fmt.Printf("%s %s/s%d: %v\n", failStyle.Render("✗"), def.ID, s, err)
				continue
			}
			resolved++

			if generateJSON {
				if err := enc.Encode(generated{
					Definition: def.ID,
					Sample:     s,
					Seed:       seed,
					Dir:        inst.Dir,
					Question:   inst.Question,
					Expected:   inst.Expected,
					Variables:  inst.Variables,
					Artifacts:  inst.Artifacts,
				}); err != nil {
					return err
				}
				continue
			}

			fmt.Println(titleStyle.Render(fmt.Sprintf("%s sample %d (seed %d)", def.ID, s, seed)))
			fmt.Printf("  dir:      %s\n", inst.Dir)
			fmt.Printf("  question: %s\n", inst.Question)
			fmt.Printf("  expected: %s\n", inst.Expected)
			fmt.Println()
		}
	}

	if !generateJSON {
		fmt.Printf("Resolved %d instances under %s\n", resolved, generateOut)
	}
	if failed > 0 {
		return fmt.Errorf("%d instances failed to resolve", failed)
	}
	return nil
}

func init() {
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "gauntlet-out", "Output directory for artifacts")
	generateCmd.Flags().IntVar(&generateSamples, "samples", 0, "Override the per-definition sample count")
	generateCmd.Flags().StringVar(&generateOnly, "only", "", "Generate only the named definition")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "Emit one JSON object per instance instead of text")
}
