// Package main: the pools command documents the built-in vocabulary.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gauntlet/internal/artifact"
	"gauntlet/internal/lexicon"
	"gauntlet/internal/scoring"
)

var poolsCmd = &cobra.Command{
	Use:   "pools",
	Short: "List semantic pools, template functions, and scoring kinds",
	Long: `Print the vocabulary available to definitions: the semantic data
types {{semanticN:type}} can draw from, the word pools, the template
functions usable in questions and expected answers, and the scoring kinds.`,
	RunE: runPools,
}

func runPools(cmd *cobra.Command, args []string) error {
	lex := lexicon.Default()

	fmt.Println(titleStyle.Render("Semantic types"))
	for _, name := range lex.SemanticTypes() {
		words, ok := lex.Semantic(name)
		if !ok {
			fmt.Printf("  %-12s %s\n", name, mutedStyle.Render("composed from other types"))
			continue
		}
		fmt.Printf("  %-12s %3d values  %s\n", name, len(words), mutedStyle.Render(preview(words)))
	}

	fmt.Println()
	fmt.Println(titleStyle.Render("Word pools"))
	for _, name := range lex.PoolNames() {
		words, _ := lex.Pool(name)
		fmt.Printf("  %-12s %3d values  %s\n", name, len(words), mutedStyle.Render(preview(words)))
	}
	fmt.Printf("  %-12s %3d values  %s\n", "(default)", len(lex.DefaultPool()), mutedStyle.Render(preview(lex.DefaultPool())))

	fmt.Println()
	fmt.Println(titleStyle.Render("Template functions"))
	fmt.Printf("  %s\n", strings.Join(artifact.Functions(), ", "))

	fmt.Println()
	fmt.Println(titleStyle.Render("Scoring kinds"))
	fmt.Printf("  %s\n", strings.Join(scoring.Kinds(), ", "))

	return nil
}

// preview shows the first few values of a pool.
func preview(words []string) string {
	const n = 4
	if len(words) <= n {
		return strings.Join(words, ", ")
	}
	return strings.Join(words[:n], ", ") + ", ..."
}
