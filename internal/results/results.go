// Package results holds the outcome records of a batch run: one Sample per
// executed test instance, grouped into a Run, persisted to SQLite and
// exportable as JSONL.
package results

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"gauntlet/internal/faults"
)

// Verdicts for one executed sample. A sample that never reached the agent
// (resolution failed) or whose agent call failed is an error, not a fail.
const (
	VerdictPass  = "pass"
	VerdictFail  = "fail"
	VerdictError = "error"
)

// Sample is the outcome of one resolved-and-scored test instance.
type Sample struct {
	Definition string         `json:"definition"`
	Sample     int            `json:"sample"`
	Seed       int64          `json:"seed"`
	Question   string         `json:"question,omitempty"`
	Expected   string         `json:"expected,omitempty"`
	Answer     string         `json:"answer,omitempty"`
	Verdict    string         `json:"verdict"`
	Detail     string         `json:"detail,omitempty"`
	Failure    *faults.Record `json:"failure,omitempty"`
	Dir        string         `json:"dir,omitempty"`
	Elapsed    time.Duration  `json:"elapsed_ns"`
}

// Run collects every sample of one batch invocation.
type Run struct {
	ID        string        `json:"id"`
	Agent     string        `json:"agent"`
	Suite     string        `json:"suite"`
	Seed      int64         `json:"seed"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Samples   []Sample      `json:"samples"`
}

// Summary aggregates verdict counts, overall and per definition.
type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Errored int

	Definitions []DefinitionSummary
}

// DefinitionSummary is the verdict breakdown for one definition id.
type DefinitionSummary struct {
	Definition string
	Total      int
	Passed     int
	Failed     int
	Errored    int
}

// PassRate returns passed/total, or 0 for an empty summary.
func (s Summary) PassRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Total)
}

// Summarize tallies the run's samples. Definitions are sorted by id.
func (r *Run) Summarize() Summary {
	sum := Summary{}
	byDef := map[string]*DefinitionSummary{}
	for _, smp := range r.Samples {
		ds := byDef[smp.Definition]
		if ds == nil {
			ds = &DefinitionSummary{Definition: smp.Definition}
			byDef[smp.Definition] = ds
		}
		sum.Total++
		ds.Total++
		switch smp.Verdict {
		case VerdictPass:
			sum.Passed++
			ds.Passed++
		case VerdictFail:
			sum.Failed++
			ds.Failed++
		default:
			sum.Errored++
			ds.Errored++
		}
	}
	for _, ds := range byDef {
		sum.Definitions = append(sum.Definitions, *ds)
	}
	sort.Slice(sum.Definitions, func(i, j int) bool {
		return sum.Definitions[i].Definition < sum.Definitions[j].Definition
	})
	return sum
}

// jsonlLine is one exported record: a sample annotated with its run.
type jsonlLine struct {
	RunID string `json:"run_id"`
	Agent string `json:"agent"`
	Sample
}

// WriteJSONL streams the run as one JSON object per sample, for piping into
// external analysis tooling.
func WriteJSONL(w io.Writer, run *Run) error {
	enc := json.NewEncoder(w)
	for i := range run.Samples {
		line := jsonlLine{RunID: run.ID, Agent: run.Agent, Sample: run.Samples[i]}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("write jsonl: %w", err)
		}
	}
	return nil
}
