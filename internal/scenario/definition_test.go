package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gauntlet/internal/faults"
)

const suiteYAML = `
definitions:
  - id: depot-count
    description: Count rows in the generated ledger.
    question: "How many entries does {{semantic1:first_name}}'s ledger hold?"
    samples: 3
    scoring:
      kind: numeric
      expected: "{{csv_count:id:TARGET_FILE[ledger]}}"
    components:
      - name: ledger
        kind: csv
        target: "ledger-{{number1:100:999}}.csv"
        content:
          rows: "{{number2:4:8}}"
          columns:
            - name: id
              source: seq
            - name: city
              source: city
  - id: file-probe
    question: "Does the audit directory exist?"
    scoring:
      kind: exact
      expected: "yes"
    files:
      - "audit/"
      - "audit/{{semantic1:word}}.log"
`

func TestParseSuite(t *testing.T) {
	s, err := Parse([]byte(suiteYAML))
	require.NoError(t, err)
	require.Len(t, s.Definitions, 2)

	first := s.Definitions[0]
	assert.Equal(t, "depot-count", first.ID)
	assert.Equal(t, 3, first.SampleCount())
	require.Len(t, first.Components, 1)
	assert.Equal(t, "csv", first.Components[0].Kind)
	assert.Contains(t, first.Components[0].Content, "rows")

	second := s.Definitions[1]
	assert.Equal(t, 1, second.SampleCount())
	assert.Len(t, second.Files, 2)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(suiteYAML), 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, s.Definitions, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read suite")
}

func TestParseMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("definitions: ["))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse suite")
}

func validDefinition() Definition {
	return Definition{
		ID:       "base",
		Question: "What is stored?",
		Scoring:  Scoring{Kind: "exact", Expected: "nothing"},
	}
}

func TestDefinitionValidateRejects(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Definition)
		message string
	}{
		{"bad id", func(d *Definition) { d.ID = "has space" }, "definition id"},
		{"empty question", func(d *Definition) { d.Question = "  " }, "must not be empty"},
		{"unknown scoring kind", func(d *Definition) { d.Scoring.Kind = "fuzzy" }, "unknown scoring kind"},
		{"empty expected", func(d *Definition) { d.Scoring.Expected = "" }, "expected value"},
		{"negative tolerance", func(d *Definition) { d.Scoring.Tolerance = -1 }, "tolerance"},
		{"negative samples", func(d *Definition) { d.Samples = -2 }, "sample count"},
		{"unbalanced braces", func(d *Definition) { d.Question = "{{file_line:1" }, "parse error"},
		{"unknown function", func(d *Definition) {
			d.Components = []ComponentDef{{Name: "a", Kind: "text", Target: "a.txt"}}
			d.Scoring.Expected = "{{csv_total:id:TARGET_FILE[a]}}"
		}, "unknown template function"},
		{"undeclared target", func(d *Definition) {
			d.Question = "{{csv_count:id:TARGET_FILE[ghost]}}"
		}, "undeclared component"},
		{"dependency cycle", func(d *Definition) {
			d.Components = []ComponentDef{
				{Name: "a", Kind: "text", Target: "a.txt", DependsOn: []string{"b"}},
				{Name: "b", Kind: "text", Target: "b.txt", DependsOn: []string{"a"}},
			}
		}, "dependency cycle"},
		{"duplicate component", func(d *Definition) {
			d.Components = []ComponentDef{
				{Name: "a", Kind: "text", Target: "a.txt"},
				{Name: "a", Kind: "text", Target: "b.txt"},
			}
		}, "duplicate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			def := validDefinition()
			tc.mutate(&def)
			err := def.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestDefinitionValidateFieldAttribution(t *testing.T) {
	def := validDefinition()
	def.Question = "{{file_line:1"
	err := def.Validate()
	require.Error(t, err)
	rec := faults.RecordOf(err)
	assert.Equal(t, faults.KindParse, rec.Kind)
	assert.Equal(t, "question", rec.Field)
}

func TestSuiteValidateDuplicateIDs(t *testing.T) {
	s := &Suite{Definitions: []Definition{validDefinition(), validDefinition()}}
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate definition id")
}

func TestSuiteValidateEmpty(t *testing.T) {
	err := (&Suite{}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no definitions")
}
