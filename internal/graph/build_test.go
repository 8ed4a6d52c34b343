package graph

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gauntlet/internal/artifact"
	"gauntlet/internal/expr"
	"gauntlet/internal/faults"
	"gauntlet/internal/lexicon"
)

type harness struct {
	build *Build
	eng   *artifact.Engine
	ev    *expr.Evaluator
	src   *artifact.Source
	orc   *Orchestrator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	build := NewBuild(dir)
	reg := artifact.DefaultRegistry()
	eng := artifact.NewEngine(reg, dir)
	return &harness{
		build: build,
		eng:   eng,
		ev:    expr.NewEvaluator(build, eng),
		src:   artifact.NewSource(lexicon.Default(), 42),
		orc:   NewOrchestrator(reg, nil),
	}
}

func (h *harness) materialize(t *testing.T, comps []*Component) error {
	t.Helper()
	return h.orc.Materialize(context.Background(), h.build, h.eng, h.ev, h.src, comps)
}

func ledgerSpec() Spec {
	return Spec{
		Name:   "ledger",
		Kind:   "csv",
		Target: "ledger.csv",
		Content: map[string]any{
			"columns": []any{
				map[string]any{"name": "id", "source": "seq"},
				map[string]any{"name": "amount", "source": "lit:0"},
			},
			"rows_data": []any{
				[]any{"1", "10"},
				[]any{"2", "20"},
				[]any{"3", "30"},
			},
		},
	}
}

func TestMaterializeQueriesDependency(t *testing.T) {
	h := newHarness(t)
	comps := mustCompile(t,
		Spec{
			Name:      "report",
			Kind:      "text",
			Target:    "notes/report.txt",
			DependsOn: []string{"ledger"},
			Content:   map[string]any{"text": "total={{csv_sum:amount:TARGET_FILE[ledger]}}"},
		},
		Spec{
			Name:      "digest",
			Kind:      "text",
			Target:    "digest.txt",
			DependsOn: []string{"ledger"},
			Content:   map[string]any{"lines": "{{csv_count:id:TARGET_FILE[ledger]}}"},
		},
		ledgerSpec(),
	)

	require.NoError(t, h.materialize(t, comps))
	assert.Equal(t, []string{"ledger", "report", "digest"}, h.build.Names())

	path, ok := h.build.TargetPath("report")
	require.True(t, ok)
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "total=60\n", string(body))

	got, err := h.eng.ExecuteCall(context.Background(), "file_linecount", []string{"digest.txt"})
	require.NoError(t, err)
	assert.Equal(t, "3", got)
}

func TestMaterializeUnknownTargetReference(t *testing.T) {
	h := newHarness(t)
	comps := mustCompile(t, Spec{
		Name:    "probe",
		Kind:    "text",
		Target:  "probe.txt",
		Content: map[string]any{"text": "{{csv_count:id:TARGET_FILE[ghost]}}"},
	})

	err := h.materialize(t, comps)
	require.Error(t, err)
	rec := faults.RecordOf(err)
	assert.Equal(t, faults.KindEval, rec.Kind)
	assert.Equal(t, "probe", rec.Field)
	assert.Contains(t, rec.Message, "ghost")
}

func TestMaterializeCycleTouchesNothing(t *testing.T) {
	h := newHarness(t)
	comps := mustCompile(t,
		Spec{Name: "a", Kind: "text", Target: "a.txt", DependsOn: []string{"b"}},
		Spec{Name: "b", Kind: "text", Target: "b.txt", DependsOn: []string{"a"}},
	)

	err := h.materialize(t, comps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dependency cycle")

	entries, err := os.ReadDir(h.build.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, h.build.Names())
}

func TestMaterializeRejects(t *testing.T) {
	cases := []struct {
		name string
		spec Spec
		kind faults.Kind
	}{
		{
			"unknown artifact kind",
			Spec{Name: "x", Kind: "parquet", Target: "x.pq"},
			faults.KindConfig,
		},
		{
			"target escapes instance dir",
			Spec{Name: "x", Kind: "text", Target: "../outside.txt"},
			faults.KindConfig,
		},
		{
			"content fails validation",
			Spec{Name: "x", Kind: "text", Target: "x.txt", Content: map[string]any{"rows": "4"}},
			faults.KindConfig,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			err := h.materialize(t, mustCompile(t, tc.spec))
			require.Error(t, err)
			rec := faults.RecordOf(err)
			assert.Equal(t, tc.kind, rec.Kind)
			assert.Equal(t, "x", rec.Field)
		})
	}
}

func TestMaterializeCancelledContext(t *testing.T) {
	h := newHarness(t)
	comps := mustCompile(t, ledgerSpec())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := h.orc.Materialize(ctx, h.build, h.eng, h.ev, h.src, comps)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.build.Names())
}
