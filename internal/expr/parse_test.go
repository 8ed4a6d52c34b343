package expr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gauntlet/internal/faults"
)

func TestParseLiteral(t *testing.T) {
	tree, err := Parse("plain text, no references")
	require.NoError(t, err)
	assert.True(t, tree.IsLiteral())
	assert.Empty(t, tree.Refs())
	assert.False(t, tree.HasCalls())
}

func TestParseVariableForms(t *testing.T) {
	cases := []struct {
		name string
		src  string
		key  string
	}{
		{"semantic", "{{semantic1:first_name}}", "semantic:1:first_name"},
		{"number", "{{number2:10:500}}", "number:2:10:500"},
		{"number with unit", "{{number1:1000:9000:500}}", "number:1:1000:9000:500"},
		{"number unit none", "{{number1:1000:9000:none}}", "number:1:1000:9000"},
		{"entity pool", "{{entity1:planets}}", "entity:1:planets"},
		{"entity default", "{{entity3}}", "entity:3"},
		{"padded", "{{ semantic1 : city }}", "semantic:1:city"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tree, err := Parse(tc.src)
			require.NoError(t, err)
			refs := tree.Refs()
			require.Len(t, refs, 1)
			assert.Equal(t, tc.key, refs[0].Key())
		})
	}
}

func TestParseRefsInSourceOrder(t *testing.T) {
	tree, err := Parse("{{number2:1:5}} and {{semantic1:city}} near {{number2:1:5}}")
	require.NoError(t, err)

	refs := tree.Refs()
	require.Len(t, refs, 3)
	assert.Equal(t, "number:2:1:5", refs[0].Key())
	assert.Equal(t, "semantic:1:city", refs[1].Key())
	assert.Equal(t, "number:2:1:5", refs[2].Key())
}

func TestParseNestedCall(t *testing.T) {
	tree, err := Parse("{{file_line:{{number1:1:5}}:TARGET_FILE[notes]}}")
	require.NoError(t, err)

	assert.True(t, tree.HasCalls())
	assert.Equal(t, []string{"file_line"}, tree.CallNames())
	assert.Equal(t, []string{"notes"}, tree.TargetNames())

	refs := tree.Refs()
	require.Len(t, refs, 1)
	assert.Equal(t, "number:1:1:5", refs[0].Key())
}

func TestParseColonSplitRespectsNesting(t *testing.T) {
	tree, err := Parse("{{csv_cell:price:{{number1:1:3}}:TARGET_FILE[data]}}")
	require.NoError(t, err)

	var call *Node
	for i := range tree.nodes {
		if tree.nodes[i].Kind == NodeCall {
			call = &tree.nodes[i]
		}
	}
	require.NotNil(t, call)
	assert.Equal(t, "csv_cell", call.Name)
	assert.Len(t, call.Args, 3)
}

func TestParseMixedArgument(t *testing.T) {
	tree, err := Parse("{{file_word:1:TARGET_FILE[a]}} count {{number1:2:2}}")
	require.NoError(t, err)
	assert.True(t, tree.HasCalls())
	require.Len(t, tree.Refs(), 1)
}

func TestParseErrors(t *testing.T) {
	parseCases := []struct {
		name string
		src  string
	}{
		{"unbalanced open", "start {{csv_count:id:TARGET_FILE[a]"},
		{"stray close", "start }} end"},
		{"stray close before open", "a }} b {{number1:1:2}}"},
		{"empty expression", "{{}}"},
		{"missing index", "{{entity:planets}}"},
		{"missing index semantic", "{{semantic:city}}"},
		{"bare target token", "{{file_linecount:TARGET_FILE}}"},
		{"empty target name", "{{file_linecount:TARGET_FILE[]}}"},
		{"unterminated target", "{{file_linecount:TARGET_FILE[data}}"},
		{"uppercase function", "{{CSV_sum:price:TARGET_FILE[a]}}"},
		{"dynamic variable params", "{{semantic1:{{semantic2:word}}}}"},
		{"head not literal", "{{{{number1:1:2}}:x}}"},
	}
	for _, tc := range parseCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src)
			require.Error(t, err)
			var pe *faults.ParseError
			assert.True(t, errors.As(err, &pe), "want ParseError, got %T: %v", err, err)
		})
	}

	configCases := []struct {
		name string
		src  string
	}{
		{"inverted bounds", "{{number1:9:1}}"},
		{"bad unit", "{{number1:1:9:123}}"},
		{"semantic arity", "{{semantic1:city:extra}}"},
	}
	for _, tc := range configCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src)
			require.Error(t, err)
			var ce *faults.ConfigError
			assert.True(t, errors.As(err, &ce), "want ConfigError, got %T: %v", err, err)
		})
	}
}

func TestParseUnknownHeadBecomesCall(t *testing.T) {
	// Unknown function names parse fine and are rejected by the executor,
	// so static validation can list them without an artifact in hand.
	tree, err := Parse("{{gizmo1:x}}")
	require.NoError(t, err)
	assert.Equal(t, []string{"gizmo1"}, tree.CallNames())
	assert.Empty(t, tree.Refs())
}

func TestResolveVarsCollapsesDuplicates(t *testing.T) {
	tree, err := Parse("Hello {{semantic1:first_name}}, yes, {{semantic1:first_name}}.")
	require.NoError(t, err)

	pool := newTestPool(t, 42)
	require.NoError(t, tree.ResolveVars(pool))
	assert.True(t, tree.IsLiteral())

	out, err := NewEvaluator(nil, nil).Eval(context.Background(), tree)
	require.NoError(t, err)

	snap := pool.Snapshot()
	require.Len(t, snap, 1)
	name := snap["semantic:1:first_name"]
	assert.Equal(t, "Hello "+name+", yes, "+name+".", out)
}

func TestResolveVarsReportsUnknownPool(t *testing.T) {
	tree, err := Parse("{{entity1:volcanoes}}")
	require.NoError(t, err)

	err = tree.ResolveVars(newTestPool(t, 1))
	require.Error(t, err)
	var ce *faults.ConfigError
	assert.True(t, errors.As(err, &ce))
	assert.Contains(t, err.Error(), "volcanoes")
}
