package expr

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gauntlet/internal/lexicon"
	"gauntlet/internal/vars"
)

func newTestPool(t *testing.T, seed int64) *vars.Pool {
	t.Helper()
	return vars.NewPool(lexicon.Default(), seed)
}

type stubTargets map[string]string

func (s stubTargets) TargetPath(name string) (string, bool) {
	v, ok := s[name]
	return v, ok
}

// stubExec records call order and answers from a fixed table keyed by
// "name:arg1,arg2".
type stubExec struct {
	calls []string
	out   map[string]string
}

func (s *stubExec) ExecuteCall(_ context.Context, name string, args []string) (string, error) {
	key := name + ":" + strings.Join(args, ",")
	s.calls = append(s.calls, key)
	v, ok := s.out[key]
	if !ok {
		return "", fmt.Errorf("unexpected call %s", key)
	}
	return v, nil
}

func TestEvalInnermostFirst(t *testing.T) {
	tree, err := Parse("{{file_line:{{csv_count:id:TARGET_FILE[roster]}}:TARGET_FILE[notes]}}")
	require.NoError(t, err)

	exec := &stubExec{out: map[string]string{
		"csv_count:id,/w/roster.csv": "3",
		"file_line:3,/w/notes.txt":   "third line",
	}}
	ev := NewEvaluator(stubTargets{"roster": "/w/roster.csv", "notes": "/w/notes.txt"}, exec)

	out, err := ev.Eval(context.Background(), tree)
	require.NoError(t, err)
	assert.Equal(t, "third line", out)
	require.Len(t, exec.calls, 2)
	assert.Equal(t, "csv_count:id,/w/roster.csv", exec.calls[0])
	assert.Equal(t, "file_line:3,/w/notes.txt", exec.calls[1])
}

func TestEvalMixedArgumentConcatenates(t *testing.T) {
	tree, err := Parse("{{file_line:{{number1:2:2}}:TARGET_FILE[a]}}")
	require.NoError(t, err)
	require.NoError(t, tree.ResolveVars(newTestPool(t, 1)))

	exec := &stubExec{out: map[string]string{"file_line:2,/w/a.txt": "line two"}}
	out, err := NewEvaluator(stubTargets{"a": "/w/a.txt"}, exec).Eval(context.Background(), tree)
	require.NoError(t, err)
	assert.Equal(t, "line two", out)
}

func TestEvalSurroundingText(t *testing.T) {
	tree, err := Parse("The count is {{csv_count:id:TARGET_FILE[d]}} rows.")
	require.NoError(t, err)

	exec := &stubExec{out: map[string]string{"csv_count:id,/w/d.csv": "7"}}
	out, err := NewEvaluator(stubTargets{"d": "/w/d.csv"}, exec).Eval(context.Background(), tree)
	require.NoError(t, err)
	assert.Equal(t, "The count is 7 rows.", out)
}

func TestEvalUnknownTarget(t *testing.T) {
	tree, err := Parse("{{csv_count:id:TARGET_FILE[ghost]}}")
	require.NoError(t, err)

	_, err = NewEvaluator(stubTargets{}, &stubExec{}).Eval(context.Background(), tree)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestEvalUnresolvedVariable(t *testing.T) {
	tree, err := Parse("{{number1:1:9}}")
	require.NoError(t, err)

	_, err = NewEvaluator(nil, nil).Eval(context.Background(), tree)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not resolved")
}

func TestEvalLiteralTreeNeedsNothing(t *testing.T) {
	tree, err := Parse("nothing to do here")
	require.NoError(t, err)

	out, err := NewEvaluator(nil, nil).Eval(context.Background(), tree)
	require.NoError(t, err)
	assert.Equal(t, "nothing to do here", out)
}
