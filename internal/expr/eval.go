package expr

import (
	"context"
	"strings"

	"gauntlet/internal/faults"
)

// TargetLookup maps component names to materialized artifact paths.
type TargetLookup interface {
	TargetPath(name string) (string, bool)
}

// CallExecutor runs one fully literal template function call. Arguments
// arrive with nested expressions already evaluated and TARGET_FILE tokens
// already replaced by paths.
type CallExecutor interface {
	ExecuteCall(ctx context.Context, name string, args []string) (string, error)
}

// Evaluator performs phase-two evaluation: function calls run
// innermost-first, each one seeing only literal arguments. Variables must
// already be resolved; hitting one is an error.
type Evaluator struct {
	targets TargetLookup
	exec    CallExecutor
}

// NewEvaluator builds an evaluator over the given target map and function
// executor. Either may be nil for trees that do not need it.
func NewEvaluator(targets TargetLookup, exec CallExecutor) *Evaluator {
	return &Evaluator{targets: targets, exec: exec}
}

// Eval renders the tree to its final text.
func (ev *Evaluator) Eval(ctx context.Context, t *Tree) (string, error) {
	return ev.evalPieces(ctx, t, t.root)
}

func (ev *Evaluator) evalPieces(ctx context.Context, t *Tree, pieces []int) (string, error) {
	var b strings.Builder
	for _, idx := range pieces {
		n := &t.nodes[idx]
		switch n.Kind {
		case NodeLiteral:
			b.WriteString(n.Text)
		case NodeVar:
			return "", faults.Evalf(n.Text, "", "variable was not resolved before evaluation")
		case NodeTarget:
			if ev.targets == nil {
				return "", faults.Evalf(n.Text, n.Name, "no artifacts available here")
			}
			path, ok := ev.targets.TargetPath(n.Name)
			if !ok {
				return "", faults.Evalf(n.Text, n.Name, "no component with this name was materialized")
			}
			b.WriteString(path)
		case NodeCall:
			v, err := ev.evalCall(ctx, t, n)
			if err != nil {
				return "", err
			}
			b.WriteString(v)
		}
	}
	return b.String(), nil
}

func (ev *Evaluator) evalCall(ctx context.Context, t *Tree, n *Node) (string, error) {
	args := make([]string, 0, len(n.Args))
	for _, pieces := range n.Args {
		v, err := ev.evalPieces(ctx, t, pieces)
		if err != nil {
			return "", err
		}
		args = append(args, v)
	}
	if ev.exec == nil {
		return "", faults.Evalf(n.Text, n.Name, "no function executor available here")
	}
	return ev.exec.ExecuteCall(ctx, n.Name, args)
}
