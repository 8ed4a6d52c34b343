// Package expr parses and evaluates the {{...}} template language.
//
// Parsing happens once per string. The result is a tree of nodes held in a
// flat arena with index-based child references. Evaluation is two-phased:
// ResolveVars substitutes variable references bottom-up from a pool, and an
// Evaluator later executes function calls innermost-first against
// materialized artifacts. No string is ever re-parsed between phases.
package expr

import "gauntlet/internal/vars"

// NodeKind discriminates arena node types.
type NodeKind uint8

const (
	// NodeLiteral is plain text, including resolved variable values.
	NodeLiteral NodeKind = iota

	// NodeVar is an unresolved variable reference.
	NodeVar

	// NodeCall is a template function call awaiting artifact queries.
	NodeCall

	// NodeTarget is a TARGET_FILE[name] token inside a call argument.
	NodeTarget
)

// Node is one arena slot. Children are referenced by arena index, never by
// pointer, so a Tree can be copied or inspected without chasing cycles.
type Node struct {
	Kind NodeKind

	// Text holds literal content for NodeLiteral, and the original source
	// span for the other kinds, which error messages quote.
	Text string

	// Ref is set for NodeVar.
	Ref vars.Ref

	// Name is the function name for NodeCall and the component name for
	// NodeTarget.
	Name string

	// Args holds, for NodeCall, one ordered piece list per colon-delimited
	// argument. Each piece is an arena index.
	Args [][]int
}

// Tree is a parsed template string. The zero value is not usable; build
// one with Parse.
type Tree struct {
	src   string
	nodes []Node
	root  []int
}

// Source returns the original template string.
func (t *Tree) Source() string { return t.src }

func (t *Tree) add(n Node) int {
	t.nodes = append(t.nodes, n)
	return len(t.nodes) - 1
}

// Refs lists every variable reference in source order, duplicates
// included. Arena order matches left-to-right source order for leaves.
func (t *Tree) Refs() []vars.Ref {
	var out []vars.Ref
	for i := range t.nodes {
		if t.nodes[i].Kind == NodeVar {
			out = append(out, t.nodes[i].Ref)
		}
	}
	return out
}

// TargetNames lists every TARGET_FILE component name in source order,
// duplicates included.
func (t *Tree) TargetNames() []string {
	var out []string
	for i := range t.nodes {
		if t.nodes[i].Kind == NodeTarget {
			out = append(out, t.nodes[i].Name)
		}
	}
	return out
}

// CallNames lists every function call name in arena order.
func (t *Tree) CallNames() []string {
	var out []string
	for i := range t.nodes {
		if t.nodes[i].Kind == NodeCall {
			out = append(out, t.nodes[i].Name)
		}
	}
	return out
}

// HasCalls reports whether any function call remains in the tree.
func (t *Tree) HasCalls() bool {
	for i := range t.nodes {
		if t.nodes[i].Kind == NodeCall {
			return true
		}
	}
	return false
}

// IsLiteral reports whether the tree is plain text with nothing left to
// resolve or evaluate.
func (t *Tree) IsLiteral() bool {
	for i := range t.nodes {
		if t.nodes[i].Kind != NodeLiteral {
			return false
		}
	}
	return true
}

// ResolveVars replaces every variable node with its resolved value from
// the pool. Identical identities collapse to identical values. This is
// the only mutation a tree undergoes between parsing and evaluation.
func (t *Tree) ResolveVars(p *vars.Pool) error {
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.Kind != NodeVar {
			continue
		}
		v, err := p.Resolve(n.Ref)
		if err != nil {
			return err
		}
		n.Kind = NodeLiteral
		n.Text = v
	}
	return nil
}
