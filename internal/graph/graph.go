// Package graph turns the component list of a test definition into an
// ordered materialization plan and executes it. Components declare
// dependencies by name; ordering is a topological sort with declaration
// order breaking ties, so a definition always materializes the same way.
package graph

import (
	"regexp"
	"sort"

	"gauntlet/internal/expr"
	"gauntlet/internal/faults"
)

// namePattern bounds component names: letters, digits, underscore, and
// hyphen, starting with a letter, at most 50 characters.
var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,49}$`)

// Spec is the raw component description from a test definition.
type Spec struct {
	Name      string
	Kind      string
	Target    string
	DependsOn []string
	Content   map[string]any
}

// Component is a compiled component: every templated string in its target
// and content map parsed exactly once into an expression tree.
type Component struct {
	Name      string
	Kind      string
	DependsOn []string
	Target    *expr.Tree

	content any
}

// Compile parses a component spec's templated strings. It does not
// validate names or dependencies; Order does that over the whole list.
func Compile(spec Spec) (*Component, error) {
	target, err := expr.Parse(spec.Target)
	if err != nil {
		return nil, faults.InField(spec.Name, err)
	}
	content, err := compileValue(spec.Content)
	if err != nil {
		return nil, faults.InField(spec.Name, err)
	}
	return &Component{
		Name:      spec.Name,
		Kind:      spec.Kind,
		DependsOn: spec.DependsOn,
		Target:    target,
		content:   content,
	}, nil
}

// compileValue replaces every string leaf of a content tree with its
// parsed expression tree. Maps, slices, and non-string scalars keep their
// shape.
func compileValue(v any) (any, error) {
	switch t := v.(type) {
	case string:
		return expr.Parse(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, el := range t {
			c, err := compileValue(el)
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			c, err := compileValue(el)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	default:
		return v, nil
	}
}

// Trees lists every expression tree of the component: the target first,
// then content trees in a stable walk order. Variable resolution iterates
// this, so the walk order fixes the draw order.
func (c *Component) Trees() []*expr.Tree {
	trees := []*expr.Tree{c.Target}
	return appendTrees(trees, c.content)
}

func appendTrees(trees []*expr.Tree, v any) []*expr.Tree {
	switch t := v.(type) {
	case *expr.Tree:
		return append(trees, t)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			trees = appendTrees(trees, t[k])
		}
	case []any:
		for _, el := range t {
			trees = appendTrees(trees, el)
		}
	}
	return trees
}
