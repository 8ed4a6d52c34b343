package graph

import (
	"sort"
	"strings"

	"gauntlet/internal/faults"
)

// Order validates component names and dependencies and returns the
// materialization order: dependencies before dependents, declaration
// order breaking ties. A cycle fails the whole plan before anything is
// materialized, naming the components involved.
func Order(comps []*Component) ([]*Component, error) {
	index := make(map[string]int, len(comps))
	for i, c := range comps {
		if !namePattern.MatchString(c.Name) {
			return nil, faults.Configf(c.Name, "component name must start with a letter and use only letters, digits, _ or - (max 50)")
		}
		if _, dup := index[c.Name]; dup {
			return nil, faults.Configf(c.Name, "component name declared twice")
		}
		index[c.Name] = i
	}

	indeg := make([]int, len(comps))
	dependents := make([][]int, len(comps))
	for i, c := range comps {
		for _, dep := range c.DependsOn {
			j, ok := index[dep]
			if !ok {
				return nil, faults.Configf(c.Name, "depends on unknown component %q", dep)
			}
			dependents[j] = append(dependents[j], i)
			indeg[i]++
		}
	}

	var ready []int
	for i := range comps {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}

	out := make([]*Component, 0, len(comps))
	done := make([]bool, len(comps))
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		out = append(out, comps[i])
		done[i] = true
		for _, k := range dependents[i] {
			indeg[k]--
			if indeg[k] == 0 {
				ready = append(ready, k)
			}
		}
		sort.Ints(ready)
	}

	if len(out) != len(comps) {
		var stuck []string
		for i, c := range comps {
			if !done[i] {
				stuck = append(stuck, c.Name)
			}
		}
		return nil, faults.Configf("components", "dependency cycle involving: %s", strings.Join(stuck, ", "))
	}
	return out, nil
}
