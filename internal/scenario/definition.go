// Package scenario loads test definitions and resolves each one into an
// immutable test instance: variables drawn once and frozen, components
// materialized in dependency order, question and expected answer fully
// evaluated against the generated artifacts.
package scenario

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"gauntlet/internal/artifact"
	"gauntlet/internal/expr"
	"gauntlet/internal/faults"
	"gauntlet/internal/graph"
	"gauntlet/internal/scoring"
)

var idRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

// Suite is one definition file: the set of test definitions loaded and run
// together.
type Suite struct {
	Definitions []Definition `yaml:"definitions"`
}

// Definition declares one parameterized test: a templated question, the
// scoring rule with its templated expected answer, and the component graph
// to materialize before either template can be evaluated.
type Definition struct {
	ID          string         `yaml:"id"`
	Description string         `yaml:"description,omitempty"`
	Question    string         `yaml:"question"`
	Scoring     Scoring        `yaml:"scoring"`
	Components  []ComponentDef `yaml:"components,omitempty"`
	Files       []string       `yaml:"files,omitempty"`
	Samples     int            `yaml:"samples,omitempty"`
}

// SampleCount returns how many instances to resolve for this definition.
// Unset means one.
func (d *Definition) SampleCount() int {
	if d.Samples < 1 {
		return 1
	}
	return d.Samples
}

// Scoring selects the comparison applied to the agent's answer. Expected is
// a template; Tolerance applies to numeric scoring and Ordered to list
// scoring.
type Scoring struct {
	Kind      string  `yaml:"kind"`
	Expected  string  `yaml:"expected"`
	Tolerance float64 `yaml:"tolerance,omitempty"`
	Ordered   bool    `yaml:"ordered,omitempty"`
}

// ComponentDef is the declarative form of one component in a definition
// file. Target and the string leaves of Content are templates.
type ComponentDef struct {
	Name      string         `yaml:"name"`
	Kind      string         `yaml:"kind"`
	Target    string         `yaml:"target"`
	DependsOn []string       `yaml:"depends_on,omitempty"`
	Content   map[string]any `yaml:"content,omitempty"`
}

// LoadFile reads and validates a suite from a YAML file.
func LoadFile(path string) (*Suite, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite: %w", err)
	}
	s, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a suite from YAML bytes.
func Parse(raw []byte) (*Suite, error) {
	var s Suite
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse suite: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every definition and rejects duplicate ids.
func (s *Suite) Validate() error {
	if len(s.Definitions) == 0 {
		return faults.Configf("suite", "no definitions")
	}
	seen := make(map[string]int, len(s.Definitions))
	for i := range s.Definitions {
		d := &s.Definitions[i]
		if err := d.Validate(); err != nil {
			return fmt.Errorf("definition %s: %w", d.label(i), err)
		}
		if j, dup := seen[d.ID]; dup {
			return faults.Configf("suite", "duplicate definition id %q (positions %d and %d)", d.ID, j, i)
		}
		seen[d.ID] = i
	}
	return nil
}

func (d *Definition) label(i int) string {
	if d.ID != "" {
		return d.ID
	}
	return fmt.Sprintf("#%d", i)
}

// Validate statically checks one definition: field shape, template syntax,
// known template functions, declared TARGET_FILE references, and an acyclic
// component graph. It performs no generation and draws no variables.
func (d *Definition) Validate() error {
	if !idRe.MatchString(d.ID) {
		return faults.Configf("id", "definition id %q must match %s", d.ID, idRe)
	}
	if strings.TrimSpace(d.Question) == "" {
		return faults.Configf("question", "must not be empty")
	}
	if !scoring.Known(d.Scoring.Kind) {
		return faults.Configf("scoring", "unknown scoring kind %q (known: %s)",
			d.Scoring.Kind, strings.Join(scoring.Kinds(), ", "))
	}
	if strings.TrimSpace(d.Scoring.Expected) == "" {
		return faults.Configf("scoring", "expected value must not be empty")
	}
	if d.Scoring.Tolerance < 0 {
		return faults.Configf("scoring", "tolerance must not be negative")
	}
	if d.Samples < 0 {
		return faults.Configf("samples", "sample count must not be negative")
	}
	c, err := d.compile()
	if err != nil {
		return err
	}
	if err := c.checkRefs(); err != nil {
		return err
	}
	_, err = graph.Order(c.comps)
	return err
}

// compiled holds one definition's parsed trees. Trees are mutated during
// variable resolution, so every resolution pass compiles afresh.
type compiled struct {
	question *expr.Tree
	expected *expr.Tree
	files    []*expr.Tree
	comps    []*graph.Component
}

func (d *Definition) compile() (*compiled, error) {
	c := &compiled{}
	var err error
	if c.question, err = expr.Parse(d.Question); err != nil {
		return nil, faults.InField("question", err)
	}
	if c.expected, err = expr.Parse(d.Scoring.Expected); err != nil {
		return nil, faults.InField("scoring.expected", err)
	}
	c.files = make([]*expr.Tree, len(d.Files))
	for i, f := range d.Files {
		if c.files[i], err = expr.Parse(f); err != nil {
			return nil, faults.InField(fmt.Sprintf("files[%d]", i), err)
		}
	}
	c.comps = make([]*graph.Component, len(d.Components))
	for i, cd := range d.Components {
		comp, err := graph.Compile(graph.Spec{
			Name:      cd.Name,
			Kind:      cd.Kind,
			Target:    cd.Target,
			DependsOn: cd.DependsOn,
			Content:   cd.Content,
		})
		if err != nil {
			return nil, err
		}
		c.comps[i] = comp
	}
	return c, nil
}

// eachField visits every tree in the definition's documented resolution
// order: question, expected answer, file list entries, then each component's
// trees in declaration order.
func (c *compiled) eachField(fn func(field string, t *expr.Tree) error) error {
	if err := fn("question", c.question); err != nil {
		return err
	}
	if err := fn("scoring.expected", c.expected); err != nil {
		return err
	}
	for i, t := range c.files {
		if err := fn(fmt.Sprintf("files[%d]", i), t); err != nil {
			return err
		}
	}
	for _, comp := range c.comps {
		for _, t := range comp.Trees() {
			if err := fn(comp.Name, t); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *compiled) checkRefs() error {
	declared := make(map[string]bool, len(c.comps))
	for _, comp := range c.comps {
		declared[comp.Name] = true
	}
	return c.eachField(func(field string, t *expr.Tree) error {
		for _, name := range t.CallNames() {
			if !artifact.KnownFunction(name) {
				return faults.InField(field, faults.Configf(name, "unknown template function"))
			}
		}
		for _, name := range t.TargetNames() {
			if !declared[name] {
				return faults.InField(field, faults.Configf(name, "TARGET_FILE references an undeclared component"))
			}
		}
		return nil
	})
}
