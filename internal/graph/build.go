package graph

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"gauntlet/internal/artifact"
	"gauntlet/internal/expr"
	"gauntlet/internal/faults"
)

// Build records the artifacts materialized for one instance and resolves
// TARGET_FILE references for the evaluator. It fills as the orchestrator
// works, so a component's content can query artifacts of its
// dependencies mid-build.
type Build struct {
	dir string

	mu    sync.RWMutex
	paths map[string]string
	order []string
}

// NewBuild creates an empty build rooted at the instance directory.
func NewBuild(dir string) *Build {
	return &Build{dir: dir, paths: make(map[string]string)}
}

// Dir returns the instance directory.
func (b *Build) Dir() string { return b.dir }

// TargetPath resolves a component name to its materialized path.
func (b *Build) TargetPath(name string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.paths[name]
	return p, ok
}

// Paths returns a copy of the component-to-path map.
func (b *Build) Paths() map[string]string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]string, len(b.paths))
	for k, v := range b.paths {
		out[k] = v
	}
	return out
}

// Names lists materialized components in build order.
func (b *Build) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string(nil), b.order...)
}

func (b *Build) put(name, path string) {
	b.mu.Lock()
	b.paths[name] = path
	b.order = append(b.order, name)
	b.mu.Unlock()
}

// Orchestrator materializes component plans with the adapters of a
// registry.
type Orchestrator struct {
	reg *artifact.Registry
	log *zap.Logger
}

// NewOrchestrator builds an orchestrator. A nil logger disables logging.
func NewOrchestrator(reg *artifact.Registry, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{reg: reg, log: log}
}

// Materialize orders the components and generates each one in turn.
// Variables must already be resolved in every tree. A component's content
// is evaluated only after its dependencies exist, so template functions
// in it can query their artifacts. Any failure aborts the build; the
// returned error names the component at fault.
func (o *Orchestrator) Materialize(ctx context.Context, build *Build, eng *artifact.Engine, ev *expr.Evaluator, src *artifact.Source, comps []*Component) error {
	ordered, err := Order(comps)
	if err != nil {
		return err
	}

	for _, c := range ordered {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := o.materialize(ctx, build, eng, ev, src, c); err != nil {
			return faults.InField(c.Name, err)
		}
	}
	return nil
}

func (o *Orchestrator) materialize(ctx context.Context, build *Build, eng *artifact.Engine, ev *expr.Evaluator, src *artifact.Source, c *Component) error {
	if !o.reg.Has(c.Kind) {
		return faults.Configf(c.Name, "unknown artifact kind %q", c.Kind)
	}

	target, err := ev.Eval(ctx, c.Target)
	if err != nil {
		return err
	}
	path, err := artifact.SafeJoin(build.Dir(), target)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return faults.Evalf("", path, "creating artifact directory: %v", err)
	}

	literal, err := evalValue(ctx, ev, c.content)
	if err != nil {
		return err
	}
	m, _ := literal.(map[string]any)
	if m == nil {
		m = map[string]any{}
	}
	spec, err := artifact.ParseContentSpec(c.Kind, c.Name, m)
	if err != nil {
		return err
	}

	adapter, err := o.reg.Get(c.Kind)
	if err != nil {
		return faults.Configf(c.Name, "unknown artifact kind %q", c.Kind)
	}
	h, err := adapter.Generate(ctx, path, spec, src.Derive(c.Name))
	if err != nil {
		return err
	}
	h.Component = c.Name
	eng.Track(h)
	build.put(c.Name, path)

	o.log.Debug("materialized component",
		zap.String("component", c.Name),
		zap.String("kind", c.Kind),
		zap.String("path", path))
	return nil
}

// evalValue renders a compiled content tree to fully literal values.
func evalValue(ctx context.Context, ev *expr.Evaluator, v any) (any, error) {
	switch t := v.(type) {
	case *expr.Tree:
		return ev.Eval(ctx, t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, el := range t {
			lit, err := evalValue(ctx, ev, el)
			if err != nil {
				return nil, err
			}
			out[k] = lit
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			lit, err := evalValue(ctx, ev, el)
			if err != nil {
				return nil, err
			}
			out[i] = lit
		}
		return out, nil
	default:
		return v, nil
	}
}
