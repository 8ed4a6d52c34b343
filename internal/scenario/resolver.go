package scenario

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"gauntlet/internal/artifact"
	"gauntlet/internal/expr"
	"gauntlet/internal/faults"
	"gauntlet/internal/graph"
	"gauntlet/internal/lexicon"
	"gauntlet/internal/vars"
)

// Instance is one fully resolved test case. It is immutable once returned:
// the variable map is frozen, every artifact is on disk under Dir, and
// Question and Expected contain no remaining template syntax.
type Instance struct {
	// Definition is the id of the definition this instance was drawn from.
	Definition string

	// Seed is the pool seed the instance was resolved with.
	Seed int64

	// Dir is the instance-scoped artifact directory.
	Dir string

	// Question and Expected are the evaluated templates. Expected is the
	// value scorers compare against; Scoring.Expected still holds the raw
	// template it came from.
	Question string
	Expected string

	// Scoring is copied verbatim from the definition.
	Scoring Scoring

	// Variables maps resolved variable identity to literal value.
	Variables map[string]string

	// Artifacts maps component name to materialized path.
	Artifacts map[string]string

	// Files lists the evaluated entries of the definition's literal file
	// list, relative to Dir. Entries ending in "/" are directories.
	Files []string
}

// Resolver turns definitions into instances. One resolver serves any number
// of concurrent Resolve calls: the lexicon and adapter registry it holds are
// read-only, and every instance owns its pool, graph, and directory.
type Resolver struct {
	lex *lexicon.Lexicon
	reg *artifact.Registry
	orc *graph.Orchestrator
	log *zap.Logger
}

// NewResolver builds a resolver. Nil arguments select the default lexicon,
// the default adapter registry, and a no-op logger.
func NewResolver(lex *lexicon.Lexicon, reg *artifact.Registry, log *zap.Logger) *Resolver {
	if lex == nil {
		lex = lexicon.Default()
	}
	if reg == nil {
		reg = artifact.DefaultRegistry()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		lex: lex,
		reg: reg,
		orc: graph.NewOrchestrator(reg, log),
		log: log,
	}
}

// Resolve runs the staged pipeline for one instance under dir: compile every
// template, resolve and freeze variables, materialize components in
// dependency order, create the literal file list, then evaluate question and
// expected answer. Any failure aborts only this instance; dir is left as is
// for inspection.
//
// A reference with the same identity in the question, the expected answer,
// and any component spec resolves to the same literal, because all fields
// share the single pool seeded here.
func (r *Resolver) Resolve(ctx context.Context, def *Definition, dir string, seed int64) (*Instance, error) {
	c, err := def.compile()
	if err != nil {
		return nil, err
	}

	pool := vars.NewPool(r.lex, seed)
	err = c.eachField(func(field string, t *expr.Tree) error {
		return faults.InField(field, t.ResolveVars(pool))
	})
	if err != nil {
		return nil, err
	}
	pool.Freeze()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create instance dir: %w", err)
	}

	build := graph.NewBuild(dir)
	eng := artifact.NewEngine(r.reg, dir)
	ev := expr.NewEvaluator(build, eng)
	src := artifact.NewSource(r.lex, seed)

	if err := r.orc.Materialize(ctx, build, eng, ev, src, c.comps); err != nil {
		return nil, err
	}

	files, err := createFiles(ctx, ev, dir, c.files)
	if err != nil {
		return nil, err
	}

	question, err := ev.Eval(ctx, c.question)
	if err != nil {
		return nil, faults.InField("question", err)
	}
	expected, err := ev.Eval(ctx, c.expected)
	if err != nil {
		return nil, faults.InField("scoring.expected", err)
	}

	r.log.Debug("resolved instance",
		zap.String("definition", def.ID),
		zap.Int64("seed", seed),
		zap.Int("variables", pool.Len()),
		zap.Int("components", len(c.comps)))

	return &Instance{
		Definition: def.ID,
		Seed:       seed,
		Dir:        dir,
		Question:   question,
		Expected:   expected,
		Scoring:    def.Scoring,
		Variables:  pool.Snapshot(),
		Artifacts:  build.Paths(),
		Files:      files,
	}, nil
}

// createFiles materializes the literal file list: entries ending in "/"
// become directories, everything else an empty file. A path a component
// already generated is left untouched.
func createFiles(ctx context.Context, ev *expr.Evaluator, dir string, trees []*expr.Tree) ([]string, error) {
	if len(trees) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(trees))
	for i, t := range trees {
		field := fmt.Sprintf("files[%d]", i)
		rel, err := ev.Eval(ctx, t)
		if err != nil {
			return nil, faults.InField(field, err)
		}
		isDir := strings.HasSuffix(rel, "/")
		path, err := artifact.SafeJoin(dir, strings.TrimSuffix(rel, "/"))
		if err != nil {
			return nil, faults.InField(field, err)
		}
		if isDir {
			err = os.MkdirAll(path, 0o755)
		} else if err = os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
			if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
				err = os.WriteFile(path, nil, 0o644)
			}
		}
		if err != nil {
			return nil, faults.InField(field, fmt.Errorf("create %s: %w", rel, err))
		}
		out = append(out, rel)
	}
	return out, nil
}
