package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gauntlet/internal/faults"
	"gauntlet/internal/results"
	"gauntlet/internal/scenario"
	"gauntlet/internal/scoring"
)

// Options tunes one batch run.
type Options struct {
	// Workdir is the base directory for run artifacts; each run gets its
	// own subdirectory named by run id. Empty selects the system temp dir.
	Workdir string

	// Seed is the base seed. Sample N of the whole run resolves with
	// Seed+N, counting samples across definitions in declaration order.
	Seed int64

	// Concurrency bounds how many instances resolve and execute at once.
	// Values below 1 run serially.
	Concurrency int

	// KeepWork retains artifact directories of passed samples. Directories
	// of failed and errored samples are always kept for inspection.
	KeepWork bool

	// Suite is a label recorded on the run, usually the definition file
	// path.
	Suite string
}

// Runner executes suites against an agent. Instances are independent: each
// owns its pool, graph, and directory, so samples run concurrently with no
// shared mutable state beyond the read-only lexicon.
type Runner struct {
	resolver *scenario.Resolver
	agent    Agent
	opts     Options
	log      *zap.Logger
}

// New builds a runner. A nil resolver gets defaults and a nil logger is
// replaced with a no-op one.
func New(agent Agent, resolver *scenario.Resolver, opts Options, log *zap.Logger) *Runner {
	if resolver == nil {
		resolver = scenario.NewResolver(nil, nil, log)
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Workdir == "" {
		opts.Workdir = filepath.Join(os.TempDir(), "gauntlet")
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Runner{resolver: resolver, agent: agent, opts: opts, log: log}
}

type job struct {
	def     *scenario.Definition
	ordinal int
	sample  int
	seed    int64
}

// Run resolves, executes, and scores every sample of the suite. A sample
// failure of any kind becomes a verdict on its results.Sample; only context
// cancellation stops the run early, returning the samples completed so far
// together with the context's error.
func (r *Runner) Run(ctx context.Context, suite *scenario.Suite) (*results.Run, error) {
	run := &results.Run{
		ID:        uuid.NewString(),
		Agent:     r.agent.Name(),
		Suite:     r.opts.Suite,
		Seed:      r.opts.Seed,
		StartedAt: time.Now(),
	}
	root := filepath.Join(r.opts.Workdir, run.ID)

	var jobs []job
	for i := range suite.Definitions {
		def := &suite.Definitions[i]
		for s := 0; s < def.SampleCount(); s++ {
			jobs = append(jobs, job{
				def:     def,
				ordinal: len(jobs),
				sample:  s,
				seed:    r.opts.Seed + int64(len(jobs)),
			})
		}
	}

	r.log.Info("starting run",
		zap.String("run_id", run.ID),
		zap.String("agent", run.Agent),
		zap.Int("samples", len(jobs)),
		zap.Int("concurrency", r.opts.Concurrency))

	out := make([]results.Sample, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for _, j := range jobs {
		if ctx.Err() != nil {
			break
		}
		j := j
		g.Go(func() error {
			out[j.ordinal] = r.runSample(gctx, j, root)
			return nil
		})
	}
	g.Wait()

	for _, smp := range out {
		if smp.Verdict != "" {
			run.Samples = append(run.Samples, smp)
		}
	}
	run.Elapsed = time.Since(run.StartedAt)

	sum := run.Summarize()
	r.log.Info("run complete",
		zap.String("run_id", run.ID),
		zap.Int("total", sum.Total),
		zap.Int("passed", sum.Passed),
		zap.Int("failed", sum.Failed),
		zap.Int("errored", sum.Errored),
		zap.Duration("elapsed", run.Elapsed))

	return run, ctx.Err()
}

func (r *Runner) runSample(ctx context.Context, j job, root string) (smp results.Sample) {
	smp = results.Sample{Definition: j.def.ID, Sample: j.sample, Seed: j.seed}
	start := time.Now()
	defer func() { smp.Elapsed = time.Since(start) }()

	dir := filepath.Join(root, j.def.ID, fmt.Sprintf("s%d", j.sample))
	smp.Dir = dir

	if ctx.Err() != nil {
		return
	}

	inst, err := r.resolver.Resolve(ctx, j.def, dir, j.seed)
	if err != nil {
		rec := faults.RecordOf(err)
		smp.Verdict = results.VerdictError
		smp.Failure = &rec
		r.log.Warn("instance resolution failed",
			zap.String("definition", j.def.ID),
			zap.Int("sample", j.sample),
			zap.String("field", rec.Field),
			zap.String("error", rec.Message))
		return
	}
	smp.Question = inst.Question
	smp.Expected = inst.Expected

	answer, err := r.agent.Ask(ctx, inst)
	if err != nil {
		smp.Verdict = results.VerdictError
		smp.Failure = &faults.Record{
			Kind:    faults.KindAgent,
			Message: err.Error(),
			Field:   "agent",
		}
		r.log.Warn("agent failed",
			zap.String("definition", j.def.ID),
			zap.Int("sample", j.sample),
			zap.Error(err))
		return
	}
	smp.Answer = answer

	res, err := scoring.Score(scoring.Params{
		Kind:      inst.Scoring.Kind,
		Expected:  inst.Expected,
		Tolerance: inst.Scoring.Tolerance,
		Ordered:   inst.Scoring.Ordered,
	}, answer)
	if err != nil {
		rec := faults.RecordOf(err)
		smp.Verdict = results.VerdictError
		smp.Failure = &rec
		return
	}

	if res.Pass {
		smp.Verdict = results.VerdictPass
		if !r.opts.KeepWork {
			os.RemoveAll(dir)
		}
	} else {
		smp.Verdict = results.VerdictFail
		smp.Detail = res.Detail
	}
	return
}
