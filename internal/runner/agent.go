// Package runner resolves and executes test instances in batches: each
// sample is resolved, put to an agent, and scored, with failures recorded
// per sample instead of aborting the run.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gauntlet/internal/faults"
	"gauntlet/internal/scenario"
)

// Agent is the system under test. Ask receives a fully resolved instance
// and returns the answer text to score.
type Agent interface {
	Name() string
	Ask(ctx context.Context, inst *scenario.Instance) (string, error)
}

// AgentFunc adapts a function to the Agent interface, for tests and
// embedding.
type AgentFunc func(ctx context.Context, inst *scenario.Instance) (string, error)

func (f AgentFunc) Name() string { return "func" }

func (f AgentFunc) Ask(ctx context.Context, inst *scenario.Instance) (string, error) {
	return f(ctx, inst)
}

// OracleAgent answers every question with the instance's own expected
// value. It exercises the full pipeline without an external system and
// should pass everything; use it to smoke-test suites.
type OracleAgent struct{}

func (OracleAgent) Name() string { return "oracle" }

func (OracleAgent) Ask(_ context.Context, inst *scenario.Instance) (string, error) {
	return inst.Expected, nil
}

// ScriptedAgent replays canned answers keyed by definition id.
type ScriptedAgent struct {
	Answers map[string]string
}

func (ScriptedAgent) Name() string { return "scripted" }

func (a ScriptedAgent) Ask(_ context.Context, inst *scenario.Instance) (string, error) {
	answer, ok := a.Answers[inst.Definition]
	if !ok {
		return "", fmt.Errorf("no scripted answer for definition %q", inst.Definition)
	}
	return answer, nil
}

// CommandAgent runs an external command once per instance. The question
// arrives on stdin, the instance artifact directory is the working
// directory and is also exported as GAUNTLET_DIR, and stdout (trimmed) is
// the answer.
type CommandAgent struct {
	Argv    []string
	Timeout time.Duration
	Env     []string
}

// NewCommandAgent validates the argv and builds a CommandAgent.
func NewCommandAgent(argv []string, timeout time.Duration) (*CommandAgent, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, faults.Configf("agent", "agent command must not be empty")
	}
	return &CommandAgent{Argv: argv, Timeout: timeout}, nil
}

func (a *CommandAgent) Name() string { return filepath.Base(a.Argv[0]) }

func (a *CommandAgent) Ask(ctx context.Context, inst *scenario.Instance) (string, error) {
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, a.Argv[0], a.Argv[1:]...)
	cmd.Dir = inst.Dir
	cmd.Stdin = strings.NewReader(inst.Question + "\n")
	cmd.Env = append(os.Environ(), a.Env...)
	cmd.Env = append(cmd.Env, "GAUNTLET_DIR="+inst.Dir)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("agent timed out after %s", a.Timeout)
	}
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("agent failed: %w: %s", err, msg)
		}
		return "", fmt.Errorf("agent failed: %w", err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
