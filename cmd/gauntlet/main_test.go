package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gauntlet/internal/config"
)

const testSuite = `
definitions:
  - id: notes-count
    question: "How many lines does {{TARGET_FILE[notes]}} hold?"
    scoring:
      kind: numeric
      expected: "{{file_linecount:TARGET_FILE[notes]}}"
    components:
      - name: notes
        kind: text
        target: "notes.txt"
        content:
          lines: "{{number1:3:7}}"
`

func writeSuite(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suite.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunValidateReportsDefinitions(t *testing.T) {
	path := writeSuite(t, testSuite)

	output := captureOutput(t, func() {
		if err := runValidate(&cobra.Command{}, []string{path}); err != nil {
			t.Errorf("runValidate returned error: %v", err)
		}
	})

	if !strings.Contains(output, path) || !strings.Contains(output, "1 definitions") {
		t.Fatalf("expected validation report for %s, got: %s", path, output)
	}
	if !strings.Contains(output, "notes-count") {
		t.Fatalf("expected definition listing, got: %s", output)
	}
}

func TestRunValidateBadFile(t *testing.T) {
	path := writeSuite(t, "definitions:\n  - id: bad id\n    question: q\n")

	var err error
	output := captureOutput(t, func() {
		err = runValidate(&cobra.Command{}, []string{path})
	})

	if err == nil || !strings.Contains(err.Error(), "1 of 1 files failed") {
		t.Fatalf("expected validation failure, got err=%v output=%s", err, output)
	}
}

func TestRunPoolsListsVocabulary(t *testing.T) {
	output := captureOutput(t, func() {
		if err := runPools(&cobra.Command{}, nil); err != nil {
			t.Errorf("runPools returned error: %v", err)
		}
	})

	for _, want := range []string{"Semantic types", "Template functions", "csv_sum", "sqlite_query", "Scoring kinds", "numeric"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected pools output to mention %q, got: %s", want, output)
		}
	}
}

func TestRunGenerateWritesArtifacts(t *testing.T) {
	cfg = config.DefaultConfig()
	logger = zap.NewNop()
	generateOut = t.TempDir()
	generateSamples = 0
	generateOnly = ""
	generateJSON = false
	path := writeSuite(t, testSuite)

	output := captureOutput(t, func() {
		if err := runGenerate(&cobra.Command{}, []string{path}); err != nil {
			t.Errorf("runGenerate returned error: %v", err)
		}
	})

	if !strings.Contains(output, "question:") || !strings.Contains(output, "Resolved 1 instances") {
		t.Fatalf("expected QA output, got: %s", output)
	}
	artifact := filepath.Join(generateOut, "notes-count", "s0", "notes.txt")
	if _, err := os.Stat(artifact); err != nil {
		t.Fatalf("expected generated artifact %s: %v", artifact, err)
	}
}

func TestRunGenerateJSON(t *testing.T) {
	cfg = config.DefaultConfig()
	logger = zap.NewNop()
	generateOut = t.TempDir()
	generateSamples = 0
	generateOnly = ""
	generateJSON = true
	defer func() { generateJSON = false }()
	path := writeSuite(t, testSuite)

	output := captureOutput(t, func() {
		if err := runGenerate(&cobra.Command{}, []string{path}); err != nil {
			t.Errorf("runGenerate returned error: %v", err)
		}
	})

	var inst generated
	line := strings.SplitN(strings.TrimSpace(output), "\n", 2)[0]
	if err := json.Unmarshal([]byte(line), &inst); err != nil {
		t.Fatalf("expected JSON instance, got %q: %v", line, err)
	}
	if inst.Definition != "notes-count" {
		t.Fatalf("expected definition notes-count, got %q", inst.Definition)
	}
	n, err := strconv.Atoi(inst.Expected)
	if err != nil || n < 3 || n > 7 {
		t.Fatalf("expected numeric answer in [3,7], got %q", inst.Expected)
	}
}

func TestBuildAgentSelection(t *testing.T) {
	cfg = config.DefaultConfig()
	defer func() { runOracle = false; runAgent = "" }()

	runOracle = true
	agent, err := buildAgent()
	if err != nil || agent.Name() != "oracle" {
		t.Fatalf("expected oracle agent, got %v, %v", agent, err)
	}

	runOracle = false
	runAgent = "/bin/echo hello"
	agent, err = buildAgent()
	if err != nil || agent.Name() != "echo" {
		t.Fatalf("expected echo agent, got %v, %v", agent, err)
	}

	runAgent = ""
	cfg.Agent.Command = nil
	if _, err := buildAgent(); err == nil || !strings.Contains(err.Error(), "no agent configured") {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	origErr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, rOut)
		_, _ = io.Copy(&buf, rErr)
		done <- buf.String()
	}()

	fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = origOut
	os.Stderr = origErr
	return <-done
}
