package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewDefaultsToInfo(t *testing.T) {
	log, err := New("", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer log.Sync()

	if log.Core().Enabled(-1) { // -1 is debug
		t.Error("debug should be disabled by default")
	}
}

func TestNewDebugLevel(t *testing.T) {
	log, err := New("debug", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer log.Sync()

	if !log.Core().Enabled(-1) {
		t.Error("debug should be enabled")
	}
}

func TestNewBadLevel(t *testing.T) {
	if _, err := New("loud", ""); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewTeesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gauntlet.log")
	log, err := New("info", path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	log.Info("run complete")
	log.Sync()

	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(body), "run complete") {
		t.Errorf("log file missing entry: %q", body)
	}
}
