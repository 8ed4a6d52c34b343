package artifact

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gauntlet/internal/faults"
)

// familyKinds maps a function name prefix to the adapter kind that
// serves it.
var familyKinds = map[string]string{
	"file":   "text",
	"csv":    "csv",
	"json":   "json",
	"yaml":   "yaml",
	"xml":    "xml",
	"sqlite": "sqlite",
}

// knownFunctions lists every template function the engine dispatches.
var knownFunctions = map[string]bool{
	"file_line":      true,
	"file_word":      true,
	"file_linecount": true,

	"csv_cell":        true,
	"csv_count":       true,
	"csv_sum":         true,
	"csv_avg":         true,
	"csv_min":         true,
	"csv_max":         true,
	"csv_sum_where":   true,
	"csv_avg_where":   true,
	"csv_count_where": true,
	"csv_list":        true,

	"json_value": true,
	"json_count": true,
	"json_sum":   true,
	"json_avg":   true,
	"json_keys":  true,
	"json_list":  true,

	"yaml_value": true,
	"yaml_count": true,
	"yaml_sum":   true,
	"yaml_avg":   true,
	"yaml_keys":  true,
	"yaml_list":  true,

	"xml_value": true,
	"xml_count": true,

	"sqlite_query": true,
}

// KnownFunction reports whether name is a dispatchable template function.
// Static validation uses this to reject definitions before any artifact
// is generated.
func KnownFunction(name string) bool { return knownFunctions[name] }

// Functions lists every template function name in sorted order.
func Functions() []string {
	names := make([]string, 0, len(knownFunctions))
	for n := range knownFunctions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Engine executes template function calls for one test instance. It owns
// the set of handles materialized so far and resolves the trailing path
// argument of every call to one of them.
type Engine struct {
	reg *Registry
	dir string

	mu     sync.RWMutex
	byPath map[string]*Handle
}

// NewEngine creates an engine rooted at the instance directory.
func NewEngine(reg *Registry, dir string) *Engine {
	return &Engine{reg: reg, dir: dir, byPath: make(map[string]*Handle)}
}

// Track registers a materialized handle for later queries.
func (e *Engine) Track(h *Handle) {
	e.mu.Lock()
	e.byPath[filepath.Clean(h.Path)] = h
	e.mu.Unlock()
}

// Lookup resolves an artifact path, absolute or relative to the instance
// directory, to its handle.
func (e *Engine) Lookup(path string) (*Handle, bool) {
	clean := filepath.Clean(strings.TrimSpace(path))
	if !filepath.IsAbs(clean) {
		clean = filepath.Clean(filepath.Join(e.dir, clean))
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	h, ok := e.byPath[clean]
	return h, ok
}

// ExecuteCall dispatches one fully literal function call to the adapter
// owning its family. The final argument names the artifact, either as a
// materialized path or as a path relative to the instance directory.
func (e *Engine) ExecuteCall(ctx context.Context, name string, args []string) (string, error) {
	family, _, found := strings.Cut(name, "_")
	kind, ok := familyKinds[family]
	if !found || !ok || !knownFunctions[name] {
		return "", faults.Configf(name, "unknown template function")
	}
	if len(args) == 0 {
		return "", faults.Configf(name, "call needs an artifact path as its final argument")
	}

	path := args[len(args)-1]
	h, ok := e.Lookup(path)
	if !ok {
		return "", faults.Evalf(name, path, "no generated artifact at this path")
	}
	if h.Kind != kind {
		return "", faults.Evalf(name, h.Component, "function family %s cannot query a %s artifact", family, h.Kind)
	}

	adapter, err := e.reg.Get(kind)
	if err != nil {
		return "", faults.Configf(name, "no adapter registered for kind %q", kind)
	}
	v, err := adapter.Query(ctx, h, name, args[:len(args)-1])
	if err != nil {
		return "", err
	}
	return v.Text(), nil
}
