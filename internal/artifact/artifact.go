// Package artifact generates test fixture files and answers template
// function queries against them. Each supported format (text, csv, json,
// yaml, xml, sqlite) is an Adapter registered under its kind; the Engine
// dispatches function calls to the right adapter by function family and
// keeps track of every artifact materialized for one test instance.
package artifact

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gauntlet/internal/faults"
)

// Handle describes one materialized artifact. Adapters fill in whatever
// shape metadata their format has; queries always re-read the file itself
// so answers reflect what is actually on disk.
type Handle struct {
	Component string
	Kind      string
	Path      string

	// Rows counts data rows for tabular formats, lines for text, and
	// total inserted rows for sqlite.
	Rows int

	// Columns holds header names for csv artifacts.
	Columns []string

	// Tables maps table name to row count for sqlite artifacts.
	Tables map[string]int
}

// Value is a query result: either a single scalar or an ordered sequence.
// Sequences keep source order; they are never sorted on the way out.
type Value struct {
	Single string
	Seq    []string
}

// IsSeq reports whether the value is an ordered sequence.
func (v Value) IsSeq() bool { return v.Seq != nil }

// Text renders the value for substitution into a template. Sequences join
// with ", " in source order.
func (v Value) Text() string {
	if v.IsSeq() {
		return strings.Join(v.Seq, ", ")
	}
	return v.Single
}

func seqValue(items []string) Value {
	if items == nil {
		items = []string{}
	}
	return Value{Seq: items}
}

// Adapter generates artifacts of one format and answers queries on them.
type Adapter interface {
	// Kind returns the artifact kind this adapter serves.
	Kind() string

	// Generate materializes the artifact described by spec at path. The
	// parent directory already exists. src provides seeded content.
	Generate(ctx context.Context, path string, spec *ContentSpec, src *Source) (*Handle, error)

	// Query answers one template function call against a generated
	// artifact. name is the full function name; args exclude the final
	// path argument, which the engine already resolved to h.
	Query(ctx context.Context, h *Handle, name string, args []string) (Value, error)
}

// Registry resolves artifact kinds to adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter. Registering the same kind twice is an error.
func (r *Registry) Register(a Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kind := a.Kind()
	if _, exists := r.adapters[kind]; exists {
		return fmt.Errorf("%w: %s", ErrAdapterRegistered, kind)
	}
	r.adapters[kind] = a
	return nil
}

// Get returns the adapter for kind.
func (r *Registry) Get(kind string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAdapterNotFound, kind)
	}
	return a, nil
}

// Has reports whether kind is registered.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.adapters[kind]
	return ok
}

// Kinds lists registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.adapters))
	for k := range r.adapters {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// DefaultRegistry returns a registry with every built-in adapter.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, a := range []Adapter{
		textAdapter{},
		csvAdapter{},
		jsonAdapter{},
		yamlAdapter{},
		xmlAdapter{},
		sqliteAdapter{},
	} {
		if err := r.Register(a); err != nil {
			panic(err)
		}
	}
	return r
}

// SafeJoin resolves rel inside base, rejecting absolute paths and any
// traversal that would escape base. Instance artifacts never land outside
// their instance directory.
func SafeJoin(base, rel string) (string, error) {
	if strings.TrimSpace(rel) == "" {
		return "", faults.Configf("target", "path is empty")
	}
	if filepath.IsAbs(rel) {
		return "", faults.Configf(rel, "path must be relative to the instance directory")
	}
	clean := filepath.Clean(filepath.Join(base, rel))
	if clean != base && !strings.HasPrefix(clean, base+string(filepath.Separator)) {
		return "", faults.Configf(rel, "path escapes the instance directory")
	}
	return clean, nil
}
