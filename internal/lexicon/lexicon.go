// Package lexicon holds the built-in word and entity dictionaries that back
// semantic variable generation and artifact content synthesis. All tables are
// fixed at compile time; generation draws from them with a seeded RNG so the
// same seed always yields the same values.
package lexicon

import "sort"

// Lexicon exposes read-only access to the semantic dictionaries and the
// thematic entity pools. Callers must treat returned slices as immutable.
type Lexicon struct {
	semantic map[string][]string
	pools    map[string][]string
}

// Default returns the built-in lexicon.
func Default() *Lexicon {
	return &Lexicon{semantic: semanticTables, pools: entityPools}
}

// Semantic returns the value table for a semantic data type such as
// "first_name" or "city". The boolean reports whether the type exists.
// Composed types (full_name, email) have no table of their own and are
// assembled by the variable generator from these parts.
func (l *Lexicon) Semantic(dataType string) ([]string, bool) {
	vals, ok := l.semantic[dataType]
	return vals, ok
}

// HasSemantic reports whether dataType is a known semantic data type,
// including the composed types.
func (l *Lexicon) HasSemantic(dataType string) bool {
	if _, ok := l.semantic[dataType]; ok {
		return true
	}
	return dataType == TypeFullName || dataType == TypeEmail
}

// Pool returns the entity list for a named thematic pool.
func (l *Lexicon) Pool(name string) ([]string, bool) {
	vals, ok := l.pools[name]
	return vals, ok
}

// DefaultPool returns the entity list used by pool-less entity references.
// It is a standalone value, not an entry in the named pool table.
func (l *Lexicon) DefaultPool() []string {
	return defaultEntityPool
}

// SemanticTypes lists every known semantic data type in sorted order.
func (l *Lexicon) SemanticTypes() []string {
	types := make([]string, 0, len(l.semantic)+2)
	for k := range l.semantic {
		types = append(types, k)
	}
	types = append(types, TypeFullName, TypeEmail)
	sort.Strings(types)
	return types
}

// PoolNames lists every named entity pool in sorted order.
func (l *Lexicon) PoolNames() []string {
	names := make([]string, 0, len(l.pools))
	for k := range l.pools {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Words returns the filler word table used for generated prose.
func (l *Lexicon) Words() []string {
	return fillerWords
}

// Composed semantic data types. These are assembled from base tables
// rather than drawn from a single table.
const (
	TypeFullName = "full_name"
	TypeEmail    = "email"

	TypeFirstName = "first_name"
	TypeLastName  = "last_name"
)

// EmailDomains lists the domains used when composing email addresses.
func (l *Lexicon) EmailDomains() []string {
	return emailDomains
}
