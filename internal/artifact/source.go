package artifact

import (
	"hash/fnv"
	"math/rand"
	"strconv"
	"strings"

	"gauntlet/internal/faults"
	"gauntlet/internal/lexicon"
)

// Source generates artifact content deterministically. Each component
// derives its own source from the instance seed and its name, so adding a
// component to a definition does not shift the content of the others.
type Source struct {
	lex  *lexicon.Lexicon
	rng  *rand.Rand
	seed int64
}

// NewSource returns a content source for one instance.
func NewSource(lex *lexicon.Lexicon, seed int64) *Source {
	return &Source{lex: lex, rng: rand.New(rand.NewSource(seed)), seed: seed}
}

// Derive returns a source scoped to name, seeded from this source's seed
// and the name. Derivation is independent of draw order.
func (s *Source) Derive(name string) *Source {
	h := fnv.New64a()
	h.Write([]byte(name))
	return NewSource(s.lex, s.seed^int64(h.Sum64()))
}

// Cell produces the value for one generated record cell. row is 1-based.
func (s *Source) Cell(source string, row int) (string, error) {
	kind, rest, _ := strings.Cut(source, ":")
	switch kind {
	case "seq":
		return strconv.Itoa(row), nil
	case "word":
		words := s.lex.Words()
		return words[s.rng.Intn(len(words))], nil
	case "int":
		min, max, ok := parseIntRange(rest)
		if !ok {
			return "", faults.Configf(source, "int source takes int:MIN:MAX with MIN <= MAX")
		}
		return strconv.FormatInt(min+s.rng.Int63n(max-min+1), 10), nil
	case "pool":
		pool, ok := s.lex.Pool(rest)
		if !ok {
			return "", faults.Configf(source, "unknown entity pool %q", rest)
		}
		return pool[s.rng.Intn(len(pool))], nil
	case "lit":
		return rest, nil
	}
	return s.semanticCell(source)
}

func (s *Source) semanticCell(dataType string) (string, error) {
	switch dataType {
	case lexicon.TypeFullName:
		return s.pick(lexicon.TypeFirstName) + " " + s.pick(lexicon.TypeLastName), nil
	case lexicon.TypeEmail:
		first := strings.ToLower(s.pick(lexicon.TypeFirstName))
		last := strings.ToLower(s.pick(lexicon.TypeLastName))
		domains := s.lex.EmailDomains()
		return first + "." + last + "@" + domains[s.rng.Intn(len(domains))], nil
	default:
		table, ok := s.lex.Semantic(dataType)
		if !ok {
			return "", faults.Configf(dataType, "unknown cell source")
		}
		return table[s.rng.Intn(len(table))], nil
	}
}

func (s *Source) pick(dataType string) string {
	table, _ := s.lex.Semantic(dataType)
	return table[s.rng.Intn(len(table))]
}

// Sentence produces one line of filler prose, six to ten words.
func (s *Source) Sentence() string {
	words := s.lex.Words()
	n := 6 + s.rng.Intn(5)
	parts := make([]string, n)
	for i := range parts {
		parts[i] = words[s.rng.Intn(len(words))]
	}
	line := strings.Join(parts, " ")
	return strings.ToUpper(line[:1]) + line[1:] + "."
}

func parseIntRange(rest string) (int64, int64, bool) {
	lo, hi, ok := strings.Cut(rest, ":")
	if !ok {
		return 0, 0, false
	}
	min, err := strconv.ParseInt(strings.TrimSpace(lo), 10, 64)
	if err != nil {
		return 0, 0, false
	}
	max, err := strconv.ParseInt(strings.TrimSpace(hi), 10, 64)
	if err != nil || min > max {
		return 0, 0, false
	}
	return min, max, true
}
