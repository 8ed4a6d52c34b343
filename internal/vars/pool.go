package vars

import (
	"math"
	"math/rand"
	"strconv"
	"strings"
	"sync"

	"gauntlet/internal/faults"
	"gauntlet/internal/lexicon"
)

// Pool resolves variable references for one test instance. Each identity
// is drawn once and cached; later occurrences return the cached value.
// After Freeze, resolving a previously unseen identity is an error, which
// keeps the variable map stable once artifact generation begins.
type Pool struct {
	mu     sync.Mutex
	lex    *lexicon.Lexicon
	rng    *rand.Rand
	seed   int64
	values map[string]string
	draws  map[string]int64
	frozen bool
}

// NewPool returns a pool seeded for one instance. The same lexicon and
// seed reproduce the same values in the same resolution order.
func NewPool(lex *lexicon.Lexicon, seed int64) *Pool {
	return &Pool{
		lex:    lex,
		rng:    rand.New(rand.NewSource(seed)),
		seed:   seed,
		values: make(map[string]string),
		draws:  make(map[string]int64),
	}
}

// Seed returns the seed this pool was built with.
func (p *Pool) Seed() int64 { return p.seed }

// Resolve returns the value for ref, drawing it on first sight.
func (p *Pool) Resolve(ref Ref) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := ref.Key()
	if v, ok := p.values[key]; ok {
		return v, nil
	}
	if p.frozen {
		return "", faults.Configf(ref.String(), "variable appeared after the resolution pass")
	}

	v, err := p.draw(ref)
	if err != nil {
		return "", err
	}
	p.values[key] = v
	return v, nil
}

// Freeze marks the resolution pass complete. Cached identities remain
// readable; unseen identities become errors.
func (p *Pool) Freeze() {
	p.mu.Lock()
	p.frozen = true
	p.mu.Unlock()
}

// Snapshot returns a copy of the resolved variable map keyed by canonical
// identity.
func (p *Pool) Snapshot() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]string, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// Len reports how many identities have been resolved.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.values)
}

func (p *Pool) draw(ref Ref) (string, error) {
	switch ref.Kind {
	case KindSemantic:
		return p.drawSemantic(ref)
	case KindNumber:
		return p.drawNumber(ref), nil
	case KindEntity:
		pool, ok := p.lex.Pool(ref.PoolName)
		if !ok {
			return "", faults.Configf(ref.String(), "unknown entity pool %q", ref.PoolName)
		}
		return pool[p.rng.Intn(len(pool))], nil
	case KindDefaultEntity:
		pool := p.lex.DefaultPool()
		return pool[p.rng.Intn(len(pool))], nil
	default:
		return "", faults.Configf(ref.String(), "unknown variable kind")
	}
}

func (p *Pool) drawSemantic(ref Ref) (string, error) {
	switch ref.DataType {
	case lexicon.TypeFullName:
		first := p.pick(lexicon.TypeFirstName)
		last := p.pick(lexicon.TypeLastName)
		return first + " " + last, nil
	case lexicon.TypeEmail:
		first := strings.ToLower(p.pick(lexicon.TypeFirstName))
		last := strings.ToLower(p.pick(lexicon.TypeLastName))
		domains := p.lex.EmailDomains()
		return first + "." + last + "@" + domains[p.rng.Intn(len(domains))], nil
	default:
		table, ok := p.lex.Semantic(ref.DataType)
		if !ok {
			return "", faults.Configf(ref.String(), "unknown semantic data type %q", ref.DataType)
		}
		return table[p.rng.Intn(len(table))], nil
	}
}

func (p *Pool) pick(dataType string) string {
	table, _ := p.lex.Semantic(dataType)
	return table[p.rng.Intn(len(table))]
}

func (p *Pool) drawNumber(ref Ref) string {
	span := ref.Max - ref.Min + 1
	raw := ref.Min + p.rng.Int63n(span)
	p.draws[ref.Key()] = raw
	v := raw
	if ref.Unit != 0 {
		v = roundToUnit(raw, ref.Unit)
	}
	return strconv.FormatInt(v, 10)
}

// roundToUnit rounds v to the nearest multiple of unit, ties away from
// zero. The result is not clamped back into the draw range: a rounded
// value may legitimately land outside it.
func roundToUnit(v, unit int64) int64 {
	return int64(math.Round(float64(v)/float64(unit))) * unit
}
