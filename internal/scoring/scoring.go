// Package scoring compares an agent's answer against the expected value
// computed during instance resolution. Scorers are pure string functions;
// they never touch generated artifacts.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/google/go-cmp/cmp"

	"gauntlet/internal/faults"
)

// DefaultTolerance is the absolute tolerance for numeric scoring when the
// definition does not set one.
const DefaultTolerance = 1e-9

// Params selects a scorer and carries its settings.
type Params struct {
	Kind      string
	Expected  string
	Tolerance float64
	Ordered   bool
}

// Result is one scored comparison. Detail is empty on a pass and holds a
// human-readable mismatch report on a fail.
type Result struct {
	Pass   bool
	Detail string
}

var kinds = map[string]bool{
	"exact":    true,
	"numeric":  true,
	"contains": true,
	"list":     true,
}

// Known reports whether kind names a supported scorer.
func Known(kind string) bool { return kinds[kind] }

// Kinds returns the supported scorer names, sorted.
func Kinds() []string {
	out := make([]string, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Score compares answer against p.Expected. A malformed Params (unknown kind,
// expected value that the kind cannot parse) is a configuration error; an
// answer that merely fails the comparison is a failing Result, not an error.
func Score(p Params, answer string) (Result, error) {
	switch p.Kind {
	case "exact":
		return scoreExact(p.Expected, answer), nil
	case "numeric":
		return scoreNumeric(p, answer)
	case "contains":
		return scoreContains(p.Expected, answer), nil
	case "list":
		return scoreList(p, answer), nil
	default:
		return Result{}, faults.Configf("scoring", "unknown scoring kind %q (known: %s)",
			p.Kind, strings.Join(Kinds(), ", "))
	}
}

func scoreExact(expected, answer string) Result {
	want := strings.TrimSpace(expected)
	got := strings.TrimSpace(answer)
	if got == want {
		return Result{Pass: true}
	}
	return Result{Detail: cmp.Diff(want, got)}
}

func scoreNumeric(p Params, answer string) (Result, error) {
	want, err := strconv.ParseFloat(strings.TrimSpace(p.Expected), 64)
	if err != nil {
		return Result{}, faults.Configf("scoring", "expected value %q is not numeric", p.Expected)
	}
	tol := p.Tolerance
	if tol == 0 {
		tol = DefaultTolerance
	}
	got, err := strconv.ParseFloat(strings.TrimSpace(answer), 64)
	if err != nil {
		return Result{Detail: fmt.Sprintf("answer %q is not numeric", answer)}, nil
	}
	if diff := math.Abs(got - want); diff > tol {
		return Result{Detail: fmt.Sprintf("want %v, got %v (|diff| %v exceeds tolerance %v)", want, got, diff, tol)}, nil
	}
	return Result{Pass: true}, nil
}

func scoreContains(expected, answer string) Result {
	want := strings.TrimSpace(expected)
	if strings.Contains(answer, want) {
		return Result{Pass: true}
	}
	return Result{Detail: fmt.Sprintf("answer does not contain %q", want)}
}

func scoreList(p Params, answer string) Result {
	want := SplitList(p.Expected)
	got := SplitList(answer)
	if !p.Ordered {
		want = append([]string(nil), want...)
		got = append([]string(nil), got...)
		sort.Strings(want)
		sort.Strings(got)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		return Result{Detail: diff}
	}
	return Result{Pass: true}
}

// SplitList breaks a list answer on commas and newlines, trimming each item
// and dropping empties. "a, b\nc" and "a,b,c" denote the same list.
func SplitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
