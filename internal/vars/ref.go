// Package vars implements template variable identity and resolution.
// A variable reference is identified by its kind, index, and parameters;
// every occurrence of the same identity inside one test instance resolves
// to the same value. Values are drawn from a seeded pool so a fixed seed
// reproduces the full variable map.
package vars

import (
	"fmt"
	"strconv"
	"strings"

	"gauntlet/internal/faults"
)

// Kind discriminates the variable families of the template language.
type Kind string

const (
	// KindSemantic draws a realistic value of a named data type,
	// e.g. {{semantic1:first_name}}.
	KindSemantic Kind = "semantic"

	// KindNumber draws an integer from an inclusive range with optional
	// rounding, e.g. {{number2:10:500}} or {{number2:1000:9000:500}}.
	KindNumber Kind = "number"

	// KindEntity draws from a named thematic pool,
	// e.g. {{entity1:planets}}.
	KindEntity Kind = "entity"

	// KindDefaultEntity draws from the built-in default pool; the
	// reference carries no parameters, e.g. {{entity3}}.
	KindDefaultEntity Kind = "entity_default"
)

// roundingUnits are the only accepted rounding granularities for numeric
// variables.
var roundingUnits = map[int64]bool{
	100:   true,
	250:   true,
	500:   true,
	1000:  true,
	10000: true,
}

// Ref is the identity of one variable. Two references with equal Key()
// are the same variable and resolve to the same value within an instance.
type Ref struct {
	Kind  Kind
	Index int

	// DataType is set for semantic references.
	DataType string

	// Min, Max, Unit are set for numeric references. Unit 0 means no
	// rounding.
	Min  int64
	Max  int64
	Unit int64

	// PoolName is set for named entity references.
	PoolName string
}

// KindWord reports whether word is a variable kind keyword.
func KindWord(word string) bool {
	switch word {
	case "semantic", "number", "entity":
		return true
	}
	return false
}

// FromSegments builds a validated Ref from the head keyword, the head
// index, and the colon-delimited parameter segments. Parameter defects
// (wrong arity, malformed bounds, unknown rounding unit) are
// configuration errors.
func FromSegments(word string, index int, params []string) (Ref, error) {
	switch word {
	case "semantic":
		if len(params) != 1 {
			return Ref{}, faults.Configf(head(word, index), "semantic reference takes exactly one data type, got %d parameters", len(params))
		}
		if params[0] == "" {
			return Ref{}, faults.Configf(head(word, index), "semantic data type is empty")
		}
		return Ref{Kind: KindSemantic, Index: index, DataType: params[0]}, nil

	case "number":
		if len(params) != 2 && len(params) != 3 {
			return Ref{}, faults.Configf(head(word, index), "numeric reference takes min:max or min:max:unit, got %d parameters", len(params))
		}
		min, err := strconv.ParseInt(params[0], 10, 64)
		if err != nil {
			return Ref{}, faults.Configf(head(word, index), "minimum %q is not an integer", params[0])
		}
		max, err := strconv.ParseInt(params[1], 10, 64)
		if err != nil {
			return Ref{}, faults.Configf(head(word, index), "maximum %q is not an integer", params[1])
		}
		if min > max {
			return Ref{}, faults.Configf(head(word, index), "minimum %d exceeds maximum %d", min, max)
		}
		ref := Ref{Kind: KindNumber, Index: index, Min: min, Max: max}
		if len(params) == 3 && params[2] != "none" {
			unit, err := strconv.ParseInt(params[2], 10, 64)
			if err != nil || !roundingUnits[unit] {
				return Ref{}, faults.Configf(head(word, index), "unsupported rounding unit %q", params[2])
			}
			ref.Unit = unit
		}
		return ref, nil

	case "entity":
		switch len(params) {
		case 0:
			return Ref{Kind: KindDefaultEntity, Index: index}, nil
		case 1:
			if params[0] == "" {
				return Ref{}, faults.Configf(head(word, index), "entity pool name is empty")
			}
			return Ref{Kind: KindEntity, Index: index, PoolName: params[0]}, nil
		default:
			return Ref{}, faults.Configf(head(word, index), "entity reference takes at most one pool name, got %d parameters", len(params))
		}

	default:
		return Ref{}, faults.Configf(word, "unknown variable kind")
	}
}

func head(word string, index int) string {
	return word + strconv.Itoa(index)
}

// Key returns the canonical identity string. Equal keys mean the same
// variable.
func (r Ref) Key() string {
	var b strings.Builder
	switch r.Kind {
	case KindSemantic:
		fmt.Fprintf(&b, "semantic:%d:%s", r.Index, r.DataType)
	case KindNumber:
		fmt.Fprintf(&b, "number:%d:%d:%d", r.Index, r.Min, r.Max)
		if r.Unit != 0 {
			fmt.Fprintf(&b, ":%d", r.Unit)
		}
	case KindEntity:
		fmt.Fprintf(&b, "entity:%d:%s", r.Index, r.PoolName)
	case KindDefaultEntity:
		fmt.Fprintf(&b, "entity:%d", r.Index)
	}
	return b.String()
}

// String renders the reference in template form, e.g. {{number2:10:500}}.
func (r Ref) String() string {
	var b strings.Builder
	b.WriteString("{{")
	switch r.Kind {
	case KindSemantic:
		fmt.Fprintf(&b, "semantic%d:%s", r.Index, r.DataType)
	case KindNumber:
		fmt.Fprintf(&b, "number%d:%d:%d", r.Index, r.Min, r.Max)
		if r.Unit != 0 {
			fmt.Fprintf(&b, ":%d", r.Unit)
		}
	case KindEntity:
		fmt.Fprintf(&b, "entity%d:%s", r.Index, r.PoolName)
	case KindDefaultEntity:
		fmt.Fprintf(&b, "entity%d", r.Index)
	}
	b.WriteString("}}")
	return b.String()
}
