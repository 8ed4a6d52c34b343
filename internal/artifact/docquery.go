package artifact

import (
	"sort"
	"strconv"
	"strings"

	"gauntlet/internal/faults"
)

// queryDoc answers json_* and yaml_* calls against a decoded document.
// Paths are dot-delimited: map keys by name, array elements by 0-based
// index, and a single "*" segment to collect a value from every element
// of an array.
func queryDoc(fn string, doc any, args []string) (Value, error) {
	if len(args) != 1 {
		return Value{}, faults.Configf(fn, "takes a path and an artifact path, got %d arguments", len(args)+1)
	}
	path := strings.TrimSpace(args[0])
	if path == "" {
		return Value{}, faults.Configf(fn, "path is empty")
	}

	segs := strings.Split(path, ".")
	if n := strings.Count(path, "*"); n > 1 {
		return Value{}, faults.Configf(fn, "path may hold at most one wildcard")
	}
	v, err := walkDoc(fn, path, doc, segs)
	if err != nil {
		return Value{}, err
	}

	_, op, _ := strings.Cut(fn, "_")
	switch op {
	case "value":
		return docScalar(fn, path, v)
	case "count":
		return docCount(fn, path, v)
	case "sum", "avg":
		return docReduce(fn, op, path, v)
	case "keys":
		return docKeys(fn, path, v)
	case "list":
		return docList(fn, path, v)
	}
	return Value{}, faults.Configf(fn, "unknown template function")
}

func walkDoc(fn, path string, cur any, segs []string) (any, error) {
	if len(segs) == 0 {
		return cur, nil
	}
	seg := segs[0]

	switch c := cur.(type) {
	case map[string]any:
		if seg == "*" {
			return nil, faults.Evalf(fn, path, "wildcard needs an array, found a mapping")
		}
		v, ok := c[seg]
		if !ok {
			return nil, faults.Evalf(fn, path, "no key %q", seg)
		}
		return walkDoc(fn, path, v, segs[1:])

	case []any:
		if seg == "*" {
			out := make([]any, 0, len(c))
			for _, el := range c {
				v, err := walkDoc(fn, path, el, segs[1:])
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			return out, nil
		}
		idx, err := strconv.Atoi(seg)
		if err != nil {
			return nil, faults.Evalf(fn, path, "segment %q does not index an array", seg)
		}
		if idx < 0 || idx >= len(c) {
			return nil, faults.Evalf(fn, path, "index %d outside array of %d", idx, len(c))
		}
		return walkDoc(fn, path, c[idx], segs[1:])

	default:
		return nil, faults.Evalf(fn, path, "path continues past a scalar at %q", seg)
	}
}

func docScalar(fn, path string, v any) (Value, error) {
	switch v.(type) {
	case map[string]any:
		return Value{}, faults.Evalf(fn, path, "path selects a mapping, not a scalar")
	case []any:
		return Value{}, faults.Evalf(fn, path, "path selects a collection, not a scalar")
	case nil:
		return Value{Single: "null"}, nil
	}
	return Value{Single: toScalarString(v)}, nil
}

func docCount(fn, path string, v any) (Value, error) {
	switch c := v.(type) {
	case []any:
		return Value{Single: strconv.Itoa(len(c))}, nil
	case map[string]any:
		return Value{Single: strconv.Itoa(len(c))}, nil
	}
	return Value{}, faults.Evalf(fn, path, "path selects a scalar, nothing to count")
}

func docReduce(fn, op, path string, v any) (Value, error) {
	items, ok := v.([]any)
	if !ok {
		return Value{}, faults.Evalf(fn, path, "path must select an array of numbers")
	}
	nums := make([]float64, 0, len(items))
	for i, el := range items {
		n, ok := toNumber(el)
		if !ok {
			return Value{}, faults.Evalf(fn, path, "element %d is not numeric", i)
		}
		nums = append(nums, n)
	}
	return reduce(fn, op, path, nums)
}

// docKeys returns mapping keys sorted alphabetically. Decoded mappings
// carry no document order, so an explicit stable order stands in.
func docKeys(fn, path string, v any) (Value, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Value{}, faults.Evalf(fn, path, "path must select a mapping")
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return seqValue(keys), nil
}

func docList(fn, path string, v any) (Value, error) {
	items, ok := v.([]any)
	if !ok {
		return Value{}, faults.Evalf(fn, path, "path must select an array")
	}
	out := make([]string, 0, len(items))
	for i, el := range items {
		switch el.(type) {
		case map[string]any, []any:
			return Value{}, faults.Evalf(fn, path, "element %d is not a scalar", i)
		}
		out = append(out, toScalarString(el))
	}
	return seqValue(out), nil
}
