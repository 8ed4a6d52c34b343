package artifact

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// parseNumber reads a numeric string as written in an artifact cell.
func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

// toNumber coerces a decoded document value to a number. Generated record
// fields are strings, hand-written document numbers decode as int or
// float64, and json.Number appears when a decoder is configured for it.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		return parseNumber(n)
	}
	return 0, false
}

// formatNumber renders a query result number. Integral values print
// without a decimal point so counts and integer sums read naturally;
// everything else prints with the shortest exact decimal form.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
