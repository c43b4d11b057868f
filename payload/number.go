package payload

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ToNumber coerces a decoded JSON value the way upstream sources' consumers
// have always read them (JavaScript Number()): null is 0, booleans are 0/1,
// numeric strings are parsed, a one-element array is its element, and
// anything else is NaN.
func ToNumber(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case bool:
		if n {
			return 1
		}
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case json.Number:
		return parseNumber(string(n))
	case string:
		return parseNumber(n)
	case []any:
		switch len(n) {
		case 0:
			return 0
		case 1:
			s, ok := elementString(n[0])
			if !ok {
				return math.NaN()
			}
			return parseNumber(s)
		default:
			return math.NaN()
		}
	default:
		return math.NaN()
	}
}

// elementString renders a single array element the way array-to-string
// conversion does before numeric parsing.
func elementString(v any) (string, bool) {
	switch e := v.(type) {
	case nil:
		return "", true
	case string:
		return e, true
	case json.Number:
		return string(e), true
	case []any:
		if len(e) == 0 {
			return "", true
		}
		if len(e) == 1 {
			return elementString(e[0])
		}
		return "", false
	case map[string]any, bool:
		return "", false
	default:
		f := ToNumber(e)
		if math.IsNaN(f) {
			return "", false
		}
		return strconv.FormatFloat(f, 'g', -1, 64), true
	}
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' {
		if base := radix(s[1]); base != 0 {
			return parseRadix(s[2:], base)
		}
	}

	if !isDecimalLiteral(s) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return f
		}
		return math.NaN()
	}
	return f
}

func radix(c byte) int {
	switch c {
	case 'x', 'X':
		return 16
	case 'o', 'O':
		return 8
	case 'b', 'B':
		return 2
	}
	return 0
}

func parseRadix(digits string, base int) float64 {
	n, err := strconv.ParseUint(digits, base, 64)
	if err == nil {
		return float64(n)
	}
	if !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	bi, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return math.NaN()
	}
	f, _ := new(big.Float).SetInt(bi).Float64()
	return f
}

// isDecimalLiteral rejects the spellings strconv accepts but numeric strings
// from upstream never mean: "inf", "nan", underscores, hex floats.
func isDecimalLiteral(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.', r == 'e', r == 'E', r == '+', r == '-':
		default:
			return false
		}
	}
	return true
}
