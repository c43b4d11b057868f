// Package payload walks decoded JSON values. It resolves result paths inside
// upstream responses and coerces the values it finds into numbers.
//
// Values are whatever encoding/json produces when decoding into any:
// map[string]any, []any, string, float64, bool, nil (and json.Number when the
// decoder was asked for it). The package never tries to type the tree.
package payload

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is a single step of a Path: an object key or an array index.
type Segment struct {
	key     string
	index   int
	isIndex bool
}

// Key returns an object key segment.
func Key(k string) Segment {
	return Segment{key: k}
}

// Index returns an array index segment.
func Index(i int) Segment {
	return Segment{index: i, isIndex: true}
}

// IsIndex reports whether the segment is an array index.
func (s Segment) IsIndex() bool { return s.isIndex }

func (s Segment) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.key
}

// Path is an ordered list of segments from the root of a payload to a value.
type Path []Segment

// P builds a Path from string keys and int indices.
// Any other part type is a programming error and panics.
func P(parts ...any) Path {
	path := make(Path, 0, len(parts))
	for _, part := range parts {
		switch v := part.(type) {
		case string:
			path = append(path, Key(v))
		case int:
			path = append(path, Index(v))
		case Segment:
			path = append(path, v)
		default:
			panic(fmt.Sprintf("payload: unsupported path part %T", part))
		}
	}
	return path
}

// ParsePath splits a dotted path. Parts made only of digits become indices,
// everything else is a key. An empty string is the empty path.
func ParsePath(s string) Path {
	if s == "" {
		return Path{}
	}
	parts := strings.Split(s, ".")
	path := make(Path, 0, len(parts))
	for _, part := range parts {
		if i, ok := decimalIndex(part); ok {
			path = append(path, Index(i))
			continue
		}
		path = append(path, Key(part))
	}
	return path
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, seg := range p {
		parts[i] = seg.String()
	}
	return strings.Join(parts, ".")
}

// decimalIndex parses a canonical non-negative decimal ("0", "12", not "012").
func decimalIndex(s string) (int, bool) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return i, true
}
