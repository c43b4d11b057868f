package payload

import "strconv"

// Resolve descends into value along path and returns what it finds. The
// boolean is false when any step cannot be taken: a missing key, an index out
// of range, or a value that is not a container. A key that is present with a
// JSON null resolves to (nil, true).
//
// Index segments may address objects by their decimal key, and key segments
// may address arrays when they are canonical decimals.
func Resolve(value any, path Path) (any, bool) {
	current := value
	for _, seg := range path {
		next, ok := step(current, seg)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func step(value any, seg Segment) (any, bool) {
	switch v := value.(type) {
	case map[string]any:
		key := seg.key
		if seg.isIndex {
			key = strconv.Itoa(seg.index)
		}
		next, ok := v[key]
		return next, ok
	case []any:
		idx := seg.index
		if !seg.isIndex {
			var ok bool
			if idx, ok = decimalIndex(seg.key); !ok {
				return nil, false
			}
		}
		if idx < 0 || idx >= len(v) {
			return nil, false
		}
		return v[idx], true
	default:
		return nil, false
	}
}
