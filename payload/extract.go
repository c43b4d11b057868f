package payload

import (
	"math"

	"github.com/gaborage/adapter-bricks/adapter"
)

// EnvelopeKey is the conventional wrapper key unwrapped before path resolution.
const EnvelopeKey = "data"

// Unwrap normalizes what callers hand to the extractor. A transport response
// is replaced by its decoded payload; otherwise an object carrying EnvelopeKey
// is unwrapped once. Anything else is returned unchanged.
func Unwrap(envelope any) any {
	if up, ok := envelope.(adapter.Upstream); ok {
		return up.Payload()
	}
	if obj, ok := envelope.(map[string]any); ok {
		if inner, ok := obj[EnvelopeKey]; ok {
			return inner
		}
	}
	return envelope
}

// Get resolves path inside the normalized envelope without any coercion.
// Use it when zero is a legitimate value for the data point.
func Get(envelope any, path Path) (any, bool) {
	return Resolve(Unwrap(envelope), path)
}

// ExtractNumber resolves path and coerces the value to a number.
//
// Upstream sources in this ecosystem report "no data" as 0, so zero is
// rejected together with NaN. Infinities are rejected as well since the
// result has to survive JSON encoding.
func ExtractNumber(envelope any, path Path) (float64, error) {
	raw, ok := Get(envelope, path)
	if !ok {
		return 0, adapter.ResultNotFound()
	}
	n := ToNumber(raw)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, adapter.InvalidResult()
	}
	return n, nil
}
