package validation

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gaborage/adapter-bricks/adapter"
)

const (
	inputIDKey   = "id"
	inputDataKey = "data"
)

// Validate evaluates spec against the raw adapter request.
//
// The request must carry a data object; its id becomes the correlation id and
// defaults to "1". Parameters are evaluated in declaration order and the first
// failure is returned. A key counts as supplied when it exists, even with a
// null value. Validate panics with ErrMalformedSpec when spec fails Check.
func Validate(raw map[string]any, spec Spec) (*Input, error) {
	if err := spec.Check(); err != nil {
		panic(err)
	}

	data, ok := raw[inputDataKey]
	if !ok || data == nil {
		return nil, adapter.NoDataSupplied()
	}
	// Non-object data supplies nothing; lookups on a nil map simply miss.
	obj, _ := data.(map[string]any)

	in := &Input{
		ID:   JobRunID(raw),
		Data: make(map[string]any, len(spec)),
	}

	for _, p := range spec {
		value, found := lookup(obj, p.candidates())
		if !found {
			if p.Kind == KindOptional {
				continue
			}
			return nil, adapter.MissingParameter(p.Key)
		}
		in.Data[p.Key] = value
	}

	return in, nil
}

// ValidateJSON decodes body as an adapter request and validates it.
func ValidateJSON(body []byte, spec Spec) (*Input, error) {
	raw, err := DecodeRequest(body)
	if err != nil {
		return nil, err
	}
	return Validate(raw, spec)
}

// DecodeRequest parses a JSON adapter request. Anything but an object or
// null is a KindInvalidRequest error.
func DecodeRequest(body []byte) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, adapter.New(adapter.KindInvalidRequest, fmt.Sprintf("Invalid request body: %v", err))
	}
	return raw, nil
}

func lookup(obj map[string]any, keys []string) (any, bool) {
	for _, key := range keys {
		if v, ok := obj[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// JobRunID returns the request id as a string, or "1" when it is absent.
// Numeric ids keep their shortest decimal form.
func JobRunID(raw map[string]any) string {
	switch id := raw[inputIDKey].(type) {
	case nil:
		return adapter.DefaultJobRunID
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case json.Number:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}
