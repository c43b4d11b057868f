package validation

import (
	"fmt"
	"maps"

	"github.com/go-viper/mapstructure/v2"
)

// Input is a validated adapter request. Data holds exactly the keys declared
// by the spec that produced it.
type Input struct {
	ID   string         `json:"id"`
	Data map[string]any `json:"data"`
}

// Get returns a validated parameter.
func (in *Input) Get(key string) (any, bool) {
	v, ok := in.Data[key]
	return v, ok
}

// String returns a validated parameter rendered as a string, or "" when absent.
func (in *Input) String(key string) string {
	v, ok := in.Data[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Clone returns a copy whose Data can be modified independently.
func (in *Input) Clone() *Input {
	return &Input{ID: in.ID, Data: maps.Clone(in.Data)}
}

// Decode copies the validated parameters into target, a pointer to a struct
// tagged with json names. Scalars are converted loosely ("42" into an int).
func (in *Input) Decode(target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(in.Data)
}
