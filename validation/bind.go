package validation

import (
	"errors"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"github.com/gaborage/adapter-bricks/adapter"
)

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

func getStructValidator() *validator.Validate {
	structValidatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// Report fields by the key the caller sent, not the Go name.
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _ := parseJSONTag(field)
			if name == "-" {
				return ""
			}
			return name
		})
		structValidator = v
	})
	return structValidator
}

// Bind validates raw against the Spec derived from target's tags, decodes the
// validated parameters into target and then applies the validate tag
// constraints. target must be a pointer to a struct.
//
// The returned Input carries the correlation id even when decoding or
// constraint checks fail after the presence checks passed.
func Bind(raw map[string]any, target any) (*Input, error) {
	t := reflect.TypeOf(target)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		panic(errors.Join(ErrMalformedSpec, errors.New("bind target must be a pointer to a struct")))
	}

	tags := ParseValidationTags(t)
	spec := make(Spec, 0, len(tags))
	for i := range tags {
		spec = append(spec, tags[i].Param())
	}

	in, err := Validate(raw, spec)
	if err != nil {
		return nil, err
	}

	for i := range tags {
		value, ok := in.Data[tags[i].Key]
		if !ok {
			continue
		}
		if err := decodeField(tags[i].Key, value, target); err != nil {
			return in, adapter.InvalidParameter(tags[i].Key, "expected "+tags[i].Type.String())
		}
	}

	if err := getStructValidator().Struct(target); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return in, adapter.InvalidParameter(fieldErrs[0].Field(), constraintReason(fieldErrs[0]))
		}
		return in, adapter.New(adapter.KindInvalidParameter, adapter.MsgInvalidParam+err.Error())
	}

	return in, nil
}

// decodeField sets the single field named key. Fields already set are left
// untouched.
func decodeField(key string, value any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          tagJSON,
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(map[string]any{key: value})
}

func constraintReason(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}
