package validation

import (
	"reflect"
	"strings"
)

const (
	trueValue = "true"

	tagJSON     = "json"
	tagAdapter  = "adapter"
	tagValidate = "validate"
)

// TagInfo is the parameter metadata of one struct field.
type TagInfo struct {
	Name        string            // Go field name
	Type        reflect.Type      // Go field type
	Key         string            // Output key (json tag, falling back to the field name)
	Aliases     []string          // Input keys from the adapter tag, in lookup order
	Required    bool              // Whether the parameter must be supplied
	Constraints map[string]string // Constraints from the validate tag
}

// ParseValidationTags extracts parameter metadata from a struct type. Fields
// tagged json:"-" and unexported fields are skipped.
//
//	type priceParams struct {
//		Base   string `json:"base" adapter:"base,from,coin" validate:"required"`
//		Quote  string `json:"quote" adapter:"quote,to,market" validate:"required"`
//		Amount int    `json:"amount,omitempty" validate:"omitempty,min=1"`
//	}
func ParseValidationTags(t reflect.Type) []TagInfo {
	var tags []TagInfo

	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return tags
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		key, omitempty := parseJSONTag(field)
		if key == "-" {
			continue
		}

		info := TagInfo{
			Name:        field.Name,
			Type:        field.Type,
			Key:         key,
			Aliases:     parseAliases(field.Tag.Get(tagAdapter)),
			Constraints: make(map[string]string),
		}
		if validate := field.Tag.Get(tagValidate); validate != "" {
			parseValidateTag(validate, info.Constraints)
		}
		info.Required = isFieldRequired(info.Constraints, omitempty)

		tags = append(tags, info)
	}

	return tags
}

// SpecFor derives a Spec from a tagged struct type. A required field with
// aliases becomes OneOf, any other required field Required, and the rest
// Optional with their aliases.
// Field order is preserved.
func SpecFor(t reflect.Type) Spec {
	tags := ParseValidationTags(t)
	spec := make(Spec, 0, len(tags))
	for i := range tags {
		spec = append(spec, tags[i].Param())
	}
	return spec
}

// Param converts the field metadata into a parameter declaration.
func (t *TagInfo) Param() Param {
	switch {
	case len(t.Aliases) > 0 && t.Required:
		return OneOf(t.Key, t.Aliases...)
	case t.Required:
		return Required(t.Key)
	default:
		return Optional(t.Key, t.Aliases...)
	}
}

func parseJSONTag(field reflect.StructField) (name string, omitempty bool) {
	name = field.Name
	json := field.Tag.Get(tagJSON)
	if json == "" {
		return name, false
	}
	parts := strings.Split(json, ",")
	if parts[0] != "" {
		name = parts[0]
	}
	for _, part := range parts[1:] {
		if strings.TrimSpace(part) == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty
}

func parseAliases(tag string) []string {
	if tag == "" {
		return nil
	}
	var aliases []string
	for _, part := range strings.Split(tag, ",") {
		if part = strings.TrimSpace(part); part != "" {
			aliases = append(aliases, part)
		}
	}
	return aliases
}

// parseValidateTag parses a validate tag into a constraint map
func parseValidateTag(validate string, constraints map[string]string) {
	for _, part := range strings.Split(validate, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if !strings.Contains(part, "=") {
			constraints[part] = trueValue
			continue
		}

		kv := strings.SplitN(part, "=", 2)
		key := strings.TrimSpace(kv[0])
		value := strings.Trim(strings.TrimSpace(kv[1]), `"`)
		constraints[key] = value
	}
}

func isFieldRequired(constraints map[string]string, omitempty bool) bool {
	if _, skip := constraints["omitempty"]; skip {
		return false
	}
	if omitempty {
		return false
	}
	_, required := constraints["required"]
	return required
}
