// Package validation turns the loosely structured input of an adapter request
// into a validated parameter set. Parameters are declared once per call site as
// an ordered Spec; validation fails fast with a single adapter error.
package validation

import (
	"errors"
	"fmt"
)

// ErrMalformedSpec marks a Spec that cannot be evaluated. It is raised as a
// panic because it is a programming error, never an input error.
var ErrMalformedSpec = errors.New("validation: malformed parameter spec")

// ParamKind selects how a parameter is looked up.
type ParamKind int

const (
	// KindRequired must be present under its own key.
	KindRequired ParamKind = iota
	// KindOneOf takes the first present alias, left to right.
	KindOneOf
	// KindOptional is copied when present and omitted otherwise. Aliases,
	// when set, are looked up the same way as for KindOneOf.
	KindOptional
)

func (k ParamKind) String() string {
	switch k {
	case KindRequired:
		return "required"
	case KindOneOf:
		return "one_of"
	case KindOptional:
		return "optional"
	default:
		return fmt.Sprintf("param_kind(%d)", int(k))
	}
}

// Param declares one output key of a validated input.
type Param struct {
	Key     string
	Kind    ParamKind
	Aliases []string
}

// Required declares a parameter that must be supplied under key.
func Required(key string) Param {
	return Param{Key: key, Kind: KindRequired}
}

// OneOf declares a required parameter stored under key and read from the
// first alias present in the input.
func OneOf(key string, aliases ...string) Param {
	return Param{Key: key, Kind: KindOneOf, Aliases: aliases}
}

// Optional declares a parameter copied only when the input has it. Without
// aliases the input key is key itself.
func Optional(key string, aliases ...string) Param {
	return Param{Key: key, Kind: KindOptional, Aliases: aliases}
}

// candidates lists the input keys inspected for the parameter, in order.
func (p Param) candidates() []string {
	if p.Kind == KindOneOf || (p.Kind == KindOptional && len(p.Aliases) > 0) {
		return p.Aliases
	}
	return []string{p.Key}
}

// Spec is an ordered parameter declaration.
type Spec []Param

// Check reports the first structural problem of the spec.
func (s Spec) Check() error {
	seen := make(map[string]struct{}, len(s))
	for i, p := range s {
		if p.Key == "" {
			return fmt.Errorf("%w: param %d has no key", ErrMalformedSpec, i)
		}
		if _, dup := seen[p.Key]; dup {
			return fmt.Errorf("%w: duplicate key %q", ErrMalformedSpec, p.Key)
		}
		seen[p.Key] = struct{}{}

		switch p.Kind {
		case KindRequired:
		case KindOneOf, KindOptional:
			if p.Kind == KindOneOf && len(p.Aliases) == 0 {
				return fmt.Errorf("%w: %q has no aliases", ErrMalformedSpec, p.Key)
			}
			for _, alias := range p.Aliases {
				if alias == "" {
					return fmt.Errorf("%w: %q has an empty alias", ErrMalformedSpec, p.Key)
				}
			}
		default:
			return fmt.Errorf("%w: %q has unknown kind %s", ErrMalformedSpec, p.Key, p.Kind)
		}
	}
	return nil
}

// BaseAliases are the input keys price-feed adapters accept for the base asset.
func BaseAliases() []string {
	return []string{"base", "from", "coin"}
}

// QuoteAliases are the input keys price-feed adapters accept for the quote asset.
func QuoteAliases() []string {
	return []string{"quote", "to", "market"}
}

// PriceFeedSpec is the base/quote pair most adapters start from, followed by
// any extra parameters.
func PriceFeedSpec(extra ...Param) Spec {
	spec := Spec{
		OneOf("base", BaseAliases()...),
		OneOf("quote", QuoteAliases()...),
	}
	return append(spec, extra...)
}
