package logger

import (
	"net/url"
	"reflect"
	"strings"
)

const (
	// DefaultMaskValue replaces sensitive values
	DefaultMaskValue = "***"
	// DefaultMaxDepth bounds recursion into nested maps and slices
	DefaultMaxDepth = 8
)

// FilterConfig defines which field names are sensitive and how they are masked.
type FilterConfig struct {
	// SensitiveFields are matched case-insensitively as substrings of field names
	SensitiveFields []string
	// MaskValue replaces sensitive data (default: "***")
	MaskValue string
}

// DefaultFilterConfig covers the credentials adapters commonly carry.
func DefaultFilterConfig() *FilterConfig {
	return &FilterConfig{
		SensitiveFields: []string{
			"password", "passwd",
			"secret", "api_key", "api-key", "apikey", "access_key",
			"token", "authorization",
			"credential", "private_key",
		},
		MaskValue: DefaultMaskValue,
	}
}

// SensitiveDataFilter masks sensitive values before they reach the log writer.
type SensitiveDataFilter struct {
	config *FilterConfig
}

// NewSensitiveDataFilter creates a filter; a nil config uses the defaults.
func NewSensitiveDataFilter(config *FilterConfig) *SensitiveDataFilter {
	if config == nil {
		config = DefaultFilterConfig()
	}
	if config.MaskValue == "" {
		config.MaskValue = DefaultMaskValue
	}
	return &SensitiveDataFilter{config: config}
}

// FilterString masks value when key is sensitive. URL values also get their
// password and sensitive query parameters masked regardless of key.
func (f *SensitiveDataFilter) FilterString(key, value string) string {
	if f.isSensitiveField(key) {
		return f.maskString(value)
	}
	if isURL(value) {
		return f.maskURL(value)
	}
	return value
}

// FilterValue masks sensitive entries of value, descending into maps and slices.
func (f *SensitiveDataFilter) FilterValue(key string, value any) any {
	return f.filterValue(key, value, DefaultMaxDepth)
}

// FilterFields filters a map of fields for sensitive data
func (f *SensitiveDataFilter) FilterFields(fields map[string]any) map[string]any {
	filtered := make(map[string]any, len(fields))
	for key, value := range fields {
		filtered[key] = f.FilterValue(key, value)
	}
	return filtered
}

func (f *SensitiveDataFilter) filterValue(key string, value any, depth int) any {
	if f.isSensitiveField(key) {
		if s, ok := value.(string); ok {
			return f.maskString(s)
		}
		return f.config.MaskValue
	}
	if value == nil || depth <= 0 {
		return value
	}

	switch v := value.(type) {
	case string:
		if isURL(v) {
			return f.maskURL(v)
		}
		return v
	case map[string]any:
		filtered := make(map[string]any, len(v))
		for k, inner := range v {
			filtered[k] = f.filterValue(k, inner, depth-1)
		}
		return filtered
	case map[string]string:
		filtered := make(map[string]string, len(v))
		for k, inner := range v {
			filtered[k] = f.FilterString(k, inner)
		}
		return filtered
	case []any:
		filtered := make([]any, len(v))
		for i, inner := range v {
			filtered[i] = f.filterValue(key, inner, depth-1)
		}
		return filtered
	}

	// http.Header and similar map[string][]string shapes
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String &&
		rv.Type().Elem() == reflect.TypeOf([]string(nil)) {
		filtered := make(map[string][]string, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			values := iter.Value().Interface().([]string)
			out := make([]string, len(values))
			for i, s := range values {
				out[i] = f.FilterString(k, s)
			}
			filtered[k] = out
		}
		return filtered
	}

	return value
}

// isSensitiveField checks if a field name is considered sensitive
func (f *SensitiveDataFilter) isSensitiveField(fieldName string) bool {
	lowerFieldName := strings.ToLower(fieldName)
	for _, sensitiveField := range f.config.SensitiveFields {
		if strings.Contains(lowerFieldName, strings.ToLower(sensitiveField)) {
			return true
		}
	}
	return false
}

func (f *SensitiveDataFilter) maskString(value string) string {
	if value == "" {
		return value
	}
	if isURL(value) {
		return f.maskURL(value)
	}
	return f.config.MaskValue
}

func isURL(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}

// maskURL masks the userinfo password and any sensitive query parameter while
// keeping the rest of the URL readable.
func (f *SensitiveDataFilter) maskURL(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return f.config.MaskValue
	}

	changed := false
	if parsed.User != nil {
		if _, hasPassword := parsed.User.Password(); hasPassword {
			parsed.User = url.UserPassword(parsed.User.Username(), f.config.MaskValue)
			changed = true
		}
	}

	if parsed.RawQuery != "" {
		query := parsed.Query()
		for k := range query {
			if f.isSensitiveField(k) {
				query[k] = []string{f.config.MaskValue}
				changed = true
			}
		}
		if changed {
			parsed.RawQuery = query.Encode()
		}
	}

	if !changed {
		return urlStr
	}
	// The mask would otherwise be percent-encoded in userinfo and query.
	masked, err := url.PathUnescape(parsed.String())
	if err != nil {
		return parsed.String()
	}
	return masked
}
