package config

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

var errEmptyString = errors.New("empty string")

// toInt converts numeric and string values to int, rejecting fractions and
// values that do not fit.
func toInt(value any) (int, error) {
	switch v := value.(type) {
	case string:
		str := strings.TrimSpace(v)
		if str == "" {
			return 0, errEmptyString
		}
		n, err := strconv.ParseInt(str, 10, strconv.IntSize)
		return int(n), err
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n > math.MaxInt || n < math.MinInt {
			return 0, fmt.Errorf("value %d overflows int", n)
		}
		return int(n), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := rv.Uint()
		if n > math.MaxInt {
			return 0, fmt.Errorf("value %d overflows int", n)
		}
		return int(n), nil //#nosec G115 -- bounded above
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}

func floatToInt(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("invalid float value")
	}
	if math.Trunc(f) != f {
		return 0, fmt.Errorf("value %v is not an integer", f)
	}
	if f >= math.MaxInt || f < math.MinInt {
		return 0, fmt.Errorf("value %v overflows int", f)
	}
	return int(f), nil
}

// toFloat64 converts numeric and string values to float64.
func toFloat64(value any) (float64, error) {
	if s, ok := value.(string); ok {
		str := strings.TrimSpace(s)
		if str == "" {
			return 0, errEmptyString
		}
		return strconv.ParseFloat(str, 64)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}

// toBool converts bools, strconv.ParseBool strings and integers (non-zero is true).
func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		str := strings.TrimSpace(v)
		if str == "" {
			return false, errEmptyString
		}
		return strconv.ParseBool(str)
	case float32, float64:
		return false, fmt.Errorf("unsupported type %T", value)
	}
	n, err := toInt(value)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}
