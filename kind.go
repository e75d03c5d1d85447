package settings

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the type every value of a setting is coerced to.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "string"
	}
}

// ParseKind maps a free-form type description to a Kind by substring match.
// "int", "float" and "bool" are tried in that order; anything else is
// KindString, so "<class 'int'>" and "int" both yield KindInt.
func ParseKind(s string) Kind {
	switch {
	case strings.Contains(s, "int"):
		return KindInt
	case strings.Contains(s, "float"):
		return KindFloat
	case strings.Contains(s, "bool"):
		return KindBool
	default:
		return KindString
	}
}

// KindOf infers the Kind of a Go value. nil and unknown types are KindString.
func KindOf(v any) Kind {
	switch t := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInt
	case float32, float64:
		return KindFloat
	case bool:
		return KindBool
	case json.Number:
		if _, err := t.Int64(); err == nil {
			return KindInt
		}
		return KindFloat
	default:
		return KindString
	}
}

// Coerce converts v to k. Int values are int, Float values float64, Bool
// values bool and String values string.
func (k Kind) Coerce(v any) (any, error) {
	switch k {
	case KindInt:
		return toInt(v)
	case KindFloat:
		return toFloat(v)
	case KindBool:
		return toBool(v)
	default:
		return FormatValue(v), nil
	}
}

// FormatValue returns the canonical string form of v. Option membership is
// decided on this form.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case fmt.Stringer:
		return t.String()
	}
	if n, ok := asInt64(v); ok {
		return strconv.FormatInt(n, 10)
	}
	if u, ok := v.(uint64); ok {
		return strconv.FormatUint(u, 10)
	}
	return fmt.Sprint(v)
}

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return int64(t), uint64(t) <= math.MaxInt64
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		return int64(t), t <= math.MaxInt64
	}
	return 0, false
}

// asNumber reports the numeric value of v, parsing strings. Booleans are not numbers.
func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	if n, ok := asInt64(v); ok {
		return float64(n), true
	}
	if u, ok := v.(uint64); ok {
		return float64(u), true
	}
	return 0, false
}

func toInt(v any) (any, error) {
	if v == nil {
		return 0, nil
	}
	if n, ok := asInt64(v); ok {
		if n < math.MinInt || n > math.MaxInt {
			return nil, invalid("", v, "out of int range")
		}
		return int(n), nil
	}
	switch t := v.(type) {
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.ParseInt(s, 10, 0); err == nil {
			return int(n), nil
		}
	}
	f, ok := asNumber(v)
	if !ok {
		return nil, invalid("", v, "not an integer")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < math.MinInt || f >= math.MaxInt {
		return nil, invalid("", v, "out of int range")
	}
	return int(f), nil
}

func toFloat(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return 0.0, nil
	case bool:
		if t {
			return 1.0, nil
		}
		return 0.0, nil
	}
	f, ok := asNumber(v)
	if !ok {
		return nil, invalid("", v, "not a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, invalid("", v, "not a finite number")
	}
	return f, nil
}

func toBool(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	case string:
		if b, ok := parseBoolLoose(t); ok {
			return b, nil
		}
		return nil, invalid("", v, "not a boolean")
	}
	f, ok := asNumber(v)
	if !ok {
		return nil, invalid("", v, "not a boolean")
	}
	return f != 0, nil
}

func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes", "y", "on":
		return true, true
	case "false", "f", "0", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
