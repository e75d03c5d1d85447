package settings

import (
	"errors"
	"fmt"
)

// Exported error categories returned by this package. They are used with
// wrapping so callers can detect error classes using errors.Is/As.
//   - ErrValidation: a value cannot be coerced to the setting's kind, is not one
//     of its options, or is not numeric for a range setting.
//   - ErrInvalidConfig: a declaration is inconsistent (min > max, default not
//     among options, range default not numeric).
//   - ErrNotFound: the name is unknown and the Manager runs in strict mode.
//   - ErrRecursion: change observers nested writes deeper than the Manager allows.
//   - ErrDecode: a persisted setting document has an unusable shape.
var (
	ErrValidation    = errors.New("settings: invalid value")
	ErrInvalidConfig = errors.New("settings: invalid config")
	ErrNotFound      = errors.New("settings: not found")
	ErrRecursion     = errors.New("settings: change notification recursion limit reached")
	ErrDecode        = errors.New("settings: decode setting")
)

// ValidationError describes a rejected write. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Name   string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%v: %v: %s", ErrValidation, e.Value, e.Reason)
	}
	return fmt.Sprintf("%v: %s=%v: %s", ErrValidation, e.Name, e.Value, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(name string, v any, format string, args ...any) error {
	return &ValidationError{Name: name, Value: v, Reason: fmt.Sprintf(format, args...)}
}
