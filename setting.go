package settings

import (
	"errors"
	"fmt"
	"math"
)

// Variant discriminates the constraint attached to a Setting.
type Variant int

const (
	// VariantPlain accepts any value coercible to the setting's Kind.
	VariantPlain Variant = iota
	// VariantRange clamps numeric values into [min, max].
	VariantRange
	// VariantOption accepts only values whose string form is one of the options.
	VariantOption
)

func (v Variant) String() string {
	switch v {
	case VariantRange:
		return "range"
	case VariantOption:
		return "option"
	default:
		return "plain"
	}
}

// Change is delivered to observers after a write has been committed.
type Change struct {
	Name string
	Old  any
	New  any
}

type observer struct {
	id uint64
	fn func(Change)
}

// Setting is a named, typed configuration entry. Settings obtained from a
// Manager persist every successful write through it; standalone settings
// built with NewSetting or FromDocument only hold the value in memory.
type Setting struct {
	name        string
	value       any
	kind        Kind
	def         any
	hidden      bool
	parent      string
	description string

	variant Variant
	// min/max hold the bounds as declared; nil means unbounded on that side.
	min, max any
	options  []string

	observers []observer
	nextID    uint64
	// depth counts observer-nested writes of a standalone setting.
	depth int

	owner *Manager
}

// standaloneMaxNotifyDepth bounds observer-nested writes of a setting that
// has no Manager, matching the Manager's default.
const standaloneMaxNotifyDepth = 8

type settingConfig struct {
	kind        *Kind
	def         any
	hasDef      bool
	hidden      bool
	parent      string
	description string
	variant     Variant
	min, max    any
	options     []string
}

// SettingOption configures NewSetting.
type SettingOption func(*settingConfig)

// WithKind fixes the Kind instead of inferring it from the initial value.
func WithKind(k Kind) SettingOption {
	return func(c *settingConfig) { c.kind = &k }
}

// WithValueType fixes the Kind from a free-form type description (see ParseKind).
func WithValueType(s string) SettingOption {
	return WithKind(ParseKind(s))
}

// WithDefault sets the value restored by Reset. Without it the initial value is the default.
func WithDefault(v any) SettingOption {
	return func(c *settingConfig) {
		c.def = v
		c.hasDef = true
	}
}

func WithHidden(hidden bool) SettingOption {
	return func(c *settingConfig) { c.hidden = hidden }
}

func WithParent(parent string) SettingOption {
	return func(c *settingConfig) { c.parent = parent }
}

func WithDescription(d string) SettingOption {
	return func(c *settingConfig) { c.description = d }
}

// WithRange makes the setting a range setting. Either bound may be nil.
func WithRange(min, max any) SettingOption {
	return func(c *settingConfig) {
		c.variant = VariantRange
		c.min, c.max = min, max
	}
}

// WithOptions makes the setting an option setting.
func WithOptions(options []string) SettingOption {
	return func(c *settingConfig) {
		c.variant = VariantOption
		c.options = append([]string(nil), options...)
	}
}

// ToStrings converts items to their canonical string forms, e.g. for
// WithOptions or Manager.CreateOption with numeric choices.
func ToStrings[T any](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = FormatValue(it)
	}
	return out
}

// NewSetting builds a standalone Setting holding value.
func NewSetting(name string, value any, opts ...SettingOption) (*Setting, error) {
	var cfg settingConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.hasDef {
		cfg.def = value
	}
	kind := KindOf(value)
	if cfg.kind != nil {
		kind = *cfg.kind
	}

	s := &Setting{
		name:        name,
		kind:        kind,
		hidden:      cfg.hidden,
		parent:      cfg.parent,
		description: cfg.description,
		variant:     cfg.variant,
		min:         cfg.min,
		max:         cfg.max,
		options:     cfg.options,
	}
	if err := s.checkConstraints(); err != nil {
		return nil, err
	}
	def, err := s.checkDefault(cfg.def)
	if err != nil {
		return nil, err
	}
	s.def = def

	v, err := s.validate(value)
	if err != nil {
		return nil, err
	}
	s.value = v
	return s, nil
}

func (s *Setting) Name() string        { return s.name }
func (s *Setting) Kind() Kind          { return s.kind }
func (s *Setting) Variant() Variant    { return s.variant }
func (s *Setting) Default() any        { return s.def }
func (s *Setting) Hidden() bool        { return s.hidden }
func (s *Setting) Parent() string      { return s.parent }
func (s *Setting) Description() string { return s.description }

// Value returns the current value, always of the Go type matching Kind.
func (s *Setting) Value() any { return s.value }

// Bounds returns the range bounds as declared; nil means unbounded.
func (s *Setting) Bounds() (min, max any) { return s.min, s.max }

// Options returns a copy of the allowed values of an option setting.
func (s *Setting) Options() []string { return append([]string(nil), s.options...) }

// String returns the canonical string form of the current value.
func (s *Setting) String() string { return FormatValue(s.value) }

// Int returns the current value coerced to int.
func (s *Setting) Int() (int, error) {
	v, err := toInt(s.value)
	if err != nil {
		return 0, s.named(err)
	}
	return v.(int), nil
}

// Float returns the current value coerced to float64.
func (s *Setting) Float() (float64, error) {
	v, err := toFloat(s.value)
	if err != nil {
		return 0, s.named(err)
	}
	return v.(float64), nil
}

// Bool returns the current value coerced to bool.
func (s *Setting) Bool() (bool, error) {
	v, err := toBool(s.value)
	if err != nil {
		return false, s.named(err)
	}
	return v.(bool), nil
}

// Set validates v and stores it. On failure the value is left unchanged and
// the error matches ErrValidation (or, for managed settings, the persistence error).
func (s *Setting) Set(v any) error {
	if s.owner != nil {
		return s.owner.write(s, v)
	}
	if s.depth >= standaloneMaxNotifyDepth {
		return fmt.Errorf("%w: writing %q", ErrRecursion, s.name)
	}
	old, err := s.assign(v)
	if err != nil {
		return err
	}
	s.depth++
	defer func() { s.depth-- }()
	s.notify(Change{Name: s.name, Old: old, New: s.value})
	return nil
}

// Reset writes the default value through Set.
func (s *Setting) Reset() error { return s.Set(s.def) }

// Subscribe registers fn to run synchronously after every committed write.
// The returned function removes the subscription.
func (s *Setting) Subscribe(fn func(Change)) (cancel func()) {
	if fn == nil {
		panic("settings: Subscribe: fn cannot be nil")
	}
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// assign validates and stores v, returning the previous value.
func (s *Setting) assign(v any) (any, error) {
	nv, err := s.validate(v)
	if err != nil {
		return nil, err
	}
	old := s.value
	s.value = nv
	return old, nil
}

// notify runs the setting's observers on a snapshot, so observers may
// unsubscribe themselves.
func (s *Setting) notify(c Change) {
	for _, o := range append([]observer(nil), s.observers...) {
		o.fn(c)
	}
}

// validate applies the variant constraint, then coerces to Kind.
func (s *Setting) validate(v any) (any, error) {
	switch s.variant {
	case VariantRange:
		n, ok := asNumber(v)
		if !ok || math.IsNaN(n) {
			return nil, invalid(s.name, v, "not a number")
		}
		if s.min != nil {
			if lo, _ := asNumber(s.min); n < lo {
				v = s.min
			}
		}
		if s.max != nil {
			if hi, _ := asNumber(s.max); n > hi {
				v = s.max
			}
		}
	case VariantOption:
		if !s.hasOption(FormatValue(v)) {
			return nil, invalid(s.name, v, "not one of %q", s.options)
		}
	}
	nv, err := s.kind.Coerce(v)
	if err != nil {
		return nil, s.named(err)
	}
	return nv, nil
}

func (s *Setting) hasOption(o string) bool {
	for _, opt := range s.options {
		if opt == o {
			return true
		}
	}
	return false
}

// checkConstraints rejects bounds that are not numbers or are inverted.
func (s *Setting) checkConstraints() error {
	if s.variant != VariantRange {
		return nil
	}
	lo, loOK := asNumber(s.min)
	hi, hiOK := asNumber(s.max)
	if s.min != nil && !loOK || s.max != nil && !hiOK {
		return fmt.Errorf("%w: %q: bounds must be numbers, got [%v, %v]", ErrInvalidConfig, s.name, s.min, s.max)
	}
	if s.min != nil && math.IsNaN(lo) || s.max != nil && math.IsNaN(hi) {
		return fmt.Errorf("%w: %q: NaN bound", ErrInvalidConfig, s.name)
	}
	if s.min != nil && s.max != nil && lo > hi {
		return fmt.Errorf("%w: %q: min(%v) > max(%v)", ErrInvalidConfig, s.name, s.min, s.max)
	}
	// a clamped value is coerced afterwards, so int bounds must survive truncation
	if s.kind == KindInt && (s.min != nil && !wholeNumber(lo) || s.max != nil && !wholeNumber(hi)) {
		return fmt.Errorf("%w: %q: int range needs whole-number bounds, got [%v, %v]", ErrInvalidConfig, s.name, s.min, s.max)
	}
	return nil
}

// checkDefault coerces def and requires it to satisfy an option constraint.
func (s *Setting) checkDefault(def any) (any, error) {
	if s.variant == VariantOption && !s.hasOption(FormatValue(def)) {
		return nil, fmt.Errorf("%w: %q: default %v not one of %q", ErrInvalidConfig, s.name, def, s.options)
	}
	if s.variant == VariantRange {
		if _, ok := asNumber(def); !ok {
			return nil, fmt.Errorf("%w: %q: range default %v is not a number", ErrInvalidConfig, s.name, def)
		}
	}
	d, err := s.kind.Coerce(def)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: default: %w", ErrInvalidConfig, s.name, err)
	}
	return d, nil
}

func wholeNumber(f float64) bool {
	return !math.IsInf(f, 0) && f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64
}

func (s *Setting) named(err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) && ve.Name == "" {
		ve.Name = s.name
	}
	return err
}
