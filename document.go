package settings

import (
	"fmt"
)

// Document field names of a persisted setting.
const (
	fieldName        = "name"
	fieldValue       = "value"
	fieldDefault     = "default_value"
	fieldHidden      = "hidden"
	fieldParent      = "parent"
	fieldDescription = "description"
	fieldValueType   = "value_type"
	fieldLegacyType  = "type"
	fieldMin         = "min_value"
	fieldMax         = "max_value"
	fieldOptions     = "options"
)

// Document returns the persisted form of s.
func (s *Setting) Document() map[string]any {
	doc := map[string]any{
		fieldName:      s.name,
		fieldValue:     s.value,
		fieldDefault:   s.def,
		fieldHidden:    s.hidden,
		fieldParent:    s.parent,
		fieldValueType: s.kind.String(),
	}
	if s.description != "" {
		doc[fieldDescription] = s.description
	}
	switch s.variant {
	case VariantRange:
		if s.min != nil {
			doc[fieldMin] = s.min
		}
		if s.max != nil {
			doc[fieldMax] = s.max
		}
	case VariantOption:
		doc[fieldOptions] = s.Options()
	}
	return doc
}

// FromDocument rebuilds a standalone Setting from its persisted form.
//
// Missing optional fields fall back to defaults: hidden is false, parent is
// empty, the default is the value, and the Kind comes from value_type, the
// older "type" field, or the raw value. The variant is an option setting when
// options is present, a range setting when min_value or max_value is present,
// and plain otherwise. A stored value that no longer satisfies the setting is
// replaced by the default.
func FromDocument(doc map[string]any) (*Setting, error) {
	s, _, err := decodeSetting(doc)
	return s, err
}

// decodeSetting is FromDocument that also reports whether the stored value
// had to be replaced.
func decodeSetting(doc map[string]any) (*Setting, bool, error) {
	name, ok := doc[fieldName].(string)
	if !ok || name == "" {
		return nil, false, fmt.Errorf("%w: missing name in %v", ErrDecode, doc)
	}
	raw := doc[fieldValue]

	s := &Setting{name: name, kind: KindOf(raw)}
	switch {
	case isString(doc[fieldValueType]):
		s.kind = ParseKind(doc[fieldValueType].(string))
	case isString(doc[fieldLegacyType]):
		s.kind = ParseKind(doc[fieldLegacyType].(string))
	}
	if h, err := toBool(doc[fieldHidden]); err == nil {
		s.hidden = h.(bool)
	}
	if p, ok := doc[fieldParent].(string); ok {
		s.parent = p
	}
	if d, ok := doc[fieldDescription].(string); ok {
		s.description = d
	}

	switch {
	case doc[fieldOptions] != nil:
		opts, err := stringList(doc[fieldOptions])
		if err != nil {
			return nil, false, fmt.Errorf("%w: %q options: %w", ErrDecode, name, err)
		}
		s.variant = VariantOption
		s.options = canonicalOptions(s.kind, opts)
	case doc[fieldMin] != nil || doc[fieldMax] != nil:
		s.variant = VariantRange
		s.min, s.max = doc[fieldMin], doc[fieldMax]
		if err := s.checkConstraints(); err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	}

	def, present := doc[fieldDefault]
	if !present {
		def = raw
	}
	if d, err := s.kind.Coerce(def); err == nil {
		s.def = d
	} else {
		s.def, _ = s.kind.Coerce(nil)
	}

	if v, err := s.validate(raw); err == nil {
		s.value = v
		return s, false, nil
	}
	if v, err := s.validate(s.def); err == nil {
		s.value = v
	} else {
		s.value = s.def
	}
	return s, true, nil
}

// canonicalOptions rewrites options of non-string kinds into FormatValue
// form, so lists written as "True" or "1.0" still match. Options that do not
// convert are kept verbatim.
func canonicalOptions(k Kind, opts []string) []string {
	if k == KindString {
		return opts
	}
	for i, o := range opts {
		if v, err := k.Coerce(o); err == nil {
			opts[i] = FormatValue(v)
		}
	}
	return opts
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func stringList(v any) ([]string, error) {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...), nil
	case []any:
		return ToStrings(t), nil
	default:
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
}
