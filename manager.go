package settings

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ygrebnov/settings/streams"
)

// Store is the persistence contract a Manager needs. *storage.Store satisfies it.
type Store interface {
	ReadObject(key string) (any, error)
	SaveObject(key string, doc any) error
}

// Manager is the registry of settings. It persists the whole registry through
// its Store after every mutation.
//
// A Manager is meant to be driven from a single goroutine (typically the UI
// event loop) and is not safe for concurrent use.
type Manager struct {
	store   Store
	cfg     managerConfig
	strict  bool
	streams streams.Streams

	settings map[string]*Setting
	order    []string

	observers []observer
	nextID    uint64
	depth     int
}

// New builds a Manager and loads the registry from store. A store that
// cannot be read or holds a malformed registry is an error.
func New(store Store, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil store", ErrInvalidConfig)
	}
	m := &Manager{store: store, settings: map[string]*Setting{}}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.cfg.apply(); err != nil {
		return nil, err
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) load() error {
	raw, err := m.store.ReadObject(m.cfg.Namespace)
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	docs, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: namespace %q holds %T, want an object", ErrDecode, m.cfg.Namespace, raw)
	}

	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		doc, ok := docs[name].(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %q holds %T, want an object", ErrDecode, name, docs[name])
		}
		if _, ok := doc[fieldName].(string); !ok {
			doc = withName(doc, name)
		}
		s, replaced, err := decodeSetting(doc)
		if err != nil {
			return err
		}
		if replaced {
			m.warnf("settings: warning: stored value %v of %q is invalid, using %v", doc[fieldValue], name, s.value)
		}
		s.name = name
		m.register(s)
	}
	if m.streams != nil {
		streams.Printf(m.streams.Out(), "settings: loaded %d settings from %q", len(names), m.cfg.Namespace)
	}
	return nil
}

func withName(doc map[string]any, name string) map[string]any {
	out := make(map[string]any, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out[fieldName] = name
	return out
}

func (m *Manager) register(s *Setting) {
	s.owner = m
	if _, ok := m.settings[s.name]; !ok {
		m.order = append(m.order, s.name)
	}
	m.settings[s.name] = s
}

func (m *Manager) unregister(name string) {
	if s, ok := m.settings[name]; ok {
		s.owner = nil
		delete(m.settings, name)
	}
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i:i], m.order[i+1:]...)
			break
		}
	}
}

func (m *Manager) save() error {
	docs := make(map[string]any, len(m.settings))
	for name, s := range m.settings {
		docs[name] = s.Document()
	}
	return m.store.SaveObject(m.cfg.Namespace, docs)
}

func (m *Manager) warnf(format string, args ...any) {
	if m.streams != nil {
		streams.Printf(m.streams.ErrOut(), format, args...)
	}
}

// Create declares a plain setting. If name exists its default, hidden flag,
// parent and description are updated and its live value is kept; otherwise
// it is created holding defaultValue. The registry is persisted either way.
func (m *Manager) Create(name string, defaultValue any, opts ...SettingOption) (*Setting, error) {
	return m.declare(name, defaultValue, opts, nil)
}

// CreateRange declares a range setting clamped into [min, max].
func (m *Manager) CreateRange(name string, defaultValue, min, max any, opts ...SettingOption) (*Setting, error) {
	if min == nil || max == nil {
		return nil, fmt.Errorf("%w: %q: range needs both bounds", ErrInvalidConfig, name)
	}
	return m.declare(name, defaultValue, opts, WithRange(min, max))
}

// CreateOption declares an option setting restricted to options. Use
// ToStrings for non-string choices.
func (m *Manager) CreateOption(name string, defaultValue any, options []string, opts ...SettingOption) (*Setting, error) {
	return m.declare(name, defaultValue, opts, WithOptions(options))
}

func (m *Manager) declare(name string, def any, opts []SettingOption, variant SettingOption) (*Setting, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidConfig)
	}
	var cfg settingConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if variant != nil {
		variant(&cfg)
	} else {
		cfg.variant, cfg.min, cfg.max, cfg.options = VariantPlain, nil, nil, nil
	}
	cfg.def, cfg.hasDef = def, true

	s, exists := m.settings[name]
	if !exists {
		created, err := newFromConfig(name, def, cfg)
		if err != nil {
			return nil, err
		}
		m.register(created)
		if err := m.save(); err != nil {
			m.unregister(name)
			return nil, err
		}
		return created, nil
	}

	prev := *s
	if err := m.redeclare(s, cfg); err != nil {
		return nil, err
	}
	if err := m.save(); err != nil {
		*s = prev
		return nil, err
	}
	return s, nil
}

func newFromConfig(name string, value any, cfg settingConfig) (*Setting, error) {
	opts := []SettingOption{func(c *settingConfig) { *c = cfg }}
	return NewSetting(name, value, opts...)
}

// redeclare updates constraints in place. The live value is kept; only a
// change of Kind converts it, falling back to the default if it does not convert.
func (m *Manager) redeclare(s *Setting, cfg settingConfig) error {
	next := *s
	next.kind = KindOf(cfg.def)
	if cfg.kind != nil {
		next.kind = *cfg.kind
	}
	next.hidden = cfg.hidden
	next.parent = cfg.parent
	next.description = cfg.description
	next.variant = cfg.variant
	next.min, next.max = cfg.min, cfg.max
	next.options = cfg.options

	if err := next.checkConstraints(); err != nil {
		return err
	}
	def, err := next.checkDefault(cfg.def)
	if err != nil {
		return err
	}
	next.def = def

	if next.kind != s.kind {
		v, err := next.kind.Coerce(s.value)
		if err != nil {
			m.warnf("settings: warning: %q cannot convert %v to %s, using default %v", s.name, s.value, next.kind, def)
			v = def
		}
		next.value = v
	}
	*s = next
	return nil
}

// Lookup returns the named setting without creating it.
func (m *Manager) Lookup(name string) (*Setting, bool) {
	s, ok := m.settings[name]
	return s, ok
}

// Get returns the named setting. An unknown name is created holding
// defaultValue and persisted, unless the Manager is strict.
func (m *Manager) Get(name string, defaultValue any) (*Setting, error) {
	if s, ok := m.settings[name]; ok {
		return s, nil
	}
	s, err := m.vivify(name, defaultValue)
	if err != nil {
		return nil, err
	}
	if err := m.save(); err != nil {
		m.unregister(name)
		return nil, err
	}
	return s, nil
}

func (m *Manager) vivify(name string, value any) (*Setting, error) {
	if m.strict {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidConfig)
	}
	s, err := NewSetting(name, value)
	if err != nil {
		return nil, err
	}
	m.register(s)
	return s, nil
}

// GetInt returns the named value as an int.
func (m *Manager) GetInt(name string) (int, error) {
	s, err := m.Get(name, nil)
	if err != nil {
		return 0, err
	}
	return s.Int()
}

// GetFloat returns the named value as a float64.
func (m *Manager) GetFloat(name string) (float64, error) {
	s, err := m.Get(name, nil)
	if err != nil {
		return 0, err
	}
	return s.Float()
}

// GetBool returns the named value as a bool.
func (m *Manager) GetBool(name string) (bool, error) {
	s, err := m.Get(name, nil)
	if err != nil {
		return false, err
	}
	return s.Bool()
}

// GetString returns the named value in its canonical string form.
func (m *Manager) GetString(name string) (string, error) {
	s, err := m.Get(name, nil)
	if err != nil {
		return "", err
	}
	return s.String(), nil
}

// SetValue writes value to the named setting through its validation, then
// persists the registry. An unknown name is created holding value, unless
// the Manager is strict. Nothing is persisted when validation fails.
func (m *Manager) SetValue(name string, value any) error {
	if s, ok := m.settings[name]; ok {
		return m.write(s, value)
	}
	s, err := m.vivify(name, value)
	if err != nil {
		return err
	}
	if err := m.save(); err != nil {
		m.unregister(name)
		return err
	}
	m.notify(s, Change{Name: name, New: s.value})
	return nil
}

// write commits v to s, persists, and notifies. A failed save restores the
// previous value.
func (m *Manager) write(s *Setting, v any) error {
	if m.depth >= m.cfg.MaxNotifyDepth {
		return fmt.Errorf("%w: writing %q", ErrRecursion, s.name)
	}
	old, err := s.assign(v)
	if err != nil {
		return err
	}
	if err := m.save(); err != nil {
		s.value = old
		return err
	}
	m.notify(s, Change{Name: s.name, Old: old, New: s.value})
	return nil
}

// notify runs the setting's observers, then the registry-wide ones.
func (m *Manager) notify(s *Setting, c Change) {
	m.depth++
	defer func() { m.depth-- }()
	s.notify(c)
	for _, o := range append([]observer(nil), m.observers...) {
		o.fn(c)
	}
}

// Subscribe registers fn to run after every committed write to any setting,
// after the setting's own observers.
func (m *Manager) Subscribe(fn func(Change)) (cancel func()) {
	if fn == nil {
		panic("settings: Subscribe: fn cannot be nil")
	}
	m.nextID++
	id := m.nextID
	m.observers = append(m.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range m.observers {
			if o.id == id {
				m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
				return
			}
		}
	}
}

// Reset restores the named setting to its default.
func (m *Manager) Reset(name string) error {
	s, ok := m.settings[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return s.Reset()
}

// ResetAll restores every setting to its default, in registry order.
func (m *Manager) ResetAll() error {
	var errs []error
	for _, name := range m.Names() {
		if err := m.settings[name].Reset(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Clear removes every setting and persists the empty registry. Handles
// obtained earlier become standalone settings.
func (m *Manager) Clear() error {
	prevSettings, prevOrder := m.settings, m.order
	m.settings, m.order = map[string]*Setting{}, nil
	if err := m.save(); err != nil {
		m.settings, m.order = prevSettings, prevOrder
		return err
	}
	for _, s := range prevSettings {
		s.owner = nil
	}
	return nil
}

// Names returns setting names in registry order: loaded settings sorted by
// name, then settings created in this process in creation order.
func (m *Manager) Names() []string {
	return append([]string(nil), m.order...)
}

// Settings returns all settings in registry order.
func (m *Manager) Settings() []*Setting {
	out := make([]*Setting, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.settings[name])
	}
	return out
}

// Visible returns the settings that are not hidden, in registry order.
func (m *Manager) Visible() []*Setting {
	var out []*Setting
	for _, s := range m.Settings() {
		if !s.hidden {
			out = append(out, s)
		}
	}
	return out
}

// Parents returns the distinct parent labels in first-seen registry order.
// The empty label (ungrouped) is included when any setting has it.
func (m *Manager) Parents() []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range m.Settings() {
		if !seen[s.parent] {
			seen[s.parent] = true
			out = append(out, s.parent)
		}
	}
	return out
}

// Len returns the number of registered settings.
func (m *Manager) Len() int { return len(m.settings) }
