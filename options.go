package settings

import (
	"context"

	modellib "github.com/ygrebnov/model"

	"github.com/ygrebnov/settings/streams"
)

// managerConfig is defaulted and validated through github.com/ygrebnov/model.
type managerConfig struct {
	// Namespace is the top-level storage key holding the registry.
	Namespace string `default:"settings" validate:"min(1)"`
	// MaxNotifyDepth bounds writes nested inside change observers.
	MaxNotifyDepth int `default:"8" validate:"min(1)"`
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithNamespace stores the registry under key ns instead of "settings".
// Panics if ns is empty.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns == "" {
			panic("settings: WithNamespace: ns cannot be empty")
		}
		m.cfg.Namespace = ns
	}
}

// WithStrict disables auto-vivification: Get and SetValue on an unknown name
// return ErrNotFound instead of creating the setting.
func WithStrict() Option {
	return func(m *Manager) { m.strict = true }
}

// WithMaxNotifyDepth sets how deeply observers may nest writes before
// ErrRecursion is returned (default 8). Zero keeps the default.
func WithMaxNotifyDepth(n int) Option {
	return func(m *Manager) { m.cfg.MaxNotifyDepth = n }
}

// WithStreams wires message streams for load notes and decode warnings.
func WithStreams(s streams.Streams) Option {
	return func(m *Manager) { m.streams = s }
}

func (c *managerConfig) apply() error {
	_, err := modellib.New(
		c,
		modellib.WithDefaults[managerConfig](),
		modellib.WithValidation[managerConfig](context.Background()),
	)
	return err
}
