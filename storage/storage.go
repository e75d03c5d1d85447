// Package storage persists a single JSON or YAML object whose top-level keys
// are namespaces ("settings", "notepad", ...) holding arbitrary documents.
//
// The whole file is read lazily on first access and cached for the lifetime of
// the Store. Every SaveObject rewrites the entire file atomically. There is no
// cross-process locking: the last writer wins.
//
// Typical usage:
//
//	st, err := storage.Open(
//	    storage.WithPersistence("notepad"),
//	    storage.WithEnvPrefix("NOTEPAD"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc, err := st.ReadObject("notepad")
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	modellib "github.com/ygrebnov/model"

	"github.com/ygrebnov/settings/streams"
)

// Exported error categories returned by this package. They are used with
// wrapping so callers can detect error classes using errors.Is.
//   - ErrUnsupportedFileType: the file extension is neither .json nor .yaml/.yml.
//   - ErrParse: an existing file cannot be parsed.
//   - ErrFormat: a document cannot be marshaled.
//   - ErrWrite: the file cannot be written.
//   - ErrEnsureDir: parent directories for the file cannot be prepared.
var (
	ErrUnsupportedFileType = errors.New("unsupported storage file type")
	ErrParse               = errors.New("parse storage file")
	ErrFormat              = errors.New("format storage")
	ErrWrite               = errors.New("write to storage file")
	ErrEnsureDir           = errors.New("ensure storage dir")
)

const defaultFileName = "storage.json"

// Store is a file-backed map from namespace key to document.
// A Store without a path keeps everything in memory.
type Store struct {
	mu      sync.Mutex
	path    string
	data    map[string]any
	loaded  bool
	streams streams.Streams
}

// storeConfig is defaulted and validated through github.com/ygrebnov/model.
type storeConfig struct {
	Path      string
	DirName   string
	FileName  string `default:"storage.json" validate:"min(1)"`
	EnvPrefix string
}

type openOptions struct {
	cfg     storeConfig
	persist bool
	streams streams.Streams
}

// Option configures Open.
type Option func(*openOptions)

// WithPath sets an explicit file path. Its extension selects the format.
// Panics if p is empty.
func WithPath(p string) Option {
	return func(o *openOptions) {
		if p == "" {
			panic("storage: WithPath: path cannot be empty")
		}
		o.cfg.Path = p
	}
}

// WithPersistence places the file under a directory named dirName inside the
// OS user config directory (XDG_CONFIG_HOME/<dirName>/<file name>).
// Panics if dirName is empty.
func WithPersistence(dirName string) Option {
	return func(o *openOptions) {
		if dirName == "" {
			panic("storage: WithPersistence: dirName cannot be empty")
		}
		o.persist = true
		o.cfg.DirName = dirName
	}
}

// WithFileName overrides the file name used with WithPersistence
// (default "storage.json"). Panics if name is empty.
func WithFileName(name string) Option {
	return func(o *openOptions) {
		if name == "" {
			panic("storage: WithFileName: name cannot be empty")
		}
		o.cfg.FileName = name
	}
}

// WithEnvPrefix makes ${PREFIX}_STORAGE_PATH, when set, take precedence over
// any other path option. Panics if prefix is empty.
func WithEnvPrefix(prefix string) Option {
	return func(o *openOptions) {
		if prefix == "" {
			panic("storage: WithEnvPrefix: prefix cannot be empty")
		}
		o.cfg.EnvPrefix = prefix
	}
}

// WithStreams wires message streams for "loaded from" notes.
func WithStreams(s streams.Streams) Option {
	return func(o *openOptions) {
		o.streams = s
	}
}

// Open resolves the backing path and returns a Store. The file itself is not
// touched until the first read or write.
func Open(opts ...Option) (*Store, error) {
	o := &openOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if _, err := modellib.New(
		&o.cfg,
		modellib.WithDefaults[storeConfig](),
		modellib.WithValidation[storeConfig](context.Background()),
	); err != nil {
		return nil, err
	}

	path, err := resolvePath(o)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if _, err := formatOf(path); err != nil {
			return nil, err
		}
	}
	return &Store{path: path, streams: o.streams}, nil
}

// resolvePath applies env override, explicit path, then persistence.
func resolvePath(o *openOptions) (string, error) {
	if o.cfg.EnvPrefix != "" {
		if p := os.Getenv(o.cfg.EnvPrefix + "_STORAGE_PATH"); p != "" {
			return p, nil
		}
	}
	if o.cfg.Path != "" {
		return o.cfg.Path, nil
	}
	if !o.persist {
		return "", nil
	}
	// Prefer XDG_CONFIG_HOME explicitly when set, then fall back to os.UserConfigDir.
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		dir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine user config dir: %w", err)
		}
	}
	return filepath.Join(dir, o.cfg.DirName, o.cfg.FileName), nil
}

// Path returns the resolved file path, or "" for a memory-only store.
func (s *Store) Path() string { return s.path }

// load reads the file once. A missing file is an empty store; a corrupt one
// is reported on every call until it is fixed.
func (s *Store) load() error {
	if s.loaded {
		return nil
	}
	data, err := loadFromFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		data = map[string]any{}
		if s.streams != nil {
			streams.Printf(s.streams.Out(), "storage: no file at %s, starting empty", s.path)
		}
	case err != nil:
		return err
	case s.path != "" && s.streams != nil:
		streams.Printf(s.streams.Out(), "storage: loaded from %s", s.path)
	}
	s.data = data
	s.loaded = true
	return nil
}

// ReadObject returns the document stored at key, or nil if absent.
func (s *Store) ReadObject(key string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}
	return s.data[key], nil
}

// Decode reads the document at key into v (a pointer) and reports whether the
// key was present.
func (s *Store) Decode(key string, v any) (bool, error) {
	doc, err := s.ReadObject(key)
	if err != nil || doc == nil {
		return false, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return true, fmt.Errorf("%w %q: %w", ErrFormat, key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

// SaveObject sets key to doc and rewrites the whole file.
func (s *Store) SaveObject(key string, doc any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	prev, had := s.data[key]
	s.data[key] = doc
	if err := s.flush(); err != nil {
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

// DeleteObject removes key and rewrites the file. Deleting an absent key is a no-op.
func (s *Store) DeleteObject(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	prev, had := s.data[key]
	if !had {
		return nil
	}
	delete(s.data, key)
	if err := s.flush(); err != nil {
		s.data[key] = prev
		return err
	}
	return nil
}

// Keys returns the namespaces present in the store, sorted.
func (s *Store) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) flush() error {
	if s.path == "" {
		return nil
	}
	if err := EnsurePath(s.path); err != nil {
		return errors.Join(ErrEnsureDir, err)
	}
	return writeToFile(s.path, s.data)
}
