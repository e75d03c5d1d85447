package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	ErrInaccessiblePath        = errors.New("inaccessible path")
	ErrCannotCreateDirectories = errors.New("cannot create directories")
)

type format int

const (
	formatJSON format = iota
	formatYAML
)

func formatOf(path string) (format, error) {
	switch ext := filepath.Ext(path); ext {
	case ".json":
		return formatJSON, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
}

// EnsurePath ensures the directories for a file path exist and the path
// does not already exist as a directory.
func EnsurePath(p string) error {
	info, err := os.Stat(p)
	switch {
	case err == nil:
		if info.IsDir() {
			return ErrInaccessiblePath
		}
		return nil
	case !errors.Is(err, os.ErrNotExist):
		return ErrInaccessiblePath
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return ErrCannotCreateDirectories
	}
	return nil
}

// loadFromFile returns the top-level object of the file at path. An empty
// path yields an empty object; a missing file returns an error wrapping
// os.ErrNotExist. An empty file is treated as an empty object.
func loadFromFile(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	f, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	var out map[string]any
	switch f {
	case formatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err = dec.Decode(&out); err == nil {
			err = expectEOF(dec)
		}
		if err == nil {
			out, _ = normalizeNumbers(out).(map[string]any)
		}
	default:
		err = yaml.Unmarshal(data, &out)
	}
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrParse, path, err)
	}
	if out == nil {
		// "null" document
		out = map[string]any{}
	}
	return out, nil
}

// expectEOF rejects anything but whitespace after the top-level value.
func expectEOF(dec *json.Decoder) error {
	tok, err := dec.Token()
	switch {
	case err == io.EOF:
		return nil
	case err != nil:
		return fmt.Errorf("after top-level value: %w", err)
	default:
		return fmt.Errorf("unexpected %v after top-level value", tok)
	}
}

// normalizeNumbers replaces json.Number with int when the number is integral
// and fits, float64 otherwise, so JSON and YAML stores yield the same shapes.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
		return t
	case json.Number:
		if n, err := t.Int64(); err == nil && n >= math.MinInt && n <= math.MaxInt {
			return int(n)
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}

func writeToFile(path string, data map[string]any) (retErr error) {
	// Guard against panics from encoders (e.g., yaml on unsupported kinds like func).
	defer func() {
		if r := recover(); r != nil {
			retErr = fmt.Errorf("%w as %s: %v", ErrFormat, filepath.Ext(path), r)
		}
	}()

	f, err := formatOf(path)
	if err != nil {
		return err
	}
	var raw []byte
	switch f {
	case formatJSON:
		raw, err = json.MarshalIndent(data, "", "  ")
	default:
		raw, err = yaml.Marshal(data)
	}
	if err != nil {
		return fmt.Errorf("%w as %s: %w", ErrFormat, filepath.Ext(path), err)
	}

	if err := replaceFile(path, raw); err != nil {
		return fmt.Errorf("%w %s: %w", ErrWrite, path, err)
	}
	return nil
}
