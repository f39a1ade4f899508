// Package config reads the parameter files a module is started with.
//
// Parameters are addressed by dot separated key paths such as
// "Robot.mating_type". INI files map the last segment to the key and the
// rest to the section name; YAML files walk nested mappings.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrMissingKey is returned when a key path does not resolve to a value.
var ErrMissingKey = errors.New("missing parameter")

// Source is a read-only typed parameter lookup.
type Source interface {
	Has(key string) bool
	String(key string) (string, error)
	Int(key string) (int, error)
	Float(key string) (float64, error)
	Bool(key string) (bool, error)
	// Decode maps a whole section onto a tagged struct. Fields whose keys
	// are absent keep their value; a missing section is not an error.
	Decode(section string, v any) error
}

// Open loads a parameter file, choosing the format from its extension.
func Open(path string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	case ".ini", ".cfg", ".conf", ".txt", "":
		return LoadINI(path)
	default:
		return nil, fmt.Errorf("unsupported parameter file %q", path)
	}
}

// StringOr returns def when key is absent.
func StringOr(src Source, key, def string) (string, error) {
	if !src.Has(key) {
		return def, nil
	}
	return src.String(key)
}

// IntOr returns def when key is absent.
func IntOr(src Source, key string, def int) (int, error) {
	if !src.Has(key) {
		return def, nil
	}
	return src.Int(key)
}

// FloatOr returns def when key is absent.
func FloatOr(src Source, key string, def float64) (float64, error) {
	if !src.Has(key) {
		return def, nil
	}
	return src.Float(key)
}

// BoolOr returns def when key is absent.
func BoolOr(src Source, key string, def bool) (bool, error) {
	if !src.Has(key) {
		return def, nil
	}
	return src.Bool(key)
}

func missing(key string) error {
	return fmt.Errorf("%w: %s", ErrMissingKey, key)
}
