package config

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// INI is a Source backed by an INI file.
type INI struct {
	file *ini.File
}

// LoadINI reads an INI parameter file.
func LoadINI(path string) (*INI, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", path, err)
	}
	return &INI{file: f}, nil
}

// ParseINI reads INI parameters from memory.
func ParseINI(data []byte) (*INI, error) {
	f, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &INI{file: f}, nil
}

// File exposes the underlying ini file.
func (s *INI) File() *ini.File {
	return s.file
}

// splitKey splits "Section.key" at the last dot. A key without a dot lives
// in the default section.
func splitKey(key string) (section, name string) {
	if i := strings.LastIndex(key, "."); i >= 0 {
		return key[:i], key[i+1:]
	}
	return "", key
}

func (s *INI) key(key string) (*ini.Key, error) {
	section, name := splitKey(key)
	if section != "" && !s.file.HasSection(section) {
		return nil, missing(key)
	}
	k, err := s.file.Section(section).GetKey(name)
	if err != nil {
		return nil, missing(key)
	}
	return k, nil
}

func (s *INI) Has(key string) bool {
	_, err := s.key(key)
	return err == nil
}

func (s *INI) String(key string) (string, error) {
	k, err := s.key(key)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(k.String()), nil
}

func (s *INI) Int(key string) (int, error) {
	k, err := s.key(key)
	if err != nil {
		return 0, err
	}
	v, err := k.Int()
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %w", key, err)
	}
	return v, nil
}

func (s *INI) Float(key string) (float64, error) {
	k, err := s.key(key)
	if err != nil {
		return 0, err
	}
	v, err := k.Float64()
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %w", key, err)
	}
	return v, nil
}

func (s *INI) Bool(key string) (bool, error) {
	k, err := s.key(key)
	if err != nil {
		return false, err
	}
	v, err := k.Bool()
	if err != nil {
		return false, fmt.Errorf("parameter %s: %w", key, err)
	}
	return v, nil
}

func (s *INI) Decode(section string, v any) error {
	if !s.file.HasSection(section) {
		return nil
	}
	if err := s.file.Section(section).MapTo(v); err != nil {
		return fmt.Errorf("failed to map [%s] section: %w", section, err)
	}
	return nil
}
