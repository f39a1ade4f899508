package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAML is a Source backed by a YAML document.
type YAML struct {
	root *yaml.Node
}

// LoadYAML reads a YAML parameter file.
func LoadYAML(path string) (*YAML, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML reads YAML parameters from memory.
func ParseYAML(data []byte) (*YAML, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	root := &doc
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root = doc.Content[0]
	}
	return &YAML{root: root}, nil
}

func (s *YAML) lookup(key string) (*yaml.Node, bool) {
	node := s.root
	for _, part := range strings.Split(key, ".") {
		if node == nil || node.Kind != yaml.MappingNode {
			return nil, false
		}
		var next *yaml.Node
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == part {
				next = node.Content[i+1]
				break
			}
		}
		if next == nil {
			return nil, false
		}
		node = next
	}
	return node, true
}

func (s *YAML) scalar(key string) (*yaml.Node, error) {
	node, ok := s.lookup(key)
	if !ok {
		return nil, missing(key)
	}
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("parameter %s is not a scalar", key)
	}
	return node, nil
}

func (s *YAML) Has(key string) bool {
	_, ok := s.lookup(key)
	return ok
}

func (s *YAML) String(key string) (string, error) {
	node, err := s.scalar(key)
	if err != nil {
		return "", err
	}
	return node.Value, nil
}

func (s *YAML) Int(key string) (int, error) {
	var v int
	err := s.decodeScalar(key, &v)
	return v, err
}

func (s *YAML) Float(key string) (float64, error) {
	var v float64
	err := s.decodeScalar(key, &v)
	return v, err
}

func (s *YAML) Bool(key string) (bool, error) {
	var v bool
	err := s.decodeScalar(key, &v)
	return v, err
}

func (s *YAML) decodeScalar(key string, v any) error {
	node, err := s.scalar(key)
	if err != nil {
		return err
	}
	if err := node.Decode(v); err != nil {
		return fmt.Errorf("parameter %s: %w", key, err)
	}
	return nil
}

func (s *YAML) Decode(section string, v any) error {
	node, ok := s.lookup(section)
	if !ok {
		return nil
	}
	if err := node.Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", section, err)
	}
	return nil
}
