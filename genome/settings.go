package genome

import (
	"fmt"

	"github.com/baldhumanity/roombots/config"
	"github.com/baldhumanity/roombots/neat"
)

// Settings are the operator parameters shared by all genomes of a manager.
type Settings struct {
	// Kind is the encoding created for zero-parent requests.
	Kind Kind `ini:"kind" yaml:"kind"`

	SizeMutationRate float64 `ini:"size_mutation_rate" yaml:"size_mutation_rate"`
	MinGridSize      float64 `ini:"min_grid_size" yaml:"min_grid_size"`
	StartingGridSize float64 `ini:"starting_grid_size" yaml:"starting_grid_size"`

	MatrixMutationRate     float64 `ini:"matrix_mutation_rate" yaml:"matrix_mutation_rate"`
	MatrixMutationStrength float64 `ini:"matrix_mutation_strength" yaml:"matrix_mutation_strength"`
	// A zero start dimension yields empty matrices for zero-parent requests.
	MatrixStartX int `ini:"matrix_start_x" yaml:"matrix_start_x"`
	MatrixStartY int `ini:"matrix_start_y" yaml:"matrix_start_y"`

	Cppn *neat.GenomeConfig `ini:"-" yaml:"-"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() *Settings {
	return &Settings{
		Kind:                   KindCppn,
		SizeMutationRate:       0.1,
		MinGridSize:            1,
		StartingGridSize:       3,
		MatrixMutationRate:     0.1,
		MatrixMutationStrength: 0.1,
		Cppn:                   neat.DefaultGenomeConfig(),
	}
}

// LoadSettings reads the [Genome] and [CppnGenome] sections of src over the defaults.
func LoadSettings(src config.Source) (*Settings, error) {
	s := DefaultSettings()
	if err := src.Decode("Genome", s); err != nil {
		return nil, err
	}
	if err := src.Decode("CppnGenome", s.Cppn); err != nil {
		return nil, err
	}
	if err := s.Cppn.Normalize(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks operator parameters.
func (s *Settings) Validate() error {
	switch s.Kind {
	case KindCppn, KindMatrix:
	default:
		return fmt.Errorf("config error: %w: %q", ErrUnknownGenome, s.Kind)
	}
	if s.SizeMutationRate < 0 || s.SizeMutationRate > 1 {
		return fmt.Errorf("config error: size_mutation_rate must be between 0 and 1")
	}
	if s.MatrixMutationRate < 0 || s.MatrixMutationRate > 1 {
		return fmt.Errorf("config error: matrix_mutation_rate must be between 0 and 1")
	}
	if s.MinGridSize < 0 {
		return fmt.Errorf("config error: min_grid_size cannot be negative")
	}
	if s.MatrixStartX < 0 || s.MatrixStartY < 0 {
		return fmt.Errorf("config error: matrix start dimensions cannot be negative")
	}
	if s.Cppn == nil {
		return fmt.Errorf("config error: missing CPPN parameters")
	}
	return nil
}

func (s *Settings) orDefault() *Settings {
	if s == nil {
		return DefaultSettings()
	}
	return s
}
