package genome

import (
	"compress/gzip"
	"fmt"
	"os"
)

// SaveCheckpoint writes the pool text to filePath, gzip compressed.
func (m *Manager) SaveCheckpoint(filePath string) (err error) {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	gzWriter := gzip.NewWriter(file)
	if err := m.WritePool(gzWriter); err != nil {
		return fmt.Errorf("failed to encode genome pool: %w", err)
	}
	return gzWriter.Close()
}

// LoadCheckpoint replaces the pool with the one saved at checkpointPath.
func (m *Manager) LoadCheckpoint(checkpointPath string) error {
	file, err := os.Open(checkpointPath)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint file '%s': %w", checkpointPath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	if err := m.ReadPool(gzReader); err != nil {
		return fmt.Errorf("failed to decode genome pool from checkpoint: %w", err)
	}
	return nil
}
