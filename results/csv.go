package results

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"
)

// CSVSink appends records to a CSV file. The header is written with the
// first record.
type CSVSink struct {
	mu            sync.Mutex
	file          *os.File
	headerWritten bool
}

// NewCSVSink creates (or truncates) the file at path, creating parent
// directories as needed.
func NewCSVSink(path string) (*CSVSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating results directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return &CSVSink{file: f}, nil
}

func (s *CSVSink) Write(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := []Record{r}
	if !s.headerWritten {
		if err := gocsv.Marshal(records, s.file); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
		s.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, s.file); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	return nil
}

func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// ReadCSV loads every record of a file written by CSVSink.
func ReadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []Record
	if err := gocsv.UnmarshalFile(f, &out); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return out, nil
}
