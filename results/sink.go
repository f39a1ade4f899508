// Package results records what modules report during a run: fitness per
// evaluation, mature-life fitness, fertility, rebuild requests, phase
// problems, mate-resolution misses and the offspring an evolver bred.
//
// Sinks are append-only. Every sink is safe for concurrent use so the
// modules of a simulated world can share one.
package results

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Kind classifies a record.
type Kind string

const (
	KindFitness       Kind = "fitness"
	KindMatureFitness Kind = "mature_fitness"
	KindFertility     Kind = "fertility"
	KindRebuild       Kind = "rebuild"
	KindProblem       Kind = "problem"
	KindMateMiss      Kind = "mate_miss"
	KindPosition      Kind = "position"
	KindOffspring     Kind = "offspring"
)

// Record is one timestamped line of output. Fields that do not apply to a
// kind are left zero.
type Record struct {
	Time       float64 `csv:"time"`
	Module     string  `csv:"module"`
	Organism   int     `csv:"organism"`
	Kind       Kind    `csv:"kind"`
	Phase      string  `csv:"phase"`
	Generation int     `csv:"generation"`
	Evaluation int     `csv:"evaluation"`
	Fitness    float64 `csv:"fitness"`
	Detail     string  `csv:"detail"`
}

// Sink receives records.
type Sink interface {
	Write(ctx context.Context, r Record) error
	Close() error
}

// ErrUnknownSink is returned by NewSink for an unrecognised backend name.
var ErrUnknownSink = errors.New("results: unknown sink")

// NewSink opens the backend named kind: "memory", "csv" or "sqlite".
// path is ignored by the memory sink.
func NewSink(ctx context.Context, kind, path string) (Sink, error) {
	switch strings.ToLower(kind) {
	case "memory", "":
		return NewMemorySink(), nil
	case "csv":
		return NewCSVSink(path)
	case "sqlite":
		return OpenSQLiteSink(ctx, path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSink, kind)
	}
}

// MemorySink keeps records in memory.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
}

func NewMemorySink() *MemorySink { return &MemorySink{} }

func (m *MemorySink) Write(_ context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func (m *MemorySink) Close() error { return nil }

// Records returns a copy of everything written so far.
func (m *MemorySink) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

// OfKind returns the records of one kind, in write order.
func (m *MemorySink) OfKind(k Kind) []Record {
	var out []Record
	for _, r := range m.Records() {
		if r.Kind == k {
			out = append(out, r)
		}
	}
	return out
}

// Discard drops every record.
var Discard Sink = discard{}

type discard struct{}

func (discard) Write(context.Context, Record) error { return nil }
func (discard) Close() error                        { return nil }
