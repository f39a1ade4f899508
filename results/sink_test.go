package results

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []Record{
	{Time: 1.5, Module: "module_3", Organism: 3, Kind: KindFitness, Generation: 1, Evaluation: 2, Fitness: 4, Detail: "4 1.41 0.7 3e10"},
	{Time: 2, Module: "module_3", Organism: 3, Kind: KindProblem, Phase: "INFANCY", Detail: "boom"},
	{Time: 3.25, Module: "module_3", Organism: 3, Kind: KindFertility},
}

func writeAll(t *testing.T, s Sink) {
	t.Helper()
	ctx := context.Background()
	for _, r := range sample {
		require.NoError(t, s.Write(ctx, r))
	}
}

func TestMemorySink(t *testing.T) {
	s := NewMemorySink()
	writeAll(t, s)
	assert.Equal(t, sample, s.Records())
	assert.Equal(t, sample[1:2], s.OfKind(KindProblem))
	assert.Empty(t, s.OfKind(KindRebuild))
}

func TestMemorySinkConcurrentWrites(t *testing.T) {
	s := NewMemorySink()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Write(context.Background(), Record{Kind: KindPosition})
			}
		}()
	}
	wg.Wait()
	assert.Len(t, s.Records(), 800)
}

func TestCSVSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "results.csv")
	s, err := NewCSVSink(path)
	require.NoError(t, err)
	writeAll(t, s)
	require.NoError(t, s.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, len(sample)+1)
	assert.Equal(t, "time,module,organism,kind,phase,generation,evaluation,fitness,detail", lines[0])

	back, err := ReadCSV(path)
	require.NoError(t, err)
	if diff := cmp.Diff(sample, back); diff != "" {
		t.Fatalf("csv round trip (-want +got):\n%s", diff)
	}
}

func TestSQLiteSink(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLiteSink(ctx, filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer s.Close()
	writeAll(t, s)

	all, err := s.Query(ctx, "")
	require.NoError(t, err)
	if diff := cmp.Diff(sample, all); diff != "" {
		t.Fatalf("sqlite round trip (-want +got):\n%s", diff)
	}
	problems, err := s.Query(ctx, KindProblem)
	require.NoError(t, err)
	assert.Equal(t, sample[1:2], problems)

	_, err = OpenSQLiteSink(ctx, "")
	assert.Error(t, err)
}

func TestNewSink(t *testing.T) {
	ctx := context.Background()
	s, err := NewSink(ctx, "memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemorySink{}, s)

	s, err = NewSink(ctx, "CSV", filepath.Join(t.TempDir(), "r.csv"))
	require.NoError(t, err)
	assert.IsType(t, &CSVSink{}, s)
	require.NoError(t, s.Close())

	_, err = NewSink(ctx, "parquet", "x")
	assert.ErrorIs(t, err, ErrUnknownSink)
}

func TestRunDirRetriesWhenTaken(t *testing.T) {
	base := t.TempDir()
	d := RunDir{Base: base, Session: "s1", Name: "module_1", Algorithm: "POWER", Attempts: 3}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	first, err := d.Create(now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "Results", "s1", "module_1", "POWER"), first)

	second, err := d.Create(now)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(second, first+"-"))

	d.Attempts = 1
	_, err = d.Create(now)
	assert.ErrorIs(t, err, ErrRunDirBusy)

	d.Session = "random"
	got, err := d.Create(now)
	require.NoError(t, err)
	assert.Contains(t, got, "2024-05-01-12.00.00")
}
