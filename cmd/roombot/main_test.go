package main

import (
	"bytes"
	"context"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/roombots/genome"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	genomeOpts.kind, genomeOpts.params = "", ""
	simulateOpts.checkpoint, simulateOpts.ticks = "", 0
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMessageCommands(t *testing.T) {
	out, err := run(t, "", "message", "new", "GENOME_SPREAD_MESSAGE", "ID=7", "FITNESS=3.5")
	require.NoError(t, err)
	msg := strings.TrimSpace(out)
	assert.Equal(t, "[GENOME_SPREAD_MESSAGE]ID=7;FITNESS=3.5;", msg)

	out, err = run(t, "", "message", "get", msg, "FITNESS")
	require.NoError(t, err)
	assert.Equal(t, "3.5\n", out)

	_, err = run(t, "", "message", "get", msg, "MIND")
	assert.Error(t, err)

	_, err = run(t, "", "message", "new", "COUPLE", "GENOME=a;b")
	assert.Error(t, err)
}

func TestGenomeCommands(t *testing.T) {
	out, err := run(t, "", "genome", "new", "--kind", "cppn")
	require.NoError(t, err)
	parent := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(parent, "CPPN "), parent)

	out, err = run(t, parent, "genome", "mutate", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "CPPN "))

	out, err = run(t, "", "genome", "cross", parent, strings.TrimSpace(out))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "CPPN "))

	out, err = run(t, "", "genome", "grid", "MATRIX 2 2 VALUES 1 0 0 1")
	require.NoError(t, err)
	assert.Equal(t, " 1.0000  0.0000\n 0.0000  1.0000\n", out)

	_, err = run(t, "", "genome", "cross", parent, "MATRIX 1 1 VALUES 0")
	assert.Error(t, err)
}

func TestSimulateCommand(t *testing.T) {
	out, err := run(t, "", "simulate", "--ticks", "40")
	require.NoError(t, err)
	assert.Contains(t, out, "ticks:     40")
	assert.Contains(t, out, "module_1_0")
	assert.Contains(t, out, "records:")

	path := filepath.Join(t.TempDir(), "pool.gz")
	_, err = run(t, "", "simulate", "--ticks", "40", "--checkpoint", path)
	require.NoError(t, err)
	pool := genome.NewManager(nil, rand.New(rand.NewSource(1)))
	require.NoError(t, pool.LoadCheckpoint(path))
	assert.Equal(t, 0, pool.Len())
}
