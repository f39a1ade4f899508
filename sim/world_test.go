package sim

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/baldhumanity/roombots/genome"
	"github.com/baldhumanity/roombots/lifecycle"
	"github.com/baldhumanity/roombots/results"
)

func baseConfig() lifecycle.Config {
	cfg := lifecycle.DefaultConfig()
	cfg.Module.Motors = 2
	cfg.Algorithm.InfancyDuration = 60
	cfg.Algorithm.Evaluations = 2
	cfg.Timing = lifecycle.TimingConfig{
		TimeStepMS:            32,
		FitnessInterval:       5,
		EvolverUpdateInterval: 5,
		SendGenomeInterval:    5,
		SpreadInterval:        2,
		MatingInterval:        10,
		LockTicks:             3,
		ProblemListenTicks:    2,
		WaitTicks:             2,
		SettleTicks:           5,
		PositionLogPeriod:     10,
	}
	return cfg
}

func twoOrganisms() WorldConfig {
	wc := DefaultWorld()
	wc.Ticks = 300
	wc.Evolver = EvolverConfig{KillAfter: 100, MatingInterval: 50, ParentSelection: "best_two"}
	wc.Organisms = []OrganismSpec{
		{ID: 1, Modules: 2, Position: [3]float64{3, 0, 0}},
		{ID: 2, Modules: 2, Position: [3]float64{0, 0, 3}, Yaw: 1},
	}
	return wc
}

func TestWorldEvolverLifecycle(t *testing.T) {
	sink := results.NewMemorySink()
	w, err := NewWorld(twoOrganisms(), baseConfig(), WithSink(sink), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	require.NoError(t, w.Run(context.Background()))

	assert.Equal(t, 300, w.Tick())
	for _, m := range w.Modules() {
		assert.Equal(t, lifecycle.Death, m.Controller.Stage(), m.Name)
		for _, cn := range m.Connectors {
			assert.False(t, cn.Locked(), m.Name)
		}
	}

	rep := w.Evolver().Report()
	assert.ElementsMatch(t, []int{1, 2}, rep.Adults)
	assert.Subset(t, rep.Deaths, []int{1, 2})
	assert.ElementsMatch(t, []string{"module_1_0", "module_1_1", "module_2_0", "module_2_1"}, rep.Reserve)
	assert.Empty(t, rep.Rebuilds)
	assert.Positive(t, rep.Spreads)
	assert.Empty(t, rep.Couples)
	assert.NotEmpty(t, rep.Offspring)
	assert.Len(t, sink.OfKind(results.KindOffspring), len(rep.Offspring))
	assert.NotEmpty(t, sink.OfKind(results.KindFitness))

	path := filepath.Join(t.TempDir(), "pool.gz")
	require.NoError(t, w.Evolver().SavePool(path))
	pool := genome.NewManager(nil, rand.New(rand.NewSource(1)))
	require.NoError(t, pool.LoadCheckpoint(path))
	require.Equal(t, len(rep.Offspring), pool.Len())
	for i, id := range pool.IDs() {
		text, err := pool.GenomeToString(id)
		require.NoError(t, err)
		assert.Equal(t, rep.Offspring[i], text)
	}
	assert.Empty(t, sink.OfKind(results.KindProblem))

	body, ok := w.Body(1)
	require.True(t, ok)
	assert.NotEqual(t, 3.0, body.Position().X, "a walking organism moves")
}

func TestWorldLooseConnectorRebuild(t *testing.T) {
	wc := twoOrganisms()
	wc.Ticks = 60
	wc.Organisms[1].LooseConnector = true
	sink := results.NewMemorySink()
	w, err := NewWorld(wc, baseConfig(), WithSink(sink))
	require.NoError(t, err)
	require.NoError(t, w.Run(context.Background()))

	rep := w.Evolver().Report()
	assert.Equal(t, []int{2}, rep.Rebuilds)
	assert.ElementsMatch(t, []string{"module_2_0", "module_2_1"}, rep.Reserve)
	for _, m := range w.Modules() {
		if m.Organism == 2 {
			tr := m.Controller.Transitions()
			require.Len(t, tr, 1, m.Name)
			assert.Equal(t, lifecycle.Death, tr[0].Stage, m.Name)
		} else {
			assert.Equal(t, lifecycle.Infancy, m.Controller.Stage(), m.Name)
		}
	}
	require.Len(t, sink.OfKind(results.KindRebuild), 1)
}

func TestWorldPeerMating(t *testing.T) {
	base := baseConfig()
	base.Evolution.Mating = "ORGANISMS"
	wc := twoOrganisms()
	wc.Ticks = 200
	wc.Evolver = EvolverConfig{}
	sink := results.NewMemorySink()
	w, err := NewWorld(wc, base, WithSink(sink))
	require.NoError(t, err)
	require.NoError(t, w.Run(context.Background()))

	for _, m := range w.Modules() {
		if strings.HasSuffix(m.Name, "_0") {
			assert.True(t, m.Controller.Fertile(), m.Name)
		}
	}
	rep := w.Evolver().Report()
	require.NotEmpty(t, rep.Couples)
	for _, cp := range rep.Couples {
		assert.NotEqual(t, cp.First.ID, cp.Second.ID)
	}
	assert.Positive(t, rep.FitnessUpdates)
	assert.NotEmpty(t, rep.Offspring)
	assert.Len(t, sink.OfKind(results.KindFertility), 2)
}

func TestWorldCancel(t *testing.T) {
	wc := twoOrganisms()
	wc.Ticks = 1 << 30
	w, err := NewWorld(wc, baseConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = w.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Error(t, w.Run(context.Background()), "a world runs once")
}

func TestLoadWorld(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
seed: 7
ticks: 500
parameters: module.ini
evolver:
  kill_after: 200
organisms:
  - id: 4
    modules: 3
    position: [1, 0, 2]
    loose_connector: true
`), 0o644))

	wc, err := LoadWorld(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), wc.Seed)
	assert.Equal(t, 500, wc.Ticks)
	assert.Equal(t, 128, wc.QueueCapacity, "defaults survive")
	assert.Equal(t, filepath.Join(dir, "module.ini"), wc.Parameters)
	assert.Equal(t, 200, wc.Evolver.KillAfter)
	require.Len(t, wc.Organisms, 1)
	assert.Equal(t, OrganismSpec{ID: 4, Modules: 3, Position: [3]float64{1, 0, 2}, LooseConnector: true}, wc.Organisms[0])

	require.NoError(t, os.WriteFile(path, []byte("ticks: 5\norganisms:\n  - {id: 1, modules: 1}\n  - {id: 1, modules: 2}\n"), 0o644))
	_, err = LoadWorld(path)
	assert.ErrorContains(t, err, "used twice")
}
