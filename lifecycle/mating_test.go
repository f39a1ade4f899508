package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/baldhumanity/roombots/protocol"
	"github.com/baldhumanity/roombots/results"
)

func organismsConfig() Config {
	cfg := testConfig()
	cfg.Evolution.Mating = "ORGANISMS"
	return cfg
}

func TestFertileOrganismPicksFittestMate(t *testing.T) {
	cfg := organismsConfig()
	r := newRig(cfg, 90)
	r.gps.pos = r3.Vec{X: 1}
	r.stepper.onTick = func(n int) {
		switch n {
		case 55:
			r.genomes.push(protocol.Spread{ID: 5, Fitness: 2, Genome: "MATRIX 0 0 VALUES", Mind: "MINDS 0"}.Encode())
			r.genomes.push(protocol.Spread{ID: 6, Fitness: 9, Genome: "G6"}.Encode())
			r.genomes.push(protocol.Spread{ID: 7, Fitness: 50, Genome: "self"}.Encode())
			r.genomes.push(protocol.AdultAnnouncement(4))
			r.genomes.push("[GENOME_SPREAD_MESSAGE]ID=8;")
		case 70:
			r.gps.pos = r3.Vec{}
		}
	}
	sink := results.NewMemorySink()
	c, err := New(cfg, r.devices(), WithSink(sink))
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background()))

	assert.True(t, c.Fertile(), "fertility is never revoked")
	assert.True(t, r.genomes.enabled)
	require.Len(t, sink.OfKind(results.KindFertility), 1)

	var couples []protocol.Couple
	var updates int
	for _, msg := range r.emitter.on(cfg.Channels.Evolver) {
		switch protocol.TagOf(msg) {
		case protocol.TagCouple:
			cp, err := protocol.ParseCouple(msg)
			require.NoError(t, err)
			couples = append(couples, cp)
		case protocol.TagFitnessUpdate:
			fu, err := protocol.ParseFitnessUpdate(msg)
			require.NoError(t, err)
			assert.Equal(t, 7, fu.ID)
			updates++
		case protocol.TagGenomeSpread:
			t.Errorf("organism mating must not send genomes to the evolver: %q", msg)
		}
	}
	require.Len(t, couples, 1)
	assert.Equal(t, 7, couples[0].First.ID)
	assert.Equal(t, 6, couples[0].Second.ID)
	assert.Equal(t, 9.0, couples[0].Second.Fitness)
	assert.Equal(t, "G6", couples[0].Second.Genome)
	assert.Positive(t, updates)

	spreads := r.emitter.on(cfg.Channels.Genome)
	require.NotEmpty(t, spreads)
	own, err := protocol.ParseSpread(spreads[0])
	require.NoError(t, err)
	assert.Equal(t, 7, own.ID)

	// the registry is cleared after every round
	assert.Zero(t, c.Registry().Len())
}

func TestNoFertilityNearCentre(t *testing.T) {
	cfg := organismsConfig()
	r := newRig(cfg, 90)
	r.gps.pos = r3.Vec{X: 0.2, Z: 0.2}
	c, err := New(cfg, r.devices())
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background()))

	assert.False(t, c.Fertile())
	assert.False(t, r.genomes.enabled)
	assert.Empty(t, r.emitter.on(cfg.Channels.Genome))
}

func TestSelectedMateMissingFromRegistry(t *testing.T) {
	cfg := organismsConfig()
	r := newRig(cfg, 90)
	r.gps.pos = r3.Vec{Z: -2}
	r.stepper.onTick = func(n int) {
		if n == 55 {
			r.genomes.push(protocol.Spread{ID: 5, Fitness: 2}.Encode())
		}
	}
	sink := results.NewMemorySink()
	c, err := New(cfg, r.devices(), WithSink(sink), WithSelector(fixedSelector{id: 99}))
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background()))

	misses := sink.OfKind(results.KindMateMiss)
	require.Len(t, misses, 1)
	assert.Equal(t, "mate 99 list [5]", misses[0].Detail)
	for _, msg := range r.emitter.on(cfg.Channels.Evolver) {
		assert.False(t, protocol.Is(msg, protocol.TagCouple))
	}
}
