package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/roombots/protocol"
)

func TestRootAnglesRunOneTickBehind(t *testing.T) {
	cfg := testConfig()
	cfg.Module.OrganismSize = 2
	cfg.Module.Motors = 1
	r := newRig(cfg, 10)
	alg := &scriptedAlgorithm{}
	c, err := New(cfg, r.devices(), WithAlgorithm(alg))
	require.NoError(t, err)

	pipe := c.newRootAngles()
	for i := 0; i < 4; i++ {
		if i == 1 {
			r.angles.push(protocol.ModuleAngles{Index: 1, Values: []float64{0.7}}.Encode())
		}
		require.NoError(t, c.exchangeRoot(pipe))
	}

	var self, sibling []float64
	for _, in := range alg.inputs {
		self = append(self, in[0][0])
		sibling = append(sibling, in[1][0])
	}
	// the root feeds the algorithm its motor position from the tick before
	assert.Equal(t, []float64{0, 0, 0, 1}, self)
	assert.Equal(t, []float64{0, 0.7, 0, 0}, sibling)
	// and applies the angle computed on the tick before
	assert.Equal(t, []float64{0, 1, 2, 3}, r.motors.sets[0])

	_, down := cfg.Channels.AngleChannels(7)
	broadcasts := r.emitter.on(down)
	require.Len(t, broadcasts, 4)
	row, ok := protocol.Row(broadcasts[0], 1, 1)
	require.True(t, ok)
	assert.Equal(t, []float64{1.5}, row)
}

func TestReceiveModuleAnglesKeepsLatest(t *testing.T) {
	cfg := testConfig()
	cfg.Module.OrganismSize = 3
	r := newRig(cfg, 1)
	c, err := New(cfg, r.devices())
	require.NoError(t, err)

	r.angles.push(protocol.ModuleAngles{Index: 2, Values: []float64{0.1, 0.2}}.Encode())
	r.angles.push(protocol.ModuleAngles{Index: 2, Values: []float64{0.3}}.Encode())
	r.angles.push(protocol.ModuleAngles{Index: 5, Values: []float64{1, 1}}.Encode())
	r.angles.push("noise")

	table := c.receiveModuleAngles()
	assert.Equal(t, [][]float64{{0, 0}, {0, 0}, {0.3, 0}}, table)
	assert.Zero(t, r.angles.QueueLength())
}

func TestRelay(t *testing.T) {
	cfg := testConfig()
	cfg.Module.Root = false
	cfg.Module.Index = 1
	cfg.Module.OrganismSize = 2
	r := newRig(cfg, 1)
	c, err := New(cfg, r.devices())
	require.NoError(t, err)

	r.motors.angles = []float64{0.2, -0.4}
	r.angles.push(protocol.OrganismAngles{Rows: [][]float64{{1, 1}, {0.3, 0.6}}}.Encode())
	require.NoError(t, c.relay())

	up, _ := cfg.Channels.AngleChannels(7)
	reports := r.emitter.on(up)
	require.Len(t, reports, 1)
	a, err := protocol.ParseModuleAngles(reports[0], 2)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Index)
	assert.Equal(t, []float64{0.2, -0.4}, a.Values)
	assert.Equal(t, []float64{0.3, 0.6}, r.motors.angles)

	// no broadcast this tick: the motors rest
	require.NoError(t, c.relay())
	assert.Equal(t, []float64{0, 0}, r.motors.angles)
}
