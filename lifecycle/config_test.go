package lifecycle

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/baldhumanity/roombots/config"
	"github.com/baldhumanity/roombots/genome"
)

func TestComputeFitness(t *testing.T) {
	d := r3.Vec{X: 3, Z: 4}
	cases := []struct {
		alg  AlgorithmType
		dt   float64
		d    r3.Vec
		want float64
	}{
		{AlgorithmNEAT, 1, r3.Vec{X: 1, Z: 1}, 4},
		{AlgorithmSplineNEAT, 1, r3.Vec{Y: 1}, 2},
		{AlgorithmCPG, 1, d, 5},
		{AlgorithmPower, 2, d, 2.5},
		{AlgorithmPower, 0, d, 0},
	}
	for _, tc := range cases {
		f, err := ComputeFitness(tc.alg, tc.dt, tc.d)
		require.NoError(t, err)
		assert.InDelta(t, tc.want, f.Value, 1e-12, "%v", tc.alg)
	}

	f, err := ComputeFitness(AlgorithmPower, 2, d)
	require.NoError(t, err)
	assert.Equal(t, "3.3554432e+07 5 2.5 2.44140625e+14", f.Detail)

	_, err = ComputeFitness(AlgorithmType(9), 1, d)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestRealFitness(t *testing.T) {
	v, err := RealFitness(AlgorithmPower, 0.02)
	require.NoError(t, err)
	assert.InDelta(t, 64, v, 1e-9)

	v, err = RealFitness(AlgorithmNEAT, 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestDisplacement(t *testing.T) {
	from, to := r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{X: 2, Y: 3, Z: 1}
	assert.Equal(t, r3.Vec{X: 1, Y: 2}, displacement(from, to, false))
	assert.Equal(t, r3.Vec{X: 1}, displacement(from, to, true))
	assert.InDelta(t, 5, horizontalDistance(r3.Vec{X: 4, Y: 9, Z: 5}, 1, 1), 1e-12)
}

func TestOrganismID(t *testing.T) {
	for name, want := range map[string]int{"module_12": 12, "module_12_3": 12, "m_0": 0, "module_4b": 4} {
		id, err := OrganismID(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, id, name)
	}
	for _, name := range []string{"module", "module_", "module_x1"} {
		_, err := OrganismID(name)
		assert.ErrorIs(t, err, ErrBadModuleName, name)
	}
}

func TestParsePolicies(t *testing.T) {
	alg, err := ParseAlgorithm("rl_power")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmPower, alg)

	d, err := ParseDeathPolicy("ttl")
	require.NoError(t, err)
	assert.Equal(t, DeathByTimeToLive, d)

	m, err := ParseMatingPolicy(" organisms ")
	require.NoError(t, err)
	assert.Equal(t, MatingByOrganisms, m)
}

func TestConfigFromINI(t *testing.T) {
	src, err := config.ParseINI([]byte(`
[Module]
name = module_3_1
index = 1
root = false
modules = 2
motors = 2

[Algorithm]
type = NEAT
infancy_duration = 800

[Evolution]
mating = ORGANISMS
death = TIME_TO_LIVE
fertility_distance = 1.5

[Channels]
evolver = 20000
`))
	require.NoError(t, err)

	cfg, err := ConfigFromSource(src)
	require.NoError(t, err)
	assert.Equal(t, ModuleConfig{Name: "module_3_1", Index: 1, OrganismSize: 2, Motors: 2}, cfg.Module)
	assert.Equal(t, "NEAT", cfg.Algorithm.Type)
	assert.Equal(t, 800, cfg.Algorithm.InfancyDuration)
	assert.Equal(t, 4, cfg.Algorithm.Evaluations, "unset keys keep their defaults")
	assert.Equal(t, 1.5, cfg.Evolution.FertilityDistance)
	assert.Equal(t, 20000, cfg.Channels.Evolver)
	assert.Equal(t, DefaultConfig().Timing, cfg.Timing)

	up, down := cfg.Channels.AngleChannels(3)
	assert.Equal(t, 3, up)
	assert.Equal(t, 19996, down)
}

func TestConfigFromYAMLRejectsCPG(t *testing.T) {
	src, err := config.ParseYAML([]byte("Algorithm:\n  type: CPG\n"))
	require.NoError(t, err)
	_, err = ConfigFromSource(src)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestSineGaitKeepsFittestMind(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	g := NewSineGait(2, 3, nil)
	minds := g.InitialMinds(2, 1, rng)
	require.Len(t, minds, 3)
	require.NoError(t, g.SetInitialMinds(minds, 2, 1))

	for i, f := range []float64{0.4, 1.2, 0.9} {
		assert.Equal(t, i, g.Evaluation())
		g.SetEvaluationFitness(f, "")
		more := g.NextEvaluation()
		assert.Equal(t, i < 2, more)
	}
	assert.Equal(t, 1, g.Evaluation())
	assert.Equal(t, 1, g.Generation())
	assert.Same(t, minds[1], g.Best())
	assert.False(t, g.NextEvaluation())

	out := g.Compute([][]float64{{0, 0}}, 0.5)
	require.Len(t, out, 1)
	for _, v := range out[0] {
		assert.LessOrEqual(t, math.Abs(v), 1.0)
	}
}

func TestSineGaitFollowsMind(t *testing.T) {
	mind, err := genome.MatrixFromRows([][]float64{{0.5, 1, 0}, {3, 1, math.Pi / 2}}, nil)
	require.NoError(t, err)
	g := NewSineGait(1, 1, nil)
	require.NoError(t, g.SetInitialMinds([]*genome.MatrixGenome{mind}, 2, 1))

	out := g.Compute([][]float64{{0, 0}, {0.4, 0.4}}, math.Pi/2)
	assert.InDelta(t, 0.5, out[0][0], 1e-12)
	assert.InDelta(t, 0, out[0][1], 1e-12)
	// rows past the organism size pass through untouched as zeros
	assert.Equal(t, []float64{0, 0}, out[1])

	g.Gain = 0.5
	out = g.Compute([][]float64{{0.2, 0}}, 0)
	assert.InDelta(t, 0.1, out[0][0], 1e-12)
	assert.InDelta(t, 0.5, out[0][1], 1e-12)

	bad, err := genome.MatrixFromRows([][]float64{{1, 1, 1}}, nil)
	require.NoError(t, err)
	assert.Error(t, g.SetInitialMinds([]*genome.MatrixGenome{bad}, 2, 1))
}
