package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/ini.v1"
)

func TestLoadGenomeConfigOverlaysDefaults(t *testing.T) {
	f, err := ini.Load([]byte(`
[CppnGenome]
node_add_prob = 0.5
activation_options = sine gaussian
bias_init_type = uniform # comment
`))
	require.NoError(t, err)

	cfg, err := LoadGenomeConfig(f.Section("CppnGenome"))
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.NodeAddProb)
	assert.Equal(t, []string{"sine", "gaussian"}, cfg.ActivationOptions)
	assert.Equal(t, "uniform", cfg.BiasInitType)
	assert.Equal(t, DefaultGenomeConfig().ConnAddProb, cfg.ConnAddProb)
	assert.True(t, cfg.FeedForward)
}

func TestLoadGenomeConfigValidation(t *testing.T) {
	f, err := ini.Load([]byte("[CppnGenome]\nconn_add_prob = 1.5\n"))
	require.NoError(t, err)
	_, err = LoadGenomeConfig(f.Section("CppnGenome"))
	assert.ErrorContains(t, err, "conn_add_prob")

	f, err = ini.Load([]byte("[CppnGenome]\nactivation_options = sine nope\n"))
	require.NoError(t, err)
	_, err = LoadGenomeConfig(f.Section("CppnGenome"))
	assert.ErrorContains(t, err, "nope")
}
