package neat

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// --------------------------- NodeGene ---------------------------

// NodeGene represents a node of the CPPN. Input nodes carry a gene too so
// that their activation is inherited.
type NodeGene struct {
	Key         int // negative for inputs, 0 for the output, >0 for hidden nodes
	Bias        float64
	Response    float64
	Activation  string
	Aggregation string
}

// NewNodeGene creates a new NodeGene with attributes initialized according to the config.
func NewNodeGene(key int, config *GenomeConfig, rng *rand.Rand) *NodeGene {
	ng := &NodeGene{
		Key:         key,
		Activation:  initStringAttribute(config.ActivationDefault, config.ActivationOptions, rng),
		Aggregation: initStringAttribute(config.AggregationDefault, config.AggregationOptions, rng),
	}
	ng.Bias = initFloatAttribute(config.BiasInitMean, config.BiasInitStdev, config.BiasInitType, config.BiasMinValue, config.BiasMaxValue, rng)
	ng.Response = initFloatAttribute(config.ResponseInitMean, config.ResponseInitStdev, config.ResponseInitType, config.ResponseMinValue, config.ResponseMaxValue, rng)
	return ng
}

// newInputGene creates the gene of an input node: no bias, unit response.
func newInputGene(key int, activation string) *NodeGene {
	return &NodeGene{Key: key, Bias: 0, Response: 1, Activation: activation, Aggregation: "sum"}
}

// String returns a string representation of the NodeGene.
func (ng *NodeGene) String() string {
	return fmt.Sprintf("NodeGene(Key: %d, Bias: %.3f, Response: %.3f, Activation: %s, Aggregation: %s)",
		ng.Key, ng.Bias, ng.Response, ng.Activation, ng.Aggregation)
}

// Copy creates a deep copy of the NodeGene.
func (ng *NodeGene) Copy() *NodeGene {
	c := *ng
	return &c
}

// Mutate adjusts the attributes of the NodeGene based on mutation rates in the config.
func (ng *NodeGene) Mutate(config *GenomeConfig, rng *rand.Rand) {
	ng.Bias = mutateFloatAttribute(ng.Bias, config.BiasMutateRate, config.BiasReplaceRate, config.BiasMutatePower, config.BiasInitMean, config.BiasInitStdev, config.BiasInitType, config.BiasMinValue, config.BiasMaxValue, rng)
	ng.Response = mutateFloatAttribute(ng.Response, config.ResponseMutateRate, config.ResponseReplaceRate, config.ResponseMutatePower, config.ResponseInitMean, config.ResponseInitStdev, config.ResponseInitType, config.ResponseMinValue, config.ResponseMaxValue, rng)
	ng.Activation = mutateStringAttribute(ng.Activation, config.ActivationMutateRate, config.ActivationOptions, rng)
	ng.Aggregation = mutateStringAttribute(ng.Aggregation, config.AggregationMutateRate, config.AggregationOptions, rng)
}

// Crossover creates a new NodeGene by randomly inheriting attributes from two parent NodeGenes.
// ng is the primary parent.
func (ng *NodeGene) Crossover(other *NodeGene, rng *rand.Rand) *NodeGene {
	child := ng.Copy()
	if rng.Float64() < 0.5 {
		child.Bias = other.Bias
	}
	if rng.Float64() < 0.5 {
		child.Response = other.Response
	}
	if rng.Float64() < 0.5 {
		child.Activation = other.Activation
	}
	if rng.Float64() < 0.5 {
		child.Aggregation = other.Aggregation
	}
	return child
}

// --------------------------- ConnectionGene ---------------------------

// ConnectionGene represents a connection between two nodes in the genome.
type ConnectionGene struct {
	Key     ConnectionKey
	Weight  float64
	Enabled bool
}

// ConnectionKey uniquely identifies a connection gene (innovation).
type ConnectionKey struct {
	InNodeID  int
	OutNodeID int
}

// NewConnectionGene creates a new ConnectionGene with attributes initialized according to the config.
func NewConnectionGene(key ConnectionKey, config *GenomeConfig, rng *rand.Rand) *ConnectionGene {
	cg := &ConnectionGene{
		Key:     key,
		Enabled: parseBoolAttribute(config.EnabledDefault, rng),
	}
	cg.Weight = initFloatAttribute(config.WeightInitMean, config.WeightInitStdev, config.WeightInitType, config.WeightMinValue, config.WeightMaxValue, rng)
	return cg
}

// String returns a string representation of the ConnectionGene.
func (cg *ConnectionGene) String() string {
	return fmt.Sprintf("ConnGene(Key: %d->%d, Weight: %.3f, Enabled: %t)",
		cg.Key.InNodeID, cg.Key.OutNodeID, cg.Weight, cg.Enabled)
}

// Copy creates a deep copy of the ConnectionGene.
func (cg *ConnectionGene) Copy() *ConnectionGene {
	c := *cg
	return &c
}

// Mutate adjusts the weight and the enabled flag. Enabling a connection is
// refused when it would close a cycle in a feed-forward genome.
func (cg *ConnectionGene) Mutate(genome *Genome, rng *rand.Rand) {
	config := genome.Config
	cg.Weight = mutateFloatAttribute(cg.Weight, config.WeightMutateRate, config.WeightReplaceRate, config.WeightMutatePower, config.WeightInitMean, config.WeightInitStdev, config.WeightInitType, config.WeightMinValue, config.WeightMaxValue, rng)
	cg.Enabled = mutateBoolAttribute(cg.Enabled, config.EnabledMutateRate, config.EnabledRateToTrueAdd, config.EnabledRateToFalseAdd, genome, cg, rng)
}

// Crossover creates a new ConnectionGene by randomly inheriting attributes from two parent ConnectionGenes.
func (cg *ConnectionGene) Crossover(other *ConnectionGene, rng *rand.Rand) *ConnectionGene {
	child := cg.Copy()
	if rng.Float64() < 0.5 {
		child.Weight = other.Weight
	}
	if rng.Float64() < 0.5 {
		child.Enabled = other.Enabled
	}
	return child
}

// --------------------------- Attribute Helpers ---------------------------

func initFloatAttribute(mean, stdev float64, initType string, minVal, maxVal float64, rng *rand.Rand) float64 {
	var val float64
	switch strings.ToLower(initType) {
	case "uniform":
		// approx 2 std devs either side of the mean
		rangeMin := math.Max(minVal, mean-(2*stdev))
		rangeMax := math.Min(maxVal, mean+(2*stdev))
		if rangeMax < rangeMin {
			rangeMax = rangeMin
		}
		val = rng.Float64()*(rangeMax-rangeMin) + rangeMin
	default:
		val = rng.NormFloat64()*stdev + mean
	}
	return clamp(val, minVal, maxVal)
}

func mutateFloatAttribute(value, mutateRate, replaceRate, mutatePower, initMean, initStdev float64, initType string, minVal, maxVal float64, rng *rand.Rand) float64 {
	r := rng.Float64()
	if r < mutateRate {
		value += rng.NormFloat64() * mutatePower
		return clamp(value, minVal, maxVal)
	}
	if r < mutateRate+replaceRate {
		return initFloatAttribute(initMean, initStdev, initType, minVal, maxVal, rng)
	}
	return value
}

func mutateBoolAttribute(value bool, mutateRate, rateToTrueAdd, rateToFalseAdd float64, genome *Genome, cg *ConnectionGene, rng *rand.Rand) bool {
	effectiveMutateRate := mutateRate
	if value {
		effectiveMutateRate += rateToFalseAdd
	} else {
		effectiveMutateRate += rateToTrueAdd
	}

	if effectiveMutateRate > 0 && rng.Float64() < effectiveMutateRate {
		newState := rng.Float64() < 0.5
		if !value && newState && genome.Config.FeedForward {
			if createsCycle(genome, cg.Key.InNodeID, cg.Key.OutNodeID) {
				return false
			}
		}
		return newState
	}
	return value
}

func initStringAttribute(defaultVal string, options []string, rng *rand.Rand) string {
	if len(options) == 0 {
		return defaultVal
	}
	switch strings.ToLower(defaultVal) {
	case "random", "none", "":
		return options[rng.Intn(len(options))]
	}
	for _, opt := range options {
		if opt == defaultVal {
			return defaultVal
		}
	}
	return options[rng.Intn(len(options))]
}

func mutateStringAttribute(value string, mutateRate float64, options []string, rng *rand.Rand) string {
	if len(options) <= 1 || mutateRate <= 0 || rng.Float64() >= mutateRate {
		return value
	}
	// Choose a random option different from the current value.
	candidates := make([]string, 0, len(options))
	for _, opt := range options {
		if opt != value {
			candidates = append(candidates, opt)
		}
	}
	if len(candidates) == 0 {
		return value
	}
	return candidates[rng.Intn(len(candidates))]
}
