package neat

import (
	"math/rand"
	"sort"
)

// Fixed CPPN topology keys. Inputs are negative, the single output is 0 and
// hidden nodes take positive keys.
const (
	BiasKey   = -1
	XKey      = -2
	YKey      = -3
	OutputKey = 0
)

var (
	// InputKeys lists the CPPN inputs in activation order.
	InputKeys = []int{BiasKey, XKey, YKey}
	// OutputKeys lists the CPPN outputs.
	OutputKeys = []int{OutputKey}
)

// Genome is a CPPN individual: node genes (inputs included) and connection genes.
type Genome struct {
	Nodes       map[int]*NodeGene                 // Map node ID -> NodeGene
	Connections map[ConnectionKey]*ConnectionGene // Map connection key -> ConnectionGene
	Config      *GenomeConfig
}

// NewGenome creates an empty Genome bound to config.
func NewGenome(config *GenomeConfig) *Genome {
	return &Genome{
		Nodes:       make(map[int]*NodeGene),
		Connections: make(map[ConnectionKey]*ConnectionGene),
		Config:      config,
	}
}

// NewMinimalGenome builds the smallest CPPN: a linear bias input, x and y
// inputs and one output, each with a random activation, fully connected.
func NewMinimalGenome(config *GenomeConfig, rng *rand.Rand) *Genome {
	g := NewGenome(config)
	g.Nodes[BiasKey] = newInputGene(BiasKey, LinearActivation)
	g.Nodes[XKey] = newInputGene(XKey, randomActivation(config, rng))
	g.Nodes[YKey] = newInputGene(YKey, randomActivation(config, rng))

	out := NewNodeGene(OutputKey, config, rng)
	out.Activation = randomActivation(config, rng)
	g.Nodes[OutputKey] = out

	for _, ik := range InputKeys {
		for _, ok := range OutputKeys {
			connKey := ConnectionKey{InNodeID: ik, OutNodeID: ok}
			conn := NewConnectionGene(connKey, config, rng)
			conn.Enabled = true
			g.Connections[connKey] = conn
		}
	}
	return g
}

func randomActivation(config *GenomeConfig, rng *rand.Rand) string {
	return initStringAttribute("random", config.ActivationOptions, rng)
}

// Copy returns a deep copy sharing the config.
func (g *Genome) Copy() *Genome {
	c := NewGenome(g.Config)
	for k, n := range g.Nodes {
		c.Nodes[k] = n.Copy()
	}
	for k, conn := range g.Connections {
		c.Connections[k] = conn.Copy()
	}
	return c
}

// Crossover creates a child from two parents. parent1 is the primary parent:
// its nodes and disjoint connections are inherited, homologous genes mix.
func Crossover(parent1, parent2 *Genome, rng *rand.Rand) *Genome {
	g := NewGenome(parent1.Config)

	for _, key := range parent1.nodeKeys() {
		node1 := parent1.Nodes[key]
		if node2, ok := parent2.Nodes[key]; ok && key != BiasKey {
			g.Nodes[key] = node1.Crossover(node2, rng)
		} else {
			g.Nodes[key] = node1.Copy()
		}
	}

	for _, key := range parent1.connectionKeys() {
		conn1 := parent1.Connections[key]
		if conn2, ok := parent2.Connections[key]; ok {
			g.Connections[key] = conn1.Crossover(conn2, rng)
		} else {
			g.Connections[key] = conn1.Copy()
		}
	}
	// Disjoint and excess genes of the secondary parent are not inherited.

	if g.Config.FeedForward {
		// A link re-enabled from parent2 must not close a cycle of parent1's topology.
		for _, key := range g.connectionKeys() {
			conn := g.Connections[key]
			if conn.Enabled && !parent1.Connections[key].Enabled {
				conn.Enabled = false
				conn.Enabled = !createsCycle(g, key.InNodeID, key.OutNodeID)
			}
		}
	}
	return g
}

// Mutate applies structural mutations followed by attribute mutations.
func (g *Genome) Mutate(rng *rand.Rand) {
	singleMutation := g.Config.SingleStructuralMutation
	structureMutated := false

	if rng.Float64() < g.Config.NodeAddProb {
		structureMutated = g.mutateAddNode(rng)
	}
	if !singleMutation || !structureMutated {
		if rng.Float64() < g.Config.ConnAddProb {
			structureMutated = g.mutateAddConnection(rng) || structureMutated
		}
	}
	if !singleMutation || !structureMutated {
		if rng.Float64() < g.Config.NodeDeleteProb {
			structureMutated = g.mutateDeleteNode(rng) || structureMutated
		}
	}
	if !singleMutation || !structureMutated {
		if rng.Float64() < g.Config.ConnDeleteProb {
			g.mutateDeleteConnection(rng)
		}
	}

	for _, key := range g.nodeKeys() {
		node := g.Nodes[key]
		if isInput(key) {
			// Only the activation of the x and y inputs evolves.
			if key != BiasKey {
				node.Activation = mutateStringAttribute(node.Activation, g.Config.ActivationMutateRate, g.Config.ActivationOptions, rng)
			}
			continue
		}
		node.Mutate(g.Config, rng)
	}
	for _, key := range g.connectionKeys() {
		g.Connections[key].Mutate(g, rng)
	}
}

// NextNodeKey returns one more than the highest key in the genome.
func (g *Genome) NextNodeKey() int {
	next := OutputKey + 1
	for k := range g.Nodes {
		if k >= next {
			next = k + 1
		}
	}
	return next
}

// mutateAddNode splits a random enabled connection with a new hidden node.
// Disabled connections are skipped: re-routing one may close a cycle.
func (g *Genome) mutateAddNode(rng *rand.Rand) bool {
	var keys []ConnectionKey
	for _, k := range g.connectionKeys() {
		if g.Connections[k].Enabled {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return false
	}
	connToSplit := g.Connections[keys[rng.Intn(len(keys))]]
	connToSplit.Enabled = false

	newNodeKey := g.NextNodeKey()
	g.Nodes[newNodeKey] = NewNodeGene(newNodeKey, g.Config, rng)

	conn1Key := ConnectionKey{InNodeID: connToSplit.Key.InNodeID, OutNodeID: newNodeKey}
	conn1 := NewConnectionGene(conn1Key, g.Config, rng)
	conn1.Weight = 1.0
	conn1.Enabled = true
	g.Connections[conn1Key] = conn1

	conn2Key := ConnectionKey{InNodeID: newNodeKey, OutNodeID: connToSplit.Key.OutNodeID}
	conn2 := NewConnectionGene(conn2Key, g.Config, rng)
	conn2.Weight = connToSplit.Weight
	conn2.Enabled = true
	g.Connections[conn2Key] = conn2
	return true
}

// mutateAddConnection adds a connection between two unconnected nodes.
func (g *Genome) mutateAddConnection(rng *rand.Rand) bool {
	possibleInputs := g.nodeKeys()
	possibleOutputs := make([]int, 0, len(possibleInputs))
	for _, k := range possibleInputs {
		if !isInput(k) {
			possibleOutputs = append(possibleOutputs, k)
		}
	}
	if len(possibleInputs) == 0 || len(possibleOutputs) == 0 {
		return false
	}

	const maxAttempts = 20
	for i := 0; i < maxAttempts; i++ {
		inNodeKey := possibleInputs[rng.Intn(len(possibleInputs))]
		outNodeKey := possibleOutputs[rng.Intn(len(possibleOutputs))]

		connKey := ConnectionKey{InNodeID: inNodeKey, OutNodeID: outNodeKey}
		if _, exists := g.Connections[connKey]; exists {
			continue
		}
		if g.Config.FeedForward && createsCycle(g, inNodeKey, outNodeKey) {
			continue
		}
		g.Connections[connKey] = NewConnectionGene(connKey, g.Config, rng)
		return true
	}
	return false
}

// mutateDeleteNode removes a random hidden node and every connection touching it.
func (g *Genome) mutateDeleteNode(rng *rand.Rand) bool {
	var hidden []int
	for _, k := range g.nodeKeys() {
		if k > OutputKey {
			hidden = append(hidden, k)
		}
	}
	if len(hidden) == 0 {
		return false
	}
	del := hidden[rng.Intn(len(hidden))]
	for key := range g.Connections {
		if key.InNodeID == del || key.OutNodeID == del {
			delete(g.Connections, key)
		}
	}
	delete(g.Nodes, del)
	return true
}

func (g *Genome) mutateDeleteConnection(rng *rand.Rand) bool {
	keys := g.connectionKeys()
	if len(keys) == 0 {
		return false
	}
	delete(g.Connections, keys[rng.Intn(len(keys))])
	return true
}

func isInput(key int) bool {
	return key < 0
}

// nodeKeys returns node keys in ascending order so that seeded runs are reproducible.
func (g *Genome) nodeKeys() []int {
	keys := make([]int, 0, len(g.Nodes))
	for k := range g.Nodes {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// connectionKeys returns connection keys ordered by (in, out).
func (g *Genome) connectionKeys() []ConnectionKey {
	keys := make([]ConnectionKey, 0, len(g.Connections))
	for k := range g.Connections {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].InNodeID != keys[j].InNodeID {
			return keys[i].InNodeID < keys[j].InNodeID
		}
		return keys[i].OutNodeID < keys[j].OutNodeID
	})
	return keys
}

// createsCycle reports whether outNode already reaches inNode through enabled connections.
func createsCycle(genome *Genome, inNode, outNode int) bool {
	if inNode == outNode {
		return true
	}

	visited := make(map[int]bool)
	queue := []int{outNode}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current == inNode {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true

		for connKey, conn := range genome.Connections {
			if conn.Enabled && connKey.InNodeID == current {
				queue = append(queue, connKey.OutNodeID)
			}
		}
	}
	return false
}
