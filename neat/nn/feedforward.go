package nn

import (
	"fmt"
	"sort"

	"github.com/baldhumanity/roombots/neat"
)

// neuralNode represents a node during network activation.
// It stores pre-fetched activation/aggregation functions and node properties.
type neuralNode struct {
	Key           int
	Bias          float64
	Response      float64
	ActivationFn  neat.ActivationType
	AggregationFn neat.AggregationType
	InputKeys     []neat.ConnectionKey // Incoming enabled connections
}

// FeedForwardNetwork is the phenotype of a CPPN genome.
type FeedForwardNetwork struct {
	InputKeys     []int                          // Input node keys (negative)
	OutputKeys    []int                          // Output node keys
	NodeEvalOrder []int                          // Topologically sorted non-input nodes
	Nodes         map[int]neuralNode             // Every node, inputs included
	Weights       map[neat.ConnectionKey]float64 // Enabled connections only
}

// CreateFeedForwardNetwork builds a runnable feed-forward network from a genome.
// It performs a topological sort to determine the activation order.
func CreateFeedForwardNetwork(g *neat.Genome) (*FeedForwardNetwork, error) {
	if !g.Config.FeedForward {
		return nil, fmt.Errorf("cannot create FeedForwardNetwork for a genome configured with FeedForward=false")
	}

	nodes := make(map[int]neuralNode, len(g.Nodes))
	weights := make(map[neat.ConnectionKey]float64)
	incoming := make(map[int][]neat.ConnectionKey)

	for key, gn := range g.Nodes {
		actFn, err := neat.GetActivation(gn.Activation)
		if err != nil {
			return nil, fmt.Errorf("failed to get activation function '%s' for node %d: %w", gn.Activation, key, err)
		}
		aggFn, err := neat.GetAggregation(gn.Aggregation)
		if err != nil {
			return nil, fmt.Errorf("failed to get aggregation function '%s' for node %d: %w", gn.Aggregation, key, err)
		}
		nodes[key] = neuralNode{
			Key:           key,
			Bias:          gn.Bias,
			Response:      gn.Response,
			ActivationFn:  actFn,
			AggregationFn: aggFn,
		}
	}
	for _, ik := range neat.InputKeys {
		if _, ok := nodes[ik]; !ok {
			return nil, fmt.Errorf("genome has no node for input %d", ik)
		}
	}

	for key, gc := range g.Connections {
		if !gc.Enabled {
			continue
		}
		if _, ok := nodes[key.InNodeID]; !ok {
			return nil, fmt.Errorf("connection %d->%d starts at an unknown node", key.InNodeID, key.OutNodeID)
		}
		if _, ok := nodes[key.OutNodeID]; !ok {
			return nil, fmt.Errorf("connection %d->%d ends at an unknown node", key.InNodeID, key.OutNodeID)
		}
		weights[key] = gc.Weight
		incoming[key.OutNodeID] = append(incoming[key.OutNodeID], key)
	}
	for key, node := range nodes {
		inputs := incoming[key]
		sort.Slice(inputs, func(i, j int) bool { return inputs[i].InNodeID < inputs[j].InNodeID })
		node.InputKeys = inputs
		nodes[key] = node
	}

	// Topological sort of nodes (Kahn's algorithm)
	inDegree := make(map[int]int, len(nodes))
	graph := make(map[int][]int, len(nodes))
	for nk := range nodes {
		inDegree[nk] = 0
	}
	for connKey := range weights {
		graph[connKey.InNodeID] = append(graph[connKey.InNodeID], connKey.OutNodeID)
		inDegree[connKey.OutNodeID]++
	}

	queue := []int{}
	for nk, d := range inDegree {
		if d == 0 {
			queue = append(queue, nk)
		}
	}
	sort.Ints(queue)

	evalOrder := []int{}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		evalOrder = append(evalOrder, u)

		neighbors := graph[u]
		sort.Ints(neighbors)
		for _, v := range neighbors {
			inDegree[v]--
			if inDegree[v] == 0 {
				queue = append(queue, v)
			}
		}
		sort.Ints(queue)
	}
	if len(evalOrder) != len(nodes) {
		return nil, fmt.Errorf("failed topological sort: cycle detected (expected %d nodes, got %d)", len(nodes), len(evalOrder))
	}

	filtered := make([]int, 0, len(evalOrder))
	for _, nk := range evalOrder {
		if nk >= 0 {
			filtered = append(filtered, nk)
		}
	}

	return &FeedForwardNetwork{
		InputKeys:     neat.InputKeys,
		OutputKeys:    neat.OutputKeys,
		NodeEvalOrder: filtered,
		Nodes:         nodes,
		Weights:       weights,
	}, nil
}

// Activate computes the network's output for a given slice of input values.
// Each input value passes through the activation of its input node.
func (net *FeedForwardNetwork) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != len(net.InputKeys) {
		return nil, fmt.Errorf("mismatch between input count (%d) and network input nodes (%d)", len(inputs), len(net.InputKeys))
	}

	nodeValues := make(map[int]float64, len(net.Nodes))
	for i, ik := range net.InputKeys {
		nodeValues[ik] = net.Nodes[ik].ActivationFn(inputs[i])
	}

	var incInputsBuffer []float64
	for _, nodeKey := range net.NodeEvalOrder {
		node := net.Nodes[nodeKey]

		incInputs := incInputsBuffer[:0]
		for _, connKey := range node.InputKeys {
			incInputs = append(incInputs, nodeValues[connKey.InNodeID]*net.Weights[connKey])
		}
		incInputsBuffer = incInputs

		aggregated := node.AggregationFn(incInputs)
		nodeValues[nodeKey] = node.ActivationFn((aggregated + node.Bias) * node.Response)
	}

	outputs := make([]float64, len(net.OutputKeys))
	for i, ok := range net.OutputKeys {
		outputs[i] = nodeValues[ok]
	}
	return outputs, nil
}

// Query evaluates the CPPN at (x, y) with the bias input held at 1.
func (net *FeedForwardNetwork) Query(x, y float64) (float64, error) {
	out, err := net.Activate([]float64{1, x, y})
	if err != nil {
		return 0, err
	}
	return out[0], nil
}
