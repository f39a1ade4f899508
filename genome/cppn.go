package genome

import (
	"bufio"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/baldhumanity/roombots/neat"
	"github.com/baldhumanity/roombots/neat/nn"
)

// CppnGenome is a CPPN network plus the resolution of the grid it is
// sampled on.
type CppnGenome struct {
	net      *neat.Genome
	size     float64
	settings *Settings
}

// NewCppnGenome builds a minimal CPPN at the starting grid size.
func NewCppnGenome(s *Settings, rng *rand.Rand) *CppnGenome {
	s = s.orDefault()
	return &CppnGenome{
		net:      neat.NewMinimalGenome(s.Cppn, rng),
		size:     math.Max(s.StartingGridSize, s.MinGridSize),
		settings: s,
	}
}

func (c *CppnGenome) Kind() Kind { return KindCppn }

// Network returns the CPPN individual.
func (c *CppnGenome) Network() *neat.Genome { return c.net }

// Size returns the grid resolution hint.
func (c *CppnGenome) Size() float64 { return c.size }

// Mutate mutates the network and then, independently, the size.
func (c *CppnGenome) Mutate(rng *rand.Rand) {
	c.net.Mutate(rng)
	c.mutateSize(rng)
}

// CrossoverAndMutate crosses the networks with the receiver as primary
// parent, mutates the child network and averages the sizes with a U(0,1)
// jitter so that 5 and 6 give either parent's size half of the time.
func (c *CppnGenome) CrossoverAndMutate(other Genome, rng *rand.Rand) error {
	o, ok := other.(*CppnGenome)
	if !ok {
		return fmt.Errorf("%w: %s with %s", ErrKindMismatch, c.Kind(), other.Kind())
	}
	c.net = neat.Crossover(c.net, o.net, rng)
	c.net.Mutate(rng)
	c.size = (c.size + o.size + rng.Float64()) / 2.0
	c.mutateSize(rng)
	return nil
}

func (c *CppnGenome) mutateSize(rng *rand.Rand) {
	if rng.Float64() >= c.settings.SizeMutationRate {
		return
	}
	c.size += float64(rng.Intn(3) - 1)
	if c.size < c.settings.MinGridSize {
		c.size = c.settings.MinGridSize
	}
}

func (c *CppnGenome) Clone() Genome {
	return &CppnGenome{net: c.net.Copy(), size: c.size, settings: c.settings}
}

func (c *CppnGenome) String() string {
	var b strings.Builder
	b.WriteString(string(KindCppn))
	b.WriteByte(' ')
	b.WriteString(formatFloat(c.size))
	b.WriteByte(' ')
	c.net.WriteText(&b)
	return b.String()
}

// ActivationMatrix samples the CPPN on an n×n grid over [-1,1]², where n is
// the integer part of the size.
func (c *CppnGenome) ActivationMatrix() ([][]float64, error) {
	n := int(c.size)
	if n < 0 || math.IsNaN(c.size) || math.IsInf(c.size, 0) {
		return nil, fmt.Errorf("%w: grid size %v", ErrMalformed, c.size)
	}
	net, err := nn.CreateFeedForwardNetwork(c.net)
	if err != nil {
		return nil, err
	}
	grid := make([][]float64, n)
	for i := range grid {
		grid[i] = make([]float64, n)
		for j := range grid[i] {
			v, err := net.Query(gridCoord(i, n), gridCoord(j, n))
			if err != nil {
				return nil, err
			}
			grid[i][j] = v
		}
	}
	return grid, nil
}

func gridCoord(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return -1 + 2*float64(i)/float64(n-1)
}

func readCppn(sc *bufio.Scanner, s *Settings) (*CppnGenome, error) {
	s = s.orDefault()
	w := newWords(sc)
	size := w.Float()
	if w.Err() != nil {
		return nil, w.Err()
	}
	if math.IsNaN(size) || math.IsInf(size, 0) || size < s.MinGridSize {
		return nil, fmt.Errorf("%w: size %v below minimum %v", ErrMalformed, size, s.MinGridSize)
	}
	net, err := neat.ReadGenome(sc, s.Cppn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &CppnGenome{net: net, size: size, settings: s}, nil
}
