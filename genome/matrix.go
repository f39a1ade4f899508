package genome

import (
	"bufio"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// MatrixGenome is an x×y grid of real values.
type MatrixGenome struct {
	x, y     int
	genes    [][]float64
	settings *Settings
}

// NewMatrixGenome returns an all-zero x×y matrix. A zero dimension gives
// the 0x0 matrix.
func NewMatrixGenome(x, y int, s *Settings) *MatrixGenome {
	if x == 0 || y == 0 {
		x, y = 0, 0
	}
	m := &MatrixGenome{x: x, y: y, genes: make([][]float64, x), settings: s.orDefault()}
	for i := range m.genes {
		m.genes[i] = make([]float64, y)
	}
	return m
}

// RandomMatrixGenome fills an x×y matrix with N(0,1) samples.
func RandomMatrixGenome(x, y int, s *Settings, rng *rand.Rand) *MatrixGenome {
	m := NewMatrixGenome(x, y, s)
	for i := range m.genes {
		for j := range m.genes[i] {
			m.genes[i][j] = rng.NormFloat64()
		}
	}
	return m
}

// NewStartingMatrixGenome creates the zero-parent matrix: the configured
// starting grid of normal samples, or an empty matrix when none is set.
func NewStartingMatrixGenome(s *Settings, rng *rand.Rand) *MatrixGenome {
	s = s.orDefault()
	if s.MatrixStartX == 0 || s.MatrixStartY == 0 {
		return NewMatrixGenome(0, 0, s)
	}
	return RandomMatrixGenome(s.MatrixStartX, s.MatrixStartY, s, rng)
}

// MatrixFromRows copies rows into a new genome. Rows must be of equal length.
func MatrixFromRows(rows [][]float64, s *Settings) (*MatrixGenome, error) {
	y := 0
	if len(rows) > 0 {
		y = len(rows[0])
	}
	for i, row := range rows {
		if len(row) != y {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrMalformed, i, len(row), y)
		}
	}
	m := NewMatrixGenome(len(rows), y, s)
	for i := range m.genes {
		copy(m.genes[i], rows[i])
	}
	return m, nil
}

func (m *MatrixGenome) Kind() Kind { return KindMatrix }

// Dims returns the matrix dimensions.
func (m *MatrixGenome) Dims() (x, y int) { return m.x, m.y }

func (m *MatrixGenome) At(i, j int) float64 { return m.genes[i][j] }

// Rows returns a copy of the values.
func (m *MatrixGenome) Rows() [][]float64 {
	out := make([][]float64, m.x)
	for i := range out {
		out[i] = append([]float64(nil), m.genes[i]...)
	}
	return out
}

// Mutate adds Gaussian noise to each cell with probability MatrixMutationRate.
func (m *MatrixGenome) Mutate(rng *rand.Rand) {
	for i := 0; i < m.x; i++ {
		for j := 0; j < m.y; j++ {
			if rng.Float64() < m.settings.MatrixMutationRate {
				m.genes[i][j] += rng.NormFloat64() * m.settings.MatrixMutationStrength
			}
		}
	}
}

// CrossoverAndMutate shrinks the receiver to the overlap with other, takes
// each cell from either parent with equal chance and then mutates. The
// matrix never grows.
func (m *MatrixGenome) CrossoverAndMutate(other Genome, rng *rand.Rand) error {
	o, ok := other.(*MatrixGenome)
	if !ok {
		return fmt.Errorf("%w: %s with %s", ErrKindMismatch, m.Kind(), other.Kind())
	}
	if m.x > o.x {
		m.x = o.x
		m.genes = m.genes[:m.x]
	}
	if m.y > o.y {
		m.y = o.y
		for i := range m.genes {
			m.genes[i] = m.genes[i][:m.y]
		}
	}
	for i := 0; i < m.x; i++ {
		for j := 0; j < m.y; j++ {
			if rng.Float64() < 0.5 {
				m.genes[i][j] = o.genes[i][j]
			}
		}
	}
	m.Mutate(rng)
	return nil
}

func (m *MatrixGenome) Clone() Genome {
	c := &MatrixGenome{x: m.x, y: m.y, settings: m.settings}
	c.genes = m.Rows()
	return c
}

func (m *MatrixGenome) String() string {
	var b strings.Builder
	b.WriteString(string(KindMatrix))
	b.WriteString(" " + strconv.Itoa(m.x) + " " + strconv.Itoa(m.y) + " VALUES")
	for _, row := range m.genes {
		for _, v := range row {
			b.WriteByte(' ')
			b.WriteString(formatFloat(v))
		}
	}
	return b.String()
}

func readMatrix(sc *bufio.Scanner, s *Settings) (*MatrixGenome, error) {
	w := newWords(sc)
	x := w.Int()
	y := w.Int()
	w.Expect("VALUES")
	if w.Err() != nil {
		return nil, w.Err()
	}
	if x < 0 || y < 0 {
		return nil, fmt.Errorf("%w: negative dimensions %dx%d", ErrMalformed, x, y)
	}
	// An empty matrix is always 0x0, so every row read consumes values.
	if (x == 0) != (y == 0) {
		return nil, fmt.Errorf("%w: empty dimension in %dx%d", ErrMalformed, x, y)
	}
	// Rows grow as values arrive so that a bogus header cannot force a huge allocation.
	m := &MatrixGenome{x: x, y: y, settings: s.orDefault()}
	for i := 0; i < x && w.Err() == nil; i++ {
		row := make([]float64, 0, min(y, 1024))
		for j := 0; j < y && w.Err() == nil; j++ {
			row = append(row, w.Float())
		}
		m.genes = append(m.genes, row)
	}
	if w.Err() != nil {
		return nil, w.Err()
	}
	return m, nil
}
