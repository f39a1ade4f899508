package genome

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strings"
)

// Manager owns a pool of genomes keyed by locally assigned ids. Ids start at
// 1, increase monotonically and are never reused. Ids mean nothing outside
// the manager: other modules only ever receive genome text.
//
// A Manager is owned by a single module and is not safe for concurrent use.
type Manager struct {
	settings *Settings
	rng      *rand.Rand
	genomes  map[int]Genome
	nextID   int
}

// NewManager returns an empty manager.
func NewManager(s *Settings, rng *rand.Rand) *Manager {
	return &Manager{
		settings: s.orDefault(),
		rng:      rng,
		genomes:  make(map[int]Genome),
		nextID:   1,
	}
}

// Settings returns the operator parameters of the pool.
func (m *Manager) Settings() *Settings { return m.settings }

// CreateGenome creates a genome from zero, one or two parents and returns
// its id:
//
//	0 parents: a minimal genome of the configured kind
//	1 parent:  a mutated copy
//	2 parents: a copy of the first crossed with the second, then mutated
//
// Any failure leaves the pool unchanged.
func (m *Manager) CreateGenome(parentIDs ...int) (int, error) {
	if len(parentIDs) > 2 {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedArity, len(parentIDs))
	}
	parents := make([]Genome, len(parentIDs))
	for i, id := range parentIDs {
		g, ok := m.genomes[id]
		if !ok {
			return 0, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		parents[i] = g
	}

	var child Genome
	switch len(parents) {
	case 0:
		g, err := New(m.settings.Kind, m.settings, m.rng)
		if err != nil {
			return 0, err
		}
		child = g
	case 1:
		child = parents[0].Clone()
		child.Mutate(m.rng)
	case 2:
		child = parents[0].Clone()
		if err := child.CrossoverAndMutate(parents[1], m.rng); err != nil {
			return 0, err
		}
	}
	return m.Add(child), nil
}

// Add stores g under a fresh id.
func (m *Manager) Add(g Genome) int {
	id := m.nextID
	m.nextID++
	m.genomes[id] = g
	return id
}

// Genome returns the genome stored under id.
func (m *Manager) Genome(id int) (Genome, bool) {
	g, ok := m.genomes[id]
	return g, ok
}

// GenomeToString returns the text of the genome stored under id.
func (m *Manager) GenomeToString(id int) (string, error) {
	g, ok := m.genomes[id]
	if !ok {
		return "", fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return g.String(), nil
}

// GenomeFromStream decodes the next genome of a word scanner and stores it.
func (m *Manager) GenomeFromStream(sc *bufio.Scanner) (int, error) {
	g, err := Decode(sc, m.settings)
	if err != nil {
		return 0, err
	}
	return m.Add(g), nil
}

// GenomeFromString parses a single genome and stores it.
func (m *Manager) GenomeFromString(text string) (int, error) {
	g, err := Parse(text, m.settings)
	if err != nil {
		return 0, err
	}
	return m.Add(g), nil
}

// Remove drops id from the pool and reports whether it was present.
func (m *Manager) Remove(id int) bool {
	_, ok := m.genomes[id]
	delete(m.genomes, id)
	return ok
}

func (m *Manager) Len() int { return len(m.genomes) }

// IDs returns the stored ids in ascending order.
func (m *Manager) IDs() []int {
	ids := make([]int, 0, len(m.genomes))
	for id := range m.genomes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// WritePool writes the whole pool as
//
//	POOL <count> <next id> (<id> <genome>)*
func (m *Manager) WritePool(w io.Writer) error {
	ids := m.IDs()
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "POOL %d %d", len(ids), m.nextID)
	for _, id := range ids {
		fmt.Fprintf(bw, "\n%d %s", id, m.genomes[id].String())
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

// PoolString returns the text written by WritePool.
func (m *Manager) PoolString() string {
	var b strings.Builder
	_ = m.WritePool(&b)
	return b.String()
}

// ReadPool replaces the pool with the one encoded in r. On error the
// manager is left untouched.
func (m *Manager) ReadPool(r io.Reader) error {
	sc := NewScanner(r)
	w := newWords(sc)
	w.Expect("POOL")
	count := w.Int()
	next := w.Int()
	if w.Err() != nil {
		return w.Err()
	}
	if next < 1 || count < 0 {
		return fmt.Errorf("%w: pool header %d %d", ErrMalformed, count, next)
	}

	genomes := make(map[int]Genome)
	for i := 0; i < count; i++ {
		id := w.Int()
		if w.Err() != nil {
			return w.Err()
		}
		if id <= 0 || id >= next {
			return fmt.Errorf("%w: pool id %d outside [1,%d)", ErrMalformed, id, next)
		}
		if _, dup := genomes[id]; dup {
			return fmt.Errorf("%w: duplicate pool id %d", ErrMalformed, id)
		}
		g, err := Decode(sc, m.settings)
		if err != nil {
			return fmt.Errorf("pool genome %d: %w", id, err)
		}
		genomes[id] = g
	}
	m.genomes = genomes
	m.nextID = next
	return nil
}
