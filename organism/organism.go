// Package organism holds the mate registry a root module keeps while it is
// fertile, and the strategies it uses to pick a mate from it.
package organism

import "fmt"

// Stage tags a registry entry.
type Stage int

const (
	Infant Stage = iota
	Adult
)

func (s Stage) String() string {
	switch s {
	case Infant:
		return "INFANT"
	case Adult:
		return "ADULT"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Organism is what a module knows about a mating candidate.
type Organism struct {
	ID      int
	Genome  string
	Mind    string
	Fitness float64
	Stage   Stage
}

// Registry is an ordered cache of mating candidates. Entries are unique by
// id; the order is insertion order and breaks fitness ties during selection.
//
// A Registry belongs to one module and is not safe for concurrent use.
type Registry struct {
	entries []Organism
}

func NewRegistry() *Registry { return &Registry{} }

// UpdateOrCreate stores the latest broadcast of a candidate. A known id is
// overwritten in place, keeping its position; an unknown id is appended as
// an adult.
func (r *Registry) UpdateOrCreate(id int, fitness float64, genome, mind string) {
	if i := r.index(id); i >= 0 {
		e := &r.entries[i]
		e.Fitness = fitness
		e.Genome = genome
		e.Mind = mind
		return
	}
	r.entries = append(r.entries, Organism{
		ID:      id,
		Genome:  genome,
		Mind:    mind,
		Fitness: fitness,
		Stage:   Adult,
	})
}

// Find returns a copy of the entry for id.
func (r *Registry) Find(id int) (Organism, bool) {
	if i := r.index(id); i >= 0 {
		return r.entries[i], true
	}
	return Organism{}, false
}

func (r *Registry) index(id int) int {
	for i := range r.entries {
		if r.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// Clear forgets every candidate.
func (r *Registry) Clear() { r.entries = nil }

func (r *Registry) Len() int { return len(r.entries) }

// All returns the entries in registry order. The slice is a copy.
func (r *Registry) All() []Organism {
	out := make([]Organism, len(r.entries))
	copy(out, r.entries)
	return out
}

// IDs returns the candidate ids in registry order.
func (r *Registry) IDs() []int {
	ids := make([]int, len(r.entries))
	for i, e := range r.entries {
		ids[i] = e.ID
	}
	return ids
}
