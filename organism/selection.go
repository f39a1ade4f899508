package organism

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// ErrUnknownSelection is returned by NewSelector for an unrecognised name.
var ErrUnknownSelection = errors.New("organism: unknown parent selection")

// Selector picks parents from a list of candidates and returns their ids,
// best choice first.
type Selector interface {
	SelectParents(candidates []Organism) []int
}

// Quota is the number of parents a selector returns when it can.
const Quota = 2

// BestTwo returns the fittest candidates. Equal fitness keeps registry order.
type BestTwo struct{}

func (BestTwo) SelectParents(candidates []Organism) []int {
	sorted := make([]Organism, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Fitness > sorted[j].Fitness
	})
	n := min(Quota, len(sorted))
	ids := make([]int, n)
	for i := 0; i < n; i++ {
		ids[i] = sorted[i].ID
	}
	return ids
}

// BinaryTournament samples two distinct candidates at a time and keeps the
// fitter one, until the quota is filled. A single candidate always wins.
type BinaryTournament struct {
	Rng *rand.Rand
}

func (b BinaryTournament) SelectParents(candidates []Organism) []int {
	switch len(candidates) {
	case 0:
		return nil
	case 1:
		return []int{candidates[0].ID}
	}
	ids := make([]int, 0, Quota)
	for len(ids) < Quota {
		i := b.Rng.Intn(len(candidates))
		j := b.Rng.Intn(len(candidates) - 1)
		if j >= i {
			j++
		}
		winner := candidates[i]
		if candidates[j].Fitness > winner.Fitness {
			winner = candidates[j]
		}
		ids = append(ids, winner.ID)
	}
	return ids
}

// Random picks candidates uniformly, ignoring fitness.
type Random struct {
	Rng *rand.Rand
}

func (r Random) SelectParents(candidates []Organism) []int {
	if len(candidates) == 0 {
		return nil
	}
	ids := make([]int, Quota)
	for i := range ids {
		ids[i] = candidates[r.Rng.Intn(len(candidates))].ID
	}
	return ids
}

// NewSelector returns the selector named by a configuration value:
// "best_two", "binary_tournament" or "random". Case and dashes are ignored.
func NewSelector(name string, rng *rand.Rand) (Selector, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_") {
	case "best_two", "besttwo", "":
		return BestTwo{}, nil
	case "binary_tournament", "binarytournament", "tournament":
		return BinaryTournament{Rng: rng}, nil
	case "random":
		return Random{Rng: rng}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSelection, name)
	}
}

// SelectMate runs s over the registry and returns the first chosen id.
// The boolean is false when nothing was selected.
func SelectMate(s Selector, r *Registry) (int, bool) {
	ids := s.SelectParents(r.All())
	if len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}
