package organism

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registryWith(fitness ...float64) *Registry {
	r := NewRegistry()
	for i, f := range fitness {
		r.UpdateOrCreate(i+1, f, "G", "M")
	}
	return r
}

func TestUpdateOrCreate(t *testing.T) {
	r := NewRegistry()
	r.UpdateOrCreate(7, 1, "g", "m")
	r.UpdateOrCreate(3, 2, "g", "m")
	require.Equal(t, 2, r.Len())

	r.UpdateOrCreate(7, 5, "g2", "m2")
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []int{7, 3}, r.IDs())
	got, ok := r.Find(7)
	require.True(t, ok)
	want := Organism{ID: 7, Genome: "g2", Mind: "m2", Fitness: 5, Stage: Adult}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}

	r.UpdateOrCreate(9, 0, "", "")
	assert.Equal(t, 3, r.Len())

	r.Clear()
	assert.Equal(t, 0, r.Len())
	_, ok = r.Find(7)
	assert.False(t, ok)
}

func TestAllIsACopy(t *testing.T) {
	r := registryWith(1)
	all := r.All()
	all[0].Fitness = 100
	got, _ := r.Find(1)
	assert.Equal(t, 1.0, got.Fitness)
}

func TestBestTwoTieBreaksByRegistryOrder(t *testing.T) {
	r := registryWith(3.1, 9.0, 0.2, 9.0)
	ids := BestTwo{}.SelectParents(r.All())
	assert.Equal(t, []int{2, 4}, ids)

	assert.Equal(t, []int{1}, BestTwo{}.SelectParents(registryWith(3).All()))
	assert.Empty(t, BestTwo{}.SelectParents(nil))
}

func TestBinaryTournament(t *testing.T) {
	sel := BinaryTournament{Rng: rand.New(rand.NewSource(1))}
	r := registryWith(1, 2, 3)
	for i := 0; i < 50; i++ {
		ids := sel.SelectParents(r.All())
		require.Len(t, ids, Quota)
		// the weakest candidate can never win a tournament
		assert.NotContains(t, ids, 1)
	}
	assert.Equal(t, []int{1}, sel.SelectParents(registryWith(4).All()))
	assert.Nil(t, sel.SelectParents(nil))
}

func TestRandomSelectionCoversCandidates(t *testing.T) {
	sel := Random{Rng: rand.New(rand.NewSource(2))}
	r := registryWith(0, 0, 100)
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		for _, id := range sel.SelectParents(r.All()) {
			seen[id] = true
		}
	}
	assert.Len(t, seen, 3)
}

func TestNewSelector(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for name, want := range map[string]Selector{
		"best_two":          BestTwo{},
		"Binary-Tournament": BinaryTournament{Rng: rng},
		"RANDOM":            Random{Rng: rng},
	} {
		got, err := NewSelector(name, rng)
		require.NoError(t, err, name)
		assert.IsType(t, want, got, name)
	}
	_, err := NewSelector("roulette", rng)
	assert.ErrorIs(t, err, ErrUnknownSelection)
}

func TestSelectMate(t *testing.T) {
	id, ok := SelectMate(BestTwo{}, registryWith(1, 5, 2))
	require.True(t, ok)
	assert.Equal(t, 2, id)

	_, ok = SelectMate(BestTwo{}, NewRegistry())
	assert.False(t, ok)
}
