package protocol

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenomeSpreadFields(t *testing.T) {
	msg := New(TagGenomeSpread)
	msg = Add(msg, "ID", "7")
	msg = Add(msg, "FITNESS", "3.5")

	assert.Equal(t, "[GENOME_SPREAD_MESSAGE]ID=7;FITNESS=3.5;", msg)
	v, ok := Get(msg, "FITNESS")
	require.True(t, ok)
	assert.Equal(t, "3.5", v)

	v, ok = Get(msg, "MIND")
	assert.False(t, ok)
	assert.Empty(t, v)

	_, err := GetString(msg, "MIND")
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestGetMatchesWholeKeys(t *testing.T) {
	msg := Couple{
		First:  Spread{ID: 12, Fitness: 1},
		Second: Spread{ID: 3, Fitness: 2},
	}.Encode()

	_, ok := Get(msg, "ID")
	assert.False(t, ok, "ID must not match ID1")
	v, ok := Get(msg, "ID2")
	require.True(t, ok)
	assert.Equal(t, "3", v)

	// a key name appearing inside a value is not a field
	msg = Add(Add(New("[X]"), "GENOME", "ID=9"), "ID", "4")
	v, _ = Get(msg, "ID")
	assert.Equal(t, "4", v)
}

func TestTagOf(t *testing.T) {
	assert.Equal(t, TagCouple, TagOf(Couple{}.Encode()))
	assert.Equal(t, "", TagOf("7"))
	assert.Equal(t, "", TagOf("[unterminated"))
	assert.True(t, Is(TagConnectorsProblem, TagConnectorsProblem))
	assert.False(t, Is(TagCylinderProblem, TagConnectorsProblem))
}

func TestSpreadRoundTrip(t *testing.T) {
	in := Spread{ID: 42, Fitness: 0.125, Genome: "MATRIX 1 1 VALUES 2", Mind: "MINDS 0"}
	out, err := ParseSpread(in.Encode())
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = ParseSpread(FitnessUpdate{ID: 1}.Encode())
	assert.ErrorIs(t, err, ErrWrongTag)

	// genome and mind are optional
	out, err = ParseSpread("[GENOME_SPREAD_MESSAGE]ID=7;FITNESS=3.5;")
	require.NoError(t, err)
	assert.Equal(t, Spread{ID: 7, Fitness: 3.5}, out)

	_, err = ParseSpread("[GENOME_SPREAD_MESSAGE]FITNESS=3.5;")
	assert.ErrorIs(t, err, ErrMissingKey)
	_, err = ParseSpread("[GENOME_SPREAD_MESSAGE]ID=x;FITNESS=3.5;")
	assert.Error(t, err)
}

func TestCoupleRoundTrip(t *testing.T) {
	in := Couple{
		First:  Spread{ID: 1, Fitness: 9, Genome: "g1", Mind: "m1"},
		Second: Spread{ID: 2, Fitness: 4.5, Genome: "g2", Mind: "m2"},
	}
	out, err := ParseCouple(in.Encode())
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("couple mismatch (-want +got):\n%s", diff)
	}
}

func TestSimpleMessages(t *testing.T) {
	assert.Equal(t, "[ADULT_ANNOUNCEMENT]ID=5;", AdultAnnouncement(5))
	assert.Equal(t, "[DEATH_ANNOUNCEMENT_MESSAGE]ID=5;", DeathAnnouncement(5))
	assert.Equal(t, "[TO_RESERVE_MESSAGE]NAME=module_5;", ToReserve("module_5"))

	fu, err := ParseFitnessUpdate(FitnessUpdate{ID: 3, Fitness: 1.5}.Encode())
	require.NoError(t, err)
	assert.Equal(t, FitnessUpdate{ID: 3, Fitness: 1.5}, fu)

	rb, err := ParseRebuild(Rebuild{ID: 8, Genome: "G", Mind: "M"}.Encode())
	require.NoError(t, err)
	assert.Equal(t, Rebuild{ID: 8, Genome: "G", Mind: "M"}, rb)
}

func TestNamesOrganism(t *testing.T) {
	assert.True(t, NamesOrganism(DeathCommand(12), 12))
	assert.True(t, NamesOrganism("12\x00", 12))
	assert.False(t, NamesOrganism("121", 12))
	assert.True(t, NamesOrganism("[DIE]ID=12;", 12))
	assert.False(t, NamesOrganism("[DIE]", 12))
}

func TestAnglePackets(t *testing.T) {
	m := ModuleAngles{Index: 2, Timestamp: 1.25, Values: []float64{0.5, -1, 0}}
	got, err := ParseModuleAngles(m.Encode(), 3)
	require.NoError(t, err)
	assert.Equal(t, m, got)

	// fewer values than motors pads with zeros
	got, err = ParseModuleAngles(ModuleAngles{Index: 0, Values: []float64{1}}.Encode(), 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, got.Values)

	o := OrganismAngles{Timestamp: 2, Rows: [][]float64{{0.1, 0.2}, {-0.3, 0.4}}}
	msg := o.Encode()
	row, ok := Row(msg, 1, 2)
	require.True(t, ok)
	assert.Equal(t, []float64{-0.3, 0.4}, row)

	_, ok = Row(msg, 5, 2)
	assert.False(t, ok)
	_, ok = Row(m.Encode(), 0, 2)
	assert.False(t, ok)
}
