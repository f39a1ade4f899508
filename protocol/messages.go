package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Message tags.
const (
	TagAdultAnnouncement = "[ADULT_ANNOUNCEMENT]"
	TagFitnessUpdate     = "[FITNESS_UPDATE]"
	TagGenomeSpread      = "[GENOME_SPREAD_MESSAGE]"
	TagCouple            = "[COUPLE_MESSAGE]"
	TagDeathAnnouncement = "[DEATH_ANNOUNCEMENT_MESSAGE]"
	TagToReserve         = "[TO_RESERVE_MESSAGE]"
	TagRebuild           = "[REBUILD_MESSAGE]"
	TagConnectorsProblem = "[CONNECTORS_PROBLEM_MESSAGE]"
	TagCylinderProblem   = "[CYLINDER_PROBLEM_MESSAGE]"
	TagAngles            = "[ANGLES]"
)

// Field keys.
const (
	KeyID      = "ID"
	KeyFitness = "FITNESS"
	KeyGenome  = "GENOME"
	KeyMind    = "MIND"
	KeyName    = "NAME"
)

// Spread carries an organism's genomes and latest fitness. It is broadcast
// between fertile organisms and sent to the evolver.
type Spread struct {
	ID      int
	Fitness float64
	Genome  string
	Mind    string
}

func (s Spread) Encode() string {
	msg := New(TagGenomeSpread)
	return s.add(msg, "")
}

func (s Spread) add(msg, suffix string) string {
	msg = Add(msg, KeyID+suffix, strconv.Itoa(s.ID))
	msg = Add(msg, KeyFitness+suffix, FormatFloat(s.Fitness))
	msg = Add(msg, KeyGenome+suffix, s.Genome)
	return Add(msg, KeyMind+suffix, s.Mind)
}

// ParseSpread reads a genome spread message. ID and FITNESS are required;
// missing genome or mind text decodes as empty.
func ParseSpread(msg string) (Spread, error) {
	if !Is(msg, TagGenomeSpread) {
		return Spread{}, fmt.Errorf("%w: %q", ErrWrongTag, TagOf(msg))
	}
	return readSpread(msg, "")
}

func readSpread(msg, suffix string) (Spread, error) {
	var s Spread
	var err error
	if s.ID, err = GetInt(msg, KeyID+suffix); err != nil {
		return Spread{}, err
	}
	if s.Fitness, err = GetFloat(msg, KeyFitness+suffix); err != nil {
		return Spread{}, err
	}
	s.Genome, _ = Get(msg, KeyGenome+suffix)
	s.Mind, _ = Get(msg, KeyMind+suffix)
	return s, nil
}

// Couple names two parents chosen by an organism, sent to the evolver.
type Couple struct {
	First, Second Spread
}

func (c Couple) Encode() string {
	msg := New(TagCouple)
	msg = c.First.add(msg, "1")
	return c.Second.add(msg, "2")
}

func ParseCouple(msg string) (Couple, error) {
	if !Is(msg, TagCouple) {
		return Couple{}, fmt.Errorf("%w: %q", ErrWrongTag, TagOf(msg))
	}
	first, err := readSpread(msg, "1")
	if err != nil {
		return Couple{}, err
	}
	second, err := readSpread(msg, "2")
	if err != nil {
		return Couple{}, err
	}
	return Couple{First: first, Second: second}, nil
}

// FitnessUpdate reports the fitness of a mature organism to the evolver.
type FitnessUpdate struct {
	ID      int
	Fitness float64
}

func (f FitnessUpdate) Encode() string {
	msg := Add(New(TagFitnessUpdate), KeyID, strconv.Itoa(f.ID))
	return Add(msg, KeyFitness, FormatFloat(f.Fitness))
}

func ParseFitnessUpdate(msg string) (FitnessUpdate, error) {
	if !Is(msg, TagFitnessUpdate) {
		return FitnessUpdate{}, fmt.Errorf("%w: %q", ErrWrongTag, TagOf(msg))
	}
	var f FitnessUpdate
	var err error
	if f.ID, err = GetInt(msg, KeyID); err != nil {
		return FitnessUpdate{}, err
	}
	if f.Fitness, err = GetFloat(msg, KeyFitness); err != nil {
		return FitnessUpdate{}, err
	}
	return f, nil
}

// Rebuild asks the clinic to build the organism again from its genomes.
type Rebuild struct {
	ID     int
	Genome string
	Mind   string
}

func (r Rebuild) Encode() string {
	msg := Add(New(TagRebuild), KeyID, strconv.Itoa(r.ID))
	msg = Add(msg, KeyGenome, r.Genome)
	return Add(msg, KeyMind, r.Mind)
}

func ParseRebuild(msg string) (Rebuild, error) {
	if !Is(msg, TagRebuild) {
		return Rebuild{}, fmt.Errorf("%w: %q", ErrWrongTag, TagOf(msg))
	}
	id, err := GetInt(msg, KeyID)
	if err != nil {
		return Rebuild{}, err
	}
	r := Rebuild{ID: id}
	r.Genome, _ = Get(msg, KeyGenome)
	r.Mind, _ = Get(msg, KeyMind)
	return r, nil
}

func AdultAnnouncement(id int) string {
	return Add(New(TagAdultAnnouncement), KeyID, strconv.Itoa(id))
}

func DeathAnnouncement(id int) string {
	return Add(New(TagDeathAnnouncement), KeyID, strconv.Itoa(id))
}

// ToReserve hands the named module back to the reserve.
func ToReserve(name string) string {
	return Add(New(TagToReserve), KeyName, name)
}

// IDOf returns the ID field of any message.
func IDOf(msg string) (int, error) { return GetInt(msg, KeyID) }

// DeathCommand is what the evolver sends on the death channel: the bare
// organism id.
func DeathCommand(organismID int) string { return strconv.Itoa(organismID) }

// NamesOrganism reports whether a death-channel message orders organism id
// to die. Both the bare id and a tagged message with an ID field are
// accepted.
func NamesOrganism(msg string, id int) bool {
	msg = strings.TrimRight(msg, "\x00")
	if TagOf(msg) == "" {
		return strings.TrimSpace(msg) == strconv.Itoa(id)
	}
	got, err := IDOf(msg)
	return err == nil && got == id
}
