// Package genome holds the two heritable encodings of an organism: the CPPN
// genome describing its body and the matrix genome describing its gait, and
// the Manager that creates, tracks and serializes them.
//
// Every genome serializes to whitespace separated words starting with a type
// tag, so a stream can be parsed back without external context:
//
//	CPPN <size> NODES ... LINKS ...
//	MATRIX <x> <y> VALUES <v>...
//
// Genome text never contains the ';' field delimiter of the message protocol.
package genome

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/baldhumanity/roombots/neat"
)

// Kind tags a genome encoding.
type Kind string

const (
	KindCppn   Kind = "CPPN"
	KindMatrix Kind = "MATRIX"
)

var (
	// ErrUnsupportedArity is returned when more than two parents are requested.
	ErrUnsupportedArity = errors.New("unsupported number of parents")
	ErrUnknownGenome    = errors.New("unknown genome type")
	ErrMalformed        = errors.New("malformed genome text")
	ErrKindMismatch     = errors.New("genome kinds differ")
	ErrNotFound         = errors.New("genome not found")
)

// Genome is the capability set shared by every encoding.
type Genome interface {
	Kind() Kind
	Mutate(rng *rand.Rand)
	// CrossoverAndMutate mixes other into the receiver, then mutates it.
	CrossoverAndMutate(other Genome, rng *rand.Rand) error
	String() string
	Clone() Genome
}

// New creates a zero-parent genome of the given kind.
func New(kind Kind, s *Settings, rng *rand.Rand) (Genome, error) {
	switch kind {
	case KindCppn:
		return NewCppnGenome(s, rng), nil
	case KindMatrix:
		return NewStartingMatrixGenome(s, rng), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGenome, kind)
	}
}

// NewScanner returns a word scanner suitable for Decode.
func NewScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)
	return sc
}

// Decode reads exactly one genome from a word scanner, dispatching on the
// leading type tag.
func Decode(sc *bufio.Scanner, s *Settings) (Genome, error) {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: empty text", ErrMalformed)
	}
	switch tag := Kind(sc.Text()); tag {
	case KindCppn:
		return readCppn(sc, s)
	case KindMatrix:
		return readMatrix(sc, s)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGenome, tag)
	}
}

// Parse decodes a single genome and rejects trailing words.
func Parse(text string, s *Settings) (Genome, error) {
	sc := NewScanner(strings.NewReader(text))
	g, err := Decode(sc, s)
	if err != nil {
		return nil, err
	}
	if sc.Scan() {
		return nil, fmt.Errorf("%w: trailing text %q", ErrMalformed, sc.Text())
	}
	return g, nil
}

func newWords(sc *bufio.Scanner) *neat.WordReader {
	return neat.NewWordReader(sc, ErrMalformed)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
