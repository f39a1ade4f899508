package genome

import (
	"fmt"
	"strconv"
	"strings"
)

// EncodeArray encodes a list of mind genomes as
//
//	MINDS <count> <genome>...
func EncodeArray(gs []*MatrixGenome) string {
	var b strings.Builder
	b.WriteString("MINDS ")
	b.WriteString(strconv.Itoa(len(gs)))
	for _, g := range gs {
		b.WriteByte(' ')
		b.WriteString(g.String())
	}
	return b.String()
}

// DecodeArray parses text written by EncodeArray.
func DecodeArray(text string, s *Settings) ([]*MatrixGenome, error) {
	sc := NewScanner(strings.NewReader(text))
	w := newWords(sc)
	w.Expect("MINDS")
	n := w.Int()
	if w.Err() != nil {
		return nil, w.Err()
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative mind count %d", ErrMalformed, n)
	}
	var out []*MatrixGenome
	for i := 0; i < n; i++ {
		g, err := Decode(sc, s)
		if err != nil {
			return nil, fmt.Errorf("mind %d: %w", i, err)
		}
		m, ok := g.(*MatrixGenome)
		if !ok {
			return nil, fmt.Errorf("mind %d: %w: got %s", i, ErrKindMismatch, g.Kind())
		}
		out = append(out, m)
	}
	if sc.Scan() {
		return nil, fmt.Errorf("%w: trailing text %q", ErrMalformed, sc.Text())
	}
	return out, nil
}
