package neat

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed is returned when network text cannot be parsed.
var ErrMalformed = errors.New("malformed network text")

// String encodes the genome as whitespace separated words:
//
//	NODES <n> (<key> <bias> <response> <activation> <aggregation>)*n
//	LINKS <m> (<in> <out> <weight> <enabled>)*m
//
// Nodes are ordered by key and links by (in, out), floats use the shortest
// representation that parses back to the same value.
func (g *Genome) String() string {
	var b strings.Builder
	g.WriteText(&b)
	return b.String()
}

// WriteText appends the encoding of String to b.
func (g *Genome) WriteText(b *strings.Builder) {
	nodeKeys := g.nodeKeys()
	fmt.Fprintf(b, "NODES %d", len(nodeKeys))
	for _, k := range nodeKeys {
		n := g.Nodes[k]
		fmt.Fprintf(b, " %d %s %s %s %s", n.Key, formatFloat(n.Bias), formatFloat(n.Response), n.Activation, n.Aggregation)
	}
	connKeys := g.connectionKeys()
	fmt.Fprintf(b, " LINKS %d", len(connKeys))
	for _, k := range connKeys {
		c := g.Connections[k]
		enabled := 0
		if c.Enabled {
			enabled = 1
		}
		fmt.Fprintf(b, " %d %d %s %d", k.InNodeID, k.OutNodeID, formatFloat(c.Weight), enabled)
	}
}

// ReadGenome parses a genome written by WriteText from a word scanner
// (bufio.ScanWords). Reading stops right after the last link.
func ReadGenome(sc *bufio.Scanner, config *GenomeConfig) (*Genome, error) {
	r := NewWordReader(sc, ErrMalformed)
	g := NewGenome(config)

	r.Expect("NODES")
	nodeCount := r.Int()
	for i := 0; i < nodeCount && r.Err() == nil; i++ {
		n := &NodeGene{}
		n.Key = r.Int()
		n.Bias = r.Float()
		n.Response = r.Float()
		n.Activation = r.Word()
		n.Aggregation = r.Word()
		if r.Err() != nil {
			break
		}
		if _, err := GetActivation(n.Activation); err != nil {
			return nil, fmt.Errorf("%w: node %d: %v", ErrMalformed, n.Key, err)
		}
		if _, err := GetAggregation(n.Aggregation); err != nil {
			return nil, fmt.Errorf("%w: node %d: %v", ErrMalformed, n.Key, err)
		}
		g.Nodes[n.Key] = n
	}

	r.Expect("LINKS")
	linkCount := r.Int()
	for i := 0; i < linkCount && r.Err() == nil; i++ {
		c := &ConnectionGene{}
		c.Key.InNodeID = r.Int()
		c.Key.OutNodeID = r.Int()
		c.Weight = r.Float()
		c.Enabled = r.Int() == 1
		if r.Err() != nil {
			break
		}
		if _, ok := g.Nodes[c.Key.InNodeID]; !ok {
			return nil, fmt.Errorf("%w: link %d->%d references unknown node", ErrMalformed, c.Key.InNodeID, c.Key.OutNodeID)
		}
		if _, ok := g.Nodes[c.Key.OutNodeID]; !ok {
			return nil, fmt.Errorf("%w: link %d->%d references unknown node", ErrMalformed, c.Key.InNodeID, c.Key.OutNodeID)
		}
		g.Connections[c.Key] = c
	}
	if r.Err() != nil {
		return nil, r.Err()
	}
	for _, k := range InputKeys {
		if _, ok := g.Nodes[k]; !ok {
			return nil, fmt.Errorf("%w: missing input node %d", ErrMalformed, k)
		}
	}
	return g, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WordReader reads typed whitespace separated words and keeps the first
// error so that callers can check once. Syntax errors wrap the malformed
// sentinel it was created with.
type WordReader struct {
	sc        *bufio.Scanner
	malformed error
	err       error
}

// NewWordReader reads from sc, wrapping syntax errors in malformed.
func NewWordReader(sc *bufio.Scanner, malformed error) *WordReader {
	return &WordReader{sc: sc, malformed: malformed}
}

// Err returns the first error met.
func (r *WordReader) Err() error { return r.err }

func (r *WordReader) Word() string {
	if r.err != nil {
		return ""
	}
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			r.err = err
		} else {
			r.err = fmt.Errorf("%w: unexpected end of text", r.malformed)
		}
		return ""
	}
	return r.sc.Text()
}

// Expect consumes one word and fails unless it equals tag.
func (r *WordReader) Expect(tag string) {
	if w := r.Word(); r.err == nil && w != tag {
		r.err = fmt.Errorf("%w: expected %s, got %q", r.malformed, tag, w)
	}
}

func (r *WordReader) Int() int {
	w := r.Word()
	if r.err != nil {
		return 0
	}
	v, err := strconv.Atoi(w)
	if err != nil {
		r.err = fmt.Errorf("%w: %v", r.malformed, err)
	}
	return v
}

func (r *WordReader) Float() float64 {
	w := r.Word()
	if r.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(w, 64)
	if err != nil {
		r.err = fmt.Errorf("%w: %v", r.malformed, err)
	}
	return v
}
