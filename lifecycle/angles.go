package lifecycle

import (
	"github.com/baldhumanity/roombots/protocol"
)

// rootAngles is the root's one-tick-delayed angle pipeline. The root runs
// one tick ahead of its siblings: the angle table it computes from uses
// its own position from the previous tick, and the angle it applies to its
// own motors is the one computed on the previous tick.
type rootAngles struct {
	prev []float64 // own motor positions at t-1
	next []float64 // own computed angles for t+1
	// offset is the tick the gait clock started at.
	offset int
}

func (c *Controller) newRootAngles() *rootAngles {
	return &rootAngles{
		prev:   make([]float64, c.cfg.Module.Motors),
		next:   make([]float64, c.cfg.Module.Motors),
		offset: c.tick,
	}
}

// exchangeRoot reads the siblings' angles, computes the next table and
// broadcasts it, then moves its own motors.
func (c *Controller) exchangeRoot(p *rootAngles) error {
	in := c.receiveModuleAngles()
	self := c.cfg.Module.Index
	for i := range p.prev {
		in[self][i] = p.prev[i]
		p.prev[i] = c.dev.Motors.Angle(i)
	}

	out := c.alg.Compute(in, c.seconds(c.tick-p.offset))
	msg := protocol.OrganismAngles{Timestamp: c.now(), Rows: out}.Encode()
	if err := c.send(c.angleChannel(), msg); err != nil {
		return err
	}

	for i := range p.next {
		c.dev.Motors.SetAngle(i, p.next[i])
		if self < len(out) && i < len(out[self]) {
			p.next[i] = out[self][i]
		} else {
			p.next[i] = 0
		}
	}
	return nil
}

// receiveModuleAngles drains the siblings' reports into a table with one
// row per module. Modules that did not report read as zeros; a module that
// reported twice keeps its latest report.
func (c *Controller) receiveModuleAngles() [][]float64 {
	motors := c.cfg.Module.Motors
	table := make([][]float64, c.cfg.Module.OrganismSize)
	for i := range table {
		table[i] = make([]float64, motors)
	}
	for _, msg := range drain(c.dev.Angles) {
		a, err := protocol.ParseModuleAngles(msg, motors)
		if err != nil || a.Index < 0 || a.Index >= len(table) {
			continue
		}
		table[a.Index] = a.Values
	}
	return table
}

// relay is a non-root module's tick: report its motor positions to the
// root, then apply the row the root addressed to it. Without a broadcast
// the motors go to zero.
func (c *Controller) relay() error {
	motors := c.cfg.Module.Motors
	own := make([]float64, motors)
	for i := range own {
		own[i] = c.dev.Motors.Angle(i)
	}
	msg := protocol.ModuleAngles{Index: c.cfg.Module.Index, Timestamp: c.now(), Values: own}.Encode()
	if err := c.send(c.angleChannel(), msg); err != nil {
		return err
	}

	row := make([]float64, motors)
	for c.dev.Angles.QueueLength() > 0 {
		m, ok := c.dev.Angles.Next()
		if !ok {
			break
		}
		if r, ok := protocol.Row(m, c.cfg.Module.Index, motors); ok {
			row = r
			break
		}
	}
	for i, v := range row {
		c.dev.Motors.SetAngle(i, v)
	}
	return nil
}
