package sim

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Body is the kinematic stand-in for an organism's physics: every tick it
// slides along its heading in proportion to how far its motors moved.
type Body struct {
	mu      sync.Mutex
	pos     r3.Vec
	heading r3.Vec
	speed   float64
	motors  []*Motors
	last    [][]float64
	scratch []float64
}

// NewBody places a body at pos facing yaw radians in the ground plane.
func NewBody(pos r3.Vec, yaw, speed float64) *Body {
	return &Body{
		pos:     pos,
		heading: r3.Vec{X: math.Cos(yaw), Z: math.Sin(yaw)},
		speed:   speed,
	}
}

// Mount attaches a module's motors to the body.
func (b *Body) Mount(m *Motors) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.motors = append(b.motors, m)
	b.last = append(b.last, m.Snapshot(nil))
}

func (b *Body) Position() r3.Vec {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pos
}

// Advance moves the body by speed times the mean absolute motor travel
// since the previous call.
func (b *Body) Advance() {
	b.mu.Lock()
	defer b.mu.Unlock()
	var travel float64
	n := 0
	for i, m := range b.motors {
		b.scratch = m.Snapshot(b.scratch)
		travel += floats.Distance(b.scratch, b.last[i], 1)
		n += len(b.scratch)
		b.last[i] = append(b.last[i][:0], b.scratch...)
	}
	if n == 0 {
		return
	}
	b.pos = r3.Add(b.pos, r3.Scale(b.speed*travel/float64(n), b.heading))
}
