package sim

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// Motors is a bank of servo motors that reach their target in one tick.
type Motors struct {
	mu     sync.Mutex
	angles []float64
}

func NewMotors(n int) *Motors { return &Motors{angles: make([]float64, n)} }

// SetAngle clamps v to [-1,1].
func (m *Motors) SetAngle(i int, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.angles[i] = min(1, max(-1, v))
}

func (m *Motors) Angle(i int) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.angles[i]
}

// Snapshot copies the current angles into dst and returns it.
func (m *Motors) Snapshot(dst []float64) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append(dst[:0], m.angles...)
}

// GPS reads the position of the body it is mounted on.
type GPS struct{ body *Body }

func (g GPS) Position() r3.Vec { return g.body.Position() }

// Connector is a docking connector. A loose connector never senses its peer.
type Connector struct {
	mu      sync.Mutex
	loose   bool
	sensing bool
	locked  bool
}

func (c *Connector) EnablePresence() {
	c.mu.Lock()
	c.sensing = true
	c.mu.Unlock()
}

func (c *Connector) DisablePresence() {
	c.mu.Lock()
	c.sensing = false
	c.mu.Unlock()
}

func (c *Connector) Present() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sensing && !c.loose
}

func (c *Connector) Lock() {
	c.mu.Lock()
	c.locked = true
	c.mu.Unlock()
}

func (c *Connector) Unlock() {
	c.mu.Lock()
	c.locked = false
	c.mu.Unlock()
}

// Locked reports whether the connector holds its peer.
func (c *Connector) Locked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked
}
