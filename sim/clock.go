package sim

import "sync"

// Clock is a lockstep barrier. Every joined party calls Step once per tick;
// the tick completes when the last party arrives, at which point the
// clock's hook runs with every party parked.
type Clock struct {
	mu      sync.Mutex
	limit   int
	tick    int
	parties int
	arrived int
	release chan struct{}
	stopped bool
	done    chan struct{}
	onTick  func(tick int)
}

// NewClock returns a clock that runs limit ticks. onTick may be nil.
func NewClock(limit int, onTick func(tick int)) *Clock {
	return &Clock{
		limit:   limit,
		release: make(chan struct{}),
		done:    make(chan struct{}),
		onTick:  onTick,
	}
}

// Join registers a party. Parties must join before the first Step.
func (c *Clock) Join() *Party {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parties++
	return &Party{clock: c}
}

// Tick returns the number of completed ticks.
func (c *Clock) Tick() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tick
}

// Stop ends the run: every blocked and future Step returns false.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	close(c.done)
}

func (c *Clock) over() bool { return c.stopped || c.tick >= c.limit }

// advance completes the tick. Callers hold mu.
func (c *Clock) advance() {
	c.tick++
	if c.onTick != nil {
		c.onTick(c.tick)
	}
	c.arrived = 0
	close(c.release)
	c.release = make(chan struct{})
}

// Party is one participant of a Clock. It implements lifecycle.Stepper.
type Party struct {
	clock *Clock
	left  bool
}

// Step blocks until every party reached the barrier and reports whether
// the tick happened.
func (p *Party) Step() bool {
	c := p.clock
	c.mu.Lock()
	if p.left || c.over() {
		c.mu.Unlock()
		return false
	}
	c.arrived++
	if c.arrived == c.parties {
		c.advance()
		c.mu.Unlock()
		return true
	}
	release := c.release
	c.mu.Unlock()

	select {
	case <-release:
		return true
	case <-c.done:
		return false
	}
}

// Leave deregisters the party so the others no longer wait for it.
func (p *Party) Leave() {
	c := p.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	if p.left {
		return
	}
	p.left = true
	c.parties--
	if c.parties > 0 && c.arrived == c.parties && !c.over() {
		c.advance()
	}
}
