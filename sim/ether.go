package sim

import "sync"

// Ether carries radio messages between modules. A message sent during a
// tick is delivered when the tick completes, to every enabled radio tuned
// to its channel except the sender's own.
type Ether struct {
	mu       sync.Mutex
	capacity int
	radios   map[int][]*Radio
	pending  []packet
	dropped  int
	traffic  map[int]int
}

type packet struct {
	channel int
	from    string
	msg     string
}

// NewEther returns an ether whose radios hold at most capacity messages.
func NewEther(capacity int) *Ether {
	return &Ether{capacity: max(capacity, 1), radios: make(map[int][]*Radio), traffic: make(map[int]int)}
}

// Radio tunes a new receiver owned by owner to channel. Radios start
// enabled.
func (e *Ether) Radio(owner string, channel int) *Radio {
	e.mu.Lock()
	defer e.mu.Unlock()
	r := &Radio{ether: e, owner: owner, channel: channel, enabled: true}
	e.radios[channel] = append(e.radios[channel], r)
	return r
}

// Emitter returns the transmitter of owner.
func (e *Ether) Emitter(owner string) *Emitter {
	return &Emitter{ether: e, owner: owner}
}

// Dropped counts messages lost to full queues.
func (e *Ether) Dropped() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dropped
}

// Traffic counts the messages delivered on channel so far.
func (e *Ether) Traffic(channel int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.traffic[channel]
}

// Deliver moves everything sent so far into the receiving queues.
func (e *Ether) Deliver() {
	e.mu.Lock()
	defer e.mu.Unlock()
	pending := e.pending
	e.pending = nil
	for _, p := range pending {
		e.traffic[p.channel]++
		for _, r := range e.radios[p.channel] {
			if !r.enabled || r.owner == p.from {
				continue
			}
			if len(r.queue) >= e.capacity {
				e.dropped++
				continue
			}
			r.queue = append(r.queue, p.msg)
		}
	}
}

// Emitter implements lifecycle.Emitter.
type Emitter struct {
	ether *Ether
	owner string
}

func (t *Emitter) Send(channel int, msg string) error {
	t.ether.mu.Lock()
	defer t.ether.mu.Unlock()
	t.ether.pending = append(t.ether.pending, packet{channel: channel, from: t.owner, msg: msg})
	return nil
}

// Radio is a bounded FIFO receiver. It implements lifecycle.Receiver.
type Radio struct {
	ether   *Ether
	owner   string
	channel int
	enabled bool
	queue   []string
}

// Enable starts listening. Messages sent while disabled are lost.
func (r *Radio) Enable() {
	r.ether.mu.Lock()
	defer r.ether.mu.Unlock()
	r.enabled = true
}

// Disable stops listening and drops the queue.
func (r *Radio) Disable() {
	r.ether.mu.Lock()
	defer r.ether.mu.Unlock()
	r.enabled = false
	r.queue = nil
}

func (r *Radio) QueueLength() int {
	r.ether.mu.Lock()
	defer r.ether.mu.Unlock()
	return len(r.queue)
}

func (r *Radio) Next() (string, bool) {
	r.ether.mu.Lock()
	defer r.ether.mu.Unlock()
	if len(r.queue) == 0 {
		return "", false
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, true
}

// Channel is the channel the radio is tuned to.
func (r *Radio) Channel() int { return r.channel }
