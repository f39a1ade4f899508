package lifecycle

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/baldhumanity/roombots/genome"
	"github.com/baldhumanity/roombots/organism"
)

type fakeStepper struct {
	limit  int
	n      int
	onTick func(n int)
}

func (s *fakeStepper) Step() bool {
	if s.n >= s.limit {
		return false
	}
	s.n++
	if s.onTick != nil {
		s.onTick(s.n)
	}
	return true
}

type fakeGPS struct{ pos r3.Vec }

func (g *fakeGPS) Position() r3.Vec { return g.pos }

type fakeMotors struct {
	angles []float64
	sets   [][]float64 // every value set, per motor
}

func newFakeMotors(n int) *fakeMotors {
	return &fakeMotors{angles: make([]float64, n), sets: make([][]float64, n)}
}

func (m *fakeMotors) SetAngle(i int, v float64) {
	m.angles[i] = v
	m.sets[i] = append(m.sets[i], v)
}

func (m *fakeMotors) Angle(i int) float64 { return m.angles[i] }

type fakeConnector struct {
	present bool
	sensing bool
	locked  bool
}

func (c *fakeConnector) EnablePresence()  { c.sensing = true }
func (c *fakeConnector) DisablePresence() { c.sensing = false }
func (c *fakeConnector) Present() bool    { return c.sensing && c.present }
func (c *fakeConnector) Lock()            { c.locked = true }
func (c *fakeConnector) Unlock()          { c.locked = false }

type sent struct {
	channel int
	msg     string
}

type fakeEmitter struct{ sent []sent }

func (e *fakeEmitter) Send(channel int, msg string) error {
	e.sent = append(e.sent, sent{channel, msg})
	return nil
}

func (e *fakeEmitter) on(channel int) []string {
	var out []string
	for _, s := range e.sent {
		if s.channel == channel {
			out = append(out, s.msg)
		}
	}
	return out
}

type fakeReceiver struct {
	enabled bool
	queue   []string
}

func (r *fakeReceiver) Enable()          { r.enabled = true }
func (r *fakeReceiver) Disable()         { r.enabled = false }
func (r *fakeReceiver) QueueLength() int { return len(r.queue) }

func (r *fakeReceiver) Next() (string, bool) {
	if len(r.queue) == 0 {
		return "", false
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, true
}

// push delivers msg if the receiver is listening.
func (r *fakeReceiver) push(msg string) {
	if r.enabled {
		r.queue = append(r.queue, msg)
	}
}

type rig struct {
	stepper    *fakeStepper
	gps        *fakeGPS
	motors     *fakeMotors
	connectors []*fakeConnector
	emitter    *fakeEmitter
	angles     *fakeReceiver
	death      *fakeReceiver
	genomes    *fakeReceiver
}

func newRig(cfg Config, limit int) *rig {
	r := &rig{
		stepper: &fakeStepper{limit: limit},
		gps:     &fakeGPS{},
		motors:  newFakeMotors(cfg.Module.Motors),
		emitter: &fakeEmitter{},
		angles:  &fakeReceiver{enabled: true},
		death:   &fakeReceiver{enabled: true},
		genomes: &fakeReceiver{enabled: true},
	}
	for i := 0; i < 2; i++ {
		r.connectors = append(r.connectors, &fakeConnector{present: true})
	}
	return r
}

func (r *rig) devices() Devices {
	d := Devices{
		Stepper: r.stepper,
		GPS:     r.gps,
		Motors:  r.motors,
		Emitter: r.emitter,
		Angles:  r.angles,
		Death:   r.death,
		Genomes: r.genomes,
	}
	for _, c := range r.connectors {
		d.Connectors = append(d.Connectors, c)
	}
	return d
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Module.Name = "module_7"
	cfg.Module.Motors = 2
	cfg.Algorithm.InfancyDuration = 40
	cfg.Algorithm.Evaluations = 2
	cfg.Algorithm.MatureTimeToLive = 100
	cfg.Organism.Genome = "MATRIX 1 1 VALUES 0.5"
	cfg.Timing = TimingConfig{
		TimeStepMS:            32,
		FitnessInterval:       3,
		EvolverUpdateInterval: 5,
		SendGenomeInterval:    5,
		SpreadInterval:        2,
		MatingInterval:        10,
		LockTicks:             3,
		ProblemListenTicks:    2,
		WaitTicks:             2,
		SettleTicks:           5,
		PositionLogPeriod:     5,
	}
	return cfg
}

// scriptedAlgorithm returns 1, 2, 3... on successive Compute calls and
// records what it was given.
type scriptedAlgorithm struct {
	calls  int
	inputs [][][]float64
	panics bool
}

func (a *scriptedAlgorithm) InitialMinds(motors, modules int, rng *rand.Rand) []*genome.MatrixGenome {
	return []*genome.MatrixGenome{genome.RandomMatrixGenome(motors*modules, 3, nil, rng)}
}

func (a *scriptedAlgorithm) SetInitialMinds([]*genome.MatrixGenome, int, int) error { return nil }

func (a *scriptedAlgorithm) Compute(angles [][]float64, _ float64) [][]float64 {
	if a.panics {
		panic("gait diverged")
	}
	a.calls++
	in := make([][]float64, len(angles))
	out := make([][]float64, len(angles))
	for i, row := range angles {
		in[i] = append([]float64(nil), row...)
		out[i] = make([]float64, len(row))
		for j := range row {
			out[i][j] = float64(a.calls) + float64(i)/2
		}
	}
	a.inputs = append(a.inputs, in)
	return out
}

func (a *scriptedAlgorithm) SetEvaluationFitness(float64, string) {}
func (a *scriptedAlgorithm) NextEvaluation() bool                 { return false }
func (a *scriptedAlgorithm) Generation() int                      { return 0 }
func (a *scriptedAlgorithm) Evaluation() int                      { return 0 }

// fixedSelector always picks the same id.
type fixedSelector struct{ id int }

func (s fixedSelector) SelectParents([]organism.Organism) []int { return []int{s.id} }
