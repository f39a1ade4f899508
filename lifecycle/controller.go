// Package lifecycle runs one module of a modular robot through its life:
// startup checks, an infancy spent learning a gait, a mature life spent
// walking and looking for mates, and death.
//
// Every module runs its own Controller in lockstep with a Stepper. The root
// module of an organism computes the motor angles of all its siblings,
// measures fitness and talks to the evolver; the others relay angles.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/baldhumanity/roombots/genome"
	"github.com/baldhumanity/roombots/organism"
	"github.com/baldhumanity/roombots/protocol"
	"github.com/baldhumanity/roombots/results"
)

// Stage is the coarse lifecycle state.
type Stage int

const (
	Starting Stage = iota
	Infancy
	MatureLife
	Death
)

func (s Stage) String() string {
	switch s {
	case Starting:
		return "STARTING"
	case Infancy:
		return "INFANCY"
	case MatureLife:
		return "MATURE_LIFE"
	case Death:
		return "DEATH"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Transition records when a stage was entered.
type Transition struct {
	Stage Stage
	Tick  int
}

// Option customises a Controller.
type Option func(*Controller)

func WithLogger(l *zap.Logger) Option { return func(c *Controller) { c.log = l } }

func WithSink(s results.Sink) Option { return func(c *Controller) { c.sink = s } }

func WithAlgorithm(a Algorithm) Option { return func(c *Controller) { c.alg = a } }

// WithRand sets the random source. By default it is seeded from
// the configured algorithm seed.
func WithRand(rng *rand.Rand) Option { return func(c *Controller) { c.rng = rng } }

// WithSelector replaces the parent selection named in the configuration.
func WithSelector(s organism.Selector) Option { return func(c *Controller) { c.selector = s } }

// WithGenomeSettings sets the genome operators used to decode minds.
func WithGenomeSettings(s *genome.Settings) Option { return func(c *Controller) { c.genomes = s } }

// Controller is the state machine of one module. It is driven by Run and
// is not safe for concurrent use.
type Controller struct {
	cfg        Config
	dev        Devices
	algorithm  AlgorithmType
	mating     MatingPolicy
	deathBy    DeathPolicy
	organismID int

	log      *zap.Logger
	sink     results.Sink
	alg      Algorithm
	rng      *rand.Rand
	genomes  *genome.Settings
	selector organism.Selector
	registry *organism.Registry

	tick        int
	stage       Stage
	phase       string
	fertile     bool
	mind        string
	transitions []Transition
}

// New validates the configuration and the devices. Unknown or unsupported
// algorithms, unknown policies and missing devices are fatal.
func New(cfg Config, dev Devices, opts ...Option) (*Controller, error) {
	alg, err := ParseAlgorithm(cfg.Algorithm.Type)
	if err != nil {
		return nil, err
	}
	mating, err := ParseMatingPolicy(cfg.Evolution.Mating)
	if err != nil {
		return nil, err
	}
	deathBy, err := ParseDeathPolicy(cfg.Evolution.Death)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := dev.check(cfg, mating, deathBy); err != nil {
		return nil, err
	}
	id, err := OrganismID(cfg.Module.Name)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:        cfg,
		dev:        dev,
		algorithm:  alg,
		mating:     mating,
		deathBy:    deathBy,
		organismID: id,
		registry:   organism.NewRegistry(),
		mind:       cfg.Organism.Mind,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	c.log = c.log.With(zap.String("module", cfg.Module.Name), zap.Int("organism", id))
	if c.sink == nil {
		c.sink = results.Discard
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(cfg.Algorithm.Seed))
	}
	if c.genomes == nil {
		c.genomes = genome.DefaultSettings()
	}
	if c.alg == nil {
		c.alg = NewSineGait(cfg.Algorithm.AngularVelocity, cfg.Algorithm.Evaluations, c.genomes)
	}
	if c.selector == nil {
		c.selector, err = organism.NewSelector(cfg.Evolution.ParentSelection, c.rng)
		if err != nil {
			return nil, err
		}
	}

	if dev.Genomes != nil {
		dev.Genomes.Disable()
	}
	for _, cn := range dev.Connectors {
		cn.Lock()
	}
	return c, nil
}

// OrganismID is the id of the organism this module belongs to.
func (c *Controller) OrganismID() int { return c.organismID }

// Stage returns the current stage. Only call it from the goroutine running
// the controller or after Run returned.
func (c *Controller) Stage() Stage { return c.stage }

// Tick returns the number of ticks stepped so far.
func (c *Controller) Tick() int { return c.tick }

// Fertile reports whether the module has become fertile.
func (c *Controller) Fertile() bool { return c.fertile }

// Transitions lists the stages entered, in order.
func (c *Controller) Transitions() []Transition {
	out := make([]Transition, len(c.transitions))
	copy(out, c.transitions)
	return out
}

// Registry exposes the mate registry.
func (c *Controller) Registry() *organism.Registry { return c.registry }

func (c *Controller) root() bool { return c.cfg.Module.Root }

type phaseFunc func(ctx context.Context) error

// Run drives the module until the stepper stops or ctx is cancelled. A
// failure in any phase is recorded and the module dies; Run only returns
// an error when ctx ends the run.
func (c *Controller) Run(ctx context.Context) error {
	err := c.live(ctx)
	var rebuild *rebuildError
	switch {
	case err == nil:
	case errors.Is(err, errStopped):
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.As(err, &rebuild):
		c.requestRebuild(ctx, rebuild.reason)
	default:
		c.reportProblem(ctx, err)
	}

	err = c.runPhase(ctx, "death", c.death)
	switch {
	case err == nil, errors.Is(err, errStopped):
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		c.reportProblem(ctx, err)
		return nil
	}
}

func (c *Controller) live(ctx context.Context) error {
	phases := []struct {
		name string
		fn   phaseFunc
	}{
		{"start", c.start},
		{"flush", c.flush},
		{"locks", c.checkLocks},
		{"waiting", c.wait},
		{"cylinder", c.checkCylinder},
		{"infancy", c.infancy},
		{"mature", c.mature},
	}
	for _, p := range phases {
		if err := c.runPhase(ctx, p.name, p.fn); err != nil {
			return err
		}
	}
	return nil
}

// runPhase runs fn, turning a panic into an error.
func (c *Controller) runPhase(ctx context.Context, name string, fn phaseFunc) (err error) {
	c.phase = name
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

// step advances one tick.
func (c *Controller) step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !c.dev.Stepper.Step() {
		return errStopped
	}
	c.tick++
	return nil
}

func (c *Controller) steps(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := c.step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// now is the simulated time in seconds.
func (c *Controller) now() float64 { return c.seconds(c.tick) }

func (c *Controller) seconds(ticks int) float64 {
	return float64(ticks) * float64(c.cfg.Timing.TimeStepMS) / 1000
}

func (c *Controller) enter(s Stage) {
	c.stage = s
	c.transitions = append(c.transitions, Transition{Stage: s, Tick: c.tick})
	c.log.Info("stage entered", zap.Stringer("stage", s), zap.Int("tick", c.tick))
}

func (c *Controller) position() r3.Vec {
	if c.dev.GPS == nil {
		return r3.Vec{}
	}
	return c.dev.GPS.Position()
}

func (c *Controller) send(channel int, msg string) error {
	if err := c.dev.Emitter.Send(channel, msg); err != nil {
		return fmt.Errorf("send on channel %d: %w", channel, err)
	}
	return nil
}

// angleChannel is the channel this module sends angles and problem
// messages on.
func (c *Controller) angleChannel() int {
	up, down := c.cfg.Channels.AngleChannels(c.organismID)
	if c.root() {
		return down
	}
	return up
}

func (c *Controller) setAllMotors(v float64) {
	for i := 0; i < c.cfg.Module.Motors; i++ {
		c.dev.Motors.SetAngle(i, v)
	}
}

func (c *Controller) record(ctx context.Context, r results.Record) {
	r.Time = c.now()
	r.Module = c.cfg.Module.Name
	r.Organism = c.organismID
	if err := c.sink.Write(ctx, r); err != nil {
		c.log.Warn("result not recorded", zap.String("kind", string(r.Kind)), zap.Error(err))
	}
}

func (c *Controller) reportProblem(ctx context.Context, err error) {
	c.log.Error("phase failed", zap.String("phase", c.phase), zap.Int("tick", c.tick), zap.Error(err))
	c.record(ctx, results.Record{Kind: results.KindProblem, Phase: c.phase, Detail: err.Error()})
}

func (c *Controller) requestRebuild(ctx context.Context, reason string) {
	c.log.Warn("startup failed", zap.String("phase", c.phase), zap.String("reason", reason))
	if !c.root() {
		return
	}
	msg := protocol.Rebuild{ID: c.organismID, Genome: c.cfg.Organism.Genome, Mind: c.mind}.Encode()
	if err := c.send(c.cfg.Channels.Clinic, msg); err != nil {
		c.log.Error("rebuild request not sent", zap.Error(err))
	}
	c.record(ctx, results.Record{Kind: results.KindRebuild, Phase: c.phase, Detail: reason})
}
