// Package sim runs whole organisms in-process: one lifecycle controller
// per module, all advancing in lockstep on a shared clock, talking over a
// simulated radio ether and moving a kinematic body.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/baldhumanity/roombots/genome"
	"github.com/baldhumanity/roombots/lifecycle"
	"github.com/baldhumanity/roombots/organism"
	"github.com/baldhumanity/roombots/results"
)

// ConnectorsPerModule is the number of docking connectors each simulated
// module carries.
const ConnectorsPerModule = 2

// WorldConfig describes a simulated arena.
type WorldConfig struct {
	Seed          int64   `yaml:"seed"`
	Ticks         int     `yaml:"ticks"`
	QueueCapacity int     `yaml:"queue_capacity"`
	Speed         float64 `yaml:"speed"`
	// Parameters is the module parameter file, relative to the world file.
	Parameters string         `yaml:"parameters"`
	Evolver    EvolverConfig  `yaml:"evolver"`
	Organisms  []OrganismSpec `yaml:"organisms"`
}

// OrganismSpec places one organism in the arena.
type OrganismSpec struct {
	ID       int        `yaml:"id"`
	Modules  int        `yaml:"modules"`
	Position [3]float64 `yaml:"position"`
	Yaw      float64    `yaml:"yaw"`
	// Genome is the body genome text; empty draws a minimal genome.
	Genome string `yaml:"genome"`
	Mind   string `yaml:"mind"`
	// LooseConnector leaves one connector of the root undocked.
	LooseConnector bool `yaml:"loose_connector"`
}

// DefaultWorld is a single two-module organism away from the centre.
func DefaultWorld() WorldConfig {
	return WorldConfig{
		Seed:          1,
		Ticks:         3000,
		QueueCapacity: 128,
		Speed:         0.02,
		Evolver: EvolverConfig{
			ParentSelection: "best_two",
		},
		Organisms: []OrganismSpec{
			{ID: 1, Modules: 2, Position: [3]float64{3, 0, 0}},
		},
	}
}

// LoadWorld reads a YAML world file over DefaultWorld.
func LoadWorld(path string) (WorldConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WorldConfig{}, fmt.Errorf("failed to read world: %w", err)
	}
	wc := DefaultWorld()
	wc.Organisms = nil
	if err := yaml.Unmarshal(data, &wc); err != nil {
		return WorldConfig{}, fmt.Errorf("failed to parse world: %w", err)
	}
	if wc.Parameters != "" && !filepath.IsAbs(wc.Parameters) {
		wc.Parameters = filepath.Join(filepath.Dir(path), wc.Parameters)
	}
	if err := wc.Validate(); err != nil {
		return WorldConfig{}, err
	}
	return wc, nil
}

func (wc WorldConfig) Validate() error {
	if wc.Ticks <= 0 {
		return errors.New("world: ticks must be positive")
	}
	if len(wc.Organisms) == 0 {
		return errors.New("world: no organisms")
	}
	seen := make(map[int]bool)
	for _, o := range wc.Organisms {
		switch {
		case o.ID < 0:
			return fmt.Errorf("world: organism id %d is negative", o.ID)
		case seen[o.ID]:
			return fmt.Errorf("world: organism id %d used twice", o.ID)
		case o.Modules < 1:
			return fmt.Errorf("world: organism %d has no modules", o.ID)
		}
		seen[o.ID] = true
	}
	return nil
}

// Option customises a World.
type Option func(*World)

func WithLogger(l *zap.Logger) Option { return func(w *World) { w.log = l } }

func WithSink(s results.Sink) Option { return func(w *World) { w.sink = s } }

func WithGenomeSettings(s *genome.Settings) Option { return func(w *World) { w.settings = s } }

// Module is a simulated module and its controller.
type Module struct {
	Name       string
	Organism   int
	Controller *lifecycle.Controller
	Motors     *Motors
	Connectors []*Connector

	party *Party
}

// World owns the clock, the ether, the bodies and every module.
type World struct {
	id       string
	cfg      WorldConfig
	log      *zap.Logger
	sink     results.Sink
	settings *genome.Settings

	clock   *Clock
	ether   *Ether
	bodies  map[int]*Body
	order   []int
	modules []*Module
	evolver *Evolver

	runMu  sync.Mutex
	ran    bool
	runCtx context.Context
}

// NewWorld builds the modules of every organism from base, the parameters
// shared by all modules.
func NewWorld(wc WorldConfig, base lifecycle.Config, opts ...Option) (*World, error) {
	if err := wc.Validate(); err != nil {
		return nil, err
	}
	w := &World{
		id:     uuid.NewString(),
		cfg:    wc,
		ether:  NewEther(wc.QueueCapacity),
		bodies: make(map[int]*Body),
		runCtx: context.Background(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = zap.NewNop()
	}
	w.log = w.log.With(zap.String("world", w.id))
	if w.sink == nil {
		w.sink = results.Discard
	}
	if w.settings == nil {
		w.settings = genome.DefaultSettings()
	}
	w.clock = NewClock(wc.Ticks, w.onTick)

	rng := rand.New(rand.NewSource(wc.Seed))
	manager := genome.NewManager(w.settings, rng)
	selector, err := organism.NewSelector(wc.Evolver.ParentSelection, rng)
	if err != nil {
		return nil, err
	}
	w.evolver = newEvolver(wc.Evolver, base, w.ether, manager, selector, w.log, w.sink)

	for _, spec := range wc.Organisms {
		if err := w.addOrganism(spec, base, manager, rng); err != nil {
			return nil, fmt.Errorf("organism %d: %w", spec.ID, err)
		}
	}
	return w, nil
}

func (w *World) addOrganism(spec OrganismSpec, base lifecycle.Config, manager *genome.Manager, rng *rand.Rand) error {
	body := NewBody(r3.Vec{X: spec.Position[0], Y: spec.Position[1], Z: spec.Position[2]}, spec.Yaw, w.cfg.Speed)
	w.bodies[spec.ID] = body
	w.order = append(w.order, spec.ID)

	text := spec.Genome
	if text == "" {
		id, err := manager.CreateGenome()
		if err != nil {
			return err
		}
		text, err = manager.GenomeToString(id)
		manager.Remove(id)
		if err != nil {
			return err
		}
	}

	up, down := base.Channels.AngleChannels(spec.ID)
	for i := 0; i < spec.Modules; i++ {
		cfg := base
		cfg.Module.Name = fmt.Sprintf("module_%d_%d", spec.ID, i)
		cfg.Module.Index = i
		cfg.Module.Root = i == 0
		cfg.Module.OrganismSize = spec.Modules
		cfg.Organism = lifecycle.OrganismConfig{Genome: text, Mind: spec.Mind}

		m := &Module{
			Name:     cfg.Module.Name,
			Organism: spec.ID,
			Motors:   NewMotors(cfg.Module.Motors),
			party:    w.clock.Join(),
		}
		body.Mount(m.Motors)
		for j := 0; j < ConnectorsPerModule; j++ {
			m.Connectors = append(m.Connectors, &Connector{loose: spec.LooseConnector && i == 0 && j == 0})
		}

		listen := down
		if cfg.Module.Root {
			listen = up
		}
		dev := lifecycle.Devices{
			Stepper: m.party,
			Motors:  m.Motors,
			Emitter: w.ether.Emitter(m.Name),
			Angles:  w.ether.Radio(m.Name, listen),
			Death:   w.ether.Radio(m.Name, base.Channels.Death),
		}
		for _, cn := range m.Connectors {
			dev.Connectors = append(dev.Connectors, cn)
		}
		if cfg.Module.Root {
			dev.GPS = GPS{body: body}
			dev.Genomes = w.ether.Radio(m.Name, base.Channels.Genome)
		}

		ctrl, err := lifecycle.New(cfg, dev,
			lifecycle.WithLogger(w.log),
			lifecycle.WithSink(w.sink),
			lifecycle.WithRand(rand.New(rand.NewSource(rng.Int63()))),
			lifecycle.WithGenomeSettings(w.settings),
		)
		if err != nil {
			return err
		}
		m.Controller = ctrl
		w.modules = append(w.modules, m)
	}
	return nil
}

// ID identifies the run in logs.
func (w *World) ID() string { return w.id }

func (w *World) Modules() []*Module { return w.modules }

func (w *World) Evolver() *Evolver { return w.evolver }

func (w *World) Ether() *Ether { return w.ether }

// Body returns the body of an organism.
func (w *World) Body(id int) (*Body, bool) {
	b, ok := w.bodies[id]
	return b, ok
}

// Tick is the number of completed ticks.
func (w *World) Tick() int { return w.clock.Tick() }

// Run drives every module to the end of the world's ticks. It returns
// early with ctx's error when ctx is cancelled. A World runs once.
func (w *World) Run(ctx context.Context) error {
	w.runMu.Lock()
	if w.ran {
		w.runMu.Unlock()
		return errors.New("world: already run")
	}
	w.ran = true
	w.runCtx = ctx
	w.runMu.Unlock()

	w.log.Info("world started", zap.Int("modules", len(w.modules)), zap.Int("ticks", w.cfg.Ticks))
	g, gctx := errgroup.WithContext(ctx)
	for _, m := range w.modules {
		g.Go(func() error {
			defer m.party.Leave()
			if err := m.Controller.Run(gctx); err != nil {
				return fmt.Errorf("%s: %w", m.Name, err)
			}
			return nil
		})
	}

	finished := make(chan struct{})
	var watch sync.WaitGroup
	watch.Add(1)
	go func() {
		defer watch.Done()
		select {
		case <-gctx.Done():
			w.clock.Stop()
		case <-finished:
		}
	}()

	err := g.Wait()
	close(finished)
	watch.Wait()
	if err == nil {
		// the clock may have stopped the modules before they saw ctx
		err = ctx.Err()
	}
	w.log.Info("world finished", zap.Int("tick", w.clock.Tick()), zap.Int("dropped", w.ether.Dropped()))
	return err
}

// onTick runs with every module parked at the barrier.
func (w *World) onTick(tick int) {
	w.ether.Deliver()
	for _, id := range w.order {
		w.bodies[id].Advance()
	}
	w.evolver.tick(w.runCtx, tick)
}
