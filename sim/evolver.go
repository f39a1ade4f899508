package sim

import (
	"context"
	"maps"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/baldhumanity/roombots/genome"
	"github.com/baldhumanity/roombots/lifecycle"
	"github.com/baldhumanity/roombots/organism"
	"github.com/baldhumanity/roombots/protocol"
	"github.com/baldhumanity/roombots/results"
)

// EvolverConfig tunes the evolver stub.
type EvolverConfig struct {
	// KillAfter orders an adult's death that many ticks after its
	// announcement. Zero never kills.
	KillAfter int `yaml:"kill_after"`
	// MatingInterval is how often the evolver breeds the best spread
	// genomes it holds. Zero never breeds.
	MatingInterval  int    `yaml:"mating_interval"`
	ParentSelection string `yaml:"parent_selection"`
}

// Report is what the evolver saw during a run.
type Report struct {
	Adults         []int
	Deaths         []int
	Rebuilds       []int
	Reserve        []string
	Spreads        int
	FitnessUpdates int
	Couples        []protocol.Couple
	Offspring      []string
}

// Evolver stands in for the evolver process: it listens to adults, orders
// deaths, collects couples and breeds offspring with a genome manager.
type Evolver struct {
	cfg      EvolverConfig
	channels lifecycle.ChannelConfig
	log      *zap.Logger
	sink     results.Sink
	// seconds per tick
	step float64

	emitter  *Emitter
	inbox    *Radio
	clinic   *Radio
	modifier *Radio

	manager  *genome.Manager
	registry *organism.Registry
	selector organism.Selector

	mu         sync.Mutex
	born       map[int]int
	ordered    map[int]bool
	lastMating int
	report     Report
}

func newEvolver(cfg EvolverConfig, base lifecycle.Config, ether *Ether,
	manager *genome.Manager, selector organism.Selector, log *zap.Logger, sink results.Sink) *Evolver {
	const owner = "evolver"
	channels := base.Channels
	return &Evolver{
		cfg:      cfg,
		channels: channels,
		log:      log.Named(owner),
		sink:     sink,
		step:     float64(base.Timing.TimeStepMS) / 1000,
		emitter:  ether.Emitter(owner),
		inbox:    ether.Radio(owner, channels.Evolver),
		clinic:   ether.Radio(owner, channels.Clinic),
		modifier: ether.Radio(owner, channels.Modifier),
		manager:  manager,
		registry: organism.NewRegistry(),
		selector: selector,
		born:     make(map[int]int),
		ordered:  make(map[int]bool),
	}
}

// Report returns a copy of what the evolver saw so far.
func (e *Evolver) Report() Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	r := e.report
	r.Adults = slices.Clone(r.Adults)
	r.Deaths = slices.Clone(r.Deaths)
	r.Rebuilds = slices.Clone(r.Rebuilds)
	r.Reserve = slices.Clone(r.Reserve)
	r.Couples = slices.Clone(r.Couples)
	r.Offspring = slices.Clone(r.Offspring)
	return r
}

// SavePool writes the offspring pool as a gzip checkpoint.
func (e *Evolver) SavePool(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.manager.SaveCheckpoint(path)
}

// tick runs once per completed world tick, after delivery.
func (e *Evolver) tick(ctx context.Context, now int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for e.inbox.QueueLength() > 0 {
		msg, _ := e.inbox.Next()
		e.handle(ctx, now, msg)
	}
	for e.clinic.QueueLength() > 0 {
		msg, _ := e.clinic.Next()
		if rb, err := protocol.ParseRebuild(msg); err == nil {
			e.report.Rebuilds = append(e.report.Rebuilds, rb.ID)
			e.log.Info("rebuild requested", zap.Int("organism", rb.ID), zap.Int("tick", now))
		}
	}
	for e.modifier.QueueLength() > 0 {
		msg, _ := e.modifier.Next()
		if name, err := protocol.GetString(msg, protocol.KeyName); err == nil {
			e.report.Reserve = append(e.report.Reserve, name)
		}
	}

	e.orderDeaths(now)
	if e.cfg.MatingInterval > 0 && now-e.lastMating >= e.cfg.MatingInterval {
		e.lastMating = now
		e.breedBest(ctx, now)
	}
}

func (e *Evolver) handle(ctx context.Context, now int, msg string) {
	switch protocol.TagOf(msg) {
	case protocol.TagAdultAnnouncement:
		id, err := protocol.IDOf(msg)
		if err != nil {
			return
		}
		e.born[id] = now
		e.report.Adults = append(e.report.Adults, id)
	case protocol.TagDeathAnnouncement:
		id, err := protocol.IDOf(msg)
		if err != nil {
			return
		}
		delete(e.born, id)
		e.report.Deaths = append(e.report.Deaths, id)
	case protocol.TagGenomeSpread:
		s, err := protocol.ParseSpread(msg)
		if err != nil {
			return
		}
		e.registry.UpdateOrCreate(s.ID, s.Fitness, s.Genome, s.Mind)
		e.report.Spreads++
	case protocol.TagFitnessUpdate:
		if _, err := protocol.ParseFitnessUpdate(msg); err == nil {
			e.report.FitnessUpdates++
		}
	case protocol.TagCouple:
		cp, err := protocol.ParseCouple(msg)
		if err != nil {
			e.log.Warn("bad couple", zap.Error(err))
			return
		}
		e.report.Couples = append(e.report.Couples, cp)
		e.breed(ctx, now, cp.First, cp.Second)
	}
}

func (e *Evolver) orderDeaths(now int) {
	if e.cfg.KillAfter <= 0 {
		return
	}
	for _, id := range slices.Sorted(maps.Keys(e.born)) {
		if e.ordered[id] || now-e.born[id] < e.cfg.KillAfter {
			continue
		}
		e.ordered[id] = true
		if err := e.emitter.Send(e.channels.Death, protocol.DeathCommand(id)); err != nil {
			e.log.Error("death order not sent", zap.Int("organism", id), zap.Error(err))
			continue
		}
		e.log.Info("death ordered", zap.Int("organism", id), zap.Int("tick", now))
	}
}

func (e *Evolver) breedBest(ctx context.Context, now int) {
	if e.registry.Len() < 2 {
		return
	}
	ids := e.selector.SelectParents(e.registry.All())
	if len(ids) < 2 || ids[0] == ids[1] {
		return
	}
	a, okA := e.registry.Find(ids[0])
	b, okB := e.registry.Find(ids[1])
	if !okA || !okB {
		return
	}
	e.breed(ctx, now,
		protocol.Spread{ID: a.ID, Fitness: a.Fitness, Genome: a.Genome, Mind: a.Mind},
		protocol.Spread{ID: b.ID, Fitness: b.Fitness, Genome: b.Genome, Mind: b.Mind})
}

// breed crosses the body genomes of two parents in the manager's pool. The
// parents are dropped from the pool afterwards and the child stays in it.
func (e *Evolver) breed(ctx context.Context, now int, first, second protocol.Spread) {
	fail := func(err error) {
		e.log.Warn("breeding failed", zap.Int("first", first.ID), zap.Int("second", second.ID), zap.Error(err))
	}
	a, err := e.manager.GenomeFromString(first.Genome)
	if err != nil {
		fail(err)
		return
	}
	defer e.manager.Remove(a)
	b, err := e.manager.GenomeFromString(second.Genome)
	if err != nil {
		fail(err)
		return
	}
	defer e.manager.Remove(b)

	child, err := e.manager.CreateGenome(a, b)
	if err != nil {
		fail(err)
		return
	}
	text, err := e.manager.GenomeToString(child)
	if err != nil {
		e.manager.Remove(child)
		fail(err)
		return
	}
	e.report.Offspring = append(e.report.Offspring, text)
	e.log.Debug("offspring bred", zap.Int("first", first.ID), zap.Int("second", second.ID))
	if err := e.sink.Write(ctx, results.Record{
		Time:     float64(now) * e.step,
		Module:   "evolver",
		Kind:     results.KindOffspring,
		Organism: first.ID,
		Fitness:  max(first.Fitness, second.Fitness),
		Detail:   text,
	}); err != nil {
		e.log.Warn("offspring not recorded", zap.Error(err))
	}
}
