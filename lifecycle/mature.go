package lifecycle

import (
	"context"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/baldhumanity/roombots/protocol"
	"github.com/baldhumanity/roombots/results"
)

// matureState is the root's bookkeeping during mature life. Interval
// checks compare against absolute ticks, so every interval fires on the
// first tick it can.
type matureState struct {
	fitness float64

	fitnessStart   int
	positionStart  r3.Vec
	lastFitness    int
	lastEvolver    int
	lastGenomeSent int
	lastSpread     int
	lastMating     int
}

// mature runs until the death policy fires. Each root tick runs, in order:
// fertility, death check, fitness, evolver report, angle exchange,
// genome send to the evolver and peer mating.
func (c *Controller) mature(ctx context.Context) error {
	if c.root() {
		if err := c.send(c.cfg.Channels.Evolver, protocol.AdultAnnouncement(c.organismID)); err != nil {
			return err
		}
	}
	c.enter(MatureLife)
	born := c.tick

	if !c.root() {
		c.setAllMotors(0)
		for {
			if err := c.step(ctx); err != nil {
				return err
			}
			if c.shouldDie(born) {
				return nil
			}
			if err := c.relay(); err != nil {
				return err
			}
		}
	}

	c.setAllMotors(0)
	pipe := c.newRootAngles()
	st := &matureState{fitnessStart: c.tick, positionStart: c.position()}
	for {
		if err := c.step(ctx); err != nil {
			return err
		}
		pos := c.position()

		if c.mating == MatingByOrganisms && !c.fertile {
			c.checkFertility(ctx, pos)
		}
		if c.shouldDie(born) {
			return nil
		}

		if c.tick-st.lastFitness > c.cfg.Timing.FitnessInterval {
			fit, err := ComputeFitness(c.algorithm, c.seconds(c.tick-st.fitnessStart),
				displacement(st.positionStart, pos, c.cfg.Evolution.Planar))
			if err != nil {
				return err
			}
			st.fitness = fit.Value
			st.fitnessStart = c.tick
			st.positionStart = pos
			st.lastFitness = c.tick
		}

		if c.mating == MatingByOrganisms && c.tick-st.lastEvolver > c.cfg.Timing.EvolverUpdateInterval {
			msg := protocol.FitnessUpdate{ID: c.organismID, Fitness: st.fitness}.Encode()
			if err := c.send(c.cfg.Channels.Evolver, msg); err != nil {
				return err
			}
			st.lastEvolver = c.tick
		}

		if err := c.exchangeRoot(pipe); err != nil {
			return err
		}

		if c.mating == MatingByEvolver && c.tick-st.lastGenomeSent > c.cfg.Timing.SendGenomeInterval {
			if err := c.send(c.cfg.Channels.Evolver, c.spread(st.fitness).Encode()); err != nil {
				return err
			}
			c.record(ctx, results.Record{Kind: results.KindMatureFitness, Phase: c.phase, Fitness: st.fitness})
			st.lastGenomeSent = c.tick
		}

		if c.mating == MatingByOrganisms && c.fertile {
			if err := c.mate(ctx, st); err != nil {
				return err
			}
		}
	}
}

// shouldDie applies the death policy. It consumes the death channel.
func (c *Controller) shouldDie(born int) bool {
	switch c.deathBy {
	case DeathByEvolver:
		for c.dev.Death.QueueLength() > 0 {
			msg, ok := c.dev.Death.Next()
			if !ok {
				break
			}
			if protocol.NamesOrganism(msg, c.organismID) {
				c.log.Info("death ordered by evolver", zap.Int("tick", c.tick))
				return true
			}
		}
	case DeathByTimeToLive:
		if c.tick-born > c.cfg.Algorithm.MatureTimeToLive {
			c.log.Info("time to live exceeded", zap.Int("tick", c.tick))
			return true
		}
	}
	return false
}

// checkFertility makes the organism fertile once it has walked far enough
// from the arena centre. Fertility is never revoked.
func (c *Controller) checkFertility(ctx context.Context, pos r3.Vec) {
	ev := c.cfg.Evolution
	if horizontalDistance(pos, ev.CenterX, ev.CenterZ) <= ev.FertilityDistance {
		return
	}
	c.fertile = true
	c.dev.Genomes.Enable()
	drain(c.dev.Genomes)
	c.log.Info("organism fertile", zap.Int("tick", c.tick))
	c.record(ctx, results.Record{Kind: results.KindFertility, Phase: c.phase})
}

func (c *Controller) spread(fitness float64) protocol.Spread {
	return protocol.Spread{
		ID:      c.organismID,
		Fitness: fitness,
		Genome:  c.cfg.Organism.Genome,
		Mind:    c.mind,
	}
}
