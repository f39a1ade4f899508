package lifecycle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/baldhumanity/roombots/organism"
	"github.com/baldhumanity/roombots/protocol"
	"github.com/baldhumanity/roombots/results"
)

// mate is the fertile root's share of peer-to-peer mating: broadcast its
// own genomes, collect the broadcasts of others and, every MatingInterval,
// pick a mate and send the couple to the evolver.
func (c *Controller) mate(ctx context.Context, st *matureState) error {
	if c.tick-st.lastSpread > c.cfg.Timing.SpreadInterval {
		if err := c.send(c.cfg.Channels.Genome, c.spread(st.fitness).Encode()); err != nil {
			return err
		}
		st.lastSpread = c.tick
	}

	c.collectCandidates()

	if c.tick-st.lastMating <= c.cfg.Timing.MatingInterval {
		return nil
	}
	if c.registry.Len() > 0 {
		if err := c.matingRound(ctx, st.fitness); err != nil {
			return err
		}
	}
	c.registry.Clear()
	st.lastMating = c.tick
	return nil
}

// collectCandidates drains the genome receiver into the registry.
// Malformed broadcasts and our own are skipped.
func (c *Controller) collectCandidates() {
	for _, msg := range drain(c.dev.Genomes) {
		if !protocol.Is(msg, protocol.TagGenomeSpread) {
			continue
		}
		s, err := protocol.ParseSpread(msg)
		if err != nil {
			c.log.Debug("mate broadcast skipped", zap.Error(err))
			continue
		}
		if s.ID == c.organismID {
			continue
		}
		c.registry.UpdateOrCreate(s.ID, s.Fitness, s.Genome, s.Mind)
	}
}

func (c *Controller) matingRound(ctx context.Context, fitness float64) error {
	mateID, ok := organism.SelectMate(c.selector, c.registry)
	if !ok {
		return nil
	}
	mate, found := c.registry.Find(mateID)
	if !found {
		c.log.Warn("selected mate not in registry",
			zap.Int("mate", mateID), zap.Ints("registry", c.registry.IDs()), zap.Int("tick", c.tick))
		c.record(ctx, results.Record{
			Kind:   results.KindMateMiss,
			Phase:  c.phase,
			Detail: fmt.Sprintf("mate %d list %v", mateID, c.registry.IDs()),
		})
		return nil
	}

	couple := protocol.Couple{
		First: c.spread(fitness),
		Second: protocol.Spread{
			ID:      mate.ID,
			Fitness: mate.Fitness,
			Genome:  mate.Genome,
			Mind:    mate.Mind,
		},
	}
	c.log.Info("mate chosen", zap.Int("mate", mate.ID), zap.Float64("mate_fitness", mate.Fitness), zap.Int("tick", c.tick))
	return c.send(c.cfg.Channels.Evolver, couple.Encode())
}
