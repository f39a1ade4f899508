package lifecycle

import (
	"context"

	"github.com/baldhumanity/roombots/protocol"
)

// death releases the organism: undock, hold the motors still for
// SettleTicks, announce the death and hand the module back to the reserve,
// then idle until the simulation ends.
func (c *Controller) death(ctx context.Context) error {
	c.enter(Death)
	if c.root() && c.dev.Genomes != nil {
		c.dev.Genomes.Disable()
	}
	for _, cn := range c.dev.Connectors {
		cn.Unlock()
	}

	for i := 0; i < c.cfg.Timing.SettleTicks; i++ {
		c.setAllMotors(0)
		if err := c.step(ctx); err != nil {
			return err
		}
	}

	if err := c.send(c.cfg.Channels.Evolver, protocol.DeathAnnouncement(c.organismID)); err != nil {
		return err
	}
	if err := c.send(c.cfg.Channels.Modifier, protocol.ToReserve(c.cfg.Module.Name)); err != nil {
		return err
	}

	for {
		c.setAllMotors(0)
		if err := c.step(ctx); err != nil {
			return err
		}
	}
}
