package lifecycle

import (
	"context"

	"github.com/baldhumanity/roombots/protocol"
)

func (c *Controller) start(ctx context.Context) error {
	return c.step(ctx)
}

// flush drops whatever reached the angle and death receivers before start.
func (c *Controller) flush(context.Context) error {
	drain(c.dev.Angles)
	drain(c.dev.Death)
	return nil
}

// checkLocks senses every connector for LockTicks. A module with a loose
// connector warns its siblings; a module told about a loose connector
// gives up too, and the root relays the warning to the rest.
func (c *Controller) checkLocks(ctx context.Context) error {
	for _, cn := range c.dev.Connectors {
		cn.EnablePresence()
	}
	ok := true
	for i := 0; i < c.cfg.Timing.LockTicks; i++ {
		if err := c.step(ctx); err != nil {
			return err
		}
		if !c.connectorsPresent() {
			ok = false
		}
	}
	for _, cn := range c.dev.Connectors {
		cn.DisablePresence()
	}
	if !ok {
		if err := c.send(c.angleChannel(), protocol.New(protocol.TagConnectorsProblem)); err != nil {
			return err
		}
		return &rebuildError{reason: "connection problem"}
	}

	heard, err := c.listenFor(ctx, protocol.TagConnectorsProblem)
	if err != nil {
		return err
	}
	if heard {
		if c.root() {
			if err := c.send(c.angleChannel(), protocol.New(protocol.TagConnectorsProblem)); err != nil {
				return err
			}
		}
		return &rebuildError{reason: "connection problem"}
	}
	return nil
}

func (c *Controller) connectorsPresent() bool {
	for _, cn := range c.dev.Connectors {
		if !cn.Present() {
			return false
		}
	}
	return true
}

// listenFor steps ProblemListenTicks ticks watching the angle receiver for
// tag. Anything else received meanwhile is dropped.
func (c *Controller) listenFor(ctx context.Context, tag string) (bool, error) {
	for i := 0; i < c.cfg.Timing.ProblemListenTicks; i++ {
		if err := c.step(ctx); err != nil {
			return false, err
		}
		for _, msg := range drain(c.dev.Angles) {
			if msg == tag {
				return true, nil
			}
		}
	}
	return false, nil
}

// wait lets the module settle after it was dropped in the arena.
func (c *Controller) wait(ctx context.Context) error {
	return c.steps(ctx, c.cfg.Timing.WaitTicks)
}

// checkCylinder makes sure the organism did not land inside the central
// cylinder. Only the root has a position; its siblings wait for its verdict.
func (c *Controller) checkCylinder(ctx context.Context) error {
	if !c.cfg.Evolution.CheckCylinder {
		return nil
	}
	if c.root() {
		p := c.position()
		if horizontalDistance(p, c.cfg.Evolution.CenterX, c.cfg.Evolution.CenterZ) < c.cfg.Evolution.CylinderRadius {
			if err := c.send(c.angleChannel(), protocol.New(protocol.TagCylinderProblem)); err != nil {
				return err
			}
			return &rebuildError{reason: "fallen into cylinder"}
		}
		return nil
	}
	heard, err := c.listenFor(ctx, protocol.TagCylinderProblem)
	if err != nil {
		return err
	}
	if heard {
		return &rebuildError{reason: "fallen into cylinder"}
	}
	return nil
}
