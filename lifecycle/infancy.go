package lifecycle

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/baldhumanity/roombots/genome"
	"github.com/baldhumanity/roombots/results"
)

// infancy lasts InfancyDuration ticks. The root splits it into one window
// per evaluation, scores the gait at the end of each window and hands the
// score to the learning algorithm. Siblings only relay angles.
func (c *Controller) infancy(ctx context.Context) error {
	c.enter(Infancy)
	c.setAllMotors(0)
	if !c.root() {
		if err := c.step(ctx); err != nil {
			return err
		}
		start := c.tick
		for {
			if err := c.step(ctx); err != nil {
				return err
			}
			if c.tick-start >= c.cfg.Algorithm.InfancyDuration {
				return nil
			}
			if err := c.relay(); err != nil {
				return err
			}
		}
	}

	if err := c.initMinds(); err != nil {
		return err
	}
	// the root starts one tick after its siblings
	if err := c.steps(ctx, 2); err != nil {
		return err
	}

	window := max(c.cfg.Algorithm.InfancyDuration/c.cfg.Algorithm.Evaluations, 1)
	pipe := c.newRootAngles()
	start := c.tick
	evalStep := 0
	evalStart := c.tick
	var startPos r3.Vec
	learned := false
	for {
		if err := c.step(ctx); err != nil {
			return err
		}
		if c.tick-start >= c.cfg.Algorithm.InfancyDuration {
			break
		}
		if err := c.exchangeRoot(pipe); err != nil {
			return err
		}

		if evalStep < window {
			evalStep++
			if evalStep == 1 {
				evalStart = c.tick
				startPos = c.position()
			}
			if period := c.cfg.Timing.PositionLogPeriod; period > 0 && evalStep%period == 0 {
				c.recordPosition(ctx)
			}
			continue
		}

		fit, err := ComputeFitness(c.algorithm, c.seconds(c.tick-evalStart),
			displacement(startPos, c.position(), c.cfg.Evolution.Planar))
		if err != nil {
			return err
		}
		reported, err := RealFitness(c.algorithm, fit.Value)
		if err != nil {
			return err
		}
		c.alg.SetEvaluationFitness(fit.Value, fit.Detail)
		c.record(ctx, results.Record{
			Kind:       results.KindFitness,
			Phase:      c.phase,
			Generation: c.alg.Generation(),
			Evaluation: c.alg.Evaluation(),
			Fitness:    reported,
			Detail:     fit.Detail,
		})
		c.log.Debug("evaluation scored",
			zap.Int("evaluation", c.alg.Evaluation()),
			zap.Float64("fitness", fit.Value),
			zap.Int("tick", c.tick))
		if !learned && !c.alg.NextEvaluation() {
			learned = true
			c.log.Info("infancy learning complete", zap.Int("generation", c.alg.Generation()))
		}
		evalStep = 0
	}
	return nil
}

// initMinds hands the configured mind genomes to the algorithm, or lets it
// draw fresh ones and remembers their text.
func (c *Controller) initMinds() error {
	motors, modules := c.cfg.Module.Motors, c.cfg.Module.OrganismSize
	var minds []*genome.MatrixGenome
	if c.mind == "" {
		minds = c.alg.InitialMinds(motors, modules, c.rng)
		c.mind = genome.EncodeArray(minds)
	} else {
		var err error
		minds, err = genome.DecodeArray(c.mind, c.genomes)
		if err != nil {
			return fmt.Errorf("mind genome: %w", err)
		}
	}
	return c.alg.SetInitialMinds(minds, motors, modules)
}

func (c *Controller) recordPosition(ctx context.Context) {
	p := c.position()
	c.record(ctx, results.Record{
		Kind:       results.KindPosition,
		Phase:      c.phase,
		Evaluation: c.alg.Evaluation(),
		Detail:     fmt.Sprintf("%s 0 %s", formatFloat(p.X), formatFloat(p.Z)),
	})
}
