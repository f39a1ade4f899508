package lifecycle

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/baldhumanity/roombots/genome"
)

// Algorithm is the learning collaborator a root module drives during
// infancy and keeps using for the rest of its life. It turns the angle
// table of the whole organism into the next table.
type Algorithm interface {
	// InitialMinds draws the minds to evaluate when none were configured.
	InitialMinds(motors, modules int, rng *rand.Rand) []*genome.MatrixGenome
	SetInitialMinds(minds []*genome.MatrixGenome, motors, modules int) error
	// Compute returns the target angles, one row per module, t seconds
	// after the gait started.
	Compute(angles [][]float64, t float64) [][]float64
	SetEvaluationFitness(fitness float64, detail string)
	// NextEvaluation moves to the next candidate and reports false once
	// every candidate has been evaluated.
	NextEvaluation() bool
	Generation() int
	Evaluation() int
}

// SineGait drives every motor with a sine wave. Each mind is a matrix with
// one row per motor of the organism (module-major) and three columns:
// amplitude, frequency multiplier and phase. Infancy evaluates the minds in
// turn and keeps the fittest.
type SineGait struct {
	AngularVelocity float64
	// Gain in (0,1] smooths the move from the current angle to the target.
	Gain       float64
	Candidates int
	Settings   *genome.Settings

	minds      []*genome.MatrixGenome
	fitness    []float64
	current    int
	generation int
	done       bool
	motors     int
	modules    int
}

// NewSineGait returns a gait that evaluates candidates random minds when
// none are configured.
func NewSineGait(angularVelocity float64, candidates int, s *genome.Settings) *SineGait {
	return &SineGait{
		AngularVelocity: angularVelocity,
		Gain:            1,
		Candidates:      max(candidates, 1),
		Settings:        s,
	}
}

func (g *SineGait) InitialMinds(motors, modules int, rng *rand.Rand) []*genome.MatrixGenome {
	minds := make([]*genome.MatrixGenome, g.Candidates)
	for i := range minds {
		minds[i] = genome.RandomMatrixGenome(motors*modules, 3, g.Settings, rng)
	}
	return minds
}

func (g *SineGait) SetInitialMinds(minds []*genome.MatrixGenome, motors, modules int) error {
	if len(minds) == 0 {
		return fmt.Errorf("sine gait: no minds")
	}
	for i, m := range minds {
		x, y := m.Dims()
		if x != motors*modules || y != 3 {
			return fmt.Errorf("sine gait: mind %d is %dx%d, want %dx3", i, x, y, motors*modules)
		}
	}
	g.minds = minds
	g.fitness = make([]float64, len(minds))
	g.current = 0
	g.done = false
	g.motors = motors
	g.modules = modules
	return nil
}

func (g *SineGait) Compute(angles [][]float64, t float64) [][]float64 {
	out := make([][]float64, len(angles))
	if len(g.minds) == 0 {
		for i, row := range angles {
			out[i] = make([]float64, len(row))
		}
		return out
	}
	mind := g.minds[g.current]
	target := make([]float64, g.motors)
	for i, row := range angles {
		out[i] = make([]float64, len(row))
		if i >= g.modules || len(row) != g.motors {
			continue
		}
		for j := range target {
			k := i*g.motors + j
			amp, freq, phase := mind.At(k, 0), mind.At(k, 1), mind.At(k, 2)
			target[j] = clampUnit(amp * math.Sin(g.AngularVelocity*freq*t+phase))
		}
		// out = row + gain*(target-row)
		floats.SubTo(out[i], target, row)
		floats.AddScaledTo(out[i], row, g.Gain, out[i])
	}
	return out
}

func (g *SineGait) SetEvaluationFitness(fitness float64, _ string) {
	if g.done || len(g.fitness) == 0 {
		return
	}
	g.fitness[g.current] = fitness
}

func (g *SineGait) NextEvaluation() bool {
	if g.done || len(g.minds) == 0 {
		return false
	}
	if g.current+1 < len(g.minds) {
		g.current++
		return true
	}
	g.current = floats.MaxIdx(g.fitness)
	g.generation++
	g.done = true
	return false
}

func (g *SineGait) Generation() int { return g.generation }

func (g *SineGait) Evaluation() int { return g.current }

// Best returns the mind in use: the fittest once every candidate has been
// evaluated.
func (g *SineGait) Best() *genome.MatrixGenome {
	if len(g.minds) == 0 {
		return nil
	}
	return g.minds[g.current]
}

func clampUnit(v float64) float64 { return math.Max(-1, math.Min(1, v)) }
