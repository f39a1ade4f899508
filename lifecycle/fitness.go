package lifecycle

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"
)

// Fitness is a computed fitness value plus the breakdown written to the
// result sink: 2^(d²), |d|, speed and (100·speed)^6.
type Fitness struct {
	Value  float64
	Detail string
}

// ComputeFitness scores a displacement d covered in dt seconds.
func ComputeFitness(alg AlgorithmType, dt float64, d r3.Vec) (Fitness, error) {
	dist := r3.Norm(d)
	speed := 0.0
	if dt > 0 {
		speed = dist / dt
	}

	var f Fitness
	switch alg {
	case AlgorithmNEAT, AlgorithmSplineNEAT:
		f.Value = math.Pow(2, r3.Norm2(d))
	case AlgorithmCPG:
		f.Value = dist
	case AlgorithmPower:
		f.Value = speed
	default:
		return Fitness{}, fmt.Errorf("%w: %v", ErrUnknownAlgorithm, alg)
	}
	f.Detail = formatFloat(math.Pow(2, r3.Norm2(d))) + " " +
		formatFloat(dist) + " " +
		formatFloat(speed) + " " +
		formatFloat(math.Pow(100*speed, 6))
	return f, nil
}

// RealFitness is the value reported for logging. It only differs from the
// selection fitness for POWER, where it is (100·speed)^6.
func RealFitness(alg AlgorithmType, fitness float64) (float64, error) {
	switch alg {
	case AlgorithmNEAT, AlgorithmSplineNEAT, AlgorithmCPG:
		return fitness, nil
	case AlgorithmPower:
		return math.Pow(100*fitness, 6), nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrUnknownAlgorithm, alg)
	}
}

// displacement returns to-from, dropping height when planar is set.
func displacement(from, to r3.Vec, planar bool) r3.Vec {
	d := r3.Sub(to, from)
	if planar {
		d.Y = 0
	}
	return d
}

// horizontalDistance is the distance between p and (cx, ·, cz) in the
// ground plane.
func horizontalDistance(p r3.Vec, cx, cz float64) float64 {
	return math.Hypot(p.X-cx, p.Z-cz)
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
