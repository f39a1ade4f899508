package neat

import (
	"fmt"
	"math"
)

// ActivationType defines the type for activation functions.
type ActivationType func(x float64) float64

// LinearActivation is the activation of the bias input of every CPPN.
const LinearActivation = "identity"

// ActivationFunctions maps function names to the actual activation functions.
// CPPN outputs are sampled over a grid, so the periodic and symmetric
// functions matter as much as the saturating ones.
var ActivationFunctions = map[string]ActivationType{
	"sigmoid":  Sigmoid,
	"tanh":     Tanh,
	"relu":     ReLU,
	"identity": Identity,
	"linear":   Identity,
	"clamped":  Clamped,
	"gaussian": Gaussian,
	"abs":      Absolute,
	"sine":     Sine,
	"cosine":   Cosine,
	"hat":      Hat,
	"square":   Square,
	"step":     Step,
}

// GetActivation retrieves an activation function by name.
func GetActivation(name string) (ActivationType, error) {
	if fn, ok := ActivationFunctions[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown activation function: %s", name)
}

// Sigmoid is the logistic function with the NEAT steepness of 4.9.
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-4.9*clamp(x, -60.0, 60.0)))
}

func Tanh(x float64) float64 {
	return math.Tanh(x)
}

func ReLU(x float64) float64 {
	return math.Max(0, x)
}

func Identity(x float64) float64 {
	return x
}

// Clamped clamps output between -1 and 1.
func Clamped(x float64) float64 {
	return clamp(x, -1.0, 1.0)
}

func Gaussian(x float64) float64 {
	return math.Exp(-x * x / 2.0)
}

func Absolute(x float64) float64 {
	return math.Abs(x)
}

func Sine(x float64) float64 {
	return math.Sin(x)
}

func Cosine(x float64) float64 {
	return math.Cos(x)
}

// Hat is a triangular pulse centered at 0.
func Hat(x float64) float64 {
	return math.Max(0.0, 1.0-math.Abs(x))
}

func Square(x float64) float64 {
	return x * x
}

// Step returns 1 for positive input and 0 otherwise.
func Step(x float64) float64 {
	if x > 0 {
		return 1.0
	}
	return 0.0
}
