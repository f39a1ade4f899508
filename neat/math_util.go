package neat

import (
	"math"
	"math/rand"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// clamp restricts a value to a given range [minVal, maxVal].
func clamp(value, minVal, maxVal float64) float64 {
	return math.Max(minVal, math.Min(value, maxVal))
}

// parseBoolAttribute parses common string representations of booleans.
// Handles true/false, yes/no, on/off, 1/0, and random.
func parseBoolAttribute(valStr string, rng *rand.Rand) bool {
	valStr = strings.ToLower(strings.TrimSpace(valStr))
	if valStr == "true" || valStr == "yes" || valStr == "on" || valStr == "1" {
		return true
	}
	if valStr == "random" || valStr == "none" {
		return rng.Float64() < 0.5
	}
	return false
}

// Mean calculates the average of a slice of float64 values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	return floats.Sum(values) / float64(len(values))
}

// Median calculates the median of a slice of float64 values.
// Returns NaN if the slice is empty.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2.0
}
