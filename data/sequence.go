package data

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// SineSequence samples one period of a sine wave into steps single-value
// rows, shifted by phase radians.
func SineSequence(steps int, phase float64) [][]float64 {
	if steps <= 0 {
		return nil
	}
	xs := make([]float64, steps)
	if steps > 1 {
		floats.Span(xs, 0, 2*math.Pi)
	}

	seq := make([][]float64, steps)
	for i, x := range xs {
		seq[i] = []float64{math.Sin(x + phase)}
	}
	return seq
}
