package operator

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Axis returns the angular wavenumber (or angular frequency) axis of an
// n-point transform with sample spacing d, in natural FFT order: index 0 is
// zero, followed by the positive and then the negative bins.
func Axis(n int, d float64) []float64 {
	if n <= 1 {
		return make([]float64, max(n, 1))
	}
	step := 2 * math.Pi / (float64(n) * d)
	half := n / 2

	centered := make([]float64, n)
	floats.Span(centered, -float64(half)*step, float64(n-1-half)*step)
	return IFFTShift(centered)
}

// IFFTShift moves the zero bin of a centered axis to index 0.
func IFFTShift(in []float64) []float64 {
	n := len(in)
	out := make([]float64, n)
	for i := range out {
		out[i] = in[(i+n/2)%n]
	}
	return out
}
