package nonlinear

import (
	"math/cmplx"

	"github.com/leapstack-labs/sonoprop/internal/fourier"
)

// Attenuate applies the causal loss kernel over distance dz to the
// waveform p in place. A nil kernel is lossless.
func Attenuate(p []float64, kernel []complex128, dz float64) {
	if kernel == nil || dz == 0 {
		return
	}
	spec := fourier.TraceForward(p)
	scale := complex(-dz, 0)
	for k := range spec {
		spec[k] *= cmplx.Exp(scale * kernel[k])
	}
	fourier.TraceInverse(spec, p)
}
