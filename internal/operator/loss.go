package operator

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// LossKernel returns the causal power-law loss per unit distance for each
// temporal frequency bin (natural FFT order). The real part is
// epsA*|w|^epsB; the imaginary part is the dispersion that makes the
// attenuation filter exp(-dz*L) minimum phase, obtained by folding the real
// cepstrum of the attenuation onto non-negative quefrencies.
func LossKernel(nt int, dt, epsA, epsB float64) []complex128 {
	omega := Axis(nt, dt)

	amplitude := make([]complex128, nt)
	for i, w := range omega {
		if w == 0 && epsB > 0 {
			continue
		}
		amplitude[i] = complex(epsA*math.Pow(math.Abs(w), epsB), 0)
	}
	if epsA == 0 || nt < 2 {
		return amplitude
	}

	cepstrum := fft.IFFT(amplitude)
	folded := make([]complex128, nt)
	folded[0] = complex(real(cepstrum[0]), 0)
	for n := 1; n < (nt+1)/2; n++ {
		folded[n] = complex(2*real(cepstrum[n]), 0)
	}
	if nt%2 == 0 {
		folded[nt/2] = complex(real(cepstrum[nt/2]), 0)
	}

	kernel := fft.FFT(folded)
	// The even part of the folded cepstrum is the input, so the real part
	// is exact up to rounding; restore it.
	for i := range kernel {
		kernel[i] = complex(real(amplitude[i]), imag(kernel[i]))
	}
	return kernel
}
