// Package fourier applies axis-by-axis discrete Fourier transforms to wave
// fields laid out as (t, y, x).
//
// Transforms use github.com/mjibson/go-dsp/fft: the forward transform is
// unnormalised with kernel exp(-i w t) and the inverse applies 1/n per axis,
// so a forward/inverse pair is the identity.
package fourier

import (
	"fmt"

	"github.com/mjibson/go-dsp/fft"

	"github.com/leapstack-labs/sonoprop/pkg/core"
)

// Spectrum is a complex buffer with the same (t, y, x) layout as a
// core.WaveField.
type Spectrum struct {
	Nt, Ny, Nx int
	Data       []complex128
}

// NewSpectrum allocates a zero spectrum.
func NewSpectrum(nt, ny, nx int) *Spectrum {
	return &Spectrum{Nt: nt, Ny: ny, Nx: nx, Data: make([]complex128, nt*ny*nx)}
}

// FromField copies a real field into a new spectrum buffer.
func FromField(f *core.WaveField) *Spectrum {
	s := NewSpectrum(f.Nt, f.Ny, f.Nx)
	for i, v := range f.Data {
		s.Data[i] = complex(v, 0)
	}
	return s
}

// Index returns the flat offset of bin (t, y, x).
func (s *Spectrum) Index(t, y, x int) int {
	return (t*s.Ny+y)*s.Nx + x
}

// Forward transforms the lateral axes (when lateral is set) and then time.
func (s *Spectrum) Forward(lateral bool) {
	if lateral {
		s.transform(s.Nx, 1, false)
		s.transform(s.Ny, s.Nx, false)
	}
	s.transform(s.Nt, s.Ny*s.Nx, false)
}

// Inverse undoes Forward: time first, then the lateral axes.
func (s *Spectrum) Inverse(lateral bool) {
	s.transform(s.Nt, s.Ny*s.Nx, true)
	if lateral {
		s.transform(s.Ny, s.Nx, true)
		s.transform(s.Nx, 1, true)
	}
}

// Real writes the real part of the buffer into dst, which must have the
// same shape. The imaginary part of a transformed real field is rounding
// noise and is dropped.
func (s *Spectrum) Real(dst *core.WaveField) error {
	if dst.Nt != s.Nt || dst.Ny != s.Ny || dst.Nx != s.Nx {
		return fmt.Errorf("spectrum shape (%d, %d, %d) does not match field (%d, %d, %d)",
			s.Nt, s.Ny, s.Nx, dst.Nt, dst.Ny, dst.Nx)
	}
	for i, c := range s.Data {
		dst.Data[i] = real(c)
	}
	return nil
}

// transform runs a 1-D transform along the axis of length n whose samples
// are stride elements apart.
func (s *Spectrum) transform(n, stride int, inverse bool) {
	if n <= 1 {
		return
	}
	line := make([]complex128, n)
	outer := len(s.Data) / (n * stride)
	for o := 0; o < outer; o++ {
		for i := 0; i < stride; i++ {
			start := o*n*stride + i
			for k := 0; k < n; k++ {
				line[k] = s.Data[start+k*stride]
			}
			var out []complex128
			if inverse {
				out = fft.IFFT(line)
			} else {
				out = fft.FFT(line)
			}
			for k := 0; k < n; k++ {
				s.Data[start+k*stride] = out[k]
			}
		}
	}
}

// TraceForward returns the spectrum of one real temporal waveform.
func TraceForward(p []float64) []complex128 {
	return fft.FFTReal(p)
}

// TraceInverse inverts a trace spectrum and writes its real part into dst.
func TraceInverse(spec []complex128, dst []float64) {
	out := fft.IFFT(spec)
	for i := range dst {
		dst[i] = real(out[i])
	}
}
