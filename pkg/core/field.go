package core

import (
	"fmt"
	"math"
)

// WaveField is a real pressure field sampled on (t, y, x). The y axis is a
// singleton for 2-D runs, and both lateral axes are singletons for 1-D runs.
type WaveField struct {
	Nt, Ny, Nx int
	Data       []float64
}

// NewWaveField allocates a zero field.
func NewWaveField(nt, ny, nx int) *WaveField {
	return &WaveField{Nt: nt, Ny: ny, Nx: nx, Data: make([]float64, nt*ny*nx)}
}

// NewWaveFieldFor allocates a zero field matching the grid.
func NewWaveFieldFor(g Grid) *WaveField {
	return NewWaveField(g.Nt, g.Ny, g.Nx)
}

// Index returns the flat offset of sample (t, y, x).
func (f *WaveField) Index(t, y, x int) int {
	return (t*f.Ny+y)*f.Nx + x
}

// At returns sample (t, y, x).
func (f *WaveField) At(t, y, x int) float64 {
	return f.Data[f.Index(t, y, x)]
}

// Set stores sample (t, y, x).
func (f *WaveField) Set(t, y, x int, v float64) {
	f.Data[f.Index(t, y, x)] = v
}

// Points returns the number of lateral points.
func (f *WaveField) Points() int { return f.Ny * f.Nx }

// Trace copies the temporal waveform at lateral point p (p = y*Nx + x) into
// dst, allocating when dst is too short.
func (f *WaveField) Trace(p int, dst []float64) []float64 {
	if cap(dst) < f.Nt {
		dst = make([]float64, f.Nt)
	}
	dst = dst[:f.Nt]
	stride := f.Points()
	for t := range dst {
		dst[t] = f.Data[t*stride+p]
	}
	return dst
}

// SetTrace writes the temporal waveform at lateral point p.
func (f *WaveField) SetTrace(p int, src []float64) {
	stride := f.Points()
	for t := 0; t < f.Nt; t++ {
		f.Data[t*stride+p] = src[t]
	}
}

// Clone returns a deep copy.
func (f *WaveField) Clone() *WaveField {
	c := &WaveField{Nt: f.Nt, Ny: f.Ny, Nx: f.Nx, Data: make([]float64, len(f.Data))}
	copy(c.Data, f.Data)
	return c
}

// Peak returns the largest absolute sample.
func (f *WaveField) Peak() float64 {
	var peak float64
	for _, v := range f.Data {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return peak
}

// CheckGrid verifies the field shape matches the grid.
func (f *WaveField) CheckGrid(g Grid) error {
	if f.Nt != g.Nt || f.Ny != g.Ny || f.Nx != g.Nx {
		return fmt.Errorf("%w: field shape (%d, %d, %d) does not match grid (%d, %d, %d)",
			ErrInvalidConfig, f.Nt, f.Ny, f.Nx, g.Nt, g.Ny, g.Nx)
	}
	if len(f.Data) != f.Nt*f.Ny*f.Nx {
		return fmt.Errorf("%w: field holds %d samples, want %d", ErrInvalidConfig, len(f.Data), f.Nt*f.Ny*f.Nx)
	}
	return nil
}

// StepEvent describes the field after one completed step. It is handed to
// the export stage, which must not retain Field after returning.
type StepEvent struct {
	Step     int
	Position float64
	Kind     StepKind
	// Stored marks a step that landed on a store position.
	Stored bool
	Field  *WaveField
}
