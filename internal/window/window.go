package window

import (
	"fmt"

	"github.com/leapstack-labs/sonoprop/pkg/core"
)

// Window holds the lateral weights of a taper, one per lateral point.
type Window struct {
	Ny, Nx  int
	Weights []float64
}

// New computes the window for the active lateral axes of the grid. 1-D
// runs have no lateral axes and get an all-ones window.
func New(g core.Grid, dims int, taper Taper) (*Window, error) {
	if err := taper.Validate(); err != nil {
		return nil, err
	}
	if g.Nx < 1 || g.Ny < 1 {
		return nil, fmt.Errorf("%w: window needs nx, ny >= 1", core.ErrInvalidConfig)
	}

	ax, ay := taper.Ratios()
	if dims < 2 || taper.IsNone() {
		ax = 0
	}
	if dims < 3 || taper.IsNone() {
		ay = 0
	}
	wx := Tukey(g.Nx, ax)
	wy := Tukey(g.Ny, ay)

	w := &Window{Ny: g.Ny, Nx: g.Nx, Weights: make([]float64, g.Ny*g.Nx)}
	for y := 0; y < g.Ny; y++ {
		for x := 0; x < g.Nx; x++ {
			w.Weights[y*g.Nx+x] = wy[y] * wx[x]
		}
	}
	return w, nil
}

// Sparse returns the window as a sparse diagonal holding only the lateral
// points whose weight differs from one.
func (w *Window) Sparse() *Sparse {
	s := &Sparse{Ny: w.Ny, Nx: w.Nx}
	for p, v := range w.Weights {
		if v != 1 {
			s.Index = append(s.Index, p)
			s.Weight = append(s.Weight, v)
		}
	}
	return s
}

// Sparse is a diagonal lateral weighting stored as (point, weight) pairs.
type Sparse struct {
	Ny, Nx int
	Index  []int
	Weight []float64
}

// Len returns the number of weighted points.
func (s *Sparse) Len() int { return len(s.Index) }

// Apply multiplies every temporal sample of the weighted lateral points in
// place.
func (s *Sparse) Apply(f *core.WaveField) error {
	if f.Ny != s.Ny || f.Nx != s.Nx {
		return fmt.Errorf("%w: window shape (%d, %d) does not match field (%d, %d)",
			core.ErrInvalidConfig, s.Ny, s.Nx, f.Ny, f.Nx)
	}
	points := f.Points()
	for t := 0; t < f.Nt; t++ {
		row := f.Data[t*points : (t+1)*points]
		for i, p := range s.Index {
			row[p] *= s.Weight[i]
		}
	}
	return nil
}
