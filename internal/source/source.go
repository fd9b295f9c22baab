// Package source builds the initial pressure field at the transducer face.
package source

import (
	"errors"
	"fmt"
	"math"

	"github.com/leapstack-labs/sonoprop/pkg/core"
)

// Pulse describes a Gaussian-enveloped tone burst with Gaussian lateral
// apodisation.
type Pulse struct {
	// Frequency is the centre frequency in Hz.
	Frequency float64 `koanf:"frequency" yaml:"frequency"`
	// Amplitude is the peak pressure in Pa.
	Amplitude float64 `koanf:"amplitude" yaml:"amplitude"`
	// Cycles is the full width at half maximum of the envelope, in periods.
	Cycles float64 `koanf:"cycles" yaml:"cycles"`
	// Aperture is the lateral 1/e radius in m. Zero disables apodisation.
	Aperture float64 `koanf:"aperture" yaml:"aperture"`
}

// Validate reports every problem with the pulse at once.
func (p Pulse) Validate() error {
	var errs []error
	if !(p.Frequency > 0) {
		errs = append(errs, fmt.Errorf("%w: source frequency must be > 0", core.ErrInvalidConfig))
	}
	if !(p.Cycles > 0) {
		errs = append(errs, fmt.Errorf("%w: source cycles must be > 0", core.ErrInvalidConfig))
	}
	if p.Aperture < 0 || math.IsNaN(p.Aperture) {
		errs = append(errs, fmt.Errorf("%w: source aperture must be >= 0", core.ErrInvalidConfig))
	}
	if math.IsNaN(p.Amplitude) || math.IsInf(p.Amplitude, 0) {
		errs = append(errs, fmt.Errorf("%w: source amplitude must be finite", core.ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// Generate samples the pulse on the grid. The burst is centred in the time
// window and the beam on the lateral grid centre.
func Generate(sim core.SimulationConfig, g core.Grid, p Pulse) (*core.WaveField, error) {
	if sim.Annular && sim.Dimensions == 3 {
		return nil, fmt.Errorf("%w: annular transducer in 3-D", core.ErrUnsupported)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := g.Validate(sim.Dimensions); err != nil {
		return nil, err
	}

	f := core.NewWaveFieldFor(g)
	trace := Burst(g.Nt, g.Dt, p)
	lateral := apodisation(g, p.Aperture)

	for t, v := range trace {
		for y := 0; y < g.Ny; y++ {
			for x := 0; x < g.Nx; x++ {
				f.Set(t, y, x, v*lateral[y*g.Nx+x])
			}
		}
	}
	return f, nil
}

// Burst returns nt samples of the tone burst at spacing dt.
func Burst(nt int, dt float64, p Pulse) []float64 {
	out := make([]float64, nt)
	t0 := float64(nt) * dt / 2
	// FWHM = 2 sqrt(2 ln 2) sigma
	sigma := p.Cycles / p.Frequency / (2 * math.Sqrt(2*math.Ln2))
	w := 2 * math.Pi * p.Frequency
	for i := range out {
		tt := float64(i)*dt - t0
		out[i] = p.Amplitude * math.Exp(-tt*tt/(2*sigma*sigma)) * math.Sin(w*tt)
	}
	return out
}

func apodisation(g core.Grid, radius float64) []float64 {
	out := make([]float64, g.Ny*g.Nx)
	for y := 0; y < g.Ny; y++ {
		yy := float64(y-g.Ny/2) * g.Dy
		for x := 0; x < g.Nx; x++ {
			xx := float64(x-g.Nx/2) * g.Dx
			if radius == 0 {
				out[y*g.Nx+x] = 1
				continue
			}
			r2 := (xx*xx + yy*yy) / (radius * radius)
			out[y*g.Nx+x] = math.Exp(-r2)
		}
	}
	return out
}
