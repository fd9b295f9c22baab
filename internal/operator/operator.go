// Package operator builds the frequency-domain wave-number operator that
// advances a transformed wave field by one axial step.
package operator

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/leapstack-labs/sonoprop/pkg/core"
)

// StepTolerance is the largest difference between the step an exponential
// operator was built for and the step it is applied to.
const StepTolerance = 1e-14

// Options selects the operator form.
type Options struct {
	// Equidistant pre-combines the operator with StepSize.
	Equidistant bool
	StepSize    float64
	// NonRetarded keeps the operator in the laboratory frame.
	NonRetarded bool
}

// Operator is the wave-number operator of one run. It is owned by the
// driver and passed by pointer to propagators, which never modify it.
//
// Data is laid out (t, y, x) like a spectrum. A raw operator holds K with
// the step applied as exp(-i*dz*K); an exponential operator holds
// exp(-i*StepSize*K) directly. Reduced operators store only the
// non-negative temporal bins (Nt = FullNt/2+1); the rest follow from
// conjugate symmetry.
type Operator struct {
	Model       core.DiffractionModel
	FullNt      int
	Nt, Ny, Nx  int
	Data        []complex128
	Kt          []float64
	Reduced     bool
	Exponential bool
	Retarded    bool
	StepSize    float64
}

// Build computes the operator for the grid, diffraction model and material.
func Build(cfg core.SimulationConfig, g core.Grid, m core.Material, opts Options) (*Operator, error) {
	if g.Nt < 1 || !(g.Dt > 0) || !(g.SoundSpeed > 0) {
		return nil, fmt.Errorf("%w: operator needs nt >= 1, dt > 0 and sound_speed > 0", core.ErrInvalidConfig)
	}

	op := &Operator{
		Model:    cfg.Diffraction,
		FullNt:   g.Nt,
		Nt:       g.Nt,
		Ny:       1,
		Nx:       1,
		Retarded: !opts.NonRetarded,
	}

	switch cfg.Diffraction {
	case core.NoDiffraction:
	case core.ExactDiffraction:
		op.Ny, op.Nx = g.Ny, g.Nx
	case core.AngularSpectrumDiffraction:
		op.Ny, op.Nx = g.Ny, g.Nx
		op.Nt = g.Nt/2 + 1
		op.Reduced = true
		op.Retarded = false
		opts.Equidistant = false
	case core.PseudoDifferentialDiffraction, core.FiniteDifferenceDiffraction, core.FiniteDifferenceDiffraction3D:
		return nil, fmt.Errorf("%w: %s diffraction operator", core.ErrUnsupported, cfg.Diffraction)
	default:
		return nil, fmt.Errorf("%w: unknown diffraction model %d", core.ErrUnsupported, int(cfg.Diffraction))
	}

	if opts.Equidistant && (!(opts.StepSize > 0) || math.IsInf(opts.StepSize, 0)) {
		return nil, fmt.Errorf("%w: equidistant operator needs a positive step size (got %g)", core.ErrInvalidConfig, opts.StepSize)
	}

	// The retarded frame moves with the reference speed; the medium may
	// propagate at its own.
	mediumSpeed := m.SoundSpeed
	if !(mediumSpeed > 0) {
		mediumSpeed = g.SoundSpeed
	}

	omega := Axis(g.Nt, g.Dt)
	op.Kt = make([]float64, g.Nt)
	for i, w := range omega {
		op.Kt[i] = w / g.SoundSpeed
	}

	var kx, ky []float64
	if cfg.Diffraction.Lateral() {
		kx = Axis(g.Nx, g.Dx)
		ky = Axis(g.Ny, g.Dy)
	} else {
		kx, ky = []float64{0}, []float64{0}
	}

	var loss []complex128
	if cfg.Attenuation && !cfg.NonLinearity {
		loss = LossKernel(g.Nt, g.Dt, m.EpsA, m.EpsB)
	}

	op.Data = make([]complex128, op.Nt*op.Ny*op.Nx)
	for t := 0; t < op.Nt; t++ {
		kMedium := omega[t] / mediumSpeed
		for y := 0; y < op.Ny; y++ {
			for x := 0; x < op.Nx; x++ {
				k := Dispersion(kMedium, kx[x], ky[y])
				if op.Retarded {
					k -= complex(op.Kt[t], 0)
				}
				if loss != nil {
					k += -1i * loss[t]
				}
				op.Data[op.index(t, y, x)] = k
			}
		}
	}

	if opts.Equidistant {
		scale := complex(0, -opts.StepSize)
		for i, k := range op.Data {
			op.Data[i] = cmplx.Exp(scale * k)
		}
		op.Exponential = true
		op.StepSize = opts.StepSize
	}

	return op, nil
}

// Dispersion returns the axial wavenumber for temporal wavenumber kt and
// lateral wavenumbers kx, ky. The branch keeps the sign of kt on the
// propagating part and always damps evanescent components.
func Dispersion(kt, kx, ky float64) complex128 {
	root := cmplx.Sqrt(complex(kt*kt-kx*kx-ky*ky, 0))
	return complex(sign(kt)*real(root), -math.Abs(imag(root)))
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func (o *Operator) index(t, y, x int) int {
	return (t*o.Ny+y)*o.Nx + x
}

// Lateral reports whether applying the operator needs lateral transforms.
func (o *Operator) Lateral() bool {
	return o.Ny > 1 || o.Nx > 1
}

// Multiplier returns the full (FullNt, Ny, Nx) array that advances a
// transformed field by step in direction dir. The operator is not modified.
// A forward exponential operator returns its own Data, which callers must
// only read.
func (o *Operator) Multiplier(step float64, dir core.Direction) ([]complex128, error) {
	if o.Exponential {
		if math.Abs(math.Abs(step)-o.StepSize) > StepTolerance {
			return nil, fmt.Errorf("%w: built for %g, applied to %g", core.ErrStaleOperator, o.StepSize, step)
		}
		if dir.Sign() > 0 {
			return o.Data, nil
		}
		out := make([]complex128, len(o.Data))
		for i, h := range o.Data {
			if h != 0 {
				out[i] = 1 / h
			}
		}
		return out, nil
	}

	out := make([]complex128, o.FullNt*o.Ny*o.Nx)
	scale := complex(0, -dir.Sign()*step)
	for t := 0; t < o.FullNt; t++ {
		for y := 0; y < o.Ny; y++ {
			for x := 0; x < o.Nx; x++ {
				k := o.at(t, y, x)
				if o.Reduced {
					// reduced operators are stored non-retarded
					k -= complex(o.Kt[t], 0)
				}
				out[(t*o.Ny+y)*o.Nx+x] = cmplx.Exp(scale * k)
			}
		}
	}
	return out, nil
}

// at returns the raw operator value at full temporal bin t.
func (o *Operator) at(t, y, x int) complex128 {
	if !o.Reduced || t < o.Nt {
		return o.Data[o.index(t, y, x)]
	}
	// K(-w, -k) = -conj(K(w, k)) keeps exp(-i dz K) conjugate symmetric.
	mt := o.FullNt - t
	my := (o.Ny - y) % o.Ny
	mx := (o.Nx - x) % o.Nx
	return -cmplx.Conj(o.Data[o.index(mt, my, mx)])
}
