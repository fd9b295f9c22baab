// Package propagate advances a wave field by one axial step, either by
// linear diffraction alone or by the diffraction/nonlinearity split.
package propagate

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/leapstack-labs/sonoprop/internal/fourier"
	"github.com/leapstack-labs/sonoprop/internal/nonlinear"
	"github.com/leapstack-labs/sonoprop/internal/operator"
	"github.com/leapstack-labs/sonoprop/internal/stepping"
	"github.com/leapstack-labs/sonoprop/pkg/core"
)

// Config holds propagator configuration.
type Config struct {
	Simulation core.SimulationConfig
	Grid       core.Grid
	Material   core.Material
	// ShockFraction and MinStepFraction tune the nonlinear sub-stepping
	// (zero selects the solver defaults).
	ShockFraction   float64
	MinStepFraction float64
	// Workers bounds the per-point nonlinear worker pool.
	Workers int
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Propagator advances fields one step at a time. It holds no field or
// operator state between calls.
type Propagator struct {
	cfg    Config
	solver *nonlinear.Solver
	logger *slog.Logger
}

// New creates a propagator for one run.
func New(cfg Config) (*Propagator, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	p := &Propagator{cfg: cfg, logger: logger}
	if cfg.Simulation.NonLinearity {
		if !(cfg.Grid.ResolutionZ > 0) {
			return nil, fmt.Errorf("%w: nonlinear propagation needs resolution_z > 0", core.ErrInvalidConfig)
		}
		solver, err := nonlinear.New(nonlinear.Config{
			Grid:            cfg.Grid,
			Material:        cfg.Material,
			NonLinearity:    true,
			Attenuation:     cfg.Simulation.Attenuation,
			ShockFraction:   cfg.ShockFraction,
			MinStepFraction: cfg.MinStepFraction,
			Workers:         cfg.Workers,
			Logger:          logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create nonlinear solver: %w", err)
		}
		p.solver = solver
	}
	return p, nil
}

// Step advances field by st.StepSize in direction dir. The step is
// classified once: unsupported models fail, nonlinear configurations run
// the split, everything else is a linear step.
func (p *Propagator) Step(ctx context.Context, st *core.State, field *core.WaveField, op *operator.Operator, dir core.Direction) (*core.WaveField, error) {
	switch model := p.cfg.Simulation.Diffraction; model {
	case core.NoDiffraction, core.ExactDiffraction, core.AngularSpectrumDiffraction:
	case core.PseudoDifferentialDiffraction, core.FiniteDifferenceDiffraction, core.FiniteDifferenceDiffraction3D:
		return nil, fmt.Errorf("%w: %s diffraction", core.ErrUnsupported, model)
	default:
		return nil, fmt.Errorf("%w: unknown diffraction model %d", core.ErrUnsupported, int(model))
	}

	if p.cfg.Simulation.NonLinearity {
		return p.Nonlinear(ctx, st, field, op, dir)
	}
	return p.Linear(st, field, op, dir, false)
}

// Linear advances field by one diffraction step of st.StepSize and moves
// st.Position accordingly. forceLinear must be set to run a diffraction
// step inside a nonlinear configuration. The operator is only read.
func (p *Propagator) Linear(st *core.State, field *core.WaveField, op *operator.Operator, dir core.Direction, forceLinear bool) (*core.WaveField, error) {
	if p.cfg.Simulation.NonLinearity && !forceLinear {
		return nil, fmt.Errorf("%w: linear step requested for a nonlinear configuration", core.ErrInvalidConfig)
	}
	if op.FullNt != field.Nt {
		return nil, fmt.Errorf("%w: operator has %d time bins, field has %d", core.ErrInvalidConfig, op.FullNt, field.Nt)
	}
	broadcast := !op.Lateral()
	if !broadcast && (op.Ny != field.Ny || op.Nx != field.Nx) {
		return nil, fmt.Errorf("%w: operator lateral shape (%d, %d) does not match field (%d, %d)",
			core.ErrInvalidConfig, op.Ny, op.Nx, field.Ny, field.Nx)
	}

	mult, err := op.Multiplier(st.StepSize, dir)
	if err != nil {
		return nil, err
	}

	spec := fourier.FromField(field)
	spec.Forward(!broadcast)
	if broadcast {
		points := field.Points()
		for t := 0; t < spec.Nt; t++ {
			h := mult[t]
			row := spec.Data[t*points : (t+1)*points]
			for i := range row {
				row[i] *= h
			}
		}
	} else {
		for i := range spec.Data {
			spec.Data[i] *= mult[i]
		}
	}
	spec.Inverse(!broadcast)

	out := core.NewWaveField(field.Nt, field.Ny, field.Nx)
	if err := spec.Real(out); err != nil {
		return nil, err
	}
	st.Position += dir.Sign() * st.StepSize
	return out, nil
}

// Nonlinear advances field by st.StepSize with the symmetric operator
// split: the step is cut into SubSteps of at most ResolutionZ, and each
// sub-step runs half a diffraction step, the per-point
// nonlinear/attenuation split over the full sub-step, then the other half
// of the diffraction. Equidistant operators must be built for
// DiffractionStep. st.StepSize is restored before returning.
func (p *Propagator) Nonlinear(ctx context.Context, st *core.State, field *core.WaveField, op *operator.Operator, dir core.Direction) (*core.WaveField, error) {
	if p.solver == nil {
		return nil, fmt.Errorf("%w: nonlinear step requested for a linear configuration", core.ErrInvalidConfig)
	}
	if p.cfg.Simulation.AbsorbingLayer {
		return nil, fmt.Errorf("%w: absorbing boundary layer", core.ErrUnsupported)
	}

	step := st.StepSize
	defer func() { st.StepSize = step }()

	n, dz := SubSteps(step, p.cfg.Grid.ResolutionZ)
	st.StepSize = dz / 2

	p.logger.Debug("nonlinear step", "position", st.Position, "step", step, "sub_steps", n, "dz", dz)

	var err error
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		field, err = p.Linear(st, field, op, dir, true)
		if err != nil {
			return nil, fmt.Errorf("sub-step %d: %w", i, err)
		}

		if err := p.solver.Apply(ctx, field, dir.Sign()*dz); err != nil {
			return nil, fmt.Errorf("sub-step %d: %w", i, err)
		}

		field, err = p.Linear(st, field, op, dir, true)
		if err != nil {
			return nil, fmt.Errorf("sub-step %d: %w", i, err)
		}
	}
	return field, nil
}

// SubSteps returns the number of nonlinear sub-steps for step and their
// size, which never exceeds resolutionZ.
func SubSteps(step, resolutionZ float64) (int, float64) {
	if !(resolutionZ > 0) || !(step > 0) {
		return 1, step
	}
	n := int(math.Ceil((step - stepping.Tolerance) / resolutionZ))
	if n < 1 {
		n = 1
	}
	return n, step / float64(n)
}

// SubStep returns the nonlinear sub-step size for step.
func SubStep(step, resolutionZ float64) float64 {
	_, dz := SubSteps(step, resolutionZ)
	return dz
}

// DiffractionStep returns the length of each diffraction half-step taken
// by Nonlinear for step.
func DiffractionStep(step, resolutionZ float64) float64 {
	return SubStep(step, resolutionZ) / 2
}
