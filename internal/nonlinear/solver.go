package nonlinear

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/sonoprop/internal/operator"
	"github.com/leapstack-labs/sonoprop/pkg/core"
)

// Defaults for Config.
const (
	DefaultShockFraction   = 0.5
	DefaultMinStepFraction = 1e-3
)

// Config holds solver configuration.
type Config struct {
	Grid         core.Grid
	Material     core.Material
	NonLinearity bool
	Attenuation  bool
	// ShockFraction is the share of the estimated shock distance covered by
	// one sub-step.
	ShockFraction float64
	// MinStepFraction floors each sub-step at this share of the requested
	// distance, so a shocked waveform still makes progress.
	MinStepFraction float64
	// Workers bounds the number of lateral points processed concurrently
	// (defaults to GOMAXPROCS).
	Workers int
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Solver applies the per-point nonlinear/attenuation split to every
// lateral point of a field. Points are independent and run on a bounded
// worker pool; the solver only reads shared state.
type Solver struct {
	cfg    Config
	kernel []complex128
	times  []float64
	logger *slog.Logger
}

// New creates a solver. Irregular materials are rejected here, before any
// field is touched.
func New(cfg Config) (*Solver, error) {
	if !cfg.Material.Regular {
		return nil, fmt.Errorf("%w: nonlinear split for irregular materials", core.ErrUnsupported)
	}
	if cfg.Grid.Nt < 2 || !(cfg.Grid.Dt > 0) {
		return nil, fmt.Errorf("%w: nonlinear solver needs nt >= 2 and dt > 0", core.ErrInvalidConfig)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.ShockFraction <= 0 {
		cfg.ShockFraction = DefaultShockFraction
	}
	if cfg.MinStepFraction <= 0 {
		cfg.MinStepFraction = DefaultMinStepFraction
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}

	s := &Solver{cfg: cfg, logger: logger}
	if cfg.Attenuation && cfg.Material.EpsA != 0 {
		s.kernel = operator.LossKernel(cfg.Grid.Nt, cfg.Grid.Dt, cfg.Material.EpsA, cfg.Material.EpsB)
	}
	s.times = make([]float64, cfg.Grid.Nt)
	for i := range s.times {
		s.times[i] = float64(i) * cfg.Grid.Dt
	}
	return s, nil
}

// Apply advances every lateral point of field through distance dz. A
// negative dz runs the split backwards.
func (s *Solver) Apply(ctx context.Context, field *core.WaveField, dz float64) error {
	if !s.cfg.NonLinearity && !s.cfg.Attenuation {
		return nil
	}
	if field.Nt != s.cfg.Grid.Nt {
		return fmt.Errorf("%w: field has %d time samples, solver expects %d", core.ErrInvalidConfig, field.Nt, s.cfg.Grid.Nt)
	}
	if dz == 0 {
		return nil
	}

	s.logger.Debug("applying nonlinear split", "points", field.Points(), "dz", dz, "workers", s.cfg.Workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for p := 0; p < field.Points(); p++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			trace := field.Trace(p, nil)
			s.advance(trace, dz)
			field.SetTrace(p, trace)
			return nil
		})
	}
	return g.Wait()
}

// advance runs the shock-limited sub-step loop on one waveform.
func (s *Solver) advance(p []float64, dz float64) {
	direction := 1.0
	if dz < 0 {
		direction = -1
	}
	remaining := math.Abs(dz)
	minStep := s.cfg.MinStepFraction * remaining
	epsN := s.cfg.Material.EpsN
	dt := s.cfg.Grid.Dt

	for remaining > 0 {
		step := remaining
		if s.cfg.NonLinearity {
			shock := ShockDistance(s.times, p, direction*epsN)
			step = math.Min(remaining, s.cfg.ShockFraction*shock)
			if step < minStep {
				step = math.Min(minStep, remaining)
			}
		}
		remaining -= step
		signed := direction * step

		switch {
		case s.cfg.NonLinearity && s.cfg.Attenuation:
			Burgers(p, dt, epsN, signed/2)
			Attenuate(p, s.kernel, signed)
			Burgers(p, dt, epsN, signed/2)
		case s.cfg.NonLinearity:
			Burgers(p, dt, epsN, signed)
		default:
			Attenuate(p, s.kernel, signed)
		}
	}
}
