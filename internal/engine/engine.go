// Package engine drives a propagation run from the transducer face to the
// end point: it plans the steps, owns the operator and the stepping state,
// and hands every step to the export stage.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/leapstack-labs/sonoprop/internal/operator"
	"github.com/leapstack-labs/sonoprop/internal/propagate"
	"github.com/leapstack-labs/sonoprop/internal/window"
	"github.com/leapstack-labs/sonoprop/pkg/core"
)

// Exporter receives the field after every step. It must not retain the
// field after returning.
type Exporter interface {
	Export(ctx context.Context, ev core.StepEvent) error
}

// BodyWall propagates the field through a heterogeneous body wall ahead of
// the homogeneous region.
type BodyWall interface {
	Propagate(ctx context.Context, req BodyWallRequest) (*core.WaveField, error)
}

// BodyWallRequest is the input of a body-wall propagation. The
// collaborator may move State.Position; the driver continues from the wall
// exit depth regardless.
type BodyWallRequest struct {
	Field       *core.WaveField
	Direction   core.Direction
	Equidistant bool
	Operator    *operator.Operator
	Window      *window.Sparse
	State       *core.State
	Thickness   float64
	Exporter    Exporter
}

// Engine runs propagations for one configuration.
type Engine struct {
	cfg        Config
	propagator *propagate.Propagator
	logger     *slog.Logger
	clock      func() time.Time
}

// Config holds engine configuration.
type Config struct {
	Simulation core.SimulationConfig
	Grid       core.Grid
	Material   core.Material

	// StartPoint is the current axial position of the field.
	StartPoint float64
	// EndPoint is the target depth.
	EndPoint float64
	// StepSize is the nominal axial step.
	StepSize float64
	// StorePositions are depths at which profiles are kept.
	StorePositions []float64
	// ScreenPositions are aberration-screen depths the plan must land on.
	ScreenPositions []float64

	// Taper is the lateral window (window.None disables it).
	Taper window.Taper

	// BodyWall handles heterogeneous propagation through the wall (optional
	// unless Simulation.Heterogeneous with a positive thickness).
	BodyWall BodyWall
	// Exporter receives every step (optional).
	Exporter Exporter

	// ShockFraction and MinStepFraction tune nonlinear sub-stepping.
	ShockFraction   float64
	MinStepFraction float64
	// Workers bounds the per-point nonlinear worker pool.
	Workers int

	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
	// Clock returns the current time (optional, uses time.Now if nil)
	Clock func() time.Time
}

// New validates the configuration and creates an engine.
func New(cfg Config) (*Engine, error) {
	// Initialize logger (use discard handler if nil)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	cfg.Simulation.ApplyOverrides()
	if err := validate(cfg); err != nil {
		return nil, err
	}

	logger.Debug("initializing engine",
		"name", cfg.Simulation.Name,
		"diffraction", cfg.Simulation.Diffraction.String(),
		"dimensions", cfg.Simulation.Dimensions,
		"non_linearity", cfg.Simulation.NonLinearity,
		"attenuation", cfg.Simulation.Attenuation)

	prop, err := propagate.New(propagate.Config{
		Simulation:      cfg.Simulation,
		Grid:            cfg.Grid,
		Material:        cfg.Material,
		ShockFraction:   cfg.ShockFraction,
		MinStepFraction: cfg.MinStepFraction,
		Workers:         cfg.Workers,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create propagator: %w", err)
	}

	return &Engine{cfg: cfg, propagator: prop, logger: logger, clock: clock}, nil
}

// Config returns the effective configuration, after overrides.
func (e *Engine) Config() Config { return e.cfg }

func validate(cfg Config) error {
	var errs []error
	if err := cfg.Simulation.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := cfg.Grid.Validate(cfg.Simulation.Dimensions); err != nil {
		errs = append(errs, err)
	}
	if !(cfg.StepSize > 0) || math.IsInf(cfg.StepSize, 0) {
		errs = append(errs, fmt.Errorf("%w: step size must be > 0 (got %g)", core.ErrInvalidConfig, cfg.StepSize))
	}
	if math.IsNaN(cfg.StartPoint) || math.IsNaN(cfg.EndPoint) || cfg.EndPoint < cfg.StartPoint {
		errs = append(errs, fmt.Errorf("%w: end point %g must not lie before start point %g",
			core.ErrInvalidConfig, cfg.EndPoint, cfg.StartPoint))
	}
	if err := cfg.Taper.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if !cfg.Simulation.Diffraction.Implemented() {
		return fmt.Errorf("%w: %s diffraction", core.ErrUnsupported, cfg.Simulation.Diffraction)
	}
	if cfg.Simulation.AbsorbingLayer {
		return fmt.Errorf("%w: absorbing boundary layer", core.ErrUnsupported)
	}
	return nil
}
