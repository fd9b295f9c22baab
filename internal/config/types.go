// Package config provides the simulation project configuration shared by
// the CLI and library callers. It is decoupled from CLI concerns.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/leapstack-labs/sonoprop/internal/engine"
	"github.com/leapstack-labs/sonoprop/internal/source"
	"github.com/leapstack-labs/sonoprop/internal/window"
	"github.com/leapstack-labs/sonoprop/pkg/core"
)

// Project holds everything needed to set up one propagation run.
type Project struct {
	Simulation core.SimulationConfig `koanf:"simulation" yaml:"simulation"`
	Grid       core.Grid             `koanf:"grid" yaml:"grid"`
	Medium     Medium                `koanf:"medium" yaml:"medium"`
	Source     source.Pulse          `koanf:"source" yaml:"source"`
	Stepping   Stepping              `koanf:"stepping" yaml:"stepping"`
	Solver     Solver                `koanf:"solver" yaml:"solver"`

	// Taper holds the lateral window ratios: empty for none, one value for
	// both axes, or one per axis (x, y).
	Taper []float64 `koanf:"taper" yaml:"taper,flow"`
}

// Medium holds the physical constants of the propagation medium.
type Medium struct {
	SoundSpeed float64 `koanf:"sound_speed" yaml:"sound_speed"`
	Density    float64 `koanf:"density" yaml:"density"`
	Beta       float64 `koanf:"beta" yaml:"beta"`
	EpsA       float64 `koanf:"eps_a" yaml:"eps_a"`
	EpsB       float64 `koanf:"eps_b" yaml:"eps_b"`
}

// Stepping holds the axial extent of the run.
type Stepping struct {
	Start   float64   `koanf:"start" yaml:"start"`
	End     float64   `koanf:"end" yaml:"end"`
	Step    float64   `koanf:"step" yaml:"step"`
	Store   []float64 `koanf:"store" yaml:"store,flow"`
	Screens []float64 `koanf:"screens" yaml:"screens,flow"`
}

// Solver tunes the nonlinear sub-stepping and its worker pool.
type Solver struct {
	ShockFraction   float64 `koanf:"shock_fraction" yaml:"shock_fraction"`
	MinStepFraction float64 `koanf:"min_step_fraction" yaml:"min_step_fraction"`
	Workers         int     `koanf:"workers" yaml:"workers"`
}

// Material returns the core material for the medium. The grid sound speed
// is used when the medium does not set one.
func (p *Project) Material() core.Material {
	c := p.Medium.SoundSpeed
	if c == 0 {
		c = p.Grid.SoundSpeed
	}
	return core.NewMaterial(c, p.Medium.Density, p.Medium.Beta, p.Medium.EpsA, p.Medium.EpsB)
}

// ParseTaper decodes the taper ratios.
func (p *Project) ParseTaper() (window.Taper, error) {
	return window.ParseTaper(p.Taper)
}

// Validate reports every problem with the project at once. Engine-level
// checks run again in engine.New.
func (p *Project) Validate() error {
	var errs []error
	if p.Simulation.Name == "" {
		errs = append(errs, fmt.Errorf("%w: simulation.name is required", core.ErrInvalidConfig))
	}
	if err := p.Simulation.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := p.Grid.Validate(p.Simulation.Dimensions); err != nil {
		errs = append(errs, err)
	}
	if p.Medium.SoundSpeed < 0 || p.Medium.Density < 0 {
		errs = append(errs, fmt.Errorf("%w: medium sound_speed and density must be >= 0", core.ErrInvalidConfig))
	}
	if p.Simulation.Attenuation && !(p.Medium.EpsB > 0) {
		errs = append(errs, fmt.Errorf("%w: medium.eps_b must be > 0 when attenuation is on", core.ErrInvalidConfig))
	}
	if p.Simulation.NonLinearity && !(p.Medium.Density > 0) {
		errs = append(errs, fmt.Errorf("%w: medium.density must be > 0 when non_linearity is on", core.ErrInvalidConfig))
	}
	if err := p.Source.Validate(); err != nil {
		errs = append(errs, err)
	}
	if !(p.Stepping.Step > 0) || math.IsInf(p.Stepping.Step, 0) {
		errs = append(errs, fmt.Errorf("%w: stepping.step must be > 0", core.ErrInvalidConfig))
	}
	if p.Stepping.End < p.Stepping.Start {
		errs = append(errs, fmt.Errorf("%w: stepping.end must not lie before stepping.start", core.ErrInvalidConfig))
	}
	if p.Solver.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: solver.workers must be >= 0", core.ErrInvalidConfig))
	}
	if _, err := p.ParseTaper(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// EngineConfig converts the project into an engine configuration. The
// caller adds the exporter and body-wall collaborators.
func (p *Project) EngineConfig(logger *slog.Logger) (engine.Config, error) {
	taper, err := p.ParseTaper()
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		Simulation:      p.Simulation,
		Grid:            p.Grid,
		Material:        p.Material(),
		StartPoint:      p.Stepping.Start,
		EndPoint:        p.Stepping.End,
		StepSize:        p.Stepping.Step,
		StorePositions:  p.Stepping.Store,
		ScreenPositions: p.Stepping.Screens,
		Taper:           taper,
		ShockFraction:   p.Solver.ShockFraction,
		MinStepFraction: p.Solver.MinStepFraction,
		Workers:         p.Solver.Workers,
		Logger:          logger,
	}, nil
}
