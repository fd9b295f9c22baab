package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// HistoryPolicy controls which beam profiles the export stage keeps.
type HistoryPolicy string

// History policies.
const (
	HistoryNone  HistoryPolicy = "none"
	HistoryStore HistoryPolicy = "store"
	HistoryEvery HistoryPolicy = "every"
)

// Validate checks the policy is one of the known values.
func (h HistoryPolicy) Validate() error {
	switch h {
	case HistoryNone, HistoryStore, HistoryEvery:
		return nil
	default:
		return fmt.Errorf("%w: unknown history policy %q", ErrInvalidConfig, string(h))
	}
}

// StepKind tags a planned axial step.
type StepKind int

// Step kinds. Regular steps have the nominal size and may reuse a cached
// operator; special steps land exactly on a store or screen position.
const (
	StepRegular StepKind = iota
	StepSpecial
)

func (k StepKind) String() string {
	if k == StepRegular {
		return "regular"
	}
	return "special"
}

// Direction is the axial propagation direction.
type Direction int

// Directions.
const (
	Forward  Direction = 1
	Backward Direction = -1
)

// Sign returns +1 or -1.
func (d Direction) Sign() float64 {
	if d < 0 {
		return -1
	}
	return 1
}

// SimulationConfig holds the immutable per-run switches.
type SimulationConfig struct {
	Name              string           `koanf:"name" yaml:"name"`
	Diffraction       DiffractionModel `koanf:"diffraction" yaml:"diffraction"`
	NonLinearity      bool             `koanf:"non_linearity" yaml:"non_linearity"`
	Attenuation       bool             `koanf:"attenuation" yaml:"attenuation"`
	Dimensions        int              `koanf:"dimensions" yaml:"dimensions"`
	Harmonics         int              `koanf:"harmonics" yaml:"harmonics"`
	Annular           bool             `koanf:"annular" yaml:"annular"`
	Equidistant       bool             `koanf:"equidistant" yaml:"equidistant"`
	History           HistoryPolicy    `koanf:"history" yaml:"history"`
	AbsorbingLayer    bool             `koanf:"absorbing_layer" yaml:"absorbing_layer"`
	Heterogeneous     bool             `koanf:"heterogeneous" yaml:"heterogeneous"`
	BodyWallThickness float64          `koanf:"body_wall_thickness" yaml:"body_wall_thickness"`
}

// ApplyOverrides rewrites combinations that the core cannot run as given.
// An annular transducer cannot describe a heterogeneous body wall, so such
// runs are promoted to full 3-D exact diffraction.
func (c *SimulationConfig) ApplyOverrides() {
	if c.Annular && c.Heterogeneous {
		c.Dimensions = 3
		c.Diffraction = ExactDiffraction
	}
}

// Validate reports every problem with the configuration at once.
func (c SimulationConfig) Validate() error {
	var errs []error
	if c.Dimensions < 1 || c.Dimensions > 3 {
		errs = append(errs, fmt.Errorf("%w: dimensions must be 1, 2 or 3 (got %d)", ErrInvalidConfig, c.Dimensions))
	}
	if c.Harmonics < 1 {
		errs = append(errs, fmt.Errorf("%w: harmonics must be at least 1 (got %d)", ErrInvalidConfig, c.Harmonics))
	}
	if _, ok := diffractionNames[c.Diffraction]; !ok {
		errs = append(errs, fmt.Errorf("%w: unknown diffraction model %d", ErrInvalidConfig, int(c.Diffraction)))
	}
	if c.History != "" {
		if err := c.History.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.BodyWallThickness < 0 || math.IsNaN(c.BodyWallThickness) {
		errs = append(errs, fmt.Errorf("%w: body_wall_thickness must be >= 0", ErrInvalidConfig))
	}
	if c.Dimensions == 1 && c.Diffraction.Lateral() {
		errs = append(errs, fmt.Errorf("%w: %s diffraction needs at least 2 dimensions", ErrInvalidConfig, c.Diffraction))
	}
	return errors.Join(errs...)
}

// Grid holds the sampling of the simulated volume.
type Grid struct {
	Nt          int     `koanf:"nt" yaml:"nt"`
	Nx          int     `koanf:"nx" yaml:"nx"`
	Ny          int     `koanf:"ny" yaml:"ny"`
	Dt          float64 `koanf:"dt" yaml:"dt"`
	Dx          float64 `koanf:"dx" yaml:"dx"`
	Dy          float64 `koanf:"dy" yaml:"dy"`
	ResolutionZ float64 `koanf:"resolution_z" yaml:"resolution_z"`
	SoundSpeed  float64 `koanf:"sound_speed" yaml:"sound_speed"`
}

// Validate checks the grid against the run dimensionality.
func (g Grid) Validate(dims int) error {
	var problems []string
	if g.Nt < 2 {
		problems = append(problems, fmt.Sprintf("nt must be >= 2 (got %d)", g.Nt))
	}
	if g.Nx < 1 || g.Ny < 1 {
		problems = append(problems, fmt.Sprintf("nx and ny must be >= 1 (got %d, %d)", g.Nx, g.Ny))
	}
	switch dims {
	case 1:
		if g.Nx != 1 || g.Ny != 1 {
			problems = append(problems, "1-D runs need nx = ny = 1")
		}
	case 2:
		if g.Ny != 1 {
			problems = append(problems, "2-D runs need ny = 1")
		}
	case 3:
	default:
		problems = append(problems, fmt.Sprintf("unsupported dimensionality %d", dims))
	}
	if !(g.Dt > 0) {
		problems = append(problems, "dt must be > 0")
	}
	if dims >= 2 && !(g.Dx > 0) {
		problems = append(problems, "dx must be > 0")
	}
	if dims == 3 && !(g.Dy > 0) {
		problems = append(problems, "dy must be > 0")
	}
	if !(g.ResolutionZ > 0) {
		problems = append(problems, "resolution_z must be > 0")
	}
	if !(g.SoundSpeed > 0) {
		problems = append(problems, "sound_speed must be > 0")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: grid: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Points returns the number of lateral points.
func (g Grid) Points() int { return g.Nx * g.Ny }

// Material holds the medium constants consumed by the propagation core.
type Material struct {
	SoundSpeed float64
	EpsA       float64 // attenuation coefficient, Np/m per (rad/s)^EpsB
	EpsB       float64 // attenuation power-law exponent
	EpsN       float64 // nonlinearity coefficient beta/(rho c^3)
	Regular    bool
}

// NewMaterial derives the nonlinearity coefficient from the coefficient of
// nonlinearity beta and density rho.
func NewMaterial(soundSpeed, density, beta, epsA, epsB float64) Material {
	var epsN float64
	if density > 0 && soundSpeed > 0 {
		epsN = beta / (density * soundSpeed * soundSpeed * soundSpeed)
	}
	return Material{
		SoundSpeed: soundSpeed,
		EpsA:       epsA,
		EpsB:       epsB,
		EpsN:       epsN,
		Regular:    true,
	}
}

// State is the stepping state mutated by propagators.
type State struct {
	Position float64
	StepSize float64
}
