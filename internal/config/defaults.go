package config

import (
	"github.com/leapstack-labs/sonoprop/internal/source"
	"github.com/leapstack-labs/sonoprop/pkg/core"
)

// Default configuration values: a 2 MHz beam in water-like tissue.
const (
	DefaultName        = "beam"
	DefaultSoundSpeed  = 1540.0
	DefaultDensity     = 1000.0
	DefaultBeta        = 3.5
	DefaultEpsA        = 4.5e-11
	DefaultEpsB        = 1.1
	DefaultFrequency   = 2e6
	DefaultNt          = 256
	DefaultNx          = 64
	DefaultDt          = 2e-8
	DefaultDx          = 2.5e-4
	DefaultResolutionZ = 5e-4
	DefaultEnd         = 0.05
	DefaultStep        = 2e-3
)

// DefaultProject returns the project used when nothing is configured.
func DefaultProject() Project {
	return Project{
		Simulation: core.SimulationConfig{
			Name:        DefaultName,
			Diffraction: core.ExactDiffraction,
			Attenuation: true,
			Dimensions:  2,
			Harmonics:   1,
			Equidistant: true,
			History:     core.HistoryStore,
		},
		Grid: core.Grid{
			Nt:          DefaultNt,
			Nx:          DefaultNx,
			Ny:          1,
			Dt:          DefaultDt,
			Dx:          DefaultDx,
			Dy:          DefaultDx,
			ResolutionZ: DefaultResolutionZ,
			SoundSpeed:  DefaultSoundSpeed,
		},
		Medium: Medium{
			SoundSpeed: DefaultSoundSpeed,
			Density:    DefaultDensity,
			Beta:       DefaultBeta,
			EpsA:       DefaultEpsA,
			EpsB:       DefaultEpsB,
		},
		Source: source.Pulse{
			Frequency: DefaultFrequency,
			Amplitude: 1e5,
			Cycles:    3,
			Aperture:  4e-3,
		},
		Stepping: Stepping{
			End:  DefaultEnd,
			Step: DefaultStep,
		},
		Solver: Solver{
			ShockFraction:   0.5,
			MinStepFraction: 1e-3,
		},
	}
}

// Defaults returns the default project as a flat koanf key map.
func Defaults() map[string]any {
	p := DefaultProject()
	return map[string]any{
		"simulation.name":                p.Simulation.Name,
		"simulation.diffraction":         p.Simulation.Diffraction.String(),
		"simulation.non_linearity":       p.Simulation.NonLinearity,
		"simulation.attenuation":         p.Simulation.Attenuation,
		"simulation.dimensions":          p.Simulation.Dimensions,
		"simulation.harmonics":           p.Simulation.Harmonics,
		"simulation.annular":             p.Simulation.Annular,
		"simulation.equidistant":         p.Simulation.Equidistant,
		"simulation.history":             string(p.Simulation.History),
		"simulation.absorbing_layer":     p.Simulation.AbsorbingLayer,
		"simulation.heterogeneous":       p.Simulation.Heterogeneous,
		"simulation.body_wall_thickness": p.Simulation.BodyWallThickness,
		"grid.nt":                        p.Grid.Nt,
		"grid.nx":                        p.Grid.Nx,
		"grid.ny":                        p.Grid.Ny,
		"grid.dt":                        p.Grid.Dt,
		"grid.dx":                        p.Grid.Dx,
		"grid.dy":                        p.Grid.Dy,
		"grid.resolution_z":              p.Grid.ResolutionZ,
		"grid.sound_speed":               p.Grid.SoundSpeed,
		"medium.sound_speed":             p.Medium.SoundSpeed,
		"medium.density":                 p.Medium.Density,
		"medium.beta":                    p.Medium.Beta,
		"medium.eps_a":                   p.Medium.EpsA,
		"medium.eps_b":                   p.Medium.EpsB,
		"source.frequency":               p.Source.Frequency,
		"source.amplitude":               p.Source.Amplitude,
		"source.cycles":                  p.Source.Cycles,
		"source.aperture":                p.Source.Aperture,
		"stepping.start":                 p.Stepping.Start,
		"stepping.end":                   p.Stepping.End,
		"stepping.step":                  p.Stepping.Step,
		"solver.shock_fraction":          p.Solver.ShockFraction,
		"solver.min_step_fraction":       p.Solver.MinStepFraction,
		"solver.workers":                 p.Solver.Workers,
	}
}
