package engine

// run.go - Step loop orchestration

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/leapstack-labs/sonoprop/internal/operator"
	"github.com/leapstack-labs/sonoprop/internal/propagate"
	"github.com/leapstack-labs/sonoprop/internal/stepping"
	"github.com/leapstack-labs/sonoprop/internal/window"
	"github.com/leapstack-labs/sonoprop/pkg/core"
)

// storeTolerance matches planned landings against store positions.
const storeTolerance = 1e-12

// Result is the outcome of a run.
type Result struct {
	Field    *core.WaveField
	State    core.State
	Plan     *stepping.StepPlan
	Advice   stepping.Advice
	Rebuilds int
	Elapsed  time.Duration
}

// Schedule is the planned walk of a run.
type Schedule struct {
	Plan   *stepping.StepPlan
	Advice stepping.Advice
	// Equidistant selects the exponential operator for the first step.
	Equidistant bool
	// BodyWall is set when the field crosses the body wall before the plan
	// starts.
	BodyWall bool
}

// Schedule plans the steps of a run and decides operator caching. When the
// start point lies inside a heterogeneous body wall the plan starts at the
// wall exit depth.
func (e *Engine) Schedule() (*Schedule, error) {
	cfg := e.cfg
	start := cfg.StartPoint
	thickness := cfg.Simulation.BodyWallThickness
	wall := cfg.Simulation.Heterogeneous && thickness > 0 && start < thickness
	if wall {
		start = thickness
	}
	if start > cfg.EndPoint {
		return nil, fmt.Errorf("%w: end point %g lies inside the body wall (exit at %g)",
			core.ErrInvalidConfig, cfg.EndPoint, start)
	}

	plan, err := stepping.Plan(start, cfg.EndPoint, cfg.StepSize, cfg.StorePositions, cfg.ScreenPositions)
	if err != nil {
		return nil, fmt.Errorf("failed to plan steps: %w", err)
	}
	advice := stepping.Advise(cfg.Simulation.Diffraction, plan.Kinds)
	return &Schedule{
		Plan:        plan,
		Advice:      advice,
		Equidistant: advice.Equidistant && cfg.Simulation.Equidistant,
		BodyWall:    wall,
	}, nil
}

// Run propagates field from the configured start point to the end point.
// The input field is not modified. Cancelling ctx stops the run between
// steps.
func (e *Engine) Run(ctx context.Context, field *core.WaveField) (*Result, error) {
	cfg := e.cfg
	if err := field.CheckGrid(cfg.Grid); err != nil {
		return nil, err
	}
	started := e.clock()

	sched, err := e.Schedule()
	if err != nil {
		return nil, err
	}
	plan, advice := sched.Plan, sched.Advice
	equidistant := sched.Equidistant
	wall := sched.BodyWall
	st := &core.State{Position: cfg.StartPoint, StepSize: cfg.StepSize}

	e.logger.Info("starting propagation",
		"name", cfg.Simulation.Name,
		"start", plan.Start,
		"end", cfg.EndPoint,
		"steps", plan.Len(),
		"recalculate", advice.Recalculate,
		"equidistant", equidistant)

	op, err := e.buildOperator(equidistant, cfg.StepSize)
	if err != nil {
		return nil, err
	}

	win, err := window.New(cfg.Grid, cfg.Simulation.Dimensions, cfg.Taper)
	if err != nil {
		return nil, fmt.Errorf("failed to compute window: %w", err)
	}
	var sparse *window.Sparse
	if !cfg.Taper.IsNone() {
		sparse = win.Sparse()
	}

	current := field.Clone()
	if wall {
		if cfg.BodyWall == nil {
			return nil, fmt.Errorf("%w: heterogeneous body wall without a body-wall propagator", core.ErrUnsupported)
		}
		e.logger.Info("propagating through body wall", "thickness", cfg.Simulation.BodyWallThickness)
		current, err = cfg.BodyWall.Propagate(ctx, BodyWallRequest{
			Field:       current,
			Direction:   core.Forward,
			Equidistant: equidistant,
			Operator:    op,
			Window:      sparse,
			State:       st,
			Thickness:   cfg.Simulation.BodyWallThickness,
			Exporter:    cfg.Exporter,
		})
		if err != nil {
			return nil, fmt.Errorf("body wall: %w", err)
		}
		st.Position = plan.Start
		st.StepSize = cfg.StepSize
	}

	positions := plan.Positions()
	progress := newETA(e.clock, e.logger)
	rebuilds := 0

	for i := 0; i < plan.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run interrupted at step %d: %w", i, err)
		}

		st.StepSize = plan.Steps[i]
		kind := plan.Kinds[i]

		if advice.Recalculate && stepping.RebuildAt(plan.Kinds, i) {
			equidistant = kind == core.StepRegular && cfg.Simulation.Equidistant
			op, err = e.buildOperator(equidistant, plan.Steps[i])
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			rebuilds++
			e.logger.Debug("rebuilt operator", "step", i, "equidistant", equidistant)
		}

		current, err = e.propagator.Step(ctx, st, current, op, core.Forward)
		if err != nil {
			return nil, fmt.Errorf("step %d at %g: %w", i, st.Position, err)
		}
		// Land exactly where the plan says.
		st.Position = positions[i]

		if sparse != nil {
			if err := sparse.Apply(current); err != nil {
				return nil, err
			}
		}

		if cfg.Exporter != nil {
			ev := core.StepEvent{
				Step:     i,
				Position: st.Position,
				Kind:     kind,
				Stored:   e.isStore(st.Position),
				Field:    current,
			}
			if err := cfg.Exporter.Export(ctx, ev); err != nil {
				return nil, fmt.Errorf("failed to export step %d: %w", i, err)
			}
		}

		e.logger.Debug("step complete", "step", i, "position", st.Position, "kind", kind.String())
		progress.observe(i+1, plan.Len())
	}

	elapsed := e.clock().Sub(started)
	e.logger.Info("propagation complete", "name", cfg.Simulation.Name, "steps", plan.Len(), "elapsed", elapsed.String())

	return &Result{
		Field:    current,
		State:    *st,
		Plan:     plan,
		Advice:   advice,
		Rebuilds: rebuilds,
		Elapsed:  elapsed,
	}, nil
}

// buildOperator builds the operator for a step. Nonlinear runs apply the
// operator in diffraction half-steps, so the exponential form uses that size.
func (e *Engine) buildOperator(equidistant bool, step float64) (*operator.Operator, error) {
	if e.cfg.Simulation.NonLinearity {
		step = propagate.DiffractionStep(step, e.cfg.Grid.ResolutionZ)
	}
	op, err := operator.Build(e.cfg.Simulation, e.cfg.Grid, e.cfg.Material, operator.Options{
		Equidistant: equidistant,
		StepSize:    step,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build operator: %w", err)
	}
	return op, nil
}

func (e *Engine) isStore(position float64) bool {
	for _, z := range e.cfg.StorePositions {
		if math.Abs(z-position) <= storeTolerance {
			return true
		}
	}
	return false
}
