// Package stepping plans the axial step sequence of a propagation run and
// decides when the wave-number operator has to be rebuilt.
package stepping

import (
	"fmt"
	"math"
	"sort"

	"github.com/leapstack-labs/sonoprop/pkg/core"
)

// Tolerance is the absolute distance below which two axial positions are
// considered identical.
const Tolerance = 1e-14

// StepPlan is the ordered sequence of axial steps covering [Start, End].
// Steps and Kinds always have the same length.
type StepPlan struct {
	Start   float64
	End     float64
	Nominal float64
	Steps   []float64
	Kinds   []core.StepKind

	landings []float64
}

// Len returns the number of planned steps.
func (p *StepPlan) Len() int { return len(p.Steps) }

// Positions returns the axial position reached after each step. Special
// steps land exactly on their target.
func (p *StepPlan) Positions() []float64 {
	out := make([]float64, len(p.landings))
	copy(out, p.landings)
	return out
}

// Total returns the sum of the planned steps.
func (p *StepPlan) Total() float64 {
	var sum float64
	for _, s := range p.Steps {
		sum += s
	}
	return sum
}

// Plan computes the steps needed to walk from start to end with nominal
// step size step, landing exactly on every store and screen position that
// lies strictly inside (start, end).
func Plan(start, end, step float64, store, screens []float64) (*StepPlan, error) {
	switch {
	case math.IsNaN(step) || math.IsInf(step, 0) || step <= 0:
		return nil, fmt.Errorf("%w: step size must be a positive finite number (got %g)", core.ErrInvalidConfig, step)
	case math.IsNaN(start) || math.IsInf(start, 0):
		return nil, fmt.Errorf("%w: start point must be finite (got %g)", core.ErrInvalidConfig, start)
	case math.IsNaN(end) || math.IsInf(end, 0):
		return nil, fmt.Errorf("%w: end point must be finite (got %g)", core.ErrInvalidConfig, end)
	case end < start:
		return nil, fmt.Errorf("%w: end point %g lies before start point %g", core.ErrInvalidConfig, end, start)
	}

	specials := mergeSpecials(start, end, store, screens)
	plan := &StepPlan{Start: start, End: end, Nominal: step}

	z := start
	next := 0
	for end-z > Tolerance {
		// Skip specials we are already standing on.
		for next < len(specials) && specials[next]-z <= Tolerance {
			next++
		}

		target := end
		if next < len(specials) {
			target = specials[next]
		}

		dist := target - z
		switch {
		case math.Abs(dist-step) <= Tolerance:
			// A full nominal step reaches the target.
			z = target
			plan.append(step, core.StepRegular, z)
		case dist < step:
			z = target
			plan.append(dist, core.StepSpecial, z)
		default:
			z += step
			plan.append(step, core.StepRegular, z)
			continue
		}
		if target != end {
			next++
		}
	}
	if n := len(plan.landings); n > 0 {
		plan.landings[n-1] = end
	}

	return plan, nil
}

func (p *StepPlan) append(step float64, kind core.StepKind, landing float64) {
	p.Steps = append(p.Steps, step)
	p.Kinds = append(p.Kinds, kind)
	p.landings = append(p.landings, landing)
}

// mergeSpecials merges, sorts and dedupes special positions, keeping only
// those strictly inside (start, end).
func mergeSpecials(start, end float64, lists ...[]float64) []float64 {
	var all []float64
	for _, l := range lists {
		for _, z := range l {
			if math.IsNaN(z) || z-start <= Tolerance || end-z <= Tolerance {
				continue
			}
			all = append(all, z)
		}
	}
	sort.Float64s(all)

	out := all[:0]
	for _, z := range all {
		if len(out) > 0 && z-out[len(out)-1] <= Tolerance {
			continue
		}
		out = append(out, z)
	}
	return out
}
