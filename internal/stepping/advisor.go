package stepping

import "github.com/leapstack-labs/sonoprop/pkg/core"

// TransitionThreshold is the largest fraction of step-kind transitions, for
// a diffraction factor of one, at which caching the operator still pays
// off. Empirical; the threshold for a model is TransitionThreshold/factor.
const TransitionThreshold = 0.5

// Advice is the per-run operator caching decision.
type Advice struct {
	// Recalculate ties operator rebuilds to step-kind transitions.
	Recalculate bool
	// Equidistant selects the exponential operator form for the first step.
	Equidistant bool
	// Transitions is the number of step-kind changes across the plan.
	Transitions int
}

// diffractionFactor returns the caching cost factor of a model, or 0 when
// the model cannot cache its operator at all.
func diffractionFactor(model core.DiffractionModel) int {
	switch model {
	case core.ExactDiffraction:
		return 1
	case core.PseudoDifferentialDiffraction:
		return 3
	case core.NoDiffraction, core.AngularSpectrumDiffraction,
		core.FiniteDifferenceDiffraction, core.FiniteDifferenceDiffraction3D:
		return 0
	default:
		return 0
	}
}

// Advise decides once per run whether operator recalculation follows the
// step-kind pattern and whether the first step runs equidistant.
func Advise(model core.DiffractionModel, kinds []core.StepKind) Advice {
	transitions := CountTransitions(kinds)
	advice := Advice{Transitions: transitions}

	factor := diffractionFactor(model)
	if factor == 0 || len(kinds) == 0 {
		return advice
	}

	if float64(transitions)/float64(len(kinds)) < TransitionThreshold/float64(factor) {
		advice.Recalculate = true
		advice.Equidistant = kinds[0] == core.StepRegular
	}
	return advice
}

// CountTransitions counts consecutive steps whose kinds differ.
func CountTransitions(kinds []core.StepKind) int {
	n := 0
	for i := 1; i < len(kinds); i++ {
		if kinds[i] != kinds[i-1] {
			n++
		}
	}
	return n
}

// RebuildAt reports whether the operator must be rebuilt before step i.
// Only meaningful when the advice has Recalculate set.
func RebuildAt(kinds []core.StepKind, i int) bool {
	return i > 0 && i < len(kinds) && kinds[i] != kinds[i-1]
}
