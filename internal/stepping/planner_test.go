package stepping

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sonoprop/pkg/core"
)

func TestPlan_UniformSteps(t *testing.T) {
	tests := []struct {
		name             string
		start, end, step float64
	}{
		{"exact multiple", 0, 0.01, 0.001},
		{"remainder", 0, 0.0105, 0.001},
		{"offset start", 0.002, 0.05, 0.0007},
		{"single short step", 0, 0.0003, 0.001},
		{"tiny grid step", 0.01, 0.02, 1e-5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Plan(tt.start, tt.end, tt.step, nil, nil)
			require.NoError(t, err)
			require.Equal(t, len(plan.Steps), len(plan.Kinds))
			require.NotZero(t, plan.Len())

			assert.InDelta(t, tt.end-tt.start, plan.Total(), 1e-14)
			for i, s := range plan.Steps[:plan.Len()-1] {
				assert.Equal(t, tt.step, s, "step %d", i)
				assert.Equal(t, core.StepRegular, plan.Kinds[i], "step %d", i)
			}
			last := plan.Steps[plan.Len()-1]
			assert.LessOrEqual(t, last, tt.step)
			assert.Greater(t, last, Tolerance)
		})
	}
}

func TestPlan_SpecialLanding(t *testing.T) {
	plan, err := Plan(0, 0.01, 0.001, []float64{0.00425}, nil)
	require.NoError(t, err)

	assert.InDelta(t, 0.01, plan.Total(), 1e-14)

	landings := 0
	for i, z := range plan.Positions() {
		if math.Abs(z-0.00425) <= 1e-14 {
			landings++
			assert.Equal(t, core.StepSpecial, plan.Kinds[i])
		}
	}
	assert.Equal(t, 1, landings)
	for _, s := range plan.Steps {
		assert.LessOrEqual(t, s, 0.001)
	}
}

func TestPlan_SpecialsMergedAndFiltered(t *testing.T) {
	store := []float64{0.003, 0.0055, 0.02, -1}
	screens := []float64{0.0055, 0.003, 0}

	plan, err := Plan(0, 0.01, 0.002, store, screens)
	require.NoError(t, err)

	assert.InDelta(t, 0.01, plan.Total(), 1e-14)
	positions := plan.Positions()
	assert.Contains(t, roundAll(positions), 0.003)
	assert.Contains(t, roundAll(positions), 0.0055)
	assert.Equal(t, 0.01, positions[len(positions)-1])
}

func TestPlan_SpecialOnStepBoundary(t *testing.T) {
	// A special one nominal step away is a regular step, not a special one.
	plan, err := Plan(0, 0.004, 0.001, []float64{0.001, 0.002}, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, plan.Len())
	for _, k := range plan.Kinds {
		assert.Equal(t, core.StepRegular, k)
	}
}

func TestPlan_EmptyInterval(t *testing.T) {
	plan, err := Plan(0.01, 0.01, 0.001, []float64{0.01}, nil)
	require.NoError(t, err)
	assert.Zero(t, plan.Len())
	assert.Empty(t, plan.Positions())
}

func TestPlan_InvalidInput(t *testing.T) {
	tests := []struct {
		name             string
		start, end, step float64
	}{
		{"zero step", 0, 1, 0},
		{"negative step", 0, 1, -0.1},
		{"nan step", 0, 1, math.NaN()},
		{"inf step", 0, 1, math.Inf(1)},
		{"nan start", math.NaN(), 1, 0.1},
		{"inf end", 0, math.Inf(1), 0.1},
		{"reversed", 1, 0, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(tt.start, tt.end, tt.step, nil, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidConfig)
		})
	}
}

func roundAll(zs []float64) []float64 {
	out := make([]float64, len(zs))
	for i, z := range zs {
		out[i] = math.Round(z*1e9) / 1e9
	}
	return out
}
