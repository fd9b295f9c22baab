package operator

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sonoprop/pkg/core"
)

func testGrid() core.Grid {
	return core.Grid{Nt: 16, Nx: 8, Ny: 1, Dt: 5e-8, Dx: 2e-4, Dy: 2e-4, ResolutionZ: 1e-3, SoundSpeed: 1540}
}

func testMaterial() core.Material {
	return core.Material{SoundSpeed: 1540, EpsA: 2e-6, EpsB: 1.1, EpsN: 9e-13, Regular: true}
}

func TestAxis(t *testing.T) {
	tests := []struct {
		name string
		n    int
		d    float64
		want []float64
	}{
		{"single point", 1, 1, []float64{0}},
		{"even", 4, 2 * math.Pi / 4, []float64{0, 1, -2, -1}},
		{"odd", 5, 2 * math.Pi / 5, []float64{0, 1, 2, -2, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Axis(tt.n, tt.d)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-12, "index %d", i)
			}
		})
	}
}

func TestIFFTShift(t *testing.T) {
	assert.Equal(t, []float64{2, 3, 0, 1}, IFFTShift([]float64{0, 1, 2, 3}))
	assert.Equal(t, []float64{2, 3, 4, 0, 1}, IFFTShift([]float64{0, 1, 2, 3, 4}))
}

func TestDispersion(t *testing.T) {
	propagating := Dispersion(3, 0, 0)
	assert.InDelta(t, 3, real(propagating), 1e-12)
	assert.Zero(t, imag(propagating))

	negative := Dispersion(-5, 3, 0)
	assert.InDelta(t, -4, real(negative), 1e-12)

	evanescent := Dispersion(1, 2, 2)
	assert.Zero(t, real(evanescent))
	assert.InDelta(t, -math.Sqrt(7), imag(evanescent), 1e-12)

	// exp(-i dz kz) must not grow for evanescent components.
	assert.Less(t, cmplx.Abs(cmplx.Exp(-1i*complex(0.1, 0)*evanescent)), 1.0)
}

func TestBuild_Shapes(t *testing.T) {
	g := testGrid()
	tests := []struct {
		model       core.DiffractionModel
		nt, ny, nx  int
		reduced     bool
		wantLateral bool
	}{
		{core.NoDiffraction, 16, 1, 1, false, false},
		{core.ExactDiffraction, 16, 1, 8, false, true},
		{core.AngularSpectrumDiffraction, 9, 1, 8, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.model.String(), func(t *testing.T) {
			op, err := Build(core.SimulationConfig{Diffraction: tt.model, Dimensions: 2}, g, testMaterial(), Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.nt, op.Nt)
			assert.Equal(t, tt.ny, op.Ny)
			assert.Equal(t, tt.nx, op.Nx)
			assert.Equal(t, tt.reduced, op.Reduced)
			assert.Equal(t, tt.wantLateral, op.Lateral())
			assert.Len(t, op.Data, tt.nt*tt.ny*tt.nx)
			assert.Len(t, op.Kt, g.Nt)
		})
	}
}

func TestBuild_Unsupported(t *testing.T) {
	for _, model := range []core.DiffractionModel{
		core.PseudoDifferentialDiffraction,
		core.FiniteDifferenceDiffraction,
		core.FiniteDifferenceDiffraction3D,
		core.DiffractionModel(77),
	} {
		_, err := Build(core.SimulationConfig{Diffraction: model}, testGrid(), testMaterial(), Options{})
		assert.ErrorIs(t, err, core.ErrUnsupported, model.String())
	}
}

func TestBuild_InvalidEquidistantStep(t *testing.T) {
	cfg := core.SimulationConfig{Diffraction: core.ExactDiffraction}
	_, err := Build(cfg, testGrid(), testMaterial(), Options{Equidistant: true})
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestBuild_NoDiffractionRetardedIsIdentity(t *testing.T) {
	cfg := core.SimulationConfig{Diffraction: core.NoDiffraction}
	op, err := Build(cfg, testGrid(), testMaterial(), Options{})
	require.NoError(t, err)

	mult, err := op.Multiplier(0.01, core.Forward)
	require.NoError(t, err)
	for i, h := range mult {
		assert.InDelta(t, 1, real(h), 1e-12, "bin %d", i)
		assert.InDelta(t, 0, imag(h), 1e-12, "bin %d", i)
	}
}

func TestBuild_AttenuationOnlyInLinearMedium(t *testing.T) {
	g := testGrid()
	linear := core.SimulationConfig{Diffraction: core.NoDiffraction, Attenuation: true}
	op, err := Build(linear, g, testMaterial(), Options{})
	require.NoError(t, err)
	mult, err := op.Multiplier(0.01, core.Forward)
	require.NoError(t, err)
	assert.Less(t, cmplx.Abs(mult[3]), 1.0)

	nonlinear := linear
	nonlinear.NonLinearity = true
	op, err = Build(nonlinear, g, testMaterial(), Options{})
	require.NoError(t, err)
	mult, err = op.Multiplier(0.01, core.Forward)
	require.NoError(t, err)
	assert.InDelta(t, 1, cmplx.Abs(mult[3]), 1e-12)
}

func TestOperator_ExponentialStaleAndInverse(t *testing.T) {
	cfg := core.SimulationConfig{Diffraction: core.ExactDiffraction}
	g := testGrid()

	op, err := Build(cfg, g, testMaterial(), Options{Equidistant: true, StepSize: 1e-3})
	require.NoError(t, err)
	assert.True(t, op.Exponential)

	_, err = op.Multiplier(2e-3, core.Forward)
	assert.ErrorIs(t, err, core.ErrStaleOperator)

	fwd, err := op.Multiplier(1e-3, core.Forward)
	require.NoError(t, err)
	bwd, err := op.Multiplier(1e-3, core.Backward)
	require.NoError(t, err)
	for i := range fwd {
		assert.InDelta(t, 1, real(fwd[i]*bwd[i]), 1e-9)
		assert.InDelta(t, 0, imag(fwd[i]*bwd[i]), 1e-9)
	}

	raw, err := Build(cfg, g, testMaterial(), Options{})
	require.NoError(t, err)
	rawFwd, err := raw.Multiplier(1e-3, core.Forward)
	require.NoError(t, err)
	for i := range fwd {
		assert.InDelta(t, 0, cmplx.Abs(fwd[i]-rawFwd[i]), 1e-12)
	}
}

func TestOperator_ExponentialForwardIsShared(t *testing.T) {
	cfg := core.SimulationConfig{Diffraction: core.ExactDiffraction}
	op, err := Build(cfg, testGrid(), testMaterial(), Options{Equidistant: true, StepSize: 1e-3})
	require.NoError(t, err)

	fwd, err := op.Multiplier(1e-3, core.Forward)
	require.NoError(t, err)
	require.Len(t, fwd, len(op.Data))
	assert.Same(t, &op.Data[0], &fwd[0])

	allocs := testing.AllocsPerRun(10, func() {
		_, _ = op.Multiplier(1e-3, core.Forward)
	})
	assert.Zero(t, allocs)

	bwd, err := op.Multiplier(1e-3, core.Backward)
	require.NoError(t, err)
	assert.NotSame(t, &op.Data[0], &bwd[0])
}

func TestOperator_ReducedMatchesExact(t *testing.T) {
	g := testGrid()
	m := testMaterial()

	exact, err := Build(core.SimulationConfig{Diffraction: core.ExactDiffraction, Attenuation: true}, g, m, Options{})
	require.NoError(t, err)
	reduced, err := Build(core.SimulationConfig{Diffraction: core.AngularSpectrumDiffraction, Attenuation: true}, g, m, Options{})
	require.NoError(t, err)

	want, err := exact.Multiplier(2e-3, core.Forward)
	require.NoError(t, err)
	got, err := reduced.Multiplier(2e-3, core.Forward)
	require.NoError(t, err)

	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, 0, cmplx.Abs(want[i]-got[i]), 1e-9, "bin %d", i)
	}
}

func TestOperator_MultiplierConjugateSymmetric(t *testing.T) {
	g := testGrid()
	op, err := Build(core.SimulationConfig{Diffraction: core.ExactDiffraction, Attenuation: true}, g, testMaterial(), Options{})
	require.NoError(t, err)

	h, err := op.Multiplier(1e-3, core.Forward)
	require.NoError(t, err)
	for tt := 1; tt < g.Nt/2; tt++ {
		for x := 1; x < g.Nx; x++ {
			a := h[tt*g.Nx+x]
			b := h[(g.Nt-tt)*g.Nx+(g.Nx-x)]
			assert.InDelta(t, 0, cmplx.Abs(a-cmplx.Conj(b)), 1e-12)
		}
	}
}

func TestLossKernel(t *testing.T) {
	nt, dt := 32, 5e-8
	kernel := LossKernel(nt, dt, 2e-6, 1.1)
	omega := Axis(nt, dt)

	require.Len(t, kernel, nt)
	assert.Zero(t, kernel[0])
	for i, w := range omega {
		assert.InDelta(t, 2e-6*math.Pow(math.Abs(w), 1.1), real(kernel[i]), 1e-9)
	}
	for k := 1; k < nt/2; k++ {
		assert.InDelta(t, -imag(kernel[k]), imag(kernel[nt-k]), 1e-9, "bin %d", k)
	}

	lossless := LossKernel(nt, dt, 0, 1.1)
	for _, v := range lossless {
		assert.Zero(t, v)
	}
}
