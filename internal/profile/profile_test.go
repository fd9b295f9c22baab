package profile

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/leapstack-labs/sonoprop/internal/testutil"
	"github.com/leapstack-labs/sonoprop/pkg/core"
)

func sineField(nt, nx int) *core.WaveField {
	f := core.NewWaveField(nt, 1, nx)
	for t := 0; t < nt; t++ {
		for x := 0; x < nx; x++ {
			f.Set(t, 0, x, float64(x+1)*math.Sin(2*math.Pi*float64(t)/float64(nt)))
		}
	}
	return f
}

func TestExtract(t *testing.T) {
	f := sineField(64, 3)
	p := Extract(core.StepEvent{Step: 4, Position: 0.0125, Kind: core.StepSpecial, Stored: true, Field: f})

	assert.Equal(t, 4, p.Step)
	assert.Equal(t, 0.0125, p.Position)
	require.Len(t, p.RMS, 3)
	for x := 0; x < 3; x++ {
		amp := float64(x + 1)
		assert.InDelta(t, amp/math.Sqrt2, p.RMS[x], 1e-12)
		assert.InDelta(t, amp, p.Max[x], 1e-12)
	}
	assert.InDelta(t, 3, p.PeakMax(), 1e-12)
	assert.InDelta(t, 3/math.Sqrt2, p.PeakRMS(), 1e-12)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name     string
		position float64
		want     string
	}{
		{"beam", 0, "beam_z00000000"},
		{"beam", 0.0125, "beam_z00012500"},
		{"run-1", 0.1, "run-1_z00100000"},
		{"deep", 12.3456789, "deep_z12345679"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.name, tt.position))
		})
	}
}

type memorySink struct {
	written []*Profile
	err     error
}

func (m *memorySink) Write(_ context.Context, _ string, p *Profile) error {
	if m.err != nil {
		return m.err
	}
	m.written = append(m.written, p)
	return nil
}

func TestRecorder_Policy(t *testing.T) {
	events := []core.StepEvent{
		{Step: 0, Position: 0.001, Field: sineField(8, 2)},
		{Step: 1, Position: 0.0015, Kind: core.StepSpecial, Stored: true, Field: sineField(8, 2)},
		{Step: 2, Position: 0.0025, Field: sineField(8, 2)},
	}

	tests := []struct {
		policy core.HistoryPolicy
		want   int
	}{
		{core.HistoryNone, 0},
		{core.HistoryStore, 1},
		{core.HistoryEvery, 3},
		{"", 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			sink := &memorySink{}
			r := NewRecorder(RecorderConfig{Name: "beam", Policy: tt.policy, Sinks: []Sink{sink}, Logger: testutil.NewTestLogger(t)})
			for _, ev := range events {
				require.NoError(t, r.Export(context.Background(), ev))
			}
			assert.Equal(t, tt.want, r.History().Len())
			assert.Len(t, sink.written, tt.want)
		})
	}
}

func TestRecorder_SinkFailure(t *testing.T) {
	boom := errors.New("disk full")
	r := NewRecorder(RecorderConfig{Name: "beam", Policy: core.HistoryEvery, Sinks: []Sink{&memorySink{err: boom}}})

	err := r.Export(context.Background(), core.StepEvent{Position: 0.002, Field: sineField(8, 1)})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "beam_z00002000")
}

func TestRecorder_UnknownPolicy(t *testing.T) {
	r := NewRecorder(RecorderConfig{Policy: "sometimes"})
	err := r.Export(context.Background(), core.StepEvent{Field: sineField(4, 1)})
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestHistory_At(t *testing.T) {
	h := NewHistory()
	h.Append(&Profile{Step: 0, Position: 0.01})
	h.Append(&Profile{Step: 1, Position: 0.02})
	h.Append(&Profile{Step: 2, Position: 0.02})

	p, ok := h.At(0.02)
	require.True(t, ok)
	assert.Equal(t, 2, p.Step)

	_, ok = h.At(0.03)
	assert.False(t, ok)
	assert.Len(t, h.Profiles(), 3)
}

func TestWorkbookSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profiles")
	sink := &WorkbookSink{Dir: dir, Dx: 1e-3, Dy: 1e-3}
	p := Extract(core.StepEvent{Step: 3, Position: 0.05, Field: sineField(16, 4)})

	require.NoError(t, sink.Write(context.Background(), "beam", p))

	path := sink.Path("beam", p)
	assert.Equal(t, filepath.Join(dir, "beam_z00050000.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"x", "y", "max", "rms"}, rows[0])
	assert.Equal(t, "-0.002", rows[1][0])
}
