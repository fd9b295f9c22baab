// Package profile extracts lateral beam profiles from propagated fields
// and keeps the run's profile history.
package profile

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/leapstack-labs/sonoprop/pkg/core"
)

// positionTolerance matches planned positions against requested ones.
const positionTolerance = 1e-12

// Profile is the per-lateral-point temporal maximum and RMS of the field
// at one axial position.
type Profile struct {
	Step     int
	Position float64
	Kind     core.StepKind
	Ny, Nx   int
	Max      []float64
	RMS      []float64
}

// Extract computes the profile of a step event.
func Extract(ev core.StepEvent) *Profile {
	f := ev.Field
	points := f.Points()
	p := &Profile{
		Step:     ev.Step,
		Position: ev.Position,
		Kind:     ev.Kind,
		Ny:       f.Ny,
		Nx:       f.Nx,
		Max:      make([]float64, points),
		RMS:      make([]float64, points),
	}

	trace := make([]float64, f.Nt)
	for i := 0; i < points; i++ {
		trace = f.Trace(i, trace)
		p.RMS[i] = math.Sqrt(floats.Dot(trace, trace) / float64(f.Nt))
		for k, v := range trace {
			trace[k] = math.Abs(v)
		}
		p.Max[i] = floats.Max(trace)
	}
	return p
}

// PeakMax returns the largest temporal maximum over the lateral plane.
func (p *Profile) PeakMax() float64 { return floats.Max(p.Max) }

// PeakRMS returns the largest RMS over the lateral plane.
func (p *Profile) PeakRMS() float64 { return floats.Max(p.RMS) }

// Record returns the persisted summary of the profile.
func (p *Profile) Record(name string) *core.ProfileRecord {
	return &core.ProfileRecord{
		Step:     p.Step,
		Position: p.Position,
		Kind:     p.Kind,
		PeakMax:  p.PeakMax(),
		PeakRMS:  p.PeakRMS(),
		FileName: FileName(name, p.Position),
	}
}

// FileName returns the profile file stem for a simulation name and axial
// position: the name followed by the position in micrometres, zero padded
// to eight digits.
func FileName(name string, position float64) string {
	return fmt.Sprintf("%s_z%08d", name, int64(math.Round(position*1e6)))
}

// History is the ordered list of recorded profiles. Safe for concurrent
// readers while the driver appends.
type History struct {
	mu       sync.RWMutex
	profiles []*Profile
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Append adds a profile.
func (h *History) Append(p *Profile) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.profiles = append(h.profiles, p)
}

// Len returns the number of recorded profiles.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.profiles)
}

// Profiles returns a copy of the recorded profiles in order.
func (h *History) Profiles() []*Profile {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Profile, len(h.profiles))
	copy(out, h.profiles)
	return out
}

// At returns the last profile recorded at position.
func (h *History) At(position float64) (*Profile, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for i := len(h.profiles) - 1; i >= 0; i-- {
		if math.Abs(h.profiles[i].Position-position) <= positionTolerance {
			return h.profiles[i], true
		}
	}
	return nil, false
}
