// Package window tapers the lateral edges of a wave field with a Tukey
// window to suppress wrap-around from the periodic lateral transforms.
package window

import (
	"fmt"
	"math"

	"github.com/leapstack-labs/sonoprop/pkg/core"
)

type taperKind int

const (
	taperNone taperKind = iota
	taperUniform
	taperPerAxis
)

// Taper is the Tukey taper ratio, either shared by both lateral axes or
// set per axis. The zero value is None.
type Taper struct {
	kind   taperKind
	ax, ay float64
}

// None disables windowing.
func None() Taper { return Taper{} }

// Uniform applies ratio a on every active lateral axis.
func Uniform(a float64) Taper { return Taper{kind: taperUniform, ax: a, ay: a} }

// PerAxis applies ratio ax along x and ay along y.
func PerAxis(ax, ay float64) Taper { return Taper{kind: taperPerAxis, ax: ax, ay: ay} }

// ParseTaper converts a configuration value (empty, one ratio or one ratio
// per axis) into a Taper.
func ParseTaper(values []float64) (Taper, error) {
	switch len(values) {
	case 0:
		return None(), nil
	case 1:
		return Uniform(values[0]), nil
	case 2:
		return PerAxis(values[0], values[1]), nil
	default:
		return Taper{}, fmt.Errorf("%w: taper takes one ratio or one per lateral axis (got %d values)", core.ErrInvalidConfig, len(values))
	}
}

// IsNone reports whether the taper disables windowing.
func (t Taper) IsNone() bool { return t.kind == taperNone }

// Ratios returns the x and y taper ratios.
func (t Taper) Ratios() (ax, ay float64) { return t.ax, t.ay }

// Values returns the configuration form accepted by ParseTaper.
func (t Taper) Values() []float64 {
	switch t.kind {
	case taperUniform:
		return []float64{t.ax}
	case taperPerAxis:
		return []float64{t.ax, t.ay}
	default:
		return nil
	}
}

func (t Taper) String() string {
	switch t.kind {
	case taperUniform:
		return fmt.Sprintf("tukey(%g)", t.ax)
	case taperPerAxis:
		return fmt.Sprintf("tukey(x=%g, y=%g)", t.ax, t.ay)
	default:
		return "none"
	}
}

// Validate checks every ratio lies in [0, 1].
func (t Taper) Validate() error {
	if t.kind == taperNone {
		return nil
	}
	for _, a := range []float64{t.ax, t.ay} {
		if math.IsNaN(a) || a < 0 || a > 1 {
			return fmt.Errorf("%w: taper ratio %g outside [0, 1]", core.ErrInvalidConfig, a)
		}
	}
	return nil
}

// Tukey returns the n-point Tukey window with taper ratio a: a cosine
// ramp over a/2 of the length at each end and ones in between. a = 0 is
// rectangular and a = 1 is a Hann window.
func Tukey(n int, a float64) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	if n < 2 || a <= 0 {
		return w
	}

	edge := a * float64(n-1) / 2
	for i := range w {
		fi := float64(i)
		switch {
		case fi < edge:
			w[i] = 0.5 * (1 + math.Cos(math.Pi*(fi/edge-1)))
		case fi > float64(n-1)-edge:
			w[i] = 0.5 * (1 + math.Cos(math.Pi*((float64(n-1)-fi)/edge-1)))
		}
	}
	return w
}
