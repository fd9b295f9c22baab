// Package nonlinear advances the temporal waveform at each lateral point
// through nonlinear distortion and power-law attenuation.
package nonlinear

import "math"

// ShockDistance estimates the axial distance at which the waveform p,
// sampled at times t, would steepen into a shock under nonlinearity epsN.
// The slope across the periodic wrap counts. A flat waveform or epsN = 0
// never shocks (+Inf); a non-monotonic time axis returns 0.
func ShockDistance(t, p []float64, epsN float64) float64 {
	n := len(p)
	if epsN == 0 || n < 2 || len(t) != n {
		return math.Inf(1)
	}

	sign := 1.0
	if epsN < 0 {
		sign = -1
	}

	var steepest float64
	for i := 0; i+1 < n; i++ {
		dt := t[i+1] - t[i]
		if !(dt > 0) {
			return 0
		}
		if s := sign * (p[i+1] - p[i]) / dt; s > steepest {
			steepest = s
		}
	}
	// the wrap slope assumes the axis continues with its first spacing
	if s := sign * (p[0] - p[n-1]) / (t[1] - t[0]); s > steepest {
		steepest = s
	}

	if steepest <= 0 {
		return math.Inf(1)
	}
	return 1 / (math.Abs(epsN) * steepest)
}
