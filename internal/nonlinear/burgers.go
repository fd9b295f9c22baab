package nonlinear

// wrapFraction is the share of samples copied from each end of the
// waveform to emulate a periodic pulse during resampling.
const wrapFraction = 0.1

// Burgers advances the waveform p, sampled every dt, through distance dz
// of the inviscid Burgers equation by characteristic resampling: sample i
// moves to t_i - epsN*dz*p_i and the shifted waveform is interpolated back
// onto the original grid. p is updated in place. Valid up to the shock
// distance.
func Burgers(p []float64, dt, epsN, dz float64) {
	n := len(p)
	if epsN == 0 || dz == 0 || n < 2 {
		return
	}

	wrap := int(float64(n) * wrapFraction)
	if wrap < 1 {
		wrap = 1
	}
	period := float64(n) * dt
	shift := epsN * dz

	m := n + 2*wrap
	times := make([]float64, m)
	values := make([]float64, m)
	for j := 0; j < m; j++ {
		i := j - wrap
		offset := 0.0
		switch {
		case i < 0:
			i += n
			offset = -period
		case i >= n:
			i -= n
			offset = period
		}
		values[j] = p[i]
		times[j] = float64(i)*dt + offset - shift*p[i]
	}

	// Forward scan: output times increase, so the bracketing window only
	// ever moves right.
	j := 0
	for k := 0; k < n; k++ {
		tk := float64(k) * dt
		for j < m-2 && times[j+1] < tk {
			j++
		}
		switch {
		case tk <= times[0]:
			p[k] = values[0]
		case tk >= times[m-1]:
			p[k] = values[m-1]
		default:
			span := times[j+1] - times[j]
			if span <= 0 {
				p[k] = values[j]
				continue
			}
			w := (tk - times[j]) / span
			p[k] = values[j] + w*(values[j+1]-values[j])
		}
	}
}
