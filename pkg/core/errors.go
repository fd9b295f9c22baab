package core

import "errors"

// Sentinel errors. Callers match them with errors.Is; producers wrap them
// with fmt.Errorf("%w: detail", ErrX) to identify the offending setting.
var (
	// ErrInvalidConfig marks a configuration that can never run: bad
	// dimensionality, non-positive step size, missing start/stop and so on.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupported marks a configuration the core recognises but does not
	// implement (pseudo-differential and finite-difference diffraction,
	// absorbing boundary layers, irregular materials in the nonlinear split,
	// annular transducers in 3-D).
	ErrUnsupported = errors.New("not supported")

	// ErrStaleOperator is returned when an exponential operator built for one
	// step size is applied to a step of a different size.
	ErrStaleOperator = errors.New("operator built for a different step size")
)
