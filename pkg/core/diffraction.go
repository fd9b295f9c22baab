package core

import (
	"fmt"
	"strings"
)

// DiffractionModel selects the representation of lateral spreading used by
// the propagation operator.
type DiffractionModel int

// Diffraction models.
const (
	NoDiffraction DiffractionModel = iota
	ExactDiffraction
	AngularSpectrumDiffraction
	PseudoDifferentialDiffraction
	FiniteDifferenceDiffraction
	FiniteDifferenceDiffraction3D
)

var diffractionNames = map[DiffractionModel]string{
	NoDiffraction:                 "none",
	ExactDiffraction:              "exact",
	AngularSpectrumDiffraction:    "angular-spectrum",
	PseudoDifferentialDiffraction: "pseudo-differential",
	FiniteDifferenceDiffraction:   "finite-difference",
	FiniteDifferenceDiffraction3D: "finite-difference-3d",
}

// DiffractionModels returns every model name in declaration order.
func DiffractionModels() []string {
	names := make([]string, 0, len(diffractionNames))
	for m := NoDiffraction; m <= FiniteDifferenceDiffraction3D; m++ {
		names = append(names, diffractionNames[m])
	}
	return names
}

// String returns the configuration name of the model.
func (m DiffractionModel) String() string {
	if name, ok := diffractionNames[m]; ok {
		return name
	}
	return fmt.Sprintf("DiffractionModel(%d)", int(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m DiffractionModel) MarshalText() ([]byte, error) {
	if _, ok := diffractionNames[m]; !ok {
		return nil, fmt.Errorf("%w: unknown diffraction model %d", ErrInvalidConfig, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *DiffractionModel) UnmarshalText(text []byte) error {
	parsed, err := ParseDiffractionModel(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseDiffractionModel resolves a configuration name (case-insensitive,
// "_" and "-" interchangeable) to a model.
func ParseDiffractionModel(s string) (DiffractionModel, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for m, name := range diffractionNames {
		if name == key {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown diffraction model %q (available: %s)",
		ErrInvalidConfig, s, strings.Join(DiffractionModels(), ", "))
}

// Implemented reports whether the propagation core can run the model.
func (m DiffractionModel) Implemented() bool {
	switch m {
	case NoDiffraction, ExactDiffraction, AngularSpectrumDiffraction:
		return true
	case PseudoDifferentialDiffraction, FiniteDifferenceDiffraction, FiniteDifferenceDiffraction3D:
		return false
	default:
		return false
	}
}

// Lateral reports whether the model transforms the lateral axes.
func (m DiffractionModel) Lateral() bool {
	switch m {
	case ExactDiffraction, AngularSpectrumDiffraction:
		return true
	default:
		return false
	}
}
