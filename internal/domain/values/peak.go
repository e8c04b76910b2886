package values

import "fmt"

// Peak is a single reflection before broadening: a two-theta position in
// degrees and a non-negative relative intensity.
type Peak struct {
	Angle     float64
	Intensity float64
}

// NewPeak creates a Peak with validation
func NewPeak(angle, intensity float64) (Peak, error) {
	if !isFinite(angle) || !isFinite(intensity) {
		return Peak{}, fmt.Errorf("peak must be finite: angle=%g intensity=%g", angle, intensity)
	}
	if intensity < 0 {
		return Peak{}, fmt.Errorf("peak intensity cannot be negative: %g", intensity)
	}
	return Peak{Angle: angle, Intensity: intensity}, nil
}

// MustNewPeak creates a Peak or panics (for tests/constants)
func MustNewPeak(angle, intensity float64) Peak {
	p, err := NewPeak(angle, intensity)
	if err != nil {
		panic(err)
	}
	return p
}
