// Package entities contains domain entities for the xrdsim domain model.
// These are pure domain types with NO infrastructure dependencies.
package entities

import (
	"fmt"
	"math"

	"github.com/reglet-dev/xrdsim/internal/domain/values"
)

// Profile is one intensity curve sampled on a grid.
//
// Invariants Enforced:
// - len(intensities) == grid.Len()
// - intensities are finite
type Profile struct {
	label       string
	grid        values.Grid
	intensities []float64
}

// NewProfile creates a profile, copying intensities.
func NewProfile(label string, grid values.Grid, intensities []float64) (Profile, error) {
	if grid.IsZero() {
		return Profile{}, fmt.Errorf("profile %q has an empty grid", label)
	}
	if len(intensities) != grid.Len() {
		return Profile{}, fmt.Errorf("profile %q has %d intensities for %d grid points", label, len(intensities), grid.Len())
	}
	for i, v := range intensities {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Profile{}, fmt.Errorf("profile %q has a non-finite intensity at index %d", label, i)
		}
	}
	return Profile{
		label:       label,
		grid:        grid,
		intensities: append([]float64(nil), intensities...),
	}, nil
}

// MustNewProfile creates a Profile or panics (for tests/constants)
func MustNewProfile(label string, grid values.Grid, intensities []float64) Profile {
	p, err := NewProfile(label, grid, intensities)
	if err != nil {
		panic(err)
	}
	return p
}

// Label returns the series label.
func (p Profile) Label() string {
	return p.label
}

// Grid returns the sampling grid.
func (p Profile) Grid() values.Grid {
	return p.grid
}

// Axis returns a copy of the two-theta values.
func (p Profile) Axis() []float64 {
	return p.grid.Values()
}

// Intensities returns a copy of the intensity values.
func (p Profile) Intensities() []float64 {
	return append([]float64(nil), p.intensities...)
}

// Len returns the number of points.
func (p Profile) Len() int {
	return len(p.intensities)
}

// At returns the intensity at index i.
func (p Profile) At(i int) float64 {
	return p.intensities[i]
}

// IsZero returns true if this is the zero value
func (p Profile) IsZero() bool {
	return p.grid.IsZero()
}

// Peak returns the angle and intensity of the strongest point.
func (p Profile) Peak() (angle, intensity float64) {
	best := -1
	for i, v := range p.intensities {
		if best < 0 || v > p.intensities[best] {
			best = i
		}
	}
	if best < 0 {
		return 0, 0
	}
	return p.grid.At(best), p.intensities[best]
}

// WithLabel returns a copy with a different label.
func (p Profile) WithLabel(label string) Profile {
	p.label = label
	return p
}
