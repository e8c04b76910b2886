// Package values contains domain value objects that encapsulate
// primitive types with validation and such.
package values

import (
	"fmt"
	"math"
)

// Tolerance is the absolute tolerance used for grid alignment and
// fraction-sum checks.
const Tolerance = 1e-6

// gridSlack absorbs floating-point error when counting grid points so that an
// exact multiple of step still lands on max.
const gridSlack = 1e-9

// Grid is the ordered two-theta sampling axis shared by every profile of one
// computation. It is immutable once built.
type Grid struct {
	values []float64
	step   float64
}

// BuildGrid samples [minimum, maximum] at a fixed step.
// The last point never overshoots maximum.
func BuildGrid(minimum, maximum, step float64) (Grid, error) {
	if !isFinite(minimum) || !isFinite(maximum) || !isFinite(step) {
		return Grid{}, NewInvalidRangeError(minimum, maximum, step, "bounds and step must be finite")
	}
	if minimum >= maximum {
		return Grid{}, NewInvalidRangeError(minimum, maximum, step, "min must be less than max")
	}
	if step <= 0 {
		return Grid{}, NewInvalidRangeError(minimum, maximum, step, "step must be positive")
	}

	n := int(math.Floor((maximum-minimum)/step+gridSlack)) + 1
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = minimum + float64(i)*step
	}
	// Guard against accumulated rounding pushing the tail past max.
	if vals[n-1] > maximum {
		vals[n-1] = maximum
	}
	return Grid{values: vals, step: step}, nil
}

// MustBuildGrid builds a grid or panics (for tests/constants)
func MustBuildGrid(minimum, maximum, step float64) Grid {
	g, err := BuildGrid(minimum, maximum, step)
	if err != nil {
		panic(err)
	}
	return g
}

// GridFromAxis reconstructs a grid from stored axis values. The axis must be
// strictly increasing with a uniform step.
func GridFromAxis(axis []float64) (Grid, error) {
	if len(axis) == 0 {
		return Grid{}, NewInvalidRangeError(0, 0, 0, "axis is empty")
	}
	for _, v := range axis {
		if !isFinite(v) {
			return Grid{}, NewInvalidRangeError(axis[0], axis[len(axis)-1], 0, "axis contains non-finite values")
		}
	}

	vals := append([]float64(nil), axis...)
	if len(vals) == 1 {
		return Grid{values: vals}, nil
	}

	first, last := vals[0], vals[len(vals)-1]
	step := (last - first) / float64(len(vals)-1)
	if step <= 0 {
		return Grid{}, NewInvalidRangeError(first, last, step, "axis must be strictly increasing")
	}
	// Stored values may carry formatting error; accept drift relative to step.
	slack := math.Max(Tolerance, step*1e-6)
	for i := 1; i < len(vals); i++ {
		if vals[i] <= vals[i-1] {
			return Grid{}, NewInvalidRangeError(first, last, step, fmt.Sprintf("axis not strictly increasing at index %d", i))
		}
		if math.Abs(vals[i]-vals[i-1]-step) > slack {
			return Grid{}, NewInvalidRangeError(first, last, step, fmt.Sprintf("axis step not uniform at index %d", i))
		}
	}
	return Grid{values: vals, step: step}, nil
}

// Len returns the number of sample points.
func (g Grid) Len() int {
	return len(g.values)
}

// Step returns the sampling step (0 for a single-point axis).
func (g Grid) Step() float64 {
	return g.step
}

// Min returns the first angle, or 0 for the zero grid.
func (g Grid) Min() float64 {
	if len(g.values) == 0 {
		return 0
	}
	return g.values[0]
}

// Max returns the last angle, or 0 for the zero grid.
func (g Grid) Max() float64 {
	if len(g.values) == 0 {
		return 0
	}
	return g.values[len(g.values)-1]
}

// At returns the angle at index i.
func (g Grid) At(i int) float64 {
	return g.values[i]
}

// Values returns a copy of the axis.
func (g Grid) Values() []float64 {
	return append([]float64(nil), g.values...)
}

// IsZero returns true if this is the zero value
func (g Grid) IsZero() bool {
	return len(g.values) == 0
}

// Equal reports whether two grids are aligned: same first value, step, and
// length within Tolerance.
func (g Grid) Equal(other Grid) bool {
	if g.Len() != other.Len() {
		return false
	}
	if g.IsZero() {
		return true
	}
	return math.Abs(g.Min()-other.Min()) <= Tolerance &&
		math.Abs(g.step-other.step) <= Tolerance
}

// String returns a compact description of the grid.
func (g Grid) String() string {
	if g.IsZero() {
		return "grid(empty)"
	}
	return fmt.Sprintf("grid[%g..%g step %g, n=%d]", g.Min(), g.Max(), g.step, g.Len())
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
