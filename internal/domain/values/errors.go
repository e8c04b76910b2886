package values

import (
	"fmt"
	"strings"
)

// InvalidRangeError indicates a sampling range, step, or kernel width that cannot
// produce a grid or profile.
type InvalidRangeError struct {
	Reason string
	Min    float64
	Max    float64
	Step   float64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range [%g, %g] step %g: %s", e.Min, e.Max, e.Step, e.Reason)
}

// NewInvalidRangeError creates a new range error.
func NewInvalidRangeError(minimum, maximum, step float64, reason string) *InvalidRangeError {
	return &InvalidRangeError{
		Min:    minimum,
		Max:    maximum,
		Step:   step,
		Reason: reason,
	}
}

// InvalidStepError indicates a fraction sweep step outside (0, 1] or not dividing 1.
type InvalidStepError struct {
	Reason string
	Step   float64
}

func (e *InvalidStepError) Error() string {
	return fmt.Sprintf("invalid fraction step %g: %s", e.Step, e.Reason)
}

// NewInvalidStepError creates a new sweep step error.
func NewInvalidStepError(step float64, reason string) *InvalidStepError {
	return &InvalidStepError{Step: step, Reason: reason}
}

// GridMismatchError indicates profiles computed on different grids were combined.
type GridMismatchError struct {
	Label    string
	Expected Grid
	Actual   Grid
}

func (e *GridMismatchError) Error() string {
	return fmt.Sprintf("grid mismatch for %q: expected %s, got %s", e.Label, e.Expected, e.Actual)
}

// NewGridMismatchError creates a new grid mismatch error.
func NewGridMismatchError(label string, expected, actual Grid) *GridMismatchError {
	return &GridMismatchError{
		Label:    label,
		Expected: expected,
		Actual:   actual,
	}
}

// CompositionError indicates fractions that are negative, do not sum to one,
// or do not match the number of phases.
type CompositionError struct {
	Reason    string
	Fractions []float64
	Phases    int
}

func (e *CompositionError) Error() string {
	if len(e.Fractions) == 0 {
		return fmt.Sprintf("invalid composition: %s", e.Reason)
	}
	parts := make([]string, len(e.Fractions))
	for i, f := range e.Fractions {
		parts[i] = fmt.Sprintf("%g", f)
	}
	return fmt.Sprintf("invalid composition [%s] for %d phases: %s", strings.Join(parts, ", "), e.Phases, e.Reason)
}

// NewCompositionError creates a new composition error.
func NewCompositionError(reason string, fractions []float64, phases int) *CompositionError {
	return &CompositionError{
		Reason:    reason,
		Fractions: append([]float64(nil), fractions...),
		Phases:    phases,
	}
}
