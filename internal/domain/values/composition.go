package values

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Composition assigns a weight fraction to each phase of a mixture.
// Fractions are non-negative and sum to one within Tolerance.
type Composition struct {
	labels    []string
	fractions []float64
}

// NewComposition validates fractions against the phase labels. A single
// fraction is broadcast to every phase and normalized before validation.
// Labels may be nil, in which case the phase count is len(fractions).
func NewComposition(labels []string, fractions []float64) (Composition, error) {
	n := phaseCount(labels, fractions)
	fracs, err := broadcast(fractions, n)
	if err != nil {
		return Composition{}, err
	}
	if len(fractions) == 1 && n > 1 {
		fracs, err = normalizeTotal(fracs, n)
		if err != nil {
			return Composition{}, err
		}
	}
	if err := checkFractions(fracs, n); err != nil {
		return Composition{}, err
	}
	return Composition{labels: copyLabels(labels), fractions: fracs}, nil
}

// MustNewComposition creates a Composition or panics (for tests/constants)
func MustNewComposition(labels []string, fractions []float64) Composition {
	c, err := NewComposition(labels, fractions)
	if err != nil {
		panic(err)
	}
	return c
}

// NormalizeRatios builds a Composition from arbitrary non-negative ratios by
// dividing each by their total. A single ratio is broadcast to every phase.
func NormalizeRatios(labels []string, ratios []float64) (Composition, error) {
	n := phaseCount(labels, ratios)
	fracs, err := broadcast(ratios, n)
	if err != nil {
		return Composition{}, err
	}
	fracs, err = normalizeTotal(fracs, n)
	if err != nil {
		return Composition{}, err
	}
	if err := checkFractions(fracs, n); err != nil {
		return Composition{}, err
	}
	return Composition{labels: copyLabels(labels), fractions: fracs}, nil
}

// EvenComposition splits the mixture equally between the given phases.
func EvenComposition(labels []string) (Composition, error) {
	if len(labels) == 0 {
		return Composition{}, NewCompositionError("at least one phase is required", nil, 0)
	}
	return NormalizeRatios(labels, []float64{1})
}

// Len returns the number of phases.
func (c Composition) Len() int {
	return len(c.fractions)
}

// Fraction returns the fraction of phase i.
func (c Composition) Fraction(i int) float64 {
	return c.fractions[i]
}

// Fractions returns a copy of the fraction vector.
func (c Composition) Fractions() []float64 {
	return append([]float64(nil), c.fractions...)
}

// Labels returns a copy of the phase labels (nil when unlabeled).
func (c Composition) Labels() []string {
	return copyLabels(c.labels)
}

// WithLabels attaches phase labels to an unlabeled composition.
func (c Composition) WithLabels(labels []string) (Composition, error) {
	if len(labels) != len(c.fractions) {
		return Composition{}, NewCompositionError(
			fmt.Sprintf("%d labels for %d fractions", len(labels), len(c.fractions)),
			c.fractions, len(labels))
	}
	return Composition{labels: copyLabels(labels), fractions: c.Fractions()}, nil
}

// IsDegenerate reports whether any phase has a zero fraction.
func (c Composition) IsDegenerate() bool {
	for _, f := range c.fractions {
		if f <= Tolerance {
			return true
		}
	}
	return false
}

// MixtureLabel decorates base with the fractions, e.g. "Mixture (0.500, 0.500)".
func (c Composition) MixtureLabel(base string) string {
	parts := make([]string, len(c.fractions))
	for i, f := range c.fractions {
		parts[i] = strconv.FormatFloat(f, 'f', 3, 64)
	}
	return fmt.Sprintf("%s (%s)", base, strings.Join(parts, ", "))
}

// Tag renders the composition for file names, e.g. "f1-0.5_f2-0.5".
func (c Composition) Tag() string {
	parts := make([]string, len(c.fractions))
	for i, f := range c.fractions {
		parts[i] = fmt.Sprintf("f%d-%s", i+1, FormatFraction(f))
	}
	return strings.Join(parts, "_")
}

// String returns the fractions joined by commas.
func (c Composition) String() string {
	parts := make([]string, len(c.fractions))
	for i, f := range c.fractions {
		parts[i] = FormatFraction(f)
	}
	return strings.Join(parts, ", ")
}

// FormatFraction prints a fraction with at most three decimals and no
// trailing zeros ("0.5", "1", "0").
func FormatFraction(f float64) string {
	s := strconv.FormatFloat(f, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-0" {
		return "0"
	}
	return s
}

func phaseCount(labels []string, fractions []float64) int {
	if labels != nil {
		return len(labels)
	}
	return len(fractions)
}

func broadcast(fractions []float64, n int) ([]float64, error) {
	if n == 0 {
		return nil, NewCompositionError("at least one phase is required", fractions, n)
	}
	if len(fractions) == 1 && n > 1 {
		out := make([]float64, n)
		for i := range out {
			out[i] = fractions[0]
		}
		return out, nil
	}
	if len(fractions) != n {
		return nil, NewCompositionError(
			fmt.Sprintf("%d fractions for %d phases", len(fractions), n), fractions, n)
	}
	return append([]float64(nil), fractions...), nil
}

func normalizeTotal(fractions []float64, n int) ([]float64, error) {
	total := 0.0
	for _, f := range fractions {
		if f < 0 || !isFinite(f) {
			return nil, NewCompositionError("fractions must be non-negative and finite", fractions, n)
		}
		total += f
	}
	if total <= 0 {
		return nil, NewCompositionError("fractions must have a positive total", fractions, n)
	}
	out := make([]float64, len(fractions))
	for i, f := range fractions {
		out[i] = f / total
	}
	return out, nil
}

func checkFractions(fractions []float64, n int) error {
	total := 0.0
	for _, f := range fractions {
		if f < 0 || !isFinite(f) {
			return NewCompositionError("fractions must be non-negative and finite", fractions, n)
		}
		total += f
	}
	if math.Abs(total-1) > Tolerance {
		return NewCompositionError(fmt.Sprintf("fractions sum to %g, expected 1", total), fractions, n)
	}
	return nil
}

func copyLabels(labels []string) []string {
	if labels == nil {
		return nil
	}
	return append([]string(nil), labels...)
}
