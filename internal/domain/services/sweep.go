package services

import (
	"fmt"
	"iter"
	"math"

	"github.com/reglet-dev/xrdsim/internal/domain/values"
)

// stepSlack is how far 1/step may sit from an integer and still count as
// dividing one evenly.
const stepSlack = 1e-9

// maxSweepUnits bounds 1/step so unit arithmetic stays within int.
const maxSweepUnits = 1 << 30

// Sweep enumerates every composition of nPhases whose fractions are
// multiples of step and sum to one. The sequence is lazy and can be ranged
// over any number of times; each pass starts from the beginning.
//
// Order is lexicographic ascending over the first nPhases-1 fractions, the
// last one taking the remainder. Compositions with zero fractions are
// included.
func Sweep(nPhases int, step float64) (iter.Seq[values.Composition], error) {
	units, err := sweepUnits(nPhases, step)
	if err != nil {
		return nil, err
	}

	return func(yield func(values.Composition) bool) {
		current := make([]int, nPhases)
		var walk func(idx, remaining int) bool
		walk = func(idx, remaining int) bool {
			if idx == nPhases-1 {
				current[idx] = remaining
				fractions := make([]float64, nPhases)
				for i, u := range current {
					fractions[i] = float64(u) / float64(units)
				}
				return yield(values.MustNewComposition(nil, fractions))
			}
			for u := 0; u <= remaining; u++ {
				current[idx] = u
				if !walk(idx+1, remaining-u) {
					return false
				}
			}
			return true
		}
		walk(0, units)
	}, nil
}

// SweepCount returns how many compositions Sweep yields without enumerating
// them. It fails with InvalidStepError when the count does not fit in an int.
func SweepCount(nPhases int, step float64) (int, error) {
	units, err := sweepUnits(nPhases, step)
	if err != nil {
		return 0, err
	}
	// C(units + n - 1, n - 1); each partial product is itself a binomial
	// coefficient, so the division is exact.
	k := nPhases - 1
	count := 1
	for i := 1; i <= k; i++ {
		if count > math.MaxInt/(units+i) {
			return 0, values.NewInvalidStepError(step,
				fmt.Sprintf("sweep over %d phases has too many compositions to count", nPhases))
		}
		count = count * (units + i) / i
	}
	return count, nil
}

func sweepUnits(nPhases int, step float64) (int, error) {
	if nPhases < 1 {
		return 0, values.NewCompositionError("at least one phase is required", nil, nPhases)
	}
	if math.IsNaN(step) || step <= 0 || step > 1 {
		return 0, values.NewInvalidStepError(step, "step must lie in (0, 1]")
	}
	inv := 1 / step
	units := math.Round(inv)
	if math.Abs(inv-units) > stepSlack*math.Max(1, inv) {
		return 0, values.NewInvalidStepError(step, "step must divide 1 evenly (e.g. 0.1, 0.05)")
	}
	if units > maxSweepUnits {
		return 0, values.NewInvalidStepError(step, "step is too small")
	}
	return int(units), nil
}
