// Package services contains domain services: the numerical core that turns
// peaks into profiles and profiles into mixtures.
package services

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/reglet-dev/xrdsim/internal/domain/values"
)

// Thompson-Cox-Hastings coefficients for the pseudo-Voigt approximation of a
// Voigt profile.
const (
	tchA = 2.69269
	tchB = 2.42843
	tchC = 4.47163
	tchD = 0.07842

	etaA = 1.36603
	etaB = 0.47719
	etaC = 0.11116
)

// KernelVersion identifies the broadening implementation. Stored profiles
// computed by a kernel with a different major or minor version are stale.
const KernelVersion = "1.0.0"

// defaultWidthFactor sets the Gaussian sigma and Lorentzian half-width of the
// default kernel in units of the grid step.
const defaultWidthFactor = 2.0

// WidthParams parameterizes the pseudo-Voigt kernel. The width is constant
// across the grid.
type WidthParams struct {
	// FWHM is the full width at half maximum in degrees two-theta.
	FWHM float64
	// Eta is the Lorentzian fraction in [0, 1].
	Eta float64
}

// DefaultWidthParams derives a kernel equivalent to a Voigt profile with
// Gaussian sigma and Lorentzian half-width both equal to twice the step.
func DefaultWidthParams(step float64) WidthParams {
	sigma := defaultWidthFactor * step
	gamma := defaultWidthFactor * step
	return PseudoVoigtFromVoigt(sigma, gamma)
}

// PseudoVoigtFromVoigt converts Voigt parameters (Gaussian sigma, Lorentzian
// half-width gamma) to pseudo-Voigt FWHM and mixing fraction.
func PseudoVoigtFromVoigt(sigma, gamma float64) WidthParams {
	fG := 2 * sigma * math.Sqrt(2*math.Ln2)
	fL := 2 * gamma

	f := math.Pow(
		math.Pow(fG, 5)+
			tchA*math.Pow(fG, 4)*fL+
			tchB*math.Pow(fG, 3)*math.Pow(fL, 2)+
			tchC*math.Pow(fG, 2)*math.Pow(fL, 3)+
			tchD*fG*math.Pow(fL, 4)+
			math.Pow(fL, 5),
		0.2)
	if f == 0 {
		return WidthParams{}
	}

	r := fL / f
	eta := etaA*r - etaB*r*r + etaC*r*r*r
	return WidthParams{FWHM: f, Eta: math.Min(math.Max(eta, 0), 1)}
}

// Validate checks the kernel parameters.
func (w WidthParams) Validate() error {
	if !(w.FWHM > 0) || math.IsInf(w.FWHM, 0) {
		return values.NewInvalidRangeError(0, 0, w.FWHM, "kernel FWHM must be positive")
	}
	if !(w.Eta >= 0 && w.Eta <= 1) {
		return values.NewInvalidRangeError(0, 1, w.Eta, fmt.Sprintf("kernel eta %g must lie in [0, 1]", w.Eta))
	}
	return nil
}

// Broadener spreads discrete peaks into a continuous curve.
type Broadener struct {
	width WidthParams

	// precomputed kernel constants
	gaussNorm  float64
	gaussScale float64
	lorNorm    float64
	lorScale   float64
}

// NewBroadener creates a broadener with a fixed kernel.
func NewBroadener(width WidthParams) (*Broadener, error) {
	if err := width.Validate(); err != nil {
		return nil, err
	}
	f := width.FWHM
	return &Broadener{
		width:      width,
		gaussNorm:  (2 / f) * math.Sqrt(math.Ln2/math.Pi),
		gaussScale: 4 * math.Ln2 / (f * f),
		lorNorm:    2 / (math.Pi * f),
		lorScale:   4 / (f * f),
	}, nil
}

// Width returns the kernel parameters.
func (b *Broadener) Width() WidthParams {
	return b.width
}

// Kernel evaluates the area-normalized pseudo-Voigt at offset dx from the centre.
func (b *Broadener) Kernel(dx float64) float64 {
	d2 := dx * dx
	g := b.gaussNorm * math.Exp(-b.gaussScale*d2)
	l := b.lorNorm / (1 + b.lorScale*d2)
	return b.width.Eta*l + (1-b.width.Eta)*g
}

// Broaden evaluates every peak at every grid point and sums the
// contributions. Peaks outside the grid still contribute their tails.
// The result does not depend on the order of peaks.
func (b *Broadener) Broaden(peaks []values.Peak, grid values.Grid) []float64 {
	out := make([]float64, grid.Len())
	if len(peaks) == 0 || grid.IsZero() {
		return out
	}

	sorted := slices.Clone(peaks)
	slices.SortFunc(sorted, func(a, b values.Peak) int {
		if c := cmp.Compare(a.Angle, b.Angle); c != 0 {
			return c
		}
		return cmp.Compare(a.Intensity, b.Intensity)
	})

	axis := grid.Values()
	for _, p := range sorted {
		if p.Intensity == 0 {
			continue
		}
		for i, x := range axis {
			out[i] += p.Intensity * b.Kernel(x-p.Angle)
		}
	}
	return out
}
