package services

// NormalizedMax is the height every non-degenerate profile is scaled to.
const NormalizedMax = 100.0

// Normalize scales intensities so the maximum equals NormalizedMax.
// An all-zero (or empty) input is returned unchanged.
func Normalize(intensities []float64) []float64 {
	peak := 0.0
	for _, v := range intensities {
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		return intensities
	}

	scale := NormalizedMax / peak
	out := make([]float64, len(intensities))
	for i, v := range intensities {
		out[i] = v * scale
	}
	return out
}
