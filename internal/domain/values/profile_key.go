package values

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ProfileKey identifies a single-phase profile computation: the same structure
// source broadened on the same grid with the same kernel yields the same
// intensities.
type ProfileKey struct {
	SourceDigest string
	Wavelength   float64
	GridStart    float64
	GridStep     float64
	GridLen      int
	FWHM         float64
	Eta          float64
}

// NewProfileKey derives a key from the raw structure bytes and the computation inputs.
func NewProfileKey(source []byte, wavelength float64, grid Grid, fwhm, eta float64) ProfileKey {
	sum := sha256.Sum256(source)
	return ProfileKey{
		SourceDigest: hex.EncodeToString(sum[:]),
		Wavelength:   wavelength,
		GridStart:    grid.Min(),
		GridStep:     grid.Step(),
		GridLen:      grid.Len(),
		FWHM:         fwhm,
		Eta:          eta,
	}
}

// String returns the canonical form used as a storage key.
func (k ProfileKey) String() string {
	return fmt.Sprintf("%s|%.10g|%.10g|%.10g|%d|%.10g|%.10g",
		k.SourceDigest, k.Wavelength, k.GridStart, k.GridStep, k.GridLen, k.FWHM, k.Eta)
}

// Equals checks if two keys are equal
func (k ProfileKey) Equals(other ProfileKey) bool {
	return k.String() == other.String()
}
