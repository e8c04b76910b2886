// Package peaks provides peak sources: adapters that turn a structure
// reference into diffraction peaks at a given wavelength.
package peaks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	apperrors "github.com/reglet-dev/xrdsim/internal/application/errors"
	"github.com/reglet-dev/xrdsim/internal/application/ports"
	"github.com/reglet-dev/xrdsim/internal/domain/values"
)

// UnknownLabel is used when a card has neither a formula nor a usable file name.
const UnknownLabel = "Unknown"

// Card is a reflection list for one phase: d-spacings with relative
// intensities, independent of wavelength. JSON cards are read the same way.
type Card struct {
	Formula     string       `yaml:"formula"`
	Reflections []Reflection `yaml:"reflections"`
}

// Reflection is one lattice plane family.
type Reflection struct {
	HKL       []int   `yaml:"hkl,omitempty"`
	D         float64 `yaml:"d"`
	Intensity float64 `yaml:"intensity"`
}

// CardSource implements ports.PeakSource over reflection card files.
type CardSource struct{}

// NewCardSource creates a new card source.
func NewCardSource() *CardSource {
	return &CardSource{}
}

// Peaks reads the card at ref and places each reflection with Bragg's law.
// Reflections outside [minAngle, maxAngle] or unreachable at this
// wavelength are dropped.
func (s *CardSource) Peaks(ctx context.Context, ref string, wavelength, minAngle, maxAngle float64) (ports.PhasePeaks, error) {
	if err := ctx.Err(); err != nil {
		return ports.PhasePeaks{}, err
	}

	data, err := readCard(ref)
	if err != nil {
		return ports.PhasePeaks{}, apperrors.NewStructureLoadError(ref, err)
	}

	card, err := ParseCard(data)
	if err != nil {
		return ports.PhasePeaks{}, apperrors.NewStructureLoadError(ref, err)
	}

	peaks, err := card.Peaks(wavelength, minAngle, maxAngle)
	if err != nil {
		return ports.PhasePeaks{}, apperrors.NewStructureLoadError(ref, err)
	}

	return ports.PhasePeaks{
		Label:  card.Label(ref),
		Source: data,
		Peaks:  peaks,
	}, nil
}

// ParseCard decodes and validates a card.
func ParseCard(data []byte) (*Card, error) {
	var card Card
	if err := yaml.Unmarshal(data, &card); err != nil {
		return nil, fmt.Errorf("invalid card: %w", err)
	}

	var errs []error
	for i, r := range card.Reflections {
		if !(r.D > 0) || math.IsInf(r.D, 0) {
			errs = append(errs, fmt.Errorf("reflection %d: d-spacing must be positive, got %g", i, r.D))
		}
		if !(r.Intensity >= 0) || math.IsInf(r.Intensity, 0) {
			errs = append(errs, fmt.Errorf("reflection %d: intensity must be non-negative, got %g", i, r.Intensity))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &card, nil
}

// Label returns the formula, else the file stem of ref, else UnknownLabel.
func (c *Card) Label(ref string) string {
	if f := strings.TrimSpace(c.Formula); f != "" {
		return f
	}
	stem := strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		return UnknownLabel
	}
	return stem
}

// Peaks converts reflections to (2theta, intensity) at the given wavelength.
func (c *Card) Peaks(wavelength, minAngle, maxAngle float64) ([]values.Peak, error) {
	if !(wavelength > 0) {
		return nil, fmt.Errorf("wavelength must be positive, got %g", wavelength)
	}

	peaks := make([]values.Peak, 0, len(c.Reflections))
	for _, r := range c.Reflections {
		angle, ok := TwoTheta(wavelength, r.D)
		if !ok || angle < minAngle || angle > maxAngle {
			continue
		}
		p, err := values.NewPeak(angle, r.Intensity)
		if err != nil {
			return nil, err
		}
		peaks = append(peaks, p)
	}
	return peaks, nil
}

// TwoTheta applies Bragg's law, returning the diffraction angle in degrees.
// ok is false when the plane cannot diffract at this wavelength.
func TwoTheta(wavelength, d float64) (angle float64, ok bool) {
	s := wavelength / (2 * d)
	if s > 1 || s <= 0 {
		return 0, false
	}
	return 2 * math.Asin(s) * 180 / math.Pi, true
}

// readCard reads a card file through os.OpenRoot so that the base name cannot
// escape its directory.
func readCard(path string) ([]byte, error) {
	root, err := os.OpenRoot(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open card directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	file, err := root.Open(filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open card: %w", err)
	}
	defer func() {
		_ = file.Close() // Best-effort cleanup
	}()

	return io.ReadAll(file)
}
