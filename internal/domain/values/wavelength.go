package values

import (
	"fmt"
	"sort"
	"strings"
)

// WavelengthPresets maps a named X-ray source to its wavelength in angstrom.
type WavelengthPresets map[string]float64

// DefaultWavelengthPresets returns the built-in anode presets.
func DefaultWavelengthPresets() WavelengthPresets {
	return WavelengthPresets{
		"CuKa": 1.5406,
		"CoKa": 1.7890,
		"MoKa": 0.7093,
	}
}

// With returns a copy with extra presets merged in (extra wins).
func (p WavelengthPresets) With(extra map[string]float64) WavelengthPresets {
	merged := make(WavelengthPresets, len(p)+len(extra))
	for k, v := range p {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

// Names returns the preset names in sorted order.
func (p WavelengthPresets) Names() []string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Resolve returns explicit when it is positive, otherwise the named preset.
func (p WavelengthPresets) Resolve(preset string, explicit float64) (float64, error) {
	if explicit != 0 {
		if explicit < 0 || !isFinite(explicit) {
			return 0, fmt.Errorf("wavelength must be positive: %g", explicit)
		}
		return explicit, nil
	}
	v, ok := p[strings.TrimSpace(preset)]
	if !ok {
		return 0, fmt.Errorf("unknown wavelength preset: %s (valid: %s)", preset, strings.Join(p.Names(), ", "))
	}
	if v <= 0 {
		return 0, fmt.Errorf("wavelength preset %s must be positive: %g", preset, v)
	}
	return v, nil
}
