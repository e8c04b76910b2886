package values

import (
	"fmt"
	"strings"
)

// Mode selects what a ProfileCollection retains.
type Mode string

const (
	// ModeStandard keeps the individual profiles alongside the mixture
	ModeStandard Mode = "standard"
	// ModeMix keeps only the mixture
	ModeMix Mode = "mix"
)

// ParseMode creates a Mode from string. Empty input defaults to standard.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "":
		return ModeStandard, nil
	case "mix":
		return ModeMix, nil
	default:
		return "", fmt.Errorf("invalid mode: %s (valid: standard, mix)", s)
	}
}

// String returns the string representation
func (m Mode) String() string {
	return string(m)
}
