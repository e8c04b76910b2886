package entities

import (
	"fmt"

	"github.com/reglet-dev/xrdsim/internal/domain/values"
)

// ProfileCollection is the unit persisted by the profile codec.
// This is an aggregate root in the Simulation bounded context.
//
// Aggregate Boundary:
// - ProfileCollection is the root
// - Individual profiles and the mixture are entities within the aggregate
// - The grid is a shared value object
//
// Invariants Enforced:
// - Every profile and the mixture share one grid
// - Mix mode carries no individual profiles
// - Standard mode carries at least one individual profile
type ProfileCollection struct {
	grid     values.Grid
	mode     values.Mode
	profiles []Profile
	mixture  Profile
}

// NewProfileCollection groups profiles around a mixture. In mix mode the
// individual profiles are dropped.
func NewProfileCollection(mode values.Mode, profiles []Profile, mixture Profile) (*ProfileCollection, error) {
	if mixture.IsZero() {
		return nil, fmt.Errorf("collection requires a mixture profile")
	}
	switch mode {
	case values.ModeStandard, values.ModeMix:
	default:
		return nil, fmt.Errorf("invalid mode: %q", mode)
	}

	if mode == values.ModeStandard && len(profiles) == 0 {
		return nil, fmt.Errorf("standard mode requires at least one individual profile")
	}

	grid := mixture.Grid()
	for _, p := range profiles {
		if !p.Grid().Equal(grid) {
			return nil, values.NewGridMismatchError(p.Label(), grid, p.Grid())
		}
	}

	c := &ProfileCollection{
		grid:    grid,
		mode:    mode,
		mixture: mixture,
	}
	if mode == values.ModeStandard {
		c.profiles = append([]Profile(nil), profiles...)
	}
	return c, nil
}

// Grid returns the shared grid.
func (c *ProfileCollection) Grid() values.Grid {
	return c.grid
}

// Mode returns the collection mode.
func (c *ProfileCollection) Mode() values.Mode {
	return c.mode
}

// Profiles returns the individual profiles (empty in mix mode).
func (c *ProfileCollection) Profiles() []Profile {
	return append([]Profile(nil), c.profiles...)
}

// Labels returns the individual profile labels in order.
func (c *ProfileCollection) Labels() []string {
	labels := make([]string, len(c.profiles))
	for i, p := range c.profiles {
		labels[i] = p.Label()
	}
	return labels
}

// Mixture returns the mixture profile.
func (c *ProfileCollection) Mixture() Profile {
	return c.mixture
}

// MixtureLabel returns the mixture series label.
func (c *ProfileCollection) MixtureLabel() string {
	return c.mixture.Label()
}

// Series returns every series in storage order: profiles, then the mixture.
func (c *ProfileCollection) Series() []SeriesReader {
	series := make([]SeriesReader, 0, len(c.profiles)+1)
	for _, p := range c.profiles {
		series = append(series, p)
	}
	return append(series, c.mixture)
}

// WithMixtureLabel returns a copy whose mixture carries a new label.
func (c *ProfileCollection) WithMixtureLabel(label string) *ProfileCollection {
	cp := *c
	cp.profiles = c.Profiles()
	cp.mixture = c.mixture.WithLabel(label)
	return &cp
}

// WithMode returns a copy in the given mode. Switching to mix drops the
// individual profiles, so switching a mix collection to standard fails.
func (c *ProfileCollection) WithMode(mode values.Mode) (*ProfileCollection, error) {
	return NewProfileCollection(mode, c.profiles, c.mixture)
}
