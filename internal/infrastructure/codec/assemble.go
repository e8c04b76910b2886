package codec

import (
	"fmt"

	apperrors "github.com/reglet-dev/xrdsim/internal/application/errors"
	"github.com/reglet-dev/xrdsim/internal/domain/entities"
	"github.com/reglet-dev/xrdsim/internal/domain/values"
)

// table is the format-neutral shape every codec decodes into.
type table struct {
	format       string
	mode         values.Mode
	axis         []float64
	labels       []string
	columns      [][]float64
	mixtureLabel string
	mixture      []float64
}

// fromCollection flattens a collection into columns.
func fromCollection(c *entities.ProfileCollection) table {
	profiles := c.Profiles()
	t := table{
		mode:         c.Mode(),
		axis:         c.Grid().Values(),
		labels:       c.Labels(),
		columns:      make([][]float64, len(profiles)),
		mixtureLabel: c.MixtureLabel(),
		mixture:      c.Mixture().Intensities(),
	}
	for i, p := range profiles {
		t.columns[i] = p.Intensities()
	}
	return t
}

// collection rebuilds a collection, reconstructing the grid from the stored axis.
func (t table) collection() (*entities.ProfileCollection, error) {
	grid, err := values.GridFromAxis(t.axis)
	if err != nil {
		return nil, apperrors.NewSchemaError(t.format, "invalid 2theta axis", err)
	}
	if len(t.labels) != len(t.columns) {
		return nil, apperrors.NewSchemaError(t.format,
			fmt.Sprintf("%d labels for %d profiles", len(t.labels), len(t.columns)), nil)
	}

	mode := t.mode
	if mode == "" {
		mode = values.ModeStandard
		if len(t.columns) == 0 {
			mode = values.ModeMix
		}
	}

	profiles := make([]entities.Profile, len(t.columns))
	for i, col := range t.columns {
		p, err := entities.NewProfile(t.labels[i], grid, col)
		if err != nil {
			return nil, apperrors.NewSchemaError(t.format, fmt.Sprintf("profile %q", t.labels[i]), err)
		}
		profiles[i] = p
	}

	mixture, err := entities.NewProfile(t.mixtureLabel, grid, t.mixture)
	if err != nil {
		return nil, apperrors.NewSchemaError(t.format, "mixture", err)
	}

	coll, err := entities.NewProfileCollection(mode, profiles, mixture)
	if err != nil {
		return nil, apperrors.NewSchemaError(t.format, "inconsistent collection", err)
	}
	return coll, nil
}
