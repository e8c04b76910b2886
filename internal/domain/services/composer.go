package services

import (
	"fmt"

	"github.com/reglet-dev/xrdsim/internal/domain/entities"
	"github.com/reglet-dev/xrdsim/internal/domain/values"
)

// Compose sums fraction-weighted profiles on their shared grid and
// renormalizes the result. No mixture is produced if any grid differs.
func Compose(profiles []entities.Profile, composition values.Composition, label string) (entities.Profile, error) {
	if len(profiles) == 0 {
		return entities.Profile{}, values.NewCompositionError("no profiles to compose", composition.Fractions(), 0)
	}
	if len(profiles) != composition.Len() {
		return entities.Profile{}, values.NewCompositionError(
			fmt.Sprintf("%d fractions for %d profiles", composition.Len(), len(profiles)),
			composition.Fractions(), len(profiles))
	}

	grid := profiles[0].Grid()
	for _, p := range profiles[1:] {
		if !p.Grid().Equal(grid) {
			return entities.Profile{}, values.NewGridMismatchError(p.Label(), grid, p.Grid())
		}
	}

	sum := make([]float64, grid.Len())
	for k, p := range profiles {
		f := composition.Fraction(k)
		if f == 0 {
			continue
		}
		for i := range sum {
			sum[i] += f * p.At(i)
		}
	}

	return entities.NewProfile(label, grid, Normalize(sum))
}

// Mix composes the profiles and groups the result into a collection.
func Mix(mode values.Mode, profiles []entities.Profile, composition values.Composition, label string) (*entities.ProfileCollection, error) {
	mixture, err := Compose(profiles, composition, label)
	if err != nil {
		return nil, err
	}
	return BuildCollection(mode, profiles, mixture)
}

// BuildCollection groups a mixture with its source profiles. In standard
// mode the individual profiles are kept, each normalized on its own and not
// scaled by its fraction. In mix mode they are dropped.
func BuildCollection(mode values.Mode, profiles []entities.Profile, mixture entities.Profile) (*entities.ProfileCollection, error) {
	var individual []entities.Profile
	if mode == values.ModeStandard {
		individual = make([]entities.Profile, len(profiles))
		for i, p := range profiles {
			np, err := entities.NewProfile(p.Label(), p.Grid(), Normalize(p.Intensities()))
			if err != nil {
				return nil, err
			}
			individual[i] = np
		}
	}

	return entities.NewProfileCollection(mode, individual, mixture)
}
