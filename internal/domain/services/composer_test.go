package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/xrdsim/internal/domain/entities"
	"github.com/reglet-dev/xrdsim/internal/domain/values"
)

func Test_Normalize(t *testing.T) {
	t.Parallel()

	t.Run("scales maximum to 100", func(t *testing.T) {
		t.Parallel()
		out := Normalize([]float64{1, 4, 2})
		assert.Equal(t, []float64{25, 100, 50}, out)
	})

	t.Run("all zero is unchanged", func(t *testing.T) {
		t.Parallel()
		in := []float64{0, 0, 0}
		out := Normalize(in)
		assert.Equal(t, in, out)
	})

	t.Run("empty is unchanged", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, Normalize(nil))
	})

	t.Run("input is not mutated", func(t *testing.T) {
		t.Parallel()
		in := []float64{2, 1}
		_ = Normalize(in)
		assert.Equal(t, []float64{2, 1}, in)
	})
}

func testProfiles(t *testing.T) (values.Grid, entities.Profile, entities.Profile) {
	t.Helper()
	grid := values.MustBuildGrid(10, 10.4, 0.1)
	a := entities.MustNewProfile("A", grid, []float64{0, 100, 50, 0, 0})
	b := entities.MustNewProfile("B", grid, []float64{0, 0, 50, 100, 20})
	return grid, a, b
}

func Test_Compose(t *testing.T) {
	t.Parallel()

	t.Run("single profile is identity", func(t *testing.T) {
		t.Parallel()
		_, a, _ := testProfiles(t)
		mix, err := Compose([]entities.Profile{a}, values.MustNewComposition(nil, []float64{1}), "Mixture")
		require.NoError(t, err)
		assert.Equal(t, a.Intensities(), mix.Intensities())
		assert.Equal(t, "Mixture", mix.Label())
	})

	t.Run("weighted sum renormalized", func(t *testing.T) {
		t.Parallel()
		_, a, b := testProfiles(t)
		mix, err := Compose([]entities.Profile{a, b}, values.MustNewComposition(nil, []float64{0.5, 0.5}), "M")
		require.NoError(t, err)
		// raw: 0, 50, 50, 50, 10
		assert.InDeltaSlice(t, []float64{0, 100, 100, 100, 20}, mix.Intensities(), 1e-9)
	})

	t.Run("zero fraction ignores profile", func(t *testing.T) {
		t.Parallel()
		_, a, b := testProfiles(t)
		mix, err := Compose([]entities.Profile{a, b}, values.MustNewComposition(nil, []float64{0, 1}), "M")
		require.NoError(t, err)
		assert.InDeltaSlice(t, b.Intensities(), mix.Intensities(), 1e-9)
	})

	t.Run("all zero stays zero", func(t *testing.T) {
		t.Parallel()
		grid, _, _ := testProfiles(t)
		z := entities.MustNewProfile("Z", grid, make([]float64, grid.Len()))
		mix, err := Compose([]entities.Profile{z, z}, values.MustNewComposition(nil, []float64{0.5, 0.5}), "M")
		require.NoError(t, err)
		assert.Equal(t, make([]float64, grid.Len()), mix.Intensities())
	})

	t.Run("count mismatch", func(t *testing.T) {
		t.Parallel()
		_, a, b := testProfiles(t)
		_, err := Compose([]entities.Profile{a, b}, values.MustNewComposition(nil, []float64{1}), "M")
		var compErr *values.CompositionError
		assert.ErrorAs(t, err, &compErr)
	})

	t.Run("no profiles", func(t *testing.T) {
		t.Parallel()
		_, err := Compose(nil, values.Composition{}, "M")
		var compErr *values.CompositionError
		assert.ErrorAs(t, err, &compErr)
	})

	t.Run("grid mismatch", func(t *testing.T) {
		t.Parallel()
		_, a, _ := testProfiles(t)
		other := values.MustBuildGrid(10, 10.8, 0.2)
		c := entities.MustNewProfile("C", other, []float64{1, 2, 3, 4, 5})
		_, err := Compose([]entities.Profile{a, c}, values.MustNewComposition(nil, []float64{0.5, 0.5}), "M")
		var gridErr *values.GridMismatchError
		require.ErrorAs(t, err, &gridErr)
		assert.Equal(t, "C", gridErr.Label)
	})
}

func Test_Mix(t *testing.T) {
	t.Parallel()

	grid := values.MustBuildGrid(10, 10.2, 0.1)
	a := entities.MustNewProfile("A", grid, []float64{1, 2, 4})
	b := entities.MustNewProfile("B", grid, []float64{4, 2, 1})
	comp := values.MustNewComposition(nil, []float64{0.25, 0.75})

	t.Run("standard keeps normalized individuals", func(t *testing.T) {
		t.Parallel()
		coll, err := Mix(values.ModeStandard, []entities.Profile{a, b}, comp, "M")
		require.NoError(t, err)
		profiles := coll.Profiles()
		require.Len(t, profiles, 2)
		assert.Equal(t, []float64{25, 50, 100}, profiles[0].Intensities())
		assert.Equal(t, []float64{100, 50, 25}, profiles[1].Intensities())
		assert.Equal(t, "M", coll.MixtureLabel())
	})

	t.Run("mix keeps only mixture", func(t *testing.T) {
		t.Parallel()
		coll, err := Mix(values.ModeMix, []entities.Profile{a, b}, comp, "M")
		require.NoError(t, err)
		assert.Empty(t, coll.Profiles())
		// raw: 3.25, 2, 1.75
		assert.InDeltaSlice(t, []float64{100, 200 / 3.25, 175 / 3.25}, coll.Mixture().Intensities(), 1e-9)
	})
}
