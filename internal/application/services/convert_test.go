package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/xrdsim/internal/application/dto"
	apperrors "github.com/reglet-dev/xrdsim/internal/application/errors"
	"github.com/reglet-dev/xrdsim/internal/domain/entities"
	"github.com/reglet-dev/xrdsim/internal/domain/values"
)

func TestConvertUseCase_FromFile(t *testing.T) {
	t.Parallel()

	grid := values.MustBuildGrid(10, 20, 5)
	a := entities.MustNewProfile("A", grid, []float64{10, 100, 50})
	b := entities.MustNewProfile("B", grid, []float64{100, 20, 0})
	m := entities.MustNewProfile("Mix (0.500, 0.500)", grid, []float64{100, 100, 45.45})

	newStore := func(t *testing.T) *fixture {
		f := newFixture()
		coll, err := entities.NewProfileCollection(values.ModeStandard, []entities.Profile{a, b}, m)
		require.NoError(t, err)
		f.store.saved["in.csv"] = coll
		return f
	}

	t.Run("re-export keeps content", func(t *testing.T) {
		t.Parallel()
		f := newStore(t)
		uc := NewConvertUseCase(f.phases, f.simulator, f.store, nil)
		_, err := uc.Execute(context.Background(), dto.ConvertRequest{
			InputProfiles: []string{"in.csv"},
			Output:        dto.OutputOptions{Paths: []string{"out.parquet"}},
		})
		require.NoError(t, err)

		out := f.store.saved["out.parquet"]
		require.NotNil(t, out)
		assert.Equal(t, values.ModeStandard, out.Mode())
		assert.Equal(t, []string{"A", "B"}, out.Labels())
		assert.Equal(t, "Mix (0.500, 0.500)", out.MixtureLabel())
		assert.InDeltaSlice(t, m.Intensities(), out.Mixture().Intensities(), 1e-9)
	})

	t.Run("mode and label overrides", func(t *testing.T) {
		t.Parallel()
		f := newStore(t)
		uc := NewConvertUseCase(f.phases, f.simulator, f.store, nil)
		_, err := uc.Execute(context.Background(), dto.ConvertRequest{
			InputProfiles: []string{"in.csv"},
			Mode:          "mix",
			MixtureLabel:  "Blend",
			Output:        dto.OutputOptions{Paths: []string{"out.json"}},
		})
		require.NoError(t, err)

		out := f.store.saved["out.json"]
		assert.Equal(t, values.ModeMix, out.Mode())
		assert.Empty(t, out.Profiles())
		assert.Equal(t, "Blend", out.MixtureLabel())
	})
}

func TestConvertUseCase_MixFileStaysMix(t *testing.T) {
	t.Parallel()

	f := newFixture()
	m := entities.MustNewProfile("Blend", values.MustBuildGrid(10, 20, 5), []float64{10, 100, 50})
	mixOnly, err := entities.NewProfileCollection(values.ModeMix, nil, m)
	require.NoError(t, err)
	f.store.saved["mix.json"] = mixOnly

	uc := NewConvertUseCase(f.phases, f.simulator, f.store, nil)
	resp, err := uc.Execute(context.Background(), dto.ConvertRequest{
		InputProfiles: []string{"mix.json"},
		Mode:          "standard",
		Output:        dto.OutputOptions{Paths: []string{"out.csv"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "mix", resp.Outputs[0].Mode)
	out := f.store.saved["out.csv"]
	require.NotNil(t, out)
	assert.Equal(t, values.ModeMix, out.Mode())
	assert.Equal(t, "Blend", out.MixtureLabel())
}

func TestConvertUseCase_SingleCardCollapsesToMix(t *testing.T) {
	t.Parallel()

	f := newFixture()
	uc := NewConvertUseCase(f.phases, f.simulator, f.store, nil)
	resp, err := uc.Execute(context.Background(), dto.ConvertRequest{
		Cards:      []string{"nacl.yaml"},
		Simulation: defaultSimulation(),
		Output:     dto.OutputOptions{Paths: []string{"nacl.csv"}},
	})
	require.NoError(t, err)

	coll := f.store.saved[resp.Outputs[0].Path]
	require.NotNil(t, coll)
	assert.Equal(t, values.ModeMix, coll.Mode())
	assert.Empty(t, coll.Profiles())
	assert.Equal(t, "NaCl", coll.MixtureLabel())
}

func TestConvertUseCase_CardsEvenMixture(t *testing.T) {
	t.Parallel()

	f := newFixture()
	uc := NewConvertUseCase(f.phases, f.simulator, f.store, nil)
	resp, err := uc.Execute(context.Background(), dto.ConvertRequest{
		Cards:      []string{"nacl.yaml", "kcl.yaml"},
		Simulation: defaultSimulation(),
		Output:     dto.OutputOptions{Paths: []string{"both.json"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "standard", resp.Outputs[0].Mode)
	require.Len(t, resp.Outputs[0].Series, 3)

	coll := f.store.saved[resp.Outputs[0].Path]
	require.NotNil(t, coll)
	assert.Equal(t, values.ModeStandard, coll.Mode())
	assert.Equal(t, DefaultMixtureLabel, coll.MixtureLabel())
	assert.Len(t, coll.Profiles(), 2)
}

func TestConvertUseCase_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  dto.ConvertRequest
	}{
		{"no input", dto.ConvertRequest{Output: dto.OutputOptions{Paths: []string{"a.csv"}}}},
		{"both inputs", dto.ConvertRequest{Cards: []string{"nacl.yaml"}, InputProfiles: []string{"in.csv"}, Output: dto.OutputOptions{Paths: []string{"a.csv"}}}},
		{"several files", dto.ConvertRequest{InputProfiles: []string{"a.csv", "b.csv"}, Output: dto.OutputOptions{Paths: []string{"a.csv"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture()
			uc := NewConvertUseCase(f.phases, f.simulator, f.store, nil)
			_, err := uc.Execute(context.Background(), tt.req)
			var valErr *apperrors.ValidationError
			assert.ErrorAs(t, err, &valErr)
		})
	}
}
