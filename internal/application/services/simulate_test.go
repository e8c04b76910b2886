package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/xrdsim/internal/application/dto"
	apperrors "github.com/reglet-dev/xrdsim/internal/application/errors"
	"github.com/reglet-dev/xrdsim/internal/domain/values"
)

func TestSimulateUseCase_Execute(t *testing.T) {
	t.Parallel()

	f := newFixture()
	uc := NewSimulateUseCase(f.phases, f.simulator, f.store, nil)

	resp, err := uc.Execute(context.Background(), dto.SimulateRequest{
		Cards:      []string{"nacl.yaml", "kcl.yaml"},
		Simulation: defaultSimulation(),
		Output:     dto.OutputOptions{Paths: []string{"sim.csv", "sim.parquet"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Outputs, 2)
	assert.Equal(t, "parquet", resp.Outputs[1].Format)

	coll := f.store.saved["sim.csv"]
	require.NotNil(t, coll)
	assert.Equal(t, values.ModeStandard, coll.Mode())
	assert.Equal(t, []string{"NaCl", "KCl"}, coll.Labels())
	assert.Equal(t, "Mixture (0.500, 0.500)", coll.MixtureLabel())
	for _, p := range coll.Profiles() {
		_, peak := p.Peak()
		assert.InDelta(t, 100, peak, 1e-9)
	}
	assert.Equal(t, 2, resp.Diagnostics.CacheMisses)
}

func TestSimulateUseCase_ZeroIntensityWarns(t *testing.T) {
	t.Parallel()

	f := newFixture()
	uc := NewSimulateUseCase(f.phases, f.simulator, f.store, nil)

	resp, err := uc.Execute(context.Background(), dto.SimulateRequest{
		Cards:      []string{"empty.yaml"},
		Simulation: defaultSimulation(),
		Output:     dto.OutputOptions{Paths: []string{"empty.json"}},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Diagnostics.Warnings, 1)
}

func TestSimulateUseCase_Errors(t *testing.T) {
	t.Parallel()

	f := newFixture()
	uc := NewSimulateUseCase(f.phases, f.simulator, f.store, nil)

	_, err := uc.Execute(context.Background(), dto.SimulateRequest{
		Simulation: defaultSimulation(),
		Output:     dto.OutputOptions{Paths: []string{"a.csv"}},
	})
	var valErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &valErr)

	_, err = uc.Execute(context.Background(), dto.SimulateRequest{
		Cards:      []string{"nacl.yaml"},
		Simulation: defaultSimulation(),
		Output:     dto.OutputOptions{Paths: []string{"a.xlsx"}},
	})
	var fmtErr *apperrors.UnsupportedFormatError
	assert.ErrorAs(t, err, &fmtErr)
	assert.Zero(t, f.source.calls)
}
