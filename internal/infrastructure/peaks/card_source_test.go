package peaks

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/reglet-dev/xrdsim/internal/application/errors"
)

const cuKa = 1.5406

func TestTwoTheta(t *testing.T) {
	t.Parallel()

	angle, ok := TwoTheta(cuKa, 2.8195)
	require.True(t, ok)
	assert.InDelta(t, 31.71, angle, 0.01)

	// lambda / 2d > 1 cannot diffract
	_, ok = TwoTheta(cuKa, 0.7)
	assert.False(t, ok)

	// back-reflection limit
	angle, ok = TwoTheta(2, 1)
	require.True(t, ok)
	assert.InDelta(t, 180, angle, 1e-9)
}

func TestCardSource_Peaks(t *testing.T) {
	t.Parallel()

	src := NewCardSource()
	ctx := context.Background()

	t.Run("yaml card with formula", func(t *testing.T) {
		t.Parallel()
		phase, err := src.Peaks(ctx, filepath.Join("testdata", "nacl.yaml"), cuKa, 10, 80)
		require.NoError(t, err)
		assert.Equal(t, "NaCl", phase.Label)
		assert.Len(t, phase.Peaks, 6)
		assert.NotEmpty(t, phase.Source)
		for _, p := range phase.Peaks {
			assert.GreaterOrEqual(t, p.Angle, 10.0)
			assert.LessOrEqual(t, p.Angle, 80.0)
		}
	})

	t.Run("json card falls back to file stem", func(t *testing.T) {
		t.Parallel()
		phase, err := src.Peaks(ctx, filepath.Join("testdata", "kcl.json"), cuKa, 10, 80)
		require.NoError(t, err)
		assert.Equal(t, "kcl", phase.Label)
		assert.Len(t, phase.Peaks, 3)
	})

	t.Run("range filters reflections", func(t *testing.T) {
		t.Parallel()
		phase, err := src.Peaks(ctx, filepath.Join("testdata", "nacl.yaml"), cuKa, 30, 50)
		require.NoError(t, err)
		// (200) at 31.7 and (220) at 45.5
		require.Len(t, phase.Peaks, 2)
		assert.InDelta(t, 100, phase.Peaks[0].Intensity, 1e-12)
	})

	t.Run("nothing reachable is not an error", func(t *testing.T) {
		t.Parallel()
		phase, err := src.Peaks(ctx, filepath.Join("testdata", "nacl.yaml"), 10, 10, 80)
		require.NoError(t, err)
		assert.Empty(t, phase.Peaks)
	})
}

func TestCardSource_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
		return p
	}

	tests := []struct {
		name string
		ref  string
	}{
		{"missing file", filepath.Join(dir, "missing.yaml")},
		{"not yaml", write("bad.yaml", "reflections: [")},
		{"negative d", write("negd.yaml", "reflections:\n  - d: -1\n    intensity: 3\n")},
		{"negative intensity", write("negi.yaml", "reflections:\n  - d: 2\n    intensity: -3\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewCardSource().Peaks(context.Background(), tt.ref, cuKa, 10, 80)
			var loadErr *apperrors.StructureLoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, tt.ref, loadErr.Source)
		})
	}
}

func TestCard_Label(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "TiO2", (&Card{Formula: " TiO2 "}).Label("x.yaml"))
	assert.Equal(t, "anatase", (&Card{}).Label("/cards/anatase.yaml"))
	assert.Equal(t, UnknownLabel, (&Card{}).Label(""))
}

func TestCard_PeaksRejectsBadWavelength(t *testing.T) {
	t.Parallel()

	_, err := (&Card{}).Peaks(math.NaN(), 10, 80)
	assert.Error(t, err)
}
