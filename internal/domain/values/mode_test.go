package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeStandard, false},
		{"standard", ModeStandard, false},
		{" MIX ", ModeMix, false},
		{"overlay", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_RunID(t *testing.T) {
	id := NewRunID()
	assert.False(t, id.IsZero())

	parsed, err := ParseRunID(id.String())
	require.NoError(t, err)
	assert.True(t, parsed.Equals(id))

	_, err = ParseRunID("not-a-uuid")
	assert.Error(t, err)
}

func Test_NewPeak(t *testing.T) {
	p, err := NewPeak(31.7, 100)
	require.NoError(t, err)
	assert.Equal(t, Peak{Angle: 31.7, Intensity: 100}, p)

	_, err = NewPeak(31.7, -1)
	assert.Error(t, err)
}

func Test_ProfileKey(t *testing.T) {
	grid := MustBuildGrid(10, 20, 0.5)
	a := NewProfileKey([]byte("formula: NaCl"), 1.5406, grid, 1, 0.5)
	b := NewProfileKey([]byte("formula: NaCl"), 1.5406, grid, 1, 0.5)
	assert.True(t, a.Equals(b))
	assert.Len(t, a.SourceDigest, 64)

	tests := []struct {
		name string
		key  ProfileKey
	}{
		{"source", NewProfileKey([]byte("formula: KCl"), 1.5406, grid, 1, 0.5)},
		{"wavelength", NewProfileKey([]byte("formula: NaCl"), 0.7093, grid, 1, 0.5)},
		{"grid", NewProfileKey([]byte("formula: NaCl"), 1.5406, MustBuildGrid(10, 20, 0.25), 1, 0.5)},
		{"kernel", NewProfileKey([]byte("formula: NaCl"), 1.5406, grid, 1, 0.4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, a.Equals(tt.key))
		})
	}
}
