package values

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewComposition(t *testing.T) {
	tests := []struct {
		name      string
		labels    []string
		fractions []float64
		want      []float64
		wantErr   bool
	}{
		{"valid pair", []string{"A", "B"}, []float64{0.4, 0.6}, []float64{0.4, 0.6}, false},
		{"broadcast single", []string{"A", "B", "C"}, []float64{1}, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, false},
		{"single phase", []string{"A"}, []float64{1}, []float64{1}, false},
		{"unlabeled", nil, []float64{0.25, 0.75}, []float64{0.25, 0.75}, false},
		{"sum above one", []string{"A", "B"}, []float64{0.5, 0.6}, nil, true},
		{"negative", []string{"A", "B"}, []float64{-0.5, 1.5}, nil, true},
		{"count mismatch", []string{"A", "B", "C"}, []float64{0.5, 0.5}, nil, true},
		{"no phases", []string{}, []float64{}, nil, true},
		{"broadcast zero", []string{"A", "B"}, []float64{0}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewComposition(tt.labels, tt.fractions)

			if tt.wantErr {
				require.Error(t, err)
				var compErr *CompositionError
				assert.True(t, errors.As(err, &compErr))
				return
			}

			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, c.Fractions(), 1e-9)
			assert.Equal(t, tt.labels, c.Labels())
		})
	}
}

func Test_NormalizeRatios(t *testing.T) {
	c, err := NormalizeRatios([]string{"A", "B"}, []float64{2, 3})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.4, 0.6}, c.Fractions(), 1e-12)

	_, err = NormalizeRatios([]string{"A", "B"}, []float64{0, 0})
	assert.Error(t, err)
}

func Test_EvenComposition(t *testing.T) {
	c, err := EvenComposition([]string{"A", "B", "C", "D"})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.25, 0.25, 0.25, 0.25}, c.Fractions(), 1e-12)

	_, err = EvenComposition(nil)
	assert.Error(t, err)
}

func Test_Composition_Labels(t *testing.T) {
	c := MustNewComposition([]string{"Si", "LiCoO2"}, []float64{0.5, 0.5})

	assert.Equal(t, "Mixture (0.500, 0.500)", c.MixtureLabel("Mixture"))
	assert.Equal(t, "f1-0.5_f2-0.5", c.Tag())
	assert.Equal(t, "0.5, 0.5", c.String())
}

func Test_Composition_WithLabels(t *testing.T) {
	c := MustNewComposition(nil, []float64{0, 1})

	labeled, err := c.WithLabels([]string{"A", "B"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, labeled.Labels())
	assert.True(t, labeled.IsDegenerate())

	_, err = c.WithLabels([]string{"A"})
	assert.Error(t, err)
}

func Test_FormatFraction(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.5, "0.5"},
		{1, "1"},
		{0, "0"},
		{0.30000000000000004, "0.3"},
		{0.125, "0.125"},
		{0.1234, "0.123"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFraction(tt.in))
		})
	}
}
