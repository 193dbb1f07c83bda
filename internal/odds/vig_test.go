package odds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverround(t *testing.T) {
	margin, err := Overround(1.91, 1.91)
	require.NoError(t, err)
	assert.InDelta(t, 2/1.91-1, margin, 1e-12)

	margin, err = Overround(2.0, 2.0)
	require.NoError(t, err)
	assert.InDelta(t, 0, margin, 1e-12)

	_, err = Overround(1.91)
	assert.ErrorIs(t, err, ErrInvalidOdds)

	_, err = Overround(1.91, 1.0)
	assert.ErrorIs(t, err, ErrInvalidOdds)
}

func TestFairProbabilities(t *testing.T) {
	tests := []struct {
		name     string
		odds     []float64
		expected []float64
		delta    float64
	}{
		{
			name:     "Standard 1.91/1.91",
			odds:     []float64{1.91, 1.91},
			expected: []float64{0.5, 0.5},
			delta:    0.001,
		},
		{
			name:     "Favorite 1.67/2.30",
			odds:     []float64{1.67, 2.30},
			expected: []float64{0.579, 0.421},
			delta:    0.01,
		},
		{
			name:     "Three-way 2.10/3.40/3.60",
			odds:     []float64{2.10, 3.40, 3.60},
			expected: []float64{0.455, 0.281, 0.265},
			delta:    0.01,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FairProbabilities(tt.odds...)
			require.NoError(t, err)
			require.Len(t, got, len(tt.expected))

			sum := 0.0
			for i := range got {
				assert.InDelta(t, tt.expected[i], got[i], tt.delta)
				sum += got[i]
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
		})
	}
}

func TestFairProbabilitiesInvalid(t *testing.T) {
	_, err := FairProbabilities(2.0)
	assert.ErrorIs(t, err, ErrInvalidOdds)

	_, err = FairProbabilities(2.0, 0.9)
	assert.ErrorIs(t, err, ErrInvalidOdds)
}

func TestFairProbabilitiesPower(t *testing.T) {
	tests := []struct {
		name  string
		oddsA float64
		oddsB float64
	}{
		{"Standard 1.91/1.91", 1.91, 1.91},
		{"Favorite 1.33/3.50", 1.33, 3.50},
		{"Heavy favorite 1.10/7.00", 1.10, 7.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b, err := FairProbabilitiesPower(tt.oddsA, tt.oddsB)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, a+b, 1e-6)

			// Power method shades the longshot below the multiplicative estimate
			mult, err := FairProbabilities(tt.oddsA, tt.oddsB)
			require.NoError(t, err)
			if tt.oddsA != tt.oddsB {
				assert.Less(t, b, mult[1])
			}
		})
	}
}

func TestFairProbabilitiesPowerAlreadyFair(t *testing.T) {
	a, b, err := FairProbabilitiesPower(2.0, 2.0)
	require.NoError(t, err)
	assert.Equal(t, 0.5, a)
	assert.Equal(t, 0.5, b)
}
