package odds

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImpliedProbability(t *testing.T) {
	tests := []struct {
		name string
		odds float64
		want float64
	}{
		{"Even money", 2.0, 0.5},
		{"Favorite 1.25", 1.25, 0.8},
		{"Underdog 2.50", 2.50, 0.4},
		{"Long shot 11.0", 11.0, 1 / 11.0},
		{"Barely above one", 1.0001, 1 / 1.0001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ImpliedProbability(tt.odds)
			require.NoError(t, err)
			assert.Equal(t, 1/tt.odds, got)
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.Greater(t, got, 0.0)
			assert.Less(t, got, 1.0)
		})
	}
}

func TestImpliedProbabilityInvalid(t *testing.T) {
	for _, o := range []float64{1.0, 0.5, 0, -2, math.NaN(), math.Inf(1)} {
		_, err := ImpliedProbability(o)
		assert.ErrorIs(t, err, ErrInvalidOdds, "odds %v", o)
	}
}

func TestAmericanToDecimal(t *testing.T) {
	tests := []struct {
		name     string
		american int
		want     float64
	}{
		{"Even money +100", 100, 2.0},
		{"Even money -100", -100, 2.0},
		{"Favorite -150", -150, 1.0 + 100.0/150.0},
		{"Underdog +150", 150, 2.5},
		{"Standard -110", -110, 1.0 + 100.0/110.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AmericanToDecimal(tt.american)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	// Prices strictly between -100 and +100 do not exist
	for _, american := range []int{0, -50, 50, -99, 99, 1, -1} {
		_, err := AmericanToDecimal(american)
		assert.ErrorIs(t, err, ErrInvalidOdds, "american %d", american)
	}
}

func TestDecimalToAmerican(t *testing.T) {
	tests := []struct {
		odds float64
		want int
	}{
		{2.0, 100},
		{2.5, 150},
		{1.5, -200},
		{1.0 + 100.0/110.0, -110},
	}

	for _, tt := range tests {
		got, err := DecimalToAmerican(tt.odds)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "DecimalToAmerican(%v)", tt.odds)
	}

	_, err := DecimalToAmerican(1.0)
	assert.ErrorIs(t, err, ErrInvalidOdds)
}

func TestAmericanToImplied(t *testing.T) {
	tests := []struct {
		name     string
		odds     int
		expected float64
	}{
		{"Even money +100", 100, 0.5},
		{"Even money -100", -100, 0.5},
		{"Favorite -150", -150, 0.6},
		{"Underdog +150", 150, 0.4},
		{"Heavy favorite -300", -300, 0.75},
		{"Big underdog +300", 300, 0.25},
		{"Standard -110", -110, 0.5238},
		{"Zero odds", 0, 0},
		{"Out of range -50", -50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, AmericanToImplied(tt.odds), 0.001)
		})
	}
}
