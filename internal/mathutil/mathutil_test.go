package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalCDF(t *testing.T) {
	tests := []struct {
		z        float64
		expected float64
	}{
		{0, 0.5},
		{1, 0.8413},
		{-1, 0.1587},
		{2, 0.9772},
		{-2, 0.0228},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expected, NormalCDF(tt.z), 0.001, "NormalCDF(%.1f)", tt.z)
	}
}

func TestPoissonPMF(t *testing.T) {
	// lambda=2: P(0)=e^-2, P(1)=2e^-2, P(2)=2e^-2
	assert.InDelta(t, math.Exp(-2), PoissonPMF(0, 2), 1e-12)
	assert.InDelta(t, 2*math.Exp(-2), PoissonPMF(1, 2), 1e-12)
	assert.InDelta(t, 2*math.Exp(-2), PoissonPMF(2, 2), 1e-12)

	assert.Zero(t, PoissonPMF(-1, 2))
	assert.Zero(t, PoissonPMF(1, 0))
}

func TestPoissonCDFOver(t *testing.T) {
	// P(X >= 3 | lambda=2.5) = 1 - e^-2.5 (1 + 2.5 + 3.125)
	want := 1 - math.Exp(-2.5)*(1+2.5+3.125)
	assert.InDelta(t, want, PoissonCDFOver(3, 2.5), 1e-12)

	assert.Equal(t, 1.0, PoissonCDFOver(0, 2.5))
	assert.Zero(t, PoissonCDFOver(3, 0))
}

func TestPoissonCDFOverMatchesPMFSum(t *testing.T) {
	for _, lambda := range []float64{0.5, 2.7, 30, 900} {
		k := int(lambda) + 2
		sum := 0.0
		for i := 0; i < k; i++ {
			sum += PoissonPMF(i, lambda)
		}
		assert.InDelta(t, 1-sum, PoissonCDFOver(k, lambda), 1e-9, "lambda %v", lambda)
	}
}

func TestPoissonCDFOverBeyondTail(t *testing.T) {
	assert.Zero(t, PoissonCDFOver(1_000_000, 2.7))
	assert.Zero(t, PoissonCDFOver(math.MaxInt, 2.7))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-5, 0, 10))
	assert.Equal(t, 10.0, Clamp(15, 0, 10))
	assert.Equal(t, 7.5, Clamp(7.5, 0, 10))
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(1.5))
	assert.False(t, IsFinite(math.NaN()))
	assert.False(t, IsFinite(math.Inf(1)))
	assert.False(t, IsFinite(math.Inf(-1)))
}
