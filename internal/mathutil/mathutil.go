package mathutil

import "math"

// NormalCDF calculates the cumulative distribution function of the standard normal distribution.
// P(Z <= z) where Z ~ N(0,1)
func NormalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

// PoissonPMF calculates P(X = k) for a Poisson distribution with mean lambda.
func PoissonPMF(k int, lambda float64) float64 {
	if k < 0 || lambda <= 0 {
		return 0
	}
	// Log space avoids overflow for large k
	lgamma, _ := math.Lgamma(float64(k) + 1)
	return math.Exp(-lambda + float64(k)*math.Log(lambda) - lgamma)
}

// PoissonTailBound returns a count above which P(X >= count) is negligible
// (far below 1e-12) for a Poisson distribution with mean lambda.
func PoissonTailBound(lambda float64) float64 {
	return lambda + 40*math.Sqrt(lambda) + 40
}

// PoissonCDFOver calculates P(X >= k) for a Poisson distribution with mean lambda.
// Runs in O(k) and returns 0 for k beyond PoissonTailBound.
func PoissonCDFOver(k int, lambda float64) float64 {
	if lambda <= 0 {
		return 0
	}
	if k <= 0 {
		return 1
	}
	if float64(k) > PoissonTailBound(lambda) {
		return 0
	}

	// pmf(i+1) = pmf(i) * lambda/(i+1), accumulated in log space so large
	// lambda does not underflow exp(-lambda)
	logPMF := -lambda
	logLambda := math.Log(lambda)
	sum := 0.0
	for i := 0; i < k; i++ {
		sum += math.Exp(logPMF)
		logPMF += logLambda - math.Log(float64(i+1))
	}
	return math.Max(0, 1-sum)
}

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(x, hi))
}

// IsFinite reports whether x is neither NaN nor an infinity.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
