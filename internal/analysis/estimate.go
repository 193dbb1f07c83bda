package analysis

import (
	"fmt"
	"math"

	"ev-dashboard/internal/mathutil"
)

// Model-based probability estimates. These are one of several external sources
// of the probability fed to ComputeEdge; the engine never derives p itself.

// ProbabilityOver returns P(X > line) for X ~ Normal(mean, stddev).
// Suited to margins and high-scoring totals.
func ProbabilityOver(mean, stddev, line float64) (float64, error) {
	if !mathutil.IsFinite(mean) || !mathutil.IsFinite(line) {
		return 0, fmt.Errorf("%w: mean and line must be finite", ErrInvalidParameter)
	}
	if !mathutil.IsFinite(stddev) || stddev <= 0 {
		return 0, fmt.Errorf("%w: stddev must be positive, got %v", ErrInvalidParameter, stddev)
	}
	z := (line - mean) / stddev
	return 1 - mathutil.NormalCDF(z), nil
}

// ProbabilityUnder returns P(X < line) for X ~ Normal(mean, stddev).
func ProbabilityUnder(mean, stddev, line float64) (float64, error) {
	over, err := ProbabilityOver(mean, stddev, line)
	if err != nil {
		return 0, err
	}
	return 1 - over, nil
}

// MaxPoissonLambda caps the Poisson mean; count markets sit far below it.
const MaxPoissonLambda = 1e6

// PoissonOver returns P(X > line) for a count X ~ Poisson(lambda), e.g. goals
// over 2.5. Whole-number lines push on equality; the push is not counted.
func PoissonOver(lambda, line float64) (float64, error) {
	if err := validatePoisson(lambda, line); err != nil {
		return 0, err
	}
	if line > mathutil.PoissonTailBound(lambda) {
		return 0, nil
	}
	k := int(math.Floor(line)) + 1
	return mathutil.PoissonCDFOver(k, lambda), nil
}

// PoissonUnder returns P(X < line) for X ~ Poisson(lambda). For a whole-number
// line this is P(X <= line-1), so the push is excluded from both sides.
func PoissonUnder(lambda, line float64) (float64, error) {
	if err := validatePoisson(lambda, line); err != nil {
		return 0, err
	}
	if line > mathutil.PoissonTailBound(lambda) {
		return 1, nil
	}
	k := int(math.Ceil(line))
	return 1 - mathutil.PoissonCDFOver(k, lambda), nil
}

// PoissonPush returns P(X == line), which is zero unless line is a whole number.
func PoissonPush(lambda, line float64) (float64, error) {
	if err := validatePoisson(lambda, line); err != nil {
		return 0, err
	}
	if line != math.Floor(line) || line > mathutil.PoissonTailBound(lambda) {
		return 0, nil
	}
	return mathutil.PoissonPMF(int(line), lambda), nil
}

func validatePoisson(lambda, line float64) error {
	if !mathutil.IsFinite(lambda) || lambda <= 0 || lambda > MaxPoissonLambda {
		return fmt.Errorf("%w: lambda must be in (0, %g], got %v", ErrInvalidParameter, MaxPoissonLambda, lambda)
	}
	if !mathutil.IsFinite(line) || line < 0 {
		return fmt.Errorf("%w: line must be non-negative, got %v", ErrInvalidParameter, line)
	}
	return nil
}
