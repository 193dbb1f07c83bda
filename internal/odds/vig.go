package odds

import (
	"fmt"
	"math"
)

// Overround returns the bookmaker margin of a market quoted in decimal odds:
// the sum of implied probabilities minus one. 1.91/1.91 → ~0.047.
func Overround(odds ...float64) (float64, error) {
	if len(odds) < 2 {
		return 0, fmt.Errorf("%w: a market needs at least two outcomes, got %d", ErrInvalidOdds, len(odds))
	}
	total := 0.0
	for _, o := range odds {
		p, err := ImpliedProbability(o)
		if err != nil {
			return 0, err
		}
		total += p
	}
	return total - 1, nil
}

// FairProbabilities removes the vig from a market quoted in decimal odds
// and returns probabilities that sum to 1.0.
//
// Method: Multiplicative vig removal (proportional)
// fair_i = implied_i / Σ implied
func FairProbabilities(odds ...float64) ([]float64, error) {
	if len(odds) < 2 {
		return nil, fmt.Errorf("%w: a market needs at least two outcomes, got %d", ErrInvalidOdds, len(odds))
	}

	implied := make([]float64, len(odds))
	total := 0.0
	for i, o := range odds {
		p, err := ImpliedProbability(o)
		if err != nil {
			return nil, err
		}
		implied[i] = p
		total += p
	}

	for i := range implied {
		implied[i] /= total
	}
	return implied, nil
}

// FairProbabilitiesPower removes vig from a two-way market using the Power method.
// This accounts for the favorite-longshot bias: longshots are systematically overbet.
// Finds k such that p1^k + p2^k = 1, then:
// - fair1 = p1^k
// - fair2 = p2^k
// This deflates longshot probabilities more than favorites.
func FairProbabilitiesPower(oddsA, oddsB float64) (float64, float64, error) {
	impliedA, err := ImpliedProbability(oddsA)
	if err != nil {
		return 0, 0, err
	}
	impliedB, err := ImpliedProbability(oddsB)
	if err != nil {
		return 0, 0, err
	}

	// Already fair
	if math.Abs(impliedA+impliedB-1.0) < 1e-9 {
		return impliedA, impliedB, nil
	}

	k := findPowerExponent(impliedA, impliedB)
	return math.Pow(impliedA, k), math.Pow(impliedB, k), nil
}

// findPowerExponent finds k such that p1^k + p2^k = 1 using bisection search
// For implied probabilities (0 < p < 1), higher k reduces p^k
// So for overround markets (sum > 1), k will be > 1 to reduce the sum
// For underround markets (sum < 1), k will be < 1 to increase the sum
func findPowerExponent(p1, p2 float64) float64 {
	const (
		tolerance = 1e-9
		maxIters  = 100
	)

	low, high := 0.01, 10.0

	for i := 0; i < maxIters; i++ {
		mid := (low + high) / 2
		currentSum := math.Pow(p1, mid) + math.Pow(p2, mid)

		if math.Abs(currentSum-1.0) < tolerance {
			return mid
		}

		if currentSum > 1 {
			low = mid
		} else {
			high = mid
		}
	}

	return (low + high) / 2
}
