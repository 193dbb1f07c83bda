package odds

import (
	"errors"
	"fmt"
	"math"

	"ev-dashboard/internal/mathutil"
)

// ErrInvalidOdds is returned for decimal odds that do not pay out (<= 1.0)
// or for American odds of zero.
var ErrInvalidOdds = errors.New("invalid odds")

// ValidateDecimal checks that decimal odds describe a real payout multiplier.
func ValidateDecimal(odds float64) error {
	if !mathutil.IsFinite(odds) || odds <= 1.0 {
		return fmt.Errorf("%w: decimal odds must be greater than 1.0, got %v", ErrInvalidOdds, odds)
	}
	return nil
}

// ImpliedProbability converts decimal odds to the market-implied probability.
// Example: 2.50 → 0.40
func ImpliedProbability(odds float64) (float64, error) {
	if err := ValidateDecimal(odds); err != nil {
		return 0, err
	}
	return 1 / odds, nil
}

// AmericanToDecimal converts American odds to decimal odds
// Example: -150 → 1.6667, +150 → 2.50
func AmericanToDecimal(american int) (float64, error) {
	switch {
	case american > -100 && american < 100:
		return 0, fmt.Errorf("%w: American odds must be <= -100 or >= +100, got %d", ErrInvalidOdds, american)
	case american > 0:
		return float64(american)/100.0 + 1.0, nil
	default:
		return 100.0/math.Abs(float64(american)) + 1.0, nil
	}
}

// DecimalToAmerican converts decimal odds to American odds, rounded to the
// nearest integer. Even money (2.0) is reported as +100.
func DecimalToAmerican(odds float64) (int, error) {
	if err := ValidateDecimal(odds); err != nil {
		return 0, err
	}
	if odds >= 2.0 {
		return int(math.Round((odds - 1.0) * 100)), nil
	}
	return int(math.Round(-100.0 / (odds - 1.0))), nil
}

// AmericanToImplied converts American odds to implied probability
// Example: -150 → 0.6 (60%), +150 → 0.4 (40%)
func AmericanToImplied(odds int) float64 {
	if odds > -100 && odds < 100 {
		return 0
	}

	if odds > 0 {
		// Underdog: probability = 100 / (odds + 100)
		return 100.0 / (float64(odds) + 100.0)
	}
	// Favorite: probability = |odds| / (|odds| + 100)
	return math.Abs(float64(odds)) / (math.Abs(float64(odds)) + 100.0)
}
