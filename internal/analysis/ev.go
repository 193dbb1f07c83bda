package analysis

import (
	"fmt"

	"ev-dashboard/internal/mathutil"
	"ev-dashboard/internal/odds"
)

// Verdict classifies an edge so callers don't re-derive the threshold.
type Verdict string

const (
	ValueBet Verdict = "value"
	NoValue  Verdict = "no_value"
)

// Edge is the expected value of a unit stake at the given odds, given an
// estimated probability of the outcome.
type Edge struct {
	Probability float64 `json:"probability"`
	Odds        float64 `json:"odds"`
	Implied     float64 `json:"implied_probability"`
	EV          float64 `json:"ev"`
	Verdict     Verdict `json:"verdict"`
}

// IsValue reports whether the bet is statistically favorable.
func (e Edge) IsValue() bool {
	return e.Verdict == ValueBet
}

// ValidateProbability checks that p is a probability.
func ValidateProbability(p float64) error {
	if !mathutil.IsFinite(p) || p < 0 || p > 1 {
		return fmt.Errorf("%w: probability must be within [0, 1], got %v", ErrInvalidProbability, p)
	}
	return nil
}

// ComputeEdge calculates the expected value of a bet
// EV = p * odds - 1
// Positive EV means the estimated probability beats the market's 1/odds.
func ComputeEdge(probability, decimalOdds float64) (Edge, error) {
	if err := ValidateProbability(probability); err != nil {
		return Edge{}, err
	}
	implied, err := odds.ImpliedProbability(decimalOdds)
	if err != nil {
		return Edge{}, err
	}

	ev := probability*decimalOdds - 1
	verdict := NoValue
	if ev > 0 {
		verdict = ValueBet
	}

	return Edge{
		Probability: probability,
		Odds:        decimalOdds,
		Implied:     implied,
		EV:          ev,
		Verdict:     verdict,
	}, nil
}
