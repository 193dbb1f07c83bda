package analysis

import (
	"fmt"

	"ev-dashboard/internal/mathutil"
)

// Recommendation is the stake sizing result for a single proposed bet.
type Recommendation struct {
	Policy  PolicyKind `json:"policy"`
	Raw     float64    `json:"raw_stake"`
	Amount  float64    `json:"stake"`
	Clamped bool       `json:"clamped"`

	// Set for FractionalKelly only
	Edge  *Edge    `json:"edge,omitempty"`
	Kelly *float64 `json:"kelly,omitempty"`
}

// RecommendStake sizes a stake for one bet. The bankroll is a snapshot passed
// by the caller and is never modified.
//
// The result is always clamped to [0, bankroll]: Kelly goes negative without
// an edge and can exceed the bankroll on mis-estimated probabilities.
// Fixed and Percentage ignore probability and odds.
func RecommendStake(policy Policy, probability, decimalOdds, bankroll float64) (Recommendation, error) {
	if policy == nil {
		return Recommendation{}, fmt.Errorf("%w: staking policy is required", ErrMissingParameter)
	}
	if !mathutil.IsFinite(bankroll) || bankroll < 0 {
		return Recommendation{}, fmt.Errorf("%w: bankroll must be non-negative, got %v", ErrInvalidParameter, bankroll)
	}

	raw, edge, kelly, err := policy.rawStake(probability, decimalOdds, bankroll)
	if err != nil {
		return Recommendation{}, err
	}

	amount := mathutil.Clamp(raw, 0, bankroll)
	return Recommendation{
		Policy:  policy.Kind(),
		Raw:     raw,
		Amount:  amount,
		Clamped: amount != raw,
		Edge:    edge,
		Kelly:   kelly,
	}, nil
}

func (f Fixed) validate() error {
	if !mathutil.IsFinite(f.Amount) || f.Amount < 0 {
		return fmt.Errorf("%w: fixed amount must be non-negative, got %v", ErrInvalidParameter, f.Amount)
	}
	return nil
}

func (f Fixed) rawStake(_, _, _ float64) (float64, *Edge, *float64, error) {
	if err := f.validate(); err != nil {
		return 0, nil, nil, err
	}
	return f.Amount, nil, nil, nil
}

func (p Percentage) validate() error {
	if !mathutil.IsFinite(p.Pct) || p.Pct < 0 {
		return fmt.Errorf("%w: percentage must be non-negative, got %v", ErrInvalidParameter, p.Pct)
	}
	return nil
}

func (p Percentage) rawStake(_, _, bankroll float64) (float64, *Edge, *float64, error) {
	if err := p.validate(); err != nil {
		return 0, nil, nil, err
	}
	return bankroll * p.Pct / 100, nil, nil, nil
}

func (k FractionalKelly) validate() error {
	if !mathutil.IsFinite(k.Fraction) || k.Fraction <= 0 || k.Fraction > 1 {
		return fmt.Errorf("%w: kelly fraction must be within (0, 1], got %v", ErrInvalidParameter, k.Fraction)
	}
	return nil
}

func (k FractionalKelly) rawStake(probability, decimalOdds, bankroll float64) (float64, *Edge, *float64, error) {
	if err := k.validate(); err != nil {
		return 0, nil, nil, err
	}

	edge, err := ComputeEdge(probability, decimalOdds)
	if err != nil {
		return 0, nil, nil, err
	}
	kelly := edge.EV / (decimalOdds - 1)

	return bankroll * k.Fraction * kelly, &edge, &kelly, nil
}
