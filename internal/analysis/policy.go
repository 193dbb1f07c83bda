package analysis

import (
	"fmt"
	"strings"
)

// PolicyKind names a staking policy variant.
type PolicyKind string

const (
	KindFixed           PolicyKind = "fixed"
	KindPercentage      PolicyKind = "percentage"
	KindFractionalKelly PolicyKind = "kelly"
)

// Policy is a staking policy. The set of implementations is closed:
// Fixed, Percentage and FractionalKelly.
type Policy interface {
	Kind() PolicyKind
	validate() error
	rawStake(probability, decimalOdds, bankroll float64) (raw float64, edge *Edge, kelly *float64, err error)
}

// Fixed stakes a constant amount regardless of bankroll.
type Fixed struct {
	Amount float64
}

// Percentage stakes Pct percent of the current bankroll (2 = 2%).
type Percentage struct {
	Pct float64
}

// FractionalKelly stakes Fraction of the full Kelly stake (0.25 = quarter Kelly).
type FractionalKelly struct {
	Fraction float64
}

func (Fixed) Kind() PolicyKind           { return KindFixed }
func (Percentage) Kind() PolicyKind      { return KindPercentage }
func (FractionalKelly) Kind() PolicyKind { return KindFractionalKelly }

func (f Fixed) String() string           { return fmt.Sprintf("fixed(%.2f)", f.Amount) }
func (p Percentage) String() string      { return fmt.Sprintf("percentage(%g%%)", p.Pct) }
func (k FractionalKelly) String() string { return fmt.Sprintf("kelly(%g)", k.Fraction) }

// PolicyConfig is the stored/transport form of a policy: a kind plus the
// optional parameters of every variant. Only the field the kind needs is read.
type PolicyConfig struct {
	Kind          PolicyKind `json:"kind" yaml:"kind"`
	Amount        *float64   `json:"amount,omitempty" yaml:"amount,omitempty"`
	Percent       *float64   `json:"percent,omitempty" yaml:"percent,omitempty"`
	KellyFraction *float64   `json:"kelly_fraction,omitempty" yaml:"kelly_fraction,omitempty"`
}

// Policy converts the config to its variant. A kind without its parameter is
// ErrMissingParameter; it is never defaulted.
func (c PolicyConfig) Policy() (Policy, error) {
	switch PolicyKind(strings.ToLower(string(c.Kind))) {
	case KindFixed:
		if c.Amount == nil {
			return nil, fmt.Errorf("%w: fixed policy requires amount", ErrMissingParameter)
		}
		return Fixed{Amount: *c.Amount}, nil
	case KindPercentage:
		if c.Percent == nil {
			return nil, fmt.Errorf("%w: percentage policy requires percent", ErrMissingParameter)
		}
		return Percentage{Pct: *c.Percent}, nil
	case KindFractionalKelly:
		if c.KellyFraction == nil {
			return nil, fmt.Errorf("%w: kelly policy requires kelly_fraction", ErrMissingParameter)
		}
		return FractionalKelly{Fraction: *c.KellyFraction}, nil
	case "":
		return nil, fmt.Errorf("%w: policy kind is required", ErrMissingParameter)
	default:
		return nil, fmt.Errorf("%w: unknown policy kind %q", ErrInvalidParameter, c.Kind)
	}
}

// ValidatePolicy checks the variant's parameters without sizing a stake.
func ValidatePolicy(p Policy) error {
	if p == nil {
		return fmt.Errorf("%w: staking policy is required", ErrMissingParameter)
	}
	return p.validate()
}

// ConfigFor returns the stored form of a policy.
func ConfigFor(p Policy) PolicyConfig {
	switch v := p.(type) {
	case Fixed:
		return PolicyConfig{Kind: KindFixed, Amount: &v.Amount}
	case Percentage:
		return PolicyConfig{Kind: KindPercentage, Percent: &v.Pct}
	case FractionalKelly:
		return PolicyConfig{Kind: KindFractionalKelly, KellyFraction: &v.Fraction}
	}
	return PolicyConfig{}
}
