package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ev-dashboard/internal/analysis"
)

var (
	ErrAlreadySettled = errors.New("bet already settled")
	ErrInvalidOutcome = errors.New("invalid settlement outcome")
	ErrNotFound       = errors.New("bet not found")
)

// Status is the lifecycle state of a bet. Pending moves to exactly one of the
// terminal states and never changes again.
type Status string

const (
	StatusPending Status = "pending"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
	StatusVoid    Status = "void"
)

// ParseStatus accepts the status names case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusWon, StatusLost, StatusVoid:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidOutcome, s)
}

// IsTerminal reports whether s is a settled state.
func (s Status) IsTerminal() bool {
	return s == StatusWon || s == StatusLost || s == StatusVoid
}

// Bet is a confirmed entry in the bet ledger.
type Bet struct {
	ID          string     `json:"id"`
	Sport       string     `json:"sport"`
	Match       string     `json:"match"`
	Market      string     `json:"market"`
	Selection   string     `json:"selection"`
	Odds        float64    `json:"odds"`
	Stake       float64    `json:"stake"`
	Probability float64    `json:"probability"`
	Edge        float64    `json:"edge"`
	Status      Status     `json:"status"`
	ProfitLoss  float64    `json:"profit_loss"`
	PlacedAt    time.Time  `json:"placed_at"`
	SettledAt   *time.Time `json:"settled_at,omitempty"`
}

// BetInput is what a user confirms when picking a bet.
type BetInput struct {
	Sport       string   `json:"sport"`
	Match       string   `json:"match"`
	Market      string   `json:"market"`
	Selection   string   `json:"selection"`
	Odds        float64  `json:"odds"`
	Stake       float64  `json:"stake"`
	Probability *float64 `json:"probability"`
}

// NewBet validates the input and builds a pending bet. The edge is derived
// from (probability, odds) and stored alongside them for reporting.
func NewBet(in BetInput, now time.Time) (Bet, error) {
	if in.Probability == nil {
		return Bet{}, fmt.Errorf("%w: probability is required", analysis.ErrMissingParameter)
	}
	edge, err := analysis.ComputeEdge(*in.Probability, in.Odds)
	if err != nil {
		return Bet{}, err
	}
	if !(in.Stake > 0) {
		return Bet{}, fmt.Errorf("%w: stake must be positive, got %v", analysis.ErrInvalidParameter, in.Stake)
	}
	if strings.TrimSpace(in.Selection) == "" {
		return Bet{}, fmt.Errorf("%w: selection is required", analysis.ErrInvalidParameter)
	}

	return Bet{
		ID:          NewID(now),
		Sport:       strings.TrimSpace(in.Sport),
		Match:       strings.TrimSpace(in.Match),
		Market:      strings.TrimSpace(in.Market),
		Selection:   strings.TrimSpace(in.Selection),
		Odds:        in.Odds,
		Stake:       in.Stake,
		Probability: *in.Probability,
		Edge:        edge.EV,
		Status:      StatusPending,
		PlacedAt:    now.UTC().Truncate(time.Millisecond),
	}, nil
}

// ProfitLossFor returns the P/L of a stake at decimal odds for a status:
// stake*(odds-1) won, -stake lost, 0 void or pending.
func ProfitLossFor(stake, odds float64, status Status) float64 {
	s := decimal.NewFromFloat(stake)
	switch status {
	case StatusWon:
		return s.Mul(decimal.NewFromFloat(odds).Sub(decimal.NewFromInt(1))).InexactFloat64()
	case StatusLost:
		return s.Neg().InexactFloat64()
	default:
		return 0
	}
}

// Settle returns a copy of b moved to a terminal outcome. b itself is not
// modified. A bet that is no longer pending returns ErrAlreadySettled.
func Settle(b Bet, outcome Status, at time.Time) (Bet, error) {
	if b.Status != StatusPending {
		return Bet{}, fmt.Errorf("%w: bet %s is %s", ErrAlreadySettled, b.ID, b.Status)
	}
	if !outcome.IsTerminal() {
		return Bet{}, fmt.Errorf("%w: cannot settle to %q", ErrInvalidOutcome, outcome)
	}

	settledAt := at.UTC().Truncate(time.Millisecond)
	b.Status = outcome
	b.ProfitLoss = ProfitLossFor(b.Stake, b.Odds, outcome)
	b.SettledAt = &settledAt
	return b, nil
}
