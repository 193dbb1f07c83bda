package ledger

import (
	"github.com/shopspring/decimal"
)

// Summary is the portfolio view over a set of bets.
type Summary struct {
	Count           int     `json:"count"`
	Pending         int     `json:"pending"`
	Won             int     `json:"won"`
	Lost            int     `json:"lost"`
	Void            int     `json:"void"`
	TotalStaked     float64 `json:"total_staked"`
	SettledStake    float64 `json:"settled_stake"`
	TotalProfitLoss float64 `json:"total_profit_loss"`
	YieldPct        float64 `json:"yield_pct"`
	WinRate         float64 `json:"win_rate"`
}

type tally struct {
	count, pending, won, lost, void int
	staked, settled, pl             decimal.Decimal
}

func (t *tally) add(b Bet) {
	stake := decimal.NewFromFloat(b.Stake)
	t.count++
	t.staked = t.staked.Add(stake)

	switch b.Status {
	case StatusWon:
		t.won++
		t.settled = t.settled.Add(stake)
		t.pl = t.pl.Add(decimal.NewFromFloat(b.ProfitLoss))
	case StatusLost:
		t.lost++
		t.settled = t.settled.Add(stake)
		t.pl = t.pl.Add(decimal.NewFromFloat(b.ProfitLoss))
	case StatusVoid:
		t.void++
	default:
		t.pending++
	}
}

func (t *tally) summary() Summary {
	s := Summary{
		Count:           t.count,
		Pending:         t.pending,
		Won:             t.won,
		Lost:            t.lost,
		Void:            t.void,
		TotalStaked:     t.staked.InexactFloat64(),
		SettledStake:    t.settled.InexactFloat64(),
		TotalProfitLoss: t.pl.InexactFloat64(),
	}
	if !t.settled.IsZero() {
		s.YieldPct = t.pl.Div(t.settled).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	if decided := t.won + t.lost; decided > 0 {
		s.WinRate = float64(t.won) / float64(decided)
	}
	return s
}

// Aggregate folds bets into a Summary in one pass. Pending and void bets count
// toward Count and TotalStaked but not toward P/L, yield or win rate. An empty
// slice yields the zero Summary.
func Aggregate(bets []Bet) Summary {
	var t tally
	for _, b := range bets {
		t.add(b)
	}
	return t.summary()
}

// AggregateBy groups bets by key and aggregates each group.
func AggregateBy(bets []Bet, key func(Bet) string) map[string]Summary {
	groups := make(map[string]*tally)
	for _, b := range bets {
		k := key(b)
		t, ok := groups[k]
		if !ok {
			t = &tally{}
			groups[k] = t
		}
		t.add(b)
	}

	out := make(map[string]Summary, len(groups))
	for k, t := range groups {
		out[k] = t.summary()
	}
	return out
}

// Dimension names a grouping for AggregateBy.
type Dimension string

const (
	BySport  Dimension = "sport"
	ByMarket Dimension = "market"
	ByStatus Dimension = "status"
)

// KeyFunc returns the grouping function for d, or false if d is unknown.
func (d Dimension) KeyFunc() (func(Bet) string, bool) {
	switch d {
	case BySport:
		return func(b Bet) string { return b.Sport }, true
	case ByMarket:
		return func(b Bet) string { return b.Market }, true
	case ByStatus:
		return func(b Bet) string { return string(b.Status) }, true
	}
	return nil, false
}
