package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"ev-dashboard/internal/analysis"
)

// EventType identifies a ledger event.
type EventType string

const (
	EventPlaced  EventType = "bet.placed"
	EventSettled EventType = "bet.settled"
)

// Event is emitted after a ledger change has been persisted.
type Event struct {
	Type EventType `json:"type"`
	Bet  Bet       `json:"bet"`
	At   time.Time `json:"at"`
}

// EventSink receives ledger events.
type EventSink interface {
	Publish(ctx context.Context, ev Event) error
}

// MultiSink publishes to every sink and joins their errors.
type MultiSink []EventSink

func (m MultiSink) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Service applies ledger operations against a Store and announces them.
type Service struct {
	store Store
	sink  EventSink
	now   func() time.Time
}

// NewService creates a ledger service. sink may be nil.
func NewService(store Store, sink EventSink) *Service {
	return &Service{store: store, sink: sink, now: time.Now}
}

// Place validates and records a new pending bet.
func (s *Service) Place(ctx context.Context, in BetInput) (Bet, error) {
	b, err := NewBet(in, s.now())
	if err != nil {
		return Bet{}, err
	}
	if err := s.store.Add(ctx, b); err != nil {
		return Bet{}, err
	}

	slog.Info("Bet placed",
		"id", b.ID,
		"selection", b.Selection,
		"odds", b.Odds,
		"stake", b.Stake,
		"edge", fmt.Sprintf("%.2f%%", b.Edge*100),
	)
	s.emit(ctx, EventPlaced, b)
	return b, nil
}

// Settle moves a pending bet to outcome.
func (s *Service) Settle(ctx context.Context, id string, outcome Status) (Bet, error) {
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return Bet{}, err
	}

	settled, err := Settle(cur, outcome, s.now())
	if err != nil {
		return Bet{}, err
	}
	if err := s.store.Settle(ctx, settled); err != nil {
		return Bet{}, err
	}

	slog.Info("Bet settled",
		"id", settled.ID,
		"status", settled.Status,
		"profit_loss", settled.ProfitLoss,
	)
	s.emit(ctx, EventSettled, settled)
	return settled, nil
}

func (s *Service) Get(ctx context.Context, id string) (Bet, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]Bet, error) {
	return s.store.List(ctx, f)
}

// Summary aggregates every bet matching f. Limit is ignored.
func (s *Service) Summary(ctx context.Context, f Filter) (Summary, error) {
	f.Limit = 0
	bets, err := s.store.List(ctx, f)
	if err != nil {
		return Summary{}, err
	}
	return Aggregate(bets), nil
}

// GroupSummary is one row of a per-dimension breakdown.
type GroupSummary struct {
	Key string `json:"key"`
	Summary
}

// SummaryBy aggregates bets matching f grouped by dimension, sorted by key.
func (s *Service) SummaryBy(ctx context.Context, f Filter, d Dimension) ([]GroupSummary, error) {
	key, ok := d.KeyFunc()
	if !ok {
		return nil, fmt.Errorf("%w: unknown dimension %q", analysis.ErrInvalidParameter, d)
	}

	f.Limit = 0
	bets, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}

	groups := AggregateBy(bets, key)
	out := make([]GroupSummary, 0, len(groups))
	for k, sum := range groups {
		out = append(out, GroupSummary{Key: k, Summary: sum})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *Service) emit(ctx context.Context, t EventType, b Bet) {
	if s.sink == nil {
		return
	}
	ev := Event{Type: t, Bet: b, At: s.now().UTC()}
	if err := s.sink.Publish(ctx, ev); err != nil {
		slog.Warn("Failed to publish ledger event", "type", t, "id", b.ID, "error", err)
	}
}
