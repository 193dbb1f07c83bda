package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ev-dashboard/internal/analysis"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recordingSink) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recordingSink) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []EventType
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func newTestService(t *testing.T, sink EventSink) *Service {
	t.Helper()
	svc := NewService(openTestStore(t), sink)
	clock := placedAt
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc
}

func TestServicePlaceAndSettle(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	svc := newTestService(t, sink)

	b, err := svc.Place(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, b.Status)

	settled, err := svc.Settle(ctx, b.ID, StatusWon)
	require.NoError(t, err)
	assert.Equal(t, 30.0, settled.ProfitLoss)

	_, err = svc.Settle(ctx, b.ID, StatusLost)
	assert.ErrorIs(t, err, ErrAlreadySettled)

	_, err = svc.Settle(ctx, "missing", StatusWon)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []EventType{EventPlaced, EventSettled}, sink.types())
}

func TestServicePlaceRejectsInvalid(t *testing.T) {
	sink := &recordingSink{}
	svc := newTestService(t, sink)

	in := validInput()
	in.Odds = 0.9
	_, err := svc.Place(context.Background(), in)
	assert.ErrorIs(t, err, analysis.ErrInvalidOdds)
	assert.Empty(t, sink.types())

	bets, err := svc.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, bets)
}

func TestServiceSinkErrorsAreNotReturned(t *testing.T) {
	sink := &recordingSink{err: errors.New("redis down")}
	svc := newTestService(t, sink)

	_, err := svc.Place(context.Background(), validInput())
	assert.NoError(t, err)
}

func TestServiceSummary(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	place := func(sport string, stake float64) Bet {
		in := validInput()
		in.Sport = sport
		in.Stake = stake
		b, err := svc.Place(ctx, in)
		require.NoError(t, err)
		return b
	}

	a := place("nba", 25)
	b := place("nba", 10)
	c := place("nfl", 40)
	place("nfl", 5)

	_, err := svc.Settle(ctx, a.ID, StatusWon)
	require.NoError(t, err)
	_, err = svc.Settle(ctx, b.ID, StatusLost)
	require.NoError(t, err)
	_, err = svc.Settle(ctx, c.ID, StatusVoid)
	require.NoError(t, err)

	sum, err := svc.Summary(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Count)
	assert.InDelta(t, 20.0, sum.TotalProfitLoss, 1e-9)
	assert.InDelta(t, 0.5, sum.WinRate, 1e-12)

	groups, err := svc.SummaryBy(ctx, Filter{}, BySport)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "nba", groups[0].Key)
	assert.InDelta(t, 20.0, groups[0].TotalProfitLoss, 1e-9)
	assert.Equal(t, "nfl", groups[1].Key)
	assert.Equal(t, 1, groups[1].Void)
	assert.Equal(t, 1, groups[1].Pending)

	_, err = svc.SummaryBy(ctx, Filter{}, Dimension("book"))
	assert.ErrorIs(t, err, analysis.ErrInvalidParameter)
}

func TestMultiSink(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{err: errors.New("boom")}

	err := MultiSink{a, nil, b}.Publish(context.Background(), Event{Type: EventPlaced})
	assert.Error(t, err)
	assert.Len(t, a.types(), 1)
	assert.Len(t, b.types(), 1)
}
