package ledger

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLStoreAddGet(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	b, err := NewBet(validInput(), placedAt)
	require.NoError(t, err)
	require.NoError(t, store.Add(ctx, b))

	got, err := store.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	_, err = store.Get(ctx, "01HZZZZZZZZZZZZZZZZZZZZZZZ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStoreSettle(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	b, err := NewBet(validInput(), placedAt)
	require.NoError(t, err)
	require.NoError(t, store.Add(ctx, b))

	won, err := Settle(b, StatusWon, placedAt.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, store.Settle(ctx, won))

	got, err := store.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, won, got)

	// A stale pending copy cannot overwrite the stored outcome
	lost, err := Settle(b, StatusLost, placedAt.Add(2*time.Hour))
	require.NoError(t, err)
	assert.ErrorIs(t, store.Settle(ctx, lost), ErrAlreadySettled)

	got, err = store.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusWon, got.Status)
	assert.Equal(t, 30.0, got.ProfitLoss)
}

func TestSQLStoreSettleMissing(t *testing.T) {
	store := openTestStore(t)

	b, err := NewBet(validInput(), placedAt)
	require.NoError(t, err)
	won, err := Settle(b, StatusWon, placedAt)
	require.NoError(t, err)

	assert.ErrorIs(t, store.Settle(context.Background(), won), ErrNotFound)
}

func TestSQLStoreConcurrentSettle(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	b, err := NewBet(validInput(), placedAt)
	require.NoError(t, err)
	require.NoError(t, store.Add(ctx, b))

	outcomes := []Status{StatusWon, StatusLost, StatusVoid, StatusWon, StatusLost}
	errs := make([]error, len(outcomes))

	var wg sync.WaitGroup
	for i, outcome := range outcomes {
		wg.Add(1)
		go func(i int, outcome Status) {
			defer wg.Done()
			settled, err := Settle(b, outcome, placedAt)
			if err != nil {
				errs[i] = err
				return
			}
			errs[i] = store.Settle(ctx, settled)
		}(i, outcome)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadySettled)
	}
	assert.Equal(t, 1, successes)
}

func TestSQLStoreList(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	inputs := []struct {
		sport  string
		market string
		offset time.Duration
	}{
		{"basketball_nba", "moneyline", 0},
		{"basketball_nba", "spread", time.Hour},
		{"americanfootball_nfl", "moneyline", 2 * time.Hour},
	}

	var ids []string
	for _, in := range inputs {
		bi := validInput()
		bi.Sport = in.sport
		bi.Market = in.market
		b, err := NewBet(bi, placedAt.Add(in.offset))
		require.NoError(t, err)
		require.NoError(t, store.Add(ctx, b))
		ids = append(ids, b.ID)
	}

	all, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID, "newest first")
	assert.Equal(t, ids[0], all[2].ID)

	nba, err := store.List(ctx, Filter{Sport: "basketball_nba"})
	require.NoError(t, err)
	assert.Len(t, nba, 2)

	ml, err := store.List(ctx, Filter{Market: "moneyline", Limit: 1})
	require.NoError(t, err)
	require.Len(t, ml, 1)
	assert.Equal(t, ids[2], ml[0].ID)

	recent, err := store.List(ctx, Filter{Since: placedAt.Add(30 * time.Minute)})
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	won, err := store.List(ctx, Filter{Status: StatusWon})
	require.NoError(t, err)
	assert.Empty(t, won)
}

func TestRebind(t *testing.T) {
	pg := &SQLStore{dialect: dialectPostgres}
	assert.Equal(t,
		"UPDATE bets SET status = $1 WHERE id = $2 AND status = 'pending'",
		pg.rebind("UPDATE bets SET status = ? WHERE id = ? AND status = 'pending'"))

	lite := &SQLStore{dialect: dialectSQLite}
	assert.Equal(t, "SELECT ? ", lite.rebind("SELECT ? "))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "", "")
	assert.Error(t, err)
}

func TestOpenCreatesSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	store, err := Open("sqlite", path, "")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening an existing file keeps the schema
	store, err = Open("sqlite", path, "")
	require.NoError(t, err)
	defer store.Close()
	bets, err := store.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, bets)
}
