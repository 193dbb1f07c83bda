package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Sport  string
	Market string
	Status Status
	Since  time.Time
	Limit  int
}

// Store persists bets.
type Store interface {
	Add(ctx context.Context, b Bet) error
	Get(ctx context.Context, id string) (Bet, error)
	List(ctx context.Context, f Filter) ([]Bet, error)
	// Settle writes a settled bet only if the stored row is still pending.
	Settle(ctx context.Context, b Bet) error
	Close() error
}

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// SQLStore is a Store backed by SQLite or Postgres.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// OpenSQLite opens (creating if needed) a SQLite ledger at path.
func OpenSQLite(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	return newSQLStore(db, dialectSQLite)
}

// OpenPostgres connects to a Postgres ledger.
func OpenPostgres(dsn string) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return newSQLStore(db, dialectPostgres)
}

// Open opens the ledger for driver "sqlite" (at path) or "postgres" (at dsn).
func Open(driver, path, dsn string) (*SQLStore, error) {
	switch driver {
	case "", "sqlite", "sqlite3":
		return OpenSQLite(path)
	case "postgres", "postgresql":
		return OpenPostgres(dsn)
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

func newSQLStore(db *sql.DB, d dialect) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: d}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS bets (
	id TEXT PRIMARY KEY,
	sport TEXT NOT NULL,
	match_name TEXT NOT NULL,
	market TEXT NOT NULL,
	selection TEXT NOT NULL,
	odds REAL NOT NULL,
	stake REAL NOT NULL,
	probability REAL NOT NULL,
	edge REAL NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	profit_loss REAL NOT NULL DEFAULT 0,
	placed_at_ms INTEGER NOT NULL,
	settled_at_ms INTEGER
);

CREATE INDEX IF NOT EXISTS idx_bets_placed ON bets(placed_at_ms);
CREATE INDEX IF NOT EXISTS idx_bets_status ON bets(status);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS bets (
	id TEXT PRIMARY KEY,
	sport TEXT NOT NULL,
	match_name TEXT NOT NULL,
	market TEXT NOT NULL,
	selection TEXT NOT NULL,
	odds DOUBLE PRECISION NOT NULL,
	stake DOUBLE PRECISION NOT NULL,
	probability DOUBLE PRECISION NOT NULL,
	edge DOUBLE PRECISION NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	profit_loss DOUBLE PRECISION NOT NULL DEFAULT 0,
	placed_at_ms BIGINT NOT NULL,
	settled_at_ms BIGINT
);

CREATE INDEX IF NOT EXISTS idx_bets_placed ON bets(placed_at_ms);
CREATE INDEX IF NOT EXISTS idx_bets_status ON bets(status);
`

func (s *SQLStore) createTables() error {
	schema := sqliteSchema
	if s.dialect == dialectPostgres {
		schema = postgresSchema
	}
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $1..$n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const betColumns = `id, sport, match_name, market, selection, odds, stake, probability, edge,
	status, profit_loss, placed_at_ms, settled_at_ms`

// Add inserts a new bet
func (s *SQLStore) Add(ctx context.Context, b Bet) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO bets (`+betColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), b.ID, b.Sport, b.Match, b.Market, b.Selection, b.Odds, b.Stake, b.Probability, b.Edge,
		string(b.Status), b.ProfitLoss, b.PlacedAt.UnixMilli(), nullMillis(b.SettledAt))
	if err != nil {
		return fmt.Errorf("inserting bet: %w", err)
	}
	return nil
}

// Get retrieves a bet by ID
func (s *SQLStore) Get(ctx context.Context, id string) (Bet, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT `+betColumns+`
		FROM bets WHERE id = ?
	`), id)

	b, err := scanBet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Bet{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Bet{}, fmt.Errorf("scanning bet: %w", err)
	}
	return b, nil
}

// List returns bets matching f, newest first.
func (s *SQLStore) List(ctx context.Context, f Filter) ([]Bet, error) {
	var (
		where []string
		args  []any
	)
	if f.Sport != "" {
		where = append(where, "sport = ?")
		args = append(args, f.Sport)
	}
	if f.Market != "" {
		where = append(where, "market = ?")
		args = append(args, f.Market)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if !f.Since.IsZero() {
		where = append(where, "placed_at_ms >= ?")
		args = append(args, f.Since.UnixMilli())
	}

	query := `SELECT ` + betColumns + ` FROM bets`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY placed_at_ms DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying bets: %w", err)
	}
	defer rows.Close()

	var bets []Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bet row: %w", err)
		}
		bets = append(bets, b)
	}
	return bets, rows.Err()
}

// Settle records the outcome of b. The update only matches a pending row, so
// two concurrent settlements of the same bet cannot both succeed.
func (s *SQLStore) Settle(ctx context.Context, b Bet) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE bets SET status = ?, profit_loss = ?, settled_at_ms = ?
		WHERE id = ? AND status = 'pending'
	`), string(b.Status), b.ProfitLoss, nullMillis(b.SettledAt), b.ID)
	if err != nil {
		return fmt.Errorf("settling bet: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("settling bet: %w", err)
	}
	if n == 1 {
		return nil
	}

	cur, err := s.Get(ctx, b.ID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: bet %s is %s", ErrAlreadySettled, cur.ID, cur.Status)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBet(sc scanner) (Bet, error) {
	var (
		b         Bet
		status    string
		placedMs  int64
		settledMs sql.NullInt64
	)
	err := sc.Scan(&b.ID, &b.Sport, &b.Match, &b.Market, &b.Selection, &b.Odds, &b.Stake,
		&b.Probability, &b.Edge, &status, &b.ProfitLoss, &placedMs, &settledMs)
	if err != nil {
		return Bet{}, err
	}

	b.Status = Status(status)
	b.PlacedAt = time.UnixMilli(placedMs).UTC()
	if settledMs.Valid {
		t := time.UnixMilli(settledMs.Int64).UTC()
		b.SettledAt = &t
	}
	return b, nil
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}
