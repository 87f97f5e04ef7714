package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter manages the global monotonic sequence number shared by
// snapshots and every event table. Per-table auto-increment IDs can't
// order rows across tables; this counter gives each row one position in a
// single total order, so a snapshot's sequence tells which attempts it
// already reflects.
//
// The mutex serializes within the process; the RETURNING clause makes the
// increment atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// eventRepo implements EventRepo on SQLite with ent's SQL builder.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// insert appends one row to table, stamping the next global sequence and
// the current time ahead of the given columns.
func (r *eventRepo) insert(ctx context.Context, table string, cols []string, vals []any) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	query, args := builder().Insert(table).
		Columns(append([]string{"sequence", "timestamp"}, cols...)...).
		Values(append([]any{seqNum, now()}, vals...)...).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	return nil
}

// selectEvents builds a query over table honoring opts. Results are
// newest first.
func selectEvents(table string, opts QueryOpts, cols ...string) *entsql.Selector {
	sel := builder().
		Select(append([]string{"id", "sequence", "timestamp"}, cols...)...).
		From(entsql.Table(table)).
		OrderBy(entsql.Desc("sequence"))

	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", opts.To.UTC()))
	}
	if opts.LearnerID != "" && table != tableLLMRequests {
		sel.Where(entsql.EQ("learner_id", opts.LearnerID))
	}
	if opts.SessionID != "" && table != tableLLMRequests {
		sel.Where(entsql.EQ("session_id", opts.SessionID))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	return sel
}

// queryEvents runs sel and decodes each row with scan, which receives the
// envelope to fill and returns the payload destinations.
func queryEvents[T any](ctx context.Context, db *sql.DB, sel *entsql.Selector, scan func(*T) []any) ([]Event[T], error) {
	query, args := sel.Query()
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event[T]
	for rows.Next() {
		var ev Event[T]
		dest := append([]any{&ev.ID, &ev.Sequence, &ev.Timestamp}, scan(&ev.Data)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *eventRepo) DeleteLearner(ctx context.Context, learnerID string) error {
	for _, table := range []string{tableAttempts, tableSessions} {
		query, args := builder().Delete(table).
			Where(entsql.EQ("learner_id", learnerID)).
			Query()
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return nil
}
