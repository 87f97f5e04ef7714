package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Backend is a store that hands out the repositories the scheduler and the
// CLI need. Both *Store (SQLite) and *PostgresStore implement it.
type Backend interface {
	SnapshotRepo() SnapshotRepo
	EventRepo() EventRepo
	Close() error
}

const (
	eventKindAttempt = "attempt"
	eventKindSession = "session"
	eventKindLLM     = "llm_request"
)

const postgresSchema = `
CREATE SEQUENCE IF NOT EXISTS mathlearn_global_seq;

CREATE TABLE IF NOT EXISTS learner_snapshots (
	id         BIGSERIAL PRIMARY KEY,
	learner_id TEXT NOT NULL,
	sequence   BIGINT NOT NULL UNIQUE,
	taken_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	version    INTEGER NOT NULL DEFAULT 1,
	data       JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS learner_snapshots_learner_seq ON learner_snapshots (learner_id, sequence DESC);

CREATE TABLE IF NOT EXISTS learner_events (
	id         BIGSERIAL PRIMARY KEY,
	sequence   BIGINT NOT NULL UNIQUE DEFAULT nextval('mathlearn_global_seq'),
	kind       TEXT NOT NULL,
	learner_id TEXT NOT NULL DEFAULT '',
	session_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	payload    JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS learner_events_kind_seq ON learner_events (kind, sequence DESC);
CREATE INDEX IF NOT EXISTS learner_events_learner ON learner_events (learner_id);
`

// ParseURL validates a PostgreSQL connection URL.
func ParseURL(url string) (*pgxpool.Config, error) {
	if url == "" {
		return nil, fmt.Errorf("database URL is empty")
	}
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}
	return cfg, nil
}

// PostgresStore keeps snapshots and events in PostgreSQL, for hosts that
// share learner state across processes.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool, pings it and creates the tables if needed.
func OpenPostgres(ctx context.Context, url string, maxConns, minConns int) (*PostgresStore, error) {
	cfg, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}
	if minConns > 0 {
		cfg.MinConns = int32(minConns)
	}
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close shuts down the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// HealthCheck verifies the database connection is alive.
func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) SnapshotRepo() SnapshotRepo {
	return &pgSnapshotRepo{pool: s.pool}
}

func (s *PostgresStore) EventRepo() EventRepo {
	return &pgEventRepo{pool: s.pool}
}

type pgSnapshotRepo struct {
	pool *pgxpool.Pool
}

func (r *pgSnapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	if snap.LearnerID == "" {
		snap.LearnerID = snap.Data.LearnerID
	}
	if snap.LearnerID == "" {
		return errors.New("save snapshot: empty learner id")
	}
	if snap.Data.Version == 0 {
		snap.Data.Version = SnapshotVersion
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = now()
	}
	data, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("marshal snapshot data: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`INSERT INTO learner_snapshots (learner_id, sequence, taken_at, version, data)
		 VALUES ($1, COALESCE(NULLIF($2, 0), nextval('mathlearn_global_seq')), $3, $4, $5)
		 RETURNING id, sequence`,
		snap.LearnerID,
		snap.Sequence,
		snap.Timestamp,
		snap.Data.Version,
		data,
	).Scan(&snap.ID, &snap.Sequence)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *pgSnapshotRepo) Latest(ctx context.Context, learnerID string) (*Snapshot, error) {
	var (
		snap Snapshot
		raw  []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, learner_id, sequence, taken_at, data
		 FROM learner_snapshots
		 WHERE learner_id = $1
		 ORDER BY sequence DESC
		 LIMIT 1`,
		learnerID,
	).Scan(&snap.ID, &snap.LearnerID, &snap.Sequence, &snap.Timestamp, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	if err := json.Unmarshal(raw, &snap.Data); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot data: %w", err)
	}
	return &snap, nil
}

func (r *pgSnapshotRepo) Prune(ctx context.Context, learnerID string, keep int) error {
	if keep < 1 {
		keep = 1
	}
	_, err := r.pool.Exec(ctx,
		`DELETE FROM learner_snapshots
		 WHERE learner_id = $1 AND sequence <= (
			SELECT sequence FROM learner_snapshots
			WHERE learner_id = $1
			ORDER BY sequence DESC
			OFFSET $2 LIMIT 1
		 )`,
		learnerID, keep,
	)
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

func (r *pgSnapshotRepo) Delete(ctx context.Context, learnerID string) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM learner_snapshots WHERE learner_id = $1`, learnerID)
	if err != nil {
		return 0, fmt.Errorf("delete snapshots: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *pgSnapshotRepo) Learners(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT learner_id FROM learner_snapshots ORDER BY learner_id`)
	if err != nil {
		return nil, fmt.Errorf("query learners: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan learners: %w", err)
	}
	return ids, nil
}

// pgEventRepo stores every event kind in one table with a JSONB payload.
type pgEventRepo struct {
	pool *pgxpool.Pool
}

func (r *pgEventRepo) append(ctx context.Context, kind, learnerID, sessionID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", kind, err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO learner_events (kind, learner_id, session_id, payload) VALUES ($1, $2, $3, $4)`,
		kind, learnerID, sessionID, data,
	)
	if err != nil {
		return fmt.Errorf("save %s event: %w", kind, err)
	}
	return nil
}

func (r *pgEventRepo) AppendAttempt(ctx context.Context, data AttemptEventData) error {
	return r.append(ctx, eventKindAttempt, data.LearnerID, data.SessionID, data)
}

func (r *pgEventRepo) AppendSession(ctx context.Context, data SessionEventData) error {
	return r.append(ctx, eventKindSession, data.LearnerID, data.SessionID, data)
}

func (r *pgEventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	return r.append(ctx, eventKindLLM, "", "", data)
}

func (r *pgEventRepo) QueryAttempts(ctx context.Context, opts QueryOpts) ([]Event[AttemptEventData], error) {
	return pgQuery[AttemptEventData](ctx, r.pool, eventKindAttempt, opts)
}

func (r *pgEventRepo) QuerySessions(ctx context.Context, opts QueryOpts) ([]Event[SessionEventData], error) {
	return pgQuery[SessionEventData](ctx, r.pool, eventKindSession, opts)
}

func (r *pgEventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]Event[LLMRequestEventData], error) {
	return pgQuery[LLMRequestEventData](ctx, r.pool, eventKindLLM, opts)
}

func (r *pgEventRepo) DeleteLearner(ctx context.Context, learnerID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM learner_events WHERE learner_id = $1 AND kind IN ($2, $3)`,
		learnerID, eventKindAttempt, eventKindSession,
	)
	if err != nil {
		return fmt.Errorf("delete learner events: %w", err)
	}
	return nil
}

// pgQuery selects events of one kind. Zero-valued filters match
// everything; results are newest first.
func pgQuery[T any](ctx context.Context, pool *pgxpool.Pool, kind string, opts QueryOpts) ([]Event[T], error) {
	var from, to *time.Time
	if !opts.From.IsZero() {
		from = &opts.From
	}
	if !opts.To.IsZero() {
		to = &opts.To
	}
	var limit *int
	if opts.Limit > 0 {
		limit = &opts.Limit
	}

	rows, err := pool.Query(ctx,
		`SELECT id, sequence, created_at, payload
		 FROM learner_events
		 WHERE kind = $1
		   AND ($2 = 0 OR sequence > $2)
		   AND ($3 = 0 OR sequence < $3)
		   AND ($4::timestamptz IS NULL OR created_at >= $4)
		   AND ($5::timestamptz IS NULL OR created_at <= $5)
		   AND ($6 = '' OR learner_id = $6)
		   AND ($7 = '' OR session_id = $7)
		 ORDER BY sequence DESC
		 LIMIT $8`,
		kind, opts.After, opts.Before, from, to, opts.LearnerID, opts.SessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query %s events: %w", kind, err)
	}
	defer rows.Close()

	var events []Event[T]
	for rows.Next() {
		var (
			ev  Event[T]
			raw []byte
		)
		if err := rows.Scan(&ev.ID, &ev.Sequence, &ev.Timestamp, &raw); err != nil {
			return nil, fmt.Errorf("scan %s event: %w", kind, err)
		}
		if err := json.Unmarshal(raw, &ev.Data); err != nil {
			return nil, fmt.Errorf("decode %s event: %w", kind, err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

var (
	_ Backend = (*Store)(nil)
	_ Backend = (*PostgresStore)(nil)
)
