package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// now is the clock for stored timestamps.
var now = func() time.Time { return time.Now().UTC() }

// snapshotRepo implements SnapshotRepo on SQLite with ent's SQL builder.
type snapshotRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *snapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	if snap.LearnerID == "" {
		snap.LearnerID = snap.Data.LearnerID
	}
	if snap.LearnerID == "" {
		return errors.New("save snapshot: empty learner id")
	}
	if snap.Sequence == 0 {
		seq, err := r.seq.Next(ctx)
		if err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		snap.Sequence = seq
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = now()
	}
	if snap.Data.Version == 0 {
		snap.Data.Version = SnapshotVersion
	}

	data, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("marshal snapshot data: %w", err)
	}

	query, args := builder().Insert(tableSnapshots).
		Columns("learner_id", "sequence", "timestamp", "version", "data").
		Values(snap.LearnerID, snap.Sequence, snap.Timestamp.UTC(), snap.Data.Version, string(data)).
		Returning("id").
		Query()
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&snap.ID); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context, learnerID string) (*Snapshot, error) {
	query, args := builder().
		Select("id", "learner_id", "sequence", "timestamp", "data").
		From(entsql.Table(tableSnapshots)).
		Where(entsql.EQ("learner_id", learnerID)).
		OrderBy(entsql.Desc("sequence")).
		Limit(1).
		Query()

	var (
		snap Snapshot
		raw  []byte
	)
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&snap.ID, &snap.LearnerID, &snap.Sequence, &snap.Timestamp, &raw)
	if errors.Is(err, sql.ErrNoRows) {
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

func (r *snapshotRepo) Prune(ctx context.Context, learnerID string, keep int) error {
	if keep < 1 {
		keep = 1
	}
	// The keep-th most recent sequence is the threshold; everything at or
	// below the next one goes.
	query, args := builder().
		Select("sequence").
		From(entsql.Table(tableSnapshots)).
		Where(entsql.EQ("learner_id", learnerID)).
		OrderBy(entsql.Desc("sequence")).
		Offset(keep).
		Limit(1).
		Query()

	var threshold int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil // fewer than keep snapshots exist
	}
	if err != nil {
		return fmt.Errorf("query snapshots for prune: %w", err)
	}

	query, args = builder().Delete(tableSnapshots).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			entsql.LTE("sequence", threshold),
		)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

func (r *snapshotRepo) Delete(ctx context.Context, learnerID string) (int, error) {
	query, args := builder().Delete(tableSnapshots).
		Where(entsql.EQ("learner_id", learnerID)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete snapshots: %w", err)
	}
	return int(n), nil
}

func (r *snapshotRepo) Learners(ctx context.Context) ([]string, error) {
	query, args := builder().
		Select("learner_id").
		Distinct().
		From(entsql.Table(tableSnapshots)).
		OrderBy("learner_id").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query learners: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan learner: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
