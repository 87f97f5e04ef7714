package store

import (
	"context"
	"fmt"
)

var attemptColumns = []string{
	"session_id", "learner_id", "topic_id", "item_id", "difficulty",
	"success", "pass_rate", "complexity_matched", "duration_ms", "strategy",
}

func (r *eventRepo) AppendAttempt(ctx context.Context, data AttemptEventData) error {
	err := r.insert(ctx, tableAttempts, attemptColumns, []any{
		data.SessionID, data.LearnerID, data.TopicID, data.ItemID, data.Difficulty,
		data.Success, data.PassRate, data.ComplexityMatched, data.DurationMs, data.Strategy,
	})
	if err != nil {
		return fmt.Errorf("save attempt event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryAttempts(ctx context.Context, opts QueryOpts) ([]Event[AttemptEventData], error) {
	sel := selectEvents(tableAttempts, opts, attemptColumns...)
	events, err := queryEvents(ctx, r.db, sel, func(d *AttemptEventData) []any {
		return []any{
			&d.SessionID, &d.LearnerID, &d.TopicID, &d.ItemID, &d.Difficulty,
			&d.Success, &d.PassRate, &d.ComplexityMatched, &d.DurationMs, &d.Strategy,
		}
	})
	if err != nil {
		return nil, fmt.Errorf("query attempt events: %w", err)
	}
	return events, nil
}
