package store

import (
	"context"
	"fmt"
)

var sessionColumns = []string{
	"session_id", "learner_id", "action", "target_level", "final_level", "reason",
	"topics_trained", "items_attempted", "successes", "duration_secs",
}

func (r *eventRepo) AppendSession(ctx context.Context, data SessionEventData) error {
	err := r.insert(ctx, tableSessions, sessionColumns, []any{
		data.SessionID, data.LearnerID, data.Action, data.TargetLevel, data.FinalLevel, data.Reason,
		data.TopicsTrained, data.ItemsAttempted, data.Successes, data.DurationSecs,
	})
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessions(ctx context.Context, opts QueryOpts) ([]Event[SessionEventData], error) {
	sel := selectEvents(tableSessions, opts, sessionColumns...)
	events, err := queryEvents(ctx, r.db, sel, func(d *SessionEventData) []any {
		return []any{
			&d.SessionID, &d.LearnerID, &d.Action, &d.TargetLevel, &d.FinalLevel, &d.Reason,
			&d.TopicsTrained, &d.ItemsAttempted, &d.Successes, &d.DurationSecs,
		}
	})
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	return events, nil
}
