// Package session runs progressive training sessions: it picks the next
// eligible topic, trains a batch of work items on it, folds the outcomes
// into the learner's state and repeats until the target level is reached
// or no further progress is possible.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/mathlearn/internal/content"
	"github.com/abhisek/mathlearn/internal/curriculum"
	"github.com/abhisek/mathlearn/internal/evaluate"
	"github.com/abhisek/mathlearn/internal/learner"
	"github.com/abhisek/mathlearn/internal/logging"
	"github.com/abhisek/mathlearn/internal/store"
	"github.com/abhisek/mathlearn/internal/strategy"
)

// Scheduler drives training sessions. A Scheduler is safe to share across
// sessions for different learners; a single learner's State must only be
// handed to one session at a time.
type Scheduler struct {
	graph      *curriculum.Graph
	factory    content.Factory
	evaluator  evaluate.Evaluator
	strategies *strategy.Catalogue

	snapshots store.SnapshotRepo
	events    store.EventRepo
	keep      int

	safetyLimit int
	logger      *slog.Logger
	now         func() time.Time
	yield       func()
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithStore persists a snapshot after every batch and appends attempt and
// session events. Either repo may be nil.
func WithStore(snapshots store.SnapshotRepo, events store.EventRepo) Option {
	return func(s *Scheduler) {
		s.snapshots = snapshots
		s.events = events
	}
}

// WithRetention prunes each learner to the keep most recent snapshots
// after saving. Zero keeps every snapshot.
func WithRetention(keep int) Option {
	return func(s *Scheduler) { s.keep = keep }
}

// WithStrategies replaces the default strategy catalogue.
func WithStrategies(c *strategy.Catalogue) Option {
	return func(s *Scheduler) { s.strategies = c }
}

// WithSafetyLimit caps the topics trained per session.
func WithSafetyLimit(n int) Option {
	return func(s *Scheduler) { s.safetyLimit = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithClock sets the time source used for attempt timestamps and report
// timing.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New returns a Scheduler over graph that draws items from factory and
// judges them with evaluator.
func New(graph *curriculum.Graph, factory content.Factory, evaluator evaluate.Evaluator, opts ...Option) *Scheduler {
	s := &Scheduler{
		graph:       graph,
		factory:     factory,
		evaluator:   evaluator,
		strategies:  strategy.Default(),
		safetyLimit: DefaultSafetyLimit,
		logger:      logging.New("session"),
		now:         time.Now,
		yield:       runtime.Gosched,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Graph returns the scheduler's topic graph.
func (s *Scheduler) Graph() *curriculum.Graph {
	return s.graph
}

// Load restores a learner from its latest snapshot, or returns a fresh
// State when none exists or no snapshot repo is configured.
func (s *Scheduler) Load(ctx context.Context, learnerID string) (*learner.State, error) {
	if s.snapshots == nil {
		return learner.New(learnerID), nil
	}
	snap, err := s.snapshots.Latest(ctx, learnerID)
	if errors.Is(err, store.ErrNotFound) {
		return learner.New(learnerID), nil
	}
	if err != nil {
		return nil, &PersistenceError{LearnerID: learnerID, Op: "load snapshot", Err: err}
	}
	st, err := learner.FromSnapshot(&snap.Data)
	if err != nil {
		return nil, fmt.Errorf("restore learner %s: %w", learnerID, err)
	}
	return st, nil
}

// Run trains st until its proficiency level reaches target, no topic is
// eligible, or the safety limit of topics is hit. The target is checked
// before the first selection, so a learner already at target gets an
// empty report.
//
// Cancellation is honored between items; st then holds every attempt
// applied so far and the partial report is returned with ctx.Err(). A
// failed snapshot save returns a *PersistenceError.
func (s *Scheduler) Run(ctx context.Context, st *learner.State, target curriculum.Level) (*Report, error) {
	report := &Report{
		SessionID:   uuid.NewString(),
		LearnerID:   st.LearnerID,
		TargetLevel: target,
		StartedAt:   s.now(),
	}
	log := s.logger.With("learner", st.LearnerID, "session", report.SessionID)
	log.Info("session started", "target", target, "level", st.Level(s.graph))
	s.appendSession(ctx, log, report, "start")

	err := s.loop(ctx, log, st, report)
	report.FinalLevel = st.Level(s.graph)
	report.Elapsed = s.now().Sub(report.StartedAt)
	if err != nil {
		log.Warn("session aborted", "error", err, "items", report.ItemsAttempted)
		return report, err
	}

	log.Info("session finished",
		"reason", report.Reason,
		"level", report.FinalLevel,
		"topics", len(report.Topics),
		"items", report.ItemsAttempted,
		"successes", report.Successes,
	)
	s.appendSession(ctx, log, report, "end")
	return report, nil
}

func (s *Scheduler) loop(ctx context.Context, log *slog.Logger, st *learner.State, report *Report) error {
	for trained := 0; ; trained++ {
		level := st.Level(s.graph)
		if level >= report.TargetLevel {
			report.Reason = ReasonTargetReached
			return nil
		}
		if trained >= s.safetyLimit {
			report.Reason = ReasonSafetyLimit
			return nil
		}

		eligible := s.graph.Eligible(st.Mastered())
		if len(eligible) == 0 {
			report.Reason = ReasonExhausted
			return nil
		}
		topic := eligible[0]
		policy := PolicyFor(level)
		log.Debug("topic selected", "topic", topic.ID, "level", level, "count", policy.Count, "range", policy.Range)

		run, err := s.trainBatch(ctx, log, report.SessionID, st, topic, policy)
		run.Level = level
		report.addTopic(run)
		if err != nil {
			return err
		}
		log.Info("batch complete",
			"topic", topic.ID,
			"successes", run.Successes(),
			"items", len(run.Items),
			"mastered", run.Success,
		)
	}
}

// TrainTopic trains one topic outside the progressive loop: count items
// drawn from r, regardless of eligibility. The snapshot is saved after
// the batch like in Run.
//
// A topic the graph does not know yields a zero TopicRun and an error
// matching ErrUnknownTopic; st is left untouched and nothing is requested
// from the factory, so callers looping over many topics can skip it and
// continue.
func (s *Scheduler) TrainTopic(ctx context.Context, st *learner.State, topicID string, count int, r content.DifficultyRange) (TopicRun, error) {
	topic, ok := s.graph.Topic(topicID)
	if !ok {
		return TopicRun{}, fmt.Errorf("%w: %s", ErrUnknownTopic, topicID)
	}
	if count < 1 {
		return TopicRun{}, fmt.Errorf("item count must be positive, got %d", count)
	}
	if err := r.Validate(); err != nil {
		return TopicRun{}, err
	}

	sessionID := uuid.NewString()
	log := s.logger.With("learner", st.LearnerID, "session", sessionID)
	level := st.Level(s.graph)
	run, err := s.trainBatch(ctx, log, sessionID, st, topic, Policy{Count: count, Range: r})
	run.Level = level
	return run, err
}

// trainBatch requests policy.Count items for topic and attempts each in
// turn, yielding between items. The snapshot is written only once the
// whole batch has been applied.
func (s *Scheduler) trainBatch(ctx context.Context, log *slog.Logger, sessionID string, st *learner.State, topic curriculum.Topic, policy Policy) (TopicRun, error) {
	run := TopicRun{TopicID: topic.ID}

	items, genErr := s.factory.GenerateItems(ctx, topic.ID, policy.Count, policy.Range)
	if genErr == nil && len(items) != policy.Count {
		genErr = fmt.Errorf("factory returned %d items, want %d", len(items), policy.Count)
	}
	if genErr != nil {
		if err := ctx.Err(); err != nil {
			return run, err
		}
		log.Warn("content factory failed, recording batch as failed", "topic", topic.ID, "error", genErr)
		items = placeholders(topic.ID, policy)
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return run, err
		}

		var (
			res ItemResult
			err error
		)
		if genErr != nil {
			res = ItemResult{ItemID: item.ID, Difficulty: item.Difficulty, Err: genErr.Error()}
		} else {
			res, err = s.attempt(ctx, log, st, topic, item)
			if err != nil {
				return run, err
			}
		}

		st.Record(learner.Attempt{
			TopicID:           topic.ID,
			ItemID:            res.ItemID,
			Difficulty:        res.Difficulty,
			Success:           res.Success,
			PassRate:          res.PassRate,
			ComplexityMatched: res.ComplexityMatched,
			Duration:          res.Duration,
			Timestamp:         s.now(),
			Strategy:          res.Strategy,
		})
		run.add(res)
		s.appendAttempt(ctx, log, sessionID, st.LearnerID, topic.ID, res)

		s.yield()
	}

	run.Success = st.IsMastered(topic.ID)
	if err := s.persist(ctx, st); err != nil {
		return run, err
	}
	return run, nil
}

// attempt chooses a strategy and evaluates one item. An evaluator error
// becomes a failed result; only cancellation is returned as an error.
func (s *Scheduler) attempt(ctx context.Context, log *slog.Logger, st *learner.State, topic curriculum.Topic, item content.WorkItem) (ItemResult, error) {
	choice := s.strategies.Select(topic, item, st.History(topic.ID))
	res := ItemResult{
		ItemID:     item.ID,
		Difficulty: item.Difficulty,
		Strategy:   choice.Strategy.Name,
		Rationale:  choice.Strategy.Explanation,
	}

	out, err := s.evaluator.Evaluate(ctx, evaluate.Submission{
		LearnerID: st.LearnerID,
		Item:      item,
		Strategy:  choice.Strategy.Name,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		log.Warn("evaluation failed, recording attempt as failed", "item", item.ID, "error", err)
		res.Err = err.Error()
		return res, nil
	}

	res.PassRate = out.PassRate
	res.ComplexityMatched = out.ComplexityMatched(item)
	res.Success = out.Passed && res.ComplexityMatched
	res.Duration = time.Duration(out.DurationSeconds * float64(time.Second))
	return res, nil
}

// placeholders stands in for a batch the factory could not produce.
func placeholders(topicID string, p Policy) []content.WorkItem {
	items := make([]content.WorkItem, p.Count)
	for i := range items {
		items[i] = content.WorkItem{TopicID: topicID, Difficulty: p.Range.Min}
	}
	return items
}

func (s *Scheduler) persist(ctx context.Context, st *learner.State) error {
	if s.snapshots == nil {
		return nil
	}
	snap := &store.Snapshot{Data: *st.SnapshotData(s.graph)}
	if err := s.snapshots.Save(ctx, snap); err != nil {
		return &PersistenceError{LearnerID: st.LearnerID, Op: "save snapshot", Err: err}
	}
	if s.keep > 0 {
		if err := s.snapshots.Prune(ctx, st.LearnerID, s.keep); err != nil {
			return &PersistenceError{LearnerID: st.LearnerID, Op: "prune snapshots", Err: err}
		}
	}
	return nil
}

func (s *Scheduler) appendAttempt(ctx context.Context, log *slog.Logger, sessionID, learnerID, topicID string, res ItemResult) {
	if s.events == nil {
		return
	}
	err := s.events.AppendAttempt(ctx, store.AttemptEventData{
		SessionID:         sessionID,
		LearnerID:         learnerID,
		TopicID:           topicID,
		ItemID:            res.ItemID,
		Difficulty:        res.Difficulty,
		Success:           res.Success,
		PassRate:          res.PassRate,
		ComplexityMatched: res.ComplexityMatched,
		DurationMs:        res.Duration.Milliseconds(),
		Strategy:          res.Strategy,
	})
	if err != nil {
		log.Warn("append attempt event", "item", res.ItemID, "error", err)
	}
}

func (s *Scheduler) appendSession(ctx context.Context, log *slog.Logger, r *Report, action string) {
	if s.events == nil {
		return
	}
	data := store.SessionEventData{
		SessionID:      r.SessionID,
		LearnerID:      r.LearnerID,
		Action:         action,
		TargetLevel:    r.TargetLevel.String(),
		TopicsTrained:  len(r.Topics),
		ItemsAttempted: r.ItemsAttempted,
		Successes:      r.Successes,
	}
	if action == "end" {
		data.FinalLevel = r.FinalLevel.String()
		data.Reason = string(r.Reason)
		data.DurationSecs = int(r.Elapsed.Seconds())
	}
	if err := s.events.AppendSession(ctx, data); err != nil {
		log.Warn("append session event", "action", action, "error", err)
	}
}
