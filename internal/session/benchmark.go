package session

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/mathlearn/internal/content"
	"github.com/abhisek/mathlearn/internal/evaluate"
	"github.com/abhisek/mathlearn/internal/learner"
)

// BenchmarkEntry is one learner's score on a diagnostic set.
type BenchmarkEntry struct {
	Rank      int
	LearnerID string
	Solved    int
	Attempted int
	Duration  time.Duration
	ByTopic   map[string]int // solved items per topic
}

// Benchmark runs the same diagnostic set, two items per topic, against
// each learner concurrently and ranks them by items solved, then by total
// duration. Learner states are only read, never recorded into. Items whose
// evaluation fails count as unsolved.
func (s *Scheduler) Benchmark(ctx context.Context, learners []*learner.State, topicIDs []string) ([]BenchmarkEntry, error) {
	for _, id := range topicIDs {
		if _, ok := s.graph.Topic(id); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTopic, id)
		}
	}
	items, err := content.DiagnosticSet(ctx, s.factory, topicIDs)
	if err != nil {
		return nil, fmt.Errorf("build diagnostic set: %w", err)
	}

	entries := make([]BenchmarkEntry, len(learners))
	g, gctx := errgroup.WithContext(ctx)
	for i, st := range learners {
		g.Go(func() error {
			e, err := s.benchmarkOne(gctx, st, items)
			entries[i] = e
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(entries, func(a, b BenchmarkEntry) int {
		if a.Solved != b.Solved {
			return cmp.Compare(b.Solved, a.Solved)
		}
		return cmp.Compare(a.Duration, b.Duration)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (s *Scheduler) benchmarkOne(ctx context.Context, st *learner.State, items []content.WorkItem) (BenchmarkEntry, error) {
	e := BenchmarkEntry{LearnerID: st.LearnerID, ByTopic: make(map[string]int)}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return e, err
		}
		topic, _ := s.graph.Topic(item.TopicID)
		choice := s.strategies.Select(topic, item, st.History(item.TopicID))
		out, err := s.evaluator.Evaluate(ctx, evaluate.Submission{
			LearnerID: st.LearnerID,
			Item:      item,
			Strategy:  choice.Strategy.Name,
		})
		e.Attempted++
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return e, ctxErr
			}
			s.logger.Warn("benchmark evaluation failed", "learner", st.LearnerID, "item", item.ID, "error", err)
			continue
		}
		e.Duration += time.Duration(out.DurationSeconds * float64(time.Second))
		if out.Passed && out.ComplexityMatched(item) {
			e.Solved++
			e.ByTopic[item.TopicID]++
		}
		s.yield()
	}
	return e, nil
}
