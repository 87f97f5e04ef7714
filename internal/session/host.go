package session

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/mathlearn/internal/curriculum"
	"github.com/abhisek/mathlearn/internal/learner"
)

// DefaultConcurrency bounds how many sessions a Host runs at once.
const DefaultConcurrency = 4

// Host runs many learners' sessions against one shared Scheduler. The
// registry guarantees a learner is never in two sessions at once.
type Host struct {
	scheduler   *Scheduler
	registry    *learner.Registry
	concurrency int
}

// NewHost returns a Host. concurrency < 1 means DefaultConcurrency.
func NewHost(s *Scheduler, r *learner.Registry, concurrency int) *Host {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Host{scheduler: s, registry: r, concurrency: concurrency}
}

// Registry returns the host's learner registry.
func (h *Host) Registry() *learner.Registry {
	return h.registry
}

// Result is one learner's outcome in a RunAll.
type Result struct {
	LearnerID string
	Report    *Report
	Err       error
}

// RunAll trains every listed learner toward target, at most concurrency
// sessions at a time. Learners unknown to the registry are loaded from the
// scheduler's snapshot repo first. One learner's failure does not stop the
// others; results come back in input order and the returned error joins
// the per-learner failures.
func (h *Host) RunAll(ctx context.Context, learnerIDs []string, target curriculum.Level) ([]Result, error) {
	seen := make(map[string]bool, len(learnerIDs))
	for _, id := range learnerIDs {
		if seen[id] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLearner, id)
		}
		seen[id] = true
	}

	results := make([]Result, len(learnerIDs))
	var g errgroup.Group
	g.SetLimit(h.concurrency)
	for i, id := range learnerIDs {
		g.Go(func() error {
			report, err := h.run(ctx, id, target)
			results[i] = Result{LearnerID: id, Report: report, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("learner %s: %w", r.LearnerID, r.Err))
		}
	}
	return results, errors.Join(errs...)
}

func (h *Host) run(ctx context.Context, id string, target curriculum.Level) (*Report, error) {
	st, err := h.registry.CheckoutOrLoad(id, func() (*learner.State, error) {
		return h.scheduler.Load(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	defer h.registry.Release(id)
	return h.scheduler.Run(ctx, st, target)
}
