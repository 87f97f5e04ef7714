// Package evaluate defines the evaluator contract the scheduler trusts and
// ships two implementations: a scripted fixture for reproducible tests and
// a seeded random evaluator for stress runs.
package evaluate

import (
	"context"

	"github.com/abhisek/mathlearn/internal/content"
	"github.com/abhisek/mathlearn/internal/curriculum"
)

// Submission is one work item handed to an evaluator, with the strategy
// the learner chose for it.
type Submission struct {
	LearnerID string
	Item      content.WorkItem
	Strategy  string
}

// Outcome is an evaluator's verdict on a submission.
type Outcome struct {
	Passed             bool
	PassRate           float64 // fraction of tests passed, 0..1
	ObservedComplexity curriculum.Complexity
	DurationSeconds    float64
}

// ComplexityMatched reports whether the observed complexity equals the
// item's expected complexity.
func (o Outcome) ComplexityMatched(item content.WorkItem) bool {
	return o.ObservedComplexity == item.ExpectedComplexity
}

// Evaluator judges submissions. Implementations must be safe for
// concurrent use when shared by several sessions.
type Evaluator interface {
	Evaluate(ctx context.Context, sub Submission) (Outcome, error)
}

// Func adapts a function to the Evaluator interface.
type Func func(ctx context.Context, sub Submission) (Outcome, error)

func (f Func) Evaluate(ctx context.Context, sub Submission) (Outcome, error) {
	return f(ctx, sub)
}
