// Package content produces work items for the scheduler: a template
// factory backed by a built-in catalogue, an LLM-backed factory, and the
// item-id sequences they share.
package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/mathlearn/internal/curriculum"
)

var (
	// ErrUnknownTopic is returned when a factory has no content for a topic.
	ErrUnknownTopic = errors.New("content: unknown topic")
	// ErrInvalidRange is returned for an empty or out-of-bounds difficulty range.
	ErrInvalidRange = errors.New("content: invalid difficulty range")
)

// Difficulty bounds for work items.
const (
	MinDifficulty = 1
	MaxDifficulty = 4
)

// DifficultyRange is an inclusive range of item difficulties.
type DifficultyRange struct {
	Min int
	Max int
}

// Validate checks that Min <= Max and both lie in [1, 4].
func (r DifficultyRange) Validate() error {
	if r.Min < MinDifficulty || r.Max > MaxDifficulty || r.Min > r.Max {
		return fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, r.Min, r.Max)
	}
	return nil
}

// Contains reports whether d lies in the range.
func (r DifficultyRange) Contains(d int) bool {
	return d >= r.Min && d <= r.Max
}

func (r DifficultyRange) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// WorkItem is one unit of practice for a topic. The scheduler reads only
// ID, TopicID, Difficulty and ExpectedComplexity; the rest is carried for
// evaluators and strategy inference.
type WorkItem struct {
	ID                 string
	TopicID            string
	Difficulty         int
	Statement          string
	Signature          string
	TestCount          int
	ExpectedComplexity curriculum.Complexity
	Hints              []string
	Insight            string
	OptimalApproach    string
}

// Factory produces work items. Implementations return exactly count items
// or an error; they are safe for concurrent use by many sessions.
type Factory interface {
	GenerateItems(ctx context.Context, topicID string, count int, r DifficultyRange) ([]WorkItem, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(ctx context.Context, topicID string, count int, r DifficultyRange) ([]WorkItem, error)

func (f FactoryFunc) GenerateItems(ctx context.Context, topicID string, count int, r DifficultyRange) ([]WorkItem, error) {
	return f(ctx, topicID, count, r)
}
