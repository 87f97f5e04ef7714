package content

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
)

// TemplateFactory stamps work items from a Catalogue. Difficulties are
// drawn uniformly from the requested range with an injected source, so a
// fixed seed reproduces the same items.
type TemplateFactory struct {
	catalogue *Catalogue
	seq       Sequence

	mu  sync.Mutex
	rng *rand.Rand
}

// NewTemplateFactory returns a factory over catalogue. A nil seq uses a
// fresh LocalSequence; a nil rng uses a random seed.
func NewTemplateFactory(catalogue *Catalogue, seq Sequence, rng *rand.Rand) *TemplateFactory {
	if seq == nil {
		seq = &LocalSequence{}
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &TemplateFactory{catalogue: catalogue, seq: seq, rng: rng}
}

// GenerateItems returns exactly count items for topicID, or an error.
func (f *TemplateFactory) GenerateItems(ctx context.Context, topicID string, count int, r DifficultyRange) ([]WorkItem, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	prefix, ok := f.catalogue.Prefix(topicID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, topicID)
	}
	if _, ok := f.catalogue.Template(topicID, r.Min); !ok {
		return nil, fmt.Errorf("%w: %q has no templates", ErrUnknownTopic, topicID)
	}
	if count <= 0 {
		return []WorkItem{}, nil
	}

	difficulties := f.draw(count, r)
	items := make([]WorkItem, 0, count)
	for _, d := range difficulties {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := f.seq.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("item id: %w", err)
		}
		t, ok := f.catalogue.Template(topicID, d)
		if !ok {
			return nil, fmt.Errorf("%w: %q has no templates", ErrUnknownTopic, topicID)
		}
		items = append(items, WorkItem{
			ID:                 itemID(prefix, n),
			TopicID:            topicID,
			Difficulty:         d,
			Statement:          t.Statement,
			Signature:          t.Signature,
			TestCount:          t.TestCount,
			ExpectedComplexity: t.ExpectedComplexity,
			Hints:              slices.Clone(t.Hints),
			Insight:            t.Insight,
			OptimalApproach:    t.OptimalApproach,
		})
	}
	return items, nil
}

func (f *TemplateFactory) draw(count int, r DifficultyRange) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, count)
	for i := range out {
		out[i] = r.Min + f.rng.IntN(r.Max-r.Min+1)
	}
	return out
}
