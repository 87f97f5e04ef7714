// Package curriculum holds the topic graph: topic definitions, their
// prerequisite edges and the leveled order derived from them.
//
// A Graph is read-only after Build and safe for concurrent use.
package curriculum

import (
	"cmp"
	"slices"
)

// Graph is a validated, leveled topic DAG.
type Graph struct {
	topics     []Topic // eligibility order: difficulty, level, ID
	byID       map[string]*Topic
	dependents map[string][]string
	levels     [][]string
	levelOf    map[string]int
}

// Build validates topics and computes the leveled order. It fails with a
// *ConfigurationError wrapping ErrIncomplete or ErrCycleDetected; no
// partial graph is returned.
func Build(topics []Topic) (*Graph, error) {
	if err := validateTopics(topics); err != nil {
		return nil, err
	}

	levels, err := layer(topics)
	if err != nil {
		return nil, err
	}

	g := &Graph{
		topics:     make([]Topic, len(topics)),
		byID:       make(map[string]*Topic, len(topics)),
		dependents: make(map[string][]string),
		levels:     levels,
		levelOf:    make(map[string]int, len(topics)),
	}

	for i, ids := range levels {
		for _, id := range ids {
			g.levelOf[id] = i
		}
	}

	for i, t := range topics {
		t.Prerequisites = slices.Clone(t.Prerequisites)
		t.KeyAlgorithms = slices.Clone(t.KeyAlgorithms)
		g.topics[i] = t
	}
	slices.SortFunc(g.topics, func(a, b Topic) int {
		if c := cmp.Compare(a.Difficulty, b.Difficulty); c != 0 {
			return c
		}
		if c := cmp.Compare(g.levelOf[a.ID], g.levelOf[b.ID]); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	for i := range g.topics {
		t := &g.topics[i]
		g.byID[t.ID] = t
		for _, p := range t.Prerequisites {
			g.dependents[p] = append(g.dependents[p], t.ID)
		}
	}
	for id := range g.dependents {
		slices.Sort(g.dependents[id])
	}

	return g, nil
}

// Len returns the number of topics.
func (g *Graph) Len() int {
	return len(g.topics)
}

// Topic returns a topic by ID.
func (g *Graph) Topic(id string) (Topic, bool) {
	t, ok := g.byID[id]
	if !ok {
		return Topic{}, false
	}
	return *t, true
}

// Topics returns all topics ordered by difficulty, then level, then ID.
func (g *Graph) Topics() []Topic {
	return slices.Clone(g.topics)
}

// Levels returns the leveled order. Level 0 holds exactly the topics
// without prerequisites; each level is sorted by ID.
func (g *Graph) Levels() [][]string {
	out := make([][]string, len(g.levels))
	for i, l := range g.levels {
		out[i] = slices.Clone(l)
	}
	return out
}

// LevelOf returns the level index of a topic. It is meant for diagnostics
// and tie-breaking; eligibility is the scheduling gate.
func (g *Graph) LevelOf(id string) (int, bool) {
	l, ok := g.levelOf[id]
	return l, ok
}

// Prerequisites returns the direct prerequisites of a topic.
func (g *Graph) Prerequisites(id string) []Topic {
	t, ok := g.byID[id]
	if !ok {
		return nil
	}
	out := make([]Topic, 0, len(t.Prerequisites))
	for _, p := range t.Prerequisites {
		out = append(out, *g.byID[p])
	}
	return out
}

// Dependents returns the topics that list id as a direct prerequisite,
// sorted by ID.
func (g *Graph) Dependents(id string) []Topic {
	ids := g.dependents[id]
	out := make([]Topic, 0, len(ids))
	for _, d := range ids {
		out = append(out, *g.byID[d])
	}
	return out
}

// IsUnlocked reports whether every prerequisite of id is mastered.
func (g *Graph) IsUnlocked(id string, mastered map[string]bool) bool {
	t, ok := g.byID[id]
	if !ok {
		return false
	}
	for _, p := range t.Prerequisites {
		if !mastered[p] {
			return false
		}
	}
	return true
}

// Eligible returns every unmastered topic whose prerequisites are all
// mastered, ordered by difficulty, then level, then ID. An empty result
// means no further progress is possible; it is not an error.
func (g *Graph) Eligible(mastered map[string]bool) []Topic {
	var out []Topic
	for _, t := range g.topics {
		if !mastered[t.ID] && g.IsUnlocked(t.ID, mastered) {
			out = append(out, t)
		}
	}
	return out
}

// Blocked returns the topics with at least one unmastered prerequisite.
func (g *Graph) Blocked(mastered map[string]bool) []Topic {
	var out []Topic
	for _, t := range g.topics {
		if !g.IsUnlocked(t.ID, mastered) {
			out = append(out, t)
		}
	}
	return out
}

// ByDifficulty returns the topics of one tier in eligibility order.
func (g *Graph) ByDifficulty(d Difficulty) []Topic {
	var out []Topic
	for _, t := range g.topics {
		if t.Difficulty == d {
			out = append(out, t)
		}
	}
	return out
}

// ByCategory returns the topics of one category in eligibility order.
func (g *Graph) ByCategory(c Category) []Topic {
	var out []Topic
	for _, t := range g.topics {
		if t.Category == c {
			out = append(out, t)
		}
	}
	return out
}

// Categories returns the distinct categories in first-seen eligibility
// order.
func (g *Graph) Categories() []Category {
	var out []Category
	seen := make(map[Category]bool)
	for _, t := range g.topics {
		if !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	return out
}
