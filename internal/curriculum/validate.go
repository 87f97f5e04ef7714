package curriculum

import (
	"fmt"
	"slices"
)

// validateTopics performs the structural checks that must pass before
// layering. Cycles are left to the layering pass.
func validateTopics(topics []Topic) error {
	var (
		problems []string
		involved []string
	)

	if len(topics) == 0 {
		return &ConfigurationError{Err: ErrIncomplete, Problems: []string{"no topics defined"}}
	}

	idSet := make(map[string]bool, len(topics))
	for _, t := range topics {
		if t.ID == "" {
			problems = append(problems, "topic with empty ID")
			continue
		}
		if idSet[t.ID] {
			problems = append(problems, fmt.Sprintf("duplicate topic ID: %q", t.ID))
			involved = append(involved, t.ID)
		}
		idSet[t.ID] = true
	}

	for _, t := range topics {
		if !t.Difficulty.Valid() {
			problems = append(problems, fmt.Sprintf("topic %q has undeclared difficulty %d", t.ID, int(t.Difficulty)))
			involved = append(involved, t.ID)
		}
		for _, p := range t.Prerequisites {
			if !idSet[p] {
				problems = append(problems, fmt.Sprintf("topic %q references nonexistent prerequisite %q", t.ID, p))
				involved = append(involved, t.ID)
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	slices.Sort(involved)
	return &ConfigurationError{
		Err:      ErrIncomplete,
		Topics:   slices.Compact(involved),
		Problems: problems,
	}
}

// layer partitions topics into levels with Kahn's algorithm restricted to
// layers: a topic joins the first level at which all of its prerequisites
// sit in earlier levels. Any topic left unplaced is part of, or depends
// on, a cycle.
func layer(topics []Topic) ([][]string, error) {
	remaining := make([]Topic, len(topics))
	copy(remaining, topics)
	slices.SortFunc(remaining, func(a, b Topic) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})

	placed := make(map[string]bool, len(topics))
	var levels [][]string

	for len(remaining) > 0 {
		var (
			current []string
			next    []Topic
		)
		for _, t := range remaining {
			ready := true
			for _, p := range t.Prerequisites {
				if !placed[p] {
					ready = false
					break
				}
			}
			if ready {
				current = append(current, t.ID)
			} else {
				next = append(next, t)
			}
		}

		if len(current) == 0 {
			ids := make([]string, len(next))
			for i, t := range next {
				ids[i] = t.ID
			}
			return nil, &ConfigurationError{
				Err:      ErrCycleDetected,
				Topics:   ids,
				Problems: []string{fmt.Sprintf("cannot place topics %v: prerequisites never satisfied", ids)},
			}
		}

		// Mark after the scan so topics in one level never depend on each other.
		for _, id := range current {
			placed[id] = true
		}
		levels = append(levels, current)
		remaining = next
	}

	return levels, nil
}
