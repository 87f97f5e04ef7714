package curriculum

import (
	"fmt"
	"strings"
)

// Level is a learner's derived proficiency level.
type Level int

const (
	LevelBeginner Level = iota
	LevelFoundationComplete
	LevelIntermediate
	LevelAdvanced
	LevelExpert
)

// AllLevels returns the levels in ascending order.
func AllLevels() []Level {
	return []Level{
		LevelBeginner,
		LevelFoundationComplete,
		LevelIntermediate,
		LevelAdvanced,
		LevelExpert,
	}
}

func (l Level) String() string {
	switch l {
	case LevelBeginner:
		return "Beginner"
	case LevelFoundationComplete:
		return "FoundationComplete"
	case LevelIntermediate:
		return "Intermediate"
	case LevelAdvanced:
		return "Advanced"
	case LevelExpert:
		return "Expert"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel parses a level name. Case, dashes, underscores and spaces
// are ignored, so "foundation-complete" parses.
func ParseLevel(s string) (Level, error) {
	norm := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(s))
	for _, l := range AllLevels() {
		if norm == strings.ToLower(l.String()) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown proficiency level %q", s)
}

// ProficiencyLevel derives the level from a mastered set. It is a pure
// function of its input and is evaluated from the highest tier down:
//
//   - fewer than 2 mastered topics: Beginner
//   - any Expert topic mastered: Expert
//   - any Advanced topic mastered: Advanced
//   - any Intermediate topic mastered: Intermediate
//   - every Beginner topic mastered: FoundationComplete
//   - otherwise: Beginner
//
// Mastered IDs that are not in the graph are ignored.
func (g *Graph) ProficiencyLevel(mastered map[string]bool) Level {
	var (
		count       int
		highest     Difficulty
		foundations int
		foundDone   int
	)
	for _, t := range g.topics {
		if t.Difficulty == Beginner {
			foundations++
		}
		if !mastered[t.ID] {
			continue
		}
		count++
		if t.Difficulty > highest {
			highest = t.Difficulty
		}
		if t.Difficulty == Beginner {
			foundDone++
		}
	}

	switch {
	case count < 2:
		return LevelBeginner
	case highest == Expert:
		return LevelExpert
	case highest == Advanced:
		return LevelAdvanced
	case highest == Intermediate:
		return LevelIntermediate
	case foundations > 0 && foundDone == foundations:
		return LevelFoundationComplete
	default:
		return LevelBeginner
	}
}
