package curriculum

import (
	"fmt"
	"strings"
)

// Difficulty is the ordered difficulty tier of a topic.
type Difficulty int

const (
	Beginner Difficulty = iota + 1
	Intermediate
	Advanced
	Expert
)

// AllDifficulties returns the tiers in ascending order.
func AllDifficulties() []Difficulty {
	return []Difficulty{Beginner, Intermediate, Advanced, Expert}
}

func (d Difficulty) String() string {
	switch d {
	case Beginner:
		return "beginner"
	case Intermediate:
		return "intermediate"
	case Advanced:
		return "advanced"
	case Expert:
		return "expert"
	default:
		return fmt.Sprintf("difficulty(%d)", int(d))
	}
}

// Valid reports whether d is one of the four declared tiers.
func (d Difficulty) Valid() bool {
	return d >= Beginner && d <= Expert
}

// ParseDifficulty parses a tier name, case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	for _, d := range AllDifficulties() {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown difficulty %q", s)
}

// Complexity is an asymptotic complexity class.
type Complexity string

const (
	ComplexityConstant    Complexity = "O(1)"
	ComplexityLogarithmic Complexity = "O(log n)"
	ComplexityLinear      Complexity = "O(n)"
	ComplexityLinearithm  Complexity = "O(n log n)"
	ComplexityQuadratic   Complexity = "O(n^2)"
	ComplexityCubic       Complexity = "O(n^3)"
	ComplexityExponential Complexity = "O(2^n)"
)

// AllComplexities returns the complexity classes from cheapest to most
// expensive.
func AllComplexities() []Complexity {
	return []Complexity{
		ComplexityConstant,
		ComplexityLogarithmic,
		ComplexityLinear,
		ComplexityLinearithm,
		ComplexityQuadratic,
		ComplexityCubic,
		ComplexityExponential,
	}
}

// ParseComplexity normalises and validates a complexity class. Superscript
// exponents ("O(n²)") are accepted.
func ParseComplexity(s string) (Complexity, error) {
	norm := strings.NewReplacer("²", "^2", "³", "^3", " ", "").Replace(strings.TrimSpace(s))
	for _, c := range AllComplexities() {
		if strings.EqualFold(norm, strings.ReplaceAll(string(c), " ", "")) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown complexity class %q", s)
}

// Category groups topics for reporting.
type Category string

const (
	CategoryFoundations   Category = "foundations"
	CategoryCoreMath      Category = "core_mathematics"
	CategoryAdvancedMath  Category = "advanced_mathematics"
	CategoryTheoreticalCS Category = "theoretical_cs"
	CategoryCuttingEdge   Category = "cutting_edge"
)

// Topic is one unit of curriculum content. Topics are immutable once a
// Graph has been built from them.
type Topic struct {
	ID            string
	Name          string
	Category      Category
	Difficulty    Difficulty
	Prerequisites []string
	Complexity    Complexity
	Depth         int
	KeyAlgorithms []string
}

// DisplayName returns Name, or ID when no name is set.
func (t Topic) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// HasPrerequisite reports whether id is a direct prerequisite of t.
func (t Topic) HasPrerequisite(id string) bool {
	for _, p := range t.Prerequisites {
		if p == id {
			return true
		}
	}
	return false
}

// TopicStatus is the conceptual per-topic mastery state.
type TopicStatus int

const (
	StatusUnseen TopicStatus = iota
	StatusPracticing
	StatusMastered
)

func (s TopicStatus) String() string {
	switch s {
	case StatusPracticing:
		return "practicing"
	case StatusMastered:
		return "mastered"
	default:
		return "unseen"
	}
}

// Icon returns a single glyph for s.
func (s TopicStatus) Icon() string {
	switch s {
	case StatusMastered:
		return "★"
	case StatusPracticing:
		return "◐"
	default:
		return "○"
	}
}
