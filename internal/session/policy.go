package session

import (
	"github.com/abhisek/mathlearn/internal/content"
	"github.com/abhisek/mathlearn/internal/curriculum"
)

// Policy is how many items a batch requests and over which difficulties.
type Policy struct {
	Count int
	Range content.DifficultyRange
}

// DefaultSafetyLimit caps the topics trained in one session.
const DefaultSafetyLimit = 10

var (
	beginnerPolicy     = Policy{Count: 3, Range: content.DifficultyRange{Min: 1, Max: 2}}
	intermediatePolicy = Policy{Count: 5, Range: content.DifficultyRange{Min: 2, Max: 3}}
	advancedPolicy     = Policy{Count: 7, Range: content.DifficultyRange{Min: 2, Max: 4}}
)

// PolicyFor returns the batch policy for a proficiency level. Higher
// levels get more and harder items.
func PolicyFor(l curriculum.Level) Policy {
	switch {
	case l >= curriculum.LevelAdvanced:
		return advancedPolicy
	case l >= curriculum.LevelFoundationComplete:
		return intermediatePolicy
	default:
		return beginnerPolicy
	}
}
