package curriculum

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCycleDetected means the layering could not place every topic.
	ErrCycleDetected = errors.New("curriculum: cycle detected")

	// ErrIncomplete means the topic set is structurally invalid: duplicate
	// or empty ids, dangling prerequisites, or undeclared tiers.
	ErrIncomplete = errors.New("curriculum: incomplete prerequisite graph")
)

// ConfigurationError reports a topic set that cannot form a Graph. It is
// fatal at construction and never retried.
type ConfigurationError struct {
	Err      error    // ErrCycleDetected or ErrIncomplete
	Topics   []string // topics involved, sorted
	Problems []string // one line per problem found
}

func (e *ConfigurationError) Error() string {
	if len(e.Problems) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v:\n  %s", e.Err, strings.Join(e.Problems, "\n  "))
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
