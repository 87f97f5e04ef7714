package session

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTopic is returned by TrainTopic for a topic not in the graph.
	ErrUnknownTopic = errors.New("session: unknown topic")
	// ErrDuplicateLearner is returned when one run lists a learner twice.
	ErrDuplicateLearner = errors.New("session: duplicate learner id")
)

// PersistenceError is a fatal storage failure. The learner's in-memory
// state is complete when it is returned, so the caller may retry the save.
type PersistenceError struct {
	LearnerID string
	Op        string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s for learner %s: %v", e.Op, e.LearnerID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
