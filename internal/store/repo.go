package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no snapshot exists for a learner.
var ErrNotFound = errors.New("store: not found")

// SnapshotVersion is the current SnapshotData format.
const SnapshotVersion = 1

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // sequence > After
	Before    int64     // sequence < Before
	From      time.Time // timestamp >= From
	To        time.Time // timestamp <= To
	LearnerID string    // exact match when set
	SessionID string    // exact match when set
}

// SnapshotData is the persisted form of one learner's state. History and
// ErrorTags are optional; a snapshot without them restores scores,
// velocities and the mastered set only.
type SnapshotData struct {
	Version       int                       `json:"version"`
	LearnerID     string                    `json:"learner_id"`
	Mastered      []string                  `json:"mastered"`
	Scores        map[string]float64        `json:"scores"`
	Velocity      map[string]float64        `json:"velocity"`
	Level         string                    `json:"level"`
	TotalAttempts int                       `json:"total_attempts"`
	History       map[string][]AttemptData  `json:"history,omitempty"`
	ErrorTags     map[string]map[string]int `json:"error_tags,omitempty"`
}

// AttemptData is the persisted form of one attempt record.
type AttemptData struct {
	ItemID            string  `json:"item_id"`
	Difficulty        int     `json:"difficulty"`
	Success           bool    `json:"success"`
	PassRate          float64 `json:"pass_rate"`
	ComplexityMatched bool    `json:"complexity_matched"`
	DurationNs        int64   `json:"duration_ns"`
	Timestamp         string  `json:"timestamp"` // RFC3339Nano
	Strategy          string  `json:"strategy,omitempty"`
}

// Snapshot is a point-in-time capture of one learner's state.
type Snapshot struct {
	ID        int64
	LearnerID string
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages learner state snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot. A zero Sequence is assigned from the
	// global counter and a zero Timestamp is set to now.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot for a learner, or
	// ErrNotFound.
	Latest(ctx context.Context, learnerID string) (*Snapshot, error)

	// Prune deletes all but the keep most recent snapshots of a learner.
	Prune(ctx context.Context, learnerID string, keep int) error

	// Delete removes every snapshot of a learner and reports how many.
	Delete(ctx context.Context, learnerID string) (int, error)

	// Learners lists learner IDs with at least one snapshot, sorted.
	Learners(ctx context.Context) ([]string, error)
}

// AttemptEventData captures one evaluated work item.
type AttemptEventData struct {
	SessionID         string
	LearnerID         string
	TopicID           string
	ItemID            string
	Difficulty        int
	Success           bool
	PassRate          float64
	ComplexityMatched bool
	DurationMs        int64
	Strategy          string
}

// SessionEventData captures a session start or end.
type SessionEventData struct {
	SessionID      string
	LearnerID      string
	Action         string // "start" or "end"
	TargetLevel    string
	FinalLevel     string
	Reason         string
	TopicsTrained  int
	ItemsAttempted int
	Successes      int
	DurationSecs   int
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// Event is a stored event row: the envelope plus one of the payloads.
type Event[T any] struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	Data      T
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	AppendAttempt(ctx context.Context, data AttemptEventData) error
	AppendSession(ctx context.Context, data SessionEventData) error
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	QueryAttempts(ctx context.Context, opts QueryOpts) ([]Event[AttemptEventData], error)
	QuerySessions(ctx context.Context, opts QueryOpts) ([]Event[SessionEventData], error)
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]Event[LLMRequestEventData], error)

	// DeleteLearner removes a learner's attempt and session events.
	DeleteLearner(ctx context.Context, learnerID string) error
}
