package session

import (
	"time"

	"github.com/abhisek/mathlearn/internal/curriculum"
)

// Reason is why a session stopped. All reasons are normal terminations;
// fatal failures are returned as errors instead.
type Reason string

const (
	ReasonTargetReached Reason = "target_reached"
	ReasonExhausted     Reason = "exhausted"
	ReasonSafetyLimit   Reason = "safety_limit"
)

// ItemResult is one attempted work item.
type ItemResult struct {
	ItemID            string
	Difficulty        int
	Strategy          string
	Rationale         string
	Success           bool
	PassRate          float64
	ComplexityMatched bool
	Duration          time.Duration
	Err               string // evaluator or factory failure, if any
}

// TopicRun is the outcome of one batch on one topic. Success means the
// topic was mastered when the batch ended.
type TopicRun struct {
	TopicID  string
	Level    curriculum.Level // proficiency level the batch policy came from
	Items    []ItemResult
	Success  bool
	Duration time.Duration
	PassRate float64 // mean over Items
}

// Successes counts successful items.
func (r TopicRun) Successes() int {
	n := 0
	for _, it := range r.Items {
		if it.Success {
			n++
		}
	}
	return n
}

func (r *TopicRun) add(it ItemResult) {
	r.Items = append(r.Items, it)
	r.Duration += it.Duration
	var sum float64
	for _, it := range r.Items {
		sum += it.PassRate
	}
	r.PassRate = sum / float64(len(r.Items))
}

// Report summarizes a finished session.
type Report struct {
	SessionID      string
	LearnerID      string
	TargetLevel    curriculum.Level
	FinalLevel     curriculum.Level
	Topics         []TopicRun
	ItemsAttempted int
	Successes      int
	Reason         Reason
	StartedAt      time.Time
	Elapsed        time.Duration
}

// SuccessRate returns Successes / ItemsAttempted, or 0 with no items.
func (r *Report) SuccessRate() float64 {
	if r.ItemsAttempted == 0 {
		return 0
	}
	return float64(r.Successes) / float64(r.ItemsAttempted)
}

// TopicsMastered returns, in order, the topics whose batch ended mastered.
func (r *Report) TopicsMastered() []string {
	var out []string
	for _, t := range r.Topics {
		if t.Success {
			out = append(out, t.TopicID)
		}
	}
	return out
}

func (r *Report) addTopic(run TopicRun) {
	r.Topics = append(r.Topics, run)
	r.ItemsAttempted += len(run.Items)
	r.Successes += run.Successes()
}
