package learner

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/abhisek/mathlearn/internal/curriculum"
	"github.com/abhisek/mathlearn/internal/store"
)

// ErrInvalidSnapshot is returned when snapshot data is out of range.
var ErrInvalidSnapshot = errors.New("invalid learner snapshot")

// SnapshotData exports the state for persistence. The level is derived
// from g; history and error histograms are included.
func (s *State) SnapshotData(g *curriculum.Graph) *store.SnapshotData {
	data := &store.SnapshotData{
		Version:       store.SnapshotVersion,
		LearnerID:     s.LearnerID,
		Mastered:      slices.Clone(s.masteredOrder),
		Scores:        maps.Clone(s.scores),
		Velocity:      maps.Clone(s.velocity),
		TotalAttempts: s.totalAttempts,
	}
	if g != nil {
		data.Level = s.Level(g).String()
	}

	if len(s.history) > 0 {
		data.History = make(map[string][]store.AttemptData, len(s.history))
		for id, attempts := range s.history {
			out := make([]store.AttemptData, len(attempts))
			for i, a := range attempts {
				out[i] = store.AttemptData{
					ItemID:            a.ItemID,
					Difficulty:        a.Difficulty,
					Success:           a.Success,
					PassRate:          a.PassRate,
					ComplexityMatched: a.ComplexityMatched,
					DurationNs:        int64(a.Duration),
					Timestamp:         a.Timestamp.UTC().Format(time.RFC3339Nano),
					Strategy:          a.Strategy,
				}
			}
			data.History[id] = out
		}
	}

	if len(s.errors) > 0 {
		data.ErrorTags = make(map[string]map[string]int, len(s.errors))
		for id, h := range s.errors {
			tags := make(map[string]int, len(h))
			for tag, n := range h {
				tags[string(tag)] = n
			}
			data.ErrorTags[id] = tags
		}
	}
	return data
}

// FromSnapshot rebuilds a State from persisted data. Scores must lie in
// [0, 1] and velocities in [0.1, 1.0]; anything else is rejected with
// ErrInvalidSnapshot rather than silently clamped.
func FromSnapshot(data *store.SnapshotData) (*State, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: nil data", ErrInvalidSnapshot)
	}
	s := New(data.LearnerID)

	for id, v := range data.Scores {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return nil, fmt.Errorf("%w: score %v for %q", ErrInvalidSnapshot, v, id)
		}
		s.scores[id] = v
	}
	for id, v := range data.Velocity {
		if math.IsNaN(v) || v < MinVelocity || v > MaxVelocity {
			return nil, fmt.Errorf("%w: velocity %v for %q", ErrInvalidSnapshot, v, id)
		}
		s.velocity[id] = v
	}
	for _, id := range data.Mastered {
		if s.mastered[id] {
			continue
		}
		s.mastered[id] = true
		s.masteredOrder = append(s.masteredOrder, id)
	}
	if data.TotalAttempts < 0 {
		return nil, fmt.Errorf("%w: negative attempt count", ErrInvalidSnapshot)
	}
	s.totalAttempts = data.TotalAttempts

	for id, attempts := range data.History {
		out := make([]Attempt, 0, len(attempts))
		for _, a := range attempts {
			var ts time.Time
			if a.Timestamp != "" {
				parsed, err := time.Parse(time.RFC3339Nano, a.Timestamp)
				if err != nil {
					return nil, fmt.Errorf("%w: attempt timestamp %q: %v", ErrInvalidSnapshot, a.Timestamp, err)
				}
				ts = parsed
			}
			out = append(out, Attempt{
				TopicID:           id,
				ItemID:            a.ItemID,
				Difficulty:        a.Difficulty,
				Success:           a.Success,
				PassRate:          a.PassRate,
				ComplexityMatched: a.ComplexityMatched,
				Duration:          time.Duration(a.DurationNs),
				Timestamp:         ts,
				Strategy:          a.Strategy,
			})
		}
		s.history[id] = out
	}

	for id, tags := range data.ErrorTags {
		h := make(map[ErrorTag]int, len(tags))
		for tag, n := range tags {
			h[ErrorTag(tag)] = n
		}
		s.errors[id] = h
	}
	return s, nil
}
