// Package learner implements per-learner mastery tracking: scores,
// velocities, attempt history, error histograms and the one-way mastery
// state machine.
package learner

import (
	"maps"
	"math"
	"slices"

	"github.com/abhisek/mathlearn/internal/curriculum"
)

const (
	// InitialVelocity is a topic's velocity before its first attempt.
	InitialVelocity = 0.5
	MinVelocity     = 0.1
	MaxVelocity     = 1.0

	// RecentWindow is how many trailing attempts the mastery predicate reads.
	RecentWindow = 5

	MasteryScore       = 0.8
	MasteryRecentRate  = 0.8
	MasteryMinAttempts = 3
)

// Transition records a topic status change caused by an attempt.
type Transition struct {
	TopicID string
	From    curriculum.TopicStatus
	To      curriculum.TopicStatus
	Trigger string // "first-attempt" or "mastery-criteria-met"
}

// State is one learner's mutable record. It has no internal locking: a
// single session owns it while it runs.
type State struct {
	LearnerID string

	mastered      map[string]bool
	masteredOrder []string
	scores        map[string]float64
	velocity      map[string]float64
	history       map[string][]Attempt
	errors        map[string]map[ErrorTag]int
	totalAttempts int
}

// New returns an empty State with freshly allocated containers.
func New(learnerID string) *State {
	return &State{
		LearnerID: learnerID,
		mastered:  make(map[string]bool),
		scores:    make(map[string]float64),
		velocity:  make(map[string]float64),
		history:   make(map[string][]Attempt),
		errors:    make(map[string]map[ErrorTag]int),
	}
}

// Mastered returns a copy of the mastered set.
func (s *State) Mastered() map[string]bool {
	return maps.Clone(s.mastered)
}

// MasteredList returns mastered topic IDs in the order they were mastered.
func (s *State) MasteredList() []string {
	return slices.Clone(s.masteredOrder)
}

// IsMastered reports whether topicID is mastered.
func (s *State) IsMastered(topicID string) bool {
	return s.mastered[topicID]
}

// Score returns the topic score, 0 for untouched topics.
func (s *State) Score(topicID string) float64 {
	return s.scores[topicID]
}

// Velocity returns the topic velocity and whether the topic was touched.
func (s *State) Velocity(topicID string) (float64, bool) {
	v, ok := s.velocity[topicID]
	return v, ok
}

// History returns a copy of the topic's attempts, oldest first.
func (s *State) History(topicID string) []Attempt {
	return slices.Clone(s.history[topicID])
}

// ErrorHistogram returns a copy of the topic's error-tag counts.
func (s *State) ErrorHistogram(topicID string) map[ErrorTag]int {
	return maps.Clone(s.errors[topicID])
}

// TotalAttempts returns the number of completed attempts across topics.
func (s *State) TotalAttempts() int {
	return s.totalAttempts
}

// TouchedTopics returns, sorted, every topic with a score or history.
func (s *State) TouchedTopics() []string {
	seen := make(map[string]bool, len(s.scores))
	for id := range s.scores {
		seen[id] = true
	}
	for id := range s.history {
		seen[id] = true
	}
	return slices.Sorted(maps.Keys(seen))
}

// Status returns the conceptual state of a topic.
func (s *State) Status(topicID string) curriculum.TopicStatus {
	if s.mastered[topicID] {
		return curriculum.StatusMastered
	}
	if len(s.history[topicID]) > 0 {
		return curriculum.StatusPracticing
	}
	// A reloaded snapshot may carry a score without history.
	if _, ok := s.scores[topicID]; ok {
		return curriculum.StatusPracticing
	}
	return curriculum.StatusUnseen
}

// Level derives the proficiency level from the mastered set.
func (s *State) Level(g *curriculum.Graph) curriculum.Level {
	return g.ProficiencyLevel(s.mastered)
}

// Record folds one attempt into the state: score ratchet, velocity
// update, history append, mastery check, then error tags. It returns the
// status transition the attempt caused, or nil.
func (s *State) Record(a Attempt) *Transition {
	id := a.TopicID
	from := s.Status(id)
	a.PassRate = clampUnit(a.PassRate)

	s.scores[id] = NextScore(s.scores[id], a.PassRate, a.ComplexityMatched)

	v, ok := s.velocity[id]
	if !ok {
		v = InitialVelocity
	}
	s.velocity[id] = NextVelocity(v, a.Success, a.Duration.Seconds())

	s.history[id] = append(s.history[id], a)
	s.totalAttempts++

	if !s.mastered[id] && MasteryHolds(s.scores[id], s.history[id]) {
		s.mastered[id] = true
		s.masteredOrder = append(s.masteredOrder, id)
	}

	if tags := a.ErrorTags(); len(tags) > 0 {
		h := s.errors[id]
		if h == nil {
			h = make(map[ErrorTag]int)
			s.errors[id] = h
		}
		for _, tag := range tags {
			h[tag]++
		}
	}

	to := s.Status(id)
	if from == to {
		return nil
	}
	trigger := "first-attempt"
	if to == curriculum.StatusMastered {
		trigger = "mastery-criteria-met"
	}
	return &Transition{TopicID: id, From: from, To: to, Trigger: trigger}
}

// NextScore applies the one-way score ratchet:
// min(1, score + 0.10*passRate + 0.05 if the complexity matched).
func NextScore(score, passRate float64, complexityMatched bool) float64 {
	next := score + 0.10*clampUnit(passRate)
	if complexityMatched {
		next += 0.05
	}
	return math.Min(1.0, next)
}

// NextVelocity applies one velocity step and clamps to [0.1, 1.0]:
// +0.10 on success, -0.05 on failure, +0.05 when under a minute.
func NextVelocity(velocity float64, success bool, durationSeconds float64) float64 {
	if success {
		velocity += 0.10
	} else {
		velocity -= 0.05
	}
	if durationSeconds < 60 {
		velocity += 0.05
	}
	return clamp(velocity, MinVelocity, MaxVelocity)
}

// MasteryHolds evaluates the mastery predicate: score at least 0.8, at
// least 80% successes over the last five attempts, and at least three
// attempts in total.
func MasteryHolds(score float64, history []Attempt) bool {
	if len(history) < MasteryMinAttempts || score < MasteryScore {
		return false
	}
	recent := history[max(0, len(history)-RecentWindow):]
	successes := 0
	for _, a := range recent {
		if a.Success {
			successes++
		}
	}
	return float64(successes)/float64(len(recent)) >= MasteryRecentRate
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// clampUnit maps NaN to 0 and clamps into [0, 1].
func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return clamp(v, 0, 1)
}
