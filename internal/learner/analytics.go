package learner

import (
	"maps"
	"slices"
	"time"

	"github.com/abhisek/mathlearn/internal/curriculum"
)

const (
	strongThreshold   = 0.7
	weakThreshold     = 0.5
	recurringErrorMin = 3 // more than this many errors makes a pattern

	itemsPerTopic  = 10
	minutesPerItem = 5.0
	nextTopics     = 3
)

// TopicScore pairs a topic with its current score.
type TopicScore struct {
	TopicID string
	Score   float64
}

// WeaknessKind says why a topic is flagged as weak.
type WeaknessKind string

const (
	WeakLowScore       WeaknessKind = "low_score"
	WeakRecurringError WeaknessKind = "recurring_error"
)

// Weakness is one flagged topic. Tag and Count are set for recurring errors.
type Weakness struct {
	TopicID string
	Kind    WeaknessKind
	Score   float64
	Tag     ErrorTag
	Count   int
}

// Trajectory summarizes progress over all attempts.
type Trajectory struct {
	TotalAttempts   int
	Successes       int
	SuccessRate     float64
	TopicsMastered  int
	AverageVelocity float64
	RemainingTopics int
	// TimeToExpert is remaining topics x 10 items x 5 min / average velocity.
	TimeToExpert time.Duration
}

// LevelProgress is mastery within one layer of the curriculum.
type LevelProgress struct {
	Level     int
	Completed int
	Total     int
	Percent   float64
}

// Progress summarizes mastery across the curriculum.
type Progress struct {
	Mastered         int
	Total            int
	Percent          float64
	Path             []LevelProgress
	StrongCategories []curriculum.Category // two or more mastered topics
}

// Analysis is a structured learning report for one learner.
type Analysis struct {
	LearnerID  string
	Level      curriculum.Level
	Strengths  []TopicScore
	FastTopics []string
	Weaknesses []Weakness
	Next       []string
	Trajectory Trajectory
	Progress   Progress
}

// Analyze derives the learning report for s against g. It only reads s.
func Analyze(s *State, g *curriculum.Graph) Analysis {
	a := Analysis{
		LearnerID: s.LearnerID,
		Level:     s.Level(g),
	}

	for _, id := range slices.Sorted(maps.Keys(s.scores)) {
		score := s.scores[id]
		if score >= strongThreshold {
			a.Strengths = append(a.Strengths, TopicScore{TopicID: id, Score: score})
		}
		if score < weakThreshold {
			a.Weaknesses = append(a.Weaknesses, Weakness{TopicID: id, Kind: WeakLowScore, Score: score})
		}
	}
	for _, id := range slices.Sorted(maps.Keys(s.velocity)) {
		if s.velocity[id] >= strongThreshold {
			a.FastTopics = append(a.FastTopics, id)
		}
	}
	for _, id := range slices.Sorted(maps.Keys(s.errors)) {
		h := s.errors[id]
		total := 0
		for _, n := range h {
			total += n
		}
		if total <= recurringErrorMin {
			continue
		}
		tag, n := dominantTag(h)
		a.Weaknesses = append(a.Weaknesses, Weakness{
			TopicID: id, Kind: WeakRecurringError, Score: s.scores[id], Tag: tag, Count: n,
		})
	}

	for _, t := range g.Eligible(s.mastered) {
		if len(a.Next) == nextTopics {
			break
		}
		a.Next = append(a.Next, t.ID)
	}

	a.Trajectory = s.trajectory(g)
	a.Progress = s.progress(g)
	return a
}

// dominantTag returns the most frequent tag; ties go to the smaller tag.
func dominantTag(h map[ErrorTag]int) (ErrorTag, int) {
	var (
		best  ErrorTag
		count int
	)
	for _, tag := range slices.Sorted(maps.Keys(h)) {
		if h[tag] > count {
			best, count = tag, h[tag]
		}
	}
	return best, count
}

func (s *State) trajectory(g *curriculum.Graph) Trajectory {
	t := Trajectory{
		TotalAttempts:   s.totalAttempts,
		TopicsMastered:  len(s.masteredOrder),
		AverageVelocity: InitialVelocity,
	}
	for _, attempts := range s.history {
		for _, at := range attempts {
			if at.Success {
				t.Successes++
			}
		}
	}
	if recorded := s.recordedAttempts(); recorded > 0 {
		t.SuccessRate = float64(t.Successes) / float64(recorded)
	}
	if len(s.velocity) > 0 {
		sum := 0.0
		for _, v := range s.velocity {
			sum += v
		}
		t.AverageVelocity = sum / float64(len(s.velocity))
	}

	for _, tp := range g.Topics() {
		if !s.mastered[tp.ID] {
			t.RemainingTopics++
		}
	}
	minutes := float64(t.RemainingTopics*itemsPerTopic) * minutesPerItem / t.AverageVelocity
	t.TimeToExpert = time.Duration(minutes * float64(time.Minute))
	return t
}

func (s *State) recordedAttempts() int {
	n := 0
	for _, attempts := range s.history {
		n += len(attempts)
	}
	return n
}

func (s *State) progress(g *curriculum.Graph) Progress {
	p := Progress{Total: g.Len()}
	perCategory := make(map[curriculum.Category]int)
	for _, tp := range g.Topics() {
		if s.mastered[tp.ID] {
			p.Mastered++
			perCategory[tp.Category]++
		}
	}
	if p.Total > 0 {
		p.Percent = float64(p.Mastered) / float64(p.Total) * 100
	}

	for i, level := range g.Levels() {
		lp := LevelProgress{Level: i, Total: len(level)}
		for _, id := range level {
			if s.mastered[id] {
				lp.Completed++
			}
		}
		if lp.Total > 0 {
			lp.Percent = float64(lp.Completed) / float64(lp.Total) * 100
		}
		p.Path = append(p.Path, lp)
	}

	for _, c := range slices.Sorted(maps.Keys(perCategory)) {
		if perCategory[c] >= 2 {
			p.StrongCategories = append(p.StrongCategories, c)
		}
	}
	return p
}
