package evaluate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/mathlearn/internal/curriculum"
)

// ErrFixtureExhausted is returned when no scripted step matches and no
// fallback is set.
var ErrFixtureExhausted = errors.New("evaluate: fixture exhausted")

// Step is one scripted outcome. A step with a Topic only answers items of
// that topic. An empty Complexity means the item's expected complexity.
type Step struct {
	Topic           string                `yaml:"topic,omitempty"`
	Passed          bool                  `yaml:"passed"`
	PassRate        float64               `yaml:"pass_rate"`
	Complexity      curriculum.Complexity `yaml:"complexity,omitempty"`
	DurationSeconds float64               `yaml:"duration_seconds"`
}

// Pass is a step that passes every test at the expected complexity.
func Pass(durationSeconds float64) Step {
	return Step{Passed: true, PassRate: 1, DurationSeconds: durationSeconds}
}

// Fail is a step that fails with the given pass rate.
func Fail(passRate, durationSeconds float64) Step {
	return Step{PassRate: passRate, DurationSeconds: durationSeconds}
}

// ForTopic restricts a step to one topic.
func (s Step) ForTopic(topicID string) Step {
	s.Topic = topicID
	return s
}

// WithComplexity sets the observed complexity.
func (s Step) WithComplexity(c curriculum.Complexity) Step {
	s.Complexity = c
	return s
}

// Fixture answers submissions from a script. Each Evaluate consumes the
// first step matching the item's topic; once the script runs dry the
// fallback step, if any, answers every submission.
type Fixture struct {
	mu       sync.Mutex
	steps    []Step
	fallback *Step
	calls    []Submission
}

// NewFixture returns a fixture that plays steps in order.
func NewFixture(steps ...Step) *Fixture {
	return &Fixture{steps: steps}
}

// WithFallback sets the step used once the script is exhausted.
func (f *Fixture) WithFallback(s Step) *Fixture {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fallback = &s
	return f
}

func (f *Fixture) Evaluate(ctx context.Context, sub Submission) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sub)

	step, ok := f.next(sub.Item.TopicID)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: no step for item %s", ErrFixtureExhausted, sub.Item.ID)
	}

	observed := step.Complexity
	if observed == "" {
		observed = sub.Item.ExpectedComplexity
	}
	return Outcome{
		Passed:             step.Passed,
		PassRate:           step.PassRate,
		ObservedComplexity: observed,
		DurationSeconds:    step.DurationSeconds,
	}, nil
}

func (f *Fixture) next(topicID string) (Step, bool) {
	for i, s := range f.steps {
		if s.Topic == "" || s.Topic == topicID {
			f.steps = append(f.steps[:i:i], f.steps[i+1:]...)
			return s, true
		}
	}
	if f.fallback != nil {
		return *f.fallback, true
	}
	return Step{}, false
}

// Remaining returns the number of unplayed steps.
func (f *Fixture) Remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.steps)
}

// Calls returns the submissions seen so far.
func (f *Fixture) Calls() []Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Submission, len(f.calls))
	copy(out, f.calls)
	return out
}

type fixtureDoc struct {
	Steps    []Step `yaml:"steps"`
	Fallback *Step  `yaml:"fallback"`
}

// LoadFixture reads a fixture script from a YAML file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes a YAML fixture script:
//
//	steps:
//	  - topic: arithmetic
//	    passed: true
//	    pass_rate: 1.0
//	    duration_seconds: 30
//	fallback:
//	  passed: false
//	  pass_rate: 0.5
func ParseFixture(data []byte) (*Fixture, error) {
	var doc fixtureDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	for i := range doc.Steps {
		s, err := normalize(doc.Steps[i])
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		doc.Steps[i] = s
	}
	f := NewFixture(doc.Steps...)
	if doc.Fallback != nil {
		s, err := normalize(*doc.Fallback)
		if err != nil {
			return nil, fmt.Errorf("fallback: %w", err)
		}
		f.WithFallback(s)
	}
	return f, nil
}

// normalize range-checks a decoded step and canonicalizes its complexity.
func normalize(s Step) (Step, error) {
	if s.PassRate < 0 || s.PassRate > 1 {
		return s, fmt.Errorf("pass_rate %v outside [0, 1]", s.PassRate)
	}
	if s.DurationSeconds < 0 {
		return s, fmt.Errorf("negative duration_seconds")
	}
	if s.Complexity != "" {
		c, err := curriculum.ParseComplexity(string(s.Complexity))
		if err != nil {
			return s, err
		}
		s.Complexity = c
	}
	return s, nil
}
