package views

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathlearn/internal/curriculum"
	"github.com/abhisek/mathlearn/internal/learner"
	"github.com/abhisek/mathlearn/internal/session"
	"github.com/abhisek/mathlearn/internal/ui/components"
)

func testGraph(t *testing.T) *curriculum.Graph {
	t.Helper()
	g, err := curriculum.Build([]curriculum.Topic{
		{ID: "arithmetic", Name: "Arithmetic", Difficulty: curriculum.Beginner, Complexity: curriculum.ComplexityLinear},
		{ID: "number_theory", Name: "Number Theory", Difficulty: curriculum.Intermediate, Complexity: curriculum.ComplexityLinear, Prerequisites: []string{"arithmetic"}},
	})
	require.NoError(t, err)
	return g
}

func TestReport(t *testing.T) {
	r := &session.Report{
		SessionID:      "0123456789abcdef",
		LearnerID:      "ada",
		TargetLevel:    curriculum.LevelFoundationComplete,
		FinalLevel:     curriculum.LevelFoundationComplete,
		ItemsAttempted: 3,
		Successes:      3,
		Reason:         session.ReasonTargetReached,
		Elapsed:        1500 * time.Millisecond,
		Topics: []session.TopicRun{{
			TopicID: "arithmetic",
			Level:   curriculum.LevelBeginner,
			Success: true,
			Items: []session.ItemResult{
				{ItemID: "arith_1", Success: true, PassRate: 1},
				{ItemID: "arith_2", Success: true, PassRate: 1},
				{ItemID: "arith_3", Success: true, PassRate: 1},
			},
			PassRate: 1,
		}},
	}

	out := Report(r)
	for _, want := range []string{"Session 01234567", "ada", "target reached", "3 attempted, 3 solved (100%)", "arithmetic", "3/3"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "89abcdef")
}

func TestReport_NoTopics(t *testing.T) {
	out := Report(&session.Report{LearnerID: "ada", Reason: session.ReasonExhausted})
	assert.Contains(t, out, "curriculum exhausted")
	assert.NotContains(t, out, "Mastered")
}

func TestTopicRun_ShowsErrors(t *testing.T) {
	out := TopicRun(session.TopicRun{
		TopicID: "arithmetic",
		Items: []session.ItemResult{
			{ItemID: "arith_1", Strategy: "modular_reduction", Success: true},
			{ItemID: "arithmetic_placeholder_1", Err: "factory down"},
		},
	})
	assert.Contains(t, out, "arithmetic: 1/2 solved")
	assert.Contains(t, out, "modular_reduction")
	assert.Contains(t, out, "factory down")
}

func TestAnalysis(t *testing.T) {
	g := testGraph(t)
	st := learner.New("ada")
	for range 3 {
		st.Record(learner.Attempt{TopicID: "arithmetic", PassRate: 1, ComplexityMatched: true, Success: true, Duration: time.Minute})
	}

	out := Analysis(learner.Analyze(st, g))
	assert.Contains(t, out, "ada")
	assert.Contains(t, out, "Mastery")
	assert.Contains(t, out, "Trajectory")
	assert.Contains(t, out, "3 attempts")
}

func TestBenchmark(t *testing.T) {
	out := Benchmark([]session.BenchmarkEntry{
		{Rank: 1, LearnerID: "fast", Solved: 4, Attempted: 4, Duration: 90 * time.Second},
		{Rank: 2, LearnerID: "slow", Solved: 2, Attempted: 4},
	})
	assert.Contains(t, out, "fast")
	assert.Contains(t, out, "4/4")
	assert.Contains(t, out, "1m30s")
	assert.Less(t, strings.Index(out, "fast"), strings.Index(out, "slow"))
}

func TestCurriculum(t *testing.T) {
	g := testGraph(t)

	plain := Curriculum(g, nil)
	assert.Contains(t, plain, "2 topics")
	assert.Contains(t, plain, "Layer 0")
	assert.Contains(t, plain, "Number Theory")
	assert.Less(t, strings.Index(plain, "Arithmetic"), strings.Index(plain, "Number Theory"))

	withState := Curriculum(g, learner.New("ada"))
	assert.Contains(t, withState, "○")
}

func TestProgressBarWidth(t *testing.T) {
	bar := components.NewProgressBar("", 0.5, false, 20).View()
	assert.Equal(t, 10, strings.Count(bar, "█"))
	assert.Equal(t, 10, strings.Count(bar, "░"))

	over := components.NewProgressBar("", 1.7, false, 8).View()
	assert.Equal(t, 8, strings.Count(over, "█"))
}
