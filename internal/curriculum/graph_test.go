package curriculum

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func topic(id string, d Difficulty, prereqs ...string) Topic {
	return Topic{ID: id, Difficulty: d, Prerequisites: prereqs, Complexity: ComplexityLinear}
}

func ids(topics []Topic) []string {
	out := make([]string, len(topics))
	for i, t := range topics {
		out[i] = t.ID
	}
	return out
}

func mustBuild(t *testing.T, topics []Topic) *Graph {
	t.Helper()
	g, err := Build(topics)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func diamond() []Topic {
	return []Topic{
		topic("D", Beginner, "B", "C"),
		topic("C", Beginner, "A"),
		topic("B", Beginner, "A"),
		topic("A", Beginner),
	}
}

func TestBuild_DiamondLevels(t *testing.T) {
	g := mustBuild(t, diamond())

	want := [][]string{{"A"}, {"B", "C"}, {"D"}}
	if diff := cmp.Diff(want, g.Levels()); diff != "" {
		t.Errorf("levels mismatch (-want +got):\n%s", diff)
	}

	got := ids(g.Eligible(map[string]bool{"A": true}))
	if diff := cmp.Diff([]string{"B", "C"}, got); diff != "" {
		t.Errorf("eligible mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_LevelZeroIsExactlyRoots(t *testing.T) {
	g := mustBuild(t, diamond())
	for _, tp := range g.Topics() {
		level, _ := g.LevelOf(tp.ID)
		if (level == 0) != (len(tp.Prerequisites) == 0) {
			t.Errorf("topic %s: level %d with %d prerequisites", tp.ID, level, len(tp.Prerequisites))
		}
	}
}

// randomDAG builds n topics where each topic may only depend on topics
// with a smaller index, so the relation is acyclic by construction.
func randomDAG(r *rand.Rand, n int) []Topic {
	topics := make([]Topic, n)
	for i := range n {
		var prereqs []string
		for j := range i {
			if r.IntN(3) == 0 {
				prereqs = append(prereqs, topicID(j))
			}
		}
		d := AllDifficulties()[r.IntN(4)]
		topics[i] = topic(topicID(i), d, prereqs...)
	}
	r.Shuffle(len(topics), func(i, j int) { topics[i], topics[j] = topics[j], topics[i] })
	return topics
}

func topicID(i int) string {
	return string(rune('a'+i%26)) + string(rune('a'+i/26))
}

func TestBuild_LevelsRespectPrerequisites(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for trial := range 50 {
		topics := randomDAG(r, 2+r.IntN(20))
		g, err := Build(topics)
		if err != nil {
			t.Fatalf("trial %d: Build: %v", trial, err)
		}

		seen := 0
		for _, level := range g.Levels() {
			seen += len(level)
		}
		if seen != len(topics) {
			t.Fatalf("trial %d: levels hold %d topics, want %d", trial, seen, len(topics))
		}

		for _, tp := range topics {
			lt, ok := g.LevelOf(tp.ID)
			if !ok {
				t.Fatalf("trial %d: topic %s has no level", trial, tp.ID)
			}
			for _, p := range tp.Prerequisites {
				lp, _ := g.LevelOf(p)
				if lt <= lp {
					t.Errorf("trial %d: %s at level %d not above prerequisite %s at level %d", trial, tp.ID, lt, p, lp)
				}
			}
		}
	}
}

func TestBuild_Cycles(t *testing.T) {
	tests := []struct {
		name       string
		topics     []Topic
		wantTopics []string
	}{
		{
			name:       "two-node cycle",
			topics:     []Topic{topic("A", Beginner, "B"), topic("B", Beginner, "A")},
			wantTopics: []string{"A", "B"},
		},
		{
			name:       "self loop",
			topics:     []Topic{topic("root", Beginner), topic("loop", Beginner, "loop")},
			wantTopics: []string{"loop"},
		},
		{
			name: "cycle blocks dependents",
			topics: []Topic{
				topic("root", Beginner),
				topic("x", Beginner, "root", "z"),
				topic("y", Beginner, "x"),
				topic("z", Beginner, "y"),
				topic("tail", Beginner, "z"),
			},
			wantTopics: []string{"tail", "x", "y", "z"},
		},
		{
			name:       "no roots at all",
			topics:     []Topic{topic("p", Beginner, "q"), topic("q", Beginner, "r"), topic("r", Beginner, "p")},
			wantTopics: []string{"p", "q", "r"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(tt.topics)
			if g != nil {
				t.Fatal("expected no graph on cycle")
			}
			if !errors.Is(err, ErrCycleDetected) {
				t.Fatalf("expected ErrCycleDetected, got %v", err)
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigurationError, got %T", err)
			}
			if diff := cmp.Diff(tt.wantTopics, cfgErr.Topics); diff != "" {
				t.Errorf("cycle topics mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuild_Incomplete(t *testing.T) {
	tests := []struct {
		name   string
		topics []Topic
	}{
		{"empty", nil},
		{"dangling prerequisite", []Topic{topic("A", Beginner, "ghost")}},
		{"duplicate id", []Topic{topic("A", Beginner), topic("A", Intermediate)}},
		{"empty id", []Topic{topic("", Beginner)}},
		{"undeclared difficulty", []Topic{topic("A", Difficulty(9))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(tt.topics)
			if g != nil {
				t.Fatal("expected no graph")
			}
			if !errors.Is(err, ErrIncomplete) {
				t.Fatalf("expected ErrIncomplete, got %v", err)
			}
		})
	}
}

func TestBuild_DoesNotAliasInput(t *testing.T) {
	topics := diamond()
	g := mustBuild(t, topics)
	topics[0].Prerequisites[0] = "mutated"

	d, _ := g.Topic("D")
	if d.Prerequisites[0] != "B" {
		t.Errorf("graph topic changed through caller slice: %v", d.Prerequisites)
	}
}

func TestEligible_OrderByDifficultyThenLevelThenID(t *testing.T) {
	g := mustBuild(t, []Topic{
		topic("zeta", Beginner),
		topic("alpha", Advanced),
		topic("beta", Beginner, "zeta"),
		topic("gamma", Beginner),
		topic("delta", Intermediate, "zeta"),
	})

	got := ids(g.Eligible(map[string]bool{"zeta": true}))
	want := []string{"gamma", "beta", "delta", "alpha"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("eligible order mismatch (-want +got):\n%s", diff)
	}
}

func TestEligible_SoundAndComplete(t *testing.T) {
	g, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	all := g.Topics()

	for mask := 0; mask < 1<<len(all); mask++ {
		mastered := make(map[string]bool)
		for i, tp := range all {
			if mask&(1<<i) != 0 {
				mastered[tp.ID] = true
			}
		}

		got := g.Eligible(mastered)
		returned := make(map[string]bool)
		for _, tp := range got {
			returned[tp.ID] = true
			if mastered[tp.ID] {
				t.Fatalf("mask %b: mastered topic %s returned", mask, tp.ID)
			}
			for _, p := range tp.Prerequisites {
				if !mastered[p] {
					t.Fatalf("mask %b: %s returned with unmastered prerequisite %s", mask, tp.ID, p)
				}
			}
		}

		for _, tp := range all {
			if mastered[tp.ID] || returned[tp.ID] {
				continue
			}
			if g.IsUnlocked(tp.ID, mastered) {
				t.Fatalf("mask %b: qualifying topic %s omitted", mask, tp.ID)
			}
		}

		if diff := cmp.Diff(ids(got), ids(g.Eligible(mastered))); diff != "" {
			t.Fatalf("mask %b: eligible not idempotent:\n%s", mask, diff)
		}
	}
}

func TestEligible_FullyMasteredIsEmpty(t *testing.T) {
	g := mustBuild(t, diamond())
	mastered := map[string]bool{"A": true, "B": true, "C": true, "D": true}
	if got := g.Eligible(mastered); len(got) != 0 {
		t.Errorf("expected no eligible topics, got %v", ids(got))
	}
}

func TestEligible_IgnoresUnknownMastered(t *testing.T) {
	g := mustBuild(t, diamond())
	got := ids(g.Eligible(map[string]bool{"nope": true}))
	if diff := cmp.Diff([]string{"A"}, got); diff != "" {
		t.Errorf("eligible mismatch (-want +got):\n%s", diff)
	}
}

func TestLookups(t *testing.T) {
	g := mustBuild(t, diamond())

	if _, ok := g.Topic("missing"); ok {
		t.Error("Topic(missing) should report absent")
	}
	if _, ok := g.LevelOf("missing"); ok {
		t.Error("LevelOf(missing) should report absent")
	}
	if got := g.Prerequisites("missing"); got != nil {
		t.Errorf("Prerequisites(missing) = %v, want nil", got)
	}
	if diff := cmp.Diff([]string{"B", "C"}, ids(g.Dependents("A"))); diff != "" {
		t.Errorf("dependents mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"B", "C"}, ids(g.Prerequisites("D"))); diff != "" {
		t.Errorf("prerequisites mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"B", "C", "D"}, ids(g.Blocked(map[string]bool{}))); diff != "" {
		t.Errorf("blocked mismatch (-want +got):\n%s", diff)
	}
}

func TestDefault(t *testing.T) {
	g, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if g.Len() != 8 {
		t.Fatalf("got %d topics, want 8", g.Len())
	}

	want := [][]string{
		{"arithmetic"},
		{"linear_algebra", "number_theory"},
		{"calculus", "graph_theory"},
		{"optimization"},
		{"computational_complexity"},
		{"quantum_computing"},
	}
	if diff := cmp.Diff(want, g.Levels()); diff != "" {
		t.Errorf("default levels mismatch (-want +got):\n%s", diff)
	}

	la, ok := g.Topic("linear_algebra")
	if !ok {
		t.Fatal("linear_algebra missing")
	}
	if la.Complexity != ComplexityCubic {
		t.Errorf("linear_algebra complexity = %q, want %q", la.Complexity, ComplexityCubic)
	}
	if la.Category != CategoryCoreMath {
		t.Errorf("linear_algebra category = %q", la.Category)
	}
	if la.Name != "Linear Algebra" {
		t.Errorf("linear_algebra name = %q", la.Name)
	}
}
