package evaluate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/abhisek/mathlearn/internal/content"
	"github.com/abhisek/mathlearn/internal/curriculum"
)

func item(id, topic string, c curriculum.Complexity) content.WorkItem {
	return content.WorkItem{ID: id, TopicID: topic, Difficulty: 1, TestCount: 3, ExpectedComplexity: c}
}

func submit(it content.WorkItem) Submission {
	return Submission{LearnerID: "ada", Item: it}
}

func TestFixturePlaysStepsInOrder(t *testing.T) {
	f := NewFixture(Pass(30), Fail(0.5, 90))
	ctx := context.Background()
	it := item("arith_1", "arithmetic", curriculum.ComplexityLogarithmic)

	got, err := f.Evaluate(ctx, submit(it))
	if err != nil {
		t.Fatal(err)
	}
	want := Outcome{Passed: true, PassRate: 1, ObservedComplexity: curriculum.ComplexityLogarithmic, DurationSeconds: 30}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("first outcome mismatch (-want +got):\n%s", diff)
	}
	if !got.ComplexityMatched(it) {
		t.Error("default complexity should match the item")
	}

	got, err = f.Evaluate(ctx, submit(it))
	if err != nil {
		t.Fatal(err)
	}
	if got.Passed || got.PassRate != 0.5 || got.DurationSeconds != 90 {
		t.Errorf("second outcome = %+v", got)
	}

	if _, err := f.Evaluate(ctx, submit(it)); !errors.Is(err, ErrFixtureExhausted) {
		t.Errorf("exhausted err = %v, want ErrFixtureExhausted", err)
	}
	if n := len(f.Calls()); n != 3 {
		t.Errorf("Calls() = %d, want 3", n)
	}
}

func TestFixtureTopicSteps(t *testing.T) {
	f := NewFixture(
		Fail(0, 10).ForTopic("calculus"),
		Pass(20).ForTopic("arithmetic"),
		Pass(40),
	)
	ctx := context.Background()

	got, err := f.Evaluate(ctx, submit(item("arith_1", "arithmetic", curriculum.ComplexityLinear)))
	if err != nil {
		t.Fatal(err)
	}
	if got.DurationSeconds != 20 {
		t.Errorf("arithmetic got step with duration %v, want 20", got.DurationSeconds)
	}

	got, err = f.Evaluate(ctx, submit(item("arith_2", "arithmetic", curriculum.ComplexityLinear)))
	if err != nil {
		t.Fatal(err)
	}
	if got.DurationSeconds != 40 {
		t.Errorf("arithmetic got step with duration %v, want the untargeted 40", got.DurationSeconds)
	}
	if f.Remaining() != 1 {
		t.Errorf("Remaining() = %d, want 1", f.Remaining())
	}
}

func TestFixtureFallbackAndComplexity(t *testing.T) {
	f := NewFixture().WithFallback(Pass(5).WithComplexity(curriculum.ComplexityCubic))
	it := item("linalg_1", "linear_algebra", curriculum.ComplexityQuadratic)

	for i := 0; i < 3; i++ {
		got, err := f.Evaluate(context.Background(), submit(it))
		if err != nil {
			t.Fatal(err)
		}
		if got.ComplexityMatched(it) {
			t.Error("cubic observed should not match quadratic expected")
		}
	}
}

func TestFixtureCancelled(t *testing.T) {
	f := NewFixture(Pass(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.Evaluate(ctx, submit(item("x_1", "x", ""))); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if f.Remaining() != 1 {
		t.Error("cancelled evaluation consumed a step")
	}
}

func TestParseFixture(t *testing.T) {
	data := []byte(`
steps:
  - topic: arithmetic
    passed: true
    pass_rate: 1.0
    duration_seconds: 30
  - passed: false
    pass_rate: 0.25
    complexity: "O(n²)"
    duration_seconds: 120
fallback:
  passed: true
  pass_rate: 1
  duration_seconds: 15
`)
	f, err := ParseFixture(data)
	if err != nil {
		t.Fatalf("ParseFixture: %v", err)
	}
	ctx := context.Background()
	it := item("calc_1", "calculus", curriculum.ComplexityLinear)

	got, err := f.Evaluate(ctx, submit(it))
	if err != nil {
		t.Fatal(err)
	}
	if got.ObservedComplexity != curriculum.ComplexityQuadratic || got.PassRate != 0.25 {
		t.Errorf("calculus outcome = %+v, want the untargeted step", got)
	}

	got, err = f.Evaluate(ctx, submit(it))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Passed || got.DurationSeconds != 15 {
		t.Errorf("fallback outcome = %+v", got)
	}
}

func TestParseFixtureErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not yaml", "steps: [unclosed"},
		{"pass rate above one", "steps:\n  - pass_rate: 1.5\n"},
		{"negative duration", "steps:\n  - duration_seconds: -1\n"},
		{"unknown complexity", "steps:\n  - complexity: O(n!)\n"},
		{"bad fallback", "fallback:\n  pass_rate: -0.1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFixture([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	if err := os.WriteFile(path, []byte("steps:\n  - passed: true\n    pass_rate: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if f.Remaining() != 1 {
		t.Errorf("Remaining() = %d, want 1", f.Remaining())
	}

	if _, err := LoadFixture(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRandomDeterministic(t *testing.T) {
	run := func() []Outcome {
		r, err := NewRandom(99, DefaultRandomConfig())
		if err != nil {
			t.Fatal(err)
		}
		var out []Outcome
		for i := 0; i < 50; i++ {
			o, err := r.Evaluate(context.Background(), submit(item("calc_1", "calculus", curriculum.ComplexityLogarithmic)))
			if err != nil {
				t.Fatal(err)
			}
			out = append(out, o)
		}
		return out
	}

	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("same seed produced different outcomes (-first +second):\n%s", diff)
	}
}

func TestRandomOutcomeBounds(t *testing.T) {
	cfg := DefaultRandomConfig()
	r, err := NewRandom(7, cfg)
	if err != nil {
		t.Fatal(err)
	}
	it := item("graph_1", "graph_theory", curriculum.ComplexityCubic)

	var passed, matched int
	const n = 2000
	for i := 0; i < n; i++ {
		o, err := r.Evaluate(context.Background(), submit(it))
		if err != nil {
			t.Fatal(err)
		}
		if o.PassRate < 0 || o.PassRate > 1 {
			t.Fatalf("pass rate %v out of range", o.PassRate)
		}
		if o.Passed != (o.PassRate == 1) {
			t.Fatalf("passed=%v with pass rate %v", o.Passed, o.PassRate)
		}
		if o.DurationSeconds < cfg.MinSeconds || o.DurationSeconds > cfg.MaxSeconds {
			t.Fatalf("duration %v out of range", o.DurationSeconds)
		}
		if o.Passed {
			passed++
		}
		if o.ComplexityMatched(it) {
			matched++
		}
	}

	// 0.7^3 = 0.343 of items pass all three tests.
	if rate := float64(passed) / n; rate < 0.28 || rate > 0.41 {
		t.Errorf("pass rate %v far from 0.343", rate)
	}
	if rate := float64(matched) / n; rate < 0.53 || rate > 0.67 {
		t.Errorf("optimal rate %v far from 0.6", rate)
	}
}

func TestRandomExtremes(t *testing.T) {
	always, err := NewRandom(1, RandomConfig{PassProbability: 1, OptimalProbability: 1, MinSeconds: 5, MaxSeconds: 5})
	if err != nil {
		t.Fatal(err)
	}
	never, err := NewRandom(1, RandomConfig{PassProbability: 0, OptimalProbability: 0, MinSeconds: 5, MaxSeconds: 5})
	if err != nil {
		t.Fatal(err)
	}
	it := item("qc_1", "quantum_computing", curriculum.ComplexityExponential)

	o, _ := always.Evaluate(context.Background(), submit(it))
	if !o.Passed || !o.ComplexityMatched(it) || o.DurationSeconds != 5 {
		t.Errorf("always outcome = %+v", o)
	}
	o, _ = never.Evaluate(context.Background(), submit(it))
	if o.Passed || o.PassRate != 0 || o.ComplexityMatched(it) {
		t.Errorf("never outcome = %+v", o)
	}
}

func TestNewRandomValidation(t *testing.T) {
	tests := []RandomConfig{
		{PassProbability: -0.1, OptimalProbability: 0.5, MaxSeconds: 1},
		{PassProbability: 0.5, OptimalProbability: 1.1, MaxSeconds: 1},
		{PassProbability: 0.5, OptimalProbability: 0.5, MinSeconds: 10, MaxSeconds: 1},
	}
	for _, cfg := range tests {
		if _, err := NewRandom(1, cfg); err == nil {
			t.Errorf("NewRandom(%+v) accepted invalid config", cfg)
		}
	}
}

func TestWorseThan(t *testing.T) {
	for _, c := range curriculum.AllComplexities() {
		if worseThan(c) == c {
			t.Errorf("worseThan(%s) returned itself", c)
		}
	}
}

func TestFunc(t *testing.T) {
	var ev Evaluator = Func(func(context.Context, Submission) (Outcome, error) {
		return Outcome{Passed: true, PassRate: 1}, nil
	})
	o, err := ev.Evaluate(context.Background(), Submission{})
	if err != nil || !o.Passed {
		t.Errorf("Func evaluate = %+v, %v", o, err)
	}
}
