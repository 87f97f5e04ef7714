package learner

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathlearn/internal/curriculum"
	"github.com/abhisek/mathlearn/internal/store"
)

func TestSnapshotRoundTrip(t *testing.T) {
	g, err := curriculum.Default()
	require.NoError(t, err)

	s := New("ada")
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		a := perfect("arithmetic")
		a.Timestamp = ts.Add(time.Duration(i) * time.Minute)
		a.Strategy = "iteration"
		s.Record(a)
	}
	s.Record(attempt("number_theory", false, 0.5, false, 2*time.Minute))

	data := s.SnapshotData(g)
	require.Equal(t, "ada", data.LearnerID)
	require.Equal(t, []string{"arithmetic"}, data.Mastered)
	require.Equal(t, curriculum.LevelBeginner.String(), data.Level)
	require.Equal(t, 7, data.TotalAttempts)
	require.Len(t, data.History["arithmetic"], 6)
	require.Equal(t, 1, data.ErrorTags["number_theory"]["test_failures"])

	restored, err := FromSnapshot(data)
	require.NoError(t, err)

	if diff := cmp.Diff(s.Mastered(), restored.Mastered()); diff != "" {
		t.Errorf("mastered mismatch (-want +got):\n%s", diff)
	}
	for _, id := range []string{"arithmetic", "number_theory"} {
		if s.Score(id) != restored.Score(id) {
			t.Errorf("score[%s] = %v, want %v", id, restored.Score(id), s.Score(id))
		}
		wantV, _ := s.Velocity(id)
		gotV, _ := restored.Velocity(id)
		if wantV != gotV {
			t.Errorf("velocity[%s] = %v, want %v", id, gotV, wantV)
		}
		if diff := cmp.Diff(s.History(id), restored.History(id)); diff != "" {
			t.Errorf("history[%s] mismatch (-want +got):\n%s", id, diff)
		}
		if diff := cmp.Diff(s.ErrorHistogram(id), restored.ErrorHistogram(id)); diff != "" {
			t.Errorf("errors[%s] mismatch (-want +got):\n%s", id, diff)
		}
	}
	if restored.TotalAttempts() != 7 {
		t.Errorf("TotalAttempts() = %d, want 7", restored.TotalAttempts())
	}
}

func TestFromSnapshotWithoutHistory(t *testing.T) {
	data := &store.SnapshotData{
		LearnerID: "ada",
		Mastered:  []string{"arithmetic", "arithmetic"},
		Scores:    map[string]float64{"arithmetic": 0.9, "calculus": 0.3},
		Velocity:  map[string]float64{"arithmetic": 0.8, "calculus": 0.4},
	}

	s, err := FromSnapshot(data)
	require.NoError(t, err)
	require.Equal(t, []string{"arithmetic"}, s.MasteredList())
	require.Empty(t, s.History("calculus"))
	require.Equal(t, curriculum.StatusPracticing, s.Status("calculus"))
	require.Equal(t, curriculum.StatusUnseen, s.Status("optimization"))
}

func TestFromSnapshotRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		data *store.SnapshotData
	}{
		{"nil", nil},
		{"score above one", &store.SnapshotData{Scores: map[string]float64{"a": 1.5}}},
		{"negative score", &store.SnapshotData{Scores: map[string]float64{"a": -0.1}}},
		{"NaN score", &store.SnapshotData{Scores: map[string]float64{"a": math.NaN()}}},
		{"velocity below floor", &store.SnapshotData{Velocity: map[string]float64{"a": 0.05}}},
		{"velocity above ceiling", &store.SnapshotData{Velocity: map[string]float64{"a": 1.2}}},
		{"negative attempts", &store.SnapshotData{TotalAttempts: -1}},
		{"bad timestamp", &store.SnapshotData{History: map[string][]store.AttemptData{"a": {{Timestamp: "yesterday"}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromSnapshot(tt.data)
			if !errors.Is(err, ErrInvalidSnapshot) {
				t.Errorf("err = %v, want ErrInvalidSnapshot", err)
			}
		})
	}
}
