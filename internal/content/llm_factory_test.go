package content

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathlearn/internal/curriculum"
	"github.com/abhisek/mathlearn/internal/llm"
)

func batchJSON(t *testing.T, items ...itemOutput) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(batchOutput{Items: items})
	require.NoError(t, err)
	return b
}

func validOutput(difficulty int) itemOutput {
	return itemOutput{
		Difficulty:         difficulty,
		Statement:          "Compute a numerical derivative with Richardson extrapolation.",
		Signature:          "derivative(f func(float64) float64, x float64) float64",
		TestCount:          2,
		ExpectedComplexity: "O(log n)",
		Hints:              []string{"Halve the step each round"},
		Insight:            "Error terms cancel",
		OptimalApproach:    "Richardson extrapolation",
	}
}

func newLLMFactory(t *testing.T, responses ...llm.MockResponse) (*LLMFactory, *llm.MockProvider) {
	t.Helper()
	g, err := curriculum.Default()
	require.NoError(t, err)
	mock := llm.NewMockProvider(responses...)
	return NewLLMFactory(mock, g, &LocalSequence{}, DefaultLLMConfig()), mock
}

func TestLLMFactoryGenerateItems(t *testing.T) {
	f, mock := newLLMFactory(t, llm.MockResponse{Content: batchJSON(t, validOutput(1), validOutput(2))})

	items, err := f.GenerateItems(context.Background(), "calculus", 2, DifficultyRange{Min: 1, Max: 2})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "calculus_1", items[0].ID)
	require.Equal(t, "calculus_2", items[1].ID)
	require.Equal(t, curriculum.ComplexityLogarithmic, items[0].ExpectedComplexity)
	require.Equal(t, 2, items[1].Difficulty)

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	require.Equal(t, ItemBatchSchema, req.Schema)
	require.Contains(t, req.Messages[0].Content, "Calculus")
	require.Contains(t, req.Messages[0].Content, "Exercises: 2")
}

func TestLLMFactoryRejectsBadResponses(t *testing.T) {
	outOfRange := validOutput(4)
	badComplexity := validOutput(1)
	badComplexity.ExpectedComplexity = "O(n!)"
	empty := validOutput(1)
	empty.Statement = "  "

	tests := []struct {
		name    string
		content json.RawMessage
		wantMsg string
	}{
		{"wrong count", batchJSON(t, validOutput(1)), "returned 1 items"},
		{"difficulty outside range", batchJSON(t, validOutput(1), outOfRange), "outside"},
		{"unknown complexity", batchJSON(t, badComplexity, validOutput(1)), "complexity"},
		{"empty statement", batchJSON(t, validOutput(1), empty), "statement"},
		{"not json", json.RawMessage(`nope`), "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newLLMFactory(t, llm.MockResponse{Content: tt.content})
			_, err := f.GenerateItems(context.Background(), "calculus", 2, DifficultyRange{Min: 1, Max: 2})
			require.Error(t, err)
			require.True(t, strings.Contains(strings.ToLower(err.Error()), tt.wantMsg), "error %q lacks %q", err, tt.wantMsg)
		})
	}
}

func TestLLMFactoryProviderError(t *testing.T) {
	f, _ := newLLMFactory(t, llm.MockResponse{Err: &llm.ErrRateLimit{}})

	_, err := f.GenerateItems(context.Background(), "calculus", 1, DifficultyRange{Min: 1, Max: 1})
	var rl *llm.ErrRateLimit
	require.True(t, errors.As(err, &rl), "err = %v, want ErrRateLimit", err)
}

func TestLLMFactoryUnknownTopic(t *testing.T) {
	f, mock := newLLMFactory(t)

	_, err := f.GenerateItems(context.Background(), "alchemy", 1, DifficultyRange{Min: 1, Max: 1})
	require.ErrorIs(t, err, ErrUnknownTopic)
	require.Zero(t, mock.CallCount())
}

func TestItemBatchSchema(t *testing.T) {
	noHints := validOutput(1)
	noHints.Hints = nil
	tooHard := validOutput(MaxDifficulty + 1)
	factorial := validOutput(2)
	factorial.ExpectedComplexity = "O(n!)"

	tests := []struct {
		name    string
		body    json.RawMessage
		wantErr bool
	}{
		{"batch", batchJSON(t, validOutput(1), validOutput(2)), false},
		{"empty batch", json.RawMessage(`{"items":[]}`), false},
		{"null hints", batchJSON(t, noHints), true},
		{"difficulty above scale", batchJSON(t, tooHard), true},
		{"complexity outside classes", batchJSON(t, factorial), true},
		{"missing fields", json.RawMessage(`{"items":[{"difficulty":1,"statement":"Sieve primes below n"}]}`), true},
		{"extra field", json.RawMessage(`{"items":[],"notes":"extra"}`), true},
		{"bare array", json.RawMessage(`[]`), true},
		{"truncated", json.RawMessage(`{"items":[{"difficulty":1,`), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := llm.Validate(ItemBatchSchema, tt.body)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
			var inv *llm.ErrInvalidResponse
			if tt.wantErr && !errors.As(err, &inv) {
				t.Errorf("err = %T, want *llm.ErrInvalidResponse", err)
			}
		})
	}
}

func TestLLMFactoryTagsRequests(t *testing.T) {
	var got struct{ purpose, topic string }
	spy := providerFunc(func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		got.purpose, got.topic = llm.PurposeFrom(ctx), llm.TopicFrom(ctx)
		return &llm.Response{Content: batchJSON(t, validOutput(1))}, nil
	})
	g, err := curriculum.Default()
	require.NoError(t, err)
	f := NewLLMFactory(spy, g, &LocalSequence{}, DefaultLLMConfig())

	_, err = f.GenerateItems(context.Background(), "number_theory", 1, DifficultyRange{Min: 1, Max: 1})
	require.NoError(t, err)
	require.Equal(t, llm.PurposeWorkItems, got.purpose)
	require.Equal(t, "number_theory", got.topic)
}

type providerFunc func(ctx context.Context, req llm.Request) (*llm.Response, error)

func (f providerFunc) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return f(ctx, req)
}

func (providerFunc) ModelID() string { return "spy" }
