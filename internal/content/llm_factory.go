package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/mathlearn/internal/curriculum"
	"github.com/abhisek/mathlearn/internal/llm"
)

// LLMConfig controls the behavior of the LLMFactory.
type LLMConfig struct {
	// MaxTokens is the token budget for one batch response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64
}

// DefaultLLMConfig returns recommended LLM settings.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		MaxTokens:   2048,
		Temperature: 0.7,
	}
}

// LLMFactory asks an LLM provider for a batch of work items. Item IDs
// come from the shared sequence, never from the model.
type LLMFactory struct {
	provider llm.Provider
	graph    *curriculum.Graph
	seq      Sequence
	config   LLMConfig
}

// NewLLMFactory creates an LLMFactory. A nil seq uses a fresh LocalSequence.
func NewLLMFactory(provider llm.Provider, graph *curriculum.Graph, seq Sequence, cfg LLMConfig) *LLMFactory {
	if seq == nil {
		seq = &LocalSequence{}
	}
	return &LLMFactory{provider: provider, graph: graph, seq: seq, config: cfg}
}

// itemOutput is one raw item in the LLM response before validation.
type itemOutput struct {
	Difficulty         int      `json:"difficulty"`
	Statement          string   `json:"statement"`
	Signature          string   `json:"signature"`
	TestCount          int      `json:"test_count"`
	ExpectedComplexity string   `json:"expected_complexity"`
	Hints              []string `json:"hints"`
	Insight            string   `json:"insight"`
	OptimalApproach    string   `json:"optimal_approach"`
}

type batchOutput struct {
	Items []itemOutput `json:"items"`
}

// GenerateItems returns exactly count items for topicID, or an error when
// the response is malformed or has the wrong number of items.
func (f *LLMFactory) GenerateItems(ctx context.Context, topicID string, count int, r DifficultyRange) ([]WorkItem, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	topic, ok := f.graph.Topic(topicID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, topicID)
	}
	if count <= 0 {
		return []WorkItem{}, nil
	}

	ctx = llm.WithTopic(llm.WithPurpose(ctx, llm.PurposeWorkItems), topicID)
	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(topic, count, r)},
		},
		Schema:      ItemBatchSchema,
		MaxTokens:   f.config.MaxTokens,
		Temperature: f.config.Temperature,
	}

	resp, err := f.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw batchOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	if len(raw.Items) != count {
		return nil, fmt.Errorf("LLM returned %d items, want %d", len(raw.Items), count)
	}

	items := make([]WorkItem, 0, count)
	for i, out := range raw.Items {
		complexity, err := validateItem(out, r)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		n, err := f.seq.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("item id: %w", err)
		}
		items = append(items, WorkItem{
			ID:                 itemID(topicID, n),
			TopicID:            topicID,
			Difficulty:         out.Difficulty,
			Statement:          out.Statement,
			Signature:          out.Signature,
			TestCount:          out.TestCount,
			ExpectedComplexity: complexity,
			Hints:              out.Hints,
			Insight:            out.Insight,
			OptimalApproach:    out.OptimalApproach,
		})
	}
	return items, nil
}

// validateItem checks the fields the scheduler and evaluators rely on.
func validateItem(out itemOutput, r DifficultyRange) (curriculum.Complexity, error) {
	if strings.TrimSpace(out.Statement) == "" {
		return "", fmt.Errorf("statement is empty")
	}
	if !r.Contains(out.Difficulty) {
		return "", fmt.Errorf("difficulty %d outside %s", out.Difficulty, r)
	}
	if out.TestCount < 1 {
		return "", fmt.Errorf("test_count must be positive")
	}
	c, err := curriculum.ParseComplexity(out.ExpectedComplexity)
	if err != nil {
		return "", err
	}
	return c, nil
}

const systemPrompt = `You design algorithmic programming exercises for a learner progressing through a mathematics and computer science curriculum.

Rules:
- Each exercise asks for one function implementing a named algorithm relevant to the topic.
- The statement is self-contained plain text. No LaTeX.
- The signature is a single function signature.
- expected_complexity is the time complexity of the optimal solution, one of the listed classes.
- Give up to three short hints that lead towards the optimal approach without giving it away.
- Harder difficulties require more advanced algorithms, not larger inputs.
- Return exactly the requested number of exercises.`

// buildUserMessage describes the topic and the batch being requested.
func buildUserMessage(t curriculum.Topic, count int, r DifficultyRange) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", t.DisplayName())
	fmt.Fprintf(&b, "Category: %s\n", t.Category)
	fmt.Fprintf(&b, "Curriculum tier: %s\n", t.Difficulty)
	if len(t.KeyAlgorithms) > 0 {
		fmt.Fprintf(&b, "Key algorithms: %s\n", strings.Join(t.KeyAlgorithms, ", "))
	}
	fmt.Fprintf(&b, "Exercises: %d\n", count)
	fmt.Fprintf(&b, "Difficulty range: %d to %d (1 easiest, 4 hardest)\n", r.Min, r.Max)

	classes := make([]string, 0, len(curriculum.AllComplexities()))
	for _, c := range curriculum.AllComplexities() {
		classes = append(classes, string(c))
	}
	fmt.Fprintf(&b, "Complexity classes: %s", strings.Join(classes, ", "))

	return b.String()
}

// ItemBatchSchema defines the JSON schema for LLM work-item responses.
var ItemBatchSchema = &llm.Schema{
	Name:        "work-items",
	Description: "A batch of algorithmic exercises for one curriculum topic",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"difficulty": map[string]any{
							"type":    "integer",
							"minimum": MinDifficulty,
							"maximum": MaxDifficulty,
						},
						"statement": map[string]any{
							"type":        "string",
							"description": "What to implement, in plain text",
						},
						"signature": map[string]any{
							"type":        "string",
							"description": "Function signature of the solution",
						},
						"test_count": map[string]any{
							"type":    "integer",
							"minimum": 1,
						},
						"expected_complexity": map[string]any{
							"type": "string",
							"enum": complexityEnum(),
						},
						"hints": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
						"insight": map[string]any{
							"type":        "string",
							"description": "The mathematical idea behind the optimal solution",
						},
						"optimal_approach": map[string]any{
							"type":        "string",
							"description": "Name of the optimal technique",
						},
					},
					"required":             []any{"difficulty", "statement", "signature", "test_count", "expected_complexity", "hints", "insight", "optimal_approach"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"items"},
		"additionalProperties": false,
	},
}

func complexityEnum() []any {
	all := curriculum.AllComplexities()
	out := make([]any, len(all))
	for i, c := range all {
		out[i] = string(c)
	}
	return out
}
