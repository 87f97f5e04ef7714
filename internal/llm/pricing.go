package llm

import (
	"cmp"
	"slices"

	"github.com/abhisek/mathlearn/internal/store"
)

// ModelCost holds per-million-token pricing for a model in USD.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost calculates the total USD cost for the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// LookupCost returns the pricing for a model ID, or nil if unknown.
func LookupCost(modelID string) *ModelCost {
	if c, ok := modelCosts[modelID]; ok {
		return &c
	}
	return nil
}

// Spend aggregates recorded LLM requests for one model.
type Spend struct {
	Model        string
	Requests     int
	Failures     int
	InputTokens  int
	OutputTokens int
	// CostUSD is zero when the model has no pricing entry.
	CostUSD float64
	Priced  bool
}

// SpendByModel sums token usage and cost per model, most expensive first.
func SpendByModel(events []store.Event[store.LLMRequestEventData]) []Spend {
	byModel := make(map[string]*Spend)
	for _, ev := range events {
		d := ev.Data
		s, ok := byModel[d.Model]
		if !ok {
			s = &Spend{Model: d.Model}
			byModel[d.Model] = s
		}
		s.Requests++
		if !d.Success {
			s.Failures++
		}
		s.InputTokens += d.InputTokens
		s.OutputTokens += d.OutputTokens
	}

	out := make([]Spend, 0, len(byModel))
	for _, s := range byModel {
		if c := LookupCost(s.Model); c != nil {
			s.CostUSD = c.Cost(s.InputTokens, s.OutputTokens)
			s.Priced = true
		}
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b Spend) int {
		if c := cmp.Compare(b.CostUSD, a.CostUSD); c != 0 {
			return c
		}
		return cmp.Compare(a.Model, b.Model)
	})
	return out
}

// modelCosts covers the models the providers resolve to by default plus
// their common siblings.
var modelCosts = map[string]ModelCost{
	"claude-haiku-4-5":          {1, 5},
	"claude-haiku-4-5-20251001": {1, 5},
	"claude-sonnet-4-20250514":  {3, 15},
	"claude-sonnet-4-5":         {3, 15},
	"claude-opus-4-5":           {5, 25},

	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-5-mini":   {0.25, 2},

	"gemini-2.0-flash": {0.1, 0.4},
	"gemini-2.0-pro":   {1.25, 10},
	"gemini-2.5-flash": {0.3, 2.5},
	"gemini-2.5-pro":   {1.25, 10},
}
