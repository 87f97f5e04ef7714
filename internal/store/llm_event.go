package store

import (
	"context"
	"fmt"
)

var llmColumns = []string{
	"provider", "model", "purpose", "input_tokens", "output_tokens", "latency_ms",
	"success", "error_message", "request_body", "response_body",
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	err := r.insert(ctx, tableLLMRequests, llmColumns, []any{
		data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens, data.LatencyMs,
		data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody,
	})
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]Event[LLMRequestEventData], error) {
	sel := selectEvents(tableLLMRequests, opts, llmColumns...)
	events, err := queryEvents(ctx, r.db, sel, func(d *LLMRequestEventData) []any {
		return []any{
			&d.Provider, &d.Model, &d.Purpose, &d.InputTokens, &d.OutputTokens, &d.LatencyMs,
			&d.Success, &d.ErrorMessage, &d.RequestBody, &d.ResponseBody,
		}
	})
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return events, nil
}
