package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/mathlearn/internal/logging"
	"github.com/abhisek/mathlearn/internal/store"
)

// LoggingProvider is a decorator that logs every request and records it
// as an LLM request event.
type LoggingProvider struct {
	inner    Provider
	provider string
	events   store.EventRepo
	logger   *slog.Logger
}

// WithLogging wraps p. provider names the vendor in logs and events;
// events may be nil to log only.
func WithLogging(p Provider, provider string, events store.EventRepo) Provider {
	return &LoggingProvider{
		inner:    p,
		provider: provider,
		events:   events,
		logger:   logging.New("llm"),
	}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)
	latency := time.Since(start)

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   latency.Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	l.logger.Debug("llm request",
		"provider", l.provider,
		"model", data.Model,
		"purpose", purpose,
		"topic", TopicFrom(ctx),
		"latency", latency,
		"input_tokens", data.InputTokens,
		"output_tokens", data.OutputTokens,
		"ok", err == nil,
	)

	if l.events != nil {
		if logErr := l.events.AppendLLMRequest(ctx, data); logErr != nil {
			l.logger.Warn("append llm request event", "error", logErr)
		}
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest renders a request as readable text for the event log.
func serializeRequest(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
