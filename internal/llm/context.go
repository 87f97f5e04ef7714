package llm

import "context"

// Purposes recorded on LLM request events.
const (
	PurposeWorkItems = "work-items"
	PurposeUnknown   = "unknown"
)

type requestTagKey struct{}

// requestTag labels a request for logs and events.
type requestTag struct {
	purpose string
	topicID string
}

func tagFrom(ctx context.Context) requestTag {
	t, _ := ctx.Value(requestTagKey{}).(requestTag)
	return t
}

// WithPurpose labels requests made with ctx, e.g. PurposeWorkItems.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	t := tagFrom(ctx)
	t.purpose = purpose
	return context.WithValue(ctx, requestTagKey{}, t)
}

// WithTopic records the curriculum topic a request generates content for.
func WithTopic(ctx context.Context, topicID string) context.Context {
	t := tagFrom(ctx)
	t.topicID = topicID
	return context.WithValue(ctx, requestTagKey{}, t)
}

// PurposeFrom returns the purpose set by WithPurpose, or PurposeUnknown.
func PurposeFrom(ctx context.Context) string {
	if p := tagFrom(ctx).purpose; p != "" {
		return p
	}
	return PurposeUnknown
}

// TopicFrom returns the topic set by WithTopic, or "".
func TopicFrom(ctx context.Context) string {
	return tagFrom(ctx).topicID
}
