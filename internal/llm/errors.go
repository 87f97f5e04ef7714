package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit is a 429 from the provider. RetryAfter is zero when the
// provider did not say how long to wait.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("llm rate limited, retry after %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("llm rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse carries a response body that is not JSON or does not
// satisfy the request's Schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("llm response rejected: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers transport failures and 5xx answers.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return "llm provider unavailable"
	}
	return fmt.Sprintf("llm provider unavailable: %v", e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded means a schema-constrained response was cut off at
// MaxTokens. Content holds the partial body.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return fmt.Sprintf("llm response truncated at max tokens after %d bytes", len(e.Content))
}

// retryPolicy says how the retry decorator treats an error.
type retryPolicy int

const (
	retryNever retryPolicy = iota
	retryOnce
	retryBackoff
)

// classifyRetry maps a Generate error to its retry policy. Invalid
// responses get one regeneration; unknown errors count as transient.
func classifyRetry(err error) retryPolicy {
	var (
		maxTok *ErrMaxTokensExceeded
		inv    *ErrInvalidResponse
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return retryNever
	case errors.As(err, &maxTok):
		return retryNever
	case errors.As(err, &inv):
		return retryOnce
	default:
		return retryBackoff
	}
}
