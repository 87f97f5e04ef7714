package llm

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
)

// MockResponse is one scripted answer. Model and StopReason default to
// "mock" and StopEnd.
type MockResponse struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string
	Err        error
}

// MockProvider replays scripted responses in order and records every
// request it receives. Once the script runs out it reports the provider
// as unavailable, which the retry decorator treats as transient.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	Calls  []Request
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{script: responses}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)

	if len(m.script) == 0 {
		return nil, &ErrProviderUnavailable{}
	}
	next := m.script[0]
	m.script = m.script[1:]
	if next.Err != nil {
		return nil, next.Err
	}

	model := next.Model
	if model == "" {
		model = "mock"
	}
	stop := next.StopReason
	if stop == "" {
		stop = StopEnd
	}
	return &Response{Content: next.Content, Usage: next.Usage, Model: model, StopReason: stop}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

// AddResponse appends to the script.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, resp)
}

// CallCount returns how many requests Generate has seen.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Requests returns a copy of the recorded requests.
func (m *MockProvider) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.Calls)
}
