package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const MockBackendName = "mock"

// MockBackend is a deterministic ModelBackend for tests and offline runs.
// It is injected by the bootstrap when no real backend is configured;
// pipeline stages never branch on mock-vs-real themselves.
type MockBackend struct {
	// Configurable behavior
	Latency      time.Duration
	ShouldFail   bool
	FailAfter    int // fail after N requests (0 = never)
	ResponseText string
	ResponseJSON json.RawMessage

	// RespondFunc, when set, computes the response text per request.
	RespondFunc func(req *CompletionRequest) string

	// NestResult wraps the payload one "result" level deep, imitating
	// backends that envelope their output.
	NestResult bool

	mu     sync.Mutex
	script []string // queued responses consumed in order

	requestCount atomic.Int64
}

// NewMockBackend creates a mock backend with sensible defaults.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		Latency:      time.Millisecond,
		ResponseText: "mock response",
	}
}

// Name returns the backend identifier.
func (m *MockBackend) Name() string {
	return MockBackendName
}

// Enqueue queues responses returned in order before falling back to
// ResponseText. Useful when one test drives several pipeline stages.
func (m *MockBackend) Enqueue(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, responses...)
}

// Complete returns the configured deterministic response.
func (m *MockBackend) Complete(ctx context.Context, req *CompletionRequest) (*Completion, error) {
	start := time.Now()
	count := m.requestCount.Add(1)

	result := &Completion{
		RequestID: fmt.Sprintf("mock-%d", count),
		Provider:  MockBackendName,
		ModelUsed: req.Model,
		Attempts:  1,
	}

	if m.ShouldFail {
		return nil, fmt.Errorf("mock backend configured to fail")
	}
	if m.FailAfter > 0 && int(count) > m.FailAfter {
		return nil, fmt.Errorf("mock backend failed after %d requests", m.FailAfter)
	}

	if m.Latency > 0 {
		select {
		case <-time.After(m.Latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := m.nextResponse(req)

	if req.ResponseFormat != nil && len(m.ResponseJSON) > 0 {
		text = string(m.ResponseJSON)
	}

	promptTokens := 0
	for _, msg := range req.Messages {
		promptTokens += len(msg.Content) / 4
	}

	result.PromptTokens = promptTokens
	result.CompletionTokens = len(text) / 4
	result.TotalTokens = result.PromptTokens + result.CompletionTokens
	result.ExecutionTime = time.Since(start)

	if m.NestResult {
		result.Result = &Completion{Content: text}
	} else {
		result.Content = text
	}

	return result, nil
}

func (m *MockBackend) nextResponse(req *CompletionRequest) string {
	m.mu.Lock()
	if len(m.script) > 0 {
		text := m.script[0]
		m.script = m.script[1:]
		m.mu.Unlock()
		return text
	}
	m.mu.Unlock()

	if m.RespondFunc != nil {
		return m.RespondFunc(req)
	}
	return m.ResponseText
}

// RequestCount returns the number of requests made.
func (m *MockBackend) RequestCount() int64 {
	return m.requestCount.Load()
}

// Reset clears the request counter and any queued responses.
func (m *MockBackend) Reset() {
	m.requestCount.Store(0)
	m.mu.Lock()
	m.script = nil
	m.mu.Unlock()
}

// Verify interface
var _ ModelBackend = (*MockBackend)(nil)
