// Package backend abstracts the language-model completion service the
// pipeline stages call into. Stages depend only on the ModelBackend
// interface; the concrete client (OpenRouter, an OpenAI-compatible endpoint
// such as a local Ollama daemon, or the deterministic mock) is chosen once
// at bootstrap and injected.
package backend

import (
	"context"
	"encoding/json"
	"time"
)

// ModelBackend is the completion service abstraction. Implementations must
// be safe for concurrent use: stateless request/response over a shared
// HTTP client.
type ModelBackend interface {
	// Complete sends a chat completion request and returns the canonical
	// response envelope.
	Complete(ctx context.Context, req *CompletionRequest) (*Completion, error)

	// Name returns the backend identifier (e.g. "openrouter").
	Name() string
}

// Message is one chat message.
type Message struct {
	Role    string   `json:"role"` // "system", "user", "assistant"
	Content string   `json:"content"`
	Images  [][]byte `json:"-"` // for vision requests (base64 encoded on the wire)
}

// ResponseFormat requests structured output from the backend.
type ResponseFormat struct {
	Type       string          `json:"type"` // "json_schema"
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

// CompletionRequest is a request to a model backend.
type CompletionRequest struct {
	Messages []Message `json:"messages"`

	// Model overrides the client default if non-empty.
	Model string `json:"model,omitempty"`

	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Timeout     time.Duration

	// ResponseFormat requests structured JSON output. Callers still parse
	// defensively; not every backend honors it.
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`

	// RequestID is generated if empty.
	RequestID string `json:"-"`
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: "system", Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// UserImageMessage builds a user-role vision message with attached images.
func UserImageMessage(content string, images ...[]byte) Message {
	return Message{Role: "user", Content: content, Images: images}
}
