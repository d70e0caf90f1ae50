package backend

import (
	"errors"
	"strings"
	"time"
)

// Completion is the canonical response envelope every backend returns.
// Text is the single documented extraction method; callers must not probe
// fields directly for the payload.
//
// Some backends wrap the real payload one level deep in a "result" object.
// The envelope models exactly one level of that indirection; anything deeper
// is a hard extraction error, not something to silently guess through.
type Completion struct {
	// Content is the model's text output.
	Content string `json:"content"`

	// Result holds a nested envelope for backends that wrap their payload.
	// At most one level is tolerated.
	Result *Completion `json:"result,omitempty"`

	// Token counts as reported by the backend.
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// Provider info and request tracking.
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`
	RequestID string `json:"request_id"`
	Attempts  int    `json:"attempts"`

	ExecutionTime time.Duration `json:"execution_time"`
}

// ErrDeepNesting is returned by Text when the envelope is wrapped more than
// one level deep.
var ErrDeepNesting = errors.New("completion nested more than one result level")

// ErrNilCompletion is returned by Text when called on a nil envelope.
var ErrNilCompletion = errors.New("nil completion")

// Text extracts the payload, unwrapping at most one "result" level.
// The returned string is trimmed; an empty payload is not an error here —
// callers decide what empty output means for their stage.
func (c *Completion) Text() (string, error) {
	if c == nil {
		return "", ErrNilCompletion
	}
	if c.Result != nil {
		if c.Result.Result != nil {
			return "", ErrDeepNesting
		}
		return strings.TrimSpace(c.Result.Content), nil
	}
	return strings.TrimSpace(c.Content), nil
}
