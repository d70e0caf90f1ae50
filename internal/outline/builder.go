// Package outline builds the hierarchical tutorial outline from analyzed
// insights.
package outline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/docentlabs/docent/internal/backend"
	"github.com/docentlabs/docent/internal/document"
	outlineprompts "github.com/docentlabs/docent/internal/prompts/outline"
)

// StructuringError is a hard failure of the outline stage.
type StructuringError struct {
	Reason string
	Err    error
}

func (e *StructuringError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("structuring failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("structuring failed: %s", e.Reason)
}

func (e *StructuringError) Unwrap() error {
	return e.Err
}

// Config configures the outline builder.
type Config struct {
	Model       string
	Temperature float64
	Logger      *slog.Logger
}

// Builder constructs tutorial outlines using a model backend.
type Builder struct {
	backend     backend.ModelBackend
	model       string
	temperature float64
	logger      *slog.Logger
}

// New creates an outline builder bound to a backend.
func New(b backend.ModelBackend, cfg Config) *Builder {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		backend:     b,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger.With("component", "outline"),
	}
}

// Build produces the outline for the analyzed insights.
//
// An empty insight set is a StructuringError: there is nothing to outline
// and drafting from nothing would fabricate content. Unparsable model
// output, by contrast, degrades to an empty outline with a nil error; the
// orchestrator decides whether that combination is fatal.
func (b *Builder) Build(ctx context.Context, insights []document.Insight) ([]document.OutlineNode, error) {
	if len(insights) == 0 {
		return nil, &StructuringError{Reason: "no insights to structure"}
	}

	req := &backend.CompletionRequest{
		Messages: []backend.Message{
			backend.SystemMessage(outlineprompts.SystemPrompt()),
			backend.UserMessage(outlineprompts.UserPrompt(insights)),
		},
		Model:       b.model,
		Temperature: b.temperature,
		ResponseFormat: &backend.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: outlineprompts.Schema(),
		},
	}

	resp, err := b.backend.Complete(ctx, req)
	if err != nil {
		return nil, &StructuringError{Reason: "completion failed", Err: err}
	}
	text, err := resp.Text()
	if err != nil {
		return nil, &StructuringError{Reason: "response extraction failed", Err: err}
	}

	raw, err := backend.RecoverJSON(text)
	if err != nil {
		b.logger.Warn("outline output not parseable as JSON, returning empty outline",
			"error", err,
		)
		return []document.OutlineNode{}, nil
	}
	if err := backend.ValidateJSON(outlineprompts.Schema(), raw); err != nil {
		b.logger.Warn("outline output failed schema validation",
			"error", err,
		)
	}

	var nodes []document.OutlineNode
	if err := json.Unmarshal(raw, &nodes); err != nil {
		// Some models wrap the array in an object; accept common keys.
		nodes = unwrapNodes(raw)
		if nodes == nil {
			b.logger.Warn("outline output shape unrecognized, returning empty outline")
			return []document.OutlineNode{}, nil
		}
	}

	b.logger.Info("outline built",
		"sections", len(nodes),
		"insights", len(insights),
	)
	return nodes, nil
}

// unwrapNodes tries object wrappers like {"outline": [...]} or
// {"sections": [...]}.
func unwrapNodes(raw json.RawMessage) []document.OutlineNode {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil
	}
	for _, key := range []string{"outline", "sections"} {
		inner, ok := wrapper[key]
		if !ok {
			continue
		}
		var nodes []document.OutlineNode
		if err := json.Unmarshal(inner, &nodes); err == nil {
			return nodes
		}
	}
	return nil
}
