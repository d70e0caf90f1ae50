// Package draft turns an outline plus analyzed insights into a full
// Markdown tutorial draft.
package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docentlabs/docent/internal/backend"
	"github.com/docentlabs/docent/internal/document"
	draftprompts "github.com/docentlabs/docent/internal/prompts/draftgen"
)

// Config configures the drafter stage.
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Logger      *slog.Logger
}

// Drafter generates tutorial drafts using a model backend.
type Drafter struct {
	backend     backend.ModelBackend
	model       string
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// New creates a drafter bound to a backend.
func New(b backend.ModelBackend, cfg Config) *Drafter {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Drafter{
		backend:     b,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger.With("component", "drafter"),
	}
}

// Draft writes the tutorial from the outline and insights. It never returns
// an error: backend failure yields a StatusError draft whose Content is a
// well-formed Markdown error document, so callers always hold renderable
// Markdown.
func (d *Drafter) Draft(ctx context.Context, nodes []document.OutlineNode, insights []document.Insight) *document.TutorialDraft {
	outlineJSON, err := json.MarshalIndent(nodes, "", "  ")
	if err != nil {
		return errorDraft(fmt.Sprintf("outline serialization failed: %v", err))
	}

	req := &backend.CompletionRequest{
		Messages: []backend.Message{
			backend.SystemMessage(draftprompts.SystemPrompt()),
			backend.UserMessage(draftprompts.UserPrompt(string(outlineJSON), insights)),
		},
		Model:       d.model,
		Temperature: d.temperature,
		MaxTokens:   d.maxTokens,
	}

	resp, err := d.backend.Complete(ctx, req)
	if err != nil {
		d.logger.Error("drafting failed", "error", err)
		return errorDraft(fmt.Sprintf("draft generation failed: %v", err))
	}
	text, err := resp.Text()
	if err != nil {
		d.logger.Error("draft extraction failed", "error", err)
		return errorDraft(fmt.Sprintf("draft extraction failed: %v", err))
	}
	if strings.TrimSpace(text) == "" {
		d.logger.Error("drafting produced empty output")
		return errorDraft("draft generation returned empty output")
	}

	d.logger.Info("draft generated",
		"bytes", len(text),
		"sections", len(nodes),
	)
	return &document.TutorialDraft{
		Content: text,
		Status:  document.StatusDraft,
	}
}

func errorDraft(msg string) *document.TutorialDraft {
	return &document.TutorialDraft{
		Content:      "# Workflow Failed\n\n" + msg + "\n",
		Status:       document.StatusError,
		ErrorMessage: msg,
	}
}
