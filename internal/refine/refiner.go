// Package refine runs the review pass over a generated draft, improving
// clarity and consistency without changing structure.
package refine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docentlabs/docent/internal/backend"
	"github.com/docentlabs/docent/internal/document"
	refineprompts "github.com/docentlabs/docent/internal/prompts/refine"
)

// RefinementError is a hard failure of the refinement stage. The
// orchestrator treats it as soft: the unrefined draft survives.
type RefinementError struct {
	Reason string
	Err    error
}

func (e *RefinementError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("refinement failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("refinement failed: %s", e.Reason)
}

func (e *RefinementError) Unwrap() error {
	return e.Err
}

// Config configures the refiner stage.
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Logger      *slog.Logger
}

// Refiner reviews drafts using a model backend.
type Refiner struct {
	backend     backend.ModelBackend
	model       string
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// New creates a refiner bound to a backend.
func New(b backend.ModelBackend, cfg Config) *Refiner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Refiner{
		backend:     b,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger.With("component", "refiner"),
	}
}

// Refine reviews the draft and returns a new draft. It never returns an
// error and never loses content:
//
//   - success yields StatusRefined with the revised text;
//   - empty model output yields StatusUnrefined with the original text;
//   - any failure (backend error, malformed envelope) yields
//     StatusRefinementFailed with the original text and the failure detail
//     in ErrorMessage.
func (r *Refiner) Refine(ctx context.Context, draft *document.TutorialDraft) *document.TutorialDraft {
	if draft == nil {
		return &document.TutorialDraft{
			Status:       document.StatusRefinementFailed,
			ErrorMessage: "no draft to refine",
		}
	}

	revised, err := r.review(ctx, draft.Content)
	if err != nil {
		r.logger.Warn("refinement failed, keeping unrefined draft", "error", err)
		return &document.TutorialDraft{
			Content:      draft.Content,
			Status:       document.StatusRefinementFailed,
			RoleTag:      draft.RoleTag,
			ErrorMessage: err.Error(),
		}
	}
	if revised == "" {
		r.logger.Warn("refinement returned empty output, keeping unrefined draft")
		return &document.TutorialDraft{
			Content: draft.Content,
			Status:  document.StatusUnrefined,
			RoleTag: draft.RoleTag,
		}
	}

	r.logger.Info("draft refined",
		"before_bytes", len(draft.Content),
		"after_bytes", len(revised),
	)
	return &document.TutorialDraft{
		Content: revised,
		Status:  document.StatusRefined,
		RoleTag: draft.RoleTag,
	}
}

func (r *Refiner) review(ctx context.Context, content string) (string, error) {
	req := &backend.CompletionRequest{
		Messages: []backend.Message{
			backend.SystemMessage(refineprompts.SystemPrompt()),
			backend.UserMessage(refineprompts.UserPrompt(content)),
		},
		Model:       r.model,
		Temperature: r.temperature,
		MaxTokens:   r.maxTokens,
	}

	resp, err := r.backend.Complete(ctx, req)
	if err != nil {
		return "", &RefinementError{Reason: "completion failed", Err: err}
	}
	text, err := resp.Text()
	if err != nil {
		if errors.Is(err, backend.ErrDeepNesting) {
			return "", &RefinementError{Reason: "response envelope nested too deeply", Err: err}
		}
		return "", &RefinementError{Reason: "response extraction failed", Err: err}
	}
	return strings.TrimSpace(text), nil
}
