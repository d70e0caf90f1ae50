// Package analyze classifies parsed content blocks into tutorial roles.
// Every input block yields exactly one insight, in input order; per-block
// failures degrade to error-tagged insights rather than aborting the batch.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/docentlabs/docent/internal/backend"
	"github.com/docentlabs/docent/internal/document"
	"github.com/docentlabs/docent/internal/parse"
	analyzeprompts "github.com/docentlabs/docent/internal/prompts/analyze"
)

// summaryTruncateLen bounds the raw-output excerpt stored on error insights.
const summaryTruncateLen = 120

// Config configures the analyzer stage.
type Config struct {
	// Model is the text classification model; empty uses the backend default.
	Model string

	// VisionModel handles image blocks; empty uses Model.
	VisionModel string

	Temperature float64
	Logger      *slog.Logger
}

// Analyzer classifies content blocks using a model backend.
type Analyzer struct {
	backend     backend.ModelBackend
	model       string
	visionModel string
	temperature float64
	logger      *slog.Logger
}

// New creates an analyzer bound to a backend.
func New(b backend.ModelBackend, cfg Config) *Analyzer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = cfg.Model
	}
	return &Analyzer{
		backend:     b,
		model:       cfg.Model,
		visionModel: visionModel,
		temperature: cfg.Temperature,
		logger:      logger.With("component", "analyzer"),
	}
}

// Analyze classifies every block and returns one insight per block, in
// input order. Individual block failures are recorded as error-role
// insights; the only hard failure is context cancellation.
func (a *Analyzer) Analyze(ctx context.Context, blocks []document.ContentBlock) ([]document.Insight, error) {
	insights := make([]document.Insight, 0, len(blocks))
	for i := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		block := &blocks[i]
		var insight document.Insight
		if isImageBlock(block) {
			insight = a.analyzeImage(ctx, block)
		} else {
			insight = a.analyzeText(ctx, block)
		}
		insight.Block = block
		insights = append(insights, insight)

		if insight.Role.IsError() {
			a.logger.Warn("block analysis degraded",
				"block", block.Index,
				"role", insight.Role,
			)
		}
	}
	return insights, nil
}

// isImageBlock reports whether the block is an image reference rather than
// text content.
func isImageBlock(b *document.ContentBlock) bool {
	if b.Meta(document.MetaKind) == "image" {
		return true
	}
	return parse.HasImageExtension(strings.TrimSpace(b.Text))
}

func (a *Analyzer) analyzeText(ctx context.Context, block *document.ContentBlock) document.Insight {
	req := &backend.CompletionRequest{
		Messages: []backend.Message{
			backend.SystemMessage(analyzeprompts.SystemPrompt()),
			backend.UserMessage(analyzeprompts.UserPrompt(block.Index, block.Text)),
		},
		Model:       a.model,
		Temperature: a.temperature,
		ResponseFormat: &backend.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: analyzeprompts.Schema(),
		},
	}

	resp, err := a.backend.Complete(ctx, req)
	if err != nil {
		return errorInsight(document.RoleAnalysisError, fmt.Sprintf("completion failed: %v", err))
	}
	text, err := resp.Text()
	if err != nil {
		return errorInsight(document.RoleAnalysisError, fmt.Sprintf("response extraction failed: %v", err))
	}

	raw, err := backend.RecoverJSON(text)
	if err != nil {
		return errorInsight(document.RoleAnalysisError, truncate(text, summaryTruncateLen))
	}
	var result analyzeprompts.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return errorInsight(document.RoleAnalysisError, truncate(text, summaryTruncateLen))
	}
	if strings.TrimSpace(result.Summary) == "" {
		return errorInsight(document.RoleAnalysisError, "empty summary in model output")
	}

	return document.Insight{
		Role:    document.NormalizeRole(result.Role),
		Summary: strings.TrimSpace(result.Summary),
	}
}

func (a *Analyzer) analyzeImage(ctx context.Context, block *document.ContentBlock) document.Insight {
	ref := strings.TrimSpace(block.Text)
	data, err := readImage(ref)
	if err != nil {
		return errorInsight(document.RoleImageError, fmt.Sprintf("image %s unreadable: %v", ref, err))
	}

	req := &backend.CompletionRequest{
		Messages: []backend.Message{
			backend.UserImageMessage(analyzeprompts.VisionPrompt(), data),
		},
		Model:       a.visionModel,
		Temperature: a.temperature,
	}

	resp, err := a.backend.Complete(ctx, req)
	if err != nil {
		return errorInsight(document.RoleImageError, fmt.Sprintf("vision completion failed: %v", err))
	}
	text, err := resp.Text()
	if err != nil {
		return errorInsight(document.RoleImageError, fmt.Sprintf("response extraction failed: %v", err))
	}

	// The vision path parses leniently: a plain-prose description is as
	// useful as the JSON form.
	summary := text
	if raw, err := backend.RecoverJSON(text); err == nil {
		var result analyzeprompts.Result
		if err := json.Unmarshal(raw, &result); err == nil && strings.TrimSpace(result.Summary) != "" {
			summary = strings.TrimSpace(result.Summary)
		}
	}
	if strings.TrimSpace(summary) == "" {
		return errorInsight(document.RoleImageError, "empty image description")
	}

	return document.Insight{
		Role:    document.RoleImageDescription,
		Summary: summary,
	}
}

// readImage loads the referenced image file. The converter drops remote
// references, so anything reaching this point names a path on disk.
func readImage(ref string) ([]byte, error) {
	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image file")
	}
	return data, nil
}

func errorInsight(role document.Role, summary string) document.Insight {
	return document.Insight{Role: role, Summary: summary}
}

// truncate shortens s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
