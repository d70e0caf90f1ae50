// Package pipeline orchestrates the tutorial workflow: retrieve, parse,
// analyze, structure, draft, refine. The orchestrator sequences the stages,
// decides which stage failures are fatal, and guarantees the caller always
// receives a renderable Markdown result.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/docentlabs/docent/internal/analyze"
	"github.com/docentlabs/docent/internal/document"
	"github.com/docentlabs/docent/internal/draft"
	"github.com/docentlabs/docent/internal/outline"
	"github.com/docentlabs/docent/internal/parse"
	"github.com/docentlabs/docent/internal/refine"
	"github.com/docentlabs/docent/internal/retrieve"
)

// Result is the outcome of a pipeline run. Stage records how far the run
// got; Draft is always non-nil after a full run, even on failure, so
// callers can render it unconditionally.
type Result struct {
	RunID  string                `json:"run_id"`
	Source string                `json:"source"`
	Stage  Stage                 `json:"stage"`
	Format document.SourceFormat `json:"source_format,omitempty"`

	// FailedStage records where a failed run stopped.
	FailedStage Stage `json:"failed_stage,omitempty"`

	Insights []document.Insight      `json:"insights,omitempty"`
	Outline  []document.OutlineNode  `json:"outline,omitempty"`
	Draft    *document.TutorialDraft `json:"draft,omitempty"`

	Elapsed time.Duration `json:"elapsed"`

	started time.Time
}

// Failed reports whether the run ended in the failed stage.
func (r *Result) Failed() bool {
	return r.Stage == StageFailed
}

// Pipeline wires the six stages together. Each run gets its own temp-file
// registry so concurrent runs cannot clean up each other's files.
type Pipeline struct {
	retrieveCfg retrieve.Config
	parser      *parse.Parser
	analyzer    *analyze.Analyzer
	builder     *outline.Builder
	drafter     *draft.Drafter
	refiner     *refine.Refiner
	logger      *slog.Logger
}

// Deps carries the stage implementations into New.
type Deps struct {
	RetrieveConfig retrieve.Config
	Parser         *parse.Parser
	Analyzer       *analyze.Analyzer
	Builder        *outline.Builder
	Drafter        *draft.Drafter
	Refiner        *refine.Refiner
	Logger         *slog.Logger
}

// New assembles a pipeline from its stage implementations.
func New(d Deps) *Pipeline {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		retrieveCfg: d.RetrieveConfig,
		parser:      d.Parser,
		analyzer:    d.Analyzer,
		builder:     d.Builder,
		drafter:     d.Drafter,
		refiner:     d.Refiner,
		logger:      logger.With("component", "pipeline"),
	}
}

// Run executes the full workflow for source. It never returns an error:
// hard failures produce a Result in StageFailed whose Draft is a Markdown
// error document with StatusError.
//
// Fatal: retrieval failure, structuring failure, and an empty outline when
// insights exist (drafting from nothing would fabricate a tutorial).
// Non-fatal: degraded parses, per-block analysis errors, and refinement
// failures all flow through as marked-up results.
func (p *Pipeline) Run(ctx context.Context, source string) *Result {
	res, insights, ok := p.runToOutline(ctx, source)
	if !ok {
		return res
	}

	res.Stage = StageDrafting
	d := p.drafter.Draft(ctx, res.Outline, insights)
	res.Draft = d
	if d.Status == document.StatusError {
		return p.failWithDraft(res, StageDrafting, d)
	}

	res.Stage = StageRefining
	res.Draft = p.refiner.Refine(ctx, d)

	p.finish(res)
	return res
}

// RunOutline executes the workflow through structuring only, for callers
// that want the outline without paying for drafting.
func (p *Pipeline) RunOutline(ctx context.Context, source string) *Result {
	res, _, ok := p.runToOutline(ctx, source)
	if !ok {
		return res
	}
	p.finish(res)
	return res
}

// RunDraft executes the workflow through drafting, skipping refinement.
// The returned draft keeps StatusDraft.
func (p *Pipeline) RunDraft(ctx context.Context, source string) *Result {
	res, insights, ok := p.runToOutline(ctx, source)
	if !ok {
		return res
	}

	res.Stage = StageDrafting
	d := p.drafter.Draft(ctx, res.Outline, insights)
	res.Draft = d
	if d.Status == document.StatusError {
		return p.failWithDraft(res, StageDrafting, d)
	}

	p.finish(res)
	return res
}

// runToOutline covers the shared front half of every run: retrieve, parse,
// analyze, structure. ok is false when the run already terminated.
func (p *Pipeline) runToOutline(ctx context.Context, source string) (*Result, []document.Insight, bool) {
	start := time.Now()
	res := &Result{
		RunID:   uuid.New().String(),
		Source:  source,
		Stage:   StageRetrieving,
		started: start,
	}
	logger := p.logger.With("run_id", res.RunID)
	logger.Info("run started", "source", source)

	files := retrieve.NewTempRegistry()
	defer files.CleanupAll()

	retriever := retrieve.New(p.retrieveCfg, files)
	src, err := retriever.Retrieve(ctx, source)
	if err != nil {
		logger.Error("retrieval failed", "error", err)
		return p.fail(res, StageRetrieving, err, start), nil, false
	}
	res.Format = src.Format

	res.Stage = StageParsing
	blocks := p.parser.Parse(ctx, src)

	res.Stage = StageAnalyzing
	insights, err := p.analyzer.Analyze(ctx, blocks)
	if err != nil {
		logger.Error("analysis aborted", "error", err)
		return p.fail(res, StageAnalyzing, err, start), nil, false
	}
	res.Insights = insights

	res.Stage = StageStructuring
	nodes, err := p.builder.Build(ctx, insights)
	if err != nil {
		logger.Error("structuring failed", "error", err)
		return p.fail(res, StageStructuring, err, start), nil, false
	}
	if len(nodes) == 0 && len(insights) > 0 {
		serr := &outline.StructuringError{Reason: "empty outline for non-empty insights"}
		logger.Error("structuring produced empty outline", "insights", len(insights))
		return p.fail(res, StageStructuring, serr, start), nil, false
	}
	res.Outline = nodes
	res.Elapsed = time.Since(start)
	return res, insights, true
}

func (p *Pipeline) fail(res *Result, stage Stage, err error, start time.Time) *Result {
	res.Stage = StageFailed
	res.FailedStage = stage
	res.Elapsed = time.Since(start)
	res.Draft = &document.TutorialDraft{
		Content:      errorDocument(stage, err),
		Status:       document.StatusError,
		ErrorMessage: err.Error(),
	}
	return res
}

// failWithDraft terminates a run whose failing stage already built its own
// error document.
func (p *Pipeline) failWithDraft(res *Result, stage Stage, d *document.TutorialDraft) *Result {
	res.Stage = StageFailed
	res.FailedStage = stage
	res.Draft = d
	res.Elapsed = time.Since(res.started)
	p.logger.Error("run failed",
		"run_id", res.RunID,
		"stage", stage,
		"error", d.ErrorMessage,
	)
	return res
}

// finish marks the run terminal and logs the outcome. Runs that are not
// already in a terminal stage end in StageDone.
func (p *Pipeline) finish(res *Result) {
	if !res.Stage.Terminal() {
		res.Stage = StageDone
	}
	res.Elapsed = time.Since(res.started)
	status := document.DraftStatus("")
	if res.Draft != nil {
		status = res.Draft.Status
	}
	p.logger.Info("run finished",
		"run_id", res.RunID,
		"stage", res.Stage,
		"insights", len(res.Insights),
		"sections", len(res.Outline),
		"draft_status", status,
		"elapsed", res.Elapsed,
	)
}
