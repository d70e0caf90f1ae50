package document

// DraftStatus marks how far through the pipeline a draft made it and how
// much it degraded along the way. It is the caller-visible success signal.
type DraftStatus string

const (
	// StatusDraft is the drafter's direct output, not yet refined.
	StatusDraft DraftStatus = "draft"
	// StatusRefined means the refiner improved the draft successfully.
	StatusRefined DraftStatus = "refined"
	// StatusRefinementFailed means the refiner errored; Content carries the
	// unrefined draft unchanged.
	StatusRefinementFailed DraftStatus = "refinement_failed"
	// StatusUnrefined means the refiner returned empty output; Content
	// carries the unrefined draft unchanged.
	StatusUnrefined DraftStatus = "unrefined"
	// StatusError means the pipeline hard-failed; Content is a well-formed
	// Markdown error document.
	StatusError DraftStatus = "error"
)

// TutorialDraft is the resulting Markdown document at any pipeline stage.
type TutorialDraft struct {
	// Content is the Markdown text.
	Content string `json:"content"`

	// Status signals how much of the pipeline degraded.
	Status DraftStatus `json:"status"`

	// RoleTag is a diagnostic classification, not business logic.
	RoleTag string `json:"role_tag,omitempty"`

	// ErrorMessage carries the failure detail for refinement_failed and
	// error statuses.
	ErrorMessage string `json:"error_message,omitempty"`
}

// Degraded reports whether the draft is anything less than fully refined.
func (d *TutorialDraft) Degraded() bool {
	return d.Status != StatusRefined
}
