package document

// Role classifies what a content block contributes to the tutorial.
type Role string

const (
	RoleTitle            Role = "title"
	RoleIntroduction     Role = "introduction"
	RolePrerequisite     Role = "prerequisite"
	RoleStep             Role = "step"
	RoleCodeExample      Role = "code_example"
	RoleConcept          Role = "concept"
	RoleExample          Role = "example"
	RoleConclusion       Role = "conclusion"
	RoleImageDescription Role = "image_description"
	RoleOther            Role = "other"

	// Error roles tag per-block soft failures. The batch still completes.
	RoleAnalysisError Role = "analysis_error"
	RoleImageError    Role = "image_description_error"
)

var knownRoles = map[Role]bool{
	RoleTitle:            true,
	RoleIntroduction:     true,
	RolePrerequisite:     true,
	RoleStep:             true,
	RoleCodeExample:      true,
	RoleConcept:          true,
	RoleExample:          true,
	RoleConclusion:       true,
	RoleImageDescription: true,
	RoleOther:            true,
	RoleAnalysisError:    true,
	RoleImageError:       true,
}

// NormalizeRole maps a model-supplied role string onto the fixed enum.
// Unknown values collapse to RoleOther rather than leaking model vocabulary
// into the pipeline.
func NormalizeRole(s string) Role {
	r := Role(s)
	if knownRoles[r] {
		return r
	}
	return RoleOther
}

// IsError reports whether the role tags a failed analysis.
func (r Role) IsError() bool {
	return r == RoleAnalysisError || r == RoleImageError
}

// Insight is the analysis result for one content block. The analyzer emits
// exactly one insight per input block, in input order.
type Insight struct {
	// Role is the block's classified tutorial role.
	Role Role `json:"role"`

	// Summary is a one-sentence summary for text blocks, or the image
	// caption for image blocks.
	Summary string `json:"summary"`

	// Block is a read-only back-reference to the source block.
	Block *ContentBlock `json:"-"`
}
