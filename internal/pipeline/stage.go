package pipeline

// Stage names one phase of the tutorial workflow. The run's terminal stage
// is either StageDone or StageFailed; everything else marks where a run
// currently is (or where it stopped).
type Stage string

const (
	StageRetrieving  Stage = "retrieving"
	StageParsing     Stage = "parsing"
	StageAnalyzing   Stage = "analyzing"
	StageStructuring Stage = "structuring"
	StageDrafting    Stage = "drafting"
	StageRefining    Stage = "refining"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// Terminal reports whether the stage ends a run.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}
