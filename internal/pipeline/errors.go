package pipeline

import "fmt"

// failedHeader opens every error document so downstream consumers can
// render one even when the pipeline hard-fails.
const failedHeader = "# Workflow Failed\n\n"

// errorDocument builds the Markdown error document for a hard failure.
func errorDocument(stage Stage, err error) string {
	return fmt.Sprintf("%sThe tutorial workflow failed during the %s stage.\n\nError: %v\n", failedHeader, stage, err)
}
