package draftgen

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/docentlabs/docent/internal/document"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPromptTmpl string

var userTemplate = template.Must(template.New("user").Parse(userPromptTmpl))

// SystemPrompt returns the system prompt for tutorial drafting.
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt builds the user prompt from the outline JSON and the
// analyzed insights.
func UserPrompt(outlineJSON string, insights []document.Insight) string {
	var buf bytes.Buffer
	data := struct {
		OutlineJSON string
		Insights    []document.Insight
	}{OutlineJSON: outlineJSON, Insights: insights}
	if err := userTemplate.Execute(&buf, data); err != nil {
		return userPromptTmpl
	}
	return buf.String()
}
