package outline

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

// SystemPrompt returns the system prompt for outline construction.
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt builds the user prompt from the analyzed insights.
func UserPrompt(insights []document.Insight) string {
	var buf bytes.Buffer
	data := struct{ Insights []document.Insight }{Insights: insights}
	if err := userTemplate.Execute(&buf, data); err != nil {
		return userPromptTmpl
	}
	return buf.String()
}
