package refine

import (
	"bytes"
	_ "embed"
	"text/template"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPromptTmpl string

var userTemplate = template.Must(template.New("user").Parse(userPromptTmpl))

// SystemPrompt returns the system prompt for draft review.
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt wraps the draft in the review delimiters.
func UserPrompt(draft string) string {
	var buf bytes.Buffer
	data := struct{ Draft string }{Draft: draft}
	if err := userTemplate.Execute(&buf, data); err != nil {
		return userPromptTmpl
	}
	return buf.String()
}
