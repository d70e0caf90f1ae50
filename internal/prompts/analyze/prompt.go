package analyze

import (
	"bytes"
	_ "embed"
	"text/template"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPromptTmpl string

//go:embed vision.tmpl
var visionPrompt string

var userTemplate = template.Must(template.New("user").Parse(userPromptTmpl))

// SystemPrompt returns the system prompt for block classification.
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt builds the user prompt for a single document block.
func UserPrompt(index int, text string) string {
	var buf bytes.Buffer
	data := struct {
		Index int
		Text  string
	}{Index: index, Text: text}
	if err := userTemplate.Execute(&buf, data); err != nil {
		// Fallback to raw template on error
		return userPromptTmpl
	}
	return buf.String()
}

// VisionPrompt returns the prompt sent alongside image content.
func VisionPrompt() string {
	return visionPrompt
}
