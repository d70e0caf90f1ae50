package analyze

import "encoding/json"

// ResponseSchema is the JSON schema for block classification output.
var ResponseSchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "block_analysis",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"role": map[string]any{
					"type": "string",
					"enum": []string{
						"title",
						"introduction",
						"prerequisite",
						"step",
						"code_example",
						"concept",
						"example",
						"conclusion",
						"image_description",
						"other",
					},
					"description": "Pedagogical role of the block within a tutorial",
				},
				"summary": map[string]any{
					"type":        "string",
					"description": "One or two sentence summary of the block content",
				},
			},
			"required":             []string{"role", "summary"},
			"additionalProperties": false,
		},
	},
}

// Result represents the parsed result from block classification.
type Result struct {
	Role    string `json:"role"`
	Summary string `json:"summary"`
}

// Schema returns the validation schema as raw JSON.
func Schema() json.RawMessage {
	raw, err := json.Marshal(ResponseSchema)
	if err != nil {
		return nil
	}
	return raw
}
