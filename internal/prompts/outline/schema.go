package outline

import "encoding/json"

// ResponseSchema is the JSON schema for the outline output, a recursive
// array of section nodes.
var ResponseSchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "tutorial_outline",
		"strict": true,
		"schema": map[string]any{
			"type":  "array",
			"items": map[string]any{"$ref": "#/$defs/section"},
			"$defs": map[string]any{
				"section": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{
							"type":        "string",
							"description": "Section heading",
						},
						"bullets": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Talking points to cover in this section",
						},
						"children": map[string]any{
							"type":        "array",
							"items":       map[string]any{"$ref": "#/$defs/section"},
							"description": "Nested subsections",
						},
					},
					"required":             []string{"title"},
					"additionalProperties": false,
				},
			},
		},
	},
}

// Schema returns the validation schema as raw JSON.
func Schema() json.RawMessage {
	raw, err := json.Marshal(ResponseSchema)
	if err != nil {
		return nil
	}
	return raw
}
