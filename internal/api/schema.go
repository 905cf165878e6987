package api

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/samcharles93/tokprobe/internal/probe"
)

// PropsSchema is the JSON schema for a POST /props body.
func PropsSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "Text the model conditions on.",
			},
			"target_chars": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "Comma-separated target strings to score.",
			},
			"top_k": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     probe.MaxTopK,
				"description": "Also report the k most likely next tokens.",
			},
		},
		"required": []string{"prompt", "target_chars"},
	}
}

var propsSchema = mustSchema(PropsSchema())

func mustSchema(def map[string]any) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(def))
	if err != nil {
		panic(fmt.Sprintf("api: compile schema: %v", err))
	}
	return s
}

// validateProps checks body against PropsSchema. A violation is an invalid
// request listing every failed constraint.
func validateProps(body []byte) error {
	result, err := propsSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return newInvalidRequest(fmt.Sprintf("invalid JSON: %v", err))
	}
	if result.Valid() {
		return nil
	}
	errs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return newInvalidRequest("request validation failed: " + strings.Join(errs, "; "))
}
