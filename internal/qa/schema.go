package qa

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// answerSchema is the JSON shape chat models must return for a QA prompt.
var answerSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"answer": map[string]any{"type": []string{"string", "null"}},
		"score":  map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
	},
	"required": []string{"answer", "score"},
}

var (
	compiledAnswerSchema *jsonschema.Schema
	compileAnswerOnce    sync.Once
	compileAnswerErr     error
)

func compileSchema(name string, schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile(name)
}

// validateAnswerJSON checks data against answerSchema.
func validateAnswerJSON(data []byte) error {
	compileAnswerOnce.Do(func() {
		compiledAnswerSchema, compileAnswerErr = compileSchema("answer.json", answerSchema)
	})
	if compileAnswerErr != nil {
		return fmt.Errorf("compile schema: %w", compileAnswerErr)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := compiledAnswerSchema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// extractJSONObject trims markdown fences and prose around the first {...} object.
func extractJSONObject(s string) string {
	s = strings.TrimSpace(s)
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}
