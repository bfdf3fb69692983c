package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/contract-extractor/constants"
)

// RecordJSONSchema describes the export shape: exactly the eight fields, each string or null.
func RecordJSONSchema() map[string]any {
	props := map[string]any{}
	for _, f := range constants.Fields() {
		props[string(f)] = map[string]any{"type": []string{"string", "null"}}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             constants.AsStringSlice(),
	}
}

var (
	recordSchema     *jsonschema.Schema
	recordSchemaErr  error
	recordSchemaOnce sync.Once
)

// ValidateRecordJSON checks data against RecordJSONSchema.
func ValidateRecordJSON(data []byte) error {
	recordSchemaOnce.Do(func() {
		b, err := json.Marshal(RecordJSONSchema())
		if err != nil {
			recordSchemaErr = err
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
			recordSchemaErr = err
			return
		}
		recordSchema, recordSchemaErr = compiler.Compile("record.json")
	})
	if recordSchemaErr != nil {
		return fmt.Errorf("compile schema: %w", recordSchemaErr)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := recordSchema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
