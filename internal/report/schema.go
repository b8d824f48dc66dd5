package report

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const reportSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["system_message_file", "model", "parameters", "k", "metric", "average", "median", "std", "percentiles", "n_tests", "prompt", "tests"],
  "properties": {
    "system_message_file": {"type": "string"},
    "model": {"type": "string", "minLength": 1},
    "parameters": {"type": "object", "additionalProperties": {"type": "string"}},
    "k": {"type": "integer", "minimum": 0},
    "metric": {"type": "string", "minLength": 1},
    "history": {"type": ["array", "null"], "items": {"type": "number"}},
    "average": {"type": "number"},
    "median": {"type": "number"},
    "std": {"type": "number", "minimum": 0},
    "percentiles": {"type": "object", "additionalProperties": {"type": "number"}},
    "n_tests": {"type": "integer", "minimum": 0},
    "prompt": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["role", "content"],
        "properties": {
          "role": {"enum": ["system", "user", "assistant"]},
          "content": {"type": "string"}
        }
      }
    },
    "tests": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "input", "output", "llm_output", "score"],
        "properties": {
          "id": {"type": "integer"},
          "name": {"type": "string"},
          "input": {"type": "string"},
          "output": {"type": "string"},
          "llm_output": {"type": "string"},
          "score": {"type": "number"}
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(reportSchema)

// Validate checks a report document against the report schema.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("report schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("report validation failed: %s", strings.Join(errs, ", "))
}
