package tutorapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const evaluationSchemaURL = "https://reverse-tutor.local/schemas/evaluation.json"

// EvaluationSchema describes the end_teaching payload. Missing lists are treated as empty and a
// fractional score is rounded to the nearest whole point.
const EvaluationSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["score"],
  "properties": {
    "score": {"type": "number"},
    "strengths": {"$ref": "#/$defs/items"},
    "weaknesses": {"$ref": "#/$defs/items"},
    "missed_concepts": {"$ref": "#/$defs/items"},
    "suggestions": {"$ref": "#/$defs/items"},
    "follow_up_questions": {"$ref": "#/$defs/items"}
  },
  "$defs": {
    "items": {"type": ["array", "null"], "items": {"type": "string"}}
  }
}`

var evaluationSchema = jsonschema.MustCompileString(evaluationSchemaURL, EvaluationSchema)

func validateEvaluation(raw []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var doc interface{}
	if err := decoder.Decode(&doc); err != nil {
		return fmt.Errorf("decode evaluation: %w", err)
	}

	return evaluationSchema.Validate(doc)
}
