package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"BillAnalyzer/internal/domain"
)

// BuildResultJSONSchema returns the JSON Schema every completion must satisfy:
// an object whose listed keys are all non-blank strings.
func BuildResultJSONSchema(fields []domain.AnalysisField) map[string]any {
	props := make(map[string]any, len(fields))
	required := make([]string, 0, len(fields))
	for _, f := range fields {
		props[f.Key] = map[string]any{"type": "string", "minLength": 1, "pattern": `\S`}
		required = append(required, f.Key)
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// Validator checks raw completions against a compiled schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the schema for fields.
func NewValidator(fields []domain.AnalysisField) (*Validator, error) {
	raw, err := json.Marshal(BuildResultJSONSchema(fields))
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("analysis.json", bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("analysis.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Decode validates data and unmarshals it into an AnalysisResult.
func (v *Validator) Decode(data []byte) (domain.AnalysisResult, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("unmarshal completion: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("completion does not match schema: %w", err)
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("decode completion: %w", err)
	}
	if err := result.Validate(); err != nil {
		return domain.AnalysisResult{}, err
	}
	return result, nil
}
