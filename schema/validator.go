package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// resourceURL names the in-memory resource a document is compiled under.
const resourceURL = "model.json"

// Validator validates plain data against a compiled JSON Schema document.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles a JSON Schema document. The document may be raw JSON
// bytes or any value that marshals to a schema.
func NewValidator(document interface{}) (*Validator, error) {
	raw, ok := document.([]byte)
	if !ok {
		var err error
		raw, err = json.Marshal(document)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal schema document: %w", err)
		}
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(resourceURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Validator{schema: schema}, nil
}

// Validate validates data against the schema.
// Data is normalized through JSON first so structs and YAML-decoded values
// are seen as plain JSON objects.
func (v *Validator) Validate(data interface{}) error {
	normalized, err := Normalize(data)
	if err != nil {
		return err
	}

	if err := v.schema.Validate(normalized); err != nil {
		violations := Violations(err)
		if len(violations) > 0 {
			return &Error{Violations: violations}
		}
		return fmt.Errorf("schema validation failed: %w", err)
	}

	return nil
}

// Error reports every violation found by a failed validation.
type Error struct {
	Violations []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("schema validation failed:\n%s", strings.Join(e.Violations, "\n"))
}

// Normalize converts a value into the plain JSON data model.
func Normalize(data interface{}) (interface{}, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal data to JSON for validation: %w", err)
	}

	var normalized interface{}
	if err := json.Unmarshal(jsonData, &normalized); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON for validation: %w", err)
	}
	return normalized, nil
}

// Violations flattens a validation error into "- location: message" lines.
func Violations(err error) []string {
	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil
	}
	var messages []string
	collectErrors(validationErr, &messages)
	return messages
}

// collectErrors recursively collects all validation errors into a slice
func collectErrors(err *jsonschema.ValidationError, messages *[]string) {
	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}
		*messages = append(*messages, fmt.Sprintf("- %s: %s", location, err.Message))
	}
	for _, cause := range err.Causes {
		collectErrors(cause, messages)
	}
}
