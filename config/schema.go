package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema generates the JSON Schema for cydantic.yml. The typed
// sections reject unknown keys; any other top-level key is an extension
// section and must be a mapping.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		ExpandedStruct:            true,
		Anonymous:                 true,
		// Use YAML field names for property names
		FieldNameTag: "yaml",
	}

	schema := r.Reflect(&Config{})
	schema.Title = "cydantic configuration"
	schema.Description = "Schema for cydantic.yml."
	schema.AdditionalProperties = &jsonschema.Schema{
		Type:        "object",
		Description: "Extension section, e.g. logging",
	}

	return json.MarshalIndent(schema, "", "  ")
}
