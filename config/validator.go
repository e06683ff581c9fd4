package config

import (
	"sync"

	"github.com/grovetools/cydantic/schema"
)

var (
	schemaValidator    *schema.Validator
	schemaValidatorErr error
	schemaValidatorMu  sync.Once
)

// SchemaValidator validates a parsed configuration document against the
// generated configuration schema.
type SchemaValidator struct {
	validator *schema.Validator
}

// NewSchemaValidator returns a validator for cydantic.yml documents. The
// schema is compiled once per process.
func NewSchemaValidator() (*SchemaValidator, error) {
	schemaValidatorMu.Do(func() {
		var doc []byte
		doc, schemaValidatorErr = GenerateSchema()
		if schemaValidatorErr != nil {
			return
		}
		schemaValidator, schemaValidatorErr = schema.NewValidator(doc)
	})
	if schemaValidatorErr != nil {
		return nil, schemaValidatorErr
	}
	return &SchemaValidator{validator: schemaValidator}, nil
}

// Validate validates configuration data against the schema.
func (v *SchemaValidator) Validate(configData interface{}) error {
	return v.validator.Validate(configData)
}
