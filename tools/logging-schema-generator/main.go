package main

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"github.com/grovetools/cydantic/logging"
	"github.com/invopop/jsonschema"
)

func main() {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		Anonymous:      true,
		FieldNameTag:   "yaml",
		DoNotReference: true,
	}

	schema := r.Reflect(&logging.Config{})
	schema.Title = "cydantic logging configuration"
	schema.Description = "Schema for the 'logging' section of cydantic.yml."

	// Every logging setting is optional
	schema.Required = nil

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("Error marshaling schema: %v", err)
	}

	outputDir := "schema/definitions"
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Fatalf("Error creating schema directory: %v", err)
	}

	outputPath := filepath.Join(outputDir, "logging.schema.json")
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}

	log.Printf("Generated logging schema at %s", outputPath)
}
