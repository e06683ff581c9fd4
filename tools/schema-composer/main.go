package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/grovetools/cydantic/schema"
)

const definitionsDir = "schema/definitions"

// extensionSchemas maps config sections to schema files in definitionsDir.
var extensionSchemas = map[string]string{
	"logging": "logging.schema.json",
}

func main() {
	log.Println("Starting schema composition...")

	baseSchemaPath := filepath.Join(definitionsDir, "cydantic.schema.json")
	distDir := "schema/dist"

	if err := os.MkdirAll(distDir, 0755); err != nil {
		log.Fatalf("Failed to create dist directory: %v", err)
	}

	// 1. The resolvable schema points at the definition files for editors.
	resolvableSchema, err := createResolvableSchema(baseSchemaPath)
	if err != nil {
		log.Fatalf("Failed to create resolvable schema: %v", err)
	}
	resolvablePath := filepath.Join(distDir, "cydantic.schema.json")
	if err := writeJSONFile(resolvablePath, resolvableSchema); err != nil {
		log.Fatalf("Failed to write resolvable schema: %v", err)
	}
	log.Printf("Generated resolvable schema at %s", resolvablePath)

	// 2. The bundled schema inlines every extension.
	bundledSchema, err := createBundledSchema(resolvableSchema)
	if err != nil {
		log.Fatalf("Failed to create bundled schema: %v", err)
	}
	if _, err := schema.NewValidator(bundledSchema); err != nil {
		log.Fatalf("Bundled schema does not compile: %v", err)
	}
	bundledPath := filepath.Join(distDir, "cydantic.embedded.schema.json")
	if err := writeJSONFile(bundledPath, bundledSchema); err != nil {
		log.Fatalf("Failed to write bundled schema: %v", err)
	}
	log.Printf("Generated bundled schema at %s", bundledPath)

	log.Println("Schema composition complete.")
}

func createResolvableSchema(basePath string) (map[string]interface{}, error) {
	base, err := readJSONFile(basePath)
	if err != nil {
		return nil, fmt.Errorf("could not read base schema: %w", err)
	}

	if _, ok := base["properties"]; !ok {
		base["properties"] = make(map[string]interface{})
	}
	properties := base["properties"].(map[string]interface{})

	for _, key := range extensionKeys() {
		properties[key] = map[string]interface{}{
			"$ref": "../definitions/" + extensionSchemas[key],
		}
	}

	base["title"] = "cydantic configuration"
	base["description"] = "Schema for cydantic.yml, including the extension sections cydantic reads."

	return base, nil
}

func createBundledSchema(resolvableSchema map[string]interface{}) (map[string]interface{}, error) {
	bundled := deepCopyMap(resolvableSchema)
	properties := bundled["properties"].(map[string]interface{})

	for _, key := range extensionKeys() {
		path := filepath.Join(definitionsDir, extensionSchemas[key])
		sub, err := readJSONFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema for %s: %w", key, err)
		}
		// $schema and $id are only valid at the document root
		delete(sub, "$schema")
		delete(sub, "$id")
		properties[key] = sub
	}

	return bundled, nil
}

func extensionKeys() []string {
	keys := make([]string, 0, len(extensionSchemas))
	for key := range extensionSchemas {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func readJSONFile(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", path, err)
	}
	return m, nil
}

func writeJSONFile(path string, data map[string]interface{}) error {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, bytes, 0644)
}

func deepCopyMap(m map[string]interface{}) map[string]interface{} {
	// Simple deep copy using JSON marshaling
	bytes, err := json.Marshal(m)
	if err != nil {
		return m
	}
	var copy map[string]interface{}
	if err := json.Unmarshal(bytes, &copy); err != nil {
		return m
	}
	return copy
}
