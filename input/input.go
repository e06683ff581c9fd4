// Package input reads documents to be validated against a model.
package input

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/grovetools/cydantic/errors"
	"github.com/grovetools/cydantic/schema"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Stdin is the path token that reads the document from standard input.
const Stdin = "-"

// Kind identifies the syntax a document is parsed with.
type Kind string

const (
	KindJSON Kind = "json"
	KindYAML Kind = "yaml"
	KindTOML Kind = "toml"
)

// KindOf picks a parser from the file extension. Anything unrecognized,
// standard input included, is parsed as YAML, which also accepts plain JSON.
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return KindJSON
	case ".toml":
		return KindTOML
	default:
		return KindYAML
	}
}

// Read loads and parses the document at path. stdin is consulted when path is "-".
// The result is normalized to the plain JSON data model.
func Read(path string, stdin io.Reader) (any, error) {
	var (
		data []byte
		err  error
	)
	if path == Stdin {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.InputInvalid(path, err)
	}

	doc, err := Parse(data, KindOf(path))
	if err != nil {
		return nil, errors.InputInvalid(path, err)
	}
	return doc, nil
}

// Parse decodes raw bytes of the given kind.
func Parse(data []byte, kind Kind) (any, error) {
	var doc any
	switch kind {
	case KindJSON:
		// JSONC: comments and trailing commas are stripped first
		if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return doc, nil
	case KindTOML:
		var table map[string]any
		if err := toml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
		doc = table
	case KindYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown document kind %q", kind)
	}

	normalized, err := schema.Normalize(doc)
	if err != nil {
		return nil, err
	}
	return normalized, nil
}
