// Package format renders schema documents as JSON or YAML text.
package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"

	"github.com/grovetools/cydantic/errors"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding token accepted by the generate command.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

const indent = "  "

// Formats returns the accepted tokens in the order they are offered on the command line.
func Formats() []string {
	return []string{string(JSON), string(YAML)}
}

// Render converts a plain structured value to text. The result carries no
// trailing newline.
func Render(v any, f Format) (string, error) {
	switch f {
	case JSON:
		return renderJSON(v)
	case YAML:
		return renderYAML(v)
	default:
		return "", errors.UnsupportedFormat(string(f), Formats())
	}
}

func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to encode document as JSON")
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func renderJSON(v any) (string, error) {
	data, err := marshalJSON(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// renderYAML goes through the JSON encoding so key order and custom
// MarshalJSON implementations (ordered schema properties) are preserved.
func renderYAML(v any) (string, error) {
	data, err := marshalJSON(v)
	if err != nil {
		return "", err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to convert JSON document to YAML")
	}
	blockStyle(&doc)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(len(indent))
	if err := enc.Encode(&doc); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to encode document as YAML")
	}
	if err := enc.Close(); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to encode document as YAML")
	}

	return strings.TrimRightFunc(buf.String(), unicode.IsSpace), nil
}

// blockStyle drops the flow and quoting styles the JSON parser recorded.
// The encoder still quotes strings that would otherwise resolve to another type.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
